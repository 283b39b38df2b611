package model

import "context"

// Sink is a consumer of a byte stream for one result format at one path.
// Grounded on the teacher's endpoint.SinkEndpoint.WriteRaw, narrowed to the
// push orchestrator's byte-stream contract (§6 of the spec).
type Sink struct {
	Format  ResultType
	Consume func(ctx context.Context, path string, columns []ColumnMeta, bytes ByteStream) error
}

// Destination is a resolved destination handle: a type identity plus the
// ordered, non-empty set of sinks it exposes. Modeled as a plain struct
// holding closures rather than a tagged variant or trait object, since Go
// interfaces already give per-connector dispatch for free (Design Notes).
type Destination struct {
	ID    DestinationId
	Type  DestinationTypeId
	Sinks []Sink
}

// SinkFor returns the Sink matching format, if the destination supports it.
func (d Destination) SinkFor(format ResultType) (Sink, bool) {
	for _, s := range d.Sinks {
		if s.Format == format {
			return s, true
		}
	}
	return Sink{}, false
}

// RenderConfig is format-specific rendering configuration.
type RenderConfig struct {
	Csv  CsvConfig
	Json JsonConfig
}

// CsvConfig configures the CSV renderer. Quoting itself is not
// configurable: encoding/csv.Writer (which the renderer uses as-is, with
// no custom wrapper) always quotes a field exactly when it must to stay
// unambiguous, and never otherwise.
type CsvConfig struct {
	Delimiter rune
	Header    bool
}

// JsonConfig configures the JSON renderer: array-wrapped ("[", ",", "]")
// or newline-delimited ("", "\n", "").
type JsonConfig struct {
	Prefix    string
	Delimiter string
	Suffix    string
}

// DefaultCsvConfig returns the conventional comma-delimited,
// header-bearing CSV configuration.
func DefaultCsvConfig() CsvConfig {
	return CsvConfig{Delimiter: ',', Header: true}
}

// DefaultJsonConfig returns an array-wrapped JSON configuration.
func DefaultJsonConfig() JsonConfig {
	return JsonConfig{Prefix: "[", Delimiter: ",", Suffix: "]"}
}

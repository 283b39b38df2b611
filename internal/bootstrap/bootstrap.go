// Package bootstrap wires a Controller from a JSON deployment file plus
// process configuration, grounded on the teacher's own file-backed
// repositories (mmrzaf-sdgen/internal/infra/repos/{scenarios,targets}):
// small structs decoded straight off disk with encoding/json, no schema
// migration or validation library, since the pack shows none for this kind
// of static definition file either.
package bootstrap

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nucleus/resultpush/internal/catalog"
	"github.com/nucleus/resultpush/internal/config"
	"github.com/nucleus/resultpush/internal/destination"
	"github.com/nucleus/resultpush/internal/evaluator"
	"github.com/nucleus/resultpush/internal/model"
	"github.com/nucleus/resultpush/internal/sink/objectstore"
	"github.com/nucleus/resultpush/internal/sink/postgres"
)

// TableDef is one catalog.Memory entry as it appears in a deployment file.
type TableDef struct {
	ID      string             `json:"id"`
	Name    string             `json:"name"`
	Query   string             `json:"query"`
	Columns []model.ColumnMeta `json:"columns"`
}

// DestinationDef is one destination.Memory entry as it appears in a
// deployment file. Type selects which Sink constructors are attached:
// "object.minio" gets an objectstore.Sink per requested format, and
// "jdbc.postgres" gets a single postgres.Sink (which only ever renders
// json, per its Sink's fixed Format).
type DestinationDef struct {
	ID      string   `json:"id"`
	Type    string   `json:"type"`
	Version string   `json:"version"`
	Formats []string `json:"formats"`

	Bucket string `json:"bucket,omitempty"`
	Table  string `json:"table,omitempty"`
}

// Deployment is the top-level shape of a deployment file: the fixed set of
// tables and destinations a pushctl invocation operates against.
type Deployment struct {
	Tables       []TableDef       `json:"tables"`
	Destinations []DestinationDef `json:"destinations"`
}

// LoadDeployment reads and parses a deployment file from path.
func LoadDeployment(path string) (*Deployment, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: reading deployment file: %w", err)
	}
	var dep Deployment
	if err := json.Unmarshal(data, &dep); err != nil {
		return nil, fmt.Errorf("bootstrap: parsing deployment file: %w", err)
	}
	return &dep, nil
}

// BuildCatalog registers every table in dep into a fresh catalog.Memory.
func BuildCatalog(dep *Deployment) *catalog.Memory {
	store := catalog.NewMemory()
	for _, t := range dep.Tables {
		store.Register(model.TableRef{
			ID:      model.TableId(t.ID),
			Name:    t.Name,
			Query:   t.Query,
			Columns: t.Columns,
		})
	}
	return store
}

// BuildDestinations registers every destination in dep into a fresh
// destination.Memory, constructing each one's live Sinks from cfg's
// connection settings.
func BuildDestinations(dep *Deployment, cfg *config.Config) (*destination.Memory, error) {
	reg := destination.NewMemory()
	for _, d := range dep.Destinations {
		sinks, err := buildSinks(d, cfg)
		if err != nil {
			return nil, fmt.Errorf("bootstrap: destination %q: %w", d.ID, err)
		}
		reg.Register(model.Destination{
			ID:    model.DestinationId(d.ID),
			Type:  model.DestinationTypeId{Name: d.Type, Version: d.Version},
			Sinks: sinks,
		})
	}
	return reg, nil
}

// BuildEvaluator loads an evaluator.Memory from an optional fixtures file: a
// JSON object mapping a table's query text to the rows it should evaluate
// to. This is a stand-in for a real query engine (§6.3's Evaluator is an
// external collaborator the spec leaves unspecified), sufficient for a
// pushctl invocation run against fixture data in development.
func BuildEvaluator(fixturesPath string) (*evaluator.Memory, error) {
	mem := evaluator.NewMemory()
	if fixturesPath == "" {
		return mem, nil
	}
	data, err := os.ReadFile(fixturesPath)
	if err != nil {
		return nil, fmt.Errorf("bootstrap: reading fixtures file: %w", err)
	}
	var fixtures map[string][]model.Row
	if err := json.Unmarshal(data, &fixtures); err != nil {
		return nil, fmt.Errorf("bootstrap: parsing fixtures file: %w", err)
	}
	for query, rows := range fixtures {
		mem.Seed(query, rows)
	}
	return mem, nil
}

func buildSinks(d DestinationDef, cfg *config.Config) ([]model.Sink, error) {
	switch d.Type {
	case "object.minio":
		store, err := objectstore.NewStore(objectstore.Config{
			EndpointURL:     cfg.ObjectStoreEndpointURL,
			Region:          cfg.ObjectStoreRegion,
			UseSSL:          cfg.ObjectStoreUseSSL,
			AccessKeyID:     cfg.ObjectStoreAccessKeyID,
			SecretAccessKey: cfg.ObjectStoreSecretAccessKey,
		})
		if err != nil {
			return nil, err
		}
		bucket := d.Bucket
		if bucket == "" {
			bucket = cfg.ObjectStoreBucket
		}
		sinks := make([]model.Sink, 0, len(d.Formats))
		for _, f := range d.Formats {
			sinks = append(sinks, objectstore.Sink(model.ResultType(f), bucket, store))
		}
		return sinks, nil

	case "jdbc.postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		table := d.Table
		if table == "" {
			table = d.ID
		}
		return []model.Sink{postgres.Sink(table, db)}, nil

	default:
		return nil, fmt.Errorf("unknown destination type %q", d.Type)
	}
}

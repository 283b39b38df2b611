package render

import (
	"context"
	"encoding/json"

	"github.com/nucleus/resultpush/internal/model"
)

type jsonRenderer struct {
	cfg model.JsonConfig
}

func newJSONRenderer(cfg model.JsonConfig) *jsonRenderer {
	return &jsonRenderer{cfg: cfg}
}

func (r *jsonRenderer) Format() model.ResultType { return model.ResultTypeJson }

// Render emits cfg.Prefix, then each row as its own JSON object joined by
// cfg.Delimiter, then cfg.Suffix. The defaults ("[", ",", "]") produce a
// single JSON array; a caller wanting newline-delimited JSON instead sets
// Prefix and Suffix to "" and Delimiter to "\n".
func (r *jsonRenderer) Render(columns []model.ColumnMeta, rows model.RowStream) model.ByteStream {
	stream := newChunkStream()
	names := columnNames(columns)

	stream.start(rows, func(ctx context.Context, rows model.RowStream, emit func(model.ByteChunk)) error {
		if r.cfg.Prefix != "" {
			emit(model.ByteChunk(r.cfg.Prefix))
		}

		first := true
		for rows.Next(ctx) {
			row := rows.Value()
			obj := make(map[string]any, len(names))
			for _, name := range names {
				obj[name] = row[name]
			}
			encoded, err := json.Marshal(obj)
			if err != nil {
				return err
			}
			if !first && r.cfg.Delimiter != "" {
				emit(model.ByteChunk(r.cfg.Delimiter))
			}
			first = false
			emit(model.ByteChunk(encoded))
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if r.cfg.Suffix != "" {
			emit(model.ByteChunk(r.cfg.Suffix))
		}
		return nil
	})

	return stream
}

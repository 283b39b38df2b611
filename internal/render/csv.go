package render

import (
	"bytes"
	"context"
	"encoding/csv"

	"github.com/nucleus/resultpush/internal/model"
)

type csvRenderer struct {
	cfg model.CsvConfig
}

func newCSVRenderer(cfg model.CsvConfig) *csvRenderer {
	return &csvRenderer{cfg: cfg}
}

func (r *csvRenderer) Format() model.ResultType { return model.ResultTypeCsv }

func (r *csvRenderer) Render(columns []model.ColumnMeta, rows model.RowStream) model.ByteStream {
	stream := newChunkStream()
	names := columnNames(columns)

	stream.start(rows, func(ctx context.Context, rows model.RowStream, emit func(model.ByteChunk)) error {
		var buf bytes.Buffer
		w := csv.NewWriter(&buf)
		w.Comma = r.cfg.Delimiter

		flush := func() {
			w.Flush()
			if buf.Len() > 0 {
				emit(model.ByteChunk(append([]byte(nil), buf.Bytes()...)))
				buf.Reset()
			}
		}

		if r.cfg.Header {
			if err := w.Write(names); err != nil {
				return err
			}
			flush()
		}

		for rows.Next(ctx) {
			row := rows.Value()
			record := make([]string, len(names))
			for i, name := range names {
				record[i] = formatCell(row[name])
			}
			if err := w.Write(record); err != nil {
				return err
			}
			flush()
		}
		return ctx.Err()
	})

	return stream
}

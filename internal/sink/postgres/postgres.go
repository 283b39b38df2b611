// Package postgres implements a model.Sink that loads a rendered result
// into a Postgres table via database/sql, grounded on the teacher's jdbc
// connector (platform/ucl-core/internal/connector/jdbc/{base.go,postgres.go}),
// which opens its *sql.DB the same way ("database/sql" + the lib/pq driver
// registered via blank import) and drives everything through QueryContext/
// ExecContext rather than a Postgres-specific client library.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	_ "github.com/lib/pq"

	"github.com/nucleus/resultpush/internal/model"
)

// DB is the subset of *sql.DB a Sink needs, so tests can supply a fake
// instead of a live Postgres connection.
type DB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Open opens a *sql.DB against dsn using the lib/pq driver.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres: open: %w", err)
	}
	return db, nil
}

// Sink builds a model.Sink that loads rows into table. It expects its
// input to be JSON-array-rendered (render.New with model.ResultTypeJson):
// the byte stream is decoded back into individual row objects with a
// streaming json.Decoder, each inserted with one ExecContext call per row.
func Sink(table string, db DB) model.Sink {
	return model.Sink{
		Format: model.ResultTypeJson,
		Consume: func(ctx context.Context, _ string, columns []model.ColumnMeta, bytes model.ByteStream) error {
			names := make([]string, len(columns))
			placeholders := make([]string, len(columns))
			for i, c := range columns {
				names[i] = c.Name
				placeholders[i] = fmt.Sprintf("$%d", i+1)
			}
			query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(names, ", "), strings.Join(placeholders, ", "))

			dec := json.NewDecoder(&byteStreamReader{ctx: ctx, stream: bytes})
			if _, err := dec.Token(); err != nil { // consume the opening '['
				if err == io.EOF {
					return nil
				}
				return fmt.Errorf("postgres: decoding rendered array: %w", err)
			}
			for dec.More() {
				var row map[string]any
				if err := dec.Decode(&row); err != nil {
					return fmt.Errorf("postgres: decoding row: %w", err)
				}
				args := make([]any, len(names))
				for i, name := range names {
					args[i] = row[name]
				}
				if _, err := db.ExecContext(ctx, query, args...); err != nil {
					return fmt.Errorf("postgres: insert into %s: %w", table, err)
				}
			}
			if err := bytes.Err(); err != nil {
				return err
			}
			return ctx.Err()
		},
	}
}

// byteStreamReader adapts a model.ByteStream to io.Reader so json.Decoder
// can consume it directly without buffering the whole rendered result.
type byteStreamReader struct {
	ctx    context.Context
	stream model.ByteStream
	buf    []byte
}

func (r *byteStreamReader) Read(p []byte) (int, error) {
	for len(r.buf) == 0 {
		if !r.stream.Next(r.ctx) {
			if err := r.stream.Err(); err != nil {
				return 0, err
			}
			return 0, io.EOF
		}
		r.buf = r.stream.Value()
	}
	n := copy(p, r.buf)
	r.buf = r.buf[n:]
	return n, nil
}

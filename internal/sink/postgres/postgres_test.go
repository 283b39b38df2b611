package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"testing"

	"github.com/nucleus/resultpush/internal/model"
)

type fakeDB struct {
	queries []string
	args    [][]any
	execErr error
}

func (f *fakeDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	if f.execErr != nil {
		return nil, f.execErr
	}
	f.queries = append(f.queries, query)
	f.args = append(f.args, args)
	return nil, nil
}

type fakeByteStream struct {
	chunks [][]byte
	pos    int
	cur    model.ByteChunk
}

func (s *fakeByteStream) Next(ctx context.Context) bool {
	if s.pos >= len(s.chunks) {
		return false
	}
	s.cur = model.ByteChunk(s.chunks[s.pos])
	s.pos++
	return true
}
func (s *fakeByteStream) Value() model.ByteChunk { return s.cur }
func (s *fakeByteStream) Err() error             { return nil }
func (s *fakeByteStream) Close() error           { return nil }

func TestSinkInsertsEachDecodedRow(t *testing.T) {
	db := &fakeDB{}
	sink := Sink("results", db)
	cols := []model.ColumnMeta{{Name: "id"}, {Name: "name"}}

	body := `[{"id":1,"name":"a"},{"id":2,"name":"b"}]`
	stream := &fakeByteStream{chunks: [][]byte{[]byte(body)}}

	if err := sink.Consume(context.Background(), "", cols, stream); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if len(db.queries) != 2 {
		t.Fatalf("got %d inserts, want 2", len(db.queries))
	}
}

func TestSinkPropagatesExecError(t *testing.T) {
	db := &fakeDB{execErr: fmt.Errorf("constraint violation")}
	sink := Sink("results", db)
	cols := []model.ColumnMeta{{Name: "id"}}

	stream := &fakeByteStream{chunks: [][]byte{[]byte(`[{"id":1}]`)}}
	if err := sink.Consume(context.Background(), "", cols, stream); err == nil {
		t.Fatal("expected insert error to propagate")
	}
}

func TestSinkHandlesEmptyArray(t *testing.T) {
	db := &fakeDB{}
	sink := Sink("results", db)

	stream := &fakeByteStream{chunks: [][]byte{[]byte(`[]`)}}
	if err := sink.Consume(context.Background(), "", nil, stream); err != nil {
		t.Fatalf("Consume: %v", err)
	}
	if len(db.queries) != 0 {
		t.Fatalf("expected no inserts, got %d", len(db.queries))
	}
}

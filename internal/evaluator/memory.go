package evaluator

import (
	"context"
	"fmt"
	"sync"

	"github.com/nucleus/resultpush/internal/model"
)

// Memory is a reference Evaluator backed by named, preloaded row sets. It
// exists so the rest of the pipeline (render, sink, pipeline, controller)
// can be built and tested against a real Evaluator implementation without
// a query engine. Grounded on the teacher's in-memory endpoint sources
// (platform/ucl-core/internal/endpoint), which hand back a channel-backed
// Iterator over a slice it already holds in memory.
type Memory struct {
	mu       sync.Mutex
	datasets map[string][]model.Row
}

// NewMemory creates an Evaluator with no registered datasets.
func NewMemory() *Memory {
	return &Memory{datasets: make(map[string][]model.Row)}
}

// Seed registers rows under query, overwriting any prior registration.
func (m *Memory) Seed(query string, rows []model.Row) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.datasets[query] = rows
}

// Evaluate looks up query as a dataset name and returns a stream over its
// rows. An unknown query fails synchronously, mirroring a real evaluator
// rejecting a malformed query before doing any work.
func (m *Memory) Evaluate(ctx context.Context, query string) (model.RowStream, error) {
	m.mu.Lock()
	rows, ok := m.datasets[query]
	m.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("evaluator: unknown query %q", query)
	}
	return newRowStream(rows), nil
}

// rowStream is a pull iterator over a fixed slice, checking ctx at every
// Next so a canceled push stops pulling promptly instead of draining the
// whole dataset first.
type rowStream struct {
	rows []model.Row
	pos  int
	cur  model.Row
	err  error
}

func newRowStream(rows []model.Row) *rowStream {
	return &rowStream{rows: rows}
}

func (s *rowStream) Next(ctx context.Context) bool {
	if s.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		s.err = err
		return false
	}
	if s.pos >= len(s.rows) {
		return false
	}
	s.cur = s.rows[s.pos]
	s.pos++
	return true
}

func (s *rowStream) Value() model.Row { return s.cur }

func (s *rowStream) Err() error { return s.err }

func (s *rowStream) Close() error { return nil }

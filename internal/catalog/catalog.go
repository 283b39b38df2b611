// Package catalog implements the Table Store external collaborator (§6.1):
// resolving a model.TableId to the table metadata a push needs (its query
// and its output columns). Grounded on the teacher's SourceEndpoint.GetSchema
// contract (platform/ucl-core/internal/endpoint/endpoint.go), narrowed from
// "ask a live connector for a dataset's schema" down to a synchronous
// in-memory lookup suitable for the Controller's fast admission path.
package catalog

import (
	"context"
	"sync"

	"github.com/nucleus/resultpush/internal/model"
)

// Store resolves tables by ID. Lookup returning (nil, false, nil) is the
// TableNotFound case (§9); a non-nil error means the lookup itself failed,
// which the Controller also reports as TableNotFound, since the PushError
// taxonomy has no separate lookup-failure variant.
type Store interface {
	Lookup(ctx context.Context, id model.TableId) (*model.TableRef, bool, error)
}

// Memory is an in-memory reference Store, sufficient for tests and for
// deployments whose table catalog is small and static.
type Memory struct {
	mu     sync.RWMutex
	tables map[model.TableId]model.TableRef
}

// NewMemory creates an empty catalog.
func NewMemory() *Memory {
	return &Memory{tables: make(map[model.TableId]model.TableRef)}
}

// Register adds or replaces a table in the catalog.
func (m *Memory) Register(ref model.TableRef) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tables[ref.ID] = ref
}

func (m *Memory) Lookup(ctx context.Context, id model.TableId) (*model.TableRef, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	ref, ok := m.tables[id]
	if !ok {
		return nil, false, nil
	}
	return &ref, true, nil
}

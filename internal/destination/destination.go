// Package destination implements the Destination Registry external
// collaborator (§6.2): resolving a model.DestinationId to its
// model.Destination (which sinks it supports). Grounded on the teacher's
// endpoint.Registry (platform/ucl-core/internal/endpoint/registry.go),
// which maps template IDs to Factory funcs under an RWMutex; this keeps
// the same shape but registers already-built model.Destination values
// rather than factories, since a push destination's configuration is
// resolved once at wiring time, not per-lookup.
package destination

import (
	"context"
	"sync"

	"github.com/nucleus/resultpush/internal/model"
)

// Registry resolves destinations by ID. Lookup returning (nil, false, nil)
// is the DestinationNotFound case (§9).
type Registry interface {
	Lookup(ctx context.Context, id model.DestinationId) (*model.Destination, bool, error)
}

// Memory is an in-memory reference Registry.
type Memory struct {
	mu   sync.RWMutex
	dest map[model.DestinationId]model.Destination
}

// NewMemory creates an empty destination registry.
func NewMemory() *Memory {
	return &Memory{dest: make(map[model.DestinationId]model.Destination)}
}

// Register adds or replaces a destination. Mirrors the teacher's
// Registry.Register, but overwrites on a duplicate ID instead of panicking:
// redefining a destination's sinks at wiring time is a normal occurrence
// here, not a programming error.
func (m *Memory) Register(dest model.Destination) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dest[dest.ID] = dest
}

func (m *Memory) Lookup(ctx context.Context, id model.DestinationId) (*model.Destination, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.dest[id]
	if !ok {
		return nil, false, nil
	}
	return &d, true, nil
}

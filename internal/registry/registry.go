// Package registry implements the Push Registry and its admission control
// (§3, §4.2 of the spec): an in-memory map from PushKey to PushRecord, with
// at most one Running record per key, replaced (not mutated) by each
// successful Start. Grounded on the teacher's orchestration.Manager
// (platform/ucl-core/internal/orchestration/manager.go), which keeps the
// same shape of state (a mutex-protected map, a clone-on-read accessor, an
// in-place status mutator) for its own per-operation records.
package registry

import (
	"sync"
	"time"

	"github.com/nucleus/resultpush/internal/model"
)

// Registry is the process-wide Push Registry. The zero value is not usable;
// construct with New or NewWithRetention.
type Registry struct {
	mu      sync.Mutex
	records map[model.PushKey]*model.PushRecord

	retention *terminalTracker // nil disables bounded retention
}

// New creates an empty Registry with unbounded terminal-record retention.
func New() *Registry {
	return &Registry{records: make(map[model.PushKey]*model.PushRecord)}
}

// NewWithRetention creates a Registry that evicts terminal records beyond
// perDestinationCap, per destination, oldest first (§9 Design Notes).
// Running records are never evicted.
func NewWithRetention(perDestinationCap int) *Registry {
	r := New()
	r.retention = newTerminalTracker(perDestinationCap, r.evict)
	return r
}

// TryAdmit is the admission critical section of Start (§4.1.1 steps 4-5):
// if no record exists for key, or the existing one is terminal, a fresh
// Running record is installed and true is returned. Otherwise the existing
// Running record is left in place and false is returned. The critical
// section is O(1) and performs no I/O, matching §4.2.
func (r *Registry) TryAdmit(key model.PushKey, spec model.PushSpec, startedAt time.Time) (*model.PushRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.records[key]; ok && !existing.Status.Terminal() {
		return existing, false
	}

	record := &model.PushRecord{
		Spec:      spec,
		StartedAt: startedAt,
		Status:    model.Running(startedAt),
	}
	r.records[key] = record
	return record, true
}

// Get returns a copy of the record for key, if any.
func (r *Registry) Get(key model.PushKey) (model.PushRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[key]
	if !ok {
		return model.PushRecord{}, false
	}
	return *rec, true
}

// IsRunning reports whether key currently has a live Running record.
func (r *Registry) IsRunning(key model.PushKey) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[key]
	return ok && !rec.Status.Terminal()
}

// SetTerminal overwrites key's status to a terminal value (§4.4: the
// Status Recorder's unconditional, atomic overwrite). It reports whether a
// record existed to update; a false return means the notification was
// discarded because the record was missing, which §4.4 calls "theoretically
// impossible given §3's invariant" but still handled, not panicked on.
func (r *Registry) SetTerminal(key model.PushKey, status model.PushStatus) bool {
	r.mu.Lock()
	rec, ok := r.records[key]
	if ok {
		rec.Status = status
	}
	r.mu.Unlock()

	if ok && r.retention != nil {
		r.retention.track(key)
	}
	return ok
}

// ForDestination returns a snapshot of every record (running or terminal)
// whose key's destination is destID, keyed by table.
func (r *Registry) ForDestination(destID model.DestinationId) map[model.TableId]model.PushRecord {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[model.TableId]model.PushRecord)
	for key, rec := range r.records {
		if key.DestinationID == destID {
			out[key.TableID] = *rec
		}
	}
	return out
}

// evict removes key's record if it is terminal. Called only by the
// retention tracker's LRU eviction callback, which fires only for keys the
// tracker was told about via track; such a key may since have been
// re-admitted by a fresh Start, so a Running record is left in place.
func (r *Registry) evict(key model.PushKey) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[key]; ok && rec.Status.Terminal() {
		delete(r.records, key)
	}
}

// Package inproc implements jobmanager.Manager with one goroutine per
// submitted activity, keyed cancellation via context.CancelFunc, and a
// completion channel. Grounded on the teacher's orchestration.Manager
// (platform/ucl-core/internal/orchestration/manager.go), which already
// runs each operation as "go m.runIngestion(...)" under a mutex-protected
// map; this adds the context-cancellation and completion-notification
// halves of the Job Manager contract that manager.go does not need for
// its own (non-cancellable) operations.
package inproc

import (
	"context"
	"sync"

	"github.com/nucleus/resultpush/internal/jobmanager"
)

// Manager is the default, dependency-free jobmanager.Manager backend.
type Manager struct {
	mu      sync.Mutex
	cancels map[jobmanager.Key]context.CancelFunc
	closed  bool

	completions chan jobmanager.Completion
	wg          sync.WaitGroup
}

// New creates a ready-to-use in-process job manager. completionBuffer sizes
// the completion channel; 0 is a sensible default for tests that drain it
// promptly.
func New(completionBuffer int) *Manager {
	return &Manager{
		cancels:     make(map[jobmanager.Key]context.CancelFunc),
		completions: make(chan jobmanager.Completion, completionBuffer),
	}
}

// Submit runs activity in its own goroutine under a cancellable context
// derived from context.Background(); the key's entry in cancels is removed
// once the activity returns, right before its completion is published.
func (m *Manager) Submit(key jobmanager.Key, activity jobmanager.Activity) {
	ctx, cancel := context.WithCancel(context.Background())

	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		cancel()
		return
	}
	m.cancels[key] = cancel
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		err := activity(ctx)

		m.mu.Lock()
		delete(m.cancels, key)
		m.mu.Unlock()

		m.completions <- jobmanager.Completion{Key: key, Outcome: classify(ctx, err)}
	}()
}

// classify turns an activity's return into an Outcome, distinguishing a
// cancellation-induced error from a genuine failure by checking whether
// the activity's own context was canceled.
func classify(ctx context.Context, err error) jobmanager.Outcome {
	if err == nil {
		return jobmanager.Outcome{Kind: jobmanager.Completed}
	}
	if ctx.Err() == context.Canceled {
		return jobmanager.Outcome{Kind: jobmanager.Canceled}
	}
	return jobmanager.Outcome{Kind: jobmanager.Failed, Err: err}
}

// Cancel requests cancellation of the activity under key. A no-op if no
// such activity is currently live.
func (m *Manager) Cancel(key jobmanager.Key) {
	m.mu.Lock()
	cancel, ok := m.cancels[key]
	m.mu.Unlock()
	if ok {
		cancel()
	}
}

// CancelAll cancels every activity currently live under this Manager.
func (m *Manager) CancelAll() {
	m.mu.Lock()
	cancels := make([]context.CancelFunc, 0, len(m.cancels))
	for _, c := range m.cancels {
		cancels = append(cancels, c)
	}
	m.mu.Unlock()

	for _, c := range cancels {
		c()
	}
}

// Completions returns the channel every submitted activity's outcome is
// eventually published to, exactly once.
func (m *Manager) Completions() <-chan jobmanager.Completion {
	return m.completions
}

// Close cancels every live activity, waits for all goroutines submitted via
// Submit to return, and closes the completion channel. Close is idempotent
// and safe to call once all consumers have stopped reading Completions().
func (m *Manager) Close() error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	m.mu.Unlock()

	m.CancelAll()
	m.wg.Wait()
	close(m.completions)
	return nil
}

// Package jobmanager defines the Job Manager contract (§6.5 of the spec):
// a background engine that owns a set of named, independently cancellable
// activities, each a finite byte-producing computation tagged by a key
// unique within the manager. The Controller depends only on the Manager
// interface; two concrete backends are provided in the inproc and
// temporaljm subpackages.
package jobmanager

import "context"

// Key identifies one activity within a Manager. The Controller derives it
// from a model.PushKey's string form, since at most one activity per
// (table, destination) pair may be live at a time.
type Key = string

// Activity is a submitted unit of work: a finite, cancellation-aware
// computation that returns an error (or nil) on completion. Implementations
// must check ctx.Err() at every internal suspension point so cancellation
// is observed promptly rather than run to completion.
type Activity func(ctx context.Context) error

// OutcomeKind discriminates how an activity ended.
type OutcomeKind int

const (
	Completed OutcomeKind = iota
	Canceled
	Failed
)

// Outcome is the terminal result of one activity.
type Outcome struct {
	Kind OutcomeKind
	Err  error
}

// Completion pairs a key with its activity's outcome, delivered over the
// Manager's completion channel exactly once per submitted activity.
type Completion struct {
	Key     Key
	Outcome Outcome
}

// Manager is the Job Manager contract of §6.5: submission under a unique
// key, cooperative cancellation of a submitted activity (a no-op for an
// unknown key), cancellation of everything, and a completion subscription.
type Manager interface {
	// Submit runs activity in the background under key. At most one
	// activity per key may be live at a time; submitting over a live key
	// is the caller's bug, not the Manager's to detect (the Controller's
	// admission lock is what prevents it).
	Submit(key Key, activity Activity)

	// Cancel requests cooperative cancellation of the activity under key.
	// A no-op if no such activity is live.
	Cancel(key Key)

	// CancelAll cancels every activity currently live under this Manager.
	CancelAll()

	// Completions returns the channel on which every submitted activity's
	// outcome is eventually delivered, exactly once.
	Completions() <-chan Completion

	// Close releases the Manager's resources. Submitted activities that
	// are still running are canceled first.
	Close() error
}

// Package controller implements the Push Controller (§4.1), the public
// façade of the push orchestrator: start, start_many, cancel, cancel_many,
// cancel_all, and destination_status. It composes the Table Store and
// Destination Registry lookups with the Push Registry's admission control
// and the Job Manager's submission/cancellation/completion contract.
// Grounded on the teacher's orchestration.Manager
// (platform/ucl-core/internal/orchestration/manager.go): a mutex-protected
// map of operation state, updated in place by a background goroutine that
// watches each submitted task's outcome, generalized here from a single
// "start an ingestion, update one record" surface to the spec's full
// six-operation admission and cancellation contract.
package controller

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/nucleus/resultpush/internal/catalog"
	"github.com/nucleus/resultpush/internal/clock"
	"github.com/nucleus/resultpush/internal/destination"
	"github.com/nucleus/resultpush/internal/evaluator"
	"github.com/nucleus/resultpush/internal/jobmanager"
	"github.com/nucleus/resultpush/internal/model"
	"github.com/nucleus/resultpush/internal/pipeline"
	"github.com/nucleus/resultpush/internal/pusherr"
	"github.com/nucleus/resultpush/internal/registry"
)

// Controller is the push orchestrator's public façade.
type Controller struct {
	tables  catalog.Store
	dests   destination.Registry
	eval    evaluator.Evaluator
	jm      jobmanager.Manager
	reg     *registry.Registry
	clock   clock.Clock
	render  model.RenderConfig
	logger  Logger
	wg      sync.WaitGroup
	stopped chan struct{}

	activeMu sync.Mutex
	active   map[jobmanager.Key]model.PushKey
}

// Logger is the minimal surface the Controller needs to report discarded
// completion notifications (§4.4). A nil Logger is replaced by a no-op.
type Logger interface {
	Printf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Printf(string, ...any) {}

// Option configures a Controller at construction.
type Option func(*Controller)

// WithClock overrides the default real wall clock, for deterministic tests.
func WithClock(c clock.Clock) Option {
	return func(ctrl *Controller) { ctrl.clock = c }
}

// WithRenderConfig overrides the default render configuration.
func WithRenderConfig(cfg model.RenderConfig) Option {
	return func(ctrl *Controller) { ctrl.render = cfg }
}

// WithLogger overrides the no-op diagnostic logger.
func WithLogger(l Logger) Option {
	return func(ctrl *Controller) { ctrl.logger = l }
}

// WithRegistry overrides the default unbounded Push Registry, e.g. with
// registry.NewWithRetention for bounded terminal-record retention.
func WithRegistry(r *registry.Registry) Option {
	return func(ctrl *Controller) { ctrl.reg = r }
}

// New wires a Controller from its external collaborators (§6) and starts
// the background goroutine that drains jm's completion channel into the
// Push Registry (the Status Recorder, §4.4).
func New(tables catalog.Store, dests destination.Registry, eval evaluator.Evaluator, jm jobmanager.Manager, opts ...Option) *Controller {
	ctrl := &Controller{
		tables:  tables,
		dests:   dests,
		eval:    eval,
		jm:      jm,
		reg:     registry.New(),
		clock:   clock.Real(),
		render:  model.RenderConfig{Csv: model.DefaultCsvConfig(), Json: model.DefaultJsonConfig()},
		logger:  noopLogger{},
		stopped: make(chan struct{}),
		active:  make(map[jobmanager.Key]model.PushKey),
	}
	for _, opt := range opts {
		opt(ctrl)
	}
	if ctrl.logger == nil {
		ctrl.logger = noopLogger{}
	}

	ctrl.wg.Add(1)
	go ctrl.recordStatuses()

	return ctrl
}

// Close stops the Status Recorder goroutine and closes the underlying Job
// Manager, which cancels every push still running and waits for its
// activity to return. The Status Recorder is stopped first, so the
// completions of pushes canceled this way may not be recorded; callers that
// need their terminal statuses should call CancelAll first and await each
// completion.
func (c *Controller) Close() error {
	close(c.stopped)
	err := c.jm.Close()
	c.wg.Wait()
	return err
}

// recordStatuses is the Status Recorder (§4.4): it drains jm's completion
// channel for as long as the Controller is open, updating the Push
// Registry's record for each completed key exactly once.
func (c *Controller) recordStatuses() {
	defer c.wg.Done()
	for {
		select {
		case completion, ok := <-c.jm.Completions():
			if !ok {
				return
			}
			c.applyCompletion(completion)
		case <-c.stopped:
			return
		}
	}
}

func (c *Controller) applyCompletion(completion jobmanager.Completion) {
	c.activeMu.Lock()
	key, ok := c.active[completion.Key]
	delete(c.active, completion.Key)
	c.activeMu.Unlock()
	if !ok {
		c.logger.Printf("controller: discarding completion for untracked key %q", completion.Key)
		return
	}

	rec, ok := c.reg.Get(key)
	if !ok {
		c.logger.Printf("controller: discarding completion for missing record %s", completion.Key)
		return
	}
	since := rec.Status.Since
	until := c.clock.Now()

	var status model.PushStatus
	switch completion.Outcome.Kind {
	case jobmanager.Completed:
		status = model.Finished(since, until)
	case jobmanager.Canceled:
		status = model.Canceled(since, until)
	case jobmanager.Failed:
		status = model.Failed(since, until, model.ErrorInfo{Message: completion.Outcome.Err.Error()})
	}

	if !c.reg.SetTerminal(key, status) {
		c.logger.Printf("controller: discarding completion for vanished record %s", completion.Key)
	}
}

// Start is §4.1.1: resolve destination and table, pick a matching sink,
// admit the key, build and submit the pipeline.
func (c *Controller) Start(ctx context.Context, tableID model.TableId, columns []model.ColumnMeta, destID model.DestinationId, path string, format model.ResultType, limit *uint64) pusherr.Condition {
	dest, ok, err := c.dests.Lookup(ctx, destID)
	if err != nil || !ok {
		return pusherr.Abnormal(pusherr.DestinationNotFound(destID))
	}

	table, ok, err := c.tables.Lookup(ctx, tableID)
	if err != nil || !ok {
		return pusherr.Abnormal(pusherr.TableNotFound(tableID))
	}

	if _, ok := dest.SinkFor(format); !ok {
		return pusherr.Abnormal(pusherr.FormatNotSupported(dest.Type, format))
	}

	spec := model.PushSpec{Columns: columns, DestinationPath: path, Format: format, Limit: limit}
	return c.admitAndSubmit(model.PushKey{TableID: tableID, DestinationID: destID}, table, dest, spec)
}

// admitAndSubmit is the O(1), I/O-free critical section of §4.1.1 steps
// 4-5, plus pipeline construction, which happens after admission succeeds
// so that a construction failure (a format with no matching sink or no
// renderer) still has a Running record to report against via a trivial
// failing activity (§4.3's initialization-failure ordering). A synchronous
// Evaluate failure takes the same path to Failed, because the activity
// built by pipeline.Build calls Evaluate first and returns its error.
func (c *Controller) admitAndSubmit(key model.PushKey, table *model.TableRef, dest *model.Destination, spec model.PushSpec) pusherr.Condition {
	now := c.clock.Now()
	_, admitted := c.reg.TryAdmit(key, spec, now)
	if !admitted {
		return pusherr.Abnormal(pusherr.PushAlreadyRunning(key.TableID, key.DestinationID))
	}

	traceID := uuid.New().String()
	activity, err := pipeline.Build(table, dest, spec, c.render, c.eval)
	if err != nil {
		activity = failingActivity(err)
	}

	jmKey := key.String()
	c.activeMu.Lock()
	c.active[jmKey] = key
	c.activeMu.Unlock()

	c.logger.Printf("controller: admitted push %s (trace %s)", key, traceID)
	c.jm.Submit(jmKey, activity)
	return pusherr.Normal()
}

// failingActivity is submitted in place of a pipeline that failed to
// build, so the failure still surfaces through the normal completion path
// onto the record that admission already created.
func failingActivity(err error) jobmanager.Activity {
	return func(ctx context.Context) error { return err }
}

// StartMany is §4.1.2: a single destination lookup shared across every
// entry, each entry otherwise following Start's logic independently.
func (c *Controller) StartMany(ctx context.Context, destID model.DestinationId, entries map[model.TableId]model.PushSpec) map[model.TableId]*pusherr.PushError {
	failures := make(map[model.TableId]*pusherr.PushError)

	dest, ok, err := c.dests.Lookup(ctx, destID)
	if err != nil || !ok {
		cause := pusherr.DestinationNotFound(destID)
		for tableID := range entries {
			failures[tableID] = cause
		}
		return failures
	}

	for tableID, spec := range entries {
		table, ok, err := c.tables.Lookup(ctx, tableID)
		if err != nil || !ok {
			failures[tableID] = pusherr.TableNotFound(tableID)
			continue
		}
		if _, ok := dest.SinkFor(spec.Format); !ok {
			failures[tableID] = pusherr.FormatNotSupported(dest.Type, spec.Format)
			continue
		}
		cond := c.admitAndSubmit(model.PushKey{TableID: tableID, DestinationID: destID}, table, dest, spec)
		if !cond.OK() {
			failures[tableID] = cond.Err()
		}
	}
	return failures
}

// Cancel is §4.1.3: a no-op if the activity is not live.
func (c *Controller) Cancel(ctx context.Context, tableID model.TableId, destID model.DestinationId) pusherr.Condition {
	if _, ok, err := c.dests.Lookup(ctx, destID); err != nil || !ok {
		return pusherr.Abnormal(pusherr.DestinationNotFound(destID))
	}
	if _, ok, err := c.tables.Lookup(ctx, tableID); err != nil || !ok {
		return pusherr.Abnormal(pusherr.TableNotFound(tableID))
	}

	key := model.PushKey{TableID: tableID, DestinationID: destID}
	c.jm.Cancel(key.String())
	return pusherr.Normal()
}

// CancelMany is §4.1.4: the destination is resolved once; every id is
// attempted even if some fail to resolve.
func (c *Controller) CancelMany(ctx context.Context, destID model.DestinationId, ids []model.TableId) map[model.TableId]*pusherr.PushError {
	failures := make(map[model.TableId]*pusherr.PushError)

	if _, ok, err := c.dests.Lookup(ctx, destID); err != nil || !ok {
		cause := pusherr.DestinationNotFound(destID)
		for _, id := range ids {
			failures[id] = cause
		}
		return failures
	}

	for _, tableID := range ids {
		if _, ok, err := c.tables.Lookup(ctx, tableID); err != nil || !ok {
			failures[tableID] = pusherr.TableNotFound(tableID)
			continue
		}
		key := model.PushKey{TableID: tableID, DestinationID: destID}
		c.jm.Cancel(key.String())
	}
	return failures
}

// CancelAll is §4.1.5: infallible by construction.
func (c *Controller) CancelAll() {
	c.jm.CancelAll()
}

// DestinationStatus is §4.1.6.
func (c *Controller) DestinationStatus(ctx context.Context, destID model.DestinationId) (map[model.TableId]model.PushRecord, *pusherr.PushError) {
	if _, ok, err := c.dests.Lookup(ctx, destID); err != nil || !ok {
		return nil, pusherr.DestinationNotFound(destID)
	}
	return c.reg.ForDestination(destID), nil
}

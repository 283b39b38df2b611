// Package temporaljm implements jobmanager.Manager on top of a Temporal
// cluster, grounded on the teacher's own Temporal usage: the client/worker
// wiring of platform/ucl-worker/cmd/worker/main.go (client.Dial, worker.New,
// RegisterActivity, worker.InterruptCh) and the workflow/client helpers of
// apps/metadata-api-go/internal/temporal (workflows.go's
// workflow.ExecuteActivity(actCtx, name, args).Get(ctx, &result) pattern,
// and the deprecated temporal/client.go's WorkflowOptions/ExecuteWorkflow
// wrapper).
//
// Temporal activities must be registered with a worker ahead of time by
// name; they cannot be handed a Go closure at submission time the way
// inproc.Manager can. A submitted jobmanager.Activity closure, though,
// closes over this process's own Evaluator/Sink state built by
// internal/pipeline and cannot run on a remote worker process regardless.
// So this Manager registers a single generic activity function once, keeps
// submitted closures in a local registry keyed by push key, and has the
// generic activity look itself up and run in-process — Temporal supplies
// the workflow lifecycle, history and cancellation semantics around that
// closure (each activity runs at most once: its retry policy allows a
// single attempt), but the closure itself never leaves this process.
package temporaljm

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/nucleus/resultpush/internal/jobmanager"
)

const activityName = "RunPushActivity"

// Config configures a Manager's connection to a Temporal cluster.
type Config struct {
	HostPort  string
	Namespace string
	TaskQueue string
}

// Manager is a jobmanager.Manager backed by Temporal workflow executions,
// one workflow per submitted key.
type Manager struct {
	client    client.Client
	worker    worker.Worker
	taskQueue string

	mu        sync.Mutex
	pending   map[jobmanager.Key]jobmanager.Activity
	cancelers map[jobmanager.Key]struct{}
	closed    bool

	completions chan jobmanager.Completion
	wg          sync.WaitGroup
}

// New dials cfg's Temporal cluster, starts a worker registered with the
// single generic push activity and workflow, and returns a ready Manager.
// completionBuffer sizes the completion channel.
func New(cfg Config, completionBuffer int) (*Manager, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
	})
	if err != nil {
		return nil, fmt.Errorf("temporaljm: dial temporal: %w", err)
	}

	m := &Manager{
		client:      c,
		taskQueue:   cfg.TaskQueue,
		pending:     make(map[jobmanager.Key]jobmanager.Activity),
		cancelers:   make(map[jobmanager.Key]struct{}),
		completions: make(chan jobmanager.Completion, completionBuffer),
	}

	w := worker.New(c, cfg.TaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(pushWorkflow, workflow.RegisterOptions{Name: "PushWorkflow"})
	w.RegisterActivityWithOptions(m.runRegisteredActivity, activity.RegisterOptions{Name: activityName})

	if err := w.Start(); err != nil {
		c.Close()
		return nil, fmt.Errorf("temporaljm: start worker: %w", err)
	}
	m.worker = w

	return m, nil
}

// pushWorkflow executes the single generic push activity by key, forwarding
// its error (including a cancellation error, which Temporal surfaces as
// temporal.CanceledError when the workflow is canceled mid-activity).
//
// No HeartbeatTimeout is set: this package's own activity never calls
// activity.RecordHeartbeat, and configuring one without a heartbeat would
// have the server kill the activity at the timeout regardless of
// StartToCloseTimeout. The 24-hour StartToCloseTimeout is therefore the
// only limit this backend puts on a push's run time: a push still running
// after 24 hours is ended by Temporal and reported as Failed. The
// in-process backend has no such limit.
func pushWorkflow(ctx workflow.Context, key jobmanager.Key) error {
	actCtx := workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 24 * time.Hour,
		RetryPolicy: &temporal.RetryPolicy{
			MaximumAttempts: 1,
		},
	})
	return workflow.ExecuteActivity(actCtx, activityName, key).Get(ctx, nil)
}

// runRegisteredActivity looks up the closure Submit stashed under key and
// runs it under the activity's own context, which Temporal cancels when the
// owning workflow is canceled.
func (m *Manager) runRegisteredActivity(ctx context.Context, key jobmanager.Key) error {
	m.mu.Lock()
	act, ok := m.pending[key]
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("temporaljm: no activity registered for key %q", key)
	}
	return act(ctx)
}

// Submit stashes activity under key and starts a Temporal workflow execution
// with WorkflowID key, then watches it in the background for a Completion.
func (m *Manager) Submit(key jobmanager.Key, act jobmanager.Activity) {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}
	m.pending[key] = act
	m.cancelers[key] = struct{}{}
	m.mu.Unlock()

	run, err := m.client.ExecuteWorkflow(context.Background(), client.StartWorkflowOptions{
		ID:        key,
		TaskQueue: m.taskQueue,
	}, "PushWorkflow", key)
	if err != nil {
		m.mu.Lock()
		delete(m.pending, key)
		delete(m.cancelers, key)
		m.mu.Unlock()
		m.completions <- jobmanager.Completion{Key: key, Outcome: jobmanager.Outcome{Kind: jobmanager.Failed, Err: err}}
		return
	}

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		err := run.Get(context.Background(), nil)

		m.mu.Lock()
		delete(m.pending, key)
		delete(m.cancelers, key)
		m.mu.Unlock()

		m.completions <- jobmanager.Completion{Key: key, Outcome: classify(err)}
	}()
}

// classify turns a workflow run's terminal error into an Outcome,
// recognizing Temporal's own cancellation error type.
func classify(err error) jobmanager.Outcome {
	if err == nil {
		return jobmanager.Outcome{Kind: jobmanager.Completed}
	}
	var canceledErr *temporal.CanceledError
	if errors.As(err, &canceledErr) {
		return jobmanager.Outcome{Kind: jobmanager.Canceled}
	}
	return jobmanager.Outcome{Kind: jobmanager.Failed, Err: err}
}

// Cancel requests cancellation of the workflow execution running under key.
// A no-op if key names no live workflow.
func (m *Manager) Cancel(key jobmanager.Key) {
	m.mu.Lock()
	_, ok := m.cancelers[key]
	m.mu.Unlock()
	if !ok {
		return
	}
	_ = m.client.CancelWorkflow(context.Background(), key, "")
}

// CancelAll cancels every workflow execution currently tracked by this
// Manager.
func (m *Manager) CancelAll() {
	m.mu.Lock()
	keys := make([]jobmanager.Key, 0, len(m.cancelers))
	for k := range m.cancelers {
		keys = append(keys, k)
	}
	m.mu.Unlock()

	for _, k := range keys {
		_ = m.client.CancelWorkflow(context.Background(), k, "")
	}
}

// Completions returns the channel every submitted workflow's outcome is
// eventually published to, exactly once.
func (m *Manager) Completions() <-chan jobmanager.Completion {
	return m.completions
}

// Close cancels every tracked workflow, waits for the watcher goroutines to
// observe completion, stops the worker, closes the client, and closes the
// completion channel.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()

	m.CancelAll()
	m.wg.Wait()

	m.worker.Stop()
	m.client.Close()
	close(m.completions)
	return nil
}

package inproc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/nucleus/resultpush/internal/jobmanager"
)

func TestSubmitPublishesCompletedOnSuccess(t *testing.T) {
	m := New(1)
	defer m.Close()

	m.Submit("k1", func(ctx context.Context) error { return nil })

	select {
	case c := <-m.Completions():
		if c.Key != "k1" || c.Outcome.Kind != jobmanager.Completed {
			t.Fatalf("got %+v", c)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for completion")
	}
}

func TestSubmitPublishesFailedOnError(t *testing.T) {
	m := New(1)
	defer m.Close()

	boom := errors.New("boom")
	m.Submit("k1", func(ctx context.Context) error { return boom })

	select {
	case c := <-m.Completions():
		if c.Outcome.Kind != jobmanager.Failed || !errors.Is(c.Outcome.Err, boom) {
			t.Fatalf("got %+v", c)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for completion")
	}
}

func TestCancelStopsActivityAndPublishesCanceled(t *testing.T) {
	m := New(1)
	defer m.Close()

	started := make(chan struct{})
	m.Submit("k1", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})

	<-started
	m.Cancel("k1")

	select {
	case c := <-m.Completions():
		if c.Outcome.Kind != jobmanager.Canceled {
			t.Fatalf("got %+v", c)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for completion")
	}
}

func TestCancelUnknownKeyIsNoOp(t *testing.T) {
	m := New(0)
	defer m.Close()
	m.Cancel("missing")
}

func TestCancelAllCancelsEveryLiveActivity(t *testing.T) {
	m := New(2)
	defer m.Close()

	started := make(chan struct{}, 2)
	activity := func(ctx context.Context) error {
		started <- struct{}{}
		<-ctx.Done()
		return ctx.Err()
	}
	m.Submit("k1", activity)
	m.Submit("k2", activity)
	<-started
	<-started

	m.CancelAll()

	seen := make(map[jobmanager.Key]bool)
	for i := 0; i < 2; i++ {
		select {
		case c := <-m.Completions():
			if c.Outcome.Kind != jobmanager.Canceled {
				t.Fatalf("got %+v", c)
			}
			seen[c.Key] = true
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for completions")
		}
	}
	if !seen["k1"] || !seen["k2"] {
		t.Fatalf("want both keys reported, got %v", seen)
	}
}

func TestCloseCancelsDrainsAndClosesChannel(t *testing.T) {
	m := New(1)

	started := make(chan struct{})
	m.Submit("k1", func(ctx context.Context) error {
		close(started)
		<-ctx.Done()
		return ctx.Err()
	})
	<-started

	if err := m.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// The in-flight activity's completion is still delivered before the
	// channel closes: drain it, then confirm the channel itself is closed.
	<-m.Completions()
	if _, ok := <-m.Completions(); ok {
		t.Fatal("want completions channel closed after Close")
	}
}

func TestSubmitAfterCloseIsDiscarded(t *testing.T) {
	m := New(0)
	m.Close()

	ran := make(chan struct{}, 1)
	m.Submit("k1", func(ctx context.Context) error {
		ran <- struct{}{}
		return nil
	})

	select {
	case <-ran:
		t.Fatal("want activity not run after Close")
	case <-time.After(50 * time.Millisecond):
	}
}

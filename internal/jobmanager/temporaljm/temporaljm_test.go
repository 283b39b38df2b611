package temporaljm

import (
	"errors"
	"testing"

	"go.temporal.io/sdk/temporal"

	"github.com/nucleus/resultpush/internal/jobmanager"
)

func TestClassifyNilIsCompleted(t *testing.T) {
	outcome := classify(nil)
	if outcome.Kind != jobmanager.Completed {
		t.Fatalf("got Kind %v, want Completed", outcome.Kind)
	}
}

func TestClassifyCanceledErrorIsCanceled(t *testing.T) {
	outcome := classify(temporal.NewCanceledError())
	if outcome.Kind != jobmanager.Canceled {
		t.Fatalf("got Kind %v, want Canceled", outcome.Kind)
	}
}

func TestClassifyOtherErrorIsFailed(t *testing.T) {
	want := errors.New("boom")
	outcome := classify(want)
	if outcome.Kind != jobmanager.Failed {
		t.Fatalf("got Kind %v, want Failed", outcome.Kind)
	}
	if outcome.Err != want {
		t.Fatalf("got Err %v, want %v", outcome.Err, want)
	}
}

func TestRunRegisteredActivityUnknownKey(t *testing.T) {
	m := &Manager{pending: make(map[jobmanager.Key]jobmanager.Activity)}
	if err := m.runRegisteredActivity(nil, "missing"); err == nil {
		t.Fatal("want error for unregistered key, got nil")
	}
}

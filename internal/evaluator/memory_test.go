package evaluator

import (
	"context"
	"testing"

	"github.com/nucleus/resultpush/internal/model"
)

func TestMemoryEvaluateUnknownQuery(t *testing.T) {
	m := NewMemory()
	_, err := m.Evaluate(context.Background(), "missing")
	if err == nil {
		t.Fatal("expected error for unknown query")
	}
}

func TestMemoryEvaluateStreamsSeededRows(t *testing.T) {
	m := NewMemory()
	want := []model.Row{{"a": 1}, {"a": 2}, {"a": 3}}
	m.Seed("q", want)

	stream, err := m.Evaluate(context.Background(), "q")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	defer stream.Close()

	var got []model.Row
	for stream.Next(context.Background()) {
		got = append(got, stream.Value())
	}
	if err := stream.Err(); err != nil {
		t.Fatalf("stream error: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("got %d rows, want %d", len(got), len(want))
	}
}

func TestMemoryEvaluateStopsOnCanceledContext(t *testing.T) {
	m := NewMemory()
	m.Seed("q", []model.Row{{"a": 1}, {"a": 2}, {"a": 3}})

	stream, err := m.Evaluate(context.Background(), "q")
	if err != nil {
		t.Fatalf("Evaluate: %v", err)
	}
	defer stream.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if stream.Next(ctx) {
		t.Fatal("expected Next to return false on an already-canceled context")
	}
	if stream.Err() != context.Canceled {
		t.Fatalf("Err() = %v, want context.Canceled", stream.Err())
	}
}

package destination

import (
	"context"
	"testing"

	"github.com/nucleus/resultpush/internal/model"
)

func TestMemoryRegisterAndLookup(t *testing.T) {
	m := NewMemory()
	dest := model.Destination{
		ID:   "warehouse",
		Type: model.DestinationTypeId{Name: "objectstore", Version: "v1"},
		Sinks: []model.Sink{
			{Format: model.ResultTypeCsv},
		},
	}
	m.Register(dest)

	got, ok, err := m.Lookup(context.Background(), "warehouse")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if !ok {
		t.Fatal("expected destination to be found")
	}
	if _, ok := got.SinkFor(model.ResultTypeCsv); !ok {
		t.Fatal("expected csv sink to be present")
	}
}

func TestMemoryLookupMissing(t *testing.T) {
	m := NewMemory()
	_, ok, err := m.Lookup(context.Background(), "missing")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if ok {
		t.Fatal("expected destination not to be found")
	}
}

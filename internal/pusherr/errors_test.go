package pusherr

import (
	"testing"

	"github.com/nucleus/resultpush/internal/model"
)

func TestConditionNormalIsOK(t *testing.T) {
	c := Normal()
	if !c.OK() {
		t.Fatal("want OK")
	}
	if c.Err() != nil {
		t.Fatalf("want nil error, got %v", c.Err())
	}
}

func TestConditionAbnormalIsNotOK(t *testing.T) {
	c := Abnormal(TableNotFound(model.TableId("orders")))
	if c.OK() {
		t.Fatal("want not OK")
	}
	if c.Err() == nil {
		t.Fatal("want non-nil error")
	}
}

func TestPushErrorMessages(t *testing.T) {
	cases := []struct {
		name string
		err  *PushError
		want string
	}{
		{"destination not found", DestinationNotFound(model.DestinationId("bucket")), "destination not found: bucket"},
		{"table not found", TableNotFound(model.TableId("orders")), "table not found: orders"},
		{"format not supported", FormatNotSupported(model.DestinationTypeId{Name: "object.minio", Version: "v1"}, model.ResultType("parquet")), "destination object.minio/v1 does not support format parquet"},
		{"push already running", PushAlreadyRunning(model.TableId("orders"), model.DestinationId("bucket")), "push already running for table orders, destination bucket"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.err.Error(); got != tc.want {
				t.Fatalf("got %q, want %q", got, tc.want)
			}
		})
	}
}

func TestUnknownCodeHasFallbackMessage(t *testing.T) {
	err := &PushError{Code: Code(99)}
	if got := err.Error(); got != "unknown push error" {
		t.Fatalf("got %q", got)
	}
}

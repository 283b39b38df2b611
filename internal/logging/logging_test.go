package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestLevelFilteringSuppressesBelowConfiguredLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("warn", &buf)

	l.Debug("should not log")
	l.Info("should not log")
	l.Warn("should log warn")
	l.Error("should log error")

	out := buf.String()
	if strings.Contains(out, "should not log") {
		t.Fatalf("want debug/info suppressed, got %q", out)
	}
	if !strings.Contains(out, "[WARN] should log warn") {
		t.Fatalf("want warn line present, got %q", out)
	}
	if !strings.Contains(out, "[ERROR] should log error") {
		t.Fatalf("want error line present, got %q", out)
	}
}

func TestNewDefaultsToInfoForUnrecognizedLevel(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("not-a-level", &buf)

	l.Debug("hidden")
	l.Info("shown")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("want debug suppressed at default info level, got %q", out)
	}
	if !strings.Contains(out, "[INFO] shown") {
		t.Fatalf("want info line present, got %q", out)
	}
}

func TestPrintfRoutesThroughWarn(t *testing.T) {
	var buf bytes.Buffer
	l := NewWithWriter("warn", &buf)

	l.Printf("trace %s", "id-1")

	if !strings.Contains(buf.String(), "[WARN] trace id-1") {
		t.Fatalf("got %q", buf.String())
	}
}

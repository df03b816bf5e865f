package logging

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// decode parses the single JSON entry written to buf.
func decode(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var entry map[string]any
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log line %q is not JSON: %v", buf.String(), err)
	}
	return entry
}

func TestNewLoggerTagsComponent(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewLogger(&buf, "api").Info("request",
		String("operation", "compare"),
		Int("status", 200),
		Float64("elapsed_ms", 12.5))

	entry := decode(t, &buf)
	want := map[string]any{
		"level":      "info",
		"message":    "request",
		"component":  "api",
		"operation":  "compare",
		"status":     float64(200),
		"elapsed_ms": 12.5,
	}
	for k, v := range want {
		if entry[k] != v {
			t.Errorf("%s = %v, want %v", k, entry[k], v)
		}
	}
	if _, ok := entry["time"]; !ok {
		t.Error("entry has no timestamp")
	}
}

func TestLevels(t *testing.T) {
	t.Parallel()
	cause := errors.New("connection refused")
	tests := []struct {
		name  string
		log   func(Logger)
		level string
	}{
		{"debug", func(l Logger) { l.Debug("stale response discarded") }, "debug"},
		{"info", func(l Logger) { l.Info("transition") }, "info"},
		{"warn", func(l Logger) { l.Warn("search failed") }, "warn"},
		{"error", func(l Logger) { l.Error("upload failed", cause) }, "error"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var buf bytes.Buffer
			tt.log(NewLogger(&buf, "workflow").WithLevel(zerolog.DebugLevel))
			entry := decode(t, &buf)
			if entry["level"] != tt.level {
				t.Errorf("level = %v, want %s", entry["level"], tt.level)
			}
			if tt.level == "error" && entry["error"] != cause.Error() {
				t.Errorf("error = %v, want %q", entry["error"], cause.Error())
			}
		})
	}
}

func TestApplyFieldTypes(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	NewLogger(&buf, "test").Info("fields",
		Field{Key: "ticket", Value: uint64(7)},
		Field{Key: "size", Value: int64(1024)},
		Field{Key: "auto", Value: true},
		Field{Key: "ids", Value: []string{"duke_main", "unc_rex"}},
		Err(errors.New("boom")))

	entry := decode(t, &buf)
	if entry["ticket"] != float64(7) || entry["size"] != float64(1024) || entry["auto"] != true {
		t.Errorf("scalar fields not encoded: %v", entry)
	}
	if ids, ok := entry["ids"].([]any); !ok || len(ids) != 2 {
		t.Errorf("ids = %v, want a two-element list", entry["ids"])
	}
	if entry["error"] != "boom" {
		t.Errorf("error = %v, want boom", entry["error"])
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"debug", zerolog.DebugLevel},
		{" WARN ", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"disabled", zerolog.Disabled},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestWithLevelFilters(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	l := NewLogger(&buf, "tui").WithLevel(zerolog.WarnLevel)
	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("shown")

	if n := strings.Count(buf.String(), "\n"); n != 1 {
		t.Fatalf("got %d entries, want 1:\n%s", n, buf.String())
	}
	if !strings.Contains(buf.String(), "shown") {
		t.Errorf("warn entry missing:\n%s", buf.String())
	}
}

func TestNop(t *testing.T) {
	t.Parallel()
	var l Logger = Nop()
	l.Info("ignored", String("k", "v"))
	l.Error("ignored", errors.New("x"))
}

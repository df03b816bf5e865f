package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/agbru/billcheck/internal/assessment"
	"github.com/agbru/billcheck/internal/billing"
	apperrors "github.com/agbru/billcheck/internal/errors"
	"github.com/agbru/billcheck/internal/orchestration"
)

func sweepResults() []orchestration.SweepResult {
	cheap := sampleResult()
	cheap.HospitalName, cheap.HospitalID = "WakeMed North Hospital", "wakemed_north"
	cheap.TotalFairValue = billing.Ptr(180.0)
	return []orchestration.SweepResult{
		{Facility: billing.Facility{ID: "wakemed_north", Name: "WakeMed North Hospital"}, Result: cheap, Summary: assessment.Summarize(cheap), Duration: 15 * time.Millisecond},
		{Facility: billing.Facility{ID: "duke_main", Name: "Duke University Hospital"}, Result: sampleResult(), Summary: assessment.Summarize(sampleResult()), Duration: 20 * time.Millisecond},
		{Facility: billing.Facility{ID: "unc_rex", Name: "UNC Rex Hospital"}, Err: errors.New("compare failed (HTTP 503): busy")},
	}
}

func TestPresentComparisonTable(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	CLIResultPresenter{}.PresentComparisonTable(sweepResults(), &out)
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 5 {
		t.Fatalf("lines = %d:\n%s", len(lines), out.String())
	}
	if !strings.Contains(lines[1], "Hospital") || !strings.Contains(lines[1], "Fair value") {
		t.Errorf("header = %q", lines[1])
	}
	if !strings.Contains(lines[2], "WakeMed North Hospital") || !strings.Contains(lines[2], "$180.00") {
		t.Errorf("first row = %q", lines[2])
	}
	if !strings.Contains(lines[4], "Failed (compare failed (HTTP 503): busy)") {
		t.Errorf("failed row = %q", lines[4])
	}
	// Columns line up because no color codes are emitted.
	col := strings.Index(lines[2], "$180.00") + len("$180.00")
	if strings.Index(lines[3], "$244.00")+len("$244.00") != col {
		t.Errorf("fair value column misaligned:\n%s\n%s", lines[2], lines[3])
	}
}

func TestPresentBest(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	CLIResultPresenter{}.PresentBest(sweepResults()[0], &out)
	got := out.String()
	if !strings.Contains(got, "Lowest fair value: WakeMed North Hospital ($180.00)") {
		t.Errorf("best line missing:\n%s", got)
	}
	if !strings.Contains(got, "--- Assessment: WakeMed North Hospital ---") {
		t.Errorf("detail missing:\n%s", got)
	}
}

func TestPadRight(t *testing.T) {
	t.Parallel()
	if got := padRight("ab", 3); got != "ab   " {
		t.Errorf("padRight = %q", got)
	}
	if got := padRight("ab", -1); got != "ab" {
		t.Errorf("padRight negative = %q", got)
	}
}

func TestHandleError(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		err      error
		wantCode int
		wantOut  string
	}{
		{"nil", nil, apperrors.ExitSuccess, ""},
		{"canceled", fmt.Errorf("run: %w", context.Canceled), apperrors.ExitErrorCanceled, "Canceled"},
		{"unreachable", apperrors.TransportError{Operation: "health", Message: "connection refused"}, apperrors.ExitErrorTransport, "Is the backend running?"},
		{"http", apperrors.TransportError{Operation: "compare", StatusCode: 500, Message: "boom"}, apperrors.ExitErrorTransport, "HTTP 500"},
		{"validation", apperrors.ValidationError{Field: "file", Message: "only PDF files are accepted"}, apperrors.ExitErrorValidation, "only PDF"},
		{"config", apperrors.NewConfigError("bad flag"), apperrors.ExitErrorConfig, "bad flag"},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var out bytes.Buffer
			if code := (CLIResultPresenter{}).HandleError(tt.err, &out); code != tt.wantCode {
				t.Errorf("code = %d, want %d", code, tt.wantCode)
			}
			if tt.wantOut != "" && !strings.Contains(out.String(), tt.wantOut) {
				t.Errorf("output = %q, want %q", out.String(), tt.wantOut)
			}
			if tt.err == nil && out.Len() != 0 {
				t.Errorf("nil error printed %q", out.String())
			}
		})
	}
}

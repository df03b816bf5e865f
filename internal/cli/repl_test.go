package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/agbru/billcheck/internal/api"
	"github.com/agbru/billcheck/internal/api/apitest"
	"github.com/agbru/billcheck/internal/workflow"
)

func newTestREPL(t *testing.T, input string) (*REPL, *bytes.Buffer, *apitest.Backend) {
	t.Helper()
	backend := apitest.New()
	srv := backend.Start()
	t.Cleanup(srv.Close)

	ctrl := workflow.NewController(api.NewClient(api.WithBaseURL(srv.URL)))
	r := NewREPL(ctrl, REPLConfig{Timeout: 10 * time.Second})
	r.readFile = func(string) ([]byte, error) { return []byte("%PDF-1.4"), nil }
	var out bytes.Buffer
	r.SetInput(strings.NewReader(input))
	r.SetOutput(&out)
	return r, &out, backend
}

func TestREPLFullSession(t *testing.T) {
	t.Parallel()
	report := filepath.Join(t.TempDir(), "report.txt")
	r, out, backend := newTestREPL(t, strings.Join([]string{
		"upload bill.pdf",
		"next",
		"search wake",
		"select wakemed_north",
		"compare",
		"results",
		"save " + report,
		"status",
		"quit",
	}, "\n")+"\n")

	r.Start(context.Background())
	got := out.String()

	for _, want := range []string{
		"Extracted 5 line items.",
		"Detected hospital: Duke University Hospital (auto-selected)",
		"wakemed_north",
		"Selected WakeMed North Hospital.",
		"--- Assessment: WakeMed North Hospital ---",
		"Report saved to: " + report,
		"Step:        results",
		"Goodbye!",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("session output missing %q", want)
		}
	}
	if _, err := os.Stat(report); err != nil {
		t.Errorf("report not saved: %v", err)
	}
	if backend.Calls(api.OpCompare) != 1 {
		t.Errorf("compare calls = %d", backend.Calls(api.OpCompare))
	}
	if st := r.ctrl.State(); st.Result == nil || st.Result.HospitalID != "wakemed_north" {
		t.Errorf("final result = %+v", st.Result)
	}
}

func TestREPLEditing(t *testing.T) {
	t.Parallel()
	r, out, _ := newTestREPL(t, strings.Join([]string{
		"upload bill.pdf",
		"edit 1 400 2",
		"rm 5",
		"add 12.5 Parking",
		"edit 9 1",
		"edit 1 -5",
		"edit x 1",
		"items",
	}, "\n")+"\n")

	r.Start(context.Background())
	got := out.String()

	s := r.ctrl.State()
	if len(s.Items) != 5 || !s.Edited {
		t.Fatalf("items = %d edited = %v", len(s.Items), s.Edited)
	}
	if s.Items[0].Amount != 400 || s.Items[0].Quantity != 2 {
		t.Errorf("edited item = %+v", s.Items[0])
	}
	if s.Items[4].Description != "Parking" || s.Items[4].Quantity != 1 {
		t.Errorf("added item = %+v", s.Items[4])
	}
	for _, want := range []string{"No item 9 (there are 5).", "Error: validation error", "invalid item number: x", "Parking"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if !strings.Contains(got, "Goodbye!") {
		t.Error("EOF should end the session")
	}
}

func TestREPLPreconditionsAndUsage(t *testing.T) {
	t.Parallel()
	r, out, backend := newTestREPL(t, strings.Join([]string{
		"compare",
		"next",
		"results",
		"save",
		"save out.txt",
		"upload",
		"select",
		"frobnicate",
		"help",
		"health",
		"exit",
	}, "\n")+"\n")

	r.Start(context.Background())
	got := out.String()
	for _, want := range []string{
		"Error: cannot compare",
		"No results yet.",
		"Usage: save <path>",
		"Nothing to save.",
		"Usage: upload <path>",
		"Usage: select <id>",
		"Unknown command: frobnicate",
		"Available commands:",
		"Backend status: healthy",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if backend.Calls(api.OpCompare) != 0 {
		t.Error("compare reached the backend without a selection")
	}
}

func TestREPLClearSelection(t *testing.T) {
	t.Parallel()
	r, out, backend := newTestREPL(t, "upload bill.pdf\nnext\nselect none\ncompare\n")
	r.Start(context.Background())

	got := out.String()
	for _, want := range []string{"Selection cleared.", "Error: cannot compare"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if s := r.ctrl.State(); s.Selected != nil || s.AutoSelected {
		t.Errorf("selection survived: %+v", s.Selected)
	}
	if backend.Calls(api.OpCompare) != 0 {
		t.Error("compare reached the backend without a selection")
	}
}

func TestREPLResetKeepsFacilities(t *testing.T) {
	t.Parallel()
	r, out, _ := newTestREPL(t, "upload bill.pdf\nreset\nstatus\n")
	r.Start(context.Background())

	s := r.ctrl.State()
	if !s.IsEmpty() {
		t.Errorf("state after reset is not empty: step=%s items=%d", s.Step, len(s.Items))
	}
	if s.Facilities.Len() != len(apitest.Facilities) {
		t.Errorf("facilities = %d after reset", s.Facilities.Len())
	}
	if !strings.Contains(out.String(), "Workflow reset.") {
		t.Errorf("output = %s", out.String())
	}
}

func TestREPLCanceledContext(t *testing.T) {
	t.Parallel()
	r, out, _ := newTestREPL(t, "status\n")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	r.Start(ctx)
	if strings.Contains(out.String(), "Current state") {
		t.Error("commands ran after cancellation")
	}
}

package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/agbru/billcheck/internal/api"
	"github.com/agbru/billcheck/internal/api/apitest"
	"github.com/agbru/billcheck/internal/billing"
	"github.com/agbru/billcheck/internal/config"
	apperrors "github.com/agbru/billcheck/internal/errors"
	"github.com/agbru/billcheck/internal/metrics"
	"github.com/agbru/billcheck/internal/ui"
	"github.com/agbru/billcheck/internal/workflow"
)

func TestMain(m *testing.M) {
	ui.InitTheme(true)
	initTUIStyles()
	os.Exit(m.Run())
}

func keyPress(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

// settle runs cmd and every follow-up command synchronously, feeding the
// results back into the model. Only workflow commands are expected.
func settle(t *testing.T, m Model, cmd tea.Cmd) Model {
	t.Helper()
	for cmd != nil {
		switch msg := cmd().(type) {
		case eventMsg:
			m, cmd = m.dispatch(msg.Event)
		case fileReadMsg, reportSavedMsg:
			var next tea.Model
			next, cmd = m.Update(msg)
			m = next.(Model)
		default:
			t.Fatalf("unexpected message %T", msg)
		}
	}
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		next, cmd := m.Update(keyPress(k))
		m = settle(t, next.(Model), cmd)
	}
	return m
}

func newTestModel(t *testing.T, cfg config.AppConfig) (Model, *apitest.Backend) {
	t.Helper()
	backend := apitest.New()
	srv := backend.Start()
	t.Cleanup(srv.Close)

	m := NewModel(context.Background(), Options{
		Client:  api.NewClient(api.WithBaseURL(srv.URL)),
		Config:  cfg,
		Version: "test",
	})
	t.Cleanup(m.cancel)
	m.readFile = func(string) ([]byte, error) { return []byte("%PDF-1.4"), nil }

	next, _ := m.Update(tea.WindowSizeMsg{Width: 120, Height: 40})
	m = next.(Model)
	for _, eff := range m.startup {
		m = settle(t, m, m.execute(eff))
	}
	return m, backend
}

func upload(t *testing.T, m Model, name string) Model {
	t.Helper()
	m.input.SetValue(name)
	return press(t, m, "enter")
}

func TestModelStartup(t *testing.T) {
	t.Parallel()
	m, backend := newTestModel(t, config.AppConfig{})

	s := m.State()
	if !s.FacilitiesLoaded || s.Facilities.Len() != len(apitest.Facilities) {
		t.Fatalf("facilities = %d loaded=%t", s.Facilities.Len(), s.FacilitiesLoaded)
	}
	if !s.Backend.Checked || !s.Backend.Status.Healthy() {
		t.Errorf("backend = %+v", s.Backend)
	}
	if m.mode != inputFile {
		t.Errorf("mode = %v, want file input", m.mode)
	}
	if backend.Calls(api.OpHealth) != 1 || backend.Calls(api.OpSearch) != 1 {
		t.Errorf("health=%d search=%d", backend.Calls(api.OpHealth), backend.Calls(api.OpSearch))
	}
}

func TestModelFullWorkflow(t *testing.T) {
	t.Parallel()
	report := filepath.Join(t.TempDir(), "out", "report.xlsx")
	m, backend := newTestModel(t, config.AppConfig{OutputFile: report})

	m = upload(t, m, "bill.pdf")
	s := m.State()
	if s.Step != workflow.StepReview || len(s.Items) != 5 {
		t.Fatalf("step = %s items = %d err = %v", s.Step, len(s.Items), m.err)
	}
	if s.Selected == nil || s.Selected.ID != "duke_main" || !s.AutoSelected {
		t.Fatalf("selected = %+v", s.Selected)
	}
	if !strings.Contains(m.View(), "Hospital detected: Duke University Hospital") {
		t.Errorf("review view missing detection:\n%s", m.View())
	}

	m = press(t, m, "enter")
	if m.State().Step != workflow.StepHospital {
		t.Fatalf("step = %s, want hospital", m.State().Step)
	}
	if m.facilityCursor != 0 {
		t.Errorf("cursor = %d, want the selected facility", m.facilityCursor)
	}

	m = press(t, m, "c")
	s = m.State()
	if s.Step != workflow.StepResults || s.Result == nil || s.Result.HospitalID != "duke_main" {
		t.Fatalf("step = %s result = %v err = %v", s.Step, s.Result, m.err)
	}
	if backend.Calls(api.OpCompare) != 1 {
		t.Errorf("compare calls = %d", backend.Calls(api.OpCompare))
	}
	if view := m.View(); !strings.Contains(view, "Assessment: Duke University Hospital") {
		t.Errorf("results view:\n%s", view)
	}

	m = press(t, m, "s")
	if !strings.Contains(m.notice, "Report saved to "+report) {
		t.Errorf("notice = %q err = %v", m.notice, m.err)
	}
	if _, err := os.Stat(report); err != nil {
		t.Errorf("report not written: %v", err)
	}

	m = press(t, m, "r")
	if s := m.State(); s.Step != workflow.StepUpload || len(s.Items) != 0 || s.Result != nil {
		t.Fatalf("after reset: %+v", s)
	}
	if !m.State().FacilitiesLoaded {
		t.Error("reset dropped the facility list")
	}
	if m.mode != inputFile {
		t.Error("reset should focus the file input")
	}
}

func TestModelRejectsNonPDF(t *testing.T) {
	t.Parallel()
	m, backend := newTestModel(t, config.AppConfig{})

	m = upload(t, m, "bill.txt")
	var ve apperrors.ValidationError
	if !errors.As(m.err, &ve) {
		t.Fatalf("err = %v, want validation error", m.err)
	}
	if backend.Calls(api.OpUpload) != 0 {
		t.Error("invalid file was uploaded")
	}
	if m.State().Step != workflow.StepUpload {
		t.Errorf("step = %s", m.State().Step)
	}
}

func TestModelReadFailure(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t, config.AppConfig{})
	m.readFile = func(string) ([]byte, error) { return nil, os.ErrNotExist }

	m = upload(t, m, "missing.pdf")
	if m.err == nil || !strings.Contains(m.View(), "file does not exist") {
		t.Errorf("err = %v", m.err)
	}
}

func TestModelUploadFailureStaysOnUpload(t *testing.T) {
	t.Parallel()
	m, backend := newTestModel(t, config.AppConfig{})
	backend.Fail(api.OpExtract, 500, "parser crashed")

	m = upload(t, m, "bill.pdf")
	s := m.State()
	if s.Step != workflow.StepUpload || s.UploadErr == nil || s.Busy() {
		t.Fatalf("step = %s uploadErr = %v busy = %t", s.Step, s.UploadErr, s.Busy())
	}
	if !strings.Contains(m.View(), "Upload failed") {
		t.Errorf("view:\n%s", m.View())
	}
}

func TestModelReviewEditing(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t, config.AppConfig{})
	m = upload(t, m, "bill.pdf")

	m = press(t, m, "down", "e")
	if m.mode != inputAmount || m.input.Value() != "60.00 1" {
		t.Fatalf("mode = %v value = %q", m.mode, m.input.Value())
	}
	m.input.SetValue("75 2")
	m = press(t, m, "enter")
	s := m.State()
	if !s.Edited || s.Items[1].Amount != 75 || s.Items[1].Quantity != 2 {
		t.Fatalf("item = %+v edited = %t", s.Items[1], s.Edited)
	}

	m = press(t, m, "x")
	if len(m.State().Items) != 4 {
		t.Errorf("items = %d after remove", len(m.State().Items))
	}

	m = press(t, m, "e")
	m.input.SetValue("abc")
	m = press(t, m, "enter")
	if m.err == nil || m.mode != inputAmount {
		t.Errorf("bad amount accepted: err = %v mode = %v", m.err, m.mode)
	}
	m = press(t, m, "esc")
	if m.mode != inputNone {
		t.Error("esc should leave the amount input")
	}
}

func TestModelSearchDebounce(t *testing.T) {
	t.Parallel()
	m, backend := newTestModel(t, config.AppConfig{})
	m = upload(t, m, "bill.pdf")
	m = press(t, m, "enter", "/")
	if m.mode != inputSearch {
		t.Fatalf("mode = %v", m.mode)
	}

	// Typing only schedules debounce ticks; nothing is sent yet.
	for _, r := range "wake" {
		next, _ := m.Update(keyPress(string(r)))
		m = next.(Model)
	}
	if got := backend.Calls(api.OpSearch); got != 1 {
		t.Fatalf("search calls while typing = %d, want 1", got)
	}

	stale := m.searchTag - 1
	next, cmd := m.Update(searchDebounceMsg{Tag: stale})
	if cmd != nil {
		t.Fatal("an outdated debounce tick issued a search")
	}
	m = next.(Model)

	next, cmd = m.Update(searchDebounceMsg{Tag: m.searchTag})
	m = settle(t, next.(Model), cmd)
	s := m.State()
	if s.Query != "wake" || s.Facilities.Len() == 0 {
		t.Fatalf("query = %q facilities = %d", s.Query, s.Facilities.Len())
	}
	for _, f := range s.Facilities.Facilities() {
		if !strings.Contains(strings.ToLower(f.Name+f.City), "wake") {
			t.Errorf("unexpected facility %s", f.Name)
		}
	}
	if backend.Calls(api.OpSearch) != 2 {
		t.Errorf("search calls = %d, want 2", backend.Calls(api.OpSearch))
	}
}

func TestModelSelectAndCompare(t *testing.T) {
	t.Parallel()
	m, backend := newTestModel(t, config.AppConfig{RadiusMiles: 25, NoCMS: true})
	backend.SetFixture("unknown.pdf", apitest.Fixture{
		LineItems: []billing.LineItem{{Description: "Visit", Quantity: 1, Amount: 200}},
	})
	m = upload(t, m, "unknown.pdf")
	if m.State().Selected != nil {
		t.Fatal("nothing should be selected without a detection")
	}
	m = press(t, m, "enter")

	m = press(t, m, "c")
	var pe apperrors.PreconditionError
	if !errors.As(m.err, &pe) || m.State().Step != workflow.StepHospital {
		t.Fatalf("compare without selection: err = %v", m.err)
	}

	m = press(t, m, "down", "enter")
	sel := m.State().Selected
	if sel == nil || sel.ID != apitest.Facilities[1].ID {
		t.Fatalf("selected = %+v", sel)
	}
	if m.err != nil {
		t.Errorf("err not cleared: %v", m.err)
	}

	m = press(t, m, "enter")
	if m.State().Selected != nil {
		t.Fatal("enter on the selected row should clear the selection")
	}
	m = press(t, m, "enter", "c")
	if s := m.State(); s.Step != workflow.StepResults || s.Result.HospitalID != apitest.Facilities[1].ID {
		t.Fatalf("step = %s err = %v", s.Step, m.err)
	}
}

func TestModelBack(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t, config.AppConfig{})
	m = upload(t, m, "bill.pdf")
	m = press(t, m, "enter", "b")
	if m.State().Step != workflow.StepReview {
		t.Fatalf("step = %s, want review", m.State().Step)
	}
	if m.State().Selected == nil {
		t.Error("going back dropped the selection")
	}
}

func TestModelDiscardsStaleResponses(t *testing.T) {
	t.Parallel()
	rec := metrics.NewRecorder()
	m, _ := newTestModel(t, config.AppConfig{})
	m.metrics = rec
	m = upload(t, m, "bill.pdf")
	m = press(t, m, "enter")

	// Two searches in flight; only the newer one may apply.
	m, older := m.dispatch(workflow.SearchRequested{Query: "duke"})
	m, newer := m.dispatch(workflow.SearchRequested{Query: "wake"})
	m = settle(t, m, newer)
	olderMsg := older().(eventMsg)
	m, cmd := m.dispatch(olderMsg.Event)
	if cmd != nil {
		t.Fatal("stale response scheduled more work")
	}
	if q := m.State().Query; q != "wake" {
		t.Errorf("query = %q, want wake", q)
	}
	got, err := testutil.GatherAndCount(rec.Registry(), "billcheck_stale_responses_total")
	if err != nil || got != 1 {
		t.Errorf("stale series = %d, err = %v", got, err)
	}
}

func TestModelContextCancelled(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t, config.AppConfig{})
	next, cmd := m.Update(ContextCancelledMsg{Err: context.Canceled})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if code := next.(Model).exitCode; code != apperrors.ExitErrorCanceled {
		t.Errorf("exit code = %d", code)
	}
}

func TestModelQuit(t *testing.T) {
	t.Parallel()
	m, _ := newTestModel(t, config.AppConfig{})
	m.blurInput()
	_, cmd := m.Update(keyPress("q"))
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestParseAmount(t *testing.T) {
	t.Parallel()
	base := billing.LineItem{Description: "Visit", Quantity: 1, Amount: 10}
	tests := []struct {
		in      string
		amount  float64
		qty     int
		wantErr bool
	}{
		{"12.5", 12.5, 1, false},
		{"$40 3", 40, 3, false},
		{"-5", -5, 1, false},
		{"", 0, 0, true},
		{"abc", 0, 0, true},
		{"10 1.5", 0, 0, true},
		{"1 2 3", 0, 0, true},
	}
	for _, tt := range tests {
		got, err := parseAmount(tt.in, base)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseAmount(%q) err = %v", tt.in, err)
			continue
		}
		if !tt.wantErr && (got.Amount != tt.amount || got.Quantity != tt.qty) {
			t.Errorf("parseAmount(%q) = %+v", tt.in, got)
		}
	}
}

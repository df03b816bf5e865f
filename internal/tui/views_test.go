package tui

import (
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/billcheck/internal/api"
	"github.com/agbru/billcheck/internal/workflow"
)

func TestWindow(t *testing.T) {
	t.Parallel()
	tests := []struct {
		cursor, n, rows int
		start, end      int
	}{
		{0, 5, 10, 0, 5},
		{0, 20, 5, 0, 5},
		{10, 20, 5, 8, 13},
		{19, 20, 5, 15, 20},
		{3, 20, 0, 3, 4},
	}
	for _, tt := range tests {
		start, end := window(tt.cursor, tt.n, tt.rows)
		if start != tt.start || end != tt.end {
			t.Errorf("window(%d, %d, %d) = [%d, %d), want [%d, %d)",
				tt.cursor, tt.n, tt.rows, start, end, tt.start, tt.end)
		}
		if tt.n > 0 && (tt.cursor < start || tt.cursor >= end) {
			t.Errorf("cursor %d not visible in [%d, %d)", tt.cursor, start, end)
		}
	}
}

func TestHeaderView(t *testing.T) {
	t.Parallel()
	h := NewHeaderModel("v1.2.0")
	h.SetWidth(100)

	s := workflow.New()
	s.Step = workflow.StepHospital
	s.Backend = workflow.BackendStatus{Checked: true, Status: api.HealthStatus{Status: "healthy"}}
	h.SetState(s)

	view := h.View()
	for _, want := range []string{"BillCheck v1.2.0", "1 upload", "3 hospital", "4 results", "backend: healthy"} {
		if !strings.Contains(view, want) {
			t.Errorf("header missing %q:\n%s", want, view)
		}
	}
	if w := lipgloss.Width(view); w != 100 {
		t.Errorf("header width = %d, want 100", w)
	}

	s.Backend = workflow.BackendStatus{Checked: true, Err: errors.New("refused")}
	h.SetState(s)
	if !strings.Contains(h.View(), "backend: down") {
		t.Errorf("down backend not shown:\n%s", h.View())
	}
}

func TestHeaderHidesDevVersion(t *testing.T) {
	t.Parallel()
	h := NewHeaderModel("dev")
	h.SetWidth(80)
	if strings.Contains(h.View(), "dev") {
		t.Error("dev version should not be shown")
	}
}

func TestFooterFollowsStep(t *testing.T) {
	t.Parallel()
	m := Model{keymap: DefaultKeyMap(), state: workflow.New()}
	if !strings.Contains(m.footerView(), "check backend") {
		t.Errorf("upload footer = %q", m.footerView())
	}
	m.state.Step = workflow.StepResults
	if f := m.footerView(); !strings.Contains(f, "save report") || strings.Contains(f, "compare") {
		t.Errorf("results footer = %q", f)
	}
	m.mode = inputSearch
	if f := m.footerView(); !strings.Contains(f, "cancel") || strings.Contains(f, "save report") {
		t.Errorf("input footer = %q", f)
	}
}

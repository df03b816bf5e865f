package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/billcheck/internal/format"
	"github.com/agbru/billcheck/internal/workflow"
)

var headerSteps = []workflow.Step{
	workflow.StepUpload,
	workflow.StepReview,
	workflow.StepHospital,
	workflow.StepResults,
}

// HeaderModel renders the top bar: title, version, step trail, backend
// status and session time.
type HeaderModel struct {
	startTime time.Time
	version   string
	width     int
	step      workflow.Step
	backend   workflow.BackendStatus
}

// NewHeaderModel creates a new header.
func NewHeaderModel(version string) HeaderModel {
	return HeaderModel{
		startTime: time.Now(),
		version:   version,
	}
}

// SetState copies the fields the header shows from s.
func (h *HeaderModel) SetState(s workflow.State) {
	h.step = s.Step
	h.backend = s.Backend
}

// SetWidth updates the available width.
func (h *HeaderModel) SetWidth(w int) {
	h.width = w
}

// stepTrail renders "upload › review › hospital › results" with the
// current step highlighted.
func (h HeaderModel) stepTrail() string {
	parts := make([]string, len(headerSteps))
	for i, s := range headerSteps {
		name := fmt.Sprintf("%d %s", i+1, s)
		switch {
		case s == h.step:
			parts[i] = stepActiveStyle.Render(name)
		case s < h.step:
			parts[i] = stepDoneStyle.Render(name)
		default:
			parts[i] = stepTodoStyle.Render(name)
		}
	}
	return strings.Join(parts, versionStyle.Render(" › "))
}

func (h HeaderModel) backendLabel() string {
	switch {
	case !h.backend.Checked:
		return versionStyle.Render("backend: ?")
	case h.backend.Err != nil:
		return backendDownStyle.Render("backend: down")
	case h.backend.Status.Healthy():
		return backendUpStyle.Render("backend: " + h.backend.Status.Status)
	default:
		return hintStyle.Render("backend: " + h.backend.Status.Status)
	}
}

// View renders the header.
func (h HeaderModel) View() string {
	titleText := "BillCheck"
	if h.version != "" && h.version != "dev" {
		titleText += " " + h.version
	}
	pipe := versionStyle.Render(" | ")
	leftPart := titleStyle.Render(titleText) + pipe + h.stepTrail()

	elapsed := versionStyle.Render(format.FormatExecutionDuration(time.Since(h.startTime).Truncate(time.Second)))
	rightPart := h.backendLabel() + pipe + elapsed

	innerWidth := h.width - 2
	if innerWidth < 0 {
		innerWidth = 0
	}
	gap := innerWidth - lipgloss.Width(leftPart) - lipgloss.Width(rightPart)
	if gap < 1 {
		gap = 1
	}

	row := leftPart + spaces(gap) + rightPart

	return headerStyle.Width(h.width).Render(row)
}

// spaces returns a string of n space characters.
func spaces(n int) string {
	if n <= 0 {
		return ""
	}
	b := make([]byte, n)
	for i := range b {
		b[i] = ' '
	}
	return string(b)
}

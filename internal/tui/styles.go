package tui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/billcheck/internal/assessment"
	"github.com/agbru/billcheck/internal/ui"
)

// Style variables for the workflow screens.
// Initialized from the ui theme system via initTUIStyles().
var (
	panelStyle       lipgloss.Style
	headerStyle      lipgloss.Style
	titleStyle       lipgloss.Style
	versionStyle     lipgloss.Style
	stepActiveStyle  lipgloss.Style
	stepDoneStyle    lipgloss.Style
	stepTodoStyle    lipgloss.Style
	labelStyle       lipgloss.Style
	valueStyle       lipgloss.Style
	cursorStyle      lipgloss.Style
	selectedStyle    lipgloss.Style
	busyStyle        lipgloss.Style
	hintStyle        lipgloss.Style
	errorStyle       lipgloss.Style
	successStyle     lipgloss.Style
	footerKeyStyle   lipgloss.Style
	footerDescStyle  lipgloss.Style
	backendUpStyle   lipgloss.Style
	backendDownStyle lipgloss.Style
)

func init() {
	initTUIStyles()
}

// initTUIStyles rebuilds all TUI styles from the current ui theme.
// Called at package init and again from Run() after InitTheme has been invoked.
func initTUIStyles() {
	t := ui.GetCurrentTUITheme()

	panelStyle = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.Border).
		Foreground(t.Text).
		Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent).
		Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
		Bold(true).
		Foreground(t.Accent)

	versionStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	stepActiveStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true).
		Underline(true)

	stepDoneStyle = lipgloss.NewStyle().
		Foreground(t.Success)

	stepTodoStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	labelStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	valueStyle = lipgloss.NewStyle().
		Foreground(t.Text).
		Bold(true)

	cursorStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	selectedStyle = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)

	busyStyle = lipgloss.NewStyle().
		Foreground(t.Info)

	hintStyle = lipgloss.NewStyle().
		Foreground(t.Warning)

	errorStyle = lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true)

	successStyle = lipgloss.NewStyle().
		Foreground(t.Success)

	footerKeyStyle = lipgloss.NewStyle().
		Foreground(t.Accent).
		Bold(true)

	footerDescStyle = lipgloss.NewStyle().
		Foreground(t.Dim)

	backendUpStyle = lipgloss.NewStyle().
		Foreground(t.Success).
		Bold(true)

	backendDownStyle = lipgloss.NewStyle().
		Foreground(t.Error).
		Bold(true)
}

// severityStyle colors a line-item status.
func severityStyle(s assessment.Severity) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ui.GetCurrentTUITheme().SeverityColor(s))
}

// levelStyle colors the bill verdict.
func levelStyle(l assessment.Level) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(ui.GetCurrentTUITheme().LevelColor(l)).Bold(true)
}

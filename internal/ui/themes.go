package ui

import (
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/agbru/billcheck/internal/assessment"
)

// Theme defines a color scheme for UI output.
// Each field contains an ANSI escape code for the corresponding color category.
type Theme struct {
	// Name is the identifier of the theme.
	Name string
	// Primary is the main accent color for headings and selections.
	Primary string
	// Secondary is used for less prominent elements.
	Secondary string
	// Success marks fair prices and completed operations.
	Success string
	// Warning marks prices above the typical rate.
	Warning string
	// Error marks prices far above the typical rate and failures.
	Error string
	// Info is used for informational messages and hints.
	Info string
	// Bold is the escape code for bold text.
	Bold string
	// Underline is the escape code for underlined text.
	Underline string
	// Reset clears all formatting.
	Reset string
}

var (
	// DarkTheme is optimized for dark terminal backgrounds.
	DarkTheme = Theme{
		Name:      "dark",
		Primary:   "\033[38;5;39m",  // Bright blue
		Secondary: "\033[38;5;245m", // Grey
		Success:   "\033[38;5;82m",  // Bright green
		Warning:   "\033[38;5;220m", // Yellow
		Error:     "\033[38;5;196m", // Red
		Info:      "\033[38;5;141m", // Purple
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// LightTheme is optimized for light terminal backgrounds.
	LightTheme = Theme{
		Name:      "light",
		Primary:   "\033[38;5;27m",  // Dark blue
		Secondary: "\033[38;5;240m", // Dark grey
		Success:   "\033[38;5;28m",  // Dark green
		Warning:   "\033[38;5;130m", // Orange
		Error:     "\033[38;5;124m", // Dark red
		Info:      "\033[38;5;54m",  // Dark purple
		Bold:      "\033[1m",
		Underline: "\033[4m",
		Reset:     "\033[0m",
	}

	// NoColorTheme disables all color output.
	// Used when NO_COLOR is set or --no-color flag is provided.
	NoColorTheme = Theme{Name: "none"}

	currentTheme = DarkTheme
	themeMutex   sync.RWMutex
)

// SeverityColor returns the escape code for a line-item severity. Unknown
// severities use the secondary color.
func (t Theme) SeverityColor(s assessment.Severity) string {
	switch s {
	case assessment.SeverityOK:
		return t.Success
	case assessment.SeverityWarning:
		return t.Warning
	case assessment.SeverityCritical:
		return t.Error
	default:
		return t.Secondary
	}
}

// LevelColor returns the escape code for a bill-level verdict.
func (t Theme) LevelColor(l assessment.Level) string {
	switch l {
	case assessment.LevelOK:
		return t.Success
	case assessment.LevelLow:
		return t.Info
	case assessment.LevelMedium:
		return t.Warning
	case assessment.LevelHigh:
		return t.Error
	default:
		return t.Secondary
	}
}

// TUITheme defines lipgloss-compatible colors for the terminal UI.
type TUITheme struct {
	Text    lipgloss.TerminalColor
	Border  lipgloss.TerminalColor
	Accent  lipgloss.TerminalColor
	Success lipgloss.TerminalColor
	Warning lipgloss.TerminalColor
	Error   lipgloss.TerminalColor
	Dim     lipgloss.TerminalColor
	Info    lipgloss.TerminalColor
}

var (
	// DarkTUITheme is the default terminal UI palette.
	DarkTUITheme = TUITheme{
		Text:    lipgloss.Color("#E0E0E0"),
		Border:  lipgloss.Color("#3B82F6"),
		Accent:  lipgloss.Color("#60A5FA"),
		Success: lipgloss.Color("#9ece6a"),
		Warning: lipgloss.Color("#FFB347"),
		Error:   lipgloss.Color("#FF4444"),
		Dim:     lipgloss.Color("#666666"),
		Info:    lipgloss.Color("#A78BFA"),
	}

	// LightTUITheme suits light terminal backgrounds.
	LightTUITheme = TUITheme{
		Text:    lipgloss.Color("#1F2937"),
		Border:  lipgloss.Color("#1D4ED8"),
		Accent:  lipgloss.Color("#1E40AF"),
		Success: lipgloss.Color("#15803D"),
		Warning: lipgloss.Color("#B45309"),
		Error:   lipgloss.Color("#B91C1C"),
		Dim:     lipgloss.Color("#6B7280"),
		Info:    lipgloss.Color("#6D28D9"),
	}

	// NoColorTUITheme renders text with the terminal's default colors.
	NoColorTUITheme = TUITheme{
		Text:    lipgloss.NoColor{},
		Border:  lipgloss.NoColor{},
		Accent:  lipgloss.NoColor{},
		Success: lipgloss.NoColor{},
		Warning: lipgloss.NoColor{},
		Error:   lipgloss.NoColor{},
		Dim:     lipgloss.NoColor{},
		Info:    lipgloss.NoColor{},
	}
)

// SeverityColor is the lipgloss counterpart of Theme.SeverityColor.
func (t TUITheme) SeverityColor(s assessment.Severity) lipgloss.TerminalColor {
	switch s {
	case assessment.SeverityOK:
		return t.Success
	case assessment.SeverityWarning:
		return t.Warning
	case assessment.SeverityCritical:
		return t.Error
	default:
		return t.Dim
	}
}

// LevelColor is the lipgloss counterpart of Theme.LevelColor.
func (t TUITheme) LevelColor(l assessment.Level) lipgloss.TerminalColor {
	switch l {
	case assessment.LevelOK:
		return t.Success
	case assessment.LevelLow:
		return t.Info
	case assessment.LevelMedium:
		return t.Warning
	case assessment.LevelHigh:
		return t.Error
	default:
		return t.Dim
	}
}

// GetCurrentTUITheme returns the TUI theme matching the currently active theme.
func GetCurrentTUITheme() TUITheme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()

	switch currentTheme.Name {
	case "none":
		return NoColorTUITheme
	case "light":
		return LightTUITheme
	default:
		return DarkTUITheme
	}
}

// GetCurrentTheme returns the currently active theme in a thread-safe manner.
func GetCurrentTheme() Theme {
	themeMutex.RLock()
	defer themeMutex.RUnlock()
	return currentTheme
}

// SetCurrentTheme sets the currently active theme in a thread-safe manner.
// This is primarily used for testing purposes to restore state.
func SetCurrentTheme(t Theme) {
	themeMutex.Lock()
	defer themeMutex.Unlock()
	currentTheme = t
}

// SetTheme changes the active theme by name: "dark", "light" or "none".
// Unknown names default to dark theme.
func SetTheme(name string) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	switch name {
	case "light":
		currentTheme = LightTheme
	case "none":
		currentTheme = NoColorTheme
	default:
		currentTheme = DarkTheme
	}
}

// InitTheme initializes the theme based on the noColor flag and environment.
// It respects the NO_COLOR environment variable (https://no-color.org/).
func InitTheme(noColor bool) {
	themeMutex.Lock()
	defer themeMutex.Unlock()

	if noColor {
		currentTheme = NoColorTheme
		return
	}
	if _, exists := os.LookupEnv("NO_COLOR"); exists {
		currentTheme = NoColorTheme
		return
	}
	currentTheme = DarkTheme
}

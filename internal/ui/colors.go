package ui

import "github.com/agbru/billcheck/internal/assessment"

// Color accessors read the active theme so that --no-color and NO_COLOR
// apply to every caller without plumbing.

// ColorReset returns the reset escape code.
func ColorReset() string { return GetCurrentTheme().Reset }

// ColorRed returns the error color.
func ColorRed() string { return GetCurrentTheme().Error }

// ColorGreen returns the success color.
func ColorGreen() string { return GetCurrentTheme().Success }

// ColorYellow returns the warning color.
func ColorYellow() string { return GetCurrentTheme().Warning }

// ColorBlue returns the primary color.
func ColorBlue() string { return GetCurrentTheme().Primary }

// ColorCyan returns the info color.
func ColorCyan() string { return GetCurrentTheme().Info }

// ColorDim returns the secondary color.
func ColorDim() string { return GetCurrentTheme().Secondary }

// ColorBold returns the bold escape code.
func ColorBold() string { return GetCurrentTheme().Bold }

// ColorUnderline returns the underline escape code.
func ColorUnderline() string { return GetCurrentTheme().Underline }

// ColorSeverity returns the active theme's color for a line-item severity.
func ColorSeverity(s assessment.Severity) string { return GetCurrentTheme().SeverityColor(s) }

// ColorLevel returns the active theme's color for a bill verdict.
func ColorLevel(l assessment.Level) string { return GetCurrentTheme().LevelColor(l) }

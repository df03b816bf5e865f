// Package ui provides theme and color support for the command-line and
// terminal interfaces. It maps price severities and bill verdicts to colors
// so every surface renders an assessment the same way.
package ui

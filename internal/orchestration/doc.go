// Package orchestration runs one bill against many facilities at once and
// ranks the outcomes. It decouples the concurrent sweep from presentation via
// the ProgressReporter and ResultPresenter interfaces.
package orchestration

package orchestration

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/agbru/billcheck/internal/api"
	"github.com/agbru/billcheck/internal/assessment"
	"github.com/agbru/billcheck/internal/billing"
)

// Comparer is the slice of api.Client a sweep needs.
type Comparer interface {
	Compare(ctx context.Context, req api.CompareRequest) (billing.ComparisonResult, error)
}

// SweepResult is the outcome of comparing the bill against one facility.
type SweepResult struct {
	Facility billing.Facility
	// Result and Summary are zero when Err is set.
	Result   billing.ComparisonResult
	Summary  assessment.Summary
	Duration time.Duration
	Err      error
}

// ProgressUpdate reports that the comparison at Index finished.
type ProgressUpdate struct {
	Index    int
	Facility billing.Facility
	Err      error
}

// ProgressReporter displays sweep progress. DisplayProgress runs in its own
// goroutine until progressChan is closed and must call wg.Done on return.
type ProgressReporter interface {
	DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, total int, out io.Writer)
}

// ProgressReporterFunc is a function adapter that implements ProgressReporter.
type ProgressReporterFunc func(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, total int, out io.Writer)

// DisplayProgress calls the underlying function.
func (f ProgressReporterFunc) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, total int, out io.Writer) {
	f(wg, progressChan, total, out)
}

// NullProgressReporter drains the progress channel without output.
type NullProgressReporter struct{}

// DisplayProgress drains the channel without output.
func (NullProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan ProgressUpdate, _ int, _ io.Writer) {
	defer wg.Done()
	DrainChannel(progressChan)
}

// ResultPresenter renders sweep results.
type ResultPresenter interface {
	// PresentComparisonTable prints one row per facility in ranked order.
	PresentComparisonTable(results []SweepResult, out io.Writer)
	// PresentBest prints the detail of the best-ranked successful result.
	PresentBest(result SweepResult, out io.Writer)
}

// ErrorHandler reports a failure and returns the exit code.
type ErrorHandler interface {
	HandleError(err error, out io.Writer) int
}

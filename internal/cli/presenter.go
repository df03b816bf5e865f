package cli

import (
	"errors"
	"fmt"
	"io"
	"sync"

	apperrors "github.com/agbru/billcheck/internal/errors"
	"github.com/agbru/billcheck/internal/format"
	"github.com/agbru/billcheck/internal/orchestration"
	"github.com/agbru/billcheck/internal/ui"
)

// CLIProgressReporter implements orchestration.ProgressReporter with a
// spinner and progress bar.
type CLIProgressReporter struct{}

var _ orchestration.ProgressReporter = CLIProgressReporter{}

// DisplayProgress displays a spinner and progress bar while a sweep runs.
func (CLIProgressReporter) DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, total int, out io.Writer) {
	DisplayProgress(wg, progressChan, total, out)
}

// CLIResultPresenter renders sweep results and errors for the terminal.
// Details adds reference pricing under each line of the best result.
type CLIResultPresenter struct {
	Details bool
}

var (
	_ orchestration.ResultPresenter = CLIResultPresenter{}
	_ orchestration.ErrorHandler    = CLIResultPresenter{}
)

// PresentComparisonTable prints one row per facility: fair value, potential
// savings, verdict and how long the comparison took. Padding is computed on
// the raw text so that color codes do not break alignment.
func (CLIResultPresenter) PresentComparisonTable(results []orchestration.SweepResult, out io.Writer) {
	fmt.Fprintf(out, "\n--- Hospital Comparison ---\n")

	maxNameLen := len("Hospital")
	for _, r := range results {
		if n := len([]rune(r.Facility.Name)); n > maxNameLen {
			maxNameLen = n
		}
	}
	if maxNameLen > 40 {
		maxNameLen = 40
	}

	fmt.Fprintf(out, "%sHospital%s%s   %s%12s%s   %s%12s%s   %s%8s%s   %sVerdict%s\n",
		ui.ColorUnderline(), ui.ColorReset(), padRight("", maxNameLen-len("Hospital")),
		ui.ColorUnderline(), "Fair value", ui.ColorReset(),
		ui.ColorUnderline(), "Savings", ui.ColorReset(),
		ui.ColorUnderline(), "Time", ui.ColorReset(),
		ui.ColorUnderline(), ui.ColorReset())

	for _, r := range results {
		name := format.Truncate(r.Facility.Name, maxNameLen)
		pad := padRight("", maxNameLen-len([]rune(name)))
		duration := format.FormatExecutionDuration(r.Duration)
		if r.Err != nil {
			fmt.Fprintf(out, "%s%s%s%s   %12s   %12s   %8s   %sFailed (%v)%s\n",
				ui.ColorBlue(), name, ui.ColorReset(), pad, notAvail, notAvail, duration,
				ui.ColorRed(), r.Err, ui.ColorReset())
			continue
		}
		fmt.Fprintf(out, "%s%s%s%s   %12s   %12s   %8s   %s%s%s\n",
			ui.ColorBlue(), name, ui.ColorReset(), pad,
			optional(r.Summary.TotalFairValue), optional(r.Summary.TotalPotentialSavings), duration,
			ui.ColorLevel(r.Summary.Verdict.Severity), r.Summary.Verdict.Message, ui.ColorReset())
	}
}

// padRight appends length spaces to s.
func padRight(s string, length int) string {
	if length <= 0 {
		return s
	}
	return s + fmt.Sprintf("%*s", length, "")
}

// PresentBest prints the best-ranked facility and its full assessment.
func (p CLIResultPresenter) PresentBest(result orchestration.SweepResult, out io.Writer) {
	fmt.Fprintf(out, "Lowest fair value: %s%s%s (%s)\n",
		ui.ColorGreen(), result.Facility.Name, ui.ColorReset(), optional(result.Summary.TotalFairValue))
	DisplayComparison(result.Result, nil, p.Details, out)
}

// HandleError prints err and returns its exit code.
func (CLIResultPresenter) HandleError(err error, out io.Writer) int {
	return HandleError(err, out)
}

// HandleError prints a one-line description of err, with the HTTP status
// and hint where one applies, and returns the matching exit code.
func HandleError(err error, out io.Writer) int {
	if err == nil {
		return apperrors.ExitSuccess
	}
	code := apperrors.ExitCodeFor(err)
	var te apperrors.TransportError
	switch {
	case code == apperrors.ExitErrorCanceled:
		fmt.Fprintf(out, "%sCanceled: %v%s\n", ui.ColorYellow(), err, ui.ColorReset())
	case errors.As(err, &te) && te.StatusCode == 0:
		fmt.Fprintf(out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
		fmt.Fprintf(out, "%sIs the backend running? Set --base-url or BILLCHECK_BASE_URL.%s\n", ui.ColorDim(), ui.ColorReset())
	default:
		fmt.Fprintf(out, "%sError: %v%s\n", ui.ColorRed(), err, ui.ColorReset())
	}
	return code
}

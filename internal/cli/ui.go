//go:generate mockgen -source=ui.go -destination=mocks/mock_ui.go -package=mocks

package cli

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/briandowns/spinner"

	"github.com/agbru/billcheck/internal/format"
	"github.com/agbru/billcheck/internal/orchestration"
	"github.com/agbru/billcheck/internal/ui"
)

const (
	// ProgressRefreshRate defines the refresh frequency of the spinner.
	ProgressRefreshRate = 200 * time.Millisecond
	// ProgressBarWidth defines the width in characters of the progress bar.
	ProgressBarWidth = 30
)

// Spinner abstracts the terminal spinner so progress display can be tested
// without a terminal.
type Spinner interface {
	// Start begins the spinner animation.
	Start()
	// Stop halts the spinner animation.
	Stop()
	// UpdateSuffix sets the text that is displayed after the spinner.
	UpdateSuffix(suffix string)
}

// realSpinner adapts spinner.Spinner to the Spinner interface.
type realSpinner struct {
	s *spinner.Spinner
}

func (rs *realSpinner) Start() { rs.s.Start() }

func (rs *realSpinner) Stop() { rs.s.Stop() }

func (rs *realSpinner) UpdateSuffix(suffix string) {
	rs.s.Lock()
	rs.s.Suffix = suffix
	rs.s.Unlock()
}

var newSpinner = func(options ...spinner.Option) Spinner {
	s := spinner.New(spinner.CharSets[11], ProgressRefreshRate, options...)
	return &realSpinner{s}
}

// DisplayProgress renders a spinner and progress bar until progressChan is
// closed, then prints a final tally line. It must run in its own goroutine
// and calls wg.Done on return.
func DisplayProgress(wg *sync.WaitGroup, progressChan <-chan orchestration.ProgressUpdate, total int, out io.Writer) {
	defer wg.Done()
	agg := orchestration.NewProgressAggregator(total)
	if agg == nil {
		orchestration.DrainChannel(progressChan)
		return
	}

	s := newSpinner(spinner.WithWriter(out), spinner.WithHiddenCursor(true))
	s.UpdateSuffix(FormatProgress(agg.Snapshot()))
	s.Start()
	for update := range progressChan {
		s.UpdateSuffix(FormatProgress(agg.Update(update)))
	}
	s.Stop()
	fmt.Fprintln(out, FormatProgress(agg.Snapshot()))
}

// FormatProgress renders one progress line, e.g.
// " Comparing 3/9 [█████░░░░░] 33% (1 failed) ETA 4s".
func FormatProgress(p orchestration.AggregatedProgress) string {
	var b strings.Builder
	fmt.Fprintf(&b, " Comparing %d/%d [%s] %3.0f%%", p.Done, p.Total, progressBar(p.Fraction, ProgressBarWidth), p.Fraction*100)
	if p.Failed > 0 {
		fmt.Fprintf(&b, " %s(%d failed)%s", ui.ColorRed(), p.Failed, ui.ColorReset())
	}
	if p.ETA > 0 {
		fmt.Fprintf(&b, " ETA %s", format.FormatETA(p.ETA))
	}
	return b.String()
}

// progressBar generates a textual progress bar of the given width.
func progressBar(progress float64, length int) string {
	if progress > 1.0 {
		progress = 1.0
	}
	if progress < 0.0 {
		progress = 0.0
	}
	count := int(progress * float64(length))
	var builder strings.Builder
	builder.Grow(length)
	for i := 0; i < length; i++ {
		if i < count {
			builder.WriteRune('█')
		} else {
			builder.WriteRune('░')
		}
	}
	return builder.String()
}

// StageSpinner shows a spinner for each stage of a single bill check
// (uploading, extracting, comparing) and prints a check mark or cross when
// the stage ends. A quiet StageSpinner prints nothing.
type StageSpinner struct {
	out     io.Writer
	quiet   bool
	current Spinner
	label   string
	started time.Time
}

// NewStageSpinner returns a StageSpinner writing to out.
func NewStageSpinner(out io.Writer, quiet bool) *StageSpinner {
	return &StageSpinner{out: out, quiet: quiet}
}

// Begin starts a new stage, ending any stage still running as successful.
func (st *StageSpinner) Begin(label string) {
	if st.current != nil {
		st.End(nil)
	}
	if st.quiet {
		return
	}
	st.label = label
	st.started = time.Now()
	st.current = newSpinner(spinner.WithWriter(st.out), spinner.WithHiddenCursor(true))
	st.current.UpdateSuffix(" " + label + "...")
	st.current.Start()
}

// End stops the running stage and reports err, if any.
func (st *StageSpinner) End(err error) {
	if st.current == nil {
		return
	}
	st.current.Stop()
	st.current = nil
	elapsed := format.FormatExecutionDuration(time.Since(st.started))
	if err != nil {
		fmt.Fprintf(st.out, "%s✗ %s%s (%s)\n", ui.ColorRed(), st.label, ui.ColorReset(), elapsed)
		return
	}
	fmt.Fprintf(st.out, "%s✓ %s%s %s(%s)%s\n", ui.ColorGreen(), st.label, ui.ColorReset(), ui.ColorDim(), elapsed, ui.ColorReset())
}

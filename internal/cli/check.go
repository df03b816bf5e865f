package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/agbru/billcheck/internal/config"
	apperrors "github.com/agbru/billcheck/internal/errors"
	"github.com/agbru/billcheck/internal/ui"
	"github.com/agbru/billcheck/internal/workflow"
)

// PrintCheckConfig displays the settings a batch check runs with.
func PrintCheckConfig(cfg config.AppConfig, out io.Writer) {
	fmt.Fprintf(out, "--- Check Configuration ---\n")
	fmt.Fprintf(out, "Checking %s%s%s against %s%s%s with a timeout of %s%s%s.\n",
		ui.ColorBold(), cfg.File, ui.ColorReset(),
		ui.ColorCyan(), cfg.BaseURL, ui.ColorReset(),
		ui.ColorYellow(), cfg.Timeout, ui.ColorReset())
	hospital := "detected from the bill"
	if cfg.Hospital != "" {
		hospital = cfg.Hospital
	}
	fmt.Fprintf(out, "Hospital: %s%s%s. Medicare data: %s%t%s.\n",
		ui.ColorCyan(), hospital, ui.ColorReset(), ui.ColorCyan(), !cfg.NoCMS, ui.ColorReset())
	if cfg.RadiusMiles > 0 {
		fmt.Fprintf(out, "Regional radius: %s%.0f%s miles.\n", ui.ColorCyan(), cfg.RadiusMiles, ui.ColorReset())
	}
	fmt.Fprintln(out)
}

// CheckOptions configures one batch bill check.
type CheckOptions struct {
	File string
	// HospitalID overrides the detected facility when set.
	HospitalID  string
	RadiusMiles *float64
	UseCMSData  *bool
	Output      OutputConfig
}

// tolerateSearch drops a facility search failure raised alongside a step
// that otherwise succeeded: the check only needs the list to match a
// detected hospital, and an explicit --hospital is looked up directly.
func tolerateSearch(s workflow.State, err error, want workflow.Step, out io.Writer) error {
	var se apperrors.SearchError
	if errors.As(err, &se) && s.Step == want {
		fmt.Fprintf(out, "%sHospital list unavailable: %v%s\n", ui.ColorYellow(), se.Cause, ui.ColorReset())
		return nil
	}
	return err
}

// RunCheck drives ctrl through the whole workflow once: load the facility
// list, upload and extract the bill, pick the hospital, compare and print
// the assessment. It returns the settled state and the first error.
func RunCheck(ctx context.Context, ctrl *workflow.Controller, opts CheckOptions, out io.Writer) (workflow.State, error) {
	name := filepath.Base(opts.File)
	if err := workflow.ValidateFileName(name); err != nil {
		return ctrl.State(), err
	}
	data, err := os.ReadFile(opts.File)
	if err != nil {
		return ctrl.State(), apperrors.ValidationError{Field: "file", Message: err.Error()}
	}

	stages := NewStageSpinner(out, opts.Output.Quiet)
	defer stages.End(nil)

	stages.Begin("Loading hospitals")
	if err := ctrl.Start(ctx); err != nil {
		stages.End(err)
		if ctx.Err() != nil {
			return ctrl.State(), ctx.Err()
		}
	}

	stages.Begin("Uploading and extracting " + name)
	s, err := ctrl.Submit(ctx, name, data)
	if err = tolerateSearch(s, err, workflow.StepReview, out); err != nil {
		stages.End(err)
		return s, err
	}
	stages.End(nil)
	if !opts.Output.Quiet {
		DisplayItems(s.Items, out)
		DisplayDetection(s, out)
	}

	if opts.HospitalID != "" && (s.Selected == nil || s.Selected.ID != opts.HospitalID) {
		stages.Begin("Looking up hospital " + opts.HospitalID)
		if s, err = ctrl.Select(ctx, opts.HospitalID); err != nil {
			stages.End(err)
			return s, err
		}
		stages.End(nil)
	}
	if s.Selected == nil {
		req := "no hospital detected on the bill; pass --hospital <id>"
		if s.Hint != nil {
			req = fmt.Sprintf("the bill appears to be from %q but could not be matched; pass --hospital <id>", s.Hint.Name)
		}
		return s, apperrors.PreconditionError{Operation: "compare", Requirement: req}
	}

	s, err = ctrl.Advance(ctx)
	if err = tolerateSearch(s, err, workflow.StepHospital, out); err != nil {
		return s, err
	}

	stages.Begin("Comparing against " + s.Selected.Name)
	s, err = ctrl.Compare(ctx, workflow.CompareRequested{RadiusMiles: opts.RadiusMiles, UseCMSData: opts.UseCMSData})
	if err != nil {
		stages.End(err)
		return s, err
	}
	stages.End(nil)

	if s.Result == nil {
		return s, apperrors.ComparisonError{Cause: fmt.Errorf("no result returned")}
	}
	return s, DisplayResultWithConfig(out, Report{Result: *s.Result, Items: s.Items}, opts.Output)
}

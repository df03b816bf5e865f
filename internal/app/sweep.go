package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/agbru/billcheck/internal/billing"
	"github.com/agbru/billcheck/internal/cli"
	apperrors "github.com/agbru/billcheck/internal/errors"
	"github.com/agbru/billcheck/internal/logging"
	"github.com/agbru/billcheck/internal/orchestration"
	"github.com/agbru/billcheck/internal/ui"
	"github.com/agbru/billcheck/internal/workflow"
)

// runSweep extracts --file once and compares it against every facility in
// --hospitals (or all of them) concurrently.
func (a *Application) runSweep(ctx context.Context, out io.Writer) int {
	ctx, stop := a.lifecycle(ctx)
	defer stop()

	items, facilities, err := a.prepareSweep(ctx, out)
	if err != nil {
		return cli.HandleError(err, out)
	}

	if !a.Config.Quiet {
		fmt.Fprintf(out, "Comparing %d line items against %s%d%s hospitals (%d at a time).\n\n",
			len(items), ui.ColorCyan(), len(facilities), ui.ColorReset(), a.Config.Concurrency)
	}

	var progressReporter orchestration.ProgressReporter
	progressOut := out
	if a.Config.Quiet {
		progressOut = io.Discard
		progressReporter = orchestration.NullProgressReporter{}
	} else {
		progressReporter = cli.CLIProgressReporter{}
	}

	start := time.Now()
	results := orchestration.ExecuteSweep(ctx, a.Client, items, facilities, orchestration.SweepOptions{
		Concurrency: a.Config.Concurrency,
		RadiusMiles: a.Config.Radius(),
		UseCMSData:  a.Config.UseCMSData(),
	}, progressReporter, progressOut)
	a.logger.Info("sweep finished",
		logging.Int("facilities", len(facilities)),
		logging.String("elapsed", time.Since(start).String()))

	return a.analyzeSweepWithOutput(results, items, out)
}

// prepareSweep loads the facility list and the bill's line items, then
// picks the sweep targets.
func (a *Application) prepareSweep(ctx context.Context, out io.Writer) ([]billing.LineItem, []billing.Facility, error) {
	name := filepath.Base(a.Config.File)
	if err := workflow.ValidateFileName(name); err != nil {
		return nil, nil, err
	}
	data, err := os.ReadFile(a.Config.File)
	if err != nil {
		return nil, nil, apperrors.ValidationError{Field: "file", Message: err.Error()}
	}

	ctrl := a.newController()
	stages := cli.NewStageSpinner(out, a.Config.Quiet)
	defer stages.End(nil)

	stages.Begin("Loading hospitals")
	if err := ctrl.Start(ctx); err != nil {
		stages.End(err)
		return nil, nil, err
	}

	stages.Begin("Uploading and extracting " + name)
	s, err := ctrl.Submit(ctx, name, data)
	if err != nil {
		stages.End(err)
		return nil, nil, err
	}
	stages.End(nil)
	if len(s.Items) == 0 {
		return nil, nil, apperrors.ValidationError{Field: "file", Message: "no line items were extracted"}
	}

	facilities, err := orchestration.SelectFacilities(s.Facilities, a.Config.HospitalIDs())
	if err != nil {
		return nil, nil, err
	}
	return s.Items, facilities, nil
}

func (a *Application) analyzeSweepWithOutput(results []orchestration.SweepResult, items []billing.LineItem, out io.Writer) int {
	presenter := cli.CLIResultPresenter{Details: a.Config.Details}

	var exitCode int
	if a.Config.Quiet {
		orchestration.RankResults(results)
		if len(results) == 0 || results[0].Err != nil {
			var err error = apperrors.ValidationError{Field: "hospitals", Message: "no facilities to compare"}
			if len(results) > 0 {
				err = results[0].Err
			}
			return presenter.HandleError(err, out)
		}
		for _, r := range results {
			if r.Err == nil {
				fmt.Fprintf(out, "%s\t%s\n", r.Facility.ID, cli.FormatQuietResult(r.Result))
			}
		}
		exitCode = apperrors.ExitSuccess
	} else {
		exitCode = orchestration.AnalyzeSweepResults(results, presenter, presenter, out)
	}

	if exitCode == apperrors.ExitSuccess && a.Config.OutputFile != "" {
		report := cli.Report{
			Result:    results[0].Result,
			Items:     items,
			Sweep:     results,
			Generated: time.Now(),
		}
		if err := cli.WriteReport(report, a.Config.OutputFile); err != nil {
			fmt.Fprintf(a.ErrWriter, "Error saving report: %v\n", err)
			return apperrors.ExitErrorGeneric
		}
		if !a.Config.Quiet {
			fmt.Fprintf(out, "\n%s✓ Report saved to: %s%s%s\n",
				ui.ColorGreen(), ui.ColorCyan(), a.Config.OutputFile, ui.ColorReset())
		}
	}
	return exitCode
}

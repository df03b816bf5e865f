package orchestration

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/agbru/billcheck/internal/api"
	"github.com/agbru/billcheck/internal/assessment"
	"github.com/agbru/billcheck/internal/billing"
	apperrors "github.com/agbru/billcheck/internal/errors"
)

// ProgressBufferMultiplier sizes the progress channel relative to the
// number of facilities so workers never block on a slow display.
const ProgressBufferMultiplier = 2

// SweepOptions tunes a sweep.
type SweepOptions struct {
	// Concurrency bounds the comparisons in flight. Values below 1 mean 1.
	Concurrency int
	RadiusMiles *float64
	UseCMSData  *bool
}

// ExecuteSweep compares items against every facility concurrently and
// returns one result per facility, in input order. A failed comparison is
// recorded in its result and does not cancel the others; only ctx does.
func ExecuteSweep(ctx context.Context, client Comparer, items []billing.LineItem, facilities []billing.Facility, opts SweepOptions, reporter ProgressReporter, out io.Writer) []SweepResult {
	results := make([]SweepResult, len(facilities))
	progressChan := make(chan ProgressUpdate, len(facilities)*ProgressBufferMultiplier)

	var displayWg sync.WaitGroup
	displayWg.Add(1)
	go reporter.DisplayProgress(&displayWg, progressChan, len(facilities), out)

	limit := opts.Concurrency
	if limit < 1 {
		limit = 1
	}
	var g errgroup.Group
	g.SetLimit(limit)

	for i, f := range facilities {
		idx, facility := i, f
		g.Go(func() error {
			start := time.Now()
			req := api.CompareRequest{
				LineItems:   billing.CloneItems(items),
				HospitalID:  facility.ID,
				RadiusMiles: opts.RadiusMiles,
				UseCMSData:  opts.UseCMSData,
			}
			var (
				res billing.ComparisonResult
				err error
			)
			if err = ctx.Err(); err == nil {
				res, err = client.Compare(ctx, req)
			}
			r := SweepResult{Facility: facility, Duration: time.Since(start), Err: err}
			if err == nil {
				r.Result = res
				r.Summary = assessment.Summarize(res)
			}
			results[idx] = r
			progressChan <- ProgressUpdate{Index: idx, Facility: facility, Err: err}
			return nil
		})
	}

	_ = g.Wait()
	close(progressChan)
	displayWg.Wait()

	return results
}

// RankResults orders results in place: successful comparisons first, those
// with a known fair value by ascending fair value, then the rest by name.
func RankResults(results []SweepResult) {
	sort.SliceStable(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if (a.Err == nil) != (b.Err == nil) {
			return a.Err == nil
		}
		af, bf := a.Summary.TotalFairValue, b.Summary.TotalFairValue
		if af.Set != bf.Set {
			return af.Set
		}
		if af.Set && af.Value != bf.Value {
			return af.Value < bf.Value
		}
		return a.Facility.Name < b.Facility.Name
	})
}

// AnalyzeSweepResults ranks the results, prints the comparison table and the
// best result, and returns the process exit code.
func AnalyzeSweepResults(results []SweepResult, presenter ResultPresenter, handler ErrorHandler, out io.Writer) int {
	RankResults(results)

	var firstError error
	successCount := 0
	for _, r := range results {
		if r.Err != nil {
			if firstError == nil {
				firstError = r.Err
			}
			continue
		}
		successCount++
	}

	presenter.PresentComparisonTable(results, out)

	if successCount == 0 {
		fmt.Fprintf(out, "\nSweep failed: no facility could be compared.\n")
		if firstError == nil {
			firstError = apperrors.ValidationError{Field: "hospitals", Message: "no facilities to compare"}
		}
		return handler.HandleError(firstError, out)
	}

	fmt.Fprintf(out, "\nCompared against %d of %d facilities.\n", successCount, len(results))
	presenter.PresentBest(results[0], out)
	return apperrors.ExitSuccess
}

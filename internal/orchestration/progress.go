package orchestration

import "time"

// ProgressAggregator tracks how many sweep comparisons have finished and
// estimates the time left from the average pace so far. It is shared by the
// CLI spinner and the terminal UI.
type ProgressAggregator struct {
	total   int
	done    int
	failed  int
	started time.Time
	now     func() time.Time
}

// NewProgressAggregator creates an aggregator for total comparisons. Returns
// nil if total <= 0.
func NewProgressAggregator(total int) *ProgressAggregator {
	if total <= 0 {
		return nil
	}
	return &ProgressAggregator{total: total, started: time.Now(), now: time.Now}
}

// AggregatedProgress is the state after one update.
type AggregatedProgress struct {
	Done     int
	Failed   int
	Total    int
	Fraction float64
	ETA      time.Duration
}

// Update records a finished comparison.
func (a *ProgressAggregator) Update(update ProgressUpdate) AggregatedProgress {
	if a.done < a.total {
		a.done++
		if update.Err != nil {
			a.failed++
		}
	}
	return a.Snapshot()
}

// Snapshot returns the current progress without updating.
func (a *ProgressAggregator) Snapshot() AggregatedProgress {
	return AggregatedProgress{
		Done:     a.done,
		Failed:   a.failed,
		Total:    a.total,
		Fraction: float64(a.done) / float64(a.total),
		ETA:      a.eta(),
	}
}

// eta extrapolates the average time per finished comparison. It is zero
// until the first comparison finishes and once all have.
func (a *ProgressAggregator) eta() time.Duration {
	if a.done == 0 || a.done >= a.total {
		return 0
	}
	per := a.now().Sub(a.started) / time.Duration(a.done)
	return per * time.Duration(a.total-a.done)
}

// Total returns the number of comparisons tracked.
func (a *ProgressAggregator) Total() int {
	return a.total
}

// DrainChannel reads all updates from the channel without processing.
func DrainChannel(progressChan <-chan ProgressUpdate) {
	for range progressChan {
	}
}

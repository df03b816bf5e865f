package orchestration

import (
	"errors"
	"testing"
	"time"
)

func TestNewProgressAggregator(t *testing.T) {
	t.Parallel()
	if NewProgressAggregator(0) != nil || NewProgressAggregator(-1) != nil {
		t.Error("expected nil aggregator for non-positive totals")
	}
	agg := NewProgressAggregator(3)
	if agg == nil || agg.Total() != 3 {
		t.Fatalf("aggregator = %+v", agg)
	}
}

func TestProgressAggregatorUpdate(t *testing.T) {
	t.Parallel()
	agg := NewProgressAggregator(4)
	start := time.Unix(0, 0)
	agg.started = start
	clock := start
	agg.now = func() time.Time { return clock }

	if snap := agg.Snapshot(); snap.ETA != 0 || snap.Fraction != 0 {
		t.Errorf("initial snapshot = %+v", snap)
	}

	clock = start.Add(2 * time.Second)
	p := agg.Update(ProgressUpdate{Index: 0})
	if p.Done != 1 || p.Fraction != 0.25 {
		t.Errorf("after one: %+v", p)
	}
	if p.ETA != 6*time.Second {
		t.Errorf("ETA = %v, want 6s", p.ETA)
	}

	p = agg.Update(ProgressUpdate{Index: 1, Err: errors.New("x")})
	if p.Failed != 1 || p.Done != 2 {
		t.Errorf("after failure: %+v", p)
	}

	agg.Update(ProgressUpdate{Index: 2})
	p = agg.Update(ProgressUpdate{Index: 3})
	if p.Fraction != 1 || p.ETA != 0 {
		t.Errorf("complete: %+v", p)
	}
	if p = agg.Update(ProgressUpdate{Index: 3}); p.Done != 4 {
		t.Errorf("overflow update counted: %+v", p)
	}
}

func TestDrainChannel(t *testing.T) {
	t.Parallel()
	ch := make(chan ProgressUpdate, 3)
	ch <- ProgressUpdate{}
	ch <- ProgressUpdate{}
	close(ch)
	DrainChannel(ch)
	if _, ok := <-ch; ok {
		t.Error("channel not drained")
	}
}

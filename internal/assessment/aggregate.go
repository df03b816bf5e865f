package assessment

import (
	"math"

	"github.com/agbru/billcheck/internal/billing"
)

// Optional is a number that may be absent. Set is the only presence test;
// a Set value of 0 is a real zero.
type Optional struct {
	Value float64
	Set   bool
}

// FromPtr converts an optional wire field.
func FromPtr(p *float64) Optional {
	if p == nil {
		return Optional{}
	}
	return Some(*p)
}

// Some returns a present value.
func Some(v float64) Optional { return Optional{Value: v, Set: true} }

// RunningTotal sums the billed amounts of items at full precision. It is
// computed from the current, possibly edited, items and never from a server
// total.
func RunningTotal(items []billing.LineItem) float64 {
	var total float64
	for _, it := range items {
		total += it.Amount
	}
	return total
}

// Drift returns the local running total minus the server-reported total.
// Non-zero drift means the items were edited after the result was produced or
// the server weighted amounts differently.
func Drift(items []billing.LineItem, result billing.ComparisonResult) float64 {
	return RunningTotal(items) - result.TotalBilled
}

// Summary is the aggregate view of a comparison result.
type Summary struct {
	Verdict               Verdict
	TotalBilled           float64
	TotalFairValue        Optional
	TotalPotentialSavings Optional
	// LineSavings sums potential savings over items whose field is set. It
	// is absent only when no item reports savings.
	LineSavings Optional
	Counts      map[Severity]int
	// Flagged counts items at warning severity or above.
	Flagged int
}

// LineSavingsDiffer reports whether the per-item savings do not add up to
// the reported total, to the cent. An absent total with reported item
// savings counts as a difference.
func (s Summary) LineSavingsDiffer() bool {
	if !s.LineSavings.Set {
		return false
	}
	if !s.TotalPotentialSavings.Set {
		return true
	}
	return math.Abs(s.LineSavings.Value-s.TotalPotentialSavings.Value) >= 0.005
}

// Summarize derives the display aggregates of result.
func Summarize(result billing.ComparisonResult) Summary {
	s := Summary{
		Verdict:               ClassifyOverall(result.OverallAssessment),
		TotalBilled:           result.TotalBilled,
		TotalFairValue:        FromPtr(result.TotalFairValue),
		TotalPotentialSavings: FromPtr(result.TotalPotentialSavings),
		Counts:                make(map[Severity]int, 4),
	}
	for _, li := range result.LineItems {
		sev := ClassifyStatus(li.Status)
		s.Counts[sev]++
		if sev >= SeverityWarning {
			s.Flagged++
		}
		if li.PotentialSavings != nil {
			s.LineSavings.Value += *li.PotentialSavings
			s.LineSavings.Set = true
		}
	}
	return s
}

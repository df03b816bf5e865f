package workflow

import (
	"github.com/agbru/billcheck/internal/api"
	"github.com/agbru/billcheck/internal/billing"
	apperrors "github.com/agbru/billcheck/internal/errors"
)

func requestCompare(s State, ev CompareRequested) (State, Effect, error) {
	if s.Step != StepHospital {
		return s, nil, apperrors.PreconditionError{Operation: "compare", Requirement: "must be at the hospital step"}
	}
	if s.Selected == nil {
		return s, nil, apperrors.PreconditionError{Operation: "compare", Requirement: "no hospital selected"}
	}

	var tk Ticket
	s.tickets, tk = s.tickets.Issue(ClassCompare)
	s.Comparing = true
	s.CompareErr = nil
	req := api.CompareRequest{
		LineItems:   billing.CloneItems(s.Items),
		HospitalID:  s.Selected.ID,
		RadiusMiles: ev.RadiusMiles,
		UseCMSData:  ev.UseCMSData,
	}
	return s, CompareEffect{Ticket: tk, Request: req}, nil
}

// compared commits a comparison only while the workflow still sits at the
// hospital step with the same inputs; any navigation, edit or selection
// change in between has already bumped the compare counter.
func compared(s State, ev Compared) (State, Effect, error) {
	if !s.tickets.IsCurrent(ev.Ticket) || s.Step != StepHospital || !s.Comparing {
		return s, nil, ErrStaleResponse
	}
	s.Comparing = false
	if ev.Err != nil {
		err := apperrors.ComparisonError{Cause: ev.Err}
		s.CompareErr = err
		return s, nil, err
	}
	res := ev.Result
	s.Result = &res
	s.Step = StepResults
	return s, nil, nil
}

package workflow

import (
	"fmt"
	"math"
	"strings"

	"github.com/agbru/billcheck/internal/billing"
	apperrors "github.com/agbru/billcheck/internal/errors"
)

// Apply is the pure transition function of the workflow. It returns the next
// state, the remote call to run (or nil), and an error describing what went
// wrong, if anything. The returned state is always stable: on a rejected
// action it equals s, and on a failed response it is s plus the visible error.
//
// A stale response yields s unchanged and ErrStaleResponse.
func Apply(s State, ev Event) (State, Effect, error) {
	switch e := ev.(type) {
	case FileSubmitted:
		return submitFile(s, e)
	case Uploaded:
		return uploaded(s, e)
	case Extracted:
		return extracted(s, e)
	case ItemEdited:
		return editItem(s, e)
	case ItemRemoved:
		return removeItem(s, e)
	case ItemAdded:
		return addItem(s, e)
	case Advanced:
		return advance(s)
	case WentBack:
		return goBack(s)
	case SearchRequested:
		return issueSearch(s, e.Query)
	case SearchCompleted:
		return searchCompleted(s, e)
	case FacilitySelected:
		return selectFacility(s, e.Facility)
	case SelectionCleared:
		return clearSelection(s)
	case CompareRequested:
		return requestCompare(s, e)
	case Compared:
		return compared(s, e)
	case ResetRequested:
		return reset(s), nil, nil
	case HealthRequested:
		return s, HealthEffect{}, nil
	case HealthChecked:
		s.Backend = BackendStatus{Checked: true, Status: e.Status, Err: e.Err}
		return s, nil, e.Err
	case nil:
		return s, nil, nil
	default:
		return s, nil, fmt.Errorf("workflow: unhandled event %T", ev)
	}
}

// reset returns to the upload step with no workflow data. The facility list,
// any in-flight search and the backend status survive; pending upload and
// comparison responses become stale.
func reset(s State) State {
	return State{
		Step:             StepUpload,
		Facilities:       s.Facilities,
		FacilitiesLoaded: s.FacilitiesLoaded,
		Query:            s.Query,
		Searching:        s.Searching,
		SearchErr:        s.SearchErr,
		Backend:          s.Backend,
		tickets:          s.tickets.Bump(ClassUpload, ClassCompare),
	}
}

func advance(s State) (State, Effect, error) {
	if s.Step != StepReview {
		return s, nil, apperrors.PreconditionError{Operation: "continue", Requirement: "must be reviewing line items"}
	}
	s.Step = StepHospital
	// Leaving review abandons a replacement bill still in flight.
	if s.Upload != UploadIdle {
		s.tickets = s.tickets.Bump(ClassUpload)
		s.Upload = UploadIdle
		s.PendingFile = ""
	}
	s.UploadErr = nil
	if !s.FacilitiesLoaded && !s.Searching {
		return issueSearch(s, s.Query)
	}
	return s, nil, nil
}

func goBack(s State) (State, Effect, error) {
	if s.Step != StepHospital {
		return s, nil, apperrors.PreconditionError{Operation: "go back", Requirement: "must be choosing a hospital"}
	}
	s.Step = StepReview
	s.Comparing = false
	s.CompareErr = nil
	s.tickets = s.tickets.Bump(ClassCompare)
	return s, nil, nil
}

func issueSearch(s State, query string) (State, Effect, error) {
	query = strings.TrimSpace(query)
	var tk Ticket
	s.tickets, tk = s.tickets.Issue(ClassSearch)
	s.Query = query
	s.Searching = true
	s.SearchErr = nil
	return s, SearchEffect{Ticket: tk, Query: query}, nil
}

// searchCompleted installs a new facility snapshot. Failures keep the
// previous list and raise a visible search error. The first usable list after
// an extraction triggers the one pending resolution.
func searchCompleted(s State, ev SearchCompleted) (State, Effect, error) {
	if !s.tickets.IsCurrent(ev.Ticket) {
		return s, nil, ErrStaleResponse
	}
	s.Searching = false
	if ev.Err != nil {
		err := apperrors.SearchError{Query: ev.Query, Cause: ev.Err}
		s.SearchErr = err
		return s, nil, err
	}
	s.Facilities = billing.NewCatalog(ev.Query, ev.Facilities)
	s.FacilitiesLoaded = true
	s.SearchErr = nil
	if s.pendingResolve {
		s = resolve(s)
	}
	return s, nil, nil
}

func selectFacility(s State, f billing.Facility) (State, Effect, error) {
	if s.Step != StepReview && s.Step != StepHospital {
		return s, nil, apperrors.PreconditionError{Operation: "select hospital", Requirement: "reset to start a new comparison"}
	}
	if strings.TrimSpace(f.ID) == "" {
		return s, nil, apperrors.ValidationError{Field: "hospital", Message: "facility id is required"}
	}
	if s.Selected != nil && s.Selected.ID == f.ID {
		return s, nil, nil
	}
	s.Selected = &f
	s.AutoSelected = false
	return invalidateResult(s), nil, nil
}

func clearSelection(s State) (State, Effect, error) {
	if s.Step != StepReview && s.Step != StepHospital {
		return s, nil, apperrors.PreconditionError{Operation: "clear selection", Requirement: "reset to start a new comparison"}
	}
	if s.Selected == nil {
		return s, nil, nil
	}
	s.Selected = nil
	s.AutoSelected = false
	return invalidateResult(s), nil, nil
}

// invalidateResult drops the comparison result and abandons any pending
// comparison after its inputs changed.
func invalidateResult(s State) State {
	s.Result = nil
	s.Comparing = false
	s.CompareErr = nil
	s.tickets = s.tickets.Bump(ClassCompare)
	return s
}

func validateItem(it billing.LineItem) error {
	switch {
	case strings.TrimSpace(it.Description) == "":
		return apperrors.ValidationError{Field: "description", Message: "must not be empty"}
	case it.Amount < 0 || math.IsNaN(it.Amount) || math.IsInf(it.Amount, 0):
		return apperrors.ValidationError{Field: "amount", Message: "must be a non-negative number"}
	case it.Quantity < 0:
		return apperrors.ValidationError{Field: "quantity", Message: "must be non-negative"}
	}
	return nil
}

func checkEditable(s State, op string) error {
	if s.Step != StepReview {
		return apperrors.PreconditionError{Operation: op, Requirement: "line items can only be changed during review"}
	}
	return nil
}

func checkIndex(s State, i int) error {
	if i < 0 || i >= len(s.Items) {
		return apperrors.ValidationError{Field: "index", Message: fmt.Sprintf("no line item %d", i+1)}
	}
	return nil
}

func editItem(s State, ev ItemEdited) (State, Effect, error) {
	if err := checkEditable(s, "edit item"); err != nil {
		return s, nil, err
	}
	if err := checkIndex(s, ev.Index); err != nil {
		return s, nil, err
	}
	if err := validateItem(ev.Item); err != nil {
		return s, nil, err
	}
	items := billing.CloneItems(s.Items)
	items[ev.Index] = ev.Item
	s.Items = items
	s.Edited = true
	return invalidateResult(s), nil, nil
}

func removeItem(s State, ev ItemRemoved) (State, Effect, error) {
	if err := checkEditable(s, "remove item"); err != nil {
		return s, nil, err
	}
	if err := checkIndex(s, ev.Index); err != nil {
		return s, nil, err
	}
	items := make([]billing.LineItem, 0, len(s.Items)-1)
	items = append(items, s.Items[:ev.Index]...)
	items = append(items, s.Items[ev.Index+1:]...)
	s.Items = items
	s.Edited = true
	return invalidateResult(s), nil, nil
}

func addItem(s State, ev ItemAdded) (State, Effect, error) {
	if err := checkEditable(s, "add item"); err != nil {
		return s, nil, err
	}
	if err := validateItem(ev.Item); err != nil {
		return s, nil, err
	}
	items := make([]billing.LineItem, len(s.Items), len(s.Items)+1)
	copy(items, s.Items)
	s.Items = append(items, ev.Item)
	s.Edited = true
	return invalidateResult(s), nil, nil
}

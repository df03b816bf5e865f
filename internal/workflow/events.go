package workflow

import (
	"github.com/agbru/billcheck/internal/api"
	"github.com/agbru/billcheck/internal/billing"
)

// Event is a user action or a remote response fed to Apply.
type Event interface{ isEvent() }

// FileSubmitted starts an upload of a bill PDF.
type FileSubmitted struct {
	Name string
	Data []byte
}

// ItemEdited replaces the line item at Index.
type ItemEdited struct {
	Index int
	Item  billing.LineItem
}

// ItemRemoved deletes the line item at Index.
type ItemRemoved struct{ Index int }

// ItemAdded appends a line item.
type ItemAdded struct{ Item billing.LineItem }

// Advanced moves from review to the hospital step.
type Advanced struct{}

// WentBack moves from the hospital step back to review.
type WentBack struct{}

// SearchRequested filters the facility list. An empty query lists all.
type SearchRequested struct{ Query string }

// FacilitySelected makes Facility the selection.
type FacilitySelected struct{ Facility billing.Facility }

// SelectionCleared drops the current selection.
type SelectionCleared struct{}

// CompareRequested submits the line items against the selected facility.
type CompareRequested struct {
	RadiusMiles *float64
	UseCMSData  *bool
}

// ResetRequested discards the run and returns to the upload step.
type ResetRequested struct{}

// HealthRequested probes the backend.
type HealthRequested struct{}

// Uploaded is the response to an UploadEffect.
type Uploaded struct {
	Ticket Ticket
	FileID string
	Err    error
}

// Extracted is the response to an ExtractEffect.
type Extracted struct {
	Ticket   Ticket
	Response api.ExtractResponse
	Err      error
}

// SearchCompleted is the response to a SearchEffect.
type SearchCompleted struct {
	Ticket     Ticket
	Query      string
	Facilities []billing.Facility
	Err        error
}

// Compared is the response to a CompareEffect.
type Compared struct {
	Ticket Ticket
	Result billing.ComparisonResult
	Err    error
}

// HealthChecked is the response to a HealthEffect.
type HealthChecked struct {
	Status api.HealthStatus
	Err    error
}

func (FileSubmitted) isEvent()    {}
func (ItemEdited) isEvent()       {}
func (ItemRemoved) isEvent()      {}
func (ItemAdded) isEvent()        {}
func (Advanced) isEvent()         {}
func (WentBack) isEvent()         {}
func (SearchRequested) isEvent()  {}
func (FacilitySelected) isEvent() {}
func (SelectionCleared) isEvent() {}
func (CompareRequested) isEvent() {}
func (ResetRequested) isEvent()   {}
func (HealthRequested) isEvent()  {}
func (Uploaded) isEvent()         {}
func (Extracted) isEvent()        {}
func (SearchCompleted) isEvent()  {}
func (Compared) isEvent()         {}
func (HealthChecked) isEvent()    {}

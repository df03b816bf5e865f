package workflow

import (
	"github.com/agbru/billcheck/internal/api"
	"github.com/agbru/billcheck/internal/billing"
)

// Step is the current workflow screen.
type Step int

// Workflow steps in forward order.
const (
	StepUpload Step = iota
	StepReview
	StepHospital
	StepResults
)

// String returns the lowercase step name.
func (s Step) String() string {
	switch s {
	case StepUpload:
		return "upload"
	case StepReview:
		return "review"
	case StepHospital:
		return "hospital"
	case StepResults:
		return "results"
	default:
		return "unknown"
	}
}

// UploadStatus is the busy state of the two-stage upload. The stages are
// mutually exclusive.
type UploadStatus int

// Upload stages.
const (
	UploadIdle UploadStatus = iota
	UploadUploading
	UploadExtracting
)

// String returns the stage name as shown to the user.
func (u UploadStatus) String() string {
	switch u {
	case UploadUploading:
		return "uploading"
	case UploadExtracting:
		return "extracting"
	default:
		return "idle"
	}
}

// BackendStatus records the last liveness probe.
type BackendStatus struct {
	Checked bool
	Status  api.HealthStatus
	Err     error
}

// State is an immutable snapshot of one workflow run. Apply never modifies a
// State or the slices it references; it returns a new one. Callers must treat
// the exported slices as read-only.
type State struct {
	Step Step

	// Bill under review.
	Items     []billing.LineItem
	Edited    bool
	Detection *billing.DetectionSignal
	Hint      *MatchHint

	// Facility choice. AutoSelected is set when the resolver made the choice.
	Selected     *billing.Facility
	AutoSelected bool

	Result *billing.ComparisonResult

	// Upload coordinator.
	Upload      UploadStatus
	PendingFile string
	UploadErr   error

	// Facility list snapshot. It outlives resets.
	Facilities       billing.Catalog
	FacilitiesLoaded bool
	Query            string
	Searching        bool
	SearchErr        error

	// Comparison orchestrator.
	Comparing  bool
	CompareErr error

	Backend BackendStatus

	pendingResolve bool
	tickets        Tickets
}

// New returns the initial state.
func New() State {
	return State{Step: StepUpload}
}

// Tickets returns the sequence counters.
func (s State) Tickets() Tickets { return s.tickets }

// PendingResolve reports whether a detection signal is waiting for the first
// usable facility list.
func (s State) PendingResolve() bool { return s.pendingResolve }

// Busy reports whether any workflow-owned remote call is outstanding.
func (s State) Busy() bool {
	return s.Upload != UploadIdle || s.Comparing
}

// CanCompare reports whether a comparison may be requested.
func (s State) CanCompare() bool {
	return s.Step == StepHospital && s.Selected != nil && !s.Comparing
}

// IsEmpty reports whether s holds no workflow data: no items, selection,
// result, detection, hint, errors or pending upload/comparison. The facility
// list and backend status are not workflow data and are ignored.
func (s State) IsEmpty() bool {
	return s.Step == StepUpload &&
		len(s.Items) == 0 && !s.Edited &&
		s.Detection == nil && s.Hint == nil &&
		s.Selected == nil && !s.AutoSelected &&
		s.Result == nil &&
		s.Upload == UploadIdle && s.PendingFile == "" && s.UploadErr == nil &&
		!s.Comparing && s.CompareErr == nil &&
		!s.pendingResolve
}

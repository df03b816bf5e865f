package workflow

import (
	"path/filepath"
	"strings"

	"github.com/agbru/billcheck/internal/billing"
	apperrors "github.com/agbru/billcheck/internal/errors"
)

// Upload stage names carried by apperrors.UploadError.
const (
	StageUploading  = "uploading"
	StageExtracting = "extracting"
)

// ValidateFileName accepts only names with a .pdf extension, in any case.
func ValidateFileName(name string) error {
	base := filepath.Base(strings.TrimSpace(name))
	if base == "" || base == "." || !strings.EqualFold(filepath.Ext(base), ".pdf") {
		return apperrors.ValidationError{Field: "file", Message: "only PDF files are accepted"}
	}
	return nil
}

func submitFile(s State, ev FileSubmitted) (State, Effect, error) {
	if s.Step != StepUpload && s.Step != StepReview {
		return s, nil, apperrors.PreconditionError{Operation: "upload", Requirement: "a bill can only be replaced before choosing a hospital"}
	}
	if err := ValidateFileName(ev.Name); err != nil {
		s.UploadErr = err
		return s, nil, err
	}

	var tk Ticket
	s.tickets, tk = s.tickets.Issue(ClassUpload)
	s.Upload = UploadUploading
	s.PendingFile = filepath.Base(ev.Name)
	s.UploadErr = nil
	return s, UploadEffect{Ticket: tk, FileName: s.PendingFile, Data: ev.Data}, nil
}

func uploaded(s State, ev Uploaded) (State, Effect, error) {
	if !s.tickets.IsCurrent(ev.Ticket) || s.Upload != UploadUploading {
		return s, nil, ErrStaleResponse
	}
	if ev.Err != nil {
		err := apperrors.UploadError{Stage: StageUploading, Cause: ev.Err}
		s.Upload = UploadIdle
		s.PendingFile = ""
		s.UploadErr = err
		return s, nil, err
	}
	s.Upload = UploadExtracting
	return s, ExtractEffect{Ticket: ev.Ticket, FileID: ev.FileID}, nil
}

// extracted commits a successful extraction atomically: new items and
// detection, a cleared selection and result, the resolver decision, and the
// move to review. On failure nothing but the upload status changes.
func extracted(s State, ev Extracted) (State, Effect, error) {
	if !s.tickets.IsCurrent(ev.Ticket) || s.Upload != UploadExtracting {
		return s, nil, ErrStaleResponse
	}
	if ev.Err != nil {
		err := apperrors.UploadError{Stage: StageExtracting, Cause: ev.Err}
		s.Upload = UploadIdle
		s.PendingFile = ""
		s.UploadErr = err
		return s, nil, err
	}

	items := billing.CloneItems(ev.Response.LineItems)
	if items == nil {
		items = []billing.LineItem{}
	}
	s.Items = items
	s.Edited = false
	s.Detection = nil
	if d := ev.Response.DetectedHospital; d != nil {
		cp := *d
		s.Detection = &cp
	}
	s.Hint = nil
	s.Selected = nil
	s.AutoSelected = false
	s.Result = nil
	s.Comparing = false
	s.CompareErr = nil
	s.tickets = s.tickets.Bump(ClassCompare)
	s.Upload = UploadIdle
	s.PendingFile = ""
	s.UploadErr = nil
	s.Step = StepReview

	if s.FacilitiesLoaded {
		return resolve(s), nil, nil
	}
	s.pendingResolve = s.Detection != nil
	if s.Searching {
		return s, nil, nil
	}
	return issueSearch(s, s.Query)
}

package workflow

import (
	"context"

	"github.com/agbru/billcheck/internal/api"
)

// Effect describes one remote call requested by Apply. A nil Effect means
// nothing to run.
type Effect interface{ isEffect() }

// UploadEffect sends the file bytes (stage "uploading").
type UploadEffect struct {
	Ticket   Ticket
	FileName string
	Data     []byte
}

// ExtractEffect requests extraction of an uploaded file (stage "extracting").
type ExtractEffect struct {
	Ticket Ticket
	FileID string
}

// SearchEffect requests the facility list for Query.
type SearchEffect struct {
	Ticket Ticket
	Query  string
}

// CompareEffect requests a comparison.
type CompareEffect struct {
	Ticket  Ticket
	Request api.CompareRequest
}

// HealthEffect probes the backend.
type HealthEffect struct{}

func (UploadEffect) isEffect()  {}
func (ExtractEffect) isEffect() {}
func (SearchEffect) isEffect()  {}
func (CompareEffect) isEffect() {}
func (HealthEffect) isEffect()  {}

// Execute runs eff against client and returns the response event. It blocks
// for the duration of the call and never panics on a nil effect.
func Execute(ctx context.Context, client api.Client, eff Effect) Event {
	switch e := eff.(type) {
	case UploadEffect:
		resp, err := client.Upload(ctx, e.FileName, e.Data)
		return Uploaded{Ticket: e.Ticket, FileID: resp.FileID, Err: err}
	case ExtractEffect:
		resp, err := client.Extract(ctx, e.FileID)
		return Extracted{Ticket: e.Ticket, Response: resp, Err: err}
	case SearchEffect:
		list, err := client.SearchHospitals(ctx, e.Query)
		return SearchCompleted{Ticket: e.Ticket, Query: e.Query, Facilities: list, Err: err}
	case CompareEffect:
		res, err := client.Compare(ctx, e.Request)
		return Compared{Ticket: e.Ticket, Result: res, Err: err}
	case HealthEffect:
		st, err := client.Health(ctx)
		return HealthChecked{Status: st, Err: err}
	default:
		return nil
	}
}

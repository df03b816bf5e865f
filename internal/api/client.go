// Package api provides a client for the bill checking backend: upload,
// extraction, facility search and rate comparison.
package api

import (
	"context"

	"github.com/agbru/billcheck/internal/billing"
)

//go:generate mockgen -destination=mocks/mock_client.go -package=mocks github.com/agbru/billcheck/internal/api Client

// Client defines the remote operations consumed by the workflow.
type Client interface {
	// Health probes the backend liveness endpoint.
	Health(ctx context.Context) (HealthStatus, error)
	// Upload sends a PDF and returns the identifier assigned by the server.
	Upload(ctx context.Context, name string, data []byte) (UploadResponse, error)
	// Extract parses an uploaded file into line items and a detection signal.
	Extract(ctx context.Context, fileID string) (ExtractResponse, error)
	// SearchHospitals filters facilities by name, city or address. An empty
	// query lists all facilities.
	SearchHospitals(ctx context.Context, query string) ([]billing.Facility, error)
	// GetHospital fetches one facility by id.
	GetHospital(ctx context.Context, id string) (billing.Facility, error)
	// Compare prices line items against the given facility.
	Compare(ctx context.Context, req CompareRequest) (billing.ComparisonResult, error)
}

// HealthStatus is the liveness probe response.
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// Healthy reports whether the backend declared itself healthy.
func (h HealthStatus) Healthy() bool {
	return h.Status == "healthy" || h.Status == "ok" || h.Status == "running"
}

// UploadResponse identifies an uploaded file.
type UploadResponse struct {
	FileID   string `json:"file_id"`
	Filename string `json:"filename"`
}

// ExtractRequest is the body of an extraction call.
type ExtractRequest struct {
	FileID string `json:"file_id"`
}

// ExtractResponse holds the parsed bill. DetectedHospital is nil when the
// extractor found no facility evidence.
type ExtractResponse struct {
	LineItems        []billing.LineItem       `json:"line_items"`
	DetectedHospital *billing.DetectionSignal `json:"detected_hospital"`
}

// CompareRequest is the body of a comparison call.
type CompareRequest struct {
	LineItems   []billing.LineItem `json:"line_items"`
	HospitalID  string             `json:"hospital_id"`
	RadiusMiles *float64           `json:"radius_miles,omitempty"`
	UseCMSData  *bool              `json:"use_cms_data,omitempty"`
}

// HospitalListResponse wraps a facility search result.
type HospitalListResponse struct {
	Hospitals []billing.Facility `json:"hospitals"`
}

// ErrorResponse is the backend's error body.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

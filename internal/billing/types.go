package billing

import (
	"encoding/json"
	"strings"
)

// LineItem is one charge entry extracted from a bill.
type LineItem struct {
	Code        *string `json:"code"`
	Description string  `json:"description"`
	Quantity    int     `json:"quantity"`
	Amount      float64 `json:"amount"`
}

// CodeOrEmpty returns the billing code, or "" when the item has none.
func (li LineItem) CodeOrEmpty() string {
	if li.Code == nil {
		return ""
	}
	return *li.Code
}

// CloneItems returns a copy of items that shares no backing array with the input.
func CloneItems(items []LineItem) []LineItem {
	if items == nil {
		return nil
	}
	out := make([]LineItem, len(items))
	copy(out, items)
	return out
}

// Facility is a billing institution as returned by the search service.
type Facility struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address"`
	City    string `json:"city"`
	State   string `json:"state"`
	Zip     string `json:"zip"`
	Type    string `json:"type"`
}

// Confidence is the extraction service's certainty about a detected facility.
type Confidence string

// Confidence levels. Any other wire value decodes as ConfidenceNone.
const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
	ConfidenceNone   Confidence = "none"
)

// ParseConfidence normalizes s to one of the four known levels.
func ParseConfidence(s string) Confidence {
	switch c := Confidence(strings.ToLower(strings.TrimSpace(s))); c {
	case ConfidenceHigh, ConfidenceMedium, ConfidenceLow:
		return c
	default:
		return ConfidenceNone
	}
}

// Normalized returns c as one of the four known levels. A zero Confidence,
// left by a payload that omits the field, reads as none.
func (c Confidence) Normalized() Confidence { return ParseConfidence(string(c)) }

// UnmarshalJSON decodes a confidence string, mapping unknown values to none.
func (c *Confidence) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*c = ConfidenceNone
		return nil
	}
	*c = ParseConfidence(s)
	return nil
}

// DetectionSignal is the extraction service's guess at which facility issued the bill.
type DetectionSignal struct {
	HospitalID   *string    `json:"hospital_id"`
	HospitalName *string    `json:"hospital_name"`
	DetectedName *string    `json:"detected_name,omitempty"`
	Confidence   Confidence `json:"confidence"`
}

// Status is the per-line price assessment returned by the comparison service.
type Status string

// Known line-item statuses.
const (
	StatusLow      Status = "low"
	StatusFair     Status = "fair"
	StatusHigh     Status = "high"
	StatusVeryHigh Status = "very_high"
	StatusUnknown  Status = "unknown"
)

// Assessment is the coarse classification of the whole bill.
type Assessment string

// Known overall assessments.
const (
	AssessmentFair                     Assessment = "fair"
	AssessmentSlightlyOvercharged      Assessment = "slightly_overcharged"
	AssessmentModeratelyOvercharged    Assessment = "moderately_overcharged"
	AssessmentSignificantlyOvercharged Assessment = "significantly_overcharged"
	AssessmentInsufficientData         Assessment = "insufficient_data"
)

// CMSData summarizes Medicare reference pricing for a code.
type CMSData struct {
	MedicareAvgPayment *float64 `json:"medicare_avg_payment"`
	MedicareMinPayment *float64 `json:"medicare_min_payment"`
	MedicareMaxPayment *float64 `json:"medicare_max_payment"`
	AvgSubmittedCharge *float64 `json:"avg_submitted_charge"`
	FacilityAvgPayment *float64 `json:"facility_avg_payment"`
	DataSource         *string  `json:"data_source"`
	Description        *string  `json:"description"`
	MatchWarning       *string  `json:"match_warning,omitempty"`
}

// RegionalStats describes gross charges for a code across the region.
type RegionalStats struct {
	Min     float64 `json:"min"`
	Max     float64 `json:"max"`
	Median  float64 `json:"median"`
	Average float64 `json:"average"`
	Count   int     `json:"count"`
}

// PeerPrice is another facility's price for the same code.
type PeerPrice struct {
	HospitalName   string  `json:"hospital_name"`
	GrossCharge    float64 `json:"gross_charge"`
	NegotiatedRate float64 `json:"negotiated_rate"`
}

// LineItemComparison is the priced assessment of one submitted line item.
type LineItemComparison struct {
	Code                   *string        `json:"code"`
	Description            string         `json:"description"`
	BilledAmount           float64        `json:"billed_amount"`
	Quantity               int            `json:"quantity"`
	CMSData                *CMSData       `json:"cms_data"`
	CMSDescription         *string        `json:"cms_description"`
	HospitalGrossCharge    *float64       `json:"hospital_gross_charge"`
	HospitalNegotiatedRate *float64       `json:"hospital_negotiated_rate"`
	RegionalStats          *RegionalStats `json:"regional_stats"`
	Status                 Status         `json:"status"`
	VariancePercent        *float64       `json:"variance_percent"`
	PotentialSavings       *float64       `json:"potential_savings"`
	OtherHospitals         []PeerPrice    `json:"other_hospitals"`
}

// ComparisonResult is valid only for the exact line items and hospital id that produced it.
type ComparisonResult struct {
	HospitalName          string               `json:"hospital_name"`
	HospitalID            string               `json:"hospital_id"`
	TotalBilled           float64              `json:"total_billed"`
	TotalFairValue        *float64             `json:"total_fair_value"`
	TotalPotentialSavings *float64             `json:"total_potential_savings"`
	OverallAssessment     Assessment           `json:"overall_assessment"`
	LineItems             []LineItemComparison `json:"line_items"`
	DataSources           []string             `json:"data_sources"`
}

// Ptr returns a pointer to v. Handy for optional fields in fixtures.
func Ptr[T any](v T) *T { return &v }

package assessment

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"github.com/agbru/billcheck/internal/billing"
)

func TestClassifyStatus(t *testing.T) {
	t.Parallel()
	tests := []struct {
		status billing.Status
		want   Severity
	}{
		{billing.StatusLow, SeverityOK},
		{billing.StatusFair, SeverityOK},
		{billing.StatusHigh, SeverityWarning},
		{billing.StatusVeryHigh, SeverityCritical},
		{billing.StatusUnknown, SeverityUnknown},
		{"", SeverityUnknown},
		{"HIGH", SeverityUnknown},
		{"extreme", SeverityUnknown},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.status), func(t *testing.T) {
			t.Parallel()
			if got := ClassifyStatus(tt.status); got != tt.want {
				t.Errorf("ClassifyStatus(%q) = %v, want %v", tt.status, got, tt.want)
			}
		})
	}
}

func TestClassifyOverall(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in       billing.Assessment
		wantSev  Level
		wantText string
	}{
		{billing.AssessmentFair, LevelOK, MessageFair},
		{billing.AssessmentSlightlyOvercharged, LevelLow, MessageSlightly},
		{billing.AssessmentModeratelyOvercharged, LevelMedium, "Several charges above typical rates"},
		{billing.AssessmentSignificantlyOvercharged, LevelHigh, MessageSignificantly},
		{billing.AssessmentInsufficientData, LevelUnknown, MessageInsufficientData},
		{"something_else", LevelUnknown, MessageInsufficientData},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(string(tt.in), func(t *testing.T) {
			t.Parallel()
			v := ClassifyOverall(tt.in)
			if v.Severity != tt.wantSev {
				t.Errorf("severity = %v, want %v", v.Severity, tt.wantSev)
			}
			if v.Message != tt.wantText {
				t.Errorf("message = %q, want %q", v.Message, tt.wantText)
			}
		})
	}
}

func TestClassifyOverall_DistinctAndOrdered(t *testing.T) {
	t.Parallel()
	ordered := []billing.Assessment{
		billing.AssessmentFair,
		billing.AssessmentSlightlyOvercharged,
		billing.AssessmentModeratelyOvercharged,
		billing.AssessmentSignificantlyOvercharged,
	}
	seen := map[string]bool{}
	prev := LevelUnknown
	for _, a := range ordered {
		v := ClassifyOverall(a)
		if seen[v.Message] {
			t.Errorf("duplicate message %q", v.Message)
		}
		seen[v.Message] = true
		if v.Severity <= prev {
			t.Errorf("%s: severity %v not above %v", a, v.Severity, prev)
		}
		prev = v.Severity
	}
}

func TestSeverityStrings(t *testing.T) {
	t.Parallel()
	if SeverityCritical.String() != "critical" || Severity(99).String() != "unknown" {
		t.Error("unexpected Severity names")
	}
	if LevelMedium.String() != "medium" || Level(-1).String() != "unknown" {
		t.Error("unexpected Level names")
	}
}

// TestClassifiers_Total_PropertyBased verifies both classifiers are defined
// for arbitrary strings and map anything outside the enumerations to unknown.
func TestClassifiers_Total_PropertyBased(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	known := map[string]bool{
		"low": true, "fair": true, "high": true, "very_high": true,
		"slightly_overcharged": true, "moderately_overcharged": true, "significantly_overcharged": true,
	}

	properties.Property("unrecognized status is unknown", prop.ForAll(
		func(s string) bool {
			if known[s] {
				return true
			}
			return ClassifyStatus(billing.Status(s)) == SeverityUnknown
		},
		gen.AnyString(),
	))

	properties.Property("unrecognized assessment is insufficient data", prop.ForAll(
		func(s string) bool {
			if known[s] {
				return true
			}
			v := ClassifyOverall(billing.Assessment(s))
			return v.Severity == LevelUnknown && v.Message == MessageInsufficientData
		},
		gen.AnyString(),
	))

	properties.TestingRun(t)
}

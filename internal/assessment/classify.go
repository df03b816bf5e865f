package assessment

import "github.com/agbru/billcheck/internal/billing"

// Severity classifies a single line item's price.
type Severity int

// Line-item severities. The zero value is SeverityUnknown.
const (
	SeverityUnknown Severity = iota
	SeverityOK
	SeverityWarning
	SeverityCritical
)

// String returns the lowercase severity name.
func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "ok"
	case SeverityWarning:
		return "warning"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// ClassifyStatus maps a line-item status to a severity. Unrecognized values
// yield SeverityUnknown.
func ClassifyStatus(status billing.Status) Severity {
	switch status {
	case billing.StatusLow, billing.StatusFair:
		return SeverityOK
	case billing.StatusHigh:
		return SeverityWarning
	case billing.StatusVeryHigh:
		return SeverityCritical
	default:
		return SeverityUnknown
	}
}

// Level orders bill-level verdicts: LevelOK < LevelLow < LevelMedium < LevelHigh.
// LevelUnknown is outside the order and compares below all of them.
type Level int

// Bill-level severities.
const (
	LevelUnknown Level = iota
	LevelOK
	LevelLow
	LevelMedium
	LevelHigh
)

// String returns the lowercase level name.
func (l Level) String() string {
	switch l {
	case LevelOK:
		return "ok"
	case LevelLow:
		return "low"
	case LevelMedium:
		return "medium"
	case LevelHigh:
		return "high"
	default:
		return "unknown"
	}
}

// Verdict is the display message and severity for an overall assessment.
type Verdict struct {
	Message  string
	Severity Level
}

// Overall assessment messages.
const (
	MessageFair             = "This bill appears fair compared to typical rates"
	MessageSlightly         = "A few charges are slightly above typical rates"
	MessageModerately       = "Several charges above typical rates"
	MessageSignificantly    = "Many charges are significantly above typical rates"
	MessageInsufficientData = "Insufficient data to assess this bill"
)

// ClassifyOverall maps a bill-level assessment to a verdict. insufficient_data
// and any unrecognized value yield the neutral message with LevelUnknown.
func ClassifyOverall(a billing.Assessment) Verdict {
	switch a {
	case billing.AssessmentFair:
		return Verdict{Message: MessageFair, Severity: LevelOK}
	case billing.AssessmentSlightlyOvercharged:
		return Verdict{Message: MessageSlightly, Severity: LevelLow}
	case billing.AssessmentModeratelyOvercharged:
		return Verdict{Message: MessageModerately, Severity: LevelMedium}
	case billing.AssessmentSignificantlyOvercharged:
		return Verdict{Message: MessageSignificantly, Severity: LevelHigh}
	default:
		return Verdict{Message: MessageInsufficientData, Severity: LevelUnknown}
	}
}

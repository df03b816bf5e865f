package workflow

import (
	"strings"

	"github.com/agbru/billcheck/internal/billing"
)

// MatchHint is a passive suggestion shown when the detected facility could
// not be selected automatically.
type MatchHint struct {
	// Name is what the bill appears to say: the detected name, else the
	// server-resolved hospital name, else the id.
	Name       string
	HospitalID string
	Confidence billing.Confidence
}

// Resolution is the outcome of matching a detection signal.
type Resolution struct {
	Selected *billing.Facility
	Hint     *MatchHint
}

// Resolve decides whether sig may select a facility. Selection happens only
// when confidence is high, the signal names a hospital id, and that id is in
// facilities. Every other signal yields at most a hint; a signal without an
// id or a name yields nothing.
func Resolve(sig *billing.DetectionSignal, facilities billing.Catalog) Resolution {
	if sig == nil {
		return Resolution{}
	}
	conf := sig.Confidence.Normalized()
	id := trimmed(sig.HospitalID)

	if conf == billing.ConfidenceHigh && id != "" {
		if f, ok := facilities.Lookup(id); ok {
			return Resolution{Selected: &f}
		}
	}

	name := trimmed(sig.DetectedName)
	if name == "" {
		name = trimmed(sig.HospitalName)
	}
	if name == "" {
		name = id
	}
	if name == "" {
		return Resolution{}
	}
	return Resolution{Hint: &MatchHint{Name: name, HospitalID: id, Confidence: conf}}
}

func trimmed(p *string) string {
	if p == nil {
		return ""
	}
	return strings.TrimSpace(*p)
}

// resolve runs the resolver once against the current snapshot. A selection
// the user already made is never replaced.
func resolve(s State) State {
	s.pendingResolve = false
	res := Resolve(s.Detection, s.Facilities)
	s.Hint = res.Hint
	if res.Selected != nil && s.Selected == nil {
		s.Selected = res.Selected
		s.AutoSelected = true
		s.tickets = s.tickets.Bump(ClassCompare)
	}
	return s
}

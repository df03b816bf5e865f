package workflow

import "errors"

// ErrStaleResponse is returned by Apply when a response event carries a
// ticket that is no longer the latest issued for its class. The state is
// returned unchanged.
var ErrStaleResponse = errors.New("workflow: stale response discarded")

// Class groups remote operations that share one sequence counter. Both
// upload stages share ClassUpload.
type Class int

// Operation classes.
const (
	ClassUpload Class = iota
	ClassSearch
	ClassCompare
)

// String returns the class name used in logs and metrics.
func (c Class) String() string {
	switch c {
	case ClassUpload:
		return "upload"
	case ClassSearch:
		return "search"
	case ClassCompare:
		return "compare"
	default:
		return "unknown"
	}
}

// Ticket tags one issued request. A response is applied only while its
// ticket is the latest of its class.
type Ticket struct {
	Class Class
	Seq   uint64
}

// Tickets holds the monotonic counter of each class. It is a value type:
// Issue and Bump return updated copies.
type Tickets struct {
	upload, search, compare uint64
}

func (t *Tickets) counter(c Class) *uint64 {
	switch c {
	case ClassUpload:
		return &t.upload
	case ClassSearch:
		return &t.search
	default:
		return &t.compare
	}
}

// Issue advances the counter of c and returns the new ticket.
func (t Tickets) Issue(c Class) (Tickets, Ticket) {
	p := t.counter(c)
	*p++
	return t, Ticket{Class: c, Seq: *p}
}

// Bump advances the counter of each class without handing out a ticket, so
// every response already in flight for those classes becomes stale.
func (t Tickets) Bump(classes ...Class) Tickets {
	for _, c := range classes {
		*t.counter(c)++
	}
	return t
}

// Latest returns the last sequence number issued or bumped for c.
func (t Tickets) Latest(c Class) uint64 {
	return *t.counter(c)
}

// IsCurrent reports whether tk is still the latest ticket of its class.
func (t Tickets) IsCurrent(tk Ticket) bool {
	return tk.Seq != 0 && t.Latest(tk.Class) == tk.Seq
}

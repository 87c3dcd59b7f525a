// Application status state machine.
//
// Valid status graph:
//
//	PENDING ──► VIEWED ──► INTERVIEWING ──► OFFERED
//	   │           │             │
//	   └───────────┴─────────────┴──► REJECTED
//
// Every non-terminal state may also move to WITHDRAWN, but only the owning
// student may do that — never the employer. OFFERED, REJECTED, and WITHDRAWN
// are terminal.
package portal

import "fmt"

// Status values mirror the application_status enum in PostgreSQL.
type Status string

const (
	StatusPending      Status = "PENDING"
	StatusViewed       Status = "VIEWED"
	StatusInterviewing Status = "INTERVIEWING"
	StatusOffered      Status = "OFFERED"
	StatusRejected     Status = "REJECTED"
	StatusWithdrawn    Status = "WITHDRAWN"
)

// validTransitions lists every allowed employer-side (from → to) pair.
// WITHDRAWN is handled separately because it is owner-only.
var validTransitions = map[Status][]Status{
	StatusPending:      {StatusViewed, StatusRejected},
	StatusViewed:       {StatusInterviewing, StatusRejected},
	StatusInterviewing: {StatusOffered, StatusRejected},
	// OFFERED, REJECTED, WITHDRAWN are terminal — no outgoing transitions
}

// ParseStatus converts a raw string to a Status, returning an error for
// unknown values. The batch endpoint accepts an arbitrary target string, so
// this runs before any state check.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	switch st {
	case StatusPending, StatusViewed, StatusInterviewing, StatusOffered, StatusRejected, StatusWithdrawn:
		return st, nil
	}
	return "", fmt.Errorf("unknown application status %q", s)
}

// IsTransitionAllowed returns true when an employer may move from → to.
// Out-of-order requests (e.g. PENDING → OFFERED) are rejected, never
// normalized.
func IsTransitionAllowed(from, to Status) bool {
	allowed, ok := validTransitions[from]
	if !ok {
		return false // terminal state — no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}

// CanWithdraw reports whether the owning student may withdraw from the given
// state. Withdrawal is allowed from any non-terminal state.
func CanWithdraw(from Status) bool {
	switch from {
	case StatusOffered, StatusRejected, StatusWithdrawn:
		return false
	}
	return true
}

// IsTerminal reports whether a status has no outgoing transitions at all.
func IsTerminal(s Status) bool {
	switch s {
	case StatusOffered, StatusRejected, StatusWithdrawn:
		return true
	}
	return false
}

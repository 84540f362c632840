package negotiation

// State is the lifecycle position of a Session. It only moves forward;
// StateFailed and StateClosed are final.
type State int

const (
	StateNew State = iota
	StateGathering
	StateComplete
	StateNegotiated
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateGathering:
		return "gathering"
	case StateComplete:
		return "complete"
	case StateNegotiated:
		return "negotiated"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// final reports whether no further transition is possible.
func (s State) final() bool {
	return s == StateFailed || s == StateClosed
}

// canTransition implements the forward-only rule. A negotiated session can
// still be closed, but it can no longer fail.
func canTransition(cur, next State) bool {
	switch {
	case cur.final():
		return false
	case next == StateClosed:
		return true
	case next == StateFailed:
		return cur != StateNegotiated
	default:
		return next > cur
	}
}

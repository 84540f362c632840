package negotiation

import "testing"

func TestCanTransition(t *testing.T) {
	testCases := []struct {
		cur, next State
		want      bool
	}{
		{StateNew, StateGathering, true},
		{StateNew, StateComplete, true},
		{StateGathering, StateComplete, true},
		{StateComplete, StateGathering, false},
		{StateComplete, StateNegotiated, true},
		{StateNegotiated, StateComplete, false},
		{StateGathering, StateFailed, true},
		{StateNegotiated, StateFailed, false},
		{StateNegotiated, StateClosed, true},
		{StateFailed, StateClosed, false},
		{StateFailed, StateNegotiated, false},
		{StateClosed, StateFailed, false},
		{StateClosed, StateClosed, false},
	}

	for _, tc := range testCases {
		t.Run(tc.cur.String()+"->"+tc.next.String(), func(t *testing.T) {
			if got := canTransition(tc.cur, tc.next); got != tc.want {
				t.Errorf("canTransition(%s, %s) mismatch: got %v, want %v", tc.cur, tc.next, got, tc.want)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	if got := State(42).String(); got != "unknown" {
		t.Errorf("String mismatch: got %q, want %q", got, "unknown")
	}
	if got := StateNegotiated.String(); got != "negotiated" {
		t.Errorf("String mismatch: got %q, want %q", got, "negotiated")
	}
}

package negotiation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pion/webrtc/v4"

	"github.com/1ureka/screencast/internal/sdpcodec"
	"github.com/1ureka/screencast/internal/signaling"
	"github.com/1ureka/screencast/internal/util"
)

var errNoLocalDescription = errors.New("no local description after ICE gathering")

// Session owns one PeerConnection from creation to teardown and performs at
// most one signaling exchange for it.
type Session struct {
	id      string
	role    Role
	pc      Peer
	tr      signaling.Transport
	timeout time.Duration
	hooks   Hooks

	// ctx ends when the session fails or is closed; it bounds role setup
	// and the in-flight exchange.
	ctx    context.Context
	cancel context.CancelFunc

	gathered  sync.Once
	closeOnce sync.Once
	stopWatch func() bool // guarded by mu

	settled    chan struct{}
	settleOnce sync.Once

	mu       sync.RWMutex
	state    State
	outcome  State // state at the moment the session settled
	err      error
	closeErr error
}

func newSession(ctx context.Context, pc Peer, role Role, tr signaling.Transport, timeout time.Duration, hooks Hooks) *Session {
	sCtx, sCancel := context.WithCancel(ctx)
	s := &Session{
		id:      uuid.NewString(),
		role:    role,
		pc:      pc,
		tr:      tr,
		timeout: timeout,
		hooks:   hooks,
		ctx:     sCtx,
		cancel:  sCancel,
		settled: make(chan struct{}),
		state:   StateNew,
	}

	// The caller's context bounds the whole session. An already-cancelled
	// ctx runs Close at once, so the handle is published under mu.
	s.mu.Lock()
	s.stopWatch = context.AfterFunc(ctx, func() { _ = s.Close() })
	s.mu.Unlock()
	return s
}

// ---------------------------------------------------------------------------
// Accessors
// ---------------------------------------------------------------------------

// ID returns the session's unique identifier.
func (s *Session) ID() string { return s.id }

// Role returns the role the session was started with.
func (s *Session) Role() Role { return s.role }

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Err returns the error that failed the session, if any.
func (s *Session) Err() error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.err
}

// Done returns a channel that is closed when the session fails or is closed.
func (s *Session) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Wait blocks until negotiation settles. It returns nil once the answer has
// been applied, the failure cause if negotiation failed, or ErrSessionClosed
// if the session was closed first.
func (s *Session) Wait(ctx context.Context) error {
	select {
	case <-s.settled:
	case <-ctx.Done():
		return ctx.Err()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	switch s.outcome {
	case StateNegotiated:
		return nil
	case StateFailed:
		return s.err
	default:
		return ErrSessionClosed
	}
}

// Close tears the session down. A pending gathering watcher is suppressed
// and an in-flight exchange is cancelled. Close is idempotent.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.mu.RLock()
		stop := s.stopWatch
		s.mu.RUnlock()
		if stop != nil {
			stop()
		}
		s.transition(StateClosed, nil)
	})

	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closeErr
}

// ---------------------------------------------------------------------------
// Negotiation
// ---------------------------------------------------------------------------

// onICECandidate is registered before role setup. The nil candidate marks
// the end of gathering and fires the exchange exactly once.
func (s *Session) onICECandidate(c *webrtc.ICECandidate) {
	if c != nil {
		util.LogDebug("[%s] local candidate: %s", s.tag(), c.String())
		return
	}

	s.gathered.Do(func() {
		if !s.transition(StateComplete, nil) {
			util.LogDebug("[%s] gathering finished after session ended; offer not sent", s.tag())
			return
		}
		go s.exchange()
	})
}

// exchange sends the gathered local description and applies the answer.
func (s *Session) exchange() {
	local := s.pc.LocalDescription()
	if local == nil {
		s.fail(errNoLocalDescription)
		return
	}

	offer, err := sdpcodec.Encode(*local)
	if err != nil {
		s.fail(err)
		return
	}
	util.LogInfo("[%s] ICE gathering complete, sending offer %08x (%d bytes)",
		s.tag(), util.Fingerprint(offer), len(offer))

	ctx, cancel := s.ctx, context.CancelFunc(func() {})
	if s.timeout > 0 {
		ctx, cancel = context.WithTimeout(s.ctx, s.timeout)
	}
	encoded, err := s.tr.Exchange(ctx, offer)
	cancel()
	if err != nil {
		s.fail(err)
		return
	}

	encoded = strings.TrimSpace(encoded)
	if encoded == "" {
		s.fail(ErrEmptyAnswer)
		return
	}
	util.LogDebug("[%s] received answer %08x (%d bytes)", s.tag(), util.Fingerprint(encoded), len(encoded))

	answer, err := sdpcodec.Decode(encoded)
	if err != nil {
		s.fail(err)
		return
	}
	if answer.SDP == "" {
		s.fail(ErrEmptyAnswer)
		return
	}
	if answer.Type != webrtc.SDPTypeAnswer {
		s.fail(fmt.Errorf("%w: %s", ErrUnexpectedDescription, answer.Type))
		return
	}

	if s.ctx.Err() != nil {
		return
	}
	if err := s.pc.SetRemoteDescription(answer); err != nil {
		s.fail(fmt.Errorf("failed to apply remote description: %w", err))
		return
	}

	if s.transition(StateNegotiated, nil) {
		util.LogSuccess("[%s] remote description applied, %s session negotiated", s.tag(), s.role)
	}
}

// ---------------------------------------------------------------------------
// State
// ---------------------------------------------------------------------------

// transition moves the session to next if the forward-only rule allows it
// and reports whether it did. Entering a final state releases the
// PeerConnection before observers are told and Wait returns.
func (s *Session) transition(next State, err error) bool {
	s.mu.Lock()
	cur := s.state
	if !canTransition(cur, next) {
		s.mu.Unlock()
		return false
	}
	s.state = next
	if err != nil {
		s.err = err
	}
	if next >= StateNegotiated && s.outcome == StateNew {
		s.outcome = next
	}
	s.mu.Unlock()

	util.LogDebug("[%s] session state: %s -> %s", s.tag(), cur, next)

	if next.final() {
		if next == StateFailed {
			util.LogError("[%s] negotiation failed: %v", s.tag(), err)
		}
		s.cancel()
		cerr := s.pc.Close()
		if cerr != nil {
			util.LogDebug("[%s] failed to close PeerConnection: %v", s.tag(), cerr)
		}
		s.mu.Lock()
		s.closeErr = cerr
		s.mu.Unlock()
	}

	if s.hooks.OnStateChange != nil {
		s.hooks.OnStateChange(s, next)
	}
	if next == StateFailed && s.hooks.OnError != nil {
		s.hooks.OnError(s, err)
	}

	if next >= StateNegotiated {
		s.settleOnce.Do(func() { close(s.settled) })
	}
	return true
}

// fail records err as the session outcome. Errors after the session has
// already ended are dropped.
func (s *Session) fail(err error) {
	s.transition(StateFailed, err)
}

func (s *Session) tag() string {
	return util.ShortID(s.id)
}

package negotiation_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/1ureka/screencast/internal/negotiation"
	"github.com/1ureka/screencast/internal/signaling"
)

const (
	offerSDP = "v=0\r\n" +
		"o=- 1001 1 IN IP4 127.0.0.1\r\n" +
		"s=-\r\n" +
		"t=0 0\r\n"

	answerSDP = "v=0\r\n" +
		"o=- 2002 1 IN IP4 127.0.0.1\r\n" +
		"s=-\r\n" +
		"t=0 0\r\n"
)

// ---------------------------------------------------------------------------
// fakePeer
// ---------------------------------------------------------------------------

// fakePeer records what a role and session do to a PeerConnection. With
// autoGather set, applying the local description ends gathering right away.
type fakePeer struct {
	mu sync.Mutex

	offerSDP   string
	autoGather bool
	remoteErr  error

	local        *webrtc.SessionDescription
	remote       *webrtc.SessionDescription
	remoteCalls  int
	tracks       []webrtc.TrackLocal
	transceivers []transceiverCall
	closed       bool

	onTrack             func(*webrtc.TrackRemote, *webrtc.RTPReceiver)
	onNegotiationNeeded func()
	onCandidate         func(*webrtc.ICECandidate)
	onICEState          func(webrtc.ICEConnectionState)
}

type transceiverCall struct {
	kind webrtc.RTPCodecType
	init []webrtc.RTPTransceiverInit
}

var _ negotiation.Peer = (*fakePeer)(nil)

func newFakePeer(autoGather bool) *fakePeer {
	return &fakePeer{offerSDP: offerSDP, autoGather: autoGather}
}

func (p *fakePeer) CreateOffer(*webrtc.OfferOptions) (webrtc.SessionDescription, error) {
	return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: p.offerSDP}, nil
}

func (p *fakePeer) SetLocalDescription(desc webrtc.SessionDescription) error {
	p.mu.Lock()
	p.local = &desc
	gather := p.autoGather
	p.mu.Unlock()

	if gather {
		go p.finishGathering()
	}
	return nil
}

func (p *fakePeer) LocalDescription() *webrtc.SessionDescription {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.local
}

func (p *fakePeer) SetRemoteDescription(desc webrtc.SessionDescription) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.remoteCalls++
	if p.remoteErr != nil {
		return p.remoteErr
	}
	p.remote = &desc
	return nil
}

func (p *fakePeer) AddTrack(track webrtc.TrackLocal) (*webrtc.RTPSender, error) {
	p.mu.Lock()
	p.tracks = append(p.tracks, track)
	handler := p.onNegotiationNeeded
	p.mu.Unlock()

	if handler != nil {
		go handler()
	}
	return nil, nil
}

func (p *fakePeer) AddTransceiverFromKind(kind webrtc.RTPCodecType, init ...webrtc.RTPTransceiverInit) (*webrtc.RTPTransceiver, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.transceivers = append(p.transceivers, transceiverCall{kind: kind, init: init})
	return nil, nil
}

func (p *fakePeer) OnTrack(f func(*webrtc.TrackRemote, *webrtc.RTPReceiver)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onTrack = f
}

func (p *fakePeer) OnNegotiationNeeded(f func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onNegotiationNeeded = f
}

func (p *fakePeer) OnICECandidate(f func(*webrtc.ICECandidate)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onCandidate = f
}

func (p *fakePeer) OnICEConnectionStateChange(f func(webrtc.ICEConnectionState)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.onICEState = f
}

func (p *fakePeer) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

// finishGathering delivers the end-of-candidates event.
func (p *fakePeer) finishGathering() {
	p.mu.Lock()
	handler := p.onCandidate
	p.mu.Unlock()

	if handler != nil {
		handler(nil)
	}
}

func (p *fakePeer) isClosed() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.closed
}

func (p *fakePeer) remoteCallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.remoteCalls
}

// ---------------------------------------------------------------------------
// fakeTransport
// ---------------------------------------------------------------------------

// fakeTransport returns a canned answer or error. With block set, Exchange
// waits for its context to end.
type fakeTransport struct {
	mu     sync.Mutex
	answer string
	err    error
	block  bool
	offers []string
	called chan struct{}
}

var _ signaling.Transport = (*fakeTransport)(nil)

func newFakeTransport(answer string, err error) *fakeTransport {
	return &fakeTransport{answer: answer, err: err, called: make(chan struct{}, 8)}
}

func (f *fakeTransport) Exchange(ctx context.Context, offer string) (string, error) {
	f.mu.Lock()
	f.offers = append(f.offers, offer)
	block := f.block
	f.mu.Unlock()

	f.called <- struct{}{}

	if block {
		<-ctx.Done()
		return "", &signaling.TransportError{Endpoint: "fake", Err: ctx.Err()}
	}
	return f.answer, f.err
}

func (f *fakeTransport) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.offers)
}

// ---------------------------------------------------------------------------
// fakeSource
// ---------------------------------------------------------------------------

type fakeSource struct {
	err error
}

var _ negotiation.DisplaySource = (*fakeSource)(nil)

func (s *fakeSource) CaptureDisplay(context.Context) (webrtc.TrackLocal, error) {
	if s.err != nil {
		return nil, s.err
	}
	return webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: webrtc.MimeTypeVP8},
		"video", "screen",
	)
}

// ---------------------------------------------------------------------------
// Helpers
// ---------------------------------------------------------------------------

// newTestController wires a controller to a single fake peer.
func newTestController(t *testing.T, pc *fakePeer, hooks negotiation.Hooks) *negotiation.Controller {
	t.Helper()
	c, err := negotiation.NewController(negotiation.Options{
		ExchangeTimeout: 2 * time.Second,
		Hooks:           hooks,
		NewPeer: func(webrtc.Configuration) (negotiation.Peer, error) {
			return pc, nil
		},
	})
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	return c
}

// waitSettled waits for the session outcome with a test-sized deadline.
func waitSettled(t *testing.T, s *negotiation.Session) error {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := s.Wait(ctx)
	if err == context.DeadlineExceeded && ctx.Err() != nil {
		t.Fatalf("session did not settle, state %s", s.State())
	}
	return err
}

// waitFor polls cond until it holds or the test times out.
func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

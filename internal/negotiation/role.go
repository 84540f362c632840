package negotiation

import (
	"context"
	"fmt"
	"sync"

	"github.com/pion/webrtc/v4"

	"github.com/1ureka/screencast/internal/util"
)

// Role configures a fresh PeerConnection for one side of the session. Setup
// returns once a local offer has been set; gathering then proceeds on its own.
type Role interface {
	fmt.Stringer
	Setup(ctx context.Context, pc Peer) error
	OnRemoteTrack(track *webrtc.TrackRemote, receiver *webrtc.RTPReceiver)
}

var (
	_ Role = (*Publisher)(nil)
	_ Role = (*Subscriber)(nil)
)

// createOffer creates an offer and applies it as the local description,
// which starts ICE gathering.
func createOffer(pc Peer, options *webrtc.OfferOptions) error {
	offer, err := pc.CreateOffer(options)
	if err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	if err := pc.SetLocalDescription(offer); err != nil {
		return fmt.Errorf("failed to set local description: %w", err)
	}
	return nil
}

// ---------------------------------------------------------------------------
// Publisher
// ---------------------------------------------------------------------------

// Publisher broadcasts one display stream and never consumes remote media.
// Only the first negotiation-needed event produces an offer; later ones are
// logged and ignored because the signaling exchange happens once.
type Publisher struct {
	Source DisplaySource
}

func (p *Publisher) String() string { return "publisher" }

// Setup acquires the display stream, attaches it, and waits for the offer
// that the resulting negotiation-needed event produces.
func (p *Publisher) Setup(ctx context.Context, pc Peer) error {
	if p.Source == nil {
		return &MediaAcquisitionError{Err: fmt.Errorf("no display source configured")}
	}

	offered := make(chan error, 1)
	var first sync.Once
	pc.OnNegotiationNeeded(func() {
		handled := false
		first.Do(func() {
			handled = true
			go func() { offered <- createOffer(pc, nil) }()
		})
		if !handled {
			util.LogWarning("renegotiation requested; one-shot signaling cannot carry it, ignoring")
		}
	})

	track, err := p.Source.CaptureDisplay(ctx)
	if err != nil {
		return &MediaAcquisitionError{Err: err}
	}

	sender, err := pc.AddTrack(track)
	if err != nil {
		return fmt.Errorf("failed to attach display track: %w", err)
	}
	go drainRTCP(sender)

	select {
	case err := <-offered:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// OnRemoteTrack ignores inbound media; a publisher only sends.
func (p *Publisher) OnRemoteTrack(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
	util.LogDebug("publisher ignoring remote %s track %s", track.Kind(), track.ID())
}

// drainRTCP reads incoming RTCP so interceptors (NACK, PLI) keep working.
// It returns when the sender is closed.
func drainRTCP(sender *webrtc.RTPSender) {
	if sender == nil {
		return
	}
	buf := make([]byte, 1500)
	for {
		if _, _, err := sender.Read(buf); err != nil {
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Subscriber
// ---------------------------------------------------------------------------

// Subscriber receives one video stream and never attaches local media.
type Subscriber struct {
	Sink TrackSink
}

func (s *Subscriber) String() string { return "subscriber" }

// Setup asks to receive video and applies the offer.
func (s *Subscriber) Setup(_ context.Context, pc Peer) error {
	pc.OnTrack(s.OnRemoteTrack)

	if _, err := pc.AddTransceiverFromKind(webrtc.RTPCodecTypeVideo, webrtc.RTPTransceiverInit{
		Direction: webrtc.RTPTransceiverDirectionRecvonly,
	}); err != nil {
		return fmt.Errorf("failed to add video transceiver: %w", err)
	}

	return createOffer(pc, nil)
}

// OnRemoteTrack starts playback of the inbound stream.
func (s *Subscriber) OnRemoteTrack(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
	util.LogInfo("receiving %s track %s (%s)", track.Kind(), track.ID(), track.Codec().MimeType)
	if s.Sink == nil {
		util.LogWarning("no sink configured; dropping track %s", track.ID())
		return
	}
	s.Sink.Play(track)
}

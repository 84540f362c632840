// Package negotiation drives a one-shot, non-trickle WebRTC negotiation: it
// lets a Role configure a PeerConnection, waits for ICE gathering to finish,
// sends the complete local description through a signaling.Transport and
// applies the answer that comes back.
package negotiation

import (
	"context"
	"errors"
	"fmt"

	"github.com/pion/webrtc/v4"
)

// Peer is the part of *webrtc.PeerConnection a session and its roles use.
type Peer interface {
	CreateOffer(options *webrtc.OfferOptions) (webrtc.SessionDescription, error)
	SetLocalDescription(desc webrtc.SessionDescription) error
	LocalDescription() *webrtc.SessionDescription
	SetRemoteDescription(desc webrtc.SessionDescription) error

	AddTrack(track webrtc.TrackLocal) (*webrtc.RTPSender, error)
	AddTransceiverFromKind(kind webrtc.RTPCodecType, init ...webrtc.RTPTransceiverInit) (*webrtc.RTPTransceiver, error)

	OnTrack(f func(*webrtc.TrackRemote, *webrtc.RTPReceiver))
	OnNegotiationNeeded(f func())
	OnICECandidate(f func(*webrtc.ICECandidate))
	OnICEConnectionStateChange(f func(webrtc.ICEConnectionState))

	Close() error
}

var _ Peer = (*webrtc.PeerConnection)(nil)

// DisplaySource acquires the local display stream a Publisher broadcasts.
type DisplaySource interface {
	CaptureDisplay(ctx context.Context) (webrtc.TrackLocal, error)
}

// TrackSink consumes a remote track until it ends.
type TrackSink interface {
	Play(track *webrtc.TrackRemote)
}

var (
	// ErrEmptyAnswer is returned when the signaling endpoint answered with
	// an empty session description.
	ErrEmptyAnswer = errors.New("session description must not be empty")

	// ErrUnexpectedDescription is returned when the remote description is
	// not an answer.
	ErrUnexpectedDescription = errors.New("unexpected remote description type")

	// ErrSessionClosed is returned by Session.Wait when the session was
	// closed before negotiation settled.
	ErrSessionClosed = errors.New("session closed")
)

// MediaAcquisitionError reports that the display stream could not be
// obtained (permission denied, no source, unreadable file).
type MediaAcquisitionError struct {
	Err error
}

func (e *MediaAcquisitionError) Error() string {
	return fmt.Sprintf("failed to acquire display stream: %v", e.Err)
}

func (e *MediaAcquisitionError) Unwrap() error { return e.Err }

package negotiation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/1ureka/screencast/internal/signaling"
	"github.com/1ureka/screencast/internal/util"
)

// DefaultExchangeTimeout bounds a single signaling exchange.
const DefaultExchangeTimeout = 15 * time.Second

// Hooks are optional observers of session progress. They run on pion's or
// the session's goroutines and must not block.
type Hooks struct {
	OnStateChange              func(s *Session, state State)
	OnError                    func(s *Session, err error)
	OnICEConnectionStateChange func(s *Session, state webrtc.ICEConnectionState)
}

// Options configures a Controller.
type Options struct {
	// API builds PeerConnections. Nil means NewAPI(nil).
	API *webrtc.API

	// ICEServers is passed to every PeerConnection. Nil means
	// DefaultICEServers; an empty non-nil slice disables STUN.
	ICEServers []webrtc.ICEServer

	// ExchangeTimeout bounds each signaling exchange. Zero means
	// DefaultExchangeTimeout; a negative value disables the bound.
	ExchangeTimeout time.Duration

	Hooks Hooks

	// NewPeer overrides PeerConnection construction.
	NewPeer func(cfg webrtc.Configuration) (Peer, error)
}

// Controller starts negotiation sessions. Sessions started by the same
// Controller share nothing but its configuration.
type Controller struct {
	iceServers []webrtc.ICEServer
	timeout    time.Duration
	hooks      Hooks
	newPeer    func(cfg webrtc.Configuration) (Peer, error)
}

// NewController creates a Controller from opts.
func NewController(opts Options) (*Controller, error) {
	c := &Controller{
		iceServers: opts.ICEServers,
		timeout:    opts.ExchangeTimeout,
		hooks:      opts.Hooks,
		newPeer:    opts.NewPeer,
	}

	if c.iceServers == nil {
		c.iceServers = DefaultICEServers()
	}
	if c.timeout == 0 {
		c.timeout = DefaultExchangeTimeout
	}

	if c.newPeer == nil {
		api := opts.API
		if api == nil {
			var err error
			if api, err = NewAPI(nil); err != nil {
				return nil, err
			}
		}
		c.newPeer = func(cfg webrtc.Configuration) (Peer, error) {
			pc, err := api.NewPeerConnection(cfg)
			if err != nil {
				return nil, err
			}
			return pc, nil
		}
	}

	return c, nil
}

// Start creates a PeerConnection, lets role configure it and arms the
// gathering watcher. The offer is sent through tr once gathering completes;
// use Session.Wait to learn the outcome.
//
// If role setup fails the PeerConnection is closed, nothing is sent and the
// error is returned as-is (a *MediaAcquisitionError for a denied capture).
func (c *Controller) Start(ctx context.Context, role Role, tr signaling.Transport) (*Session, error) {
	if role == nil {
		return nil, errors.New("negotiation: nil role")
	}
	if tr == nil {
		return nil, errors.New("negotiation: nil signaling transport")
	}

	pc, err := c.newPeer(webrtc.Configuration{ICEServers: c.iceServers})
	if err != nil {
		return nil, fmt.Errorf("failed to create PeerConnection: %w", err)
	}

	s := newSession(ctx, pc, role, tr, c.timeout, c.hooks)
	util.LogInfo("[%s] starting %s session", s.tag(), role)

	// Diagnostics only: ICE connection state never drives the session.
	pc.OnICEConnectionStateChange(func(state webrtc.ICEConnectionState) {
		if state == webrtc.ICEConnectionStateFailed {
			util.LogWarning("[%s] ICE connection state: %s", s.tag(), state)
		} else {
			util.LogInfo("[%s] ICE connection state: %s", s.tag(), state)
		}
		if c.hooks.OnICEConnectionStateChange != nil {
			c.hooks.OnICEConnectionStateChange(s, state)
		}
	})

	pc.OnICECandidate(s.onICECandidate)

	if err := role.Setup(s.ctx, pc); err != nil {
		s.fail(err)
		return nil, err
	}

	s.transition(StateGathering, nil)
	return s, nil
}

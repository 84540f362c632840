package negotiation

import (
	"fmt"
	"time"

	"github.com/pion/interceptor"
	"github.com/pion/interceptor/pkg/intervalpli"
	"github.com/pion/webrtc/v4"

	"github.com/1ureka/screencast/internal/util"
)

// DefaultSTUNServer is used for ICE candidate gathering. No TURN; sessions
// rely on direct connectivity.
const DefaultSTUNServer = "stun:stun.l.google.com:19302"

var stunServers = []string{DefaultSTUNServer}

// DefaultPLIInterval is how often a subscriber asks the publisher for a
// keyframe.
const DefaultPLIInterval = 3 * time.Second

// DefaultICEServers returns the ICE configuration used when none is given.
func DefaultICEServers() []webrtc.ICEServer {
	return []webrtc.ICEServer{{URLs: append([]string(nil), stunServers...)}}
}

// NewAPI builds a pion API with the default codecs, the default interceptors
// plus periodic PLI generation, and pion's logs routed through ours.
// se may be nil.
func NewAPI(se *webrtc.SettingEngine) (*webrtc.API, error) {
	if se == nil {
		se = &webrtc.SettingEngine{}
	}
	if se.LoggerFactory == nil {
		se.LoggerFactory = util.NewPionLoggerFactory()
	}

	mediaEngine := &webrtc.MediaEngine{}
	if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		return nil, fmt.Errorf("register default codecs: %w", err)
	}

	registry := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(mediaEngine, registry); err != nil {
		return nil, fmt.Errorf("register default interceptors: %w", err)
	}

	pli, err := intervalpli.NewReceiverInterceptor(intervalpli.GeneratorInterval(DefaultPLIInterval))
	if err != nil {
		return nil, fmt.Errorf("create PLI interceptor: %w", err)
	}
	registry.Add(pli)

	return webrtc.NewAPI(
		webrtc.WithSettingEngine(*se),
		webrtc.WithMediaEngine(mediaEngine),
		webrtc.WithInterceptorRegistry(registry),
	), nil
}

// Package config holds the CLI configuration types.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/1ureka/screencast/internal/negotiation"
)

// Role represents the user's chosen side of the screen share.
type Role string

const (
	RolePublisher  Role = "publisher"
	RoleSubscriber Role = "subscriber"
)

// Mode selects the signaling flavor.
type Mode string

const (
	ModeRelay Mode = "relay" // POST {message,status} to /host or /peer
	ModeSFU   Mode = "sfu"   // POST the raw offer to /sdp
	ModeWS    Mode = "ws"    // one relay envelope each way over a WebSocket
)

const (
	DefaultEndpoint        = "http://localhost:8080"
	DefaultExchangeTimeout = 15 * time.Second
	DefaultSTUNServer      = negotiation.DefaultSTUNServer
)

// Config stores all parameters gathered from flags or interactive prompts.
type Config struct {
	Role     Role
	Mode     Mode
	Endpoint string // base URL of the signaling server

	SourcePath string // Publisher: IVF file played as the display
	Loop       bool   // Publisher: restart the file at end
	OutputPath string // Subscriber: IVF file to record into, empty to discard

	ExchangeTimeout time.Duration
	STUNServers     []string // empty disables STUN

	ChatURL string // optional chat WebSocket
	Debug   bool
}

// Default returns a Config with every optional field filled in.
func Default() Config {
	return Config{
		Mode:            ModeRelay,
		Endpoint:        DefaultEndpoint,
		ExchangeTimeout: DefaultExchangeTimeout,
		STUNServers:     []string{DefaultSTUNServer},
	}
}

// Validate reports the first problem that would prevent a session.
func (c Config) Validate() error {
	switch c.Role {
	case RolePublisher:
		if c.SourcePath == "" {
			return errors.New("publisher needs a display source file")
		}
	case RoleSubscriber:
	default:
		return fmt.Errorf("invalid role %q: must be %q or %q", c.Role, RolePublisher, RoleSubscriber)
	}

	if _, err := NormalizeEndpoint(c.Endpoint, c.Mode); err != nil {
		return err
	}
	if c.ExchangeTimeout < 0 {
		return fmt.Errorf("invalid exchange timeout %s", c.ExchangeTimeout)
	}
	for _, s := range c.STUNServers {
		if !strings.HasPrefix(s, "stun:") && !strings.HasPrefix(s, "stuns:") {
			return fmt.Errorf("invalid STUN server %q", s)
		}
	}
	return nil
}

// ParseMode accepts a mode name case-insensitively.
func ParseMode(raw string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(raw))); m {
	case ModeRelay, ModeSFU, ModeWS:
		return m, nil
	default:
		return "", fmt.Errorf("invalid mode %q: must be relay, sfu or ws", raw)
	}
}

// NormalizeEndpoint validates a signaling URL for mode and returns it
// without a trailing slash. A bare host gets a scheme that fits the mode.
func NormalizeEndpoint(raw string, mode Mode) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw != "" && !strings.Contains(raw, "://") {
		if mode == ModeWS {
			raw = "ws://" + raw
		} else {
			raw = "http://" + raw
		}
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid signaling URL: %q", raw)
	}

	switch mode {
	case ModeWS:
		if u.Scheme != "ws" && u.Scheme != "wss" {
			return "", fmt.Errorf("ws mode needs a ws:// or wss:// URL, got %q", raw)
		}
	case ModeRelay, ModeSFU:
		if u.Scheme != "http" && u.Scheme != "https" {
			return "", fmt.Errorf("%s mode needs an http:// or https:// URL, got %q", mode, raw)
		}
	default:
		return "", fmt.Errorf("invalid mode %q", mode)
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// ICEServers converts the STUN list into pion's ICE configuration. An empty
// list yields an empty, non-nil slice.
func (c Config) ICEServers() []webrtc.ICEServer {
	if len(c.STUNServers) == 0 {
		return []webrtc.ICEServer{}
	}
	return []webrtc.ICEServer{{URLs: append([]string(nil), c.STUNServers...)}}
}

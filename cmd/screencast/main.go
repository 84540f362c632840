// Screencast CLI entry point.
//
// This tool shares a screen one way over WebRTC. A publisher broadcasts a
// display stream (an IVF file stands in for the capture); a subscriber
// receives it. Each side sends one complete session description, after ICE
// gathering has finished, to an HTTP or WebSocket signaling server.
//
// It can be launched interactively (no flags) or non-interactively via CLI
// flags (-role, -mode, -url, -source, -output, ...).
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/pterm/pterm"

	"github.com/1ureka/screencast/internal/chat"
	"github.com/1ureka/screencast/internal/config"
	"github.com/1ureka/screencast/internal/media"
	"github.com/1ureka/screencast/internal/negotiation"
	"github.com/1ureka/screencast/internal/sdpcodec"
	"github.com/1ureka/screencast/internal/signaling"
	"github.com/1ureka/screencast/internal/util"
)

var version = "dev"

func main() {
	// Root context, cancelled on Ctrl+C.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg := config.Default()

	// CLI flags.
	role := flag.String("role", "", "Role: publisher or subscriber")
	mode := flag.String("mode", string(cfg.Mode), "Signaling flavor: relay, sfu or ws")
	endpoint := flag.String("url", cfg.Endpoint, "Signaling server URL")
	source := flag.String("source", "", "IVF file to share as the display (publisher only)")
	loop := flag.Bool("loop", false, "Replay the source file when it ends (publisher only)")
	output := flag.String("output", "", "IVF file to record the received stream into (subscriber only)")
	timeout := flag.Duration("timeout", cfg.ExchangeTimeout, "Timeout for the signaling exchange")
	stun := flag.String("stun", strings.Join(cfg.STUNServers, ","), "Comma-separated STUN servers, empty to disable")
	chatURL := flag.String("chat", "", "Chat WebSocket URL to join alongside the session (optional)")
	debugMode := flag.Bool("debug", false, "Enable debug logging")
	flag.Parse()

	if *debugMode {
		util.EnableDebug()
	}

	pterm.Info.Println(fmt.Sprintf("Screencast v%s", version))
	pterm.Println()

	cfg.Endpoint = *endpoint
	cfg.SourcePath = *source
	cfg.Loop = *loop
	cfg.OutputPath = *output
	cfg.ExchangeTimeout = *timeout
	cfg.STUNServers = splitList(*stun)
	cfg.ChatURL = *chatURL
	cfg.Debug = *debugMode

	m, err := config.ParseMode(*mode)
	if err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}
	cfg.Mode = m

	switch *role {
	case "":
		// No -role flag: interactive mode.
		cfg = runInteractive(cfg)

	case string(config.RolePublisher), string(config.RoleSubscriber):
		cfg.Role = config.Role(*role)

	default:
		util.LogError("invalid -role: must be 'publisher' or 'subscriber'")
		os.Exit(1)
	}

	if err := cfg.Validate(); err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}

	run(ctx, cfg)
	util.LogInfo("session closed")
}

// ---------------------------------------------------------------------------
// Run modes
// ---------------------------------------------------------------------------

// runInteractive fills in the role and its inputs through prompts when no
// -role flag is provided.
func runInteractive(cfg config.Config) config.Config {
	role, _ := pterm.DefaultInteractiveSelect.
		WithOptions([]string{"Publisher: share a screen", "Subscriber: watch a shared screen"}).
		WithDefaultText("Select your role").
		Show()

	pterm.Println()

	mode, _ := pterm.DefaultInteractiveSelect.
		WithOptions([]string{string(config.ModeRelay), string(config.ModeSFU), string(config.ModeWS)}).
		WithDefaultText("Select the signaling server type").
		Show()
	cfg.Mode = config.Mode(mode)

	pterm.Println()
	cfg.Endpoint = askURL(cfg.Mode)

	if strings.HasPrefix(role, "Publisher") {
		cfg.Role = config.RolePublisher
		cfg.SourcePath = askSource()
	} else {
		cfg.Role = config.RoleSubscriber
		cfg.OutputPath = askOutput()
	}
	return cfg
}

// run negotiates one session and keeps it alive until Ctrl+C or teardown.
func run(ctx context.Context, cfg config.Config) {
	endpoint, err := config.NormalizeEndpoint(cfg.Endpoint, cfg.Mode)
	if err != nil {
		util.LogError("%v", err)
		os.Exit(1)
	}

	spinner, _ := pterm.DefaultSpinner.Start("Preparing session...")

	ctrl, err := negotiation.NewController(negotiation.Options{
		ICEServers:      cfg.ICEServers(),
		ExchangeTimeout: cfg.ExchangeTimeout,
		Hooks: negotiation.Hooks{
			OnStateChange: func(_ *negotiation.Session, state negotiation.State) {
				switch state {
				case negotiation.StateGathering:
					spinner.UpdateText("Gathering ICE candidates...")
				case negotiation.StateComplete:
					spinner.UpdateText(fmt.Sprintf("Sending offer to %s...", endpoint))
				}
			},
		},
	})
	if err != nil {
		spinner.Fail(err.Error())
		os.Exit(1)
	}

	tr := newTransport(cfg, endpoint)
	s, err := ctrl.Start(ctx, newRole(cfg), tr)
	if err != nil {
		spinner.Fail(describe(err))
		os.Exit(1)
	}
	defer s.Close()

	if err := s.Wait(ctx); err != nil {
		if errors.Is(err, negotiation.ErrSessionClosed) || ctx.Err() != nil {
			spinner.Warning("session closed before negotiation finished")
			return
		}
		spinner.Fail(describe(err))
		os.Exit(1)
	}

	spinner.Success(fmt.Sprintf("%s session negotiated (%s)", cfg.Role, util.ShortID(s.ID())))

	util.StartStatsReporter(ctx)
	if cfg.ChatURL != "" {
		go runChat(ctx, cfg.ChatURL)
	}

	select {
	case <-ctx.Done():
	case <-s.Done():
	}
}

// runChat joins the chat room and logs what others say.
func runChat(ctx context.Context, url string) {
	c, err := chat.Dial(ctx, url)
	if err != nil {
		util.LogWarning("%v", err)
		return
	}
	defer c.Close()

	util.LogInfo("joined chat as %s", c.IP())
	if err := c.Run(ctx, func(m chat.Message) {
		util.LogInfo("[chat] %s: %s", m.IP, m.Message)
	}); err != nil {
		util.LogWarning("%v", err)
	}
}

// ---------------------------------------------------------------------------
// Helper Functions
// ---------------------------------------------------------------------------

// newTransport picks the signaling flavor for the configured mode and role.
func newTransport(cfg config.Config, endpoint string) signaling.Transport {
	switch cfg.Mode {
	case config.ModeSFU:
		return signaling.NewSFUTransport(endpoint, nil)
	case config.ModeWS:
		return signaling.NewWSTransport(endpoint, nil)
	default:
		path := signaling.EndpointPeer
		if cfg.Role == config.RolePublisher {
			path = signaling.EndpointHost
		}
		return signaling.NewRelayTransport(endpoint, path, nil)
	}
}

// newRole builds the role strategy with its media endpoint.
func newRole(cfg config.Config) negotiation.Role {
	if cfg.Role == config.RolePublisher {
		return &negotiation.Publisher{Source: &media.IVFSource{Path: cfg.SourcePath, Loop: cfg.Loop}}
	}
	if cfg.OutputPath == "" {
		return &negotiation.Subscriber{Sink: media.Discard{}}
	}
	return &negotiation.Subscriber{Sink: &media.IVFRecorder{Path: cfg.OutputPath}}
}

// describe turns a session error into the message shown to the user.
func describe(err error) string {
	var (
		mediaErr  *negotiation.MediaAcquisitionError
		rejected  *signaling.RejectedError
		transport *signaling.TransportError
		decodeErr *sdpcodec.DecodeError
	)

	switch {
	case errors.As(err, &mediaErr):
		return fmt.Sprintf("could not start screen share: %v", mediaErr.Err)
	case errors.As(err, &rejected):
		return fmt.Sprintf("signaling server refused the session: %s", rejected.Message)
	case errors.As(err, &transport):
		return fmt.Sprintf("signaling request failed: %v", transport)
	case errors.As(err, &decodeErr):
		return fmt.Sprintf("signaling server sent an unreadable answer: %v", decodeErr)
	case errors.Is(err, negotiation.ErrEmptyAnswer):
		return "Session Description must not be empty"
	default:
		return err.Error()
	}
}

// splitList parses a comma-separated flag value, dropping empty items.
func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// askURL prompts the user for a signaling URL until a valid one is entered.
func askURL(mode config.Mode) string {
	example := "http://localhost:8080"
	if mode == config.ModeWS {
		example = "ws://localhost:8000/ws"
	}

	for {
		raw, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText(fmt.Sprintf("Signaling server URL (e.g. %s)", example)).
			Show()

		endpoint, err := config.NormalizeEndpoint(raw, mode)
		if err == nil {
			pterm.Println()
			return endpoint
		}

		pterm.Println()
		util.LogWarning("invalid input: %v", err)
	}
}

// askSource prompts for an existing IVF file to publish.
func askSource() string {
	for {
		raw, _ := pterm.DefaultInteractiveTextInput.
			WithDefaultText("IVF file to share as the display").
			Show()

		path := strings.TrimSpace(raw)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			pterm.Println()
			return path
		}

		pterm.Println()
		util.LogWarning("file not found: %q", path)
	}
}

// askOutput prompts for an optional recording path.
func askOutput() string {
	raw, _ := pterm.DefaultInteractiveTextInput.
		WithDefaultText(fmt.Sprintf("Record to IVF file (leave empty to only watch stats, e.g. screen-%s.ivf)", time.Now().Format("150405"))).
		Show()

	pterm.Println()
	return strings.TrimSpace(raw)
}

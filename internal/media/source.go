// Package media provides file-backed stand-ins for a screen capture source
// and a video player, so the CLI can publish and receive without a browser.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/pion/webrtc/v4"
	pionmedia "github.com/pion/webrtc/v4/pkg/media"
	"github.com/pion/webrtc/v4/pkg/media/ivfreader"

	"github.com/1ureka/screencast/internal/util"
)

// defaultFrameDuration is used when an IVF header carries no usable timebase.
const defaultFrameDuration = time.Second / 30

// fourCCMimeTypes maps IVF codec tags to RTP mime types.
var fourCCMimeTypes = map[string]string{
	"VP80": webrtc.MimeTypeVP8,
	"VP90": webrtc.MimeTypeVP9,
	"AV01": webrtc.MimeTypeAV1,
}

// IVFSource plays an IVF file as if it were a captured display. Frames are
// paced by the file's timebase.
type IVFSource struct {
	Path string
	Loop bool // restart from the first frame at end of file

	// StreamID and TrackID label the produced track.
	StreamID string
	TrackID  string
}

// CaptureDisplay opens the file, validates its header and starts pumping
// frames into a new track until ctx ends or the file runs out.
func (s *IVFSource) CaptureDisplay(ctx context.Context) (webrtc.TrackLocal, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open display source: %w", err)
	}

	reader, header, err := ivfreader.NewWith(f)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read IVF header of %s: %w", s.Path, err)
	}

	mimeType, ok := fourCCMimeTypes[header.FourCC]
	if !ok {
		f.Close()
		return nil, fmt.Errorf("unsupported IVF codec %q in %s", header.FourCC, s.Path)
	}

	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: mimeType},
		orDefault(s.TrackID, "screen"),
		orDefault(s.StreamID, "screencast"),
	)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create display track: %w", err)
	}

	util.LogInfo("display source %s: %s %dx%d", s.Path, mimeType, header.Width, header.Height)

	go s.pump(ctx, f, reader, frameDuration(header), track)
	return track, nil
}

// pump writes one frame per tick and owns f until it returns.
func (s *IVFSource) pump(ctx context.Context, f *os.File, reader *ivfreader.IVFReader, d time.Duration, track *webrtc.TrackLocalStaticSample) {
	defer f.Close()

	ticker := time.NewTicker(d)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		frame, _, err := reader.ParseNextFrame()
		if errors.Is(err, io.EOF) && s.Loop {
			if _, err = f.Seek(0, io.SeekStart); err == nil {
				reader, _, err = ivfreader.NewWith(f)
			}
			if err == nil {
				frame, _, err = reader.ParseNextFrame()
			}
		}
		if errors.Is(err, io.EOF) {
			util.LogInfo("display source %s finished", s.Path)
			return
		}
		if err != nil {
			util.LogWarning("display source %s: %v", s.Path, err)
			return
		}

		if err := track.WriteSample(pionmedia.Sample{Data: frame, Duration: d}); err != nil {
			util.LogDebug("failed to write sample: %v", err)
			continue
		}
		util.Stats.AddFrame(len(frame))
	}
}

// frameDuration derives the per-frame interval from the IVF timebase.
func frameDuration(h *ivfreader.IVFFileHeader) time.Duration {
	if h.TimebaseDenominator == 0 || h.TimebaseNumerator == 0 {
		return defaultFrameDuration
	}
	d := time.Duration(float64(time.Second) * float64(h.TimebaseNumerator) / float64(h.TimebaseDenominator))
	if d <= 0 {
		return defaultFrameDuration
	}
	return d
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

package media

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media/ivfwriter"

	"github.com/1ureka/screencast/internal/util"
)

// IVFRecorder writes a received VP8 track to an IVF file. Other codecs are
// drained and counted but not recorded.
type IVFRecorder struct {
	Path string
}

// Play records track until it ends.
func (r *IVFRecorder) Play(track *webrtc.TrackRemote) {
	mimeType := track.Codec().MimeType
	if !strings.EqualFold(mimeType, webrtc.MimeTypeVP8) {
		util.LogWarning("recorder only supports %s, got %s; discarding track %s", webrtc.MimeTypeVP8, mimeType, track.ID())
		Discard{}.Play(track)
		return
	}

	f, err := os.Create(r.Path)
	if err != nil {
		util.LogError("failed to create recording: %v", err)
		Discard{}.Play(track)
		return
	}

	writer, err := ivfwriter.NewWith(f)
	if err != nil {
		f.Close()
		util.LogError("failed to start recording: %v", err)
		Discard{}.Play(track)
		return
	}
	defer func() {
		if err := writer.Close(); err != nil {
			util.LogWarning("failed to finalize recording %s: %v", r.Path, err)
		}
	}()

	util.LogInfo("recording track %s to %s", track.ID(), r.Path)
	if err := record(track, writer); err != nil {
		util.LogWarning("recording %s stopped: %v", r.Path, err)
		return
	}
	util.LogInfo("track %s ended, recording saved to %s", track.ID(), r.Path)
}

func record(track *webrtc.TrackRemote, writer *ivfwriter.IVFWriter) error {
	for {
		pkt, _, err := track.ReadRTP()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		util.Stats.AddPacket(len(pkt.Payload))

		if err := writer.WriteRTP(pkt); err != nil {
			return fmt.Errorf("write frame: %w", err)
		}
	}
}

// Discard reads a track to its end and only counts what arrives.
type Discard struct{}

// Play drains track.
func (Discard) Play(track *webrtc.TrackRemote) {
	buf := make([]byte, 1500)
	for {
		n, _, err := track.Read(buf)
		if err != nil {
			return
		}
		util.Stats.AddPacket(n)
	}
}

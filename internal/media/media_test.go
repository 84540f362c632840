package media

import (
	"context"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pion/webrtc/v4"
	"github.com/pion/webrtc/v4/pkg/media/ivfreader"

	"github.com/1ureka/screencast/internal/negotiation"
)

var (
	_ negotiation.DisplaySource = (*IVFSource)(nil)
	_ negotiation.TrackSink     = (*IVFRecorder)(nil)
	_ negotiation.TrackSink     = Discard{}
)

// writeIVF writes a minimal IVF file with the given codec tag, timebase and
// frames.
func writeIVF(t *testing.T, fourCC string, den, num uint32, frames [][]byte) string {
	t.Helper()

	header := make([]byte, 32)
	copy(header[0:4], "DKIF")
	binary.LittleEndian.PutUint16(header[4:6], 0)
	binary.LittleEndian.PutUint16(header[6:8], 32)
	copy(header[8:12], fourCC)
	binary.LittleEndian.PutUint16(header[12:14], 640)
	binary.LittleEndian.PutUint16(header[14:16], 480)
	binary.LittleEndian.PutUint32(header[16:20], den)
	binary.LittleEndian.PutUint32(header[20:24], num)
	binary.LittleEndian.PutUint32(header[24:28], uint32(len(frames)))

	data := header
	for i, frame := range frames {
		fh := make([]byte, 12)
		binary.LittleEndian.PutUint32(fh[0:4], uint32(len(frame)))
		binary.LittleEndian.PutUint64(fh[4:12], uint64(i))
		data = append(data, fh...)
		data = append(data, frame...)
	}

	path := filepath.Join(t.TempDir(), "screen.ivf")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write IVF: %v", err)
	}
	return path
}

func TestIVFSourceCaptureDisplay(t *testing.T) {
	testCases := []struct {
		fourCC   string
		mimeType string
	}{
		{"VP80", webrtc.MimeTypeVP8},
		{"VP90", webrtc.MimeTypeVP9},
		{"AV01", webrtc.MimeTypeAV1},
	}

	for _, tc := range testCases {
		t.Run(tc.fourCC, func(t *testing.T) {
			path := writeIVF(t, tc.fourCC, 30, 1, [][]byte{{0x01, 0x02}, {0x03}})

			ctx, cancel := context.WithCancel(context.Background())
			defer cancel()

			src := &IVFSource{Path: path}
			track, err := src.CaptureDisplay(ctx)
			if err != nil {
				t.Fatalf("CaptureDisplay failed: %v", err)
			}

			sample, ok := track.(*webrtc.TrackLocalStaticSample)
			if !ok {
				t.Fatalf("unexpected track type %T", track)
			}
			if got := sample.Codec().MimeType; got != tc.mimeType {
				t.Errorf("MimeType mismatch: got %s, want %s", got, tc.mimeType)
			}
			if track.Kind() != webrtc.RTPCodecTypeVideo {
				t.Errorf("Kind mismatch: got %s, want video", track.Kind())
			}
			if track.ID() != "screen" || track.StreamID() != "screencast" {
				t.Errorf("labels mismatch: got %s/%s", track.StreamID(), track.ID())
			}
		})
	}
}

func TestIVFSourceErrors(t *testing.T) {
	dir := t.TempDir()
	notIVF := filepath.Join(dir, "notes.txt")
	if err := os.WriteFile(notIVF, []byte("definitely not a video file at all"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	testCases := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "missing.ivf")},
		{"not IVF", notIVF},
		{"unsupported codec", writeIVF(t, "H264", 30, 1, nil)},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			src := &IVFSource{Path: tc.path}
			if _, err := src.CaptureDisplay(context.Background()); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestFrameDuration(t *testing.T) {
	testCases := []struct {
		den, num uint32
		want     time.Duration
	}{
		{30, 1, time.Second / 30},
		{1000, 40, 40 * time.Millisecond},
		{0, 1, defaultFrameDuration},
		{30, 0, defaultFrameDuration},
	}

	for _, tc := range testCases {
		got := frameDuration(&ivfreader.IVFFileHeader{TimebaseDenominator: tc.den, TimebaseNumerator: tc.num})
		if got != tc.want {
			t.Errorf("frameDuration(%d/%d) mismatch: got %v, want %v", tc.num, tc.den, got, tc.want)
		}
	}
}

package util

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/pterm/pterm"
)

// ──────────────────────────────────────────────────────────────────────────────
// Global stats singleton
// ──────────────────────────────────────────────────────────────────────────────

// Stats is the process-wide media traffic counter.
var Stats = &stats{}

type stats struct {
	FramesSent  atomic.Int64 // samples written to the local display track
	BytesSent   atomic.Int64 // payload bytes of those samples
	PacketsRecv atomic.Int64 // RTP packets read from remote tracks
	BytesRecv   atomic.Int64 // RTP payload bytes read from remote tracks
}

func (s *stats) AddFrame(n int) {
	s.FramesSent.Add(1)
	s.BytesSent.Add(int64(n))
}

func (s *stats) AddPacket(n int) {
	s.PacketsRecv.Add(1)
	s.BytesRecv.Add(int64(n))
}

// ──────────────────────────────────────────────────────────────────────────────
// Periodic reporter
// ──────────────────────────────────────────────────────────────────────────────

// StartStatsReporter launches a goroutine that logs media statistics
// every 10 seconds. It stops when ctx is cancelled.
func StartStatsReporter(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(10 * time.Second)
		defer ticker.Stop()

		var prevSent, prevRecv, prevFrames, prevPackets int64
		for {
			select {
			case <-ticker.C:
				sent := Stats.BytesSent.Load()
				recv := Stats.BytesRecv.Load()
				frames := Stats.FramesSent.Load()
				packets := Stats.PacketsRecv.Load()

				outS := float64(sent-prevSent) / 10.0
				inS := float64(recv-prevRecv) / 10.0
				outF := frames - prevFrames
				inP := packets - prevPackets

				if outF > 0 || inP > 0 {
					pterm.DefaultLogger.Info(formatStats(inS, outS, outF, inP))
				}

				prevSent = sent
				prevRecv = recv
				prevFrames = frames
				prevPackets = packets

			case <-ctx.Done():
				return
			}
		}
	}()
}

// byteUnits defines the units for formatting byte counts in a human-readable way.
var byteUnits = []string{"B", "KiB", "MiB", "GiB", "TiB", "PiB"}

// formatBytes formats a byte count into a human-readable string with fixed width (exactly 8 chars)
// for example: "99.0   B", " 1.5 KiB", " 0.1 MiB", "98.9 GiB", etc.
func formatBytes(b float64) string {
	unitIdx := 0

	// to prevent "100.0 KiB", which is 9 chars
	for b > 99 && unitIdx < 5 {
		b /= 1024
		unitIdx++
	}

	return fmt.Sprintf("%4.1f %3s", b, byteUnits[unitIdx])
}

// formatStats returns a formatted string of the current stats for display in the logger.
func formatStats(inS, outS float64, frames, packets int64) string {
	return fmt.Sprintf("In: %s/s | Out: %s/s | Frames: %4d↑ Packets: %5d↓",
		formatBytes(inS),
		formatBytes(outS),
		frames,
		packets,
	)
}

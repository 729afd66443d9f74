package engine

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Snapshot is the live metrics view of one engine pass. FractionComplete is
// negative when the total frame count is unknown (indeterminate progress).
type Snapshot struct {
	Frame int64
	FPS   float64
	// Pass is the 1-based engine pass this snapshot belongs to, 0 when the
	// run did not declare one.
	Pass             int
	Bitrate          string
	Speed            string
	FractionComplete float64
	Done             bool
}

// Percent returns the completion percentage, or -1 when indeterminate.
func (s Snapshot) Percent() float64 {
	if s.FractionComplete < 0 {
		return -1
	}
	return s.FractionComplete * 100
}

// progressTailBytes bounds how much of the side channel each poll reads.
// FFmpeg appends a full block every interval, so the tail always holds the
// latest complete one.
const progressTailBytes = 512

// Monitor polls an FFmpeg -progress file and converts its key=value blocks
// into Snapshots. Frame values never regress: stale partial reads are
// discarded.
type Monitor struct {
	path        string
	totalFrames int64
	interval    time.Duration
	lastFrame   int64
}

// NewMonitor constructs a Monitor for the given side-channel path.
// totalFrames of 0 leaves FractionComplete indeterminate.
func NewMonitor(path string, totalFrames int64, interval time.Duration) *Monitor {
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	return &Monitor{path: path, totalFrames: totalFrames, interval: interval, lastFrame: -1}
}

// Watch polls the side channel until done closes, emitting a Snapshot to
// onUpdate for each successful poll. It never blocks the encode: unreadable
// or not-yet-created files are silently skipped until the next tick.
func (m *Monitor) Watch(done <-chan struct{}, onUpdate func(Snapshot)) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			// One final poll so the display lands on the last reported frame.
			if snapshot, ok := m.NextSnapshot(); ok && onUpdate != nil {
				onUpdate(snapshot)
			}
			return
		case <-ticker.C:
			if snapshot, ok := m.NextSnapshot(); ok && onUpdate != nil {
				onUpdate(snapshot)
			}
		}
	}
}

// NextSnapshot reads the most recent progress block. The boolean is false
// when the channel does not exist yet, is transiently unreadable, or the
// parsed frame would move backward.
func (m *Monitor) NextSnapshot() (Snapshot, bool) {
	fields, ok := readLastBlock(m.path)
	if !ok {
		return Snapshot{}, false
	}
	raw, ok := fields["frame"]
	if !ok {
		return Snapshot{}, false
	}
	frame, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return Snapshot{}, false
	}
	if frame < m.lastFrame {
		// Stale partial read; keep the last known good frame.
		return Snapshot{}, false
	}
	m.lastFrame = frame

	snapshot := Snapshot{
		Frame:            frame,
		Bitrate:          fields["bitrate"],
		Speed:            fields["speed"],
		FractionComplete: -1,
		Done:             fields["progress"] == "end",
	}
	if fps, err := strconv.ParseFloat(fields["fps"], 64); err == nil {
		snapshot.FPS = fps
	}
	if m.totalFrames > 0 {
		fraction := float64(frame) / float64(m.totalFrames)
		if fraction > 1 {
			fraction = 1
		}
		snapshot.FractionComplete = fraction
	}
	return snapshot, true
}

// Reset clears the regression guard for the next engine pass.
func (m *Monitor) Reset() {
	m.lastFrame = -1
}

func readLastBlock(path string) (map[string]string, bool) {
	file, err := os.Open(path)
	if err != nil {
		return nil, false
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil || info.Size() == 0 {
		return nil, false
	}
	offset := info.Size() - progressTailBytes
	if offset < 0 {
		offset = 0
	}
	buf := make([]byte, info.Size()-offset)
	if _, err := file.ReadAt(buf, offset); err != nil {
		return nil, false
	}

	lines := strings.Split(string(buf), "\n")
	fields := make(map[string]string, 12)
	for _, line := range lines {
		key, value, ok := strings.Cut(strings.TrimSpace(line), "=")
		if !ok {
			continue
		}
		fields[key] = strings.TrimSpace(value)
	}
	if len(fields) == 0 {
		return nil, false
	}
	return fields, true
}

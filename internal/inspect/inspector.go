package inspect

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"math"
	"os/exec"
	"strings"

	"framepress/internal/logging"
	"framepress/internal/media/ffprobe"
	"framepress/internal/services"
)

// MediaProbe captures what the planner needs to know about one input file.
// A zero value means "probe failed": eligibility unknown.
type MediaProbe struct {
	// Codec is the primary video stream codec name, empty when unknown.
	Codec string
	// BitRateBps is the stream bitrate in bits per second, falling back to
	// the container bitrate; 0 means unknown.
	BitRateBps int64
	// TotalFrames is the frame count for progress display; 0 means unknown
	// (progress becomes indeterminate, not an error).
	TotalFrames int64
}

// Failed reports whether the probe yielded no usable stream data.
func (p MediaProbe) Failed() bool {
	return strings.TrimSpace(p.Codec) == ""
}

// probeMedia is the ffprobe function used by the inspect package.
// It is a package-level variable so tests can override it.
var probeMedia = ffprobe.Inspect

// SetProbeForTests overrides the ffprobe runner during tests.
func SetProbeForTests(fn func(context.Context, string, string) (ffprobe.Result, error)) func() {
	previous := probeMedia
	probeMedia = fn
	return func() {
		probeMedia = previous
	}
}

// Inspector runs ffprobe against input files.
type Inspector struct {
	binary string
	logger *slog.Logger
}

// New constructs an Inspector using the provided ffprobe binary name.
func New(binary string, logger *slog.Logger) *Inspector {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	return &Inspector{binary: binary, logger: logging.NewComponentLogger(logger, "inspect")}
}

// Probe inspects one file. A missing ffprobe executable returns an error
// tagged services.ErrToolUnavailable and must abort the run. Any other probe
// failure degrades to a zeroed MediaProbe with a nil error.
func (i *Inspector) Probe(ctx context.Context, path string) (MediaProbe, error) {
	result, err := probeMedia(ctx, i.binary, path)
	if err != nil {
		if isBinaryMissing(err) {
			return MediaProbe{}, services.Wrap(
				services.ErrToolUnavailable,
				"inspect",
				"locate ffprobe",
				"ffprobe binary not found; install FFmpeg or set binaries.ffprobe",
				err,
			)
		}
		i.logger.Warn("probe failed, treating eligibility as unknown",
			logging.String(logging.FieldInput, path),
			logging.Error(services.Wrap(services.ErrProbeFailed, "inspect", "probe media", "", err)),
		)
		return MediaProbe{}, nil
	}

	stream, ok := result.PrimaryVideoStream()
	if !ok {
		i.logger.Warn("no video stream found, treating eligibility as unknown",
			logging.String(logging.FieldInput, path),
		)
		return MediaProbe{}, nil
	}

	probe := MediaProbe{
		Codec:       strings.ToLower(strings.TrimSpace(stream.CodecName)),
		BitRateBps:  stream.BitRateBps(),
		TotalFrames: stream.FrameCount(),
	}
	if probe.BitRateBps == 0 {
		// Per-stream bitrate is often absent in MKV; the container-level
		// bitrate is the secondary source.
		probe.BitRateBps = result.BitRate()
	}
	if probe.TotalFrames == 0 {
		probe.TotalFrames = deriveFrameCount(stream, result)
	}
	return probe, nil
}

func deriveFrameCount(stream ffprobe.Stream, result ffprobe.Result) int64 {
	duration := stream.DurationSeconds()
	if duration == 0 {
		duration = result.DurationSeconds()
	}
	rate := stream.FrameRate()
	if duration <= 0 || rate <= 0 {
		return 0
	}
	return int64(math.Round(duration * rate))
}

func isBinaryMissing(err error) bool {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return true
	}
	var execErr *exec.Error
	return errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound)
}

package inspect

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"testing"

	"framepress/internal/logging"
	"framepress/internal/media/ffprobe"
	"framepress/internal/services"
)

func stubProbe(t *testing.T, fn func(context.Context, string, string) (ffprobe.Result, error)) {
	t.Helper()
	restore := SetProbeForTests(fn)
	t.Cleanup(restore)
}

func TestProbeReportsStreamDetails(t *testing.T) {
	stubProbe(t, func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{
				CodecType: "video",
				CodecName: "H264",
				BitRate:   "5000000",
				NBFrames:  "300",
			}},
		}, nil
	})

	inspector := New("ffprobe", logging.NewNop())
	probe, err := inspector.Probe(context.Background(), "/media/in.mkv")
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if probe.Codec != "h264" {
		t.Fatalf("expected lowered codec, got %q", probe.Codec)
	}
	if probe.BitRateBps != 5_000_000 {
		t.Fatalf("unexpected bitrate: %d", probe.BitRateBps)
	}
	if probe.TotalFrames != 300 {
		t.Fatalf("unexpected total frames: %d", probe.TotalFrames)
	}
	if probe.Failed() {
		t.Fatal("expected probe to succeed")
	}
}

func TestProbeFallsBackToContainerBitrateAndDerivedFrames(t *testing.T) {
	stubProbe(t, func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{
				CodecType:    "video",
				CodecName:    "hevc",
				Duration:     "10",
				AvgFrameRate: "30000/1001",
			}},
			Format: ffprobe.Format{BitRate: "1200000"},
		}, nil
	})

	inspector := New("", logging.NewNop())
	probe, err := inspector.Probe(context.Background(), "/media/in.mkv")
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if probe.BitRateBps != 1_200_000 {
		t.Fatalf("expected container bitrate fallback, got %d", probe.BitRateBps)
	}
	// round(10 * 30000/1001) = 300
	if probe.TotalFrames != 300 {
		t.Fatalf("unexpected derived frames: %d", probe.TotalFrames)
	}
}

func TestProbeZeroDenominatorLeavesFramesUnknown(t *testing.T) {
	stubProbe(t, func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return ffprobe.Result{
			Streams: []ffprobe.Stream{{
				CodecType:    "video",
				CodecName:    "h264",
				Duration:     "10",
				AvgFrameRate: "30/0",
			}},
		}, nil
	})

	inspector := New("ffprobe", logging.NewNop())
	probe, err := inspector.Probe(context.Background(), "/media/in.mkv")
	if err != nil {
		t.Fatalf("Probe returned error: %v", err)
	}
	if probe.TotalFrames != 0 {
		t.Fatalf("expected indeterminate frames, got %d", probe.TotalFrames)
	}
}

func TestProbeMissingBinaryIsFatal(t *testing.T) {
	stubProbe(t, func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return ffprobe.Result{}, &exec.Error{Name: "ffprobe", Err: exec.ErrNotFound}
	})

	inspector := New("ffprobe", logging.NewNop())
	_, err := inspector.Probe(context.Background(), "/media/in.mkv")
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
	if !errors.Is(err, services.ErrToolUnavailable) {
		t.Fatalf("expected ErrToolUnavailable, got %v", err)
	}
	if !services.Fatal(err) {
		t.Fatal("expected fatal classification")
	}
}

func TestProbeFailureDegradesToUnknown(t *testing.T) {
	stubProbe(t, func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return ffprobe.Result{}, fmt.Errorf("ffprobe inspect: exit status 1")
	})

	inspector := New("ffprobe", logging.NewNop())
	probe, err := inspector.Probe(context.Background(), "/media/in.mkv")
	if err != nil {
		t.Fatalf("expected degraded probe, got error: %v", err)
	}
	if !probe.Failed() {
		t.Fatal("expected failed probe")
	}
	if probe.Codec != "" || probe.BitRateBps != 0 || probe.TotalFrames != 0 {
		t.Fatalf("expected zeroed probe, got %+v", probe)
	}
}

func TestProbeNoVideoStreamDegradesToUnknown(t *testing.T) {
	stubProbe(t, func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return ffprobe.Result{Streams: []ffprobe.Stream{{CodecType: "audio"}}}, nil
	})

	inspector := New("ffprobe", logging.NewNop())
	probe, err := inspector.Probe(context.Background(), "/media/audio-only.mkv")
	if err != nil {
		t.Fatalf("expected degraded probe, got error: %v", err)
	}
	if !probe.Failed() {
		t.Fatal("expected failed probe")
	}
}

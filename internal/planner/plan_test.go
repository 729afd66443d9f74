package planner

import (
	"testing"

	"framepress/internal/config"
	"framepress/internal/inspect"
)

func testPolicy() Policy {
	enc := config.Default().Encoding
	enc.BitrateThreshold = 2_500_000
	return PolicyFromConfig(enc)
}

func TestBuildCopiesEfficientTargetCodecFiles(t *testing.T) {
	policy := testPolicy()
	probe := inspect.MediaProbe{Codec: "hevc", BitRateBps: 1_000_000, TotalFrames: 100}
	plan := Build(probe, policy)
	if plan.Mode != ModeCopy {
		t.Fatalf("expected copy, got %v", plan.Mode)
	}
	if plan.PassCount != 0 {
		t.Fatalf("unexpected pass count: %d", plan.PassCount)
	}
	if plan.Reason != "already_efficient" {
		t.Fatalf("unexpected reason: %q", plan.Reason)
	}
}

func TestBuildEncodesHighBitrateFiles(t *testing.T) {
	policy := testPolicy()
	probe := inspect.MediaProbe{Codec: "avc", BitRateBps: 5_000_000, TotalFrames: 300}
	plan := Build(probe, policy)
	if plan.Mode != ModeSinglePassCQ {
		t.Fatalf("expected single pass, got %v", plan.Mode)
	}
	if plan.PassCount != 1 {
		t.Fatalf("unexpected pass count: %d", plan.PassCount)
	}
	if plan.Quality.CRF != policy.Quality.CRF {
		t.Fatalf("quality params not carried: %+v", plan.Quality)
	}
}

func TestBuildUnknownBitrateNeverCopies(t *testing.T) {
	policy := testPolicy()
	// Already target codec but bitrate unknown: not yet proven efficient.
	probe := inspect.MediaProbe{Codec: "hevc", BitRateBps: 0, TotalFrames: 100}
	plan := Build(probe, policy)
	if plan.Mode == ModeCopy {
		t.Fatal("unknown bitrate must not be treated as efficient")
	}
}

func TestBuildTargetCodecAboveThresholdEncodes(t *testing.T) {
	policy := testPolicy()
	probe := inspect.MediaProbe{Codec: "hevc", BitRateBps: 8_000_000}
	if plan := Build(probe, policy); plan.Mode == ModeCopy {
		t.Fatal("high bitrate target-codec file should be re-encoded")
	}
}

func TestBuildFailedProbeDefaultsToCopy(t *testing.T) {
	policy := testPolicy()
	plan := Build(inspect.MediaProbe{}, policy)
	if plan.Mode != ModeCopy {
		t.Fatalf("expected copy for failed probe, got %v", plan.Mode)
	}
	if plan.Reason != "probe_failed" {
		t.Fatalf("unexpected reason: %q", plan.Reason)
	}
}

func TestBuildTwoPassPolicy(t *testing.T) {
	enc := config.Default().Encoding
	enc.Mode = "two_pass"
	policy := PolicyFromConfig(enc)
	probe := inspect.MediaProbe{Codec: "avc", BitRateBps: 5_000_000}
	plan := Build(probe, policy)
	if plan.Mode != ModeTwoPassVBR {
		t.Fatalf("expected two pass, got %v", plan.Mode)
	}
	if plan.PassCount != 2 {
		t.Fatalf("unexpected pass count: %d", plan.PassCount)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	policy := testPolicy()
	probes := []inspect.MediaProbe{
		{},
		{Codec: "hevc", BitRateBps: 1},
		{Codec: "hevc", BitRateBps: 2_499_999},
		{Codec: "hevc", BitRateBps: 2_500_000},
		{Codec: "av1", BitRateBps: 900_000},
	}
	for _, probe := range probes {
		first := Build(probe, policy)
		second := Build(probe, policy)
		if first != second {
			t.Fatalf("plan not deterministic for %+v: %+v vs %+v", probe, first, second)
		}
	}
}

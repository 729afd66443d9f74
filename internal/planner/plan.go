package planner

import (
	"framepress/internal/config"
	"framepress/internal/inspect"
)

// Mode selects how a file travels from input to output.
type Mode string

const (
	// ModeCopy streams the input through unchanged.
	ModeCopy Mode = "copy"
	// ModeSinglePassCQ encodes in one constant-quality pass.
	ModeSinglePassCQ Mode = "single_pass_cq"
	// ModeTwoPassVBR runs an analysis pass then a target-bitrate encode pass.
	ModeTwoPassVBR Mode = "two_pass_vbr"
)

// Quality carries the engine parameters a plan was built with.
type Quality struct {
	CRF               int
	TargetBitrateKbps int
	MaxBitrateKbps    int
	PresetSoftware    string
	PresetHardware    string
	AudioCodec        string
	AudioBitrate      string
	StripSubtitles    bool
	ScaleWidth        int
	ScaleHeight       int
}

// Policy is the static decision configuration applied to every file.
type Policy struct {
	// TargetCodec is the ffprobe codec name of already-converted files.
	TargetCodec string
	// BitrateThreshold is the bits-per-second floor below which a file in
	// the target codec counts as already efficient.
	BitrateThreshold int64
	// TwoPass selects target-bitrate mode over constant quality.
	TwoPass bool
	Quality Quality
}

// PolicyFromConfig derives the planner policy from the encoding config section.
func PolicyFromConfig(enc config.Encoding) Policy {
	return Policy{
		TargetCodec:      enc.TargetCodec,
		BitrateThreshold: enc.BitrateThreshold,
		TwoPass:          enc.Mode == "two_pass",
		Quality: Quality{
			CRF:               enc.CRF,
			TargetBitrateKbps: enc.TargetBitrateKbps,
			MaxBitrateKbps:    enc.MaxBitrateKbps,
			PresetSoftware:    enc.PresetSoftware,
			PresetHardware:    enc.PresetHardware,
			AudioCodec:        enc.AudioCodec,
			AudioBitrate:      enc.AudioBitrate,
			StripSubtitles:    enc.StripSubtitles,
			ScaleWidth:        enc.ScaleWidth,
			ScaleHeight:       enc.ScaleHeight,
		},
	}
}

// Plan describes what to do with one file.
type Plan struct {
	Mode      Mode
	Quality   Quality
	PassCount int
	// Reason records the decision for logging.
	Reason string
}

// Build maps a probe and policy to a plan. Pure and side-effect-free.
func Build(probe inspect.MediaProbe, policy Policy) Plan {
	if probe.Failed() {
		// Eligibility unknown: copying never makes a file worse.
		return Plan{Mode: ModeCopy, PassCount: 0, Reason: "probe_failed"}
	}
	if probe.Codec == policy.TargetCodec && probe.BitRateBps > 0 && probe.BitRateBps < policy.BitrateThreshold {
		return Plan{Mode: ModeCopy, PassCount: 0, Reason: "already_efficient"}
	}
	if policy.TwoPass {
		return Plan{Mode: ModeTwoPassVBR, Quality: policy.Quality, PassCount: 2, Reason: "two_pass_policy"}
	}
	return Plan{Mode: ModeSinglePassCQ, Quality: policy.Quality, PassCount: 1, Reason: "constant_quality_policy"}
}

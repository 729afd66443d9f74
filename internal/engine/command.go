package engine

import (
	"fmt"
	"os"
	"strings"

	"framepress/internal/planner"
)

// Variant selects which encoder family a lane drives.
type Variant string

const (
	// VariantHardware uses the NVENC accelerator; jobs must run serially.
	VariantHardware Variant = "hardware"
	// VariantSoftware uses a CPU encoder; jobs may run in parallel.
	VariantSoftware Variant = "software"
)

// EncoderName maps a target codec and variant to the FFmpeg encoder.
func EncoderName(targetCodec string, variant Variant) string {
	codec := strings.ToLower(strings.TrimSpace(targetCodec))
	switch codec {
	case "av1":
		if variant == VariantHardware {
			return "av1_nvenc"
		}
		return "libsvtav1"
	default: // hevc
		if variant == VariantHardware {
			return "hevc_nvenc"
		}
		return "libx265"
	}
}

// PassSpec names one engine invocation of a plan.
type PassSpec struct {
	// Pass is 1-based; 0 means the plan's only pass.
	Pass int
	// PassLogPath is the two-pass analysis log prefix, empty for single pass.
	PassLogPath string
}

// BuildArgs constructs the FFmpeg argument list for one pass of a plan.
// The progress side-channel file must already exist at progressPath.
func BuildArgs(plan planner.Plan, targetCodec string, variant Variant, spec PassSpec, input, output, progressPath string) []string {
	q := plan.Quality
	encoder := EncoderName(targetCodec, variant)

	args := make([]string, 0, 32)
	if variant == VariantHardware {
		args = append(args, "-hwaccel", "cuda")
	}
	args = append(args, "-i", input, "-c:v", encoder)

	if variant == VariantHardware {
		args = append(args, "-preset", q.PresetHardware)
	} else {
		args = append(args, "-preset", q.PresetSoftware)
	}

	switch plan.Mode {
	case planner.ModeTwoPassVBR:
		args = append(args,
			"-b:v", fmt.Sprintf("%dk", q.TargetBitrateKbps),
			"-maxrate", fmt.Sprintf("%dk", q.MaxBitrateKbps),
			"-bufsize", fmt.Sprintf("%dk", q.MaxBitrateKbps*2),
			"-pass", fmt.Sprintf("%d", spec.Pass),
		)
		if spec.PassLogPath != "" {
			args = append(args, "-passlogfile", spec.PassLogPath)
		}
	default:
		if variant == VariantHardware {
			// NVENC expresses constant quality as vbr with -cq and no
			// bitrate cap.
			args = append(args, "-rc", "vbr", "-cq", fmt.Sprintf("%d", q.CRF), "-b:v", "0")
		} else {
			args = append(args, "-crf", fmt.Sprintf("%d", q.CRF))
		}
	}

	if encoder == "libsvtav1" {
		// Tune for visual quality over PSNR.
		args = append(args, "-svtav1-params", "tune=0")
	}

	if plan.Mode == planner.ModeTwoPassVBR && spec.Pass == 1 {
		// Pass 1 keeps no artifact: discard audio and mux to the null sink.
		args = append(args, "-an", "-sn", "-y",
			"-progress", progressPath,
			"-loglevel", "error",
			"-f", "null", os.DevNull,
		)
		return args
	}

	if q.AudioCodec == "" || q.AudioCodec == "copy" {
		args = append(args, "-c:a", "copy")
	} else {
		args = append(args, "-c:a", q.AudioCodec, "-b:a", q.AudioBitrate)
	}
	if q.StripSubtitles {
		args = append(args, "-sn")
	}
	if q.ScaleWidth > 0 && q.ScaleHeight > 0 {
		if variant == VariantHardware {
			args = append(args, "-vf", fmt.Sprintf("scale_cuda=%d:%d", q.ScaleWidth, q.ScaleHeight))
		} else {
			args = append(args, "-vf", fmt.Sprintf("scale=%d:%d", q.ScaleWidth, q.ScaleHeight))
		}
	}
	args = append(args, "-y",
		"-progress", progressPath,
		"-loglevel", "error",
		output,
	)
	return args
}

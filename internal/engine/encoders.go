package engine

import (
	"context"
	"strings"

	"framepress/internal/services"
)

// Availability reports which encoder families the installed FFmpeg build
// offers for a target codec.
type Availability struct {
	Hardware bool
	Software bool
	// HardwareEncoder / SoftwareEncoder name the probed encoders.
	HardwareEncoder string
	SoftwareEncoder string
}

// Any reports whether at least one encoder family is usable.
func (a Availability) Any() bool {
	return a.Hardware || a.Software
}

// Probe lists FFmpeg's compiled-in encoders and checks the pair relevant to
// the target codec. A missing ffmpeg binary is fatal for the run.
func (c *CLI) Probe(ctx context.Context, targetCodec string) (Availability, error) {
	cmd := commandContext(ctx, c.binary, "-hide_banner", "-encoders")
	output, err := cmd.CombinedOutput()
	if err != nil {
		if isBinaryMissing(err) {
			return Availability{}, services.Wrap(
				services.ErrToolUnavailable,
				"engine",
				"locate ffmpeg",
				"ffmpeg binary not found; install FFmpeg or set binaries.ffmpeg",
				err,
			)
		}
		return Availability{}, services.Wrap(services.ErrExternalTool, "engine", "list encoders", "", err)
	}
	return parseAvailability(string(output), targetCodec), nil
}

func parseAvailability(output, targetCodec string) Availability {
	availability := Availability{
		HardwareEncoder: EncoderName(targetCodec, VariantHardware),
		SoftwareEncoder: EncoderName(targetCodec, VariantSoftware),
	}
	availability.Hardware = strings.Contains(output, availability.HardwareEncoder)
	availability.Software = strings.Contains(output, availability.SoftwareEncoder)
	return availability
}

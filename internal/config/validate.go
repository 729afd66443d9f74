package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateEncoding(); err != nil {
		return err
	}
	if err := c.validateWorkers(); err != nil {
		return err
	}
	if err := c.validateMonitor(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if c.Paths.InputDir == "" {
		return errors.New("paths.input_dir must be set")
	}
	if c.Paths.OutputDir == "" {
		return errors.New("paths.output_dir must be set")
	}
	if c.Paths.InputDir == c.Paths.OutputDir {
		return errors.New("paths.output_dir must differ from paths.input_dir")
	}
	return nil
}

func (c *Config) validateEncoding() error {
	switch c.Encoding.Mode {
	case "crf", "two_pass":
	default:
		return fmt.Errorf("encoding.mode must be \"crf\" or \"two_pass\", got %q", c.Encoding.Mode)
	}
	if c.Encoding.CRF < 0 || c.Encoding.CRF > 63 {
		return fmt.Errorf("encoding.crf must be between 0 and 63, got %d", c.Encoding.CRF)
	}
	if c.Encoding.Mode == "two_pass" {
		if c.Encoding.TargetBitrateKbps <= 0 {
			return errors.New("encoding.target_bitrate_kbps must be positive for two_pass mode")
		}
		if c.Encoding.MaxBitrateKbps < c.Encoding.TargetBitrateKbps {
			return errors.New("encoding.max_bitrate_kbps must be at least encoding.target_bitrate_kbps")
		}
	}
	if c.Encoding.BitrateThreshold < 0 {
		return errors.New("encoding.bitrate_threshold must not be negative")
	}
	if c.Encoding.MinReductionPercent < 0 || c.Encoding.MinReductionPercent >= 100 {
		return errors.New("encoding.min_reduction_percent must be in [0, 100)")
	}
	if (c.Encoding.ScaleWidth > 0) != (c.Encoding.ScaleHeight > 0) {
		return errors.New("encoding.scale_width and encoding.scale_height must be set together")
	}
	if len(c.Encoding.VideoExtensions) == 0 {
		return errors.New("encoding.video_extensions must not be empty")
	}
	return nil
}

func (c *Config) validateWorkers() error {
	// SoftwareLanes == 0 means "derive from CPU count", so zero lanes plus a
	// disabled hardware lane is still a runnable configuration.
	if c.Workers.SoftwareLanes < 0 {
		return errors.New("workers.software_lanes must not be negative")
	}
	return nil
}

func (c *Config) validateMonitor() error {
	if c.Monitor.PollIntervalMS < 0 {
		return errors.New("monitor.poll_interval_ms must not be negative")
	}
	if c.Monitor.PollIntervalMS > 10_000 {
		return errors.New("monitor.poll_interval_ms must be 10000 or less")
	}
	return nil
}

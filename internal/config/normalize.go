package config

import (
	"fmt"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeEncoding()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.InputDir, err = expandPath(c.Paths.InputDir); err != nil {
		return fmt.Errorf("paths.input_dir: %w", err)
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeEncoding() {
	c.Encoding.TargetCodec = strings.ToLower(strings.TrimSpace(c.Encoding.TargetCodec))
	if c.Encoding.TargetCodec == "" {
		c.Encoding.TargetCodec = defaultTargetCodec
	}
	c.Encoding.Mode = strings.ToLower(strings.TrimSpace(c.Encoding.Mode))
	if c.Encoding.Mode == "" {
		c.Encoding.Mode = defaultMode
	}
	c.Encoding.PresetSoftware = strings.TrimSpace(c.Encoding.PresetSoftware)
	if c.Encoding.PresetSoftware == "" {
		c.Encoding.PresetSoftware = defaultPresetSoftware
	}
	c.Encoding.PresetHardware = strings.TrimSpace(c.Encoding.PresetHardware)
	if c.Encoding.PresetHardware == "" {
		c.Encoding.PresetHardware = defaultPresetHardware
	}
	c.Encoding.AudioCodec = strings.ToLower(strings.TrimSpace(c.Encoding.AudioCodec))
	if c.Encoding.AudioCodec == "" {
		c.Encoding.AudioCodec = defaultAudioCodec
	}
	c.Encoding.AudioBitrate = strings.TrimSpace(c.Encoding.AudioBitrate)
	if c.Encoding.AudioBitrate == "" {
		c.Encoding.AudioBitrate = defaultAudioBitrate
	}
	if len(c.Encoding.VideoExtensions) == 0 {
		c.Encoding.VideoExtensions = defaultVideoExtensions()
	}
	normalized := make([]string, 0, len(c.Encoding.VideoExtensions))
	for _, ext := range c.Encoding.VideoExtensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		normalized = append(normalized, ext)
	}
	c.Encoding.VideoExtensions = normalized
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}

package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	InputDir  string `toml:"input_dir"`
	OutputDir string `toml:"output_dir"`
	LogDir    string `toml:"log_dir"`
}

// Encoding contains the encode policy and quality parameters.
type Encoding struct {
	// TargetCodec is the codec name ffprobe reports for already-converted
	// files (e.g. "hevc", "av1").
	TargetCodec string `toml:"target_codec"`
	// Mode selects rate control: "crf" (single pass constant quality) or
	// "two_pass" (two-pass target bitrate).
	Mode string `toml:"mode"`
	// CRF is the constant quality level for crf mode.
	CRF int `toml:"crf"`
	// TargetBitrateKbps and MaxBitrateKbps drive two_pass mode.
	TargetBitrateKbps int `toml:"target_bitrate_kbps"`
	MaxBitrateKbps    int `toml:"max_bitrate_kbps"`
	// BitrateThreshold is the bits-per-second floor below which an
	// already-target-codec file is copied instead of re-encoded.
	BitrateThreshold int64 `toml:"bitrate_threshold"`
	// MinReductionPercent is the value bar: encodes shrinking the file by
	// less than this fall back to a copy of the original.
	MinReductionPercent float64 `toml:"min_reduction_percent"`
	PresetSoftware      string  `toml:"preset_software"`
	PresetHardware      string  `toml:"preset_hardware"`
	AudioCodec          string  `toml:"audio_codec"`
	AudioBitrate        string  `toml:"audio_bitrate"`
	StripSubtitles      bool    `toml:"strip_subtitles"`
	// ScaleWidth/ScaleHeight resize the output when both are positive.
	ScaleWidth  int `toml:"scale_width"`
	ScaleHeight int `toml:"scale_height"`
	// VideoExtensions lists the file extensions treated as video input.
	VideoExtensions []string `toml:"video_extensions"`
}

// Workers contains lane sizing configuration.
type Workers struct {
	// HardwareLane enables the serial NVENC lane when the encoder exists.
	HardwareLane bool `toml:"hardware_lane"`
	// SoftwareLanes is the parallel CPU lane count; 0 derives it from the
	// physical core count.
	SoftwareLanes int `toml:"software_lanes"`
}

// Binaries contains external executable overrides.
type Binaries struct {
	FFmpeg  string `toml:"ffmpeg"`
	FFprobe string `toml:"ffprobe"`
}

// Monitor contains progress side-channel polling configuration.
type Monitor struct {
	PollIntervalMS int `toml:"poll_interval_ms"`
}

// Logging contains configuration for the run log.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for framepress.
type Config struct {
	Paths    Paths    `toml:"paths"`
	Encoding Encoding `toml:"encoding"`
	Workers  Workers  `toml:"workers"`
	Binaries Binaries `toml:"binaries"`
	Monitor  Monitor  `toml:"monitor"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/framepress/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("framepress.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the output and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return nil
}

// FFmpegBinary returns the configured ffmpeg executable.
func (c *Config) FFmpegBinary() string {
	if binary := strings.TrimSpace(c.Binaries.FFmpeg); binary != "" {
		return binary
	}
	return "ffmpeg"
}

// FFprobeBinary returns the configured ffprobe executable.
func (c *Config) FFprobeBinary() string {
	if binary := strings.TrimSpace(c.Binaries.FFprobe); binary != "" {
		return binary
	}
	return "ffprobe"
}

// PollInterval returns the progress side-channel polling interval.
func (c *Config) PollInterval() time.Duration {
	if c.Monitor.PollIntervalMS <= 0 {
		return time.Duration(defaultPollIntervalMS) * time.Millisecond
	}
	return time.Duration(c.Monitor.PollIntervalMS) * time.Millisecond
}

// IsVideoPath reports whether the path carries a configured video extension.
func (c *Config) IsVideoPath(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, candidate := range c.Encoding.VideoExtensions {
		if ext == candidate {
			return true
		}
	}
	return false
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}

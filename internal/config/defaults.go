package config

const (
	defaultInputDir            = "input"
	defaultOutputDir           = "output"
	defaultLogDir              = "~/.local/share/framepress/logs"
	defaultTargetCodec         = "hevc"
	defaultMode                = "crf"
	defaultCRF                 = 28
	defaultTargetBitrateKbps   = 2500
	defaultMaxBitrateKbps      = 5000
	defaultBitrateThreshold    = 2_000_000
	defaultMinReductionPercent = 10.0
	defaultPresetSoftware      = "medium"
	defaultPresetHardware      = "p6"
	defaultAudioCodec          = "copy"
	defaultAudioBitrate        = "192k"
	defaultPollIntervalMS      = 500
	defaultLogFormat           = "console"
	defaultLogLevel            = "info"
)

func defaultVideoExtensions() []string {
	return []string{".mp4", ".mkv", ".avi", ".mov", ".webm", ".flv", ".wmv", ".m4v"}
}

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			InputDir:  defaultInputDir,
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
		},
		Encoding: Encoding{
			TargetCodec:         defaultTargetCodec,
			Mode:                defaultMode,
			CRF:                 defaultCRF,
			TargetBitrateKbps:   defaultTargetBitrateKbps,
			MaxBitrateKbps:      defaultMaxBitrateKbps,
			BitrateThreshold:    defaultBitrateThreshold,
			MinReductionPercent: defaultMinReductionPercent,
			PresetSoftware:      defaultPresetSoftware,
			PresetHardware:      defaultPresetHardware,
			AudioCodec:          defaultAudioCodec,
			AudioBitrate:        defaultAudioBitrate,
			StripSubtitles:      true,
			VideoExtensions:     defaultVideoExtensions(),
		},
		Workers: Workers{
			HardwareLane:  true,
			SoftwareLanes: 0,
		},
		Monitor: Monitor{
			PollIntervalMS: defaultPollIntervalMS,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

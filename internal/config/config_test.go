package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"framepress/internal/config"
)

func TestLoadDefaultsAndExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	workDir := t.TempDir()
	oldWD, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(workDir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(oldWD) })

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	if cfg.Paths.InputDir != filepath.Join(workDir, "input") {
		t.Fatalf("unexpected input dir: %q", cfg.Paths.InputDir)
	}
	if cfg.Paths.OutputDir != filepath.Join(workDir, "output") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	wantLogs := filepath.Join(tempHome, ".local", "share", "framepress", "logs")
	if cfg.Paths.LogDir != wantLogs {
		t.Fatalf("unexpected log dir: got %q want %q", cfg.Paths.LogDir, wantLogs)
	}
	if cfg.Encoding.TargetCodec != "hevc" {
		t.Fatalf("unexpected target codec: %q", cfg.Encoding.TargetCodec)
	}
	if cfg.Encoding.Mode != "crf" {
		t.Fatalf("unexpected mode: %q", cfg.Encoding.Mode)
	}
	if !cfg.Workers.HardwareLane {
		t.Fatal("expected hardware lane enabled by default")
	}
	if cfg.FFmpegBinary() != "ffmpeg" || cfg.FFprobeBinary() != "ffprobe" {
		t.Fatalf("unexpected binaries: %q %q", cfg.FFmpegBinary(), cfg.FFprobeBinary())
	}
	if cfg.PollInterval().Milliseconds() != 500 {
		t.Fatalf("unexpected poll interval: %v", cfg.PollInterval())
	}
	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.OutputDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadParsesFileAndNormalizesExtensions(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
input_dir = "` + filepath.Join(dir, "in") + `"
output_dir = "` + filepath.Join(dir, "out") + `"

[encoding]
target_codec = "AV1"
mode = "two_pass"
target_bitrate_kbps = 2000
max_bitrate_kbps = 4000
video_extensions = ["MP4", ".mkv"]

[workers]
software_lanes = 3
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config file to exist")
	}
	if cfg.Encoding.TargetCodec != "av1" {
		t.Fatalf("expected lowered codec, got %q", cfg.Encoding.TargetCodec)
	}
	if cfg.Workers.SoftwareLanes != 3 {
		t.Fatalf("unexpected software lanes: %d", cfg.Workers.SoftwareLanes)
	}
	if got := cfg.Encoding.VideoExtensions; len(got) != 2 || got[0] != ".mp4" || got[1] != ".mkv" {
		t.Fatalf("unexpected extensions: %v", got)
	}
	if !cfg.IsVideoPath("/media/clip.MKV") {
		t.Fatal("expected .MKV to classify as video")
	}
	if cfg.IsVideoPath("/media/cover.jpg") {
		t.Fatal("expected .jpg to classify as non-video")
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
	}{
		{"same input and output", func(c *config.Config) { c.Paths.OutputDir = c.Paths.InputDir }},
		{"unknown mode", func(c *config.Config) { c.Encoding.Mode = "vbr" }},
		{"crf out of range", func(c *config.Config) { c.Encoding.CRF = 99 }},
		{"two pass missing bitrate", func(c *config.Config) {
			c.Encoding.Mode = "two_pass"
			c.Encoding.TargetBitrateKbps = 0
		}},
		{"max below target", func(c *config.Config) {
			c.Encoding.Mode = "two_pass"
			c.Encoding.MaxBitrateKbps = c.Encoding.TargetBitrateKbps - 1
		}},
		{"negative threshold", func(c *config.Config) { c.Encoding.BitrateThreshold = -1 }},
		{"reduction too high", func(c *config.Config) { c.Encoding.MinReductionPercent = 100 }},
		{"lonely scale width", func(c *config.Config) { c.Encoding.ScaleWidth = 1920 }},
		{"negative lanes", func(c *config.Config) { c.Workers.SoftwareLanes = -1 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			cfg.Paths.InputDir = "/tmp/in"
			cfg.Paths.OutputDir = "/tmp/out"
			tc.mutate(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample failed: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load of sample failed: %v", err)
	}
	if !exists {
		t.Fatal("expected sample to exist")
	}
	if cfg.Encoding.CRF != 28 {
		t.Fatalf("unexpected sample crf: %d", cfg.Encoding.CRF)
	}
}

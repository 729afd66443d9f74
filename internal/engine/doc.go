// Package engine wraps the FFmpeg command-line encoder.
//
// It owns argument construction for the hardware (NVENC) and software
// encoder variants, the child-process lifecycle (stderr redirected to a
// per-job log so the shared terminal stays clean), the progress side-channel
// monitor that polls FFmpeg's -progress file, and encoder availability
// detection via `ffmpeg -encoders`.
//
// The Engine interface keeps the executor testable: tests substitute a fake
// that emits synthetic progress and exit codes without spawning processes.
package engine

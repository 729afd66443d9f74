// Package logging assembles structured slog loggers and formatting helpers
// used across framepress.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes attr helpers so pipeline code emits log lines with a
// consistent shape. The package also provides a no-op logger for tests and a
// sampler that keeps per-frame progress events from flooding the run log.
package logging

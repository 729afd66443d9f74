// Package config loads, normalizes, and validates framepress configuration.
//
// Configuration is TOML with sections per subsystem:
//   - Paths: input/output trees and the log directory
//   - Encoding: target codec, rate-control mode, quality parameters, and the
//     copy-instead-of-encode policy thresholds
//   - Workers: hardware lane toggle and software lane count
//   - Binaries: ffmpeg/ffprobe executable overrides
//   - Monitor: progress side-channel polling interval
//   - Logging: run log format and level
//
// Load applies defaults, expands ~ paths, and validates before returning, so
// downstream code never re-checks configuration shape.
package config

// Package services defines shared utilities consumed by the job pipeline and
// external tool integrations.
//
// Key responsibilities:
//   - Structured error markers plus the Wrap helper that classify failures
//     (fatal tool unavailability vs per-file degradation).
//   - Context helpers that stamp job IDs and lane names for logging.
//
// Use these helpers when wiring new job logic so operational behaviour (error
// handling, observability) stays uniform across the pipeline.
package services

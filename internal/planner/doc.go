// Package planner decides, per input file, whether to copy or encode.
//
// Build is pure: identical probes and policies always yield identical plans.
// The one policy subtlety is unknown bitrate (0): a file already in the target
// codec with unknown bitrate is not yet proven efficient, so it is encoded
// rather than copied.
package planner

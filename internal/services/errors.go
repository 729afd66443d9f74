package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrToolUnavailable marks a missing external binary. This is the only
	// per-run fatal condition: without ffprobe or ffmpeg no file can be
	// classified or encoded.
	ErrToolUnavailable = errors.New("external tool unavailable")
	// ErrExternalTool marks a failure inside a running external process.
	ErrExternalTool = errors.New("external tool error")
	// ErrProbeFailed marks media inspection that ran but produced no usable
	// stream data. Callers degrade to "eligibility unknown", they do not abort.
	ErrProbeFailed = errors.New("probe failed")
	// ErrOutputMissing marks a claimed-successful encode whose artifact is
	// absent or empty.
	ErrOutputMissing = errors.New("output not produced")
	// ErrFilesystem marks copy or mkdir failures.
	ErrFilesystem = errors.New("filesystem error")
	// ErrConfiguration marks invalid configuration.
	ErrConfiguration = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Fatal reports whether an error must abort the whole run rather than being
// converted into a per-file result.
func Fatal(err error) bool {
	return errors.Is(err, ErrToolUnavailable)
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}

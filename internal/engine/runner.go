package engine

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"time"

	"framepress/internal/services"
)

var commandContext = exec.CommandContext

// SetCommandContextForTests overrides process creation during tests.
func SetCommandContextForTests(fn func(context.Context, string, ...string) *exec.Cmd) func() {
	previous := commandContext
	commandContext = fn
	return func() {
		commandContext = previous
	}
}

// RunSpec describes one engine invocation.
type RunSpec struct {
	Args []string
	// LogPath receives the engine's stderr so diagnostics never hit the
	// shared terminal.
	LogPath string
	// ProgressPath is the side-channel file the monitor polls. It must
	// exist before the process starts.
	ProgressPath string
	TotalFrames  int64
	// Pass is stamped onto every Snapshot so renderers can tell the
	// analysis pass from the final one.
	Pass         int
	PollInterval time.Duration
	// OnUpdate is called from the monitor goroutine on every poll tick.
	OnUpdate func(Snapshot)
}

// Engine runs encode passes.
type Engine interface {
	// Run blocks until the pass exits. A nonzero exit code returns an error
	// tagged services.ErrExternalTool; a missing binary returns one tagged
	// services.ErrToolUnavailable.
	Run(ctx context.Context, spec RunSpec) error
	// Probe reports which encoder families the installed FFmpeg supports.
	Probe(ctx context.Context, targetCodec string) (Availability, error)
}

// Option configures the CLI engine.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if strings.TrimSpace(binary) != "" {
			c.binary = binary
		}
	}
}

// CLI wraps the ffmpeg command-line encoder.
type CLI struct {
	binary string
}

// NewCLI constructs a CLI engine using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "ffmpeg"}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Run starts one ffmpeg pass and blocks until it exits, polling the progress
// side channel concurrently.
func (c *CLI) Run(ctx context.Context, spec RunSpec) error {
	if len(spec.Args) == 0 {
		return errors.New("engine run: empty argument list")
	}

	cmd := commandContext(ctx, c.binary, spec.Args...) //nolint:gosec
	if spec.LogPath != "" {
		logFile, err := os.OpenFile(spec.LogPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return services.Wrap(services.ErrFilesystem, "engine", "open pass log", spec.LogPath, err)
		}
		defer logFile.Close()
		cmd.Stderr = logFile
	}

	if err := cmd.Start(); err != nil {
		if isBinaryMissing(err) {
			return services.Wrap(
				services.ErrToolUnavailable,
				"engine",
				"locate ffmpeg",
				"ffmpeg binary not found; install FFmpeg or set binaries.ffmpeg",
				err,
			)
		}
		return services.Wrap(services.ErrExternalTool, "engine", "start ffmpeg", "", err)
	}

	done := make(chan struct{})
	monitorDone := make(chan struct{})
	if spec.ProgressPath != "" && spec.OnUpdate != nil {
		monitor := NewMonitor(spec.ProgressPath, spec.TotalFrames, spec.PollInterval)
		go func() {
			defer close(monitorDone)
			monitor.Watch(done, func(snapshot Snapshot) {
				snapshot.Pass = spec.Pass
				spec.OnUpdate(snapshot)
			})
		}()
	} else {
		close(monitorDone)
	}

	err := cmd.Wait()
	close(done)
	<-monitorDone

	if err != nil {
		return services.Wrap(
			services.ErrExternalTool,
			"engine",
			"ffmpeg pass",
			fmt.Sprintf("engine exited abnormally; see %s", spec.LogPath),
			err,
		)
	}
	return nil
}

var _ Engine = (*CLI)(nil)

// isBinaryMissing matches both a bare name that PATH lookup failed to
// resolve and a configured absolute path that does not exist.
func isBinaryMissing(err error) bool {
	if errors.Is(err, exec.ErrNotFound) || errors.Is(err, fs.ErrNotExist) {
		return true
	}
	var execErr *exec.Error
	return errors.As(err, &execErr) && errors.Is(execErr.Err, exec.ErrNotFound)
}

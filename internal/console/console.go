// Package console multiplexes per-lane encode progress onto fixed terminal
// rows, with a scrolling log region below.
//
// Each lane owns exactly one row; writes use direct cursor addressing under
// a single lock, so concurrent lanes never interleave partial escape
// sequences. When stdout is not a terminal the console degrades to sampled
// structured log lines.
package console

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"
	"golang.org/x/term"

	"framepress/internal/encoding"
	"framepress/internal/engine"
	"framepress/internal/logging"
	"framepress/internal/scheduler"
)

const progressBarWidth = 24

// Console renders lane progress. It satisfies scheduler.Reporter.
type Console struct {
	mu          sync.Mutex
	out         io.Writer
	logger      *slog.Logger
	interactive bool
	width       int
	height      int
	laneRows    int
	samplers    map[int]*logging.ProgressSampler
}

// Option configures a Console.
type Option func(*Console)

// WithInteractive forces terminal or plain mode regardless of detection.
func WithInteractive(interactive bool) Option {
	return func(c *Console) {
		c.interactive = interactive
	}
}

// WithSize fixes the terminal dimensions.
func WithSize(width, height int) Option {
	return func(c *Console) {
		c.width = width
		c.height = height
	}
}

// New constructs a Console writing to out. laneRows is the number of fixed
// rows to reserve, one per lane. Terminal capabilities are detected when
// out is a file.
func New(out io.Writer, logger *slog.Logger, laneRows int, opts ...Option) *Console {
	c := &Console{
		out:      out,
		logger:   logger,
		width:    100,
		height:   40,
		laneRows: laneRows,
		samplers: make(map[int]*logging.ProgressSampler),
	}
	if c.logger == nil {
		c.logger = logging.NewNop()
	}
	if file, ok := out.(*os.File); ok {
		c.interactive = isatty.IsTerminal(file.Fd()) || isatty.IsCygwinTerminal(file.Fd())
		if width, height, err := term.GetSize(int(file.Fd())); err == nil && width > 0 {
			c.width = width
			c.height = height
		}
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Start reserves the fixed lane rows and confines scrolling to the region
// below them. No-op in plain mode.
func (c *Console) Start() {
	if !c.interactive {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	// Clear, pin rows 1..laneRows, scroll the rest.
	fmt.Fprintf(c.out, "\x1b[2J\x1b[%d;%dr\x1b[%d;1H", c.laneRows+1, c.height, c.laneRows+1)
}

// Stop restores the full scrolling region and parks the cursor at the
// bottom of the screen.
func (c *Console) Stop() {
	if !c.interactive {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.out, "\x1b[r\x1b[%d;1H\n", c.height)
}

// JobStarted announces a job on its lane's row and in the log region.
func (c *Console) JobStarted(lane scheduler.Lane, job encoding.Job) {
	c.sampler(lane.Row).Reset()
	if !c.interactive {
		c.logger.Info("starting job",
			logging.String(logging.FieldLane, lane.Name),
			logging.String(logging.FieldInput, job.RelPath))
		return
	}
	c.writeRow(lane.Row, fmt.Sprintf("[%s] %s  starting", lane.Name, job.RelPath))
	c.logLine(fmt.Sprintf("[%s] start  %s", lane.Name, job.RelPath))
}

// Progress updates the lane's fixed row with the latest snapshot.
func (c *Console) Progress(lane scheduler.Lane, job encoding.Job, snapshot engine.Snapshot) {
	if !c.interactive {
		if c.sampler(lane.Row).ShouldLog(snapshot.Percent(), snapshot.Pass) {
			c.logger.Info("encoding progress",
				logging.String(logging.FieldLane, lane.Name),
				logging.String(logging.FieldInput, job.RelPath),
				logging.Int("pass", snapshot.Pass),
				logging.Float64("percent", snapshot.Percent()),
				logging.Int64("frame", snapshot.Frame),
				logging.Float64("fps", snapshot.FPS))
		}
		return
	}
	c.writeRow(lane.Row, renderProgress(lane, job, snapshot))
}

// JobFinished clears the lane row back to idle and logs the outcome.
func (c *Console) JobFinished(lane scheduler.Lane, result encoding.Result) {
	line := fmt.Sprintf("[%s] %s  %s", lane.Name, result.Job.RelPath, describeResult(result))
	if !c.interactive {
		c.logger.Info("job finished",
			logging.String(logging.FieldLane, lane.Name),
			logging.String(logging.FieldInput, result.Job.RelPath),
			logging.String("status", string(result.Status)),
			logging.Duration("elapsed", result.Elapsed))
		return
	}
	c.writeRow(lane.Row, fmt.Sprintf("[%s] idle", lane.Name))
	c.logLine(line)
}

// Println writes one line to the scrolling region, or straight through in
// plain mode.
func (c *Console) Println(line string) {
	if !c.interactive {
		c.mu.Lock()
		defer c.mu.Unlock()
		fmt.Fprintln(c.out, line)
		return
	}
	c.logLine(line)
}

// writeRow paints one fixed row. The cursor is saved and restored so the
// scrolling region's position is untouched.
func (c *Console) writeRow(row int, line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snipped := text.Snip(line, c.width, "…")
	fmt.Fprintf(c.out, "\x1b7\x1b[%d;1H%s%s\x1b8", row, text.EraseLine.Sprint(), snipped)
}

// logLine prints into the scrolling region, which owns the live cursor.
func (c *Console) logLine(line string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.out, text.Snip(line, c.width, "…"))
}

func (c *Console) sampler(row int) *logging.ProgressSampler {
	c.mu.Lock()
	defer c.mu.Unlock()
	sampler, ok := c.samplers[row]
	if !ok {
		sampler = logging.NewProgressSampler(10)
		c.samplers[row] = sampler
	}
	return sampler
}

// renderProgress formats one lane row. Indeterminate totals show the raw
// frame counter instead of a bogus percentage.
func renderProgress(lane scheduler.Lane, job encoding.Job, snapshot engine.Snapshot) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s  ", lane.Name, job.RelPath)
	if job.Plan.PassCount > 1 && snapshot.Pass > 0 {
		fmt.Fprintf(&b, "pass %d/%d  ", snapshot.Pass, job.Plan.PassCount)
	}
	if percent := snapshot.Percent(); percent >= 0 {
		filled := int(percent / 100 * progressBarWidth)
		if filled > progressBarWidth {
			filled = progressBarWidth
		}
		fmt.Fprintf(&b, "[%s%s] %5.1f%%",
			strings.Repeat("#", filled),
			strings.Repeat(".", progressBarWidth-filled),
			percent)
	} else {
		fmt.Fprintf(&b, "frame %d", snapshot.Frame)
	}
	if snapshot.FPS > 0 {
		fmt.Fprintf(&b, "  %.1f fps", snapshot.FPS)
	}
	if snapshot.Speed != "" {
		fmt.Fprintf(&b, "  %s", snapshot.Speed)
	}
	return b.String()
}

func describeResult(result encoding.Result) string {
	switch result.Status {
	case encoding.StatusCompressed:
		return fmt.Sprintf("compressed %.1f%% smaller", result.ReductionPercent)
	case encoding.StatusCopied:
		return "copied"
	case encoding.StatusFallbackCopied:
		return "fallback copy: " + result.Message
	case encoding.StatusSkipped:
		return "skipped, output exists"
	default:
		return "error: " + result.Message
	}
}

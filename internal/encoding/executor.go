package encoding

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"framepress/internal/engine"
	"framepress/internal/fileutil"
	"framepress/internal/logging"
	"framepress/internal/planner"
	"framepress/internal/scan"
	"framepress/internal/services"
)

// Options configure an Executor.
type Options struct {
	Engine      engine.Engine
	TargetCodec string
	// LogDir receives per-job engine logs. Logs for jobs that end without
	// an engine failure are removed.
	LogDir string
	// TempDir hosts progress side channels and two-pass analysis logs.
	// Defaults to os.TempDir().
	TempDir             string
	PollInterval        time.Duration
	MinReductionPercent float64
	Logger              *slog.Logger
}

// Executor runs one job at a time through the engine and applies the
// outcome policy. It is safe for concurrent use: each Execute call touches
// only its own job's files.
type Executor struct {
	engine       engine.Engine
	targetCodec  string
	logDir       string
	tempDir      string
	pollInterval time.Duration
	minReduction float64
	logger       *slog.Logger
}

// New constructs an Executor.
func New(opts Options) *Executor {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	tempDir := opts.TempDir
	if tempDir == "" {
		tempDir = os.TempDir()
	}
	return &Executor{
		engine:       opts.Engine,
		targetCodec:  opts.TargetCodec,
		logDir:       opts.LogDir,
		tempDir:      tempDir,
		pollInterval: opts.PollInterval,
		minReduction: opts.MinReductionPercent,
		logger:       logger,
	}
}

// Execute takes a job to its terminal Result. The returned error is non-nil
// only when the run as a whole must stop: the engine binary is missing, or
// ctx was cancelled before the job produced a complete artifact. Per-file
// failures are absorbed into the Result.
//
// On the hardware variant a cancelled ctx lets the current engine pass
// finish before the job bails out, so the accelerator is never killed mid
// process. Software passes are terminated immediately.
func (e *Executor) Execute(ctx context.Context, job Job, variant engine.Variant, onUpdate func(engine.Snapshot)) (Result, error) {
	started := time.Now()
	result := Result{Job: job}
	ctx = services.WithJobID(ctx, job.ID)
	logger := logging.WithContext(ctx, e.logger).With(logging.String(logging.FieldInput, job.RelPath))

	if info, err := os.Stat(job.Output); err == nil && info.Size() > 0 {
		result.Status = StatusSkipped
		result.Message = "output already exists"
		result.OutputSize = info.Size()
		if in, err := os.Stat(job.Input); err == nil {
			result.InputSize = in.Size()
		}
		result.Elapsed = time.Since(started)
		logger.Debug("skipping existing output", logging.String(logging.FieldOutput, job.Output))
		return result, nil
	}

	inputInfo, err := os.Stat(job.Input)
	if err != nil {
		return e.failed(result, started, logger, "stat input", err), nil
	}
	result.InputSize = inputInfo.Size()

	if err := fileutil.EnsureParent(job.Output); err != nil {
		return e.failed(result, started, logger, "create output directory", err), nil
	}

	if job.Kind != scan.KindVideo || job.Plan.Mode == planner.ModeCopy {
		return e.copyThrough(result, started, logger), nil
	}
	return e.encode(ctx, job, variant, onUpdate, result, started, logger)
}

// copyThrough mirrors the input unchanged.
func (e *Executor) copyThrough(result Result, started time.Time, logger *slog.Logger) Result {
	// Video passthrough copies are verified end to end; sidecar files are
	// just mirrored.
	copyFile := fileutil.CopyFileVerified
	if result.Job.Kind != scan.KindVideo {
		copyFile = fileutil.CopyFile
	}
	if err := copyFile(result.Job.Input, result.Job.Output); err != nil {
		return e.failed(result, started, logger, "copy input", err)
	}
	result.Status = StatusCopied
	result.Message = result.Job.Plan.Reason
	result.OutputSize = result.InputSize
	result.Elapsed = time.Since(started)
	logger.Debug("copied without encoding", logging.String("reason", result.Message))
	return result
}

func (e *Executor) encode(ctx context.Context, job Job, variant engine.Variant, onUpdate func(engine.Snapshot), result Result, started time.Time, logger *slog.Logger) (Result, error) {
	progressPath := filepath.Join(e.tempDir, "framepress-progress-"+job.ID+".txt")
	if err := os.WriteFile(progressPath, nil, 0o644); err != nil {
		return e.failed(result, started, logger, "create progress channel", err), nil
	}
	defer os.Remove(progressPath)

	passLog := ""
	if job.Plan.Mode == planner.ModeTwoPassVBR {
		passLog = filepath.Join(e.tempDir, "framepress-passlog-"+job.ID)
		defer removeByPrefix(passLog)
	}
	logPath := filepath.Join(e.logDir, job.ID+".log")

	passCtx := ctx
	if variant == engine.VariantHardware {
		// The accelerator keeps running through a cancel; the job checks
		// ctx again between passes.
		passCtx = context.WithoutCancel(ctx)
	}

	var engineErr error
	for pass := 1; pass <= job.Plan.PassCount; pass++ {
		if pass > 1 {
			// Fresh side channel so the second pass starts from frame zero.
			if err := os.Truncate(progressPath, 0); err != nil {
				return e.failed(result, started, logger, "reset progress channel", err), nil
			}
		}

		spec := engine.PassSpec{}
		if job.Plan.Mode == planner.ModeTwoPassVBR {
			spec = engine.PassSpec{Pass: pass, PassLogPath: passLog}
		}
		args := engine.BuildArgs(job.Plan, e.targetCodec, variant, spec, job.Input, job.Output, progressPath)

		logger.Debug("starting engine pass",
			logging.Int("pass", pass),
			logging.Int("pass_count", job.Plan.PassCount),
			logging.String("variant", string(variant)))
		runErr := e.engine.Run(passCtx, engine.RunSpec{
			Args:         args,
			LogPath:      logPath,
			ProgressPath: progressPath,
			TotalFrames:  job.Probe.TotalFrames,
			Pass:         pass,
			PollInterval: e.pollInterval,
			OnUpdate:     onUpdate,
		})
		if runErr != nil {
			if services.Fatal(runErr) {
				result.Status = StatusError
				result.Message = runErr.Error()
				result.Elapsed = time.Since(started)
				return result, runErr
			}
			if ctx.Err() != nil {
				return e.cancelled(result, started, logger, logPath)
			}
			// A failed pass short-circuits any remaining passes.
			engineErr = runErr
			break
		}
		if ctx.Err() != nil && pass < job.Plan.PassCount {
			return e.cancelled(result, started, logger, logPath)
		}
	}

	return e.applyOutcome(result, started, engineErr, logPath, logger), nil
}

// applyOutcome inspects the artifact an encode left behind and decides
// between Compressed and a fallback copy of the original.
func (e *Executor) applyOutcome(result Result, started time.Time, engineErr error, logPath string, logger *slog.Logger) Result {
	reason := ""
	switch {
	case engineErr != nil:
		reason = fmt.Sprintf("engine failed: %v", engineErr)
	default:
		info, err := os.Stat(result.Job.Output)
		switch {
		case err != nil || info.Size() == 0:
			reason = services.Wrap(services.ErrOutputMissing, "encoding", "verify output",
				"engine reported success but produced no output", nil).Error()
		case info.Size() >= result.InputSize:
			reason = "encoded output not smaller than input"
		default:
			reduction := float64(result.InputSize-info.Size()) / float64(result.InputSize) * 100
			if reduction < e.minReduction {
				reason = fmt.Sprintf("size reduction %.1f%% below the %.1f%% minimum", reduction, e.minReduction)
			} else {
				result.Status = StatusCompressed
				result.OutputSize = info.Size()
				result.ReductionPercent = reduction
				result.Elapsed = time.Since(started)
				os.Remove(logPath)
				logger.Info("compressed",
					logging.Int64("input_bytes", result.InputSize),
					logging.Int64("output_bytes", result.OutputSize),
					logging.Float64("reduction_percent", reduction))
				return result
			}
		}
	}

	logger.Warn("falling back to copy", logging.String("reason", reason))
	if err := fileutil.CopyFileVerified(result.Job.Input, result.Job.Output); err != nil {
		return e.failed(result, started, logger, "fallback copy", err)
	}
	if engineErr == nil {
		// Policy fallbacks leave nothing worth diagnosing.
		os.Remove(logPath)
	}
	result.Status = StatusFallbackCopied
	result.Message = reason
	result.OutputSize = result.InputSize
	result.Elapsed = time.Since(started)
	return result
}

// cancelled discards any partial artifact and signals the scheduler that
// this job produced no Result worth tallying.
func (e *Executor) cancelled(result Result, started time.Time, logger *slog.Logger, logPath string) (Result, error) {
	os.Remove(result.Job.Output)
	os.Remove(logPath)
	result.Status = StatusError
	result.Message = "cancelled"
	result.Elapsed = time.Since(started)
	logger.Info("encode cancelled, partial output discarded")
	return result, context.Canceled
}

func (e *Executor) failed(result Result, started time.Time, logger *slog.Logger, operation string, err error) Result {
	wrapped := services.Wrap(services.ErrFilesystem, "encoding", operation, "", err)
	result.Status = StatusError
	result.Message = wrapped.Error()
	result.Elapsed = time.Since(started)
	logger.Error("job failed", logging.Error(wrapped))
	return result
}

// removeByPrefix clears the analysis artifacts a two-pass encode leaves
// next to the pass log prefix.
func removeByPrefix(prefix string) {
	matches, err := filepath.Glob(prefix + "*")
	if err != nil {
		return
	}
	for _, match := range matches {
		os.Remove(match)
	}
}

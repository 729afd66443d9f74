// Package scheduler distributes encode jobs across one serial hardware
// lane and N parallel software lanes.
package scheduler

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"framepress/internal/encoding"
	"framepress/internal/engine"
	"framepress/internal/logging"
	"framepress/internal/services"
)

// JobExecutor runs one job to its terminal result. *encoding.Executor
// satisfies it.
type JobExecutor interface {
	Execute(ctx context.Context, job encoding.Job, variant engine.Variant, onUpdate func(engine.Snapshot)) (encoding.Result, error)
}

// Reporter receives lane lifecycle events. Implementations must be safe
// for concurrent calls from every lane.
type Reporter interface {
	JobStarted(lane Lane, job encoding.Job)
	Progress(lane Lane, job encoding.Job, snapshot engine.Snapshot)
	JobFinished(lane Lane, result encoding.Result)
}

// NopReporter discards all events.
type NopReporter struct{}

func (NopReporter) JobStarted(Lane, encoding.Job)                {}
func (NopReporter) Progress(Lane, encoding.Job, engine.Snapshot) {}
func (NopReporter) JobFinished(Lane, encoding.Result)            {}

// Scheduler owns the worker lanes for one run.
type Scheduler struct {
	executor JobExecutor
	lanes    []Lane
	reporter Reporter
	logger   *slog.Logger
}

// New constructs a Scheduler. A nil reporter discards events.
func New(executor JobExecutor, lanes []Lane, reporter Reporter, logger *slog.Logger) *Scheduler {
	if reporter == nil {
		reporter = NopReporter{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scheduler{executor: executor, lanes: lanes, reporter: reporter, logger: logger}
}

// Run dispatches the jobs round-robin across the lanes and blocks until
// every lane drains. The tally accumulates only completed results; jobs
// cancelled mid-flight or never started are absent from it. The returned
// error is non-nil when the run was cancelled or a lane hit a fatal error,
// in which case the tally is partial.
func (s *Scheduler) Run(ctx context.Context, jobs []encoding.Job) (Tally, error) {
	var tally Tally
	if len(jobs) == 0 || len(s.lanes) == 0 {
		return tally, nil
	}

	runCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	results := make(chan encoding.Result, len(jobs))
	assignments := Assign(len(jobs), s.lanes)

	var wg sync.WaitGroup
	for i, lane := range s.lanes {
		wg.Add(1)
		go func(lane Lane, queue []int) {
			defer wg.Done()
			s.drainLane(runCtx, cancel, lane, jobs, queue, results)
		}(lane, assignments[i])
	}
	wg.Wait()
	close(results)

	for result := range results {
		tally.Add(result)
	}

	if cause := context.Cause(runCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		return tally, cause
	}
	if err := ctx.Err(); err != nil {
		return tally, err
	}
	return tally, nil
}

// drainLane runs one lane's queue strictly in order, stopping when the run
// context dies.
func (s *Scheduler) drainLane(ctx context.Context, cancel context.CancelCauseFunc, lane Lane, jobs []encoding.Job, queue []int, results chan<- encoding.Result) {
	ctx = services.WithLane(ctx, lane.Name)
	logger := logging.WithContext(ctx, s.logger)
	for _, idx := range queue {
		if ctx.Err() != nil {
			// Stop dispatching; queued jobs never start.
			return
		}
		job := jobs[idx]
		s.reporter.JobStarted(lane, job)
		result, err := s.executor.Execute(ctx, job, lane.Variant, func(snapshot engine.Snapshot) {
			s.reporter.Progress(lane, job, snapshot)
		})
		if err != nil {
			if services.Fatal(err) {
				logger.Error("lane aborted the run", logging.Error(err))
				cancel(err)
			} else {
				logger.Info("job cancelled", logging.String(logging.FieldInput, job.RelPath))
			}
			return
		}
		s.reporter.JobFinished(lane, result)
		results <- result
	}
}

package scheduler

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"framepress/internal/encoding"
	"framepress/internal/engine"
	"framepress/internal/services"
)

type fakeExecutor struct {
	mu      sync.Mutex
	started []string
	execute func(ctx context.Context, job encoding.Job, variant engine.Variant) (encoding.Result, error)
}

func (f *fakeExecutor) Execute(ctx context.Context, job encoding.Job, variant engine.Variant, _ func(engine.Snapshot)) (encoding.Result, error) {
	f.mu.Lock()
	f.started = append(f.started, job.RelPath)
	f.mu.Unlock()
	if f.execute != nil {
		return f.execute(ctx, job, variant)
	}
	return encoding.Result{Job: job, Status: encoding.StatusCompressed, InputSize: 100, OutputSize: 60}, nil
}

func makeJobs(names ...string) []encoding.Job {
	jobs := make([]encoding.Job, len(names))
	for i, name := range names {
		jobs[i] = encoding.Job{ID: name, RelPath: name, Input: name, Output: name + ".out"}
	}
	return jobs
}

func testLanes(hardware bool, software int) []Lane {
	return BuildLanes(engine.Availability{Hardware: hardware, Software: true}, hardware, software)
}

func TestBuildLanesShape(t *testing.T) {
	lanes := testLanes(true, 2)
	if len(lanes) != 3 {
		t.Fatalf("expected 3 lanes, got %d", len(lanes))
	}
	if lanes[0].Variant != engine.VariantHardware {
		t.Fatal("hardware lane must come first")
	}
	rows := map[int]bool{}
	for _, lane := range lanes {
		if rows[lane.Row] {
			t.Fatalf("duplicate terminal row %d", lane.Row)
		}
		rows[lane.Row] = true
	}

	lanes = BuildLanes(engine.Availability{Software: true}, true, 2)
	if len(lanes) != 2 {
		t.Fatalf("no accelerated encoder means no hardware lane, got %d lanes", len(lanes))
	}

	lanes = BuildLanes(engine.Availability{Hardware: true}, true, 4)
	if len(lanes) != 1 || lanes[0].Variant != engine.VariantHardware {
		t.Fatalf("no software encoder means hardware only, got %+v", lanes)
	}
}

func TestAssignRoundRobin(t *testing.T) {
	lanes := testLanes(true, 2)
	assignments := Assign(7, lanes)

	want := [][]int{{0, 3, 6}, {1, 4}, {2, 5}}
	for lane := range want {
		if len(assignments[lane]) != len(want[lane]) {
			t.Fatalf("lane %d: expected %v, got %v", lane, want[lane], assignments[lane])
		}
		for i := range want[lane] {
			if assignments[lane][i] != want[lane][i] {
				t.Fatalf("lane %d: expected %v, got %v", lane, want[lane], assignments[lane])
			}
		}
	}
}

func TestRunTalliesEveryJob(t *testing.T) {
	executor := &fakeExecutor{}
	jobs := makeJobs("a", "b", "c", "d", "e")
	scheduler := New(executor, testLanes(false, 2), nil, nil)

	tally, err := scheduler.Run(context.Background(), jobs)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if tally.Total() != len(jobs) {
		t.Fatalf("expected %d results, got %d", len(jobs), tally.Total())
	}
	if tally.Compressed != len(jobs) {
		t.Fatalf("expected all compressed, got %+v", tally)
	}
}

func TestRunLaneOrderPreserved(t *testing.T) {
	var mu sync.Mutex
	perVariant := map[engine.Variant][]string{}
	executor := &fakeExecutor{
		execute: func(_ context.Context, job encoding.Job, variant engine.Variant) (encoding.Result, error) {
			mu.Lock()
			perVariant[variant] = append(perVariant[variant], job.RelPath)
			mu.Unlock()
			return encoding.Result{Job: job, Status: encoding.StatusCopied}, nil
		},
	}
	jobs := makeJobs("a", "b", "c", "d")
	scheduler := New(executor, testLanes(true, 1), nil, nil)

	if _, err := scheduler.Run(context.Background(), jobs); err != nil {
		t.Fatalf("Run: %v", err)
	}

	hw := strings.Join(perVariant[engine.VariantHardware], ",")
	if hw != "a,c" {
		t.Fatalf("hardware lane order: expected a,c got %s", hw)
	}
	sw := strings.Join(perVariant[engine.VariantSoftware], ",")
	if sw != "b,d" {
		t.Fatalf("software lane order: expected b,d got %s", sw)
	}
}

func TestRunFatalErrorAbortsDispatch(t *testing.T) {
	fatal := services.Wrap(services.ErrToolUnavailable, "engine", "locate ffmpeg", "", nil)
	executor := &fakeExecutor{
		execute: func(context.Context, encoding.Job, engine.Variant) (encoding.Result, error) {
			return encoding.Result{}, fatal
		},
	}
	jobs := makeJobs("a", "b", "c", "d")
	scheduler := New(executor, testLanes(false, 1), nil, nil)

	tally, err := scheduler.Run(context.Background(), jobs)
	if !errors.Is(err, services.ErrToolUnavailable) {
		t.Fatalf("expected the fatal cause, got %v", err)
	}
	if tally.Total() != 0 {
		t.Fatalf("no completed results expected, got %d", tally.Total())
	}
	if len(executor.started) != 1 {
		t.Fatalf("dispatch must stop after the fatal job, started %v", executor.started)
	}
}

func TestRunCancellationLeavesQueuedJobsUnstarted(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	executor := &fakeExecutor{
		execute: func(runCtx context.Context, job encoding.Job, _ engine.Variant) (encoding.Result, error) {
			if job.RelPath == "a" {
				cancel()
				<-runCtx.Done()
				return encoding.Result{}, runCtx.Err()
			}
			return encoding.Result{Job: job, Status: encoding.StatusCopied}, nil
		},
	}
	jobs := makeJobs("a", "b", "c")
	scheduler := New(executor, testLanes(false, 1), nil, nil)

	tally, err := scheduler.Run(ctx, jobs)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if tally.Total() != 0 {
		t.Fatalf("cancelled jobs must not be tallied, got %d", tally.Total())
	}
	if len(executor.started) != 1 {
		t.Fatalf("queued jobs must never start after cancellation, started %v", executor.started)
	}
}

func TestRunStampsLaneOnContext(t *testing.T) {
	var mu sync.Mutex
	laneByJob := map[string]string{}
	executor := &fakeExecutor{
		execute: func(ctx context.Context, job encoding.Job, _ engine.Variant) (encoding.Result, error) {
			name, ok := services.LaneFromContext(ctx)
			if !ok {
				t.Errorf("job %s: no lane stamped on context", job.RelPath)
			}
			mu.Lock()
			laneByJob[job.RelPath] = name
			mu.Unlock()
			return encoding.Result{Job: job, Status: encoding.StatusCopied}, nil
		},
	}
	jobs := makeJobs("a", "b")
	scheduler := New(executor, testLanes(true, 1), nil, nil)

	if _, err := scheduler.Run(context.Background(), jobs); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if laneByJob["a"] != "gpu" || laneByJob["b"] != "cpu1" {
		t.Fatalf("unexpected lane stamps: %v", laneByJob)
	}
}

func TestRunNoLanes(t *testing.T) {
	scheduler := New(&fakeExecutor{}, nil, nil, nil)
	tally, err := scheduler.Run(context.Background(), makeJobs("a"))
	if err != nil || tally.Total() != 0 {
		t.Fatalf("expected empty run, got tally=%d err=%v", tally.Total(), err)
	}
}

func TestTallyAccumulation(t *testing.T) {
	var tally Tally
	tally.Add(encoding.Result{Status: encoding.StatusCompressed, InputSize: 1000, OutputSize: 600})
	tally.Add(encoding.Result{Status: encoding.StatusCopied, InputSize: 500, OutputSize: 500})
	tally.Add(encoding.Result{Status: encoding.StatusFallbackCopied, InputSize: 200, OutputSize: 200})
	tally.Add(encoding.Result{Status: encoding.StatusSkipped})
	tally.Add(encoding.Result{Status: encoding.StatusError, InputSize: 300})

	if tally.Total() != 5 {
		t.Fatalf("expected total 5, got %d", tally.Total())
	}
	if tally.Saved() != 400 {
		t.Fatalf("expected 400 bytes saved, got %d", tally.Saved())
	}
	rendered := tally.Render()
	for _, want := range []string{"Compressed", "Fallback copied", "Total", "Space saved"} {
		if !strings.Contains(rendered, want) {
			t.Fatalf("expected %q in summary:\n%s", want, rendered)
		}
	}
}

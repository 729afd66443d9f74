package encoding

import (
	"time"

	"github.com/google/uuid"

	"framepress/internal/inspect"
	"framepress/internal/planner"
	"framepress/internal/scan"
)

// Job is one input file bound to its probe and plan. The ID names the job's
// transient artifacts (progress side channel, pass logs, failure log).
type Job struct {
	ID      string
	Input   string
	Output  string
	RelPath string
	Kind    scan.Kind
	Probe   inspect.MediaProbe
	Plan    planner.Plan
}

// NewJob binds a scanned item to its probe and plan under a fresh job ID.
func NewJob(item scan.Item, probe inspect.MediaProbe, plan planner.Plan) Job {
	return Job{
		ID:      uuid.NewString(),
		Input:   item.Input,
		Output:  item.Output,
		RelPath: item.RelPath,
		Kind:    item.Kind,
		Probe:   probe,
		Plan:    plan,
	}
}

// Status is the terminal outcome of one job.
type Status string

const (
	// StatusCompressed means the encode produced a smaller artifact that
	// cleared the minimum-reduction bar.
	StatusCompressed Status = "compressed"
	// StatusCopied means the file was mirrored unchanged by plan.
	StatusCopied Status = "copied"
	// StatusFallbackCopied means an encode ran but the original was copied
	// instead, either because the engine failed or the result was not
	// worth keeping.
	StatusFallbackCopied Status = "fallback_copied"
	// StatusSkipped means the output already existed and was left alone.
	StatusSkipped Status = "skipped"
	// StatusError means a filesystem problem prevented any outcome.
	StatusError Status = "error"
)

// Result is the terminal record of one job. It is created exactly once and
// never mutated afterward.
type Result struct {
	Job              Job
	Status           Status
	InputSize        int64
	OutputSize       int64
	ReductionPercent float64
	Elapsed          time.Duration
	// Message carries the human-readable reason for fallbacks, skips, and
	// errors. Empty for plain successes.
	Message string
}

// Package encoding executes encode plans against the external engine.
//
// The Executor owns the full per-file job lifecycle: skip detection, plan
// execution across one or two engine passes with a polled progress side
// channel, and the outcome policy that decides whether an encode earned its
// keep or falls back to a verified copy of the original. Engine diagnostics
// go to a per-job log file so the shared terminal stays clean; the log is
// removed again when the job ends without an engine failure.
//
// Every input file resolves to exactly one Result. Per-file failures never
// abort the run; only a missing engine binary or cancellation propagates as
// an error.
package encoding

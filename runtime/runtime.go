// Package runtime implements the runtime side of the compiler/runtime
// lattice (spec §4.3): backends that consume an artifact.Artifact bound
// to their Target and produce an ExecutionResult.
package runtime

import (
	"context"
	"time"

	"github.com/olix3001/exers-go/artifact"
)

// Result is the outcome of one run phase: captured stdout/stderr, the
// wall-clock duration of the run only (excluding compilation), and the
// guest's exit code (0 when the host cannot report one).
type Result struct {
	// Stdout is nil when the guest produced no standard output, matching
	// spec §3's "empty captured streams are reported as absent rather
	// than empty strings".
	Stdout *string
	// Stderr is nil when the guest produced no standard error.
	Stderr *string
	// Duration covers only the run phase, not compilation.
	Duration time.Duration
	// ExitCode is the guest's exit status, or 0 if unavailable.
	ExitCode int
}

// Backend maps a compiled artifact bound to its Target to an execution
// result.
type Backend interface {
	// Run executes art, which must be bound to Target(), using cfg (or
	// DefaultConfig if cfg is nil).
	Run(ctx context.Context, art artifact.Artifact, cfg any) (Result, error)
	// DefaultConfig returns this backend's zero-value configuration.
	DefaultConfig() any
	// Target names the artifact binding this backend consumes.
	Target() artifact.Target
}

// nonEmptyString converts s to a *string, returning nil for an empty string so
// callers report absent output rather than an empty string (spec §4.3.1).
func nonEmptyString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Package artifact defines the compiled artifact produced by a compiler
// and consumed by a runtime: an executable on disk, the scratch directory
// it lives in, and runtime-specific side data, all bound to exactly one
// Target.
//
// Go has no first-class phantom types, so the binding described in
// spec §3 ("a phantom discriminator binding the artifact to exactly one
// runtime type at the type level") is expressed the way the design notes
// recommend for languages without type-level trait dispatch: Target is an
// ordinary enum value checked at the runtime boundary (see Check).
package artifact

import (
	"fmt"

	"github.com/olix3001/exers-go/internal/scratchdir"
)

// Target names the runtime a compiled artifact is bound to.
type Target int

const (
	// Native targets a plain OS subprocess.
	Native Target = iota
	// WASI targets the embedded WASI bytecode VM.
	WASI
	// Jailed targets a chroot-jailed OS subprocess. Its artifacts are
	// identical to Native's; only the runtime that consumes them differs.
	Jailed
)

// String implements fmt.Stringer.
func (t Target) String() string {
	switch t {
	case Native:
		return "native"
	case WASI:
		return "wasi"
	case Jailed:
		return "jailed"
	default:
		return fmt.Sprintf("target(%d)", int(t))
	}
}

// Artifact is the result of compilation. Only the runtime whose Target
// matches Artifact.Target may consume it; every runtime implementation
// checks this at its Run boundary and otherwise returns its own error
// type wrapping an *ErrWrongTarget (reachable with errors.As).
type Artifact struct {
	// Target binds this artifact to exactly one runtime.
	Target Target

	// ExecutablePath is the path to the produced binary, script, or
	// bytecode file, empty if the compiler produced no standalone file.
	// When non-empty it is always inside Scratch's directory.
	ExecutablePath string

	// SideData is runtime-specific: for Native/Jailed it is
	// *sidedata.Native (the interpreter program name, if any); for
	// WASI it is *sidedata.WASI (extra argv and an optional sandbox
	// directory). Runtimes type-assert this themselves.
	SideData any

	scratch *scratchdir.Handle
}

// New constructs an Artifact. scratch must not be nil; ownership of the
// reference is transferred to the returned Artifact.
func New(target Target, scratch *scratchdir.Handle, executablePath string, sideData any) Artifact {
	return Artifact{
		Target:         target,
		ExecutablePath: executablePath,
		SideData:       sideData,
		scratch:        scratch,
	}
}

// ScratchDir returns the directory backing this artifact.
func (a Artifact) ScratchDir() string {
	return a.scratch.Path()
}

// Clone returns a new Artifact sharing the same scratch directory. The
// directory is kept alive until every clone (including the original) has
// been Closed.
func (a Artifact) Clone() Artifact {
	clone := a
	clone.scratch = a.scratch.Clone()
	return clone
}

// Close releases this artifact's reference to its scratch directory,
// deleting it from disk once the last reference drops. Close is
// idempotent.
func (a Artifact) Close() error {
	return a.scratch.Release()
}

// ErrWrongTarget is returned when a runtime is handed an artifact bound to
// a different Target.
type ErrWrongTarget struct {
	Want, Got Target
}

func (e *ErrWrongTarget) Error() string {
	return fmt.Sprintf("artifact: runtime requires target %s, got %s", e.Want, e.Got)
}

// Check returns ErrWrongTarget if a is not bound to want.
func Check(a Artifact, want Target) error {
	if a.Target != want {
		return &ErrWrongTarget{Want: want, Got: a.Target}
	}
	return nil
}

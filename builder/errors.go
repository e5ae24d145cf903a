package builder

import (
	"fmt"

	"github.com/olix3001/exers-go/artifact"
)

// ErrCompilerNotSet is returned by Build when no compiler was configured.
var ErrCompilerNotSet = notSetError("compiler")

// ErrRuntimeNotSet is returned by Build when no runtime backend was
// configured.
var ErrRuntimeNotSet = notSetError("runtime")

type notSetError string

func (e notSetError) Error() string { return fmt.Sprintf("builder: %s not set", string(e)) }

// ErrTargetMismatch is returned by Build when the configured compiler and
// runtime backend are bound to different Targets.
type ErrTargetMismatch struct {
	Compiler, Runtime artifact.Target
}

func (e *ErrTargetMismatch) Error() string {
	return fmt.Sprintf("builder: compiler targets %s but runtime targets %s", e.Compiler, e.Runtime)
}

// ErrorKind discriminates which phase of FusedExecutor.Run a failure came
// from.
type ErrorKind int

const (
	// KindCompilation covers both preprocessor and compiler failures:
	// preprocessor errors are lifted into this variant since by the time
	// FusedExecutor runs, preprocessing is just the first compilation step.
	KindCompilation ErrorKind = iota
	// KindRuntime covers runtime backend failures.
	KindRuntime
)

func (k ErrorKind) String() string {
	switch k {
	case KindCompilation:
		return "compilation"
	case KindRuntime:
		return "runtime"
	default:
		return "unknown"
	}
}

// Error is the two-variant union FusedExecutor.Run returns, mirroring the
// original crate's CustomRuntimeError{CompilationError, RuntimeError}.
type Error struct {
	Kind    ErrorKind
	Wrapped error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("builder: %s error: %v", e.Kind, e.Wrapped)
}

// Unwrap exposes the wrapped error for errors.Is/errors.As.
func (e *Error) Unwrap() error { return e.Wrapped }

// compilationError lifts a preprocessor or compiler failure into the
// compilation variant.
func compilationError(err error) error { return &Error{Kind: KindCompilation, Wrapped: err} }

// runtimeError lifts a backend failure into the runtime variant.
func runtimeError(err error) error { return &Error{Kind: KindRuntime, Wrapped: err} }

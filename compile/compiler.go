// Package compile implements the compiler side of the compiler/runtime
// lattice (spec §4.1): one adapter per supported (Language, Target) pair,
// each producing a compile.Error on failure and an artifact.Artifact
// bound to Target on success.
//
// The set of legal pairs is closed and enumerable: New fails with
// compile.FeatureNotSupported for any pair without a registered adapter,
// rather than letting the failure surface later at the runtime boundary.
package compile

import (
	"context"
	"io"
	"os/exec"

	"github.com/olix3001/exers-go/artifact"
)

// Language names a supported source language.
type Language int

const (
	Rust Language = iota
	Cpp
	Python
	JavaScript
)

// String implements fmt.Stringer.
func (l Language) String() string {
	switch l {
	case Rust:
		return "rust"
	case Cpp:
		return "cpp"
	case Python:
		return "python"
	case JavaScript:
		return "javascript"
	default:
		return "unknown"
	}
}

// Compiler maps freshly-positioned source bytes to a compiled artifact
// bound to exactly one Target.
type Compiler interface {
	// Compile reads all of src, applies cfg (or DefaultConfig if cfg is
	// nil), and produces an artifact.Artifact bound to Target().
	Compile(ctx context.Context, src io.Reader, cfg any) (artifact.Artifact, error)
	// DefaultConfig returns this adapter's zero-value configuration.
	DefaultConfig() any
	// Target names the runtime this compiler's artifacts are bound to.
	Target() artifact.Target
}

type pair struct {
	lang   Language
	target artifact.Target
}

// lattice is the closed, enumerable table of legal (Language, Target)
// pairs. Unlisted pairs are unsupported by construction.
var lattice = map[pair]func() Compiler{
	{Rust, artifact.Native}: func() Compiler { return NewRustCompiler(artifact.Native) },
	{Rust, artifact.WASI}:   func() Compiler { return NewRustCompiler(artifact.WASI) },
	{Rust, artifact.Jailed}: func() Compiler { return NewRustCompiler(artifact.Jailed) },

	{Cpp, artifact.Native}: func() Compiler { return NewCppCompiler(artifact.Native) },
	{Cpp, artifact.WASI}:   func() Compiler { return NewCppCompiler(artifact.WASI) },
	{Cpp, artifact.Jailed}: func() Compiler { return NewCppCompiler(artifact.Jailed) },

	{Python, artifact.Native}: func() Compiler { return NewPythonCompiler(artifact.Native) },
	{Python, artifact.Jailed}: func() Compiler { return NewPythonCompiler(artifact.Jailed) },

	{JavaScript, artifact.Native}: func() Compiler { return NewJavaScriptCompiler(artifact.Native) },
	{JavaScript, artifact.WASI}:   func() Compiler { return NewJavaScriptCompiler(artifact.WASI) },
	{JavaScript, artifact.Jailed}: func() Compiler { return NewJavaScriptCompiler(artifact.Jailed) },
}

// New looks up the adapter for (lang, target) in the compiler/runtime
// lattice. It returns a KindFeatureNotSupported error for any pair the
// library does not claim to support — Python (with or without cython)
// has no WASI path, for instance, because its adapter never compiles to
// wasm32-wasi.
func New(lang Language, target artifact.Target) (Compiler, error) {
	ctor, ok := lattice[pair{lang, target}]
	if !ok {
		return nil, FeatureNotSupported(lang.String() + "/" + target.String())
	}
	return ctor(), nil
}

// Supported reports whether (lang, target) has a registered adapter,
// without constructing it.
func Supported(lang Language, target artifact.Target) bool {
	_, ok := lattice[pair{lang, target}]
	return ok
}

// checkProgramInstalled returns a KindToolNotInstalled error if program is
// not found on PATH, mirroring the original crate's check_program_installed
// (which shells out to `which`).
func checkProgramInstalled(program string) error {
	if _, err := exec.LookPath(program); err != nil {
		return ToolNotInstalled(program)
	}
	return nil
}

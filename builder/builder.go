// Package builder fuses a chosen compiler and runtime, plus an ordered
// chain of source-text preprocessors, into a single reusable executor
// (spec §5).
package builder

import (
	"context"
	"io"
	"strings"

	"github.com/olix3001/exers-go/compile"
	"github.com/olix3001/exers-go/preprocess"
	"github.com/olix3001/exers-go/runtime"
)

// ExecutorBuilder accumulates preprocessors, a compiler, and a runtime
// backend before being fused into a FusedExecutor. Every With* method
// clones the builder rather than mutating it in place, so a partially
// configured builder can be safely reused as a base for several variants.
type ExecutorBuilder struct {
	stages      []preprocess.Preprocessor
	compiler    compile.Compiler
	compilerCfg any
	backend     runtime.Backend
	backendCfg  any
}

// New returns an empty builder.
func New() ExecutorBuilder {
	return ExecutorBuilder{}
}

// clone copies the builder, including a fresh backing array for the
// preprocessor stages, so appending to the clone never mutates b.
func (b ExecutorBuilder) clone() ExecutorBuilder {
	ret := b
	ret.stages = append([]preprocess.Preprocessor{}, b.stages...)
	return ret
}

// WithPreprocessor appends p to the preprocessor chain.
func (b ExecutorBuilder) WithPreprocessor(p preprocess.Preprocessor) ExecutorBuilder {
	ret := b.clone()
	ret.stages = append(ret.stages, p)
	return ret
}

// WithCompiler sets the compiler to use. cfg may be nil to use the
// compiler's DefaultConfig.
func (b ExecutorBuilder) WithCompiler(c compile.Compiler, cfg any) ExecutorBuilder {
	ret := b.clone()
	ret.compiler = c
	ret.compilerCfg = cfg
	return ret
}

// WithRuntime sets the runtime backend to use. cfg may be nil to use the
// backend's DefaultConfig.
func (b ExecutorBuilder) WithRuntime(rt runtime.Backend, cfg any) ExecutorBuilder {
	ret := b.clone()
	ret.backend = rt
	ret.backendCfg = cfg
	return ret
}

// Build validates the accumulated configuration and returns a reusable
// FusedExecutor. It fails if no compiler or runtime was set, or if the
// compiler's Target doesn't match the runtime's Target.
func (b ExecutorBuilder) Build() (*FusedExecutor, error) {
	if b.compiler == nil {
		return nil, ErrCompilerNotSet
	}
	if b.backend == nil {
		return nil, ErrRuntimeNotSet
	}
	if b.compiler.Target() != b.backend.Target() {
		return nil, &ErrTargetMismatch{Compiler: b.compiler.Target(), Runtime: b.backend.Target()}
	}

	compilerCfg := b.compilerCfg
	if compilerCfg == nil {
		compilerCfg = b.compiler.DefaultConfig()
	}
	backendCfg := b.backendCfg
	if backendCfg == nil {
		backendCfg = b.backend.DefaultConfig()
	}

	return &FusedExecutor{
		bundle:      preprocess.NewBundle(b.stages...),
		compiler:    b.compiler,
		compilerCfg: compilerCfg,
		backend:     b.backend,
		backendCfg:  backendCfg,
	}, nil
}

// FusedExecutor is an immutable, reusable combination of preprocessors,
// one compiler, and one runtime backend. Run may be called repeatedly
// with different source text; each call compiles fresh and releases its
// scratch directory before returning.
type FusedExecutor struct {
	bundle      *preprocess.Bundle
	compiler    compile.Compiler
	compilerCfg any
	backend     runtime.Backend
	backendCfg  any
}

// Run preprocesses src, compiles the result, runs the produced artifact,
// and releases the artifact's scratch directory before returning. Errors
// are reported as a *builder.Error discriminating compilation-phase
// failures (reading src, preprocessing, compiling) from runtime-phase
// ones, with preprocessor errors lifted into the compilation variant.
func (f *FusedExecutor) Run(ctx context.Context, src io.Reader) (runtime.Result, error) {
	raw, err := io.ReadAll(src)
	if err != nil {
		return runtime.Result{}, compilationError(err)
	}

	text, err := f.bundle.Preprocess(string(raw))
	if err != nil {
		return runtime.Result{}, compilationError(err)
	}

	art, err := f.compiler.Compile(ctx, strings.NewReader(text), f.compilerCfg)
	if err != nil {
		return runtime.Result{}, compilationError(err)
	}
	defer art.Close()

	result, err := f.backend.Run(ctx, art, f.backendCfg)
	if err != nil {
		return runtime.Result{}, runtimeError(err)
	}
	return result, nil
}

// AsFunc returns Run bound to ctx as a plain function value, for callers
// that want to treat a FusedExecutor like a callable rather than an
// object (spec §5's "fused executor is callable").
func (f *FusedExecutor) AsFunc(ctx context.Context) func(io.Reader) (runtime.Result, error) {
	return func(src io.Reader) (runtime.Result, error) {
		return f.Run(ctx, src)
	}
}

package compile

import (
	"context"
	"fmt"
	"io"

	"github.com/olix3001/exers-go/artifact"
	"github.com/olix3001/exers-go/sidedata"
)

// RustConfig configures the Rust adapter. The zero value is the default:
// no optimizations, a single codegen unit.
type RustConfig struct {
	// OptLevel is passed as `-C opt-level=<level>`. OptNone omits the
	// flag entirely (spec §4.1).
	OptLevel OptLevel
	// CodegenUnits is passed as `-C codegen-units=<n>`.
	CodegenUnits uint32
}

// DefaultRustConfig returns RustConfig{OptLevel: OptNone, CodegenUnits: 1}.
func DefaultRustConfig() RustConfig {
	return RustConfig{OptLevel: OptNone, CodegenUnits: 1}
}

// OptimizedRustConfig returns a fully-optimized configuration, the Go
// analogue of the original crate's RustCompilerConfig::optimized().
func OptimizedRustConfig() RustConfig {
	return RustConfig{OptLevel: OptO3, CodegenUnits: 1}
}

func (c RustConfig) toArgs() []string {
	var args []string
	if !c.OptLevel.IsNone() {
		args = append(args, "-C", "opt-level="+c.OptLevel.Render())
	}
	units := c.CodegenUnits
	if units == 0 {
		units = 1
	}
	args = append(args, "-C", fmt.Sprintf("codegen-units=%d", units))
	return args
}

// RustCompiler compiles Rust source with `rustc`.
type RustCompiler struct {
	target artifact.Target
}

// NewRustCompiler returns a Rust adapter bound to target. Callers
// normally go through compile.New(compile.Rust, target) instead.
func NewRustCompiler(target artifact.Target) *RustCompiler {
	return &RustCompiler{target: target}
}

// Target implements Compiler.Target.
func (c *RustCompiler) Target() artifact.Target { return c.target }

// DefaultConfig implements Compiler.DefaultConfig.
func (c *RustCompiler) DefaultConfig() any { return DefaultRustConfig() }

// Compile implements Compiler.Compile.
func (c *RustCompiler) Compile(ctx context.Context, src io.Reader, cfg any) (artifact.Artifact, error) {
	rcfg, _ := cfg.(RustConfig)
	if cfg == nil {
		rcfg = DefaultRustConfig()
	}

	switch c.target {
	case artifact.Native:
		return c.compileNative(ctx, src, rcfg)
	case artifact.WASI:
		return c.compileWASI(ctx, src, rcfg)
	case artifact.Jailed:
		native, err := c.compileNative(ctx, src, rcfg)
		if err != nil {
			return artifact.Artifact{}, err
		}
		native.Target = artifact.Jailed
		return native, nil
	default:
		return artifact.Artifact{}, FeatureNotSupported("rust/" + c.target.String())
	}
}

func (c *RustCompiler) compileNative(ctx context.Context, src io.Reader, cfg RustConfig) (artifact.Artifact, error) {
	args := []string{"code.rs", "-o", "executable"}
	args = append(args, cfg.toArgs()...)
	dir, err := runToolchain(ctx, "rust", src, "code.rs", "rustc", args)
	if err != nil {
		return artifact.Artifact{}, err
	}
	return artifactFromExecutable(artifact.Native, dir, "executable", &sidedata.Native{}), nil
}

func (c *RustCompiler) compileWASI(ctx context.Context, src io.Reader, cfg RustConfig) (artifact.Artifact, error) {
	args := []string{"code.rs", "--target", "wasm32-wasi", "-o", "executable.wasm"}
	args = append(args, cfg.toArgs()...)
	dir, err := runToolchain(ctx, "rust", src, "code.rs", "rustc", args)
	if err != nil {
		return artifact.Artifact{}, err
	}
	return artifactFromExecutable(artifact.WASI, dir, "executable.wasm", &sidedata.WASI{}), nil
}

package compile

import (
	"context"
	"io"
	"os"

	"github.com/olix3001/exers-go/artifact"
	"github.com/olix3001/exers-go/sidedata"
)

// CppConfig configures the C++ adapter.
type CppConfig struct {
	// OptLevel is passed as `-O<level>`. OptNone omits the flag.
	OptLevel OptLevel
	// ExtraFlags are appended verbatim after the optimization flag.
	ExtraFlags []string
}

// DefaultCppConfig returns CppConfig{OptLevel: OptNone}.
func DefaultCppConfig() CppConfig {
	return CppConfig{OptLevel: OptNone}
}

// OptimizedCppConfig returns a fully-optimized configuration, the Go
// analogue of the original crate's CppCompilerConfig::optimized().
func OptimizedCppConfig() CppConfig {
	return CppConfig{OptLevel: OptO3}
}

func (c CppConfig) toArgs() []string {
	var args []string
	if !c.OptLevel.IsNone() {
		args = append(args, "-O"+c.OptLevel.Render())
	}
	args = append(args, c.ExtraFlags...)
	return args
}

// nativeCxxCompiler is the compiler binary used for native and WASI C++
// builds. There is no fallback compiler: if clang++ is not on PATH,
// checkProgramInstalled reports KindToolNotInstalled at invocation time.
const nativeCxxCompiler = "clang++"

// CppCompiler compiles C++ source with clang++ (native/jailed) or a
// wasm32-wasi sysroot build (WASI).
type CppCompiler struct {
	target artifact.Target
}

// NewCppCompiler returns a C++ adapter bound to target. Callers normally
// go through compile.New(compile.Cpp, target) instead.
func NewCppCompiler(target artifact.Target) *CppCompiler {
	return &CppCompiler{target: target}
}

// Target implements Compiler.Target.
func (c *CppCompiler) Target() artifact.Target { return c.target }

// DefaultConfig implements Compiler.DefaultConfig.
func (c *CppCompiler) DefaultConfig() any { return DefaultCppConfig() }

// Compile implements Compiler.Compile.
func (c *CppCompiler) Compile(ctx context.Context, src io.Reader, cfg any) (artifact.Artifact, error) {
	ccfg, _ := cfg.(CppConfig)
	if cfg == nil {
		ccfg = DefaultCppConfig()
	}

	switch c.target {
	case artifact.Native:
		return c.compileNative(ctx, src, ccfg)
	case artifact.WASI:
		return c.compileWASI(ctx, src, ccfg)
	case artifact.Jailed:
		native, err := c.compileNative(ctx, src, ccfg)
		if err != nil {
			return artifact.Artifact{}, err
		}
		native.Target = artifact.Jailed
		return native, nil
	default:
		return artifact.Artifact{}, FeatureNotSupported("cpp/" + c.target.String())
	}
}

func (c *CppCompiler) compileNative(ctx context.Context, src io.Reader, cfg CppConfig) (artifact.Artifact, error) {
	args := append([]string{"code.cpp", "-o", "executable"}, cfg.toArgs()...)
	dir, err := runToolchain(ctx, "cpp", src, "code.cpp", nativeCxxCompiler, args)
	if err != nil {
		return artifact.Artifact{}, err
	}
	return artifactFromExecutable(artifact.Native, dir, "executable", &sidedata.Native{}), nil
}

func (c *CppCompiler) compileWASI(ctx context.Context, src io.Reader, cfg CppConfig) (artifact.Artifact, error) {
	sysroot := os.Getenv("WASI_SYSROOT")
	if sysroot == "" {
		return artifact.Artifact{}, FeatureNotSupported("cpp/wasi: WASI_SYSROOT not set")
	}

	args := append([]string{
		"code.cpp",
		"--target=wasm32-wasi",
		"--sysroot=" + sysroot,
		"-o", "executable.wasm",
	}, cfg.toArgs()...)
	dir, err := runToolchain(ctx, "cpp", src, "code.cpp", nativeCxxCompiler, args)
	if err != nil {
		return artifact.Artifact{}, err
	}
	return artifactFromExecutable(artifact.WASI, dir, "executable.wasm", &sidedata.WASI{}), nil
}

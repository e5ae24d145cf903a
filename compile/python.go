package compile

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/olix3001/exers-go/artifact"
	"github.com/olix3001/exers-go/internal/scratchdir"
	"github.com/olix3001/exers-go/sidedata"
)

// PythonConfig configures the Python adapter.
type PythonConfig struct {
	// UseCython transpiles the source to C++ with cython and delegates to
	// the C++ adapter, the Go analogue of the original crate's "cython"
	// Cargo feature (kept as a plain bool since Go has no conditional
	// compilation features).
	UseCython bool
	// CppConfig is only consulted when UseCython is true.
	CppConfig CppConfig
}

// DefaultPythonConfig returns PythonConfig{UseCython: false}.
func DefaultPythonConfig() PythonConfig {
	return PythonConfig{CppConfig: DefaultCppConfig()}
}

// CythonPythonConfig returns a PythonConfig with cython transpilation
// enabled, the Go analogue of PythonCompilerConfig::cython_default().
func CythonPythonConfig() PythonConfig {
	return PythonConfig{UseCython: true, CppConfig: DefaultCppConfig()}
}

// PythonCompiler does not compile by default: it copies the source to
// code.py and records "python3" as the interpreter. Under UseCython it
// transpiles to C++ first and delegates to CppCompiler.
type PythonCompiler struct {
	target artifact.Target
}

// NewPythonCompiler returns a Python adapter bound to target. Callers
// normally go through compile.New(compile.Python, target) instead.
func NewPythonCompiler(target artifact.Target) *PythonCompiler {
	return &PythonCompiler{target: target}
}

// Target implements Compiler.Target.
func (c *PythonCompiler) Target() artifact.Target { return c.target }

// DefaultConfig implements Compiler.DefaultConfig.
func (c *PythonCompiler) DefaultConfig() any { return DefaultPythonConfig() }

// Compile implements Compiler.Compile.
func (c *PythonCompiler) Compile(ctx context.Context, src io.Reader, cfg any) (artifact.Artifact, error) {
	pcfg, _ := cfg.(PythonConfig)
	if cfg == nil {
		pcfg = DefaultPythonConfig()
	}

	switch c.target {
	case artifact.Native:
		return c.compileNative(ctx, src, pcfg)
	case artifact.Jailed:
		native, err := c.compileNative(ctx, src, pcfg)
		if err != nil {
			return artifact.Artifact{}, err
		}
		native.Target = artifact.Jailed
		return native, nil
	default:
		return artifact.Artifact{}, FeatureNotSupported("python/" + c.target.String())
	}
}

func (c *PythonCompiler) compileNative(ctx context.Context, src io.Reader, cfg PythonConfig) (artifact.Artifact, error) {
	if cfg.UseCython {
		return c.compileCython(ctx, src, cfg.CppConfig)
	}

	dir, err := scratchdir.New("exers-python")
	if err != nil {
		return artifact.Artifact{}, IOError(err)
	}

	codePath := filepath.Join(dir.Path(), "code.py")
	f, err := os.Create(codePath)
	if err != nil {
		_ = dir.Release()
		return artifact.Artifact{}, IOError(err)
	}
	if _, err = io.Copy(f, src); err != nil {
		f.Close()
		_ = dir.Release()
		return artifact.Artifact{}, IOError(err)
	}
	if err = f.Close(); err != nil {
		_ = dir.Release()
		return artifact.Artifact{}, IOError(err)
	}

	if err = checkProgramInstalled("python3"); err != nil {
		_ = dir.Release()
		return artifact.Artifact{}, err
	}

	return artifactFromExecutable(artifact.Native, dir, "code.py", &sidedata.Native{Program: "python3"}), nil
}

func (c *PythonCompiler) compileCython(ctx context.Context, src io.Reader, cppCfg CppConfig) (artifact.Artifact, error) {
	dir, err := runToolchain(ctx, "python", src, "code.py", "cython",
		[]string{"code.py", "-3", "--cplus", "-o", "code.cpp"})
	if err != nil {
		return artifact.Artifact{}, err
	}
	defer dir.Release()

	cppSource, err := os.Open(filepath.Join(dir.Path(), "code.cpp"))
	if err != nil {
		return artifact.Artifact{}, IOError(err)
	}
	defer cppSource.Close()

	return NewCppCompiler(artifact.Native).Compile(ctx, cppSource, cppCfg)
}

package compile

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/olix3001/exers-go/artifact"
	"github.com/olix3001/exers-go/internal/scratchdir"
	"github.com/olix3001/exers-go/sidedata"
)

// JavaScriptCompiler copies source to code.js for native execution under
// node, or delegates to the external javy tool to produce a WASI module.
//
// console.log output from the javy-compiled WASI module is routed to
// stderr rather than stdout — a limitation of the bundled tool, left as
// an explicit implementation choice per spec §9(b) rather than worked
// around here.
type JavaScriptCompiler struct {
	target artifact.Target
}

// NewJavaScriptCompiler returns a JavaScript adapter bound to target.
// Callers normally go through compile.New(compile.JavaScript, target)
// instead.
func NewJavaScriptCompiler(target artifact.Target) *JavaScriptCompiler {
	return &JavaScriptCompiler{target: target}
}

// Target implements Compiler.Target.
func (c *JavaScriptCompiler) Target() artifact.Target { return c.target }

// DefaultConfig implements Compiler.DefaultConfig. The JavaScript adapter
// takes no configuration.
func (c *JavaScriptCompiler) DefaultConfig() any { return struct{}{} }

// Compile implements Compiler.Compile.
func (c *JavaScriptCompiler) Compile(ctx context.Context, src io.Reader, _ any) (artifact.Artifact, error) {
	switch c.target {
	case artifact.Native:
		return c.compileNative(ctx, src)
	case artifact.WASI:
		return c.compileWASI(ctx, src)
	case artifact.Jailed:
		native, err := c.compileNative(ctx, src)
		if err != nil {
			return artifact.Artifact{}, err
		}
		native.Target = artifact.Jailed
		return native, nil
	default:
		return artifact.Artifact{}, FeatureNotSupported("javascript/" + c.target.String())
	}
}

func (c *JavaScriptCompiler) compileNative(ctx context.Context, src io.Reader) (artifact.Artifact, error) {
	dir, err := scratchdir.New("exers-js")
	if err != nil {
		return artifact.Artifact{}, IOError(err)
	}

	codePath := filepath.Join(dir.Path(), "code.js")
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

	if err = checkProgramInstalled("node"); err != nil {
		_ = dir.Release()
		return artifact.Artifact{}, err
	}

	return artifactFromExecutable(artifact.Native, dir, "code.js", &sidedata.Native{Program: "node"}), nil
}

func (c *JavaScriptCompiler) compileWASI(ctx context.Context, src io.Reader) (artifact.Artifact, error) {
	javyDir := os.Getenv("JAVY_PATH")
	if javyDir == "" {
		return artifact.Artifact{}, IOError(errJavyPathUnset)
	}

	dir, err := scratchdir.New("exers-js")
	if err != nil {
		return artifact.Artifact{}, IOError(err)
	}

	codePath := filepath.Join(dir.Path(), "code.js")
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

	javyBin := filepath.Join(javyDir, "javy")
	wasmPath := filepath.Join(dir.Path(), "code.wasm")
	if err = invokeJavy(ctx, javyBin, codePath, wasmPath); err != nil {
		_ = dir.Release()
		return artifact.Artifact{}, err
	}

	return artifactFromExecutable(artifact.WASI, dir, "code.wasm", &sidedata.WASI{}), nil
}

func invokeJavy(ctx context.Context, javyBin, codePath, wasmPath string) error {
	if err := checkProgramInstalled(javyBin); err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, javyBin, "compile", "-o", wasmPath, codePath)
	var stderr bytes.Buffer
	cmd.Stdout = io.Discard
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return CompileFailed(stderr.String())
		}
		return IOError(err)
	}
	return nil
}

var errJavyPathUnset = javyPathUnsetError{}

type javyPathUnsetError struct{}

func (javyPathUnsetError) Error() string {
	return "JAVY_PATH environment variable not set"
}

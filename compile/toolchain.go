package compile

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/olix3001/exers-go/artifact"
	"github.com/olix3001/exers-go/internal/execlog"
	"github.com/olix3001/exers-go/internal/scratchdir"
)

// toolchainInvocation describes a single external-toolchain compile step:
// write src to sourceName inside a fresh scratch directory, then run
// program with args (source and output paths already included by the
// caller), with cwd set to the scratch directory, stdin suppressed,
// stdout discarded and stderr captured.
//
// This is the common shape shared by the Rust and C++ adapters (spec
// §4.1's "common compiler contract"): one temp dir with a recognizable
// prefix, the source written with the language's canonical extension,
// the toolchain invoked with cwd set to that directory.
func runToolchain(ctx context.Context, language string, src io.Reader, sourceName, program string, args []string) (dir *scratchdir.Handle, err error) {
	dir, err = scratchdir.New("exers-" + language)
	if err != nil {
		return nil, IOError(err)
	}
	// Capture the handle: every failure path returns a nil dir, so the
	// named result cannot be used for the release.
	scratch := dir
	defer func() {
		if err != nil {
			_ = scratch.Release()
		}
	}()

	sourcePath := filepath.Join(dir.Path(), sourceName)
	sourceFile, err := os.Create(sourcePath)
	if err != nil {
		return nil, IOError(err)
	}
	if _, err = io.Copy(sourceFile, src); err != nil {
		sourceFile.Close()
		return nil, IOError(err)
	}
	if err = sourceFile.Close(); err != nil {
		return nil, IOError(err)
	}

	if err = checkProgramInstalled(program); err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, program, args...)
	cmd.Dir = dir.Path()
	cmd.Stdin = nil
	cmd.Stdout = io.Discard
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	log := execlog.ForCompile(ctx, language, "")
	log.Debugf("invoking %s with args %v in %s", program, args, dir.Path())

	if runErr := cmd.Run(); runErr != nil {
		var exitErr *exec.ExitError
		if ok := asExitError(runErr, &exitErr); ok {
			err = CompileFailed(stderr.String())
			return nil, err
		}
		err = IOError(runErr)
		return nil, err
	}

	return dir, nil
}

func asExitError(err error, target **exec.ExitError) bool {
	ee, ok := err.(*exec.ExitError)
	if ok {
		*target = ee
	}
	return ok
}

// artifactFromExecutable is a small convenience wrapping artifact.New for
// the common case of a single produced executable inside dir.
func artifactFromExecutable(target artifact.Target, dir *scratchdir.Handle, executableName string, side any) artifact.Artifact {
	path := filepath.Join(dir.Path(), executableName)
	return artifact.New(target, dir, path, side)
}

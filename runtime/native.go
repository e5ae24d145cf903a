package runtime

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/olix3001/exers-go/artifact"
	"github.com/olix3001/exers-go/internal/execlog"
	"github.com/olix3001/exers-go/sidedata"
	"github.com/olix3001/exers-go/stdin"
)

// NativeConfig configures the native runtime.
type NativeConfig struct {
	// Stdin selects where the guest's standard input comes from. The
	// zero value (stdin.Ignore()) connects it to a null device.
	Stdin stdin.Spec
}

// DefaultNativeConfig returns NativeConfig{Stdin: stdin.Ignore()}.
func DefaultNativeConfig() NativeConfig {
	return NativeConfig{Stdin: stdin.Ignore()}
}

// Native spawns a plain OS subprocess: `<program> <executable>` if the
// artifact's side data names an interpreter, otherwise `<executable>`
// directly.
type Native struct{}

// NewNative returns the native runtime backend.
func NewNative() *Native { return &Native{} }

// Target implements Backend.Target.
func (*Native) Target() artifact.Target { return artifact.Native }

// DefaultConfig implements Backend.DefaultConfig.
func (*Native) DefaultConfig() any { return DefaultNativeConfig() }

// Run implements Backend.Run.
func (r *Native) Run(ctx context.Context, art artifact.Artifact, cfg any) (Result, error) {
	ncfg, _ := cfg.(NativeConfig)
	if cfg == nil {
		ncfg = DefaultNativeConfig()
	}
	return runSubprocess(ctx, "native", artifact.Native, art, ncfg.Stdin, nil)
}

// runSubprocess builds and runs the `<program>? <executable>` command
// line (optionally rewritten by wrapArgv) shared by the native and jailed
// backends, applying the
// stdin policy and capturing stdout/stderr to memory.
//
// Native/jailed deliberately do NOT append a trailing newline after
// string stdin, unlike the WASI runtime which does (spec §9, open
// question (a)).
func runSubprocess(ctx context.Context, backend string, want artifact.Target, art artifact.Artifact, in stdin.Spec, wrapArgv func(argv []string) []string) (Result, error) {
	if err := artifact.Check(art, want); err != nil {
		return Result{}, NewIOError(err)
	}

	var argv []string
	if native, ok := art.SideData.(*sidedata.Native); ok && native != nil && native.Program != "" {
		argv = []string{native.Program, art.ExecutablePath}
	} else {
		argv = []string{art.ExecutablePath}
	}
	if wrapArgv != nil {
		argv = wrapArgv(argv)
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stdinPipe io.WriteCloser
	if in.IsIgnore() {
		cmd.Stdin = nil
	} else {
		pr, pw := io.Pipe()
		cmd.Stdin = pr
		stdinPipe = pw
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	log := execlog.ForRun(ctx, backend)
	log.Debugf("spawning %v", argv)

	if err := cmd.Start(); err != nil {
		return Result{}, NewIOError(err)
	}
	start := time.Now()

	var g errgroup.Group
	if stdinPipe != nil {
		g.Go(func() error {
			defer stdinPipe.Close()
			if s, ok := in.IsString(); ok {
				_, err := io.WriteString(stdinPipe, s)
				return err
			}
			if path, ok := in.IsFile(); ok {
				f, err := os.Open(path)
				if err != nil {
					return err
				}
				defer f.Close()
				_, err = io.Copy(stdinPipe, f)
				return err
			}
			return nil
		})
	}

	waitErr := cmd.Wait()
	duration := time.Since(start)
	if err := g.Wait(); err != nil && waitErr == nil {
		return Result{}, NewIOError(fmt.Errorf("writing stdin: %w", err))
	}

	exitCode := 0
	if cmd.ProcessState != nil {
		if code := cmd.ProcessState.ExitCode(); code >= 0 {
			exitCode = code
		}
	}

	if waitErr != nil {
		if _, ok := waitErr.(*exec.ExitError); !ok {
			return Result{}, NewIOError(waitErr)
		}
	}

	return Result{
		Stdout:   nonEmptyString(stdoutBuf.String()),
		Stderr:   nonEmptyString(stderrBuf.String()),
		Duration: duration,
		ExitCode: exitCode,
	}, nil
}

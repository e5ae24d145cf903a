// Package wasi implements the sandboxed WASI runtime backend on top of the
// real github.com/tetratelabs/wazero embedded bytecode VM: metered gas,
// a linear-memory page ceiling, a single optional preopened sandbox
// directory, and in-memory standard streams (spec §4.2).
package wasi

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"time"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/imports/wasi_snapshot_preview1"
	"github.com/tetratelabs/wazero/sys"

	"github.com/olix3001/exers-go/artifact"
	"github.com/olix3001/exers-go/internal/execlog"
	"github.com/olix3001/exers-go/runtime"
	"github.com/olix3001/exers-go/sidedata"
	"github.com/olix3001/exers-go/stdin"
)

// programName is the argv[0] every WASI guest sees (spec §4.2).
const programName = "wasi_program"

// Config configures the WASI runtime.
type Config struct {
	// Gas is the per-module gas budget; zero disables metering. It is
	// charged per guest function call through CostFunction, not per
	// instruction: a loop that makes no calls is not metered.
	Gas uint64
	// MemoryLimitPages caps linear-memory pages (64 KiB each); zero
	// disables the cap.
	MemoryLimitPages uint32
	// CostFunction assigns a gas cost per call, used iff Gas > 0.
	// Defaults to UniformCost.
	CostFunction CostFunction
	// Stdin selects where the guest's standard input comes from.
	Stdin stdin.Spec
}

// DefaultConfig returns the zero-limits configuration: no gas, no memory
// cap, stdin ignored.
func DefaultConfig() Config {
	return Config{Stdin: stdin.Ignore()}
}

// Runtime runs WASI artifacts via an embedded wazero VM instance per call.
type Runtime struct{}

// New returns the WASI runtime backend.
func New() *Runtime { return &Runtime{} }

// Target implements runtime.Backend.Target.
func (*Runtime) Target() artifact.Target { return artifact.WASI }

// DefaultConfig implements runtime.Backend.DefaultConfig.
func (*Runtime) DefaultConfig() any { return DefaultConfig() }

// Run implements runtime.Backend.Run. Construction order follows spec
// §4.2: engine (with optional metering) → tunables → store → module load
// → pipes prepared and stdin written → WASI environment built (with
// optional sandbox FS) → instance linked → _start located → timer starts
// → _start called → timer stops → environment cleaned → streams drained.
func (r *Runtime) Run(ctx context.Context, art artifact.Artifact, cfg any) (runtime.Result, error) {
	if err := artifact.Check(art, artifact.WASI); err != nil {
		return runtime.Result{}, newError(KindHostIO, err)
	}

	wcfg, _ := cfg.(Config)
	if cfg == nil {
		wcfg = DefaultConfig()
	}

	side, _ := art.SideData.(*sidedata.WASI)
	if side == nil {
		side = &sidedata.WASI{}
	}

	log := execlog.ForRun(ctx, "wasi")

	runConfig := wazero.NewRuntimeConfig().WithCloseOnContextDone(true)
	if wcfg.Gas > 0 {
		// FunctionListenerFactory is interpreter-only.
		runConfig = wazero.NewRuntimeConfigInterpreter().WithCloseOnContextDone(true)
	}
	if wcfg.MemoryLimitPages > 0 {
		runConfig = runConfig.WithMemoryLimitPages(wcfg.MemoryLimitPages)
	}

	runCtx := ctx
	cancelGas := func() {}
	if wcfg.Gas > 0 {
		runCtx, cancelGas = withGasMeter(ctx, wcfg.Gas, wcfg.CostFunction)
	}
	defer cancelGas()

	wzRuntime := wazero.NewRuntimeWithConfig(runCtx, runConfig)
	defer wzRuntime.Close(runCtx)

	if _, err := wasi_snapshot_preview1.Instantiate(runCtx, wzRuntime); err != nil {
		return runtime.Result{}, newError(KindWASIInit, err)
	}

	moduleBytes, err := os.ReadFile(art.ExecutablePath)
	if err != nil {
		return runtime.Result{}, newError(KindHostIO, err)
	}
	compiled, err := wzRuntime.CompileModule(runCtx, moduleBytes)
	if err != nil {
		return runtime.Result{}, newError(KindBytecodeCompile, err)
	}

	var stdoutBuf, stderrBuf bytes.Buffer
	stdinReader, err := buildStdin(wcfg.Stdin)
	if err != nil {
		return runtime.Result{}, newError(KindHostIO, err)
	}

	// WithStartFunctions() with no arguments disables wazero's default of
	// auto-invoking _start during InstantiateModule: _start is located and
	// timed explicitly below, and must run exactly once.
	moduleConfig := wazero.NewModuleConfig().
		WithStartFunctions().
		WithStdin(stdinReader).
		WithStdout(&stdoutBuf).
		WithStderr(&stderrBuf).
		WithArgs(append([]string{programName}, side.ExtraArgs...)...)

	if side.SandboxDir != "" {
		moduleConfig = moduleConfig.WithFSConfig(
			wazero.NewFSConfig().WithDirMount(side.SandboxDir, "/sandbox"),
		)
	}

	log.Debugf("instantiating wasi module, gas=%d memory_limit_pages=%d sandbox=%q",
		wcfg.Gas, wcfg.MemoryLimitPages, side.SandboxDir)

	mod, err := wzRuntime.InstantiateModule(runCtx, compiled, moduleConfig)
	if err != nil {
		return runtime.Result{}, classifyTrap(runCtx, KindInstantiation, err)
	}
	defer mod.Close(runCtx)

	start := mod.ExportedFunction("_start")
	if start == nil {
		return runtime.Result{}, newError(KindExportLookup, ErrNoStart)
	}

	startTime := time.Now()
	_, callErr := start.Call(runCtx)
	duration := time.Since(startTime)

	exitCode := 0
	if callErr != nil {
		var exitErr *sys.ExitError
		if errors.As(callErr, &exitErr) {
			exitCode = int(exitErr.ExitCode())
		} else {
			return runtime.Result{}, classifyTrap(runCtx, KindTrap, callErr)
		}
	}

	return runtime.Result{
		Stdout:   nonEmptyString(stdoutBuf.String()),
		Stderr:   nonEmptyString(stderrBuf.String()),
		Duration: duration,
		ExitCode: exitCode,
	}, nil
}

// classifyTrap reports ErrGasExhausted instead of the raw wazero error
// when the run's context was canceled by the gas meter.
func classifyTrap(ctx context.Context, fallback ErrorKind, err error) error {
	if cause := context.Cause(ctx); cause != nil && errors.Is(cause, ErrGasExhausted) {
		return newError(KindTrap, ErrGasExhausted)
	}
	return newError(fallback, err)
}

// buildStdin realizes a stdin.Spec as an io.Reader. The string variant
// appends a trailing newline (spec §4.2); the file variant streams the
// referenced file's contents; Ignore yields an empty reader.
func buildStdin(spec stdin.Spec) (io.Reader, error) {
	if s, ok := spec.IsString(); ok {
		return strings.NewReader(s + "\n"), nil
	}
	if path, ok := spec.IsFile(); ok {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(data), nil
	}
	return strings.NewReader(""), nil
}

func nonEmptyString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

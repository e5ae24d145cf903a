// Command exers is a thin CLI front-end over the compiler/runtime
// lattice: compile one source file with the chosen language/target pair
// and run the result, printing its captured output. It is explicitly a
// convenience wrapper, not part of the library's core surface.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/docker/go-units"
	"github.com/spf13/pflag"

	"github.com/olix3001/exers-go/artifact"
	"github.com/olix3001/exers-go/compile"
	"github.com/olix3001/exers-go/internal/execlog"
	"github.com/olix3001/exers-go/runtime"
	"github.com/olix3001/exers-go/runtime/wasi"
	"github.com/olix3001/exers-go/stdin"
)

func main() {
	os.Exit(doMain(os.Args[1:], os.Stdout, os.Stderr))
}

// doMain is separated from main so it can be exercised without touching
// the process's real argv/streams.
func doMain(args []string, stdout, stderr io.Writer) int {
	flags := pflag.NewFlagSet("exers", pflag.ContinueOnError)
	flags.SetOutput(stderr)

	lang := flags.StringP("lang", "l", "rust", "source language: rust, cpp, python, javascript")
	target := flags.StringP("target", "t", "native", "runtime target: native, wasi, jailed")
	in := flags.StringP("stdin", "i", "", "literal string piped to the guest's stdin")
	gas := flags.Uint64("gas", 0, "WASI gas budget (0 disables metering)")
	memLimit := flags.String("memory-limit", "", `WASI linear-memory cap, e.g. "256MiB" (empty disables)`)
	help := flags.BoolP("help", "h", false, "print usage")

	if err := flags.Parse(args); err != nil {
		return 2
	}
	if *help || flags.NArg() == 0 {
		fmt.Fprintln(stderr, "usage: exers [flags] <source-file>")
		flags.PrintDefaults()
		return 0
	}

	language, err := parseLanguage(*lang)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	tgt, err := parseTarget(*target)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	memPages, err := parseMemoryLimit(*memLimit)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	src, err := os.Open(flags.Arg(0))
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer src.Close()

	ctx := context.Background()
	log := execlog.ForCompile(ctx, language.String(), tgt.String())

	compiler, err := compile.New(language, tgt)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	log.Info("compiling")
	art, err := compiler.Compile(ctx, src, nil)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	defer art.Close()

	var stdinSpec stdin.Spec
	if *in != "" {
		stdinSpec = stdin.String(*in)
	} else {
		stdinSpec = stdin.Ignore()
	}

	result, err := run(ctx, tgt, art, stdinSpec, *gas, memPages)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}

	if result.Stdout != nil {
		fmt.Fprint(stdout, *result.Stdout)
	}
	if result.Stderr != nil {
		fmt.Fprint(stderr, *result.Stderr)
	}
	fmt.Fprintf(stderr, "exit code: %d, took: %s\n", result.ExitCode, result.Duration)
	return result.ExitCode
}

func run(ctx context.Context, tgt artifact.Target, art artifact.Artifact, in stdin.Spec, gas uint64, memPages uint32) (runtime.Result, error) {
	switch tgt {
	case artifact.Native:
		return runtime.NewNative().Run(ctx, art, runtime.NativeConfig{Stdin: in})
	case artifact.Jailed:
		return runtime.NewJailed().Run(ctx, art, runtime.JailedConfig{Native: runtime.NativeConfig{Stdin: in}})
	case artifact.WASI:
		return wasi.New().Run(ctx, art, wasi.Config{Gas: gas, MemoryLimitPages: memPages, Stdin: in})
	default:
		return runtime.Result{}, fmt.Errorf("exers: unknown target %s", tgt)
	}
}

func parseLanguage(s string) (compile.Language, error) {
	switch s {
	case "rust":
		return compile.Rust, nil
	case "cpp":
		return compile.Cpp, nil
	case "python":
		return compile.Python, nil
	case "javascript", "js":
		return compile.JavaScript, nil
	default:
		return 0, fmt.Errorf("exers: unknown language %q", s)
	}
}

// wasmPageSize is the WASI linear-memory page size, fixed at 64 KiB by
// the WebAssembly spec.
const wasmPageSize = 64 * 1024

// parseMemoryLimit converts a human-readable size (e.g. "256MiB") to a
// WASI page count, rounding up so the guest gets at least what was asked
// for. An empty string disables the cap.
func parseMemoryLimit(s string) (uint32, error) {
	if s == "" {
		return 0, nil
	}
	nBytes, err := units.RAMInBytes(s)
	if err != nil {
		return 0, fmt.Errorf("exers: invalid --memory-limit %q: %w", s, err)
	}
	pages := (nBytes + wasmPageSize - 1) / wasmPageSize
	return uint32(pages), nil
}

func parseTarget(s string) (artifact.Target, error) {
	switch s {
	case "native":
		return artifact.Native, nil
	case "wasi":
		return artifact.WASI, nil
	case "jailed":
		return artifact.Jailed, nil
	default:
		return 0, fmt.Errorf("exers: unknown target %q", s)
	}
}

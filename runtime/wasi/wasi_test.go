package wasi_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olix3001/exers-go/artifact"
	"github.com/olix3001/exers-go/internal/scratchdir"
	"github.com/olix3001/exers-go/runtime/wasi"
	"github.com/olix3001/exers-go/sidedata"
)

// noopModule is a hand-assembled, minimal valid WebAssembly module
// exporting a `_start` function whose body is empty.
var noopModule = []byte{
	0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00, // magic, version
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00, // type section: func() -> ()
	0x03, 0x02, 0x01, 0x00, // function section: fn 0 uses type 0
	0x07, 0x0A, 0x01, 0x06, '_', 's', 't', 'a', 'r', 't', 0x00, 0x00, // export "_start"
	0x0A, 0x04, 0x01, 0x02, 0x00, 0x0B, // code section: empty body
}

// noExportModule is the same shape with no export section at all.
var noExportModule = []byte{
	0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00,
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00,
	0x03, 0x02, 0x01, 0x00,
	0x0A, 0x04, 0x01, 0x02, 0x00, 0x0B,
}

// trappingModule exports `_start`, whose body is a single `unreachable`
// instruction (opcode 0x00), used to confirm instantiation itself
// succeeds and the trap surfaces only from the explicit _start call —
// regression coverage for wazero's default auto-start being disabled.
var trappingModule = []byte{
	0x00, 0x61, 0x73, 0x6D, 0x01, 0x00, 0x00, 0x00, // magic, version
	0x01, 0x04, 0x01, 0x60, 0x00, 0x00, // type section: func() -> ()
	0x03, 0x02, 0x01, 0x00, // function section: fn 0 uses type 0
	0x07, 0x0A, 0x01, 0x06, '_', 's', 't', 'a', 'r', 't', 0x00, 0x00, // export "_start"
	0x0A, 0x05, 0x01, 0x03, 0x00, 0x00, 0x0B, // code section: body = unreachable, end
}

func moduleArtifact(t *testing.T, bytecode []byte) artifact.Artifact {
	t.Helper()
	dir, err := scratchdir.New("exers-wasi-test")
	require.NoError(t, err)

	path := filepath.Join(dir.Path(), "module.wasm")
	require.NoError(t, os.WriteFile(path, bytecode, 0o644))

	return artifact.New(artifact.WASI, dir, path, &sidedata.WASI{})
}

func TestWASI_RunNoopModule(t *testing.T) {
	art := moduleArtifact(t, noopModule)
	defer art.Close()

	rt := wasi.New()
	res, err := rt.Run(context.Background(), art, nil)
	require.NoError(t, err)
	require.Equal(t, 0, res.ExitCode)
	require.Nil(t, res.Stdout)
	require.Nil(t, res.Stderr)
}

func TestWASI_MissingStartExport(t *testing.T) {
	art := moduleArtifact(t, noExportModule)
	defer art.Close()

	rt := wasi.New()
	_, err := rt.Run(context.Background(), art, nil)
	require.Error(t, err)

	var werr *wasi.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wasi.KindExportLookup, werr.Kind)
	require.ErrorIs(t, err, wasi.ErrNoStart)
}

func TestWASI_TrapDuringStartIsClassifiedAsTrapNotInstantiation(t *testing.T) {
	art := moduleArtifact(t, trappingModule)
	defer art.Close()

	rt := wasi.New()
	_, err := rt.Run(context.Background(), art, nil)
	require.Error(t, err)

	var werr *wasi.Error
	require.ErrorAs(t, err, &werr)
	require.Equal(t, wasi.KindTrap, werr.Kind)
}

func TestWASI_RejectsWrongTarget(t *testing.T) {
	dir, err := scratchdir.New("exers-wasi-test")
	require.NoError(t, err)
	art := artifact.New(artifact.Native, dir, "/bin/true", nil)
	defer art.Close()

	rt := wasi.New()
	_, err = rt.Run(context.Background(), art, nil)
	require.Error(t, err)
}

func TestDefaultConfig_IgnoresStdin(t *testing.T) {
	cfg := wasi.DefaultConfig()
	require.True(t, cfg.Stdin.IsIgnore())
	require.Zero(t, cfg.Gas)
	require.Zero(t, cfg.MemoryLimitPages)
}

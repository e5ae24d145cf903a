package runtime_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olix3001/exers-go/artifact"
	"github.com/olix3001/exers-go/internal/scratchdir"
	"github.com/olix3001/exers-go/runtime"
	"github.com/olix3001/exers-go/sidedata"
	"github.com/olix3001/exers-go/stdin"
)

func echoScript(t *testing.T) artifact.Artifact {
	t.Helper()
	dir, err := scratchdir.New("exers-native-test")
	require.NoError(t, err)

	path := filepath.Join(dir.Path(), "echo.sh")
	script := "#!/bin/sh\ncat\n"
	require.NoError(t, os.WriteFile(path, []byte(script), 0o755))

	return artifact.New(artifact.Native, dir, path, &sidedata.Native{Program: "/bin/sh"})
}

func TestNative_RunEchoesStdin(t *testing.T) {
	art := echoScript(t)
	defer art.Close()

	rt := runtime.NewNative()
	res, err := rt.Run(context.Background(), art, runtime.NativeConfig{Stdin: stdin.String("hello")})
	require.NoError(t, err)
	require.NotNil(t, res.Stdout)
	require.Equal(t, "hello", *res.Stdout)
	require.Nil(t, res.Stderr)
	require.Equal(t, 0, res.ExitCode)
}

func TestNative_RunIgnoresStdinByDefault(t *testing.T) {
	art := echoScript(t)
	defer art.Close()

	rt := runtime.NewNative()
	res, err := rt.Run(context.Background(), art, nil)
	require.NoError(t, err)
	require.Nil(t, res.Stdout)
}

func TestNative_RejectsWrongTarget(t *testing.T) {
	dir, err := scratchdir.New("exers-native-test")
	require.NoError(t, err)
	art := artifact.New(artifact.WASI, dir, "/bin/true", &sidedata.WASI{})
	defer art.Close()

	rt := runtime.NewNative()
	_, err = rt.Run(context.Background(), art, nil)
	require.Error(t, err)

	var ioErr *runtime.IOError
	require.ErrorAs(t, err, &ioErr)

	var wrongTarget *artifact.ErrWrongTarget
	require.ErrorAs(t, err, &wrongTarget)
}

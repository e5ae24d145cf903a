package compile_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olix3001/exers-go/artifact"
	"github.com/olix3001/exers-go/compile"
)

func TestOptLevel_Render(t *testing.T) {
	cases := []struct {
		level compile.OptLevel
		want  string
	}{
		{compile.OptNone, "0"},
		{compile.OptSpeed, "fast"},
		{compile.OptSize, "z"},
		{compile.OptO1, "1"},
		{compile.OptO2, "2"},
		{compile.OptO3, "3"},
		{compile.OptCustom("native"), "native"},
	}
	for _, tc := range cases {
		require.Equal(t, tc.want, tc.level.Render())
	}
	require.True(t, compile.OptNone.IsNone())
	require.False(t, compile.OptO1.IsNone())
}

func TestLattice_SupportedPairs(t *testing.T) {
	require.True(t, compile.Supported(compile.Rust, artifact.Native))
	require.True(t, compile.Supported(compile.Rust, artifact.WASI))
	require.True(t, compile.Supported(compile.Rust, artifact.Jailed))
	require.True(t, compile.Supported(compile.Cpp, artifact.WASI))
	require.True(t, compile.Supported(compile.Python, artifact.Native))
	require.True(t, compile.Supported(compile.JavaScript, artifact.WASI))

	// Python never compiles to WASI; no adapter emits wasm32-wasi for it.
	require.False(t, compile.Supported(compile.Python, artifact.WASI))
}

func TestNew_UnsupportedPairFailsAtBuildTime(t *testing.T) {
	_, err := compile.New(compile.Python, artifact.WASI)
	require.Error(t, err)

	var cerr *compile.Error
	require.ErrorAs(t, err, &cerr)
	require.Equal(t, compile.KindFeatureNotSupported, cerr.Kind)
}

func TestNew_SupportedPairConstructs(t *testing.T) {
	c, err := compile.New(compile.Rust, artifact.Native)
	require.NoError(t, err)
	require.Equal(t, artifact.Native, c.Target())
	require.Equal(t, compile.DefaultRustConfig(), c.DefaultConfig())
}

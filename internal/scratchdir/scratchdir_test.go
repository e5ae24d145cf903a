package scratchdir_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olix3001/exers-go/internal/scratchdir"
)

func TestHandle_SurvivesUntilLastClone(t *testing.T) {
	h, err := scratchdir.New("exers-test")
	require.NoError(t, err)
	require.True(t, h.Exists())

	clone := h.Clone()
	require.True(t, clone.Exists())

	require.NoError(t, h.Release())
	require.True(t, clone.Exists(), "directory must survive while a clone is live")

	require.NoError(t, clone.Release())
	require.False(t, clone.Exists(), "directory must be removed once the last clone releases")
}

func TestHandle_ReleaseIsIdempotent(t *testing.T) {
	h, err := scratchdir.New("exers-test")
	require.NoError(t, err)

	require.NoError(t, h.Release())
	require.False(t, h.Exists())
	require.NoError(t, h.Release())
}

func TestHandle_DoubleReleaseOnCloneDoesNotUnderCount(t *testing.T) {
	h, err := scratchdir.New("exers-test")
	require.NoError(t, err)
	clone := h.Clone()

	require.NoError(t, h.Release())
	require.NoError(t, h.Release()) // idempotent: must not decrement twice
	require.True(t, clone.Exists())

	require.NoError(t, clone.Release())
	require.False(t, clone.Exists())
}

package preprocess_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olix3001/exers-go/preprocess"
)

func replacer(from, to string) preprocess.Func {
	return func(code string) (string, error) {
		return strings.ReplaceAll(code, from, to), nil
	}
}

func TestBundle_EmptyIsIdentity(t *testing.T) {
	b := preprocess.NewBundle()
	out, err := b.Preprocess("hello")
	require.NoError(t, err)
	require.Equal(t, "hello", out)
}

func TestBundle_ComposesLeftToRight(t *testing.T) {
	b := preprocess.NewBundle(replacer("a", "b"), replacer("b", "c"))
	out, err := b.Preprocess("a")
	require.NoError(t, err)
	require.Equal(t, "c", out)
}

func TestBundle_ShortCircuitsOnError(t *testing.T) {
	calledSecond := false
	b := preprocess.NewBundle(
		preprocess.Func(func(string) (string, error) {
			return "", preprocess.ParserError("bad token")
		}),
		preprocess.Func(func(code string) (string, error) {
			calledSecond = true
			return code, nil
		}),
	)
	_, err := b.Preprocess("x")
	require.Error(t, err)
	require.False(t, calledSecond)

	var perr *preprocess.Error
	require.ErrorAs(t, err, &perr)
	require.Equal(t, preprocess.KindParser, perr.Kind)
}

func TestBundle_AddChains(t *testing.T) {
	b := preprocess.NewBundle().Add(replacer("x", "y")).Add(replacer("y", "z"))
	out, err := b.Preprocess("x")
	require.NoError(t, err)
	require.Equal(t, "z", out)
}

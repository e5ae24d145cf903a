package runtime_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/olix3001/exers-go/artifact"
	"github.com/olix3001/exers-go/runtime"
)

func TestJailed_RequiresRoot(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("test process runs as root; ErrRootRequired cannot be observed")
	}

	art := echoScript(t)
	art.Target = artifact.Jailed
	defer art.Close()

	rt := runtime.NewJailed()
	_, err := rt.Run(context.Background(), art, nil)
	require.ErrorIs(t, err, runtime.ErrRootRequired)
}

package runtime

import (
	_ "embed"
	"context"
	"os"
	"path/filepath"

	"github.com/olix3001/exers-go/artifact"
)

//go:embed assets/jail.sh
var jailScript []byte

// JailedConfig configures the jailed runtime. It embeds NativeConfig
// since the jail wraps the same argv the native runtime would build.
type JailedConfig struct {
	Native NativeConfig
}

// DefaultJailedConfig returns JailedConfig{Native: DefaultNativeConfig()}.
func DefaultJailedConfig() JailedConfig {
	return JailedConfig{Native: DefaultNativeConfig()}
}

// Jailed runs a native-compiled artifact under a chroot jail built fresh
// in the artifact's own scratch directory. It requires root and is
// automatically available for every compiler that targets Native, since
// Jailed artifacts are byte-identical to Native ones (spec §3, §4.3.3).
type Jailed struct{}

// NewJailed returns the jailed runtime backend.
func NewJailed() *Jailed { return &Jailed{} }

// Target implements Backend.Target.
func (*Jailed) Target() artifact.Target { return artifact.Jailed }

// DefaultConfig implements Backend.DefaultConfig.
func (*Jailed) DefaultConfig() any { return DefaultJailedConfig() }

// Run implements Backend.Run.
func (r *Jailed) Run(ctx context.Context, art artifact.Artifact, cfg any) (Result, error) {
	if !isRoot() {
		return Result{}, ErrRootRequired
	}

	jcfg, _ := cfg.(JailedConfig)
	if cfg == nil {
		jcfg = DefaultJailedConfig()
	}

	scratchDir := filepath.Dir(art.ExecutablePath)
	jailScriptPath := filepath.Join(scratchDir, "jail.sh")
	if err := os.WriteFile(jailScriptPath, jailScript, 0o755); err != nil {
		return Result{}, NewIOError(err)
	}
	jailRoot := filepath.Join(scratchDir, "jail")

	wrap := func(argv []string) []string {
		return append([]string{"bash", jailScriptPath, jailRoot}, argv...)
	}

	return runSubprocess(ctx, "jailed", artifact.Jailed, art, jcfg.Native.Stdin, wrap)
}

// Package execlog provides the structured logging used across compile and
// run lifecycle events. It is a thin wrapper over github.com/containerd/log
// so every package in this module logs the same way the rest of the
// containerd/moby ecosystem does: leveled, contextual, field-based.
package execlog

import (
	"context"

	"github.com/containerd/log"
)

// Fields is re-exported so callers don't need to import containerd/log
// directly just to build a field set.
type Fields = log.Fields

// ForCompile returns a logger tagged with the language/target pair being
// compiled, pulling any existing fields (execution id, etc.) from ctx.
func ForCompile(ctx context.Context, language, target string) *log.Entry {
	return log.G(ctx).WithFields(log.Fields{
		"component": "exers.compile",
		"language":  language,
		"target":    target,
	})
}

// ForRun returns a logger tagged with the runtime backend being invoked.
func ForRun(ctx context.Context, backend string) *log.Entry {
	return log.G(ctx).WithFields(log.Fields{
		"component": "exers.runtime",
		"backend":   backend,
	})
}

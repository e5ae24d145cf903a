// Package scratchdir implements a reference-counted temporary directory:
// a scoped resource that stays on disk while at least one reference to it
// is held and is removed, exactly once, when the last reference is
// released.
//
// Compiled artifacts clone their scratch directory handle rather than the
// directory itself, so the handle — not the artifact struct — owns the
// deletion decision.
package scratchdir

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/uuid"
)

// shared is the state every clone of a Handle holds a pointer to: the
// directory is deleted when refCount reaches zero.
type shared struct {
	mu       sync.Mutex
	refCount int
	path     string
}

// Handle is a reference to a temporary directory shared by every clone
// derived from the same New call. The zero value is not usable; construct
// one with New.
type Handle struct {
	s *shared
	// released tracks whether THIS Handle value has already given up its
	// reference; it is per-clone, not shared, so each clone's Release is
	// independently idempotent without under- or over-counting refCount.
	released bool
}

// New creates a fresh temporary directory under the OS default temp
// location, named with prefix and a random suffix so concurrent
// compilations never collide.
func New(prefix string) (*Handle, error) {
	dir, err := os.MkdirTemp("", fmt.Sprintf("%s-%s-", prefix, uuid.NewString()))
	if err != nil {
		return nil, fmt.Errorf("scratchdir: create: %w", err)
	}
	return &Handle{s: &shared{refCount: 1, path: dir}}, nil
}

// Path returns the directory's filesystem path. It remains valid for as
// long as any clone of this Handle is live.
func (h *Handle) Path() string {
	return h.s.path
}

// Clone returns a new reference to the same underlying directory, bumping
// the refcount. The directory is only removed once every clone (including
// the original) has been released.
func (h *Handle) Clone() *Handle {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	h.s.refCount++
	return &Handle{s: h.s}
}

// Release drops this reference. When the last reference is released, the
// directory and everything beneath it are removed from disk. Release is
// idempotent: calling it more than once on the same Handle value has no
// effect after the first call.
func (h *Handle) Release() error {
	h.s.mu.Lock()
	defer h.s.mu.Unlock()

	if h.released {
		return nil
	}
	h.released = true

	h.s.refCount--
	if h.s.refCount > 0 {
		return nil
	}

	if err := os.RemoveAll(h.s.path); err != nil {
		return fmt.Errorf("scratchdir: remove %s: %w", h.s.path, err)
	}
	return nil
}

// Exists reports whether the directory is still present on disk. This is
// mainly useful for tests asserting artifact liveness semantics.
func (h *Handle) Exists() bool {
	_, err := os.Stat(h.s.path)
	return err == nil
}

// Package inflight provides a keyed single-flight guard: at most one holder
// per key at a time.
package inflight

import (
	"context"
	"sync"
	"sync/atomic"
)

// Guard tracks which keys have an operation in progress.
type Guard interface {
	// Acquire atomically claims key. It returns false if key is already held.
	// This is the ONLY way to take a key - thread-safe and atomic.
	Acquire(ctx context.Context, key string) bool

	// Release frees key so a later Acquire can claim it. Releasing a key that
	// is not held is a no-op.
	Release(ctx context.Context, key string)

	// Held reports whether key is currently claimed.
	Held(key string) bool

	// Size returns the number of held keys.
	Size() int64
}

type inMemoryGuard struct {
	mu   sync.Mutex
	held map[string]struct{}
	size atomic.Int64
}

// NewInMemoryGuard creates an empty guard.
func NewInMemoryGuard() Guard {
	return &inMemoryGuard{held: make(map[string]struct{})}
}

func (g *inMemoryGuard) Acquire(_ context.Context, key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[key]; busy {
		return false
	}
	g.held[key] = struct{}{}
	g.size.Add(1)
	return true
}

func (g *inMemoryGuard) Release(_ context.Context, key string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, busy := g.held[key]; busy {
		delete(g.held, key)
		g.size.Add(-1)
	}
}

func (g *inMemoryGuard) Held(key string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	_, busy := g.held[key]
	return busy
}

func (g *inMemoryGuard) Size() int64 {
	return g.size.Load()
}

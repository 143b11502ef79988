package usecase

import "sync"

// RunGuard enforces at most one active batch run per mailbox. The pipeline
// provides no cross-run locking of its own, so every trigger path (HTTP,
// scheduler, CLI) must share one guard.
type RunGuard struct {
	mu sync.Mutex
}

// TryAcquire claims the guard without blocking. It returns false when a
// run is already active.
func (g *RunGuard) TryAcquire() bool {
	return g.mu.TryLock()
}

// Release frees the guard after a run finishes
func (g *RunGuard) Release() {
	g.mu.Unlock()
}

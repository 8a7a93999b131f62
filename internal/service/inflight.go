package service

import (
	"sync"

	"github.com/google/uuid"
)

// TransitionGuard tracks request ids whose transition is currently being
// processed, so two handlers working the same request never run the
// approval saga concurrently. The database claim is still the source of
// truth; the guard just short-circuits the duplicate before it touches
// any store.
type TransitionGuard struct {
	mu       sync.Mutex
	inFlight map[uuid.UUID]struct{}
}

func NewTransitionGuard() *TransitionGuard {
	return &TransitionGuard{inFlight: make(map[uuid.UUID]struct{})}
}

// TryAcquire claims exclusive processing of the request id. Returns false
// if another caller currently holds it.
func (g *TransitionGuard) TryAcquire(id uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if _, held := g.inFlight[id]; held {
		return false
	}
	g.inFlight[id] = struct{}{}
	return true
}

// Release frees the claim. Safe to call for an id that is not held.
func (g *TransitionGuard) Release(id uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, id)
}

package cartsync

import (
	"context"
	"sync"
	"time"

	"grocerfront/internal/domain"
)

const (
	// An idle engine is only a cache: the guest cart lives in the store and
	// the authenticated cart on the remote service, so eviction loses
	// nothing. The anonymous ID is a client-supplied header, so the map must
	// not grow with every ID ever seen.
	defaultMaxIdle       = time.Hour
	defaultSweepInterval = 5 * time.Minute
)

type registryEntry struct {
	eng      *Engine
	lastUsed time.Time
}

// Registry multiplexes engines across sessions, one engine per anonymous ID.
// The anonymous ID stays stable across login and logout, so the same engine
// observes both sides of an authentication transition. Engines idle past
// defaultMaxIdle are swept out and rebuilt on the next request.
type Registry struct {
	mu        sync.Mutex
	engines   map[string]*registryEntry
	factory   func() *Engine
	now       func() time.Time
	maxIdle   time.Duration
	lastSweep time.Time
}

func NewRegistry(factory func() *Engine) *Registry {
	return &Registry{
		engines: make(map[string]*registryEntry),
		factory: factory,
		now:     time.Now,
		maxIdle: defaultMaxIdle,
	}
}

// For returns the engine for the session, creating it on first use and
// re-observing the session whenever it changed. The second result reports
// whether the engine's state was freshly observed (created, or a session
// transition was applied), so callers can skip an immediate refresh. The
// engine is returned even when the observation failed, holding an empty
// cart.
func (r *Registry) For(ctx context.Context, session domain.Session) (*Engine, bool, error) {
	r.mu.Lock()
	r.sweepLocked()
	entry, ok := r.engines[session.AnonymousID]
	if !ok {
		entry = &registryEntry{eng: r.factory()}
		r.engines[session.AnonymousID] = entry
	}
	entry.lastUsed = r.now()
	r.mu.Unlock()

	if !ok || entry.eng.Session() != session {
		err := entry.eng.SetSession(ctx, session)
		return entry.eng, true, err
	}
	return entry.eng, false, nil
}

// sweepLocked drops idle engines; callers hold r.mu.
func (r *Registry) sweepLocked() {
	now := r.now()
	if now.Sub(r.lastSweep) < defaultSweepInterval {
		return
	}
	r.lastSweep = now
	for id, entry := range r.engines {
		if now.Sub(entry.lastUsed) >= r.maxIdle {
			delete(r.engines, id)
		}
	}
}

// Len reports the number of live engines.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.engines)
}

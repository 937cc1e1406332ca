package recommend

import (
	"sync"
	"time"

	"grocerfront/internal/domain"
)

type cacheEntry struct {
	products  []domain.Product
	fetchedAt time.Time
}

// ttlCache holds recommendation lists until they expire. Entries are replaced
// wholesale, never partially mutated. The clock is injected so expiry is
// deterministic under test.
type ttlCache struct {
	mu      sync.Mutex
	now     func() time.Time
	ttl     time.Duration
	entries map[string]cacheEntry
}

func newTTLCache(ttl time.Duration, now func() time.Time) *ttlCache {
	return &ttlCache{
		now:     now,
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

func (c *ttlCache) get(key string) ([]domain.Product, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return e.products, true
}

func (c *ttlCache) set(key string, products []domain.Product) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{products: products, fetchedAt: c.now()}
}

package engine

import (
	"sync"
	"time"
)

// dedupCache is the bounded-lifetime idempotency set. Expiry is lazy:
// checked on read and purged opportunistically on insert.
type dedupCache struct {
	mu      sync.Mutex
	expires map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

func newDedupCache(ttl time.Duration) *dedupCache {
	return &dedupCache{
		expires: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Seen reports whether key is present and not yet expired.
func (c *dedupCache) Seen(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiry, ok := c.expires[key]
	if !ok {
		return false
	}
	if c.now().After(expiry) {
		delete(c.expires, key)
		return false
	}
	return true
}

// Insert records key with a fresh TTL and sweeps expired siblings.
func (c *dedupCache) Insert(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	for k, expiry := range c.expires {
		if now.After(expiry) {
			delete(c.expires, k)
		}
	}
	c.expires[key] = now.Add(c.ttl)
}

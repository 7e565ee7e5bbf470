package dashboard

import (
	"sync"
	"time"
)

// statsCache is a small TTL cache for computed dashboard stats. Expired
// entries are dropped lazily on read; the working set is a handful of keys.
type statsCache struct {
	mu   sync.RWMutex
	data map[string]*cacheEntry
	ttl  time.Duration
}

type cacheEntry struct {
	value      Stats
	expiration time.Time
}

func newStatsCache(ttl time.Duration) *statsCache {
	return &statsCache{
		data: make(map[string]*cacheEntry),
		ttl:  ttl,
	}
}

func (c *statsCache) Get(key string) (Stats, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.data[key]
	if !ok || time.Now().After(entry.expiration) {
		return Stats{}, false
	}
	return entry.value, true
}

func (c *statsCache) Set(key string, value Stats) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data[key] = &cacheEntry{
		value:      value,
		expiration: time.Now().Add(c.ttl),
	}
}

func (c *statsCache) Invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.data, key)
}

package catalog

import (
	"sync"
	"time"
)

type cacheEntry[T any] struct {
	value     T
	fetchedAt time.Time
	expiresAt time.Time
}

// ttlCache holds one value per invalidation tag. Expired values are kept so a
// failed refresh can still serve them.
type ttlCache[T any] struct {
	mu      sync.RWMutex
	entries map[string]cacheEntry[T]
	now     func() time.Time
}

func newTTLCache[T any](now func() time.Time) *ttlCache[T] {
	return &ttlCache[T]{
		entries: make(map[string]cacheEntry[T]),
		now:     now,
	}
}

// get returns the value for key and whether it is still fresh.
func (c *ttlCache[T]) get(key string) (value T, fresh, ok bool) {
	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return value, false, false
	}
	return entry.value, c.now().Before(entry.expiresAt), true
}

func (c *ttlCache[T]) set(key string, value T, ttl time.Duration) {
	now := c.now()
	c.mu.Lock()
	c.entries[key] = cacheEntry[T]{
		value:     value,
		fetchedAt: now,
		expiresAt: now.Add(ttl),
	}
	c.mu.Unlock()
}

// expire marks key stale without dropping it.
func (c *ttlCache[T]) expire(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, exists := c.entries[key]
	if !exists {
		return false
	}
	entry.expiresAt = time.Time{}
	c.entries[key] = entry
	return true
}

// fetchedAt reports when key was stored.
func (c *ttlCache[T]) fetchedAt(key string) (time.Time, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, exists := c.entries[key]
	return entry.fetchedAt, exists
}

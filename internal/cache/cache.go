package cache

import (
	"sync"
	"time"
)

// DefaultTTL is the story-cache lifetime.
const DefaultTTL = 24 * time.Hour

type entry[V any] struct {
	data      V
	timestamp time.Time
	ttl       time.Duration
}

// Cache is an in-process TTL key-value store. Expired entries are evicted
// lazily on lookup; there is no proactive sweep and no size bound. Concurrent
// writers on the same key race with last-write-wins, which callers accept.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	now     func() time.Time
}

// New builds a cache on the wall clock.
func New[V any]() *Cache[V] {
	return &Cache[V]{entries: map[string]entry[V]{}, now: time.Now}
}

// NewWithClock builds a cache with an injectable clock for deterministic
// expiry tests.
func NewWithClock[V any](now func() time.Time) *Cache[V] {
	return &Cache[V]{entries: map[string]entry[V]{}, now: now}
}

// Get returns the cached value when present and unexpired. An expired entry
// is evicted on detection.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var zero V
	e, ok := c.entries[key]
	if !ok {
		return zero, false
	}

	if c.now().Sub(e.timestamp) > e.ttl {
		delete(c.entries, key)
		return zero, false
	}

	return e.data, true
}

// Set unconditionally stores the value with the given lifetime.
func (c *Cache[V]) Set(key string, data V, ttl time.Duration) {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{data: data, timestamp: c.now(), ttl: ttl}
}

// Len reports the number of stored entries, including not-yet-evicted
// expired ones.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]entry[V]{}
}

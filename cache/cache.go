// Package cache holds fetched query results keyed by request identity. The
// session core invalidates it wholesale on logout and on every managed
// context change, so nothing fetched under an old scope can be served under
// a new one.
package cache

import (
	"strings"
	"sync"
)

// Invalidator is the handle the session core uses to drop cached query data.
type Invalidator interface {
	InvalidateAll()
	InvalidatePrefix(prefix string)
}

// QueryCache is an in-process cache of query results. Keys are caller-chosen;
// the convention is "resource:scope:args" so prefix invalidation can target a
// resource family.
type QueryCache struct {
	mu      sync.RWMutex
	entries map[string]interface{}
}

// NewQueryCache creates an empty cache.
func NewQueryCache() *QueryCache {
	return &QueryCache{entries: make(map[string]interface{})}
}

// Get returns the cached value for key, if one is live.
func (c *QueryCache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	value, found := c.entries[key]
	return value, found
}

// Put stores a value under key, replacing any previous entry.
func (c *QueryCache) Put(key string, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = value
}

// Len returns the number of live entries.
func (c *QueryCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.entries)
}

// InvalidateAll drops every entry. Runs synchronously; once it returns no
// reader can observe pre-invalidation data.
func (c *QueryCache) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = make(map[string]interface{})
}

// InvalidatePrefix drops every entry whose key starts with prefix.
func (c *QueryCache) InvalidatePrefix(prefix string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for key := range c.entries {
		if strings.HasPrefix(key, prefix) {
			delete(c.entries, key)
		}
	}
}

// Package cache provides the page cache used for the global feed listing.
// Entries hold fully rendered response bodies and expire after a fixed TTL;
// the only other way out is an explicit all-or-nothing clear. Serving stale
// bodies inside the TTL window after a write is deliberate.
package cache

import (
	"net/url"
	"sync"
	"time"
)

// DefaultTTL bounds how long a cached page may lag behind the store.
const DefaultTTL = 20 * time.Second

// PageCache stores rendered page bodies keyed by request identity.
type PageCache interface {
	Get(key string) ([]byte, bool)
	Set(key string, body []byte)
	ClearAll()
}

// PageKey derives the cache key from the request path and page parameter.
func PageKey(path, page string) string {
	if page == "" {
		page = "1"
	}
	return path + "?page=" + url.QueryEscape(page)
}

type memoryEntry struct {
	body      []byte
	expiresAt time.Time
}

// MemoryCache is a process-local PageCache. It backs tests and deployments
// without a reachable Redis.
type MemoryCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	entries map[string]memoryEntry
}

// NewMemory creates a MemoryCache. A non-positive ttl falls back to DefaultTTL.
func NewMemory(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryCache{
		ttl:     ttl,
		entries: map[string]memoryEntry{},
	}
}

// Get returns the cached body when present and not expired.
func (c *MemoryCache) Get(key string) ([]byte, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.body, true
}

// Set stores the body until the TTL elapses. Last writer wins.
func (c *MemoryCache) Set(key string, body []byte) {
	c.mu.Lock()
	c.entries[key] = memoryEntry{body: body, expiresAt: time.Now().Add(c.ttl)}
	c.mu.Unlock()
}

// ClearAll drops every entry.
func (c *MemoryCache) ClearAll() {
	c.mu.Lock()
	c.entries = map[string]memoryEntry{}
	c.mu.Unlock()
}

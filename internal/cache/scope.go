// Package cache provides the in-memory TTL cache backing campaign scope
// selection.
package cache

import (
	"sync"
	"time"
)

// DefaultTTL matches the scope-result freshness window the service runs
// with in production.
const DefaultTTL = 15 * time.Minute

type entry struct {
	ids       []string
	expiresAt time.Time
}

// ScopeCache is a TTL map for scope-selection results. Expired entries are
// dropped lazily on read and in bulk by Sweep. Safe for concurrent use.
type ScopeCache struct {
	mu      sync.RWMutex
	entries map[uint64]entry
	ttl     time.Duration
	now     func() time.Time
}

// New creates a ScopeCache with the given TTL; ttl <= 0 falls back to
// DefaultTTL.
func New(ttl time.Duration) *ScopeCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ScopeCache{
		entries: make(map[uint64]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached ids for key, if present and fresh.
func (c *ScopeCache) Get(key uint64) ([]string, bool) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return nil, false
	}
	if c.now().After(e.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.ids, true
}

// Set stores ids under key for the cache's TTL.
func (c *ScopeCache) Set(key uint64, ids []string) {
	c.mu.Lock()
	c.entries[key] = entry{ids: ids, expiresAt: c.now().Add(c.ttl)}
	c.mu.Unlock()
}

// Invalidate drops every entry. Called on any product or campaign mutation.
func (c *ScopeCache) Invalidate() {
	c.mu.Lock()
	c.entries = make(map[uint64]entry)
	c.mu.Unlock()
}

// Sweep removes expired entries; intended to be called periodically.
func (c *ScopeCache) Sweep() {
	now := c.now()
	c.mu.Lock()
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.mu.Unlock()
}

// Len returns the number of stored entries, including not-yet-swept expired
// ones.
func (c *ScopeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

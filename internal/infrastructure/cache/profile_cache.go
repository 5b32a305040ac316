package cache

import (
	"sync"
	"time"

	"foundr-auth/internal/domain"
)

// cacheEntry holds a cached profile and its expiry.
type cacheEntry struct {
	profile   domain.Profile
	expiresAt time.Time
}

// ProfileCache is a thread-safe in-memory TTL cache for profile rows.
// Implements domain.ProfileCache.
type ProfileCache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	ttl     time.Duration
}

// NewProfileCache creates a profile cache with the specified TTL.
func NewProfileCache(ttl time.Duration) *ProfileCache {
	c := &ProfileCache{
		entries: make(map[string]*cacheEntry),
		ttl:     ttl,
	}
	go c.cleanupLoop()
	return c
}

// Get retrieves a cached profile by user id.
func (c *ProfileCache) Get(id string) (*domain.Profile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, found := c.entries[id]
	if !found || time.Now().After(entry.expiresAt) {
		return nil, false
	}
	profile := entry.profile
	return &profile, true
}

// Set stores a profile in the cache.
func (c *ProfileCache) Set(id string, profile domain.Profile) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[id] = &cacheEntry{
		profile:   profile,
		expiresAt: time.Now().Add(c.ttl),
	}
}

// Invalidate drops the cached entry for id, if any. Called after writes so
// readers never observe a stale profile past an update.
func (c *ProfileCache) Invalidate(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, id)
}

// cleanup removes expired entries.
func (c *ProfileCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for id, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, id)
		}
	}
}

// cleanupLoop runs periodic cleanup of expired entries.
func (c *ProfileCache) cleanupLoop() {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		c.cleanup()
	}
}

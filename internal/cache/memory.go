package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/ppiankov/crules/internal/rules"
)

// MemoryCache holds editions in process memory until they expire
type MemoryCache struct {
	cache *gocache.Cache
}

// NewMemoryCache creates a memory cache whose entries live for ttl
func NewMemoryCache(ttl time.Duration, cleanupInterval time.Duration) *MemoryCache {
	return &MemoryCache{
		cache: gocache.New(ttl, cleanupInterval),
	}
}

// Get returns the edition stored under key
func (c *MemoryCache) Get(key string) (*rules.Edition, bool) {
	val, found := c.cache.Get(key)
	if !found {
		return nil, false
	}
	edition, ok := val.(*rules.Edition)
	return edition, ok
}

// Set stores edition with the default expiration
func (c *MemoryCache) Set(key string, edition *rules.Edition) error {
	c.cache.SetDefault(key, edition)
	return nil
}

// Delete removes key
func (c *MemoryCache) Delete(key string) error {
	c.cache.Delete(key)
	return nil
}

// Clear removes every entry
func (c *MemoryCache) Clear() error {
	c.cache.Flush()
	return nil
}

// Len returns the number of entries, including expired ones not yet cleaned up
func (c *MemoryCache) Len() int {
	return c.cache.ItemCount()
}

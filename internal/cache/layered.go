package cache

import (
	"errors"
	"time"

	"github.com/ppiankov/crules/internal/rules"
)

// LayeredCache checks memory before disk and promotes disk hits
type LayeredCache struct {
	memory Cache
	disk   Cache
}

// NewLayeredCache creates a memory cache in front of a disk cache at diskDir
func NewLayeredCache(memoryTTL time.Duration, diskDir string, diskTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		memory: NewMemoryCache(memoryTTL, 10*time.Minute),
		disk:   NewDiskCache(diskDir, diskTTL),
	}
}

// Get checks memory first, then disk
func (c *LayeredCache) Get(key string) (*rules.Edition, bool) {
	if edition, found := c.memory.Get(key); found {
		return edition, true
	}

	if edition, found := c.disk.Get(key); found {
		_ = c.memory.Set(key, edition)
		return edition, true
	}

	return nil, false
}

// Set stores edition in both tiers
func (c *LayeredCache) Set(key string, edition *rules.Edition) error {
	if err := c.memory.Set(key, edition); err != nil {
		return err
	}
	return c.disk.Set(key, edition)
}

// Delete removes key from both tiers
func (c *LayeredCache) Delete(key string) error {
	return errors.Join(c.memory.Delete(key), c.disk.Delete(key))
}

// Clear empties both tiers
func (c *LayeredCache) Clear() error {
	return errors.Join(c.memory.Clear(), c.disk.Clear())
}

package cache

import (
	"errors"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// LayeredCache reads memory first and falls back to disk. A disk hit is
// copied into memory for the rest of its lifetime only, so promotion never
// extends the read window.
type LayeredCache struct {
	memory *MemoryCache
	disk   *DiskCache
}

func NewLayeredCache(memory *MemoryCache, disk *DiskCache) *LayeredCache {
	return &LayeredCache{memory: memory, disk: disk}
}

func (c *LayeredCache) Get(key string) (*Snapshot, bool) {
	if snap, ok := c.memory.Get(key); ok {
		return snap, true
	}

	e, ok := c.disk.load(key)
	if !ok {
		return nil, false
	}
	switch left := e.ExpiresAt.Sub(c.disk.now()); {
	case e.ExpiresAt.IsZero():
		_ = c.memory.Put(key, e.Snapshot, gocache.NoExpiration)
	case left > 0:
		_ = c.memory.Put(key, e.Snapshot, left)
	}
	return e.Snapshot, true
}

func (c *LayeredCache) Put(key string, snap *Snapshot, ttl time.Duration) error {
	if err := c.memory.Put(key, snap, ttl); err != nil {
		return err
	}
	return c.disk.Put(key, snap, ttl)
}

// Delete always attempts both layers; a write must not leave a stale
// snapshot behind in either
func (c *LayeredCache) Delete(key string) error {
	return errors.Join(c.memory.Delete(key), c.disk.Delete(key))
}

func (c *LayeredCache) Clear() error {
	return errors.Join(c.memory.Clear(), c.disk.Clear())
}

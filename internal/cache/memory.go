package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryCache keeps snapshots in process
type MemoryCache struct {
	items *gocache.Cache
}

// NewMemoryCache creates a memory cache whose entries live for ttl by default
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	if ttl <= 0 {
		ttl = gocache.NoExpiration
	}
	return &MemoryCache{items: gocache.New(ttl, 5*time.Minute)}
}

func (c *MemoryCache) Get(key string) (*Snapshot, bool) {
	v, ok := c.items.Get(key)
	if !ok {
		return nil, false
	}
	return v.(*Snapshot).Clone(), true
}

func (c *MemoryCache) Put(key string, snap *Snapshot, ttl time.Duration) error {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.items.Set(key, snap.Clone(), ttl)
	return nil
}

func (c *MemoryCache) Delete(key string) error {
	c.items.Delete(key)
	return nil
}

func (c *MemoryCache) Clear() error {
	c.items.Flush()
	return nil
}

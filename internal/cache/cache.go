// Package cache holds recently fetched catalog tables for a short window so
// repeated loads do not hit the external store.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Snapshot is one raw table as fetched from the store, header row first
type Snapshot struct {
	Rows      [][]string `json:"rows"`
	FetchedAt time.Time  `json:"fetched_at"`
}

// Clone returns a deep copy so callers cannot mutate a cached snapshot
func (s *Snapshot) Clone() *Snapshot {
	rows := make([][]string, len(s.Rows))
	for i, r := range s.Rows {
		rows[i] = append([]string(nil), r...)
	}
	return &Snapshot{Rows: rows, FetchedAt: s.FetchedAt}
}

// Cache stores table snapshots under keys from Key. A zero ttl on Put
// means the cache's own default.
type Cache interface {
	Get(key string) (*Snapshot, bool)
	Put(key string, snap *Snapshot, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Key identifies a table of a given store
func Key(storeID, table string) string {
	hash := sha256.Sum256([]byte(storeID + "\x00" + table))
	return "proposta:v1:" + hex.EncodeToString(hash[:])
}

// New builds the cache for ttl: memory only when dir is empty, memory in
// front of disk otherwise
func New(ttl time.Duration, dir string) Cache {
	if dir == "" {
		return NewMemoryCache(ttl)
	}
	return NewLayeredCache(NewMemoryCache(ttl), NewDiskCache(dir, ttl))
}

// Nop never stores anything
type Nop struct{}

func (Nop) Get(string) (*Snapshot, bool)               { return nil, false }
func (Nop) Put(string, *Snapshot, time.Duration) error { return nil }
func (Nop) Delete(string) error                        { return nil }
func (Nop) Clear() error                               { return nil }

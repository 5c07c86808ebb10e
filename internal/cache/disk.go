package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const diskExt = ".table.json"

// DiskCache keeps snapshots as JSON files so the read window survives
// between separate CLI invocations
type DiskCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

// NewDiskCache stores entries under dir, expiring after ttl by default. A
// non-positive ttl keeps entries until deleted, as MemoryCache does.
func NewDiskCache(dir string, ttl time.Duration) *DiskCache {
	return &DiskCache{dir: dir, ttl: ttl, now: time.Now}
}

type diskEntry struct {
	Key       string    `json:"key"`
	ExpiresAt time.Time `json:"expires_at"` // zero never expires
	Snapshot  *Snapshot `json:"snapshot"`
}

func (e *diskEntry) expired(now time.Time) bool {
	return !e.ExpiresAt.IsZero() && !now.Before(e.ExpiresAt)
}

func (c *DiskCache) Get(key string) (*Snapshot, bool) {
	e, ok := c.load(key)
	if !ok {
		return nil, false
	}
	return e.Snapshot, true
}

// load reads and checks one entry; unreadable or expired files are removed
func (c *DiskCache) load(key string) (*diskEntry, bool) {
	path := c.path(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}

	var e diskEntry
	if err := json.Unmarshal(data, &e); err != nil || e.Key != key || e.Snapshot == nil {
		_ = os.Remove(path)
		return nil, false
	}
	if e.expired(c.now()) {
		_ = os.Remove(path)
		return nil, false
	}
	return &e, true
}

func (c *DiskCache) Put(key string, snap *Snapshot, ttl time.Duration) error {
	if ttl == 0 {
		ttl = c.ttl
	}
	var expires time.Time
	if ttl > 0 {
		expires = c.now().Add(ttl)
	}
	data, err := json.Marshal(diskEntry{Key: key, ExpiresAt: expires, Snapshot: snap})
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	// Readers in other processes must never see half a file
	tmp, err := os.CreateTemp(c.dir, "put-*.tmp")
	if err != nil {
		return fmt.Errorf("create cache file: %w", err)
	}
	_, werr := tmp.Write(data)
	cerr := tmp.Close()
	if err := errors.Join(werr, cerr); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("rename cache file: %w", err)
	}
	return nil
}

// Delete removes key. A missing entry is not an error.
func (c *DiskCache) Delete(key string) error {
	if err := os.Remove(c.path(key)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// Clear removes every snapshot file, leaving anything else in dir alone
func (c *DiskCache) Clear() error {
	entries, err := os.ReadDir(c.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	var errs []error
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), diskExt) {
			if err := os.Remove(filepath.Join(c.dir, e.Name())); err != nil && !errors.Is(err, fs.ErrNotExist) {
				errs = append(errs, err)
			}
		}
	}
	return errors.Join(errs...)
}

func (c *DiskCache) path(key string) string {
	name := strings.TrimPrefix(key, "proposta:v1:")
	return filepath.Join(c.dir, name+diskExt)
}

// Package catalog loads validated snapshots of the proposal catalog tables
// and appends new entries to them.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/ppiankov/proposta/internal/cache"
	"github.com/ppiankov/proposta/internal/store"
)

// Loader fetches catalog tables through a short-lived read cache and
// validates their headers
type Loader struct {
	store  store.Store
	cache  cache.Cache
	ttl    time.Duration
	group  singleflight.Group
	logger *zap.Logger
}

// NewLoader creates a loader. A nil cache disables caching.
func NewLoader(s store.Store, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Loader {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Loader{store: s, cache: c, ttl: ttl, logger: logger}
}

// Store returns the underlying store
func (l *Loader) Store() store.Store { return l.store }

// Load returns the named table. A table with no data rows comes back empty
// and shaped with exactly the required columns. A missing table yields
// *NotFoundError, a missing required column *SchemaError; neither returns a
// partial table.
func (l *Loader) Load(ctx context.Context, table string, required []string) (*Table, error) {
	raw, err := l.raw(ctx, table)
	if err != nil {
		return nil, err
	}

	t := newTable(table, raw)
	if t.Len() == 0 {
		return emptyTable(table, required), nil
	}

	if missing := t.missing(required); len(missing) > 0 {
		return nil, &SchemaError{
			Table:   table,
			Missing: missing,
			Found:   append([]string(nil), t.Columns...),
		}
	}

	return t, nil
}

// Invalidate drops any cached snapshot of table
func (l *Loader) Invalidate(table string) error {
	return l.cache.Delete(cacheKey(l.store, table))
}

func (l *Loader) raw(ctx context.Context, table string) ([][]string, error) {
	key := cacheKey(l.store, table)

	if snap, ok := l.cache.Get(key); ok {
		l.logger.Debug("catalog cache hit",
			zap.String("table", table),
			zap.Duration("age", time.Since(snap.FetchedAt)))
		return snap.Rows, nil
	}

	v, err, _ := l.group.Do(key, func() (interface{}, error) {
		start := time.Now()
		rows, err := l.store.Fetch(ctx, table)
		if err != nil {
			return nil, l.classify(table, err)
		}
		l.logger.Debug("catalog table fetched",
			zap.String("table", table),
			zap.Int("rows", len(rows)),
			zap.Duration("took", time.Since(start)))

		if err := l.cache.Put(key, &cache.Snapshot{Rows: rows, FetchedAt: start}, l.ttl); err != nil {
			l.logger.Warn("caching catalog table", zap.String("table", table), zap.Error(err))
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([][]string), nil
}

func (l *Loader) classify(table string, err error) error {
	switch {
	case errors.Is(err, store.ErrTableNotFound):
		return &NotFoundError{Table: table, Err: err}
	case errors.Is(err, store.ErrUnavailable):
		return &ConnectionError{Store: l.store.ID(), Err: err}
	default:
		return fmt.Errorf("load %s: %w", table, err)
	}
}

func cacheKey(s store.Store, table string) string {
	return cache.Key(s.ID(), table)
}

package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/ppiankov/proposta/internal/cache"
	"github.com/ppiankov/proposta/internal/model"
	"github.com/ppiankov/proposta/internal/store"
)

// Writer appends new catalog entries. Appends are blind: no uniqueness or
// arity checks, no locking against other sessions, no retries.
type Writer struct {
	store  store.Store
	cache  cache.Cache
	logger *zap.Logger
}

// NewWriter creates a writer that invalidates entries of c on success.
// Pass the same cache as the Loader's.
func NewWriter(s store.Store, c cache.Cache, logger *zap.Logger) *Writer {
	if c == nil {
		c = cache.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{store: s, cache: c, logger: logger}
}

// CanAppend reports whether the store accepts new rows
func (w *Writer) CanAppend() bool {
	return w.store.Capabilities().Append
}

// Append adds values (in the table's declared column order) as a new row
// and drops the cached snapshot of table so the next load sees it
func (w *Writer) Append(ctx context.Context, table string, values []string) error {
	if !w.CanAppend() {
		return &WriteError{Table: table, Err: store.ErrReadOnly}
	}

	if err := w.store.Append(ctx, table, values); err != nil {
		w.logger.Error("catalog append failed", zap.String("table", table), zap.Error(err))
		return &WriteError{Table: table, Err: err}
	}

	if err := w.cache.Delete(cacheKey(w.store, table)); err != nil {
		// The row is stored; a stale snapshot would hide it until the TTL expires
		w.logger.Warn("invalidating cached table", zap.String("table", table), zap.Error(err))
	}
	w.logger.Info("catalog row appended", zap.String("table", table), zap.Int("fields", len(values)))
	return nil
}

// AppendScopeItem registers a new scope item
func (w *Writer) AppendScopeItem(ctx context.Context, item model.ScopeItem) error {
	return w.Append(ctx, model.TableScope, item.Values())
}

// AppendExclusion registers a new exclusion
func (w *Writer) AppendExclusion(ctx context.Context, item model.ExclusionItem) error {
	return w.Append(ctx, model.TableExclusions, item.Values())
}

// AppendResponsibility registers a new client responsibility
func (w *Writer) AppendResponsibility(ctx context.Context, item model.ResponsibilityItem) error {
	return w.Append(ctx, model.TableResponsibilities, item.Values())
}

// AppendClient registers a new client
func (w *Writer) AppendClient(ctx context.Context, c model.ClientRecord) error {
	return w.Append(ctx, model.TableClients, c.Values())
}

// AppendCoverage registers a new cover text
func (w *Writer) AppendCoverage(ctx context.Context, c model.CoverageTemplate) error {
	return w.Append(ctx, model.TableCoverages, c.Values())
}

// Package store adapts external tabular datastores to a named-table
// read/append contract.
package store

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ppiankov/proposta/internal/model"
)

var (
	// ErrTableNotFound means the named table/worksheet does not exist
	ErrTableNotFound = errors.New("table not found")
	// ErrUnavailable means the store could not be reached or rejected the credentials
	ErrUnavailable = errors.New("store unavailable")
	// ErrReadOnly means the transport cannot append rows
	ErrReadOnly = errors.New("store is read-only")
)

// Store is a named-table datastore. Fetch returns the header row first,
// followed by the data rows, exactly as stored.
type Store interface {
	ID() string
	Fetch(ctx context.Context, table string) ([][]string, error)
	Append(ctx context.Context, table string, values []string) error
	Capabilities() Capabilities
}

// Capabilities describes what a transport supports
type Capabilities struct {
	Append bool
}

// Open constructs the transport selected by cfg and checks that it is reachable
func Open(ctx context.Context, cfg model.StoreConfig, httpCfg model.HTTPConfig, logger *zap.Logger) (Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	switch cfg.Kind {
	case model.StoreCSV:
		if len(cfg.CSVURLs) == 0 {
			return nil, fmt.Errorf("csv store: no table URLs configured: %w", ErrUnavailable)
		}
		return NewCSVStore(cfg.CSVURLs, httpCfg, logger), nil
	case model.StoreSheets:
		return NewSheetsStore(ctx, cfg.SpreadsheetID, cfg.CredentialsFile)
	case model.StoreSQLite:
		return OpenSQLite(ctx, cfg.SQLitePath)
	case model.StoreDir:
		return OpenDir(cfg.Dir)
	case model.StoreMemory:
		return NewMemoryStore(nil), nil
	default:
		return nil, fmt.Errorf("unknown store kind %q", cfg.Kind)
	}
}

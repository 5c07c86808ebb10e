package catalog

import (
	"context"

	"go.uber.org/zap"

	"github.com/ppiankov/proposta/internal/model"
	"github.com/ppiankov/proposta/internal/store"
)

// Connect opens the configured store once for the life of the process.
// Failure is a *ConnectionError.
func Connect(ctx context.Context, cfg model.StoreConfig, httpCfg model.HTTPConfig, logger *zap.Logger) (store.Store, error) {
	s, err := store.Open(ctx, cfg, httpCfg, logger)
	if err != nil {
		return nil, &ConnectionError{Store: string(cfg.Kind), Err: err}
	}
	return s, nil
}

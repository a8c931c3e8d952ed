// Package backend construye el ledger y el bloqueo por SKU según la configuración.
package backend

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/ledgerstore"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/lock"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/mongostore"
	"github.com/jhoicas/inventario-ledger/internal/infrastructure/postgres"
	"github.com/jhoicas/inventario-ledger/pkg/config"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// OpenLedger abre el backend configurado; postgres aplica las migraciones embebidas
// y mongo asegura sus índices.
func OpenLedger(ctx context.Context, cfg *config.Config) (repository.LedgerStore, error) {
	switch cfg.Ledger.Backend {
	case config.LedgerPostgres:
		pool, err := postgres.NewPool(ctx, cfg.DB)
		if err != nil {
			return nil, err
		}
		if err := postgres.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return postgres.NewLedgerStore(pool), nil
	case config.LedgerMongo:
		store, err := mongostore.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			return nil, err
		}
		if err := store.EnsureIndexes(ctx); err != nil {
			_ = store.Close(ctx)
			return nil, err
		}
		return store, nil
	}
	return ledgerstore.NewMemoryStore(), nil
}

// NewLocker devuelve el bloqueo en proceso o el distribuido sobre Redis.
func NewLocker(ctx context.Context, cfg *config.Config, log *logger.Logger) (inventory.SKULocker, error) {
	if cfg.Lock.Backend != config.LockRedis {
		return lock.NewLocalLocker(), nil
	}
	rdb, err := lock.NewRedisClient(ctx, cfg.Lock.RedisURL)
	if err != nil {
		return nil, err
	}
	return lock.NewRedisLocker(rdb, cfg.Lock.TTL, cfg.Lock.Retry, log), nil
}

package ledgerkv

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

var _ repository.Runner = (*Runner)(nil)

// Runner abre una sesión del store por operación lógica y arma los repositorios sobre ella.
type Runner struct {
	store repository.LedgerStore
	log   *logger.Logger
}

// NewRunner construye el runner con el store.
func NewRunner(store repository.LedgerStore, log *logger.Logger) *Runner {
	return &Runner{store: store, log: log.Named("ledgerkv")}
}

// Run la sesión se libera al volver fn, con o sin error.
func (r *Runner) Run(ctx context.Context, fn func(repository.Repositories) error) error {
	return r.store.Session(ctx, func(s repository.LedgerSession) error {
		return fn(repository.Repositories{
			Products:     NewProductRepository(s, r.log),
			Transactions: NewTransactionRepository(s, r.log),
			Users:        NewUserRepository(s, r.log),
			Audit:        NewAuditRepository(s, r.log),
		})
	})
}

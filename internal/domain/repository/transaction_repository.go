package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// TransactionRepository ledger de movimientos. FindBySKU devuelve el conjunto sin orden;
// ordenar es responsabilidad de la proyección.
type TransactionRepository interface {
	Append(ctx context.Context, tx *entity.Transaction) error
	FindBySKU(ctx context.Context, sku string) ([]*entity.Transaction, error)
	GetByID(ctx context.Context, id string) (*entity.Transaction, error)
}

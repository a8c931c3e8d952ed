package repository

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// ProductRepository registro de productos (DIP). Create rellena product.Proof.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error // domain.ErrDuplicateSKU si ya existe
	GetBySKU(ctx context.Context, sku string) (*entity.Product, error)
	List(ctx context.Context) ([]*entity.Product, error)
}

package inventory

import (
	"context"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
)

// ProjectionEngine obtiene producto y transacciones de una sesión y delega el fold al dominio.
type ProjectionEngine struct{}

// NewProjectionEngine construye el motor de proyección.
func NewProjectionEngine() *ProjectionEngine { return &ProjectionEngine{} }

// ProjectSKU proyecta el stock de sku hasta asOf (cero = sin corte).
// Devuelve domain.ErrNotFound si el producto no existe.
func (e *ProjectionEngine) ProjectSKU(ctx context.Context, r repository.Repositories, sku string, asOf time.Time) (*entity.Product, inventory.Projection, error) {
	product, err := r.Products.GetBySKU(ctx, sku)
	if err != nil {
		return nil, inventory.Projection{}, err
	}
	p, err := e.ProjectProduct(ctx, r, product, asOf)
	if err != nil {
		return nil, inventory.Projection{}, err
	}
	return product, p, nil
}

// ProjectProduct proyecta un producto ya cargado.
func (e *ProjectionEngine) ProjectProduct(ctx context.Context, r repository.Repositories, product *entity.Product, asOf time.Time) (inventory.Projection, error) {
	txs, err := r.Transactions.FindBySKU(ctx, product.SKU)
	if err != nil {
		return inventory.Projection{}, err
	}
	return inventory.Project(product.CreatedAt, txs, asOf), nil
}

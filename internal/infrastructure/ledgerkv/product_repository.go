package ledgerkv

import (
	"context"
	"errors"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

var _ repository.ProductRepository = (*ProductRepository)(nil)

// ProductRepository registro de productos bajo product:<sku>.
type ProductRepository struct {
	s   repository.LedgerSession
	log *logger.Logger
}

// NewProductRepository construye el repositorio atado a la sesión.
func NewProductRepository(s repository.LedgerSession, log *logger.Logger) *ProductRepository {
	return &ProductRepository{s: s, log: log}
}

// Create falla con domain.ErrDuplicateSKU si el SKU ya tiene registro.
func (r *ProductRepository) Create(ctx context.Context, product *entity.Product) error {
	key := productKey(product.SKU)
	_, err := r.s.Get(ctx, key)
	if err == nil {
		return domain.ErrDuplicateSKU
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return domain.WrapStorage("get", err)
	}
	value, err := encodeProduct(product)
	if err != nil {
		return &domain.StorageError{Op: "encode", Err: err}
	}
	proof, err := r.s.Put(ctx, key, value)
	if err != nil {
		return domain.WrapStorage("put", err)
	}
	product.Proof = proof
	return nil
}

func (r *ProductRepository) GetBySKU(ctx context.Context, sku string) (*entity.Product, error) {
	e, err := getVerified(ctx, r.s, productKey(sku))
	if err != nil {
		return nil, err
	}
	p, err := decodeProduct(e.Value)
	if err != nil {
		return nil, &domain.StorageError{Op: "decode", Err: err}
	}
	p.Proof = proofPtr(e.Proof)
	return p, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]*entity.Product, error) {
	products, proofs, err := scanDecode(ctx, r.s, r.log, productPrefix, decodeProduct)
	if err != nil {
		return nil, err
	}
	for i := range products {
		products[i].Proof = proofPtr(proofs[i])
	}
	return products, nil
}

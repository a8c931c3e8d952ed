package ledgerkv

import (
	"context"
	"errors"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

var _ repository.TransactionRepository = (*TransactionRepository)(nil)

// TransactionRepository ledger de movimientos bajo tx:<sku>:<id>, con un puntero txid:<id>
// hacia la clave primaria para resolver por id sin recorrer todo el keyspace.
type TransactionRepository struct {
	s   repository.LedgerSession
	log *logger.Logger
}

// NewTransactionRepository construye el repositorio atado a la sesión.
func NewTransactionRepository(s repository.LedgerSession, log *logger.Logger) *TransactionRepository {
	return &TransactionRepository{s: s, log: log}
}

// Append escribe la transacción y luego su puntero por id. tx.Proof queda con la prueba del registro primario.
func (r *TransactionRepository) Append(ctx context.Context, tx *entity.Transaction) error {
	value, err := encodeTransaction(tx)
	if err != nil {
		return &domain.StorageError{Op: "encode", Err: err}
	}
	key := txKey(tx.SKU, tx.ID)
	proof, err := r.s.Put(ctx, key, value)
	if err != nil {
		return domain.WrapStorage("put", err)
	}
	tx.Proof = proof

	// El registro primario ya es durable; si el puntero falla GetByID cae al recorrido completo.
	if _, err := r.s.Put(ctx, txIDKey(tx.ID), []byte(key)); err != nil {
		r.log.Warn().Err(err).Str("transaction_id", tx.ID).Msg("no se pudo escribir el índice por id")
	}
	return nil
}

// FindBySKU recorre tx:<sku>: y descarta lo que pertenezca a otro SKU (un SKU puede contener ':').
func (r *TransactionRepository) FindBySKU(ctx context.Context, sku string) ([]*entity.Transaction, error) {
	txs, proofs, err := scanDecode(ctx, r.s, r.log, txSKUPrefix(sku), decodeTransaction)
	if err != nil {
		return nil, err
	}
	out := txs[:0]
	for i, tx := range txs {
		if tx.SKU != sku {
			continue
		}
		tx.Proof = proofPtr(proofs[i])
		out = append(out, tx)
	}
	return out, nil
}

// GetByID devuelve la transacción con su prueba tal cual, aunque no esté verificada:
// quien llama decide qué hacer con Proof.Verified.
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	ptr, err := r.s.Get(ctx, txIDKey(id))
	switch {
	case err == nil && ptr.Proof.Verified:
		return r.getPrimary(ctx, id, string(ptr.Value))
	case err == nil:
		r.log.Warn().Str("transaction_id", id).Msg("índice por id con hash inválido, se recorre el ledger")
	case !errors.Is(err, domain.ErrNotFound):
		return nil, domain.WrapStorage("get", err)
	}
	return r.scanByID(ctx, id)
}

func (r *TransactionRepository) getPrimary(ctx context.Context, id, key string) (*entity.Transaction, error) {
	e, err := r.s.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return r.scanByID(ctx, id)
	}
	if err != nil {
		return nil, domain.WrapStorage("get", err)
	}
	tx, err := decodeTransaction(e.Value)
	if err != nil || tx.ID != id {
		return nil, &domain.StorageError{Op: "decode", Err: errors.Join(domain.ErrIntegrity, err)}
	}
	tx.Proof = proofPtr(e.Proof)
	return tx, nil
}

func (r *TransactionRepository) scanByID(ctx context.Context, id string) (*entity.Transaction, error) {
	entries, err := r.s.Scan(ctx, txPrefix)
	if err != nil {
		return nil, domain.WrapStorage("scan", err)
	}
	for _, e := range entries {
		tx, err := decodeTransaction(e.Value)
		if err != nil {
			continue
		}
		if tx.ID == id {
			tx.Proof = proofPtr(e.Proof)
			return tx, nil
		}
	}
	return nil, domain.ErrNotFound
}

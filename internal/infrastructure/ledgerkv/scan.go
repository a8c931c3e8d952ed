package ledgerkv

import (
	"context"
	"fmt"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// scanDecode recorre un prefijo y decodifica cada entrada. Las que no se pueden decodificar
// o cuyo hash no coincide se omiten con un warning: un registro corrupto no aborta la lectura.
func scanDecode[T any](
	ctx context.Context,
	s repository.LedgerSession,
	log *logger.Logger,
	prefix string,
	decode func([]byte) (T, error),
) ([]T, []entity.Proof, error) {
	entries, err := s.Scan(ctx, prefix)
	if err != nil {
		return nil, nil, domain.WrapStorage("scan", err)
	}
	out := make([]T, 0, len(entries))
	proofs := make([]entity.Proof, 0, len(entries))
	for _, e := range entries {
		if !e.Proof.Verified {
			log.Warn().Str("key", e.Key).Int64("seq", e.Proof.Sequence).Msg("registro con hash inválido omitido")
			continue
		}
		v, err := decode(e.Value)
		if err != nil {
			log.Warn().Err(err).Str("key", e.Key).Msg("registro mal formado omitido")
			continue
		}
		out = append(out, v)
		proofs = append(proofs, e.Proof)
	}
	return out, proofs, nil
}

// getVerified lee una clave y exige que su hash sea válido.
func getVerified(ctx context.Context, s repository.LedgerSession, key string) (*repository.KVEntry, error) {
	e, err := s.Get(ctx, key)
	if err != nil {
		return nil, domain.WrapStorage("get", err)
	}
	if !e.Proof.Verified {
		return nil, &domain.StorageError{Op: "verify", Err: fmt.Errorf("%w: %s", domain.ErrIntegrity, key)}
	}
	return e, nil
}

func proofPtr(p entity.Proof) *entity.Proof { return &p }

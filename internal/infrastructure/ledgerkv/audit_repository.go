package ledgerkv

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

var _ repository.AuditRepository = (*AuditRepository)(nil)

// AuditRepository bitácora bajo audit:<id>.
type AuditRepository struct {
	s   repository.LedgerSession
	log *logger.Logger
}

func NewAuditRepository(s repository.LedgerSession, log *logger.Logger) *AuditRepository {
	return &AuditRepository{s: s, log: log}
}

func (r *AuditRepository) Append(ctx context.Context, entry *entity.AuditEntry) error {
	value, err := encodeAudit(entry)
	if err != nil {
		return &domain.StorageError{Op: "encode", Err: err}
	}
	_, err = r.s.Put(ctx, auditKey(entry.ID), value)
	return domain.WrapStorage("put", err)
}

func (r *AuditRepository) List(ctx context.Context) ([]*entity.AuditEntry, error) {
	entries, _, err := scanDecode(ctx, r.s, r.log, auditPrefix, decodeAudit)
	return entries, err
}

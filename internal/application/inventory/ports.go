package inventory

import (
	"context"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// SKULocker serializa las operaciones check-then-append sobre un mismo SKU.
// Lock bloquea hasta adquirir la clave o hasta que ctx expire; la función devuelta libera.
type SKULocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// EventPublisher difunde los cambios del ledger (feed WebSocket). No debe bloquear.
type EventPublisher interface {
	Publish(event dto.LedgerEvent)
}

// Auditor registra acciones en la bitácora. Los fallos se registran en log, no se propagan.
type Auditor interface {
	Record(ctx context.Context, entry entity.AuditEntry)
}

// SnapshotRenderer genera el reporte PDF del snapshot.
type SnapshotRenderer interface {
	RenderSnapshot(ctx context.Context, snapshot *dto.SnapshotResponse) ([]byte, error)
}

type nopPublisher struct{}

func (nopPublisher) Publish(dto.LedgerEvent) {}

type nopAuditor struct{}

func (nopAuditor) Record(context.Context, entity.AuditEntry) {}

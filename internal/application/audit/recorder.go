// Package audit registra y consulta la bitácora de acciones sobre el ledger.
package audit

import (
	"cmp"
	"context"
	"slices"
	"time"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/id"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// Recorder escribe entradas de auditoría en el ledger. Un fallo de escritura se registra en log
// y no interrumpe la operación auditada.
type Recorder struct {
	runner repository.Runner
	log    *logger.Logger
	clock  func() time.Time
}

// NewRecorder construye el recorder.
func NewRecorder(runner repository.Runner, log *logger.Logger) *Recorder {
	return &Recorder{runner: runner, log: log.Named("audit"), clock: time.Now}
}

// Record asigna id y timestamp y agrega la entrada.
func (r *Recorder) Record(ctx context.Context, entry entity.AuditEntry) {
	entry.ID = id.NewAuditID()
	if entry.Timestamp.IsZero() {
		entry.Timestamp = entity.TruncateTimestamp(r.clock())
	}
	// la petición puede cancelarse justo después de responder
	ctx = context.WithoutCancel(ctx)
	err := r.runner.Run(ctx, func(repos repository.Repositories) error {
		return repos.Audit.Append(ctx, &entry)
	})
	if err != nil {
		r.log.Error().Err(err).Str("action", entry.Action).Str("resource_id", entry.ResourceID).
			Msg("no se pudo registrar la auditoría")
	}
}

// List página de la bitácora, más reciente primero.
func (r *Recorder) List(ctx context.Context, page dto.PageRequest) (*dto.AuditListResponse, error) {
	page.DefaultPage()
	var entries []*entity.AuditEntry
	err := r.runner.Run(ctx, func(repos repository.Repositories) error {
		var err error
		entries, err = repos.Audit.List(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	slices.SortFunc(entries, func(a, b *entity.AuditEntry) int {
		if c := b.Timestamp.Compare(a.Timestamp); c != 0 {
			return c
		}
		return cmp.Compare(b.ID, a.ID)
	})

	from, to := page.Window(len(entries))
	out := &dto.AuditListResponse{
		Page:    dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: len(entries)},
		Entries: make([]dto.AuditEntryResponse, 0, to-from),
	}
	for _, e := range entries[from:to] {
		out.Entries = append(out.Entries, dto.ToAuditEntryResponse(e))
	}
	return out, nil
}

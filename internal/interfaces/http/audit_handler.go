package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/audit"
	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/pkg/validator"
)

// AuditHandler expone la bitácora (admin).
type AuditHandler struct {
	rec *audit.Recorder
}

// NewAuditHandler construye el handler.
func NewAuditHandler(rec *audit.Recorder) *AuditHandler {
	return &AuditHandler{rec: rec}
}

// List godoc
// @Summary      Bitácora de auditoría, más reciente primero
// @Tags         audit
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "máximo 500"
// @Param        offset  query  int  false  "desplazamiento"
// @Success      200  {object}  dto.AuditListResponse
// @Router       /api/audit [get]
func (h *AuditHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return writeError(c, domain.NewValidationError("limit", "paginación inválida"))
	}
	if e := validator.FirstError(page); e != nil {
		return writeError(c, domain.NewValidationError(e.FailedField, e.Message()))
	}
	out, err := h.rec.List(c.UserContext(), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// InventoryHandler maneja transacciones, verificación y snapshot (protegido).
type InventoryHandler struct {
	uc *inventory.UseCase
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(uc *inventory.UseCase) *InventoryHandler {
	return &InventoryHandler{uc: uc}
}

// RecordTransaction godoc
// @Summary      Registrar transacción de inventario
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.RecordTransactionRequest  true  "sku, type (IN/OUT/ADJUSTMENT), quantity, reason"
// @Success      201   {object}  dto.TransactionRecordedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions [post]
func (h *InventoryHandler) RecordTransaction(c *fiber.Ctx) error {
	var in dto.RecordTransactionRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.RecordTransaction(c.UserContext(), in, actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// Verify godoc
// @Summary      Verificar integridad de una transacción
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "transaction_id"
// @Success      200  {object}  dto.VerifyTransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions/{id}/verify [get]
func (h *InventoryHandler) Verify(c *fiber.Ctx) error {
	out, err := h.uc.VerifyTransaction(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// Snapshot godoc
// @Summary      Stock actual de todos los productos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.SnapshotResponse
// @Router       /api/inventory/snapshot [get]
func (h *InventoryHandler) Snapshot(c *fiber.Ctx) error {
	out, err := h.uc.GetSnapshot(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// SnapshotPDF godoc
// @Summary      Snapshot en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Success      200  {file}  binary
// @Router       /api/inventory/snapshot/pdf [get]
func (h *InventoryHandler) SnapshotPDF(c *fiber.Ctx) error {
	pdf, err := h.uc.SnapshotReportPDF(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, `inline; filename="snapshot.pdf"`)
	return c.Send(pdf)
}

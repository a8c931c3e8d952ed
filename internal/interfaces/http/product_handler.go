package http

import (
	"net/url"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
)

// ProductHandler maneja alta y consultas de productos (protegido).
type ProductHandler struct {
	uc *inventory.UseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *inventory.UseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// Create godoc
// @Summary      Registrar producto con stock inicial
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "sku, name, price, quantity"
// @Success      201   {object}  dto.ProductCreatedResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := c.BodyParser(&in); err != nil {
		return invalidBody(c)
	}
	out, err := h.uc.AddProduct(c.UserContext(), in, actor(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// List godoc
// @Summary      Listar productos
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ProductResponse
// @Router       /api/products [get]
func (h *ProductHandler) List(c *fiber.Ctx) error {
	list, err := h.uc.ListProducts(c.UserContext())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(fiber.Map{"total": len(list), "products": list})
}

// Get godoc
// @Summary      Detalle de producto con stock actual
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        sku  path  string  true  "SKU"
// @Success      200  {object}  dto.ProductDetailsResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{sku} [get]
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	out, err := h.uc.GetProductDetails(c.UserContext(), skuParam(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// History godoc
// @Summary      Historial de transacciones con saldo acumulado
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        sku  path  string  true  "SKU"
// @Success      200  {object}  dto.HistoryResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{sku}/history [get]
func (h *ProductHandler) History(c *fiber.Ctx) error {
	out, err := h.uc.GetHistory(c.UserContext(), skuParam(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// TimeTravel godoc
// @Summary      Stock histórico en un instante
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        sku        path   string  true  "SKU"
// @Param        timestamp  query  string  true  "Instante ISO-8601, p. ej. 2024-01-10T08:00:00.000Z"
// @Success      200  {object}  dto.TimeTravelResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{sku}/time-travel [get]
func (h *ProductHandler) TimeTravel(c *fiber.Ctx) error {
	out, err := h.uc.TimeTravel(c.UserContext(), skuParam(c), c.Query("timestamp"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// skuParam los SKU pueden traer caracteres escapados en la ruta.
func skuParam(c *fiber.Ctx) string {
	raw := c.Params("sku")
	if s, err := url.PathUnescape(raw); err == nil {
		return s
	}
	return raw
}

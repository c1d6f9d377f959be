package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/geststore-api/internal/application/dto"
	"github.com/jhoicas/geststore-api/internal/application/inventory"
)

// StockHandler expone el libro de stock: lecturas, correcciones y entradas/salidas.
type StockHandler struct {
	uc            *inventory.StockUseCase
	replenishment *inventory.ReplenishmentUseCase
}

// NewStockHandler construye el handler.
func NewStockHandler(uc *inventory.StockUseCase, replenishment *inventory.ReplenishmentUseCase) *StockHandler {
	return &StockHandler{uc: uc, replenishment: replenishment}
}

// GetByID godoc
// @Summary      Obtener stock por ID
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del stock"
// @Success      200  {object}  dto.StockResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/stock/{id} [get]
func (h *StockHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "Stock")
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	return reply(c, out, err)
}

// GetByProduct godoc
// @Summary      Stock de un producto
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200        {object}  dto.StockResponse
// @Failure      404        {object}  dto.ErrorResponse
// @Router       /api/stock/product/{productId} [get]
func (h *StockHandler) GetByProduct(c *fiber.Ctx) error {
	productID, err := pathID(c, "productId", "Product")
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.GetByProduct(c.UserContext(), productID)
	return reply(c, out, err)
}

// LowStock godoc
// @Summary      Stocks bajo el mínimo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockResponse
// @Router       /api/stock/low-stock [get]
func (h *StockHandler) LowStock(c *fiber.Ctx) error {
	out, err := h.uc.LowStock(c.UserContext())
	return reply(c, out, err)
}

// Critical godoc
// @Summary      Stocks en o bajo el mínimo
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockResponse
// @Router       /api/stock/critical [get]
func (h *StockHandler) Critical(c *fiber.Ctx) error {
	out, err := h.uc.Critical(c.UserContext())
	return reply(c, out, err)
}

// OutOfStock godoc
// @Summary      Stocks agotados
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.StockResponse
// @Router       /api/stock/out-of-stock [get]
func (h *StockHandler) OutOfStock(c *fiber.Ctx) error {
	out, err := h.uc.OutOfStock(c.UserContext())
	return reply(c, out, err)
}

// MostReserved godoc
// @Summary      Stocks con más unidades reservadas
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        limit  query  int  false  "Máximo de resultados (default 10)"
// @Success      200    {array}  dto.StockResponse
// @Router       /api/stock/most-reserved [get]
func (h *StockHandler) MostReserved(c *fiber.Ctx) error {
	out, err := h.uc.MostReserved(c.UserContext(), c.QueryInt("limit", 0))
	return reply(c, out, err)
}

// Value godoc
// @Summary      Valor total del inventario
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.InventoryValueResponse
// @Router       /api/stock/value [get]
func (h *StockHandler) Value(c *fiber.Ctx) error {
	out, err := h.uc.InventoryValue(c.UserContext())
	return reply(c, out, err)
}

// Statistics godoc
// @Summary      Estadísticas del almacén
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.StockStatisticsResponse
// @Router       /api/stock/statistics [get]
func (h *StockHandler) Statistics(c *fiber.Ctx) error {
	out, err := h.uc.Statistics(c.UserContext())
	return reply(c, out, err)
}

// Replenishment godoc
// @Summary      Lista de reposición sugerida
// @Description  Stocks en o bajo su mínimo con cantidad sugerida (⌈mínimo×1.5⌉ - disponible) y costo estimado.
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.ReplenishmentSuggestionDTO
// @Router       /api/stock/replenishment [get]
func (h *StockHandler) Replenishment(c *fiber.Ctx) error {
	out, err := h.replenishment.GenerateReplenishmentList(c.UserContext())
	return reply(c, out, err)
}

// Movements godoc
// @Summary      Historial de movimientos de un stock
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID del stock"
// @Param        limit   query  int     false  "Límite (default 20)"
// @Param        offset  query  int     false  "Offset"
// @Success      200     {array}  dto.StockMovementResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/stock/{id}/movements [get]
func (h *StockHandler) Movements(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "Stock")
	if err != nil {
		return handleError(c, err)
	}
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Movements(c.UserContext(), id, page)
	return reply(c, out, err)
}

// Update godoc
// @Summary      Corrección administrativa del stock
// @Description  Solo se aplican los campos presentes; la diferencia queda como movimiento ADJUSTMENT.
// @Tags         stock
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                  true  "ID del stock"
// @Param        body  body  dto.UpdateStockRequest  true  "Campos a corregir"
// @Success      200   {object}  dto.StockResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/stock/{id} [put]
func (h *StockHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "Stock")
	if err != nil {
		return handleError(c, err)
	}
	var in dto.UpdateStockRequest
	if err := bindJSON(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), GetUserID(c), id, in)
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, fiber.StatusOK, "stock actualizado", out)
}

// Increase godoc
// @Summary      Entrada de unidades
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id               path    string  true   "ID del stock"
// @Param        quantity         query   int     true   "Unidades (> 0)"
// @Param        Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Success      200              {object}  dto.StockResponse
// @Failure      404              {object}  dto.ErrorResponse
// @Failure      422              {object}  dto.ErrorResponse  "INVALID_QUANTITY"
// @Router       /api/stock/{id}/increase [post]
func (h *StockHandler) Increase(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "Stock")
	if err != nil {
		return handleError(c, err)
	}
	qty, err := queryInt(c, "quantity")
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Increase(c.UserContext(), GetUserID(c), id, qty)
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, fiber.StatusOK, "stock incrementado", out)
}

// Decrease godoc
// @Summary      Salida de unidades
// @Tags         stock
// @Security     Bearer
// @Produce      json
// @Param        id               path    string  true   "ID del stock"
// @Param        quantity         query   int     true   "Unidades (> 0)"
// @Param        Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Success      200              {object}  dto.StockResponse
// @Failure      404              {object}  dto.ErrorResponse
// @Failure      422              {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK o INVALID_QUANTITY"
// @Router       /api/stock/{id}/decrease [post]
func (h *StockHandler) Decrease(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "Stock")
	if err != nil {
		return handleError(c, err)
	}
	qty, err := queryInt(c, "quantity")
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Decrease(c.UserContext(), GetUserID(c), id, qty)
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, fiber.StatusOK, "stock decrementado", out)
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/geststore-api/internal/application/dto"
	"github.com/jhoicas/geststore-api/internal/application/tasks"
)

// TaskProductHandler asignación de productos a tareas (reserva, uso y liberación).
type TaskProductHandler struct {
	uc *tasks.TaskProductUseCase
}

// NewTaskProductHandler construye el handler.
func NewTaskProductHandler(uc *tasks.TaskProductUseCase) *TaskProductHandler {
	return &TaskProductHandler{uc: uc}
}

// Assign godoc
// @Summary      Asignar producto a tarea
// @Description  Reserva la cantidad en el stock del producto.
// @Tags         task-products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        taskId           query   string                    true   "ID de la tarea"
// @Param        productId        query   string                    true   "ID del producto"
// @Param        body             body    dto.AssignProductRequest  true   "quantity, notes"
// @Param        Idempotency-Key  header  string                    false  "Clave de idempotencia"
// @Success      201              {object}  dto.TaskProductResponse
// @Failure      400              {object}  dto.ErrorResponse
// @Failure      404              {object}  dto.ErrorResponse
// @Failure      422              {object}  dto.ErrorResponse  "INSUFFICIENT_STOCK, DUPLICATE_ASSIGNMENT, INVALID_TASK_STATE..."
// @Router       /api/task-products/assign [post]
func (h *TaskProductHandler) Assign(c *fiber.Ctx) error {
	taskID, err := queryID(c, "taskId", "Task")
	if err != nil {
		return handleError(c, err)
	}
	productID, err := queryID(c, "productId", "Product")
	if err != nil {
		return handleError(c, err)
	}
	var in dto.AssignProductRequest
	if err := bindJSON(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Assign(c.UserContext(), actor(c), taskID, productID, in)
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, fiber.StatusCreated, "producto asignado", out)
}

// Update godoc
// @Summary      Cambiar cantidad asignada
// @Description  Reserva o libera la diferencia. La cantidad no puede bajar de lo ya usado.
// @Tags         task-products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID de la asignación"
// @Param        body  body  dto.AssignProductRequest  true  "quantity, notes"
// @Success      200   {object}  dto.TaskProductResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/task-products/{id} [put]
func (h *TaskProductHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "TaskProduct")
	if err != nil {
		return handleError(c, err)
	}
	var in dto.AssignProductRequest
	if err := bindJSON(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), actor(c), id, in)
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, fiber.StatusOK, "asignación actualizada", out)
}

// Use godoc
// @Summary      Registrar cantidad usada
// @Tags         task-products
// @Security     Bearer
// @Produce      json
// @Param        id               path    string  true   "ID de la asignación"
// @Param        quantityUsed     query   int     true   "0 ≤ usada ≤ asignada"
// @Param        Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Success      200              {object}  dto.TaskProductResponse
// @Failure      403              {object}  dto.ErrorResponse
// @Failure      404              {object}  dto.ErrorResponse
// @Failure      422              {object}  dto.ErrorResponse  "INVALID_QUANTITY o INVALID_TASK_STATE"
// @Router       /api/task-products/{id}/use [post]
func (h *TaskProductHandler) Use(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "TaskProduct")
	if err != nil {
		return handleError(c, err)
	}
	used, err := queryInt(c, "quantityUsed")
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Use(c.UserContext(), actor(c), id, used)
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, fiber.StatusOK, "uso registrado", out)
}

// Remove godoc
// @Summary      Quitar producto de la tarea
// @Description  Libera lo pendiente salvo que la tarea esté cancelada.
// @Tags         task-products
// @Security     Bearer
// @Param        id   path  string  true  "ID de la asignación"
// @Success      200  {object}  dto.APIResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse  "INVALID_TASK_STATE"
// @Router       /api/task-products/{id} [delete]
func (h *TaskProductHandler) Remove(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "TaskProduct")
	if err != nil {
		return handleError(c, err)
	}
	if err := h.uc.Remove(c.UserContext(), actor(c), id); err != nil {
		return handleError(c, err)
	}
	return respond(c, fiber.StatusOK, "asignación eliminada", nil)
}

// ListByTask godoc
// @Summary      Productos de una tarea
// @Tags         task-products
// @Security     Bearer
// @Produce      json
// @Param        taskId  path  string  true  "ID de la tarea"
// @Success      200     {array}  dto.TaskProductResponse
// @Failure      404     {object}  dto.ErrorResponse
// @Router       /api/task-products/task/{taskId} [get]
func (h *TaskProductHandler) ListByTask(c *fiber.Ctx) error {
	taskID, err := pathID(c, "taskId", "Task")
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.ListByTask(c.UserContext(), taskID)
	return reply(c, out, err)
}

// ListUnused godoc
// @Summary      Productos de una tarea sin uso registrado
// @Tags         task-products
// @Security     Bearer
// @Produce      json
// @Param        taskId  path  string  true  "ID de la tarea"
// @Success      200     {array}  dto.TaskProductResponse
// @Router       /api/task-products/task/{taskId}/unused [get]
func (h *TaskProductHandler) ListUnused(c *fiber.Ctx) error {
	taskID, err := pathID(c, "taskId", "Task")
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.ListUnusedByTask(c.UserContext(), taskID)
	return reply(c, out, err)
}

// ListUsed godoc
// @Summary      Productos de una tarea con uso registrado
// @Tags         task-products
// @Security     Bearer
// @Produce      json
// @Param        taskId  path  string  true  "ID de la tarea"
// @Success      200     {array}  dto.TaskProductResponse
// @Router       /api/task-products/task/{taskId}/used [get]
func (h *TaskProductHandler) ListUsed(c *fiber.Ctx) error {
	taskID, err := pathID(c, "taskId", "Task")
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.ListUsedByTask(c.UserContext(), taskID)
	return reply(c, out, err)
}

// ListByProduct godoc
// @Summary      Asignaciones de un producto
// @Tags         task-products
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200        {array}  dto.TaskProductResponse
// @Router       /api/task-products/product/{productId} [get]
func (h *TaskProductHandler) ListByProduct(c *fiber.Ctx) error {
	productID, err := pathID(c, "productId", "Product")
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.ListByProduct(c.UserContext(), productID)
	return reply(c, out, err)
}

// TotalReserved godoc
// @Summary      Total reservado de un producto en tareas activas
// @Tags         task-products
// @Security     Bearer
// @Produce      json
// @Param        productId  path  string  true  "ID del producto"
// @Success      200        {object}  dto.ReservedQuantityResponse
// @Router       /api/task-products/product/{productId}/reserved [get]
func (h *TaskProductHandler) TotalReserved(c *fiber.Ctx) error {
	productID, err := pathID(c, "productId", "Product")
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.TotalReserved(c.UserContext(), productID)
	return reply(c, out, err)
}

// Discrepancies godoc
// @Summary      Asignaciones con uso distinto de lo asignado
// @Tags         task-products
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.TaskProductResponse
// @Router       /api/task-products/discrepancies [get]
func (h *TaskProductHandler) Discrepancies(c *fiber.Ctx) error {
	out, err := h.uc.ListDiscrepancies(c.UserContext())
	return reply(c, out, err)
}

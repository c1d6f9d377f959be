package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/geststore-api/internal/application/dto"
	"github.com/jhoicas/geststore-api/internal/application/tasks"
	"github.com/jhoicas/geststore-api/internal/domain"
)

// TaskHandler ciclo de vida de tareas y sus consultas.
type TaskHandler struct {
	uc *tasks.TaskUseCase
}

// NewTaskHandler construye el handler.
func NewTaskHandler(uc *tasks.TaskUseCase) *TaskHandler {
	return &TaskHandler{uc: uc}
}

// Create godoc
// @Summary      Crear tarea
// @Description  Se crea en PENDING. Si trae asignado, se valida el máximo de tareas activas por trabajador.
// @Tags         tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTaskRequest  true  "Datos de la tarea"
// @Success      201   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse  "MAX_ACTIVE_TASKS_EXCEEDED"
// @Router       /api/tasks [post]
func (h *TaskHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateTaskRequest
	if err := bindJSON(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Create(c.UserContext(), actor(c), in)
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, fiber.StatusCreated, "tarea creada", out)
}

// List godoc
// @Summary      Listar tareas
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Param        limit   query  int  false  "Límite (default 20)"
// @Param        offset  query  int  false  "Offset"
// @Success      200     {object}  dto.TaskListResponse
// @Router       /api/tasks [get]
func (h *TaskHandler) List(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := bindQuery(c, &page); err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.List(c.UserContext(), page)
	return reply(c, out, err)
}

// GetByID godoc
// @Summary      Obtener tarea con sus productos
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la tarea"
// @Success      200  {object}  dto.TaskResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tasks/{id} [get]
func (h *TaskHandler) GetByID(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "Task")
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.GetByID(c.UserContext(), id)
	return reply(c, out, err)
}

// Update godoc
// @Summary      Actualizar tarea
// @Tags         tasks
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                 true  "ID de la tarea"
// @Param        body  body  dto.UpdateTaskRequest  true  "Campos a actualizar"
// @Success      200   {object}  dto.TaskResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse  "INVALID_TASK_STATE o MAX_ACTIVE_TASKS_EXCEEDED"
// @Router       /api/tasks/{id} [put]
func (h *TaskHandler) Update(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "Task")
	if err != nil {
		return handleError(c, err)
	}
	var in dto.UpdateTaskRequest
	if err := bindJSON(c, &in); err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Update(c.UserContext(), actor(c), id, in)
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, fiber.StatusOK, "tarea actualizada", out)
}

// Delete godoc
// @Summary      Eliminar tarea
// @Description  Si la tarea no es terminal, libera lo pendiente de cada asignación antes de borrarla.
// @Tags         tasks
// @Security     Bearer
// @Param        id   path  string  true  "ID de la tarea"
// @Success      200  {object}  dto.APIResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/tasks/{id} [delete]
func (h *TaskHandler) Delete(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "Task")
	if err != nil {
		return handleError(c, err)
	}
	if err := h.uc.Delete(c.UserContext(), actor(c), id); err != nil {
		return handleError(c, err)
	}
	return respond(c, fiber.StatusOK, "tarea eliminada", nil)
}

// Start godoc
// @Summary      Iniciar tarea (PENDING → IN_PROGRESS)
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Param        id               path    string  true   "ID de la tarea"
// @Param        Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Success      200              {object}  dto.TaskResponse
// @Failure      403              {object}  dto.ErrorResponse
// @Failure      404              {object}  dto.ErrorResponse
// @Failure      422              {object}  dto.ErrorResponse  "INVALID_TASK_STATE"
// @Router       /api/tasks/{id}/start [post]
func (h *TaskHandler) Start(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "Task")
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Start(c.UserContext(), actor(c), id)
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, fiber.StatusOK, "tarea iniciada", out)
}

// Complete godoc
// @Summary      Completar tarea (IN_PROGRESS → COMPLETED)
// @Description  Exige que todos los productos estén usados por completo; lo usado sale del reservado y vuelve al disponible.
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Param        id               path    string  true   "ID de la tarea"
// @Param        Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Success      200              {object}  dto.TaskResponse
// @Failure      403              {object}  dto.ErrorResponse
// @Failure      404              {object}  dto.ErrorResponse
// @Failure      422              {object}  dto.ErrorResponse  "INVALID_TASK_STATE o INCOMPLETE_PRODUCTS"
// @Router       /api/tasks/{id}/complete [post]
func (h *TaskHandler) Complete(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "Task")
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Complete(c.UserContext(), actor(c), id)
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, fiber.StatusOK, "tarea completada", out)
}

// Cancel godoc
// @Summary      Cancelar tarea
// @Description  Libera lo pendiente (cantidad - usada) de cada asignación.
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Param        id               path    string  true   "ID de la tarea"
// @Param        Idempotency-Key  header  string  false  "Clave de idempotencia"
// @Success      200              {object}  dto.TaskResponse
// @Failure      404              {object}  dto.ErrorResponse
// @Failure      422              {object}  dto.ErrorResponse  "INVALID_TASK_STATE"
// @Router       /api/tasks/{id}/cancel [post]
func (h *TaskHandler) Cancel(c *fiber.Ctx) error {
	id, err := pathID(c, "id", "Task")
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Cancel(c.UserContext(), actor(c), id)
	if err != nil {
		return handleError(c, err)
	}
	return respond(c, fiber.StatusOK, "tarea cancelada", out)
}

// ListByUser godoc
// @Summary      Tareas asignadas a un usuario
// @Description  Un WORKER solo puede consultar las suyas.
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Param        userId  path  string  true  "ID del usuario"
// @Success      200     {array}  dto.TaskResponse
// @Failure      403     {object}  dto.ErrorResponse
// @Router       /api/tasks/user/{userId} [get]
func (h *TaskHandler) ListByUser(c *fiber.Ctx) error {
	userID, err := pathID(c, "userId", "User")
	if err != nil {
		return handleError(c, err)
	}
	if a := actor(c); a.IsWorker() && a.UserID != userID {
		return handleError(c, domain.ErrForbidden)
	}
	out, err := h.uc.ListByAssignee(c.UserContext(), userID)
	return reply(c, out, err)
}

// ListByCreator godoc
// @Summary      Tareas creadas por un usuario
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Param        userId  path  string  true  "ID del usuario"
// @Success      200     {array}  dto.TaskResponse
// @Router       /api/tasks/created-by/{userId} [get]
func (h *TaskHandler) ListByCreator(c *fiber.Ctx) error {
	userID, err := pathID(c, "userId", "User")
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.ListByCreator(c.UserContext(), userID)
	return reply(c, out, err)
}

// ListUnassigned godoc
// @Summary      Tareas sin asignar (por prioridad)
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.TaskResponse
// @Router       /api/tasks/unassigned [get]
func (h *TaskHandler) ListUnassigned(c *fiber.Ctx) error {
	out, err := h.uc.ListUnassigned(c.UserContext())
	return reply(c, out, err)
}

// ListInProgress godoc
// @Summary      Tareas en progreso
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.TaskResponse
// @Router       /api/tasks/in-progress [get]
func (h *TaskHandler) ListInProgress(c *fiber.Ctx) error {
	out, err := h.uc.ListInProgress(c.UserContext())
	return reply(c, out, err)
}

// ListOverdue godoc
// @Summary      Tareas vencidas
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.TaskResponse
// @Router       /api/tasks/overdue [get]
func (h *TaskHandler) ListOverdue(c *fiber.Ctx) error {
	out, err := h.uc.ListOverdue(c.UserContext())
	return reply(c, out, err)
}

// ListHighPriority godoc
// @Summary      Tareas activas de prioridad alta
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.TaskResponse
// @Router       /api/tasks/high-priority [get]
func (h *TaskHandler) ListHighPriority(c *fiber.Ctx) error {
	out, err := h.uc.ListHighPriority(c.UserContext())
	return reply(c, out, err)
}

// Search godoc
// @Summary      Buscar tareas por título o descripción
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Param        q    query  string  true  "Texto a buscar"
// @Success      200  {array}  dto.TaskResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/tasks/search [get]
func (h *TaskHandler) Search(c *fiber.Ctx) error {
	q, err := queryString(c, "q")
	if err != nil {
		return handleError(c, err)
	}
	out, err := h.uc.Search(c.UserContext(), q)
	return reply(c, out, err)
}

// Statistics godoc
// @Summary      Conteo de tareas por estado
// @Tags         tasks
// @Security     Bearer
// @Produce      json
// @Success      200  {object}  dto.TaskStatisticsResponse
// @Router       /api/tasks/statistics [get]
func (h *TaskHandler) Statistics(c *fiber.Ctx) error {
	out, err := h.uc.Statistics(c.UserContext())
	return reply(c, out, err)
}

package tasks

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/geststore-api/internal/application/dto"
	"github.com/jhoicas/geststore-api/internal/application/inventory"
	"github.com/jhoicas/geststore-api/internal/domain"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
	"github.com/jhoicas/geststore-api/internal/domain/repository"
	"github.com/jhoicas/geststore-api/pkg/logger"
	"github.com/jhoicas/geststore-api/pkg/metrics"
)

// TaskUseCase ciclo de vida de tareas: PENDING -> IN_PROGRESS -> COMPLETED | CANCELLED (y PENDING -> CANCELLED).
// Cada operación es una transacción; la tarea se lee con GetForUpdate.
type TaskUseCase struct {
	txRunner        repository.TxRunner
	taskRepo        repository.TaskRepository
	taskProductRepo repository.TaskProductRepository
	userRepo        repository.UserRepository
	ledger          *inventory.Ledger
	maxActive       int
	log             *logger.Logger
	metrics         *metrics.Recorder
}

// NewTaskUseCase construye el caso de uso. maxActive <= 0 usa DefaultMaxActivePerWorker.
func NewTaskUseCase(
	txRunner repository.TxRunner,
	taskRepo repository.TaskRepository,
	taskProductRepo repository.TaskProductRepository,
	userRepo repository.UserRepository,
	ledger *inventory.Ledger,
	maxActive int,
	log *logger.Logger,
	rec *metrics.Recorder,
) *TaskUseCase {
	if maxActive <= 0 {
		maxActive = DefaultMaxActivePerWorker
	}
	if log == nil {
		log = logger.Nop()
	}
	return &TaskUseCase{
		txRunner:        txRunner,
		taskRepo:        taskRepo,
		taskProductRepo: taskProductRepo,
		userRepo:        userRepo,
		ledger:          ledger,
		maxActive:       maxActive,
		log:             log.Component("tasks"),
		metrics:         rec,
	}
}

// Create crea una tarea en PENDING. El creador es el actor; si hay asignado se valida su límite de tareas activas.
func (uc *TaskUseCase) Create(ctx context.Context, actor Actor, in dto.CreateTaskRequest) (*dto.TaskResponse, error) {
	priority := entity.PriorityMedium
	if in.Priority != "" {
		priority = entity.TaskPriority(in.Priority)
		if !priority.Valid() {
			return nil, domain.ErrInvalidInput
		}
	}
	var task *entity.Task
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		creator, err := tx.Users().GetByID(ctx, actor.UserID)
		if err != nil {
			return err
		}
		if creator == nil {
			return domain.NewNotFound("User", actor.UserID)
		}
		if in.AssignedToUserID != nil {
			if err := uc.checkAssignee(ctx, tx, *in.AssignedToUserID); err != nil {
				return err
			}
		}
		now := uc.ledger.Now()
		task = &entity.Task{
			ID:          uuid.New().String(),
			Title:       in.Title,
			Description: in.Description,
			Status:      entity.TaskPending,
			Priority:    priority,
			DueDate:     in.DueDate,
			AssignedTo:  in.AssignedToUserID,
			CreatedBy:   creator.ID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		return tx.Tasks().Create(ctx, task)
	})
	if err != nil {
		return nil, uc.fail("create", err)
	}
	uc.ok("create", task, "tarea creada")
	return dto.ToTaskResponse(task, uc.ledger.Now()), nil
}

// checkAssignee bloquea la fila del usuario y verifica que tenga menos de maxActive tareas no terminales.
func (uc *TaskUseCase) checkAssignee(ctx context.Context, tx repository.Tx, userID string) error {
	user, err := tx.Users().GetForUpdate(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.NewNotFound("User", userID)
	}
	active, err := tx.Tasks().CountActiveByAssignee(ctx, userID)
	if err != nil {
		return fmt.Errorf("contar tareas activas: %w", err)
	}
	if active >= uc.maxActive {
		return domain.NewBusinessRule(domain.CodeMaxActiveTasksExceeded,
			"el usuario %s ya tiene %d tareas activas (máximo %d)", userID, active, uc.maxActive)
	}
	return nil
}

// Update modifica título, descripción, prioridad, vencimiento o asignado de una tarea no terminal.
// Reasignar a otro usuario aplica el mismo límite de tareas activas.
func (uc *TaskUseCase) Update(ctx context.Context, actor Actor, taskID string, in dto.UpdateTaskRequest) (*dto.TaskResponse, error) {
	var task *entity.Task
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		var err error
		task, err = uc.lockTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if task.Status.IsTerminal() {
			return domain.InvalidTaskState("no se puede modificar una tarea en estado %s", task.Status)
		}
		if in.Title != nil {
			task.Title = *in.Title
		}
		if in.Description != nil {
			task.Description = *in.Description
		}
		if in.Priority != nil {
			p := entity.TaskPriority(*in.Priority)
			if !p.Valid() {
				return domain.ErrInvalidInput
			}
			task.Priority = p
		}
		if in.DueDate != nil {
			task.DueDate = in.DueDate
		}
		switch {
		case in.UnassignUser:
			task.AssignedTo = nil
		case in.AssignedToUserID != nil && !task.IsAssignedTo(*in.AssignedToUserID):
			if err := uc.checkAssignee(ctx, tx, *in.AssignedToUserID); err != nil {
				return err
			}
			assignee := *in.AssignedToUserID
			task.AssignedTo = &assignee
		}
		task.UpdatedAt = uc.ledger.Now()
		return tx.Tasks().Update(ctx, task)
	})
	if err != nil {
		return nil, uc.fail("update", err)
	}
	uc.ok("update", task, "tarea actualizada")
	return dto.ToTaskResponse(task, uc.ledger.Now()), nil
}

// Start PENDING -> IN_PROGRESS. Un WORKER solo puede iniciar tareas que tenga asignadas.
func (uc *TaskUseCase) Start(ctx context.Context, actor Actor, taskID string) (*dto.TaskResponse, error) {
	var task *entity.Task
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		var err error
		task, err = uc.lockTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if err := checkOwnership(actor, task); err != nil {
			return err
		}
		if !task.Start(uc.ledger.Now()) {
			return domain.InvalidTaskState("solo se puede iniciar una tarea PENDING (actual: %s)", task.Status)
		}
		return tx.Tasks().Update(ctx, task)
	})
	if err != nil {
		return nil, uc.fail("start", err)
	}
	uc.ok("start", task, "tarea iniciada")
	return dto.ToTaskResponse(task, uc.ledger.Now()), nil
}

// Complete IN_PROGRESS -> COMPLETED. Exige que toda asignación esté consumida por completo
// y libera del reservado las unidades usadas (vuelven al disponible).
func (uc *TaskUseCase) Complete(ctx context.Context, actor Actor, taskID string) (*dto.TaskResponse, error) {
	var task *entity.Task
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		var err error
		task, err = uc.lockTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if err := checkOwnership(actor, task); err != nil {
			return err
		}
		if task.Status != entity.TaskInProgress {
			return domain.InvalidTaskState("solo se puede completar una tarea IN_PROGRESS (actual: %s)", task.Status)
		}
		assignments, err := tx.TaskProducts().ListByTask(ctx, task.ID)
		if err != nil {
			return err
		}
		for _, tp := range assignments {
			if !tp.FullyUsed() {
				return domain.NewBusinessRule(domain.CodeIncompleteProducts,
					"todos los productos asignados deben consumirse antes de completar: %s usado %d de %d",
					tp.ProductID, tp.QuantityUsed, tp.Quantity)
			}
		}
		stocks, err := lockStocks(ctx, tx, assignments)
		if err != nil {
			return err
		}
		ref := inventory.MovementRef{TaskID: &task.ID, ActorID: actor.UserID, Reference: "task:complete"}
		for _, tp := range assignments {
			if tp.QuantityUsed == 0 {
				continue
			}
			if err := uc.ledger.Apply(ctx, tx, stocks[tp.ProductID], entity.MovementRelease, tp.QuantityUsed, ref); err != nil {
				return err
			}
		}
		task.Complete(uc.ledger.Now())
		return tx.Tasks().Update(ctx, task)
	})
	if err != nil {
		return nil, uc.fail("complete", err)
	}
	uc.ok("complete", task, "tarea completada")
	return dto.ToTaskResponse(task, uc.ledger.Now()), nil
}

// Cancel PENDING|IN_PROGRESS -> CANCELLED. Libera lo pendiente de cada asignación (quantity - quantityUsed);
// las asignaciones se conservan.
func (uc *TaskUseCase) Cancel(ctx context.Context, actor Actor, taskID string) (*dto.TaskResponse, error) {
	var task *entity.Task
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		var err error
		task, err = uc.lockTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if task.Status.IsTerminal() {
			return domain.InvalidTaskState("no se puede cancelar una tarea en estado %s", task.Status)
		}
		if err := uc.releaseOutstanding(ctx, tx, actor, task, "task:cancel"); err != nil {
			return err
		}
		task.Cancel(uc.ledger.Now())
		return tx.Tasks().Update(ctx, task)
	})
	if err != nil {
		return nil, uc.fail("cancel", err)
	}
	uc.ok("cancel", task, "tarea cancelada")
	return dto.ToTaskResponse(task, uc.ledger.Now()), nil
}

// Delete borra la tarea y sus asignaciones. Si no es terminal, primero libera lo pendiente.
func (uc *TaskUseCase) Delete(ctx context.Context, actor Actor, taskID string) error {
	var task *entity.Task
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		var err error
		task, err = uc.lockTask(ctx, tx, taskID)
		if err != nil {
			return err
		}
		if task.IsActive() {
			if err := uc.releaseOutstanding(ctx, tx, actor, task, "task:delete"); err != nil {
				return err
			}
		}
		return tx.Tasks().Delete(ctx, task.ID)
	})
	if err != nil {
		return uc.fail("delete", err)
	}
	uc.ok("delete", task, "tarea eliminada")
	return nil
}

func (uc *TaskUseCase) releaseOutstanding(ctx context.Context, tx repository.Tx, actor Actor, task *entity.Task, reference string) error {
	assignments, err := tx.TaskProducts().ListByTask(ctx, task.ID)
	if err != nil {
		return err
	}
	stocks, err := lockStocks(ctx, tx, assignments)
	if err != nil {
		return err
	}
	ref := inventory.MovementRef{TaskID: &task.ID, ActorID: actor.UserID, Reference: reference}
	for _, tp := range assignments {
		if tp.Outstanding() == 0 {
			continue
		}
		if err := uc.ledger.Apply(ctx, tx, stocks[tp.ProductID], entity.MovementRelease, tp.Outstanding(), ref); err != nil {
			return err
		}
	}
	return nil
}

func (uc *TaskUseCase) lockTask(ctx context.Context, tx repository.Tx, taskID string) (*entity.Task, error) {
	task, err := tx.Tasks().GetForUpdate(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.NewNotFound("Task", taskID)
	}
	return task, nil
}

func checkOwnership(actor Actor, task *entity.Task) error {
	if actor.IsWorker() && !task.IsAssignedTo(actor.UserID) {
		return domain.ErrForbidden
	}
	return nil
}

// GetByID devuelve la tarea con sus asignaciones.
func (uc *TaskUseCase) GetByID(ctx context.Context, id string) (*dto.TaskResponse, error) {
	task, err := uc.taskRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, domain.NewNotFound("Task", id)
	}
	task.Products, err = uc.taskProductRepo.ListByTask(ctx, id)
	if err != nil {
		return nil, err
	}
	return dto.ToTaskResponse(task, uc.ledger.Now()), nil
}

// List lista tareas paginadas (más recientes primero).
func (uc *TaskUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.TaskListResponse, error) {
	page.DefaultPage()
	list, err := uc.taskRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	counts, err := uc.taskRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return &dto.TaskListResponse{
		Items: dto.ToTaskResponses(list, uc.ledger.Now()),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// ListByAssignee tareas asignadas a userID. Usuario inexistente: NotFound.
func (uc *TaskUseCase) ListByAssignee(ctx context.Context, userID string) ([]dto.TaskResponse, error) {
	if err := uc.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return uc.list(uc.taskRepo.ListByAssignee(ctx, userID))
}

func (uc *TaskUseCase) ListByCreator(ctx context.Context, userID string) ([]dto.TaskResponse, error) {
	if err := uc.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	return uc.list(uc.taskRepo.ListByCreator(ctx, userID))
}

func (uc *TaskUseCase) requireUser(ctx context.Context, userID string) error {
	user, err := uc.userRepo.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return domain.NewNotFound("User", userID)
	}
	return nil
}

// ListUnassigned sin asignado y no canceladas, por prioridad.
func (uc *TaskUseCase) ListUnassigned(ctx context.Context) ([]dto.TaskResponse, error) {
	return uc.list(uc.taskRepo.ListUnassigned(ctx))
}

func (uc *TaskUseCase) ListInProgress(ctx context.Context) ([]dto.TaskResponse, error) {
	return uc.list(uc.taskRepo.ListByStatus(ctx, entity.TaskInProgress))
}

// ListOverdue vencidas y no terminales.
func (uc *TaskUseCase) ListOverdue(ctx context.Context) ([]dto.TaskResponse, error) {
	return uc.list(uc.taskRepo.ListOverdue(ctx, uc.ledger.Now()))
}

// ListHighPriority prioridad HIGH y no terminales.
func (uc *TaskUseCase) ListHighPriority(ctx context.Context) ([]dto.TaskResponse, error) {
	return uc.list(uc.taskRepo.ListHighPriorityActive(ctx))
}

// Search busca texto en título o descripción.
func (uc *TaskUseCase) Search(ctx context.Context, text string) ([]dto.TaskResponse, error) {
	if text == "" {
		return nil, domain.ErrInvalidInput
	}
	return uc.list(uc.taskRepo.Search(ctx, text))
}

// Statistics conteo por estado y vencidas.
func (uc *TaskUseCase) Statistics(ctx context.Context) (*dto.TaskStatisticsResponse, error) {
	counts, err := uc.taskRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	overdue, err := uc.taskRepo.CountOverdue(ctx, uc.ledger.Now())
	if err != nil {
		return nil, err
	}
	stats := &dto.TaskStatisticsResponse{
		Pending:    counts[entity.TaskPending],
		InProgress: counts[entity.TaskInProgress],
		Completed:  counts[entity.TaskCompleted],
		Cancelled:  counts[entity.TaskCancelled],
		Overdue:    overdue,
	}
	stats.Total = stats.Pending + stats.InProgress + stats.Completed + stats.Cancelled
	return stats, nil
}

func (uc *TaskUseCase) list(list []*entity.Task, err error) ([]dto.TaskResponse, error) {
	if err != nil {
		return nil, err
	}
	return dto.ToTaskResponses(list, uc.ledger.Now()), nil
}

func (uc *TaskUseCase) ok(op string, task *entity.Task, msg string) {
	uc.metrics.Operation("task_"+op, metrics.ResultOK)
	ev := uc.log.Info().Str("task_id", task.ID).Str("status", string(task.Status))
	if task.AssignedTo != nil {
		ev = ev.Str("assigned_to", *task.AssignedTo)
	}
	ev.Msg(msg)
}

func (uc *TaskUseCase) fail(op string, err error) error {
	return inventory.ObserveFailure(uc.log, uc.metrics, "task_"+op, err)
}

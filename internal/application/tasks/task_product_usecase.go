package tasks

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jhoicas/geststore-api/internal/application/dto"
	"github.com/jhoicas/geststore-api/internal/application/inventory"
	"github.com/jhoicas/geststore-api/internal/domain"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
	"github.com/jhoicas/geststore-api/internal/domain/repository"
	"github.com/jhoicas/geststore-api/pkg/logger"
	"github.com/jhoicas/geststore-api/pkg/metrics"
)

// TaskProductUseCase asignación de productos a tareas: reserva al asignar, ajusta al actualizar,
// registra consumo y libera lo pendiente al quitar.
type TaskProductUseCase struct {
	txRunner        repository.TxRunner
	taskRepo        repository.TaskRepository
	productRepo     repository.ProductRepository
	taskProductRepo repository.TaskProductRepository
	ledger          *inventory.Ledger
	log             *logger.Logger
	metrics         *metrics.Recorder
}

// NewTaskProductUseCase construye el caso de uso.
func NewTaskProductUseCase(
	txRunner repository.TxRunner,
	taskRepo repository.TaskRepository,
	productRepo repository.ProductRepository,
	taskProductRepo repository.TaskProductRepository,
	ledger *inventory.Ledger,
	log *logger.Logger,
	rec *metrics.Recorder,
) *TaskProductUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &TaskProductUseCase{
		txRunner:        txRunner,
		taskRepo:        taskRepo,
		productRepo:     productRepo,
		taskProductRepo: taskProductRepo,
		ledger:          ledger,
		log:             log.Component("task_products"),
		metrics:         rec,
	}
}

// Assign reserva qty unidades del producto para la tarea y crea la asignación con quantityUsed = 0.
// Orden de validación: existencia, estado de la tarea, duplicado, stock.
func (uc *TaskProductUseCase) Assign(ctx context.Context, actor Actor, taskID, productID string, in dto.AssignProductRequest) (*dto.TaskProductResponse, error) {
	var tp *entity.TaskProduct
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		task, err := tx.Tasks().GetForUpdate(ctx, taskID)
		if err != nil {
			return err
		}
		if task == nil {
			return domain.NewNotFound("Task", taskID)
		}
		product, err := tx.Products().GetByID(ctx, productID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NewNotFound("Product", productID)
		}
		if task.Status.IsTerminal() {
			return domain.InvalidTaskState("no se pueden asignar productos a una tarea %s", task.Status)
		}
		if in.Quantity < 1 {
			return domain.InvalidQuantity("la cantidad asignada debe ser al menos 1: %d", in.Quantity)
		}
		existing, err := tx.TaskProducts().GetByTaskAndProduct(ctx, taskID, productID)
		if err != nil {
			return err
		}
		if existing != nil {
			return duplicateAssignment(productID, taskID)
		}
		stock, err := tx.Stocks().GetByProductForUpdate(ctx, productID)
		if err != nil {
			return err
		}
		if stock == nil {
			return noStock(productID)
		}
		ref := inventory.MovementRef{TaskID: &task.ID, ActorID: actor.UserID, Reference: "assignment:create"}
		if err := uc.ledger.Apply(ctx, tx, stock, entity.MovementReserve, in.Quantity, ref); err != nil {
			return err
		}
		now := uc.ledger.Now()
		tp = &entity.TaskProduct{
			ID:          uuid.New().String(),
			TaskID:      task.ID,
			ProductID:   product.ID,
			Quantity:    in.Quantity,
			Notes:       in.Notes,
			CreatedAt:   now,
			UpdatedAt:   now,
			ProductName: product.Name,
			ProductSKU:  product.SKU,
			TaskStatus:  task.Status,
		}
		if err := tx.TaskProducts().Create(ctx, tp); err != nil {
			if errors.Is(err, domain.ErrDuplicate) {
				return duplicateAssignment(productID, taskID)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, uc.fail("assign", err)
	}
	uc.ok("assign", tp, "producto asignado a tarea")
	return dto.ToTaskProductResponse(tp), nil
}

// Update cambia la cantidad (reservando o liberando la diferencia) y las notas, en una sola transacción.
// La nueva cantidad debe ser >= max(1, quantityUsed).
func (uc *TaskProductUseCase) Update(ctx context.Context, actor Actor, taskProductID string, in dto.AssignProductRequest) (*dto.TaskProductResponse, error) {
	var tp *entity.TaskProduct
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		var task *entity.Task
		var err error
		tp, task, err = uc.lockAssignment(ctx, tx, taskProductID)
		if err != nil {
			return err
		}
		if task.Status.IsTerminal() {
			return domain.InvalidTaskState("no se puede modificar una asignación de una tarea %s", task.Status)
		}
		if in.Quantity < 1 || in.Quantity < tp.QuantityUsed {
			return domain.InvalidQuantity("la cantidad debe ser al menos max(1, usada=%d): %d", tp.QuantityUsed, in.Quantity)
		}
		if delta := in.Quantity - tp.Quantity; delta != 0 {
			stock, err := tx.Stocks().GetByProductForUpdate(ctx, tp.ProductID)
			if err != nil {
				return err
			}
			if stock == nil {
				return noStock(tp.ProductID)
			}
			ref := inventory.MovementRef{TaskID: &task.ID, ActorID: actor.UserID, Reference: "assignment:update"}
			op, qty := entity.MovementReserve, delta
			if delta < 0 {
				op, qty = entity.MovementRelease, -delta
			}
			if err := uc.ledger.Apply(ctx, tx, stock, op, qty, ref); err != nil {
				return err
			}
			tp.Quantity = in.Quantity
		}
		tp.Notes = in.Notes
		tp.UpdatedAt = uc.ledger.Now()
		return tx.TaskProducts().Update(ctx, tp)
	})
	if err != nil {
		return nil, uc.fail("update", err)
	}
	uc.ok("update", tp, "asignación actualizada")
	return dto.ToTaskProductResponse(tp), nil
}

// Use registra la cantidad consumida (0 <= quantityUsed <= quantity). No mueve stock:
// el consumo se finaliza al completar la tarea.
func (uc *TaskProductUseCase) Use(ctx context.Context, actor Actor, taskProductID string, quantityUsed int) (*dto.TaskProductResponse, error) {
	var tp *entity.TaskProduct
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		var task *entity.Task
		var err error
		tp, task, err = uc.lockAssignment(ctx, tx, taskProductID)
		if err != nil {
			return err
		}
		if err := checkOwnership(actor, task); err != nil {
			return err
		}
		if task.Status.IsTerminal() {
			return domain.InvalidTaskState("no se puede registrar consumo en una tarea %s", task.Status)
		}
		if quantityUsed < 0 || quantityUsed > tp.Quantity {
			return domain.InvalidQuantity("la cantidad usada debe estar entre 0 y %d: %d", tp.Quantity, quantityUsed)
		}
		tp.QuantityUsed = quantityUsed
		tp.UpdatedAt = uc.ledger.Now()
		return tx.TaskProducts().Update(ctx, tp)
	})
	if err != nil {
		return nil, uc.fail("use", err)
	}
	uc.ok("use", tp, "consumo registrado")
	return dto.ToTaskProductResponse(tp), nil
}

// Remove libera lo pendiente (quantity - quantityUsed) y borra la asignación.
// En una tarea COMPLETED se rechaza; en una CANCELLED la reserva ya se liberó y solo se borra.
func (uc *TaskProductUseCase) Remove(ctx context.Context, actor Actor, taskProductID string) error {
	var tp *entity.TaskProduct
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		var task *entity.Task
		var err error
		tp, task, err = uc.lockAssignment(ctx, tx, taskProductID)
		if err != nil {
			return err
		}
		switch task.Status {
		case entity.TaskCompleted:
			return domain.InvalidTaskState("no se puede quitar un producto de una tarea completada")
		case entity.TaskCancelled:
		default:
			if outstanding := tp.Outstanding(); outstanding > 0 {
				stock, err := tx.Stocks().GetByProductForUpdate(ctx, tp.ProductID)
				if err != nil {
					return err
				}
				if stock == nil {
					return noStock(tp.ProductID)
				}
				ref := inventory.MovementRef{TaskID: &task.ID, ActorID: actor.UserID, Reference: "assignment:remove"}
				if err := uc.ledger.Apply(ctx, tx, stock, entity.MovementRelease, outstanding, ref); err != nil {
					return err
				}
			}
		}
		return tx.TaskProducts().Delete(ctx, tp.ID)
	})
	if err != nil {
		return uc.fail("remove", err)
	}
	uc.ok("remove", tp, "producto quitado de la tarea")
	return nil
}

// lockAssignment bloquea la tarea dueña y luego la asignación (mismo orden que el ciclo de vida).
func (uc *TaskProductUseCase) lockAssignment(ctx context.Context, tx repository.Tx, taskProductID string) (*entity.TaskProduct, *entity.Task, error) {
	tp, err := tx.TaskProducts().GetByID(ctx, taskProductID)
	if err != nil {
		return nil, nil, err
	}
	if tp == nil {
		return nil, nil, domain.NewNotFound("TaskProduct", taskProductID)
	}
	task, err := tx.Tasks().GetForUpdate(ctx, tp.TaskID)
	if err != nil {
		return nil, nil, err
	}
	if task == nil {
		return nil, nil, domain.NewNotFound("Task", tp.TaskID)
	}
	tp, err = tx.TaskProducts().GetForUpdate(ctx, taskProductID)
	if err != nil {
		return nil, nil, err
	}
	if tp == nil {
		return nil, nil, domain.NewNotFound("TaskProduct", taskProductID)
	}
	return tp, task, nil
}

// ListByTask asignaciones de una tarea.
func (uc *TaskProductUseCase) ListByTask(ctx context.Context, taskID string) ([]dto.TaskProductResponse, error) {
	if err := uc.requireTask(ctx, taskID); err != nil {
		return nil, err
	}
	return toResponses(uc.taskProductRepo.ListByTask(ctx, taskID))
}

// ListUnusedByTask asignaciones sin consumo.
func (uc *TaskProductUseCase) ListUnusedByTask(ctx context.Context, taskID string) ([]dto.TaskProductResponse, error) {
	if err := uc.requireTask(ctx, taskID); err != nil {
		return nil, err
	}
	return toResponses(uc.taskProductRepo.ListUnusedByTask(ctx, taskID))
}

// ListUsedByTask asignaciones con algún consumo.
func (uc *TaskProductUseCase) ListUsedByTask(ctx context.Context, taskID string) ([]dto.TaskProductResponse, error) {
	if err := uc.requireTask(ctx, taskID); err != nil {
		return nil, err
	}
	return toResponses(uc.taskProductRepo.ListUsedByTask(ctx, taskID))
}

// ListByProduct asignaciones de un producto.
func (uc *TaskProductUseCase) ListByProduct(ctx context.Context, productID string) ([]dto.TaskProductResponse, error) {
	if err := uc.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	return toResponses(uc.taskProductRepo.ListByProduct(ctx, productID))
}

// ListDiscrepancies asignaciones con quantityUsed != quantity.
func (uc *TaskProductUseCase) ListDiscrepancies(ctx context.Context) ([]dto.TaskProductResponse, error) {
	return toResponses(uc.taskProductRepo.ListDiscrepancies(ctx))
}

// TotalReserved suma de quantity del producto en tareas no terminales.
func (uc *TaskProductUseCase) TotalReserved(ctx context.Context, productID string) (*dto.ReservedQuantityResponse, error) {
	if err := uc.requireProduct(ctx, productID); err != nil {
		return nil, err
	}
	total, err := uc.taskProductRepo.TotalReservedForProduct(ctx, productID)
	if err != nil {
		return nil, err
	}
	return &dto.ReservedQuantityResponse{ProductID: productID, TotalReserved: total}, nil
}

func (uc *TaskProductUseCase) requireTask(ctx context.Context, taskID string) error {
	task, err := uc.taskRepo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}
	if task == nil {
		return domain.NewNotFound("Task", taskID)
	}
	return nil
}

func (uc *TaskProductUseCase) requireProduct(ctx context.Context, productID string) error {
	product, err := uc.productRepo.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if product == nil {
		return domain.NewNotFound("Product", productID)
	}
	return nil
}

func toResponses(list []*entity.TaskProduct, err error) ([]dto.TaskProductResponse, error) {
	if err != nil {
		return nil, err
	}
	return dto.ToTaskProductResponses(list), nil
}

func duplicateAssignment(productID, taskID string) error {
	return domain.NewBusinessRule(domain.CodeDuplicateAssignment,
		"el producto %s ya está asignado a la tarea %s", productID, taskID)
}

func (uc *TaskProductUseCase) ok(op string, tp *entity.TaskProduct, msg string) {
	uc.metrics.Operation("assignment_"+op, metrics.ResultOK)
	uc.log.Info().
		Str("task_product_id", tp.ID).
		Str("task_id", tp.TaskID).
		Str("product_id", tp.ProductID).
		Int("quantity", tp.Quantity).
		Int("quantity_used", tp.QuantityUsed).
		Msg(msg)
}

func (uc *TaskProductUseCase) fail(op string, err error) error {
	return inventory.ObserveFailure(uc.log, uc.metrics, "assignment_"+op, err)
}

package repository

import (
	"context"

	"github.com/jhoicas/geststore-api/internal/domain/entity"
)

// TaskProductRepository define el puerto de persistencia de las asignaciones tarea/producto.
// Create devuelve domain.ErrDuplicate si ya existe el par (tarea, producto).
type TaskProductRepository interface {
	Create(ctx context.Context, tp *entity.TaskProduct) error
	GetByID(ctx context.Context, id string) (*entity.TaskProduct, error)
	GetForUpdate(ctx context.Context, id string) (*entity.TaskProduct, error)
	GetByTaskAndProduct(ctx context.Context, taskID, productID string) (*entity.TaskProduct, error)
	Update(ctx context.Context, tp *entity.TaskProduct) error
	Delete(ctx context.Context, id string) error

	ListByTask(ctx context.Context, taskID string) ([]*entity.TaskProduct, error)
	ListByProduct(ctx context.Context, productID string) ([]*entity.TaskProduct, error)
	ListUnusedByTask(ctx context.Context, taskID string) ([]*entity.TaskProduct, error)
	ListUsedByTask(ctx context.Context, taskID string) ([]*entity.TaskProduct, error)
	// ListDiscrepancies asignaciones con cantidad usada distinta de la solicitada.
	ListDiscrepancies(ctx context.Context) ([]*entity.TaskProduct, error)
	// TotalReservedForProduct suma de quantity sobre asignaciones de tareas no terminales.
	TotalReservedForProduct(ctx context.Context, productID string) (int, error)
	CountActiveByProduct(ctx context.Context, productID string) (int, error)
}

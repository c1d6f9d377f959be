package repository

import (
	"context"
	"time"

	"github.com/jhoicas/geststore-api/internal/domain/entity"
)

// TaskRepository define el puerto de persistencia para Task.
type TaskRepository interface {
	Create(ctx context.Context, task *entity.Task) error
	GetByID(ctx context.Context, id string) (*entity.Task, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Task, error)
	Update(ctx context.Context, task *entity.Task) error
	// Delete borra la tarea; sus TaskProduct caen en cascada.
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, limit, offset int) ([]*entity.Task, error)
	CountActiveByAssignee(ctx context.Context, userID string) (int, error)
	CountByStatus(ctx context.Context) (map[entity.TaskStatus]int, error)
	CountOverdue(ctx context.Context, now time.Time) (int, error)

	ListByAssignee(ctx context.Context, userID string) ([]*entity.Task, error)
	ListByCreator(ctx context.Context, userID string) ([]*entity.Task, error)
	// ListUnassigned sin asignado y no canceladas, por prioridad descendente.
	ListUnassigned(ctx context.Context) ([]*entity.Task, error)
	ListByStatus(ctx context.Context, status entity.TaskStatus) ([]*entity.Task, error)
	ListOverdue(ctx context.Context, now time.Time) ([]*entity.Task, error)
	ListHighPriorityActive(ctx context.Context) ([]*entity.Task, error)
	// Search busca sin distinguir mayúsculas en título o descripción.
	Search(ctx context.Context, text string) ([]*entity.Task, error)
}

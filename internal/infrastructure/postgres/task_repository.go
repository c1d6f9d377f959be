package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/geststore-api/internal/domain"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
	"github.com/jhoicas/geststore-api/internal/domain/repository"
)

var _ repository.TaskRepository = (*TaskRepo)(nil)

// TaskRepo implementación de TaskRepository sobre PostgreSQL (usable con pool o tx).
type TaskRepo struct {
	q Querier
}

// NewTaskRepository construye el adaptador de tareas.
func NewTaskRepository(q Querier) *TaskRepo {
	return &TaskRepo{q: q}
}

const (
	taskColumns = `id, title, description, status, priority, due_date, start_date, end_date, completed,
		assigned_to, created_by, created_at, updated_at`
	taskSelect  = `SELECT ` + taskColumns + ` FROM tasks`
	activeTasks = `status IN ('PENDING', 'IN_PROGRESS')`
	byPriority  = `CASE priority WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END DESC`
)

func scanTask(row pgx.Row) (*entity.Task, error) {
	var t entity.Task
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.StartDate, &t.EndDate, &t.Completed,
		&t.AssignedTo, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *TaskRepo) getOne(ctx context.Context, what, query, id string) (*entity.Task, error) {
	t, err := scanTask(r.q.QueryRow(ctx, query, id))
	if err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return t, nil
}

func (r *TaskRepo) list(ctx context.Context, what, query string, args ...any) ([]*entity.Task, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	out, err := collect(rows, scanTask)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return out, nil
}

func (r *TaskRepo) Create(ctx context.Context, t *entity.Task) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.StartDate, t.EndDate, t.Completed,
		t.AssignedTo, t.CreatedBy, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepo) GetByID(ctx context.Context, id string) (*entity.Task, error) {
	return r.getOne(ctx, "get task", taskSelect+` WHERE id = $1`, id)
}

// GetForUpdate bloquea la fila de la tarea; serializa transiciones de estado concurrentes.
func (r *TaskRepo) GetForUpdate(ctx context.Context, id string) (*entity.Task, error) {
	return r.getOne(ctx, "get task for update", taskSelect+` WHERE id = $1 FOR UPDATE`, id)
}

func (r *TaskRepo) Update(ctx context.Context, t *entity.Task) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE tasks SET title = $2, description = $3, status = $4, priority = $5, due_date = $6, start_date = $7,
		       end_date = $8, completed = $9, assigned_to = $10, updated_at = $11
		WHERE id = $1`,
		t.ID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.StartDate, t.EndDate, t.Completed,
		t.AssignedTo, t.UpdatedAt,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return domain.ErrUserNotFound
		}
		return fmt.Errorf("update task: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFound("Task", t.ID)
	}
	return nil
}

func (r *TaskRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}

// List más recientes primero.
func (r *TaskRepo) List(ctx context.Context, limit, offset int) ([]*entity.Task, error) {
	return r.list(ctx, "list tasks", taskSelect+` ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
}

func (r *TaskRepo) CountActiveByAssignee(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE assigned_to = $1 AND `+activeTasks, userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active tasks: %w", err)
	}
	return n, nil
}

func (r *TaskRepo) CountByStatus(ctx context.Context) (map[entity.TaskStatus]int, error) {
	rows, err := r.q.Query(ctx, `SELECT status, COUNT(*) FROM tasks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("count tasks by status: %w", err)
	}
	defer rows.Close()
	out := make(map[entity.TaskStatus]int)
	for rows.Next() {
		var status entity.TaskStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("scan task count: %w", err)
		}
		out[status] = n
	}
	return out, rows.Err()
}

func (r *TaskRepo) CountOverdue(ctx context.Context, now time.Time) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM tasks WHERE due_date < $1 AND `+activeTasks, now).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count overdue tasks: %w", err)
	}
	return n, nil
}

func (r *TaskRepo) ListByAssignee(ctx context.Context, userID string) ([]*entity.Task, error) {
	return r.list(ctx, "list tasks by assignee", taskSelect+` WHERE assigned_to = $1 ORDER BY created_at DESC`, userID)
}

func (r *TaskRepo) ListByCreator(ctx context.Context, userID string) ([]*entity.Task, error) {
	return r.list(ctx, "list tasks by creator", taskSelect+` WHERE created_by = $1 ORDER BY created_at DESC`, userID)
}

func (r *TaskRepo) ListUnassigned(ctx context.Context) ([]*entity.Task, error) {
	return r.list(ctx, "list unassigned tasks",
		taskSelect+` WHERE assigned_to IS NULL AND status <> 'CANCELLED' ORDER BY `+byPriority+`, created_at`)
}

func (r *TaskRepo) ListByStatus(ctx context.Context, status entity.TaskStatus) ([]*entity.Task, error) {
	return r.list(ctx, "list tasks by status", taskSelect+` WHERE status = $1 ORDER BY created_at DESC`, status)
}

func (r *TaskRepo) ListOverdue(ctx context.Context, now time.Time) ([]*entity.Task, error) {
	return r.list(ctx, "list overdue tasks", taskSelect+` WHERE due_date < $1 AND `+activeTasks+` ORDER BY due_date`, now)
}

func (r *TaskRepo) ListHighPriorityActive(ctx context.Context) ([]*entity.Task, error) {
	return r.list(ctx, "list high priority tasks",
		taskSelect+` WHERE priority = 'HIGH' AND `+activeTasks+` ORDER BY due_date NULLS LAST, created_at`)
}

func (r *TaskRepo) Search(ctx context.Context, text string) ([]*entity.Task, error) {
	return r.list(ctx, "search tasks",
		taskSelect+` WHERE title ILIKE '%' || $1 || '%' OR description ILIKE '%' || $1 || '%' ORDER BY created_at DESC`, text)
}

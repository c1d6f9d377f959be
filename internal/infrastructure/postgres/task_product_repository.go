package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/geststore-api/internal/domain"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
	"github.com/jhoicas/geststore-api/internal/domain/repository"
)

var _ repository.TaskProductRepository = (*TaskProductRepo)(nil)

// TaskProductRepo asignaciones tarea/producto sobre PostgreSQL. Las lecturas traen nombre y SKU
// del producto y el estado de la tarea.
type TaskProductRepo struct {
	q Querier
}

// NewTaskProductRepository construye el adaptador. Pasar pool o tx (Querier).
func NewTaskProductRepository(q Querier) *TaskProductRepo {
	return &TaskProductRepo{q: q}
}

const taskProductSelect = `
	SELECT tp.id, tp.task_id, tp.product_id, tp.quantity, tp.quantity_used, tp.notes, tp.created_at, tp.updated_at,
	       p.name, p.sku, t.status
	FROM task_products tp
	JOIN products p ON p.id = tp.product_id
	JOIN tasks t ON t.id = tp.task_id`

func scanTaskProduct(row pgx.Row) (*entity.TaskProduct, error) {
	var tp entity.TaskProduct
	err := row.Scan(
		&tp.ID, &tp.TaskID, &tp.ProductID, &tp.Quantity, &tp.QuantityUsed, &tp.Notes, &tp.CreatedAt, &tp.UpdatedAt,
		&tp.ProductName, &tp.ProductSKU, &tp.TaskStatus,
	)
	if err != nil {
		return nil, err
	}
	return &tp, nil
}

func (r *TaskProductRepo) getOne(ctx context.Context, what, query string, args ...any) (*entity.TaskProduct, error) {
	tp, err := scanTaskProduct(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return tp, nil
}

func (r *TaskProductRepo) list(ctx context.Context, what, query string, args ...any) ([]*entity.TaskProduct, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	out, err := collect(rows, scanTaskProduct)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return out, nil
}

// Create inserta la asignación. El par (task_id, product_id) es único: devuelve domain.ErrDuplicate.
func (r *TaskProductRepo) Create(ctx context.Context, tp *entity.TaskProduct) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO task_products (id, task_id, product_id, quantity, quantity_used, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		tp.ID, tp.TaskID, tp.ProductID, tp.Quantity, tp.QuantityUsed, tp.Notes, tp.CreatedAt, tp.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert task product: %w", err)
	}
	return nil
}

func (r *TaskProductRepo) GetByID(ctx context.Context, id string) (*entity.TaskProduct, error) {
	return r.getOne(ctx, "get task product", taskProductSelect+` WHERE tp.id = $1`, id)
}

// GetForUpdate bloquea solo la fila de la asignación (la tarea se bloquea aparte).
func (r *TaskProductRepo) GetForUpdate(ctx context.Context, id string) (*entity.TaskProduct, error) {
	return r.getOne(ctx, "get task product for update", taskProductSelect+` WHERE tp.id = $1 FOR UPDATE OF tp`, id)
}

func (r *TaskProductRepo) GetByTaskAndProduct(ctx context.Context, taskID, productID string) (*entity.TaskProduct, error) {
	return r.getOne(ctx, "get task product by pair",
		taskProductSelect+` WHERE tp.task_id = $1 AND tp.product_id = $2`, taskID, productID)
}

func (r *TaskProductRepo) Update(ctx context.Context, tp *entity.TaskProduct) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE task_products SET quantity = $2, quantity_used = $3, notes = $4, updated_at = $5
		WHERE id = $1`,
		tp.ID, tp.Quantity, tp.QuantityUsed, tp.Notes, tp.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task product: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFound("TaskProduct", tp.ID)
	}
	return nil
}

func (r *TaskProductRepo) Delete(ctx context.Context, id string) error {
	if _, err := r.q.Exec(ctx, `DELETE FROM task_products WHERE id = $1`, id); err != nil {
		return fmt.Errorf("delete task product: %w", err)
	}
	return nil
}

func (r *TaskProductRepo) ListByTask(ctx context.Context, taskID string) ([]*entity.TaskProduct, error) {
	return r.list(ctx, "list task products", taskProductSelect+` WHERE tp.task_id = $1 ORDER BY tp.product_id`, taskID)
}

func (r *TaskProductRepo) ListByProduct(ctx context.Context, productID string) ([]*entity.TaskProduct, error) {
	return r.list(ctx, "list task products by product",
		taskProductSelect+` WHERE tp.product_id = $1 ORDER BY tp.created_at DESC`, productID)
}

func (r *TaskProductRepo) ListUnusedByTask(ctx context.Context, taskID string) ([]*entity.TaskProduct, error) {
	return r.list(ctx, "list unused task products",
		taskProductSelect+` WHERE tp.task_id = $1 AND tp.quantity_used = 0 ORDER BY tp.product_id`, taskID)
}

func (r *TaskProductRepo) ListUsedByTask(ctx context.Context, taskID string) ([]*entity.TaskProduct, error) {
	return r.list(ctx, "list used task products",
		taskProductSelect+` WHERE tp.task_id = $1 AND tp.quantity_used > 0 ORDER BY tp.product_id`, taskID)
}

func (r *TaskProductRepo) ListDiscrepancies(ctx context.Context) ([]*entity.TaskProduct, error) {
	return r.list(ctx, "list task product discrepancies",
		taskProductSelect+` WHERE tp.quantity_used <> tp.quantity ORDER BY tp.updated_at DESC`)
}

func (r *TaskProductRepo) TotalReservedForProduct(ctx context.Context, productID string) (int, error) {
	var total int
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(tp.quantity), 0)
		FROM task_products tp JOIN tasks t ON t.id = tp.task_id
		WHERE tp.product_id = $1 AND t.status IN ('PENDING', 'IN_PROGRESS')`, productID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("total reserved for product: %w", err)
	}
	return total, nil
}

func (r *TaskProductRepo) CountActiveByProduct(ctx context.Context, productID string) (int, error) {
	var n int
	err := r.q.QueryRow(ctx, `
		SELECT COUNT(*)
		FROM task_products tp JOIN tasks t ON t.id = tp.task_id
		WHERE tp.product_id = $1 AND t.status IN ('PENDING', 'IN_PROGRESS')`, productID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count active assignments: %w", err)
	}
	return n, nil
}

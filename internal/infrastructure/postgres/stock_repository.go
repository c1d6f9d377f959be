package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/geststore-api/internal/domain"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
	"github.com/jhoicas/geststore-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockRepository = (*StockRepo)(nil)

// StockRepo implementación de StockRepository sobre PostgreSQL (usable con pool o tx).
type StockRepo struct {
	q Querier
}

// NewStockRepository construye el adaptador de stock. Pasar pool o tx (Querier).
func NewStockRepository(q Querier) *StockRepo {
	return &StockRepo{q: q}
}

const stockSelect = `
	SELECT s.id, s.product_id, s.quantity_available, s.quantity_reserved, s.minimum_level, s.location,
	       s.last_updated, s.created_at, p.name, p.sku, p.unit_price
	FROM stock s JOIN products p ON p.id = s.product_id`

func scanStock(row pgx.Row) (*entity.Stock, error) {
	var s entity.Stock
	err := row.Scan(
		&s.ID, &s.ProductID, &s.QuantityAvailable, &s.QuantityReserved, &s.MinimumLevel, &s.Location,
		&s.LastUpdated, &s.CreatedAt, &s.ProductName, &s.ProductSKU, &s.UnitPrice,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StockRepo) getOne(ctx context.Context, what, query string, arg any) (*entity.Stock, error) {
	s, err := scanStock(r.q.QueryRow(ctx, query, arg))
	if err != nil {
		if isMissing(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return s, nil
}

func (r *StockRepo) list(ctx context.Context, what, query string, args ...any) ([]*entity.Stock, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	out, err := collect(rows, scanStock)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", what, err)
	}
	return out, nil
}

// Create persiste el registro de stock de un producto (uno por producto).
func (r *StockRepo) Create(ctx context.Context, s *entity.Stock) error {
	_, err := r.q.Exec(ctx, `
		INSERT INTO stock (id, product_id, quantity_available, quantity_reserved, minimum_level, location, last_updated, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		s.ID, s.ProductID, s.QuantityAvailable, s.QuantityReserved, s.MinimumLevel, s.Location, s.LastUpdated, s.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert stock: %w", err)
	}
	return nil
}

func (r *StockRepo) GetByID(ctx context.Context, id string) (*entity.Stock, error) {
	return r.getOne(ctx, "get stock", stockSelect+` WHERE s.id = $1`, id)
}

func (r *StockRepo) GetByProductID(ctx context.Context, productID string) (*entity.Stock, error) {
	return r.getOne(ctx, "get stock by product", stockSelect+` WHERE s.product_id = $1`, productID)
}

// GetForUpdate obtiene el stock y bloquea la fila (SELECT FOR UPDATE OF s).
func (r *StockRepo) GetForUpdate(ctx context.Context, id string) (*entity.Stock, error) {
	return r.getOne(ctx, "get stock for update", stockSelect+` WHERE s.id = $1 FOR UPDATE OF s`, id)
}

func (r *StockRepo) GetByProductForUpdate(ctx context.Context, productID string) (*entity.Stock, error) {
	return r.getOne(ctx, "get stock by product for update", stockSelect+` WHERE s.product_id = $1 FOR UPDATE OF s`, productID)
}

// Update escribe cantidades, mínimo y ubicación. Los CHECK de la tabla rechazan negativos.
func (r *StockRepo) Update(ctx context.Context, s *entity.Stock) error {
	cmd, err := r.q.Exec(ctx, `
		UPDATE stock SET quantity_available = $2, quantity_reserved = $3, minimum_level = $4, location = $5, last_updated = $6
		WHERE id = $1`,
		s.ID, s.QuantityAvailable, s.QuantityReserved, s.MinimumLevel, s.Location, s.LastUpdated,
	)
	if err != nil {
		return fmt.Errorf("update stock: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return domain.NewNotFound("Stock", s.ID)
	}
	return nil
}

func (r *StockRepo) ListLowStock(ctx context.Context) ([]*entity.Stock, error) {
	return r.list(ctx, "list low stock",
		stockSelect+` WHERE s.quantity_available < s.minimum_level ORDER BY s.quantity_available ASC, p.sku`)
}

func (r *StockRepo) ListCritical(ctx context.Context) ([]*entity.Stock, error) {
	return r.list(ctx, "list critical stock",
		stockSelect+` WHERE s.quantity_available <= s.minimum_level ORDER BY s.last_updated DESC`)
}

func (r *StockRepo) ListOutOfStock(ctx context.Context) ([]*entity.Stock, error) {
	return r.list(ctx, "list out of stock",
		stockSelect+` WHERE s.quantity_available = 0 ORDER BY p.sku`)
}

func (r *StockRepo) ListMostReserved(ctx context.Context, limit int) ([]*entity.Stock, error) {
	return r.list(ctx, "list most reserved",
		stockSelect+` WHERE s.quantity_reserved > 0 ORDER BY s.quantity_reserved DESC LIMIT $1`, limit)
}

// TotalValue suma disponible × precio unitario de todo el inventario.
func (r *StockRepo) TotalValue(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(s.quantity_available * p.unit_price), 0)
		FROM stock s JOIN products p ON p.id = s.product_id`).Scan(&total)
	if err != nil {
		return decimal.Zero, fmt.Errorf("total inventory value: %w", err)
	}
	return total, nil
}

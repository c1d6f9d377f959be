package repository

import (
	"context"

	"github.com/jhoicas/geststore-api/internal/domain/entity"
)

// StockMovementRepository registro de auditoría del libro de stock.
type StockMovementRepository interface {
	Create(ctx context.Context, m *entity.StockMovement) error
	ListByStock(ctx context.Context, stockID string, limit, offset int) ([]*entity.StockMovement, error)
}

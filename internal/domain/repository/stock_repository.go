package repository

import (
	"context"

	"github.com/jhoicas/geststore-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// StockRepository define el puerto de persistencia del libro de stock.
// Las lecturas "ForUpdate" bloquean la fila hasta el fin de la transacción.
// Los Get devuelven (nil, nil) cuando no existe la fila.
type StockRepository interface {
	Create(ctx context.Context, stock *entity.Stock) error
	GetByID(ctx context.Context, id string) (*entity.Stock, error)
	GetByProductID(ctx context.Context, productID string) (*entity.Stock, error)
	GetForUpdate(ctx context.Context, id string) (*entity.Stock, error)
	GetByProductForUpdate(ctx context.Context, productID string) (*entity.Stock, error)
	Update(ctx context.Context, stock *entity.Stock) error

	// ListLowStock disponible < mínimo, por disponible ascendente.
	ListLowStock(ctx context.Context) ([]*entity.Stock, error)
	// ListCritical disponible <= mínimo, por última actualización descendente.
	ListCritical(ctx context.Context) ([]*entity.Stock, error)
	ListOutOfStock(ctx context.Context) ([]*entity.Stock, error)
	// ListMostReserved reservado > 0, por reservado descendente.
	ListMostReserved(ctx context.Context, limit int) ([]*entity.Stock, error)
	// TotalValue suma de disponible × precio unitario.
	TotalValue(ctx context.Context) (decimal.Decimal, error)
}

package inventory

import (
	"context"
	"fmt"

	"github.com/jhoicas/geststore-api/internal/application/dto"
	"github.com/jhoicas/geststore-api/internal/domain"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
	domaininv "github.com/jhoicas/geststore-api/internal/domain/inventory"
	"github.com/jhoicas/geststore-api/internal/domain/repository"
	"github.com/jhoicas/geststore-api/pkg/logger"
)

const defaultMostReservedLimit = 10

// StockUseCase operaciones del libro de stock y consultas de inventario.
// Cada mutación corre en una transacción con la fila de stock bloqueada (SELECT FOR UPDATE).
type StockUseCase struct {
	txRunner     repository.TxRunner
	stockRepo    repository.StockRepository
	productRepo  repository.ProductRepository
	movementRepo repository.StockMovementRepository
	ledger       *Ledger
	log          *logger.Logger
}

// NewStockUseCase construye el caso de uso.
func NewStockUseCase(
	txRunner repository.TxRunner,
	stockRepo repository.StockRepository,
	productRepo repository.ProductRepository,
	movementRepo repository.StockMovementRepository,
	ledger *Ledger,
	log *logger.Logger,
) *StockUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &StockUseCase{
		txRunner:     txRunner,
		stockRepo:    stockRepo,
		productRepo:  productRepo,
		movementRepo: movementRepo,
		ledger:       ledger,
		log:          log.Component("stock"),
	}
}

// GetByID obtiene un stock por ID.
func (uc *StockUseCase) GetByID(ctx context.Context, id string) (*dto.StockResponse, error) {
	s, err := uc.stockRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NewNotFound("Stock", id)
	}
	return dto.ToStockResponse(s), nil
}

// GetByProduct obtiene el stock de un producto.
func (uc *StockUseCase) GetByProduct(ctx context.Context, productID string) (*dto.StockResponse, error) {
	s, err := uc.stockRepo.GetByProductID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NewNotFound("Stock del producto", productID)
	}
	return dto.ToStockResponse(s), nil
}

// Increase suma qty al disponible.
func (uc *StockUseCase) Increase(ctx context.Context, actorID, stockID string, qty int) (*dto.StockResponse, error) {
	return uc.move(ctx, actorID, stockID, entity.MovementIncrease, qty)
}

// Decrease resta qty del disponible; INSUFFICIENT_STOCK si no alcanza.
func (uc *StockUseCase) Decrease(ctx context.Context, actorID, stockID string, qty int) (*dto.StockResponse, error) {
	return uc.move(ctx, actorID, stockID, entity.MovementDecrease, qty)
}

// Reserve mueve qty de disponible a reservado.
func (uc *StockUseCase) Reserve(ctx context.Context, actorID, stockID string, qty int) (*dto.StockResponse, error) {
	return uc.move(ctx, actorID, stockID, entity.MovementReserve, qty)
}

// Release devuelve qty de reservado a disponible.
func (uc *StockUseCase) Release(ctx context.Context, actorID, stockID string, qty int) (*dto.StockResponse, error) {
	return uc.move(ctx, actorID, stockID, entity.MovementRelease, qty)
}

func (uc *StockUseCase) move(ctx context.Context, actorID, stockID, movementType string, qty int) (*dto.StockResponse, error) {
	var out *entity.Stock
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		stock, err := tx.Stocks().GetForUpdate(ctx, stockID)
		if err != nil {
			return err
		}
		if stock == nil {
			return domain.NewNotFound("Stock", stockID)
		}
		if err := uc.ledger.Apply(ctx, tx, stock, movementType, qty, MovementRef{ActorID: actorID, Reference: "stock:" + movementType}); err != nil {
			return err
		}
		out = stock
		return nil
	})
	if err != nil {
		return nil, ObserveFailure(uc.log, uc.ledger.metrics, "stock_"+movementType, err)
	}
	return dto.ToStockResponse(out), nil
}

// Update corrección administrativa de disponible/reservado/mínimo/ubicación.
// No empareja reservas con asignaciones.
func (uc *StockUseCase) Update(ctx context.Context, actorID, stockID string, in dto.UpdateStockRequest) (*dto.StockResponse, error) {
	var out *entity.Stock
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		stock, err := tx.Stocks().GetForUpdate(ctx, stockID)
		if err != nil {
			return err
		}
		if stock == nil {
			return domain.NewNotFound("Stock", stockID)
		}
		adj := domaininv.Adjustment{
			QuantityAvailable: in.QuantityAvailable,
			QuantityReserved:  in.QuantityReserved,
			MinimumLevel:      in.MinimumLevel,
			Location:          in.Location,
		}
		if err := uc.ledger.Adjust(ctx, tx, stock, adj, MovementRef{ActorID: actorID, Reference: "stock:update"}); err != nil {
			return err
		}
		out = stock
		return nil
	})
	if err != nil {
		return nil, ObserveFailure(uc.log, uc.ledger.metrics, "stock_update", err)
	}
	uc.log.Info().Str("stock_id", stockID).Str("actor", actorID).Msg("stock ajustado")
	return dto.ToStockResponse(out), nil
}

// LowStock stocks con disponible bajo el mínimo.
func (uc *StockUseCase) LowStock(ctx context.Context) ([]dto.StockResponse, error) {
	list, err := uc.stockRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ToStockResponses(list), nil
}

// Critical stocks con disponible en o bajo el mínimo.
func (uc *StockUseCase) Critical(ctx context.Context) ([]dto.StockResponse, error) {
	list, err := uc.stockRepo.ListCritical(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ToStockResponses(list), nil
}

// OutOfStock stocks sin disponible.
func (uc *StockUseCase) OutOfStock(ctx context.Context) ([]dto.StockResponse, error) {
	list, err := uc.stockRepo.ListOutOfStock(ctx)
	if err != nil {
		return nil, err
	}
	return dto.ToStockResponses(list), nil
}

// MostReserved stocks con más unidades reservadas.
func (uc *StockUseCase) MostReserved(ctx context.Context, limit int) ([]dto.StockResponse, error) {
	if limit <= 0 {
		limit = defaultMostReservedLimit
	}
	list, err := uc.stockRepo.ListMostReserved(ctx, limit)
	if err != nil {
		return nil, err
	}
	return dto.ToStockResponses(list), nil
}

// InventoryValue Σ disponible × precio unitario.
func (uc *StockUseCase) InventoryValue(ctx context.Context) (*dto.InventoryValueResponse, error) {
	v, err := uc.stockRepo.TotalValue(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.InventoryValueResponse{TotalValue: v}, nil
}

// Statistics resumen del almacén.
func (uc *StockUseCase) Statistics(ctx context.Context) (*dto.StockStatisticsResponse, error) {
	total, err := uc.productRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("contar productos: %w", err)
	}
	low, err := uc.stockRepo.ListLowStock(ctx)
	if err != nil {
		return nil, err
	}
	critical, err := uc.stockRepo.ListCritical(ctx)
	if err != nil {
		return nil, err
	}
	out, err := uc.stockRepo.ListOutOfStock(ctx)
	if err != nil {
		return nil, err
	}
	value, err := uc.stockRepo.TotalValue(ctx)
	if err != nil {
		return nil, err
	}
	return &dto.StockStatisticsResponse{
		TotalProducts:       total,
		LowStockCount:       len(low),
		CriticalStockCount:  len(critical),
		OutOfStockCount:     len(out),
		TotalInventoryValue: value,
	}, nil
}

// Movements historial de movimientos de un stock.
func (uc *StockUseCase) Movements(ctx context.Context, stockID string, page dto.PageRequest) ([]dto.StockMovementResponse, error) {
	page.DefaultPage()
	s, err := uc.stockRepo.GetByID(ctx, stockID)
	if err != nil {
		return nil, err
	}
	if s == nil {
		return nil, domain.NewNotFound("Stock", stockID)
	}
	list, err := uc.movementRepo.ListByStock(ctx, stockID, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	return dto.ToStockMovementResponses(list), nil
}

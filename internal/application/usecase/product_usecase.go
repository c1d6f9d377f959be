package usecase

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jhoicas/geststore-api/internal/application/dto"
	"github.com/jhoicas/geststore-api/internal/application/inventory"
	"github.com/jhoicas/geststore-api/internal/domain"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
	"github.com/jhoicas/geststore-api/internal/domain/repository"
	"github.com/jhoicas/geststore-api/pkg/logger"
)

// ProductUseCase catálogo de productos. Cada producto nace con su registro de stock (1:1).
type ProductUseCase struct {
	txRunner    repository.TxRunner
	productRepo repository.ProductRepository
	stockRepo   repository.StockRepository
	ledger      *inventory.Ledger
	log         *logger.Logger
}

// NewProductUseCase construye el caso de uso con los puertos de persistencia.
func NewProductUseCase(
	txRunner repository.TxRunner,
	productRepo repository.ProductRepository,
	stockRepo repository.StockRepository,
	ledger *inventory.Ledger,
	log *logger.Logger,
) *ProductUseCase {
	if log == nil {
		log = logger.Nop()
	}
	return &ProductUseCase{
		txRunner:    txRunner,
		productRepo: productRepo,
		stockRepo:   stockRepo,
		ledger:      ledger,
		log:         log.Component("products"),
	}
}

// Create crea producto y stock en una transacción. La cantidad inicial entra como INCREASE
// para que quede en el historial de movimientos. Devuelve domain.ErrDuplicate si el SKU ya existe.
func (uc *ProductUseCase) Create(ctx context.Context, actorID string, in dto.CreateProductRequest) (*dto.ProductResponse, error) {
	sku := strings.TrimSpace(in.SKU)
	if sku == "" || in.UnitPrice.IsNegative() || in.InitialQuantity < 0 {
		return nil, domain.ErrInvalidInput
	}
	minimum := entity.DefaultMinimumLevel
	if in.MinimumLevel != nil {
		if *in.MinimumLevel < 0 {
			return nil, domain.ErrInvalidInput
		}
		minimum = *in.MinimumLevel
	}

	var product *entity.Product
	var stock *entity.Stock
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		existing, err := tx.Products().GetBySKU(ctx, sku)
		if err != nil {
			return err
		}
		if existing != nil {
			return domain.ErrDuplicate
		}
		now := uc.ledger.Now()
		product = &entity.Product{
			ID:          uuid.New().String(),
			SKU:         sku,
			Name:        in.Name,
			Description: in.Description,
			UnitPrice:   in.UnitPrice,
			Category:    in.Category,
			Active:      true,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := tx.Products().Create(ctx, product); err != nil {
			return err
		}
		stock = &entity.Stock{
			ID:           uuid.New().String(),
			ProductID:    product.ID,
			MinimumLevel: minimum,
			Location:     in.Location,
			LastUpdated:  now,
			CreatedAt:    now,
			ProductName:  product.Name,
			ProductSKU:   product.SKU,
			UnitPrice:    product.UnitPrice,
		}
		if err := tx.Stocks().Create(ctx, stock); err != nil {
			return err
		}
		if in.InitialQuantity == 0 {
			return nil
		}
		ref := inventory.MovementRef{ActorID: actorID, Reference: "product:create"}
		return uc.ledger.Apply(ctx, tx, stock, entity.MovementIncrease, in.InitialQuantity, ref)
	})
	if err != nil {
		return nil, err
	}
	uc.log.Info().Str("product_id", product.ID).Str("sku", product.SKU).Int("initial_quantity", in.InitialQuantity).Msg("producto creado")
	return dto.ToProductResponse(product, stock), nil
}

// GetByID producto con su stock.
func (uc *ProductUseCase) GetByID(ctx context.Context, id string) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound("Product", id)
	}
	return uc.withStock(ctx, product)
}

// GetBySKU producto por código.
func (uc *ProductUseCase) GetBySKU(ctx context.Context, sku string) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetBySKU(ctx, sku)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound("Product", sku)
	}
	return uc.withStock(ctx, product)
}

func (uc *ProductUseCase) withStock(ctx context.Context, product *entity.Product) (*dto.ProductResponse, error) {
	stock, err := uc.stockRepo.GetByProductID(ctx, product.ID)
	if err != nil {
		return nil, err
	}
	return dto.ToProductResponse(product, stock), nil
}

// List lista productos paginados por SKU.
func (uc *ProductUseCase) List(ctx context.Context, page dto.PageRequest) (*dto.ProductListResponse, error) {
	page.DefaultPage()
	list, err := uc.productRepo.List(ctx, page.Limit, page.Offset)
	if err != nil {
		return nil, err
	}
	total, err := uc.productRepo.Count(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ProductResponse, 0, len(list))
	for _, p := range list {
		out, err := uc.withStock(ctx, p)
		if err != nil {
			return nil, err
		}
		items = append(items, *out)
	}
	return &dto.ProductListResponse{
		Items: items,
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset, Total: total},
	}, nil
}

// Update modifica datos descriptivos; las cantidades solo cambian por el ledger de stock.
func (uc *ProductUseCase) Update(ctx context.Context, id string, in dto.UpdateProductRequest) (*dto.ProductResponse, error) {
	product, err := uc.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, domain.NewNotFound("Product", id)
	}
	if in.Name != nil {
		product.Name = *in.Name
	}
	if in.Description != nil {
		product.Description = *in.Description
	}
	if in.UnitPrice != nil {
		if in.UnitPrice.IsNegative() {
			return nil, domain.ErrInvalidInput
		}
		product.UnitPrice = *in.UnitPrice
	}
	if in.Category != nil {
		product.Category = *in.Category
	}
	if in.Active != nil {
		product.Active = *in.Active
	}
	product.UpdatedAt = uc.ledger.Now()
	if err := uc.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return uc.withStock(ctx, product)
}

// Delete borra el producto y su stock. Rechaza con PRODUCT_IN_USE si hay tareas activas que lo reservan.
func (uc *ProductUseCase) Delete(ctx context.Context, id string) error {
	err := uc.txRunner.Run(ctx, func(tx repository.Tx) error {
		product, err := tx.Products().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.NewNotFound("Product", id)
		}
		if _, err := tx.Stocks().GetByProductForUpdate(ctx, id); err != nil {
			return err
		}
		active, err := tx.TaskProducts().CountActiveByProduct(ctx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return domain.NewBusinessRule(domain.CodeProductInUse,
				"el producto %s está asignado a %d tareas activas", id, active)
		}
		return tx.Products().Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	uc.log.Info().Str("product_id", id).Msg("producto eliminado")
	return nil
}

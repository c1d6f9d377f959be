package inventory

import (
	"context"
	"sort"

	"github.com/jhoicas/geststore-api/internal/application/dto"
	domaininv "github.com/jhoicas/geststore-api/internal/domain/inventory"
	"github.com/jhoicas/geststore-api/internal/domain/repository"
)

// ReplenishmentUseCase genera la lista de reposición a partir de los stocks críticos.
type ReplenishmentUseCase struct {
	stockRepo repository.StockRepository
}

// NewReplenishmentUseCase construye el caso de uso de reposición.
func NewReplenishmentUseCase(stockRepo repository.StockRepository) *ReplenishmentUseCase {
	return &ReplenishmentUseCase{stockRepo: stockRepo}
}

// GenerateReplenishmentList devuelve los stocks en o bajo su mínimo con la cantidad sugerida
// de pedido (⌈mínimo × 1.5⌉ - disponible) y su costo estimado, priorizados por déficit.
func (uc *ReplenishmentUseCase) GenerateReplenishmentList(ctx context.Context) ([]dto.ReplenishmentSuggestionDTO, error) {
	critical, err := uc.stockRepo.ListCritical(ctx)
	if err != nil {
		return nil, err
	}
	suggestions := make([]dto.ReplenishmentSuggestionDTO, 0, len(critical))
	for _, s := range critical {
		qty := domaininv.SuggestedOrderQuantity(s.MinimumLevel, s.QuantityAvailable)
		if qty == 0 {
			continue
		}
		suggestions = append(suggestions, dto.ReplenishmentSuggestionDTO{
			StockID:            s.ID,
			ProductID:          s.ProductID,
			SKU:                s.ProductSKU,
			ProductName:        s.ProductName,
			CurrentStock:       s.QuantityAvailable,
			Reserved:           s.QuantityReserved,
			MinimumLevel:       s.MinimumLevel,
			IdealStock:         s.QuantityAvailable + qty,
			SuggestedOrderQty:  qty,
			UnitPrice:          s.UnitPrice,
			EstimatedOrderCost: domaininv.EstimatedCost(qty, s.UnitPrice),
		})
	}

	// Primero sin disponible, luego mayor déficit relativo al mínimo, luego mayor costo.
	sort.SliceStable(suggestions, func(i, j int) bool {
		a, b := suggestions[i], suggestions[j]
		if (a.CurrentStock == 0) != (b.CurrentStock == 0) {
			return a.CurrentStock == 0
		}
		defA := a.MinimumLevel - a.CurrentStock
		defB := b.MinimumLevel - b.CurrentStock
		if defA != defB {
			return defA > defB
		}
		return a.EstimatedOrderCost.GreaterThan(b.EstimatedOrderCost)
	})
	for i := range suggestions {
		suggestions[i].Priority = i + 1
	}
	return suggestions, nil
}

package tasks

import (
	"context"
	"sort"

	"github.com/jhoicas/geststore-api/internal/domain"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
	"github.com/jhoicas/geststore-api/internal/domain/repository"
)

// lockStocks bloquea los stocks de los productos de las asignaciones en orden ascendente de producto
// (relación 1:1), así dos operaciones concurrentes sobre tareas distintas no se interbloquean.
func lockStocks(ctx context.Context, tx repository.Tx, assignments []*entity.TaskProduct) (map[string]*entity.Stock, error) {
	productIDs := make([]string, 0, len(assignments))
	seen := make(map[string]bool, len(assignments))
	for _, tp := range assignments {
		if !seen[tp.ProductID] {
			seen[tp.ProductID] = true
			productIDs = append(productIDs, tp.ProductID)
		}
	}
	sort.Strings(productIDs)

	stocks := make(map[string]*entity.Stock, len(productIDs))
	for _, productID := range productIDs {
		s, err := tx.Stocks().GetByProductForUpdate(ctx, productID)
		if err != nil {
			return nil, err
		}
		if s == nil {
			return nil, noStock(productID)
		}
		stocks[productID] = s
	}
	return stocks, nil
}

func noStock(productID string) error {
	return domain.NewBusinessRule(domain.CodeNoStockAvailable, "el producto %s no tiene registro de stock", productID)
}

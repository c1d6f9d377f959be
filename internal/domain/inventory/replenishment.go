package inventory

import "github.com/shopspring/decimal"

// ReorderFactor multiplica el nivel mínimo para obtener el nivel objetivo de reposición.
var ReorderFactor = decimal.NewFromFloat(1.5)

// SuggestedOrderQuantity cantidad a pedir para llevar el disponible al nivel objetivo.
// Objetivo = ⌈mínimo × 1.5⌉; sugerido = max(0, objetivo - disponible).
func SuggestedOrderQuantity(minimumLevel, available int) int {
	target := decimal.NewFromInt(int64(minimumLevel)).Mul(ReorderFactor).Ceil().IntPart()
	suggested := int(target) - available
	if suggested < 0 {
		return 0
	}
	return suggested
}

// EstimatedCost costo estimado de pedir qty unidades a precio unitario.
func EstimatedCost(qty int, unitPrice decimal.Decimal) decimal.Decimal {
	if qty <= 0 {
		return decimal.Zero
	}
	return unitPrice.Mul(decimal.NewFromInt(int64(qty)))
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// DefaultMinimumLevel nivel mínimo cuando no se indica uno al crear el producto.
const DefaultMinimumLevel = 10

// Stock cantidades disponible y reservada de un producto.
// Invariante: QuantityAvailable >= 0 y QuantityReserved >= 0 en todo punto observable.
// Solo se muta con las operaciones del libro de stock (paquete domain/inventory).
type Stock struct {
	ID                string
	ProductID         string
	QuantityAvailable int
	QuantityReserved  int
	MinimumLevel      int
	Location          string
	LastUpdated       time.Time
	CreatedAt         time.Time

	// Solo lectura: se llena en consultas que hacen JOIN con products.
	ProductName string
	ProductSKU  string
	UnitPrice   decimal.Decimal
}

// TotalQuantity disponible + reservado.
func (s *Stock) TotalQuantity() int {
	return s.QuantityAvailable + s.QuantityReserved
}

// IsLowStock disponible por debajo del mínimo.
func (s *Stock) IsLowStock() bool {
	return s.QuantityAvailable < s.MinimumLevel
}

// IsCritical disponible en o por debajo del mínimo.
func (s *Stock) IsCritical() bool {
	return s.QuantityAvailable <= s.MinimumLevel
}

// AvailableValue valor del disponible a precio unitario.
func (s *Stock) AvailableValue() decimal.Decimal {
	return s.UnitPrice.Mul(decimal.NewFromInt(int64(s.QuantityAvailable)))
}

package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product representa un producto del almacén. Tiene exactamente un Stock (1:1, se crean juntos).
type Product struct {
	ID          string
	SKU         string // único
	Name        string
	Description string
	UnitPrice   decimal.Decimal
	Category    string
	Active      bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

package entity

import "time"

// Tipos de movimiento del libro de stock.
const (
	MovementIncrease   = "INCREASE"
	MovementDecrease   = "DECREASE"
	MovementReserve    = "RESERVE"
	MovementRelease    = "RELEASE"
	MovementAdjustment = "ADJUSTMENT"
)

// StockMovement registro de auditoría de cada mutación del libro (misma transacción).
type StockMovement struct {
	ID             string
	StockID        string
	ProductID      string
	Type           string
	Quantity       int
	AvailableAfter int
	ReservedAfter  int
	TaskID         *string
	Reference      string
	CreatedBy      string
	CreatedAt      time.Time
}

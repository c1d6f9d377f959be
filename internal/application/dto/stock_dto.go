package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockResponse salida de un registro de stock.
type StockResponse struct {
	ID                string    `json:"id"`
	ProductID         string    `json:"productId"`
	ProductName       string    `json:"productName,omitempty"`
	ProductSKU        string    `json:"productSku,omitempty"`
	QuantityAvailable int       `json:"quantityAvailable"`
	QuantityReserved  int       `json:"quantityReserved"`
	TotalQuantity     int       `json:"totalQuantity"`
	MinimumLevel      int       `json:"minimumLevel"`
	Location          string    `json:"location"`
	LowStock          bool      `json:"lowStock"`
	LastUpdated       time.Time `json:"lastUpdated"`
}

// UpdateStockRequest corrección administrativa; solo se aplican los campos presentes.
type UpdateStockRequest struct {
	QuantityAvailable *int    `json:"quantityAvailable" validate:"omitempty,min=0"`
	QuantityReserved  *int    `json:"quantityReserved" validate:"omitempty,min=0"`
	MinimumLevel      *int    `json:"minimumLevel" validate:"omitempty,min=0"`
	Location          *string `json:"location" validate:"omitempty,max=100"`
}

// InventoryValueResponse valor total del inventario disponible.
type InventoryValueResponse struct {
	TotalValue decimal.Decimal `json:"totalValue"`
}

// StockStatisticsResponse resumen del almacén.
type StockStatisticsResponse struct {
	TotalProducts       int             `json:"totalProducts"`
	LowStockCount       int             `json:"lowStockCount"`
	CriticalStockCount  int             `json:"criticalStockCount"`
	OutOfStockCount     int             `json:"outOfStockCount"`
	TotalInventoryValue decimal.Decimal `json:"totalInventoryValue"`
}

// ReplenishmentSuggestionDTO sugerencia de reposición para un stock en o bajo su mínimo.
type ReplenishmentSuggestionDTO struct {
	StockID            string          `json:"stockId"`
	ProductID          string          `json:"productId"`
	SKU                string          `json:"sku"`
	ProductName        string          `json:"productName"`
	CurrentStock       int             `json:"currentStock"`
	Reserved           int             `json:"reserved"`
	MinimumLevel       int             `json:"minimumLevel"`
	IdealStock         int             `json:"idealStock"`        // ⌈mínimo × 1.5⌉
	SuggestedOrderQty  int             `json:"suggestedOrderQty"` // ideal - disponible
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	EstimatedOrderCost decimal.Decimal `json:"estimatedOrderCost"`
	Priority           int             `json:"priority"` // 1 = más urgente
}

// StockMovementResponse registro de auditoría.
type StockMovementResponse struct {
	ID             string    `json:"id"`
	StockID        string    `json:"stockId"`
	ProductID      string    `json:"productId"`
	Type           string    `json:"type"`
	Quantity       int       `json:"quantity"`
	AvailableAfter int       `json:"availableAfter"`
	ReservedAfter  int       `json:"reservedAfter"`
	TaskID         *string   `json:"taskId,omitempty"`
	Reference      string    `json:"reference,omitempty"`
	CreatedBy      string    `json:"createdBy,omitempty"`
	CreatedAt      time.Time `json:"createdAt"`
}

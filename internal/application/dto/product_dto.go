package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest crea el producto junto con su registro de stock.
type CreateProductRequest struct {
	SKU             string          `json:"sku" validate:"required,min=1,max=100"`
	Name            string          `json:"name" validate:"required,min=1,max=200"`
	Description     string          `json:"description" validate:"max=1000"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Category        string          `json:"category" validate:"max=100"`
	InitialQuantity int             `json:"initialQuantity" validate:"min=0"`
	MinimumLevel    *int            `json:"minimumLevel" validate:"omitempty,min=0"`
	Location        string          `json:"location" validate:"max=100"`
}

// UpdateProductRequest campos opcionales; el stock se modifica solo por /stock.
type UpdateProductRequest struct {
	Name        *string          `json:"name" validate:"omitempty,min=1,max=200"`
	Description *string          `json:"description" validate:"omitempty,max=1000"`
	UnitPrice   *decimal.Decimal `json:"unitPrice"`
	Category    *string          `json:"category" validate:"omitempty,max=100"`
	Active      *bool            `json:"active"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID          string          `json:"id"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Category    string          `json:"category"`
	Active      bool            `json:"active"`
	Stock       *StockResponse  `json:"stock,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}

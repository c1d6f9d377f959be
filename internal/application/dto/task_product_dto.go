package dto

import "time"

// AssignProductRequest body de POST /task-products/assign y PUT /task-products/:id.
type AssignProductRequest struct {
	Quantity int    `json:"quantity" validate:"required,min=1"`
	Notes    string `json:"notes" validate:"max=500"`
}

// TaskProductResponse salida de una asignación.
type TaskProductResponse struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"taskId"`
	ProductID    string    `json:"productId"`
	ProductName  string    `json:"productName,omitempty"`
	ProductSKU   string    `json:"productSku,omitempty"`
	Quantity     int       `json:"quantity"`
	QuantityUsed int       `json:"quantityUsed"`
	Outstanding  int       `json:"outstanding"`
	Notes        string    `json:"notes"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// ReservedQuantityResponse total reservado de un producto en tareas no terminales.
type ReservedQuantityResponse struct {
	ProductID     string `json:"productId"`
	TotalReserved int    `json:"totalReserved"`
}

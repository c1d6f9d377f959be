package entity

import "time"

// TaskProduct asignación de un producto a una tarea (única por par tarea/producto).
// 1 <= Quantity, 0 <= QuantityUsed <= Quantity.
type TaskProduct struct {
	ID           string
	TaskID       string
	ProductID    string
	Quantity     int
	QuantityUsed int
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time

	// Solo lectura (JOIN).
	ProductName string
	ProductSKU  string
	TaskStatus  TaskStatus
}

// Outstanding cantidad reservada aún no consumida.
func (tp *TaskProduct) Outstanding() int {
	return tp.Quantity - tp.QuantityUsed
}

// FullyUsed se consumió toda la cantidad solicitada.
func (tp *TaskProduct) FullyUsed() bool {
	return tp.QuantityUsed == tp.Quantity
}

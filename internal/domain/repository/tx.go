package repository

import "context"

// Tx da acceso a los repositorios atados a una misma transacción.
type Tx interface {
	Stocks() StockRepository
	Products() ProductRepository
	Users() UserRepository
	Tasks() TaskRepository
	TaskProducts() TaskProductRepository
	Movements() StockMovementRepository
}

// TxRunner ejecuta fn dentro de una transacción: commit si fn devuelve nil, rollback en otro caso.
type TxRunner interface {
	Run(ctx context.Context, fn func(tx Tx) error) error
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jhoicas/geststore-api/internal/domain/repository"
)

var _ repository.TxRunner = (*TxRunner)(nil)

// TxRunner ejecuta callbacks dentro de una transacción PostgreSQL.
type TxRunner struct {
	pool *pgxpool.Pool
}

// NewTxRunner construye el runner con el pool.
func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// Run inicia una transacción, ejecuta fn con repos atados a la tx y hace Commit o Rollback.
func (r *TxRunner) Run(ctx context.Context, fn func(tx repository.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(txRepos{q: tx}); err != nil {
		return err
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// txRepos repositorios atados a una pgx.Tx; los SELECT ... FOR UPDATE bloquean hasta el commit.
type txRepos struct {
	q Querier
}

func (t txRepos) Stocks() repository.StockRepository     { return NewStockRepository(t.q) }
func (t txRepos) Products() repository.ProductRepository { return NewProductRepository(t.q) }
func (t txRepos) Users() repository.UserRepository       { return NewUserRepository(t.q) }
func (t txRepos) Tasks() repository.TaskRepository       { return NewTaskRepository(t.q) }
func (t txRepos) TaskProducts() repository.TaskProductRepository {
	return NewTaskProductRepository(t.q)
}
func (t txRepos) Movements() repository.StockMovementRepository {
	return NewStockMovementRepository(t.q)
}

// Package memory implementa los puertos de repositorio en memoria.
// Las transacciones se serializan con un mutex y hacen rollback restaurando una copia del estado.
// Se usa en los tests de casos de uso y handlers.
package memory

import (
	"context"
	"sync"

	"github.com/jhoicas/geststore-api/internal/domain/entity"
	"github.com/jhoicas/geststore-api/internal/domain/repository"
)

var (
	_ repository.TxRunner = (*Store)(nil)
	_ repository.Tx       = (*Store)(nil)
)

// Store estado en memoria de todas las entidades.
type Store struct {
	mu   sync.Mutex
	data *state
}

type state struct {
	products     map[string]*entity.Product
	stocks       map[string]*entity.Stock
	users        map[string]*entity.User
	tasks        map[string]*entity.Task
	taskProducts map[string]*entity.TaskProduct
	movements    []*entity.StockMovement
}

func newState() *state {
	return &state{
		products:     map[string]*entity.Product{},
		stocks:       map[string]*entity.Stock{},
		users:        map[string]*entity.User{},
		tasks:        map[string]*entity.Task{},
		taskProducts: map[string]*entity.TaskProduct{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.products {
		p := *v
		c.products[k] = &p
	}
	for k, v := range s.stocks {
		st := *v
		c.stocks[k] = &st
	}
	for k, v := range s.users {
		u := *v
		c.users[k] = &u
	}
	for k, v := range s.tasks {
		c.tasks[k] = copyTask(v)
	}
	for k, v := range s.taskProducts {
		tp := *v
		c.taskProducts[k] = &tp
	}
	c.movements = append(c.movements, s.movements...)
	return c
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: newState()}
}

// Run ejecuta fn con repositorios atados a una "transacción": si fn falla se restaura el estado previo.
func (s *Store) Run(_ context.Context, fn func(tx repository.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snapshot := s.data.clone()
	if err := fn(&txView{s: s, locked: true}); err != nil {
		s.data = snapshot
		return err
	}
	return nil
}

// Los métodos del Store devuelven repositorios fuera de transacción (cada llamada toma el lock).

func (s *Store) Stocks() repository.StockRepository             { return &stockRepo{view{s: s}} }
func (s *Store) Products() repository.ProductRepository         { return &productRepo{view{s: s}} }
func (s *Store) Users() repository.UserRepository               { return &userRepo{view{s: s}} }
func (s *Store) Tasks() repository.TaskRepository               { return &taskRepo{view{s: s}} }
func (s *Store) TaskProducts() repository.TaskProductRepository { return &taskProductRepo{view{s: s}} }
func (s *Store) Movements() repository.StockMovementRepository  { return &movementRepo{view{s: s}} }

type txView struct {
	s      *Store
	locked bool
}

func (t *txView) v() view { return view{s: t.s, locked: t.locked} }

func (t *txView) Stocks() repository.StockRepository             { return &stockRepo{t.v()} }
func (t *txView) Products() repository.ProductRepository         { return &productRepo{t.v()} }
func (t *txView) Users() repository.UserRepository               { return &userRepo{t.v()} }
func (t *txView) Tasks() repository.TaskRepository               { return &taskRepo{t.v()} }
func (t *txView) TaskProducts() repository.TaskProductRepository { return &taskProductRepo{t.v()} }
func (t *txView) Movements() repository.StockMovementRepository  { return &movementRepo{t.v()} }

// view acceso al estado; si locked, el mutex ya lo tiene la transacción en curso.
type view struct {
	s      *Store
	locked bool
}

func (v view) with(fn func(d *state)) {
	if !v.locked {
		v.s.mu.Lock()
		defer v.s.mu.Unlock()
	}
	fn(v.s.data)
}

func copyTask(t *entity.Task) *entity.Task {
	c := *t
	c.Products = nil
	return &c
}

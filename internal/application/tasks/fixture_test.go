package tasks

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/geststore-api/internal/application/dto"
	"github.com/jhoicas/geststore-api/internal/application/inventory"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
	"github.com/jhoicas/geststore-api/internal/infrastructure/memory"
	"github.com/jhoicas/geststore-api/pkg/logger"
	"github.com/jhoicas/geststore-api/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC)

// testingT lo cumplen *testing.T y *rapid.T.
type testingT interface {
	require.TestingT
	Helper()
}

type fixture struct {
	store   *memory.Store
	tasks   *TaskUseCase
	assigns *TaskProductUseCase
	manager Actor
	worker  Actor
}

func newFixture(t testingT) *fixture {
	t.Helper()
	store := memory.NewStore()
	rec := metrics.New(prometheus.NewRegistry())
	ledger := inventory.NewLedger(logger.Nop(), rec).WithClock(func() time.Time { return fixedNow })
	f := &fixture{
		store:   store,
		tasks:   NewTaskUseCase(store, store.Tasks(), store.TaskProducts(), store.Users(), ledger, 0, logger.Nop(), rec),
		assigns: NewTaskProductUseCase(store, store.Tasks(), store.Products(), store.TaskProducts(), ledger, logger.Nop(), rec),
		manager: Actor{UserID: seedUser(t, store, entity.RoleManager), Role: entity.RoleManager},
	}
	f.worker = Actor{UserID: seedUser(t, store, entity.RoleWorker), Role: entity.RoleWorker}
	return f
}

func seedUser(t testingT, store *memory.Store, role string) string {
	t.Helper()
	id := uuid.New().String()
	require.NoError(t, store.Users().Create(context.Background(), &entity.User{
		ID: id, Name: role, Email: id + "@geststore.test", PasswordHash: "x", Role: role, Active: true,
	}))
	return id
}

// product crea producto y stock con el disponible indicado; devuelve el id del producto.
func (f *fixture) product(t testingT, sku string, available int) string {
	t.Helper()
	ctx := context.Background()
	productID := "p-" + sku
	require.NoError(t, f.store.Products().Create(ctx, &entity.Product{
		ID: productID, SKU: sku, Name: "Producto " + sku, UnitPrice: decimal.NewFromInt(3), Active: true,
	}))
	require.NoError(t, f.store.Stocks().Create(ctx, &entity.Stock{
		ID: "s-" + sku, ProductID: productID, QuantityAvailable: available, MinimumLevel: entity.DefaultMinimumLevel,
	}))
	return productID
}

func (f *fixture) stock(t testingT, productID string) *entity.Stock {
	t.Helper()
	s, err := f.store.Stocks().GetByProductID(context.Background(), productID)
	require.NoError(t, err)
	require.NotNil(t, s)
	return s
}

// task crea una tarea asignada al worker del fixture.
func (f *fixture) task(t testingT) string {
	t.Helper()
	assignee := f.worker.UserID
	out, err := f.tasks.Create(context.Background(), f.manager, dto.CreateTaskRequest{
		Title: "Reponer pasillo", Priority: string(entity.PriorityHigh), AssignedToUserID: &assignee,
	})
	require.NoError(t, err)
	return out.ID
}

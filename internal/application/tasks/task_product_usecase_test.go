package tasks

import (
	"context"
	"testing"

	"github.com/jhoicas/geststore-api/internal/application/dto"
	"github.com/jhoicas/geststore-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestAssign_ReservaYAgotaStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "GUANTE-01", 5)
	first, second := f.task(t), f.task(t)

	tp, err := f.assigns.Assign(ctx, f.manager, first, productID, dto.AssignProductRequest{Quantity: 5, Notes: "talla M"})
	require.NoError(t, err)
	assert.Equal(t, 5, tp.Quantity)
	assert.Equal(t, 0, tp.QuantityUsed)
	assert.Equal(t, "GUANTE-01", tp.ProductSKU)

	s := f.stock(t, productID)
	assert.Equal(t, 0, s.QuantityAvailable)
	assert.Equal(t, 5, s.QuantityReserved)

	_, err = f.assigns.Assign(ctx, f.manager, second, productID, dto.AssignProductRequest{Quantity: 1})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	list, err := f.assigns.ListByTask(ctx, second)
	require.NoError(t, err)
	assert.Empty(t, list, "el rechazo no deja asignación")
}

func TestAssign_Validaciones(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "CINTA-01", 10)
	id := f.task(t)

	_, err := f.assigns.Assign(ctx, f.manager, id, productID, dto.AssignProductRequest{Quantity: 0})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	_, err = f.assigns.Assign(ctx, f.manager, "no-existe", productID, dto.AssignProductRequest{Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.assigns.Assign(ctx, f.manager, id, "no-existe", dto.AssignProductRequest{Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.assigns.Assign(ctx, f.manager, id, productID, dto.AssignProductRequest{Quantity: 2})
	require.NoError(t, err)
	_, err = f.assigns.Assign(ctx, f.manager, id, productID, dto.AssignProductRequest{Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrDuplicateAssignment)

	assert.Equal(t, 8, f.stock(t, productID).QuantityAvailable)
}

func TestAssign_TareaTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "CINTA-02", 10)
	id := f.task(t)
	_, err := f.tasks.Cancel(ctx, f.manager, id)
	require.NoError(t, err)

	_, err = f.assigns.Assign(ctx, f.manager, id, productID, dto.AssignProductRequest{Quantity: 1})
	assert.ErrorIs(t, err, domain.ErrInvalidTaskState)
}

func TestUpdate_ReservaOLiberaDiferencia(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "FILM-01", 10)
	id := f.task(t)
	tp, err := f.assigns.Assign(ctx, f.manager, id, productID, dto.AssignProductRequest{Quantity: 4})
	require.NoError(t, err)

	out, err := f.assigns.Update(ctx, f.manager, tp.ID, dto.AssignProductRequest{Quantity: 9, Notes: "ampliado"})
	require.NoError(t, err)
	assert.Equal(t, 9, out.Quantity)
	assert.Equal(t, "ampliado", out.Notes)
	s := f.stock(t, productID)
	assert.Equal(t, 1, s.QuantityAvailable)
	assert.Equal(t, 9, s.QuantityReserved)

	_, err = f.assigns.Update(ctx, f.manager, tp.ID, dto.AssignProductRequest{Quantity: 11})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)
	s = f.stock(t, productID)
	assert.Equal(t, 9, s.QuantityReserved, "el rechazo no reserva parcialmente")

	_, err = f.assigns.Use(ctx, f.worker, tp.ID, 3)
	require.NoError(t, err)
	_, err = f.assigns.Update(ctx, f.manager, tp.ID, dto.AssignProductRequest{Quantity: 2})
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity, "no puede bajar de lo ya usado")

	out, err = f.assigns.Update(ctx, f.manager, tp.ID, dto.AssignProductRequest{Quantity: 3})
	require.NoError(t, err)
	assert.Equal(t, 0, out.Outstanding)
	s = f.stock(t, productID)
	assert.Equal(t, 7, s.QuantityAvailable)
	assert.Equal(t, 3, s.QuantityReserved)
}

func TestUse_Rangos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "BOLSA-01", 10)
	id := f.task(t)
	tp, err := f.assigns.Assign(ctx, f.manager, id, productID, dto.AssignProductRequest{Quantity: 3})
	require.NoError(t, err)

	_, err = f.assigns.Use(ctx, f.worker, tp.ID, 4)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)
	_, err = f.assigns.Use(ctx, f.worker, tp.ID, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidQuantity)

	other := Actor{UserID: seedUser(t, f.store, "WORKER"), Role: "WORKER"}
	_, err = f.assigns.Use(ctx, other, tp.ID, 1)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	out, err := f.assigns.Use(ctx, f.worker, tp.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, out.QuantityUsed)
	assert.Equal(t, 3, f.stock(t, productID).QuantityReserved, "registrar consumo no mueve stock")

	used, err := f.assigns.ListUsedByTask(ctx, id)
	require.NoError(t, err)
	assert.Len(t, used, 1)
	unused, err := f.assigns.ListUnusedByTask(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, unused)
}

func TestRemove(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "PALET-01", 10)
	id := f.task(t)
	tp, err := f.assigns.Assign(ctx, f.manager, id, productID, dto.AssignProductRequest{Quantity: 5})
	require.NoError(t, err)
	_, err = f.assigns.Use(ctx, f.worker, tp.ID, 1)
	require.NoError(t, err)

	require.NoError(t, f.assigns.Remove(ctx, f.manager, tp.ID))
	s := f.stock(t, productID)
	assert.Equal(t, 9, s.QuantityAvailable)
	assert.Equal(t, 1, s.QuantityReserved)

	err = f.assigns.Remove(ctx, f.manager, tp.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestRemove_TareaCompletada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "PALET-02", 10)
	id := f.task(t)
	tp, err := f.assigns.Assign(ctx, f.manager, id, productID, dto.AssignProductRequest{Quantity: 2})
	require.NoError(t, err)
	_, err = f.tasks.Start(ctx, f.worker, id)
	require.NoError(t, err)
	_, err = f.assigns.Use(ctx, f.worker, tp.ID, 2)
	require.NoError(t, err)
	_, err = f.tasks.Complete(ctx, f.worker, id)
	require.NoError(t, err)

	err = f.assigns.Remove(ctx, f.manager, tp.ID)
	assert.ErrorIs(t, err, domain.ErrInvalidTaskState)
}

func TestRemove_TareaCanceladaNoLiberaDosVeces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "PALET-03", 10)
	id := f.task(t)
	tp, err := f.assigns.Assign(ctx, f.manager, id, productID, dto.AssignProductRequest{Quantity: 4})
	require.NoError(t, err)
	_, err = f.tasks.Cancel(ctx, f.manager, id)
	require.NoError(t, err)

	require.NoError(t, f.assigns.Remove(ctx, f.manager, tp.ID))
	s := f.stock(t, productID)
	assert.Equal(t, 10, s.QuantityAvailable)
	assert.Equal(t, 0, s.QuantityReserved)
}

func TestConsultasPorProducto(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "ETIQ-01", 50)
	a, b := f.task(t), f.task(t)
	tpA, err := f.assigns.Assign(ctx, f.manager, a, productID, dto.AssignProductRequest{Quantity: 5})
	require.NoError(t, err)
	_, err = f.assigns.Assign(ctx, f.manager, b, productID, dto.AssignProductRequest{Quantity: 7})
	require.NoError(t, err)
	_, err = f.assigns.Use(ctx, f.worker, tpA.ID, 5)
	require.NoError(t, err)

	byProduct, err := f.assigns.ListByProduct(ctx, productID)
	require.NoError(t, err)
	assert.Len(t, byProduct, 2)

	total, err := f.assigns.TotalReserved(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 12, total.TotalReserved)

	disc, err := f.assigns.ListDiscrepancies(ctx)
	require.NoError(t, err)
	require.Len(t, disc, 1)
	assert.Equal(t, b, disc[0].TaskID)

	_, err = f.assigns.TotalReserved(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.assigns.ListByTask(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

// Para cualquier secuencia de asignaciones, la suma de lo asignado en tareas activas
// coincide con el reservado del stock y el total (disponible + reservado) se conserva.
func TestPropertyAssign_ReservadoCoincideConAsignado(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(rt)
		ctx := context.Background()
		initial := rapid.IntRange(0, 60).Draw(rt, "initial")
		productID := f.product(rt, "PROP-02", initial)

		n := rapid.IntRange(1, 6).Draw(rt, "tasks")
		for i := 0; i < n; i++ {
			id := f.task(rt)
			qty := rapid.IntRange(1, 20).Draw(rt, "qty")
			_, err := f.assigns.Assign(ctx, f.manager, id, productID, dto.AssignProductRequest{Quantity: qty})
			if err != nil && !assert.ErrorIs(rt, err, domain.ErrInsufficientStock) {
				rt.FailNow()
			}
		}

		s := f.stock(rt, productID)
		total, err := f.assigns.TotalReserved(ctx, productID)
		require.NoError(rt, err)
		if s.QuantityReserved != total.TotalReserved {
			rt.Fatalf("reservado %d, asignado %d", s.QuantityReserved, total.TotalReserved)
		}
		if s.QuantityAvailable+s.QuantityReserved != initial {
			rt.Fatalf("total %d, inicial %d", s.QuantityAvailable+s.QuantityReserved, initial)
		}
	})
}

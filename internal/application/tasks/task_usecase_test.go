package tasks

import (
	"context"
	"testing"

	"github.com/jhoicas/geststore-api/internal/application/dto"
	"github.com/jhoicas/geststore-api/internal/domain"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestCreate_PorDefectoPendingMedium(t *testing.T) {
	f := newFixture(t)
	out, err := f.tasks.Create(context.Background(), f.manager, dto.CreateTaskRequest{Title: "Inventario cíclico"})
	require.NoError(t, err)
	assert.Equal(t, string(entity.TaskPending), out.Status)
	assert.Equal(t, string(entity.PriorityMedium), out.Priority)
	assert.Equal(t, f.manager.UserID, out.CreatedByUserID)
	assert.Nil(t, out.AssignedToUserID)
	assert.False(t, out.Completed)
}

func TestCreate_AsignadoInexistente(t *testing.T) {
	f := newFixture(t)
	ghost := "00000000-0000-0000-0000-000000000000"
	_, err := f.tasks.Create(context.Background(), f.manager, dto.CreateTaskRequest{Title: "x", AssignedToUserID: &ghost})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreate_LimiteTareasActivas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	ids := make([]string, 0, DefaultMaxActivePerWorker)
	for i := 0; i < DefaultMaxActivePerWorker; i++ {
		ids = append(ids, f.task(t))
	}

	assignee := f.worker.UserID
	req := dto.CreateTaskRequest{Title: "Una más", AssignedToUserID: &assignee}
	_, err := f.tasks.Create(ctx, f.manager, req)
	require.ErrorIs(t, err, domain.ErrMaxActiveTasksExceeded)
	br, ok := domain.AsBusinessRule(err)
	require.True(t, ok)
	assert.Equal(t, domain.CodeMaxActiveTasksExceeded, br.Code)

	_, err = f.tasks.Cancel(ctx, f.manager, ids[0])
	require.NoError(t, err)

	_, err = f.tasks.Create(ctx, f.manager, req)
	assert.NoError(t, err)
}

func TestUpdate_ReasignarRespetaLimite(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	for i := 0; i < DefaultMaxActivePerWorker; i++ {
		f.task(t)
	}
	free, err := f.tasks.Create(ctx, f.manager, dto.CreateTaskRequest{Title: "Libre"})
	require.NoError(t, err)

	worker := f.worker.UserID
	_, err = f.tasks.Update(ctx, f.manager, free.ID, dto.UpdateTaskRequest{AssignedToUserID: &worker})
	assert.ErrorIs(t, err, domain.ErrMaxActiveTasksExceeded)

	title := "Renombrada"
	out, err := f.tasks.Update(ctx, f.manager, free.ID, dto.UpdateTaskRequest{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Renombrada", out.Title)
	assert.Nil(t, out.AssignedToUserID)
}

func TestUpdate_Desasignar(t *testing.T) {
	f := newFixture(t)
	id := f.task(t)
	out, err := f.tasks.Update(context.Background(), f.manager, id, dto.UpdateTaskRequest{UnassignUser: true})
	require.NoError(t, err)
	assert.Nil(t, out.AssignedToUserID)
}

func TestStart_DosVeces(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.task(t)

	out, err := f.tasks.Start(ctx, f.worker, id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TaskInProgress), out.Status)
	require.NotNil(t, out.StartDate)
	assert.Equal(t, fixedNow, *out.StartDate)

	_, err = f.tasks.Start(ctx, f.worker, id)
	assert.ErrorIs(t, err, domain.ErrInvalidTaskState)
}

func TestStart_WorkerAjeno(t *testing.T) {
	f := newFixture(t)
	other := Actor{UserID: seedUser(t, f.store, entity.RoleWorker), Role: entity.RoleWorker}
	id := f.task(t)

	_, err := f.tasks.Start(context.Background(), other, id)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.tasks.Start(context.Background(), f.manager, id)
	assert.NoError(t, err, "un MANAGER puede iniciar cualquier tarea")
}

func TestComplete_LiberaReservado(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "TORN-01", 10)
	id := f.task(t)

	tp, err := f.assigns.Assign(ctx, f.manager, id, productID, dto.AssignProductRequest{Quantity: 3})
	require.NoError(t, err)
	_, err = f.tasks.Start(ctx, f.worker, id)
	require.NoError(t, err)
	_, err = f.assigns.Use(ctx, f.worker, tp.ID, 3)
	require.NoError(t, err)

	s := f.stock(t, productID)
	assert.Equal(t, 7, s.QuantityAvailable)
	assert.Equal(t, 3, s.QuantityReserved)

	out, err := f.tasks.Complete(ctx, f.worker, id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TaskCompleted), out.Status)
	assert.True(t, out.Completed)
	assert.NotNil(t, out.EndDate)

	s = f.stock(t, productID)
	assert.Equal(t, 10, s.QuantityAvailable, "las unidades usadas vuelven al disponible")
	assert.Equal(t, 0, s.QuantityReserved)
}

// Asignación {3, usado 3} única en una tarea IN_PROGRESS: completar baja el reservado en 3.
func TestComplete_UnicaAsignacionUsada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "TORN-09", 5)
	id := f.task(t)

	tp, err := f.assigns.Assign(ctx, f.manager, id, productID, dto.AssignProductRequest{Quantity: 3})
	require.NoError(t, err)
	_, err = f.tasks.Start(ctx, f.worker, id)
	require.NoError(t, err)
	_, err = f.assigns.Use(ctx, f.worker, tp.ID, 3)
	require.NoError(t, err)
	before := f.stock(t, productID)

	_, err = f.tasks.Complete(ctx, f.worker, id)
	require.NoError(t, err)

	after := f.stock(t, productID)
	assert.Equal(t, before.QuantityReserved-3, after.QuantityReserved)
	assert.Equal(t, before.QuantityAvailable+3, after.QuantityAvailable)
	assert.Equal(t, 5, after.QuantityAvailable+after.QuantityReserved)
}

func TestComplete_ProductosIncompletos(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "TORN-02", 10)
	id := f.task(t)

	tp, err := f.assigns.Assign(ctx, f.manager, id, productID, dto.AssignProductRequest{Quantity: 4})
	require.NoError(t, err)
	_, err = f.tasks.Start(ctx, f.worker, id)
	require.NoError(t, err)
	_, err = f.assigns.Use(ctx, f.worker, tp.ID, 2)
	require.NoError(t, err)

	_, err = f.tasks.Complete(ctx, f.worker, id)
	require.ErrorIs(t, err, domain.ErrIncompleteProducts)

	task, err := f.tasks.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, string(entity.TaskInProgress), task.Status, "el rechazo no cambia el estado")
	s := f.stock(t, productID)
	assert.Equal(t, 4, s.QuantityReserved)
}

func TestComplete_DesdePending(t *testing.T) {
	f := newFixture(t)
	_, err := f.tasks.Complete(context.Background(), f.manager, f.task(t))
	assert.ErrorIs(t, err, domain.ErrInvalidTaskState)
}

func TestCancel_TerminalRechazada(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	id := f.task(t)
	_, err := f.tasks.Cancel(ctx, f.manager, id)
	require.NoError(t, err)

	_, err = f.tasks.Cancel(ctx, f.manager, id)
	assert.ErrorIs(t, err, domain.ErrInvalidTaskState)
	_, err = f.tasks.Start(ctx, f.worker, id)
	assert.ErrorIs(t, err, domain.ErrInvalidTaskState)
}

func TestDelete_LiberaPendiente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	productID := f.product(t, "CAJA-01", 20)
	id := f.task(t)

	tp, err := f.assigns.Assign(ctx, f.manager, id, productID, dto.AssignProductRequest{Quantity: 6})
	require.NoError(t, err)
	_, err = f.assigns.Use(ctx, f.worker, tp.ID, 2)
	require.NoError(t, err)

	require.NoError(t, f.tasks.Delete(ctx, f.manager, id))

	s := f.stock(t, productID)
	assert.Equal(t, 18, s.QuantityAvailable)
	assert.Equal(t, 2, s.QuantityReserved)
	_, err = f.tasks.GetByID(ctx, id)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	list, err := f.store.TaskProducts().ListByTask(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestConsultas(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.task(t)
	_ = f.task(t)
	_, err := f.tasks.Create(ctx, f.manager, dto.CreateTaskRequest{Title: "Etiquetar palets", Description: "zona B"})
	require.NoError(t, err)
	_, err = f.tasks.Start(ctx, f.worker, a)
	require.NoError(t, err)

	stats, err := f.tasks.Statistics(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 2, stats.Pending)
	assert.Equal(t, 1, stats.InProgress)

	mine, err := f.tasks.ListByAssignee(ctx, f.worker.UserID)
	require.NoError(t, err)
	assert.Len(t, mine, 2)

	unassigned, err := f.tasks.ListUnassigned(ctx)
	require.NoError(t, err)
	assert.Len(t, unassigned, 1)

	high, err := f.tasks.ListHighPriority(ctx)
	require.NoError(t, err)
	assert.Len(t, high, 2)

	found, err := f.tasks.Search(ctx, "palets")
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "Etiquetar palets", found[0].Title)

	_, err = f.tasks.Search(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	page, err := f.tasks.List(ctx, dto.PageRequest{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, page.Items, 2)
	assert.Equal(t, 3, page.Page.Total)
}

// Cancelar libera exactamente quantity - quantityUsed de cada asignación.
func TestPropertyCancel_LiberaPendiente(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture(rt)
		ctx := context.Background()
		available := rapid.IntRange(1, 200).Draw(rt, "available")
		productID := f.product(rt, "PROP-01", available)
		id := f.task(rt)

		qty := rapid.IntRange(1, available).Draw(rt, "qty")
		used := rapid.IntRange(0, qty).Draw(rt, "used")
		tp, err := f.assigns.Assign(ctx, f.manager, id, productID, dto.AssignProductRequest{Quantity: qty})
		require.NoError(rt, err)
		if rapid.Bool().Draw(rt, "started") {
			_, err = f.tasks.Start(ctx, f.worker, id)
			require.NoError(rt, err)
		}
		_, err = f.assigns.Use(ctx, f.worker, tp.ID, used)
		require.NoError(rt, err)

		_, err = f.tasks.Cancel(ctx, f.manager, id)
		require.NoError(rt, err)

		s := f.stock(rt, productID)
		if s.QuantityAvailable != available-used || s.QuantityReserved != used {
			rt.Fatalf("esperado (%d,%d), obtenido (%d,%d)", available-used, used, s.QuantityAvailable, s.QuantityReserved)
		}
		kept, err := f.store.TaskProducts().ListByTask(ctx, id)
		require.NoError(rt, err)
		require.Len(rt, kept, 1)
	})
}

func TestListadosPorUsuario_UsuarioInexistente(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.task(t)

	_, err := f.tasks.ListByAssignee(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = f.tasks.ListByCreator(ctx, "no-existe")
	assert.ErrorIs(t, err, domain.ErrNotFound)

	created, err := f.tasks.ListByCreator(ctx, f.manager.UserID)
	require.NoError(t, err)
	assert.Len(t, created, 1)
}

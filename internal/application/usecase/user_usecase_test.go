package usecase

import (
	"context"
	"testing"

	"github.com/jhoicas/geststore-api/internal/application/dto"
	"github.com/jhoicas/geststore-api/internal/domain"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
	"github.com/jhoicas/geststore-api/internal/infrastructure/memory"
	"github.com/jhoicas/geststore-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserCreateListSetActive(t *testing.T) {
	store := memory.NewStore()
	uc := NewUserUseCase(store.Users(), logger.Nop())
	ctx := context.Background()

	m, err := uc.Create(ctx, dto.CreateUserRequest{
		Name: "Marta", Email: "marta@geststore.test", Password: "12345678", Role: entity.RoleManager, Department: "Almacén",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleManager, m.Role)
	assert.Equal(t, "Almacén", m.Department)

	_, err = uc.Create(ctx, dto.CreateUserRequest{Name: "Dup", Email: "marta@geststore.test", Password: "12345678", Role: entity.RoleWorker})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)

	list, err := uc.List(ctx, dto.PageRequest{})
	require.NoError(t, err)
	assert.Len(t, list, 1)

	out, err := uc.SetActive(ctx, m.ID, false)
	require.NoError(t, err)
	assert.False(t, out.Active)

	got, err := uc.GetByID(ctx, m.ID)
	require.NoError(t, err)
	assert.False(t, got.Active)

	_, err = uc.SetActive(ctx, "no-existe", true)
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

package auth

import (
	"context"
	"testing"

	"github.com/jhoicas/geststore-api/internal/application/dto"
	"github.com/jhoicas/geststore-api/internal/domain"
	"github.com/jhoicas/geststore-api/internal/domain/entity"
	"github.com/jhoicas/geststore-api/internal/infrastructure/memory"
	"github.com/jhoicas/geststore-api/pkg/jwt"
	"github.com/jhoicas/geststore-api/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "secreto-de-prueba"

func newAuth(t *testing.T) (*AuthUseCase, *memory.Store) {
	t.Helper()
	store := memory.NewStore()
	return NewAuthUseCase(store.Users(), JWTConfig{Secret: testSecret, ExpMinutes: 60, Issuer: "geststore"}, logger.Nop()), store
}

func TestRegister_SiempreWorker(t *testing.T) {
	uc, _ := newAuth(t)
	out, err := uc.Register(context.Background(), dto.RegisterRequest{Email: "Ana@Geststore.test", Password: "12345678"})
	require.NoError(t, err)
	assert.Equal(t, entity.RoleWorker, out.Role)
	assert.Equal(t, "ana@geststore.test", out.Email)
	assert.Equal(t, out.Email, out.Name, "sin nombre se usa el email")
	assert.True(t, out.Active)

	_, err = uc.Register(context.Background(), dto.RegisterRequest{Email: "ana@geststore.test", Password: "otra-clave"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestLogin(t *testing.T) {
	uc, store := newAuth(t)
	ctx := context.Background()
	reg, err := uc.Register(ctx, dto.RegisterRequest{Name: "Luis", Email: "luis@geststore.test", Password: "clave-segura"})
	require.NoError(t, err)

	out, err := uc.Login(ctx, dto.LoginRequest{Email: "luis@geststore.test", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, "Bearer", out.TokenType)
	assert.Equal(t, 3600, out.ExpiresIn)
	userID, role, err := jwt.Parse(testSecret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.ID, userID)
	assert.Equal(t, entity.RoleWorker, role)

	_, err = uc.Login(ctx, dto.LoginRequest{Email: "luis@geststore.test", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "nadie@geststore.test", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	user, err := store.Users().GetByID(ctx, reg.ID)
	require.NoError(t, err)
	user.Active = false
	require.NoError(t, store.Users().Update(ctx, user))
	_, err = uc.Login(ctx, dto.LoginRequest{Email: "luis@geststore.test", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestNewUser_RolInvalido(t *testing.T) {
	store := memory.NewStore()
	_, err := NewUser(context.Background(), store.Users(), "x", "x@geststore.test", "12345678", "ROOT", "")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMe(t *testing.T) {
	uc, _ := newAuth(t)
	_, err := uc.Me(context.Background(), "no-existe")
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

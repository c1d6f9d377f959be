package postgres

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestIsUniqueViolation(t *testing.T) {
	wrapped := fmt.Errorf("insert product: %w", &pgconn.PgError{Code: "23505"})
	assert.True(t, isUniqueViolation(wrapped))
	assert.False(t, isUniqueViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isUniqueViolation(errors.New("conexión cerrada")))
}

func TestIsForeignKeyViolation(t *testing.T) {
	assert.True(t, isForeignKeyViolation(&pgconn.PgError{Code: "23503"}))
	assert.False(t, isForeignKeyViolation(&pgconn.PgError{Code: "23505"}))
}

func TestIsNoRows(t *testing.T) {
	assert.True(t, isNoRows(fmt.Errorf("get: %w", pgx.ErrNoRows)))
	assert.False(t, isNoRows(errors.New("otro")))
}

func TestIsMissing_UUIDMalFormado(t *testing.T) {
	assert.True(t, isMissing(fmt.Errorf("get task: %w", pgx.ErrNoRows)))
	assert.True(t, isMissing(fmt.Errorf("get task for update: %w", &pgconn.PgError{Code: "22P02"})))
	assert.False(t, isMissing(&pgconn.PgError{Code: "23505"}))
	assert.False(t, isMissing(errors.New("conexión cerrada")))
}

func TestResolveIPv4_Literal(t *testing.T) {
	ip, err := resolveIPv4(context.Background(), "127.0.0.1")
	assert.NoError(t, err)
	assert.Equal(t, "127.0.0.1", ip)

	_, err = resolveIPv4(context.Background(), "::1")
	assert.Error(t, err)
}

func TestWithIPv4Host(t *testing.T) {
	assert.Equal(t, "postgres://u:p@127.0.0.1:5433/db?sslmode=disable",
		withIPv4Host("postgres://u:p@127.0.0.1:5433/db?sslmode=disable"))
	assert.Equal(t, "postgres://u:p@127.0.0.1:5432/db",
		withIPv4Host("postgres://u:p@127.0.0.1/db"))
	// formato clave=valor: no se toca
	assert.Equal(t, "host=db user=u", withIPv4Host("host=db user=u"))
}

package auth_test

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/bodegas-api/internal/application/apptest"
	"github.com/jhoicas/bodegas-api/internal/application/auth"
	"github.com/jhoicas/bodegas-api/internal/application/dto"
	"github.com/jhoicas/bodegas-api/internal/domain"
	"github.com/jhoicas/bodegas-api/internal/domain/entity"
	"github.com/jhoicas/bodegas-api/pkg/jwt"
)

const secret = "test-secret"

func newAuth(t *testing.T) (*auth.AuthUseCase, *apptest.Store) {
	t.Helper()
	store := apptest.NewStore()
	uc := auth.NewAuthUseCase(store.Users(), auth.JWTConfig{Secret: secret, ExpMinutes: 5, Issuer: "test"}, zerolog.Nop())
	require.NoError(t, uc.EnsureManager(context.Background(), "jefe", "clave-segura"))
	return uc, store
}

func TestLogin_DevuelveTokenConRol(t *testing.T) {
	uc, _ := newAuth(t)

	out, err := uc.Login(context.Background(), dto.LoginRequest{Username: "jefe", Password: "clave-segura"})
	require.NoError(t, err)
	assert.Equal(t, "jefe_bodega", out.User.Role)

	userID, role, err := jwt.Parse(secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, out.User.ID, userID)
	assert.Equal(t, "jefe_bodega", role)
}

func TestLogin_Errores(t *testing.T) {
	uc, store := newAuth(t)
	ctx := context.Background()

	_, err := uc.Login(ctx, dto.LoginRequest{Username: "jefe", Password: "incorrecta"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "nadie", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)

	inactive, err := store.Users().GetByUsername(ctx, "jefe")
	require.NoError(t, err)
	inactive.Username = "inactivo"
	inactive.Status = entity.UserStatusInactive
	require.NoError(t, store.Users().Create(ctx, inactive))

	_, err = uc.Login(ctx, dto.LoginRequest{Username: "inactivo", Password: "clave-segura"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestEnsureManager_Idempotente(t *testing.T) {
	uc, store := newAuth(t)
	ctx := context.Background()

	require.NoError(t, uc.EnsureManager(ctx, "jefe", "otra-clave-123"))
	list, err := store.Users().List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, uc.EnsureManager(ctx, "", ""))
}

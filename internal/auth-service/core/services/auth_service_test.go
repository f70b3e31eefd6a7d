package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"waste-collect/internal/auth-service/adapters/driven/memstore"
	"waste-collect/internal/auth-service/core/domain/dto"
	"waste-collect/internal/auth-service/core/myerrors"
	"waste-collect/internal/auth-service/core/services"
	"waste-collect/internal/identity"
	"waste-collect/internal/mylogger"
)

const testSecret = "test-secret"

func newTestService(t *testing.T) *services.AuthService {
	t.Helper()

	log, err := mylogger.New(mylogger.LevelError)
	require.NoError(t, err)
	return services.NewAuthService(log, memstore.New(), testSecret)
}

func ptr(s string) *string { return &s }

func registerRequest() dto.RegisterRequestDto {
	return dto.RegisterRequestDto{
		Username: ptr("ayana"),
		Email:    ptr("ayana@example.com"),
		Password: ptr("correct-horse"),
		Role:     ptr("CITIZEN"),
	}
}

func TestRegisterAndLogin(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)
	require.NotEmpty(t, registered.UserID)
	require.Equal(t, identity.RoleCitizen, registered.Role)

	// the issued token parses back into the same identity
	ident, err := identity.FromToken(registered.Token, testSecret)
	require.NoError(t, err)
	require.Equal(t, registered.UserID, ident.UserID)
	require.Equal(t, identity.RoleCitizen, ident.Role)

	loggedIn, err := svc.Login(ctx, dto.LoginRequestDto{
		Email:    ptr("ayana@example.com"),
		Password: ptr("correct-horse"),
	})
	require.NoError(t, err)
	require.Equal(t, registered.UserID, loggedIn.UserID)
	require.NotEmpty(t, loggedIn.Token)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = svc.Register(ctx, registerRequest())
	require.ErrorIs(t, err, myerrors.ErrEmailRegistered)
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("missing username", func(t *testing.T) {
		req := registerRequest()
		req.Username = nil
		_, err := svc.Register(ctx, req)
		require.ErrorIs(t, err, myerrors.ErrValidation)
	})

	t.Run("malformed email", func(t *testing.T) {
		req := registerRequest()
		req.Email = ptr("not-an-email")
		_, err := svc.Register(ctx, req)
		require.ErrorIs(t, err, myerrors.ErrValidation)
	})

	t.Run("short password", func(t *testing.T) {
		req := registerRequest()
		req.Password = ptr("short")
		_, err := svc.Register(ctx, req)
		require.ErrorIs(t, err, myerrors.ErrValidation)
	})

	t.Run("admin self-registration", func(t *testing.T) {
		req := registerRequest()
		req.Role = ptr("ADMIN")
		_, err := svc.Register(ctx, req)
		require.ErrorIs(t, err, myerrors.ErrValidation)
	})
}

func TestLoginWrongPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, registerRequest())
	require.NoError(t, err)

	_, err = svc.Login(ctx, dto.LoginRequestDto{
		Email:    ptr("ayana@example.com"),
		Password: ptr("wrong-password"),
	})
	require.ErrorIs(t, err, myerrors.ErrUnknownCredentials)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), dto.LoginRequestDto{
		Email:    ptr("nobody@example.com"),
		Password: ptr("irrelevant-pass"),
	})
	require.ErrorIs(t, err, myerrors.ErrUnknownCredentials)
}

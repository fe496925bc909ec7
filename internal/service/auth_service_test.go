package service

import (
	"context"
	"testing"
	"time"

	"spellwrite/internal/security"
	"spellwrite/internal/validation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestAuthService() (*AuthService, *memoryUsers) {
	users := newMemoryUsers()
	return NewAuthService(users, security.NewTokenSigner("test-secret"), time.Hour), users
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	user, err := svc.Register(ctx, " Kid@Example.com ", "password123", "Kid Writer")
	require.NoError(t, err)
	assert.Equal(t, "kid@example.com", user.Email)

	_, err = svc.Register(ctx, "kid@example.com", "password123", "Kid Again")
	assert.ErrorIs(t, err, ErrEmailTaken)

	issued, loggedIn, err := svc.Login(ctx, "KID@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
	assert.NotEmpty(t, issued.Token)

	current, err := svc.ValidateSession(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, current.ID)

	_, _, err = svc.Login(ctx, "kid@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, _, err = svc.Login(ctx, "nobody@example.com", "password123")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService()

	_, err := svc.Register(context.Background(), "not-an-email", "password123", "Kid")
	var verr validation.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "email", verr.Field)

	_, err = svc.Register(context.Background(), "kid@example.com", "short", "Kid")
	assert.ErrorAs(t, err, &verr)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc, _ := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "kid@example.com", "password123", "Kid")
	require.NoError(t, err)
	issued, _, err := svc.Login(ctx, "kid@example.com", "password123")
	require.NoError(t, err)

	require.NoError(t, svc.Logout(ctx, issued.Token))
	_, err = svc.ValidateSession(ctx, issued.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	assert.NoError(t, svc.Logout(ctx, "garbage"))
}

func TestValidateSessionExpired(t *testing.T) {
	svc, users := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "kid@example.com", "password123", "Kid")
	require.NoError(t, err)
	issued, _, err := svc.Login(ctx, "kid@example.com", "password123")
	require.NoError(t, err)

	users.expireAll()
	_, err = svc.ValidateSession(ctx, issued.Token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	session, _ := users.GetSession(ctx, issued.Session.ID)
	assert.Nil(t, session)
}

func TestValidateSessionRejectsForeignToken(t *testing.T) {
	svc, _ := newTestAuthService()
	other := security.NewTokenSigner("other-secret")

	token, err := other.Sign("sess", "user", time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = svc.ValidateSession(context.Background(), token)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestOAuthLogin(t *testing.T) {
	svc, users := newTestAuthService()
	ctx := context.Background()

	t.Run("creates account", func(t *testing.T) {
		_, user, err := svc.OAuthLogin(ctx, "google", "sub-1", "new@example.com", "")
		require.NoError(t, err)
		assert.Equal(t, "new", user.Name)
		assert.Equal(t, "google", user.OAuthProvider)

		_, again, err := svc.OAuthLogin(ctx, "google", "sub-1", "new@example.com", "")
		require.NoError(t, err)
		assert.Equal(t, user.ID, again.ID)
	})

	t.Run("links password account", func(t *testing.T) {
		existing, err := svc.Register(ctx, "parent@example.com", "password123", "Parent")
		require.NoError(t, err)

		_, user, err := svc.OAuthLogin(ctx, "google", "sub-2", "parent@example.com", "Parent")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, user.ID)

		linked, _ := users.GetUserByID(ctx, existing.ID)
		assert.Equal(t, "sub-2", linked.OAuthSubject)
	})

	t.Run("refuses second provider identity", func(t *testing.T) {
		_, _, err := svc.OAuthLogin(ctx, "google", "sub-3", "parent@example.com", "Parent")
		assert.ErrorIs(t, err, ErrEmailTaken)
	})

	t.Run("requires subject", func(t *testing.T) {
		_, _, err := svc.OAuthLogin(ctx, "google", "", "x@example.com", "")
		assert.Error(t, err)
	})
}

func TestCleanupExpiredSessions(t *testing.T) {
	svc, users := newTestAuthService()
	ctx := context.Background()

	_, err := svc.Register(ctx, "kid@example.com", "password123", "Kid")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "kid@example.com", "password123")
	require.NoError(t, err)
	_, _, err = svc.Login(ctx, "kid@example.com", "password123")
	require.NoError(t, err)

	users.expireAll()
	n, err := svc.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

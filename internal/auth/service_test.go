package auth

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage/memory"
)

func newTestService(clock func() time.Time) *Service {
	svc := NewService(memory.NewUserStore(), "test-secret", time.Hour, zerolog.Nop())
	if clock != nil {
		svc = svc.WithClock(clock)
	}
	return svc
}

func TestRegisterAndLogin(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil)

	user, err := svc.Register(ctx, "alice", "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	require.NotZero(t, user.UserID)
	require.Equal(t, domain.RoleUser, user.Role)
	require.NotEqual(t, "correct horse battery", user.PasswordHash, "password must be hashed")

	token, loggedIn, err := svc.Login(ctx, "alice@example.com", "correct horse battery")
	require.NoError(t, err)
	require.NotEmpty(t, token)
	require.Equal(t, user.UserID, loggedIn.UserID)

	authed, err := svc.Authenticate(ctx, token)
	require.NoError(t, err)
	require.Equal(t, user.UserID, authed.UserID)
	require.Equal(t, "alice@example.com", authed.Email)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil)

	_, err := svc.Register(ctx, "alice", "alice@example.com", "password-one")
	require.NoError(t, err)

	_, err = svc.Register(ctx, "alice2", "alice@example.com", "password-two")
	require.ErrorIs(t, err, ErrEmailTaken)
}

func TestLogin_WrongPassword(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil)

	_, err := svc.Register(ctx, "alice", "alice@example.com", "the real password")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "alice@example.com", "a wrong password")
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestLogin_UnknownEmail(t *testing.T) {
	svc := newTestService(nil)
	_, _, err := svc.Login(context.Background(), "nobody@example.com", "whatever")
	// Same error as a wrong password so callers cannot probe for emails
	require.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestAuthenticate_ExpiredToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	svc := newTestService(clock)

	user, err := svc.Register(ctx, "alice", "alice@example.com", "some password")
	require.NoError(t, err)

	token, err := svc.IssueToken(user)
	require.NoError(t, err)

	// Advance past the 1h TTL
	now = now.Add(2 * time.Hour)
	_, err = svc.Authenticate(ctx, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_Garbage(t *testing.T) {
	svc := newTestService(nil)
	_, err := svc.Authenticate(context.Background(), "not.a.jwt")
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_ForeignSecret(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(nil)
	other := NewService(memory.NewUserStore(), "different-secret", time.Hour, zerolog.Nop())

	user, err := svc.Register(ctx, "alice", "alice@example.com", "some password")
	require.NoError(t, err)

	token, err := other.IssueToken(user)
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestAuthenticate_DeletedUser(t *testing.T) {
	// Token is valid but its subject no longer exists
	svc := newTestService(nil)
	ghost := &domain.User{UserID: 999, Email: "ghost@example.com", Role: domain.RoleUser}

	token, err := svc.IssueToken(ghost)
	require.NoError(t, err)

	_, err = svc.Authenticate(context.Background(), token)
	require.ErrorIs(t, err, ErrInvalidToken)
}

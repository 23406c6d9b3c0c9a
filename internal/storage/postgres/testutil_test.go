package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	pgcontainer "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"crypto-predict/internal/domain"
)

// setupTestDB starts a PostgreSQL container, applies the embedded migrations
// and returns a pool. The cleanup function must be called after the test.
func setupTestDB(t *testing.T) (*Pool, func()) {
	t.Helper()

	ctx := context.Background()

	container, err := pgcontainer.Run(ctx, "postgres:15-alpine",
		pgcontainer.WithDatabase("testdb"),
		pgcontainer.WithUsername("test"),
		pgcontainer.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	require.NoError(t, err, "failed to start postgres container")

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err, "failed to get connection string")

	require.NoError(t, Migrate(dsn), "failed to apply migrations")

	pool, err := NewPool(ctx, dsn)
	require.NoError(t, err, "failed to create pool")

	cleanup := func() {
		pool.Close()
		if err := container.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}

	return pool, cleanup
}

// seedAsset inserts an asset and returns it with its assigned ID.
func seedAsset(t *testing.T, pool *Pool, symbol, name string) *domain.Asset {
	t.Helper()

	asset := &domain.Asset{Symbol: symbol, Name: name}
	require.NoError(t, NewAssetStore(pool).Insert(context.Background(), asset))
	require.NotZero(t, asset.AssetID)
	return asset
}

// seedTimeframe inserts a timeframe and returns it with its assigned ID.
func seedTimeframe(t *testing.T, pool *Pool, code string) *domain.Timeframe {
	t.Helper()

	tf := &domain.Timeframe{Code: code, Description: code}
	require.NoError(t, NewTimeframeStore(pool).Insert(context.Background(), tf))
	require.NotZero(t, tf.TimeframeID)
	return tf
}

// seedUser inserts a user and returns it with its assigned ID.
func seedUser(t *testing.T, pool *Pool, email string) *domain.User {
	t.Helper()

	user := &domain.User{UserName: "tester", Email: email, PasswordHash: "hash", Role: domain.RoleUser}
	require.NoError(t, NewUserStore(pool).Insert(context.Background(), user))
	require.NotZero(t, user.UserID)
	return user
}

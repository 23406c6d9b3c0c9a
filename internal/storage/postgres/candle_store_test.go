package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"crypto-predict/internal/domain"
)

func TestCandleStore_InsertAndGetRecent(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	asset := seedAsset(t, pool, "BTC", "Bitcoin")
	tf := seedTimeframe(t, pool, "1h")
	store := NewCandleStore(pool)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		require.NoError(t, store.Insert(ctx, &domain.Candle{
			AssetID: asset.AssetID, TimeframeID: tf.TimeframeID,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      100, High: 110, Low: 90, Close: 100 + float64(i), Volume: 1000,
			Exchange: "binance",
		}))
	}

	recent, err := store.GetRecent(ctx, asset.AssetID, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, 102.0, recent[0].Close)
	require.Equal(t, 101.0, recent[1].Close)

	latest, err := store.GetLatest(ctx, asset.AssetID)
	require.NoError(t, err)
	require.Equal(t, 102.0, latest.Close)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, count)
}

func TestCandleStore_InsertBulkAndDuplicates(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	asset := seedAsset(t, pool, "ETH", "Ethereum")
	tf := seedTimeframe(t, pool, "1h")
	store := NewCandleStore(pool)
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	batch := []*domain.Candle{
		{AssetID: asset.AssetID, TimeframeID: tf.TimeframeID, Timestamp: ts, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
		{AssetID: asset.AssetID, TimeframeID: tf.TimeframeID, Timestamp: ts, Open: 1, High: 2, Low: 0.5, Close: 1.5, Volume: 10},
	}

	// Identical rows are accepted; the schema carries no unique constraint
	n, err := store.InsertBulk(ctx, batch)
	require.NoError(t, err)
	require.Equal(t, 2, n)

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
}

func TestCandleStore_HasTimestamp(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	asset := seedAsset(t, pool, "SOL", "Solana")
	tf := seedTimeframe(t, pool, "1h")
	store := NewCandleStore(pool)
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, &domain.Candle{
		AssetID: asset.AssetID, TimeframeID: tf.TimeframeID, Timestamp: ts,
		Open: 1, High: 1, Low: 1, Close: 1, Volume: 1,
	}))

	ok, err := store.HasTimestamp(ctx, asset.AssetID, tf.TimeframeID, ts)
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = store.HasTimestamp(ctx, asset.AssetID, tf.TimeframeID, ts.Add(time.Hour))
	require.NoError(t, err)
	require.False(t, ok)
}

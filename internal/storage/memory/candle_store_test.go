package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

func candleAt(assetID int64, ts time.Time, close float64) *domain.Candle {
	return &domain.Candle{
		AssetID: assetID, TimeframeID: 1, Timestamp: ts,
		Open: close, High: close, Low: close, Close: close, Volume: 1,
	}
}

func TestCandleStore_GetRecentNewestFirst(t *testing.T) {
	ctx := context.Background()
	store := NewCandleStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Insert out of order
	require.NoError(t, store.Insert(ctx, candleAt(1, base.Add(2*time.Hour), 102)))
	require.NoError(t, store.Insert(ctx, candleAt(1, base, 100)))
	require.NoError(t, store.Insert(ctx, candleAt(1, base.Add(time.Hour), 101)))

	recent, err := store.GetRecent(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	require.Equal(t, 102.0, recent[0].Close)
	require.Equal(t, 101.0, recent[1].Close)
}

func TestCandleStore_DuplicatesAccumulate(t *testing.T) {
	// No uniqueness on (asset, timeframe, timestamp)
	ctx := context.Background()
	store := NewCandleStore()
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, candleAt(1, ts, 100)))
	require.NoError(t, store.Insert(ctx, candleAt(1, ts, 100)))

	count, err := store.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)
}

func TestCandleStore_GetLatestPerAsset(t *testing.T) {
	ctx := context.Background()
	store := NewCandleStore()
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, candleAt(1, base, 100)))
	require.NoError(t, store.Insert(ctx, candleAt(1, base.Add(time.Hour), 110)))
	require.NoError(t, store.Insert(ctx, candleAt(2, base, 2000)))

	latest, err := store.GetLatestPerAsset(ctx)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	require.Equal(t, 110.0, latest[0].Close)
	require.Equal(t, 2000.0, latest[1].Close)
}

func TestCandleStore_HasTimestamp(t *testing.T) {
	ctx := context.Background()
	store := NewCandleStore()
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, store.Insert(ctx, candleAt(1, ts, 100)))

	ok, err := store.HasTimestamp(ctx, 1, 1, ts)
	require.NoError(t, err)
	require.True(t, ok)

	// Different timeframe, asset, or time all miss
	ok, _ = store.HasTimestamp(ctx, 1, 2, ts)
	require.False(t, ok)
	ok, _ = store.HasTimestamp(ctx, 2, 1, ts)
	require.False(t, ok)
	ok, _ = store.HasTimestamp(ctx, 1, 1, ts.Add(time.Second))
	require.False(t, ok)
}

func TestCandleStore_GetLatestMissing(t *testing.T) {
	_, err := NewCandleStore().GetLatest(context.Background(), 1)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

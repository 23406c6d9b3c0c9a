package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"crypto-predict/internal/domain"
)

func TestFeatureStore_JoinedRows(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	asset := seedAsset(t, pool, "BTC", "Bitcoin")
	tf := seedTimeframe(t, pool, "1h")
	candles := NewCandleStore(pool)
	sentiments := NewSentimentStore(pool)
	store := NewFeatureStore(pool)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	// Three candles, sentiment only at the first two timestamps
	for i := 0; i < 3; i++ {
		require.NoError(t, candles.Insert(ctx, &domain.Candle{
			AssetID: asset.AssetID, TimeframeID: tf.TimeframeID,
			Timestamp: base.Add(time.Duration(i) * time.Hour),
			Open:      100, High: 110, Low: 90, Close: 100 + float64(i), Volume: 1000,
		}))
	}
	for i := 0; i < 2; i++ {
		require.NoError(t, sentiments.Insert(ctx, &domain.Sentiment{
			AssetID: asset.AssetID, Timestamp: base.Add(time.Duration(i) * time.Hour),
			AvgSentiment: 0.25, SentCount: 4, PosCount: 2, NegCount: 1, NeuCount: 1,
			PosRatio: 0.5, NegRatio: 0.25, NeuRatio: 0.25, HasNews: 1,
		}))
	}

	rows, err := store.JoinedRows(ctx, asset.AssetID, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2, "candle without matching sentiment must not join")

	// Newest first
	require.Equal(t, 101.0, rows[0].Close)
	require.Equal(t, 100.0, rows[1].Close)
	require.Equal(t, 0.25, rows[0].AvgSentiment)
	require.Equal(t, 1, rows[0].HasNews)
}

func TestFeatureStore_Limit(t *testing.T) {
	pool, cleanup := setupTestDB(t)
	defer cleanup()

	ctx := context.Background()
	asset := seedAsset(t, pool, "ETH", "Ethereum")
	tf := seedTimeframe(t, pool, "1h")
	candles := NewCandleStore(pool)
	sentiments := NewSentimentStore(pool)
	store := NewFeatureStore(pool)
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Hour)
		require.NoError(t, candles.Insert(ctx, &domain.Candle{
			AssetID: asset.AssetID, TimeframeID: tf.TimeframeID, Timestamp: ts,
			Open: 1, High: 1, Low: 1, Close: float64(i), Volume: 1,
		}))
		require.NoError(t, sentiments.Insert(ctx, &domain.Sentiment{AssetID: asset.AssetID, Timestamp: ts}))
	}

	rows, err := store.JoinedRows(ctx, asset.AssetID, 3)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	require.Equal(t, 4.0, rows[0].Close, "limit keeps the newest rows")
}

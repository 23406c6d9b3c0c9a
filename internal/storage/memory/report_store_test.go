package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"crypto-predict/internal/domain"
)

func newReportFixture(t *testing.T) (*ReportStore, *AssetStore, *CandleStore, *PredictionStore) {
	t.Helper()
	assets := NewAssetStore()
	users := NewUserStore()
	candles := NewCandleStore()
	predictions := NewPredictionStore()
	require.NoError(t, assets.Insert(context.Background(), &domain.Asset{Symbol: "BTC", Name: "Bitcoin"}))
	return NewReportStore(assets, users, candles, predictions), assets, candles, predictions
}

func TestReportStore_MatchedPredictions(t *testing.T) {
	ctx := context.Background()
	store, _, candles, predictions := newReportFixture(t)
	target := time.Date(2026, 3, 1, 13, 0, 0, 0, time.UTC)

	require.NoError(t, predictions.InsertBulk(ctx, []*domain.Prediction{
		{AssetID: 1, TimeframeID: 1, UserID: 1, Timestamp: target, PredictedPrice: 50100, CreatedAt: target.Add(-time.Hour)},
		{AssetID: 1, TimeframeID: 1, UserID: 1, Timestamp: target.Add(time.Hour), PredictedPrice: 50200, CreatedAt: target.Add(-time.Hour)},
	}))

	// Only the first target has a realized candle
	require.NoError(t, candles.Insert(ctx, candleAt(1, target, 50000)))

	matches, err := store.MatchedPredictions(ctx, 10)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	require.Equal(t, "BTC", matches[0].Symbol)
	require.Equal(t, 50100.0, matches[0].PredictedPrice)
	require.Equal(t, 50000.0, matches[0].ActualClose)
}

func TestReportStore_Stats(t *testing.T) {
	ctx := context.Background()
	store, _, candles, predictions := newReportFixture(t)
	ts := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, candles.Insert(ctx, candleAt(1, ts, 100)))
	require.NoError(t, candles.Insert(ctx, candleAt(1, ts.Add(time.Hour), 101)))
	require.NoError(t, predictions.InsertBulk(ctx, []*domain.Prediction{
		{AssetID: 1, TimeframeID: 1, UserID: 1, Timestamp: ts, PredictedPrice: 100, CreatedAt: ts},
	}))

	stats, err := store.Stats(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 0, stats.TotalUsers)
	require.EqualValues(t, 2, stats.TotalCandles)
	require.EqualValues(t, 1, stats.TotalPredictions)
}

package memory

import (
	"context"
	"sort"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// ReportStore is an in-memory implementation of storage.ReportStore built on
// top of the entity stores.
type ReportStore struct {
	assets      *AssetStore
	users       *UserStore
	candles     *CandleStore
	predictions *PredictionStore
}

// NewReportStore creates a new in-memory report store.
func NewReportStore(assets *AssetStore, users *UserStore, candles *CandleStore, predictions *PredictionStore) *ReportStore {
	return &ReportStore{assets: assets, users: users, candles: candles, predictions: predictions}
}

// Compile-time interface check.
var _ storage.ReportStore = (*ReportStore)(nil)

// MatchedPredictions joins predictions to realized candles on exact
// (asset_id, timestamp), most recent predictions first, up to limit.
func (s *ReportStore) MatchedPredictions(ctx context.Context, limit int) ([]*domain.MatchedPrediction, error) {
	// candle close keyed by (asset_id, timestamp); later duplicates win,
	// matching the unordered join of the SQL implementation
	type key struct {
		assetID int64
		tsNano  int64
	}
	closes := make(map[key]float64)
	for _, c := range s.candles.snapshot() {
		closes[key{c.AssetID, c.Timestamp.UnixNano()}] = c.Close
	}

	preds := s.predictions.snapshot()
	sort.Slice(preds, func(i, j int) bool {
		if !preds[i].CreatedAt.Equal(preds[j].CreatedAt) {
			return preds[i].CreatedAt.After(preds[j].CreatedAt)
		}
		return preds[i].PredictionID > preds[j].PredictionID
	})

	var matches []*domain.MatchedPrediction
	for _, p := range preds {
		actual, ok := closes[key{p.AssetID, p.Timestamp.UnixNano()}]
		if !ok {
			continue
		}
		symbol := ""
		if a, err := s.assets.GetByID(ctx, p.AssetID); err == nil {
			symbol = a.Symbol
		}
		matches = append(matches, &domain.MatchedPrediction{
			Symbol:         symbol,
			Timestamp:      p.Timestamp,
			PredictedPrice: p.PredictedPrice,
			ActualClose:    actual,
			Confidence:     p.Confidence,
			ModelUsed:      p.ModelUsed,
			CreatedAt:      p.CreatedAt,
		})
		if limit > 0 && len(matches) == limit {
			break
		}
	}
	return matches, nil
}

// Stats returns database volume counters for the admin overview.
func (s *ReportStore) Stats(ctx context.Context) (*domain.SystemStats, error) {
	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	candles, err := s.candles.Count(ctx)
	if err != nil {
		return nil, err
	}
	preds, err := s.predictions.Count(ctx)
	if err != nil {
		return nil, err
	}
	return &domain.SystemStats{
		TotalUsers:       users,
		TotalCandles:     candles,
		TotalPredictions: preds,
	}, nil
}

package memory

import (
	"context"
	"sort"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// FeatureStore is an in-memory implementation of storage.FeatureStore built
// on top of the candle and sentiment stores. The join matches the SQL
// implementation: strict (asset_id, timestamp) equality, nothing fuzzy.
type FeatureStore struct {
	candles    *CandleStore
	sentiments *SentimentStore
}

// NewFeatureStore creates a new in-memory feature store.
func NewFeatureStore(candles *CandleStore, sentiments *SentimentStore) *FeatureStore {
	return &FeatureStore{candles: candles, sentiments: sentiments}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

// JoinedRows returns up to limit candle⋈sentiment rows, newest first.
func (s *FeatureStore) JoinedRows(_ context.Context, assetID int64, limit int) ([]domain.FeatureRow, error) {
	sentimentByTs := make(map[int64]*domain.Sentiment)
	for _, r := range s.sentiments.snapshot() {
		if r.AssetID == assetID {
			sentimentByTs[r.Timestamp.UnixNano()] = r
		}
	}

	candles := s.candles.snapshot()
	sortCandlesDesc(candles)

	var rows []domain.FeatureRow
	for _, c := range candles {
		if c.AssetID != assetID {
			continue
		}
		sn, ok := sentimentByTs[c.Timestamp.UnixNano()]
		if !ok {
			continue
		}
		rows = append(rows, domain.FeatureRow{
			Timestamp:    c.Timestamp,
			Open:         c.Open,
			High:         c.High,
			Low:          c.Low,
			Close:        c.Close,
			Volume:       c.Volume,
			AvgSentiment: sn.AvgSentiment,
			SentCount:    sn.SentCount,
			PosCount:     sn.PosCount,
			NegCount:     sn.NegCount,
			NeuCount:     sn.NeuCount,
			PosRatio:     sn.PosRatio,
			NegRatio:     sn.NegRatio,
			NeuRatio:     sn.NeuRatio,
			HasNews:      sn.HasNews,
		})
		if limit > 0 && len(rows) == limit {
			break
		}
	}

	// snapshot order already newest-first but make the contract explicit
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Timestamp.After(rows[j].Timestamp) })
	return rows, nil
}

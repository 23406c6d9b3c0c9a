package postgres

import (
	"context"
	"fmt"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// FeatureStore implements storage.FeatureStore using PostgreSQL.
type FeatureStore struct {
	pool *Pool
}

// NewFeatureStore creates a new FeatureStore.
func NewFeatureStore(pool *Pool) *FeatureStore {
	return &FeatureStore{pool: pool}
}

// Compile-time interface check.
var _ storage.FeatureStore = (*FeatureStore)(nil)

// JoinedRows returns up to limit candle⋈sentiment rows, newest first.
// Strict equality join on (asset_id, timestamp): candles without a sentiment
// record at the exact same instant do not appear. NULL sentiment sub-fields
// are defaulted to zero at scan time.
func (s *FeatureStore) JoinedRows(ctx context.Context, assetID int64, limit int) ([]domain.FeatureRow, error) {
	query := `
		SELECT c.timestamp, c.open, c.high, c.low, c.close, c.volume,
			COALESCE(sn.avg_sentiment, 0), COALESCE(sn.sent_count, 0),
			COALESCE(sn.pos_count, 0), COALESCE(sn.neg_count, 0), COALESCE(sn.neu_count, 0),
			COALESCE(sn.pos_ratio, 0), COALESCE(sn.neg_ratio, 0), COALESCE(sn.neu_ratio, 0),
			COALESCE(sn.has_news, 0)
		FROM candle_ohlcv c
		INNER JOIN sentiments sn
			ON sn.asset_id = c.asset_id AND sn.timestamp = c.timestamp
		WHERE c.asset_id = $1
		ORDER BY c.timestamp DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, assetID, limit)
	if err != nil {
		return nil, fmt.Errorf("query feature rows: %w", err)
	}
	defer rows.Close()

	var features []domain.FeatureRow
	for rows.Next() {
		var r domain.FeatureRow
		err := rows.Scan(
			&r.Timestamp, &r.Open, &r.High, &r.Low, &r.Close, &r.Volume,
			&r.AvgSentiment, &r.SentCount,
			&r.PosCount, &r.NegCount, &r.NeuCount,
			&r.PosRatio, &r.NegRatio, &r.NeuRatio,
			&r.HasNews,
		)
		if err != nil {
			return nil, fmt.Errorf("scan feature row: %w", err)
		}
		features = append(features, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate feature rows: %w", err)
	}
	return features, nil
}

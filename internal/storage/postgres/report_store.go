package postgres

import (
	"context"
	"fmt"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// ReportStore implements storage.ReportStore using PostgreSQL.
type ReportStore struct {
	pool *Pool
}

// NewReportStore creates a new ReportStore.
func NewReportStore(pool *Pool) *ReportStore {
	return &ReportStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ReportStore = (*ReportStore)(nil)

// MatchedPredictions joins predictions to realized candles on exact
// (asset_id, timestamp), most recent predictions first, up to limit.
// Predictions whose target time has no candle yet are excluded by the inner
// join: only predictions that have "come true" in the timeline are scored.
func (s *ReportStore) MatchedPredictions(ctx context.Context, limit int) ([]*domain.MatchedPrediction, error) {
	query := `
		SELECT a.symbol, p.timestamp, p.predicted_price, c.close,
			COALESCE(p.confidence, 0), COALESCE(p.model_used, ''), p.created_at
		FROM predictions p
		INNER JOIN candle_ohlcv c
			ON c.asset_id = p.asset_id AND c.timestamp = p.timestamp
		INNER JOIN crypto_assets a
			ON a.asset_id = p.asset_id
		ORDER BY p.created_at DESC, p.prediction_id DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("query matched predictions: %w", err)
	}
	defer rows.Close()

	var matches []*domain.MatchedPrediction
	for rows.Next() {
		var m domain.MatchedPrediction
		err := rows.Scan(
			&m.Symbol, &m.Timestamp, &m.PredictedPrice, &m.ActualClose,
			&m.Confidence, &m.ModelUsed, &m.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan matched prediction: %w", err)
		}
		matches = append(matches, &m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate matched predictions: %w", err)
	}
	return matches, nil
}

// Stats returns database volume counters for the admin overview.
func (s *ReportStore) Stats(ctx context.Context) (*domain.SystemStats, error) {
	query := `
		SELECT
			(SELECT count(*) FROM users),
			(SELECT count(*) FROM candle_ohlcv),
			(SELECT count(*) FROM predictions)
	`

	var st domain.SystemStats
	if err := s.pool.QueryRow(ctx, query).Scan(&st.TotalUsers, &st.TotalCandles, &st.TotalPredictions); err != nil {
		return nil, fmt.Errorf("query system stats: %w", err)
	}
	return &st, nil
}

package postgres

import (
	"context"
	"fmt"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// PredictionStore implements storage.PredictionStore using PostgreSQL.
type PredictionStore struct {
	pool *Pool
}

// NewPredictionStore creates a new PredictionStore.
func NewPredictionStore(pool *Pool) *PredictionStore {
	return &PredictionStore{pool: pool}
}

// Compile-time interface check.
var _ storage.PredictionStore = (*PredictionStore)(nil)

// InsertBulk appends all predictions in a single transaction and assigns
// their PredictionIDs. All-or-nothing: on any failure the transaction rolls
// back and no IDs are assigned.
func (s *PredictionStore) InsertBulk(ctx context.Context, preds []*domain.Prediction) error {
	if len(preds) == 0 {
		return nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO predictions (
			asset_id, timeframe_id, user_id, timestamp,
			predicted_price, confidence, model_used, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING prediction_id
	`

	// Assigned IDs become visible on the domain objects only after commit.
	ids := make([]int64, len(preds))
	for i, p := range preds {
		if p == nil || p.AssetID == 0 || p.UserID == 0 {
			return storage.ErrInvalidInput
		}
		err := tx.QueryRow(ctx, query,
			p.AssetID, p.TimeframeID, p.UserID, p.Timestamp.UTC(),
			p.PredictedPrice, p.Confidence, p.ModelUsed, p.CreatedAt.UTC(),
		).Scan(&ids[i])
		if err != nil {
			return fmt.Errorf("insert prediction in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}

	for i, p := range preds {
		p.PredictionID = ids[i]
	}
	return nil
}

// GetRecent retrieves up to limit predictions, newest first.
func (s *PredictionStore) GetRecent(ctx context.Context, limit int) ([]*domain.Prediction, error) {
	query := `
		SELECT prediction_id, asset_id, timeframe_id, user_id, timestamp,
			predicted_price, COALESCE(confidence, 0), COALESCE(model_used, ''), created_at
		FROM predictions
		ORDER BY created_at DESC, prediction_id DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent predictions: %w", err)
	}
	defer rows.Close()

	var preds []*domain.Prediction
	for rows.Next() {
		var p domain.Prediction
		err := rows.Scan(
			&p.PredictionID, &p.AssetID, &p.TimeframeID, &p.UserID, &p.Timestamp,
			&p.PredictedPrice, &p.Confidence, &p.ModelUsed, &p.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		preds = append(preds, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate predictions: %w", err)
	}
	return preds, nil
}

// Count returns the total number of predictions.
func (s *PredictionStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM predictions`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count predictions: %w", err)
	}
	return count, nil
}

package postgres

import (
	"context"
	"fmt"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// TimeframeStore implements storage.TimeframeStore using PostgreSQL.
type TimeframeStore struct {
	pool *Pool
}

// NewTimeframeStore creates a new TimeframeStore.
func NewTimeframeStore(pool *Pool) *TimeframeStore {
	return &TimeframeStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TimeframeStore = (*TimeframeStore)(nil)

// Insert adds a new timeframe. Returns ErrDuplicateKey if the code exists.
func (s *TimeframeStore) Insert(ctx context.Context, tf *domain.Timeframe) error {
	query := `
		INSERT INTO timeframes (code, description)
		VALUES ($1, $2)
		RETURNING timeframe_id
	`

	err := s.pool.QueryRow(ctx, query, tf.Code, tf.Description).Scan(&tf.TimeframeID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert timeframe: %w", err)
	}
	return nil
}

// GetByCode retrieves a timeframe by code. Returns ErrNotFound if not exists.
func (s *TimeframeStore) GetByCode(ctx context.Context, code string) (*domain.Timeframe, error) {
	query := `SELECT timeframe_id, code, COALESCE(description, '') FROM timeframes WHERE code = $1`

	var tf domain.Timeframe
	err := s.pool.QueryRow(ctx, query, code).Scan(&tf.TimeframeID, &tf.Code, &tf.Description)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get timeframe by code: %w", err)
	}
	return &tf, nil
}

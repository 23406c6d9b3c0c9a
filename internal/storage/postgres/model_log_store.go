package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// ModelLogStore implements storage.ModelLogStore using PostgreSQL.
type ModelLogStore struct {
	pool *Pool
}

// NewModelLogStore creates a new ModelLogStore.
func NewModelLogStore(pool *Pool) *ModelLogStore {
	return &ModelLogStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ModelLogStore = (*ModelLogStore)(nil)

// Insert adds a retraining log row and assigns its ModelLogID.
// A zero UserID is stored as NULL (scheduler-triggered runs).
func (s *ModelLogStore) Insert(ctx context.Context, l *domain.ModelLog) error {
	query := `
		INSERT INTO model_logs (user_id, trained_at, records_count, status, error_message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING model_log_id
	`

	userID := sql.NullInt64{Int64: l.UserID, Valid: l.UserID != 0}

	err := s.pool.QueryRow(ctx, query,
		userID, l.TrainedAt.UTC(), l.RecordsCount, l.Status, l.ErrorMessage,
	).Scan(&l.ModelLogID)
	if err != nil {
		return fmt.Errorf("insert model log: %w", err)
	}
	return nil
}

// GetRecent retrieves up to limit log rows, newest first.
func (s *ModelLogStore) GetRecent(ctx context.Context, limit int) ([]*domain.ModelLog, error) {
	query := `
		SELECT model_log_id, COALESCE(user_id, 0), trained_at,
			COALESCE(records_count, 0), COALESCE(status, ''), COALESCE(error_message, '')
		FROM model_logs
		ORDER BY trained_at DESC, model_log_id DESC
		LIMIT $1
	`

	rows, err := s.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent model logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.ModelLog
	for rows.Next() {
		var l domain.ModelLog
		err := rows.Scan(
			&l.ModelLogID, &l.UserID, &l.TrainedAt,
			&l.RecordsCount, &l.Status, &l.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("scan model log: %w", err)
		}
		logs = append(logs, &l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate model logs: %w", err)
	}
	return logs, nil
}

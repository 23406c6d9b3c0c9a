package postgres

import (
	"context"
	"fmt"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// SentimentStore implements storage.SentimentStore using PostgreSQL.
type SentimentStore struct {
	pool *Pool
}

// NewSentimentStore creates a new SentimentStore.
func NewSentimentStore(pool *Pool) *SentimentStore {
	return &SentimentStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SentimentStore = (*SentimentStore)(nil)

const insertSentimentQuery = `
	INSERT INTO sentiments (
		asset_id, timestamp, avg_sentiment, sent_count, pos_count, neg_count,
		neu_count, pos_ratio, neg_ratio, neu_ratio, has_news
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	RETURNING sentiment_id
`

// Insert adds a sentiment record and assigns its SentimentID.
func (s *SentimentStore) Insert(ctx context.Context, r *domain.Sentiment) error {
	err := s.pool.QueryRow(ctx, insertSentimentQuery,
		r.AssetID, r.Timestamp.UTC(), r.AvgSentiment, r.SentCount,
		r.PosCount, r.NegCount, r.NeuCount,
		r.PosRatio, r.NegRatio, r.NeuRatio, r.HasNews,
	).Scan(&r.SentimentID)
	if err != nil {
		return fmt.Errorf("insert sentiment: %w", err)
	}
	return nil
}

// InsertBulk adds multiple records atomically.
func (s *SentimentStore) InsertBulk(ctx context.Context, records []*domain.Sentiment) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		if r == nil || r.AssetID == 0 {
			return 0, storage.ErrInvalidInput
		}
		err := tx.QueryRow(ctx, insertSentimentQuery,
			r.AssetID, r.Timestamp.UTC(), r.AvgSentiment, r.SentCount,
			r.PosCount, r.NegCount, r.NeuCount,
			r.PosRatio, r.NegRatio, r.NeuRatio, r.HasNews,
		).Scan(&r.SentimentID)
		if err != nil {
			return 0, fmt.Errorf("insert sentiment in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return len(records), nil
}

// GetRecent retrieves up to limit records for an asset, newest first.
func (s *SentimentStore) GetRecent(ctx context.Context, assetID int64, limit int) ([]*domain.Sentiment, error) {
	query := `
		SELECT sentiment_id, asset_id, timestamp,
			COALESCE(avg_sentiment, 0), COALESCE(sent_count, 0),
			COALESCE(pos_count, 0), COALESCE(neg_count, 0), COALESCE(neu_count, 0),
			COALESCE(pos_ratio, 0), COALESCE(neg_ratio, 0), COALESCE(neu_ratio, 0),
			COALESCE(has_news, 0)
		FROM sentiments
		WHERE asset_id = $1
		ORDER BY timestamp DESC, sentiment_id DESC
		LIMIT $2
	`

	rows, err := s.pool.Query(ctx, query, assetID, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent sentiments: %w", err)
	}
	defer rows.Close()

	var records []*domain.Sentiment
	for rows.Next() {
		var r domain.Sentiment
		err := rows.Scan(
			&r.SentimentID, &r.AssetID, &r.Timestamp,
			&r.AvgSentiment, &r.SentCount,
			&r.PosCount, &r.NegCount, &r.NeuCount,
			&r.PosRatio, &r.NegRatio, &r.NeuRatio,
			&r.HasNews,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sentiment: %w", err)
		}
		records = append(records, &r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sentiments: %w", err)
	}
	return records, nil
}

package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// CandleStore implements storage.CandleStore using PostgreSQL.
type CandleStore struct {
	pool *Pool
}

// NewCandleStore creates a new CandleStore.
func NewCandleStore(pool *Pool) *CandleStore {
	return &CandleStore{pool: pool}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

const candleColumns = `candle_id, asset_id, timeframe_id, timestamp, open, high, low, close, volume, exchange`

const insertCandleQuery = `
	INSERT INTO candle_ohlcv (asset_id, timeframe_id, timestamp, open, high, low, close, volume, exchange)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	RETURNING candle_id
`

// Insert adds a single candle and assigns its CandleID.
func (s *CandleStore) Insert(ctx context.Context, c *domain.Candle) error {
	err := s.pool.QueryRow(ctx, insertCandleQuery,
		c.AssetID, c.TimeframeID, c.Timestamp.UTC(),
		c.Open, c.High, c.Low, c.Close, c.Volume, c.Exchange,
	).Scan(&c.CandleID)
	if err != nil {
		return fmt.Errorf("insert candle: %w", err)
	}
	return nil
}

// InsertBulk adds multiple candles atomically. The whole batch rolls back on
// any failure. Returns the number of rows written.
func (s *CandleStore) InsertBulk(ctx context.Context, candles []*domain.Candle) (int, error) {
	if len(candles) == 0 {
		return 0, nil
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, c := range candles {
		if c == nil || c.AssetID == 0 || c.TimeframeID == 0 {
			return 0, storage.ErrInvalidInput
		}
		err := tx.QueryRow(ctx, insertCandleQuery,
			c.AssetID, c.TimeframeID, c.Timestamp.UTC(),
			c.Open, c.High, c.Low, c.Close, c.Volume, c.Exchange,
		).Scan(&c.CandleID)
		if err != nil {
			return 0, fmt.Errorf("insert candle in bulk: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit tx: %w", err)
	}
	return len(candles), nil
}

// GetLatest retrieves the most recent candle for an asset.
// Returns ErrNotFound when the asset has no candles.
func (s *CandleStore) GetLatest(ctx context.Context, assetID int64) (*domain.Candle, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM candle_ohlcv
		WHERE asset_id = $1
		ORDER BY timestamp DESC, candle_id DESC
		LIMIT 1
	`, candleColumns)

	var c domain.Candle
	err := s.pool.QueryRow(ctx, query, assetID).Scan(
		&c.CandleID, &c.AssetID, &c.TimeframeID, &c.Timestamp,
		&c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &c.Exchange,
	)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest candle: %w", err)
	}
	return &c, nil
}

// GetRecent retrieves up to limit candles for an asset, newest first.
func (s *CandleStore) GetRecent(ctx context.Context, assetID int64, limit int) ([]*domain.Candle, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM candle_ohlcv
		WHERE asset_id = $1
		ORDER BY timestamp DESC, candle_id DESC
		LIMIT $2
	`, candleColumns)

	rows, err := s.pool.Query(ctx, query, assetID, limit)
	if err != nil {
		return nil, fmt.Errorf("get recent candles: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// GetLatestPerAsset retrieves the newest candle of every asset.
func (s *CandleStore) GetLatestPerAsset(ctx context.Context) ([]*domain.Candle, error) {
	query := fmt.Sprintf(`
		SELECT DISTINCT ON (asset_id) %s
		FROM candle_ohlcv
		ORDER BY asset_id, timestamp DESC, candle_id DESC
	`, candleColumns)

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get latest candle per asset: %w", err)
	}
	defer rows.Close()

	return scanCandles(rows)
}

// HasTimestamp reports whether any candle exists at the exact timestamp.
func (s *CandleStore) HasTimestamp(ctx context.Context, assetID, timeframeID int64, ts time.Time) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM candle_ohlcv
			WHERE asset_id = $1 AND timeframe_id = $2 AND timestamp = $3
		)
	`

	var exists bool
	if err := s.pool.QueryRow(ctx, query, assetID, timeframeID, ts.UTC()).Scan(&exists); err != nil {
		return false, fmt.Errorf("check candle timestamp: %w", err)
	}
	return exists, nil
}

// Count returns the total number of candles.
func (s *CandleStore) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM candle_ohlcv`).Scan(&count); err != nil {
		return 0, fmt.Errorf("count candles: %w", err)
	}
	return count, nil
}

// scanCandles scans multiple rows into a slice of Candle.
func scanCandles(rows pgx.Rows) ([]*domain.Candle, error) {
	var candles []*domain.Candle

	for rows.Next() {
		var c domain.Candle
		err := rows.Scan(
			&c.CandleID, &c.AssetID, &c.TimeframeID, &c.Timestamp,
			&c.Open, &c.High, &c.Low, &c.Close, &c.Volume, &c.Exchange,
		)
		if err != nil {
			return nil, fmt.Errorf("scan candle: %w", err)
		}
		candles = append(candles, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate candles: %w", err)
	}
	return candles, nil
}

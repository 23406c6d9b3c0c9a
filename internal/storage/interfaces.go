package storage

import (
	"context"
	"time"

	"crypto-predict/internal/domain"
)

// AssetStore provides access to crypto_assets storage.
type AssetStore interface {
	// Insert adds a new asset and assigns its AssetID.
	// Returns ErrDuplicateKey if the symbol exists.
	Insert(ctx context.Context, a *domain.Asset) error

	// GetByID retrieves an asset by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, assetID int64) (*domain.Asset, error)

	// GetBySymbol retrieves an asset by uppercase symbol.
	// Returns ErrNotFound if not exists.
	GetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error)

	// GetAll retrieves all assets ordered by symbol.
	GetAll(ctx context.Context) ([]*domain.Asset, error)
}

// TimeframeStore provides access to timeframes storage.
type TimeframeStore interface {
	// Insert adds a new timeframe and assigns its TimeframeID.
	// Returns ErrDuplicateKey if the code exists.
	Insert(ctx context.Context, tf *domain.Timeframe) error

	// GetByCode retrieves a timeframe by code (e.g. "1h").
	// Returns ErrNotFound if not exists.
	GetByCode(ctx context.Context, code string) (*domain.Timeframe, error)
}

// UserStore provides access to users storage.
type UserStore interface {
	// Insert adds a new user and assigns its UserID.
	// Returns ErrDuplicateKey if the email is taken.
	Insert(ctx context.Context, u *domain.User) error

	// GetByID retrieves a user by ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, userID int64) (*domain.User, error)

	// GetByEmail retrieves a user by email. Returns ErrNotFound if not exists.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// Count returns the total number of users.
	Count(ctx context.Context) (int64, error)
}

// CandleStore provides access to candle_ohlcv storage.
//
// Candles carry no uniqueness constraint; duplicate bars under concurrent
// ingestion are possible and accepted.
type CandleStore interface {
	// Insert adds a single candle and assigns its CandleID.
	Insert(ctx context.Context, c *domain.Candle) error

	// InsertBulk adds multiple candles atomically. The whole batch rolls
	// back on any failure. Returns the number of rows written.
	InsertBulk(ctx context.Context, candles []*domain.Candle) (int, error)

	// GetLatest retrieves the most recent candle for an asset.
	// Returns ErrNotFound when the asset has no candles.
	GetLatest(ctx context.Context, assetID int64) (*domain.Candle, error)

	// GetRecent retrieves up to limit candles for an asset, newest first.
	GetRecent(ctx context.Context, assetID int64, limit int) ([]*domain.Candle, error)

	// GetLatestPerAsset retrieves the newest candle of every asset that has
	// at least one.
	GetLatestPerAsset(ctx context.Context) ([]*domain.Candle, error)

	// HasTimestamp reports whether any candle exists for the asset and
	// timeframe at the exact timestamp. Used for best-effort ingest dedup.
	HasTimestamp(ctx context.Context, assetID, timeframeID int64, ts time.Time) (bool, error)

	// Count returns the total number of candles.
	Count(ctx context.Context) (int64, error)
}

// SentimentStore provides access to sentiments storage.
type SentimentStore interface {
	// Insert adds a sentiment record and assigns its SentimentID.
	Insert(ctx context.Context, s *domain.Sentiment) error

	// InsertBulk adds multiple records atomically.
	InsertBulk(ctx context.Context, records []*domain.Sentiment) (int, error)

	// GetRecent retrieves up to limit records for an asset, newest first.
	GetRecent(ctx context.Context, assetID int64, limit int) ([]*domain.Sentiment, error)
}

// FeatureStore provides the candle⋈sentiment join feeding the model.
type FeatureStore interface {
	// JoinedRows returns up to limit rows for the asset where a candle and
	// a sentiment record share the exact same timestamp, newest first.
	// Coverage gaps on either side silently exclude rows: this is a strict
	// equality join, not a nearest-time join.
	JoinedRows(ctx context.Context, assetID int64, limit int) ([]domain.FeatureRow, error)
}

// PredictionStore provides access to predictions storage.
type PredictionStore interface {
	// InsertBulk appends all predictions in a single transaction and
	// assigns their PredictionIDs. All-or-nothing: on any failure no rows
	// persist and no IDs are assigned.
	InsertBulk(ctx context.Context, preds []*domain.Prediction) error

	// GetRecent retrieves up to limit predictions, newest first.
	GetRecent(ctx context.Context, limit int) ([]*domain.Prediction, error)

	// Count returns the total number of predictions.
	Count(ctx context.Context) (int64, error)
}

// ModelLogStore provides access to model_logs storage.
type ModelLogStore interface {
	// Insert adds a retraining log row and assigns its ModelLogID.
	Insert(ctx context.Context, l *domain.ModelLog) error

	// GetRecent retrieves up to limit log rows, newest first.
	GetRecent(ctx context.Context, limit int) ([]*domain.ModelLog, error)
}

// ReportStore provides the read side of the accuracy backtest.
type ReportStore interface {
	// MatchedPredictions joins predictions to realized candles on exact
	// (asset_id, timestamp), most recent predictions first, up to limit.
	MatchedPredictions(ctx context.Context, limit int) ([]*domain.MatchedPrediction, error)

	// Stats returns database volume counters for the admin overview.
	Stats(ctx context.Context) (*domain.SystemStats, error)
}

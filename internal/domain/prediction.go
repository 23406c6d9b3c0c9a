package domain

import "time"

// ModelLabel identifies the model that produced stored predictions.
const ModelLabel = "XGBoost_LSTM_Hybrid"

// Prediction represents a stored future price estimate.
// Corresponds to predictions table in PostgreSQL.
//
// Predictions are append-only: created by the projector in batches of five,
// never updated, read back by the accuracy reporter once the target timestamp
// has a realized candle.
type Prediction struct {
	PredictionID   int64     // PRIMARY KEY
	AssetID        int64     // FK crypto_assets
	TimeframeID    int64     // FK timeframes
	UserID         int64     // FK users, acting principal
	Timestamp      time.Time // target time the estimate refers to, UTC
	PredictedPrice float64   // rounded to 2 decimals at generation
	Confidence     float64   // sanitized fraction in [0, 1]
	ModelUsed      string
	CreatedAt      time.Time // generation wall-clock time, UTC
}

package domain

// Asset represents a tradable crypto asset.
// Corresponds to crypto_assets table in PostgreSQL.
type Asset struct {
	AssetID int64  // PRIMARY KEY
	Symbol  string // ticker symbol, stored uppercase (BTC, ETH)
	Name    string // display name
}

// Timeframe represents a candle aggregation interval.
// Corresponds to timeframes table in PostgreSQL.
type Timeframe struct {
	TimeframeID int64  // PRIMARY KEY
	Code        string // interval code (1h, 4h, 1d)
	Description string
}

// DefaultTimeframeCode is the interval the prediction pipeline operates on.
const DefaultTimeframeCode = "1h"

package domain

import "time"

// Candle represents one OHLCV price bar for an asset at a timeframe.
// Corresponds to candle_ohlcv table in PostgreSQL.
//
// No uniqueness constraint exists on (asset_id, timeframe_id, timestamp);
// concurrent ingestion may produce duplicate bars and readers must tolerate
// them.
type Candle struct {
	CandleID    int64     // PRIMARY KEY
	AssetID     int64     // FK crypto_assets
	TimeframeID int64     // FK timeframes
	Timestamp   time.Time // bar open time, UTC
	Open        float64
	High        float64
	Low         float64
	Close       float64
	Volume      float64
	Exchange    string // originating exchange, empty for CSV imports
}

package domain

import "time"

// Sentiment represents aggregated text-sentiment statistics for an asset at a
// single timestamp. Corresponds to sentiments table in PostgreSQL.
//
// Sentiment rows are joined to candles by exact (asset_id, timestamp)
// equality. Rows without a matching candle never reach the feature window.
type Sentiment struct {
	SentimentID  int64     // PRIMARY KEY
	AssetID      int64     // FK crypto_assets
	Timestamp    time.Time // UTC
	AvgSentiment float64   // mean score over the interval, [-1, 1]
	SentCount    int       // number of scored texts
	PosCount     int
	NegCount     int
	NeuCount     int
	PosRatio     float64
	NegRatio     float64
	NeuRatio     float64
	HasNews      int // 1 when at least one news item was seen
}

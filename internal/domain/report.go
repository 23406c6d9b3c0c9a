package domain

import "time"

// MatchedPrediction is one prediction joined to the realized candle at the
// same (asset_id, timestamp). Predictions whose target time has no realized
// candle yet are excluded by the join.
type MatchedPrediction struct {
	Symbol         string    // asset ticker as stored
	Timestamp      time.Time // prediction target time, UTC
	PredictedPrice float64
	ActualClose    float64
	Confidence     float64
	ModelUsed      string
	CreatedAt      time.Time // when the prediction was generated
}

// SystemStats summarizes database volume for the admin overview.
type SystemStats struct {
	TotalUsers       int64
	TotalCandles     int64
	TotalPredictions int64
}

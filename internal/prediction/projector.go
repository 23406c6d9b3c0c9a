// Package prediction turns one model output into five persisted future price
// points.
package prediction

import (
	"math"
	"time"

	"crypto-predict/internal/domain"
)

// HorizonSteps is the number of projected points per pipeline run.
const HorizonSteps = 5

// StepInterval is the spacing between projected points.
const StepInterval = time.Hour

// ProjectionInput carries everything the projector needs for one run.
type ProjectionInput struct {
	AssetID         int64
	TimeframeID     int64
	UserID          int64 // acting principal, required for audit
	CurrentPrice    float64
	PredictedReturn float64 // fractional return over the full horizon
	Confidence      float64 // already sanitized to [0, 1]
	Now             time.Time
}

// Project linearly interpolates the total predicted move across the horizon:
// step i carries i/HorizonSteps of the full return. Not a compounding model.
// Target timestamps are offsets from Now (generation wall-clock), not from
// the last candle, which makes replayed history slightly stale by design.
func Project(in ProjectionInput) []*domain.Prediction {
	now := in.Now.UTC()
	points := make([]*domain.Prediction, 0, HorizonSteps)

	for i := 1; i <= HorizonSteps; i++ {
		stepReturn := in.PredictedReturn * float64(i) / HorizonSteps
		points = append(points, &domain.Prediction{
			AssetID:        in.AssetID,
			TimeframeID:    in.TimeframeID,
			UserID:         in.UserID,
			Timestamp:      now.Add(time.Duration(i) * StepInterval),
			PredictedPrice: Round2(in.CurrentPrice * (1 + stepReturn)),
			Confidence:     in.Confidence,
			ModelUsed:      domain.ModelLabel,
			CreatedAt:      now,
		})
	}
	return points
}

// Round2 rounds half-up to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

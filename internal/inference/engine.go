// Package inference defines the boundary to the external prediction model
// and normalizes its loosely-typed output.
package inference

import (
	"context"
	"errors"

	"crypto-predict/internal/domain"
)

// ErrModel is returned when the external model signals an error payload.
// Model errors are never retried; they surface directly to the caller.
var ErrModel = errors.New("model error")

// Result is the model's raw prediction for one feature window.
type Result struct {
	// PredictedReturn is the fractional return over the full horizon.
	PredictedReturn float64 `json:"predicted_return"`

	// Confidence arrives either as a bare fraction (0.44) or a
	// percent-styled string ("44%"). Run it through SanitizeConfidence
	// before persisting.
	Confidence any `json:"confidence"`

	// Trend is a free-form direction label ("up", "down", "sideways").
	Trend string `json:"trend"`
}

// Engine is the external prediction model boundary. Implementations receive
// the ordered feature window and return a single point prediction.
type Engine interface {
	Predict(ctx context.Context, window *domain.FeatureWindow) (*Result, error)
}

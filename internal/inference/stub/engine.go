// Package stub provides a deterministic in-process model for tests and
// memory mode.
package stub

import (
	"context"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/inference"
)

// Engine is a stand-in model. It extrapolates the return between the two
// newest closes and reports a fixed percent-styled confidence, exercising
// the same sanitization path as the real model.
type Engine struct {
	// Err, when set, is returned from every Predict call.
	Err error

	// FixedReturn, when non-zero, overrides the extrapolated return.
	FixedReturn float64
}

// NewEngine creates a stub engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Compile-time interface check.
var _ inference.Engine = (*Engine)(nil)

// Predict returns a deterministic prediction derived from the window.
func (e *Engine) Predict(_ context.Context, window *domain.FeatureWindow) (*inference.Result, error) {
	if e.Err != nil {
		return nil, e.Err
	}

	ret := e.FixedReturn
	if ret == 0 && len(window.Rows) >= 2 {
		prev := window.Rows[len(window.Rows)-2].Close
		last := window.Rows[len(window.Rows)-1].Close
		if prev != 0 {
			ret = (last - prev) / prev
		}
	}

	trend := "sideways"
	switch {
	case ret > 0:
		trend = "up"
	case ret < 0:
		trend = "down"
	}

	return &inference.Result{
		PredictedReturn: ret,
		Confidence:      "75%",
		Trend:           trend,
	}, nil
}

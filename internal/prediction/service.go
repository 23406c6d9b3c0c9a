package prediction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/features"
	"crypto-predict/internal/inference"
	"crypto-predict/internal/observability"
	"crypto-predict/internal/storage"
)

// Service runs the full pipeline for one request: extract features, call the
// model, sanitize, project, persist. One synchronous pass per invocation; the
// write transaction is the only mutual-exclusion boundary, so concurrent runs
// for the same asset may interleave and duplicate target timestamps. That is
// accepted.
type Service struct {
	extractor   *features.Extractor
	engine      inference.Engine
	predictions storage.PredictionStore
	metrics     *observability.Metrics
	clock       func() time.Time
	logger      zerolog.Logger
}

// NewService creates the pipeline service.
func NewService(
	extractor *features.Extractor,
	engine inference.Engine,
	predictions storage.PredictionStore,
	logger zerolog.Logger,
) *Service {
	return &Service{
		extractor:   extractor,
		engine:      engine,
		predictions: predictions,
		clock:       func() time.Time { return time.Now().UTC() },
		logger:      logger.With().Str("component", "prediction").Logger(),
	}
}

// WithClock sets a custom clock for deterministic output.
func (s *Service) WithClock(clock func() time.Time) *Service {
	s.clock = clock
	return s
}

// WithMetrics attaches Prometheus instrumentation.
func (s *Service) WithMetrics(m *observability.Metrics) *Service {
	s.metrics = m
	return s
}

// Generate runs the pipeline for one asset/timeframe on behalf of userID and
// returns the five persisted predictions with assigned IDs.
//
// Failure taxonomy: features.ErrInsufficientData before the model is called,
// inference.ErrModel when the model signals an error, anything else from the
// write path is a persistence failure. No path retries, and on persistence
// failure the generated points are discarded rather than returned.
func (s *Service) Generate(ctx context.Context, asset *domain.Asset, tf *domain.Timeframe, userID int64) ([]*domain.Prediction, error) {
	start := s.clock()

	window, err := s.extractor.Window(ctx, asset.AssetID)
	if err != nil {
		s.observeRun(extractorStatus(err), start)
		return nil, err
	}

	modelStart := s.clock()
	result, err := s.engine.Predict(ctx, window)
	if err != nil {
		s.observeRun("model_error", start)
		return nil, fmt.Errorf("predict %s: %w", asset.Symbol, err)
	}
	if s.metrics != nil {
		s.metrics.ModelCallDuration.Observe(s.clock().Sub(modelStart).Seconds())
	}

	confidence := inference.SanitizeConfidence(result.Confidence)

	points := Project(ProjectionInput{
		AssetID:         asset.AssetID,
		TimeframeID:     tf.TimeframeID,
		UserID:          userID,
		CurrentPrice:    window.LatestClose(),
		PredictedReturn: result.PredictedReturn,
		Confidence:      confidence,
		Now:             s.clock(),
	})

	if err := s.predictions.InsertBulk(ctx, points); err != nil {
		s.observeRun("persistence_error", start)
		return nil, fmt.Errorf("persist predictions for %s: %w", asset.Symbol, err)
	}

	s.observeRun("success", start)
	if s.metrics != nil {
		s.metrics.PredictionsGenerated.Add(float64(len(points)))
	}
	s.logger.Info().
		Str("symbol", asset.Symbol).
		Int64("user_id", userID).
		Float64("predicted_return", result.PredictedReturn).
		Float64("confidence", confidence).
		Str("trend", result.Trend).
		Int("points", len(points)).
		Msg("predictions generated")

	return points, nil
}

// extractorStatus classifies a window failure for run accounting. A short
// window is expected operation; anything else is a store failure.
func extractorStatus(err error) string {
	if errors.Is(err, features.ErrInsufficientData) {
		return "insufficient_data"
	}
	return "store_error"
}

func (s *Service) observeRun(status string, start time.Time) {
	if s.metrics == nil {
		return
	}
	s.metrics.PipelineRuns.WithLabelValues(status).Inc()
	s.metrics.PipelineDuration.Observe(s.clock().Sub(start).Seconds())
}

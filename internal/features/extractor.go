// Package features builds the fixed-size model input window from joined
// candle and sentiment history.
package features

import (
	"context"
	"errors"
	"fmt"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// ErrInsufficientData is returned when fewer joined rows exist than the
// window requires. A hard precondition: no partial window is ever produced.
var ErrInsufficientData = errors.New("insufficient historical data")

// Extractor assembles feature windows for the prediction pipeline.
type Extractor struct {
	store      storage.FeatureStore
	windowSize int
}

// NewExtractor creates an Extractor with the default window size.
func NewExtractor(store storage.FeatureStore) *Extractor {
	return &Extractor{store: store, windowSize: domain.WindowSize}
}

// WithWindowSize overrides the window size. Only tests should shrink it.
func (e *Extractor) WithWindowSize(n int) *Extractor {
	e.windowSize = n
	return e
}

// Window returns exactly windowSize joined rows for the asset in
// chronological order, oldest first. The underlying join is strict
// (asset_id, timestamp) equality, so sentiment coverage gaps shrink the
// candidate set and can trigger ErrInsufficientData even when plenty of
// candles exist.
func (e *Extractor) Window(ctx context.Context, assetID int64) (*domain.FeatureWindow, error) {
	rows, err := e.store.JoinedRows(ctx, assetID, e.windowSize)
	if err != nil {
		return nil, fmt.Errorf("load feature rows: %w", err)
	}

	if len(rows) < e.windowSize {
		return nil, fmt.Errorf("%w: have %d joined rows, need %d", ErrInsufficientData, len(rows), e.windowSize)
	}

	// Store returns newest-first; the model consumes oldest-first.
	reversed := make([]domain.FeatureRow, len(rows))
	for i, r := range rows {
		reversed[len(rows)-1-i] = r
	}

	return &domain.FeatureWindow{AssetID: assetID, Rows: reversed}, nil
}

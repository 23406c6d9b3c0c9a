// Package backtest scores stored predictions against realized candle closes.
package backtest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crypto-predict/internal/prediction"
	"crypto-predict/internal/storage"
)

// DefaultPageSize caps one accuracy report.
const DefaultPageSize = 30

// AccuracyRow is one scored prediction for display.
type AccuracyRow struct {
	Symbol         string    `json:"symbol"` // uppercased for display
	Timestamp      time.Time `json:"timestamp"`
	PredictedPrice float64   `json:"predicted_price"`
	ActualPrice    float64   `json:"actual_price"`
	Accuracy       float64   `json:"accuracy"`
}

// Reporter produces accuracy reports from persisted predictions.
type Reporter struct {
	reports  storage.ReportStore
	pageSize int
}

// NewReporter creates a Reporter with the default page size.
func NewReporter(reports storage.ReportStore) *Reporter {
	return &Reporter{reports: reports, pageSize: DefaultPageSize}
}

// WithPageSize overrides the report page size.
func (r *Reporter) WithPageSize(n int) *Reporter {
	r.pageSize = n
	return r
}

// Report scores the most recent predictions whose target timestamp already
// has a realized candle. Unmatched predictions are silently excluded by the
// inner join: only predictions that have "come true" are scored.
func (r *Reporter) Report(ctx context.Context) ([]AccuracyRow, error) {
	matches, err := r.reports.MatchedPredictions(ctx, r.pageSize)
	if err != nil {
		return nil, fmt.Errorf("load matched predictions: %w", err)
	}

	rows := make([]AccuracyRow, 0, len(matches))
	for _, m := range matches {
		rows = append(rows, AccuracyRow{
			Symbol:         strings.ToUpper(m.Symbol),
			Timestamp:      m.Timestamp,
			PredictedPrice: prediction.Round2(m.PredictedPrice),
			ActualPrice:    prediction.Round2(m.ActualClose),
			Accuracy:       prediction.Round2(Accuracy(m.ActualClose, m.PredictedPrice)),
		})
	}
	return rows, nil
}

// Accuracy scores one prediction as a percentage in [0, 100].
// A zero actual close scores 0 instead of dividing by zero, and a miss
// larger than the actual price floors at 0 rather than going negative.
func Accuracy(actual, predicted float64) float64 {
	if actual == 0 {
		return 0
	}
	errAbs := predicted - actual
	if errAbs < 0 {
		errAbs = -errAbs
	}
	acc := 100 - (errAbs/actual)*100
	if acc < 0 {
		return 0
	}
	return acc
}

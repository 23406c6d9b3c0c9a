// Package reporting renders accuracy backtests for offline review.
package reporting

import (
	"context"
	"fmt"
	"time"

	"crypto-predict/internal/backtest"
	"crypto-predict/internal/storage"
)

// Report is one rendered accuracy backtest.
type Report struct {
	GeneratedAt time.Time

	// Stats summarizes database volume at generation time.
	TotalUsers       int64
	TotalCandles     int64
	TotalPredictions int64

	// Rows are the scored predictions, most recent first.
	Rows []backtest.AccuracyRow
}

// MeanAccuracy averages the row scores; 0 for an empty report.
func (r *Report) MeanAccuracy() float64 {
	if len(r.Rows) == 0 {
		return 0
	}
	var sum float64
	for _, row := range r.Rows {
		sum += row.Accuracy
	}
	return sum / float64(len(r.Rows))
}

// Generator assembles accuracy reports.
type Generator struct {
	reporter *backtest.Reporter
	reports  storage.ReportStore
	clock    func() time.Time
}

// NewGenerator creates a report generator.
func NewGenerator(reporter *backtest.Reporter, reports storage.ReportStore) *Generator {
	return &Generator{
		reporter: reporter,
		reports:  reports,
		clock:    func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock for deterministic output.
func (g *Generator) WithClock(clock func() time.Time) *Generator {
	g.clock = clock
	return g
}

// Generate runs the backtest and collects stats into a Report.
func (g *Generator) Generate(ctx context.Context) (*Report, error) {
	rows, err := g.reporter.Report(ctx)
	if err != nil {
		return nil, fmt.Errorf("run backtest: %w", err)
	}

	stats, err := g.reports.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stats: %w", err)
	}

	return &Report{
		GeneratedAt:      g.clock(),
		TotalUsers:       stats.TotalUsers,
		TotalCandles:     stats.TotalCandles,
		TotalPredictions: stats.TotalPredictions,
		Rows:             rows,
	}, nil
}

package backtest

import (
	"context"
	"testing"
	"time"

	"crypto-predict/internal/domain"
)

func TestAccuracy_ExactMatch(t *testing.T) {
	if got := Accuracy(100, 100); got != 100 {
		t.Errorf("expected 100, got %f", got)
	}
}

func TestAccuracy_FivePercentMiss(t *testing.T) {
	// |95 - 100| / 100 * 100 = 5% error → 95.00
	if got := Accuracy(100, 95); got != 95 {
		t.Errorf("expected 95, got %f", got)
	}
}

func TestAccuracy_SymmetricMiss(t *testing.T) {
	// Overshoot and undershoot of the same size score the same
	if over, under := Accuracy(100, 105), Accuracy(100, 95); over != under {
		t.Errorf("expected symmetric scores, got %f and %f", over, under)
	}
}

func TestAccuracy_ZeroActual(t *testing.T) {
	// Zero actual close scores 0 instead of dividing by zero
	if got := Accuracy(0, 50); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestAccuracy_FloorsAtZero(t *testing.T) {
	// A miss larger than the actual price would go negative; it floors at 0
	if got := Accuracy(100, 250); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

// fakeReportStore serves canned matches.
type fakeReportStore struct {
	matches []*domain.MatchedPrediction
}

func (f *fakeReportStore) MatchedPredictions(_ context.Context, limit int) ([]*domain.MatchedPrediction, error) {
	if limit > 0 && len(f.matches) > limit {
		return f.matches[:limit], nil
	}
	return f.matches, nil
}

func (f *fakeReportStore) Stats(context.Context) (*domain.SystemStats, error) {
	return &domain.SystemStats{}, nil
}

func TestReport_UppercasesAndRounds(t *testing.T) {
	ts := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	store := &fakeReportStore{matches: []*domain.MatchedPrediction{
		{Symbol: "btc", Timestamp: ts, PredictedPrice: 50100.126, ActualClose: 50000.004},
	}}

	rows, err := NewReporter(store).Report(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}

	row := rows[0]
	if row.Symbol != "BTC" {
		t.Errorf("expected symbol BTC, got %q", row.Symbol)
	}
	if row.PredictedPrice != 50100.13 {
		t.Errorf("expected predicted 50100.13, got %f", row.PredictedPrice)
	}
	if row.ActualPrice != 50000.00 {
		t.Errorf("expected actual 50000.00, got %f", row.ActualPrice)
	}
	// Accuracy is computed from raw values, then rounded for display
	if row.Accuracy <= 99 || row.Accuracy > 100 {
		t.Errorf("expected accuracy just under 100, got %f", row.Accuracy)
	}
}

func TestReport_PageSize(t *testing.T) {
	matches := make([]*domain.MatchedPrediction, DefaultPageSize+10)
	for i := range matches {
		matches[i] = &domain.MatchedPrediction{Symbol: "eth", ActualClose: 100, PredictedPrice: 100}
	}

	rows, err := NewReporter(&fakeReportStore{matches: matches}).Report(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != DefaultPageSize {
		t.Errorf("expected %d rows, got %d", DefaultPageSize, len(rows))
	}
}

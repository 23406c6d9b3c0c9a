package prediction

import (
	"testing"
	"time"

	"crypto-predict/internal/domain"
)

func TestProject_LinearInterpolation(t *testing.T) {
	// 50000 at +1% total return → 50100, 50200, 50300, 50400, 50500
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	points := Project(ProjectionInput{
		AssetID:         1,
		TimeframeID:     2,
		UserID:          3,
		CurrentPrice:    50000,
		PredictedReturn: 0.01,
		Confidence:      0.75,
		Now:             now,
	})

	if len(points) != HorizonSteps {
		t.Fatalf("expected %d points, got %d", HorizonSteps, len(points))
	}

	expected := []float64{50100, 50200, 50300, 50400, 50500}
	for i, p := range points {
		if p.PredictedPrice != expected[i] {
			t.Errorf("point %d: expected price %.2f, got %.2f", i, expected[i], p.PredictedPrice)
		}
		wantTS := now.Add(time.Duration(i+1) * StepInterval)
		if !p.Timestamp.Equal(wantTS) {
			t.Errorf("point %d: expected timestamp %v, got %v", i, wantTS, p.Timestamp)
		}
		if p.Confidence != 0.75 {
			t.Errorf("point %d: expected confidence 0.75, got %f", i, p.Confidence)
		}
		if p.ModelUsed != domain.ModelLabel {
			t.Errorf("point %d: expected model %q, got %q", i, domain.ModelLabel, p.ModelUsed)
		}
		if !p.CreatedAt.Equal(now) {
			t.Errorf("point %d: expected created_at %v, got %v", i, now, p.CreatedAt)
		}
	}
}

func TestProject_NegativeReturn(t *testing.T) {
	points := Project(ProjectionInput{
		CurrentPrice:    100,
		PredictedReturn: -0.05,
		Now:             time.Now(),
	})

	// Prices fall monotonically toward the full -5% move
	for i := 1; i < len(points); i++ {
		if points[i].PredictedPrice >= points[i-1].PredictedPrice {
			t.Errorf("point %d: expected price below %.2f, got %.2f",
				i, points[i-1].PredictedPrice, points[i].PredictedPrice)
		}
	}
	if last := points[len(points)-1].PredictedPrice; last != 95 {
		t.Errorf("expected final price 95.00, got %.2f", last)
	}
}

func TestProject_ZeroReturn(t *testing.T) {
	points := Project(ProjectionInput{
		CurrentPrice:    123.456,
		PredictedReturn: 0,
		Now:             time.Now(),
	})
	for i, p := range points {
		if p.PredictedPrice != 123.46 {
			t.Errorf("point %d: expected 123.46, got %.2f", i, p.PredictedPrice)
		}
	}
}

func TestRound2(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{1.239, 1.24},
		{1.231, 1.23},
		{-1.239, -1.24},
		{100, 100},
	}
	for _, c := range cases {
		if got := Round2(c.in); got != c.want {
			t.Errorf("Round2(%v): expected %v, got %v", c.in, c.want, got)
		}
	}
}

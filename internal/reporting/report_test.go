package reporting

import (
	"context"
	"strings"
	"testing"
	"time"

	"crypto-predict/internal/backtest"
	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage/memory"
)

func setupReportData(t *testing.T) *memory.ReportStore {
	t.Helper()
	ctx := context.Background()

	assets := memory.NewAssetStore()
	users := memory.NewUserStore()
	candles := memory.NewCandleStore()
	predictions := memory.NewPredictionStore()

	asset := &domain.Asset{Symbol: "BTC", Name: "Bitcoin"}
	if err := assets.Insert(ctx, asset); err != nil {
		t.Fatalf("Insert asset failed: %v", err)
	}

	target := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := candles.Insert(ctx, &domain.Candle{
		AssetID:     asset.AssetID,
		TimeframeID: 1,
		Timestamp:   target,
		Open:        49800,
		High:        50200,
		Low:         49400,
		Close:       50000,
		Volume:      12.5,
		Exchange:    "binance",
	}); err != nil {
		t.Fatalf("Insert candle failed: %v", err)
	}

	// One prediction has a realized candle, one does not.
	batch := []*domain.Prediction{
		{
			AssetID:        asset.AssetID,
			TimeframeID:    1,
			UserID:         1,
			Timestamp:      target,
			PredictedPrice: 49500,
			Confidence:     0.8,
			ModelUsed:      domain.ModelLabel,
			CreatedAt:      target.Add(-time.Hour),
		},
		{
			AssetID:        asset.AssetID,
			TimeframeID:    1,
			UserID:         1,
			Timestamp:      target.Add(time.Hour),
			PredictedPrice: 49900,
			Confidence:     0.8,
			ModelUsed:      domain.ModelLabel,
			CreatedAt:      target.Add(-time.Hour),
		},
	}
	if err := predictions.InsertBulk(ctx, batch); err != nil {
		t.Fatalf("InsertBulk predictions failed: %v", err)
	}

	return memory.NewReportStore(assets, users, candles, predictions)
}

func TestGenerate_WithClock(t *testing.T) {
	ctx := context.Background()
	reports := setupReportData(t)

	fixedTime := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	generator := NewGenerator(backtest.NewReporter(reports), reports).WithClock(func() time.Time {
		return fixedTime
	})

	report, err := generator.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	if !report.GeneratedAt.Equal(fixedTime) {
		t.Errorf("Expected GeneratedAt %v, got %v", fixedTime, report.GeneratedAt)
	}
	if report.TotalPredictions != 2 {
		t.Errorf("Expected TotalPredictions 2, got %d", report.TotalPredictions)
	}
	if len(report.Rows) != 1 {
		t.Fatalf("Expected 1 scored row, got %d", len(report.Rows))
	}
	// |49500-50000|/50000 = 1% miss
	if report.Rows[0].Accuracy != 99 {
		t.Errorf("Expected accuracy 99, got %.2f", report.Rows[0].Accuracy)
	}
	if report.MeanAccuracy() != 99 {
		t.Errorf("Expected mean accuracy 99, got %.2f", report.MeanAccuracy())
	}
}

func TestMeanAccuracy_Empty(t *testing.T) {
	r := &Report{}
	if got := r.MeanAccuracy(); got != 0 {
		t.Errorf("Expected 0 for empty report, got %.2f", got)
	}
}

func TestRenderMarkdown_Format(t *testing.T) {
	ctx := context.Background()
	reports := setupReportData(t)
	generator := NewGenerator(backtest.NewReporter(reports), reports)

	report, err := generator.Generate(ctx)
	if err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	md := RenderMarkdown(report)

	requiredSections := []string{
		"# Prediction Accuracy Report",
		"## System Overview",
		"## Scored Predictions",
	}
	for _, section := range requiredSections {
		if !strings.Contains(md, section) {
			t.Errorf("Markdown missing section: %s", section)
		}
	}
	if !strings.Contains(md, "| BTC |") {
		t.Error("Markdown should contain the scored BTC row")
	}
}

func TestRenderMarkdown_NoRows(t *testing.T) {
	md := RenderMarkdown(&Report{GeneratedAt: time.Now()})
	if !strings.Contains(md, "No predictions have realized candles yet.") {
		t.Error("Markdown should state that no predictions are scored")
	}
}

func TestRenderCSV_Format(t *testing.T) {
	rows := []backtest.AccuracyRow{
		{
			Symbol:         "BTC",
			Timestamp:      time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
			PredictedPrice: 49500,
			ActualPrice:    50000,
			Accuracy:       99,
		},
	}

	csv := RenderCSV(rows)
	lines := strings.Split(strings.TrimRight(csv, "\n"), "\n")

	if len(lines) != 2 {
		t.Fatalf("Expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != "symbol,timestamp,predicted_price,actual_price,accuracy" {
		t.Errorf("CSV header is incorrect: %s", lines[0])
	}
	if lines[1] != "BTC,2026-03-01T12:00:00Z,49500.00,50000.00,99.00" {
		t.Errorf("CSV row is incorrect: %s", lines[1])
	}
}

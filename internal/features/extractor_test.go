package features

import (
	"context"
	"errors"
	"testing"
	"time"

	"crypto-predict/internal/domain"
)

// fakeFeatureStore serves canned rows, newest first like the real stores.
type fakeFeatureStore struct {
	rows []domain.FeatureRow
	err  error
}

func (f *fakeFeatureStore) JoinedRows(_ context.Context, _ int64, limit int) ([]domain.FeatureRow, error) {
	if f.err != nil {
		return nil, f.err
	}
	if limit > 0 && len(f.rows) > limit {
		return f.rows[:limit], nil
	}
	return f.rows, nil
}

// newestFirstRows builds n rows with descending timestamps and close = index.
func newestFirstRows(n int) []domain.FeatureRow {
	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	rows := make([]domain.FeatureRow, n)
	for i := 0; i < n; i++ {
		rows[i] = domain.FeatureRow{
			Timestamp: base.Add(-time.Duration(i) * time.Hour),
			Close:     float64(n - i),
		}
	}
	return rows
}

func TestWindow_ExactWindowSize(t *testing.T) {
	store := &fakeFeatureStore{rows: newestFirstRows(domain.WindowSize)}
	window, err := NewExtractor(store).Window(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(window.Rows) != domain.WindowSize {
		t.Fatalf("expected %d rows, got %d", domain.WindowSize, len(window.Rows))
	}

	// Rows must come back chronological, oldest first
	for i := 1; i < len(window.Rows); i++ {
		if !window.Rows[i].Timestamp.After(window.Rows[i-1].Timestamp) {
			t.Fatalf("row %d not after row %d", i, i-1)
		}
	}

	// Newest close anchors the projection
	if window.LatestClose() != float64(domain.WindowSize) {
		t.Errorf("expected latest close %d, got %f", domain.WindowSize, window.LatestClose())
	}
}

func TestWindow_OneRowShort(t *testing.T) {
	store := &fakeFeatureStore{rows: newestFirstRows(domain.WindowSize - 1)}
	_, err := NewExtractor(store).Window(context.Background(), 1)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestWindow_Empty(t *testing.T) {
	store := &fakeFeatureStore{}
	_, err := NewExtractor(store).Window(context.Background(), 1)
	if !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestWindow_StoreError(t *testing.T) {
	store := &fakeFeatureStore{err: errors.New("connection refused")}
	_, err := NewExtractor(store).Window(context.Background(), 1)
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrInsufficientData) {
		t.Fatal("store failure must not masquerade as insufficient data")
	}
}

func TestWindow_ShrunkForTests(t *testing.T) {
	store := &fakeFeatureStore{rows: newestFirstRows(3)}
	window, err := NewExtractor(store).WithWindowSize(3).Window(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(window.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(window.Rows))
	}
}

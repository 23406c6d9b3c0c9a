package memory

import (
	"context"
	"sort"
	"sync"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// PredictionStore is an in-memory implementation of storage.PredictionStore.
// Append-only, no deduplication: repeated pipeline runs with identical inputs
// produce independent batches.
type PredictionStore struct {
	mu     sync.RWMutex
	preds  []*domain.Prediction
	nextID int64
}

// NewPredictionStore creates a new in-memory prediction store.
func NewPredictionStore() *PredictionStore {
	return &PredictionStore{nextID: 1}
}

// Compile-time interface check.
var _ storage.PredictionStore = (*PredictionStore)(nil)

// InsertBulk appends all predictions atomically and assigns their IDs.
func (s *PredictionStore) InsertBulk(_ context.Context, preds []*domain.Prediction) error {
	if len(preds) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate first so a mid-batch failure cannot leave partial rows.
	for _, p := range preds {
		if p == nil || p.AssetID == 0 || p.UserID == 0 {
			return storage.ErrInvalidInput
		}
	}

	for _, p := range preds {
		p.PredictionID = s.nextID
		s.nextID++
		stored := *p
		stored.Timestamp = p.Timestamp.UTC()
		stored.CreatedAt = p.CreatedAt.UTC()
		s.preds = append(s.preds, &stored)
	}
	return nil
}

// GetRecent retrieves up to limit predictions, newest first.
func (s *PredictionStore) GetRecent(_ context.Context, limit int) ([]*domain.Prediction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Prediction, 0, len(s.preds))
	for _, p := range s.preds {
		copied := *p
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].CreatedAt.After(result[j].CreatedAt)
		}
		return result[i].PredictionID > result[j].PredictionID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// Count returns the total number of predictions.
func (s *PredictionStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.preds)), nil
}

// snapshot returns a copy of all predictions for cross-store joins.
func (s *PredictionStore) snapshot() []*domain.Prediction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Prediction, 0, len(s.preds))
	for _, p := range s.preds {
		copied := *p
		out = append(out, &copied)
	}
	return out
}

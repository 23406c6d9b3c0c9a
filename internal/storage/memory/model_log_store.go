package memory

import (
	"context"
	"sort"
	"sync"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// ModelLogStore is an in-memory implementation of storage.ModelLogStore.
type ModelLogStore struct {
	mu     sync.RWMutex
	logs   []*domain.ModelLog
	nextID int64
}

// NewModelLogStore creates a new in-memory model log store.
func NewModelLogStore() *ModelLogStore {
	return &ModelLogStore{nextID: 1}
}

// Compile-time interface check.
var _ storage.ModelLogStore = (*ModelLogStore)(nil)

// Insert adds a retraining log row and assigns its ModelLogID.
func (s *ModelLogStore) Insert(_ context.Context, l *domain.ModelLog) error {
	if l == nil {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	l.ModelLogID = s.nextID
	s.nextID++
	stored := *l
	s.logs = append(s.logs, &stored)
	return nil
}

// GetRecent retrieves up to limit log rows, newest first.
func (s *ModelLogStore) GetRecent(_ context.Context, limit int) ([]*domain.ModelLog, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.ModelLog, 0, len(s.logs))
	for _, l := range s.logs {
		copied := *l
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].TrainedAt.Equal(result[j].TrainedAt) {
			return result[i].TrainedAt.After(result[j].TrainedAt)
		}
		return result[i].ModelLogID > result[j].ModelLogID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

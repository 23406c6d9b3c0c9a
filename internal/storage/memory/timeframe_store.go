package memory

import (
	"context"
	"sync"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// TimeframeStore is an in-memory implementation of storage.TimeframeStore.
type TimeframeStore struct {
	mu     sync.RWMutex
	byCode map[string]*domain.Timeframe
	nextID int64
}

// NewTimeframeStore creates a new in-memory timeframe store.
func NewTimeframeStore() *TimeframeStore {
	return &TimeframeStore{byCode: make(map[string]*domain.Timeframe), nextID: 1}
}

// Compile-time interface check.
var _ storage.TimeframeStore = (*TimeframeStore)(nil)

// Insert adds a new timeframe. Returns ErrDuplicateKey if the code exists.
func (s *TimeframeStore) Insert(_ context.Context, tf *domain.Timeframe) error {
	if tf == nil || tf.Code == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byCode[tf.Code]; exists {
		return storage.ErrDuplicateKey
	}

	tf.TimeframeID = s.nextID
	s.nextID++
	stored := *tf
	s.byCode[tf.Code] = &stored
	return nil
}

// GetByCode retrieves a timeframe by code. Returns ErrNotFound if not exists.
func (s *TimeframeStore) GetByCode(_ context.Context, code string) (*domain.Timeframe, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tf, ok := s.byCode[code]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *tf
	return &copied, nil
}

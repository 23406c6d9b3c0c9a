package memory

import (
	"context"
	"sort"
	"sync"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// SentimentStore is an in-memory implementation of storage.SentimentStore.
type SentimentStore struct {
	mu      sync.RWMutex
	records []*domain.Sentiment
	nextID  int64
}

// NewSentimentStore creates a new in-memory sentiment store.
func NewSentimentStore() *SentimentStore {
	return &SentimentStore{nextID: 1}
}

// Compile-time interface check.
var _ storage.SentimentStore = (*SentimentStore)(nil)

// Insert adds a sentiment record and assigns its SentimentID.
func (s *SentimentStore) Insert(_ context.Context, r *domain.Sentiment) error {
	if r == nil || r.AssetID == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	r.SentimentID = s.nextID
	s.nextID++
	stored := *r
	stored.Timestamp = r.Timestamp.UTC()
	s.records = append(s.records, &stored)
	return nil
}

// InsertBulk adds multiple records atomically.
func (s *SentimentStore) InsertBulk(_ context.Context, records []*domain.Sentiment) (int, error) {
	if len(records) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if r == nil || r.AssetID == 0 {
			return 0, storage.ErrInvalidInput
		}
	}

	for _, r := range records {
		r.SentimentID = s.nextID
		s.nextID++
		stored := *r
		stored.Timestamp = r.Timestamp.UTC()
		s.records = append(s.records, &stored)
	}
	return len(records), nil
}

// GetRecent retrieves up to limit records for an asset, newest first.
func (s *SentimentStore) GetRecent(_ context.Context, assetID int64, limit int) ([]*domain.Sentiment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Sentiment
	for _, r := range s.records {
		if r.AssetID == assetID {
			copied := *r
			result = append(result, &copied)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Timestamp.Equal(result[j].Timestamp) {
			return result[i].Timestamp.After(result[j].Timestamp)
		}
		return result[i].SentimentID > result[j].SentimentID
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// snapshot returns a copy of all records for cross-store joins.
func (s *SentimentStore) snapshot() []*domain.Sentiment {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Sentiment, 0, len(s.records))
	for _, r := range s.records {
		copied := *r
		out = append(out, &copied)
	}
	return out
}

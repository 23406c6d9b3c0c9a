package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// CandleStore is an in-memory implementation of storage.CandleStore.
// Like the relational schema it enforces no uniqueness on
// (asset_id, timeframe_id, timestamp); duplicates accumulate.
type CandleStore struct {
	mu      sync.RWMutex
	candles []*domain.Candle
	nextID  int64
}

// NewCandleStore creates a new in-memory candle store.
func NewCandleStore() *CandleStore {
	return &CandleStore{nextID: 1}
}

// Compile-time interface check.
var _ storage.CandleStore = (*CandleStore)(nil)

// Insert adds a single candle and assigns its CandleID.
func (s *CandleStore) Insert(_ context.Context, c *domain.Candle) error {
	if c == nil || c.AssetID == 0 {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c.CandleID = s.nextID
	s.nextID++
	stored := *c
	stored.Timestamp = c.Timestamp.UTC()
	s.candles = append(s.candles, &stored)
	return nil
}

// InsertBulk adds multiple candles atomically.
func (s *CandleStore) InsertBulk(_ context.Context, candles []*domain.Candle) (int, error) {
	if len(candles) == 0 {
		return 0, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Validate first so a mid-batch failure cannot leave partial rows.
	for _, c := range candles {
		if c == nil || c.AssetID == 0 || c.TimeframeID == 0 {
			return 0, storage.ErrInvalidInput
		}
	}

	for _, c := range candles {
		c.CandleID = s.nextID
		s.nextID++
		stored := *c
		stored.Timestamp = c.Timestamp.UTC()
		s.candles = append(s.candles, &stored)
	}
	return len(candles), nil
}

// GetLatest retrieves the most recent candle for an asset.
func (s *CandleStore) GetLatest(_ context.Context, assetID int64) (*domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var latest *domain.Candle
	for _, c := range s.candles {
		if c.AssetID != assetID {
			continue
		}
		if latest == nil || c.Timestamp.After(latest.Timestamp) ||
			(c.Timestamp.Equal(latest.Timestamp) && c.CandleID > latest.CandleID) {
			latest = c
		}
	}
	if latest == nil {
		return nil, storage.ErrNotFound
	}
	copied := *latest
	return &copied, nil
}

// GetRecent retrieves up to limit candles for an asset, newest first.
func (s *CandleStore) GetRecent(_ context.Context, assetID int64, limit int) ([]*domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.Candle
	for _, c := range s.candles {
		if c.AssetID == assetID {
			copied := *c
			result = append(result, &copied)
		}
	}
	sortCandlesDesc(result)
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

// GetLatestPerAsset retrieves the newest candle of every asset.
func (s *CandleStore) GetLatestPerAsset(_ context.Context) ([]*domain.Candle, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	latest := make(map[int64]*domain.Candle)
	for _, c := range s.candles {
		cur, ok := latest[c.AssetID]
		if !ok || c.Timestamp.After(cur.Timestamp) ||
			(c.Timestamp.Equal(cur.Timestamp) && c.CandleID > cur.CandleID) {
			latest[c.AssetID] = c
		}
	}

	result := make([]*domain.Candle, 0, len(latest))
	for _, c := range latest {
		copied := *c
		result = append(result, &copied)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].AssetID < result[j].AssetID })
	return result, nil
}

// HasTimestamp reports whether any candle exists at the exact timestamp.
func (s *CandleStore) HasTimestamp(_ context.Context, assetID, timeframeID int64, ts time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	utc := ts.UTC()
	for _, c := range s.candles {
		if c.AssetID == assetID && c.TimeframeID == timeframeID && c.Timestamp.Equal(utc) {
			return true, nil
		}
	}
	return false, nil
}

// Count returns the total number of candles.
func (s *CandleStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.candles)), nil
}

// snapshot returns a copy of all candles for cross-store joins.
func (s *CandleStore) snapshot() []*domain.Candle {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*domain.Candle, 0, len(s.candles))
	for _, c := range s.candles {
		copied := *c
		out = append(out, &copied)
	}
	return out
}

func sortCandlesDesc(candles []*domain.Candle) {
	sort.Slice(candles, func(i, j int) bool {
		if !candles[i].Timestamp.Equal(candles[j].Timestamp) {
			return candles[i].Timestamp.After(candles[j].Timestamp)
		}
		return candles[i].CandleID > candles[j].CandleID
	})
}

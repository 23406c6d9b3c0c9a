package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// AssetStore is an in-memory implementation of storage.AssetStore.
type AssetStore struct {
	mu     sync.RWMutex
	byID   map[int64]*domain.Asset
	nextID int64
}

// NewAssetStore creates a new in-memory asset store.
func NewAssetStore() *AssetStore {
	return &AssetStore{byID: make(map[int64]*domain.Asset), nextID: 1}
}

// Compile-time interface check.
var _ storage.AssetStore = (*AssetStore)(nil)

// Insert adds a new asset. Returns ErrDuplicateKey if the symbol exists.
func (s *AssetStore) Insert(_ context.Context, a *domain.Asset) error {
	if a == nil || a.Symbol == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	symbol := strings.ToUpper(a.Symbol)
	for _, existing := range s.byID {
		if existing.Symbol == symbol {
			return storage.ErrDuplicateKey
		}
	}

	a.AssetID = s.nextID
	s.nextID++
	stored := *a
	stored.Symbol = symbol
	s.byID[a.AssetID] = &stored
	a.Symbol = symbol
	return nil
}

// GetByID retrieves an asset by ID. Returns ErrNotFound if not exists.
func (s *AssetStore) GetByID(_ context.Context, assetID int64) (*domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	a, ok := s.byID[assetID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	copied := *a
	return &copied, nil
}

// GetBySymbol retrieves an asset by symbol, case-insensitively.
func (s *AssetStore) GetBySymbol(_ context.Context, symbol string) (*domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	upper := strings.ToUpper(symbol)
	for _, a := range s.byID {
		if a.Symbol == upper {
			copied := *a
			return &copied, nil
		}
	}
	return nil, storage.ErrNotFound
}

// GetAll retrieves all assets ordered by symbol.
func (s *AssetStore) GetAll(_ context.Context) ([]*domain.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	assets := make([]*domain.Asset, 0, len(s.byID))
	for _, a := range s.byID {
		copied := *a
		assets = append(assets, &copied)
	}
	sort.Slice(assets, func(i, j int) bool { return assets[i].Symbol < assets[j].Symbol })
	return assets, nil
}

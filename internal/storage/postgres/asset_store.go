package postgres

import (
	"context"
	"fmt"
	"strings"

	"crypto-predict/internal/domain"
	"crypto-predict/internal/storage"
)

// AssetStore implements storage.AssetStore using PostgreSQL.
type AssetStore struct {
	pool *Pool
}

// NewAssetStore creates a new AssetStore.
func NewAssetStore(pool *Pool) *AssetStore {
	return &AssetStore{pool: pool}
}

// Compile-time interface check.
var _ storage.AssetStore = (*AssetStore)(nil)

// Insert adds a new asset. Returns ErrDuplicateKey if the symbol exists.
func (s *AssetStore) Insert(ctx context.Context, a *domain.Asset) error {
	query := `
		INSERT INTO crypto_assets (symbol, name)
		VALUES ($1, $2)
		RETURNING asset_id
	`

	err := s.pool.QueryRow(ctx, query, strings.ToUpper(a.Symbol), a.Name).Scan(&a.AssetID)
	if err != nil {
		if isDuplicateKeyError(err) {
			return storage.ErrDuplicateKey
		}
		return fmt.Errorf("insert asset: %w", err)
	}
	return nil
}

// GetByID retrieves an asset by ID. Returns ErrNotFound if not exists.
func (s *AssetStore) GetByID(ctx context.Context, assetID int64) (*domain.Asset, error) {
	query := `SELECT asset_id, symbol, COALESCE(name, '') FROM crypto_assets WHERE asset_id = $1`

	var a domain.Asset
	err := s.pool.QueryRow(ctx, query, assetID).Scan(&a.AssetID, &a.Symbol, &a.Name)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get asset by id: %w", err)
	}
	return &a, nil
}

// GetBySymbol retrieves an asset by symbol, case-insensitively.
// Returns ErrNotFound if not exists.
func (s *AssetStore) GetBySymbol(ctx context.Context, symbol string) (*domain.Asset, error) {
	query := `SELECT asset_id, symbol, COALESCE(name, '') FROM crypto_assets WHERE symbol = $1`

	var a domain.Asset
	err := s.pool.QueryRow(ctx, query, strings.ToUpper(symbol)).Scan(&a.AssetID, &a.Symbol, &a.Name)
	if err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get asset by symbol: %w", err)
	}
	return &a, nil
}

// GetAll retrieves all assets ordered by symbol.
func (s *AssetStore) GetAll(ctx context.Context) ([]*domain.Asset, error) {
	query := `SELECT asset_id, symbol, COALESCE(name, '') FROM crypto_assets ORDER BY symbol ASC`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all assets: %w", err)
	}
	defer rows.Close()

	var assets []*domain.Asset
	for rows.Next() {
		var a domain.Asset
		if err := rows.Scan(&a.AssetID, &a.Symbol, &a.Name); err != nil {
			return nil, fmt.Errorf("scan asset: %w", err)
		}
		assets = append(assets, &a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate assets: %w", err)
	}
	return assets, nil
}

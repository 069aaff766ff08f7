package postgres

import (
	"context"
	"fmt"

	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/storage"
)

// TokenMetadataStore implements storage.TokenMetadataStore using PostgreSQL.
type TokenMetadataStore struct {
	pool *Pool
}

// NewTokenMetadataStore creates a new TokenMetadataStore.
func NewTokenMetadataStore(pool *Pool) *TokenMetadataStore {
	return &TokenMetadataStore{pool: pool}
}

// Compile-time interface check.
var _ storage.TokenMetadataStore = (*TokenMetadataStore)(nil)

// Insert caches metadata for a mint. Returns ErrDuplicateKey if cached.
func (s *TokenMetadataStore) Insert(ctx context.Context, m *domain.TokenMetadata) error {
	query := `
		INSERT INTO token_metadata (
			address, name, symbol, decimals, description, image
		) VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := s.pool.Exec(ctx, query,
		m.Address,
		m.Name,
		m.Symbol,
		m.Decimals,
		m.Description,
		m.Image,
	)
	if err != nil {
		return translateErr("insert token metadata", err)
	}
	return nil
}

// GetByAddresses retrieves cached metadata for the given mints.
// Uncached mints are simply absent from the result.
func (s *TokenMetadataStore) GetByAddresses(ctx context.Context, addrs []string) (map[string]*domain.TokenMetadata, error) {
	result := make(map[string]*domain.TokenMetadata, len(addrs))
	if len(addrs) == 0 {
		return result, nil
	}

	query := `
		SELECT address, name, symbol, decimals, description, image
		FROM token_metadata
		WHERE address = ANY($1)
	`

	rows, err := s.pool.Query(ctx, query, addrs)
	if err != nil {
		return nil, fmt.Errorf("get token metadata: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m domain.TokenMetadata
		err := rows.Scan(&m.Address, &m.Name, &m.Symbol, &m.Decimals, &m.Description, &m.Image)
		if err != nil {
			return nil, fmt.Errorf("scan token metadata row: %w", err)
		}
		result[m.Address] = &m
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate token metadata rows: %w", err)
	}
	return result, nil
}

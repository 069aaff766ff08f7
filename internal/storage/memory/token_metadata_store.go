package memory

import (
	"context"
	"sync"

	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/storage"
)

// TokenMetadataStore is an in-memory implementation of storage.TokenMetadataStore.
type TokenMetadataStore struct {
	mu   sync.RWMutex
	data map[string]*domain.TokenMetadata // keyed by mint address
}

// NewTokenMetadataStore creates a new in-memory token metadata store.
func NewTokenMetadataStore() *TokenMetadataStore {
	return &TokenMetadataStore{
		data: make(map[string]*domain.TokenMetadata),
	}
}

// Insert caches metadata for a mint. Returns ErrDuplicateKey if cached.
func (s *TokenMetadataStore) Insert(_ context.Context, m *domain.TokenMetadata) error {
	if m == nil || m.Address == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[m.Address]; exists {
		return storage.ErrDuplicateKey
	}

	metaCopy := *m
	s.data[m.Address] = &metaCopy
	return nil
}

// GetByAddresses retrieves cached metadata for the given mints.
// Uncached mints are simply absent from the result.
func (s *TokenMetadataStore) GetByAddresses(_ context.Context, addrs []string) (map[string]*domain.TokenMetadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]*domain.TokenMetadata, len(addrs))
	for _, addr := range addrs {
		if m, exists := s.data[addr]; exists {
			metaCopy := *m
			result[addr] = &metaCopy
		}
	}
	return result, nil
}

var _ storage.TokenMetadataStore = (*TokenMetadataStore)(nil)

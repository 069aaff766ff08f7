package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/storage"
)

// SwapStore is an in-memory implementation of storage.SwapStore.
type SwapStore struct {
	mu   sync.RWMutex
	data map[string]*domain.SwapRecord // keyed by signature
}

// NewSwapStore creates a new in-memory swap store.
func NewSwapStore() *SwapStore {
	return &SwapStore{
		data: make(map[string]*domain.SwapRecord),
	}
}

// Upsert inserts or replaces the swap stored for its signature.
func (s *SwapStore) Upsert(_ context.Context, swap *domain.SwapRecord) error {
	if swap == nil || swap.Signature == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copy := *swap
	s.data[swap.Signature] = &copy
	return nil
}

// Get retrieves a swap by signature. Returns ErrNotFound if not exists.
func (s *SwapStore) Get(_ context.Context, signature string) (*domain.SwapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	swap, exists := s.data[signature]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *swap
	return &copy, nil
}

// ExistingSignatures returns the subset of signatures already stored.
func (s *SwapStore) ExistingSignatures(_ context.Context, signatures []string) (map[string]struct{}, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	existing := make(map[string]struct{})
	for _, sig := range signatures {
		if _, ok := s.data[sig]; ok {
			existing[sig] = struct{}{}
		}
	}
	return existing, nil
}

// GetByAccountToken retrieves swaps for an account where token is
// either leg, ordered by block time descending.
func (s *SwapStore) GetByAccountToken(_ context.Context, account, token string) ([]*domain.SwapRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SwapRecord
	for _, swap := range s.data {
		if swap.Account == account && (swap.TokenIn == token || swap.TokenOut == token) {
			copy := *swap
			result = append(result, &copy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].BlockTime != result[j].BlockTime {
			return result[i].BlockTime > result[j].BlockTime
		}
		return result[i].Signature < result[j].Signature
	})

	return result, nil
}

var _ storage.SwapStore = (*SwapStore)(nil)

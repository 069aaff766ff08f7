package memory

import (
	"context"
	"sync"

	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/storage"
)

// WatchStore is an in-memory implementation of storage.WatchStore.
type WatchStore struct {
	mu   sync.RWMutex
	data map[string]*domain.WatchedAccount
}

// NewWatchStore creates a new in-memory watch store.
func NewWatchStore() *WatchStore {
	return &WatchStore{
		data: make(map[string]*domain.WatchedAccount),
	}
}

// Insert adds a watched account. Returns ErrDuplicateKey if exists.
func (s *WatchStore) Insert(_ context.Context, w *domain.WatchedAccount) error {
	if w == nil || w.Account == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[w.Account]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *w
	s.data[w.Account] = &copy
	return nil
}

// Get retrieves a watched account. Returns ErrNotFound if not watched.
func (s *WatchStore) Get(_ context.Context, account string) (*domain.WatchedAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, exists := s.data[account]
	if !exists {
		return nil, storage.ErrNotFound
	}

	copy := *w
	return &copy, nil
}

// GetAll retrieves every watched account.
func (s *WatchStore) GetAll(_ context.Context) ([]*domain.WatchedAccount, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.WatchedAccount, 0, len(s.data))
	for _, w := range s.data {
		copy := *w
		result = append(result, &copy)
	}
	return result, nil
}

// SetLastSignature persists the sync watermark for an account.
func (s *WatchStore) SetLastSignature(_ context.Context, account, signature string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, exists := s.data[account]
	if !exists {
		return storage.ErrNotFound
	}

	w.LastSignature = signature
	return nil
}

var _ storage.WatchStore = (*WatchStore)(nil)

package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/storage"
)

// NotificationStore is an in-memory implementation of storage.NotificationStore.
type NotificationStore struct {
	mu   sync.RWMutex
	data map[string]*domain.NotificationTarget // keyed by composite key
	keys []string                              // insertion order
}

// NewNotificationStore creates a new in-memory notification store.
func NewNotificationStore() *NotificationStore {
	return &NotificationStore{
		data: make(map[string]*domain.NotificationTarget),
	}
}

// targetKey generates a unique key for a notification target.
func targetKey(account string, chatID int64, event string) string {
	return fmt.Sprintf("%s|%d|%s", account, chatID, event)
}

// Insert adds a notification target. Returns ErrDuplicateKey if exists.
func (s *NotificationStore) Insert(_ context.Context, n *domain.NotificationTarget) error {
	if n == nil || n.Account == "" || n.Event == "" {
		return storage.ErrInvalidInput
	}

	key := targetKey(n.Account, n.ChatID, n.Event)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	copy := *n
	s.data[key] = &copy
	s.keys = append(s.keys, key)
	return nil
}

// GetByAccountEvent retrieves targets for an account and event kind.
func (s *NotificationStore) GetByAccountEvent(_ context.Context, account, event string) ([]*domain.NotificationTarget, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.NotificationTarget
	for _, key := range s.keys {
		n := s.data[key]
		if n.Account == account && n.Event == event {
			copy := *n
			result = append(result, &copy)
		}
	}
	return result, nil
}

var _ storage.NotificationStore = (*NotificationStore)(nil)

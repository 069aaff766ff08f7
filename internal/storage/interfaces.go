package storage

import (
	"context"

	"github.com/whooooop/agent007/internal/domain"
)

// WatchStore provides access to watched_accounts storage.
type WatchStore interface {
	// Insert adds a watched account. Returns ErrDuplicateKey if the
	// account is already watched.
	Insert(ctx context.Context, w *domain.WatchedAccount) error

	// Get retrieves a watched account. Returns ErrNotFound if not watched.
	Get(ctx context.Context, account string) (*domain.WatchedAccount, error)

	// GetAll retrieves every watched account.
	GetAll(ctx context.Context) ([]*domain.WatchedAccount, error)

	// SetLastSignature persists the sync watermark for an account.
	SetLastSignature(ctx context.Context, account, signature string) error
}

// SwapStore provides access to swaps storage.
type SwapStore interface {
	// Upsert inserts or replaces the swap stored for its signature.
	Upsert(ctx context.Context, s *domain.SwapRecord) error

	// Get retrieves a swap by signature. Returns ErrNotFound if not exists.
	Get(ctx context.Context, signature string) (*domain.SwapRecord, error)

	// ExistingSignatures returns the subset of signatures already stored.
	ExistingSignatures(ctx context.Context, signatures []string) (map[string]struct{}, error)

	// GetByAccountToken retrieves swaps for an account where token is
	// either leg, ordered by block time descending.
	GetByAccountToken(ctx context.Context, account, token string) ([]*domain.SwapRecord, error)
}

// TokenMetadataStore provides access to the token_metadata cache.
type TokenMetadataStore interface {
	// Insert caches metadata for a mint. Returns ErrDuplicateKey if cached.
	Insert(ctx context.Context, m *domain.TokenMetadata) error

	// GetByAddresses retrieves cached metadata for the given mints.
	// Uncached mints are simply absent from the result.
	GetByAddresses(ctx context.Context, addrs []string) (map[string]*domain.TokenMetadata, error)
}

// NotificationStore provides access to notification_targets storage.
type NotificationStore interface {
	// Insert adds a notification target. Returns ErrDuplicateKey if the
	// (account, chat, event) row exists.
	Insert(ctx context.Context, n *domain.NotificationTarget) error

	// GetByAccountEvent retrieves targets for an account and event kind.
	GetByAccountEvent(ctx context.Context, account, event string) ([]*domain.NotificationTarget, error)
}

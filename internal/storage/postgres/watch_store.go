package postgres

import (
	"context"
	"fmt"

	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/storage"
)

// WatchStore implements storage.WatchStore using PostgreSQL.
type WatchStore struct {
	pool *Pool
}

// NewWatchStore creates a new WatchStore.
func NewWatchStore(pool *Pool) *WatchStore {
	return &WatchStore{pool: pool}
}

// Compile-time interface check.
var _ storage.WatchStore = (*WatchStore)(nil)

// Insert adds a watched account. Returns ErrDuplicateKey if the
// account is already watched.
func (s *WatchStore) Insert(ctx context.Context, w *domain.WatchedAccount) error {
	query := `
		INSERT INTO watched_accounts (account, last_signature, created_at)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, w.Account, w.LastSignature, w.CreatedAt)
	if err != nil {
		return translateErr("insert watched account", err)
	}
	return nil
}

// Get retrieves a watched account. Returns ErrNotFound if not watched.
func (s *WatchStore) Get(ctx context.Context, account string) (*domain.WatchedAccount, error) {
	query := `
		SELECT account, last_signature, created_at
		FROM watched_accounts
		WHERE account = $1
	`

	var w domain.WatchedAccount
	err := s.pool.QueryRow(ctx, query, account).Scan(&w.Account, &w.LastSignature, &w.CreatedAt)
	if err != nil {
		return nil, translateErr("get watched account", err)
	}
	return &w, nil
}

// GetAll retrieves every watched account.
func (s *WatchStore) GetAll(ctx context.Context) ([]*domain.WatchedAccount, error) {
	query := `
		SELECT account, last_signature, created_at
		FROM watched_accounts
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get watched accounts: %w", err)
	}
	defer rows.Close()

	var accounts []*domain.WatchedAccount
	for rows.Next() {
		var w domain.WatchedAccount
		if err := rows.Scan(&w.Account, &w.LastSignature, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan watched account row: %w", err)
		}
		accounts = append(accounts, &w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate watched account rows: %w", err)
	}
	return accounts, nil
}

// SetLastSignature persists the sync watermark for an account.
func (s *WatchStore) SetLastSignature(ctx context.Context, account, signature string) error {
	query := `
		UPDATE watched_accounts
		SET last_signature = $2
		WHERE account = $1
	`

	tag, err := s.pool.Exec(ctx, query, account, signature)
	if err != nil {
		return fmt.Errorf("set last signature: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

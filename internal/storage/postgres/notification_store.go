package postgres

import (
	"context"
	"fmt"

	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/storage"
)

// NotificationStore implements storage.NotificationStore using PostgreSQL.
type NotificationStore struct {
	pool *Pool
}

// NewNotificationStore creates a new NotificationStore.
func NewNotificationStore(pool *Pool) *NotificationStore {
	return &NotificationStore{pool: pool}
}

// Compile-time interface check.
var _ storage.NotificationStore = (*NotificationStore)(nil)

// Insert adds a notification target. Returns ErrDuplicateKey if the
// (account, chat, event) row exists.
func (s *NotificationStore) Insert(ctx context.Context, n *domain.NotificationTarget) error {
	query := `
		INSERT INTO notification_targets (account, chat_id, event)
		VALUES ($1, $2, $3)
	`

	_, err := s.pool.Exec(ctx, query, n.Account, n.ChatID, n.Event)
	if err != nil {
		return translateErr("insert notification target", err)
	}
	return nil
}

// GetByAccountEvent retrieves targets for an account and event kind.
func (s *NotificationStore) GetByAccountEvent(ctx context.Context, account, event string) ([]*domain.NotificationTarget, error) {
	query := `
		SELECT account, chat_id, event
		FROM notification_targets
		WHERE account = $1 AND event = $2
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, account, event)
	if err != nil {
		return nil, fmt.Errorf("get notification targets: %w", err)
	}
	defer rows.Close()

	var targets []*domain.NotificationTarget
	for rows.Next() {
		var n domain.NotificationTarget
		if err := rows.Scan(&n.Account, &n.ChatID, &n.Event); err != nil {
			return nil, fmt.Errorf("scan notification target row: %w", err)
		}
		targets = append(targets, &n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notification target rows: %w", err)
	}
	return targets, nil
}

package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/storage"
)

// SwapStore implements storage.SwapStore using PostgreSQL.
type SwapStore struct {
	pool *Pool
}

// NewSwapStore creates a new SwapStore.
func NewSwapStore(pool *Pool) *SwapStore {
	return &SwapStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SwapStore = (*SwapStore)(nil)

// Upsert inserts or replaces the swap stored for its signature.
// Re-indexing a signature is idempotent.
func (s *SwapStore) Upsert(ctx context.Context, swap *domain.SwapRecord) error {
	query := `
		INSERT INTO swaps (
			signature, account, token_in, token_out, amount_in, amount_out, block_time
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (signature) DO UPDATE SET
			account    = EXCLUDED.account,
			token_in   = EXCLUDED.token_in,
			token_out  = EXCLUDED.token_out,
			amount_in  = EXCLUDED.amount_in,
			amount_out = EXCLUDED.amount_out,
			block_time = EXCLUDED.block_time
	`

	_, err := s.pool.Exec(ctx, query,
		swap.Signature,
		swap.Account,
		swap.TokenIn,
		swap.TokenOut,
		swap.AmountIn,
		swap.AmountOut,
		swap.BlockTime,
	)
	if err != nil {
		return fmt.Errorf("upsert swap: %w", err)
	}
	return nil
}

// Get retrieves a swap by signature. Returns ErrNotFound if not exists.
func (s *SwapStore) Get(ctx context.Context, signature string) (*domain.SwapRecord, error) {
	query := `
		SELECT signature, account, token_in, token_out, amount_in, amount_out, block_time
		FROM swaps
		WHERE signature = $1
	`

	var swap domain.SwapRecord
	err := s.pool.QueryRow(ctx, query, signature).Scan(
		&swap.Signature,
		&swap.Account,
		&swap.TokenIn,
		&swap.TokenOut,
		&swap.AmountIn,
		&swap.AmountOut,
		&swap.BlockTime,
	)
	if err != nil {
		return nil, translateErr("get swap", err)
	}
	return &swap, nil
}

// ExistingSignatures returns the subset of signatures already stored.
func (s *SwapStore) ExistingSignatures(ctx context.Context, signatures []string) (map[string]struct{}, error) {
	existing := make(map[string]struct{})
	if len(signatures) == 0 {
		return existing, nil
	}

	query := `SELECT signature FROM swaps WHERE signature = ANY($1)`

	rows, err := s.pool.Query(ctx, query, signatures)
	if err != nil {
		return nil, fmt.Errorf("query existing signatures: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var sig string
		if err := rows.Scan(&sig); err != nil {
			return nil, fmt.Errorf("scan signature row: %w", err)
		}
		existing[sig] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signature rows: %w", err)
	}
	return existing, nil
}

// GetByAccountToken retrieves swaps for an account where token is
// either leg, ordered by block time descending.
func (s *SwapStore) GetByAccountToken(ctx context.Context, account, token string) ([]*domain.SwapRecord, error) {
	query := `
		SELECT signature, account, token_in, token_out, amount_in, amount_out, block_time
		FROM swaps
		WHERE account = $1 AND (token_in = $2 OR token_out = $2)
		ORDER BY block_time DESC, signature ASC
	`

	rows, err := s.pool.Query(ctx, query, account, token)
	if err != nil {
		return nil, fmt.Errorf("get swaps by account token: %w", err)
	}
	defer rows.Close()

	return scanSwaps(rows)
}

// scanSwaps scans multiple rows into a slice of SwapRecord.
func scanSwaps(rows pgx.Rows) ([]*domain.SwapRecord, error) {
	var swaps []*domain.SwapRecord

	for rows.Next() {
		var swap domain.SwapRecord

		err := rows.Scan(
			&swap.Signature,
			&swap.Account,
			&swap.TokenIn,
			&swap.TokenOut,
			&swap.AmountIn,
			&swap.AmountOut,
			&swap.BlockTime,
		)
		if err != nil {
			return nil, fmt.Errorf("scan swap row: %w", err)
		}

		swaps = append(swaps, &swap)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate swap rows: %w", err)
	}

	return swaps, nil
}

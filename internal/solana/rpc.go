package solana

import "context"

// Client defines the ledger RPC surface the indexer depends on.
type Client interface {
	// GetSignaturesForAddress retrieves signatures for an address with pagination.
	GetSignaturesForAddress(ctx context.Context, address string, opts *SignaturesOpts) ([]SignatureInfo, error)

	// GetParsedTransaction retrieves a transaction with token balance
	// snapshots and parsed inner instructions. Returns nil when the
	// signature is unknown to the ledger.
	GetParsedTransaction(ctx context.Context, signature string) (*ParsedTransaction, error)

	// GetTokenSupply retrieves supply information for a mint.
	GetTokenSupply(ctx context.Context, mint string) (*TokenSupply, error)

	// GetAccountInfo retrieves raw account data by public key.
	// Returns nil if the account does not exist.
	GetAccountInfo(ctx context.Context, pubkey string) (*AccountInfo, error)
}

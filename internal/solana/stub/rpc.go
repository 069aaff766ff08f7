package stub

import (
	"context"
	"errors"

	"github.com/whooooop/agent007/internal/solana"
)

// ErrNotFound is returned for data missing from the stub store.
var ErrNotFound = errors.New("not found")

// Client implements solana.Client for testing. Signatures are stored
// newest-first, matching the RPC's response order.
type Client struct {
	Signatures   map[string][]solana.SignatureInfo
	Transactions map[string]*solana.ParsedTransaction
	Supplies     map[string]*solana.TokenSupply
	Accounts     map[string]*solana.AccountInfo

	// TxErrors injects a failure for a signature fetch.
	TxErrors map[string]error

	// Methods records the RPC methods invoked, in order.
	Methods []string
}

// NewClient creates a new stub RPC client.
func NewClient() *Client {
	return &Client{
		Signatures:   make(map[string][]solana.SignatureInfo),
		Transactions: make(map[string]*solana.ParsedTransaction),
		Supplies:     make(map[string]*solana.TokenSupply),
		Accounts:     make(map[string]*solana.AccountInfo),
		TxErrors:     make(map[string]error),
	}
}

// GetSignaturesForAddress returns stored signatures honoring the
// until and limit options.
func (c *Client) GetSignaturesForAddress(_ context.Context, address string, opts *solana.SignaturesOpts) ([]solana.SignatureInfo, error) {
	c.Methods = append(c.Methods, "getSignaturesForAddress")

	var out []solana.SignatureInfo
	for _, s := range c.Signatures[address] {
		if opts != nil && opts.Until != "" && s.Signature == opts.Until {
			break
		}
		out = append(out, s)
		if opts != nil && opts.Limit > 0 && len(out) >= opts.Limit {
			break
		}
	}
	return out, nil
}

// GetParsedTransaction returns the stored transaction, an injected
// error, or nil when unknown.
func (c *Client) GetParsedTransaction(_ context.Context, signature string) (*solana.ParsedTransaction, error) {
	c.Methods = append(c.Methods, "getTransaction")

	if err, ok := c.TxErrors[signature]; ok {
		return nil, err
	}
	return c.Transactions[signature], nil
}

// GetTokenSupply returns the stored supply for a mint.
func (c *Client) GetTokenSupply(_ context.Context, mint string) (*solana.TokenSupply, error) {
	c.Methods = append(c.Methods, "getTokenSupply")

	supply, ok := c.Supplies[mint]
	if !ok {
		return nil, ErrNotFound
	}
	return supply, nil
}

// GetAccountInfo returns the stored account, or nil when unknown.
func (c *Client) GetAccountInfo(_ context.Context, pubkey string) (*solana.AccountInfo, error) {
	c.Methods = append(c.Methods, "getAccountInfo")
	return c.Accounts[pubkey], nil
}

// AddSignatures prepends signatures for an address, newest first.
func (c *Client) AddSignatures(address string, sigs ...solana.SignatureInfo) {
	c.Signatures[address] = append(sigs, c.Signatures[address]...)
}

// AddTransaction stores a transaction keyed by its signature.
func (c *Client) AddTransaction(tx *solana.ParsedTransaction) {
	c.Transactions[tx.Signature] = tx
}

var _ solana.Client = (*Client)(nil)

// Package indexer turns the transaction history of watched accounts
// into persisted swaps and events, advancing a per-account watermark
// so every transaction is processed exactly once.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/whooooop/agent007/internal/detector"
	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/eventbus"
	"github.com/whooooop/agent007/internal/observability"
	"github.com/whooooop/agent007/internal/solana"
	"github.com/whooooop/agent007/internal/storage"
)

const (
	// syncPageLimit is the signature page size of one sweep.
	syncPageLimit = 1000

	// tokenBackfillLimit bounds how far back token account history is
	// fetched when backfilling a counterparty mint.
	tokenBackfillLimit = 500
)

// Options configures an Indexer. Client, Queue, WatchStore and
// SwapStore are required.
type Options struct {
	Client        solana.Client
	Queue         *solana.RequestQueue
	Fetcher       *solana.MetadataFetcher
	WatchStore    storage.WatchStore
	SwapStore     storage.SwapStore
	MetadataStore storage.TokenMetadataStore
	Bus           *eventbus.Bus
	Logger        *log.Logger
}

// Indexer reconstructs and persists swaps from account history.
type Indexer struct {
	client  solana.Client
	queue   *solana.RequestQueue
	fetcher *solana.MetadataFetcher
	watch   storage.WatchStore
	swaps   storage.SwapStore
	tokens  storage.TokenMetadataStore
	bus     *eventbus.Bus
	logger  *log.Logger
}

// New creates an Indexer.
func New(opts Options) *Indexer {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Indexer{
		client:  opts.Client,
		queue:   opts.Queue,
		fetcher: opts.Fetcher,
		watch:   opts.WatchStore,
		swaps:   opts.SwapStore,
		tokens:  opts.MetadataStore,
		bus:     opts.Bus,
		logger:  opts.Logger,
	}
}

// Watch registers account for tracking. The watermark starts at the
// account's most recent signature, so history older than the watch is
// never indexed. Calling Watch for an account already tracked is a
// no-op.
func (ix *Indexer) Watch(ctx context.Context, account string) error {
	if _, err := ix.watch.Get(ctx, account); err == nil {
		return nil
	} else if !errors.Is(err, storage.ErrNotFound) {
		return fmt.Errorf("look up watched account: %w", err)
	}

	var sigs []solana.SignatureInfo
	err := ix.queue.Do(ctx, func(ctx context.Context) error {
		var err error
		sigs, err = ix.client.GetSignaturesForAddress(ctx, account, &solana.SignaturesOpts{Limit: 1})
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch latest signature for %s: %w", account, err)
	}

	w := &domain.WatchedAccount{Account: account, CreatedAt: time.Now().UTC()}
	if len(sigs) > 0 {
		w.LastSignature = sigs[0].Signature
	}

	if err := ix.watch.Insert(ctx, w); err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			return nil
		}
		return fmt.Errorf("insert watched account: %w", err)
	}

	ix.logger.Printf("watching %s from signature %q", account, w.LastSignature)
	return nil
}

// WatchedAccounts returns every account under watch.
func (ix *Indexer) WatchedAccounts(ctx context.Context) ([]*domain.WatchedAccount, error) {
	return ix.watch.GetAll(ctx)
}

// SyncOnce processes everything newer than the account's watermark,
// oldest first. The watermark advances after each transaction, so a
// failure mid-sweep resumes where it stopped; the first indexing
// error aborts the sweep.
func (ix *Indexer) SyncOnce(ctx context.Context, account string) error {
	w, err := ix.watch.Get(ctx, account)
	if err != nil {
		return fmt.Errorf("look up watched account: %w", err)
	}

	var sigs []solana.SignatureInfo
	err = ix.queue.Do(ctx, func(ctx context.Context) error {
		var err error
		sigs, err = ix.client.GetSignaturesForAddress(ctx, account, &solana.SignaturesOpts{
			Until: w.LastSignature,
			Limit: syncPageLimit,
		})
		return err
	})
	if err != nil {
		observability.RecordSweep("error")
		return fmt.Errorf("fetch signatures for %s: %w", account, err)
	}

	if len(sigs) == 0 {
		observability.RecordSweep("ok")
		observability.SetLastSuccessfulSweep(time.Now().Unix())
		return nil
	}

	// The RPC returns newest first; replay chronologically.
	for i := len(sigs) - 1; i >= 0; i-- {
		if err := ix.processTransaction(ctx, account, sigs[i].Signature); err != nil {
			observability.RecordSweep("error")
			return fmt.Errorf("process %s: %w", sigs[i].Signature, err)
		}
	}

	observability.RecordSweep("ok")
	observability.SetLastSuccessfulSweep(time.Now().Unix())
	return nil
}

// processTransaction indexes one transaction, advances the watermark,
// then backfills and announces any swap it carried. Backfill failure
// is logged but not returned: the watermark already moved past the
// transaction, and failing here would silently drop its events.
func (ix *Indexer) processTransaction(ctx context.Context, account, signature string) error {
	swap, err := ix.indexTransaction(ctx, signature)
	if err != nil {
		return err
	}

	if err := ix.watch.SetLastSignature(ctx, account, signature); err != nil {
		return fmt.Errorf("advance watermark: %w", err)
	}

	if swap != nil {
		mint := CounterpartyMint(swap)
		if err := ix.IndexAccountToken(ctx, swap.Account, mint); err != nil {
			ix.logger.Printf("backfill %s for %s failed: %v", mint, swap.Account, err)
		}
		if ix.bus != nil {
			err := ix.bus.Emit(ctx, EventAccountNewSwap, &NewSwapEvent{
				Account:          swap.Account,
				Signature:        signature,
				CounterpartyMint: mint,
			})
			if err != nil {
				return fmt.Errorf("emit swap event: %w", err)
			}
		}
	}

	if ix.bus != nil {
		err := ix.bus.Emit(ctx, EventAccountNewTransaction, &NewTransactionEvent{
			Account:   account,
			Signature: signature,
		})
		if err != nil {
			return fmt.Errorf("emit transaction event: %w", err)
		}
	}

	return nil
}

// indexTransaction fetches one transaction, runs swap reconstruction
// relative to its fee payer, and persists the swap if one is found.
// The record is attributed to the signer, which may differ from the
// watched account whose history surfaced the signature: a transaction
// signed by a third party is that party's swap, not ours. Returns the
// stored swap, or nil when the transaction carried none.
func (ix *Indexer) indexTransaction(ctx context.Context, signature string) (*domain.SwapRecord, error) {
	var tx *solana.ParsedTransaction
	err := ix.queue.Do(ctx, func(ctx context.Context) error {
		var err error
		tx, err = ix.client.GetParsedTransaction(ctx, signature)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("fetch transaction: %w", err)
	}

	observability.RecordTransactionIndexed()

	if tx == nil || tx.Err != nil {
		return nil, nil
	}

	signer := tx.Signer()
	if signer == "" {
		return nil, nil
	}

	info := detector.Detect(tx, signer)
	if info == nil {
		return nil, nil
	}

	swap := &domain.SwapRecord{
		Signature: signature,
		Account:   signer,
		TokenIn:   info.TokenIn.Mint,
		TokenOut:  info.TokenOut.Mint,
		AmountIn:  info.TokenIn.Amount,
		AmountOut: info.TokenOut.Amount,
		BlockTime: tx.BlockTime,
	}
	if err := ix.swaps.Upsert(ctx, swap); err != nil {
		return nil, fmt.Errorf("store swap: %w", err)
	}

	observability.RecordSwapDetected()
	return swap, nil
}

// IndexAccountToken backfills swaps between account and mint by
// walking the history of their associated token account. Already
// stored signatures are skipped; the rest are indexed oldest first.
// The account watermark is untouched and no events fire.
func (ix *Indexer) IndexAccountToken(ctx context.Context, account, mint string) error {
	ata, err := solana.AssociatedTokenAddress(account, mint)
	if err != nil {
		return fmt.Errorf("derive token account: %w", err)
	}

	var sigs []solana.SignatureInfo
	err = ix.queue.Do(ctx, func(ctx context.Context) error {
		var err error
		sigs, err = ix.client.GetSignaturesForAddress(ctx, ata, &solana.SignaturesOpts{Limit: tokenBackfillLimit})
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch token account signatures: %w", err)
	}
	if len(sigs) == 0 {
		return nil
	}

	all := make([]string, len(sigs))
	for i, s := range sigs {
		all[i] = s.Signature
	}
	existing, err := ix.swaps.ExistingSignatures(ctx, all)
	if err != nil {
		return fmt.Errorf("diff stored signatures: %w", err)
	}

	for i := len(sigs) - 1; i >= 0; i-- {
		sig := sigs[i].Signature
		if _, ok := existing[sig]; ok {
			continue
		}
		if _, err := ix.indexTransaction(ctx, sig); err != nil {
			return fmt.Errorf("index %s: %w", sig, err)
		}
	}

	return nil
}

// AccountTokenSwaps bundles an account's swaps against one token with
// metadata for every mint those swaps touch.
type AccountTokenSwaps struct {
	Swaps  []*domain.SwapRecord
	Tokens map[string]*domain.TokenMetadata
}

// GetIndexedAccountTokenSwaps returns stored swaps between account and
// token, newest first, with metadata for all mints involved.
func (ix *Indexer) GetIndexedAccountTokenSwaps(ctx context.Context, account, token string) (*AccountTokenSwaps, error) {
	swaps, err := ix.swaps.GetByAccountToken(ctx, account, token)
	if err != nil {
		return nil, fmt.Errorf("load swaps: %w", err)
	}

	seen := make(map[string]struct{})
	var mints []string
	for _, s := range swaps {
		for _, m := range []string{s.TokenIn, s.TokenOut} {
			if _, ok := seen[m]; !ok {
				seen[m] = struct{}{}
				mints = append(mints, m)
			}
		}
	}

	tokens, err := ix.TokensMetadata(ctx, mints)
	if err != nil {
		return nil, err
	}

	return &AccountTokenSwaps{Swaps: swaps, Tokens: tokens}, nil
}

// AccountSolSwaps returns stored swaps where SOL is either leg, newest
// first. Since every reconstructed swap has a SOL side this is the
// account's full swap history.
func (ix *Indexer) AccountSolSwaps(ctx context.Context, account string) ([]*domain.SwapRecord, error) {
	swaps, err := ix.swaps.GetByAccountToken(ctx, account, solana.WrappedSOLMint)
	if err != nil {
		return nil, fmt.Errorf("load swaps: %w", err)
	}
	return swaps, nil
}

// TokensMetadata resolves metadata for the given mints, cache first.
// Misses are fetched from the ledger and cached; mints whose metadata
// cannot be resolved are omitted from the result.
func (ix *Indexer) TokensMetadata(ctx context.Context, mints []string) (map[string]*domain.TokenMetadata, error) {
	cached, err := ix.tokens.GetByAddresses(ctx, mints)
	if err != nil {
		return nil, fmt.Errorf("load cached metadata: %w", err)
	}

	for _, mint := range mints {
		if _, ok := cached[mint]; ok {
			continue
		}
		meta, err := ix.fetchTokenMetadata(ctx, mint)
		if err != nil {
			ix.logger.Printf("metadata for %s unavailable: %v", mint, err)
			continue
		}
		if meta == nil {
			ix.logger.Printf("no metadata account for %s", mint)
			continue
		}
		if err := ix.tokens.Insert(ctx, meta); err != nil && !errors.Is(err, storage.ErrDuplicateKey) {
			return nil, fmt.Errorf("cache metadata for %s: %w", mint, err)
		}
		cached[mint] = meta
	}

	return cached, nil
}

func (ix *Indexer) fetchTokenMetadata(ctx context.Context, mint string) (*domain.TokenMetadata, error) {
	if ix.fetcher == nil {
		return nil, errors.New("metadata fetcher not configured")
	}

	var raw *solana.TokenMetadata
	err := ix.queue.Do(ctx, func(ctx context.Context) error {
		var err error
		raw, err = ix.fetcher.FetchTokenMetadata(ctx, mint)
		return err
	})
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, nil
	}

	return &domain.TokenMetadata{
		Address:     mint,
		Name:        raw.Name,
		Symbol:      raw.Symbol,
		Decimals:    raw.Decimals,
		Description: raw.Description,
		Image:       raw.Image,
	}, nil
}

// CounterpartyMint names the swap leg opposite wrapped SOL. For swaps
// into SOL that is the token sold, otherwise the token received.
func CounterpartyMint(s *domain.SwapRecord) string {
	if s.TokenOut == solana.WrappedSOLMint {
		return s.TokenIn
	}
	return s.TokenOut
}

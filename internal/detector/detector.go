// Package detector reconstructs two-leg token exchanges from the raw
// balance deltas of a parsed transaction.
package detector

import (
	"math/big"
	"sort"

	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/solana"
)

// Detect classifies a transaction as a swap made by signer, or returns
// nil. Pure and deterministic, no I/O.
//
// Pre and post token balance snapshots are merged by account index
// (a missing side counts as zero), entries split into the signer's
// side and the other side by owner, and changes netted per mint.
// Zero-net mints are dropped, as are other-side mints consumed by a
// burn or minted to an account the signer does not own. A genuine
// swap leaves exactly one net-changed mint on the signer side and
// exactly two on the other side; anything else is not a swap. The
// strict shape trades false negatives on routed swaps for zero false
// positives on transfers and NFT mints.
func Detect(tx *solana.ParsedTransaction, signer string) *domain.SwapInfo {
	if tx == nil || signer == "" {
		return nil
	}

	entries := mergeBalances(tx)
	excluded := excludedMints(tx, signer)

	signerNet := make(map[string]*big.Int)
	otherNet := make(map[string]*big.Int)
	var otherOrder []string

	for _, e := range entries {
		if e.mint == "" {
			continue
		}
		side := otherNet
		if e.owner == signer {
			side = signerNet
		} else if _, seen := otherNet[e.mint]; !seen {
			otherOrder = append(otherOrder, e.mint)
		}
		net, ok := side[e.mint]
		if !ok {
			net = new(big.Int)
			side[e.mint] = net
		}
		net.Add(net, e.change)
	}

	for mint, net := range signerNet {
		if net.Sign() == 0 {
			delete(signerNet, mint)
		}
	}
	for mint, net := range otherNet {
		if net.Sign() == 0 || excluded[mint] {
			delete(otherNet, mint)
		}
	}

	if len(signerNet) != 1 || len(otherNet) != 2 {
		return nil
	}

	var signerMint string
	var signerChange *big.Int
	for mint, net := range signerNet {
		signerMint, signerChange = mint, net
	}

	// The counterparty leg is whichever other-side mint differs from
	// the signer's mint, taken in account-index order.
	var counterMint string
	for _, mint := range otherOrder {
		if _, ok := otherNet[mint]; ok && mint != signerMint {
			counterMint = mint
			break
		}
	}
	if counterMint == "" {
		return nil
	}

	signerLeg := domain.TokenAmount{
		Mint:   signerMint,
		Amount: new(big.Int).Abs(signerChange).String(),
	}
	counterLeg := domain.TokenAmount{
		Mint:   counterMint,
		Amount: new(big.Int).Abs(otherNet[counterMint]).String(),
	}

	if signerChange.Sign() > 0 {
		return &domain.SwapInfo{TokenIn: signerLeg, TokenOut: counterLeg}
	}
	return &domain.SwapInfo{TokenIn: counterLeg, TokenOut: signerLeg}
}

type balanceEntry struct {
	mint   string
	owner  string
	change *big.Int
}

// mergeBalances joins the pre and post snapshots by account index and
// computes per-entry changes, ordered by ascending index.
func mergeBalances(tx *solana.ParsedTransaction) []balanceEntry {
	type merged struct {
		mint  string
		owner string
		pre   *big.Int
		post  *big.Int
	}

	byIndex := make(map[int]*merged)
	for _, b := range tx.PreTokenBalances {
		byIndex[b.AccountIndex] = &merged{
			mint:  b.Mint,
			owner: b.Owner,
			pre:   parseAmount(b.Amount),
		}
	}
	for _, b := range tx.PostTokenBalances {
		m, ok := byIndex[b.AccountIndex]
		if !ok {
			m = &merged{}
			byIndex[b.AccountIndex] = m
		}
		m.mint = b.Mint
		m.owner = b.Owner
		m.post = parseAmount(b.Amount)
	}

	indexes := make([]int, 0, len(byIndex))
	for i := range byIndex {
		indexes = append(indexes, i)
	}
	sort.Ints(indexes)

	entries := make([]balanceEntry, 0, len(indexes))
	for _, i := range indexes {
		m := byIndex[i]
		if m.pre == nil {
			m.pre = new(big.Int)
		}
		if m.post == nil {
			m.post = new(big.Int)
		}
		entries = append(entries, balanceEntry{
			mint:   m.mint,
			owner:  m.owner,
			change: new(big.Int).Sub(m.post, m.pre),
		})
	}
	return entries
}

// excludedMints collects mints that are side effects of the swap
// program rather than a counterparty leg: burn targets, and mintTo
// destinations the signer does not own.
func excludedMints(tx *solana.ParsedTransaction, signer string) map[string]bool {
	signerAccounts := make(map[string]bool)
	mark := func(balances []solana.TokenBalance) {
		for _, b := range balances {
			if b.Owner == signer && b.AccountIndex < len(tx.AccountKeys) {
				signerAccounts[tx.AccountKeys[b.AccountIndex].Pubkey] = true
			}
		}
	}
	mark(tx.PreTokenBalances)
	mark(tx.PostTokenBalances)

	excluded := make(map[string]bool)
	for _, ins := range tx.InnerInstructions {
		switch ins.Type {
		case "burn":
			excluded[ins.Info.Mint] = true
		case "mintTo":
			if !signerAccounts[ins.Info.Account] {
				excluded[ins.Info.Mint] = true
			}
		}
	}
	return excluded
}

// parseAmount reads an unsigned base-unit decimal string; anything
// unparseable counts as zero.
func parseAmount(s string) *big.Int {
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return new(big.Int)
	}
	return n
}

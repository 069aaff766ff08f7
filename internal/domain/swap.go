package domain

// SwapRecord is one reconstructed two-leg token exchange, keyed by
// transaction signature. Amounts are unsigned base-unit magnitudes as
// decimal strings; direction is encoded by which field holds a mint.
type SwapRecord struct {
	Signature string
	Account   string
	TokenIn   string
	TokenOut  string
	AmountIn  string
	AmountOut string
	BlockTime int64
}

// TokenAmount pairs a mint address with an unsigned base-unit amount.
type TokenAmount struct {
	Mint   string
	Amount string
}

// SwapInfo is the outcome of swap reconstruction for one transaction.
type SwapInfo struct {
	TokenIn  TokenAmount
	TokenOut TokenAmount
}

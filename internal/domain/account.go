package domain

import "time"

// WatchedAccount is a wallet whose transaction history is tracked.
// LastSignature is the sync watermark: the most recent signature that
// has been fully processed. Empty means no history has been seen yet.
type WatchedAccount struct {
	Account       string
	LastSignature string
	CreatedAt     time.Time
}

package solana

import (
	"errors"
	"strings"
)

var (
	// ErrRateLimited marks a call rejected by the RPC provider for
	// exceeding its request budget. The request queue retries these
	// with growing delay.
	ErrRateLimited = errors.New("rate limited")

	// ErrTransient marks a transport-level failure (timeout, reset,
	// garbled payload) that is safe to retry.
	ErrTransient = errors.New("transient transport error")
)

// IsRateLimited reports whether err is a throttling signal, either a
// typed ErrRateLimited or a provider message carrying the 429 marker.
func IsRateLimited(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "429") || strings.Contains(msg, "Too Many Requests")
}

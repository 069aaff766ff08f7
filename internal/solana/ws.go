package solana

// LogHint is a logs-subscription notification for a watched account.
// Hints only shorten sweep latency; polling remains the source of
// truth, so dropping one is harmless.
type LogHint struct {
	Account   string
	Signature string
	Slot      int64
	Err       interface{}
}

package indexer

import "github.com/whooooop/agent007/internal/eventbus"

// Event kinds emitted during account synchronization.
const (
	// EventAccountNewTransaction fires once per newly indexed
	// transaction, after its effects are persisted.
	EventAccountNewTransaction eventbus.Kind = "account.new_transaction"

	// EventAccountNewSwap fires for newly indexed transactions that
	// carried a swap, before the matching new_transaction event.
	EventAccountNewSwap eventbus.Kind = "account.new_swap"
)

// Kinds returns the closed set of kinds the indexer emits, for wiring
// the event bus.
func Kinds() []eventbus.Kind {
	return []eventbus.Kind{EventAccountNewTransaction, EventAccountNewSwap}
}

// NewTransactionEvent is the payload of EventAccountNewTransaction.
type NewTransactionEvent struct {
	Account   string
	Signature string
}

// NewSwapEvent is the payload of EventAccountNewSwap.
type NewSwapEvent struct {
	Account          string
	Signature        string
	CounterpartyMint string
}

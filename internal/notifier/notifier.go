// Package notifier renders freshly indexed swaps into chat messages
// and delivers them to the targets registered for an account.
package notifier

import (
	"context"
	"fmt"
	"log"

	"github.com/whooooop/agent007/internal/eventbus"
	"github.com/whooooop/agent007/internal/indexer"
	"github.com/whooooop/agent007/internal/observability"
	"github.com/whooooop/agent007/internal/storage"
)

// Dispatcher is the chat delivery surface.
type Dispatcher interface {
	SendMessage(chatID int64, text string) error
	ForwardMessage(toChatID, fromChatID int64, messageID int) error
}

// Options configures a Notifier.
type Options struct {
	Indexer    *indexer.Indexer
	SwapStore  storage.SwapStore
	Targets    storage.NotificationStore
	Dispatcher Dispatcher
	Logger     *log.Logger
}

// Notifier subscribes to swap events and fans each one out to the
// registered chats.
type Notifier struct {
	indexer    *indexer.Indexer
	swaps      storage.SwapStore
	targets    storage.NotificationStore
	dispatcher Dispatcher
	logger     *log.Logger
}

// New creates a Notifier.
func New(opts Options) *Notifier {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Notifier{
		indexer:    opts.Indexer,
		swaps:      opts.SwapStore,
		targets:    opts.Targets,
		dispatcher: opts.Dispatcher,
		logger:     opts.Logger,
	}
}

// Register attaches the notifier's handlers to the bus.
func (n *Notifier) Register(bus *eventbus.Bus) error {
	return bus.On(indexer.EventAccountNewSwap, n.handleSwap)
}

// handleSwap renders and delivers one swap event. A delivery failure
// to one chat does not stop delivery to the rest.
func (n *Notifier) handleSwap(ctx context.Context, payload interface{}) error {
	ev, ok := payload.(*indexer.NewSwapEvent)
	if !ok {
		return fmt.Errorf("unexpected payload %T", payload)
	}

	targets, err := n.targets.GetByAccountEvent(ctx, ev.Account, string(indexer.EventAccountNewSwap))
	if err != nil {
		return fmt.Errorf("load targets: %w", err)
	}
	if len(targets) == 0 {
		return nil
	}

	swap, err := n.swaps.Get(ctx, ev.Signature)
	if err != nil {
		return fmt.Errorf("load swap %s: %w", ev.Signature, err)
	}

	history, err := n.indexer.GetIndexedAccountTokenSwaps(ctx, ev.Account, ev.CounterpartyMint)
	if err != nil {
		return fmt.Errorf("load history for %s: %w", ev.CounterpartyMint, err)
	}

	text := RenderSwap(swap, history, ev.CounterpartyMint)

	var failed int
	for _, t := range targets {
		if err := n.dispatcher.SendMessage(t.ChatID, text); err != nil {
			observability.RecordNotification("error")
			n.logger.Printf("deliver swap %s to chat %d: %v", ev.Signature, t.ChatID, err)
			failed++
			continue
		}
		observability.RecordNotification("ok")
	}
	if failed == len(targets) {
		return fmt.Errorf("delivery failed for all %d targets", failed)
	}
	return nil
}

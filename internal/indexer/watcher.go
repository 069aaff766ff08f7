package indexer

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/whooooop/agent007/internal/scheduler"
	"github.com/whooooop/agent007/internal/solana"
)

// DefaultSyncInterval paces periodic sweeps per account.
const DefaultSyncInterval = time.Minute

// WatcherOptions configures a Watcher. Indexer is required; WS is
// optional and only adds push-based sweep triggers on top of the
// periodic polling.
type WatcherOptions struct {
	Indexer      *Indexer
	WS           *solana.WSClient
	SyncInterval time.Duration
	Logger       *log.Logger
}

// Watcher runs one sync loop per watched account. Each loop sweeps on
// a timer and, when a websocket client is wired, immediately after a
// log mentioning the account is pushed.
type Watcher struct {
	indexer  *Indexer
	ws       *solana.WSClient
	interval time.Duration
	logger   *log.Logger

	mu    sync.Mutex
	loops map[string]*scheduler.Loop
	wg    sync.WaitGroup
}

// NewWatcher creates a Watcher.
func NewWatcher(opts WatcherOptions) *Watcher {
	if opts.SyncInterval <= 0 {
		opts.SyncInterval = DefaultSyncInterval
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	return &Watcher{
		indexer:  opts.Indexer,
		ws:       opts.WS,
		interval: opts.SyncInterval,
		logger:   opts.Logger,
		loops:    make(map[string]*scheduler.Loop),
	}
}

// Start launches sync loops for every account already under watch.
func (w *Watcher) Start(ctx context.Context) error {
	accounts, err := w.indexer.WatchedAccounts(ctx)
	if err != nil {
		return fmt.Errorf("load watched accounts: %w", err)
	}

	for _, acc := range accounts {
		w.startLoop(ctx, acc.Account)
	}

	w.logger.Printf("watching %d accounts, sync interval %s", len(accounts), w.interval)
	return nil
}

// Add registers account for watching and starts its sync loop.
func (w *Watcher) Add(ctx context.Context, account string) error {
	if err := w.indexer.Watch(ctx, account); err != nil {
		return err
	}
	w.startLoop(ctx, account)
	return nil
}

func (w *Watcher) startLoop(ctx context.Context, account string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, ok := w.loops[account]; ok {
		return
	}

	loop := scheduler.NewLoop(w.interval, func(ctx context.Context) {
		if err := w.indexer.SyncOnce(ctx, account); err != nil {
			w.logger.Printf("sync %s: %v", account, err)
		}
	})
	w.loops[account] = loop
	loop.Start(ctx)

	if w.ws != nil {
		hints, err := w.ws.SubscribeMentions(ctx, account)
		if err != nil {
			w.logger.Printf("subscribe %s: %v, polling only", account, err)
			return
		}
		w.wg.Add(1)
		go w.hintLoop(account, loop, hints)
	}
}

// hintLoop converts pushed log hints into sweep triggers. Triggers
// collapse while a sweep runs, so a burst of hints costs one sweep.
func (w *Watcher) hintLoop(account string, loop *scheduler.Loop, hints <-chan solana.LogHint) {
	defer w.wg.Done()

	for hint := range hints {
		if hint.Err != nil {
			continue
		}
		w.logger.Printf("log hint for %s: %s", account, hint.Signature)
		loop.Trigger()
	}
}

// Stop halts every sync loop, letting in-flight sweeps finish. Close
// the websocket client first: hint loops exit when their channels
// close.
func (w *Watcher) Stop() {
	w.mu.Lock()
	loops := make([]*scheduler.Loop, 0, len(w.loops))
	for _, l := range w.loops {
		loops = append(loops, l)
	}
	w.mu.Unlock()

	for _, l := range loops {
		l.Stop()
	}
	w.wg.Wait()
}

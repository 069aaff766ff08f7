package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/whooooop/agent007/internal/config"
	"github.com/whooooop/agent007/internal/eventbus"
	"github.com/whooooop/agent007/internal/indexer"
	"github.com/whooooop/agent007/internal/notifier"
	"github.com/whooooop/agent007/internal/observability"
	"github.com/whooooop/agent007/internal/solana"
	"github.com/whooooop/agent007/internal/storage"
	"github.com/whooooop/agent007/internal/storage/memory"
	"github.com/whooooop/agent007/internal/storage/migrations"
	pgstore "github.com/whooooop/agent007/internal/storage/postgres"
)

func main() {
	envFile := flag.String("env-file", ".env", "dotenv file with configuration (optional)")
	accounts := flag.String("accounts", "", "comma-separated accounts to watch on startup")
	flag.Parse()

	logger := log.New(os.Stdout, "[agent007] ", log.LstdFlags|log.Lshortfile)

	cfg, err := config.Load(*envFile)
	if err != nil {
		logger.Fatalf("Configuration error: %v", err)
	}

	if cfg.MetricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", observability.Handler())
			mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("ok"))
			})
			logger.Printf("Starting metrics server on %s", cfg.MetricsAddr)
			if err := http.ListenAndServe(cfg.MetricsAddr, mux); err != nil && err != http.ErrServerClosed {
				logger.Printf("Metrics server error: %v", err)
			}
		}()
	}

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	err = run(ctx, logger, cfg, splitAccounts(*accounts))

	done <- err
	cancel()

	if err != nil && err != context.Canceled {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

func splitAccounts(s string) []string {
	var out []string
	for _, a := range strings.Split(s, ",") {
		if a = strings.TrimSpace(a); a != "" {
			out = append(out, a)
		}
	}
	return out
}

func run(ctx context.Context, logger *log.Logger, cfg *config.Config, accounts []string) error {
	var watchStore storage.WatchStore = memory.NewWatchStore()
	var swapStore storage.SwapStore = memory.NewSwapStore()
	var metadataStore storage.TokenMetadataStore = memory.NewTokenMetadataStore()
	var targetStore storage.NotificationStore = memory.NewNotificationStore()

	if cfg.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN)
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgres(ctx, pool); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}

		watchStore = pgstore.NewWatchStore(pool)
		swapStore = pgstore.NewSwapStore(pool)
		metadataStore = pgstore.NewTokenMetadataStore(pool)
		targetStore = pgstore.NewNotificationStore(pool)
	} else {
		logger.Println("POSTGRES_DSN not set, using in-memory storage")
	}

	rpc := solana.NewHTTPClient(cfg.RPCURL)

	queue := solana.NewRequestQueue(solana.QueueOptions{
		Interval: cfg.RequestInterval,
		Logger:   logger,
	})
	defer queue.Close()

	bus := eventbus.New(logger, indexer.Kinds()...)
	defer bus.Close()

	ix := indexer.New(indexer.Options{
		Client:        rpc,
		Queue:         queue,
		Fetcher:       solana.NewMetadataFetcher(rpc, logger),
		WatchStore:    watchStore,
		SwapStore:     swapStore,
		MetadataStore: metadataStore,
		Bus:           bus,
		Logger:        logger,
	})

	var dispatcher notifier.Dispatcher
	if cfg.TelegramBotToken != "" {
		td, err := notifier.NewTelegramDispatcher(cfg.TelegramBotToken)
		if err != nil {
			return fmt.Errorf("create telegram dispatcher: %w", err)
		}
		dispatcher = td
	} else {
		logger.Println("TELEGRAM_BOT_TOKEN not set, logging notifications")
		dispatcher = notifier.NewLogDispatcher(logger)
	}

	n := notifier.New(notifier.Options{
		Indexer:    ix,
		SwapStore:  swapStore,
		Targets:    targetStore,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	if err := n.Register(bus); err != nil {
		return fmt.Errorf("register notifier: %w", err)
	}

	// The websocket is an accelerator; without it the watcher still
	// sweeps on the timer.
	var ws *solana.WSClient
	if cfg.WSURL != "" {
		var err error
		ws, err = solana.NewWSClient(ctx, cfg.WSURL, logger, nil)
		if err != nil {
			logger.Printf("Websocket unavailable (%v), polling only", err)
			ws = nil
		} else {
			defer ws.Close()
		}
	}

	watcher := indexer.NewWatcher(indexer.WatcherOptions{
		Indexer:      ix,
		WS:           ws,
		SyncInterval: cfg.SyncInterval,
		Logger:       logger,
	})

	for _, account := range accounts {
		if err := watcher.Add(ctx, account); err != nil {
			return fmt.Errorf("watch %s: %w", account, err)
		}
	}

	if err := watcher.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()

	if ws != nil {
		ws.Close()
	}
	watcher.Stop()

	return ctx.Err()
}

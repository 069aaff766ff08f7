// watchctl registers an account for watching and routes its events to
// a chat, then exits. The long-running watcher picks the account up
// on its next start.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/whooooop/agent007/internal/domain"
	"github.com/whooooop/agent007/internal/indexer"
	"github.com/whooooop/agent007/internal/solana"
	"github.com/whooooop/agent007/internal/storage"
	"github.com/whooooop/agent007/internal/storage/migrations"
	pgstore "github.com/whooooop/agent007/internal/storage/postgres"
)

func main() {
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	rpcURL := flag.String("rpc-url", os.Getenv("RPC_URL"), "Solana RPC HTTP endpoint")
	account := flag.String("account", "", "Account public key to watch")
	chatID := flag.Int64("chat-id", 0, "Chat to notify")
	event := flag.String("event", string(indexer.EventAccountNewSwap), "Event kind to route")
	flag.Parse()

	logger := log.New(os.Stdout, "[watchctl] ", log.LstdFlags)

	if *postgresDSN == "" {
		logger.Fatal("--postgres-dsn is required")
	}
	if *rpcURL == "" {
		logger.Fatal("--rpc-url is required")
	}
	if *account == "" {
		logger.Fatal("--account is required")
	}
	if *chatID == 0 {
		logger.Fatal("--chat-id is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if err := run(ctx, logger, *postgresDSN, *rpcURL, *account, *chatID, *event); err != nil {
		logger.Fatalf("Error: %v", err)
	}
}

func run(ctx context.Context, logger *log.Logger, dsn, rpcURL, account string, chatID int64, event string) error {
	pool, err := pgstore.NewPool(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	if err := migrations.RunPostgres(ctx, pool); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	rpc := solana.NewHTTPClient(rpcURL)
	queue := solana.NewRequestQueue(solana.QueueOptions{Logger: logger})
	defer queue.Close()

	ix := indexer.New(indexer.Options{
		Client:     rpc,
		Queue:      queue,
		WatchStore: pgstore.NewWatchStore(pool),
		SwapStore:  pgstore.NewSwapStore(pool),
		Logger:     logger,
	})

	if err := ix.Watch(ctx, account); err != nil {
		return fmt.Errorf("watch account: %w", err)
	}
	logger.Printf("Account %s is watched", account)

	targets := pgstore.NewNotificationStore(pool)
	err = targets.Insert(ctx, &domain.NotificationTarget{
		Account: account,
		ChatID:  chatID,
		Event:   event,
	})
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateKey) {
			logger.Printf("Chat %d already receives %s for %s", chatID, event, account)
			return nil
		}
		return fmt.Errorf("register target: %w", err)
	}

	logger.Printf("Chat %d now receives %s for %s", chatID, event, account)
	return nil
}

// Package config loads runtime configuration from the environment,
// optionally seeded from a dotenv file.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/knadh/koanf/parsers/dotenv"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config carries every runtime setting of the watcher process.
type Config struct {
	// RPCURL is the JSON-RPC endpoint. Required.
	RPCURL string
	// WSURL is the websocket endpoint for push hints. Optional; empty
	// means polling only.
	WSURL string
	// PostgresDSN selects persistent storage. Optional; empty means
	// in-memory stores.
	PostgresDSN string
	// TelegramBotToken enables chat delivery. Optional; empty routes
	// notifications to the log.
	TelegramBotToken string

	MetricsAddr     string
	SyncInterval    time.Duration
	RequestInterval time.Duration
}

// Load reads configuration: defaults, then the dotenv file when one
// is given, then the process environment. Later sources win.
func Load(envFile string) (*Config, error) {
	k := koanf.New(".")

	defaults := map[string]interface{}{
		"METRICS_ADDR":     ":9090",
		"SYNC_INTERVAL":    "1m",
		"REQUEST_INTERVAL": "5s",
	}
	if err := k.Load(confmap.Provider(defaults, "."), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := k.Load(file.Provider(envFile), dotenv.Parser()); err != nil {
				return nil, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}

	if err := k.Load(env.Provider("", ".", nil), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := &Config{
		RPCURL:           k.String("RPC_URL"),
		WSURL:            k.String("WS_URL"),
		PostgresDSN:      k.String("POSTGRES_DSN"),
		TelegramBotToken: k.String("TELEGRAM_BOT_TOKEN"),
		MetricsAddr:      k.String("METRICS_ADDR"),
	}

	if cfg.RPCURL == "" {
		return nil, fmt.Errorf("RPC_URL is required")
	}

	var err error
	if cfg.SyncInterval, err = time.ParseDuration(k.String("SYNC_INTERVAL")); err != nil {
		return nil, fmt.Errorf("parse SYNC_INTERVAL: %w", err)
	}
	if cfg.RequestInterval, err = time.ParseDuration(k.String("REQUEST_INTERVAL")); err != nil {
		return nil, fmt.Errorf("parse REQUEST_INTERVAL: %w", err)
	}

	return cfg, nil
}

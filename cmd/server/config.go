package main

import (
	"fmt"

	"github.com/kelseyhightower/envconfig"

	"github.com/SuperteamDAO/earn-sub007/internal/logging"
	"github.com/SuperteamDAO/earn-sub007/internal/metrics"
	"github.com/SuperteamDAO/earn-sub007/internal/server"
	"github.com/SuperteamDAO/earn-sub007/internal/solana"
)

type config struct {
	LogFormat logging.LogFormat `envconfig:"LOG_FORMAT" default:"text"`

	// Base58-encoded fee payer private key. Required: without it no
	// withdrawal can be constructed, so absence is fatal at startup.
	FeePayerKey string `envconfig:"FEE_PAYER_KEY" required:"true"`

	PriceAPIURL string `envconfig:"PRICE_API_URL" default:"https://api.jup.ag"`
	UserDirURL  string `envconfig:"USER_DIRECTORY_URL" required:"true"`

	// Optional audit database; attempts are not persisted when empty.
	PostgresDSN string `envconfig:"POSTGRES_DSN"`

	Server  server.Config
	Solana  solana.Config
	Metrics metrics.Config
}

func newConfig() (config, error) {
	var cfg config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return config{}, fmt.Errorf("failed to process env var: %w", err)
	}
	return cfg, nil
}

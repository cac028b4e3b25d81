package main

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"github.com/SuperteamDAO/earn-sub007/internal/audit"
	"github.com/SuperteamDAO/earn-sub007/internal/graceful"
	"github.com/SuperteamDAO/earn-sub007/internal/jupiter"
	"github.com/SuperteamDAO/earn-sub007/internal/logging"
	"github.com/SuperteamDAO/earn-sub007/internal/metrics"
	"github.com/SuperteamDAO/earn-sub007/internal/server"
	solnet "github.com/SuperteamDAO/earn-sub007/internal/solana"
	"github.com/SuperteamDAO/earn-sub007/internal/userdir"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := newConfig()
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	logger := logging.NewLogger(cfg.LogFormat)

	metricsServer := metrics.StartMetricsServer(
		cfg.Metrics,
		[]string{metrics.ServiceHTTP, metrics.ServiceWithdraw},
		logger,
	)
	defer func() {
		if metricsServer != nil {
			if err := metricsServer.Stop(ctx); err != nil {
				logger.Errorf("failed to stop metrics server: %v", err)
			}
		}
	}()

	feePayer, err := solana.PrivateKeyFromBase58(cfg.FeePayerKey)
	if err != nil {
		logger.Fatalf("failed to parse fee payer key: %v", err)
	}

	var auditor audit.Recorder = audit.Noop{}
	if cfg.PostgresDSN != "" {
		pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
		if err != nil {
			logger.Fatalf("failed to initialize Postgres pool: %v", err)
		}
		defer pgPool.Close()

		auditor, err = audit.NewRepo(ctx, pgPool)
		if err != nil {
			logger.Fatalf("failed to initialize audit storage: %v", err)
		}
	} else {
		logger.Warn("POSTGRES_DSN not set, withdrawal attempts will not be audited")
	}

	prices := jupiter.NewClient(cfg.PriceAPIURL)
	users := userdir.NewClient(cfg.UserDirURL)

	network, err := solnet.NewNetwork(
		ctx,
		cfg.Solana,
		prices,
		solnet.NewMemoryCache(),
		feePayer,
		logger,
	)
	if err != nil {
		logger.Fatalf("failed to initialize Solana network: %v", err)
	}

	srv := server.NewServer(cfg.Server, network, users, auditor, logger)

	go func() {
		sig := <-graceful.MakeSigintChan()
		logger.Infof("received exit signal: %v", sig)
		cancel()
	}()

	logger.Infof("fee payer: %s", feePayer.PublicKey())

	err = srv.Start(ctx)
	if err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"crowdfund/internal/adapter/repo"
	"crowdfund/internal/infra"
	"crowdfund/internal/realtime"
	"crowdfund/internal/reconcile"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := infra.SetupTelemetry(ctx, cfg.OTelEnabled, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: telemetry setup failed")
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	rec := reconcile.New(
		repo.NewReconcileRepository(runner),
		realtime.NewPGPublisher(runner, logger),
		cfg.ReconcileBatch,
		logger,
	)

	if err := rec.Run(ctx, cfg.ReconcileInterval); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}

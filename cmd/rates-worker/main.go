package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"carteira/internal/config"
	"carteira/internal/fx"
	"carteira/internal/rates/frankfurter"
	"carteira/internal/services"
	"carteira/internal/storage"
)

func main() {
	// Load .env file for local development (ignore errors in production/docker)
	_ = godotenv.Load()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	logger.Info("Starting rates-worker")

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	sqliteRepo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		logger.Error("Failed to initialize SQLite repository", "error", err, "path", cfg.SQLiteDBPath)
		os.Exit(1)
	}
	defer sqliteRepo.Close()

	fxService := fx.NewService(nil, sqliteRepo, frankfurter.NewFromEnv())
	maintenance := services.NewRateMaintenance(sqliteRepo, fxService, cfg.ReferenceCurrency)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger.Info("Rate maintenance configured",
		"refresh_every", cfg.RateRefreshEvery,
		"retention_days", cfg.RateRetentionDays,
		"reference_currency", cfg.ReferenceCurrency)

	run := func() {
		degraded, err := maintenance.PrefetchDailyRates(ctx)
		if err != nil {
			logger.Error("Rate prefetch failed", "error", err)
		} else if degraded > 0 {
			logger.Warn("Rate prefetch completed with degraded lookups", "degraded", degraded)
		}

		deleted, err := maintenance.PruneOldRates(ctx, cfg.RateRetentionDays)
		if err != nil {
			logger.Error("Rate pruning failed", "error", err)
		} else if deleted > 0 {
			logger.Info("Pruned old exchange rates", "deleted", deleted)
		}
	}

	// Run once at startup, then on the configured interval.
	run()

	ticker := time.NewTicker(cfg.RateRefreshEvery)
	defer ticker.Stop()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				run()
			}
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		logger.Info("Shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		logger.Info("Context cancelled")
	}

	cancel()
	logger.Info("Rates worker stopped")
}

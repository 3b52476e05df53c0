// Command seed bootstraps an empty database from the bundled history files
// without starting the HTTP server. Useful for provisioning a fresh
// environment ahead of the first deploy.
package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/letehaha/currency-rates/internal/adapters/database/pgsql"
	"github.com/letehaha/currency-rates/internal/adapters/events"
	"github.com/letehaha/currency-rates/internal/core/services"
	"github.com/letehaha/currency-rates/internal/platform/config"
	"github.com/letehaha/currency-rates/internal/platform/metrics"
	"github.com/letehaha/currency-rates/internal/providers"
	"github.com/letehaha/currency-rates/pkg/database"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, true)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()

	var sources []providers.SeedSource

	ecbSeed, err := providers.LoadECBSeed(cfg.ECBSeedPath)
	if err != nil {
		logger.Error("ECB seed bundle unavailable", slog.String("path", cfg.ECBSeedPath), slog.String("error", err.Error()))
		os.Exit(1)
	}
	sources = append(sources, ecbSeed)

	nbuSeed, err := providers.LoadNBUSeed(cfg.NBUSeedPath)
	if err != nil {
		logger.Error("NBU seed bundle unavailable", slog.String("path", cfg.NBUSeedPath), slog.String("error", err.Error()))
		os.Exit(1)
	}
	sources = append(sources, nbuSeed)

	registry := providers.NewRegistry(providers.NewECB(), providers.NewNBU())
	syncService := services.NewSyncService(
		registry,
		pgsql.NewRateRepository(dbPool),
		pgsql.NewCurrencyRepository(dbPool),
		pgsql.NewSyncRunRepository(dbPool),
		events.NoopPublisher{},
		metrics.New(prometheus.NewRegistry()),
		cfg.ReferenceCurrency,
		logger,
	)

	runs, err := syncService.SeedIfEmpty(ctx, sources)
	if err != nil {
		logger.Error("Seeding failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
	if len(runs) == 0 {
		logger.Info("Store already populated, nothing to seed")
		return
	}
	for _, run := range runs {
		logger.Info("Seed run finished",
			slog.String("provider", run.Provider),
			slog.String("status", run.Status),
			slog.Int("days", run.DaysCount),
			slog.Int64("records", run.RecordsCount))
	}
}

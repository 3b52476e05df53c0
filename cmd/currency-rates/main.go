package main

import (
	"context"
	"database/sql"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/letehaha/currency-rates/internal/adapters/database/pgsql"
	"github.com/letehaha/currency-rates/internal/adapters/events"
	"github.com/letehaha/currency-rates/internal/core/ports"
	"github.com/letehaha/currency-rates/internal/core/services"
	"github.com/letehaha/currency-rates/internal/handlers"
	"github.com/letehaha/currency-rates/internal/middleware"
	"github.com/letehaha/currency-rates/internal/platform/config"
	"github.com/letehaha/currency-rates/internal/platform/metrics"
	"github.com/letehaha/currency-rates/internal/platform/scheduler"
	"github.com/letehaha/currency-rates/internal/providers"
	"github.com/letehaha/currency-rates/pkg/database"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const appVersion = "1.0.0"

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	ctx := context.Background()

	// Initialize database connection pool (for application use)
	dbPool, err := database.NewPgxPool(ctx, cfg.DatabaseURL, cfg.EnableDBCheck)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg.DatabaseURL, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Rate sources, highest priority first: its quote wins when two sources
	// serve the same currency code.
	fetchClient := &http.Client{Timeout: cfg.FetchTimeout}
	registry := providers.NewRegistry(
		providers.NewECB(providers.WithECBClient(fetchClient)),
		providers.NewNBU(
			providers.WithNBUClient(fetchClient),
			providers.WithNBULogger(logger),
		),
	)

	rateRepo := pgsql.NewRateRepository(dbPool)
	currencyRepo := pgsql.NewCurrencyRepository(dbPool)
	runRepo := pgsql.NewSyncRunRepository(dbPool)

	appMetrics := metrics.New(prometheus.DefaultRegisterer)

	var publisher ports.EventPublisher = events.NoopPublisher{}
	if len(cfg.KafkaBrokers) > 0 {
		kafkaPublisher := events.NewKafkaPublisher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer func() {
			if cerr := kafkaPublisher.Close(); cerr != nil {
				logger.Error("Error closing Kafka publisher", slog.String("error", cerr.Error()))
			}
		}()
		publisher = kafkaPublisher
		logger.Info("Kafka sync events enabled", slog.String("topic", cfg.KafkaTopic))
	}

	syncService := services.NewSyncService(registry, rateRepo, currencyRepo, runRepo, publisher, appMetrics, cfg.ReferenceCurrency, logger)
	ratesService := services.NewRatesService(registry, rateRepo, currencyRepo, cfg.ReferenceCurrency, cfg.DefaultBaseCurrency)
	healthService := services.NewHealthService(registry, rateRepo, runRepo, cfg.ReferenceCurrency, logger)

	if cfg.SeedOnStartup {
		seedStore(ctx, cfg, syncService, logger)
	}

	if cfg.SyncOnStartup {
		go func() {
			logger.Info("Startup sync triggered")
			syncService.SyncAll(context.Background())
		}()
	}

	sched := scheduler.New(logger)
	if err := sched.Schedule(cfg.SyncCron, "sync-all", func() {
		syncService.SyncAll(context.Background())
	}); err != nil {
		logger.Error("Failed to schedule sync job", slog.String("error", err.Error()))
		os.Exit(1)
	}
	sched.Start()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	rate, err := limiter.NewRateFromFormatted(cfg.RateLimit)
	if err != nil {
		logger.Error("Invalid rate limit format", slog.String("error", err.Error()))
		os.Exit(1)
	}
	limiterInstance := limiter.New(memory.NewStore(), rate)

	handlers.RegisterRoutes(r, appVersion, handlers.Services{
		Rates:  ratesService,
		Sync:   syncService,
		Health: healthService,
	}, limiterInstance)

	// Stop the scheduler cleanly on SIGINT/SIGTERM.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-quit
		logger.Info("Shutdown signal received")
		sched.Stop()
		os.Exit(0)
	}()

	logger.Info("Server starting", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server failed to run", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies pending schema migrations over a temporary
// database/sql connection, using the pgx stdlib driver so it shares the
// application pool's wire behavior.
func runMigrations(databaseURL string, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	upErr := m.Up()
	if upErr != nil && upErr != migrate.ErrNoChange {
		return upErr
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if upErr == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}

// seedStore bootstraps an empty database from the bundled history files.
// Missing bundles are logged and skipped; a populated store is left alone.
func seedStore(ctx context.Context, cfg *config.Config, syncService *services.SyncService, logger *slog.Logger) {
	var sources []providers.SeedSource

	if ecbSeed, err := providers.LoadECBSeed(cfg.ECBSeedPath); err != nil {
		logger.Warn("ECB seed bundle unavailable", slog.String("path", cfg.ECBSeedPath), slog.String("error", err.Error()))
	} else {
		sources = append(sources, ecbSeed)
	}

	if nbuSeed, err := providers.LoadNBUSeed(cfg.NBUSeedPath); err != nil {
		logger.Warn("NBU seed bundle unavailable", slog.String("path", cfg.NBUSeedPath), slog.String("error", err.Error()))
	} else {
		sources = append(sources, nbuSeed)
	}

	if len(sources) == 0 {
		return
	}

	runs, err := syncService.SeedIfEmpty(ctx, sources)
	if err != nil {
		logger.Error("Seeding failed", slog.String("error", err.Error()))
		return
	}
	for _, run := range runs {
		logger.Info("Seed run finished",
			slog.String("provider", run.Provider),
			slog.String("status", run.Status),
			slog.Int64("records", run.RecordsCount))
	}
}

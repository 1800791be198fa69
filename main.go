package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/swagger"
	"github.com/restaurant-hub/product-bulk/application"
	_ "github.com/restaurant-hub/product-bulk/docs"
	"github.com/restaurant-hub/product-bulk/domain/product"
	"github.com/restaurant-hub/product-bulk/infrastructure/archive/s3"
	"github.com/restaurant-hub/product-bulk/infrastructure/config"
	"github.com/restaurant-hub/product-bulk/infrastructure/messaging/kafka"
	"github.com/restaurant-hub/product-bulk/infrastructure/messaging/worker"
	"github.com/restaurant-hub/product-bulk/infrastructure/persistence/clickhouse"
	"github.com/restaurant-hub/product-bulk/infrastructure/persistence/memory"
	"github.com/restaurant-hub/product-bulk/infrastructure/persistence/postgres"
	"github.com/restaurant-hub/product-bulk/presentation/api/controller"
	"github.com/restaurant-hub/product-bulk/presentation/api/middleware"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.LogLevel),
	})))

	slog.Info("Starting Product Bulk Service", "port", cfg.Server.Port, "store", cfg.Store.Driver, "audit", cfg.Kafka.AuditEnabled)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	checks := make(map[string]controller.Pinger)

	var chClient *clickhouse.Client
	if cfg.NeedsClickHouse() {
		slog.Info("Connecting to ClickHouse...")
		chClient, err = clickhouse.NewClient(cfg.ClickHouse)
		if err != nil {
			slog.Error("Failed to connect to ClickHouse", "error", err)
			os.Exit(1)
		}
		defer chClient.Close()

		slog.Info("Initializing ClickHouse schema...")
		if err := chClient.InitSchema(ctx); err != nil {
			slog.Error("Failed to initialize schema", "error", err)
			os.Exit(1)
		}
		checks["clickhouse"] = chClient
	}

	flagColumn := cfg.Bulk.FlagColumn
	if flagColumn == "" {
		flagColumn = product.DefaultFlagColumn
	}

	var repository product.ProductRepository
	switch cfg.Store.Driver {
	case config.StoreDriverPostgres:
		slog.Info("Connecting to Postgres...")
		pgClient, err := postgres.NewClient(ctx, cfg.Postgres)
		if err != nil {
			slog.Error("Failed to connect to Postgres", "error", err)
			os.Exit(1)
		}
		defer pgClient.Close()

		if err := pgClient.InitSchema(ctx); err != nil {
			slog.Error("Failed to initialize schema", "error", err)
			os.Exit(1)
		}
		if err := pgClient.EnsureFlagColumn(ctx, flagColumn); err != nil {
			slog.Error("Failed to prepare flag column", "column", flagColumn, "error", err)
			os.Exit(1)
		}
		checks["postgres"] = pgClient
		repository = postgres.NewProductRepository(pgClient)
	case config.StoreDriverClickHouse:
		if err := chClient.EnsureFlagColumn(ctx, flagColumn); err != nil {
			slog.Error("Failed to prepare flag column", "column", flagColumn, "error", err)
			os.Exit(1)
		}
		repository = clickhouse.NewProductRepository(chClient)
	default:
		repository = seedMemoryStore(cfg.Store.SeedIDs, flagColumn)
	}

	executor, err := product.NewExecutor(repository, flagColumn)
	if err != nil {
		slog.Error("Invalid flag column", "column", flagColumn, "error", err)
		os.Exit(1)
	}
	throttle := product.NewFixedThrottle(cfg.Bulk.ItemDelay, cfg.Bulk.BatchDelay)

	var (
		publisher   kafka.AuditPublisher
		auditWorker *worker.AuditWorker
		retryWorker *worker.RetryWorker
		auditRepo   *clickhouse.AuditRepository
	)
	if cfg.Kafka.AuditEnabled {
		slog.Info("Ensuring Kafka topics exist...")
		if err := kafka.EnsureTopicsWithConfig(cfg.Kafka, kafka.AuditTopics(cfg.Kafka)); err != nil {
			slog.Warn("Failed to ensure Kafka topics", "error", err)
		}

		producer := kafka.NewProducer(cfg.Kafka)
		defer producer.Close()
		publisher = producer

		auditRepo = clickhouse.NewAuditRepository(chClient)

		var archiver worker.AuditArchiver
		if cfg.Archive.Enabled() {
			s3Archiver, err := s3.NewArchiver(ctx, cfg.Archive)
			if err != nil {
				slog.Error("Failed to create S3 archiver", "bucket", cfg.Archive.S3Bucket, "error", err)
				os.Exit(1)
			}
			archiver = s3Archiver
		}

		auditWorker = worker.NewAuditWorker(cfg.Kafka, auditRepo, archiver, cfg.Worker)
		auditWorker.Start(ctx)

		retryWorker = worker.NewRetryWorker(cfg.Kafka, auditRepo, archiver, cfg.Worker)
		retryWorker.Start(ctx)
	}

	bulkService := application.NewBulkProductService(executor, throttle, publisher, cfg.Bulk.MicroBatchSize)

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		AppName:      "Product Bulk API",
	})

	app.Use(cors.New())
	app.Use(middleware.RequestID())
	app.Use(middleware.RequestLogger())
	app.Use(middleware.Recovery())

	app.Get("/swagger/*", swagger.HandlerDefault)

	controller.NewBulkController(app, bulkService)
	controller.NewHealthController(app, checks)
	if auditRepo != nil {
		controller.NewStatsController(app, application.NewAuditService(auditRepo))
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("HTTP server listening", "addr", addr)
		slog.Info("Swagger UI available", "url", fmt.Sprintf("http://localhost:%d/swagger/index.html", cfg.Server.Port))
		if err := app.Listen(addr); err != nil {
			slog.Error("Server error", "error", err)
		}
	}()

	sig := <-shutdown
	slog.Info("Received signal, starting graceful shutdown...", "signal", sig)

	// In-flight batches finish before the workers stop, so their audit
	// records still reach the producer.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	cancel()

	if auditWorker != nil {
		auditWorker.Stop()
	}
	if retryWorker != nil {
		retryWorker.Stop()
	}

	slog.Info("Shutdown complete")
}

func seedMemoryStore(ids []string, flag string) *memory.ProductRepository {
	now := time.Now()
	repo := memory.NewProductRepository()
	for _, id := range ids {
		repo.Put(memory.Product{ID: id, Flags: map[string]bool{flag: true}, UpdatedAt: now})
	}
	slog.Info("Memory store seeded", "products", repo.Len())
	return repo
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/cardforge/cardforge/internal/config"
	"github.com/cardforge/cardforge/internal/logging"
	"github.com/cardforge/cardforge/internal/pipeline"
	"github.com/cardforge/cardforge/internal/record"
	"github.com/cardforge/cardforge/internal/record/memory"
	"github.com/cardforge/cardforge/internal/record/postgres"
	"github.com/cardforge/cardforge/internal/schema"
	"github.com/cardforge/cardforge/internal/storage"
	"github.com/cardforge/cardforge/internal/storage/disk"
	"github.com/cardforge/cardforge/internal/storage/s3"
	"github.com/cardforge/cardforge/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"records_backend", cfg.Records.Backend,
		"storage_backend", cfg.Storage.Backend,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()

	records, cleanup, err := openRecords(ctx, cfg)
	if err != nil {
		slog.Error("failed to open record store", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	store, err := openStorage(ctx, cfg)
	if err != nil {
		slog.Error("failed to open storage", "error", err)
		os.Exit(1)
	}

	registry := schema.NewRegistry()
	for _, table := range schema.Builtin() {
		if err := registry.Register(table); err != nil {
			slog.Error("failed to register table", "table", table.ID, "error", err)
			os.Exit(1)
		}
	}
	slog.Info("tables registered", "count", len(registry.All()))

	promRegistry := prometheus.NewRegistry()
	promRegistry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	pl := pipeline.New(store, records, slog.Default(), pipeline.NewMetrics(promRegistry))

	server := web.NewServer(registry, pl, slog.Default(), web.Options{
		MaxUploadBytes: cfg.Upload.MaxFileSize,
		RatePerMinute:  ratePerMinute(cfg),
		Metrics:        promRegistry,
	})

	// Graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil {
		slog.Info("server stopped", "error", err)
	}
}

// openRecords builds the configured record store and returns a cleanup
// function for its resources.
func openRecords(ctx context.Context, cfg *config.Config) (record.Store, func(), error) {
	if strings.EqualFold(cfg.Records.Backend, "memory") {
		slog.Warn("using in-memory record store, data will not survive restarts")
		return memory.New(), func() {}, nil
	}

	poolConfig, err := pgxpool.ParseConfig(cfg.Records.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	poolConfig.MaxConns = int32(cfg.Records.MaxConns)
	poolConfig.MinConns = int32(cfg.Records.MinConns)
	poolConfig.MaxConnLifetime = cfg.Records.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.Records.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}

	if u, err := url.Parse(cfg.Records.DatabaseURL); err == nil {
		slog.Info("connected to database", "name", strings.TrimPrefix(u.Path, "/"))
	}

	if cfg.Records.Migrate {
		if err := postgres.Migrate(migrateURL(cfg.Records.DatabaseURL)); err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("schema migrations applied")
	}

	return postgres.New(pool), pool.Close, nil
}

// migrateURL rewrites a postgres:// connection string to golang-migrate's
// pgx5:// scheme.
func migrateURL(dbURL string) string {
	if rest, ok := strings.CutPrefix(dbURL, "postgresql://"); ok {
		return "pgx5://" + rest
	}
	if rest, ok := strings.CutPrefix(dbURL, "postgres://"); ok {
		return "pgx5://" + rest
	}
	return dbURL
}

// openStorage builds the configured blob store.
func openStorage(ctx context.Context, cfg *config.Config) (storage.Store, error) {
	if strings.EqualFold(cfg.Storage.Backend, "s3") {
		return s3.New(ctx, s3.Config{
			Endpoint:  cfg.Storage.S3Endpoint,
			AccessKey: cfg.Storage.S3AccessKey,
			SecretKey: cfg.Storage.S3SecretKey,
			Bucket:    cfg.Storage.S3Bucket,
			UseSSL:    cfg.Storage.S3UseSSL,
		})
	}
	return disk.New(cfg.Storage.DiskRoot)
}

func ratePerMinute(cfg *config.Config) int {
	if !cfg.Rate.Enabled {
		return 0
	}
	return cfg.Rate.RequestsPerMinute
}

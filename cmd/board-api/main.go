package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	// Drivers
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	// Instrumentation
	"github.com/exaring/otelpgx"

	// Interne
	"github.com/erikaambiru/azure-devsecops-demo/config"
	"github.com/erikaambiru/azure-devsecops-demo/internal/adapters/primary/httpapi"
	"github.com/erikaambiru/azure-devsecops-demo/internal/adapters/secondary/eventbroker"
	"github.com/erikaambiru/azure-devsecops-demo/internal/adapters/secondary/repository"
	"github.com/erikaambiru/azure-devsecops-demo/internal/core/ports"
	"github.com/erikaambiru/azure-devsecops-demo/internal/core/services"
	"github.com/erikaambiru/azure-devsecops-demo/internal/platform/telemetry"
)

func main() {
	// 1. Config & Logger
	cfg, err := config.Load("board-api")
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	telemetry.InitLogger(os.Stdout, cfg)
	slog.Info("🚀 Starting Board API", "env", cfg.Env, "repo", cfg.RepoDriver, "port", cfg.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// 2. Télémétrie (Tracing)
	tp, err := telemetry.InitTracer(ctx, cfg)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else if tp != nil {
		defer func() { _ = tp.Shutdown(context.Background()) }()
	}

	// 3. Infrastructure: stockage
	postRepo, closeRepo, err := openRepository(ctx, cfg)
	if err != nil {
		slog.Error("Unable to open repository", "driver", cfg.RepoDriver, "error", err)
		os.Exit(1)
	}
	defer closeRepo()

	// 4. Infrastructure: Event Broker (NATS, optionnel)
	var eventPub ports.EventPublisher = eventbroker.NopPublisher{}
	if cfg.NatsUrl != "" {
		nc, err := nats.Connect(cfg.NatsUrl)
		if err != nil {
			slog.Error("Unable to connect to NATS", "error", err)
			os.Exit(1)
		}
		defer nc.Close()
		eventPub = eventbroker.NewNatsPublisher(nc)
		slog.Info("✅ Connected to NATS")
	}

	// 5. Core
	postService := services.NewPostService(postRepo, eventPub)

	// 6. Primary Adapter (HTTP)
	srvHTTP := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.Handler(httpapi.NewServer(postService), cfg.CORSOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		slog.Info("📡 Board API listening", "port", cfg.Port)
		if err := srvHTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Graceful Shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("🛑 Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srvHTTP.Shutdown(shutdownCtx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}
	slog.Info("👋 Server exited")
}

// openRepository choisit le stockage selon REPO_DRIVER et retourne sa fonction de fermeture.
func openRepository(ctx context.Context, cfg *config.Config) (ports.PostRepository, func(), error) {
	switch cfg.RepoDriver {
	case config.DriverPostgres:
		dbConfig, err := pgxpool.ParseConfig(cfg.DBUrl)
		if err != nil {
			return nil, nil, err
		}
		// Instrumentation SQL
		dbConfig.ConnConfig.Tracer = otelpgx.NewTracer()

		pool, err := pgxpool.NewWithConfig(ctx, dbConfig)
		if err != nil {
			return nil, nil, err
		}
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		repo := repository.NewPostgresRepo(pool)
		if err := repo.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("✅ Connected to Postgres")
		return repo, pool.Close, nil

	case config.DriverRedis:
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := redisotel.InstrumentTracing(rdb); err != nil {
			return nil, nil, err
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, err
		}
		slog.Info("✅ Connected to Redis")
		return repository.NewRedisRepo(rdb), func() { _ = rdb.Close() }, nil
	}

	slog.Warn("⚠️ Using in-memory repository, posts will not survive a restart")
	return repository.NewMemoryRepo(), func() {}, nil
}

package main

import (
	"context"
	"crypto/tls"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/channel"
	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/config"
	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/dispatch"
	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/engine"
	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/generator"
	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/recorder"
	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/server"
	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/store"
	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/store/memory"
	redisstore "github.com/RenatoFloreon/consciencia-ia-sub000/internal/store/redis"
	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/telemetry"
	"github.com/RenatoFloreon/consciencia-ia-sub000/internal/webhook"
)

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	shutdownTracer, err := telemetry.InitTracer("consciencia-ia", logger)
	if err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			logger.Error("failed to shutdown tracer", slog.String("error", err.Error()))
		}
	}()

	cfg, err := config.Load(os.Getenv("CONFIG_FILE"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	var redisClient *redis.Client
	if !cfg.Session.FallbackOnly || cfg.Storage.Type == "redis" {
		redisClient = newRedisClient(cfg.Redis)
	}

	// Session store: in-process fallback always present; Redis primary
	// unless running fallback-only.
	fallback := memory.New(cfg.Session.TTL)
	var primary store.SessionStore
	if !cfg.Session.FallbackOnly {
		primary = redisstore.New(redisClient, cfg.Session.TTL, redisstore.WithLogger(logger))
	}
	sessions := store.NewLayered(primary, fallback, store.WithLogger(logger))

	rec := recorder.New(newRecorderStore(cfg, redisClient, logger), recorder.WithLogger(logger))

	chClient := channel.New(cfg.Channel.Token, cfg.Channel.PhoneID,
		channel.WithBaseURL(cfg.Channel.BaseURL),
	)
	dispatcher := dispatch.New(chClient,
		dispatch.WithMaxLen(cfg.Channel.MaxMessageLen),
		dispatch.WithMaxRetries(cfg.Channel.MaxRetries),
		dispatch.WithLogger(logger),
	)

	gen := generator.NewHTTP(cfg.Generation.APIKey, cfg.Generation.Model,
		generator.WithBaseURL(cfg.Generation.BaseURL),
		generator.WithMaxInputTokens(cfg.Generation.MaxInputTokens),
		generator.WithLogger(logger),
	)

	eng := engine.New(sessions, dispatcher, gen, rec,
		engine.DefaultFlow(cfg.Flow.AskBusinessContext),
		engine.Config{
			Cooldown:          cfg.Generation.Cooldown,
			GenerationTimeout: cfg.Generation.Timeout,
		},
		engine.WithLogger(logger),
	)

	srv := server.New(cfg.Server.Port, logger)
	srv.MountWebhook(webhook.NewHandler(eng, cfg.Server.VerifyToken, webhook.WithLogger(logger)))
	srv.MountAdmin(rec, sessions)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server failed: %v", err)
		}
	case <-sigChan:
		logger.Info("shutdown signal received, stopping")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown error", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger.Info("shutdown complete")
}

func newRedisClient(cfg config.RedisConfig) *redis.Client {
	opts := &redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}
	return redis.NewClient(opts)
}

func newRecorderStore(cfg *config.Config, redisClient *redis.Client, logger *slog.Logger) recorder.Store {
	switch cfg.Storage.Type {
	case "sqlite":
		s, err := recorder.NewSQLiteStore(cfg.Storage.SQLite.Path, cfg.Storage.Retention)
		if err != nil {
			log.Fatalf("Failed to open interaction store: %v", err)
		}
		return s
	case "memory":
		return recorder.NewMemoryStore(cfg.Storage.Retention)
	default:
		if redisClient == nil {
			logger.Warn("no redis client for interaction store, using memory")
			return recorder.NewMemoryStore(cfg.Storage.Retention)
		}
		return recorder.NewRedisStore(redisClient, cfg.Storage.Retention)
	}
}

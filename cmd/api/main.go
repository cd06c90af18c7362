package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inmochat_backend/internal/chat"
	"inmochat_backend/internal/chat/agent"
	"inmochat_backend/internal/chat/extractor"
	"inmochat_backend/internal/config"
	apphttp "inmochat_backend/internal/http"
	"inmochat_backend/internal/http/router"
	"inmochat_backend/internal/indexing"
	"inmochat_backend/internal/properties"
	"inmochat_backend/migrations"
	"inmochat_backend/platform/ai/embeddings"
	"inmochat_backend/platform/db"
	"inmochat_backend/platform/logger"
	"inmochat_backend/platform/qdrant"
	"inmochat_backend/platform/validator"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	// Initialize structured logger
	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
		return db.RunMigrations(ctx, cfg.DatabaseURL, migrations.FS, ".")
	}); err != nil {
		log.Error("failed to run database migrations", "error", err)
		panic("failed to run database migrations: " + err.Error())
	}
	log.Info("database migrations complete")

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	if err := withRetry(ctx, log, "redis connection", 5, 2*time.Second, func() error {
		return rdb.Ping(ctx).Err()
	}); err != nil {
		log.Error("failed to connect to redis", "error", err)
		panic("failed to connect to redis: " + err.Error())
	}
	defer func() { _ = rdb.Close() }()
	log.Info("redis connection established")

	// Shared validator instance for dependency injection
	val := validator.New()

	// ========================================================================
	// Collaborators
	// ========================================================================

	ext, err := extractor.NewClient(ctx, extractor.Config{
		APIKey:     cfg.GeminiAPIKey,
		Model:      cfg.GeminiModel,
		FlashModel: cfg.GeminiFlashModel,
	}, log)
	if err != nil {
		log.Error("failed to initialize lead extractor", "error", err)
		panic("failed to initialize lead extractor: " + err.Error())
	}

	embedder := embeddings.NewClient(embeddings.Config{
		BaseURL: cfg.EmbeddingAPIURL,
		APIKey:  cfg.EmbeddingAPIKey,
	})

	vectorIndex := qdrant.NewClient(qdrant.Config{
		BaseURL:    cfg.QdrantURL,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.QdrantCollection,
	})

	indexClient := indexing.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.AsynqQueue)
	defer func() { _ = indexClient.Close() }()

	// ========================================================================
	// Domain Modules
	// ========================================================================

	propertiesModule := properties.NewModule(pool, embedder, vectorIndex, indexClient, val, log)

	advisor, err := agent.NewListingAdvisor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, propertiesModule.Repository(), log)
	if err != nil {
		log.Error("failed to initialize listing advisor", "error", err)
		panic("failed to initialize listing advisor: " + err.Error())
	}

	chatModule := chat.NewModule(chat.Config{
		ConversationTTL:   cfg.ConversationTTL,
		SearchLimit:       cfg.SearchLimit,
		DispatchMaxPasses: cfg.DispatchMaxPasses,
	}, rdb, ext, propertiesModule.Service(), advisor, val, log)

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config: cfg,
		Logger: log,
		Health: &healthChecker{pool: db.NewPoolAdapter(pool), rdb: rdb},
		Modules: []apphttp.Module{
			chatModule,
			propertiesModule,
		},
	}

	engine := router.New(app)
	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error("server shutdown failed", "error", err)
		}
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// healthChecker pings every hard dependency of the API.
type healthChecker struct {
	pool *db.PoolAdapter
	rdb  *redis.Client
}

func (h *healthChecker) Ping(ctx context.Context) error {
	if err := h.pool.Ping(ctx); err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	if err := h.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	return nil
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}

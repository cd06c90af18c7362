package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inmochat_backend/internal/config"
	"inmochat_backend/internal/indexing"
	"inmochat_backend/internal/properties/repository"
	"inmochat_backend/platform/ai/embeddings"
	"inmochat_backend/platform/db"
	"inmochat_backend/platform/logger"
	"inmochat_backend/platform/qdrant"

	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

func main() {
	backfill := flag.Bool("backfill", false, "reindex the full catalog and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting indexing worker", "env", cfg.Env, "queue", cfg.AsynqQueue)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

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

	embedder := embeddings.NewClient(embeddings.Config{
		BaseURL: cfg.EmbeddingAPIURL,
		APIKey:  cfg.EmbeddingAPIKey,
	})

	vectorIndex := qdrant.NewClient(qdrant.Config{
		BaseURL:    cfg.QdrantURL,
		APIKey:     cfg.QdrantAPIKey,
		Collection: cfg.QdrantCollection,
	})

	indexer := indexing.NewIndexer(repository.New(pool), embedder, vectorIndex, log)

	if *backfill {
		count, err := indexer.Backfill(ctx)
		if err != nil {
			log.Error("backfill failed", "error", err)
			os.Exit(1)
		}
		log.Info("backfill complete", "indexed", count)
		return
	}

	worker := indexing.NewWorker(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, cfg.AsynqQueue, cfg.AsynqConcurrency, indexer, log)

	worker.Run(ctx)
	log.Info("indexing worker stopped")
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

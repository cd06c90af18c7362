package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env      string
	HTTPAddr string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ConversationTTL time.Duration

	GeminiAPIKey     string
	GeminiModel      string
	GeminiFlashModel string

	EmbeddingAPIURL string
	EmbeddingAPIKey string

	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	SearchLimit       int
	DispatchMaxPasses int

	CORSAllowAll bool
	CORSOrigins  []string

	AsynqQueue       string
	AsynqConcurrency int
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		ConversationTTL: mustDuration(getEnv("CONVERSATION_TTL", "720h")),

		GeminiAPIKey:     getEnv("GEMINI_API_KEY", ""),
		GeminiModel:      getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		GeminiFlashModel: getEnv("GEMINI_FLASH_MODEL", "gemini-2.0-flash-lite"),

		EmbeddingAPIURL: getEnv("EMBEDDING_API_URL", ""),
		EmbeddingAPIKey: getEnv("EMBEDDING_API_KEY", ""),

		QdrantURL:        getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantAPIKey:     getEnv("QDRANT_API_KEY", ""),
		QdrantCollection: getEnv("QDRANT_COLLECTION", "properties"),

		SearchLimit:       getEnvInt("SEARCH_LIMIT", 5),
		DispatchMaxPasses: getEnvInt("DISPATCH_MAX_PASSES", 5),

		CORSAllowAll: corsAllowAll,
		CORSOrigins:  corsOrigins,

		AsynqQueue:       getEnv("ASYNQ_QUEUE", "indexing"),
		AsynqConcurrency: getEnvInt("ASYNQ_CONCURRENCY", 10),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.GeminiAPIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if cfg.SearchLimit < 1 {
		return nil, fmt.Errorf("SEARCH_LIMIT must be at least 1")
	}
	if cfg.DispatchMaxPasses < 1 {
		return nil, fmt.Errorf("DISPATCH_MAX_PASSES must be at least 1")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(val)
	if err != nil {
		return fallback
	}
	return n
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}

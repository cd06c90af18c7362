// Package logger provides structured logging infrastructure for the application.
// This is part of the platform layer and contains no business logic.
package logger

import (
	"context"
	"log/slog"
	"os"
	"strings"
)

// Context key types for storing values in context
type contextKey string

const (
	// RequestIDKey is the context key for request ID
	RequestIDKey contextKey = "request_id"
	// ConversationKey is the context key for the conversation key
	ConversationKey contextKey = "conversation_key"
)

// Logger wraps slog.Logger for structured logging
type Logger struct {
	*slog.Logger
}

// New creates a new logger based on environment
func New(env string) *Logger {
	var handler slog.Handler

	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	if strings.EqualFold(env, "development") {
		opts.Level = slog.LevelDebug
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

// WithContext returns a logger with context values extracted.
// Supports request_id and conversation_key from context.
func (l *Logger) WithContext(ctx context.Context) *Logger {
	if ctx == nil {
		return l
	}

	newLogger := l

	if requestID, ok := ctx.Value(RequestIDKey).(string); ok && requestID != "" {
		newLogger = &Logger{
			Logger: newLogger.With(slog.String("request_id", requestID)),
		}
	}

	if convKey, ok := ctx.Value(ConversationKey).(string); ok && convKey != "" {
		newLogger = newLogger.WithConversation(convKey)
	}

	return newLogger
}

// WithConversation returns a logger scoped to a conversation key
func (l *Logger) WithConversation(key string) *Logger {
	return &Logger{
		Logger: l.With(slog.String("conversation_key", key)),
	}
}

// HTTPRequest logs an HTTP request
func (l *Logger) HTTPRequest(method, path string, status int, latencyMs float64, clientIP string) {
	l.Info("http_request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Float64("latency_ms", latencyMs),
		slog.String("client_ip", clientIP),
	)
}

// TurnProcessed logs a completed chat turn
func (l *Logger) TurnProcessed(conversationKey, stage string, passes int, latencyMs float64) {
	l.Info("turn_processed",
		slog.String("conversation_key", conversationKey),
		slog.String("stage", stage),
		slog.Int("dispatch_passes", passes),
		slog.Float64("latency_ms", latencyMs),
	)
}

// CollaboratorError logs a failed call to an external collaborator
// (extractor, searcher, validator escalation). The engine absorbs these,
// so they log at warn level rather than error.
func (l *Logger) CollaboratorError(collaborator string, err error) {
	l.Warn("collaborator_error",
		slog.String("collaborator", collaborator),
		slog.String("error", err.Error()),
	)
}

// PersistenceError logs a conversation store append failure. The turn
// still returns its computed response, so the next turn may not observe
// this one.
func (l *Logger) PersistenceError(conversationKey string, err error) {
	l.Error("persistence_error",
		slog.String("conversation_key", conversationKey),
		slog.String("error", err.Error()),
	)
}

// DatabaseError logs database errors
func (l *Logger) DatabaseError(operation string, err error) {
	l.Error("database_error",
		slog.String("operation", operation),
		slog.String("error", err.Error()),
	)
}

// RateLimitExceeded logs rate limit events
func (l *Logger) RateLimitExceeded(clientIP, path string) {
	l.Warn("rate_limit_exceeded",
		slog.String("client_ip", clientIP),
		slog.String("path", path),
	)
}

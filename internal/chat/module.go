// Package chat provides the conversational engine module.
package chat

import (
	"time"

	"inmochat_backend/internal/chat/extractor"
	"inmochat_backend/internal/chat/handler"
	"inmochat_backend/internal/chat/intent"
	"inmochat_backend/internal/chat/repository"
	"inmochat_backend/internal/chat/service"
	"inmochat_backend/internal/chat/stages"
	apphttp "inmochat_backend/internal/http"
	"inmochat_backend/platform/logger"
	"inmochat_backend/platform/validator"

	"github.com/redis/go-redis/v9"
)

// Config carries the tunables the chat module needs from the application
// configuration.
type Config struct {
	ConversationTTL   time.Duration
	SearchLimit       int
	DispatchMaxPasses int
}

// Module represents the chat domain module.
type Module struct {
	handler *handler.Handler
	engine  *service.Engine
	store   *repository.ConversationStore
}

// NewModule creates a new chat module with all dependencies wired.
// The extractor doubles as the domain-validation escalator: the same
// model that extracts leads decides borderline relevance.
func NewModule(cfg Config, rdb *redis.Client, ext *extractor.Client, searcher stages.Searcher, elaborator stages.Elaborator, val *validator.Validator, log *logger.Logger) *Module {
	store := repository.NewConversationStore(rdb, cfg.ConversationTTL, log)
	gate := intent.NewValidator(ext, log)
	dispatcher := stages.NewDispatcher(ext, searcher, elaborator, cfg.SearchLimit, log)
	engine := service.NewEngine(gate, store, dispatcher, cfg.DispatchMaxPasses, log)
	h := handler.New(engine, store, val)

	return &Module{
		handler: h,
		engine:  engine,
		store:   store,
	}
}

// Engine exposes the turn engine for non-HTTP callers.
func (m *Module) Engine() *service.Engine {
	return m.engine
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "chat"
}

// RegisterRoutes registers the module's routes under /api/v1/chat.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	chatGroup := ctx.V1.Group("/chat")
	chatGroup.Use(ctx.ChatRateLimiter.RateLimit())
	m.handler.RegisterRoutes(chatGroup)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)

// Package properties provides the listings catalog module: the search
// collaborator used by the chat engine plus the catalog HTTP surface.
package properties

import (
	"inmochat_backend/internal/http"
	"inmochat_backend/internal/indexing"
	"inmochat_backend/internal/properties/handler"
	"inmochat_backend/internal/properties/repository"
	"inmochat_backend/internal/properties/service"
	"inmochat_backend/platform/logger"
	"inmochat_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module represents the properties domain module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates a new properties module with all dependencies wired.
func NewModule(pool *pgxpool.Pool, embedder service.Embedder, index service.VectorIndex, enqueuer indexing.Enqueuer, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, embedder, index, log)
	h := handler.New(repo, enqueuer, val, log)

	return &Module{
		handler: h,
		service: svc,
		repo:    repo,
	}
}

// Service exposes the search collaborator for the chat engine.
func (m *Module) Service() *service.Service {
	return m.service
}

// Repository exposes the catalog repository for the listing advisor agent
// and the index worker.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// Name returns the module name for logging.
func (m *Module) Name() string {
	return "properties"
}

// RegisterRoutes registers the module's routes under /api/v1/listings.
func (m *Module) RegisterRoutes(ctx *http.RouterContext) {
	listings := ctx.V1.Group("/listings")
	m.handler.RegisterRoutes(listings)
}

// Compile-time check that Module implements http.Module
var _ http.Module = (*Module)(nil)

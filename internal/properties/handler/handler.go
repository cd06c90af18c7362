package handler

import (
	"errors"
	"net/http"

	"inmochat_backend/internal/indexing"
	"inmochat_backend/internal/properties/repository"
	"inmochat_backend/internal/properties/transport"
	"inmochat_backend/platform/httpkit"
	"inmochat_backend/platform/logger"
	"inmochat_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// Handler handles HTTP requests for the listings catalog.
type Handler struct {
	repo     *repository.Repository
	enqueuer indexing.Enqueuer
	val      *validator.Validator
	log      *logger.Logger
}

// New creates a new listings handler.
func New(repo *repository.Repository, enqueuer indexing.Enqueuer, val *validator.Validator, log *logger.Logger) *Handler {
	return &Handler{repo: repo, enqueuer: enqueuer, val: val, log: log}
}

// RegisterRoutes registers the listing routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.Create)
	rg.GET("/:id", h.GetByID)
}

// Create handles POST /api/v1/listings. The new listing is queued for
// vector indexing; a queueing failure does not fail the request.
func (h *Handler) Create(c *gin.Context) {
	var req transport.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	listing, err := h.repo.Create(c.Request.Context(), req.ToListing())
	if httpkit.HandleError(c, err) {
		return
	}

	if h.enqueuer != nil {
		payload := indexing.IndexListingPayload{ListingID: listing.ID.String()}
		if err := h.enqueuer.EnqueueIndexListing(c.Request.Context(), payload); err != nil {
			h.log.Error("failed to enqueue listing for indexing", "listing_id", listing.ID.String(), "error", err)
		}
	}

	httpkit.JSON(c, http.StatusCreated, transport.NewListingResponse(listing))
}

// GetByID handles GET /api/v1/listings/:id
func (h *Handler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, "invalid listing id")
		return
	}

	listing, err := h.repo.GetByID(c.Request.Context(), id)
	if errors.Is(err, repository.ErrNotFound) {
		httpkit.Error(c, http.StatusNotFound, "listing not found", nil)
		return
	}
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.NewListingResponse(listing))
}

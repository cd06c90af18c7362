package handler

import (
	"context"
	"net/http"

	"inmochat_backend/internal/chat/domain"
	"inmochat_backend/internal/chat/service"
	"inmochat_backend/internal/chat/transport"
	"inmochat_backend/platform/httpkit"
	"inmochat_backend/platform/validator"

	"github.com/gin-gonic/gin"
)

const (
	msgInvalidRequest   = "invalid request"
	msgValidationFailed = "validation failed"
)

// TurnEngine processes one conversation turn.
type TurnEngine interface {
	ProcessTurn(ctx context.Context, in service.TurnInput) (service.TurnResult, error)
}

// HistoryReader fetches the stored transcript of a conversation.
type HistoryReader interface {
	FetchAll(ctx context.Context, conversationKey string) ([]domain.Message, error)
}

// Handler handles HTTP requests for chat turns and history.
type Handler struct {
	engine  TurnEngine
	history HistoryReader
	val     *validator.Validator
}

// New creates a new chat handler.
func New(engine TurnEngine, history HistoryReader, val *validator.Validator) *Handler {
	return &Handler{engine: engine, history: history, val: val}
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("", h.ProcessTurn)
	rg.GET("/:userId/:convId/history", h.History)
}

// ProcessTurn handles POST /api/v1/chat
func (h *Handler) ProcessTurn(c *gin.Context) {
	var req transport.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, err.Error())
		return
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, msgValidationFailed, err.Error())
		return
	}

	result, err := h.engine.ProcessTurn(c.Request.Context(), service.TurnInput{
		UserID:   req.UserID,
		ConvID:   req.ConvID,
		Message:  req.Message,
		UserName: req.UserName,
	})
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.ChatResponse{
		ConversationKey: result.ConversationKey,
		Stage:           string(result.Stage),
		Response:        result.Text,
		Properties:      transport.NewPropertyResponses(result.Properties),
		Lead:            result.Lead,
	})
}

// History handles GET /api/v1/chat/:userId/:convId/history
func (h *Handler) History(c *gin.Context) {
	userID := c.Param("userId")
	convID := c.Param("convId")
	if userID == "" || convID == "" {
		httpkit.Error(c, http.StatusBadRequest, msgInvalidRequest, nil)
		return
	}

	key := domain.ConversationKeyFor(userID, convID)
	msgs, err := h.history.FetchAll(c.Request.Context(), key)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, transport.HistoryResponse{
		ConversationKey: key,
		Messages:        transport.NewMessageResponses(msgs),
	})
}

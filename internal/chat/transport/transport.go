package transport

import (
	"time"

	"inmochat_backend/internal/chat/domain"
)

// ChatRequest is the request body for processing one conversation turn.
type ChatRequest struct {
	UserID   string `json:"user_id" validate:"required,min=1,max=100"`
	ConvID   string `json:"conv_id" validate:"required,min=1,max=100"`
	Message  string `json:"message" validate:"required,min=1,max=2000"`
	UserName string `json:"user_name,omitempty" validate:"max=100"`
}

// PropertyResponse is one recommended listing in a chat response.
type PropertyResponse struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// ChatResponse is the assistant's reply for one turn.
type ChatResponse struct {
	ConversationKey string             `json:"conversation_key"`
	Stage           string             `json:"stage"`
	Response        string             `json:"response"`
	Properties      []PropertyResponse `json:"properties,omitempty"`
	Lead            domain.Lead        `json:"lead"`
}

// MessageResponse is one transcript entry in a history response.
type MessageResponse struct {
	Role        string             `json:"role"`
	ContentType string             `json:"content_type"`
	Text        string             `json:"text,omitempty"`
	Properties  []PropertyResponse `json:"properties,omitempty"`
	Stage       string             `json:"stage"`
	CreatedAt   time.Time          `json:"created_at"`
}

// HistoryResponse is the full transcript of a conversation, oldest first.
type HistoryResponse struct {
	ConversationKey string            `json:"conversation_key"`
	Messages        []MessageResponse `json:"messages"`
}

// NewPropertyResponses maps domain properties to their transport shape.
func NewPropertyResponses(props []domain.Property) []PropertyResponse {
	if len(props) == 0 {
		return nil
	}
	out := make([]PropertyResponse, 0, len(props))
	for _, p := range props {
		out = append(out, PropertyResponse{ID: p.ID, Text: p.Text, Score: p.Score})
	}
	return out
}

// NewMessageResponses maps stored messages to their transport shape.
func NewMessageResponses(msgs []domain.Message) []MessageResponse {
	out := make([]MessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, MessageResponse{
			Role:        string(m.Role),
			ContentType: string(m.ContentType),
			Text:        m.Content.Text,
			Properties:  NewPropertyResponses(m.Content.Properties),
			Stage:       string(m.Metadata.Stage),
			CreatedAt:   m.CreatedAt,
		})
	}
	return out
}

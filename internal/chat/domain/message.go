package domain

import (
	"fmt"
	"time"
)

// Role identifies who produced a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ContentType tags the shape of a message's content payload.
type ContentType string

const (
	ContentText         ContentType = "text"
	ContentPropertyList ContentType = "property_list"
)

// Property is one candidate listing returned by the search collaborator.
type Property struct {
	ID    string  `json:"id"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// Content is the payload of a message; exactly one field is meaningful,
// selected by the message's ContentType.
type Content struct {
	Text       string     `json:"text,omitempty"`
	Properties []Property `json:"properties,omitempty"`
}

// Metadata is the state snapshot attached to every persisted message.
// The snapshot on the most recently appended message is the sole
// authoritative representation of conversation state.
type Metadata struct {
	Stage                Stage          `json:"stage"`
	AwaitingConfirmation bool           `json:"awaiting_confirmation,omitempty"`
	Lead                 Lead           `json:"lead"`
	LastRecommendations  []Property     `json:"last_recommendations,omitempty"`
	ConversationLength   int            `json:"conversation_length"`
	UserName             string         `json:"user_name,omitempty"`
	RejectionReason      string         `json:"rejection_reason,omitempty"`
	RefineTarget         string         `json:"refine_target,omitempty"`
	Extra                map[string]any `json:"extra,omitempty"`
}

// Message is one entry of a conversation's append-only log. Messages
// are immutable once appended; corrections happen only by appending new
// messages.
type Message struct {
	ID          string      `json:"id"`
	SortKey     string      `json:"sort_key"`
	Role        Role        `json:"role"`
	ContentType ContentType `json:"content_type"`
	Content     Content     `json:"content"`
	Metadata    Metadata    `json:"metadata"`
	CreatedAt   time.Time   `json:"created_at"`
}

// TranscriptText flattens a message into the plain text used when
// rebuilding the model transcript. Property lists are summarized with a
// fixed placeholder rather than expanded.
func (m Message) TranscriptText() string {
	switch m.ContentType {
	case ContentText:
		return m.Content.Text
	case ContentPropertyList:
		return "**Te recomendamos las siguientes propiedades** : (Lista de propiedades)"
	default:
		return ""
	}
}

// ConversationKeyFor derives the log partition key for a user's
// conversation. The key is the only handle; no separate session record
// exists.
func ConversationKeyFor(userID, convID string) string {
	return fmt.Sprintf("USER#%s#CONV#%s", userID, convID)
}

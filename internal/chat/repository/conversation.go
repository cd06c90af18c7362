// Package repository persists conversation transcripts in Redis as
// append-only lists keyed by conversation.
package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"inmochat_backend/internal/chat/domain"
	"inmochat_backend/platform/logger"
)

// ConversationStore reads and appends messages for a conversation key.
// Lists carry a sliding TTL so abandoned conversations expire on their
// own.
type ConversationStore struct {
	rdb *redis.Client
	ttl time.Duration
	log *logger.Logger
}

// NewConversationStore creates a ConversationStore. A zero ttl disables
// expiry.
func NewConversationStore(rdb *redis.Client, ttl time.Duration, log *logger.Logger) *ConversationStore {
	return &ConversationStore{rdb: rdb, ttl: ttl, log: log}
}

func messagesKey(conversationKey string) string {
	return "chat:{" + conversationKey + "}:messages"
}

func turnKey(conversationKey string) string {
	return "chat:{" + conversationKey + "}:turn"
}

// Append pushes messages onto the end of the conversation list in the
// order given and refreshes the TTL. Messages are never updated or
// removed once written.
func (s *ConversationStore) Append(ctx context.Context, conversationKey string, msgs ...domain.Message) error {
	if len(msgs) == 0 {
		return nil
	}

	key := messagesKey(conversationKey)
	rows := make([]interface{}, 0, len(msgs))
	for _, m := range msgs {
		b, err := json.Marshal(m)
		if err != nil {
			return fmt.Errorf("marshal message %s: %w", m.ID, err)
		}
		rows = append(rows, b)
	}

	if err := s.rdb.RPush(ctx, key, rows...).Err(); err != nil {
		return fmt.Errorf("append to conversation %s: %w", conversationKey, err)
	}

	if s.ttl > 0 {
		if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil && s.log != nil {
			s.log.PersistenceError(conversationKey, fmt.Errorf("refresh ttl: %w", err))
		}
	}
	return nil
}

// FetchLast returns up to n most recent messages, oldest first. A
// missing conversation yields an empty slice.
func (s *ConversationStore) FetchLast(ctx context.Context, conversationKey string, n int) ([]domain.Message, error) {
	if n <= 0 {
		return nil, nil
	}

	rows, err := s.rdb.LRange(ctx, messagesKey(conversationKey), int64(-n), -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch conversation %s: %w", conversationKey, err)
	}
	return decodeMessages(conversationKey, rows)
}

// FetchAll returns the full transcript, oldest first.
func (s *ConversationStore) FetchAll(ctx context.Context, conversationKey string) ([]domain.Message, error) {
	rows, err := s.rdb.LRange(ctx, messagesKey(conversationKey), 0, -1).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("fetch conversation %s: %w", conversationKey, err)
	}
	return decodeMessages(conversationKey, rows)
}

func decodeMessages(conversationKey string, rows []string) ([]domain.Message, error) {
	msgs := make([]domain.Message, 0, len(rows))
	for _, row := range rows {
		var m domain.Message
		if err := json.Unmarshal([]byte(row), &m); err != nil {
			return nil, fmt.Errorf("decode message in %s: %w", conversationKey, err)
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

// BeginTurn increments the write-ahead turn marker before any turn work
// starts. Comparing the marker against the stored conversation length
// exposes turns that were accepted but never fully persisted.
func (s *ConversationStore) BeginTurn(ctx context.Context, conversationKey string) (int64, error) {
	key := turnKey(conversationKey)
	turn, err := s.rdb.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("begin turn for %s: %w", conversationKey, err)
	}
	if s.ttl > 0 {
		if err := s.rdb.Expire(ctx, key, s.ttl).Err(); err != nil && s.log != nil {
			s.log.PersistenceError(conversationKey, fmt.Errorf("refresh turn ttl: %w", err))
		}
	}
	return turn, nil
}

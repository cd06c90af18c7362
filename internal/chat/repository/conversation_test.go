package repository

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"inmochat_backend/internal/chat/domain"
)

func newTestStore(t *testing.T) (*ConversationStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	return NewConversationStore(rdb, time.Hour, nil), mr
}

func textMessage(id string, role domain.Role, text string, length int) domain.Message {
	return domain.Message{
		ID:          id,
		Role:        role,
		ContentType: domain.ContentText,
		Content:     domain.Content{Text: text},
		Metadata: domain.Metadata{
			Stage:              domain.StageExtract,
			ConversationLength: length,
		},
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestAppendAndFetchLast(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	key := domain.ConversationKeyFor("u1", "c1")

	for i, text := range []string{"hola", "bienvenido", "busco depa", "claro"} {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		if err := store.Append(ctx, key, textMessage(text, role, text, i+1)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	got, err := store.FetchLast(ctx, key, 2)
	if err != nil {
		t.Fatalf("FetchLast: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("FetchLast returned %d messages, want 2", len(got))
	}
	if got[0].Content.Text != "busco depa" || got[1].Content.Text != "claro" {
		t.Errorf("FetchLast order wrong: %q then %q", got[0].Content.Text, got[1].Content.Text)
	}

	all, err := store.FetchAll(ctx, key)
	if err != nil {
		t.Fatalf("FetchAll: %v", err)
	}
	if len(all) != 4 {
		t.Errorf("FetchAll returned %d messages, want 4", len(all))
	}
	if all[0].Content.Text != "hola" {
		t.Errorf("FetchAll first message = %q, want %q", all[0].Content.Text, "hola")
	}
}

func TestFetchMissingConversation(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	got, err := store.FetchLast(ctx, domain.ConversationKeyFor("u1", "nope"), 10)
	if err != nil {
		t.Fatalf("FetchLast: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("missing conversation returned %d messages", len(got))
	}
}

func TestPropertyListRoundTrip(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	key := domain.ConversationKeyFor("u1", "c1")

	budget := 1500
	msg := domain.Message{
		ID:          "m1",
		Role:        domain.RoleAssistant,
		ContentType: domain.ContentPropertyList,
		Content: domain.Content{
			Properties: []domain.Property{
				{ID: "p1", Text: "Departamento en Los Olivos, 2 dorm", Score: 0.91},
				{ID: "p2", Text: "Departamento en Comas, 3 dorm", Score: 0.84},
			},
		},
		Metadata: domain.Metadata{
			Stage: domain.StageRecommend,
			Lead: domain.Lead{
				Location:      "Lima, Los Olivos",
				PropertyTypes: []string{"departamento"},
				Transaction:   domain.TransactionRent,
				Budget:        &budget,
			},
			LastRecommendations: []domain.Property{{ID: "p1", Text: "Departamento en Los Olivos, 2 dorm", Score: 0.91}},
			ConversationLength:  4,
		},
	}

	if err := store.Append(ctx, key, msg); err != nil {
		t.Fatalf("Append: %v", err)
	}
	got, err := store.FetchLast(ctx, key, 1)
	if err != nil {
		t.Fatalf("FetchLast: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("FetchLast returned %d messages, want 1", len(got))
	}

	reloaded := got[0]
	if reloaded.ContentType != domain.ContentPropertyList {
		t.Errorf("content type = %q, want %q", reloaded.ContentType, domain.ContentPropertyList)
	}
	if len(reloaded.Content.Properties) != 2 {
		t.Fatalf("properties lost in round trip: %d, want 2", len(reloaded.Content.Properties))
	}
	if reloaded.Content.Properties[0].ID != "p1" || reloaded.Content.Properties[0].Score != 0.91 {
		t.Errorf("property payload changed: %+v", reloaded.Content.Properties[0])
	}
	if reloaded.Metadata.Lead.Location != "Lima, Los Olivos" {
		t.Errorf("lead location = %q", reloaded.Metadata.Lead.Location)
	}
	if reloaded.Metadata.Lead.Budget == nil || *reloaded.Metadata.Lead.Budget != 1500 {
		t.Errorf("lead budget lost in round trip")
	}
	if len(reloaded.Metadata.LastRecommendations) != 1 {
		t.Errorf("last recommendations lost in round trip")
	}
}

func TestAppendRefreshesTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()
	key := domain.ConversationKeyFor("u1", "c1")

	if err := store.Append(ctx, key, textMessage("m1", domain.RoleUser, "hola", 1)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ttl := mr.TTL(messagesKey(key)); ttl != time.Hour {
		t.Errorf("ttl after append = %v, want %v", ttl, time.Hour)
	}

	mr.FastForward(30 * time.Minute)
	if err := store.Append(ctx, key, textMessage("m2", domain.RoleAssistant, "buenas", 2)); err != nil {
		t.Fatalf("Append: %v", err)
	}
	if ttl := mr.TTL(messagesKey(key)); ttl != time.Hour {
		t.Errorf("ttl not refreshed: %v, want %v", ttl, time.Hour)
	}
}

func TestBeginTurn(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()
	key := domain.ConversationKeyFor("u1", "c1")

	first, err := store.BeginTurn(ctx, key)
	if err != nil {
		t.Fatalf("BeginTurn: %v", err)
	}
	second, err := store.BeginTurn(ctx, key)
	if err != nil {
		t.Fatalf("BeginTurn: %v", err)
	}
	if first != 1 || second != 2 {
		t.Errorf("turn markers = %d, %d, want 1, 2", first, second)
	}
}

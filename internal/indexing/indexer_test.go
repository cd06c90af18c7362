package indexing

import (
	"context"
	"errors"
	"sync"
	"testing"

	"inmochat_backend/internal/properties/repository"
	"inmochat_backend/platform/logger"
	"inmochat_backend/platform/qdrant"

	"github.com/google/uuid"
)

type stubCatalog struct {
	listings map[uuid.UUID]repository.Listing
	listErr  error
}

func (s *stubCatalog) GetByID(_ context.Context, id uuid.UUID) (repository.Listing, error) {
	l, ok := s.listings[id]
	if !ok {
		return repository.Listing{}, repository.ErrNotFound
	}
	return l, nil
}

func (s *stubCatalog) ListIDs(_ context.Context) ([]uuid.UUID, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	ids := make([]uuid.UUID, 0, len(s.listings))
	for id := range s.listings {
		ids = append(ids, id)
	}
	return ids, nil
}

type stubEmbedder struct {
	err   error
	calls int
	mu    sync.Mutex
}

func (s *stubEmbedder) Embed(_ context.Context, _ string) ([]float32, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type stubStore struct {
	mu     sync.Mutex
	points []qdrant.Point
	err    error
}

func (s *stubStore) Upsert(_ context.Context, points []qdrant.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.points = append(s.points, points...)
	return nil
}

func testListing(id uuid.UUID) repository.Listing {
	return repository.Listing{
		ID:            id,
		Title:         "Departamento moderno en Los Olivos",
		City:          "Lima",
		District:      "Los Olivos",
		PropertyType:  "departamento",
		OperationType: "alquiler",
		Price:         1500,
		Bedrooms:      2,
		Bathrooms:     1,
		AreaM2:        75,
	}
}

func TestIndexListingUpserts(t *testing.T) {
	id := uuid.New()
	catalog := &stubCatalog{listings: map[uuid.UUID]repository.Listing{id: testListing(id)}}
	store := &stubStore{}
	ix := NewIndexer(catalog, &stubEmbedder{}, store, logger.New("test"))

	if err := ix.IndexListing(context.Background(), id); err != nil {
		t.Fatalf("IndexListing: %v", err)
	}

	if len(store.points) != 1 {
		t.Fatalf("expected 1 point, got %d", len(store.points))
	}
	p := store.points[0]
	if p.ID != id.String() {
		t.Errorf("point ID = %v, want %s", p.ID, id)
	}
	if p.Payload["listing_id"] != id.String() {
		t.Errorf("payload listing_id = %v", p.Payload["listing_id"])
	}
	if p.Payload["property_type"] != "departamento" {
		t.Errorf("payload property_type = %v", p.Payload["property_type"])
	}
	if p.Payload["operation_type"] != "alquiler" {
		t.Errorf("payload operation_type = %v", p.Payload["operation_type"])
	}
	if p.Payload["search_text"] == "" {
		t.Error("payload search_text is empty")
	}
	if len(p.Vector) != 3 {
		t.Errorf("vector length = %d, want 3", len(p.Vector))
	}
}

func TestIndexListingMissingIsNotError(t *testing.T) {
	catalog := &stubCatalog{listings: map[uuid.UUID]repository.Listing{}}
	store := &stubStore{}
	ix := NewIndexer(catalog, &stubEmbedder{}, store, logger.New("test"))

	if err := ix.IndexListing(context.Background(), uuid.New()); err != nil {
		t.Fatalf("missing listing should be skipped, got %v", err)
	}
	if len(store.points) != 0 {
		t.Errorf("expected no points, got %d", len(store.points))
	}
}

func TestIndexListingEmbedFailure(t *testing.T) {
	id := uuid.New()
	catalog := &stubCatalog{listings: map[uuid.UUID]repository.Listing{id: testListing(id)}}
	ix := NewIndexer(catalog, &stubEmbedder{err: errors.New("api down")}, &stubStore{}, logger.New("test"))

	if err := ix.IndexListing(context.Background(), id); err == nil {
		t.Fatal("expected error when embedding fails")
	}
}

func TestBackfillSkipsFailures(t *testing.T) {
	listings := make(map[uuid.UUID]repository.Listing)
	for i := 0; i < 4; i++ {
		id := uuid.New()
		listings[id] = testListing(id)
	}
	catalog := &stubCatalog{listings: listings}
	store := &stubStore{}
	ix := NewIndexer(catalog, &stubEmbedder{}, store, logger.New("test"))

	count, err := ix.Backfill(context.Background())
	if err != nil {
		t.Fatalf("Backfill: %v", err)
	}
	if count != 4 {
		t.Errorf("indexed = %d, want 4", count)
	}
	if len(store.points) != 4 {
		t.Errorf("stored points = %d, want 4", len(store.points))
	}

	// Store failures must not abort the run.
	store2 := &stubStore{err: errors.New("qdrant down")}
	ix2 := NewIndexer(catalog, &stubEmbedder{}, store2, logger.New("test"))
	count2, err := ix2.Backfill(context.Background())
	if err != nil {
		t.Fatalf("Backfill with failing store: %v", err)
	}
	if count2 != 0 {
		t.Errorf("indexed = %d, want 0", count2)
	}
}

func TestIndexListingTaskRoundTrip(t *testing.T) {
	id := uuid.NewString()
	task, err := NewIndexListingTask(IndexListingPayload{ListingID: id})
	if err != nil {
		t.Fatalf("NewIndexListingTask: %v", err)
	}
	if task.Type() != TaskIndexListing {
		t.Errorf("task type = %s, want %s", task.Type(), TaskIndexListing)
	}
	payload, err := ParseIndexListingPayload(task)
	if err != nil {
		t.Fatalf("ParseIndexListingPayload: %v", err)
	}
	if payload.ListingID != id {
		t.Errorf("ListingID = %s, want %s", payload.ListingID, id)
	}
}

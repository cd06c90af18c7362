package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"inmochat_backend/internal/chat/domain"
	"inmochat_backend/internal/properties/repository"
	"inmochat_backend/platform/qdrant"
)

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s stubEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return s.vector, s.err
}

type stubIndex struct {
	results    []qdrant.SearchResult
	err        error
	lastFilter *qdrant.Filter
}

func (s *stubIndex) Search(ctx context.Context, vector []float32, limit int, filter *qdrant.Filter) ([]qdrant.SearchResult, error) {
	s.lastFilter = filter
	return s.results, s.err
}

type stubCatalog struct {
	listings []repository.Listing
	err      error
	called   int
}

func (s *stubCatalog) SearchByCriteria(ctx context.Context, lead domain.Lead, limit int) ([]repository.Listing, error) {
	s.called++
	return s.listings, s.err
}

func rentLead() domain.Lead {
	return domain.Lead{
		Location:      "Lima, Los Olivos",
		PropertyTypes: []string{"departamento"},
		Transaction:   domain.TransactionRent,
	}
}

func TestSearchVectorPath(t *testing.T) {
	index := &stubIndex{results: []qdrant.SearchResult{
		{ID: 7, Score: 0.93, Payload: map[string]interface{}{
			"listing_id":  "l1",
			"search_text": "Departamento 2 dorm en Los Olivos",
		}},
	}}
	catalog := &stubCatalog{}
	svc := New(catalog, stubEmbedder{vector: []float32{0.1, 0.2}}, index, nil)

	props, err := svc.Search(context.Background(), rentLead(), 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(props) != 1 {
		t.Fatalf("got %d properties, want 1", len(props))
	}
	if props[0].ID != "l1" || props[0].Score != 0.93 {
		t.Errorf("property = %+v", props[0])
	}
	if catalog.called != 0 {
		t.Error("fallback should not run when the vector path succeeds")
	}

	if index.lastFilter == nil || len(index.lastFilter.Must) != 2 {
		t.Fatalf("filter = %+v", index.lastFilter)
	}
	got := map[string]string{}
	for _, m := range index.lastFilter.Must {
		got[m.Key] = m.Value
	}
	if got["property_type"] != "departamento" || got["operation_type"] != domain.TransactionRent {
		t.Errorf("filter conditions = %v", got)
	}
}

func TestSearchFallsBackOnEmbedderError(t *testing.T) {
	catalog := &stubCatalog{listings: []repository.Listing{
		{ID: uuid.New(), Title: "Departamento Comas", City: "Lima", PropertyType: "departamento", OperationType: "alquiler", Price: 1200},
	}}
	svc := New(catalog, stubEmbedder{err: errors.New("embedding api down")}, &stubIndex{}, nil)

	props, err := svc.Search(context.Background(), rentLead(), 5)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(props) != 1 {
		t.Fatalf("got %d properties, want 1 from fallback", len(props))
	}
	if catalog.called != 1 {
		t.Errorf("fallback called %d times, want 1", catalog.called)
	}
	if props[0].Score != 0.5 {
		t.Errorf("fallback score = %v", props[0].Score)
	}
}

func TestSearchNeverErrors(t *testing.T) {
	catalog := &stubCatalog{err: errors.New("db down")}
	svc := New(catalog, stubEmbedder{err: errors.New("down")}, &stubIndex{err: errors.New("down")}, nil)

	props, err := svc.Search(context.Background(), rentLead(), 5)
	if err != nil {
		t.Fatalf("search must absorb backend failures, got %v", err)
	}
	if len(props) != 0 {
		t.Errorf("got %d properties, want none", len(props))
	}
}

func TestSearchTextRendering(t *testing.T) {
	l := repository.Listing{
		Title:         "Departamento moderno",
		City:          "Lima",
		District:      "Los Olivos",
		PropertyType:  "departamento",
		OperationType: "alquiler",
		Price:         1500,
		Bedrooms:      2,
		Bathrooms:     1,
		AreaM2:        60,
		Amenities:     []string{"piscina"},
		Description:   "Cerca al parque zonal.",
	}

	got := l.SearchText()
	want := "Departamento moderno en Lima, Los Olivos. departamento alquiler, 1500 soles, 2 dormitorios, 1 baños, 60m2. Amenidades: piscina. Cerca al parque zonal."
	if got != want {
		t.Errorf("SearchText =\n%q\nwant\n%q", got, want)
	}
}

// Package service implements the property search collaborator: vector
// search over Qdrant with a relational fallback.
package service

import (
	"context"
	"fmt"

	"inmochat_backend/internal/chat/domain"
	"inmochat_backend/internal/properties/repository"
	"inmochat_backend/platform/logger"
	"inmochat_backend/platform/qdrant"
)

// Catalog is the relational listings store.
type Catalog interface {
	SearchByCriteria(ctx context.Context, lead domain.Lead, limit int) ([]repository.Listing, error)
}

// Embedder turns search text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorIndex searches the listing embeddings.
type VectorIndex interface {
	Search(ctx context.Context, vector []float32, limit int, filter *qdrant.Filter) ([]qdrant.SearchResult, error)
}

// Service answers lead searches. It degrades in order: vector search,
// relational filter search, empty result. It never returns an error to
// the conversation flow; search trouble is the engine's problem to log,
// not the user's.
type Service struct {
	repo     Catalog
	embedder Embedder
	index    VectorIndex
	log      *logger.Logger
}

// New creates a Service. embedder and index may be nil, which disables
// the vector path.
func New(repo Catalog, embedder Embedder, index VectorIndex, log *logger.Logger) *Service {
	return &Service{repo: repo, embedder: embedder, index: index, log: log}
}

// Search finds up to limit listings matching the lead.
func (s *Service) Search(ctx context.Context, lead domain.Lead, limit int) ([]domain.Property, error) {
	if props := s.vectorSearch(ctx, lead, limit); len(props) > 0 {
		return props, nil
	}
	return s.fallbackSearch(ctx, lead, limit)
}

func (s *Service) vectorSearch(ctx context.Context, lead domain.Lead, limit int) []domain.Property {
	if s.embedder == nil || s.index == nil {
		return nil
	}

	vector, err := s.embedder.Embed(ctx, lead.Description())
	if err != nil {
		if s.log != nil {
			s.log.CollaboratorError("embeddings", err)
		}
		return nil
	}

	results, err := s.index.Search(ctx, vector, limit, leadFilter(lead))
	if err != nil {
		if s.log != nil {
			s.log.CollaboratorError("qdrant", err)
		}
		return nil
	}

	props := make([]domain.Property, 0, len(results))
	for _, r := range results {
		props = append(props, domain.Property{
			ID:    pointID(r),
			Text:  payloadText(r.Payload),
			Score: r.Score,
		})
	}
	return props
}

// leadFilter builds the hard payload filter. Only exact-match criteria
// go here; location and the soft preferences stay in the query vector.
func leadFilter(lead domain.Lead) *qdrant.Filter {
	var must []qdrant.FieldMatch
	if len(lead.PropertyTypes) == 1 {
		must = append(must, qdrant.FieldMatch{Key: "property_type", Value: lead.PropertyTypes[0]})
	}
	if lead.Transaction != "" {
		must = append(must, qdrant.FieldMatch{Key: "operation_type", Value: lead.Transaction})
	}
	if len(must) == 0 {
		return nil
	}
	return &qdrant.Filter{Must: must}
}

func pointID(r qdrant.SearchResult) string {
	if id, ok := r.Payload["listing_id"].(string); ok && id != "" {
		return id
	}
	return fmt.Sprintf("%v", r.ID)
}

func payloadText(payload map[string]interface{}) string {
	if text, ok := payload["search_text"].(string); ok && text != "" {
		return text
	}
	if title, ok := payload["title"].(string); ok {
		return title
	}
	return "Información no disponible"
}

func (s *Service) fallbackSearch(ctx context.Context, lead domain.Lead, limit int) ([]domain.Property, error) {
	listings, err := s.repo.SearchByCriteria(ctx, lead, limit)
	if err != nil {
		if s.log != nil {
			s.log.DatabaseError("properties.search", err)
		}
		return nil, nil
	}

	props := make([]domain.Property, 0, len(listings))
	for _, l := range listings {
		props = append(props, domain.Property{
			ID:   l.ID.String(),
			Text: l.SearchText(),
			// Relational matches satisfy every hard criterion; report
			// them with a flat confidence below any vector hit.
			Score: 0.5,
		})
	}
	return props, nil
}

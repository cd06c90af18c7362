package indexing

import (
	"context"
	"errors"
	"fmt"

	"inmochat_backend/internal/properties/repository"
	"inmochat_backend/platform/logger"
	"inmochat_backend/platform/qdrant"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

const backfillConcurrency = 5

// Catalog is the subset of the listings repository the indexer needs.
type Catalog interface {
	GetByID(ctx context.Context, id uuid.UUID) (repository.Listing, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
}

// Embedder turns listing text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// VectorStore writes points into the vector collection.
type VectorStore interface {
	Upsert(ctx context.Context, points []qdrant.Point) error
}

// Indexer embeds listings and writes them to the vector store so the
// recommendation search can find them by semantic similarity.
type Indexer struct {
	catalog  Catalog
	embedder Embedder
	store    VectorStore
	log      *logger.Logger
}

func NewIndexer(catalog Catalog, embedder Embedder, store VectorStore, log *logger.Logger) *Indexer {
	return &Indexer{
		catalog:  catalog,
		embedder: embedder,
		store:    store,
		log:      log,
	}
}

// IndexListing fetches a listing, embeds its search text and upserts the
// point. A listing deleted between enqueue and processing is not an error.
func (ix *Indexer) IndexListing(ctx context.Context, id uuid.UUID) error {
	listing, err := ix.catalog.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			ix.log.Info("listing gone before indexing", "listing_id", id.String())
			return nil
		}
		return fmt.Errorf("fetch listing %s: %w", id, err)
	}

	searchText := listing.SearchText()
	vector, err := ix.embedder.Embed(ctx, searchText)
	if err != nil {
		return fmt.Errorf("embed listing %s: %w", id, err)
	}

	point := qdrant.Point{
		ID:     listing.ID.String(),
		Vector: vector,
		Payload: map[string]interface{}{
			"listing_id":     listing.ID.String(),
			"search_text":    searchText,
			"title":          listing.Title,
			"city":           listing.City,
			"district":       listing.District,
			"property_type":  listing.PropertyType,
			"operation_type": listing.OperationType,
			"price":          listing.Price,
			"bedrooms":       listing.Bedrooms,
		},
	}

	if err := ix.store.Upsert(ctx, []qdrant.Point{point}); err != nil {
		return fmt.Errorf("upsert listing %s: %w", id, err)
	}

	ix.log.Info("listing indexed", "listing_id", listing.ID.String())
	return nil
}

// Backfill reindexes every listing in the catalog. Individual failures are
// logged and skipped so one bad listing does not abort the run.
func (ix *Indexer) Backfill(ctx context.Context) (int, error) {
	ids, err := ix.catalog.ListIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("list listings: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(backfillConcurrency)

	indexed := make(chan uuid.UUID, len(ids))
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if err := ix.IndexListing(gctx, id); err != nil {
				ix.log.Error("backfill: indexing failed", "listing_id", id.String(), "error", err)
				return nil
			}
			indexed <- id
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, err
	}
	close(indexed)

	count := len(indexed)
	ix.log.Info("backfill finished", "total", len(ids), "indexed", count)
	return count, nil
}

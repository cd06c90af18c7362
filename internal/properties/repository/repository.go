// Package repository provides Postgres access to the listings catalog.
package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"inmochat_backend/internal/chat/domain"
)

// ErrNotFound is returned when a listing does not exist.
var ErrNotFound = errors.New("listing not found")

// Listing is one catalog row.
type Listing struct {
	ID            uuid.UUID
	Title         string
	Description   string
	City          string
	District      string
	PropertyType  string
	OperationType string
	Price         int
	Bedrooms      int
	Bathrooms     int
	AreaM2        int
	Amenities     []string
	CreatedAt     time.Time
}

// SearchText renders the listing as the text that gets embedded and
// shown to users.
func (l Listing) SearchText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s en %s", l.Title, l.City)
	if l.District != "" {
		fmt.Fprintf(&b, ", %s", l.District)
	}
	fmt.Fprintf(&b, ". %s %s, %d soles", l.PropertyType, l.OperationType, l.Price)
	if l.Bedrooms > 0 {
		fmt.Fprintf(&b, ", %d dormitorios", l.Bedrooms)
	}
	if l.Bathrooms > 0 {
		fmt.Fprintf(&b, ", %d baños", l.Bathrooms)
	}
	if l.AreaM2 > 0 {
		fmt.Fprintf(&b, ", %dm2", l.AreaM2)
	}
	if len(l.Amenities) > 0 {
		fmt.Fprintf(&b, ". Amenidades: %s", strings.Join(l.Amenities, ", "))
	}
	if l.Description != "" {
		fmt.Fprintf(&b, ". %s", l.Description)
	}
	return b.String()
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const listingColumns = `id, title, description, city, district, property_type, operation_type,
	price, bedrooms, bathrooms, area_m2, amenities, created_at`

func scanListing(row pgx.Row) (Listing, error) {
	var l Listing
	err := row.Scan(&l.ID, &l.Title, &l.Description, &l.City, &l.District, &l.PropertyType,
		&l.OperationType, &l.Price, &l.Bedrooms, &l.Bathrooms, &l.AreaM2, &l.Amenities, &l.CreatedAt)
	return l, err
}

// Create inserts a new listing and returns it with generated fields set.
func (r *Repository) Create(ctx context.Context, l Listing) (Listing, error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	query := fmt.Sprintf(`INSERT INTO properties (id, title, description, city, district,
		property_type, operation_type, price, bedrooms, bathrooms, area_m2, amenities)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING %s`, listingColumns)
	created, err := scanListing(r.pool.QueryRow(ctx, query,
		l.ID, l.Title, l.Description, l.City, l.District, l.PropertyType,
		l.OperationType, l.Price, l.Bedrooms, l.Bathrooms, l.AreaM2, l.Amenities))
	if err != nil {
		return Listing{}, fmt.Errorf("create listing: %w", err)
	}
	return created, nil
}

// GetByID fetches one listing.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Listing, error) {
	query := fmt.Sprintf(`SELECT %s FROM properties WHERE id = $1`, listingColumns)
	l, err := scanListing(r.pool.QueryRow(ctx, query, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Listing{}, ErrNotFound
	}
	if err != nil {
		return Listing{}, fmt.Errorf("get listing %s: %w", id, err)
	}
	return l, nil
}

// SearchByCriteria runs the relational fallback search: hard filters on
// the lead's criteria ordered by recency. Used when the vector search
// path is unavailable.
func (r *Repository) SearchByCriteria(ctx context.Context, lead domain.Lead, limit int) ([]Listing, error) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if lead.Location != "" {
		p := arg("%" + lead.Location + "%")
		conds = append(conds, fmt.Sprintf("(city ILIKE %s OR district ILIKE %s)", p, p))
	}
	if len(lead.PropertyTypes) > 0 {
		conds = append(conds, fmt.Sprintf("property_type = ANY(%s)", arg(lead.PropertyTypes)))
	}
	if lead.Transaction != "" {
		conds = append(conds, fmt.Sprintf("operation_type = %s", arg(lead.Transaction)))
	}
	if lead.Budget != nil {
		conds = append(conds, fmt.Sprintf("price <= %s", arg(*lead.Budget)))
	}
	if lead.Bedrooms != nil {
		conds = append(conds, fmt.Sprintf("bedrooms >= %s", arg(*lead.Bedrooms)))
	}
	if lead.Bathrooms != nil {
		conds = append(conds, fmt.Sprintf("bathrooms >= %s", arg(*lead.Bathrooms)))
	}
	if lead.MinArea != nil {
		conds = append(conds, fmt.Sprintf("area_m2 >= %s", arg(*lead.MinArea)))
	}

	query := fmt.Sprintf(`SELECT %s FROM properties`, listingColumns)
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT %s", arg(limit))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	defer rows.Close()

	var listings []Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	return listings, rows.Err()
}

// ListIDs returns all listing IDs, for the index backfill.
func (r *Repository) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT id FROM properties ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list listing ids: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan listing id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

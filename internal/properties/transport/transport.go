package transport

import (
	"time"

	"inmochat_backend/internal/properties/repository"
)

// CreateListingRequest is the request body for creating a catalog listing.
type CreateListingRequest struct {
	Title         string   `json:"title" validate:"required,min=1,max=200"`
	Description   string   `json:"description,omitempty" validate:"max=2000"`
	City          string   `json:"city" validate:"required,min=1,max=100"`
	District      string   `json:"district,omitempty" validate:"max=100"`
	PropertyType  string   `json:"property_type" validate:"required,oneof=departamento casa oficina terreno local"`
	OperationType string   `json:"operation_type" validate:"required,oneof=alquiler compra"`
	Price         int      `json:"price" validate:"required,gt=0"`
	Bedrooms      int      `json:"bedrooms" validate:"gte=0"`
	Bathrooms     int      `json:"bathrooms" validate:"gte=0"`
	AreaM2        int      `json:"area_m2" validate:"gte=0"`
	Amenities     []string `json:"amenities,omitempty" validate:"max=20,dive,max=50"`
}

// ListingResponse is one catalog listing.
type ListingResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description,omitempty"`
	City          string    `json:"city"`
	District      string    `json:"district,omitempty"`
	PropertyType  string    `json:"property_type"`
	OperationType string    `json:"operation_type"`
	Price         int       `json:"price"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	AreaM2        int       `json:"area_m2"`
	Amenities     []string  `json:"amenities,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewListingResponse maps a repository listing to its transport shape.
func NewListingResponse(l repository.Listing) ListingResponse {
	return ListingResponse{
		ID:            l.ID.String(),
		Title:         l.Title,
		Description:   l.Description,
		City:          l.City,
		District:      l.District,
		PropertyType:  l.PropertyType,
		OperationType: l.OperationType,
		Price:         l.Price,
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		AreaM2:        l.AreaM2,
		Amenities:     l.Amenities,
		CreatedAt:     l.CreatedAt,
	}
}

// ToListing maps a create request to a repository listing.
func (r CreateListingRequest) ToListing() repository.Listing {
	return repository.Listing{
		Title:         r.Title,
		Description:   r.Description,
		City:          r.City,
		District:      r.District,
		PropertyType:  r.PropertyType,
		OperationType: r.OperationType,
		Price:         r.Price,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     r.Bathrooms,
		AreaM2:        r.AreaM2,
		Amenities:     r.Amenities,
	}
}

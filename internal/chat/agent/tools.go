package agent

import (
	"context"

	"github.com/google/uuid"
	"google.golang.org/adk/tool"
	"google.golang.org/adk/tool/functiontool"

	"inmochat_backend/internal/properties/repository"
)

// FetchListingInput identifies the listing to fetch.
type FetchListingInput struct {
	ListingID string `json:"listing_id" jsonschema:"description=UUID of the listing to fetch"`
}

// FetchListingOutput is the full catalog record handed to the model.
type FetchListingOutput struct {
	Found         bool     `json:"found"`
	Title         string   `json:"title,omitempty"`
	Description   string   `json:"description,omitempty"`
	City          string   `json:"city,omitempty"`
	District      string   `json:"district,omitempty"`
	PropertyType  string   `json:"property_type,omitempty"`
	OperationType string   `json:"operation_type,omitempty"`
	Price         int      `json:"price,omitempty"`
	Bedrooms      int      `json:"bedrooms,omitempty"`
	Bathrooms     int      `json:"bathrooms,omitempty"`
	AreaM2        int      `json:"area_m2,omitempty"`
	Amenities     []string `json:"amenities,omitempty"`
}

func newFetchListingTool(repo *repository.Repository) (tool.Tool, error) {
	return functiontool.New(functiontool.Config{
		Name:        "FetchListing",
		Description: "Fetches the full catalog record for a listing by its reference UUID. Call this before describing a property so the details come from the catalog, not from memory.",
	}, func(ctx tool.Context, input FetchListingInput) (FetchListingOutput, error) {
		id, err := uuid.Parse(input.ListingID)
		if err != nil {
			return FetchListingOutput{Found: false}, nil
		}

		listing, err := repo.GetByID(context.Background(), id)
		if err != nil {
			return FetchListingOutput{Found: false}, nil
		}

		return FetchListingOutput{
			Found:         true,
			Title:         listing.Title,
			Description:   listing.Description,
			City:          listing.City,
			District:      listing.District,
			PropertyType:  listing.PropertyType,
			OperationType: listing.OperationType,
			Price:         listing.Price,
			Bedrooms:      listing.Bedrooms,
			Bathrooms:     listing.Bathrooms,
			AreaM2:        listing.AreaM2,
			Amenities:     listing.Amenities,
		}, nil
	})
}

package domain

import (
	"fmt"
	"strings"
)

// Lead is the partially or fully filled record of search criteria
// collected across turns. Location, PropertyTypes and Transaction are
// required before a search can run; everything else narrows it.
type Lead struct {
	Location      string   `json:"location,omitempty"`
	PropertyTypes []string `json:"property_types,omitempty"`
	Transaction   string   `json:"transaction,omitempty"`
	Budget        *int     `json:"budget,omitempty"`
	Bedrooms      *int     `json:"bedrooms,omitempty"`
	Bathrooms     *int     `json:"bathrooms,omitempty"`
	MinArea       *int     `json:"min_area,omitempty"`
	Amenities     []string `json:"amenities,omitempty"`
	Proximity     []string `json:"proximity,omitempty"`
	PetFriendly   *bool    `json:"pet_friendly,omitempty"`
}

// Transaction kinds.
const (
	TransactionRent = "alquiler"
	TransactionBuy  = "compra"
)

// Refinable criterion names, shared by the refine taxonomy, the narrow
// extraction prompt and the single-field merge.
const (
	FieldLocation     = "location"
	FieldPropertyType = "property_type"
	FieldTransaction  = "transaction"
	FieldBudget       = "budget"
	FieldBedrooms     = "bedrooms"
	FieldBathrooms    = "bathrooms"
	FieldMinArea      = "min_area"
	FieldAmenities    = "amenities"
)

// Merge overlays non-empty fields of incoming onto l and returns the
// result. Empty or nil incoming values never erase existing values, so
// a field set on an earlier turn survives every later turn unless the
// user explicitly re-states it.
func (l Lead) Merge(incoming Lead) Lead {
	out := l
	if incoming.Location != "" {
		out.Location = incoming.Location
	}
	if len(incoming.PropertyTypes) > 0 {
		out.PropertyTypes = incoming.PropertyTypes
	}
	if incoming.Transaction != "" {
		out.Transaction = incoming.Transaction
	}
	if incoming.Budget != nil {
		out.Budget = incoming.Budget
	}
	if incoming.Bedrooms != nil {
		out.Bedrooms = incoming.Bedrooms
	}
	if incoming.Bathrooms != nil {
		out.Bathrooms = incoming.Bathrooms
	}
	if incoming.MinArea != nil {
		out.MinArea = incoming.MinArea
	}
	if len(incoming.Amenities) > 0 {
		out.Amenities = incoming.Amenities
	}
	if len(incoming.Proximity) > 0 {
		out.Proximity = incoming.Proximity
	}
	if incoming.PetFriendly != nil {
		out.PetFriendly = incoming.PetFriendly
	}
	return out
}

// MergeField overlays only the named criterion from incoming onto l,
// preserving every other field. Used by the update-criteria flow, which
// must never disturb criteria the user did not ask to change.
func (l Lead) MergeField(field string, incoming Lead) Lead {
	out := l
	switch field {
	case FieldLocation:
		if incoming.Location != "" {
			out.Location = incoming.Location
		}
	case FieldPropertyType:
		if len(incoming.PropertyTypes) > 0 {
			out.PropertyTypes = incoming.PropertyTypes
		}
	case FieldTransaction:
		if incoming.Transaction != "" {
			out.Transaction = incoming.Transaction
		}
	case FieldBudget:
		if incoming.Budget != nil {
			out.Budget = incoming.Budget
		}
	case FieldBedrooms:
		if incoming.Bedrooms != nil {
			out.Bedrooms = incoming.Bedrooms
		}
	case FieldBathrooms:
		if incoming.Bathrooms != nil {
			out.Bathrooms = incoming.Bathrooms
		}
	case FieldMinArea:
		if incoming.MinArea != nil {
			out.MinArea = incoming.MinArea
		}
	case FieldAmenities:
		if len(incoming.Amenities) > 0 {
			out.Amenities = incoming.Amenities
		}
	}
	return out
}

// Complete reports whether the lead carries the minimum criteria needed
// to run a search: location, at least one property type, and the
// transaction kind.
func (l Lead) Complete() bool {
	return l.Location != "" && len(l.PropertyTypes) > 0 && l.Transaction != ""
}

// MissingFields lists the required-for-progress criteria still unset,
// in a stable order.
func (l Lead) MissingFields() []string {
	var missing []string
	if l.Location == "" {
		missing = append(missing, FieldLocation)
	}
	if len(l.PropertyTypes) == 0 {
		missing = append(missing, FieldPropertyType)
	}
	if l.Transaction == "" {
		missing = append(missing, FieldTransaction)
	}
	return missing
}

// Budget thresholds for inferring the transaction kind. Below the rent
// ceiling a monthly figure is assumed; above the purchase floor a sale
// price is assumed.
const (
	rentBudgetCeiling   = 3000
	purchaseBudgetFloor = 50000
)

// ApplyInference fills gaps the extractor commonly leaves: a property
// type implied by room counts, and a transaction kind implied by the
// budget's magnitude. Explicit values are never overwritten.
func (l Lead) ApplyInference() Lead {
	out := l

	if len(out.PropertyTypes) == 0 {
		if out.Bedrooms != nil || out.Bathrooms != nil {
			out.PropertyTypes = []string{"departamento"}
		} else if out.Location != "" && out.Budget != nil {
			out.PropertyTypes = []string{"departamento"}
		}
	}

	if out.Transaction == "" && out.Budget != nil {
		switch {
		case *out.Budget < rentBudgetCeiling:
			out.Transaction = TransactionRent
		case *out.Budget > purchaseBudgetFloor:
			out.Transaction = TransactionBuy
		}
	}

	return out
}

// Description renders the lead as a compact natural-language line used
// as the semantic search query.
func (l Lead) Description() string {
	var parts []string
	if l.Location != "" {
		parts = append(parts, "ubicacion: "+l.Location)
	}
	if len(l.PropertyTypes) > 0 {
		parts = append(parts, "tipo: "+strings.Join(l.PropertyTypes, ", "))
	}
	if l.Transaction != "" {
		parts = append(parts, "transaccion: "+l.Transaction)
	}
	if l.Budget != nil {
		parts = append(parts, fmt.Sprintf("presupuesto: %d", *l.Budget))
	}
	if l.Bedrooms != nil {
		parts = append(parts, fmt.Sprintf("dormitorios: %d", *l.Bedrooms))
	}
	if l.Bathrooms != nil {
		parts = append(parts, fmt.Sprintf("banos: %d", *l.Bathrooms))
	}
	if l.MinArea != nil {
		parts = append(parts, fmt.Sprintf("area minima: %dm2", *l.MinArea))
	}
	if len(l.Amenities) > 0 {
		parts = append(parts, "amenidades: "+strings.Join(l.Amenities, ", "))
	}
	if len(l.Proximity) > 0 {
		parts = append(parts, "cerca de: "+strings.Join(l.Proximity, ", "))
	}
	if l.PetFriendly != nil && *l.PetFriendly {
		parts = append(parts, "acepta mascotas")
	}
	return strings.Join(parts, ", ")
}

// FieldSummary returns a human-readable value of the named criterion,
// or an empty string when unset.
func (l Lead) FieldSummary(field string) string {
	switch field {
	case FieldLocation:
		return l.Location
	case FieldPropertyType:
		return strings.Join(l.PropertyTypes, ", ")
	case FieldTransaction:
		return l.Transaction
	case FieldBudget:
		if l.Budget != nil {
			return fmt.Sprintf("%d", *l.Budget)
		}
	case FieldBedrooms:
		if l.Bedrooms != nil {
			return fmt.Sprintf("%d", *l.Bedrooms)
		}
	case FieldBathrooms:
		if l.Bathrooms != nil {
			return fmt.Sprintf("%d", *l.Bathrooms)
		}
	case FieldMinArea:
		if l.MinArea != nil {
			return fmt.Sprintf("%dm2", *l.MinArea)
		}
	case FieldAmenities:
		return strings.Join(l.Amenities, ", ")
	}
	return ""
}

// RefinableFields lists the criteria the refine flow can target, in
// menu order.
func RefinableFields() []string {
	return []string{
		FieldBudget,
		FieldLocation,
		FieldPropertyType,
		FieldBedrooms,
		FieldBathrooms,
		FieldMinArea,
		FieldAmenities,
		FieldTransaction,
	}
}

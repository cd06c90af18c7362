package stages

import (
	"context"
	"strings"

	"inmochat_backend/internal/chat/domain"
)

// Keyword taxonomy mapping free text to the criterion it refines.
// Order matters: the first matching group wins.
var refineTaxonomy = []struct {
	field    string
	keywords []string
}{
	{domain.FieldBudget, []string{"presupuesto", "precio", "costo", "dinero", "plata", "económico", "economico", "barato", "caro"}},
	{domain.FieldLocation, []string{"ubicación", "ubicacion", "zona", "distrito", "barrio", "lugar", "ciudad"}},
	{domain.FieldPropertyType, []string{"tipo", "propiedad", "casa", "departamento", "oficina", "terreno"}},
	{domain.FieldBedrooms, []string{"dormitorios", "habitaciones", "cuartos", "habitación", "habitacion", "dormitorio"}},
	{domain.FieldBathrooms, []string{"baños", "baño", "banos", "bano"}},
	{domain.FieldMinArea, []string{"metros", "tamaño", "tamano", "área", "area", "espacio", "grande", "pequeño", "pequeno"}},
	{domain.FieldAmenities, []string{"amenidades", "gimnasio", "piscina", "seguridad"}},
	{domain.FieldTransaction, []string{"alquiler", "compra", "venta", "renta"}},
}

// Letter shortcuts from the refine menu.
var refineLetters = map[string]string{
	"a": domain.FieldBudget,
	"b": domain.FieldLocation,
	"c": domain.FieldPropertyType,
	"d": domain.FieldBedrooms,
	"e": domain.FieldBathrooms,
	"f": domain.FieldMinArea,
	"g": domain.FieldAmenities,
}

func refineTarget(message string) string {
	lower := strings.ToLower(strings.TrimSpace(message))

	if field, ok := refineLetters[lower]; ok {
		return field
	}
	for _, group := range refineTaxonomy {
		for _, kw := range group.keywords {
			if strings.Contains(lower, kw) {
				return group.field
			}
		}
	}
	return ""
}

// handleRefine figures out which criterion the user wants to change.
// A recognized criterion moves to the update stage with a targeted
// question; otherwise the menu of current criteria is shown.
func (d *Dispatcher) handleRefine(ctx context.Context, st State) Outcome {
	name := displayName(st)

	field := refineTarget(st.Message)
	if field == "" {
		return Outcome{
			Stage:           domain.StageRefineSearch,
			Lead:            st.Lead,
			Recommendations: st.Recommendations,
			Text:            refineMenu(name, st.Lead),
		}
	}

	return Outcome{
		Stage:           domain.StageUpdateCriteria,
		Lead:            st.Lead,
		Recommendations: st.Recommendations,
		RefineTarget:    field,
		Text:            refineQuestion(field, name, st.Lead),
	}
}

package stages

import (
	"context"
	"strings"

	"inmochat_backend/internal/chat/domain"
	"inmochat_backend/internal/chat/intent"
)

var displayNewSearchSet = map[string]struct{}{
	"a": {}, "opcion a": {}, "opción a": {}, "buscar": {}, "nueva": {},
}

var displayDetailsSet = map[string]struct{}{
	"b": {}, "opcion b": {}, "opción b": {}, "detalles": {}, "más": {}, "mas": {},
}

var displayRefineSet = map[string]struct{}{
	"c": {}, "opcion c": {}, "opción c": {}, "refinar": {}, "filtrar": {},
}

var displayExitSet = map[string]struct{}{
	"salir": {}, "terminar": {}, "cancelar": {},
}

// handleDisplay interprets the menu shown under the property list:
// new search, details, refine, or exit.
func (d *Dispatcher) handleDisplay(ctx context.Context, st State) Outcome {
	name := displayName(st)
	lower := strings.ToLower(strings.TrimSpace(st.Message))

	switch {
	case inSet(lower, displayNewSearchSet) || strings.Contains(lower, "nueva"):
		return Outcome{
			Stage: domain.StageExtract,
			Lead:  st.Lead,
			Text:  newSearchPrompt(name),
		}

	case inSet(lower, displayDetailsSet) || strings.Contains(lower, "detalle"):
		return Outcome{
			Stage:           domain.StagePropertyDetails,
			Lead:            st.Lead,
			Recommendations: st.Recommendations,
			Text:            detailsPrompt(name),
		}

	case inSet(lower, displayRefineSet):
		return Outcome{
			Stage:           domain.StageRefineSearch,
			Lead:            st.Lead,
			Recommendations: st.Recommendations,
			Text:            refinePrompt(name),
		}

	case inSet(lower, displayExitSet) || intent.Classify(st.Message) == intent.Negative:
		return Outcome{
			Stage: domain.StageExtract,
			Lead:  st.Lead,
			Text:  farewell(name),
		}

	default:
		return Outcome{
			Stage:           domain.StageDisplayProperties,
			Lead:            st.Lead,
			Recommendations: st.Recommendations,
			Text:            displayMenu(name),
		}
	}
}

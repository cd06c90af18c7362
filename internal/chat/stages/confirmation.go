package stages

import (
	"context"
	"strings"

	"inmochat_backend/internal/chat/domain"
	"inmochat_backend/internal/chat/intent"
)

var showPropertySet = map[string]struct{}{
	"a": {}, "a.": {}, "opcion a": {}, "opción a": {},
	"mostrar": {}, "ver": {}, "propiedades": {}, "si": {}, "sí": {},
}

var showPropertyKeywords = []string{"ver", "mostrar", "interesado", "quiero", "gustaría", "gustaria", "dale", "ok"}

var newSearchSet = map[string]struct{}{
	"b": {}, "opcion b": {}, "opción b": {}, "reiniciar": {}, "reset": {},
	"nueva busqueda": {}, "nueva búsqueda": {}, "nueva": {}, "buscar": {},
}

var cancelSet = map[string]struct{}{
	"no": {}, "negativo": {}, "cancelar": {}, "salir": {},
	"atrás": {}, "atras": {}, "volver": {},
}

// HandleConfirmation interprets the reply to the "found N properties"
// menu. It runs instead of the normal dispatch whenever the stored
// metadata shows the recommend stage waiting on a yes/no.
func (d *Dispatcher) HandleConfirmation(ctx context.Context, st State) Outcome {
	name := displayName(st)
	lower := strings.ToLower(strings.TrimSpace(st.Message))
	verdict := intent.Classify(st.Message)

	switch {
	case wantsProperties(lower, verdict):
		return d.showProperties(ctx, st, name)

	case inSet(lower, newSearchSet) || strings.Contains(lower, "nueva"):
		return Outcome{
			Stage: domain.StageExtract,
			Lead:  st.Lead,
			Text:  newSearchPrompt(name),
		}

	case verdict == intent.Negative || inSet(lower, cancelSet):
		return Outcome{
			Stage: domain.StageExtract,
			Lead:  st.Lead,
			Text:  cancelSearch(name),
		}

	default:
		// Ambiguous reply; keep waiting and restate the options.
		return Outcome{
			Stage:             domain.StageRecommend,
			Lead:              st.Lead,
			Recommendations:   st.Recommendations,
			AwaitConfirmation: true,
			Text:              confirmationReminder(name, len(st.Recommendations)),
		}
	}
}

func wantsProperties(lower string, verdict intent.Intent) bool {
	if inSet(lower, showPropertySet) || verdict == intent.Affirmative {
		return true
	}
	for _, kw := range showPropertyKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func (d *Dispatcher) showProperties(ctx context.Context, st State, name string) Outcome {
	props := st.Recommendations
	if len(props) == 0 && st.Lead.Complete() {
		// Recommendations lost from metadata; re-run the search with
		// the stored lead before giving up.
		fresh, err := d.searcher.Search(ctx, st.Lead, d.searchLimit)
		if err != nil {
			if d.log != nil {
				d.log.CollaboratorError("property_search", err)
			}
		} else {
			props = fresh
		}
	}

	if len(props) == 0 {
		return Outcome{
			Stage: domain.StageExtract,
			Lead:  st.Lead,
			Text:  noResults(name),
		}
	}

	return Outcome{
		Stage:           domain.StageDisplayProperties,
		Lead:            st.Lead,
		Recommendations: props,
		Properties:      props,
		Text:            propertiesDisplay(props, name),
	}
}

func inSet(s string, set map[string]struct{}) bool {
	_, ok := set[s]
	return ok
}

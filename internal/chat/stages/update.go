package stages

import (
	"context"
	"strings"

	"inmochat_backend/internal/chat/domain"
	"inmochat_backend/internal/chat/intent"
)

// handleUpdate applies the user's reply to exactly the criterion chosen
// during refinement. Only that field moves; collected criteria the user
// did not mention stay untouched.
func (d *Dispatcher) handleUpdate(ctx context.Context, st State) Outcome {
	name := displayName(st)

	if st.RefineTarget == "" {
		// Lost the target (stale metadata); restart the refine menu.
		return Outcome{
			Stage:           domain.StageRefineSearch,
			Lead:            st.Lead,
			Recommendations: st.Recommendations,
			Text:            refineMenu(name, st.Lead),
		}
	}

	extracted, err := d.extractor.ExtractField(ctx, st.RefineTarget, st.Message)
	if err != nil {
		if d.log != nil {
			d.log.CollaboratorError("lead_extractor", err)
		}
		return Outcome{
			Stage:           domain.StageUpdateCriteria,
			Lead:            st.Lead,
			Recommendations: st.Recommendations,
			RefineTarget:    st.RefineTarget,
			Text:            updateFailed(name, st.RefineTarget),
		}
	}

	updated := st.Lead.MergeField(st.RefineTarget, extracted)
	value := updated.FieldSummary(st.RefineTarget)
	if value == "" {
		return Outcome{
			Stage:           domain.StageUpdateCriteria,
			Lead:            st.Lead,
			Recommendations: st.Recommendations,
			RefineTarget:    st.RefineTarget,
			Text:            updateFailed(name, st.RefineTarget),
		}
	}

	return Outcome{
		Stage:           domain.StageConfirmUpdatedSearch,
		Lead:            updated,
		Recommendations: st.Recommendations,
		Text:            updateConfirmation(name, st.RefineTarget, value),
	}
}

// handleConfirmUpdated reacts to the "search with new criteria?" menu:
// yes re-runs the search, "refinar" loops back, anything else returns
// to open conversation.
func (d *Dispatcher) handleConfirmUpdated(ctx context.Context, st State) Outcome {
	name := displayName(st)
	lower := strings.ToLower(strings.TrimSpace(st.Message))

	switch {
	case intent.Classify(st.Message) == intent.Affirmative || lower == "buscar":
		out := d.runSearch(ctx, st.Lead, name)
		if out.Stage == domain.StageRecommend {
			out.Text = updatedSearchMenu(name)
		}
		return out

	case strings.Contains(lower, "refinar") || strings.Contains(lower, "ajustar"):
		return Outcome{
			Stage:           domain.StageRefineSearch,
			Lead:            st.Lead,
			Recommendations: st.Recommendations,
			Text:            "Claro " + name + ", ¿qué otro criterio te gustaría ajustar?",
		}

	default:
		return Outcome{
			Stage: domain.StageExtract,
			Lead:  st.Lead,
			Text:  "Entendido " + name + ". ¿En qué más puedo ayudarte?",
		}
	}
}

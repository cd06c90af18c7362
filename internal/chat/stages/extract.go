package stages

import (
	"context"

	"inmochat_backend/internal/chat/domain"
)

// handleExtract runs criteria extraction over the whole user transcript,
// merges the result over what earlier turns collected, and either runs
// the search or asks for the most important missing criterion.
func (d *Dispatcher) handleExtract(ctx context.Context, st State) Outcome {
	name := displayName(st)

	extracted, err := d.extractor.Extract(ctx, st.UserTranscript)
	if err != nil {
		if d.log != nil {
			d.log.CollaboratorError("lead_extractor", err)
		}
		// A failed extraction never loses collected criteria; keep the
		// lead and ask a templated question instead.
		return Outcome{
			Stage: domain.StageExtract,
			Lead:  st.Lead,
			Text:  fallbackQuestion(name, st.Lead.MissingFields()),
		}
	}

	lead := st.Lead.Merge(extracted).ApplyInference()
	if !lead.Complete() {
		return Outcome{
			Stage: domain.StageExtract,
			Lead:  lead,
			Text:  d.askMissing(ctx, lead, st, name),
		}
	}

	return d.runSearch(ctx, lead, name)
}

func (d *Dispatcher) askMissing(ctx context.Context, lead domain.Lead, st State, name string) string {
	question, err := d.extractor.Question(ctx, lead.MissingFields(), st.UserTranscript)
	if err != nil {
		if d.log != nil {
			d.log.CollaboratorError("lead_extractor", err)
		}
		return fallbackQuestion(name, lead.MissingFields())
	}
	return question
}

// runSearch executes the listing search for a complete lead and builds
// the confirmation outcome. Shared by the extract flow and the
// confirm-updated-search flow.
func (d *Dispatcher) runSearch(ctx context.Context, lead domain.Lead, name string) Outcome {
	props, err := d.searcher.Search(ctx, lead, d.searchLimit)
	if err != nil {
		if d.log != nil {
			d.log.CollaboratorError("property_search", err)
		}
		props = nil
	}

	if len(props) == 0 {
		return Outcome{
			Stage: domain.StageExtract,
			Lead:  lead,
			Text:  noResults(name),
		}
	}

	return Outcome{
		Stage:             domain.StageRecommend,
		Lead:              lead,
		Recommendations:   props,
		AwaitConfirmation: true,
		Text:              confirmationMenu(name, len(props)),
	}
}

// Package domain provides core business rules for the chat bounded context.
package domain

// Stage is the named state of the per-conversation dialogue state machine.
type Stage string

const (
	StageExtract              Stage = "extract"
	StageRecommend            Stage = "recommend"
	StageDisplayProperties    Stage = "display_properties"
	StagePropertyDetails      Stage = "property_details"
	StageRefineSearch         Stage = "refine_search"
	StageUpdateCriteria       Stage = "update_criteria"
	StageConfirmUpdatedSearch Stage = "confirm_updated_search"
	StageRejection            Stage = "rejection"
)

var knownStages = map[Stage]struct{}{
	StageExtract:              {},
	StageRecommend:            {},
	StageDisplayProperties:    {},
	StagePropertyDetails:      {},
	StageRefineSearch:         {},
	StageUpdateCriteria:       {},
	StageConfirmUpdatedSearch: {},
	StageRejection:            {},
}

// IsKnown reports whether s is a stage the dispatcher has a handler for.
func (s Stage) IsKnown() bool {
	_, ok := knownStages[s]
	return ok
}

// ResumeStage maps a stored stage to the stage the next turn dispatches
// from. A conversation never resumes inside rejection, and an unknown
// stored stage (corrupt or from an older schema) restarts extraction.
func ResumeStage(stored Stage) Stage {
	if stored == "" || stored == StageRejection || !stored.IsKnown() {
		return StageExtract
	}
	return stored
}

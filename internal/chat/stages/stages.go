// Package stages implements the per-stage handlers of the dialogue
// state machine. Each handler reads the current turn state and returns
// an outcome describing the reply, the next stage and the metadata to
// persist; it never touches storage itself.
package stages

import (
	"context"

	"inmochat_backend/internal/chat/domain"
	"inmochat_backend/platform/logger"
)

// LeadExtractor pulls structured criteria out of conversation text.
type LeadExtractor interface {
	Extract(ctx context.Context, userTranscript string) (domain.Lead, error)
	ExtractField(ctx context.Context, field, text string) (domain.Lead, error)
	Question(ctx context.Context, missing []string, transcript string) (string, error)
}

// Searcher finds candidate listings for a complete lead. It returns an
// empty slice, not an error, when nothing matches.
type Searcher interface {
	Search(ctx context.Context, lead domain.Lead, limit int) ([]domain.Property, error)
}

// Elaborator writes a free-form detail blurb for one listing.
type Elaborator interface {
	Elaborate(ctx context.Context, property domain.Property, userName string) (string, error)
}

// State is everything a handler may read about the current turn.
type State struct {
	Message         string
	UserName        string
	Stage           domain.Stage
	Lead            domain.Lead
	Recommendations []domain.Property
	RefineTarget    string
	// UserTranscript is every user utterance so far, current message
	// included, one per line.
	UserTranscript string
}

// Outcome is a handler's full result. Properties non-empty marks the
// reply as a property list payload rather than plain text.
type Outcome struct {
	Stage             domain.Stage
	Reenter           bool
	Text              string
	Properties        []domain.Property
	Lead              domain.Lead
	Recommendations   []domain.Property
	AwaitConfirmation bool
	RefineTarget      string
	SelectedProperty  string
}

// Dispatcher routes a turn to the handler for its stage.
type Dispatcher struct {
	extractor   LeadExtractor
	searcher    Searcher
	elaborator  Elaborator
	searchLimit int
	log         *logger.Logger
}

// NewDispatcher creates a Dispatcher. The elaborator may be nil; the
// details handler then falls back to the stored listing text.
func NewDispatcher(extractor LeadExtractor, searcher Searcher, elaborator Elaborator, searchLimit int, log *logger.Logger) *Dispatcher {
	return &Dispatcher{
		extractor:   extractor,
		searcher:    searcher,
		elaborator:  elaborator,
		searchLimit: searchLimit,
		log:         log,
	}
}

// Dispatch runs the handler for the state's stage. Callers loop on
// Reenter with the returned stage, under their own pass bound.
func (d *Dispatcher) Dispatch(ctx context.Context, st State) Outcome {
	switch domain.ResumeStage(st.Stage) {
	case domain.StageExtract, domain.StageRecommend:
		// A stored recommend stage without the confirmation flag means
		// the criteria changed since the last search; re-evaluate them.
		return d.handleExtract(ctx, st)
	case domain.StageDisplayProperties:
		return d.handleDisplay(ctx, st)
	case domain.StagePropertyDetails:
		return d.handleDetails(ctx, st)
	case domain.StageRefineSearch:
		return d.handleRefine(ctx, st)
	case domain.StageUpdateCriteria:
		return d.handleUpdate(ctx, st)
	case domain.StageConfirmUpdatedSearch:
		return d.handleConfirmUpdated(ctx, st)
	default:
		return d.handleExtract(ctx, st)
	}
}

func displayName(st State) string {
	if st.UserName != "" {
		return st.UserName
	}
	return "amigo"
}

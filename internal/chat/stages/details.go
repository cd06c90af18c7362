package stages

import (
	"context"
	"regexp"
	"strconv"
	"strings"

	"inmochat_backend/internal/chat/domain"
)

var digitPattern = regexp.MustCompile(`\b(\d+)\b`)

var ordinalWords = []struct {
	word string
	n    int
}{
	{"primera", 1}, {"primero", 1}, {"uno", 1},
	{"segunda", 2}, {"segundo", 2}, {"dos", 2},
	{"tercera", 3}, {"tercero", 3}, {"tres", 3},
	{"cuarta", 4}, {"cuarto", 4}, {"cuatro", 4},
	{"quinta", 5}, {"quinto", 5}, {"cinco", 5},
}

// propertyNumber reads a 1-based option number out of a message, either
// as digits or as an ordinal word. Returns 0 when nothing matches.
func propertyNumber(message string) int {
	if m := digitPattern.FindStringSubmatch(message); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return n
		}
	}

	lower := strings.ToLower(message)
	for _, o := range ordinalWords {
		if strings.Contains(lower, o.word) {
			return o.n
		}
	}
	return 0
}

// handleDetails answers a request for more information about one of the
// recommended listings. The stage is sticky so the user can ask about
// several listings in a row.
func (d *Dispatcher) handleDetails(ctx context.Context, st State) Outcome {
	name := displayName(st)

	n := propertyNumber(st.Message)
	if n < 1 || n > len(st.Recommendations) {
		return Outcome{
			Stage:           domain.StagePropertyDetails,
			Lead:            st.Lead,
			Recommendations: st.Recommendations,
			Text:            unknownProperty(name, st.Recommendations),
		}
	}

	selected := st.Recommendations[n-1]
	return Outcome{
		Stage:            domain.StagePropertyDetails,
		Lead:             st.Lead,
		Recommendations:  st.Recommendations,
		SelectedProperty: selected.ID,
		Text:             d.describeProperty(ctx, selected, name),
	}
}

func (d *Dispatcher) describeProperty(ctx context.Context, p domain.Property, name string) string {
	if d.elaborator == nil {
		return detailsFallback(p)
	}

	detail, err := d.elaborator.Elaborate(ctx, p, name)
	if err != nil || strings.TrimSpace(detail) == "" {
		if err != nil && d.log != nil {
			d.log.CollaboratorError("listing_advisor", err)
		}
		return detailsFallback(p)
	}
	return detail + detailsFollowUp(name)
}

// Package filter derives narrowed views over a snapshot without
// mutating it: a family filter for visible models and a free-text
// search over account emails.
package filter

import (
	"strings"
	"time"

	"github.com/quotadeck/quotadeck/internal/models"
)

// SearchDebounce is how long search input must be quiescent before a
// re-render. Typing never triggers a network fetch regardless.
const SearchDebounce = 300 * time.Millisecond

// FamilyAll disables family narrowing.
const FamilyAll models.Family = "all"

// Filter is the current view narrowing. The zero value shows everything.
type Filter struct {
	Family models.Family
	Query  string
}

// View is the snapshot as seen through a filter: the accounts whose
// email matches the search and the model columns belonging to the
// selected family. The underlying snapshot is shared, never copied or
// mutated.
type View struct {
	Accounts []models.Account
	Models   []string
}

// Apply narrows a snapshot. Family narrows both the visible model
// columns and each card's model rows; the query is a case-insensitive
// substring match on the account email.
func (f Filter) Apply(snap *models.Snapshot) View {
	v := View{
		Models: f.visibleModels(snap.Models),
	}

	query := strings.ToLower(strings.TrimSpace(f.Query))
	for _, acc := range snap.Accounts {
		if query != "" && !strings.Contains(strings.ToLower(acc.Email), query) {
			continue
		}
		v.Accounts = append(v.Accounts, acc)
	}
	return v
}

// MatchesFamily reports whether a model id passes the family filter.
func (f Filter) MatchesFamily(modelID string) bool {
	if f.Family == "" || f.Family == FamilyAll {
		return true
	}
	return models.FamilyOf(modelID) == f.Family
}

func (f Filter) visibleModels(all []string) []string {
	if f.Family == "" || f.Family == FamilyAll {
		return all
	}
	var visible []string
	for _, id := range all {
		if models.FamilyOf(id) == f.Family {
			visible = append(visible, id)
		}
	}
	return visible
}

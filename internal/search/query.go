package search

import "github.com/thesavant42/issuenav/internal/models"

// QuerySource tells where the effective query came from
type QuerySource int

const (
	SourceDefault QuerySource = iota
	SourceCustom
	SourceSavedSearch
	SourcePinned
)

func (s QuerySource) String() string {
	switch s {
	case SourceCustom:
		return "custom"
	case SourceSavedSearch:
		return "saved"
	case SourcePinned:
		return "pinned"
	default:
		return "default"
	}
}

// EffectiveQuery is the query and sort actually sent to the issue service
type EffectiveQuery struct {
	Query  string
	Sort   string // "" = service default
	Source QuerySource
}

// ResolveEffectiveQuery picks the authoritative query and sort. It performs no I/O.
//
// A non-empty URL query always wins. Otherwise the saved search (selected by route
// or pinned as the default) supplies them. Otherwise DefaultQuery is used.
// An explicit URL sort wins; otherwise the saved search's sort applies, even under
// a custom query.
func ResolveEffectiveQuery(loc models.LocationQuery, saved *models.SavedSearch, isPinnedDefault bool) EffectiveQuery {
	var eq EffectiveQuery

	switch {
	case loc.Query != "":
		eq.Query = loc.Query
		eq.Source = SourceCustom
	case saved != nil:
		eq.Query = saved.Query
		eq.Source = SourceSavedSearch
		if isPinnedDefault {
			eq.Source = SourcePinned
		}
	default:
		eq.Query = DefaultQuery
		eq.Source = SourceDefault
	}

	switch {
	case loc.Sort != "":
		eq.Sort = loc.Sort
	case saved != nil:
		eq.Sort = saved.Sort
	}

	return eq
}

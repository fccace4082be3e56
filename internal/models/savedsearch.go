package models

import "time"

// SavedSearchType distinguishes issue searches from event searches
type SavedSearchType int

const (
	SavedSearchTypeIssue SavedSearchType = 0
	SavedSearchTypeEvent SavedSearchType = 1
)

// SavedSearch is a named, persisted query owned by an organization or user
type SavedSearch struct {
	ID          string          `json:"id"`
	Type        SavedSearchType `json:"type"`
	Name        string          `json:"name"`
	Query       string          `json:"query"`
	Sort        string          `json:"sort,omitempty"` // "date", "freq", "priority", "new", "user"
	ProjectID   *int64          `json:"projectId"`      // nil = no project scope
	IsPinned    bool            `json:"isPinned"`
	IsGlobal    bool            `json:"isGlobal"`
	IsOrgCustom bool            `json:"isOrgCustom"`
	DateCreated time.Time       `json:"dateCreated"`
}

// Label returns the display label for a saved search
func (s SavedSearch) Label() string {
	switch {
	case s.IsPinned && s.Name == "":
		return "My Pinned Search"
	case s.Name != "":
		return s.Name
	default:
		return s.Query
	}
}

// Matches reports whether the search carries exactly this query and sort.
// An empty sort matches a search with no sort of its own.
func (s SavedSearch) Matches(query, sort string) bool {
	return s.Query == query && s.Sort == sort
}

// PinRequest is the body of a pinned-search PUT
type PinRequest struct {
	Type  SavedSearchType `json:"type"`
	Query string          `json:"query"`
	Sort  string          `json:"sort,omitempty"`
}

// UnpinRequest is the body of a pinned-search DELETE
type UnpinRequest struct {
	Type SavedSearchType `json:"type"`
}

// Package search reconciles the issue list's query, saved search and pagination
// cursor against location changes, and synthesizes navigation targets.
package search

import (
	"context"
	"errors"

	"github.com/thesavant42/issuenav/internal/models"
)

const (
	DefaultQuery            = "is:unresolved"
	DefaultSort             = "date"
	DefaultGroupStatsPeriod = "24h"
	DefaultPageSize         = 25
)

var (
	// ErrSavedSearchNotFound is recorded when the location names an unknown saved search id
	ErrSavedSearchNotFound = errors.New("saved search not found")
	// ErrNoSavedSearchID is returned when the directory answers a pin without an identifier
	ErrNoSavedSearchID = errors.New("saved search response has no id")
)

// FeatureSet holds the organization capability flags the controller consults
type FeatureSet struct {
	HasGlobalViews bool // "view across all projects"
}

// Scope is the ambient context of the issue list, passed explicitly
type Scope struct {
	Org       string
	Features  FeatureSet
	Selection models.PageSelection
	PageSize  int
}

func (s Scope) pageSize() int {
	if s.PageSize <= 0 {
		return DefaultPageSize
	}
	return s.PageSize
}

// Navigator pushes a new location onto history
type Navigator interface {
	Push(loc models.Location)
}

// NavigatorFunc adapts a function to a Navigator
type NavigatorFunc func(loc models.Location)

func (f NavigatorFunc) Push(loc models.Location) { f(loc) }

// Directory lists and persists saved and pinned searches
type Directory interface {
	List(ctx context.Context, org string) ([]models.SavedSearch, error)
	Create(ctx context.Context, org string, search models.SavedSearch) (*models.SavedSearch, error)
	Update(ctx context.Context, org string, search models.SavedSearch) (*models.SavedSearch, error)
	Delete(ctx context.Context, org, id string) error
	Pin(ctx context.Context, org string, searchType models.SavedSearchType, query, sort string) (*models.SavedSearch, error)
	Unpin(ctx context.Context, org string, searchType models.SavedSearchType) error
}

// IssueService fetches one page of issues
type IssueService interface {
	FetchIssues(ctx context.Context, org string, q models.IssueQuery) (*models.IssuePage, error)
}

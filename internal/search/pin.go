package search

import (
	"context"
	"fmt"

	"github.com/thesavant42/issuenav/internal/models"
)

// LoadSavedSearches refreshes the cached directory list
func (c *Controller) LoadSavedSearches(ctx context.Context) ([]models.SavedSearch, error) {
	searches, err := c.dir.List(ctx, c.org())
	if err != nil {
		c.setErr(err)
		return nil, err
	}
	c.SetSavedSearches(searches)
	return searches, nil
}

// Pin binds query/sort as the pinned default view. On success it navigates to the
// pinned search with cursor, page, query and sort stripped and the selection kept.
// On failure nothing is navigated and the prior pinned state stays intact.
func (c *Controller) Pin(ctx context.Context, searchType models.SavedSearchType, query, sort string) (*models.SavedSearch, error) {
	pinned, err := c.dir.Pin(ctx, c.org(), searchType, query, sort)
	if err != nil {
		c.setErr(err)
		return nil, err
	}
	if pinned == nil || pinned.ID == "" {
		c.setErr(ErrNoSavedSearchID)
		return nil, ErrNoSavedSearchID
	}

	c.mu.Lock()
	c.adoptPinned(*pinned)
	loc := c.pinnedLocation(pinned.ID)
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("Pinned search", "id", pinned.ID, "query", pinned.Query, "sort", pinned.Sort)
	}
	c.push(loc)
	return pinned, nil
}

// PinCurrent pins the effective query and sort
func (c *Controller) PinCurrent(ctx context.Context) (*models.SavedSearch, error) {
	eq := c.Effective()
	return c.Pin(ctx, models.SavedSearchTypeIssue, eq.Query, eq.Sort)
}

// Unpin removes the pin and navigates to the base issue list using the unpinned
// search's own query and sort, keeping the selection.
func (c *Controller) Unpin(ctx context.Context, saved models.SavedSearch) error {
	if err := c.dir.Unpin(ctx, c.org(), saved.Type); err != nil {
		c.setErr(err)
		return err
	}

	c.mu.Lock()
	c.dropPinned(saved)
	loc := c.transitionLocation(QueryParams{
		Query:  String(saved.Query),
		Sort:   String(saved.Sort),
		Cursor: String(""),
	}, nil)
	c.mu.Unlock()

	if c.logger != nil {
		c.logger.Info("Unpinned search", "id", saved.ID, "query", saved.Query)
	}
	c.push(loc)
	return nil
}

// SaveSearch stores the effective query and sort under a name
func (c *Controller) SaveSearch(ctx context.Context, name string) (*models.SavedSearch, error) {
	eq := c.Effective()
	created, err := c.dir.Create(ctx, c.org(), models.SavedSearch{
		Type:  models.SavedSearchTypeIssue,
		Name:  name,
		Query: eq.Query,
		Sort:  eq.Sort,
	})
	if err != nil {
		c.setErr(err)
		return nil, err
	}
	if created == nil || created.ID == "" {
		c.setErr(ErrNoSavedSearchID)
		return nil, ErrNoSavedSearchID
	}

	c.mu.Lock()
	c.savedSearches = append(c.savedSearches, *created)
	if c.effective.Source == SourceCustom && created.Matches(eq.Query, eq.Sort) {
		s := *created
		c.matched = &s
	}
	c.mu.Unlock()
	return created, nil
}

// DeleteSearch removes a saved search. Deleting the active search returns to the default view.
func (c *Controller) DeleteSearch(ctx context.Context, saved models.SavedSearch) error {
	if err := c.dir.Delete(ctx, c.org(), saved.ID); err != nil {
		c.setErr(fmt.Errorf("failed to delete %q: %w", saved.Label(), err))
		return err
	}

	c.mu.Lock()
	c.removeSavedSearch(saved.ID)
	active := c.selected != nil && c.selected.ID == saved.ID
	if c.matched != nil && c.matched.ID == saved.ID {
		c.matched = nil
	}
	var loc models.Location
	if active {
		loc = c.transitionLocation(QueryParams{Query: String(""), Sort: String(""), Cursor: String("")}, nil)
	}
	c.mu.Unlock()

	if active {
		c.push(loc)
	}
	return nil
}

// pinnedLocation keeps the page selection and group stats period, dropping
// pagination and the search itself. Callers must hold c.mu.
func (c *Controller) pinnedLocation(id string) models.Location {
	query := c.selectionQuery()
	if c.query.GroupStatsPeriod != DefaultGroupStatsPeriod {
		query.GroupStatsPeriod = c.query.GroupStatsPeriod
	}
	return models.Location{Pathname: SavedSearchPath(c.scope.Org, id), Query: query.Values()}
}

// adoptPinned records a new pinned search, clearing the flag on any previous one.
// Callers must hold c.mu.
func (c *Controller) adoptPinned(pinned models.SavedSearch) {
	pinned.IsPinned = true
	replaced := false
	for i := range c.savedSearches {
		if c.savedSearches[i].ID == pinned.ID {
			c.savedSearches[i] = pinned
			replaced = true
			continue
		}
		if c.savedSearches[i].Type == pinned.Type {
			c.savedSearches[i].IsPinned = false
		}
	}
	if !replaced {
		c.savedSearches = append(c.savedSearches, pinned)
	}
}

// dropPinned clears the pin. A search that existed only as a pin is removed,
// organization and global searches stay listed. Callers must hold c.mu.
func (c *Controller) dropPinned(saved models.SavedSearch) {
	for i := range c.savedSearches {
		s := &c.savedSearches[i]
		if s.Type != saved.Type || !s.IsPinned {
			continue
		}
		if s.IsOrgCustom || s.IsGlobal {
			s.IsPinned = false
			continue
		}
		c.removeSavedSearch(s.ID)
		return
	}
}

func (c *Controller) removeSavedSearch(id string) {
	for i := range c.savedSearches {
		if c.savedSearches[i].ID == id {
			c.savedSearches = append(c.savedSearches[:i], c.savedSearches[i+1:]...)
			return
		}
	}
}

func (c *Controller) org() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scope.Org
}

func (c *Controller) setErr(err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.err = err
	if c.logger != nil {
		c.logger.Error("Search operation failed", "error", err)
	}
}

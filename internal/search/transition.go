package search

import (
	"strconv"
	"time"

	"github.com/thesavant42/issuenav/internal/models"
)

// QueryParams is a partial set of URL overrides for a transition.
// A nil field keeps the current value; a pointer to "" removes the parameter.
type QueryParams struct {
	Query            *string
	Sort             *string
	Cursor           *string
	Page             *int
	GroupStatsPeriod *string
}

// String returns a pointer to s, for building QueryParams
func String(s string) *string { return &s }

// Int returns a pointer to n, for building QueryParams
func Int(n int) *int { return &n }

// TransitionTo computes the location for the overrides and optional saved search to
// adopt, then issues exactly one navigation push. The computed location is returned.
func (c *Controller) TransitionTo(params QueryParams, target *models.SavedSearch) models.Location {
	c.mu.Lock()
	loc := c.transitionLocation(params, target)
	c.mu.Unlock()

	c.push(loc)
	return loc
}

// transitionLocation builds a navigation target. Callers must hold c.mu.
func (c *Controller) transitionLocation(params QueryParams, target *models.SavedSearch) models.Location {
	q := c.selectionQuery()

	// Current search state; cursor and page are never carried over implicitly
	if c.effective.Source != SourceDefault {
		q.Query = c.effective.Query
	}
	q.Sort = c.effective.Sort
	q.GroupStatsPeriod = c.query.GroupStatsPeriod

	if params.Query != nil {
		q.Query = *params.Query
	}
	if params.Sort != nil {
		q.Sort = *params.Sort
	}
	if params.GroupStatsPeriod != nil {
		q.GroupStatsPeriod = *params.GroupStatsPeriod
	}
	if params.Cursor != nil {
		q.Cursor = *params.Cursor
	}

	// Back to the first page: drop cursor and page rather than replaying page 1's cursor
	page := 0
	if params.Page != nil {
		page = *params.Page
	}
	if q.Cursor != "" && (page <= 0 || q.Cursor == c.originCursor) {
		q.Cursor = ""
	}
	if q.Cursor != "" {
		q.Page = strconv.Itoa(page)
	}

	if q.Sort == DefaultSort {
		q.Sort = ""
	}
	if q.GroupStatsPeriod == DefaultGroupStatsPeriod {
		q.GroupStatsPeriod = ""
	}

	pathname := IssuesPath(c.scope.Org)
	if target != nil && target.ID != "" {
		pathname = SavedSearchPath(c.scope.Org, target.ID)

		// Saved searches bring their own query string
		q.Query = ""
		if q.Sort == target.Sort {
			q.Sort = ""
		}

		// Only re-scope projects when entering the search, not when paging within it
		if q.Cursor == "" {
			switch {
			case target.ProjectID != nil:
				q.Projects = []int64{*target.ProjectID}
			case c.scope.Features.HasGlobalViews:
				q.Projects = nil
			}
		}
	}

	return models.Location{Pathname: pathname, Query: q.Values()}
}

// selectionQuery encodes the page selection as URL parameters, leaving out the
// default stats period. Callers must hold c.mu.
func (c *Controller) selectionQuery() models.LocationQuery {
	sel := c.scope.Selection
	q := models.LocationQuery{
		Projects:     sel.Projects,
		Environments: sel.Environments,
	}
	if sel.DateTime.IsAbsolute() {
		q.Start = sel.DateTime.Start.UTC().Format(time.RFC3339)
		q.End = sel.DateTime.End.UTC().Format(time.RFC3339)
		if sel.DateTime.UTC {
			q.UTC = "true"
		}
	} else if period := sel.DateTime.EffectivePeriod(); period != models.DefaultStatsPeriod {
		q.StatsPeriod = period
	}
	return q
}

// NextPage transitions to the next page. It is a no-op when there is none.
func (c *Controller) NextPage() (models.Location, bool) {
	return c.changePage(1)
}

// PreviousPage transitions to the previous page. It is a no-op when there is none.
func (c *Controller) PreviousPage() (models.Location, bool) {
	return c.changePage(-1)
}

func (c *Controller) changePage(delta int) (models.Location, bool) {
	c.mu.Lock()
	var link models.PageLink
	if c.page != nil {
		link = c.page.Links.Next
		if delta < 0 {
			link = c.page.Links.Previous
		}
	}
	current := c.query.PageIndex()
	// Going back from a later page is allowed even if the service reports no results,
	// since landing on page 0 clears the cursor instead of sending it.
	if link.Cursor == "" || (!link.Results && (delta > 0 || current == 0)) {
		c.mu.Unlock()
		return models.Location{}, false
	}

	loc := c.transitionLocation(QueryParams{
		Cursor: String(link.Cursor),
		Page:   Int(current + delta),
	}, c.activeSearch())
	c.mu.Unlock()

	c.push(loc)
	return loc, true
}

// SubmitQuery applies free-text query input. An empty query returns to the default view.
// Pagination is always reset and any saved search is left.
func (c *Controller) SubmitQuery(query string) models.Location {
	return c.TransitionTo(QueryParams{Query: String(query)}, nil)
}

// SelectSavedSearch enters a saved search from the directory list
func (c *Controller) SelectSavedSearch(s models.SavedSearch) models.Location {
	return c.TransitionTo(QueryParams{}, &s)
}

// ChangeSort switches the sort order, staying in the current saved search if any
func (c *Controller) ChangeSort(sort string) models.Location {
	c.mu.Lock()
	target := c.activeSearch()
	c.mu.Unlock()
	return c.TransitionTo(QueryParams{Sort: String(sort)}, target)
}

package search

import (
	"context"
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/thesavant42/issuenav/internal/models"
	"golang.org/x/sync/errgroup"
)

// FetchRequest identifies one issued fetch. Only the latest generation is adopted.
type FetchRequest struct {
	Generation uint64
	Org        string
	Query      models.IssueQuery
}

// BeginFetch snapshots the effective query for the current location and marks it
// as the most recently initiated request.
func (c *Controller) BeginFetch() FetchRequest {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.loading = true
	return FetchRequest{
		Generation: c.generation,
		Org:        c.scope.Org,
		Query:      c.issueQuery(),
	}
}

// CompleteFetch adopts a fetch result if it belongs to the latest request.
// Results of superseded requests are discarded and false is returned.
func (c *Controller) CompleteFetch(req FetchRequest, page *models.IssuePage, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completeFetch(req, page, err)
}

// completeFetch is CompleteFetch with c.mu held
func (c *Controller) completeFetch(req FetchRequest, page *models.IssuePage, err error) bool {
	if req.Generation != c.generation {
		if c.logger != nil {
			c.logger.Debug("Discarding stale fetch", "generation", req.Generation, "latest", c.generation)
		}
		return false
	}

	c.loading = false
	if err != nil {
		c.err = err
		if c.logger != nil {
			c.logger.Error("Issue fetch failed", "error", err)
		}
		return true
	}

	c.page = page
	c.itemsRemoved = 0
	return true
}

// abandonFetch drops an outstanding request without adopting anything. A newer
// request keeps its loading state. Callers must hold c.mu.
func (c *Controller) abandonFetch(req FetchRequest) {
	if req.Generation == c.generation {
		c.loading = false
	}
}

// Fetch runs a request against the issue service without touching controller state.
// Pair it with BeginFetch and CompleteFetch when the call happens off the event loop.
func (c *Controller) Fetch(ctx context.Context, req FetchRequest) (*models.IssuePage, error) {
	if c.issues == nil {
		return nil, fmt.Errorf("no issue service configured")
	}
	page, err := c.issues.FetchIssues(ctx, req.Org, req.Query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch issues: %w", err)
	}
	return page, nil
}

// Refresh fetches the current location synchronously and adopts the result if it
// is still the latest request when it completes.
func (c *Controller) Refresh(ctx context.Context) error {
	req := c.BeginFetch()
	page, err := c.Fetch(ctx, req)
	c.CompleteFetch(req, page, err)
	return err
}

// Load fetches the saved-search directory and the first page of issues in parallel,
// then reconciles the location against the loaded directory. When the location
// changes while Load runs, the newer location wins: only the directory is kept.
func (c *Controller) Load(ctx context.Context, loc models.Location) error {
	c.mu.Lock()
	c.applyLocation(loc)
	seq := c.locationSeq
	c.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		_, err := c.LoadSavedSearches(gctx)
		return err
	})
	// The issues probe only matters when the location names its own query;
	// otherwise the directory decides what to fetch.
	probe := loc.SearchQuery().Query != ""
	var probeReq FetchRequest
	var probePage *models.IssuePage
	if probe {
		probeReq = c.BeginFetch()
		g.Go(func() error {
			var err error
			probePage, err = c.Fetch(gctx, probeReq)
			return err
		})
	}
	err := g.Wait()

	c.mu.Lock()
	if err != nil {
		if probe {
			c.completeFetch(probeReq, nil, err)
		}
		c.mu.Unlock()
		return err
	}
	if c.locationSeq != seq {
		if probe {
			c.abandonFetch(probeReq)
		}
		c.mu.Unlock()
		if c.logger != nil {
			c.logger.Debug("Location changed during load, keeping the newer one")
		}
		return nil
	}

	// The directory may change how the path resolves (saved search ids, pinned default)
	c.applyLocation(loc)
	if probe && cmp.Equal(c.issueQuery(), probeReq.Query) {
		c.completeFetch(probeReq, probePage, nil)
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()
	return c.Refresh(ctx)
}

// issueQuery builds the service request for the current state. Callers must hold c.mu.
func (c *Controller) issueQuery() models.IssueQuery {
	sel := c.scope.Selection
	q := models.IssueQuery{
		Query:            c.effective.Query,
		Sort:             c.effective.Sort,
		Cursor:           c.query.Cursor,
		GroupStatsPeriod: c.query.GroupStatsPeriod,
		Projects:         sel.Projects,
		Environments:     sel.Environments,
		Limit:            c.scope.pageSize(),
		Collapse:         []string{"stats"},
		Expand:           []string{"owners", "inbox"},
		ShortIDLookup:    true,
	}
	if q.Sort == "" {
		q.Sort = DefaultSort
	}
	if q.GroupStatsPeriod == "" {
		q.GroupStatsPeriod = DefaultGroupStatsPeriod
	}
	if sel.DateTime.IsAbsolute() {
		q.Start = sel.DateTime.Start.UTC().Format("2006-01-02T15:04:05")
		q.End = sel.DateTime.End.UTC().Format("2006-01-02T15:04:05")
		if sel.DateTime.UTC {
			q.UTC = "true"
		}
	} else {
		q.StatsPeriod = sel.DateTime.EffectivePeriod()
	}
	return q
}

// Page returns the last adopted page of results, or nil
func (c *Controller) Page() *models.IssuePage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.page
}

// Loading reports whether the latest request is still outstanding
func (c *Controller) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

// MarkRemoved records rows removed locally (resolved, deleted) since the last fetch
func (c *Controller) MarkRemoved(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.itemsRemoved += n
}

// Caption renders the pagination caption for the last adopted page
func (c *Controller) Caption() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.page == nil {
		return ""
	}
	return PaginationCaption(len(c.page.Issues), c.page.Hits, c.itemsRemoved, c.page.Links,
		c.query.PageIndex(), c.scope.pageSize())
}

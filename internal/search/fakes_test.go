package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/thesavant42/issuenav/internal/models"
)

type fakeDirectory struct {
	mu        sync.Mutex
	searches  []models.SavedSearch
	nextID    int
	listErr   error
	pinErr    error
	pinResult *models.SavedSearch // returned verbatim when set
	unpinErr  error
	pinCalls  int

	listStarted chan struct{} // closed when List is first called
	listGate    chan struct{} // List blocks until this is closed
}

func (d *fakeDirectory) List(ctx context.Context, org string) ([]models.SavedSearch, error) {
	if d.listStarted != nil {
		close(d.listStarted)
	}
	if d.listGate != nil {
		select {
		case <-d.listGate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.listErr != nil {
		return nil, d.listErr
	}
	return append([]models.SavedSearch(nil), d.searches...), nil
}

func (d *fakeDirectory) Create(ctx context.Context, org string, s models.SavedSearch) (*models.SavedSearch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nextID++
	s.ID = fmt.Sprint(100 + d.nextID)
	s.IsOrgCustom = true
	d.searches = append(d.searches, s)
	return &s, nil
}

func (d *fakeDirectory) Update(ctx context.Context, org string, s models.SavedSearch) (*models.SavedSearch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.searches {
		if d.searches[i].ID == s.ID {
			d.searches[i] = s
			return &s, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (d *fakeDirectory) Delete(ctx context.Context, org, id string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	for i := range d.searches {
		if d.searches[i].ID == id {
			d.searches = append(d.searches[:i], d.searches[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("not found")
}

func (d *fakeDirectory) Pin(ctx context.Context, org string, t models.SavedSearchType, query, sort string) (*models.SavedSearch, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.pinCalls++
	if d.pinErr != nil {
		return nil, d.pinErr
	}
	if d.pinResult != nil {
		return d.pinResult, nil
	}
	d.nextID++
	s := models.SavedSearch{ID: fmt.Sprint(100 + d.nextID), Type: t, Query: query, Sort: sort, IsPinned: true}
	d.searches = append(d.searches, s)
	return &s, nil
}

func (d *fakeDirectory) Unpin(ctx context.Context, org string, t models.SavedSearchType) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.unpinErr != nil {
		return d.unpinErr
	}
	for i := range d.searches {
		if d.searches[i].IsPinned && d.searches[i].Type == t {
			d.searches = append(d.searches[:i], d.searches[i+1:]...)
			return nil
		}
	}
	return nil
}

type fakeIssues struct {
	fetch func(ctx context.Context, org string, q models.IssueQuery) (*models.IssuePage, error)
}

func (f fakeIssues) FetchIssues(ctx context.Context, org string, q models.IssueQuery) (*models.IssuePage, error) {
	return f.fetch(ctx, org, q)
}

func int64Ptr(n int64) *int64 { return &n }

// issuesPage builds a page of n placeholder issues with the given links
func issuesPage(n, hits int, links models.PageLinks) *models.IssuePage {
	page := &models.IssuePage{Links: links, Hits: hits}
	for i := 0; i < n; i++ {
		page.Issues = append(page.Issues, models.Issue{ID: fmt.Sprint(i + 1)})
	}
	return page
}

func pageLinks(prevCursor string, prevResults bool, nextCursor string, nextResults bool) models.PageLinks {
	return models.PageLinks{
		Previous: models.PageLink{Cursor: prevCursor, Results: prevResults},
		Next:     models.PageLink{Cursor: nextCursor, Results: nextResults},
	}
}

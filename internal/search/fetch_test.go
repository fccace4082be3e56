package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thesavant42/issuenav/internal/models"
	"go.uber.org/goleak"
)

func TestStaleFetchIsDiscarded(t *testing.T) {
	defer goleak.VerifyNone(t)

	release := map[string]chan struct{}{
		"slow": make(chan struct{}),
		"fast": make(chan struct{}),
	}
	hits := map[string]int{"slow": 111, "fast": 222}
	issues := fakeIssues{fetch: func(ctx context.Context, org string, q models.IssueQuery) (*models.IssuePage, error) {
		select {
		case <-release[q.Query]:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		return issuesPage(1, hits[q.Query], models.PageLinks{}), nil
	}}

	c := New(Config{Scope: Scope{Org: "acme"}, Issues: issues})
	c.OnLocationChange(models.Location{Pathname: IssuesPath("acme"), Query: map[string][]string{"query": {"slow"}}})
	slow := c.BeginFetch()
	c.OnLocationChange(models.Location{Pathname: IssuesPath("acme"), Query: map[string][]string{"query": {"fast"}}})
	fast := c.BeginFetch()

	type outcome struct {
		query   string
		adopted bool
	}
	results := make(chan outcome, 2)
	var wg sync.WaitGroup
	for _, req := range []FetchRequest{slow, fast} {
		wg.Add(1)
		go func(req FetchRequest) {
			defer wg.Done()
			page, err := c.Fetch(context.Background(), req)
			results <- outcome{req.Query.Query, c.CompleteFetch(req, page, err)}
		}(req)
	}

	close(release["fast"])
	first := <-results
	assert.Equal(t, outcome{"fast", true}, first)
	assert.False(t, c.Loading())

	close(release["slow"])
	second := <-results
	assert.Equal(t, outcome{"slow", false}, second)

	wg.Wait()
	require.NotNil(t, c.Page())
	assert.Equal(t, 222, c.Page().Hits)
}

func TestCompleteFetchRecordsError(t *testing.T) {
	boom := errors.New("connection reset")
	c := New(Config{Scope: Scope{Org: "acme"}, Issues: fakeIssues{fetch: func(context.Context, string, models.IssueQuery) (*models.IssuePage, error) {
		return nil, boom
	}}})

	err := c.Refresh(context.Background())

	require.ErrorIs(t, err, boom)
	assert.ErrorIs(t, c.Err(), boom)
	assert.False(t, c.Loading())
	assert.Nil(t, c.Page())
}

func TestFetchWithoutIssueService(t *testing.T) {
	c := New(Config{Scope: Scope{Org: "acme"}})
	_, err := c.Fetch(context.Background(), c.BeginFetch())
	assert.Error(t, err)
}

func TestIssueQueryParameters(t *testing.T) {
	var got models.IssueQuery
	issues := fakeIssues{fetch: func(ctx context.Context, org string, q models.IssueQuery) (*models.IssuePage, error) {
		assert.Equal(t, "acme", org)
		got = q
		return issuesPage(0, 0, models.PageLinks{}), nil
	}}

	t.Run("relative period with defaults", func(t *testing.T) {
		c := New(Config{Scope: Scope{Org: "acme", Selection: models.PageSelection{Projects: []int64{4}, Environments: []string{"prod"}}}, Issues: issues})
		c.OnLocationChange(models.Location{Pathname: IssuesPath("acme"), Query: map[string][]string{"cursor": {"0:25:0"}, "page": {"1"}}})
		require.NoError(t, c.Refresh(context.Background()))

		assert.Equal(t, models.IssueQuery{
			Query:            DefaultQuery,
			Sort:             DefaultSort,
			Cursor:           "0:25:0",
			StatsPeriod:      "14d",
			GroupStatsPeriod: DefaultGroupStatsPeriod,
			Projects:         []int64{4},
			Environments:     []string{"prod"},
			Limit:            DefaultPageSize,
			Collapse:         []string{"stats"},
			Expand:           []string{"owners", "inbox"},
			ShortIDLookup:    true,
		}, got)
	})

	t.Run("absolute range", func(t *testing.T) {
		start := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
		end := start.Add(6 * time.Hour)
		c := New(Config{Scope: Scope{Org: "acme", PageSize: 50, Selection: models.PageSelection{
			DateTime: models.DateTime{Start: &start, End: &end},
		}}, Issues: issues})
		c.OnLocationChange(models.Location{Pathname: IssuesPath("acme"), Query: map[string][]string{"query": {"is:resolved"}, "sort": {"freq"}}})
		require.NoError(t, c.Refresh(context.Background()))

		assert.Equal(t, "is:resolved", got.Query)
		assert.Equal(t, "freq", got.Sort)
		assert.Equal(t, "2024-05-01T08:00:00", got.Start)
		assert.Equal(t, "2024-05-01T14:00:00", got.End)
		assert.Empty(t, got.StatsPeriod)
		assert.Equal(t, 50, got.Limit)
	})
}

func TestLoadResolvesPinnedDefault(t *testing.T) {
	defer goleak.VerifyNone(t)

	pinned := models.SavedSearch{ID: "12", Query: "is:unresolved is:for_review", Sort: "new", IsPinned: true}
	dir := &fakeDirectory{searches: []models.SavedSearch{pinned}}

	var mu sync.Mutex
	var queries []string
	issues := fakeIssues{fetch: func(ctx context.Context, org string, q models.IssueQuery) (*models.IssuePage, error) {
		mu.Lock()
		queries = append(queries, q.Query)
		mu.Unlock()
		return issuesPage(25, 80, pageLinks("0:0:1", false, "0:25:0", true)), nil
	}}

	c := New(Config{Scope: Scope{Org: "acme"}, Directory: dir, Issues: issues})
	require.NoError(t, c.Load(context.Background(), models.Location{Pathname: IssuesPath("acme")}))

	assert.Equal(t, StateSavedSearchPinned, c.State())
	assert.Equal(t, []string{"is:unresolved is:for_review"}, queries)
	assert.Equal(t, "Showing 25 of 80 issues", c.Caption())
}

func TestLoadProbesExplicitQuery(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := &fakeDirectory{searches: []models.SavedSearch{{ID: "12", Query: "is:for_review", IsPinned: true}}}
	var calls int
	var mu sync.Mutex
	issues := fakeIssues{fetch: func(ctx context.Context, org string, q models.IssueQuery) (*models.IssuePage, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		assert.Equal(t, "level:fatal", q.Query)
		return issuesPage(2, 2, models.PageLinks{}), nil
	}}

	c := New(Config{Scope: Scope{Org: "acme"}, Directory: dir, Issues: issues})
	loc := models.Location{Pathname: IssuesPath("acme"), Query: map[string][]string{"query": {"level:fatal"}}}
	require.NoError(t, c.Load(context.Background(), loc))

	assert.Equal(t, 1, calls)
	assert.Equal(t, StateCustomQuery, c.State())
	assert.Equal(t, 2, c.Page().Hits)
}

func TestLoadDirectoryFailure(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := &fakeDirectory{listErr: errors.New("unauthorized")}
	issues := fakeIssues{fetch: func(ctx context.Context, org string, q models.IssueQuery) (*models.IssuePage, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}

	c := New(Config{Scope: Scope{Org: "acme"}, Directory: dir, Issues: issues})
	loc := models.Location{Pathname: IssuesPath("acme"), Query: map[string][]string{"query": {"x"}}}
	err := c.Load(context.Background(), loc)

	assert.EqualError(t, err, "unauthorized")
	assert.False(t, c.Loading())
	assert.Nil(t, c.Page())
}

func TestLoadKeepsLocationChangedDuringLoad(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := &fakeDirectory{
		searches:    []models.SavedSearch{{ID: "3", Query: "is:unresolved is:for_review", IsOrgCustom: true}},
		listStarted: make(chan struct{}),
		listGate:    make(chan struct{}),
	}
	var mu sync.Mutex
	var fetched []string
	issues := fakeIssues{fetch: func(ctx context.Context, org string, q models.IssueQuery) (*models.IssuePage, error) {
		mu.Lock()
		fetched = append(fetched, q.Query)
		mu.Unlock()
		return issuesPage(4, 4, models.PageLinks{}), nil
	}}

	start := models.Location{Pathname: IssuesPath("acme")}
	var c *Controller
	history := NewHistory(start, func(loc models.Location) { c.OnLocationChange(loc) })
	c = New(Config{Scope: Scope{Org: "acme"}, Navigator: history, Directory: dir, Issues: issues})

	done := make(chan error, 1)
	go func() { done <- c.Load(context.Background(), start) }()

	<-dir.listStarted
	c.SubmitQuery("is:resolved")
	close(dir.listGate)
	require.NoError(t, <-done)

	assert.Equal(t, "is:resolved", history.Current().SearchQuery().Query)
	assert.Equal(t, "is:resolved", c.Effective().Query)
	assert.Len(t, c.SavedSearchList(), 1)
	assert.Empty(t, fetched, "load must not fetch for a location that was replaced")

	require.NoError(t, c.Refresh(context.Background()))
	assert.Equal(t, []string{"is:resolved"}, fetched)
	assert.False(t, c.Loading())
}

func TestLoadRefetchesWhenDirectoryChangesQuery(t *testing.T) {
	defer goleak.VerifyNone(t)

	dir := &fakeDirectory{searches: []models.SavedSearch{{ID: "7", Query: "is:unresolved", Sort: "freq", IsOrgCustom: true}}}
	var mu sync.Mutex
	var sorts []string
	hits := map[string]int{"date": 3, "freq": 9}
	issues := fakeIssues{fetch: func(ctx context.Context, org string, q models.IssueQuery) (*models.IssuePage, error) {
		mu.Lock()
		sorts = append(sorts, q.Sort)
		mu.Unlock()
		return issuesPage(1, hits[q.Sort], models.PageLinks{}), nil
	}}

	c := New(Config{Scope: Scope{Org: "acme"}, Directory: dir, Issues: issues})
	loc := models.Location{Pathname: SavedSearchPath("acme", "7"), Query: map[string][]string{"query": {"level:error"}}}
	require.NoError(t, c.Load(context.Background(), loc))

	assert.Equal(t, []string{"date", "freq"}, sorts)
	assert.Equal(t, "freq", c.Effective().Sort)
	assert.Equal(t, 9, c.Page().Hits)
	assert.False(t, c.Loading())
	assert.NoError(t, c.Err())
}

func TestCaptionTracksRemovedItems(t *testing.T) {
	c := New(Config{Scope: Scope{Org: "acme"}})
	assert.Empty(t, c.Caption())

	c.OnLocationChange(models.Location{Pathname: IssuesPath("acme"), Query: map[string][]string{"cursor": {"0:25:0"}, "page": {"1"}}})
	c.CompleteFetch(c.BeginFetch(), issuesPage(25, 75, pageLinks("0:25:1", true, "0:50:0", true)), nil)
	c.MarkRemoved(1)

	assert.Equal(t, "Showing 49 of 74 issues", c.Caption())
}

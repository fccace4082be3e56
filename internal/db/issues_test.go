package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thesavant42/issuenav/internal/models"
)

func seededDB(t *testing.T, n int) *DB {
	t.Helper()
	database := newTestDB(t)
	require.NoError(t, database.Seed(context.Background(), SeedOptions{
		Org:        "acme",
		Projects:   []int64{1, 2},
		IssueCount: n,
		Now:        time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
	}))
	return database
}

func TestParseSearchQuery(t *testing.T) {
	tests := []struct {
		query string
		want  models.IssueFilter
	}{
		{"", models.IssueFilter{}},
		{"is:unresolved", models.IssueFilter{Statuses: []string{"unresolved"}}},
		{"is:unresolved level:error TypeError", models.IssueFilter{Statuses: []string{"unresolved"}, Levels: []string{"error"}, SearchText: "TypeError"}},
		{"is:for_review browser:Chrome", models.IssueFilter{}},
		{`"database is locked"`, models.IssueFilter{SearchText: "database is locked"}},
		{"is:resolved is:ignored", models.IssueFilter{Statuses: []string{"resolved", "ignored"}}},
		{"trailing:", models.IssueFilter{SearchText: "trailing:"}},
		{"environment:staging level:fatal", models.IssueFilter{Levels: []string{"fatal"}, Environments: []string{"staging"}}},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseSearchQuery(tt.query))
		})
	}
}

func TestParseCursor(t *testing.T) {
	tests := []struct {
		cursor  string
		want    int
		wantErr bool
	}{
		{"", 0, false},
		{"0:25:0", 25, false},
		{"0:0:1", 0, false},
		{"1700000000000:50:1", 50, false},
		{"0:-5:0", 0, true},
		{"0:25", 0, true},
		{"0:x:0", 0, true},
		{"0:25:2", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.cursor, func(t *testing.T) {
			got, err := ParseCursor(tt.cursor)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidCursor)
				assert.ErrorIs(t, err, ErrInvalidParameter)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePeriod(t *testing.T) {
	d, err := ParsePeriod("14d")
	require.NoError(t, err)
	assert.Equal(t, 14*24*time.Hour, d)

	d, err = ParsePeriod("24h")
	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, d)

	_, err = ParsePeriod("forever")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestFetchIssuesPaginates(t *testing.T) {
	ctx := context.Background()
	database := seededDB(t, 60)

	q := models.IssueQuery{Query: "is:unresolved", Limit: 25}
	first, err := database.FetchIssues(ctx, "acme", q)
	require.NoError(t, err)

	// Statuses cycle unresolved x3, resolved, ignored
	assert.Equal(t, 36, first.Hits)
	assert.Len(t, first.Issues, 25)
	assert.False(t, first.Links.HasPrevious())
	assert.True(t, first.Links.HasNext())
	assert.Equal(t, "0:25:0", first.Links.Next.Cursor)

	q.Cursor = first.Links.Next.Cursor
	second, err := database.FetchIssues(ctx, "acme", q)
	require.NoError(t, err)
	assert.Len(t, second.Issues, 11)
	assert.True(t, second.Links.HasPrevious())
	assert.Equal(t, "0:0:1", second.Links.Previous.Cursor)
	assert.False(t, second.Links.HasNext())

	seen := map[string]bool{}
	for _, issue := range append(first.Issues, second.Issues...) {
		assert.False(t, seen[issue.ID], "issue %s returned twice", issue.ID)
		seen[issue.ID] = true
		assert.Equal(t, "unresolved", issue.Status)
	}
}

func TestFetchIssuesSorts(t *testing.T) {
	ctx := context.Background()
	database := seededDB(t, 30)

	page, err := database.FetchIssues(ctx, "acme", models.IssueQuery{Sort: "freq", Limit: 30})
	require.NoError(t, err)
	for i := 1; i < len(page.Issues); i++ {
		assert.GreaterOrEqual(t, page.Issues[i-1].Count, page.Issues[i].Count)
	}

	page, err = database.FetchIssues(ctx, "acme", models.IssueQuery{Sort: "date", Limit: 30})
	require.NoError(t, err)
	for i := 1; i < len(page.Issues); i++ {
		assert.False(t, page.Issues[i-1].LastSeen.Before(page.Issues[i].LastSeen))
	}
}

func TestFetchIssuesFilters(t *testing.T) {
	ctx := context.Background()
	database := seededDB(t, 40)

	page, err := database.FetchIssues(ctx, "acme", models.IssueQuery{Projects: []int64{2}, Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 20, page.Hits)
	for _, issue := range page.Issues {
		assert.Equal(t, int64(2), issue.ProjectID)
	}

	page, err = database.FetchIssues(ctx, "acme", models.IssueQuery{Query: "ZeroDivisionError", Limit: 100})
	require.NoError(t, err)
	assert.NotZero(t, page.Hits)
	for _, issue := range page.Issues {
		assert.Contains(t, issue.Title, "ZeroDivisionError")
	}

	// Issue i was last seen i*37 minutes before the seed time
	page, err = database.FetchIssues(ctx, "acme", models.IssueQuery{StatsPeriod: "1h", Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Hits)

	page, err = database.FetchIssues(ctx, "acme", models.IssueQuery{
		Start: "2024-06-01T11:00:00",
		End:   "2024-06-01T12:00:00",
		Limit: 100,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Hits)

	_, err = database.FetchIssues(ctx, "acme", models.IssueQuery{Cursor: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestFetchIssuesShortIDLookup(t *testing.T) {
	ctx := context.Background()
	database := seededDB(t, 10)

	page, err := database.FetchIssues(ctx, "acme", models.IssueQuery{Query: "acme-4", ShortIDLookup: true})
	require.NoError(t, err)
	require.Len(t, page.Issues, 1)
	assert.Equal(t, "ACME-4", page.Issues[0].ShortID)
	assert.Equal(t, 1, page.Hits)
	assert.False(t, page.Links.HasNext())

	// Without the flag the short id is plain text
	page, err = database.FetchIssues(ctx, "acme", models.IssueQuery{Query: "ACME-4"})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Hits)
	assert.NotEmpty(t, page.Links.Next.Cursor)
}

func TestSetIssueStatus(t *testing.T) {
	ctx := context.Background()
	database := seededDB(t, 5)

	n, err := database.SetIssueStatus(ctx, "acme", []string{"1000", "1001", "missing"}, "resolved")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	page, err := database.FetchIssues(ctx, "acme", models.IssueQuery{Query: "is:resolved"})
	require.NoError(t, err)
	// Seed already resolved issue 1003
	assert.Equal(t, 3, page.Hits)
}

func TestSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	database := seededDB(t, 5)
	require.NoError(t, database.Seed(ctx, SeedOptions{Org: "acme", IssueCount: 5}))

	list, err := database.SavedSearches().List(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, list, 4)

	// A second organization sees the globals and gets its own searches
	require.NoError(t, database.Seed(ctx, SeedOptions{Org: "globex", IssueCount: 1}))
	list, err = database.SavedSearches().List(ctx, "globex")
	require.NoError(t, err)
	assert.Len(t, list, 4)

	assert.Error(t, database.Seed(ctx, SeedOptions{}))
}

func TestFetchIssuesByEnvironment(t *testing.T) {
	database := seededDB(t, 14)
	ctx := context.Background()

	tests := []struct {
		name     string
		query    models.IssueQuery
		wantHits int
	}{
		{"all environments", models.IssueQuery{}, 14},
		{"parameter", models.IssueQuery{Environments: []string{"staging"}}, 4},
		{"several", models.IssueQuery{Environments: []string{"staging", "development"}}, 6},
		{"search token", models.IssueQuery{Query: "environment:development"}, 2},
		{"unknown", models.IssueQuery{Environments: []string{"qa"}}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page, err := database.FetchIssues(ctx, "acme", tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.wantHits, page.Hits)
			for _, issue := range page.Issues {
				if len(tt.query.Environments) > 0 {
					assert.Contains(t, tt.query.Environments, issue.Environment)
				}
			}
		})
	}
}

func TestNewAddsEnvironmentColumn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "old.db")
	conn, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	_, err = conn.Exec(`CREATE TABLE issues (
    id TEXT PRIMARY KEY,
    org TEXT NOT NULL,
    project_id INTEGER NOT NULL,
    short_id TEXT NOT NULL,
    title TEXT NOT NULL,
    culprit TEXT NOT NULL DEFAULT '',
    level TEXT NOT NULL DEFAULT 'error',
    status TEXT NOT NULL DEFAULT 'unresolved',
    priority TEXT NOT NULL DEFAULT 'medium',
    count INTEGER NOT NULL DEFAULT 0,
    user_count INTEGER NOT NULL DEFAULT 0,
    first_seen TEXT NOT NULL,
    last_seen TEXT NOT NULL
)`)
	require.NoError(t, err)
	_, err = conn.Exec(`INSERT INTO issues (id, org, project_id, short_id, title, first_seen, last_seen)
VALUES ('1', 'acme', 1, 'ACME-1', 'KeyError', '2024-06-01T10:00:00Z', '2024-06-01T11:00:00Z')`)
	require.NoError(t, err)
	require.NoError(t, conn.Close())

	database, err := New(path)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	issues, total, err := database.QueryIssues(context.Background(), "acme", models.IssueFilter{Environments: []string{DefaultEnvironment}})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, issues, 1)
	assert.Equal(t, DefaultEnvironment, issues[0].Environment)
}

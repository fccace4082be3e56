package db

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thesavant42/issuenav/internal/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	database, err := New(filepath.Join(t.TempDir(), "nested", "issuenav.db"))
	require.NoError(t, err)
	database.SetClock(func() time.Time { return time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC) })
	t.Cleanup(func() { database.Close() })
	return database
}

func TestSavedSearchCRUD(t *testing.T) {
	ctx := context.Background()
	store := newTestDB(t).SavedSearches()

	project := int64(7)
	created, err := store.Create(ctx, "acme", models.SavedSearch{Name: "Mine", Query: "assigned:me", Sort: "freq", ProjectID: &project})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)
	assert.True(t, created.IsOrgCustom)

	_, err = store.Create(ctx, "acme", models.SavedSearch{Name: "All", Query: "is:unresolved", IsGlobal: true})
	require.NoError(t, err)
	_, err = store.Create(ctx, "other", models.SavedSearch{Name: "Theirs", Query: "level:fatal"})
	require.NoError(t, err)

	list, err := store.List(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, list, 2, "own and global searches, not other orgs'")
	assert.True(t, list[0].IsGlobal)
	assert.Equal(t, "Mine", list[1].Name)
	require.NotNil(t, list[1].ProjectID)
	assert.Equal(t, int64(7), *list[1].ProjectID)
	assert.True(t, list[1].DateCreated.Equal(time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)))

	created.Query = "assigned:me is:unresolved"
	created.ProjectID = nil
	updated, err := store.Update(ctx, "acme", *created)
	require.NoError(t, err)
	assert.Equal(t, "assigned:me is:unresolved", updated.Query)
	assert.Nil(t, updated.ProjectID)

	_, err = store.Update(ctx, "other", *created)
	assert.ErrorIs(t, err, ErrSearchNotFound)

	require.NoError(t, store.Delete(ctx, "acme", created.ID))
	assert.ErrorIs(t, store.Delete(ctx, "acme", created.ID), ErrSearchNotFound)
	_, err = store.Get(ctx, "acme", created.ID)
	assert.ErrorIs(t, err, ErrSearchNotFound)
}

func TestGlobalSearchCannotBeDeleted(t *testing.T) {
	ctx := context.Background()
	store := newTestDB(t).SavedSearches()

	global, err := store.Create(ctx, "acme", models.SavedSearch{Query: "is:unresolved", IsGlobal: true})
	require.NoError(t, err)
	assert.False(t, global.IsOrgCustom)

	assert.ErrorIs(t, store.Delete(ctx, "acme", global.ID), ErrSearchNotFound)
}

func TestPinNewQueryCreatesPinOnlyRecord(t *testing.T) {
	ctx := context.Background()
	store := newTestDB(t).SavedSearches()

	pinned, err := store.Pin(ctx, "acme", models.SavedSearchTypeIssue, "is:unresolved browser:Firefox", "new")
	require.NoError(t, err)
	assert.NotEmpty(t, pinned.ID)
	assert.True(t, pinned.IsPinned)
	assert.False(t, pinned.IsOrgCustom)
	assert.Equal(t, "new", pinned.Sort)

	got, err := store.Pinned(ctx, "acme", models.SavedSearchTypeIssue)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, pinned.ID, got.ID)

	// Pin-only records disappear on unpin
	require.NoError(t, store.Unpin(ctx, "acme", models.SavedSearchTypeIssue))
	list, err := store.List(ctx, "acme")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestPinMatchingSearchFlagsIt(t *testing.T) {
	ctx := context.Background()
	store := newTestDB(t).SavedSearches()

	existing, err := store.Create(ctx, "acme", models.SavedSearch{Name: "Errors", Query: "level:error", Sort: "freq"})
	require.NoError(t, err)

	pinned, err := store.Pin(ctx, "acme", models.SavedSearchTypeIssue, "level:error", "freq")
	require.NoError(t, err)
	assert.Equal(t, existing.ID, pinned.ID)
	assert.True(t, pinned.IsPinned)
	assert.True(t, pinned.IsOrgCustom)

	// Different sort is a different search
	other, err := store.Pin(ctx, "acme", models.SavedSearchTypeIssue, "level:error", "date")
	require.NoError(t, err)
	assert.NotEqual(t, existing.ID, other.ID)

	require.NoError(t, store.Unpin(ctx, "acme", models.SavedSearchTypeIssue))
	list, err := store.List(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, list, 1, "listed search survives unpin")
	assert.Equal(t, existing.ID, list[0].ID)
	assert.False(t, list[0].IsPinned)
}

func TestAtMostOnePinPerType(t *testing.T) {
	ctx := context.Background()
	store := newTestDB(t).SavedSearches()

	for _, q := range []string{"a", "b", "c"} {
		_, err := store.Pin(ctx, "acme", models.SavedSearchTypeIssue, q, "")
		require.NoError(t, err)
	}

	list, err := store.List(ctx, "acme")
	require.NoError(t, err)
	pins := 0
	for _, s := range list {
		if s.IsPinned {
			pins++
			assert.Equal(t, "c", s.Query)
		}
	}
	assert.Equal(t, 1, pins)
}

func TestUnpinWithoutPinIsNoop(t *testing.T) {
	store := newTestDB(t).SavedSearches()
	require.NoError(t, store.Unpin(context.Background(), "acme", models.SavedSearchTypeIssue))

	got, err := store.Pinned(context.Background(), "acme", models.SavedSearchTypeIssue)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestListDatabaseFiles(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"a.db", "b.db"} {
		database, err := New(filepath.Join(dir, name))
		require.NoError(t, err)
		database.Close()
	}

	files, err := ListDatabaseFiles(dir)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.db", "b.db"}, files)
}

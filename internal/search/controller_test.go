package search

import (
	"errors"
	"net/url"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thesavant42/issuenav/internal/models"
)

// harness wires a controller to an in-memory history so every push is fed back
// through OnLocationChange, the way a browser router would.
type harness struct {
	c       *Controller
	history *History
	dir     *fakeDirectory
}

func newHarness(t *testing.T, scope Scope, dir *fakeDirectory, start string) *harness {
	t.Helper()
	if dir == nil {
		dir = &fakeDirectory{}
	}
	if scope.Org == "" {
		scope.Org = "acme"
	}

	h := &harness{dir: dir}
	c := New(Config{Scope: scope, Directory: dir})
	h.history = NewHistory(mustLocation(t, start), c.OnLocationChange)
	c.nav = h.history
	h.c = c

	c.SetSavedSearches(dir.searches)
	c.OnLocationChange(h.history.Current())
	return h
}

func mustLocation(t *testing.T, raw string) models.Location {
	t.Helper()
	loc, err := models.ParseLocation(raw)
	require.NoError(t, err)
	return loc
}

func assertQuery(t *testing.T, want url.Values, got models.Location) {
	t.Helper()
	if want == nil {
		want = url.Values{}
	}
	if diff := cmp.Diff(want, got.Query); diff != "" {
		t.Errorf("query mismatch (-want +got):\n%s", diff)
	}
}

func TestControllerStates(t *testing.T) {
	searches := []models.SavedSearch{
		{ID: "10", Name: "Assigned to me", Query: "is:unresolved assigned:me", IsOrgCustom: true},
		{ID: "11", Name: "Errors", Query: "level:error", Sort: "freq", IsGlobal: true},
	}
	pinned := models.SavedSearch{ID: "12", Query: "is:unresolved is:for_review", Sort: "new", IsPinned: true}

	tests := []struct {
		name      string
		searches  []models.SavedSearch
		location  string
		wantState State
		wantQuery string
		wantSort  string
		wantErr   error
	}{
		{
			name:      "empty location is the default view",
			searches:  searches,
			location:  "/organizations/acme/issues/",
			wantState: StateDefault,
			wantQuery: DefaultQuery,
		},
		{
			name:      "free text query",
			searches:  searches,
			location:  "/organizations/acme/issues/?query=browser.name:Firefox",
			wantState: StateCustomQuery,
			wantQuery: "browser.name:Firefox",
		},
		{
			name:      "saved search by route",
			searches:  searches,
			location:  "/organizations/acme/issues/searches/11/",
			wantState: StateSavedSearchSelected,
			wantQuery: "level:error",
			wantSort:  "freq",
		},
		{
			name:      "custom query equal to a saved search",
			searches:  searches,
			location:  "/organizations/acme/issues/?query=is:unresolved+assigned:me",
			wantState: StateSavedSearchSelected,
			wantQuery: "is:unresolved assigned:me",
		},
		{
			name:      "pinned search is the default view",
			searches:  append(append([]models.SavedSearch{}, searches...), pinned),
			location:  "/organizations/acme/issues/",
			wantState: StateSavedSearchPinned,
			wantQuery: "is:unresolved is:for_review",
			wantSort:  "new",
		},
		{
			name:      "pinned search by route",
			searches:  append(append([]models.SavedSearch{}, searches...), pinned),
			location:  "/organizations/acme/issues/searches/12/",
			wantState: StateSavedSearchPinned,
			wantQuery: "is:unresolved is:for_review",
			wantSort:  "new",
		},
		{
			name:      "custom query beats the pinned default",
			searches:  append(append([]models.SavedSearch{}, searches...), pinned),
			location:  "/organizations/acme/issues/?query=is:ignored",
			wantState: StateCustomQuery,
			wantQuery: "is:ignored",
		},
		{
			name:      "unknown id falls back to the default query",
			searches:  append(append([]models.SavedSearch{}, searches...), pinned),
			location:  "/organizations/acme/issues/searches/999/",
			wantState: StateDefault,
			wantQuery: DefaultQuery,
			wantErr:   ErrSavedSearchNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, Scope{}, &fakeDirectory{searches: tt.searches}, tt.location)

			assert.Equal(t, tt.wantState, h.c.State())
			eq := h.c.Effective()
			assert.Equal(t, tt.wantQuery, eq.Query)
			assert.Equal(t, tt.wantSort, eq.Sort)
			if tt.wantErr != nil {
				assert.ErrorIs(t, h.c.Err(), tt.wantErr)
			} else {
				assert.NoError(t, h.c.Err())
			}
		})
	}
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "default", StateDefault.String())
	assert.Equal(t, "custom-query", StateCustomQuery.String())
	assert.Equal(t, "saved-search", StateSavedSearchSelected.String())
	assert.Equal(t, "pinned-search", StateSavedSearchPinned.String())
}

func TestOnLocationChangeAdoptsSelection(t *testing.T) {
	h := newHarness(t, Scope{Selection: models.PageSelection{Projects: []int64{1}}}, nil,
		"/organizations/acme/issues/?project=5&project=6&environment=prod&statsPeriod=7d")

	sel := h.c.Scope().Selection
	assert.Equal(t, []int64{5, 6}, sel.Projects)
	assert.Equal(t, []string{"prod"}, sel.Environments)
	assert.Equal(t, "7d", sel.DateTime.Period)

	// Absent parameters keep what was adopted
	h.c.OnLocationChange(mustLocation(t, "/organizations/acme/issues/?query=foo"))
	sel = h.c.Scope().Selection
	assert.Equal(t, []int64{5, 6}, sel.Projects)
	assert.Equal(t, "7d", sel.DateTime.Period)
}

func TestOnLocationChangeAbsoluteRange(t *testing.T) {
	h := newHarness(t, Scope{}, nil,
		"/organizations/acme/issues/?start=2024-01-01T00:00:00Z&end=2024-01-02T00:00:00Z&utc=true")

	dt := h.c.Scope().Selection.DateTime
	require.True(t, dt.IsAbsolute())
	assert.True(t, dt.UTC)
	assert.Equal(t, 2024, dt.Start.Year())
}

func TestSavedSearchNotFoundClearsOnNextLocation(t *testing.T) {
	h := newHarness(t, Scope{}, nil, "/organizations/acme/issues/searches/404/")
	require.ErrorIs(t, h.c.Err(), ErrSavedSearchNotFound)

	h.c.SubmitQuery("is:resolved")
	assert.NoError(t, h.c.Err())
	assert.Equal(t, StateCustomQuery, h.c.State())
}

func TestSavedSearchListIsACopy(t *testing.T) {
	h := newHarness(t, Scope{}, &fakeDirectory{searches: []models.SavedSearch{{ID: "1", Query: "a"}}}, "/organizations/acme/issues/")

	list := h.c.SavedSearchList()
	list[0].Query = "mutated"
	assert.Equal(t, "a", h.c.SavedSearchList()[0].Query)

	sel := h.c.SelectedSearch()
	assert.Nil(t, sel)
	assert.False(t, errors.Is(h.c.Err(), ErrSavedSearchNotFound))
}

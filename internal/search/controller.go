package search

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/thesavant42/issuenav/internal/models"
)

// State is the controller's position in the saved-search state machine
type State int

const (
	StateDefault State = iota
	StateCustomQuery
	StateSavedSearchSelected
	StateSavedSearchPinned
)

func (s State) String() string {
	switch s {
	case StateCustomQuery:
		return "custom-query"
	case StateSavedSearchSelected:
		return "saved-search"
	case StateSavedSearchPinned:
		return "pinned-search"
	default:
		return "default"
	}
}

// Controller owns the reconciled query, saved search and pagination state of the
// issue list. The URL is the source of truth: every change goes out through the
// Navigator and comes back in through OnLocationChange.
type Controller struct {
	mu     sync.Mutex
	scope  Scope
	nav    Navigator
	dir    Directory
	issues IssueService
	logger *log.Logger

	location      models.Location
	query         models.LocationQuery
	effective     EffectiveQuery
	selected      *models.SavedSearch // saved search chosen by route or pin
	matched       *models.SavedSearch // known search equal to a custom query
	savedSearches []models.SavedSearch
	originCursor  string // cursor in effect when page 0 was loaded
	locationSeq   uint64 // bumped on every location change

	generation   uint64
	page         *models.IssuePage
	itemsRemoved int
	loading      bool
	err          error
}

// Config holds the collaborators of a Controller
type Config struct {
	Scope     Scope
	Navigator Navigator
	Directory Directory
	Issues    IssueService
	Logger    *log.Logger // Optional
}

// New creates a controller in the Default state
func New(cfg Config) *Controller {
	c := &Controller{
		scope:  cfg.Scope,
		nav:    cfg.Navigator,
		dir:    cfg.Directory,
		issues: cfg.Issues,
		logger: cfg.Logger,
	}
	c.location = models.Location{Pathname: IssuesPath(cfg.Scope.Org)}
	c.effective = ResolveEffectiveQuery(models.LocationQuery{}, nil, false)
	return c
}

// OnLocationChange reconciles the controller against a new URL
func (c *Controller) OnLocationChange(loc models.Location) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.applyLocation(loc)
}

// applyLocation is OnLocationChange with c.mu held
func (c *Controller) applyLocation(loc models.Location) {
	c.locationSeq++
	c.location = loc
	c.query = loc.SearchQuery()
	c.err = nil
	c.syncSelection()

	var saved *models.SavedSearch
	pinnedDefault := false

	if id := SavedSearchIDFromPath(loc.Pathname); id != "" {
		saved = c.findSavedSearch(id)
		if saved == nil {
			// Unknown id: fall back to the default query, not to the pinned search
			c.err = ErrSavedSearchNotFound
			if c.logger != nil {
				c.logger.Warn("Unknown saved search", "id", id)
			}
		}
	} else if c.query.Query == "" {
		saved = c.pinnedSearch()
		pinnedDefault = saved != nil
	}

	c.effective = ResolveEffectiveQuery(c.query, saved, pinnedDefault)
	c.selected = saved
	c.matched = nil
	if c.effective.Source == SourceCustom {
		c.matched = c.matchSavedSearch(c.effective.Query, c.effective.Sort)
	}

	if c.query.PageIndex() == 0 {
		c.originCursor = c.query.Cursor
	}
	c.itemsRemoved = 0

	if c.logger != nil {
		c.logger.Debug("Location change", "path", loc.Pathname, "query", c.effective.Query,
			"source", c.effective.Source, "cursor", c.query.Cursor, "page", c.query.PageIndex())
	}
}

// syncSelection adopts project/environment/datetime filters present in the URL.
// Absent parameters keep the current selection. Callers must hold c.mu.
func (c *Controller) syncSelection() {
	q := c.query
	if len(q.Projects) > 0 {
		c.scope.Selection.Projects = q.Projects
	}
	if len(q.Environments) > 0 {
		c.scope.Selection.Environments = q.Environments
	}
	if q.StatsPeriod != "" {
		c.scope.Selection.DateTime = models.DateTime{Period: q.StatsPeriod}
		return
	}
	if q.Start == "" || q.End == "" {
		return
	}
	start, err := time.Parse(time.RFC3339, q.Start)
	if err != nil {
		return
	}
	end, err := time.Parse(time.RFC3339, q.End)
	if err != nil {
		return
	}
	c.scope.Selection.DateTime = models.DateTime{Start: &start, End: &end, UTC: q.UTC == "true"}
}

// State classifies the current position in the saved-search state machine
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.effective.Source {
	case SourcePinned:
		return StateSavedSearchPinned
	case SourceSavedSearch:
		if c.selected != nil && c.selected.IsPinned {
			return StateSavedSearchPinned
		}
		return StateSavedSearchSelected
	case SourceCustom:
		if c.matched != nil {
			if c.matched.IsPinned {
				return StateSavedSearchPinned
			}
			return StateSavedSearchSelected
		}
		return StateCustomQuery
	default:
		return StateDefault
	}
}

// Effective returns the query and sort currently in force
func (c *Controller) Effective() EffectiveQuery {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.effective
}

// SelectedSearch returns the saved search chosen by route or pin, or nil
func (c *Controller) SelectedSearch() *models.SavedSearch {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected == nil {
		return nil
	}
	s := *c.selected
	return &s
}

// Location returns the last location applied
func (c *Controller) Location() models.Location {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.location
}

// PageIndex returns the zero-based page counter of the current location
func (c *Controller) PageIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.query.PageIndex()
}

// Scope returns the controller's scope, including any selection adopted from the URL
func (c *Controller) Scope() Scope {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.scope
}

// SetSelection replaces the page selection. It does not navigate.
func (c *Controller) SetSelection(sel models.PageSelection) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.scope.Selection = sel
}

// Err returns the inline error state, or nil
func (c *Controller) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// SavedSearchList returns a copy of the cached directory list
func (c *Controller) SavedSearchList() []models.SavedSearch {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]models.SavedSearch(nil), c.savedSearches...)
}

// SetSavedSearches replaces the cached directory list
func (c *Controller) SetSavedSearches(searches []models.SavedSearch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.savedSearches = append([]models.SavedSearch(nil), searches...)
}

// activeSearch is the saved search paging and sorting should stay within.
// Callers must hold c.mu.
func (c *Controller) activeSearch() *models.SavedSearch {
	if c.effective.Source == SourceSavedSearch || c.effective.Source == SourcePinned {
		return c.selected
	}
	return nil
}

func (c *Controller) findSavedSearch(id string) *models.SavedSearch {
	for i := range c.savedSearches {
		if c.savedSearches[i].ID == id {
			s := c.savedSearches[i]
			return &s
		}
	}
	return nil
}

func (c *Controller) pinnedSearch() *models.SavedSearch {
	for i := range c.savedSearches {
		if c.savedSearches[i].IsPinned {
			s := c.savedSearches[i]
			return &s
		}
	}
	return nil
}

func (c *Controller) matchSavedSearch(query, sort string) *models.SavedSearch {
	for i := range c.savedSearches {
		s := c.savedSearches[i]
		if s.Query != query {
			continue
		}
		if s.Sort == sort || (sort == "" && s.Sort == DefaultSort) || (s.Sort == "" && sort == DefaultSort) {
			return &s
		}
	}
	return nil
}

// push hands a location to the navigator. It must be called without c.mu held,
// since navigators commonly feed the location straight back into OnLocationChange.
func (c *Controller) push(loc models.Location) {
	if c.logger != nil {
		c.logger.Info("Navigate", "location", loc.String())
	}
	if c.nav != nil {
		c.nav.Push(loc)
	}
}

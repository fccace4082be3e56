package devserver

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thesavant42/issuenav/internal/api"
	"github.com/thesavant42/issuenav/internal/db"
	"github.com/thesavant42/issuenav/internal/models"
)

func errorBody(detail string) gin.H {
	return gin.H{"detail": detail}
}

// fail maps store errors onto status codes with a {"detail"} body
func (s *Server) fail(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, db.ErrInvalidParameter):
		status = http.StatusBadRequest
	case errors.Is(err, db.ErrSearchNotFound):
		status = http.StatusNotFound
	}
	_ = c.Error(err)
	c.AbortWithStatusJSON(status, errorBody(err.Error()))
}

// issueQueryFromRequest reads the issues endpoint parameters
func issueQueryFromRequest(c *gin.Context) (models.IssueQuery, error) {
	values := c.Request.URL.Query()
	q := models.IssueQuery{
		Query:            values.Get(models.ParamQuery),
		Sort:             values.Get(models.ParamSort),
		Cursor:           values.Get(models.ParamCursor),
		StatsPeriod:      values.Get(models.ParamStatsPeriod),
		Start:            values.Get(models.ParamStart),
		End:              values.Get(models.ParamEnd),
		UTC:              values.Get(models.ParamUTC),
		GroupStatsPeriod: values.Get(models.ParamGroupStatsPeriod),
		Environments:     values[models.ParamEnvironment],
		Collapse:         values["collapse"],
		Expand:           values["expand"],
		ShortIDLookup:    values.Get("shortIdLookup") == "1",
	}
	for _, p := range values[models.ParamProject] {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return q, db.ErrInvalidParameter
		}
		// -1 is "all projects"
		if id == -1 {
			q.Projects = nil
			break
		}
		q.Projects = append(q.Projects, id)
	}
	if limit := values.Get("limit"); limit != "" {
		n, err := strconv.Atoi(limit)
		if err != nil || n < 1 {
			return q, db.ErrInvalidParameter
		}
		q.Limit = n
	}
	return q, nil
}

func (s *Server) listIssues(c *gin.Context) {
	q, err := issueQueryFromRequest(c)
	if err != nil {
		s.fail(c, err)
		return
	}

	page, err := s.db.FetchIssues(c.Request.Context(), c.Param("org"), q)
	if err != nil {
		s.fail(c, err)
		return
	}

	page.Links.Previous.URL = pageURL(c, page.Links.Previous.Cursor)
	page.Links.Next.URL = pageURL(c, page.Links.Next.Cursor)

	c.Header("Link", api.FormatLinkHeader(page.Links))
	c.Header("X-Hits", strconv.Itoa(page.Hits))
	c.Header("X-Max-Hits", strconv.Itoa(page.MaxHits))

	issues := page.Issues
	if issues == nil {
		issues = []models.Issue{}
	}
	c.JSON(http.StatusOK, issues)
}

// pageURL is the request URL with its cursor replaced
func pageURL(c *gin.Context, cursor string) string {
	scheme := "http"
	if c.Request.TLS != nil {
		scheme = "https"
	}
	if proto := c.GetHeader("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}
	values := c.Request.URL.Query()
	values.Set(models.ParamCursor, cursor)
	u := url.URL{Scheme: scheme, Host: c.Request.Host, Path: c.Request.URL.Path, RawQuery: values.Encode()}
	return u.String()
}

func (s *Server) updateIssues(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required,oneof=resolved unresolved ignored"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	ids := c.QueryArray("id")
	if len(ids) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("No issues specified"))
		return
	}

	if _, err := s.db.SetIssueStatus(c.Request.Context(), c.Param("org"), ids, req.Status); err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": req.Status})
}

func (s *Server) listSearches(c *gin.Context) {
	if t := c.Query("type"); t != "" && t != strconv.Itoa(int(models.SavedSearchTypeIssue)) {
		c.JSON(http.StatusOK, []models.SavedSearch{})
		return
	}

	searches, err := s.db.SavedSearches().List(c.Request.Context(), c.Param("org"))
	if err != nil {
		s.fail(c, err)
		return
	}
	if searches == nil {
		searches = []models.SavedSearch{}
	}
	c.JSON(http.StatusOK, searches)
}

type searchRequest struct {
	Type      models.SavedSearchType `json:"type"`
	Name      string                 `json:"name" binding:"required"`
	Query     string                 `json:"query" binding:"required"`
	Sort      string                 `json:"sort"`
	ProjectID *int64                 `json:"projectId"`
}

func (r searchRequest) savedSearch() models.SavedSearch {
	return models.SavedSearch{Type: r.Type, Name: r.Name, Query: r.Query, Sort: r.Sort, ProjectID: r.ProjectID}
}

func (s *Server) createSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	created, err := s.db.SavedSearches().Create(c.Request.Context(), c.Param("org"), req.savedSearch())
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateSearch(c *gin.Context) {
	var req searchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	search := req.savedSearch()
	search.ID = c.Param("id")
	updated, err := s.db.SavedSearches().Update(c.Request.Context(), c.Param("org"), search)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteSearch(c *gin.Context) {
	if err := s.db.SavedSearches().Delete(c.Request.Context(), c.Param("org"), c.Param("id")); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) pinSearch(c *gin.Context) {
	var req models.PinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}
	if req.Query == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody("Query is required"))
		return
	}

	pinned, err := s.db.SavedSearches().Pin(c.Request.Context(), c.Param("org"), req.Type, req.Query, req.Sort)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, pinned)
}

func (s *Server) unpinSearch(c *gin.Context) {
	var req models.UnpinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, errorBody(err.Error()))
		return
	}

	if err := s.db.SavedSearches().Unpin(c.Request.Context(), c.Param("org"), req.Type); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

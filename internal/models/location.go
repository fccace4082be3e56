package models

import (
	"fmt"
	"net/url"
	"strconv"
)

// URL query parameter names
const (
	ParamQuery            = "query"
	ParamSort             = "sort"
	ParamCursor           = "cursor"
	ParamPage             = "page"
	ParamStatsPeriod      = "statsPeriod"
	ParamGroupStatsPeriod = "groupStatsPeriod"
	ParamProject          = "project"
	ParamEnvironment      = "environment"
	ParamStart            = "start"
	ParamEnd              = "end"
	ParamUTC              = "utc"
)

// LocationQuery is the search state carried in the URL.
// Empty strings mean the parameter is absent.
type LocationQuery struct {
	Query            string
	Sort             string
	Cursor           string
	Page             string // zero-based display counter, absent whenever Cursor is absent
	StatsPeriod      string
	GroupStatsPeriod string
	Start            string
	End              string
	UTC              string
	Projects         []int64
	Environments     []string
}

// PageIndex returns the page counter, or 0 when it is absent, invalid or has no cursor
func (q LocationQuery) PageIndex() int {
	if q.Cursor == "" || q.Page == "" {
		return 0
	}
	n, err := strconv.Atoi(q.Page)
	if err != nil || n < 0 {
		return 0
	}
	return n
}

// ParseLocationQuery reads the search state out of URL query values
func ParseLocationQuery(values url.Values) LocationQuery {
	q := LocationQuery{
		Query:            values.Get(ParamQuery),
		Sort:             values.Get(ParamSort),
		Cursor:           values.Get(ParamCursor),
		Page:             values.Get(ParamPage),
		StatsPeriod:      values.Get(ParamStatsPeriod),
		GroupStatsPeriod: values.Get(ParamGroupStatsPeriod),
		Start:            values.Get(ParamStart),
		End:              values.Get(ParamEnd),
		UTC:              values.Get(ParamUTC),
		Environments:     values[ParamEnvironment],
	}
	for _, p := range values[ParamProject] {
		id, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			continue
		}
		q.Projects = append(q.Projects, id)
	}
	if q.Cursor == "" {
		q.Page = ""
	}
	return q
}

// Values encodes the search state, skipping absent parameters
func (q LocationQuery) Values() url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set(ParamQuery, q.Query)
	set(ParamSort, q.Sort)
	set(ParamCursor, q.Cursor)
	if q.Cursor != "" {
		set(ParamPage, q.Page)
	}
	set(ParamStatsPeriod, q.StatsPeriod)
	set(ParamGroupStatsPeriod, q.GroupStatsPeriod)
	set(ParamStart, q.Start)
	set(ParamEnd, q.End)
	set(ParamUTC, q.UTC)
	for _, p := range q.Projects {
		v.Add(ParamProject, strconv.FormatInt(p, 10))
	}
	for _, e := range q.Environments {
		v.Add(ParamEnvironment, e)
	}
	return v
}

// Location is a navigation target: a pathname plus its query string
type Location struct {
	Pathname string
	Query    url.Values
}

// ParseLocation splits a path-with-query such as "/organizations/acme/issues/?query=x"
func ParseLocation(raw string) (Location, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Location{}, fmt.Errorf("invalid location %q: %w", raw, err)
	}
	return Location{Pathname: u.Path, Query: u.Query()}, nil
}

// String renders the location as pathname?query with keys in sorted order
func (l Location) String() string {
	if len(l.Query) == 0 {
		return l.Pathname
	}
	return l.Pathname + "?" + l.Query.Encode()
}

// SearchQuery returns the parsed search state of the location
func (l Location) SearchQuery() LocationQuery {
	return ParseLocationQuery(l.Query)
}

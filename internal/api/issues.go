package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/thesavant42/issuenav/internal/models"
)

// IssueQueryValues encodes an IssueQuery as issues endpoint parameters
func IssueQueryValues(q models.IssueQuery) url.Values {
	v := url.Values{}
	set := func(key, val string) {
		if val != "" {
			v.Set(key, val)
		}
	}
	set(models.ParamQuery, q.Query)
	set(models.ParamSort, q.Sort)
	set(models.ParamCursor, q.Cursor)
	set(models.ParamStatsPeriod, q.StatsPeriod)
	set(models.ParamStart, q.Start)
	set(models.ParamEnd, q.End)
	set(models.ParamUTC, q.UTC)
	set(models.ParamGroupStatsPeriod, q.GroupStatsPeriod)
	for _, p := range q.Projects {
		v.Add(models.ParamProject, strconv.FormatInt(p, 10))
	}
	for _, e := range q.Environments {
		v.Add(models.ParamEnvironment, e)
	}
	if q.Limit > 0 {
		v.Set("limit", strconv.Itoa(q.Limit))
	}
	for _, c := range q.Collapse {
		v.Add("collapse", c)
	}
	for _, e := range q.Expand {
		v.Add("expand", e)
	}
	if q.ShortIDLookup {
		v.Set("shortIdLookup", "1")
	}
	return v
}

// FetchIssues fetches a single page of issues and its pagination metadata
func (c *Client) FetchIssues(ctx context.Context, org string, q models.IssueQuery) (*models.IssuePage, error) {
	var issues []models.Issue
	header, err := c.do(ctx, http.MethodGet, orgPath(org, "issues/"), IssueQueryValues(q), nil, &issues)
	if err != nil {
		return nil, err
	}

	page := &models.IssuePage{
		Issues: issues,
		Links:  ParseLinkHeader(header.Get("Link")),
	}
	page.Hits, _ = strconv.Atoi(header.Get("X-Hits"))
	page.MaxHits, _ = strconv.Atoi(header.Get("X-Max-Hits"))
	return page, nil
}

// FetchAllIssues follows next links until the results run out or maxPages is reached.
// maxPages <= 0 means no limit.
func (c *Client) FetchAllIssues(ctx context.Context, org string, q models.IssueQuery, maxPages int, onProgress func(fetched, page int)) ([]models.Issue, error) {
	var all []models.Issue
	page := 1

	for {
		resp, err := c.FetchIssues(ctx, org, q)
		if err != nil {
			return all, err
		}

		all = append(all, resp.Issues...)

		if onProgress != nil {
			onProgress(len(all), page)
		}

		if !resp.Links.HasNext() || (maxPages > 0 && page >= maxPages) {
			return all, nil
		}

		q.Cursor = resp.Links.Next.Cursor
		page++
	}
}

// UpdateIssueStatus sets the status ("resolved", "unresolved", "ignored") of the given issues
func (c *Client) UpdateIssueStatus(ctx context.Context, org string, ids []string, status string) error {
	query := url.Values{"id": ids}
	body := map[string]string{"status": status}
	if _, err := c.do(ctx, http.MethodPut, orgPath(org, "issues/"), query, body, nil); err != nil {
		return fmt.Errorf("failed to update issues: %w", err)
	}
	return nil
}

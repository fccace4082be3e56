package ui

import (
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/thesavant42/issuenav/internal/models"
)

// IssueRow renders one issue as table cells matching IssueColumns
func IssueRow(issue models.Issue, now time.Time) []string {
	lastSeen := ""
	if !issue.LastSeen.IsZero() {
		lastSeen = humanize.RelTime(issue.LastSeen, now, "ago", "from now")
	}
	return []string{
		issue.ShortID,
		issue.Title,
		issue.Level,
		humanize.Comma(issue.Count),
		strconv.Itoa(issue.UserCount),
		lastSeen,
	}
}

// IssueRows renders a page of issues
func IssueRows(issues []models.Issue, now time.Time) [][]string {
	rows := make([][]string, len(issues))
	for i, issue := range issues {
		rows[i] = IssueRow(issue, now)
	}
	return rows
}

// SavedSearchRow renders one saved search matching SavedSearchColumns
func SavedSearchRow(s models.SavedSearch) []string {
	marker := ""
	if s.IsPinned {
		marker = "*"
	}
	owner := "org"
	switch {
	case s.IsGlobal:
		owner = "global"
	case s.IsPinned && !s.IsOrgCustom:
		owner = "me"
	}
	sort := s.Sort
	if sort == "" {
		sort = "date"
	}
	return []string{marker, s.Label(), s.Query, sort, owner}
}

// SavedSearchRows renders a saved search list
func SavedSearchRows(searches []models.SavedSearch) [][]string {
	rows := make([][]string, len(searches))
	for i, s := range searches {
		rows[i] = SavedSearchRow(s)
	}
	return rows
}

package models

import "time"

// Issue is a grouped error as returned by the issues endpoint
type Issue struct {
	ID          string    `json:"id"`
	ShortID     string    `json:"shortId"`
	Title       string    `json:"title"`
	Culprit     string    `json:"culprit"`
	Level       string    `json:"level"`    // "error", "warning", "info", "fatal"
	Status      string    `json:"status"`   // "unresolved", "resolved", "ignored"
	Priority    string    `json:"priority"` // "high", "medium", "low"
	Environment string    `json:"environment"`
	Count       int64     `json:"count,string"`
	UserCount   int       `json:"userCount"`
	FirstSeen   time.Time `json:"firstSeen"`
	LastSeen    time.Time `json:"lastSeen"`
	ProjectID   int64     `json:"projectId,string"`
}

// IssuePage is one page of issue results plus its pagination metadata
type IssuePage struct {
	Issues  []Issue
	Links   PageLinks
	Hits    int // X-Hits: total matching issues
	MaxHits int // X-Max-Hits: cap on Hits
}

// IssueQuery holds the parameters sent to the issues endpoint
type IssueQuery struct {
	Query            string
	Sort             string
	Cursor           string
	StatsPeriod      string
	Start            string
	End              string
	UTC              string
	GroupStatsPeriod string
	Projects         []int64
	Environments     []string
	Limit            int
	Collapse         []string
	Expand           []string
	ShortIDLookup    bool
}

// IssueFilter holds filter criteria for querying the local issue store
type IssueFilter struct {
	Statuses     []string // from is:<status> tokens
	Levels       []string // from level:<level> tokens
	SearchText   string   // free text matched against title, culprit and short id
	Projects     []int64
	Environments []string   // from the environment parameter and environment:<name> tokens
	Since        *time.Time // last seen at or after
	Until        *time.Time // last seen at or before
	Sort         string
	Limit        int
	Offset       int
}

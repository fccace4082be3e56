package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/thesavant42/issuenav/internal/models"
)

const (
	defaultIssueLimit = 25
	maxIssueLimit     = 100
)

var (
	// ErrInvalidParameter is wrapped by every request parameter the store rejects
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrInvalidCursor is returned for cursors not in "value:offset:isPrev" form
	ErrInvalidCursor = fmt.Errorf("%w: cursor", ErrInvalidParameter)
)

var (
	shortIDRe = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_]*-[A-Za-z0-9]+$`)
	periodRe  = regexp.MustCompile(`^(\d+)([smhdw])$`)
)

// InsertIssues inserts or replaces multiple issues for an organization
func (db *DB) InsertIssues(ctx context.Context, org string, issues []models.Issue) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertIssue)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, i := range issues {
		if i.Environment == "" {
			i.Environment = DefaultEnvironment
		}
		_, err := stmt.ExecContext(ctx,
			i.ID,
			org,
			i.ProjectID,
			i.ShortID,
			i.Title,
			i.Culprit,
			i.Level,
			i.Status,
			i.Priority,
			i.Environment,
			i.Count,
			i.UserCount,
			formatTimestamp(i.FirstSeen),
			formatTimestamp(i.LastSeen),
		)
		if err != nil {
			return fmt.Errorf("failed to insert issue %s: %w", i.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// QueryIssues returns one window of matching issues and the total match count
func (db *DB) QueryIssues(ctx context.Context, org string, filter models.IssueFilter) ([]models.Issue, int, error) {
	where, args := issueWhere(org, filter)

	var total int
	if err := db.conn.QueryRowContext(ctx, "SELECT COUNT(*) FROM issues "+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count issues: %w", err)
	}

	orderBy, ok := issueOrderBy[filter.Sort]
	if !ok {
		orderBy = issueOrderBy["date"]
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultIssueLimit
	}

	query := selectIssueColumns + where + " ORDER BY " + orderBy + ", id ASC LIMIT ? OFFSET ?"
	rows, err := db.conn.QueryContext(ctx, query, append(args, limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query issues: %w", err)
	}
	defer rows.Close()

	var issues []models.Issue
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, 0, err
		}
		issues = append(issues, issue)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to read issues: %w", err)
	}
	return issues, total, nil
}

func issueWhere(org string, f models.IssueFilter) (string, []any) {
	clauses := []string{"org = ?"}
	args := []any{org}

	in := func(column string, n int) string {
		return column + " IN (" + strings.TrimSuffix(strings.Repeat("?,", n), ",") + ")"
	}

	if len(f.Statuses) > 0 {
		clauses = append(clauses, in("status", len(f.Statuses)))
		for _, s := range f.Statuses {
			args = append(args, s)
		}
	}
	if len(f.Levels) > 0 {
		clauses = append(clauses, in("level", len(f.Levels)))
		for _, l := range f.Levels {
			args = append(args, l)
		}
	}
	if len(f.Projects) > 0 {
		clauses = append(clauses, in("project_id", len(f.Projects)))
		for _, p := range f.Projects {
			args = append(args, p)
		}
	}
	if len(f.Environments) > 0 {
		clauses = append(clauses, in("environment", len(f.Environments)))
		for _, e := range f.Environments {
			args = append(args, e)
		}
	}
	if f.SearchText != "" {
		like := "%" + f.SearchText + "%"
		clauses = append(clauses, "(title LIKE ? OR culprit LIKE ? OR short_id LIKE ?)")
		args = append(args, like, like, like)
	}
	if f.Since != nil {
		clauses = append(clauses, "last_seen >= ?")
		args = append(args, formatTimestamp(*f.Since))
	}
	if f.Until != nil {
		clauses = append(clauses, "last_seen <= ?")
		args = append(args, formatTimestamp(*f.Until))
	}

	return "WHERE " + strings.Join(clauses, " AND ") + " ", args
}

// FetchIssues answers an issues endpoint request from the local store. Link URLs are
// left empty for the HTTP layer to fill in.
func (db *DB) FetchIssues(ctx context.Context, org string, q models.IssueQuery) (*models.IssuePage, error) {
	if q.ShortIDLookup && shortIDRe.MatchString(strings.TrimSpace(q.Query)) {
		issue, err := db.issueByShortID(ctx, org, strings.TrimSpace(q.Query))
		if err != nil {
			return nil, err
		}
		if issue != nil {
			return &models.IssuePage{
				Issues:  []models.Issue{*issue},
				Links:   buildPageLinks(0, 1, 1, 1),
				Hits:    1,
				MaxHits: 1,
			}, nil
		}
	}

	filter, err := db.issueFilter(q)
	if err != nil {
		return nil, err
	}

	issues, total, err := db.QueryIssues(ctx, org, filter)
	if err != nil {
		return nil, err
	}

	return &models.IssuePage{
		Issues:  issues,
		Links:   buildPageLinks(filter.Offset, filter.Limit, len(issues), total),
		Hits:    total,
		MaxHits: total,
	}, nil
}

// issueFilter translates endpoint parameters into a store filter
func (db *DB) issueFilter(q models.IssueQuery) (models.IssueFilter, error) {
	filter := ParseSearchQuery(q.Query)
	filter.Projects = q.Projects
	filter.Environments = append(filter.Environments, q.Environments...)
	filter.Sort = q.Sort

	filter.Limit = q.Limit
	if filter.Limit <= 0 {
		filter.Limit = defaultIssueLimit
	}
	if filter.Limit > maxIssueLimit {
		filter.Limit = maxIssueLimit
	}

	offset, err := ParseCursor(q.Cursor)
	if err != nil {
		return filter, err
	}
	filter.Offset = offset

	switch {
	case q.Start != "" && q.End != "":
		start, err := parseRangeBound(q.Start)
		if err != nil {
			return filter, err
		}
		end, err := parseRangeBound(q.End)
		if err != nil {
			return filter, err
		}
		filter.Since, filter.Until = &start, &end
	case q.StatsPeriod != "":
		d, err := ParsePeriod(q.StatsPeriod)
		if err != nil {
			return filter, err
		}
		since := db.now().Add(-d)
		filter.Since = &since
	}
	return filter, nil
}

func (db *DB) issueByShortID(ctx context.Context, org, shortID string) (*models.Issue, error) {
	issue, err := scanIssue(db.conn.QueryRowContext(ctx, selectIssueByShortID, org, shortID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &issue, nil
}

// SetIssueStatus updates the status of the given issues and returns how many changed
func (db *DB) SetIssueStatus(ctx context.Context, org string, ids []string, status string) (int, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	updated := 0
	for _, id := range ids {
		res, err := tx.ExecContext(ctx, updateIssueStatus, status, org, id)
		if err != nil {
			return 0, fmt.Errorf("failed to update issue %s: %w", id, err)
		}
		n, _ := res.RowsAffected()
		updated += int(n)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return updated, nil
}

// UpdateIssueStatus is SetIssueStatus without the count, matching the REST client
func (db *DB) UpdateIssueStatus(ctx context.Context, org string, ids []string, status string) error {
	_, err := db.SetIssueStatus(ctx, org, ids, status)
	return err
}

// ParseSearchQuery splits a search string into structured filters and free text.
// is:<status> and level:<level> are understood; other key:value tokens are ignored.
func ParseSearchQuery(query string) models.IssueFilter {
	var filter models.IssueFilter
	var text []string

	for _, token := range strings.Fields(query) {
		key, value, ok := strings.Cut(token, ":")
		if !ok || value == "" {
			text = append(text, token)
			continue
		}
		switch strings.ToLower(key) {
		case "is":
			switch value {
			case "unresolved", "resolved", "ignored", "archived":
				filter.Statuses = append(filter.Statuses, value)
			}
		case "level":
			filter.Levels = append(filter.Levels, value)
		case "environment":
			filter.Environments = append(filter.Environments, value)
		}
	}

	filter.SearchText = strings.Trim(strings.Join(text, " "), `"`)
	return filter
}

// ParseCursor reads the offset out of a "value:offset:isPrev" cursor.
// An empty cursor is offset 0.
func ParseCursor(cursor string) (int, error) {
	if cursor == "" {
		return 0, nil
	}
	parts := strings.Split(cursor, ":")
	if len(parts) != 3 {
		return 0, ErrInvalidCursor
	}
	offset, err := strconv.Atoi(parts[1])
	if err != nil || offset < 0 {
		return 0, ErrInvalidCursor
	}
	if parts[2] != "0" && parts[2] != "1" {
		return 0, ErrInvalidCursor
	}
	return offset, nil
}

// FormatCursor builds a cursor for the page starting at offset
func FormatCursor(offset int, isPrev bool) string {
	return fmt.Sprintf("0:%d:%d", offset, boolToInt(isPrev))
}

// buildPageLinks computes both relations for a window of the result set
func buildPageLinks(offset, limit, returned, total int) models.PageLinks {
	prev := offset - limit
	if prev < 0 {
		prev = 0
	}
	return models.PageLinks{
		Previous: models.PageLink{Cursor: FormatCursor(prev, true), Results: offset > 0},
		Next:     models.PageLink{Cursor: FormatCursor(offset+limit, false), Results: offset+returned < total},
	}
}

// ParsePeriod parses relative stats periods such as "24h", "14d" or "2w"
func ParsePeriod(period string) (time.Duration, error) {
	m := periodRe.FindStringSubmatch(period)
	if m == nil {
		return 0, fmt.Errorf("%w: stats period %q", ErrInvalidParameter, period)
	}
	n, _ := strconv.Atoi(m[1])
	unit := map[string]time.Duration{
		"s": time.Second,
		"m": time.Minute,
		"h": time.Hour,
		"d": 24 * time.Hour,
		"w": 7 * 24 * time.Hour,
	}[m[2]]
	return time.Duration(n) * unit, nil
}

func parseRangeBound(s string) (time.Time, error) {
	for _, layout := range []string{"2006-01-02T15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: date %q", ErrInvalidParameter, s)
}

func scanIssue(row rowScanner) (models.Issue, error) {
	var i models.Issue
	var firstSeen, lastSeen string
	err := row.Scan(&i.ID, &i.ProjectID, &i.ShortID, &i.Title, &i.Culprit, &i.Level, &i.Status,
		&i.Priority, &i.Environment, &i.Count, &i.UserCount, &firstSeen, &lastSeen)
	if errors.Is(err, sql.ErrNoRows) {
		return i, err
	}
	if err != nil {
		return i, fmt.Errorf("failed to scan issue: %w", err)
	}
	i.FirstSeen, _ = parseTimestamp(firstSeen)
	i.LastSeen, _ = parseTimestamp(lastSeen)
	return i, nil
}

package db

const createSavedSearchesTable = `
CREATE TABLE IF NOT EXISTS saved_searches (
    id TEXT PRIMARY KEY,
    org TEXT NOT NULL,
    type INTEGER NOT NULL DEFAULT 0,
    name TEXT NOT NULL DEFAULT '',
    query TEXT NOT NULL,
    sort TEXT NOT NULL DEFAULT '',
    project_id INTEGER,
    is_pinned INTEGER NOT NULL DEFAULT 0,
    is_global INTEGER NOT NULL DEFAULT 0,
    is_org_custom INTEGER NOT NULL DEFAULT 0,
    date_created TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_saved_searches_org ON saved_searches(org, type);
`

// Global searches are stored with an empty org and listed for every organization
const selectSavedSearches = `
SELECT id, type, name, query, sort, project_id, is_pinned, is_global, is_org_custom, date_created
FROM saved_searches
WHERE (org = ? OR is_global = 1) AND type = ?
ORDER BY is_pinned DESC, is_global DESC, name ASC, date_created ASC
`

const selectSavedSearch = `
SELECT id, type, name, query, sort, project_id, is_pinned, is_global, is_org_custom, date_created
FROM saved_searches
WHERE id = ? AND (org = ? OR is_global = 1)
`

const insertSavedSearch = `
INSERT INTO saved_searches (
    id, org, type, name, query, sort, project_id,
    is_pinned, is_global, is_org_custom, date_created
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const updateSavedSearch = `
UPDATE saved_searches SET name = ?, query = ?, sort = ?, project_id = ?
WHERE id = ? AND org = ? AND is_global = 0
`

const deleteSavedSearch = `
DELETE FROM saved_searches WHERE id = ? AND org = ? AND is_global = 0
`

// Records that exist only as a pin disappear on unpin; listed searches just lose the flag
const deletePinOnlySearches = `
DELETE FROM saved_searches
WHERE org = ? AND type = ? AND is_pinned = 1 AND is_org_custom = 0 AND is_global = 0
`

const clearPinnedFlags = `
UPDATE saved_searches SET is_pinned = 0
WHERE (org = ? OR is_global = 1) AND type = ? AND is_pinned = 1
`

const selectMatchingSavedSearch = `
SELECT id FROM saved_searches
WHERE (org = ? OR is_global = 1) AND type = ? AND query = ? AND sort = ?
ORDER BY is_global ASC, date_created ASC
LIMIT 1
`

const setPinnedFlag = `
UPDATE saved_searches SET is_pinned = 1 WHERE id = ?
`

const createIssuesTable = `
CREATE TABLE IF NOT EXISTS issues (
    id TEXT PRIMARY KEY,
    org TEXT NOT NULL,
    project_id INTEGER NOT NULL,
    short_id TEXT NOT NULL,
    title TEXT NOT NULL,
    culprit TEXT NOT NULL DEFAULT '',
    level TEXT NOT NULL DEFAULT 'error',
    status TEXT NOT NULL DEFAULT 'unresolved',
    priority TEXT NOT NULL DEFAULT 'medium',
    environment TEXT NOT NULL DEFAULT 'production',
    count INTEGER NOT NULL DEFAULT 0,
    user_count INTEGER NOT NULL DEFAULT 0,
    first_seen TEXT NOT NULL,
    last_seen TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_issues_org ON issues(org, status);
CREATE INDEX IF NOT EXISTS idx_issues_short_id ON issues(org, short_id);
`

const insertIssue = `
INSERT OR REPLACE INTO issues (
    id, org, project_id, short_id, title, culprit, level, status,
    priority, environment, count, user_count, first_seen, last_seen
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

const selectIssueColumns = `
SELECT id, project_id, short_id, title, culprit, level, status,
    priority, environment, count, user_count, first_seen, last_seen
FROM issues
`

// Columns added after the first release, applied to older databases on open
var issueColumnMigrations = []struct {
	name string
	ddl  string
}{
	{"environment", "ALTER TABLE issues ADD COLUMN environment TEXT NOT NULL DEFAULT 'production'"},
}

// DefaultEnvironment is stored for issues inserted without one
const DefaultEnvironment = "production"

const selectIssueByShortID = selectIssueColumns + `WHERE org = ? AND short_id = ? COLLATE NOCASE`

const updateIssueStatus = `
UPDATE issues SET status = ? WHERE org = ? AND id = ?
`

// Sort keys accepted by the issues endpoint. Unknown keys fall back to date.
var issueOrderBy = map[string]string{
	"date":     "last_seen DESC",
	"new":      "first_seen DESC",
	"freq":     "count DESC",
	"user":     "user_count DESC",
	"priority": "CASE priority WHEN 'high' THEN 3 WHEN 'medium' THEN 2 WHEN 'low' THEN 1 ELSE 0 END DESC, last_seen DESC",
}

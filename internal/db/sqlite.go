package db

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
	now  func() time.Time
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	// Ensure the directory exists
	dir := filepath.Dir(dbPath)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Pin and unpin run as multi-statement transactions; one writer avoids SQLITE_BUSY
	conn.SetMaxOpenConns(1)

	// Initialize saved searches table
	if _, err := conn.Exec(createSavedSearchesTable); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create saved searches schema: %w", err)
	}

	// Initialize issues table
	if _, err := conn.Exec(createIssuesTable); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create issues schema: %w", err)
	}
	if err := migrateIssues(conn); err != nil {
		conn.Close()
		return nil, err
	}

	return &DB{conn: conn, now: time.Now}, nil
}

// migrateIssues adds issue columns missing from databases created by older versions
func migrateIssues(conn *sql.DB) error {
	rows, err := conn.Query("SELECT name FROM pragma_table_info('issues')")
	if err != nil {
		return fmt.Errorf("failed to read issues schema: %w", err)
	}
	have := map[string]bool{}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return fmt.Errorf("failed to read issues schema: %w", err)
		}
		have[name] = true
	}
	rows.Close()

	for _, m := range issueColumnMigrations {
		if have[m.name] {
			continue
		}
		if _, err := conn.Exec(m.ddl); err != nil {
			return fmt.Errorf("failed to add issues.%s: %w", m.name, err)
		}
	}
	return nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// SetClock overrides the time source used for relative stats periods
func (db *DB) SetClock(now func() time.Time) {
	db.now = now
}

// ListDatabaseFiles returns a list of .db files in the given directory
func ListDatabaseFiles(dir string) ([]string, error) {
	if dir == "" {
		dir = "."
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read directory: %w", err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if filepath.Ext(name) == ".db" {
			files = append(files, name)
		}
	}
	return files, nil
}

// formatTimestamp is the single on-disk timestamp format
func formatTimestamp(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05Z")
}

// parseTimestamp parses SQLite timestamp formats
func parseTimestamp(ts string) (time.Time, error) {
	formats := []string{
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05Z",
		time.RFC3339,
	}
	for _, format := range formats {
		if t, err := time.Parse(format, ts); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unable to parse timestamp: %s", ts)
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

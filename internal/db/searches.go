package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/thesavant42/issuenav/internal/models"
)

// ErrSearchNotFound is returned when a saved search id does not exist for the organization
var ErrSearchNotFound = errors.New("saved search not found")

// SavedSearchStore is the SQLite saved-search directory
type SavedSearchStore struct {
	db *DB
}

// SavedSearches returns the saved-search directory backed by this database
func (db *DB) SavedSearches() *SavedSearchStore {
	return &SavedSearchStore{db: db}
}

// List returns the organization's issue searches and the global ones, pinned first
func (s *SavedSearchStore) List(ctx context.Context, org string) ([]models.SavedSearch, error) {
	return s.list(ctx, org, models.SavedSearchTypeIssue)
}

func (s *SavedSearchStore) list(ctx context.Context, org string, searchType models.SavedSearchType) ([]models.SavedSearch, error) {
	rows, err := s.db.conn.QueryContext(ctx, selectSavedSearches, org, int(searchType))
	if err != nil {
		return nil, fmt.Errorf("failed to query saved searches: %w", err)
	}
	defer rows.Close()

	var searches []models.SavedSearch
	for rows.Next() {
		search, err := scanSavedSearch(rows)
		if err != nil {
			return nil, err
		}
		searches = append(searches, search)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read saved searches: %w", err)
	}
	return searches, nil
}

// Get returns one saved search visible to the organization
func (s *SavedSearchStore) Get(ctx context.Context, org, id string) (*models.SavedSearch, error) {
	search, err := scanSavedSearch(s.db.conn.QueryRowContext(ctx, selectSavedSearch, id, org))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSearchNotFound
	}
	if err != nil {
		return nil, err
	}
	return &search, nil
}

// Create stores a new organization search with a fresh id
func (s *SavedSearchStore) Create(ctx context.Context, org string, search models.SavedSearch) (*models.SavedSearch, error) {
	search.ID = uuid.NewString()
	search.IsOrgCustom = !search.IsGlobal
	search.IsPinned = false
	search.DateCreated = s.db.now().UTC().Truncate(time.Second)

	owner := org
	if search.IsGlobal {
		owner = ""
	}
	if err := insertSearch(ctx, s.db.conn, owner, search); err != nil {
		return nil, err
	}
	return &search, nil
}

// Update replaces the name, query, sort and project of an organization search
func (s *SavedSearchStore) Update(ctx context.Context, org string, search models.SavedSearch) (*models.SavedSearch, error) {
	res, err := s.db.conn.ExecContext(ctx, updateSavedSearch,
		search.Name, search.Query, search.Sort, nullableInt64(search.ProjectID), search.ID, org)
	if err != nil {
		return nil, fmt.Errorf("failed to update saved search: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, ErrSearchNotFound
	}
	return s.Get(ctx, org, search.ID)
}

// Delete removes an organization search. Global searches cannot be deleted.
func (s *SavedSearchStore) Delete(ctx context.Context, org, id string) error {
	res, err := s.db.conn.ExecContext(ctx, deleteSavedSearch, id, org)
	if err != nil {
		return fmt.Errorf("failed to delete saved search: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSearchNotFound
	}
	return nil
}

// Pin makes query/sort the pinned default. A listed search with the same query and
// sort is flagged and returned; otherwise a pin-only record is created. Any previous
// pin of the type is released first.
func (s *SavedSearchStore) Pin(ctx context.Context, org string, searchType models.SavedSearchType, query, sort string) (*models.SavedSearch, error) {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := releasePin(ctx, tx, org, searchType); err != nil {
		return nil, err
	}

	var id string
	err = tx.QueryRowContext(ctx, selectMatchingSavedSearch, org, int(searchType), query, sort).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		pinned := models.SavedSearch{
			ID:          uuid.NewString(),
			Type:        searchType,
			Query:       query,
			Sort:        sort,
			IsPinned:    true,
			DateCreated: s.db.now().UTC().Truncate(time.Second),
		}
		if err := insertSearch(ctx, tx, org, pinned); err != nil {
			return nil, err
		}
		id = pinned.ID
	case err != nil:
		return nil, fmt.Errorf("failed to look up matching search: %w", err)
	default:
		if _, err := tx.ExecContext(ctx, setPinnedFlag, id); err != nil {
			return nil, fmt.Errorf("failed to pin search: %w", err)
		}
	}

	pinned, err := scanSavedSearch(tx.QueryRowContext(ctx, selectSavedSearch, id, org))
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return &pinned, nil
}

// Unpin releases the pinned search of the type, if any
func (s *SavedSearchStore) Unpin(ctx context.Context, org string, searchType models.SavedSearchType) error {
	tx, err := s.db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := releasePin(ctx, tx, org, searchType); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// Pinned returns the organization's pinned search of the type, or nil
func (s *SavedSearchStore) Pinned(ctx context.Context, org string, searchType models.SavedSearchType) (*models.SavedSearch, error) {
	searches, err := s.list(ctx, org, searchType)
	if err != nil {
		return nil, err
	}
	for i := range searches {
		if searches[i].IsPinned {
			return &searches[i], nil
		}
	}
	return nil, nil
}

func releasePin(ctx context.Context, tx *sql.Tx, org string, searchType models.SavedSearchType) error {
	if _, err := tx.ExecContext(ctx, deletePinOnlySearches, org, int(searchType)); err != nil {
		return fmt.Errorf("failed to remove pinned search: %w", err)
	}
	if _, err := tx.ExecContext(ctx, clearPinnedFlags, org, int(searchType)); err != nil {
		return fmt.Errorf("failed to clear pinned flag: %w", err)
	}
	return nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertSearch(ctx context.Context, conn execer, org string, s models.SavedSearch) error {
	_, err := conn.ExecContext(ctx, insertSavedSearch,
		s.ID, org, int(s.Type), s.Name, s.Query, s.Sort, nullableInt64(s.ProjectID),
		boolToInt(s.IsPinned), boolToInt(s.IsGlobal), boolToInt(s.IsOrgCustom),
		formatTimestamp(s.DateCreated),
	)
	if err != nil {
		return fmt.Errorf("failed to insert saved search: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSavedSearch(row rowScanner) (models.SavedSearch, error) {
	var s models.SavedSearch
	var searchType int
	var projectID sql.NullInt64
	var pinned, global, orgCustom int
	var created string

	err := row.Scan(&s.ID, &searchType, &s.Name, &s.Query, &s.Sort, &projectID,
		&pinned, &global, &orgCustom, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return s, err
	}
	if err != nil {
		return s, fmt.Errorf("failed to scan saved search: %w", err)
	}

	s.Type = models.SavedSearchType(searchType)
	if projectID.Valid {
		id := projectID.Int64
		s.ProjectID = &id
	}
	s.IsPinned = pinned == 1
	s.IsGlobal = global == 1
	s.IsOrgCustom = orgCustom == 1
	s.DateCreated, _ = parseTimestamp(created)
	return s, nil
}

func nullableInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/thesavant42/issuenav/internal/models"
)

// SavedSearchService is the REST saved-search directory for an API client
type SavedSearchService struct {
	client *Client
}

// SavedSearches returns the saved-search directory backed by this client
func (c *Client) SavedSearches() *SavedSearchService {
	return &SavedSearchService{client: c}
}

// List returns the organization's saved searches, including the caller's pinned search
func (s *SavedSearchService) List(ctx context.Context, org string) ([]models.SavedSearch, error) {
	var searches []models.SavedSearch
	query := url.Values{"type": {fmt.Sprint(int(models.SavedSearchTypeIssue))}}
	if _, err := s.client.do(ctx, http.MethodGet, orgPath(org, "searches/"), query, nil, &searches); err != nil {
		return nil, fmt.Errorf("failed to list saved searches: %w", err)
	}
	return searches, nil
}

// Create saves a new named search
func (s *SavedSearchService) Create(ctx context.Context, org string, search models.SavedSearch) (*models.SavedSearch, error) {
	var created models.SavedSearch
	if _, err := s.client.do(ctx, http.MethodPost, orgPath(org, "searches/"), nil, search, &created); err != nil {
		return nil, fmt.Errorf("failed to create saved search: %w", err)
	}
	return &created, nil
}

// Update replaces the name, query and sort of an existing saved search
func (s *SavedSearchService) Update(ctx context.Context, org string, search models.SavedSearch) (*models.SavedSearch, error) {
	if search.ID == "" {
		return nil, fmt.Errorf("saved search has no id")
	}
	var updated models.SavedSearch
	path := orgPath(org, "searches/"+url.PathEscape(search.ID)+"/")
	if _, err := s.client.do(ctx, http.MethodPut, path, nil, search, &updated); err != nil {
		return nil, fmt.Errorf("failed to update saved search %s: %w", search.ID, err)
	}
	return &updated, nil
}

// Delete removes a saved search
func (s *SavedSearchService) Delete(ctx context.Context, org, id string) error {
	path := orgPath(org, "searches/"+url.PathEscape(id)+"/")
	if _, err := s.client.do(ctx, http.MethodDelete, path, nil, nil, nil); err != nil {
		return fmt.Errorf("failed to delete saved search %s: %w", id, err)
	}
	return nil
}

// Pin binds query/sort to the caller's default view and returns the pinned record
func (s *SavedSearchService) Pin(ctx context.Context, org string, searchType models.SavedSearchType, query, sort string) (*models.SavedSearch, error) {
	var pinned models.SavedSearch
	body := models.PinRequest{Type: searchType, Query: query, Sort: sort}
	if _, err := s.client.do(ctx, http.MethodPut, orgPath(org, "pinned-searches/"), nil, body, &pinned); err != nil {
		return nil, fmt.Errorf("failed to pin search: %w", err)
	}
	return &pinned, nil
}

// Unpin removes the caller's pinned search of the given type
func (s *SavedSearchService) Unpin(ctx context.Context, org string, searchType models.SavedSearchType) error {
	body := models.UnpinRequest{Type: searchType}
	if _, err := s.client.do(ctx, http.MethodDelete, orgPath(org, "pinned-searches/"), nil, body, nil); err != nil {
		return fmt.Errorf("failed to unpin search: %w", err)
	}
	return nil
}

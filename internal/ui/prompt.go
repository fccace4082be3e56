package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/thesavant42/issuenav/internal/models"
)

// sanitizeInput removes null bytes and other invisible control characters from input
func sanitizeInput(s string) string {
	return strings.Map(func(r rune) rune {
		if r == 0 || (r < 32 && r != '\t' && r != '\n' && r != '\r') {
			return -1
		}
		return r
	}, s)
}

// validateSearchName rejects blank names
func validateSearchName(s string) error {
	if strings.TrimSpace(sanitizeInput(s)) == "" {
		return fmt.Errorf("name cannot be empty")
	}
	return nil
}

// PromptForSearchName asks for the name of a new saved search
func PromptForSearchName(query string) (string, error) {
	var name string

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Save Search").
				Description(fmt.Sprintf("Query: %s", query)).
				Placeholder("Name").
				Value(&name).
				Validate(validateSearchName),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}

	return strings.TrimSpace(sanitizeInput(name)), nil
}

// PromptForQuery asks for a search query, prefilled with the current one
func PromptForQuery(current string) (string, error) {
	query := current

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Search Issues").
				Description("e.g. is:unresolved level:error browser:Chrome").
				Value(&query),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		return "", fmt.Errorf("prompt cancelled: %w", err)
	}

	return strings.TrimSpace(sanitizeInput(query)), nil
}

// SelectSavedSearch lets the user pick one of the listed searches
func SelectSavedSearch(title string, searches []models.SavedSearch) (*models.SavedSearch, error) {
	if len(searches) == 0 {
		return nil, fmt.Errorf("no saved searches")
	}

	opts := make([]huh.Option[int], len(searches))
	for i, s := range searches {
		label := s.Label()
		if s.IsPinned {
			label += " (pinned)"
		}
		opts[i] = huh.NewOption(label, i)
	}

	var idx int
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[int]().
				Title(title).
				Options(opts...).
				Value(&idx),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		return nil, fmt.Errorf("selection cancelled: %w", err)
	}

	selected := searches[idx]
	return &selected, nil
}

// ConfirmDelete asks the user to confirm deleting a saved search
func ConfirmDelete(search models.SavedSearch) (bool, error) {
	var confirm bool

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(fmt.Sprintf("Delete %q?", search.Label())).
				Description(search.Query).
				Affirmative("Delete").
				Negative("Cancel").
				Value(&confirm),
		),
	).WithTheme(NewAppTheme())

	if err := form.Run(); err != nil {
		return false, err
	}

	return confirm, nil
}

package cli

import (
	"fmt"
	"net/url"
	"os"

	"github.com/charmbracelet/log"
	"github.com/thesavant42/issuenav/internal/api"
	"github.com/thesavant42/issuenav/internal/config"
	"github.com/thesavant42/issuenav/internal/db"
	"github.com/thesavant42/issuenav/internal/models"
	"github.com/thesavant42/issuenav/internal/search"
	"github.com/thesavant42/issuenav/internal/ui"
)

// backend is where issues and saved searches are read from and written to
type backend struct {
	Directory search.Directory
	Issues    search.IssueService
	Status    ui.StatusUpdater
	close     func() error
}

func (b *backend) Close() error {
	if b.close == nil {
		return nil
	}
	return b.close()
}

// openBackend connects to the configured source. With fileLog set, API requests
// are logged to api.log next to the database instead of the command logger.
func openBackend(cfg *config.Config, logger *log.Logger, fileLog bool) (*backend, error) {
	switch cfg.Source {
	case config.SourceLocal:
		database, err := db.New(cfg.DBPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return &backend{
			Directory: database.SavedSearches(),
			Issues:    database,
			Status:    database,
			close:     database.Close,
		}, nil

	case config.SourceAPI:
		opts := []api.Option{api.WithRateLimit(cfg.API.RateLimit, cfg.API.Burst)}
		var client *api.Client
		if fileLog {
			client = api.NewClientWithLogging(cfg.API.BaseURL, cfg.API.Token, cfg.DBPath, opts...)
		} else {
			client = api.NewClient(cfg.API.BaseURL, cfg.API.Token, append(opts, api.WithLogger(logger))...)
		}
		return &backend{
			Directory: client.SavedSearches(),
			Issues:    client,
			Status:    client,
		}, nil

	default:
		return nil, fmt.Errorf("invalid source: %s", cfg.Source)
	}
}

// loadConfig loads and validates configuration for a command
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// newController wires a controller to an in-memory history that starts at start
func newController(cfg *config.Config, b *backend, start models.Location, logger *log.Logger) (*search.Controller, *search.History, error) {
	sel, err := cfg.PageSelection()
	if err != nil {
		return nil, nil, err
	}

	var ctrl *search.Controller
	history := search.NewHistory(start, func(loc models.Location) {
		ctrl.OnLocationChange(loc)
	})
	ctrl = search.New(search.Config{
		Scope: search.Scope{
			Org:       cfg.Org,
			Features:  search.FeatureSet{HasGlobalViews: cfg.Features.GlobalViews},
			Selection: sel,
			PageSize:  cfg.PageSize,
		},
		Navigator: history,
		Directory: b.Directory,
		Issues:    b.Issues,
		Logger:    logger,
	})
	return ctrl, history, nil
}

// locationFlags are the flags that pick the starting location of a command
type locationFlags struct {
	URL      string
	SearchID string
	Query    string
	Sort     string
	Cursor   string
	Page     int
}

// location builds the starting location. An explicit URL wins over the other flags.
func (f locationFlags) location(org string) (models.Location, error) {
	if f.URL != "" {
		loc, err := models.ParseLocation(f.URL)
		if err != nil {
			return models.Location{}, fmt.Errorf("invalid url: %w", err)
		}
		return loc, nil
	}

	path := search.IssuesPath(org)
	if f.SearchID != "" {
		path = search.SavedSearchPath(org, f.SearchID)
	}

	values := url.Values{}
	if f.Query != "" {
		values.Set(models.ParamQuery, f.Query)
	}
	if f.Sort != "" {
		values.Set(models.ParamSort, f.Sort)
	}
	if f.Cursor != "" {
		values.Set(models.ParamCursor, f.Cursor)
	}
	if f.Page > 0 {
		values.Set(models.ParamPage, fmt.Sprint(f.Page))
	}
	return models.Location{Pathname: path, Query: values}, nil
}

// isTerminal reports whether f is an interactive character device
func isTerminal(f any) bool {
	file, ok := f.(*os.File)
	if !ok {
		return false
	}
	info, err := file.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

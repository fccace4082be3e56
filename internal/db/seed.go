package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/thesavant42/issuenav/internal/models"
)

var seedTitles = []struct {
	title   string
	culprit string
}{
	{"TypeError: Cannot read properties of undefined (reading 'id')", "app/components/IssueList"},
	{"ZeroDivisionError: division by zero", "billing.invoices.totals"},
	{"ConnectionResetError: [Errno 104] Connection reset by peer", "workers.sync.fetch_batch"},
	{"ReferenceError: process is not defined", "static/app/bootstrap"},
	{"KeyError: 'organization'", "api.endpoints.organization_details"},
	{"OperationalError: database is locked", "db.sessions.commit"},
	{"TimeoutError: Navigation timeout of 30000 ms exceeded", "e2e/checkout.spec"},
	{"ValueError: invalid literal for int() with base 10", "search.parser.parse_value"},
	{"ChunkLoadError: Loading chunk 42 failed", "static/app/router"},
	{"PermissionDenied: You do not have permission", "api.permissions.check"},
	{"panic: runtime error: index out of range [3] with length 3", "ingest/consumer.go"},
	{"NullPointerException", "com.acme.payments.CheckoutService"},
}

var (
	seedLevels       = []string{"error", "error", "warning", "fatal", "info"}
	seedStatuses     = []string{"unresolved", "unresolved", "unresolved", "resolved", "ignored"}
	seedPriorities   = []string{"high", "medium", "medium", "low"}
	seedEnvironments = []string{"production", "production", "staging", "production", "development", "staging", "production"}
)

// SeedOptions controls the generated demo data
type SeedOptions struct {
	Org        string
	Projects   []int64
	IssueCount int
	Now        time.Time
}

// Seed fills the store with deterministic demo issues and a few saved searches.
// Existing issues with the same ids are replaced.
func (db *DB) Seed(ctx context.Context, opts SeedOptions) error {
	if opts.Org == "" {
		return fmt.Errorf("seed requires an organization")
	}
	if len(opts.Projects) == 0 {
		opts.Projects = []int64{1}
	}
	if opts.Now.IsZero() {
		opts.Now = db.now()
	}

	prefix := strings.ToUpper(opts.Org)
	issues := make([]models.Issue, 0, opts.IssueCount)
	for i := 0; i < opts.IssueCount; i++ {
		t := seedTitles[i%len(seedTitles)]
		lastSeen := opts.Now.Add(-time.Duration(i*37) * time.Minute)
		issues = append(issues, models.Issue{
			ID:          fmt.Sprintf("%d", 1000+i),
			ShortID:     fmt.Sprintf("%s-%d", prefix, i+1),
			Title:       t.title,
			Culprit:     t.culprit,
			Level:       seedLevels[i%len(seedLevels)],
			Status:      seedStatuses[i%len(seedStatuses)],
			Priority:    seedPriorities[i%len(seedPriorities)],
			Environment: seedEnvironments[i%len(seedEnvironments)],
			Count:       int64((i*7919)%5000 + 1),
			UserCount:   (i * 31) % 400,
			FirstSeen:   lastSeen.Add(-time.Duration(i%9+1) * 24 * time.Hour),
			LastSeen:    lastSeen,
			ProjectID:   opts.Projects[i%len(opts.Projects)],
		})
	}
	if err := db.InsertIssues(ctx, opts.Org, issues); err != nil {
		return err
	}

	existing, err := db.SavedSearches().List(ctx, opts.Org)
	if err != nil {
		return err
	}
	hasGlobal, hasOrg := false, false
	for _, s := range existing {
		hasGlobal = hasGlobal || s.IsGlobal
		hasOrg = hasOrg || s.IsOrgCustom
	}

	project := opts.Projects[0]
	searches := []models.SavedSearch{
		{Name: "Unresolved Issues", Query: "is:unresolved", IsGlobal: true},
		{Name: "Errors Only", Query: "is:unresolved level:error", Sort: "freq", IsGlobal: true},
		{Name: "Needs Triage", Query: "is:unresolved level:fatal", Sort: "new"},
		{Name: "Frontend", Query: "is:unresolved TypeError", ProjectID: &project},
	}
	for _, s := range searches {
		if (s.IsGlobal && hasGlobal) || (!s.IsGlobal && hasOrg) {
			continue
		}
		if _, err := db.SavedSearches().Create(ctx, opts.Org, s); err != nil {
			return fmt.Errorf("failed to seed saved search %q: %w", s.Name, err)
		}
	}
	return nil
}

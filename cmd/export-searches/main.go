// Export saved searches, or issues matching a query, from a local database to CSV
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/thesavant42/issuenav/internal/db"
	"github.com/thesavant42/issuenav/internal/models"
)

func main() {
	dbPath := flag.String("db", "issuenav.db", "Path to SQLite database")
	org := flag.String("org", "", "Organization slug")
	outputPath := flag.String("output", "searches.csv", "Output CSV file")
	issueQuery := flag.String("issues", "", "Export issues matching this query instead of saved searches")
	flag.Parse()

	if *org == "" {
		fmt.Fprintln(os.Stderr, "-org is required")
		os.Exit(2)
	}

	database, err := db.New(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer database.Close()

	ctx := context.Background()

	var header []string
	var rows [][]string
	what := "saved searches"
	if *issueQuery != "" {
		what = "issues"
		header, rows, err = issueRows(ctx, database, *org, *issueQuery)
	} else {
		header, rows, err = searchRows(ctx, database, *org)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query database: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output file: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	defer w.Flush()

	if err := w.Write(header); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write header: %v\n", err)
		os.Exit(1)
	}

	count := 0
	for _, row := range rows {
		if err := w.Write(row); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write row: %v\n", err)
			continue
		}
		count++
	}

	fmt.Printf("Exported %d %s to %s\n", count, what, *outputPath)
}

func searchRows(ctx context.Context, database *db.DB, org string) ([]string, [][]string, error) {
	searches, err := database.SavedSearches().List(ctx, org)
	if err != nil {
		return nil, nil, err
	}

	header := []string{"id", "name", "query", "sort", "project_id", "pinned", "global", "created"}
	rows := make([][]string, 0, len(searches))
	for _, s := range searches {
		project := ""
		if s.ProjectID != nil {
			project = strconv.FormatInt(*s.ProjectID, 10)
		}
		rows = append(rows, []string{
			s.ID, s.Name, s.Query, s.Sort, project,
			strconv.FormatBool(s.IsPinned), strconv.FormatBool(s.IsGlobal),
			s.DateCreated.Format(time.RFC3339),
		})
	}
	return header, rows, nil
}

func issueRows(ctx context.Context, database *db.DB, org, query string) ([]string, [][]string, error) {
	filter := db.ParseSearchQuery(query)
	filter.Sort = "date"

	header := []string{"id", "short_id", "title", "level", "status", "count", "users", "last_seen"}
	var rows [][]string
	for offset := 0; ; {
		filter.Offset = offset
		filter.Limit = 100
		issues, total, err := database.QueryIssues(ctx, org, filter)
		if err != nil {
			return nil, nil, err
		}
		for _, issue := range issues {
			rows = append(rows, issueRecord(issue))
		}
		offset += len(issues)
		if len(issues) == 0 || offset >= total {
			break
		}
	}
	return header, rows, nil
}

func issueRecord(issue models.Issue) []string {
	return []string{
		issue.ID, issue.ShortID, issue.Title, issue.Level, issue.Status,
		strconv.FormatInt(issue.Count, 10), strconv.Itoa(issue.UserCount),
		issue.LastSeen.Format(time.RFC3339),
	}
}

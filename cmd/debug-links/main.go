// Debug tool to inspect issue pagination headers directly
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/thesavant42/issuenav/internal/api"
	"github.com/thesavant42/issuenav/internal/models"
	"github.com/thesavant42/issuenav/internal/search"
)

func main() {
	baseURL := flag.String("base-url", api.DefaultBaseURL, "API base URL")
	org := flag.String("org", "", "Organization slug")
	query := flag.String("query", search.DefaultQuery, "Search query")
	cursor := flag.String("cursor", "", "Cursor to start from")
	pages := flag.Int("pages", 3, "Pages to follow")
	limit := flag.Int("limit", 25, "Page size")
	flag.Parse()

	if *org == "" {
		fmt.Fprintln(os.Stderr, "-org is required")
		os.Exit(2)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{
		Level:           log.DebugLevel,
		ReportTimestamp: true,
	})

	client := api.NewClient(*baseURL, os.Getenv("SENTRY_AUTH_TOKEN"), api.WithLogger(logger))
	q := models.IssueQuery{Query: *query, Cursor: *cursor, Limit: *limit}

	fmt.Printf("Testing pagination for %s\n", *org)
	fmt.Printf("Query: %s\n", api.IssueQueryValues(q).Encode())

	for page := 0; page < *pages; page++ {
		fmt.Printf("\n--- Page %d (cursor %q) ---\n", page, q.Cursor)
		resp, err := client.FetchIssues(context.Background(), *org, q)
		if err != nil {
			fmt.Printf("ERROR: %v\n", err)
			os.Exit(1)
		}

		fmt.Printf("Issues: %d\n", len(resp.Issues))
		fmt.Printf("X-Hits: %d  X-Max-Hits: %d\n", resp.Hits, resp.MaxHits)
		fmt.Printf("Previous: results=%v cursor=%s\n", resp.Links.Previous.Results, resp.Links.Previous.Cursor)
		fmt.Printf("Next:     results=%v cursor=%s\n", resp.Links.Next.Results, resp.Links.Next.Cursor)
		fmt.Printf("Caption:  %s\n", search.PaginationCaption(len(resp.Issues), resp.Hits, 0, resp.Links, page, *limit))

		if !resp.Links.HasNext() {
			fmt.Println("\nNo more pages")
			break
		}
		q.Cursor = resp.Links.Next.Cursor
	}
}

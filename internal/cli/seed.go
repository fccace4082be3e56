package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/huh/spinner"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/thesavant42/issuenav/internal/db"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the local database with demo issues and searches",
	Long: `Fill the local SQLite database with deterministic demo issues and a few
global and organization saved searches. Seeding again replaces the issues and
keeps existing searches.

Examples:
  issuenav seed --org acme --issues 500
  issuenav seed --org acme --projects 1,2,3`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)

	seedCmd.Flags().Int("issues", 100, "Number of issues to generate")
	seedCmd.Flags().Int64Slice("projects", nil, "Project ids to spread issues across")
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	n, _ := cmd.Flags().GetInt("issues")
	projects, _ := cmd.Flags().GetInt64Slice("projects")
	if len(projects) == 0 {
		projects = cfg.Selection.Projects
	}

	if isTerminal(cmd.OutOrStdout()) {
		var seedErr error
		err := spinner.New().
			Title(fmt.Sprintf("Seeding %s issues...", humanize.Comma(int64(n)))).
			Action(func() {
				seedErr = seed(cmd.Context(), database, cfg.Org, projects, n)
			}).
			Run()
		if err != nil {
			return fmt.Errorf("spinner error: %w", err)
		}
		if seedErr != nil {
			return seedErr
		}
	} else if err := seed(cmd.Context(), database, cfg.Org, projects, n); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s issues for %s into %s\n", humanize.Comma(int64(n)), cfg.Org, cfg.DBPath)
	return nil
}

func seed(ctx context.Context, database *db.DB, org string, projects []int64, n int) error {
	if err := database.Seed(ctx, db.SeedOptions{Org: org, Projects: projects, IssueCount: n}); err != nil {
		return fmt.Errorf("failed to seed database: %w", err)
	}
	return nil
}

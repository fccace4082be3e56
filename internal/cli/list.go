package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/thesavant42/issuenav/internal/models"
	"github.com/thesavant42/issuenav/internal/search"
	"github.com/thesavant42/issuenav/internal/ui"
)

var listFlags locationFlags

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List one page of issues",
	Long: `List one page of issues for the organization.

The query and sort resolve the same way as in the browser: an explicit query
wins, then the selected or pinned saved search, then the default query.
The next page is printed as a --url to pass back to this command.

Examples:
  issuenav list                                  # Pinned search or is:unresolved
  issuenav list --query "level:error" --sort freq
  issuenav list --search 42                      # Saved search by id
  issuenav list --url "/organizations/acme/issues/?cursor=0:25:0&page=1"
  issuenav list --all --max-pages 5 --json`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	rootCmd.AddCommand(listCmd)

	addLocationFlags(listCmd, &listFlags)
	listCmd.Flags().Bool("json", false, "Print issues as JSON")
	listCmd.Flags().Bool("all", false, "Follow next-page cursors until the last page")
	listCmd.Flags().Int("max-pages", 10, "Page limit for --all (0 = no limit)")
}

func addLocationFlags(cmd *cobra.Command, f *locationFlags) {
	cmd.Flags().StringVar(&f.URL, "url", "", "Start from a path with query, e.g. /organizations/acme/issues/?query=x")
	cmd.Flags().StringVar(&f.SearchID, "search", "", "Saved search id")
	cmd.Flags().StringVarP(&f.Query, "query", "q", "", "Search query")
	cmd.Flags().StringVar(&f.Sort, "sort", "", "Sort: date, new, freq, user, priority")
	cmd.Flags().StringVar(&f.Cursor, "cursor", "", "Pagination cursor")
	cmd.Flags().IntVar(&f.Page, "page", 0, "Page counter that goes with --cursor")
}

func runList(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), "list")

	b, err := openBackend(cfg, logger, false)
	if err != nil {
		return err
	}
	defer b.Close()

	start, err := listFlags.location(cfg.Org)
	if err != nil {
		return err
	}
	ctrl, _, err := newController(cfg, b, start, logger)
	if err != nil {
		return err
	}

	load := func() error { return ctrl.Load(ctx, start) }
	if isTerminal(cmd.OutOrStdout()) {
		err = ui.RunWithSpinner("Loading issues...", load, tea.WithOutput(cmd.ErrOrStderr()))
	} else {
		err = load()
	}
	if err != nil {
		return fmt.Errorf("failed to load issues: %w", err)
	}
	if err := ctrl.Err(); err != nil {
		logger.Warn("Showing default view", "error", err)
	}

	all, _ := cmd.Flags().GetBool("all")
	asJSON, _ := cmd.Flags().GetBool("json")
	maxPages, _ := cmd.Flags().GetInt("max-pages")
	out := cmd.OutOrStdout()

	page := ctrl.Page()
	if page == nil {
		return fmt.Errorf("no results loaded")
	}
	issues := page.Issues
	if all {
		issues, err = collectPages(ctx, ctrl, maxPages)
		if err != nil {
			return err
		}
	}

	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(issues)
	}

	printHeader(out, ctrl)
	fmt.Fprintln(out, renderIssueTable(issues, time.Now()))
	fmt.Fprintln(out, ctrl.Caption())

	if !all {
		if next, ok := ctrl.NextPage(); ok {
			fmt.Fprintf(out, "Next page: issuenav list --url '%s'\n", next.String())
		}
	}
	return nil
}

// collectPages keeps following next-page cursors from the loaded page
func collectPages(ctx context.Context, ctrl *search.Controller, maxPages int) ([]models.Issue, error) {
	issues := append([]models.Issue(nil), ctrl.Page().Issues...)
	for pages := 1; maxPages <= 0 || pages < maxPages; pages++ {
		if _, ok := ctrl.NextPage(); !ok {
			break
		}
		if err := ctrl.Refresh(ctx); err != nil {
			return nil, err
		}
		issues = append(issues, ctrl.Page().Issues...)
	}
	return issues, nil
}

func printHeader(w io.Writer, ctrl *search.Controller) {
	eq := ctrl.Effective()
	sort := eq.Sort
	if sort == "" {
		sort = search.DefaultSort
	}
	header := fmt.Sprintf("%s  query: %s  sort: %s", ctrl.State(), eq.Query, sort)
	if sel := ctrl.SelectedSearch(); sel != nil {
		header = fmt.Sprintf("%s (%s)", header, sel.Label())
	}
	fmt.Fprintln(w, ui.AccentStyle.Render(header))
}

// renderIssueTable renders issues with the same columns as the browser
func renderIssueTable(issues []models.Issue, now time.Time) string {
	specs := ui.IssueColumns()
	headers := make([]string, len(specs))
	for i, s := range specs {
		headers[i] = s.Title
	}

	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ui.ColorBorder)).
		Headers(headers...).
		Rows(ui.IssueRows(issues, now)...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return ui.TitleStyle.Padding(0, 1)
			}
			return ui.NormalStyle.Padding(0, 1)
		}).
		String()
}

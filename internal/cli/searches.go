package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"github.com/thesavant42/issuenav/internal/models"
	"github.com/thesavant42/issuenav/internal/search"
	"github.com/thesavant42/issuenav/internal/ui"
)

var searchesCmd = &cobra.Command{
	Use:     "searches",
	Aliases: []string{"search"},
	Short:   "Manage saved and pinned searches",
	Long: `List, save, delete, pin and unpin saved issue searches.

Examples:
  issuenav searches list
  issuenav searches save "Checkout errors" --query "level:error url:*checkout*" --sort freq
  issuenav searches pin --query "is:unresolved assigned:me"
  issuenav searches pin --search 42
  issuenav searches unpin
  issuenav searches delete 42`,
}

var searchesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved searches, pinned first",
	Args:  cobra.NoArgs,
	RunE:  runSearchesList,
}

var searchesSaveCmd = &cobra.Command{
	Use:   "save [name]",
	Short: "Save a query under a name",
	Long: `Save a query and sort under a name. Without a name argument the name is
prompted for.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearchesSave,
}

var searchesDeleteCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete an organization saved search",
	Long:  `Delete a saved search by id. Without an id the search is picked interactively.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runSearchesDelete,
}

var searchesPinCmd = &cobra.Command{
	Use:   "pin",
	Short: "Pin a query as your default view",
	Args:  cobra.NoArgs,
	RunE:  runSearchesPin,
}

var searchesUnpinCmd = &cobra.Command{
	Use:   "unpin",
	Short: "Remove your pinned search",
	Args:  cobra.NoArgs,
	RunE:  runSearchesUnpin,
}

func init() {
	rootCmd.AddCommand(searchesCmd)
	searchesCmd.AddCommand(searchesListCmd, searchesSaveCmd, searchesDeleteCmd, searchesPinCmd, searchesUnpinCmd)

	for _, c := range []*cobra.Command{searchesSaveCmd, searchesPinCmd} {
		c.Flags().StringP("query", "q", "", "Search query")
		c.Flags().String("sort", "", "Sort: date, new, freq, user, priority")
	}
	searchesPinCmd.Flags().String("search", "", "Pin an existing saved search by id")
	searchesDeleteCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
}

// searchSession is a controller with its directory loaded
type searchSession struct {
	ctrl *search.Controller
	b    *backend
}

func openSearchSession(cmd *cobra.Command, start func(org string) (locationFlags, error)) (*searchSession, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger(cmd.ErrOrStderr(), "searches")

	b, err := openBackend(cfg, logger, false)
	if err != nil {
		return nil, err
	}

	flags := locationFlags{}
	if start != nil {
		if flags, err = start(cfg.Org); err != nil {
			b.Close()
			return nil, err
		}
	}
	loc, err := flags.location(cfg.Org)
	if err != nil {
		b.Close()
		return nil, err
	}

	ctrl, _, err := newController(cfg, b, loc, logger)
	if err != nil {
		b.Close()
		return nil, err
	}
	if _, err := ctrl.LoadSavedSearches(cmd.Context()); err != nil {
		b.Close()
		return nil, err
	}
	ctrl.OnLocationChange(loc)
	return &searchSession{ctrl: ctrl, b: b}, nil
}

func (s *searchSession) Close() error {
	return s.b.Close()
}

// queryFlags reads --query and --sort into location flags
func queryFlags(cmd *cobra.Command) func(org string) (locationFlags, error) {
	return func(org string) (locationFlags, error) {
		query, _ := cmd.Flags().GetString("query")
		sort, _ := cmd.Flags().GetString("sort")
		return locationFlags{Query: query, Sort: sort}, nil
	}
}

func runSearchesList(cmd *cobra.Command, args []string) error {
	s, err := openSearchSession(cmd, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	printSavedSearches(cmd.OutOrStdout(), s.ctrl.SavedSearchList())
	return nil
}

func printSavedSearches(w io.Writer, searches []models.SavedSearch) {
	if len(searches) == 0 {
		fmt.Fprintln(w, "No saved searches found.")
		return
	}

	specs := ui.SavedSearchColumns()
	headers := make([]string, 0, len(specs)+1)
	headers = append(headers, "ID")
	for _, spec := range specs {
		headers = append(headers, spec.Title)
	}

	rows := make([][]string, len(searches))
	for i, s := range searches {
		rows[i] = append([]string{s.ID}, ui.SavedSearchRow(s)...)
	}

	fmt.Fprintln(w, table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ui.ColorBorder)).
		Headers(headers...).
		Rows(rows...).
		String())
}

func runSearchesSave(cmd *cobra.Command, args []string) error {
	if query, _ := cmd.Flags().GetString("query"); query == "" && isTerminal(os.Stdin) {
		query, err := ui.PromptForQuery(search.DefaultQuery)
		if err != nil {
			return err
		}
		_ = cmd.Flags().Set("query", query)
	}

	s, err := openSearchSession(cmd, queryFlags(cmd))
	if err != nil {
		return err
	}
	defer s.Close()

	var name string
	if len(args) > 0 {
		name = args[0]
	} else {
		if name, err = ui.PromptForSearchName(s.ctrl.Effective().Query); err != nil {
			return err
		}
	}

	created, err := s.ctrl.SaveSearch(cmd.Context(), name)
	if err != nil {
		return fmt.Errorf("failed to save search: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %q as %s\n", created.Label(), created.ID)
	return nil
}

func runSearchesDelete(cmd *cobra.Command, args []string) error {
	s, err := openSearchSession(cmd, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	target, err := pickSearch(s.ctrl, args, "Delete which search?", func(saved models.SavedSearch) bool {
		return saved.IsOrgCustom
	})
	if err != nil {
		return err
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		ok, err := ui.ConfirmDelete(*target)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	if err := s.ctrl.DeleteSearch(cmd.Context(), *target); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Deleted %q\n", target.Label())
	return nil
}

// pickSearch finds the search named by args[0], or asks for one among those keep accepts
func pickSearch(ctrl *search.Controller, args []string, title string, keep func(models.SavedSearch) bool) (*models.SavedSearch, error) {
	list := ctrl.SavedSearchList()
	if len(args) > 0 {
		for _, saved := range list {
			if saved.ID == args[0] {
				return &saved, nil
			}
		}
		return nil, fmt.Errorf("%w: %s", search.ErrSavedSearchNotFound, args[0])
	}

	var candidates []models.SavedSearch
	for _, saved := range list {
		if keep(saved) {
			candidates = append(candidates, saved)
		}
	}
	return ui.SelectSavedSearch(title, candidates)
}

func runSearchesPin(cmd *cobra.Command, args []string) error {
	id, _ := cmd.Flags().GetString("search")
	start := queryFlags(cmd)
	if id != "" {
		start = func(org string) (locationFlags, error) {
			return locationFlags{SearchID: id}, nil
		}
	}

	s, err := openSearchSession(cmd, start)
	if err != nil {
		return err
	}
	defer s.Close()

	if err := s.ctrl.Err(); err != nil {
		return fmt.Errorf("%w: %s", err, id)
	}

	pinned, err := s.ctrl.PinCurrent(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to pin search: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Pinned %q (%s)\nDefault view: %s\n",
		pinned.Query, pinned.ID, s.ctrl.Location().String())
	return nil
}

func runSearchesUnpin(cmd *cobra.Command, args []string) error {
	s, err := openSearchSession(cmd, nil)
	if err != nil {
		return err
	}
	defer s.Close()

	return unpin(cmd.Context(), cmd.OutOrStdout(), s.ctrl)
}

func unpin(ctx context.Context, w io.Writer, ctrl *search.Controller) error {
	var pinned *models.SavedSearch
	for _, saved := range ctrl.SavedSearchList() {
		if saved.IsPinned {
			pinned = &saved
			break
		}
	}
	if pinned == nil {
		fmt.Fprintln(w, "No pinned search.")
		return nil
	}

	if err := ctrl.Unpin(ctx, *pinned); err != nil {
		return fmt.Errorf("failed to unpin search: %w", err)
	}
	fmt.Fprintf(w, "Unpinned %q\nNow showing: %s\n", pinned.Label(), ctrl.Location().String())
	return nil
}

package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/thesavant42/issuenav/internal/ui"
)

var browseFlags locationFlags

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse issues interactively",
	Long: `Open the interactive issue browser.

Keys:
  n/p      next/previous page
  /        edit the query
  s        cycle sort
  tab      cycle saved searches
  P/U      pin the current search / unpin
  r        resolve the selected issue
  b/f      history back/forward
  q        quit

Logs are written to issuenav.log next to the database.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

func init() {
	rootCmd.AddCommand(browseCmd)
	addLocationFlags(browseCmd, &browseFlags)
}

func runBrowse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// The terminal belongs to the browser, so logs go to a file
	logPath := filepath.Join(filepath.Dir(cfg.DBPath), "issuenav.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer f.Close()
	logger := newLogger(f, "browse")
	logger.SetTimeFormat(time.RFC3339)
	if logger.GetLevel() > log.InfoLevel {
		logger.SetLevel(log.InfoLevel)
	}

	b, err := openBackend(cfg, logger, true)
	if err != nil {
		return err
	}
	defer b.Close()

	start, err := browseFlags.location(cfg.Org)
	if err != nil {
		return err
	}
	ctrl, history, err := newController(cfg, b, start, logger)
	if err != nil {
		return err
	}

	return ui.RunBrowser(cmd.Context(), ui.BrowserOptions{
		Controller: ctrl,
		History:    history,
		Status:     b.Status,
		Logger:     logger,
	})
}

package cli

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/thesavant42/issuenav/internal/db"
	"github.com/thesavant42/issuenav/internal/devserver"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the local database over the issues API",
	Long: `Serve issues and saved searches from the local SQLite database with the
same endpoints and pagination headers as the hosted API.

Point another issuenav at it with --base-url http://localhost:8080.

Examples:
  issuenav serve --db dev.db --seed 200
  issuenav serve --addr 127.0.0.1:9000 --rate-limit 5`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("addr", "", "Listen address (default :8080)")
	serveCmd.Flags().String("server-token", "", "Require this bearer token")
	serveCmd.Flags().Float64("rate-limit", 0, "Requests per second per client (0 = unlimited)")
	serveCmd.Flags().Int("seed", 0, "Seed this many issues before serving")

	_ = viper.BindPFlag("server.addr", serveCmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("server.token", serveCmd.Flags().Lookup("server-token"))
	_ = viper.BindPFlag("server.rate_limit", serveCmd.Flags().Lookup("rate-limit"))
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(cmd.ErrOrStderr(), "serve")
	if !viper.GetBool("verbose") {
		logger.SetLevel(log.InfoLevel)
	}

	database, err := db.New(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if n, _ := cmd.Flags().GetInt("seed"); n > 0 {
		if err := seed(ctx, database, cfg.Org, cfg.Selection.Projects, n); err != nil {
			return err
		}
		logger.Info("Seeded database", "org", cfg.Org, "issues", n)
	}

	srv := devserver.New(database, devserver.Options{
		Logger:    logger,
		Token:     cfg.Server.Token,
		RateLimit: cfg.Server.RateLimit,
		Burst:     cfg.Server.Burst,
	})
	return srv.Run(ctx, cfg.Server.Addr)
}

package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Version is set via ldflags:
// go build -ldflags="-X github.com/thesavant42/issuenav/internal/cli.Version=v1.0.0"
var Version = "dev"

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "issuenav",
	Short: "issuenav - browse, page and pin issue searches from the terminal",
	Long: `issuenav lists issues for an organization, pages through them with the
server's Link-header cursors, and manages saved and pinned searches.

It talks to the hosted issues API, or to a local SQLite database that can be
seeded and served over HTTP for offline development.

Example:
  issuenav list --org acme --query "is:unresolved level:error" --sort freq
  issuenav browse --org acme`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.Version = Version
	rootCmd.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is .issuenav.yaml)")
	flags.Bool("verbose", false, "enable verbose output")
	flags.String("org", "", "organization slug")
	flags.String("source", "", "where issues come from: api or local")
	flags.String("db", "", "path to the local SQLite database")
	flags.String("base-url", "", "issues API base URL")
	flags.String("token", "", "API auth token (default $SENTRY_AUTH_TOKEN)")
	flags.Int("page-size", 0, "issues per page")

	_ = viper.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = viper.BindPFlag("org", flags.Lookup("org"))
	_ = viper.BindPFlag("source", flags.Lookup("source"))
	_ = viper.BindPFlag("db_path", flags.Lookup("db"))
	_ = viper.BindPFlag("api.base_url", flags.Lookup("base-url"))
	_ = viper.BindPFlag("api.token", flags.Lookup("token"))
	_ = viper.BindPFlag("page_size", flags.Lookup("page-size"))
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		cwd, err := os.Getwd()
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error getting working directory:", err)
			os.Exit(1)
		}

		viper.AddConfigPath(cwd)
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigType("yaml")
		viper.SetConfigName(".issuenav")
	}

	viper.SetEnvPrefix("ISSUENAV")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

// newLogger builds the command logger. Verbose enables debug output.
func newLogger(w io.Writer, prefix string) *log.Logger {
	level := log.WarnLevel
	if viper.GetBool("verbose") {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           level,
		ReportTimestamp: true,
		TimeFormat:      time.Kitchen,
		Prefix:          prefix,
	})
}

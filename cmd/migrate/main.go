// Package main provides the migrate CLI, which converts Fedora CSV exports
// into Drupal 8+ content and migrate map tables.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fedora-migrate/internal/config"
	"github.com/JonMunkholm/fedora-migrate/internal/core"
	_ "github.com/JonMunkholm/fedora-migrate/internal/core/entities" // Register all entities
	"github.com/JonMunkholm/fedora-migrate/internal/logging"
)

// Set by -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
)

// Global flags
var (
	configFile string
	logLevel   string
	logFormat  string
	inputDir   string
)

var rootCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Convert Fedora CSV exports into Drupal content",
	Long: `migrate assigns Drupal ids to the users, files, media, media revisions and
nodes of a Fedora CSV export, resolves the references between them and writes
the content together with Drupal's migrate map tables.

Every run starts from an empty id space: load the output into a site that
holds no migrated content yet.

Examples:
  migrate check --input ./export                      # Validate the export
  migrate generate --input ./export --output ./out    # Write out/migrate.sql
  migrate apply --input ./export --driver postgres \
      --database-url postgres://drupal@localhost/drupal`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")
	rootCmd.PersistentFlags().StringVarP(&inputDir, "input", "i", "", "Directory holding the Fedora CSV exports")

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(applyCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	// Load .env file if it exists; real environment variables win.
	if err := godotenv.Load(); err == nil {
		slog.Debug("loaded .env file")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		if msg := core.FormatUserError(err); core.IsUserFacing(err) {
			fmt.Fprintln(os.Stderr, "Error: "+msg)
			fmt.Fprintln(os.Stderr, "  "+err.Error())
		} else {
			fmt.Fprintln(os.Stderr, "Error: "+err.Error())
		}
		stop()
		os.Exit(1)
	}
}

// loadConfig loads configuration and applies the global flags on top.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level = logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = logFormat
	}
	if flags.Changed("input") {
		cfg.Source.Dir = inputDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())
	return cfg, nil
}

// runContext tags ctx with a fresh run id.
func runContext(cmd *cobra.Command) context.Context {
	return core.ContextWithRunID(cmd.Context(), uuid.NewString())
}

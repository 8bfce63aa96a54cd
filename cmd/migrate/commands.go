package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/fedora-migrate/internal/application"
	"github.com/JonMunkholm/fedora-migrate/internal/core"
	"github.com/JonMunkholm/fedora-migrate/internal/logging"
)

var (
	outputDir    string
	skipManifest bool
	jsonOutput   bool
	driver       string
	databaseURL  string
	batchSize    int
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate an export without writing anything",
	Long: `Run the whole migration in memory and report what it would produce.

Fails on the first missing file, malformed row or unresolved reference, with
the file and line that caused it.`,
	Args: cobra.NoArgs,
	RunE: runCheck,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Write a MySQL script that loads the export",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Load the export straight into a Drupal database",
	Long: `Load the export into a MySQL or PostgreSQL Drupal database in one
transaction. The migrate map tables are dropped and recreated.`,
	Args: cobra.NoArgs,
	RunE: runApply,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "migrate %s (%s)\n", version, commit)
	},
}

func init() {
	checkCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the summary as JSON")

	generateCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory for migrate.sql and the manifest")
	generateCmd.Flags().BoolVar(&skipManifest, "no-manifest", false, "Do not write migrate_manifest.json")

	applyCmd.Flags().StringVar(&driver, "driver", "", "Database driver: mysql or postgres")
	applyCmd.Flags().StringVar(&databaseURL, "database-url", "", "Database DSN or URL")
	applyCmd.Flags().IntVar(&batchSize, "batch-size", 0, "Rows per INSERT statement (mysql)")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	res, err := application.NewRunner(cfg).Check(runContext(cmd))
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(res.Summary)
	}
	printSummary(cmd.OutOrStdout(), res.Summary)
	return nil
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("output") {
		cfg.Output.Dir = outputDir
	}
	if cmd.Flags().Changed("no-manifest") {
		cfg.Output.SkipManifest = skipManifest
	}

	ctx := runContext(cmd)
	res, err := application.NewRunner(cfg).Generate(ctx)
	if err != nil {
		return err
	}

	logging.FromContext(ctx).Info("script written", "path", res.SQLPath, "manifest", res.ManifestPath)
	printSummary(cmd.OutOrStdout(), res.Summary)
	return nil
}

func runApply(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.Database.Driver = driver
	}
	if flags.Changed("database-url") {
		cfg.Database.URL = databaseURL
	}
	if flags.Changed("batch-size") {
		cfg.Database.BatchSize = batchSize
	}

	res, err := application.NewRunner(cfg).Apply(runContext(cmd))
	if err != nil {
		return err
	}
	printSummary(cmd.OutOrStdout(), res.Summary)
	return nil
}

func printSummary(w io.Writer, s *core.Summary) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ENTITY\tREAD\tDISTINCT\tPINNED\tIDS")
	for _, e := range s.Entities {
		ids := "-"
		if e.FirstID >= 0 {
			ids = fmt.Sprintf("%d-%d", e.FirstID, e.LastID)
		}
		name := e.Label
		if name == "" {
			name = string(e.Type)
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\n", name, e.Read, e.Distinct, e.Pinned, ids)
	}
	tw.Flush()
	if s.RunID != "" {
		fmt.Fprintf(w, "run %s\n", s.RunID)
	}
}

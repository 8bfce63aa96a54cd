// Package application wires configuration, the CSV loader, the identifier
// engine and the output writers into the migrator's three operations.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/JonMunkholm/fedora-migrate/internal/config"
	"github.com/JonMunkholm/fedora-migrate/internal/core"
	"github.com/JonMunkholm/fedora-migrate/internal/drupal"
	"github.com/JonMunkholm/fedora-migrate/internal/logging"
	"github.com/JonMunkholm/fedora-migrate/internal/output"
	"github.com/JonMunkholm/fedora-migrate/internal/source"
)

// Runner executes migrations with one configuration.
type Runner struct {
	cfg    *config.Config
	schema *drupal.Schema
}

// NewRunner creates a runner. Entity definitions must already be registered.
func NewRunner(cfg *config.Config) *Runner {
	schema := drupal.NewSchema()
	schema.Langcode = cfg.Migration.Langcode
	schema.NodeType = cfg.Migration.NodeType
	return &Runner{cfg: cfg, schema: schema}
}

// Schema returns the destination schema, so callers can replace its clock
// or uuid source.
func (r *Runner) Schema() *drupal.Schema {
	return r.schema
}

// Result describes a finished run.
type Result struct {
	Summary      *core.Summary
	SQLPath      string
	ManifestPath string
}

// Check processes the whole export without writing anything.
func (r *Runner) Check(ctx context.Context) (*Result, error) {
	summary, err := r.run(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Result{Summary: summary}, nil
}

// Generate writes the SQL script and, unless disabled, the manifest.
func (r *Runner) Generate(ctx context.Context) (*Result, error) {
	out := r.cfg.Output
	if err := os.MkdirAll(out.Dir, 0o755); err != nil {
		return nil, core.OutputWrite("", fmt.Errorf("create output directory: %w", err))
	}

	res := &Result{SQLPath: filepath.Join(out.Dir, out.SQLFile)}
	dump, err := output.CreateSQLDump(res.SQLPath)
	if err != nil {
		return nil, core.OutputWrite("", err)
	}

	var opts []output.EmitterOption
	if !out.SkipManifest {
		res.ManifestPath = filepath.Join(out.Dir, out.ManifestFile)
		opts = append(opts, output.WithManifest(output.NewManifest(res.ManifestPath, core.RunIDFromContext(ctx))))
	}

	emitter := output.NewEmitter(r.schema, []output.Writer{dump}, append(opts, output.WithLogger(logging.FromContext(ctx)))...)
	res.Summary, err = r.run(ctx, emitter)
	if err != nil {
		return nil, err
	}
	return res, nil
}

// Apply loads the export straight into the configured database.
func (r *Runner) Apply(ctx context.Context) (*Result, error) {
	if err := r.cfg.ValidateForApply(); err != nil {
		return nil, err
	}

	logger := logging.WithFields(ctx, "driver", r.cfg.Database.Driver)

	writer, err := r.connect(ctx, logger)
	if err != nil {
		return nil, core.OutputWrite("", err)
	}

	emitter := output.NewEmitter(r.schema, []output.Writer{writer}, output.WithLogger(logger))
	summary, err := r.run(ctx, emitter)
	if err != nil {
		return nil, err
	}
	logger.Info("database load committed")
	return &Result{Summary: summary}, nil
}

// run processes every registered entity type. A nil emitter is a dry run.
// The emitter is closed before returning; it is committed only on success.
func (r *Runner) run(ctx context.Context, emitter *output.Emitter) (*core.Summary, error) {
	logger := logging.FromContext(ctx)

	if err := source.ValidateDir(r.cfg.Source.Dir, core.Inputs()); err != nil {
		return nil, err
	}

	loader := source.NewCSVLoader(r.cfg.Source.Dir)
	loader.Logger = logger

	defs := core.All()
	var em core.Emitter
	if emitter != nil {
		defer func() {
			if err := emitter.Close(); err != nil {
				logger.Warn("closing output", "error", err)
			}
		}()
		if err := emitter.Begin(ctx, defs); err != nil {
			return nil, err
		}
		em = emitter
	}

	m := core.NewMigration(loader, em, core.WithDefinitions(defs), core.WithLogger(logger))
	summary, err := m.Run(ctx)
	if err != nil {
		return nil, err
	}

	if emitter != nil {
		if err := emitter.Commit(ctx); err != nil {
			return nil, err
		}
	}

	logSummary(logger, summary)
	return summary, nil
}

func logSummary(logger *slog.Logger, s *core.Summary) {
	total := 0
	for _, e := range s.Entities {
		total += e.Distinct
	}
	logger.Info("migration complete", "entities", len(s.Entities), "rows", total)
}

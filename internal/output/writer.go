// Package output writes destination tables produced by the drupal package:
// a MySQL dump script, a live MySQL or PostgreSQL database, and a JSON
// manifest of the migrate map.
package output

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/JonMunkholm/fedora-migrate/internal/core"
	"github.com/JonMunkholm/fedora-migrate/internal/drupal"
)

// Writer receives destination tables for one run.
//
// Begin is called once with every definition of the run so the writer can
// create the migrate map tables. Commit makes the output durable; Close
// releases resources and discards uncommitted output where possible.
type Writer interface {
	Begin(ctx context.Context, defs []core.EntityDefinition) error
	Write(ctx context.Context, t drupal.Table) error
	Commit(ctx context.Context) error
	Close() error
}

// Emitter implements core.Emitter by building tables from each batch and
// handing them to every writer in turn.
type Emitter struct {
	schema   *drupal.Schema
	writers  []Writer
	manifest *Manifest
	logger   *slog.Logger
}

// EmitterOption configures an Emitter.
type EmitterOption func(*Emitter)

// WithManifest records every batch's migrate map in m.
func WithManifest(m *Manifest) EmitterOption {
	return func(e *Emitter) { e.manifest = m }
}

// WithLogger sets the emitter's logger.
func WithLogger(l *slog.Logger) EmitterOption {
	return func(e *Emitter) { e.logger = l }
}

// NewEmitter creates an emitter writing to writers.
func NewEmitter(schema *drupal.Schema, writers []Writer, opts ...EmitterOption) *Emitter {
	e := &Emitter{schema: schema, writers: writers, logger: slog.Default()}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Begin starts every writer.
func (e *Emitter) Begin(ctx context.Context, defs []core.EntityDefinition) error {
	for _, w := range e.writers {
		if err := w.Begin(ctx, defs); err != nil {
			return core.OutputWrite("", err)
		}
	}
	return nil
}

// Emit writes one batch. Tables with no rows are skipped.
func (e *Emitter) Emit(ctx context.Context, b *core.Batch) error {
	tables, err := e.schema.Tables(b)
	if err != nil {
		return core.OutputWrite(b.Definition.Type, err)
	}

	for _, t := range tables {
		if len(t.Rows) == 0 {
			e.logger.Debug("skipping empty table", "table", t.Name)
			continue
		}
		for _, w := range e.writers {
			if err := w.Write(ctx, t); err != nil {
				return core.OutputWrite(b.Definition.Type, fmt.Errorf("table %s: %w", t.Name, err))
			}
		}
		e.logger.Debug("table written", "table", t.Name, "rows", len(t.Rows))
	}

	if e.manifest != nil {
		e.manifest.Add(b)
	}
	return nil
}

// Commit commits every writer, then saves the manifest.
func (e *Emitter) Commit(ctx context.Context) error {
	for _, w := range e.writers {
		if err := w.Commit(ctx); err != nil {
			return core.OutputWrite("", err)
		}
	}
	if e.manifest != nil {
		if err := e.manifest.Save(); err != nil {
			return core.OutputWrite("", err)
		}
	}
	return nil
}

// Close closes every writer and joins their errors.
func (e *Emitter) Close() error {
	var errs []error
	for _, w := range e.writers {
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Migration runs every entity definition once, in processing order, against
// one IDRegistry.
type Migration struct {
	loader    Loader
	emitter   Emitter
	defs      []EntityDefinition
	ids       *IDRegistry
	processor *Processor
	logger    *slog.Logger
}

// Option configures a Migration.
type Option func(*Migration)

// WithDefinitions replaces the registered definitions. Used by tests.
func WithDefinitions(defs []EntityDefinition) Option {
	return func(m *Migration) { m.defs = defs }
}

// WithLogger sets the logger used for progress messages.
func WithLogger(l *slog.Logger) Option {
	return func(m *Migration) { m.logger = l }
}

// NewMigration creates a migration. A nil emitter discards output, which is
// how a dry run checks input without writing anything.
func NewMigration(loader Loader, emitter Emitter, opts ...Option) *Migration {
	m := &Migration{
		loader:  loader,
		emitter: emitter,
		ids:     NewIDRegistry(),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.defs == nil {
		m.defs = All()
	}
	m.processor = NewProcessor(m.ids, m.defs)
	return m
}

// IDs returns the registry built by Run.
func (m *Migration) IDs() *IDRegistry {
	return m.ids
}

// Processor returns the processor, for resolving references after a run.
func (m *Migration) Processor() *Processor {
	return m.processor
}

// Run processes all entity types in order. The first error aborts the run;
// output already emitted for earlier types must not be treated as usable.
func (m *Migration) Run(ctx context.Context) (*Summary, error) {
	summary := &Summary{RunID: RunIDFromContext(ctx)}
	logger := m.logger
	if summary.RunID != "" {
		logger = logger.With("run_id", summary.RunID)
	}

	for _, def := range m.defs {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("migration stopped before %s: %w", def.Type, err)
		}

		start := time.Now()
		records, err := m.load(ctx, def)
		if err != nil {
			return nil, err
		}

		batch, err := m.processor.Process(def, records)
		if err != nil {
			return nil, err
		}

		if m.emitter != nil {
			if err := m.emitter.Emit(ctx, batch); err != nil {
				if errors.Is(err, ErrOutputWrite) {
					return nil, err
				}
				return nil, OutputWrite(def.Type, err)
			}
		}

		es := summarize(batch)
		summary.Entities = append(summary.Entities, es)
		logger.Info("entity processed",
			"entity", def.Type,
			"label", def.Label,
			"read", es.Read,
			"distinct", es.Distinct,
			"assigned", m.ids.Len(def.Type),
			"first_id", es.FirstID,
			"last_id", es.LastID,
			"duration", time.Since(start),
		)
	}

	return summary, nil
}

// load reads and concatenates every input of def, in declared order.
//
// Media Revisions declare media.csv before media_revisions.csv: each media item
// is its own revision zero, so media rows must take the first vids, in their
// original order, for vid to equal mid.
func (m *Migration) load(ctx context.Context, def EntityDefinition) ([]Record, error) {
	var records []Record
	for _, input := range def.Inputs {
		recs, err := m.loader.Load(ctx, def, input)
		if err != nil {
			if errors.Is(err, ErrInputUnavailable) || errors.Is(err, ErrMalformedRow) {
				return nil, err
			}
			return nil, InputUnavailable(def.Type, input, err)
		}
		m.logger.Debug("input loaded", "entity", def.Type, "input", input, "records", len(recs))
		records = append(records, recs...)
	}
	return records, nil
}

func summarize(b *Batch) EntitySummary {
	es := EntitySummary{
		Type:     b.Definition.Type,
		Label:    b.Definition.Label,
		Read:     b.Read,
		Distinct: len(b.Rows),
		FirstID:  -1,
		LastID:   -1,
	}
	for _, r := range b.Rows {
		if r.Pinned {
			es.Pinned++
			continue
		}
		if es.FirstID < 0 || r.ID < es.FirstID {
			es.FirstID = r.ID
		}
		if r.ID > es.LastID {
			es.LastID = r.ID
		}
	}
	return es
}

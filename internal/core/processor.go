package core

// processor.go assigns Destination IDs for one entity type and resolves the
// references its rows declare.
//
// The pass over an entity type is:
//  1. Key every record from its ordered source-identifier components
//  2. Collapse duplicate keys (last record wins, first position kept)
//  3. Assign IDs in first-seen order, pinned keys excluded, and commit the slice
//  4. Resolve references against slices committed by earlier runs
//  5. Build the Migration Map Entries

import (
	"fmt"
	"strconv"
	"strings"
)

// Processor runs the per-entity pass against a shared IDRegistry.
type Processor struct {
	ids  *IDRegistry
	defs map[EntityType]EntityDefinition
}

// NewProcessor creates a processor. defs supplies the pin rules of reference
// targets; it normally holds every registered definition.
func NewProcessor(ids *IDRegistry, defs []EntityDefinition) *Processor {
	m := make(map[EntityType]EntityDefinition, len(defs))
	for _, d := range defs {
		m[d.Type] = d
	}
	return &Processor{ids: ids, defs: m}
}

type keyedRecord struct {
	key string
	ids []string
	rec Record
}

// Process assigns IDs for def's records, commits the registry slice and
// returns the resolved batch. records must be in input order.
func (p *Processor) Process(def EntityDefinition, records []Record) (*Batch, error) {
	for _, ref := range def.References {
		if !p.ids.Populated(ref.Target) {
			return nil, &Error{
				Kind:   ErrReferenceNotFound,
				Entity: def.Type,
				Err:    fmt.Errorf("%s ids have not been assigned yet", ref.Target),
			}
		}
	}

	entries := collapse(def, records)

	a := newAssignment(def.Offset)
	rows := make([]ResolvedRow, len(entries))
	for i, e := range entries {
		row := ResolvedRow{SourceKey: e.key, SourceIDs: e.ids, Record: e.rec}
		if id, ok := pinned(def, e.ids); ok {
			a.pin(e.key, id)
			row.ID = id
			row.Pinned = true
		} else {
			row.ID = a.reserve(e.key)
		}
		rows[i] = row
	}

	if err := p.ids.commit(def.Type, a); err != nil {
		return nil, err
	}

	for i := range rows {
		refs, err := p.resolveRefs(def, rows[i].Record)
		if err != nil {
			return nil, err
		}
		rows[i].Refs = refs
	}

	mapEntries := make([]MapEntry, len(rows))
	for i, r := range rows {
		mapEntries[i] = MapEntry{SourceKey: r.SourceKey, SourceIDs: r.SourceIDs, DestinationID: r.ID}
	}

	return &Batch{Definition: def, Rows: rows, Map: mapEntries, Read: len(records)}, nil
}

// collapse keys records, keeping first-seen order and last-seen values.
func collapse(def EntityDefinition, records []Record) []keyedRecord {
	index := make(map[string]int, len(records))
	entries := make([]keyedRecord, 0, len(records))
	for _, rec := range records {
		ids := def.SourceIDs(rec)
		key := SourceKey(ids...)
		if i, ok := index[key]; ok {
			entries[i].rec = rec
			continue
		}
		index[key] = len(entries)
		entries = append(entries, keyedRecord{key: key, ids: ids, rec: rec})
	}
	return entries
}

func pinned(def EntityDefinition, ids []string) (int, bool) {
	if def.Pin == nil {
		return 0, false
	}
	return def.Pin(ids)
}

func (p *Processor) resolveRefs(def EntityDefinition, rec Record) (map[EntityType]int, error) {
	if len(def.References) == 0 {
		return nil, nil
	}
	refs := make(map[EntityType]int, len(def.References))
	for _, ref := range def.References {
		ids := make([]string, len(ref.Fields))
		for i, f := range ref.Fields {
			ids[i] = rec.Get(f)
		}
		id, err := p.Resolve(ref.Target, ids)
		if err != nil {
			cause := err
			if e, ok := AsError(err); ok && e.Err != nil {
				cause = e.Err
			}
			return nil, &Error{
				Kind:   ErrReferenceNotFound,
				Entity: def.Type,
				Source: rec.Source,
				Line:   rec.Line,
				Field:  strings.Join(ref.Fields, ","),
				Err:    fmt.Errorf("%s %s: %v", ref.Target, quoteIDs(ids), cause),
			}
		}
		refs[ref.Target] = id
	}
	return refs, nil
}

// Resolve returns the Destination ID of a target entity from its source
// identifiers. The target's pin rule wins over the registry.
func (p *Processor) Resolve(target EntityType, ids []string) (int, error) {
	if def, ok := p.defs[target]; ok {
		if id, ok := pinned(def, ids); ok {
			return id, nil
		}
	}
	return p.ids.Lookup(target, SourceKey(ids...))
}

func quoteIDs(ids []string) string {
	q := make([]string, len(ids))
	for i, v := range ids {
		q[i] = strconv.Quote(v)
	}
	return strings.Join(q, ", ")
}

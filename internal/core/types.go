package core

import (
	"context"
	"strings"
)

// EntityType identifies which registry slice a lookup targets.
type EntityType string

const (
	EntityUser          EntityType = "user"
	EntityFile          EntityType = "file"
	EntityMedia         EntityType = "media"
	EntityMediaRevision EntityType = "media_revision"
	EntityNode          EntityType = "node"
)

// FieldType represents the expected data type for a CSV field.
type FieldType int

const (
	FieldText FieldType = iota
	FieldTimestamp
	FieldNumeric
	FieldBool
)

// FieldSpec defines validation rules for a single CSV column.
type FieldSpec struct {
	Name     string   // Column header name as written by the exporter
	Aliases  []string // Alternate header names accepted for the same column
	Type     FieldType
	Required bool // Column must exist and the value must be non-empty
}

// Reference declares a cross-reference from one entity type to another.
// Fields are read from the referencing record, in order, and form the
// source identifier components of the target.
type Reference struct {
	Target EntityType
	Fields []string
}

// PinFunc returns a fixed Destination ID for source identifiers that map to
// entities the destination system creates itself.
type PinFunc func(ids []string) (int, bool)

// EntityDefinition is the declarative descriptor for one entity type.
type EntityDefinition struct {
	Type  EntityType
	Label string // Display name: "Media Revisions"
	Order int    // Processing position; lower runs first

	// Inputs lists the source files read for this entity, concatenated in order.
	Inputs []string

	FieldSpecs []FieldSpec

	// KeyFields are the ordered source-identifier components.
	KeyFields []string

	// Offset is added to every positional index.
	Offset int

	// Pin is consulted before hashing, both when assigning and when resolving
	// references to this entity type. Optional.
	Pin PinFunc

	References []Reference
}

// SourceIDs returns the ordered source-identifier components of a record.
func (d EntityDefinition) SourceIDs(rec Record) []string {
	ids := make([]string, len(d.KeyFields))
	for i, f := range d.KeyFields {
		ids[i] = rec.Get(f)
	}
	return ids
}

// Spec returns the field spec with the given name.
func (d EntityDefinition) Spec(name string) (FieldSpec, bool) {
	for _, s := range d.FieldSpecs {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return FieldSpec{}, false
}

// Record is one decoded input row. It is never modified after loading.
type Record struct {
	Source string // Input file name
	Line   int    // 1-based CSV line, header is line 1
	values map[string]string
}

// NewRecord creates a record from field values keyed by canonical field name.
func NewRecord(source string, line int, values map[string]string) Record {
	cp := make(map[string]string, len(values))
	for k, v := range values {
		cp[strings.ToLower(k)] = v
	}
	return Record{Source: source, Line: line, values: cp}
}

// Get returns the value of a field, or "" if absent.
func (r Record) Get(field string) string {
	return r.values[strings.ToLower(field)]
}

// Fields returns a copy of all field values.
func (r Record) Fields() map[string]string {
	cp := make(map[string]string, len(r.values))
	for k, v := range r.values {
		cp[k] = v
	}
	return cp
}

// MapEntry is the audit record persisted per entity type so a later process
// can reconcile source and destination state.
type MapEntry struct {
	SourceKey     string   `json:"source_ids_hash"`
	SourceIDs     []string `json:"source_ids"`
	DestinationID int      `json:"destid1"`
}

// ResolvedRow is a finished row ready for emission.
type ResolvedRow struct {
	ID        int
	SourceKey string
	SourceIDs []string
	Record    Record
	Pinned    bool // ID came from the target's pin rule rather than assignment

	// Refs holds resolved Destination IDs keyed by target entity type.
	Refs map[EntityType]int
}

// Ref returns the resolved Destination ID for a target entity type.
func (r ResolvedRow) Ref(t EntityType) int {
	return r.Refs[t]
}

// Batch is the processor output for one entity type.
type Batch struct {
	Definition EntityDefinition
	Rows       []ResolvedRow
	Map        []MapEntry
	Read       int // Records read across all inputs, duplicates included
}

// Loader yields ordered records for one input of an entity type.
type Loader interface {
	Load(ctx context.Context, def EntityDefinition, input string) ([]Record, error)
}

// Emitter receives each finished batch.
type Emitter interface {
	Emit(ctx context.Context, batch *Batch) error
}

// EntitySummary describes what a run produced for one entity type.
type EntitySummary struct {
	Type     EntityType `json:"type"`
	Label    string     `json:"label"`
	Read     int        `json:"read"`
	Distinct int        `json:"distinct"`
	Pinned   int        `json:"pinned"`
	FirstID  int        `json:"first_id"` // -1 when nothing was assigned
	LastID   int        `json:"last_id"`
}

// Summary is the result of a complete run.
type Summary struct {
	RunID    string          `json:"run_id"`
	Entities []EntitySummary `json:"entities"`
}

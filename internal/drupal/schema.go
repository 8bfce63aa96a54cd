// Package drupal turns processed entity batches into Drupal 8+ table rows.
package drupal

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/fedora-migrate/internal/core"
)

// Table is a destination table's rows. Values are int, int64, string or nil.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]any
}

// Schema builds destination tables.
type Schema struct {
	Langcode string // Language of migrated content (default: en)
	NodeType string // Node bundle (default: islandora_object)

	Now     func() time.Time
	NewUUID func() uuid.UUID
}

// NewSchema returns a schema with default settings.
func NewSchema() *Schema {
	return &Schema{
		Langcode: "en",
		NodeType: "islandora_object",
		Now:      time.Now,
		NewUUID:  uuid.New,
	}
}

// Tables returns every destination table for a batch, the migrate map last.
func (s *Schema) Tables(b *core.Batch) ([]Table, error) {
	var tables []Table
	switch b.Definition.Type {
	case core.EntityUser:
		tables = s.userTables(b)
	case core.EntityFile:
		tables = s.fileTables(b)
	case core.EntityMedia:
		tables = s.mediaTables(b)
	case core.EntityMediaRevision:
		tables = s.mediaRevisionTables(b)
	case core.EntityNode:
		tables = s.nodeTables(b)
	default:
		return nil, fmt.Errorf("no destination tables for entity %q", b.Definition.Type)
	}
	return append(tables, MapTable(b)), nil
}

// MapTableName returns the migrate map table of an entity type.
func MapTableName(t core.EntityType) string {
	switch t {
	case core.EntityUser:
		return "migrate_map_fedora_users"
	case core.EntityFile:
		return "migrate_map_fedora_files"
	case core.EntityMediaRevision:
		return "migrate_map_fedora_media_revisions"
	case core.EntityNode:
		return "migrate_map_fedora_nodes"
	default:
		return "migrate_map_fedora_" + string(t)
	}
}

// MapColumns returns the populated migrate map columns for arity source ids.
// source_row_status, rollback_action, last_imported and hash keep their
// defaults, so Drupal treats every row as needing an update on the next import.
func MapColumns(arity int) []string {
	cols := make([]string, 0, arity+2)
	cols = append(cols, "source_ids_hash")
	for i := 1; i <= arity; i++ {
		cols = append(cols, "sourceid"+strconv.Itoa(i))
	}
	return append(cols, "destid1")
}

// MapTable returns the migrate map rows of a batch, in assignment order.
func MapTable(b *core.Batch) Table {
	t := Table{
		Name:    MapTableName(b.Definition.Type),
		Columns: MapColumns(len(b.Definition.KeyFields)),
		Rows:    make([][]any, 0, len(b.Map)),
	}
	for _, e := range b.Map {
		row := make([]any, 0, len(e.SourceIDs)+2)
		row = append(row, e.SourceKey)
		for _, id := range e.SourceIDs {
			row = append(row, id)
		}
		row = append(row, e.DestinationID)
		t.Rows = append(t.Rows, row)
	}
	return t
}

func (s *Schema) now() int64 {
	return s.Now().Unix()
}

func (s *Schema) uuid() string {
	return s.NewUUID().String()
}

// timestamp returns a cell as unix seconds, falling back to the current time.
func (s *Schema) timestamp(rec core.Record, field string) int64 {
	if ts, ok := core.ToTimestamp(rec.Get(field)); ok {
		return ts
	}
	return s.now()
}

// optional returns nil for an empty cell so it is written as NULL.
func optional(v string) any {
	if v == "" {
		return nil
	}
	return v
}

func optionalInt(v string) any {
	if n, ok := core.ToInt(v); ok {
		return n
	}
	return nil
}

// publishedState maps a Fedora object state to Drupal's status flag.
// Inactive (I) and Deleted (D) objects are migrated unpublished.
func publishedState(state string) int {
	switch strings.ToUpper(strings.TrimSpace(state)) {
	case "I", "INACTIVE", "D", "DELETED":
		return 0
	default:
		return 1
	}
}

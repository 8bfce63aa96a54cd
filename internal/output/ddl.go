package output

import (
	"fmt"
	"strings"

	"github.com/JonMunkholm/fedora-migrate/internal/core"
	"github.com/JonMunkholm/fedora-migrate/internal/drupal"
)

// mapTable describes the migrate map table of one entity type.
type mapTable struct {
	name  string
	arity int
}

func mapTables(defs []core.EntityDefinition) []mapTable {
	tables := make([]mapTable, 0, len(defs))
	for _, d := range defs {
		tables = append(tables, mapTable{name: drupal.MapTableName(d.Type), arity: len(d.KeyFields)})
	}
	return tables
}

func sourceIDColumns(arity int) []string {
	cols := drupal.MapColumns(arity)
	return cols[1 : len(cols)-1]
}

// mysqlDrop and mysqlCreate match what Drupal's migrate module creates, so
// the site picks the tables up as if it had run the migration itself.
func mysqlDrop(t mapTable) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS `%s`", t.name)
}

func mysqlCreate(t mapTable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE `%s` (\n", t.name)
	b.WriteString("  `source_ids_hash` varchar(64) NOT NULL COMMENT 'Hash of source ids. Used as primary key',\n")
	keys := make([]string, 0, t.arity)
	for _, c := range sourceIDColumns(t.arity) {
		fmt.Fprintf(&b, "  `%s` varchar(255) NOT NULL,\n", c)
		keys = append(keys, fmt.Sprintf("`%s`(191)", c))
	}
	b.WriteString("  `destid1` int(10) unsigned DEFAULT NULL,\n")
	b.WriteString("  `source_row_status` tinyint(3) unsigned NOT NULL DEFAULT 0 COMMENT 'Indicates current status of the source row',\n")
	b.WriteString("  `rollback_action` tinyint(3) unsigned NOT NULL DEFAULT 0 COMMENT 'Flag indicating what to do for this item on rollback',\n")
	b.WriteString("  `last_imported` int(10) unsigned NOT NULL DEFAULT 0 COMMENT 'UNIX timestamp of the last time this row was imported',\n")
	b.WriteString("  `hash` varchar(64) DEFAULT NULL COMMENT 'Hash of source row data, for detecting changes',\n")
	b.WriteString("  PRIMARY KEY (`source_ids_hash`),\n")
	fmt.Fprintf(&b, "  KEY `source` (%s)\n", strings.Join(keys, ","))
	b.WriteString(") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COMMENT='Mappings from source identifier value(s) to destination identifier value(s).'")
	return b.String()
}

func postgresDrop(t mapTable) string {
	return fmt.Sprintf("DROP TABLE IF EXISTS %s", t.name)
}

func postgresCreate(t mapTable) string {
	var b strings.Builder
	fmt.Fprintf(&b, "CREATE TABLE %s (\n", t.name)
	b.WriteString("  source_ids_hash varchar(64) NOT NULL,\n")
	for _, c := range sourceIDColumns(t.arity) {
		fmt.Fprintf(&b, "  %s varchar(255) NOT NULL,\n", c)
	}
	b.WriteString("  destid1 bigint DEFAULT NULL,\n")
	b.WriteString("  source_row_status smallint NOT NULL DEFAULT 0,\n")
	b.WriteString("  rollback_action smallint NOT NULL DEFAULT 0,\n")
	b.WriteString("  last_imported integer NOT NULL DEFAULT 0,\n")
	b.WriteString("  hash varchar(64) DEFAULT NULL,\n")
	b.WriteString("  PRIMARY KEY (source_ids_hash)\n")
	b.WriteString(")")
	return b.String()
}

func postgresIndex(t mapTable) string {
	return fmt.Sprintf("CREATE INDEX %s__source ON %s (%s)",
		t.name, t.name, strings.Join(sourceIDColumns(t.arity), ", "))
}

package output

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/JonMunkholm/fedora-migrate/internal/core"
	"github.com/JonMunkholm/fedora-migrate/internal/drupal"
)

// SQLDump writes a mysqldump-style script that loads every table in one pass.
type SQLDump struct {
	w      *bufio.Writer
	closer io.Closer
	path   string
	tmp    string
}

// NewSQLDump writes the script to w. Used by tests and for stdout.
func NewSQLDump(w io.Writer) *SQLDump {
	return &SQLDump{w: bufio.NewWriter(w)}
}

// CreateSQLDump writes the script to path. Output goes to a temporary file
// that is renamed into place on Commit, so a failed run leaves no script.
func CreateSQLDump(path string) (*SQLDump, error) {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return &SQLDump{w: bufio.NewWriter(f), closer: f, path: path, tmp: tmp}, nil
}

// Begin writes the migrate map table structure.
func (d *SQLDump) Begin(_ context.Context, defs []core.EntityDefinition) error {
	for _, t := range mapTables(defs) {
		fmt.Fprintf(d.w, "\n--\n-- Table structure for table `%s`\n--\n\n", t.name)
		fmt.Fprintf(d.w, "%s;\n", mysqlDrop(t))
		d.w.WriteString("/*!40101 SET @saved_cs_client     = @@character_set_client */;\n")
		d.w.WriteString("/*!40101 SET character_set_client = utf8 */;\n")
		fmt.Fprintf(d.w, "%s;\n", mysqlCreate(t))
		d.w.WriteString("/*!40101 SET character_set_client = @saved_cs_client */;\n")
	}
	return nil
}

// Write appends one table's data block. Empty tables are skipped.
func (d *SQLDump) Write(_ context.Context, t drupal.Table) error {
	if len(t.Rows) == 0 {
		return nil
	}

	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quoteIdent(c)
	}

	fmt.Fprintf(d.w, "\n--\n-- Dumping data for table `%s`\n--\n\n", t.Name)
	fmt.Fprintf(d.w, "LOCK TABLES `%s` WRITE;\n", t.Name)
	fmt.Fprintf(d.w, "/*!40000 ALTER TABLE `%s` DISABLE KEYS */;\n", t.Name)
	d.w.WriteString("set autocommit=0;\n")
	fmt.Fprintf(d.w, "INSERT INTO `%s` (%s) VALUES ", t.Name, strings.Join(cols, ","))
	for i, row := range t.Rows {
		if len(row) != len(t.Columns) {
			return fmt.Errorf("table %s row %d: %d values for %d columns", t.Name, i, len(row), len(t.Columns))
		}
		if i > 0 {
			d.w.WriteByte(',')
		}
		d.w.WriteByte('(')
		for j, v := range row {
			if j > 0 {
				d.w.WriteByte(',')
			}
			d.w.WriteString(sqlLiteral(v))
		}
		d.w.WriteByte(')')
	}
	d.w.WriteString(";\n")
	fmt.Fprintf(d.w, "/*!40000 ALTER TABLE `%s` ENABLE KEYS */;\n", t.Name)
	d.w.WriteString("UNLOCK TABLES;\ncommit;\n")
	return nil
}

// Commit flushes the script and moves it into place.
func (d *SQLDump) Commit(_ context.Context) error {
	if err := d.w.Flush(); err != nil {
		return fmt.Errorf("flush sql dump: %w", err)
	}
	if d.closer == nil {
		return nil
	}
	if err := d.closer.Close(); err != nil {
		return fmt.Errorf("close sql dump: %w", err)
	}
	d.closer = nil
	if err := os.Rename(d.tmp, d.path); err != nil {
		return fmt.Errorf("rename sql dump: %w", err)
	}
	d.tmp = ""
	return nil
}

// Close removes an uncommitted script.
func (d *SQLDump) Close() error {
	if d.closer != nil {
		d.closer.Close()
		d.closer = nil
	}
	if d.tmp != "" {
		os.Remove(d.tmp)
		d.tmp = ""
	}
	return nil
}

func quoteIdent(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}

// sqlLiteral renders a table value as a MySQL literal.
func sqlLiteral(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return quoteString(x)
	default:
		return quoteString(fmt.Sprint(x))
	}
}

var stringEscaper = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\x00", `\0`,
	"\n", `\n`,
	"\r", `\r`,
	"\x1a", `\Z`,
)

func quoteString(s string) string {
	return "'" + stringEscaper.Replace(s) + "'"
}

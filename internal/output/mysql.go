package output

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-sql-driver/mysql"

	"github.com/JonMunkholm/fedora-migrate/internal/core"
	"github.com/JonMunkholm/fedora-migrate/internal/drupal"
)

// DefaultBatchSize is the number of rows per INSERT statement.
const DefaultBatchSize = 500

// mysqlMaxPlaceholders is the server's limit on parameters per statement.
const mysqlMaxPlaceholders = 65535

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

type sqlTx interface {
	execer
	Commit() error
	Rollback() error
}

// MySQLWriter loads tables straight into a Drupal MySQL database.
//
// The map tables are created before the transaction starts because MySQL
// commits DDL implicitly; every data row goes in one transaction.
type MySQLWriter struct {
	db        *sql.DB
	conn      execer
	begin     func(ctx context.Context) (sqlTx, error)
	tx        sqlTx
	batchSize int
}

// OpenMySQL connects to dsn, a go-sql-driver DSN such as
// "user:pass@tcp(localhost:3306)/drupal".
func OpenMySQL(ctx context.Context, dsn string, batchSize int) (*MySQLWriter, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse mysql dsn: %w", err)
	}
	cfg.ParseTime = true
	cfg.MultiStatements = false
	if cfg.Timeout == 0 {
		cfg.Timeout = 10 * time.Second
	}

	connector, err := mysql.NewConnector(cfg)
	if err != nil {
		return nil, fmt.Errorf("create mysql connector: %w", err)
	}
	db := sql.OpenDB(connector)
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to mysql %s: %w", cfg.Addr, err)
	}

	w := newMySQLWriter(db, func(ctx context.Context) (sqlTx, error) {
		return db.BeginTx(ctx, nil)
	}, batchSize)
	w.db = db
	return w, nil
}

func newMySQLWriter(conn execer, begin func(ctx context.Context) (sqlTx, error), batchSize int) *MySQLWriter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &MySQLWriter{conn: conn, begin: begin, batchSize: batchSize}
}

// Begin recreates the migrate map tables and opens the load transaction.
func (w *MySQLWriter) Begin(ctx context.Context, defs []core.EntityDefinition) error {
	for _, t := range mapTables(defs) {
		if _, err := w.conn.ExecContext(ctx, mysqlDrop(t)); err != nil {
			return fmt.Errorf("drop %s: %w", t.name, mysqlCause(err))
		}
		if _, err := w.conn.ExecContext(ctx, mysqlCreate(t)); err != nil {
			return fmt.Errorf("create %s: %w", t.name, mysqlCause(err))
		}
	}

	tx, err := w.begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	w.tx = tx
	return nil
}

// Write inserts a table in chunks of multi-row INSERTs.
func (w *MySQLWriter) Write(ctx context.Context, t drupal.Table) error {
	if w.tx == nil {
		return errors.New("mysql writer: Write called before Begin")
	}
	if len(t.Rows) == 0 || len(t.Columns) == 0 {
		return nil
	}

	size := w.batchSize
	if limit := mysqlMaxPlaceholders / len(t.Columns); size > limit {
		size = limit
	}

	for start := 0; start < len(t.Rows); start += size {
		end := min(start+size, len(t.Rows))
		query, args, err := buildInsert(t, t.Rows[start:end])
		if err != nil {
			return err
		}
		if _, err := w.tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert rows %d-%d: %w", start, end-1, mysqlCause(err))
		}
	}
	return nil
}

// Commit commits the load transaction.
func (w *MySQLWriter) Commit(_ context.Context) error {
	if w.tx == nil {
		return nil
	}
	err := w.tx.Commit()
	w.tx = nil
	if err != nil {
		return fmt.Errorf("commit: %w", mysqlCause(err))
	}
	return nil
}

// Close rolls back an open transaction and closes the connection.
func (w *MySQLWriter) Close() error {
	var errs []error
	if w.tx != nil {
		if err := w.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
			errs = append(errs, fmt.Errorf("rollback: %w", err))
		}
		w.tx = nil
	}
	if w.db != nil {
		errs = append(errs, w.db.Close())
		w.db = nil
	}
	return errors.Join(errs...)
}

func buildInsert(t drupal.Table, rows [][]any) (string, []any, error) {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quoteIdent(c)
	}
	tuple := "(" + strings.TrimSuffix(strings.Repeat("?,", len(t.Columns)), ",") + ")"

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s) VALUES ", quoteIdent(t.Name), strings.Join(cols, ","))
	args := make([]any, 0, len(rows)*len(t.Columns))
	for i, row := range rows {
		if len(row) != len(t.Columns) {
			return "", nil, fmt.Errorf("table %s: %d values for %d columns", t.Name, len(row), len(t.Columns))
		}
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(tuple)
		args = append(args, row...)
	}
	return b.String(), args, nil
}

// mysqlCause prefixes server errors with their error number.
func mysqlCause(err error) error {
	var me *mysql.MySQLError
	if errors.As(err, &me) {
		return fmt.Errorf("mysql error %d: %w", me.Number, err)
	}
	return err
}

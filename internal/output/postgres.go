package output

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JonMunkholm/fedora-migrate/internal/core"
	"github.com/JonMunkholm/fedora-migrate/internal/drupal"
)

// pgTx is the subset of pgx.Tx the writer needs.
type pgTx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error)
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// PostgresWriter loads tables into a Drupal PostgreSQL database with COPY.
// DDL and data share one transaction, so a failed run changes nothing.
type PostgresWriter struct {
	pool  *pgxpool.Pool
	begin func(ctx context.Context) (pgTx, error)
	tx    pgTx
}

// PostgresConfig holds pool settings for OpenPostgres.
type PostgresConfig struct {
	URL      string
	MaxConns int
}

// OpenPostgres connects a pool to cfg.URL.
func OpenPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresWriter, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolConfig.MaxConns = int32(cfg.MaxConns)
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	w := newPostgresWriter(func(ctx context.Context) (pgTx, error) {
		return pool.Begin(ctx)
	})
	w.pool = pool
	return w, nil
}

func newPostgresWriter(begin func(ctx context.Context) (pgTx, error)) *PostgresWriter {
	return &PostgresWriter{begin: begin}
}

// Begin opens the transaction and recreates the migrate map tables.
func (w *PostgresWriter) Begin(ctx context.Context, defs []core.EntityDefinition) error {
	tx, err := w.begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	w.tx = tx

	for _, t := range mapTables(defs) {
		for _, stmt := range []string{postgresDrop(t), postgresCreate(t), postgresIndex(t)} {
			if _, err := tx.Exec(ctx, stmt); err != nil {
				return fmt.Errorf("create %s: %w", t.name, err)
			}
		}
	}
	return nil
}

// Write copies one table.
func (w *PostgresWriter) Write(ctx context.Context, t drupal.Table) error {
	if w.tx == nil {
		return errors.New("postgres writer: Write called before Begin")
	}
	if len(t.Rows) == 0 {
		return nil
	}

	n, err := w.tx.CopyFrom(ctx, pgx.Identifier{t.Name}, t.Columns, pgx.CopyFromRows(t.Rows))
	if err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	if int(n) != len(t.Rows) {
		return fmt.Errorf("copy: wrote %d of %d rows", n, len(t.Rows))
	}
	return nil
}

// Commit commits the transaction.
func (w *PostgresWriter) Commit(ctx context.Context) error {
	if w.tx == nil {
		return nil
	}
	err := w.tx.Commit(ctx)
	w.tx = nil
	if err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close rolls back an open transaction and closes the pool.
func (w *PostgresWriter) Close() error {
	var err error
	if w.tx != nil {
		if rbErr := w.tx.Rollback(context.Background()); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
			err = fmt.Errorf("rollback: %w", rbErr)
		}
		w.tx = nil
	}
	if w.pool != nil {
		w.pool.Close()
		w.pool = nil
	}
	return err
}

package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cenkalti/backoff/v4"

	"github.com/JonMunkholm/fedora-migrate/internal/output"
)

// openFunc opens a writer against the configured database.
type openFunc func(ctx context.Context) (output.Writer, error)

// connect opens the database writer, retrying transient connection failures
// until the connect timeout elapses.
func (r *Runner) connect(ctx context.Context, logger *slog.Logger) (output.Writer, error) {
	db := r.cfg.Database

	var open openFunc
	switch strings.ToLower(db.Driver) {
	case "mysql":
		open = func(ctx context.Context) (output.Writer, error) {
			return output.OpenMySQL(ctx, db.URL, db.BatchSize)
		}
	case "postgres":
		open = func(ctx context.Context) (output.Writer, error) {
			return output.OpenPostgres(ctx, output.PostgresConfig{URL: db.URL, MaxConns: db.MaxConns})
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", db.Driver)
	}

	ctx, cancel := context.WithTimeout(ctx, db.ConnectTimeout)
	defer cancel()
	return openWithRetry(ctx, open, newConnectBackoff(), logger)
}

// newConnectBackoff returns a fresh backoff; BackOff values are stateful.
func newConnectBackoff() backoff.BackOff {
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = 0 // bounded by the context deadline
	return bo
}

func openWithRetry(ctx context.Context, open openFunc, bo backoff.BackOff, logger *slog.Logger) (output.Writer, error) {
	var w output.Writer
	attempt := 0
	err := backoff.Retry(func() error {
		attempt++
		logger.Info("connecting to database", "attempt", attempt)

		var err error
		w, err = open(ctx)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil || !isTransient(err) {
			return backoff.Permanent(err)
		}
		logger.Warn("database not reachable, retrying", "error", err)
		return err
	}, backoff.WithContext(bo, ctx))
	if err != nil {
		return nil, err
	}
	return w, nil
}

// isTransient reports whether a connect error may clear on its own.
func isTransient(err error) bool {
	s := strings.ToLower(err.Error())
	for _, p := range []string{
		"connection refused",
		"connection reset",
		"broken pipe",
		"invalid connection",
		"driver: bad connection",
		"the database system is starting up",
	} {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

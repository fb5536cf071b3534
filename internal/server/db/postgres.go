// Package db opens the Postgres connection pool the repositories run on.
package db

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/beppofit-auth/internal/logging"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// sqlOpen is a seam for tests.
var sqlOpen = sql.Open

// Options controls connection retries and pool sizing.
type Options struct {
	Retries  int
	Interval time.Duration

	MaxOpenConns int
}

// Connect opens a pgx-backed *sql.DB and pings it, retrying up to
// opts.Retries times with opts.Interval between attempts. The store may come
// up after the service does.
func Connect(ctx context.Context, dsn string, opts Options, logger logging.Logger) (*sql.DB, error) {
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		db.SetMaxOpenConns(opts.MaxOpenConns)
	}

	attempts := opts.Retries
	if attempts < 1 {
		attempts = 1
	}

	for i := 1; ; i++ {
		err = db.PingContext(ctx)
		if err == nil {
			logger.Info(ctx, "Connected to database", "attempt", i)
			return db, nil
		}

		if i >= attempts {
			break
		}

		logger.Warn(ctx, "Database not ready, retrying", "attempt", i, "of", attempts, "error", err)

		select {
		case <-ctx.Done():
			_ = db.Close()
			return nil, ctx.Err()
		case <-time.After(opts.Interval):
		}
	}

	_ = db.Close()
	return nil, fmt.Errorf("connect db after %d attempts: %w", attempts, err)
}

package database

import (
	"context"
	"database/sql"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"

	ers "github.com/hcanalytics/hdw-app/hdw/errors"
)

// pingTimeout bounds the total time spent retrying the initial ping. The
// scheduler owns step-level retries; this only smooths over transient
// connection churn.
const pingTimeout = 15 * time.Second

// Connect opens a database/sql connection to the warehouse and verifies it
// with a bounded-backoff ping. An unreachable warehouse is fatal to the
// caller and surfaces as a ConnectionError.
func Connect(cfg *Config) (*sql.DB, error) {
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		return nil, &ers.ConnectionError{Err: err}
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMin) * time.Minute)
	db.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTime) * time.Second)

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = pingTimeout
	if err := backoff.Retry(db.Ping, b); err != nil {
		db.Close()
		return nil, &ers.ConnectionError{Err: err}
	}

	return db, nil
}

// ConnectPgxPool opens a pgx pool used for bulk CopyFrom loads of the fact
// tables.
func ConnectPgxPool(ctx context.Context, cfg *Config) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, &ers.ConnectionError{Err: errors.Wrap(err, "could not create pgx pool")}
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, &ers.ConnectionError{Err: err}
	}
	return pool, nil
}

package database

import (
	"context"
	"database/sql"
)

// Row is an interface around https://golang.org/pkg/database/sql/#Row.
// It can be implemented by other database libraries (like pgx)
type Row interface {
	Scan(dest ...interface{}) error
}

// Rows is an interface around https://golang.org/pkg/database/sql/#Rows.
// It can be implemented by other database libraries (like pgx)
type Rows interface {
	Close() error
	Err() error
	Next() bool
	Scan(dest ...interface{}) error
}

type Queryable interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) Row
}

// DB is a wrapper around *sql.DB to allow us to implement our internal interfaces
type DB struct {
	*sql.DB
}

var _ Queryable = &DB{}

func (db *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (Rows, error) {
	return db.DB.QueryContext(ctx, query, args...)
}
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...interface{}) Row {
	return db.DB.QueryRowContext(ctx, query, args...)
}

// Package db provides a disposable PostgreSQL container for integration
// tests, with the warehouse migrations already applied.
package db

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

type TestDatabaseContainer struct {
	Container        *postgres.PostgresContainer
	ConnectionString string
}

// NewTestDatabaseContainer starts a postgres container and applies every
// warehouse migration, leaving the healthcare schema and its seeded
// reference tables ready for tests. A "Base" snapshot captures that state
// so tests can restore it between runs.
func NewTestDatabaseContainer() (TestDatabaseContainer, error) {
	ctx := context.Background()
	c, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("hdw"),
		postgres.WithUsername("toor"),
		postgres.WithPassword("foobar"),
		postgres.BasicWaitStrategies(),
	)
	if err != nil {
		return TestDatabaseContainer{}, errors.Wrap(err, "failed to create database container")
	}

	conn, err := c.ConnectionString(ctx)
	if err != nil {
		return TestDatabaseContainer{}, errors.Wrap(err, "failed to get container connection string")
	}

	tdc := TestDatabaseContainer{Container: c, ConnectionString: conn}
	if err := tdc.runMigrations(); err != nil {
		return TestDatabaseContainer{}, err
	}
	if err := tdc.CreateSnapshot("Base"); err != nil {
		return TestDatabaseContainer{}, err
	}
	return tdc, nil
}

func (td *TestDatabaseContainer) runMigrations() error {
	dir, err := getMigrationsDir()
	if err != nil {
		return err
	}

	m, err := migrate.New("file://"+dir, td.ConnectionString+"sslmode=disable")
	if err != nil {
		return errors.Wrap(err, "failed to open migrations")
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return errors.Wrap(err, "failed to apply migrations to container database")
	}
	return nil
}

// ExecuteFile executes one *.sql file against the container database. Test
// fixtures belong under a package's testdata directory.
func (td *TestDatabaseContainer) ExecuteFile(path string) (int64, error) {
	ctx := context.Background()

	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return 0, err
	}

	conn, err := td.NewPgxConnection()
	if err != nil {
		return 0, err
	}
	defer conn.Close(ctx)

	result, err := conn.Exec(ctx, string(content))
	if err != nil {
		return 0, errors.Wrapf(err, "failed to execute %s", path)
	}
	return result.RowsAffected(), nil
}

// CreateSnapshot snapshots the database under a name. Close any active
// connections before snapshotting.
func (td *TestDatabaseContainer) CreateSnapshot(name string) error {
	return td.Container.Snapshot(context.Background(), postgres.WithSnapshotName(name))
}

// RestoreSnapshot restores a named snapshot. "Base" returns the database to
// its freshly migrated state.
func (td *TestDatabaseContainer) RestoreSnapshot(name string) error {
	return td.Container.Restore(context.Background(), postgres.WithSnapshotName(name))
}

func (td *TestDatabaseContainer) NewPgxConnection() (*pgx.Conn, error) {
	return pgx.Connect(context.Background(), td.ConnectionString)
}

func (td *TestDatabaseContainer) NewSqlDbConnection() (*sql.DB, error) {
	return sql.Open("postgres", td.ConnectionString+"sslmode=disable")
}

func (td *TestDatabaseContainer) NewPgxPoolConnection() (*pgxpool.Pool, error) {
	return pgxpool.New(context.Background(), td.ConnectionString)
}

// getMigrationsDir finds db/migrations regardless of which package's test
// started the container.
func getMigrationsDir() (string, error) {
	currentDir, err := os.Getwd()
	if err != nil {
		return "", errors.Wrap(err, "failed to get current working directory")
	}

	for {
		targetPath := filepath.Join(currentDir, "db", "migrations")
		if _, err := os.Stat(targetPath); err == nil {
			return targetPath, nil
		} else if !os.IsNotExist(err) {
			return "", errors.Wrapf(err, "error checking path %s", targetPath)
		}

		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return "", errors.New("db/migrations not found in any parent directory")
		}
		currentDir = parentDir
	}
}

package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

// DB wraps a SQLite connection with the pragmas and transaction helper
// the rest of this package relies on, opened at whatever path the
// caller supplies (config.Config.DatabasePath).
type DB struct {
	*sql.DB
	path string
}

// openDB opens or creates a SQLite database at path, enabling foreign
// keys and WAL journaling. An empty path opens a shared-cache in-memory
// database, the same one for every empty-path open in the process
// while any of them is open; used by tests.
func openDB(path string) (*DB, error) {
	dsn := "file::memory:?cache=shared&_pragma=foreign_keys(1)"
	if path != "" {
		if dir := filepath.Dir(path); dir != "." {
			if err := os.MkdirAll(dir, 0o700); err != nil {
				return nil, fmt.Errorf("store: create database directory: %w", err)
			}
		}
		dsn = fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)", path)
	}

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: open: %v", ErrPersistenceBackendFailed, err)
	}
	if path == "" {
		// the shared in-memory DSN needs exactly one open connection or
		// every statement sees an empty database of its own.
		sqlDB.SetMaxOpenConns(1)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("%w: ping: %v", ErrPersistenceBackendFailed, err)
	}

	return &DB{DB: sqlDB, path: path}, nil
}

// Path returns the path this DB was opened with, empty for an
// in-memory database.
func (db *DB) Path() string { return db.path }

// Tx runs fn inside a transaction, committing on a nil return and
// rolling back otherwise.
func (db *DB) Tx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin tx: %v", ErrPersistenceBackendFailed, err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("%w: rollback failed: %v (original: %v)", ErrPersistenceBackendFailed, rbErr, err)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", ErrPersistenceBackendFailed, err)
	}
	return nil
}

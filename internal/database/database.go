// Package database is the reservation store: a transactional record store
// over sqlite keyed by the natural composite keys of each entity. Engines
// express check-then-act logic through InTx; the unique indexes declared
// here are the actual race guard for concurrent claims.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"labreserve/internal/models"

	"github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"
)

// DB wraps sql.DB for the reservation store.
type DB struct {
	*sql.DB
	logger *zerolog.Logger
}

// Options controls schema details that depend on deployment configuration.
type Options struct {
	// ExclusiveIHC adds a unique index on (date, slot) for staining
	// reservations, turning every slot into a single-owner unit.
	ExclusiveIHC bool
}

// NewDB opens the database at path and runs migrations.
func NewDB(path string, opts Options, logger *zerolog.Logger) (*DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	dsn := path + "?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000"
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	instance := &DB{DB: db, logger: logger}
	if err := instance.createTables(opts); err != nil {
		return nil, fmt.Errorf("create tables: %w", err)
	}

	logger.Info().Str("path", path).Msg("database initialized")
	return instance, nil
}

func (db *DB) createTables(opts Options) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS actors (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			name TEXT UNIQUE NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS bsc_reservations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			cabinet_id INTEGER NOT NULL,
			date TEXT NOT NULL,
			slot INTEGER NOT NULL,
			actor_name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			UNIQUE(cabinet_id, date, slot)
		)`,

		`CREATE TABLE IF NOT EXISTS ihc_reservations (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			date TEXT NOT NULL,
			slot TEXT NOT NULL,
			tray_count INTEGER NOT NULL DEFAULT 1,
			actor_name TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS freezer_boxes (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			box_name TEXT UNIQUE NOT NULL,
			actor_name TEXT NOT NULL DEFAULT '',
			start_date TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_bsc_date ON bsc_reservations(date)`,
		`CREATE INDEX IF NOT EXISTS idx_ihc_date_slot ON ihc_reservations(date, slot)`,
	}

	if opts.ExclusiveIHC {
		queries = append(queries,
			`CREATE UNIQUE INDEX IF NOT EXISTS idx_ihc_exclusive ON ihc_reservations(date, slot)`)
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return fmt.Errorf("exec migration: %w", err)
		}
	}
	return nil
}

// Tx is one store transaction. All check-then-act sequences an engine runs
// against composite keys happen through a Tx so the whole batch commits
// once, at the end.
type Tx struct {
	tx *sql.Tx
}

// InTx runs fn inside a transaction, committing when fn returns nil and
// rolling back otherwise.
func (db *DB) InTx(ctx context.Context, fn func(*Tx) error) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(&Tx{tx: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// IsUniqueViolation reports whether err is a sqlite unique-constraint
// failure. Engines degrade these to skipped results: the index caught a
// concurrent claim the preceding check missed.
func IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

// fmtDate renders a reservation date the way it is stored: YYYY-MM-DD text,
// which compares correctly as a string.
func fmtDate(t time.Time) string {
	return models.DateOnly(t).Format("2006-01-02")
}

// parseDate is the inverse of fmtDate. Empty input maps to the zero time.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse("2006-01-02", s)
}

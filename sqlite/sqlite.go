// Package sqlite provides the embedded registry store: schema and index
// management, the batched import writer, and the read-optimized
// CompanyService backing the resolver's first tier.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
	"github.com/ncruces/go-sqlite3/ext/unicode"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Path returns the database file path.
func (db *DB) Path() string {
	return db.path
}

// Open opens the database connection and creates the schema if needed.
// Schema creation is idempotent, so repeated importer runs against an
// existing store do not fail.
func (db *DB) Open() error {
	// Unicode-aware upper/lower/LIKE, so substring matching folds the
	// same way here as in the file and live tiers. Overriding LIKE
	// forgoes the LIKE index optimization.
	conn, err := driver.Open(db.path, unicode.Register)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	// Verify connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	// Set busy timeout to wait 5 seconds before failing on lock contention.
	// This prevents immediate "database is locked" errors.
	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// Enable WAL mode for file-based databases. WAL lets readers run
	// concurrently against the store and is much faster for the batched
	// writes the importer issues.
	// Note: WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}

		// Memory-map the read-mostly store (256 MiB window).
		if _, err := conn.Exec("PRAGMA mmap_size = 268435456"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to set mmap size: %w", err)
		}
	}

	db.db = conn

	// Create schema
	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx starts an explicit transaction. Used by the batch writer.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

// Stats returns database statistics.
func (db *DB) Stats() sql.DBStats {
	return db.db.Stats()
}

// createSchema creates the database tables and indexes if they don't
// exist. The persons.full_name column is a STORED generated column so
// the derived full name is always recomputed from its parts at write
// time; the (registry_code, kind, position) primary key is what makes
// child-row re-imports idempotent under INSERT OR IGNORE.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS companies (
			registry_code TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT '',
			status_text TEXT NOT NULL DEFAULT '',
			legal_form TEXT NOT NULL DEFAULT '',
			vat_number TEXT NOT NULL DEFAULT '',
			address TEXT NOT NULL DEFAULT '',
			normalized_address TEXT NOT NULL DEFAULT '',
			postal_code TEXT NOT NULL DEFAULT '',
			first_registered TEXT NOT NULL DEFAULT ''
		);

		CREATE TABLE IF NOT EXISTS persons (
			registry_code TEXT NOT NULL,
			kind TEXT NOT NULL,
			position INTEGER NOT NULL,
			first_name TEXT NOT NULL DEFAULT '',
			last_name TEXT NOT NULL DEFAULT '',
			full_name TEXT GENERATED ALWAYS AS (trim(first_name || ' ' || last_name)) STORED,
			role TEXT NOT NULL DEFAULT '',
			role_text TEXT NOT NULL DEFAULT '',
			start_date TEXT NOT NULL DEFAULT '',
			end_date TEXT NOT NULL DEFAULT '',
			email TEXT NOT NULL DEFAULT '',
			PRIMARY KEY (registry_code, kind, position)
		);

		CREATE TABLE IF NOT EXISTS general_data (
			registry_code TEXT PRIMARY KEY,
			email TEXT NOT NULL DEFAULT '',
			phone TEXT NOT NULL DEFAULT '',
			capital TEXT NOT NULL DEFAULT '',
			capital_currency TEXT NOT NULL DEFAULT '',
			activity_code TEXT NOT NULL DEFAULT '',
			activity_text TEXT NOT NULL DEFAULT '',
			raw TEXT NOT NULL DEFAULT '',
			raw_hash TEXT NOT NULL DEFAULT ''
		);

		CREATE INDEX IF NOT EXISTS idx_companies_name ON companies(name);
		CREATE INDEX IF NOT EXISTS idx_companies_normalized_address ON companies(normalized_address);
		CREATE INDEX IF NOT EXISTS idx_companies_status ON companies(status);
		CREATE INDEX IF NOT EXISTS idx_persons_full_name ON persons(full_name);
	`

	_, err := db.db.Exec(schema)
	return err
}

// ABOUTME: SQLite implementation of the pressbook store using modernc.org/sqlite
// ABOUTME: Handles schema creation, version upgrades, change notification, and the state slot

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	_ "modernc.org/sqlite"
)

// schemaVersion is the current schema version, tracked via PRAGMA
// user_version. Version 1 creates the collections; version 2 adds secondary
// lookup indexes. Opening a database already at or above the target version
// leaves it untouched.
const schemaVersion = 2

// SQLiteStore implements all store interfaces against a single SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	logger *slog.Logger

	mu       sync.RWMutex
	listener ChangeListener
}

// NewSQLiteStore opens (or creates) a store at the given path. Parent
// directories are created if needed. Open failures are reported as
// ErrStorageUnavailable.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	logger := slog.Default().With("component", "store")

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("%w: creating database directory: %v", ErrStorageUnavailable, err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening database: %v", ErrStorageUnavailable, err)
	}

	// WAL keeps readers unblocked while a write is in flight
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: enabling WAL mode: %v", ErrStorageUnavailable, err)
	}

	s := &SQLiteStore{
		db:     db,
		logger: logger,
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: migrating schema: %v", ErrStorageUnavailable, err)
	}

	logger.Info("SQLite store initialized", "path", path)
	return s, nil
}

// SetChangeListener registers the listener notified after every mutation.
// Intended to be called once at startup, before writes begin.
func (s *SQLiteStore) SetChangeListener(l ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listener = l
}

// notify reports a mutated collection to the registered listener, if any.
func (s *SQLiteStore) notify(collection string) {
	s.mu.RLock()
	l := s.listener
	s.mu.RUnlock()
	if l != nil {
		l.CollectionChanged(collection)
	}
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	s.logger.Info("closing SQLite store")
	return s.db.Close()
}

// migrate brings the database up to schemaVersion. Each step is applied at
// most once; a database already at or above the target version is left
// untouched, so reopening with the same or an older binary never destroys
// existing collections.
func (s *SQLiteStore) migrate() error {
	var current int
	if err := s.db.QueryRow("PRAGMA user_version").Scan(&current); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	if current < 1 {
		if _, err := s.db.Exec(baseSchema); err != nil {
			return fmt.Errorf("creating base schema: %w", err)
		}
		s.logger.Info("applied schema version", "version", 1)
	}

	if current < 2 {
		if _, err := s.db.Exec(lookupIndexes); err != nil {
			return fmt.Errorf("adding lookup indexes: %w", err)
		}
		s.logger.Info("applied schema version", "version", 2)
	}

	if current < schemaVersion {
		if _, err := s.db.Exec(fmt.Sprintf("PRAGMA user_version = %d", schemaVersion)); err != nil {
			return fmt.Errorf("recording schema version: %w", err)
		}
	}

	return nil
}

// baseSchema is schema version 1: one table per collection, primary keys
// only. Prior data is never transformed by later versions.
const baseSchema = `
	CREATE TABLE IF NOT EXISTS authors (
		author_id TEXT PRIMARY KEY,
		name      TEXT NOT NULL,
		country   TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS publishers (
		publisher_id TEXT PRIMARY KEY,
		name         TEXT NOT NULL,
		address      TEXT NOT NULL DEFAULT '',
		phone        TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS categories (
		category_id TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS shelves (
		shelf_id TEXT PRIMARY KEY,
		code     TEXT NOT NULL,
		location TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS books (
		isbn           TEXT PRIMARY KEY,
		title          TEXT NOT NULL,
		author_id      TEXT NOT NULL DEFAULT '',
		publisher_id   TEXT NOT NULL DEFAULT '',
		category_id    TEXT NOT NULL DEFAULT '',
		year_published INTEGER NOT NULL DEFAULT 0,
		price          INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS stock (
		stock_id TEXT PRIMARY KEY,
		isbn     TEXT NOT NULL DEFAULT '',
		shelf_id TEXT NOT NULL DEFAULT '',
		quantity INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS outlets (
		outlet_id TEXT PRIMARY KEY,
		name      TEXT NOT NULL,
		address   TEXT NOT NULL DEFAULT '',
		phone     TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS distributions (
		distribution_id TEXT PRIMARY KEY,
		isbn            TEXT NOT NULL DEFAULT '',
		outlet_id       TEXT NOT NULL DEFAULT '',
		quantity        INTEGER NOT NULL DEFAULT 0,
		ship_date       TEXT NOT NULL DEFAULT '',
		notes           TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS returns (
		return_id       TEXT PRIMARY KEY,
		distribution_id TEXT NOT NULL DEFAULT '',
		quantity        INTEGER NOT NULL DEFAULT 0,
		return_date     TEXT NOT NULL DEFAULT '',
		condition       TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS customers (
		customer_id TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		address     TEXT NOT NULL DEFAULT '',
		phone       TEXT NOT NULL DEFAULT '',
		email       TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS sales (
		sale_id     TEXT PRIMARY KEY,
		customer_id TEXT NOT NULL DEFAULT '',
		isbn        TEXT NOT NULL DEFAULT '',
		quantity    INTEGER NOT NULL DEFAULT 0,
		sale_date   TEXT NOT NULL DEFAULT '',
		total_price INTEGER NOT NULL DEFAULT 0,
		notes       TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS accounts (
		username     TEXT PRIMARY KEY,
		password     TEXT NOT NULL,
		role         TEXT NOT NULL DEFAULT '',
		display_name TEXT NOT NULL DEFAULT ''
	);

	CREATE TABLE IF NOT EXISTS activity_log (
		log_id   TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		activity TEXT NOT NULL,
		ts       TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS app_state (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);
`

// lookupIndexes is schema version 2: secondary equality-lookup indexes.
const lookupIndexes = `
	CREATE INDEX IF NOT EXISTS idx_authors_name            ON authors(name);
	CREATE INDEX IF NOT EXISTS idx_publishers_name         ON publishers(name);
	CREATE INDEX IF NOT EXISTS idx_categories_name         ON categories(name);
	CREATE INDEX IF NOT EXISTS idx_shelves_code            ON shelves(code);
	CREATE INDEX IF NOT EXISTS idx_books_title             ON books(title);
	CREATE INDEX IF NOT EXISTS idx_books_author            ON books(author_id);
	CREATE INDEX IF NOT EXISTS idx_books_publisher         ON books(publisher_id);
	CREATE INDEX IF NOT EXISTS idx_books_category          ON books(category_id);
	CREATE INDEX IF NOT EXISTS idx_stock_isbn              ON stock(isbn);
	CREATE INDEX IF NOT EXISTS idx_stock_shelf             ON stock(shelf_id);
	CREATE INDEX IF NOT EXISTS idx_outlets_name            ON outlets(name);
	CREATE INDEX IF NOT EXISTS idx_distributions_isbn      ON distributions(isbn);
	CREATE INDEX IF NOT EXISTS idx_distributions_outlet    ON distributions(outlet_id);
	CREATE INDEX IF NOT EXISTS idx_distributions_ship_date ON distributions(ship_date);
	CREATE INDEX IF NOT EXISTS idx_returns_distribution    ON returns(distribution_id);
	CREATE INDEX IF NOT EXISTS idx_customers_name          ON customers(name);
	CREATE INDEX IF NOT EXISTS idx_customers_email         ON customers(email);
	CREATE INDEX IF NOT EXISTS idx_sales_customer          ON sales(customer_id);
	CREATE INDEX IF NOT EXISTS idx_sales_isbn              ON sales(isbn);
	CREATE INDEX IF NOT EXISTS idx_sales_sale_date         ON sales(sale_date);
	CREATE INDEX IF NOT EXISTS idx_accounts_role           ON accounts(role);
	CREATE INDEX IF NOT EXISTS idx_activity_username       ON activity_log(username);
	CREATE INDEX IF NOT EXISTS idx_activity_ts             ON activity_log(ts DESC);
`

// isConstraintViolation checks whether err is a SQLite UNIQUE constraint
// violation (duplicate primary key).
func isConstraintViolation(err error) bool {
	if err == nil {
		return false
	}
	errStr := err.Error()
	return strings.Contains(errStr, "UNIQUE constraint failed") ||
		strings.Contains(errStr, "constraint failed")
}

// count runs SELECT COUNT(*) against one table.
func (s *SQLiteStore) count(ctx context.Context, table string) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting %s: %w", table, err)
	}
	return n, nil
}

// Interface conformance.
var (
	_ CatalogStore   = (*SQLiteStore)(nil)
	_ InventoryStore = (*SQLiteStore)(nil)
	_ SalesStore     = (*SQLiteStore)(nil)
	_ AccountStore   = (*SQLiteStore)(nil)
	_ ActivityStore  = (*SQLiteStore)(nil)
	_ StateStore     = (*SQLiteStore)(nil)
)

// PutState writes a value into the durable key/value slot, replacing any
// previous value for the key.
func (s *SQLiteStore) PutState(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO app_state (key, value, updated_at)
		VALUES (?, ?, ?)
	`, key, value, nowRFC3339())
	if err != nil {
		return fmt.Errorf("saving state %q: %w", key, err)
	}
	s.logger.Debug("saved state", "key", key, "size", len(value))
	return nil
}

// GetState reads a value from the durable key/value slot.
// Returns ErrNotFound when the key is absent.
func (s *SQLiteStore) GetState(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, "SELECT value FROM app_state WHERE key = ?", key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying state %q: %w", key, err)
	}
	return value, nil
}

// DeleteState removes a key from the slot. Deleting an absent key is a no-op.
func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, "DELETE FROM app_state WHERE key = ?", key); err != nil {
		return fmt.Errorf("deleting state %q: %w", key, err)
	}
	return nil
}

// Package sqlite implements the repository interfaces using SQLite as the
// storage backend.
//
// WHY modernc.org/sqlite INSTEAD OF github.com/mattn/go-sqlite3?
// mattn/go-sqlite3 uses CGo, which means you need a C compiler installed and
// cross-compilation becomes painful. modernc.org/sqlite is a pure Go
// translation of the SQLite C code — no C compiler needed, works everywhere
// Go works, and ":memory:" databases make tests trivial.
//
// The schema keeps the relational invariants the domain cares about as close
// to the data as possible:
//   - hosts and rsvps use composite primary keys (event_id, user_id), so a
//     user can hold each role at most once per event
//   - both tables cascade on event and user deletion
//   - cost/capacity/party_size carry CHECK constraints
//
// What SQL alone cannot enforce — "an event always has at least one host"
// and "host and guest are mutually exclusive for a pair" — is enforced by
// the service layer inside InTx transactions.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	// Blank import registers the "sqlite" driver with database/sql.
	_ "modernc.org/sqlite"

	"github.com/screenpatron/screen-patron/internal/repository"
)

// querier is the subset of database/sql shared by *sql.DB and *sql.Tx.
// Every repository method runs against db.q, so the same code serves both
// the pooled connection and an open transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// DB wraps a sql.DB connection pool and implements repository.Store.
type DB struct {
	conn *sql.DB
	q    querier
}

var _ repository.Store = (*DB)(nil)

// New creates a new SQLite database connection and runs migrations.
//
// dbPath examples:
//   - "data/patron.db"  → file-based database (persistent)
//   - ":memory:"        → in-memory database (great for tests, lost on close)
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening database: %w", err)
	}

	// Both PRAGMAs below apply per connection, and a ":memory:" database is
	// itself per connection, so the pool must stay at exactly one. SQLite
	// serializes writers anyway; this costs nothing.
	conn.SetMaxOpenConns(1)

	// Ping forces an immediate connection so a bad path or permissions issue
	// surfaces here instead of on the first query.
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: pinging database: %w", err)
	}

	// WAL mode allows concurrent reads while a write is in progress.
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: setting WAL mode: %w", err)
	}

	// Foreign keys are OFF by default in SQLite. The cascade behaviour on
	// hosts and rsvps depends on them.
	if _, err := conn.Exec("PRAGMA foreign_keys=ON"); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: enabling foreign keys: %w", err)
	}

	db := &DB{conn: conn, q: conn}

	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("sqlite: running migrations: %w", err)
	}

	return db, nil
}

// Close closes the database connection pool.
func (db *DB) Close() error {
	return db.conn.Close()
}

// InTx runs fn inside a single transaction. If fn returns an error, the
// transaction rolls back and the error is returned unchanged, so domain
// errors (SoleHost, RoleConflict, ...) survive the round trip.
//
// If db is already transactional (a nested InTx call from the service
// layer), fn joins the open transaction instead of starting a new one —
// SQLite does not support nested BEGIN.
func (db *DB) InTx(ctx context.Context, fn func(tx repository.Store) error) error {
	if _, ok := db.q.(*sql.Tx); ok {
		return fn(db)
	}

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning transaction: %w", err)
	}

	txStore := &DB{conn: db.conn, q: tx}
	if err := fn(txStore); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("sqlite: rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing transaction: %w", err)
	}
	return nil
}

// migrate creates all tables. CREATE TABLE IF NOT EXISTS keeps it idempotent.
func (db *DB) migrate() error {
	_, err := db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id            TEXT PRIMARY KEY,
			email         TEXT NOT NULL UNIQUE,
			name          TEXT NOT NULL DEFAULT '',
			photo         TEXT NOT NULL DEFAULT '',
			bio           TEXT NOT NULL DEFAULT '',
			instagram     TEXT NOT NULL DEFAULT '',
			twitter       TEXT NOT NULL DEFAULT '',
			website       TEXT NOT NULL DEFAULT '',
			password_hash TEXT NOT NULL DEFAULT '',
			created_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
	`)
	if err != nil {
		return fmt.Errorf("creating users table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS events (
			id          TEXT PRIMARY KEY,
			name        TEXT NOT NULL DEFAULT '',
			photo       TEXT NOT NULL DEFAULT '',
			description TEXT NOT NULL DEFAULT '',
			date_start  DATETIME,
			date_end    DATETIME,
			time_zone   TEXT NOT NULL DEFAULT '',
			location    TEXT NOT NULL DEFAULT '',
			cost        INTEGER NOT NULL DEFAULT 0 CHECK (cost >= 0),
			capacity    INTEGER NOT NULL DEFAULT 0 CHECK (capacity >= 0),
			created_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at  DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);
		CREATE INDEX IF NOT EXISTS idx_events_date_start ON events(date_start);
	`)
	if err != nil {
		return fmt.Errorf("creating events table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS hosts (
			event_id   TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name       TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (event_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_hosts_user_id ON hosts(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating hosts table: %w", err)
	}

	_, err = db.conn.Exec(`
		CREATE TABLE IF NOT EXISTS rsvps (
			event_id   TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
			user_id    TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			status     TEXT NOT NULL CHECK (status IN ('GOING', 'MAYBE', 'NOT_GOING')),
			name       TEXT NOT NULL DEFAULT '',
			party_size INTEGER NOT NULL DEFAULT 1 CHECK (party_size >= 1),
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
			PRIMARY KEY (event_id, user_id)
		);
		CREATE INDEX IF NOT EXISTS idx_rsvps_user_id ON rsvps(user_id);
	`)
	if err != nil {
		return fmt.Errorf("creating rsvps table: %w", err)
	}

	return nil
}

// isUniqueViolation reports whether err is a SQLite uniqueness-constraint
// failure (duplicate email, duplicate composite key). The driver exposes
// this in the error text; the extended result code is stable across
// modernc.org/sqlite versions but the typed error is not exported, so we
// match on the constraint message.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// joinSets joins the fragments of a dynamically assembled SET clause.
// The fragments are all literals defined in this package; only the bound
// arguments carry caller data.
func joinSets(sets []string) string {
	return strings.Join(sets, ", ")
}

// nullTime maps a time.Time to its column value: zero time → NULL.
func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

// fromNullTime maps a scanned NULLable column back to a time.Time,
// normalizing NULL to the zero value at the data-access boundary.
func fromNullTime(nt sql.NullTime) time.Time {
	if !nt.Valid {
		return time.Time{}
	}
	return nt.Time
}

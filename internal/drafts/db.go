// Package drafts persists the latest committed snapshot of every open form in
// SQLite, so forms survive a restart.
package drafts

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS drafts (
	id         TEXT PRIMARY KEY,
	seed       TEXT NOT NULL,
	version    INTEGER NOT NULL DEFAULT 0,
	model      TEXT NOT NULL,
	valid      INTEGER NOT NULL DEFAULT 0,
	checksum   TEXT NOT NULL DEFAULT '',
	updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_drafts_seed ON drafts(seed);
`

// Store defines the draft persistence operations. Consumers depend on this
// interface rather than *DB.
type Store interface {
	Upsert(d Row) error
	Get(id string) (*Row, error)
	Delete(id string) error
	List() ([]Row, error)
	Close() error
}

var _ Store = (*DB)(nil)

// DB wraps a sql.DB with draft operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("drafts: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("drafts: ping: %w", err)
	}
	if _, err := conn.Exec(schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("drafts: apply schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

// Package index keeps a SQLite mirror of the note collection for search and
// filtering, with optional FTS5 full-text search. The CSV file stays the
// source of truth; the index is rebuilt from it whenever it changes.
package index

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

const coreSchemaSQL = `
CREATE TABLE IF NOT EXISTS notes (
	id         TEXT PRIMARY KEY,
	position   INTEGER NOT NULL,
	title      TEXT NOT NULL DEFAULT '',
	author     TEXT NOT NULL DEFAULT '',
	year       TEXT NOT NULL DEFAULT '',
	media_type TEXT NOT NULL DEFAULT '',
	one_liner  TEXT NOT NULL DEFAULT '',
	body       TEXT NOT NULL DEFAULT '',
	fold_title     TEXT NOT NULL DEFAULT '',
	fold_author    TEXT NOT NULL DEFAULT '',
	fold_one_liner TEXT NOT NULL DEFAULT '',
	fold_body      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_notes_position ON notes(position);
CREATE INDEX IF NOT EXISTS idx_notes_media ON notes(media_type);
`

// schemaVersion is bumped whenever the notes table changes shape. The index
// is derived data, so an older table is dropped and refilled on the next sync.
const schemaVersion = 1

// DB wraps a sql.DB with index-specific operations.
type DB struct {
	conn *sql.DB
}

// Open opens (or creates) the SQLite database and applies the schema.
func Open(dsn string) (*DB, error) {
	conn, err := sql.Open("sqlite3", dsn+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("index: open db: %w", err)
	}
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: ping: %w", err)
	}
	if err := migrate(conn); err != nil {
		conn.Close()
		return nil, err
	}
	if _, err := conn.Exec(coreSchemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply core schema: %w", err)
	}
	if err := initFTS(conn); err != nil {
		conn.Close()
		return nil, fmt.Errorf("index: apply fts schema: %w", err)
	}
	return &DB{conn: conn}, nil
}

func migrate(conn *sql.DB) error {
	var version int
	if err := conn.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("index: read schema version: %w", err)
	}
	if version == schemaVersion {
		return nil
	}
	if _, err := conn.Exec(`DROP TABLE IF EXISTS notes`); err != nil {
		return fmt.Errorf("index: drop old notes table: %w", err)
	}
	if _, err := conn.Exec(fmt.Sprintf(`PRAGMA user_version = %d`, schemaVersion)); err != nil {
		return fmt.Errorf("index: set schema version: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

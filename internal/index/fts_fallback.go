//go:build !sqlite_fts5

package index

import (
	"database/sql"
	"fmt"

	"github.com/starford/folio/internal/models"
)

func initFTS(_ *sql.DB) error {
	// FTS5 not available; search uses LIKE over the notes table.
	return nil
}

func ftsInsert(_ *sql.Tx, _ models.Note) error { return nil }

func ftsClear(_ *sql.Tx) error { return nil }

// Search finds notes whose title, author, one-liner or body contains query
// as a literal substring after Fold (fallback when FTS5 is not compiled in).
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	q := Fold(query)
	rows, err := db.conn.Query(`
		SELECT id, position, title, author, substr(body, 1, 200)
		FROM notes
		WHERE instr(fold_title, ?) > 0 OR instr(fold_author, ?) > 0
			OR instr(fold_one_liner, ?) > 0 OR instr(fold_body, ?) > 0
		ORDER BY position
		LIMIT ?
	`, q, q, q, q, limit)
	if err != nil {
		return nil, fmt.Errorf("index: search: %w", err)
	}
	defer rows.Close()

	var out []SearchResult
	for rows.Next() {
		var r SearchResult
		if err := rows.Scan(&r.ID, &r.Position, &r.Title, &r.Author, &r.Snippet); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

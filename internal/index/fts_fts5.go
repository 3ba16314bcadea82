//go:build sqlite_fts5

package index

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/starford/folio/internal/models"
)

func initFTS(conn *sql.DB) error {
	_, err := conn.Exec(`
		CREATE VIRTUAL TABLE IF NOT EXISTS notes_fts USING fts5(
			id UNINDEXED,
			title,
			author,
			one_liner,
			body,
			tokenize = 'unicode61 remove_diacritics 2'
		);
	`)
	return err
}

func ftsInsert(tx *sql.Tx, n models.Note) error {
	_, err := tx.Exec(`INSERT INTO notes_fts (id, title, author, one_liner, body) VALUES (?, ?, ?, ?, ?)`,
		n.ID, n.Title(), n.Get(models.FieldAuthor), n.Get(models.FieldOneLiner), n.Body())
	if err != nil {
		return fmt.Errorf("index: insert fts: %w", err)
	}
	return nil
}

func ftsClear(tx *sql.Tx) error {
	if _, err := tx.Exec(`DELETE FROM notes_fts`); err != nil {
		return fmt.Errorf("index: clear fts: %w", err)
	}
	return nil
}

// matchExpr quotes every term so user input is matched literally rather than
// parsed as FTS5 query syntax. Terms are ANDed.
func matchExpr(query string) string {
	terms := strings.Fields(query)
	for i, t := range terms {
		terms[i] = `"` + strings.ReplaceAll(t, `"`, `""`) + `"`
	}
	return strings.Join(terms, " ")
}

// Search performs an FTS5 full-text search and returns matching results with snippets.
func (db *DB) Search(query string, limit int) ([]SearchResult, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.conn.Query(`
		SELECT notes_fts.id,
		       n.position,
		       n.title,
		       n.author,
		       snippet(notes_fts, 4, '<b>', '</b>', '...', 64)
		FROM notes_fts
		JOIN notes n ON n.id = notes_fts.id
		WHERE notes_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, matchExpr(query), limit)
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

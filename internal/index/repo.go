package index

import (
	"fmt"
	"strings"

	"github.com/starford/folio/internal/models"
)

// NoteRow is the indexed summary of one note.
type NoteRow struct {
	ID        string `json:"id"`
	Position  int    `json:"position"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Year      string `json:"year"`
	MediaType string `json:"media_type"`
}

// SearchResult represents one search hit.
type SearchResult struct {
	ID       string `json:"id"`
	Position int    `json:"position"`
	Title    string `json:"title"`
	Author   string `json:"author"`
	Snippet  string `json:"snippet"`
}

// Fold is the case folding applied to searchable text and queries. Search
// without an index must use it too so both paths agree.
func Fold(s string) string {
	return strings.ToLower(s)
}

// Replace swaps the indexed content for notes, in collection order, within a
// single transaction.
func (db *DB) Replace(notes []models.Note) error {
	tx, err := db.conn.Begin()
	if err != nil {
		return fmt.Errorf("index: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	if _, err := tx.Exec(`DELETE FROM notes`); err != nil {
		return fmt.Errorf("index: clear notes: %w", err)
	}
	if err := ftsClear(tx); err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO notes (id, position, title, author, year, media_type, one_liner, body,
			fold_title, fold_author, fold_one_liner, fold_body)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("index: prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, n := range notes {
		_, err := stmt.Exec(n.ID, i,
			n.Title(),
			n.Get(models.FieldAuthor),
			n.Get(models.FieldYear),
			n.Get(models.FieldMediaType),
			n.Get(models.FieldOneLiner),
			n.Body(),
			Fold(n.Title()),
			Fold(n.Get(models.FieldAuthor)),
			Fold(n.Get(models.FieldOneLiner)),
			Fold(n.Body()),
		)
		if err != nil {
			return fmt.Errorf("index: insert note: %w", err)
		}
		if err := ftsInsert(tx, n); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// ByMedia lists the notes with the given media type in collection order.
func (db *DB) ByMedia(media string) ([]NoteRow, error) {
	rows, err := db.conn.Query(`
		SELECT id, position, title, author, year, media_type
		FROM notes
		WHERE media_type = ?
		ORDER BY position
	`, media)
	if err != nil {
		return nil, fmt.Errorf("index: by media: %w", err)
	}
	defer rows.Close()

	var out []NoteRow
	for rows.Next() {
		var r NoteRow
		if err := rows.Scan(&r.ID, &r.Position, &r.Title, &r.Author, &r.Year, &r.MediaType); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of indexed notes.
func (db *DB) Count() (int, error) {
	var n int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("index: count: %w", err)
	}
	return n, nil
}

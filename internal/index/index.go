package index

import "github.com/starford/folio/internal/models"

// NoteIndex is the read/replace surface the note service needs from the index.
type NoteIndex interface {
	Replace(notes []models.Note) error
	Search(query string, limit int) ([]SearchResult, error)
	ByMedia(media string) ([]NoteRow, error)
	Count() (int, error)
	Close() error
}

var _ NoteIndex = (*DB)(nil)

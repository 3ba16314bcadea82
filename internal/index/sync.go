package index

import (
	"log/slog"

	"github.com/starford/folio/internal/models"
)

// Sync rebuilds the index from notes. IDs are reassigned whenever the
// collection is loaded, so the whole table is replaced rather than diffed.
func Sync(db NoteIndex, notes []models.Note, logger *slog.Logger) error {
	if err := db.Replace(notes); err != nil {
		logger.Warn("sync: replace failed", slog.String("error", err.Error()))
		return err
	}
	logger.Debug("sync: indexed", slog.Int("notes", len(notes)))
	return nil
}

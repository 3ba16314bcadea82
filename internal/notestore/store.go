// Package notestore owns the note collection and its CSV-file persistence.
//
// The collection is an ordered slice. Every mutation rewrites the whole file
// after renaming the previous version to a single-generation backup. Notes
// also get a surrogate ID at load/add time so callers holding a reference
// survive removals; positions stay available as a derived view.
//
// A Store is not safe for concurrent use.
package notestore

import (
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/checksum"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/storage"
)

// Store is the authoritative in-memory note collection.
type Store struct {
	fs    storage.Provider
	path  string
	notes []models.Note
	sum   string // checksum of the bytes last read or written
}

// Open creates a store backed by path (relative to fs) and loads it. A
// missing file is a first run and yields an empty collection.
func Open(fs storage.Provider, path string) (*Store, error) {
	s := &Store{fs: fs, path: path}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	data, err := s.fs.Read(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.notes = nil
		s.sum = ""
		return nil
	}
	if err != nil {
		return fmt.Errorf("notestore: load: %w", err)
	}
	notes, err := decode(data)
	if err != nil {
		return err
	}
	for i := range notes {
		if notes[i].ID, err = newID(); err != nil {
			return err
		}
	}
	s.notes = notes
	s.sum = checksum.Sum(data)
	return nil
}

// Reload discards the in-memory collection and reads the file again. IDs are
// reassigned.
func (s *Store) Reload() error {
	return s.load()
}

// Stale reports whether the backing file no longer matches the content the
// store last read or wrote, i.e. it was edited or removed externally.
func (s *Store) Stale() (bool, error) {
	data, err := s.fs.Read(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return s.sum != "", nil
	}
	if err != nil {
		return false, fmt.Errorf("notestore: check: %w", err)
	}
	return !checksum.Equal(data, s.sum), nil
}

// Path returns the backing file path relative to the storage root.
func (s *Store) Path() string {
	return s.path
}

// Checksum returns the digest of the file content last read or written, or
// "" when nothing has been persisted yet.
func (s *Store) Checksum() string {
	return s.sum
}

// Len returns the number of notes.
func (s *Store) Len() int {
	return len(s.notes)
}

// Notes returns a copy of the collection in order.
func (s *Store) Notes() []models.Note {
	out := make([]models.Note, len(s.notes))
	for i, n := range s.notes {
		out[i] = n.Clone()
	}
	return out
}

// At returns the note at position index. It panics when index is out of
// range.
func (s *Store) At(index int) models.Note {
	s.checkIndex(index)
	return s.notes[index].Clone()
}

// NewEmptyNote returns a note with every category set to "".
func (s *Store) NewEmptyNote() models.Note {
	return models.NewEmptyNote()
}

// Add appends note and rewrites the file. The stored copy, carrying its new
// ID, is returned.
func (s *Store) Add(note models.Note) (models.Note, error) {
	n := note.Normalize()
	id, err := newID()
	if err != nil {
		return models.Note{}, err
	}
	n.ID = id

	next := append(s.cloneSlice(), n)
	if err := s.commit(next); err != nil {
		return models.Note{}, err
	}
	return n.Clone(), nil
}

// RemoveAt deletes the note at index, shifting later notes down by one, and
// rewrites the file. An out-of-range index is a programming error and
// panics.
func (s *Store) RemoveAt(index int) error {
	s.checkIndex(index)
	return s.commit(splice(s.cloneSlice(), index))
}

// UpdateAt replaces the note at index by removing it and appending note at
// the end of the collection, then rewrites the file once. The replacement
// keeps the removed note's ID. It panics when index is out of range.
func (s *Store) UpdateAt(note models.Note, index int) (models.Note, error) {
	s.checkIndex(index)
	n := note.Normalize()
	n.ID = s.notes[index].ID

	next := append(splice(s.cloneSlice(), index), n)
	if err := s.commit(next); err != nil {
		return models.Note{}, err
	}
	return n.Clone(), nil
}

// Get returns the note with the given ID.
func (s *Store) Get(id string) (models.Note, error) {
	i, ok := s.Position(id)
	if !ok {
		return models.Note{}, fmt.Errorf("notestore: note %s: %w", id, apperr.ErrNotFound)
	}
	return s.notes[i].Clone(), nil
}

// Position returns the current position of the note with the given ID.
func (s *Store) Position(id string) (int, bool) {
	for i, n := range s.notes {
		if n.ID == id {
			return i, true
		}
	}
	return -1, false
}

// Update replaces the note with the given ID in place and rewrites the file.
func (s *Store) Update(id string, note models.Note) (models.Note, error) {
	i, ok := s.Position(id)
	if !ok {
		return models.Note{}, fmt.Errorf("notestore: note %s: %w", id, apperr.ErrNotFound)
	}
	n := note.Normalize()
	n.ID = id

	next := s.cloneSlice()
	next[i] = n
	if err := s.commit(next); err != nil {
		return models.Note{}, err
	}
	return n.Clone(), nil
}

// Remove deletes the note with the given ID and rewrites the file.
func (s *Store) Remove(id string) error {
	i, ok := s.Position(id)
	if !ok {
		return fmt.Errorf("notestore: note %s: %w", id, apperr.ErrNotFound)
	}
	return s.RemoveAt(i)
}

// Dump rewrites the backing file from the in-memory collection, first
// renaming any existing file to its backup name.
func (s *Store) Dump() error {
	return s.write(s.notes)
}

// commit persists next and, only on success, makes it the collection.
func (s *Store) commit(next []models.Note) error {
	if err := s.write(next); err != nil {
		return err
	}
	s.notes = next
	return nil
}

func (s *Store) write(notes []models.Note) error {
	data, err := encode(notes)
	if err != nil {
		return err
	}
	if _, err := s.fs.Backup(s.path); err != nil {
		return fmt.Errorf("notestore: dump: %w", err)
	}
	if err := s.fs.Write(s.path, data); err != nil {
		return fmt.Errorf("notestore: dump: %w", err)
	}
	s.sum = checksum.Sum(data)
	return nil
}

func (s *Store) checkIndex(index int) {
	if index < 0 || index >= len(s.notes) {
		panic(fmt.Sprintf("notestore: position %d out of range [0,%d)", index, len(s.notes)))
	}
}

func (s *Store) cloneSlice() []models.Note {
	out := make([]models.Note, len(s.notes), len(s.notes)+1)
	copy(out, s.notes)
	return out
}

func splice(notes []models.Note, index int) []models.Note {
	return append(notes[:index], notes[index+1:]...)
}

func newID() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("notestore: generate id: %w", err)
	}
	return id.String(), nil
}

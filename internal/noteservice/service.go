// Package noteservice is the single entry point the CLI, HTTP API and MCP
// server use to read and change the note collection. It serializes access to
// the store, keeps the search index in step and reports changes.
package noteservice

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/booklet"
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/notestore"
	"github.com/starford/folio/internal/settings"
	"github.com/starford/folio/internal/storage"
)

// ChangeKind names a collection change reported to the change hook.
type ChangeKind string

// Change kinds.
const (
	ChangeCreated  ChangeKind = "created"
	ChangeUpdated  ChangeKind = "updated"
	ChangeDeleted  ChangeKind = "deleted"
	ChangeReloaded ChangeKind = "reloaded"
)

// ChangeFunc is called after every successful mutation. id is empty for
// ChangeReloaded.
type ChangeFunc func(kind ChangeKind, id string)

// NoteView is a note together with its current position.
type NoteView struct {
	ID       string            `json:"id"`
	Position int               `json:"position"`
	Fields   map[string]string `json:"fields"`
}

// Service coordinates the store, index, settings and booklet generator.
type Service struct {
	mu    sync.Mutex
	store *notestore.Store

	db           index.NoteIndex
	settingsFS   storage.Provider
	settingsName string
	booklet      booklet.Options
	logger       *slog.Logger
	onChange     ChangeFunc
}

// Option configures a Service.
type Option func(*Service)

// WithIndex mirrors the collection into db and uses it for search and media
// filtering. Without an index both fall back to scanning the collection.
func WithIndex(db index.NoteIndex) Option {
	return func(s *Service) { s.db = db }
}

// WithSettings stores the booklet output location in the file name under fs.
func WithSettings(fs storage.Provider, name string) Option {
	return func(s *Service) {
		s.settingsFS = fs
		s.settingsName = name
	}
}

// WithBooklet sets the document generation options.
func WithBooklet(opts booklet.Options) Option {
	return func(s *Service) { s.booklet = opts }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithChangeHook registers fn to be called after each mutation.
func WithChangeHook(fn ChangeFunc) Option {
	return func(s *Service) { s.onChange = fn }
}

// New creates a service over store and builds the initial index.
func New(store *notestore.Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.reindex()
	return s
}

// Schema returns the ordered category list.
func (s *Service) Schema() []models.Category {
	return models.Schema
}

// Template returns a blank note with every category present.
func (s *Service) Template() models.Note {
	return s.store.NewEmptyNote()
}

// Len returns the number of notes.
func (s *Service) Len(_ context.Context) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Len()
}

// List returns the notes in collection order, optionally restricted to one
// media type.
func (s *Service) List(_ context.Context, media string) ([]NoteView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	notes := s.store.Notes()
	if media == "" {
		return views(notes), nil
	}
	if err := validateMedia(media); err != nil {
		return nil, err
	}
	if s.db != nil {
		rows, err := s.db.ByMedia(media)
		if err != nil {
			return nil, err
		}
		out := make([]NoteView, 0, len(rows))
		for _, r := range rows {
			if r.Position < len(notes) && notes[r.Position].ID == r.ID {
				out = append(out, view(notes[r.Position], r.Position))
			}
		}
		return out, nil
	}
	var out []NoteView
	for i, n := range notes {
		if n.Get(models.FieldMediaType) == media {
			out = append(out, view(n, i))
		}
	}
	return out, nil
}

// Get returns the note with the given ID.
func (s *Service) Get(_ context.Context, id string) (NoteView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.get(id)
}

// GetAt returns the note at position.
func (s *Service) GetAt(_ context.Context, position int) (NoteView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkPosition(position); err != nil {
		return NoteView{}, err
	}
	return view(s.store.At(position), position), nil
}

// Create validates fields and appends a new note. An all-blank note is
// rejected with apperr.ErrEmptyNote.
func (s *Service) Create(_ context.Context, fields map[string]string) (NoteView, error) {
	if err := validateFields(fields); err != nil {
		return NoteView{}, err
	}
	n := models.Note{Fields: fields}.Normalize()
	if n.IsEmpty() {
		return NoteView{}, apperr.ErrEmptyNote
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	added, err := s.store.Add(n)
	if err != nil {
		return NoteView{}, err
	}
	s.changed(ChangeCreated, added.ID)
	return view(added, s.store.Len()-1), nil
}

// Update merges fields into the note with the given ID, keeping its
// position. When the result is blank the note is removed and deleted is
// true.
func (s *Service) Update(_ context.Context, id string, fields map[string]string) (v NoteView, deleted bool, err error) {
	if err := validateFields(fields); err != nil {
		return NoteView{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	current, err := s.store.Get(id)
	if err != nil {
		return NoteView{}, false, err
	}
	merged := merge(current, fields)
	if merged.IsEmpty() {
		if err := s.store.Remove(id); err != nil {
			return NoteView{}, false, err
		}
		s.changed(ChangeDeleted, id)
		return NoteView{}, true, nil
	}
	updated, err := s.store.Update(id, merged)
	if err != nil {
		return NoteView{}, false, err
	}
	s.changed(ChangeUpdated, id)
	pos, _ := s.store.Position(id)
	return view(updated, pos), false, nil
}

// UpdateAt merges fields into the note at position. The edited note moves
// to the end of the collection. When the result is blank the note is
// removed instead and deleted is true.
func (s *Service) UpdateAt(_ context.Context, position int, fields map[string]string) (v NoteView, deleted bool, err error) {
	if err := validateFields(fields); err != nil {
		return NoteView{}, false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkPosition(position); err != nil {
		return NoteView{}, false, err
	}
	current := s.store.At(position)
	merged := merge(current, fields)
	if merged.IsEmpty() {
		if err := s.store.RemoveAt(position); err != nil {
			return NoteView{}, false, err
		}
		s.changed(ChangeDeleted, current.ID)
		return NoteView{}, true, nil
	}
	updated, err := s.store.UpdateAt(merged, position)
	if err != nil {
		return NoteView{}, false, err
	}
	s.changed(ChangeUpdated, updated.ID)
	return view(updated, s.store.Len()-1), false, nil
}

// Delete removes the note with the given ID.
func (s *Service) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.store.Remove(id); err != nil {
		return err
	}
	s.changed(ChangeDeleted, id)
	return nil
}

// DeleteAt removes the note at position.
func (s *Service) DeleteAt(_ context.Context, position int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.checkPosition(position); err != nil {
		return err
	}
	id := s.store.At(position).ID
	if err := s.store.RemoveAt(position); err != nil {
		return err
	}
	s.changed(ChangeDeleted, id)
	return nil
}

// Search finds notes whose title, author, one-liner or body contain query.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []index.SearchResult{}, nil
	}
	if limit <= 0 {
		limit = 20
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		res, err := s.db.Search(query, limit)
		if err != nil {
			return nil, err
		}
		if res == nil {
			res = []index.SearchResult{}
		}
		return res, nil
	}
	return scan(s.store.Notes(), query, limit), nil
}

// Reload re-reads the collection when the backing file was changed by
// something other than this service. It reports whether a reload happened.
func (s *Service) Reload(_ context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stale, err := s.store.Stale()
	if err != nil || !stale {
		return false, err
	}
	if err := s.store.Reload(); err != nil {
		return false, err
	}
	s.logger.Info("collection reloaded", slog.Int("notes", s.store.Len()))
	s.changed(ChangeReloaded, "")
	return true, nil
}

// Export writes the booklet to path, or to the configured output location
// when path is empty, and returns the path written. An explicit path must
// pass the same checks as SetOutput.
func (s *Service) Export(ctx context.Context, path string) (string, error) {
	if path == "" {
		out, err := s.Output(ctx)
		if err != nil {
			return "", err
		}
		path = out.Path()
	} else {
		var out settings.Output
		if err := out.SetPath(path); err != nil {
			return "", fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
		}
		path = out.Path()
	}

	s.mu.Lock()
	notes := s.store.Notes()
	s.mu.Unlock()

	if err := booklet.Generate(path, notes, s.booklet); err != nil {
		return "", err
	}
	s.logger.Info("booklet exported", slog.String("path", path), slog.Int("notes", len(notes)))
	return path, nil
}

// WriteBooklet renders the current collection as a PDF to w.
func (s *Service) WriteBooklet(_ context.Context, w io.Writer) error {
	s.mu.Lock()
	notes := s.store.Notes()
	s.mu.Unlock()
	return booklet.Render(w, booklet.Build(notes, s.booklet), s.booklet)
}

// Output returns the saved booklet location.
func (s *Service) Output(_ context.Context) (settings.Output, error) {
	if s.settingsFS == nil {
		return settings.Default(), nil
	}
	return settings.Load(s.settingsFS, s.settingsName)
}

// SetOutput saves a new booklet location.
func (s *Service) SetOutput(_ context.Context, path string) (settings.Output, error) {
	var out settings.Output
	if err := out.SetPath(path); err != nil {
		return settings.Output{}, fmt.Errorf("%w: %v", apperr.ErrInvalidInput, err)
	}
	if s.settingsFS == nil {
		return settings.Output{}, fmt.Errorf("noteservice: no settings location configured")
	}
	if err := settings.Save(s.settingsFS, s.settingsName, out); err != nil {
		return settings.Output{}, err
	}
	return out, nil
}

func (s *Service) get(id string) (NoteView, error) {
	n, err := s.store.Get(id)
	if err != nil {
		return NoteView{}, err
	}
	pos, _ := s.store.Position(id)
	return view(n, pos), nil
}

func (s *Service) checkPosition(position int) error {
	if position < 0 || position >= s.store.Len() {
		return fmt.Errorf("noteservice: position %d: %w", position, apperr.ErrNotFound)
	}
	return nil
}

// changed refreshes the index and fires the change hook. The caller holds
// s.mu.
func (s *Service) changed(kind ChangeKind, id string) {
	s.reindex()
	if s.onChange != nil {
		s.onChange(kind, id)
	}
}

func (s *Service) reindex() {
	if s.db == nil {
		return
	}
	// The index is derived data; a failed sync is logged by Sync and search
	// results lag until the next successful one.
	_ = index.Sync(s.db, s.store.Notes(), s.logger)
}

func merge(n models.Note, fields map[string]string) models.Note {
	out := n.Clone()
	for k, v := range fields {
		out.Set(k, v)
	}
	return out
}

func view(n models.Note, position int) NoteView {
	return NoteView{ID: n.ID, Position: position, Fields: n.Fields}
}

func views(notes []models.Note) []NoteView {
	out := make([]NoteView, len(notes))
	for i, n := range notes {
		out[i] = view(n, i)
	}
	return out
}

func scan(notes []models.Note, query string, limit int) []index.SearchResult {
	q := index.Fold(query)
	out := []index.SearchResult{}
	for i, n := range notes {
		hit := false
		for _, f := range []string{models.FieldTitle, models.FieldAuthor, models.FieldOneLiner, models.FieldNotes} {
			if strings.Contains(index.Fold(n.Get(f)), q) {
				hit = true
				break
			}
		}
		if !hit {
			continue
		}
		body := []rune(n.Body())
		if len(body) > 200 {
			body = body[:200]
		}
		out = append(out, index.SearchResult{
			ID:       n.ID,
			Position: i,
			Title:    n.Title(),
			Author:   n.Get(models.FieldAuthor),
			Snippet:  string(body),
		})
		if len(out) == limit {
			break
		}
	}
	return out
}

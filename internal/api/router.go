package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events behind the same auth.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Notes CRUD. The static template route wins over {id}.
	r.Get("/notes", h.ListNotes)
	r.Post("/notes", h.CreateNote)
	r.Get("/notes/template", h.Template)
	r.Get("/notes/{id}", h.GetNote)
	r.Put("/notes/{id}", h.UpdateNote)
	r.Delete("/notes/{id}", h.DeleteNote)

	r.Get("/schema", h.Schema)
	r.Get("/search", h.Search)

	// Booklet.
	r.Get("/output", h.Output)
	r.Put("/output", h.SetOutput)
	r.Post("/export", h.Export)
	r.Get("/booklet", h.Booklet)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}

package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/starford/folio/internal/noteservice"
)

// Handler holds API route handlers.
type Handler struct {
	svc *noteservice.Service
}

// NewHandler creates a new Handler.
func NewHandler(svc *noteservice.Service) *Handler {
	return &Handler{svc: svc}
}

// ListNotes handles GET /api/notes.
//
//	@Summary		List notes in collection order
//	@Tags			notes
//	@Produce		json
//	@Param			media	query		string	false	"Filter by media type"
//	@Success		200		{object}	NoteListResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [get]
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	notes, err := h.svc.List(r.Context(), r.URL.Query().Get("media"))
	if err != nil {
		writeError(w, "list notes", err)
		return
	}
	if notes == nil {
		notes = []NoteView{}
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Notes: notes, Total: len(notes)})
}

// Template handles GET /api/notes/template.
//
//	@Summary		Get a blank note with every category
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	TemplateResponse
//	@Security		BearerAuth
//	@Router			/notes/template [get]
func (h *Handler) Template(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, TemplateResponse{Fields: h.svc.Template().Fields})
}

// GetNote handles GET /api/notes/{id}.
//
//	@Summary		Get a single note by ID
//	@Tags			notes
//	@Produce		json
//	@Param			id	path		string	true	"Note ID"
//	@Success		200	{object}	NoteView
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [get]
func (h *Handler) GetNote(w http.ResponseWriter, r *http.Request) {
	note, err := h.svc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, "get note", err)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// CreateNote handles POST /api/notes.
//
//	@Summary		Append a new note
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			body	body		NoteRequest	true	"Note fields"
//	@Success		201		{object}	NoteView
//	@Failure		400		{object}	errResponse
//	@Failure		422		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes [post]
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	note, err := h.svc.Create(r.Context(), req.Fields)
	if err != nil {
		writeError(w, "create note", err)
		return
	}
	writeJSON(w, http.StatusCreated, note)
}

// UpdateNote handles PUT /api/notes/{id}.
//
//	@Summary		Change fields of a note in place
//	@Description	Only the given fields change. A note left blank is removed (204).
//	@Tags			notes
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string		true	"Note ID"
//	@Param			body	body		NoteRequest	true	"Changed fields"
//	@Success		200		{object}	NoteView
//	@Success		204		"Note removed"
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [put]
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	var req NoteRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	note, deleted, err := h.svc.Update(r.Context(), chi.URLParam(r, "id"), req.Fields)
	if err != nil {
		writeError(w, "update note", err)
		return
	}
	if deleted {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, http.StatusOK, note)
}

// DeleteNote handles DELETE /api/notes/{id}.
//
//	@Summary		Delete a note
//	@Tags			notes
//	@Param			id	path	string	true	"Note ID"
//	@Success		204	"Note deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/notes/{id} [delete]
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, "delete note", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Schema handles GET /api/schema.
//
//	@Summary		List note categories in order
//	@Tags			notes
//	@Produce		json
//	@Success		200	{object}	SchemaResponse
//	@Security		BearerAuth
//	@Router			/schema [get]
func (h *Handler) Schema(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, SchemaResponse{Categories: h.svc.Schema()})
}

// Search handles GET /api/search.
//
//	@Summary		Search titles, authors, one-liners and bodies
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		writeError(w, "search", err)
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}

package api

import (
	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/noteservice"
)

// NoteRequest is the request body for creating or updating a note. On
// update, only the given fields change.
type NoteRequest struct {
	Fields map[string]string `json:"fields" validate:"required"`
}

// NoteView is a note with its position (aliased from the domain layer).
type NoteView = noteservice.NoteView

// NoteListResponse wraps note listings.
type NoteListResponse struct {
	Notes []NoteView `json:"notes" validate:"required"`
	Total int        `json:"total" example:"42" validate:"required"`
}

// TemplateResponse is a blank note holding every category.
type TemplateResponse struct {
	Fields map[string]string `json:"fields" validate:"required"`
}

// SchemaResponse lists the note categories in order.
type SchemaResponse struct {
	Categories []models.Category `json:"categories" validate:"required"`
}

// SearchResult is a single search hit (aliased from the index).
type SearchResult = index.SearchResult

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []SearchResult `json:"results" validate:"required"`
}

// OutputRequest sets the booklet location.
type OutputRequest struct {
	Path string `json:"path" example:"~/notes.pdf" validate:"required"`
}

// OutputResponse describes the booklet location.
type OutputResponse struct {
	Head string `json:"head" example:"/home/reader"`
	Tail string `json:"tail" example:"notes.pdf"`
	Path string `json:"path" example:"/home/reader/notes.pdf"`
}

// ExportResponse reports where the booklet was written.
type ExportResponse struct {
	Path string `json:"path" example:"/home/reader/notes.pdf" validate:"required"`
}

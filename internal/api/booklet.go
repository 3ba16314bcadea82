package api

import (
	"bytes"
	"net/http"
)

// Output handles GET /api/output.
//
//	@Summary		Get the booklet location
//	@Tags			booklet
//	@Produce		json
//	@Success		200	{object}	OutputResponse
//	@Security		BearerAuth
//	@Router			/output [get]
func (h *Handler) Output(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.Output(r.Context())
	if err != nil {
		writeError(w, "get output", err)
		return
	}
	writeJSON(w, http.StatusOK, OutputResponse{Head: out.Head, Tail: out.Tail, Path: out.Path()})
}

// SetOutput handles PUT /api/output.
//
//	@Summary		Change the booklet location
//	@Tags			booklet
//	@Accept			json
//	@Produce		json
//	@Param			body	body		OutputRequest	true	"New location"
//	@Success		200		{object}	OutputResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/output [put]
func (h *Handler) SetOutput(w http.ResponseWriter, r *http.Request) {
	var req OutputRequest
	if !decodeJSON(w, r, &req, false) {
		return
	}
	out, err := h.svc.SetOutput(r.Context(), req.Path)
	if err != nil {
		writeError(w, "set output", err)
		return
	}
	writeJSON(w, http.StatusOK, OutputResponse{Head: out.Head, Tail: out.Tail, Path: out.Path()})
}

// Export handles POST /api/export. The booklet always goes to the saved
// output location; a body naming another path is rejected.
//
//	@Summary		Write the booklet to the saved location
//	@Tags			booklet
//	@Produce		json
//	@Success		200	{object}	ExportResponse
//	@Failure		400	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/export [post]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	var req struct{}
	if !decodeJSON(w, r, &req, true) {
		return
	}
	path, err := h.svc.Export(r.Context(), "")
	if err != nil {
		writeError(w, "export", err)
		return
	}
	writeJSON(w, http.StatusOK, ExportResponse{Path: path})
}

// Booklet handles GET /api/booklet.
//
//	@Summary		Download the booklet
//	@Tags			booklet
//	@Produce		application/pdf
//	@Success		200	{file}	binary
//	@Security		BearerAuth
//	@Router			/booklet [get]
func (h *Handler) Booklet(w http.ResponseWriter, r *http.Request) {
	// Rendered fully before the first byte goes out so a failure can still
	// produce a JSON error.
	var buf bytes.Buffer
	if err := h.svc.WriteBooklet(r.Context(), &buf); err != nil {
		writeError(w, "render booklet", err)
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="notes.pdf"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

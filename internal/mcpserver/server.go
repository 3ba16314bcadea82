// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes Folio tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/folio/internal/apperr"
	"github.com/starford/folio/internal/noteservice"
)

const schemaURI = "folio://note-schema"

// Server wraps the MCP server with Folio tools.
type Server struct {
	mcp *server.MCPServer
	svc *noteservice.Service
}

// New creates a new MCP server with all Folio tools registered.
func New(svc *noteservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"Folio",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
		server.WithInstructions("Folio keeps an ordered collection of reading and viewing notes "+
			"and prints them as a PDF booklet. Read "+schemaURI+" before writing notes."),
	)

	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List notes in collection order, optionally only one media type."),
		mcp.WithString("media", mcp.Description("Optional media_type filter (e.g. book, movie)")),
	), s.listNotes)

	s.mcp.AddTool(mcp.NewTool("read_note",
		mcp.WithDescription("Read every field of a note."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note ID as returned by list_notes or search_notes")),
	), s.readNote)

	s.mcp.AddTool(mcp.NewTool("create_note",
		mcp.WithDescription("Append a note to the end of the collection. "+
			"Field names must come from the note schema; call get_note_schema first."),
		mcp.WithObject("fields", mcp.Required(),
			mcp.Description("Map of field name to text value"),
			mcp.AdditionalProperties(map[string]any{"type": "string"}),
		),
	), s.createNote)

	s.mcp.AddTool(mcp.NewTool("update_note",
		mcp.WithDescription("Change fields of a note in place. Fields not given keep their value. "+
			"A note left with only blank fields is removed."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note ID")),
		mcp.WithObject("fields", mcp.Required(),
			mcp.Description("Map of field name to new text value"),
			mcp.AdditionalProperties(map[string]any{"type": "string"}),
		),
	), s.updateNote)

	s.mcp.AddTool(mcp.NewTool("delete_note",
		mcp.WithDescription("Remove a note from the collection."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Note ID")),
	), s.deleteNote)

	s.mcp.AddTool(mcp.NewTool("search_notes",
		mcp.WithDescription("Full-text search through titles, authors, one-liners and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchNotes)

	s.mcp.AddTool(mcp.NewTool("export_booklet",
		mcp.WithDescription("Render the collection to a PDF booklet and return the written path."),
		mcp.WithString("path", mcp.Description("Optional .pdf output path; defaults to the configured output")),
	), s.exportBooklet)

	s.mcp.AddTool(mcp.NewTool("get_output_path",
		mcp.WithDescription("Returns where export_booklet writes when no path is given."),
	), s.getOutputPath)

	s.mcp.AddTool(mcp.NewTool("set_output_path",
		mcp.WithDescription("Saves a new default booklet location. \"~\" expands to the home directory."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Output file path, e.g. ~/books/notes.pdf")),
	), s.setOutputPath)

	s.mcp.AddTool(mcp.NewTool("get_note_schema",
		mcp.WithDescription("Returns the ordered note fields, allowed media types and writing rules."),
	), s.getNoteSchema)

	s.mcp.AddResource(
		mcp.NewResource(schemaURI, "Note Schema",
			mcp.WithResourceDescription("Ordered note fields and the rules notes must follow."),
			mcp.WithMIMEType("application/json"),
		),
		s.readSchemaResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.svc.List(ctx, req.GetString("media", ""))
	if err != nil {
		return toolError(err), nil
	}
	if notes == nil {
		notes = []noteservice.NoteView{}
	}
	return jsonResult(notes), nil
}

func (s *Server) readNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.Get(ctx, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(note), nil
}

func (s *Server) createNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	fields, err := fieldsArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, err := s.svc.Create(ctx, fields)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(note), nil
}

func (s *Server) updateNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	fields, err := fieldsArg(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	note, deleted, err := s.svc.Update(ctx, id, fields)
	if err != nil {
		return toolError(err), nil
	}
	if deleted {
		return mcp.NewToolResultText(fmt.Sprintf("removed blank note: %s", id)), nil
	}
	return jsonResult(note), nil
}

func (s *Server) deleteNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Delete(ctx, id); err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("deleted: %s", id)), nil
}

func (s *Server) searchNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(results), nil
}

func (s *Server) exportBooklet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := s.svc.Export(ctx, req.GetString("path", ""))
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("exported: %s", path)), nil
}

func (s *Server) getOutputPath(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	out, err := s.svc.Output(ctx)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(out.Path()), nil
}

func (s *Server) setOutputPath(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err := s.svc.SetOutput(ctx, path)
	if err != nil {
		return toolError(err), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("output set to %s", out.Path())), nil
}

func (s *Server) getNoteSchema(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(schemaJSON()), nil
}

func (s *Server) readSchemaResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      schemaURI,
			MIMEType: "application/json",
			Text:     schemaJSON(),
		},
	}, nil
}

// fieldsArg reads the "fields" object argument. Non-string values are
// rendered with %v so numbers such as a year are accepted.
func fieldsArg(req mcp.CallToolRequest) (map[string]string, error) {
	raw, ok := req.GetArguments()["fields"]
	if !ok {
		return nil, errors.New(`required argument "fields" not found`)
	}
	obj, ok := raw.(map[string]any)
	if !ok {
		return nil, errors.New(`argument "fields" is not an object`)
	}
	fields := make(map[string]string, len(obj))
	for k, v := range obj {
		switch val := v.(type) {
		case string:
			fields[k] = val
		case nil:
			fields[k] = ""
		default:
			fields[k] = fmt.Sprint(val)
		}
	}
	return fields, nil
}

func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultErrorf("not found: %v", err)
	case errors.Is(err, apperr.ErrEmptyNote):
		return mcp.NewToolResultError("note has no content; set at least one field")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

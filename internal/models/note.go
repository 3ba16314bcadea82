// Package models defines the domain types for Folio.
package models

import "strings"

// Kind describes how a category is entered and stored.
type Kind string

const (
	// KindLine is a free-text single-line field.
	KindLine Kind = "line"
	// KindChoice is a single-line field restricted to Category.Values.
	KindChoice Kind = "choice"
	// KindText is a multi-line free-text field.
	KindText Kind = "text"
)

// Category is one named field of the note schema.
type Category struct {
	Name   string   `json:"name"`
	Kind   Kind     `json:"kind"`
	Values []string `json:"values,omitempty"`
}

// Category names. The order of Schema, not of these constants, is what counts.
const (
	FieldTitle     = "title"
	FieldAuthor    = "author"
	FieldYear      = "year"
	FieldSubtitle  = "subtitle"
	FieldMediaType = "media_type"
	FieldEpisode   = "episode"
	FieldLink      = "link"
	FieldOneLiner  = "one_liner"
	FieldNotes     = "notes"
)

// MediaTypes are the allowed values of the media_type category. The empty
// string is the default selection.
var MediaTypes = []string{"book", "movie", "comic-book", "short movie", "podcast", "drawing", "leaflet", ""}

// Schema is the fixed, ordered note schema. The first category is the display
// title and the last one is the long-form body.
var Schema = []Category{
	{Name: FieldTitle, Kind: KindLine},
	{Name: FieldAuthor, Kind: KindLine},
	{Name: FieldYear, Kind: KindLine},
	{Name: FieldSubtitle, Kind: KindLine},
	{Name: FieldMediaType, Kind: KindChoice, Values: MediaTypes},
	{Name: FieldEpisode, Kind: KindLine},
	{Name: FieldLink, Kind: KindLine},
	{Name: FieldOneLiner, Kind: KindLine},
	{Name: FieldNotes, Kind: KindText},
}

// FieldNames returns the category names in schema order.
func FieldNames() []string {
	names := make([]string, len(Schema))
	for i, c := range Schema {
		names[i] = c.Name
	}
	return names
}

// Lookup returns the category with the given name.
func Lookup(name string) (Category, bool) {
	for _, c := range Schema {
		if c.Name == name {
			return c, true
		}
	}
	return Category{}, false
}

// Note is a single record of the collection. Fields always holds every
// schema category; unset values are "".
//
// ID is a process-local surrogate key. It is not persisted and is reassigned
// whenever the collection is loaded from disk.
type Note struct {
	ID     string            `json:"id,omitempty"`
	Fields map[string]string `json:"fields"`
}

// NewEmptyNote returns a note with every category set to "".
func NewEmptyNote() Note {
	fields := make(map[string]string, len(Schema))
	for _, c := range Schema {
		fields[c.Name] = ""
	}
	return Note{Fields: fields}
}

// Get returns the value of a category ("" when unset).
func (n Note) Get(name string) string {
	return n.Fields[name]
}

// Set assigns a category value, allocating Fields if needed.
func (n *Note) Set(name, value string) {
	if n.Fields == nil {
		n.Fields = make(map[string]string, len(Schema))
	}
	n.Fields[name] = value
}

// Title returns the value of the first schema category.
func (n Note) Title() string {
	return n.Fields[Schema[0].Name]
}

// Body returns the value of the last schema category.
func (n Note) Body() string {
	return n.Fields[Schema[len(Schema)-1].Name]
}

// IsEmpty reports whether every field is blank once spaces, tabs and
// newlines are stripped.
func (n Note) IsEmpty() bool {
	for _, v := range n.Fields {
		if strings.Trim(v, " \t\n") != "" {
			return false
		}
	}
	return true
}

// Normalize returns a copy holding exactly the schema categories: missing
// ones become "" and unknown keys are dropped. CRLF line endings become LF,
// matching what the CSV reader yields on load.
func (n Note) Normalize() Note {
	out := NewEmptyNote()
	out.ID = n.ID
	for _, c := range Schema {
		if v, ok := n.Fields[c.Name]; ok {
			out.Fields[c.Name] = strings.ReplaceAll(v, "\r\n", "\n")
		}
	}
	return out
}

// Clone returns a deep copy of the note.
func (n Note) Clone() Note {
	out := Note{ID: n.ID, Fields: make(map[string]string, len(n.Fields))}
	for k, v := range n.Fields {
		out.Fields[k] = v
	}
	return out
}

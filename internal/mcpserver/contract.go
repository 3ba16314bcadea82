package mcpserver

import (
	"encoding/json"
	"strings"

	"github.com/starford/folio/internal/models"
)

// NoteSchemaGuide tells LLM consumers how notes are shaped before they create
// or change one.
const NoteSchemaGuide = `# Folio Note Schema

A note is a flat set of named text fields. Every note has the same fields,
in this order:

| field      | kind   | notes                                              |
|------------|--------|----------------------------------------------------|
| title      | line   | shown in the table of contents                     |
| author     | line   | sort key of the author index                       |
| year       | line   | free text, printed in parentheses after the author |
| subtitle   | line   |                                                    |
| media_type | choice | one of the allowed media types, or empty           |
| episode    | line   |                                                    |
| link       | line   |                                                    |
| one_liner  | line   | short summary printed under the heading            |
| notes      | text   | long-form body, may span many lines                |

## Rules

1. Unknown field names are rejected.
2. Omitted fields are empty. A note whose fields are all blank is not stored.
3. Updates only change the fields you pass. Clearing every field removes the note.
4. Line fields should not contain newlines. Tabs in the body expand to 8 columns.
5. Note ids are valid for the running process only. Re-read the list after a reload.
6. Any language is fine in the collection. Non-Latin text prints in the
   booklet only when a TrueType font is configured.
`

type schemaDocument struct {
	Categories []models.Category `json:"categories"`
	MediaTypes []string          `json:"media_types"`
	Guide      string            `json:"guide"`
}

func schemaJSON() string {
	doc := schemaDocument{
		Categories: models.Schema,
		MediaTypes: models.MediaTypes,
		Guide:      strings.TrimSpace(NoteSchemaGuide),
	}
	out, _ := json.MarshalIndent(doc, "", "  ")
	return string(out)
}

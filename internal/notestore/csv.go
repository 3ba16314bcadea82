package notestore

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"

	"github.com/starford/folio/internal/models"
)

// encode writes the header row followed by one row per note, columns in
// schema order.
func encode(notes []models.Note) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	header := models.FieldNames()
	if err := w.Write(header); err != nil {
		return nil, fmt.Errorf("notestore: write header: %w", err)
	}
	row := make([]string, len(header))
	for _, n := range notes {
		for i, name := range header {
			row[i] = n.Fields[name]
		}
		if err := w.Write(row); err != nil {
			return nil, fmt.Errorf("notestore: write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("notestore: flush: %w", err)
	}
	return buf.Bytes(), nil
}

// decode parses a header-led CSV document. Columns are matched by header
// name: schema categories missing from the file become "", unknown columns are
// ignored. An empty document is an empty collection.
func decode(data []byte) ([]models.Note, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("notestore: read header: %w", err)
	}

	var notes []models.Note
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("notestore: read row: %w", err)
		}
		n := models.NewEmptyNote()
		for i, name := range header {
			if i >= len(record) {
				break
			}
			if _, ok := models.Lookup(name); ok {
				n.Fields[name] = record[i]
			}
		}
		notes = append(notes, n)
	}
	return notes, nil
}

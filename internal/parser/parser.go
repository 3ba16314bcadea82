// Package parser reads Markdown notes with YAML frontmatter into note fields,
// so notes kept elsewhere as Markdown files can be added to the collection.
package parser

import (
	"bytes"
	"fmt"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/starford/folio/internal/models"
)

// Result holds the output of parsing a Markdown note.
type Result struct {
	// Fields maps category names to values. Only known categories appear.
	Fields map[string]string
	// Ignored lists frontmatter keys that name no category, sorted.
	Ignored []string
}

// Parse maps frontmatter keys onto categories and the Markdown body onto
// the notes category. When the frontmatter has no title the first level-one
// heading is used and dropped from the body.
func Parse(data []byte) (*Result, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return nil, err
	}

	res := &Result{Fields: make(map[string]string)}
	for key, raw := range fm {
		name := normalizeKey(key)
		if _, ok := models.Lookup(name); !ok {
			res.Ignored = append(res.Ignored, key)
			continue
		}
		value, err := scalar(raw)
		if err != nil {
			return nil, fmt.Errorf("parser: frontmatter %q: %w", key, err)
		}
		res.Fields[name] = value
	}
	slices.Sort(res.Ignored)

	if strings.TrimSpace(res.Fields[models.FieldTitle]) == "" {
		if title, rest, ok := cutHeading(body); ok {
			res.Fields[models.FieldTitle] = title
			body = rest
		}
	}
	if body = strings.TrimSpace(body); body != "" {
		res.Fields[models.FieldNotes] = body
	}
	return res, nil
}

// splitFrontmatter separates YAML frontmatter (between leading --- delimiters)
// from the Markdown body. Without frontmatter the whole content is body.
func splitFrontmatter(data []byte) (map[string]any, string, error) {
	const delim = "---"
	trimmed := bytes.TrimLeft(data, "\n\r")

	if !bytes.HasPrefix(trimmed, []byte(delim)) {
		return nil, string(data), nil
	}

	rest := trimmed[len(delim):]
	idx := bytes.Index(rest, []byte("\n"+delim))
	if idx < 0 {
		return nil, string(data), nil
	}

	block := rest[:idx]
	after := rest[idx+1+len(delim):]
	body := strings.TrimLeft(string(after), "\n\r")

	var fm map[string]any
	if err := yaml.Unmarshal(block, &fm); err != nil {
		return nil, "", fmt.Errorf("parser: frontmatter: %w", err)
	}
	return fm, body, nil
}

// normalizeKey folds "Media-Type" and "one liner" onto category names.
func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	return strings.NewReplacer("-", "_", " ", "_").Replace(key)
}

// scalar renders a frontmatter value as field text. Lists are joined with
// ", " so several authors fit one field.
func scalar(v any) (string, error) {
	switch val := v.(type) {
	case nil:
		return "", nil
	case string:
		return val, nil
	case time.Time:
		return val.Format(time.DateOnly), nil
	case []any:
		parts := make([]string, 0, len(val))
		for _, item := range val {
			s, err := scalar(item)
			if err != nil {
				return "", err
			}
			if s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", "), nil
	case map[string]any:
		return "", fmt.Errorf("nested mappings are not supported")
	default:
		return fmt.Sprint(val), nil
	}
}

// cutHeading finds the first "# " heading line and returns its text and the
// body without that line.
func cutHeading(body string) (string, string, bool) {
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "# ") {
			title := strings.TrimSpace(trimmed[2:])
			rest := append(slices.Clone(lines[:i]), lines[i+1:]...)
			return title, strings.Join(rest, "\n"), true
		}
	}
	return "", body, false
}

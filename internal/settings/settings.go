// Package settings persists where the exported booklet is written.
package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/folio/internal/storage"
)

// DefaultTail is the booklet file name used until the user picks another.
const DefaultTail = "notes.pdf"

// Output is the booklet destination split into directory and file name.
type Output struct {
	Head string `yaml:"head"`
	Tail string `yaml:"tail"`
}

// Default returns the home directory and DefaultTail. When the home directory
// cannot be determined the working directory is used.
func Default() Output {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return Output{Head: home, Tail: DefaultTail}
}

// Path joins head and tail.
func (o Output) Path() string {
	return filepath.Join(o.Head, o.Tail)
}

// SetPath splits p into head and tail. A leading "~" is expanded to the home
// directory and relative paths are made absolute. p must name a .pdf file;
// paths ending in a separator and existing directories are rejected.
func (o *Output) SetPath(p string) error {
	p = strings.TrimSpace(p)
	if p == "" {
		return fmt.Errorf("settings: empty output path")
	}
	if p == "~" || strings.HasSuffix(p, "/") || strings.HasSuffix(p, string(filepath.Separator)) {
		return fmt.Errorf("settings: %s has no file name", p)
	}
	if base := filepath.Base(p); base == "." || base == ".." {
		return fmt.Errorf("settings: %s has no file name", p)
	}
	if strings.HasPrefix(p, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("settings: expand ~: %w", err)
		}
		p = filepath.Join(home, strings.TrimPrefix(p, "~"))
	}
	abs, err := filepath.Abs(p)
	if err != nil {
		return fmt.Errorf("settings: resolve %s: %w", p, err)
	}
	head, tail := filepath.Split(abs)
	if tail == "" {
		return fmt.Errorf("settings: %s has no file name", p)
	}
	if !strings.EqualFold(filepath.Ext(tail), ".pdf") {
		return fmt.Errorf("settings: %s is not a .pdf file", tail)
	}
	if info, err := os.Stat(abs); err == nil && info.IsDir() {
		return fmt.Errorf("settings: %s is a directory", abs)
	}
	o.Head = filepath.Clean(head)
	o.Tail = tail
	return nil
}

// Load reads the output settings from name. A missing file yields Default.
// Blank fields in the file fall back to their defaults.
func Load(fs storage.Provider, name string) (Output, error) {
	def := Default()
	data, err := fs.Read(name)
	if errors.Is(err, os.ErrNotExist) {
		return def, nil
	}
	if err != nil {
		return Output{}, fmt.Errorf("settings: load: %w", err)
	}
	var out Output
	if err := yaml.Unmarshal(data, &out); err != nil {
		return Output{}, fmt.Errorf("settings: parse %s: %w", name, err)
	}
	if out.Head == "" {
		out.Head = def.Head
	}
	if out.Tail == "" {
		out.Tail = def.Tail
	}
	return out, nil
}

// Save writes o to name, replacing the previous settings atomically.
func Save(fs storage.Provider, name string, o Output) error {
	data, err := yaml.Marshal(o)
	if err != nil {
		return fmt.Errorf("settings: encode: %w", err)
	}
	if err := fs.Write(name, data); err != nil {
		return fmt.Errorf("settings: save: %w", err)
	}
	return nil
}

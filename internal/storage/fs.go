package storage

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"
)

// BackupSuffix is inserted between a file's base name and its extension to
// form the single-generation backup name.
const BackupSuffix = "_backup"

// FS implements Provider backed by the local file system.
type FS struct {
	root string // absolute path to the data directory
}

// NewFS creates a new FS provider rooted at the given directory.
// The directory must already exist.
func NewFS(root string) (*FS, error) {
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("storage: resolve root: %w", err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: stat root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("storage: root is not a directory: %s", abs)
	}
	return &FS{root: abs}, nil
}

// Root returns the absolute data directory.
func (f *FS) Root() string {
	return f.root
}

// BackupName returns the backup name for path: "notes.csv" -> "notes_backup.csv".
func BackupName(path string) string {
	ext := filepath.Ext(path)
	return strings.TrimSuffix(path, ext) + BackupSuffix + ext
}

// safePath resolves a relative path against the root and rejects any result
// that escapes it (directory traversal).
func (f *FS) safePath(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("storage: empty path")
	}
	cleaned := filepath.Clean(rel)
	if filepath.IsAbs(cleaned) {
		return "", fmt.Errorf("storage: absolute paths not allowed: %s", rel)
	}
	abs, err := filepath.Abs(filepath.Join(f.root, cleaned))
	if err != nil {
		return "", fmt.Errorf("storage: resolve path: %w", err)
	}
	if !strings.HasPrefix(abs, f.root+string(os.PathSeparator)) {
		return "", fmt.Errorf("storage: path escapes data root: %s", rel)
	}
	return abs, nil
}

// Abs resolves path inside the root.
func (f *FS) Abs(path string) (string, error) {
	return f.safePath(path)
}

// Read returns the raw bytes of a data file.
func (f *FS) Read(path string) ([]byte, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("storage: read %s: %w", path, err)
	}
	return data, nil
}

// Write atomically replaces the file at path, creating parent directories.
func (f *FS) Write(path string, content []byte) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return fmt.Errorf("storage: mkdir: %w", err)
	}
	if err := atomic.WriteFile(abs, bytes.NewReader(content)); err != nil {
		return fmt.Errorf("storage: write %s: %w", path, err)
	}
	// atomic.WriteFile creates new files with 0600.
	if err := os.Chmod(abs, 0o644); err != nil {
		return fmt.Errorf("storage: chmod %s: %w", path, err)
	}
	return nil
}

// Exists reports whether path is present.
func (f *FS) Exists(path string) (bool, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(abs)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, fmt.Errorf("storage: stat %s: %w", path, err)
}

// Backup renames path to BackupName(path).
func (f *FS) Backup(path string) (bool, error) {
	abs, err := f.safePath(path)
	if err != nil {
		return false, err
	}
	if err := os.Rename(abs, BackupName(abs)); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("storage: backup %s: %w", path, err)
	}
	return true, nil
}

// Remove deletes a data file.
func (f *FS) Remove(path string) error {
	abs, err := f.safePath(path)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil {
		return fmt.Errorf("storage: remove %s: %w", path, err)
	}
	return nil
}

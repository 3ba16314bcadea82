// Package storage defines the data-directory file-system abstraction.
package storage

// Provider is the interface for data file operations. All paths are relative
// to the provider root.
type Provider interface {
	// Read returns the raw bytes of the file at path. A missing file yields an
	// error matching os.ErrNotExist.
	Read(path string) ([]byte, error)
	// Write atomically replaces the file at path with content.
	Write(path string, content []byte) error
	// Exists reports whether a file is present at path.
	Exists(path string) (bool, error)
	// Backup renames the file at path to its backup name, replacing any
	// previous backup. It reports false when there was nothing to move.
	Backup(path string) (bool, error)
	// Remove deletes the file at path.
	Remove(path string) error
	// Abs resolves path to an absolute file-system path.
	Abs(path string) (string, error)
}

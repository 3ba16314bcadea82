// Package testutil provides shared test helpers for setting up data
// directories, databases and services.
package testutil

import (
	"os"
	"testing"

	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/models"
	"github.com/starford/folio/internal/noteservice"
	"github.com/starford/folio/internal/notestore"
	"github.com/starford/folio/internal/storage"
)

// NotesFile is the collection file name used by test services.
const NotesFile = "notes.csv"

// TestDB creates a temporary SQLite database that is automatically cleaned up.
func TestDB(t *testing.T) *index.DB {
	t.Helper()
	dbFile, err := os.CreateTemp("", "folio-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	dbFile.Close()
	t.Cleanup(func() { os.Remove(dbFile.Name()) })

	db, err := index.Open(dbFile.Name())
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// TestDataDir creates a temporary data directory with a storage.Provider.
func TestDataDir(t *testing.T) (string, *storage.FS) {
	t.Helper()
	dir := t.TempDir()
	fs, err := storage.NewFS(dir)
	if err != nil {
		t.Fatal(err)
	}
	return dir, fs
}

// TestService wires a service over a fresh data directory and database.
// Extra options are applied after the defaults.
func TestService(t *testing.T, opts ...noteservice.Option) (*noteservice.Service, *storage.FS) {
	t.Helper()
	_, fs := TestDataDir(t)
	store, err := notestore.Open(fs, NotesFile)
	if err != nil {
		t.Fatal(err)
	}
	all := append([]noteservice.Option{
		noteservice.WithIndex(TestDB(t)),
		noteservice.WithSettings(fs, "output.yaml"),
	}, opts...)
	return noteservice.New(store, all...), fs
}

// Fields builds a field map from alternating name/value pairs.
func Fields(kv ...string) map[string]string {
	out := make(map[string]string, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		out[kv[i]] = kv[i+1]
	}
	return out
}

// Titled returns fields holding only a title.
func Titled(title string) map[string]string {
	return Fields(models.FieldTitle, title)
}

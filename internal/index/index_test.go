package index

import (
	"database/sql"
	"log/slog"
	"os"
	"testing"

	"github.com/starford/folio/internal/models"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	f, err := os.CreateTemp("", "folio-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func mkNote(id, title string, kv ...string) models.Note {
	n := models.NewEmptyNote()
	n.ID = id
	n.Set(models.FieldTitle, title)
	for i := 0; i+1 < len(kv); i += 2 {
		n.Set(kv[i], kv[i+1])
	}
	return n
}

func TestSchemaCreation(t *testing.T) {
	db := testDB(t)
	var count int
	if err := db.conn.QueryRow(`SELECT count(*) FROM notes`).Scan(&count); err != nil {
		t.Fatalf("notes table missing: %v", err)
	}
}

func TestOpen_ReplacesOutdatedTable(t *testing.T) {
	f, err := os.CreateTemp("", "folio-test-*.db")
	if err != nil {
		t.Fatal(err)
	}
	f.Close()
	t.Cleanup(func() { os.Remove(f.Name()) })

	old, err := sql.Open("sqlite3", f.Name())
	if err != nil {
		t.Fatal(err)
	}
	if _, err := old.Exec(`CREATE TABLE notes (id TEXT PRIMARY KEY, position INTEGER NOT NULL, title TEXT)`); err != nil {
		t.Fatal(err)
	}
	old.Close()

	db, err := Open(f.Name())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()
	if err := db.Replace([]models.Note{mkNote("a", "A")}); err != nil {
		t.Fatalf("Replace after upgrade: %v", err)
	}
	var version int
	if err := db.conn.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil || version != schemaVersion {
		t.Errorf("user_version = %d, %v; want %d", version, err, schemaVersion)
	}
}

func TestReplace_SwapsContent(t *testing.T) {
	db := testDB(t)
	if err := db.Replace([]models.Note{mkNote("a", "A"), mkNote("b", "B")}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	if err := db.Replace([]models.Note{mkNote("c", "C")}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	n, err := db.Count()
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 1 {
		t.Errorf("count = %d, want 1", n)
	}
}

func TestReplace_Empty(t *testing.T) {
	db := testDB(t)
	_ = db.Replace([]models.Note{mkNote("a", "A")})
	if err := db.Replace(nil); err != nil {
		t.Fatalf("Replace(nil): %v", err)
	}
	if n, _ := db.Count(); n != 0 {
		t.Errorf("count = %d, want 0", n)
	}
}

func TestByMedia_CollectionOrder(t *testing.T) {
	db := testDB(t)
	_ = db.Replace([]models.Note{
		mkNote("1", "Dune", models.FieldMediaType, "book", models.FieldAuthor, "Herbert"),
		mkNote("2", "Alien", models.FieldMediaType, "movie"),
		mkNote("3", "Emma", models.FieldMediaType, "book", models.FieldYear, "1815"),
	})
	rows, err := db.ByMedia("book")
	if err != nil {
		t.Fatalf("ByMedia: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %+v, want 2", rows)
	}
	if rows[0].ID != "1" || rows[0].Position != 0 || rows[0].Author != "Herbert" {
		t.Errorf("rows[0] = %+v", rows[0])
	}
	if rows[1].ID != "3" || rows[1].Position != 2 || rows[1].Year != "1815" {
		t.Errorf("rows[1] = %+v", rows[1])
	}
}

func TestSearch_Basic(t *testing.T) {
	db := testDB(t)
	_ = db.Replace([]models.Note{
		mkNote("x", "Search Me", models.FieldNotes, "uniqueword appears here"),
		mkNote("y", "Other", models.FieldNotes, "nothing to see"),
	})

	results, err := db.Search("uniqueword", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].ID != "x" {
		t.Errorf("search results = %+v, want 1 hit for x", results)
	}
}

func TestSearch_MatchesAuthor(t *testing.T) {
	db := testDB(t)
	_ = db.Replace([]models.Note{mkNote("x", "Dune", models.FieldAuthor, "Frank Herbert")})

	results, err := db.Search("Herbert", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(results) != 1 || results[0].Author != "Frank Herbert" {
		t.Errorf("search results = %+v", results)
	}
}

func TestSync_ReplacesIndex(t *testing.T) {
	db := testDB(t)
	if err := Sync(db, []models.Note{mkNote("a", "A"), mkNote("b", "B")}, quietLogger()); err != nil {
		t.Fatalf("Sync: %v", err)
	}
	if n, _ := db.Count(); n != 2 {
		t.Errorf("count = %d, want 2", n)
	}
}

package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func tempRoot(t *testing.T) *FS {
	t.Helper()
	dir := t.TempDir()
	fs, err := NewFS(dir)
	if err != nil {
		t.Fatalf("NewFS: %v", err)
	}
	return fs
}

func TestWriteAndRead(t *testing.T) {
	s := tempRoot(t)
	content := []byte("title,author\nX,Y\n")
	if err := s.Write("notes.csv", content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("notes.csv")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestWriteCreatesSubdirs(t *testing.T) {
	s := tempRoot(t)
	if err := s.Write("a/b/c.csv", []byte("deep")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read("a/b/c.csv")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != "deep" {
		t.Errorf("content = %q", got)
	}
}

func TestWritePermissions(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("p.csv", []byte("x"))
	info, err := os.Stat(filepath.Join(s.Root(), "p.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o644 {
		t.Errorf("mode = %v, want 0644", info.Mode().Perm())
	}
}

func TestReadMissing(t *testing.T) {
	s := tempRoot(t)
	_, err := s.Read("missing.csv")
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("err = %v, want ErrNotExist", err)
	}
}

func TestExists(t *testing.T) {
	s := tempRoot(t)
	ok, err := s.Exists("e.csv")
	if err != nil || ok {
		t.Fatalf("Exists before write = %v, %v", ok, err)
	}
	_ = s.Write("e.csv", []byte("x"))
	ok, err = s.Exists("e.csv")
	if err != nil || !ok {
		t.Fatalf("Exists after write = %v, %v", ok, err)
	}
}

func TestBackup(t *testing.T) {
	s := tempRoot(t)

	moved, err := s.Backup("notes.csv")
	if err != nil {
		t.Fatalf("Backup of missing file: %v", err)
	}
	if moved {
		t.Error("nothing should have been moved")
	}

	_ = s.Write("notes.csv", []byte("first"))
	moved, err = s.Backup("notes.csv")
	if err != nil || !moved {
		t.Fatalf("Backup = %v, %v", moved, err)
	}
	got, err := s.Read("notes_backup.csv")
	if err != nil {
		t.Fatalf("Read backup: %v", err)
	}
	if string(got) != "first" {
		t.Errorf("backup content = %q", got)
	}
	if ok, _ := s.Exists("notes.csv"); ok {
		t.Error("original should have been renamed away")
	}
}

func TestBackupReplacesPrevious(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("notes.csv", []byte("one"))
	_, _ = s.Backup("notes.csv")
	_ = s.Write("notes.csv", []byte("two"))
	_, _ = s.Backup("notes.csv")
	got, _ := s.Read("notes_backup.csv")
	if string(got) != "two" {
		t.Errorf("backup content = %q, want two", got)
	}
}

func TestBackupName(t *testing.T) {
	cases := map[string]string{
		"notes.csv":      "notes_backup.csv",
		"dir/notes.csv":  "dir/notes_backup.csv",
		"noext":          "noext_backup",
		"archive.tar.gz": "archive.tar_backup.gz",
	}
	for in, want := range cases {
		if got := BackupName(in); got != want {
			t.Errorf("BackupName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRemove(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("del.csv", []byte("bye"))
	if err := s.Remove("del.csv"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if _, err := s.Read("del.csv"); err == nil {
		t.Error("expected error reading removed file")
	}
}

func TestTraversalBlocked(t *testing.T) {
	s := tempRoot(t)

	cases := []string{
		"../../etc/passwd",
		"../outside.csv",
		"/etc/shadow",
		"",
	}
	for _, p := range cases {
		if _, err := s.Read(p); err == nil {
			t.Errorf("expected error for path %q", p)
		}
		if err := s.Write(p, []byte("x")); err == nil {
			t.Errorf("expected error for write to %q", p)
		}
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	s := tempRoot(t)
	_ = s.Write("atomic.csv", []byte("original content"))
	if err := s.Write("atomic.csv", []byte("updated content")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read("atomic.csv")
	if string(got) != "updated content" {
		t.Errorf("expected updated content, got %q", got)
	}
	entries, err := os.ReadDir(s.Root())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("leftover files: %v", entries)
	}
}

func TestNewFS_NonExistentDir(t *testing.T) {
	_, err := NewFS(filepath.Join(t.TempDir(), "does-not-exist"))
	if err == nil {
		t.Error("expected error for non-existent dir")
	}
}

func TestNewFS_FileNotDir(t *testing.T) {
	f, _ := os.CreateTemp(t.TempDir(), "folio-test-*")
	_ = f.Close()
	_, err := NewFS(f.Name())
	if err == nil {
		t.Error("expected error when root is a file")
	}
}

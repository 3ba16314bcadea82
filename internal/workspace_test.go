package internal

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/starford/folio/internal/noteservice"
)

func testWorkspaceConfig(t *testing.T) *Config {
	t.Helper()
	root := t.TempDir()
	cfg := NewDefaultConfig()
	cfg.Store.Path = filepath.Join(root, "data", "notes.csv")
	cfg.SQLite.Path = filepath.Join(root, "index", "folio.db")
	cfg.Output.SettingsPath = filepath.Join(root, "settings", "output.yaml")
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestOpenWorkspace_CreatesDirectories(t *testing.T) {
	cfg := testWorkspaceConfig(t)
	var logs bytes.Buffer

	var kinds []noteservice.ChangeKind
	ws, err := OpenWorkspace(cfg, NewLogger(&logs, cfg.App.LogLevel),
		noteservice.WithChangeHook(func(k noteservice.ChangeKind, _ string) { kinds = append(kinds, k) }))
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()

	for _, dir := range []string{cfg.Store.Dir(), filepath.Dir(cfg.SQLite.Path), filepath.Dir(cfg.Output.SettingsPath)} {
		if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
			t.Errorf("directory %s not created: %v", dir, err)
		}
	}
	if ws.Dir() != cfg.Store.Dir() || ws.File() != "notes.csv" {
		t.Errorf("dir/file = %q/%q", ws.Dir(), ws.File())
	}

	ctx := context.Background()
	if _, err := ws.Service.Create(ctx, map[string]string{"title": "Kept"}); err != nil {
		t.Fatal(err)
	}
	if len(kinds) != 1 || kinds[0] != noteservice.ChangeCreated {
		t.Errorf("change hook saw %v", kinds)
	}
	if _, err := os.Stat(cfg.Store.Path); err != nil {
		t.Errorf("collection file not written: %v", err)
	}

	if _, err := ws.Service.SetOutput(ctx, filepath.Join(t.TempDir(), "b.pdf")); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(cfg.Output.SettingsPath); err != nil {
		t.Errorf("settings file not written: %v", err)
	}
}

func TestOpenWorkspace_ReopenKeepsNotes(t *testing.T) {
	cfg := testWorkspaceConfig(t)
	logger := NewLogger(&bytes.Buffer{}, cfg.App.LogLevel)

	ws, err := OpenWorkspace(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := ws.Service.Create(context.Background(), map[string]string{"title": "Persisted"}); err != nil {
		t.Fatal(err)
	}
	ws.Close()

	ws, err = OpenWorkspace(cfg, logger)
	if err != nil {
		t.Fatal(err)
	}
	defer ws.Close()
	if n := ws.Service.Len(context.Background()); n != 1 {
		t.Fatalf("len = %d, want 1", n)
	}
	got, err := ws.Service.Search(context.Background(), "persisted", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 {
		t.Errorf("search after reopen = %+v", got)
	}
}

func TestOpenWorkspace_RequiresConfig(t *testing.T) {
	if _, err := OpenWorkspace(nil, NewLogger(&bytes.Buffer{}, 0)); err == nil {
		t.Fatal("expected error without config")
	}
}

package internal

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/starford/folio/internal/index"
	"github.com/starford/folio/internal/noteservice"
	"github.com/starford/folio/internal/notestore"
	"github.com/starford/folio/internal/storage"
)

// Workspace is an opened note collection with its search index and the
// service in front of them. Every entry point (HTTP server, MCP server and
// the one-shot CLI commands) goes through a Workspace.
type Workspace struct {
	Service *noteservice.Service

	cfg *Config
	db  *index.DB
}

// NewLogger builds the JSON logger used by every entry point.
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level}))
}

// OpenWorkspace prepares the data directories, loads the collection and
// opens the index. Extra options are applied to the service after the
// configured ones.
func OpenWorkspace(cfg *Config, logger *slog.Logger, opts ...noteservice.Option) (*Workspace, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	storeFS, err := dataDir(cfg.Store.Dir())
	if err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}
	settingsFS, err := dataDir(filepath.Dir(cfg.Output.SettingsPath))
	if err != nil {
		return nil, fmt.Errorf("init settings: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(cfg.SQLite.Path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}

	store, err := notestore.Open(storeFS, cfg.Store.File())
	if err != nil {
		return nil, fmt.Errorf("open collection: %w", err)
	}

	db, err := index.Open(cfg.SQLite.Path)
	if err != nil {
		return nil, fmt.Errorf("init index: %w", err)
	}

	all := append([]noteservice.Option{
		noteservice.WithIndex(db),
		noteservice.WithSettings(settingsFS, filepath.Base(cfg.Output.SettingsPath)),
		noteservice.WithBooklet(cfg.Booklet.Options()),
		noteservice.WithLogger(logger),
	}, opts...)

	return &Workspace{
		Service: noteservice.New(store, all...),
		cfg:     cfg,
		db:      db,
	}, nil
}

// Dir returns the directory holding the collection file.
func (w *Workspace) Dir() string {
	return w.cfg.Store.Dir()
}

// File returns the collection file name.
func (w *Workspace) File() string {
	return w.cfg.Store.File()
}

// Close releases the index.
func (w *Workspace) Close() error {
	return w.db.Close()
}

func dataDir(dir string) (*storage.FS, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create %s: %w", dir, err)
	}
	return storage.NewFS(dir)
}

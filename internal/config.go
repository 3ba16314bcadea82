package internal

import (
	"fmt"
	"log/slog"
	"path/filepath"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/folio/internal/booklet"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App     ApplicationConfig `yaml:"app"`
	Store   StoreConfig       `yaml:"store"`
	SQLite  SQLiteConfig      `yaml:"sqlite"`
	Output  OutputConfig      `yaml:"output"`
	Booklet BookletConfig     `yaml:"booklet"`
	Auth    AuthConfig        `yaml:"auth"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return err
	}
	if err := c.SQLite.Validate(); err != nil {
		return err
	}
	if err := c.Output.Validate(); err != nil {
		return err
	}
	if err := c.Booklet.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// StoreConfig points at the CSV file holding the note collection.
type StoreConfig struct {
	Path string `yaml:"path"`
}

// Dir returns the directory holding the collection file.
func (c *StoreConfig) Dir() string {
	return filepath.Dir(c.Path)
}

// File returns the collection file name without its directory.
func (c *StoreConfig) File() string {
	return filepath.Base(c.Path)
}

// Validate validates the store configuration.
func (c *StoreConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required, validation.By(hasFileName)),
	)
}

// SQLiteConfig holds SQLite database configuration.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// Validate validates the SQLite configuration.
func (c *SQLiteConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Path, validation.Required),
	)
}

// OutputConfig locates the file that remembers where booklets are written.
type OutputConfig struct {
	SettingsPath string `yaml:"settings_path"`
}

// Validate validates the output configuration.
func (c *OutputConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.SettingsPath, validation.Required, validation.By(hasFileName)),
	)
}

// BookletConfig controls booklet rendering.
//
// TOC selects the table of contents layout:
//   - "paired" (default): rows sorted by title, each showing one note's title and author.
//   - "independent": title and author columns sorted separately.
type BookletConfig struct {
	TOC          string `yaml:"toc"`
	FontPath     string `yaml:"font_path"`
	BoldFontPath string `yaml:"bold_font_path"`
}

// Validate validates the booklet configuration.
func (c *BookletConfig) Validate() error {
	if c.TOC == "" {
		c.TOC = string(booklet.TOCPaired)
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.TOC, validation.In(string(booklet.TOCPaired), string(booklet.TOCIndependent))),
		validation.Field(&c.BoldFontPath, validation.When(c.FontPath == "",
			validation.Empty.Error("requires font_path"))),
	)
}

// Options converts the configuration to renderer options.
func (c *BookletConfig) Options() booklet.Options {
	return booklet.Options{
		TOC:          booklet.TOCLayout(c.TOC),
		FontPath:     c.FontPath,
		BoldFontPath: c.BoldFontPath,
	}
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local use.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

func hasFileName(value any) error {
	p, _ := value.(string)
	if p == "" {
		return nil
	}
	if base := filepath.Base(p); base == "." || base == string(filepath.Separator) {
		return fmt.Errorf("must name a file")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8080,
			},
		},
		Store: StoreConfig{
			Path: "./data/notes.csv",
		},
		SQLite: SQLiteConfig{
			Path: "./data/folio.db",
		},
		Output: OutputConfig{
			SettingsPath: "./data/output.yaml",
		},
		Booklet: BookletConfig{
			TOC: string(booklet.TOCPaired),
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
	}
}

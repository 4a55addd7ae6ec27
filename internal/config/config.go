// Package config loads daybook settings from YAML and the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"

	"github.com/rcliao/daybook/internal/journal"
	"github.com/rcliao/daybook/internal/logging"
	"github.com/rcliao/daybook/internal/store"
	"github.com/rcliao/daybook/internal/synthesis"
)

// Archive backends.
const (
	BackendSQLite = "sqlite"
	BackendBlob   = "blob"
)

// Config is the full daybook configuration.
type Config struct {
	DB        string           `yaml:"db"`
	Timezone  string           `yaml:"timezone"`
	Archive   ArchiveConfig    `yaml:"archive"`
	Session   SessionConfig    `yaml:"session"`
	Synthesis synthesis.Config `yaml:"synthesis"`
	Schedule  journal.Schedule `yaml:"schedule"`
	Server    ServerConfig     `yaml:"server"`
	Migrate   MigrateConfig    `yaml:"migrate"`
	Log       logging.Config   `yaml:"log"`
}

// ArchiveConfig selects where finalized entries live.
type ArchiveConfig struct {
	Backend   string               `yaml:"backend"`
	BlobDir   string               `yaml:"blob_dir"`
	CacheSize int                  `yaml:"cache_size"` // 0 disables the read cache
	Snippet   store.SnippetOptions `yaml:"snippet"`
}

// SessionConfig tunes the per-day message log.
type SessionConfig struct {
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// MigrateConfig names the bucket directory the migration reads from.
type MigrateConfig struct {
	SourceDir string `yaml:"source_dir"`
}

// Dir is the default daybook home, ~/.daybook.
func Dir() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".daybook")
}

// DefaultPath returns $DAYBOOK_CONFIG or ~/.daybook/config.yaml.
func DefaultPath() string {
	if env := os.Getenv("DAYBOOK_CONFIG"); env != "" {
		return env
	}
	return filepath.Join(Dir(), "config.yaml")
}

// Default returns the built-in configuration.
func Default() *Config {
	dir := Dir()
	return &Config{
		DB:       filepath.Join(dir, "daybook.db"),
		Timezone: "UTC",
		Archive: ArchiveConfig{
			Backend: BackendSQLite,
			BlobDir: filepath.Join(dir, "journals"),
			Snippet: store.DefaultSnippetOptions(),
		},
		Session: SessionConfig{IdleTimeout: 10 * time.Minute},
		Synthesis: synthesis.Config{
			Timeout: synthesis.DefaultTimeout,
		},
		Server: ServerConfig{Addr: "127.0.0.1:8787"},
		Log:    logging.Config{Level: "info", Format: "text"},
	}
}

// Load reads path over the defaults, then applies environment overrides. An
// empty path means DefaultPath, which may be absent; an explicit path must exist.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg.ApplyEnv(os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ApplyEnv overrides fields from environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}
	set(&c.DB, "DAYBOOK_DB")
	set(&c.Archive.Backend, "DAYBOOK_BACKEND")
	set(&c.Archive.BlobDir, "DAYBOOK_BLOB_DIR")
	set(&c.Timezone, "DAYBOOK_TZ")
	set(&c.Synthesis.Provider, "DAYBOOK_SYNTH_PROVIDER")
	set(&c.Synthesis.Model, "DAYBOOK_SYNTH_MODEL")
	set(&c.Synthesis.BaseURL, "DAYBOOK_SYNTH_URL")

	switch c.Synthesis.Provider {
	case synthesis.ProviderAnthropic:
		set(&c.Synthesis.APIKey, "ANTHROPIC_API_KEY")
	case synthesis.ProviderOpenAI:
		set(&c.Synthesis.APIKey, "OPENAI_API_KEY")
	}
}

// Validate checks the configuration for values that cannot work.
func (c *Config) Validate() error {
	if c.DB == "" {
		return fmt.Errorf("config: db path required")
	}
	switch c.Archive.Backend {
	case BackendSQLite:
	case BackendBlob:
		if c.Archive.BlobDir == "" {
			return fmt.Errorf("config: archive.blob_dir required for blob backend")
		}
	default:
		return fmt.Errorf("config: unknown archive backend %q", c.Archive.Backend)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	switch c.Synthesis.Provider {
	case "", synthesis.ProviderAnthropic, synthesis.ProviderOpenAI, synthesis.ProviderOllama:
	default:
		return fmt.Errorf("config: unknown synthesis provider %q", c.Synthesis.Provider)
	}
	if c.Schedule.Every <= 0 && c.Schedule.At != "" {
		if _, _, err := journal.ParseAt(c.Schedule.At); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Location returns the zone days are cut in.
func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: timezone: %w", err)
	}
	return loc, nil
}

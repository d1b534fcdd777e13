// Package config provides configuration loading and management.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigDir is the directory name for entrylink configuration.
	DefaultConfigDir = ".entrylink"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
)

// Source drivers. sqlite, pgx and postgres are database/sql drivers;
// csv and json read one dump file per table from the dsn directory.
const (
	DriverSQLite   = "sqlite"
	DriverPgx      = "pgx"
	DriverPostgres = "postgres"
	DriverCSV      = "csv"
	DriverJSON     = "json"
)

// Environment overrides.
const (
	EnvSourceDSN    = "ENTRYLINK_SOURCE_DSN"
	EnvSourceDriver = "ENTRYLINK_SOURCE_DRIVER"
)

// Config holds static export configuration (read-only after load).
type Config struct {
	// EntriesDir holds one directory of entry files per content type.
	EntriesDir string `yaml:"entries_dir"`
	// HelpersDir holds the helper index files.
	HelpersDir string `yaml:"helpers_dir"`
	// Mapping is the relation mapping file (.json, .yaml or .yml).
	Mapping string `yaml:"mapping"`
	// Structure is the target content structure file.
	Structure string       `yaml:"structure"`
	Source    SourceConfig `yaml:"source"`
	Link      LinkConfig   `yaml:"link"`
}

// SourceConfig selects the source tables reader.
type SourceConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// LinkConfig holds link pass options.
type LinkConfig struct {
	ManyMode         string `yaml:"many_mode"`          // append | replace
	OnMissingRelated string `yaml:"on_missing_related"` // skip | fail
	Workers          int    `yaml:"workers"`
	IndexCacheSize   int    `yaml:"index_cache_size"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		EntriesDir: "data/entries",
		HelpersDir: "data/helpers",
		Mapping:    "data/mapping.json",
		Structure:  "data/contentful_structure.json",
		Source: SourceConfig{
			Driver: DriverSQLite,
			DSN:    "data/source.db",
		},
		Link: LinkConfig{
			ManyMode:         "append",
			OnMissingRelated: "skip",
			Workers:          1,
			IndexCacheSize:   64,
		},
	}
}

// Load loads configuration from the .entrylink directory in the given path.
// Relative paths in the file are resolved against basePath.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'entrylink init' first)", configFile)
	}
	return LoadFile(configFile, basePath)
}

// LoadFile loads configuration from an explicit file.
func LoadFile(configFile, basePath string) (*Config, error) {
	data, err := os.ReadFile(configFile)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()
	cfg.resolvePaths(basePath)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if dsn := os.Getenv(EnvSourceDSN); dsn != "" {
		c.Source.DSN = dsn
	}
	if driver := os.Getenv(EnvSourceDriver); driver != "" {
		c.Source.Driver = driver
	}
}

// resolvePaths makes every file path relative to basePath.
func (c *Config) resolvePaths(basePath string) {
	c.EntriesDir = resolve(basePath, c.EntriesDir)
	c.HelpersDir = resolve(basePath, c.HelpersDir)
	c.Mapping = resolve(basePath, c.Mapping)
	c.Structure = resolve(basePath, c.Structure)
	if c.Source.IsFilePath() {
		c.Source.DSN = resolve(basePath, c.Source.DSN)
	}
}

func resolve(basePath, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(basePath, p)
}

// IsFilePath reports whether the DSN names a local file or directory.
func (s SourceConfig) IsFilePath() bool {
	switch s.Driver {
	case DriverCSV, DriverJSON:
		return s.DSN != ""
	case DriverSQLite:
		return s.DSN != "" && s.DSN != ":memory:" && !strings.HasPrefix(s.DSN, "file:")
	default:
		return false
	}
}

// IsSQL reports whether the source is read through database/sql.
func (s SourceConfig) IsSQL() bool {
	switch s.Driver {
	case DriverSQLite, DriverPgx, DriverPostgres:
		return true
	default:
		return false
	}
}

// Validate rejects empty required settings and unknown enum values.
func (c *Config) Validate() error {
	required := []struct {
		key, value string
	}{
		{"entries_dir", c.EntriesDir},
		{"helpers_dir", c.HelpersDir},
		{"mapping", c.Mapping},
		{"structure", c.Structure},
		{"source.dsn", c.Source.DSN},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			return fmt.Errorf("invalid config: %s is required", r.key)
		}
	}

	switch c.Source.Driver {
	case DriverSQLite, DriverPgx, DriverPostgres, DriverCSV, DriverJSON:
	default:
		return fmt.Errorf("invalid config: source.driver %q (valid: sqlite, pgx, postgres, csv, json)", c.Source.Driver)
	}

	switch c.Link.ManyMode {
	case "append", "replace":
	default:
		return fmt.Errorf("invalid config: link.many_mode %q (valid: append, replace)", c.Link.ManyMode)
	}

	switch c.Link.OnMissingRelated {
	case "skip", "fail":
	default:
		return fmt.Errorf("invalid config: link.on_missing_related %q (valid: skip, fail)", c.Link.OnMissingRelated)
	}

	if c.Link.Workers < 1 {
		return errors.New("invalid config: link.workers must be at least 1")
	}
	if c.Link.IndexCacheSize < 1 {
		return errors.New("invalid config: link.index_cache_size must be at least 1")
	}

	return nil
}

// ConfigDir returns the path to the .entrylink config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// Exists checks if an entrylink config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}

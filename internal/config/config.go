// Package config provides configuration for the eludia command.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the configuration of the eludia command.
type Config struct {
	// ModelPath is the YAML or JSON model file describing the tables
	ModelPath string `json:"model_path" yaml:"model_path"`

	// DataDir is the base directory for database files
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// DatabasePath is the SQLite database holding the physical tables
	DatabasePath string `json:"database_path" yaml:"database_path"`

	// Seed configuration
	Seed SeedConfig `json:"seed" yaml:"seed"`

	// Catalog configuration
	Catalog CatalogConfig `json:"catalog" yaml:"catalog"`
}

// SeedConfig holds test-data seeding configuration.
type SeedConfig struct {
	// Rows is the number of rows generated per table (0 disables seeding)
	Rows int `json:"rows" yaml:"rows"`

	// Tables restricts seeding to the named tables; empty means all
	Tables []string `json:"tables" yaml:"tables"`
}

// CatalogConfig holds definition catalog configuration.
type CatalogConfig struct {
	// Enabled controls whether definitions are recorded
	Enabled bool `json:"enabled" yaml:"enabled"`

	// Path is the catalog database path
	Path string `json:"path" yaml:"path"`
}

// MaxSeedRows bounds Seed.Rows.
const MaxSeedRows = 1_000_000

// DefaultConfig returns the default configuration for local development.
func DefaultConfig() *Config {
	return &Config{
		ModelPath: "model.yaml",
		DataDir:   "./data/eludia",
		Seed: SeedConfig{
			Rows: 0,
		},
		Catalog: CatalogConfig{
			Enabled: false,
		},
	}
}

// Resolve sets database paths derived from DataDir.
func (c *Config) Resolve() {
	if c.DataDir == "" {
		c.DataDir = "./data/eludia"
	}
	if c.DatabasePath == "" {
		c.DatabasePath = filepath.Join(c.DataDir, "eludia.db")
	}
	if c.Catalog.Path == "" {
		c.Catalog.Path = filepath.Join(c.DataDir, "catalog.db")
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("model_path is required")
	}
	if c.Seed.Rows < 0 || c.Seed.Rows > MaxSeedRows {
		return fmt.Errorf("seed.rows must be between 0 and %d, got %d", MaxSeedRows, c.Seed.Rows)
	}
	if c.Seed.Rows > 0 && c.DatabasePath == "" {
		return fmt.Errorf("database_path is required when seeding")
	}
	if c.Catalog.Enabled && c.Catalog.Path == "" {
		return fmt.Errorf("catalog.path is required when the catalog is enabled")
	}
	return nil
}

// ShouldSeed reports whether the named table is seeded.
func (c *Config) ShouldSeed(table string) bool {
	if c.Seed.Rows == 0 {
		return false
	}
	if len(c.Seed.Tables) == 0 {
		return true
	}
	for _, t := range c.Seed.Tables {
		if strings.EqualFold(t, table) {
			return true
		}
	}
	return false
}

// LoadFromFile loads configuration from a YAML or JSON file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse YAML config: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse JSON config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config file format: %s", ext)
	}

	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables.
// Environment variables use the ELUDIA_ prefix.
func LoadFromEnv(cfg *Config) {
	if v := os.Getenv("ELUDIA_MODEL_PATH"); v != "" {
		cfg.ModelPath = v
	}
	if v := os.Getenv("ELUDIA_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("ELUDIA_DATABASE_PATH"); v != "" {
		cfg.DatabasePath = v
	}

	// Seed configuration
	if v := os.Getenv("ELUDIA_SEED_ROWS"); v != "" {
		fmt.Sscanf(v, "%d", &cfg.Seed.Rows)
	}
	if v := os.Getenv("ELUDIA_SEED_TABLES"); v != "" {
		cfg.Seed.Tables = strings.Split(v, ",")
	}

	// Catalog configuration
	if v := os.Getenv("ELUDIA_CATALOG_ENABLED"); v != "" {
		cfg.Catalog.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("ELUDIA_CATALOG_PATH"); v != "" {
		cfg.Catalog.Path = v
	}
}

// EnsureDirectories creates the directories of the configured database files.
func (c *Config) EnsureDirectories() error {
	dirs := []string{c.DataDir}
	if c.DatabasePath != "" {
		dirs = append(dirs, filepath.Dir(c.DatabasePath))
	}
	if c.Catalog.Enabled && c.Catalog.Path != "" {
		dirs = append(dirs, filepath.Dir(c.Catalog.Path))
	}

	for _, dir := range dirs {
		if dir == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

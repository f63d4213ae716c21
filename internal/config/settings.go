package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Matching holds lookup defaults and candidate pool limits.
type Matching struct {
	DefaultMinMatchPercent int `toml:"default_min_match_percent"`
	DefaultMaxResults      int `toml:"default_max_results"`
	// MaxCandidates caps the pool scored per lookup. Zero disables the cap.
	MaxCandidates     int `toml:"max_candidates"`
	ParallelThreshold int `toml:"parallel_threshold"`
	// FoldCacheSize bounds the in-process cache of folded source texts.
	FoldCacheSize int `toml:"fold_cache_size"`
}

// Storage holds database settings.
type Storage struct {
	DBPath string `toml:"db_path"`
}

// Logging holds logger settings.
type Logging struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// Config is the decoded settings file.
type Config struct {
	Matching Matching `toml:"matching"`
	Storage  Storage  `toml:"storage"`
	Logging  Logging  `toml:"logging"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Matching: Matching{
			DefaultMinMatchPercent: 70,
			DefaultMaxResults:      5,
			MaxCandidates:          2000,
			ParallelThreshold:      256,
			FoldCacheSize:          4096,
		},
		Logging: Logging{
			Level:  "info",
			Format: "auto",
		},
	}
}

// Load reads the settings file at path, or the default location when path is
// empty. A missing file is not an error. Environment overrides are applied
// after the file and the result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = GetConfigPath()
	}

	file, err := os.Open(path)
	switch {
	case err == nil:
		defer file.Close()
		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("open config: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv("TMATCH_LOG_LEVEL")); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv("TMATCH_DB")); v != "" {
		c.Storage.DBPath = v
	}
}

// Validate rejects settings the engine cannot honour.
func (c *Config) Validate() error {
	m := c.Matching
	if m.DefaultMinMatchPercent < 0 || m.DefaultMinMatchPercent > 100 {
		return fmt.Errorf("matching.default_min_match_percent must be between 0 and 100, got %d", m.DefaultMinMatchPercent)
	}
	if m.DefaultMaxResults < 1 {
		return fmt.Errorf("matching.default_max_results must be at least 1, got %d", m.DefaultMaxResults)
	}
	if m.MaxCandidates < 0 {
		return fmt.Errorf("matching.max_candidates must not be negative, got %d", m.MaxCandidates)
	}
	if m.ParallelThreshold < 1 {
		return fmt.Errorf("matching.parallel_threshold must be at least 1, got %d", m.ParallelThreshold)
	}
	if m.FoldCacheSize < 0 {
		return fmt.Errorf("matching.fold_cache_size must not be negative, got %d", m.FoldCacheSize)
	}

	switch strings.ToLower(strings.TrimSpace(c.Logging.Format)) {
	case "", "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

// ResolvedDBPath returns the configured database path or the default one.
func (c *Config) ResolvedDBPath() string {
	if c.Storage.DBPath != "" {
		return c.Storage.DBPath
	}
	return GetDBPath()
}

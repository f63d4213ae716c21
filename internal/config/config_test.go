package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGetDataDirWithExplicitEnv(t *testing.T) {
	tmpDir := t.TempDir()
	customDir := filepath.Join(tmpDir, "custom")

	t.Setenv("TMATCH_DIR", customDir)
	t.Setenv("XDG_DATA_HOME", "")

	got := GetDataDir()
	if got != customDir {
		t.Fatalf("expected %q, got %q", customDir, got)
	}
}

func TestGetDataDirFallsBackToXDG(t *testing.T) {
	tmpDir := t.TempDir()
	xdgDir := filepath.Join(tmpDir, "xdg")

	t.Setenv("TMATCH_DIR", "")
	t.Setenv("XDG_DATA_HOME", xdgDir)

	got := GetDataDir()
	want := filepath.Join(xdgDir, "tmatch")
	if got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

func TestGetDBPath(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TMATCH_DIR", tmpDir)

	if got, want := GetDBPath(), filepath.Join(tmpDir, "tm.db"); got != want {
		t.Fatalf("GetDBPath expected %q, got %q", want, got)
	}
}

func TestGetConfigPathUsesXDGConfigHome(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)

	if got, want := GetConfigPath(), filepath.Join(tmpDir, "tmatch", "config.toml"); got != want {
		t.Fatalf("GetConfigPath expected %q, got %q", want, got)
	}
}

func TestLoadWithoutFileReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("TMATCH_LOG_LEVEL", "")
	t.Setenv("TMATCH_DB", "")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if *cfg != Default() {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.toml")); err == nil {
		t.Fatal("expected error for missing explicit config")
	}
}

func TestLoadDecodesFileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[matching]
default_min_match_percent = 80
default_max_results = 3
max_candidates = 0

[storage]
db_path = "/tmp/from-file.db"

[logging]
level = "debug"
format = "json"
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("TMATCH_LOG_LEVEL", "warn")
	t.Setenv("TMATCH_DB", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Matching.DefaultMinMatchPercent != 80 || cfg.Matching.DefaultMaxResults != 3 {
		t.Fatalf("unexpected matching settings: %#v", cfg.Matching)
	}
	if cfg.Matching.MaxCandidates != 0 {
		t.Fatalf("expected uncapped pool, got %d", cfg.Matching.MaxCandidates)
	}
	if cfg.Matching.ParallelThreshold != 256 || cfg.Matching.FoldCacheSize != 4096 {
		t.Fatalf("expected defaults to survive, got %#v", cfg.Matching)
	}
	if cfg.Logging.Level != "warn" {
		t.Fatalf("expected env override for level, got %q", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "json" {
		t.Fatalf("expected json format, got %q", cfg.Logging.Format)
	}
	if got := cfg.ResolvedDBPath(); got != "/tmp/from-file.db" {
		t.Fatalf("expected db path from file, got %q", got)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[matching]\nfuzziness = 3\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown key")
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"min too high", func(c *Config) { c.Matching.DefaultMinMatchPercent = 101 }, "default_min_match_percent"},
		{"min negative", func(c *Config) { c.Matching.DefaultMinMatchPercent = -1 }, "default_min_match_percent"},
		{"zero results", func(c *Config) { c.Matching.DefaultMaxResults = 0 }, "default_max_results"},
		{"negative pool", func(c *Config) { c.Matching.MaxCandidates = -5 }, "max_candidates"},
		{"zero threshold", func(c *Config) { c.Matching.ParallelThreshold = 0 }, "parallel_threshold"},
		{"negative fold cache", func(c *Config) { c.Matching.FoldCacheSize = -1 }, "fold_cache_size"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatalf("expected error")
			}
			if !strings.Contains(err.Error(), tc.errMsg) {
				t.Fatalf("expected error mentioning %q, got %v", tc.errMsg, err)
			}
		})
	}
}

func TestResolvedDBPathDefault(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("TMATCH_DIR", tmpDir)

	cfg := Default()
	if got, want := cfg.ResolvedDBPath(), filepath.Join(tmpDir, "tm.db"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}

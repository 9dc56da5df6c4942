package config

import (
	"os"
	"path/filepath"
	"testing"
)

// --- Load ---

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	want := Default()
	if *cfg != want {
		t.Errorf("Load() = %+v, want %+v", *cfg, want)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("NEUROSYM_LOG_LEVEL", "DEBUG")
	t.Setenv("NEUROSYM_PRECISION", "4")
	t.Setenv("NEUROSYM_DEFAULT_SESSION", "wizard")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %s, want debug", cfg.LogLevel)
	}
	if cfg.Precision != 4 {
		t.Errorf("Precision = %d, want 4", cfg.Precision)
	}
	if cfg.DefaultSession != "wizard" {
		t.Errorf("DefaultSession = %s, want wizard", cfg.DefaultSession)
	}
}

func TestLoad_ConfigFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "neurosym.yaml")
	content := "log_format: console\ncatalog_path: /etc/neurosym/catalog.yaml\ncache_size: 16\n"
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("NEUROSYM_CONFIG", path)
	t.Setenv("NEUROSYM_CACHE_SIZE", "32")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LogFormat != "console" {
		t.Errorf("LogFormat = %s, want console", cfg.LogFormat)
	}
	if cfg.CatalogPath != "/etc/neurosym/catalog.yaml" {
		t.Errorf("CatalogPath = %s, want /etc/neurosym/catalog.yaml", cfg.CatalogPath)
	}
	if cfg.CacheSize != 32 {
		t.Errorf("CacheSize = %d, want 32 (env beats file)", cfg.CacheSize)
	}
}

func TestLoad_MissingConfigFile(t *testing.T) {
	t.Setenv("NEUROSYM_CONFIG", filepath.Join(t.TempDir(), "nope.yaml"))
	if _, err := Load(); err == nil {
		t.Error("Load() should fail for a missing config file")
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		env   string
		value string
	}{
		{"NEUROSYM_LOG_LEVEL", "verbose"},
		{"NEUROSYM_LOG_FORMAT", "xml"},
		{"NEUROSYM_PRECISION", "9"},
		{"NEUROSYM_DEFAULT_SESSION", "  "},
		{"NEUROSYM_CACHE_SIZE", "-1"},
		{"NEUROSYM_LOG_MAX_SIZE_MB", "0"},
	}
	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			t.Setenv(tt.env, tt.value)
			if _, err := Load(); err == nil {
				t.Errorf("Load() with %s=%q should fail", tt.env, tt.value)
			}
		})
	}
}

// --- LogOptions ---

func TestLogOptions(t *testing.T) {
	t.Setenv("NEUROSYM_LOG_FILE", "/var/log/neurosym.log")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	opts := cfg.LogOptions()
	if opts.File != "/var/log/neurosym.log" {
		t.Errorf("File = %s, want /var/log/neurosym.log", opts.File)
	}
	if opts.Level != "info" || opts.Format != "json" {
		t.Errorf("Level/Format = %s/%s, want info/json", opts.Level, opts.Format)
	}
	if opts.MaxSizeMB != 10 {
		t.Errorf("MaxSizeMB = %d, want 10", opts.MaxSizeMB)
	}
}

// Package config resolves the server's runtime configuration.
//
// Sources, highest priority first:
//  1. Environment variables (NEUROSYM_* prefix, e.g. NEUROSYM_LOG_LEVEL)
//  2. A YAML config file named by NEUROSYM_CONFIG
//  3. Built-in defaults
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/HendryAvila/neurosym/internal/expression"
	"github.com/HendryAvila/neurosym/internal/logging"
)

// EnvPrefix is the prefix of every environment variable the server reads.
const EnvPrefix = "NEUROSYM"

// Config is the resolved runtime configuration.
type Config struct {
	LogLevel       string `mapstructure:"log_level"`
	LogFormat      string `mapstructure:"log_format"` // json | console
	LogFile        string `mapstructure:"log_file"`   // empty: stderr
	LogMaxSizeMB   int    `mapstructure:"log_max_size_mb"`
	LogMaxBackups  int    `mapstructure:"log_max_backups"`
	LogMaxAgeDays  int    `mapstructure:"log_max_age_days"`
	CatalogPath    string `mapstructure:"catalog_path"`
	Precision      int    `mapstructure:"precision"`
	DefaultSession string `mapstructure:"default_session"`
	CacheSize      int    `mapstructure:"cache_size"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LogLevel:       "info",
		LogFormat:      "json",
		LogMaxSizeMB:   10,
		LogMaxBackups:  3,
		LogMaxAgeDays:  28,
		Precision:      expression.DefaultPrecision,
		DefaultSession: "default",
		CacheSize:      expression.DefaultCacheSize,
	}
}

var validLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
var validFormats = map[string]bool{"json": true, "console": true}

// Validate returns an error describing the first invalid setting.
func (c Config) Validate() error {
	if !validLevels[c.LogLevel] {
		return fmt.Errorf("invalid log_level %q: must be one of: debug, info, warn, error", c.LogLevel)
	}
	if !validFormats[c.LogFormat] {
		return fmt.Errorf("invalid log_format %q: must be one of: json, console", c.LogFormat)
	}
	if c.Precision < 0 || c.Precision > expression.MaxPrecision {
		return fmt.Errorf("invalid precision %d: must be between 0 and %d", c.Precision, expression.MaxPrecision)
	}
	if strings.TrimSpace(c.DefaultSession) == "" {
		return fmt.Errorf("default_session must not be empty")
	}
	if c.CacheSize < 0 {
		return fmt.Errorf("invalid cache_size %d: must be >= 0", c.CacheSize)
	}
	if c.LogMaxSizeMB < 1 || c.LogMaxBackups < 0 || c.LogMaxAgeDays < 0 {
		return fmt.Errorf("invalid log rotation %d MB / %d backups / %d days", c.LogMaxSizeMB, c.LogMaxBackups, c.LogMaxAgeDays)
	}
	return nil
}

// LogOptions returns the logger settings.
func (c Config) LogOptions() logging.Options {
	return logging.Options{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		File:       c.LogFile,
		MaxSizeMB:  c.LogMaxSizeMB,
		MaxBackups: c.LogMaxBackups,
		MaxAgeDays: c.LogMaxAgeDays,
	}
}

// Load resolves configuration from the environment and optional file.
func Load() (*Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	def := Default()
	v.SetDefault("log_level", def.LogLevel)
	v.SetDefault("log_format", def.LogFormat)
	v.SetDefault("log_file", def.LogFile)
	v.SetDefault("log_max_size_mb", def.LogMaxSizeMB)
	v.SetDefault("log_max_backups", def.LogMaxBackups)
	v.SetDefault("log_max_age_days", def.LogMaxAgeDays)
	v.SetDefault("catalog_path", def.CatalogPath)
	v.SetDefault("precision", def.Precision)
	v.SetDefault("default_session", def.DefaultSession)
	v.SetDefault("cache_size", def.CacheSize)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Package config loads application settings from an optional YAML file
// overridden by PACKTRACK_ environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "PACKTRACK_"

type Config struct {
	// Addr is the listen address of the HTTP server.
	Addr string `koanf:"addr"`

	// SheetURL is the single endpoint of the spreadsheet-backed service.
	SheetURL string `koanf:"sheet_url"`

	// DataDir holds the durable cache. Empty means memory-only.
	DataDir string `koanf:"data_dir"`

	// JWTSecret is the base64-encoded HS256 signing secret.
	JWTSecret string `koanf:"jwt_secret"`

	// TokenTTL is the lifetime of issued identity tokens.
	TokenTTL time.Duration `koanf:"token_ttl"`

	// SettingsSyncInterval is how often admin settings are re-read.
	SettingsSyncInterval time.Duration `koanf:"settings_sync_interval"`

	// LogLevel is a zerolog level name: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`
}

func defaults() Config {
	return Config{
		Addr:                 ":8090",
		TokenTTL:             12 * time.Hour,
		SettingsSyncInterval: 15 * time.Second,
		LogLevel:             "info",
	}
}

// Load reads configuration from path (skipped when empty or missing) and the
// environment. PACKTRACK_SHEET_URL maps to sheet_url and so on.
func Load(path string) (Config, error) {
	cfg := defaults()
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return cfg, fmt.Errorf("config file %s: %w", path, err)
		}
	}

	err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, envPrefix))
	}), nil)
	if err != nil {
		return cfg, fmt.Errorf("environment config: %w", err)
	}

	if err := k.Unmarshal("", &cfg); err != nil {
		return cfg, fmt.Errorf("config unmarshal: %w", err)
	}
	return cfg, cfg.validate()
}

func (c Config) validate() error {
	if c.SheetURL == "" {
		return fmt.Errorf("sheet_url is required")
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("jwt_secret is required")
	}
	return nil
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config carries the client-side connection settings. Precedence, lowest
// to highest: config file, HADANE_* environment variables, command flags
// (applied by the caller).
type Config struct {
	ServerURL string `yaml:"server_url"`
	Token     string `yaml:"token"`
	Timezone  string `yaml:"timezone"`
	LogLevel  string `yaml:"log_level"`
}

func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path == "" {
		path = defaultPath()
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
		// No file is fine; env and defaults still apply.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if value := os.Getenv("HADANE_SERVER_URL"); value != "" {
		cfg.ServerURL = value
	}
	if value := os.Getenv("HADANE_TOKEN"); value != "" {
		cfg.Token = value
	}
	if value := os.Getenv("HADANE_TIMEZONE"); value != "" {
		cfg.Timezone = value
	}
	if value := os.Getenv("HADANE_LOG_LEVEL"); value != "" {
		cfg.LogLevel = value
	}

	if cfg.ServerURL == "" {
		cfg.ServerURL = "http://localhost:8080"
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}

func defaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "hadane.yaml"
	}
	return filepath.Join(home, ".hadane", "config.yaml")
}

// Location resolves the configured timezone; empty means the process
// local zone, matching how "today" is defined everywhere else.
func (cfg *Config) Location() (*time.Location, error) {
	if cfg.Timezone == "" {
		return time.Local, nil
	}
	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}
	return location, nil
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// #region types

// EngineConfig selects the reasoning provider.
type EngineConfig struct {
	Provider string `yaml:"provider"` // "gemini" or "none"
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// Config is the on-disk configuration for a pilot run. Durations are
// strings in time.ParseDuration syntax.
type Config struct {
	Domain            string       `yaml:"domain"` // "aerial" or "underwater"
	DBPath            string       `yaml:"db_path"`
	HistoryCapacity   int          `yaml:"history_capacity"`
	Cadence           string       `yaml:"cadence"`
	DebounceIn        string       `yaml:"debounce_in"`
	DebounceOut       string       `yaml:"debounce_out"`
	ReasoningDeadline string       `yaml:"reasoning_deadline"`
	HeartbeatTimeout  string       `yaml:"heartbeat_timeout"`
	Engine            EngineConfig `yaml:"engine"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Domain:            "aerial",
		DBPath:            "manifests.db",
		HistoryCapacity:   32,
		Cadence:           "1s",
		DebounceIn:        "3s",
		DebounceOut:       "5s",
		ReasoningDeadline: "2s",
		HeartbeatTimeout:  "3s",
		Engine:            EngineConfig{Provider: "gemini", Model: "gemini-2.5-flash"},
	}
}

// #endregion types

// #region load

// Load reads a YAML config file, layering it over Default. Environment
// variables override file values last: SOVEREIGN_DOMAIN, SOVEREIGN_DB,
// GEMINI_API_KEY, GEMINI_MODEL.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config: %w", err)
		}
	}
	cfg.Domain = envOr("SOVEREIGN_DOMAIN", cfg.Domain)
	cfg.DBPath = envOr("SOVEREIGN_DB", cfg.DBPath)
	cfg.Engine.APIKey = envOr("GEMINI_API_KEY", cfg.Engine.APIKey)
	cfg.Engine.Model = envOr("GEMINI_MODEL", cfg.Engine.Model)
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// #endregion load

// #region durations

// Duration parses one of the config's duration fields, falling back to
// def on empty input.
func Duration(raw string, def time.Duration) (time.Duration, error) {
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("bad duration %q: %w", raw, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("duration %q must be positive", raw)
	}
	return d, nil
}

// #endregion durations

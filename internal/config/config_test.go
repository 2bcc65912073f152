package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// 1. No file: defaults come back intact.
func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Domain != "aerial" {
		t.Errorf("expected aerial default, got %s", cfg.Domain)
	}
	if cfg.DebounceIn != "3s" || cfg.DebounceOut != "5s" {
		t.Errorf("expected stock debounce, got %s/%s", cfg.DebounceIn, cfg.DebounceOut)
	}
	if cfg.Engine.Provider != "gemini" {
		t.Errorf("expected gemini provider, got %s", cfg.Engine.Provider)
	}
}

// 2. YAML file overlays defaults; unset keys keep their default values.
func TestLoad_YAMLOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pilot.yaml")
	body := "domain: underwater\nreasoning_deadline: 8s\nengine:\n  provider: none\n"
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Domain != "underwater" {
		t.Errorf("expected underwater, got %s", cfg.Domain)
	}
	if cfg.ReasoningDeadline != "8s" {
		t.Errorf("expected 8s deadline, got %s", cfg.ReasoningDeadline)
	}
	if cfg.Engine.Provider != "none" {
		t.Errorf("expected provider none, got %s", cfg.Engine.Provider)
	}
	if cfg.DebounceIn != "3s" {
		t.Errorf("expected default debounce kept, got %s", cfg.DebounceIn)
	}
}

// 3. Environment overrides file values last.
func TestLoad_EnvOverride(t *testing.T) {
	t.Setenv("SOVEREIGN_DOMAIN", "underwater")
	t.Setenv("GEMINI_API_KEY", "k-123")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Domain != "underwater" {
		t.Errorf("expected env domain, got %s", cfg.Domain)
	}
	if cfg.Engine.APIKey != "k-123" {
		t.Errorf("expected env api key, got %s", cfg.Engine.APIKey)
	}
}

// 4. Malformed YAML and missing file are errors.
func TestLoad_Errors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("domain: [unclosed"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

// 5. Duration parsing: empty uses the default, bad syntax and non-positive
// values are errors.
func TestDuration(t *testing.T) {
	if d, err := Duration("", 2*time.Second); err != nil || d != 2*time.Second {
		t.Errorf("expected default on empty, got %v err=%v", d, err)
	}
	if d, err := Duration("750ms", time.Second); err != nil || d != 750*time.Millisecond {
		t.Errorf("expected 750ms, got %v err=%v", d, err)
	}
	if _, err := Duration("fast", time.Second); err == nil {
		t.Error("expected error for bad syntax")
	}
	if _, err := Duration("-1s", time.Second); err == nil {
		t.Error("expected error for non-positive duration")
	}
}

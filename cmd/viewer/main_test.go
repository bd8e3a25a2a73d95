package main

import (
	"path/filepath"
	"testing"

	"GopherView/internal/config"
)

func TestRunInitWritesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config", "viewer.json")

	if err := runInit(path); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WindowTitle != config.Default().WindowTitle || cfg.OrbitRadius != 5 {
		t.Errorf("Expected default settings, got %+v", cfg)
	}

	if err := runInit(path); err == nil {
		t.Error("An existing config must not be overwritten")
	}
}

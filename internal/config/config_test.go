package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := Default()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default config should validate: %v", err)
	}
	if cfg.Fov != 75 || cfg.Near != 0.1 || cfg.Far != 1000 {
		t.Errorf("Unexpected camera defaults: fov=%v near=%v far=%v", cfg.Fov, cfg.Near, cfg.Far)
	}
	if cfg.DampingFactor != 0.25 {
		t.Errorf("Expected damping 0.25, got %v", cfg.DampingFactor)
	}
	if cfg.OrbitRadius != 5 {
		t.Errorf("Expected orbit radius 5, got %v", cfg.OrbitRadius)
	}
}

func TestValidateRejectsNegativeOrbitRadius(t *testing.T) {
	cfg := Default()
	cfg.OrbitRadius = -1

	if err := cfg.Validate(); err == nil {
		t.Error("Expected error for negative orbit radius")
	}
}

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Missing file should not be an error: %v", err)
	}
	if cfg.WindowTitle != Default().WindowTitle {
		t.Errorf("Expected default title, got %q", cfg.WindowTitle)
	}
}

func TestLoadJSONKeepsUnsetDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.json")
	data := `{"window_title": "Showroom", "models": [{"name": "Duck", "url": "models/duck.glb"}]}`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WindowTitle != "Showroom" {
		t.Errorf("Expected title Showroom, got %q", cfg.WindowTitle)
	}
	if cfg.WindowWidth != 1280 {
		t.Errorf("Unset width should keep default, got %d", cfg.WindowWidth)
	}
	if len(cfg.Models) != 1 || cfg.Models[0].URL != "models/duck.glb" {
		t.Errorf("Unexpected models: %+v", cfg.Models)
	}
}

func TestLoadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	data := "window_width: 800\nwindow_height: 600\nbackground: 0x102030\nauto_load: true\n"
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.WindowWidth != 800 || cfg.WindowHeight != 600 {
		t.Errorf("Expected 800x600, got %dx%d", cfg.WindowWidth, cfg.WindowHeight)
	}
	if !cfg.AutoLoad {
		t.Error("auto_load should be true")
	}
	r, g, b := cfg.BackgroundRGB()
	if r != float32(0x10)/255 || g != float32(0x20)/255 || b != float32(0x30)/255 {
		t.Errorf("Unexpected background %v %v %v", r, g, b)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.json")
	if err := os.WriteFile(path, []byte(`{"near": 5, "far": 1}`), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected error for far <= near")
	}
}

func TestLoadRejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.json")
	if err := os.WriteFile(path, []byte(`{"window_width": `), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("Expected parse error")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "viewer.json")
	cfg := Default()
	cfg.AddModelPaths("assets/models/helmet.glb")

	if err := Save(path, cfg); err != nil {
		t.Fatal(err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(loaded.Models) != 1 || loaded.Models[0].Name != "helmet.glb" {
		t.Errorf("Unexpected models after reload: %+v", loaded.Models)
	}
}

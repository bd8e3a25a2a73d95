package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultPath is where the viewer looks for its config when no --config flag is given.
const DefaultPath = "config/viewer.json"

// ModelEntry is one clickable entry of the model list.
type ModelEntry struct {
	Name string `json:"name" yaml:"name"`
	URL  string `json:"url" yaml:"url"`
}

type ViewerConfig struct {
	WindowTitle  string `json:"window_title" yaml:"window_title"`
	WindowWidth  int32  `json:"window_width" yaml:"window_width"`
	WindowHeight int32  `json:"window_height" yaml:"window_height"`

	// Background clear color, 0xRRGGBB.
	Background uint32 `json:"background" yaml:"background"`

	EnvironmentPath   string `json:"environment_path" yaml:"environment_path"`
	EnvironmentWidth  int    `json:"environment_width" yaml:"environment_width"`
	EnvironmentLevels int    `json:"environment_levels" yaml:"environment_levels"`

	Fov  float32 `json:"fov" yaml:"fov"`
	Near float32 `json:"near" yaml:"near"`
	Far  float32 `json:"far" yaml:"far"`

	DampingFactor float32 `json:"damping_factor" yaml:"damping_factor"`

	// Light orbit radius until the first model is framed.
	OrbitRadius float32 `json:"orbit_radius" yaml:"orbit_radius"`

	Models   []ModelEntry `json:"models,omitempty" yaml:"models,omitempty"`
	AutoLoad bool         `json:"auto_load" yaml:"auto_load"`

	LogLevel string `json:"log_level" yaml:"log_level"`
}

// Default returns the stock viewer settings.
func Default() ViewerConfig {
	return ViewerConfig{
		WindowTitle:       "GopherView",
		WindowWidth:       1280,
		WindowHeight:      720,
		Background:        0xdddddd,
		EnvironmentPath:   "assets/env/venetian_crossroads_1k.png",
		EnvironmentWidth:  512,
		EnvironmentLevels: 6,
		Fov:               75,
		Near:              0.1,
		Far:               1000,
		DampingFactor:     0.25,
		OrbitRadius:       5,
		LogLevel:          "info",
	}
}

// Load reads the config at path. A missing file is not an error and yields Default().
// Files ending in .yaml or .yml are decoded as YAML, anything else as JSON.
// Fields absent from the file keep their default values.
func Load(path string) (ViewerConfig, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &cfg)
	default:
		err = json.Unmarshal(data, &cfg)
	}
	if err != nil {
		return Default(), fmt.Errorf("parse config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Default(), fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg as indented JSON, creating the parent directory if needed.
func Save(path string, cfg ViewerConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(cfg, "", "\t")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c ViewerConfig) Validate() error {
	if c.WindowWidth <= 0 || c.WindowHeight <= 0 {
		return fmt.Errorf("window size must be positive, got %dx%d", c.WindowWidth, c.WindowHeight)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		return fmt.Errorf("invalid clip planes near=%v far=%v", c.Near, c.Far)
	}
	if c.Fov <= 0 || c.Fov >= 180 {
		return fmt.Errorf("fov must be in (0, 180), got %v", c.Fov)
	}
	if c.DampingFactor < 0 || c.DampingFactor > 1 {
		return fmt.Errorf("damping factor must be in [0, 1], got %v", c.DampingFactor)
	}
	if c.OrbitRadius < 0 {
		return fmt.Errorf("orbit radius must not be negative, got %v", c.OrbitRadius)
	}
	for i, m := range c.Models {
		if m.URL == "" {
			return fmt.Errorf("model %d (%q) has no url", i, m.Name)
		}
	}
	return nil
}

// BackgroundRGB splits Background into normalized components.
func (c ViewerConfig) BackgroundRGB() (r, g, b float32) {
	r = float32((c.Background>>16)&0xff) / 255
	g = float32((c.Background>>8)&0xff) / 255
	b = float32(c.Background&0xff) / 255
	return
}

// AddModelPaths appends entries for plain paths or URLs, named after their base name.
func (c *ViewerConfig) AddModelPaths(paths ...string) {
	for _, p := range paths {
		c.Models = append(c.Models, ModelEntry{Name: filepath.Base(p), URL: p})
	}
}

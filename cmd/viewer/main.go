// GopherView - desktop glTF model viewer.
//
// Controls:
//
//	Left drag   - Orbit around the model
//	Right drag  - Pan
//	Scroll      - Zoom in/out
//	1-9         - Load model list entry
//	Drop a file - Load it
//	Esc         - Quit
package main

import (
	"context"
	"fmt"
	"errors"
	"os"
	"path/filepath"
	"runtime"

	"GopherView/internal/config"
	"GopherView/internal/engine"
	"GopherView/internal/loader"
	"GopherView/internal/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	envPath    string
	width      int32
	height     int32
	logLevel   string
	autoLoad   bool
	wireframe  bool
	cullFaces  bool
	noFrustum  bool
)

// GLFW and the GL context must stay on the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	cmd := &cobra.Command{
		Use:   "gopherview [model.glb|model.gltf|url ...]",
		Short: "Desktop glTF model viewer",
		Long: `GopherView - desktop glTF model viewer

Models given as arguments are appended to the model list from the config
file; number keys 1-9 load the matching entry.

Controls:
  Left drag   - Orbit
  Right drag  - Pan
  Scroll      - Zoom
  1-9         - Load model list entry
  Drop a file - Load it
  Esc         - Quit`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, args)
			if err != nil {
				return err
			}
			return run(cfg)
		},
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath, "Config file (.json, .yaml or .yml)")
	cmd.Flags().StringVar(&envPath, "env", "", "Environment map image")
	cmd.Flags().Int32Var(&width, "width", 0, "Window width")
	cmd.Flags().Int32Var(&height, "height", 0, "Window height")
	cmd.Flags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	cmd.Flags().BoolVar(&autoLoad, "auto-load", false, "Load the first model list entry at startup")
	cmd.Flags().BoolVar(&wireframe, "wireframe", false, "Render polygons as lines")
	cmd.Flags().BoolVar(&cullFaces, "cull-faces", false, "Cull back faces of single-sided materials")
	cmd.Flags().BoolVar(&noFrustum, "no-frustum-culling", false, "Draw meshes outside the view frustum")

	infoCmd := &cobra.Command{
		Use:   "info <model.glb|url>",
		Short: "Display model information",
		Long:  "Load a glTF model without opening a window and print its mesh, triangle and bounding box statistics.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.Context(), args[0])
		},
	}
	cmd.AddCommand(infoCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Long:  "Write the default viewer settings as JSON to the --config path. An existing file is left alone.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(configPath)
		},
	}
	cmd.AddCommand(initCmd)

	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file and applies the flags that were set explicitly.
func loadConfig(cmd *cobra.Command, args []string) (config.ViewerConfig, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("env") {
		cfg.EnvironmentPath = envPath
	}
	if flags.Changed("width") {
		cfg.WindowWidth = width
	}
	if flags.Changed("height") {
		cfg.WindowHeight = height
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = logLevel
	}
	if flags.Changed("auto-load") {
		cfg.AutoLoad = autoLoad
	}
	// Models named on the command line go first so key 1 and auto-load pick them.
	if len(args) > 0 {
		configured := cfg.Models
		cfg.Models = nil
		cfg.AddModelPaths(args...)
		cfg.Models = append(cfg.Models, configured...)
		if !flags.Changed("auto-load") {
			cfg.AutoLoad = true
		}
	}

	return cfg, cfg.Validate()
}

func run(cfg config.ViewerConfig) error {
	logger.InitWithLevel(cfg.LogLevel)
	defer logger.Sync()

	logger.Log.Info("GopherView starting",
		zap.String("config", configPath),
		zap.String("environment", cfg.EnvironmentPath),
		zap.Int("models", len(cfg.Models)))

	gopher := engine.NewGopher(cfg)
	gopher.SetDebugMode(wireframe)
	gopher.SetFaceCulling(cullFaces)
	gopher.SetFrustumCulling(!noFrustum)

	if err := gopher.Run(); err != nil {
		logger.Log.Error("Viewer stopped", zap.Error(err))
		return err
	}
	return nil
}

func runInit(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}
	if err := config.Save(path, config.Default()); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func runInfo(ctx context.Context, url string) error {
	logger.InitWithLevel("warn")
	defer logger.Sync()

	model, err := loader.Load(ctx, url, nil)
	if err != nil {
		return fmt.Errorf("load model: %w", err)
	}

	vertices := 0
	textured := 0
	for _, mesh := range model.Meshes {
		vertices += mesh.VertexCount()
		if mesh.Material != nil && mesh.Material.Texture != nil {
			textured++
		}
	}
	box := model.BoundingBox()
	size := box.Size()
	center := box.Center()

	fmt.Printf("File:       %s\n", filepath.Base(url))
	fmt.Printf("Meshes:     %d (%d textured)\n", len(model.Meshes), textured)
	fmt.Printf("Vertices:   %d\n", vertices)
	fmt.Printf("Triangles:  %d\n", model.TriangleCount())
	fmt.Println()
	fmt.Printf("Bounds Min: (%.3f, %.3f, %.3f)\n", box.Min.X(), box.Min.Y(), box.Min.Z())
	fmt.Printf("Bounds Max: (%.3f, %.3f, %.3f)\n", box.Max.X(), box.Max.Y(), box.Max.Z())
	fmt.Printf("Dimensions: %.3f x %.3f x %.3f\n", size.X(), size.Y(), size.Z())
	fmt.Printf("Center:     (%.3f, %.3f, %.3f)\n", center.X(), center.Y(), center.Z())
	fmt.Printf("Diagonal:   %.3f\n", box.Diagonal())
	return nil
}

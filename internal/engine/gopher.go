package engine

import (
	"fmt"

	"GopherView/internal/config"
	"GopherView/internal/logger"
	"GopherView/internal/renderer"
	"GopherView/internal/viewer"

	"github.com/go-gl/glfw/v3.3/glfw"
	"go.uber.org/zap"
)

// Gopher owns the native window and feeds its events into a viewer.
type Gopher struct {
	Width       int32
	Height      int32
	Config      config.ViewerConfig
	rendererAPI renderer.Render
	window      *glfw.Window
	viewer      *viewer.Viewer

	lastX, lastY float64
	rotating     bool
	panning      bool
}

func NewGopher(cfg config.ViewerConfig) *Gopher {
	return &Gopher{
		Config:      cfg,
		Width:       cfg.WindowWidth,
		Height:      cfg.WindowHeight,
		rendererAPI: renderer.NewOpenGLRenderer(),
	}
}

// Run opens the window, bootstraps the viewer and blocks in the render loop
// until the window is closed. It must be called from the main goroutine,
// locked to the main OS thread.
func (gopher *Gopher) Run() error {
	if err := glfw.Init(); err != nil {
		return fmt.Errorf("initialize glfw: %w", err)
	}
	defer glfw.Terminate()

	glfw.WindowHint(glfw.Decorated, glfw.True)
	glfw.WindowHint(glfw.Resizable, glfw.True)
	glfw.WindowHint(glfw.DepthBits, 24)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(int(gopher.Width), int(gopher.Height), gopher.Config.WindowTitle, nil, nil)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()
	gopher.window = window
	window.MakeContextCurrent()
	glfw.SwapInterval(1)

	r, g, b := gopher.Config.BackgroundRGB()
	tintTitleBar(window, r, g, b)

	// The framebuffer differs from the window size on HiDPI displays.
	fbWidth, fbHeight := window.GetFramebufferSize()
	if err := gopher.rendererAPI.Init(int32(fbWidth), int32(fbHeight), window); err != nil {
		return err
	}

	status := NewTitleStatus(gopher.Config.WindowTitle, window.SetTitle)
	gopher.viewer = viewer.New(gopher.Config, gopher.rendererAPI, status, int32(fbWidth), int32(fbHeight))

	window.SetFramebufferSizeCallback(gopher.framebufferSizeCallback)
	window.SetMouseButtonCallback(gopher.mouseButtonCallback)
	window.SetCursorPosCallback(gopher.mouseCallback)
	window.SetScrollCallback(gopher.scrollCallback)
	window.SetKeyCallback(gopher.keyCallback)
	window.SetDropCallback(gopher.dropCallback)

	logger.Log.Info("Window opened",
		zap.Int32("width", gopher.Width),
		zap.Int32("height", gopher.Height),
		zap.Int("framebufferWidth", fbWidth),
		zap.Int("framebufferHeight", fbHeight))

	gopher.RenderLoop()
	return nil
}

func (gopher *Gopher) RenderLoop() {
	start := glfw.GetTime()
	for !gopher.window.ShouldClose() {
		gopher.viewer.Frame(glfw.GetTime() - start)
		gopher.window.SwapBuffers()
		glfw.PollEvents()
	}
	gopher.viewer.Close()
	gopher.rendererAPI.Cleanup()
}

func (gopher *Gopher) SetDebugMode(debug bool) {
	renderer.Debug = debug
}

func (gopher *Gopher) SetFrustumCulling(enabled bool) {
	renderer.FrustumCullingEnabled = enabled
}

func (gopher *Gopher) SetFaceCulling(enabled bool) {
	renderer.FaceCullingEnabled = enabled
}

func (gopher *Gopher) framebufferSizeCallback(_ *glfw.Window, width, height int) {
	gopher.viewer.Resize(int32(width), int32(height))
}

func (gopher *Gopher) mouseButtonCallback(w *glfw.Window, button glfw.MouseButton, action glfw.Action, _ glfw.ModifierKey) {
	pressed := action == glfw.Press
	switch button {
	case glfw.MouseButtonLeft:
		gopher.rotating = pressed
	case glfw.MouseButtonRight, glfw.MouseButtonMiddle:
		gopher.panning = pressed
	}
	gopher.lastX, gopher.lastY = w.GetCursorPos()
}

// Mouse callback function
func (gopher *Gopher) mouseCallback(w *glfw.Window, xpos, ypos float64) {
	dx := float32(xpos - gopher.lastX)
	dy := float32(ypos - gopher.lastY)
	gopher.lastX, gopher.lastY = xpos, ypos

	if !gopher.rotating && !gopher.panning {
		return
	}
	// Cursor positions are in window coordinates, not framebuffer pixels.
	_, height := w.GetSize()
	controls := gopher.viewer.Controls()
	if gopher.rotating {
		controls.Rotate(dx, dy, float32(height))
	} else {
		controls.Pan(dx, dy, float32(height))
	}
}

func (gopher *Gopher) scrollCallback(_ *glfw.Window, _, yoff float64) {
	gopher.viewer.Controls().Dolly(float32(yoff))
}

func (gopher *Gopher) keyCallback(w *glfw.Window, key glfw.Key, _ int, action glfw.Action, _ glfw.ModifierKey) {
	if action != glfw.Press {
		return
	}
	if key == glfw.KeyEscape {
		w.SetShouldClose(true)
		return
	}
	if n, ok := modelKey(key); ok {
		if err := gopher.viewer.LoadEntry(n); err != nil {
			logger.Log.Warn("No model bound to key", zap.Int("key", n), zap.Error(err))
		}
	}
}

func (gopher *Gopher) dropCallback(_ *glfw.Window, names []string) {
	if len(names) == 0 {
		return
	}
	if len(names) > 1 {
		logger.Log.Info("Several files dropped, loading the first", zap.Strings("files", names))
	}
	gopher.viewer.LoadModel(names[0])
}

// modelKey maps the number keys 1-9 to model list entries.
func modelKey(key glfw.Key) (int, bool) {
	if key < glfw.Key1 || key > glfw.Key9 {
		return 0, false
	}
	return int(key-glfw.Key1) + 1, true
}

// luminance is the relative luminance of a linear RGB color.
func luminance(r, g, b float32) float32 {
	return 0.2126*r + 0.7152*g + 0.0722*b
}

package viewer

import (
	"context"
	"fmt"
	"sync"

	"GopherView/internal/behaviour"
	"GopherView/internal/config"
	"GopherView/internal/loader"
	"GopherView/internal/logger"
	"GopherView/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Room for every progress step of a load plus its completion.
const eventBuffer = 256

// The camera and the light orbits sit this many model diagonals away from the
// model center.
const framingDistance = 1.5

// LoadFunc fetches and parses a model. loader.Load is the default.
type LoadFunc func(ctx context.Context, url string, onProgress loader.ProgressFunc) (*renderer.Model, error)

// EnvironmentFunc loads and prefilters an environment map. renderer.LoadEnvironment is the default.
// It should give up once ctx is done.
type EnvironmentFunc func(ctx context.Context, path string, baseWidth, levels int) (*renderer.Environment, error)

type Option func(*Viewer)

func WithLoader(fn LoadFunc) Option {
	return func(v *Viewer) { v.loadModel = fn }
}

func WithEnvironmentLoader(fn EnvironmentFunc) Option {
	return func(v *Viewer) { v.loadEnvironment = fn }
}

// Viewer owns one scene and everything that mutates it: camera, controls,
// lights, orbit radius and in-flight loads. Its methods must be called from
// the loop thread. Background work only posts events, which Frame applies.
type Viewer struct {
	cfg      config.ViewerConfig
	scene    *renderer.Scene
	camera   *renderer.Camera
	controls *renderer.OrbitControls
	render   renderer.Render
	status   StatusListener

	behaviours  *behaviour.Manager
	pointLights [3]*renderer.Light
	orbitRadius float32
	width       int32
	height      int32

	loadModel       LoadFunc
	loadEnvironment EnvironmentFunc

	ctx        context.Context
	stop       context.CancelFunc
	events     chan event
	wg         sync.WaitGroup
	generation uint64
	cancelLoad context.CancelFunc
	loadingURL string
}

// New builds the scene for a viewport of width x height and starts the
// environment map load. render must already be initialized. A nil status
// falls back to LogStatus.
func New(cfg config.ViewerConfig, render renderer.Render, status StatusListener, width, height int32, opts ...Option) *Viewer {
	if status == nil {
		status = LogStatus{}
	}
	ctx, stop := context.WithCancel(context.Background())

	v := &Viewer{
		cfg:             cfg,
		render:          render,
		status:          status,
		behaviours:      behaviour.NewManager(),
		orbitRadius:     cfg.OrbitRadius,
		width:           width,
		height:          height,
		loadModel:       loader.Load,
		loadEnvironment: renderer.LoadEnvironment,
		ctx:             ctx,
		stop:            stop,
		events:          make(chan event, eventBuffer),
	}
	for _, opt := range opts {
		opt(v)
	}

	r, g, b := cfg.BackgroundRGB()
	v.scene = renderer.NewScene(mgl32.Vec3{r, g, b})

	aspect := float32(1)
	if width > 0 && height > 0 {
		aspect = float32(width) / float32(height)
	}
	v.camera = renderer.NewPerspectiveCamera(cfg.Fov, aspect, cfg.Near, cfg.Far)

	v.controls = renderer.NewOrbitControls(v.camera)
	v.controls.EnableDamping = true
	v.controls.DampingFactor = cfg.DampingFactor

	v.addLights()

	if cfg.EnvironmentPath != "" {
		v.startEnvironmentLoad(cfg.EnvironmentPath)
	}
	if cfg.AutoLoad && len(cfg.Models) > 0 {
		v.LoadModel(cfg.Models[0].URL)
	}

	logger.Log.Info("Viewer ready",
		zap.Int32("width", width),
		zap.Int32("height", height),
		zap.Int("models", len(cfg.Models)),
		zap.Int("behaviours", v.behaviours.Len()))
	return v
}

func (v *Viewer) addLights() {
	white := mgl32.Vec3{1, 1, 1}
	v.scene.AddLight(
		renderer.CreateDirectionalLight(mgl32.Vec3{1, 1, 1}, white, 1),
		renderer.CreateAmbientLight(white, 0.5),
	)

	for i, path := range lightPaths {
		light := renderer.CreatePointLight(mgl32.Vec3{}, renderer.HexColor(pointLightColors[i]), pointLightIntensity, pointLightRange)
		light.Name = fmt.Sprintf("point-%d", i)
		v.pointLights[i] = light
		v.scene.AddLight(light)
		v.behaviours.Add(&orbitingLight{light: light, path: path, viewer: v})
	}
}

func (v *Viewer) startEnvironmentLoad(path string) {
	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		env, err := v.loadEnvironment(v.ctx, path, v.cfg.EnvironmentWidth, v.cfg.EnvironmentLevels)
		v.post(v.ctx, environmentLoaded{path: path, env: env, err: err})
	}()
}

// Frame runs one animation step at elapsed seconds since the loop started.
func (v *Viewer) Frame(elapsed float64) {
	v.ProcessEvents()
	v.behaviours.UpdateAll(elapsed)
	v.controls.Update()
	v.render.Render(v.scene, v.camera)
}

// ProcessEvents applies every result background work has posted so far.
func (v *Viewer) ProcessEvents() {
	for {
		select {
		case e := <-v.events:
			e.apply(v)
		default:
			return
		}
	}
}

func (v *Viewer) post(ctx context.Context, e event) {
	select {
	case v.events <- e:
	case <-ctx.Done():
	}
}

// LoadModel starts loading url in the background. Any load still in flight
// is cancelled and its result will never reach the scene.
func (v *Viewer) LoadModel(url string) {
	if v.cancelLoad != nil {
		v.cancelLoad()
		logger.Log.Debug("Superseding model load", zap.String("url", v.loadingURL))
	}
	v.generation++
	gen := v.generation
	ctx, cancel := context.WithCancel(v.ctx)
	v.cancelLoad = cancel
	v.loadingURL = url

	v.status.LoadingStarted(url)
	v.status.LoadingProgress(0)

	v.wg.Add(1)
	go func() {
		defer v.wg.Done()
		// A loader panic on a malformed file fails this load only.
		defer func() {
			if r := recover(); r != nil {
				v.post(ctx, loadFinished{generation: gen, url: url, err: fmt.Errorf("load %s: panic: %v", url, r)})
			}
		}()
		model, err := v.loadModel(ctx, url, func(percent int) {
			v.post(ctx, loadProgress{generation: gen, percent: percent})
		})
		v.post(ctx, loadFinished{generation: gen, url: url, model: model, err: err})
	}()
}

// LoadEntry loads entry n (1-based) of the model list.
func (v *Viewer) LoadEntry(n int) error {
	if n < 1 || n > len(v.cfg.Models) {
		return fmt.Errorf("no model entry %d (have %d)", n, len(v.cfg.Models))
	}
	v.LoadModel(v.cfg.Models[n-1].URL)
	return nil
}

// Loading reports whether a model load is in flight.
func (v *Viewer) Loading() bool {
	return v.cancelLoad != nil
}

// Resize adapts camera aspect and viewport to a framebuffer of width x height.
// A zero-sized framebuffer, as reported for minimized windows, is ignored.
func (v *Viewer) Resize(width, height int32) {
	if width <= 0 || height <= 0 {
		return
	}
	v.width, v.height = width, height
	v.camera.SetAspectRatio(float32(width) / float32(height))
	v.render.UpdateViewport(width, height)
}

// Close cancels background work and waits for it to stop. Results still
// queued are discarded.
func (v *Viewer) Close() {
	v.stop()
	v.wg.Wait()
	v.cancelLoad = nil
	v.behaviours.Clear()
}

func (v *Viewer) Scene() *renderer.Scene            { return v.scene }
func (v *Viewer) Camera() *renderer.Camera          { return v.camera }
func (v *Viewer) Controls() *renderer.OrbitControls { return v.controls }
func (v *Viewer) PointLights() [3]*renderer.Light   { return v.pointLights }

// Viewport is the last non-zero framebuffer size.
func (v *Viewer) Viewport() (width, height int32) { return v.width, v.height }

// OrbitRadius is the distance scale of the light orbits: the configured radius
// until the first load, 1.5 model diagonals after it.
func (v *Viewer) OrbitRadius() float32 { return v.orbitRadius }

// installModel replaces the scene model and frames the camera around it.
func (v *Viewer) installModel(model *renderer.Model) {
	if previous := v.scene.SetModel(model); previous != nil {
		v.render.RemoveModel(previous)
	}
	v.render.AddModel(model)
	v.frame(model)
}

// frame targets the model's bounding box center and backs the camera off
// along +Z by framingDistance diagonals. The light orbit radius follows.
func (v *Viewer) frame(model *renderer.Model) {
	box := model.BoundingBox()
	center := box.Center()
	distance := box.Diagonal() * framingDistance

	v.controls.Target = center
	position := center
	position[2] += distance
	v.camera.Position = position
	v.orbitRadius = distance
	v.controls.Update()

	logger.Log.Debug("Framed model",
		zap.Float32("centerX", center.X()),
		zap.Float32("centerY", center.Y()),
		zap.Float32("centerZ", center.Z()),
		zap.Float32("orbitRadius", distance))
}

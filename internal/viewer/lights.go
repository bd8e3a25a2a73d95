package viewer

import (
	"math"

	"GopherView/internal/renderer"

	"github.com/go-gl/mathgl/mgl32"
)

// LightPath parameterizes one point light's swirl around the orbit target.
type LightPath struct {
	Phase   float64
	SpeedXZ float64
	SpeedY  float64
}

// The three point lights: red, green, blue.
var (
	pointLightColors = [3]uint32{0xff0000, 0x00ff00, 0x0000ff}
	lightPaths       = [3]LightPath{
		{Phase: 0, SpeedXZ: 0.5, SpeedY: 0.7},
		{Phase: math.Pi / 3, SpeedXZ: 0.7, SpeedY: 0.5},
		{Phase: 2 * math.Pi / 3, SpeedXZ: 0.3, SpeedY: 0.9},
	}
)

const (
	pointLightIntensity = 2
	pointLightRange     = 100
)

// Offset is the light's displacement from the target at elapsed time t for an
// orbit of the given radius. Horizontal components stay within radius, the
// vertical one within half of it.
func (p LightPath) Offset(t float64, radius float32) mgl32.Vec3 {
	r := float64(radius)
	xz := t*p.SpeedXZ + p.Phase
	y := t*p.SpeedY + p.Phase
	return mgl32.Vec3{
		float32(math.Sin(xz) * r),
		float32(math.Cos(y) * r * 0.5),
		float32(math.Cos(xz) * r),
	}
}

// orbitingLight moves one point light along its path around the current
// controls target, scaled by the viewer's orbit radius.
type orbitingLight struct {
	light  *renderer.Light
	path   LightPath
	viewer *Viewer
}

func (o *orbitingLight) Start() {
	o.Update(0)
}

func (o *orbitingLight) Update(elapsed float64) {
	v := o.viewer
	o.light.Position = v.controls.Target.Add(o.path.Offset(elapsed, v.orbitRadius))
}

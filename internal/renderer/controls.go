package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

const polarEpsilon = 1e-6

// OrbitControls rotates, pans and dollies a camera around a target point.
// Input only accumulates deltas; Update applies them and, with damping
// enabled, keeps a decaying remainder so the camera eases to a stop.
type OrbitControls struct {
	Camera *Camera
	Target mgl32.Vec3

	EnableDamping bool
	DampingFactor float32

	RotateSpeed float32
	PanSpeed    float32
	ZoomSpeed   float32

	MinDistance   float32
	MaxDistance   float32
	MinPolarAngle float64
	MaxPolarAngle float64

	deltaTheta float64
	deltaPhi   float64
	scale      float64
	panOffset  mgl32.Vec3
}

func NewOrbitControls(camera *Camera) *OrbitControls {
	return &OrbitControls{
		Camera:        camera,
		DampingFactor: 0.05,
		RotateSpeed:   1,
		PanSpeed:      1,
		ZoomSpeed:     1,
		MinDistance:   0,
		MaxDistance:   float32(math.Inf(1)),
		MinPolarAngle: 0,
		MaxPolarAngle: math.Pi,
		scale:         1,
	}
}

// Rotate orbits by a pointer drag of (dx, dy) pixels on a viewport of the given height.
// A drag across the full height is one full turn.
func (o *OrbitControls) Rotate(dx, dy, viewportHeight float32) {
	if viewportHeight <= 0 {
		return
	}
	o.deltaTheta -= 2 * math.Pi * float64(dx) / float64(viewportHeight) * float64(o.RotateSpeed)
	o.deltaPhi -= 2 * math.Pi * float64(dy) / float64(viewportHeight) * float64(o.RotateSpeed)
}

// Pan shifts the target in the camera plane by a pointer drag of (dx, dy) pixels,
// scaled so that the point under the cursor at target depth follows the cursor.
func (o *OrbitControls) Pan(dx, dy, viewportHeight float32) {
	if viewportHeight <= 0 {
		return
	}
	distance := o.Camera.Position.Sub(o.Target).Len()
	distance *= float32(math.Tan(float64(mgl32.DegToRad(o.Camera.Fov)) / 2))

	left := 2 * dx * distance / viewportHeight * o.PanSpeed
	up := 2 * dy * distance / viewportHeight * o.PanSpeed

	o.panOffset = o.panOffset.Sub(o.Camera.Right.Mul(left))
	o.panOffset = o.panOffset.Add(o.Camera.Up.Mul(up))
}

// Dolly moves towards the target for positive steps and away for negative ones.
func (o *OrbitControls) Dolly(steps float32) {
	zoom := math.Pow(0.95, float64(o.ZoomSpeed))
	o.scale *= math.Pow(zoom, float64(steps))
}

// Update applies pending input to the camera and points it at the target.
// It returns whether the camera moved.
func (o *OrbitControls) Update() bool {
	cam := o.Camera
	offset := cam.Position.Sub(o.Target)

	radius := float64(offset.Len())
	var theta, phi float64
	if radius > 0 {
		theta = math.Atan2(float64(offset.X()), float64(offset.Z()))
		phi = math.Acos(clamp64(float64(offset.Y())/radius, -1, 1))
	}

	factor := 1.0
	if o.EnableDamping {
		factor = float64(o.DampingFactor)
	}

	theta += o.deltaTheta * factor
	phi += o.deltaPhi * factor
	phi = clamp64(phi, math.Max(o.MinPolarAngle, polarEpsilon), math.Min(o.MaxPolarAngle, math.Pi-polarEpsilon))

	radius *= o.scale
	radius = clamp64(radius, float64(o.MinDistance), float64(o.MaxDistance))

	o.Target = o.Target.Add(o.panOffset.Mul(float32(factor)))

	sinPhiRadius := math.Sin(phi) * radius
	offset = mgl32.Vec3{
		float32(sinPhiRadius * math.Sin(theta)),
		float32(math.Cos(phi) * radius),
		float32(sinPhiRadius * math.Cos(theta)),
	}

	previous := cam.Position
	cam.Position = o.Target.Add(offset)
	cam.LookAt(o.Target)

	if o.EnableDamping {
		o.deltaTheta *= 1 - factor
		o.deltaPhi *= 1 - factor
		o.panOffset = o.panOffset.Mul(float32(1 - factor))
	} else {
		o.deltaTheta, o.deltaPhi = 0, 0
		o.panOffset = mgl32.Vec3{}
	}
	o.scale = 1

	return previous.Sub(cam.Position).LenSqr() > polarEpsilon
}

func clamp64(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

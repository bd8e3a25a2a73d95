package renderer

import "github.com/go-gl/mathgl/mgl32"

type LightMode int

const (
	DirectionalLight LightMode = iota
	AmbientLight
	PointLight
)

func (m LightMode) String() string {
	switch m {
	case DirectionalLight:
		return "directional"
	case AmbientLight:
		return "ambient"
	case PointLight:
		return "point"
	}
	return "unknown"
}

type Light struct {
	Position  mgl32.Vec3 // Point lights only
	Direction mgl32.Vec3 // Directional lights only, points towards the light
	Color     mgl32.Vec3
	Intensity float32
	Range     float32 // Point light cutoff distance, 0 means unbounded
	Mode      LightMode
	Name      string
}

// CreateDirectionalLight creates a light shining from direction, like the sun.
func CreateDirectionalLight(direction mgl32.Vec3, color mgl32.Vec3, intensity float32) *Light {
	return &Light{
		Mode:      DirectionalLight,
		Direction: direction.Normalize(),
		Color:     color,
		Intensity: intensity,
		Name:      "directional",
	}
}

func CreateAmbientLight(color mgl32.Vec3, intensity float32) *Light {
	return &Light{
		Mode:      AmbientLight,
		Color:     color,
		Intensity: intensity,
		Name:      "ambient",
	}
}

// CreatePointLight creates a point light whose contribution fades to zero at range.
func CreatePointLight(position mgl32.Vec3, color mgl32.Vec3, intensity float32, range_ float32) *Light {
	return &Light{
		Mode:      PointLight,
		Position:  position,
		Color:     color,
		Intensity: intensity,
		Range:     range_,
		Name:      "point",
	}
}

// HexColor converts 0xRRGGBB into a normalized RGB vector.
func HexColor(hex uint32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32((hex>>16)&0xff) / 255,
		float32((hex>>8)&0xff) / 255,
		float32(hex&0xff) / 255,
	}
}

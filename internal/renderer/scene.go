package renderer

import "github.com/go-gl/mathgl/mgl32"

// Scene holds what gets drawn each frame. Lights and the loaded model are kept
// apart: swapping the model never touches the lights.
type Scene struct {
	Background  mgl32.Vec3
	Environment *Environment

	lights []*Light
	model  *Model
}

func NewScene(background mgl32.Vec3) *Scene {
	return &Scene{Background: background}
}

func (s *Scene) AddLight(lights ...*Light) {
	s.lights = append(s.lights, lights...)
}

// Lights returns the scene lights in insertion order.
func (s *Scene) Lights() []*Light {
	return s.lights
}

// LightsOf returns the lights of one mode.
func (s *Scene) LightsOf(mode LightMode) []*Light {
	var out []*Light
	for _, l := range s.lights {
		if l.Mode == mode {
			out = append(out, l)
		}
	}
	return out
}

// Model returns the current model root, or nil.
func (s *Scene) Model() *Model {
	return s.model
}

// SetModel installs model as the scene's only model and returns the one it replaced.
func (s *Scene) SetModel(model *Model) (previous *Model) {
	previous, s.model = s.model, model
	return previous
}

// ObjectCount is the number of top-level scene children: lights plus the model root.
func (s *Scene) ObjectCount() int {
	n := len(s.lights)
	if s.model != nil {
		n++
	}
	return n
}

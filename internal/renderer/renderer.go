package renderer

import (
	"github.com/go-gl/glfw/v3.3/glfw"
)

var FrustumCullingEnabled bool = true
var FaceCullingEnabled bool = false
var Debug bool = false
var DepthTestEnabled bool = true

type Render interface {
	Init(width, height int32, window *glfw.Window) error
	Render(scene *Scene, camera *Camera)
	AddModel(model *Model)
	RemoveModel(model *Model)
	SetEnvironment(env *Environment)
	UpdateViewport(width, height int32)
	Cleanup()
}

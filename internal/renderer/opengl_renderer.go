package renderer

import (
	"fmt"

	"GopherView/internal/logger"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"
)

// Texture units
const (
	baseColorUnit   = 0
	environmentUnit = 1
)

var frustum Frustum

type OpenGLRenderer struct {
	defaultShader  Shader
	Models         []*Model
	textures       *TextureManager
	environment    *Environment
	currentTexture uint32
}

func NewOpenGLRenderer() *OpenGLRenderer {
	return &OpenGLRenderer{}
}

func (rend *OpenGLRenderer) Init(width, height int32, _ *glfw.Window) error {
	if err := gl.Init(); err != nil {
		return fmt.Errorf("initialize OpenGL: %w", err)
	}

	if Debug {
		gl.PolygonMode(gl.FRONT_AND_BACK, gl.LINE)
	}
	rend.textures = NewTextureManager()
	gl.Viewport(0, 0, width, height)

	rend.defaultShader = InitShader()
	if err := rend.defaultShader.Compile(); err != nil {
		return err
	}
	logger.Log.Info("OpenGL renderer initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.Int32("width", width),
		zap.Int32("height", height))
	return nil
}

// AddModel uploads every mesh of model and starts drawing it.
func (rend *OpenGLRenderer) AddModel(model *Model) {
	for _, mesh := range model.Meshes {
		rend.uploadMesh(mesh)
	}
	rend.textures.AcquireModelTextures(model)
	rend.Models = append(rend.Models, model)
	logger.Log.Debug("Model uploaded",
		zap.String("name", model.Name),
		zap.Int("meshes", len(model.Meshes)),
		zap.Int("triangles", model.TriangleCount()))
}

func (rend *OpenGLRenderer) uploadMesh(mesh *Mesh) {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(mesh.InterleavedData)*4, gl.Ptr(mesh.InterleavedData), gl.STATIC_DRAW)

	var ebo uint32
	gl.GenBuffers(1, &ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER, len(mesh.Faces)*4, gl.Ptr(mesh.Faces), gl.STATIC_DRAW)

	stride := int32(vertexStride * 4)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)

	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*4))
	gl.EnableVertexAttribArray(1)

	gl.VertexAttribPointer(2, 3, gl.FLOAT, false, stride, gl.PtrOffset(5*4))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)

	mesh.VAO = vao
	mesh.VBO = vbo
	mesh.EBO = ebo
}

// RemoveModel stops drawing model and frees its GPU resources.
func (rend *OpenGLRenderer) RemoveModel(model *Model) {
	for i, m := range rend.Models {
		if m == model {
			rend.Models = append(rend.Models[:i], rend.Models[i+1:]...)
			rend.freeModel(model)
			return
		}
	}
}

func (rend *OpenGLRenderer) freeModel(model *Model) {
	for _, mesh := range model.Meshes {
		gl.DeleteVertexArrays(1, &mesh.VAO)
		gl.DeleteBuffers(1, &mesh.VBO)
		gl.DeleteBuffers(1, &mesh.EBO)
		mesh.VAO, mesh.VBO, mesh.EBO = 0, 0, 0
	}
	rend.textures.ReleaseModelTextures(model)
	rend.currentTexture = 0
}

// SetEnvironment uploads the prefiltered chain as the mip levels of one
// equirectangular texture, replacing any previous environment.
func (rend *OpenGLRenderer) SetEnvironment(env *Environment) {
	if rend.environment != nil && rend.environment.TextureID != 0 {
		gl.DeleteTextures(1, &rend.environment.TextureID)
		rend.environment.TextureID = 0
	}
	rend.environment = env
	if env == nil || len(env.Levels) == 0 {
		return
	}

	var textureID uint32
	gl.GenTextures(1, &textureID)
	gl.BindTexture(gl.TEXTURE_2D, textureID)
	for i, level := range env.Levels {
		gl.TexImage2D(gl.TEXTURE_2D, int32(i), gl.RGBA,
			int32(level.Rect.Dx()), int32(level.Rect.Dy()),
			0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(level.Pix))
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_BASE_LEVEL, 0)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, int32(len(env.Levels)-1))
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)
	rend.currentTexture = 0

	env.TextureID = textureID
	logger.Log.Info("Environment uploaded",
		zap.String("name", env.Name),
		zap.Int("levels", len(env.Levels)))
}

func (rend *OpenGLRenderer) Render(scene *Scene, camera *Camera) {
	bg := scene.Background
	gl.ClearColor(bg.X(), bg.Y(), bg.Z(), 1.0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	if DepthTestEnabled {
		gl.Enable(gl.DEPTH_TEST)
		gl.DepthMask(true)
	} else {
		gl.Disable(gl.DEPTH_TEST)
	}

	// Culling : https://learnopengl.com/Advanced-OpenGL/Face-culling
	if FaceCullingEnabled {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(gl.BACK)
		gl.FrontFace(gl.CCW)
	}

	if FrustumCullingEnabled {
		frustum = camera.CalculateFrustum()
	}

	shader := &rend.defaultShader
	shader.Use()
	rend.setSceneUniforms(shader, scene, camera)

	for _, model := range rend.Models {
		for _, mesh := range model.Meshes {
			if FrustumCullingEnabled && !frustum.IntersectsSphere(mesh.BoundingSphereCenter, mesh.BoundingSphereRadius) {
				continue
			}
			rend.drawMesh(shader, mesh)
		}
	}

	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.CULL_FACE)
}

func (rend *OpenGLRenderer) setSceneUniforms(shader *Shader, scene *Scene, camera *Camera) {
	shader.SetMat4("viewProjection", camera.GetViewProjection())
	shader.SetVec3("viewPos", camera.Position)
	shader.SetInt("textureSampler", baseColorUnit)
	shader.SetInt("environmentMap", environmentUnit)

	var ambient mgl32.Vec3
	for _, l := range scene.LightsOf(AmbientLight) {
		ambient = ambient.Add(l.Color.Mul(l.Intensity))
	}
	shader.SetVec3("ambientLight", ambient)

	if dirs := scene.LightsOf(DirectionalLight); len(dirs) > 0 {
		shader.SetVec3("dirLight.direction", dirs[0].Direction)
		shader.SetVec3("dirLight.color", dirs[0].Color)
		shader.SetFloat("dirLight.intensity", dirs[0].Intensity)
	} else {
		shader.SetFloat("dirLight.intensity", 0)
	}

	points := scene.LightsOf(PointLight)
	if len(points) > MaxPointLights {
		points = points[:MaxPointLights]
	}
	shader.SetInt("numPointLights", int32(len(points)))
	for i, l := range points {
		prefix := fmt.Sprintf("pointLights[%d].", i)
		shader.SetVec3(prefix+"position", l.Position)
		shader.SetVec3(prefix+"color", l.Color)
		shader.SetFloat(prefix+"intensity", l.Intensity)
		shader.SetFloat(prefix+"range", l.Range)
	}

	env := scene.Environment
	hasEnv := env != nil && env.TextureID != 0
	shader.SetBool("hasEnvironment", hasEnv)
	if hasEnv {
		gl.ActiveTexture(gl.TEXTURE0 + environmentUnit)
		gl.BindTexture(gl.TEXTURE_2D, env.TextureID)
		gl.ActiveTexture(gl.TEXTURE0 + baseColorUnit)
		shader.SetFloat("environmentMaxLevel", float32(len(env.Levels)-1))
		shader.SetVec3("irradiance", env.Irradiance)
	}
}

func (rend *OpenGLRenderer) drawMesh(shader *Shader, mesh *Mesh) {
	mat := mesh.Material
	if mat == nil {
		mat = NewDefaultMaterial()
		mesh.Material = mat
	}

	shader.SetMat4("model", mesh.ModelMatrix)
	shader.SetVec4("baseColor", mat.BaseColor)
	shader.SetFloat("metallic", mat.Metallic)
	shader.SetFloat("roughness", mat.Roughness)
	shader.SetFloat("exposure", mat.Exposure)
	shader.SetBool("hasTexture", mat.TextureID != 0)

	if mat.TextureID != 0 && mat.TextureID != rend.currentTexture {
		gl.BindTexture(gl.TEXTURE_2D, mat.TextureID)
		rend.currentTexture = mat.TextureID
	}

	if mat.DoubleSided {
		gl.Disable(gl.CULL_FACE)
	} else if FaceCullingEnabled {
		gl.Enable(gl.CULL_FACE)
	}

	gl.BindVertexArray(mesh.VAO)
	gl.DrawElements(gl.TRIANGLES, int32(len(mesh.Faces)), gl.UNSIGNED_INT, nil)
	gl.BindVertexArray(0)
}

// UpdateViewport updates the OpenGL viewport to match the current window size
func (rend *OpenGLRenderer) UpdateViewport(width, height int32) {
	gl.Viewport(0, 0, width, height)
}

func (rend *OpenGLRenderer) Cleanup() {
	for _, model := range rend.Models {
		rend.freeModel(model)
	}
	rend.Models = nil
	rend.SetEnvironment(nil)
	if rend.textures != nil {
		rend.textures.LogStats()
		rend.textures.Clear()
	}
	rend.defaultShader.Delete()
}

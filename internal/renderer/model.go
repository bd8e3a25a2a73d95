package renderer

import (
	"image"
	"math"

	"github.com/g3n/engine/math32"
	"github.com/go-gl/mathgl/mgl32"
)

// Floats per interleaved vertex: position(3), uv(2), normal(3).
const vertexStride = 8

type Material struct {
	// HOT DATA - Accessed every render call for shading calculations
	BaseColor   [4]float32 // Linear RGBA factor, alpha in [3]
	Metallic    float32    // 0.0 = dielectric, 1.0 = metallic
	Roughness   float32    // 0.0 = mirror, 1.0 = completely rough
	Exposure    float32    // HDR exposure control
	TextureID   uint32     // OpenGL texture ID, 0 until uploaded
	DoubleSided bool

	// COLD DATA - Upload input and identification
	Texture    image.Image // Decoded base color texture, nil when untextured
	TextureKey string      // Texture cache key, unique per source asset
	Name       string
}

// NewDefaultMaterial returns an opaque white mid-rough dielectric.
func NewDefaultMaterial() *Material {
	return &Material{
		Name:      "default",
		BaseColor: [4]float32{1, 1, 1, 1},
		Metallic:  0.0,
		Roughness: 0.5,
		Exposure:  1.0,
	}
}

// Mesh is one drawable primitive of a loaded model, already placed in world space.
type Mesh struct {
	// HOT DATA - Accessed every frame in render loop
	ModelMatrix          mgl32.Mat4
	Material             *Material
	VAO                  uint32
	VBO                  uint32
	EBO                  uint32
	BoundingSphereCenter mgl32.Vec3
	BoundingSphereRadius float32

	// COLD DATA - Upload input
	Name            string
	Vertices        []float32 // Local positions, xyz
	InterleavedData []float32
	Faces           []uint32
}

// Model is the root of one loaded asset. It is inserted into and removed
// from a Scene as a unit.
type Model struct {
	Name       string
	SourcePath string
	Meshes     []*Mesh
}

// Box3 is an axis-aligned bounding box. The zero value is the empty box at the origin.
type Box3 struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func (b Box3) Center() mgl32.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

func (b Box3) Size() mgl32.Vec3 {
	return b.Max.Sub(b.Min)
}

// Diagonal is the length of the box diagonal, used as the model's size.
func (b Box3) Diagonal() float32 {
	return b.Size().Len()
}

// NewMesh interleaves the vertex streams and computes the world bounding sphere.
// Missing uvs are zero-filled; normals must match positions in length.
func NewMesh(name string, positions, normals [][3]float32, uvs [][2]float32, indices []uint32, world mgl32.Mat4, material *Material) *Mesh {
	if material == nil {
		material = NewDefaultMaterial()
	}
	mesh := &Mesh{
		Name:            name,
		ModelMatrix:     world,
		Material:        material,
		Vertices:        make([]float32, 0, len(positions)*3),
		InterleavedData: make([]float32, 0, len(positions)*vertexStride),
		Faces:           indices,
	}
	for i, p := range positions {
		mesh.Vertices = append(mesh.Vertices, p[0], p[1], p[2])
		mesh.InterleavedData = append(mesh.InterleavedData, p[0], p[1], p[2])

		if i < len(uvs) {
			mesh.InterleavedData = append(mesh.InterleavedData, uvs[i][0], uvs[i][1])
		} else {
			mesh.InterleavedData = append(mesh.InterleavedData, 0, 0)
		}

		if i < len(normals) {
			mesh.InterleavedData = append(mesh.InterleavedData, normals[i][0], normals[i][1], normals[i][2])
		} else {
			mesh.InterleavedData = append(mesh.InterleavedData, 0, 1, 0)
		}
	}
	mesh.CalculateBoundingSphere()
	return mesh
}

// WorldVertex returns vertex i transformed by the mesh's model matrix.
func (m *Mesh) WorldVertex(i int) mgl32.Vec3 {
	local := mgl32.Vec3{m.Vertices[i*3], m.Vertices[i*3+1], m.Vertices[i*3+2]}
	return m.ModelMatrix.Mul4x1(local.Vec4(1)).Vec3()
}

func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// CalculateBoundingSphere fits a sphere around the world-space vertices,
// centered on their centroid. Used for frustum culling.
func (m *Mesh) CalculateBoundingSphere() {
	n := m.VertexCount()
	if n == 0 {
		m.BoundingSphereCenter = m.ModelMatrix.Col(3).Vec3()
		m.BoundingSphereRadius = 0
		return
	}

	var center mgl32.Vec3
	for i := 0; i < n; i++ {
		center = center.Add(m.WorldVertex(i))
	}
	center = center.Mul(1.0 / float32(n))

	var maxDistanceSq float32
	for i := 0; i < n; i++ {
		if d := m.WorldVertex(i).Sub(center).LenSqr(); d > maxDistanceSq {
			maxDistanceSq = d
		}
	}

	m.BoundingSphereCenter = center
	m.BoundingSphereRadius = float32(math.Sqrt(float64(maxDistanceSq)))
}

// BoundingBox returns the world-space AABB over every mesh vertex.
// A model without vertices yields the zero box.
func (m *Model) BoundingBox() Box3 {
	inf := float32(math.Inf(1))
	box := math32.NewBox3(math32.NewVector3(inf, inf, inf), math32.NewVector3(-inf, -inf, -inf))

	for _, mesh := range m.Meshes {
		for i := 0; i < mesh.VertexCount(); i++ {
			p := mesh.WorldVertex(i)
			box.ExpandByPoint(math32.NewVector3(p.X(), p.Y(), p.Z()))
		}
	}

	if box.Empty() {
		return Box3{}
	}
	return Box3{
		Min: mgl32.Vec3{box.Min.X, box.Min.Y, box.Min.Z},
		Max: mgl32.Vec3{box.Max.X, box.Max.Y, box.Max.Z},
	}
}

func (m *Model) TriangleCount() int {
	count := 0
	for _, mesh := range m.Meshes {
		count += len(mesh.Faces) / 3
	}
	return count
}

package loader

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
)

func TestRecalculateNormalsSharedVertexAverages(t *testing.T) {
	// Two faces folded along the X axis, one in XY and one in XZ.
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
	indices := []uint32{0, 1, 2, 0, 3, 1}

	normals := RecalculateNormals(positions, indices)

	shared := mgl32.Vec3(normals[0])
	want := mgl32.Vec3{0, 1, 1}.Normalize()
	if !shared.ApproxEqualThreshold(want, 1e-5) {
		t.Errorf("Expected %v on the shared edge, got %v", want, shared)
	}
	if !mgl32.Vec3(normals[2]).ApproxEqual(mgl32.Vec3{0, 0, 1}) {
		t.Errorf("Expected +Z on the XY-only vertex, got %v", normals[2])
	}
}

func TestRecalculateNormalsDegenerateAndOutOfRange(t *testing.T) {
	positions := [][3]float32{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}}
	indices := []uint32{0, 1, 2, 0, 1, 9}

	normals := RecalculateNormals(positions, indices)

	for i, n := range normals {
		if n != [3]float32{0, 1, 0} {
			t.Errorf("Vertex %d: expected fallback +Y, got %v", i, n)
		}
	}
}

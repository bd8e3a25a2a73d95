package loader

import "github.com/go-gl/mathgl/mgl32"

// RecalculateNormals computes smooth per-vertex normals by summing the face
// normals of every triangle touching a vertex. Degenerate triangles and
// out-of-range indices are skipped; vertices no triangle touches get +Y.
func RecalculateNormals(positions [][3]float32, indices []uint32) [][3]float32 {
	normals := make([][3]float32, len(positions))
	n := uint32(len(positions))

	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}

		v0 := mgl32.Vec3(positions[i0])
		v1 := mgl32.Vec3(positions[i1])
		v2 := mgl32.Vec3(positions[i2])

		face := v1.Sub(v0).Cross(v2.Sub(v0))
		if face.Len() == 0 {
			continue
		}
		face = face.Normalize()

		for _, idx := range [3]uint32{i0, i1, i2} {
			normals[idx] = mgl32.Vec3(normals[idx]).Add(face)
		}
	}

	for i, sum := range normals {
		v := mgl32.Vec3(sum)
		if v.Len() == 0 {
			normals[i] = [3]float32{0, 1, 0}
			continue
		}
		normals[i] = v.Normalize()
	}
	return normals
}

package math

import "github.com/go-gl/mathgl/mgl32"

// GenerateNormals returns one normal per position, computed by summing the area
// weighted face normals of every triangle touching the vertex.
// Indices out of range are skipped.
func GenerateNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	normals := make([]mgl32.Vec3, len(positions))
	n := uint32(len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		i0, i1, i2 := indices[i], indices[i+1], indices[i+2]
		if i0 >= n || i1 >= n || i2 >= n {
			continue
		}
		edge1 := positions[i1].Sub(positions[i0])
		edge2 := positions[i2].Sub(positions[i0])
		// NOTE: not normalized, so larger faces weigh more.
		c := edge1.Cross(edge2)
		normals[i0] = normals[i0].Add(c)
		normals[i1] = normals[i1].Add(c)
		normals[i2] = normals[i2].Add(c)
	}
	for i := range normals {
		if normals[i].Len() > 0 {
			normals[i] = normals[i].Normalize()
		}
	}
	return normals
}

// Bounds returns the axis aligned extents of a set of points.
func Bounds(positions []mgl32.Vec3) (min, max mgl32.Vec3) {
	if len(positions) == 0 {
		return
	}
	min, max = positions[0], positions[0]
	for _, p := range positions[1:] {
		for k := 0; k < 3; k++ {
			if p[k] < min[k] {
				min[k] = p[k]
			}
			if p[k] > max[k] {
				max[k] = p[k]
			}
		}
	}
	return
}

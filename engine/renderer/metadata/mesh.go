package metadata

import "github.com/go-gl/mathgl/mgl32"

/**
 * @brief CPU side geometry of a mesh, as produced by a loader.
 * Indices are optional; an empty slice means the vertices are drawn in order.
 */
type MeshData struct {
	Name     string
	Vertices []MeshVertex
	Indices  []uint32
}

func (m *MeshData) VertexCount() uint32 {
	return uint32(len(m.Vertices))
}

func (m *MeshData) IndexCount() uint32 {
	return uint32(len(m.Indices))
}

func (m *MeshData) Indexed() bool {
	return len(m.Indices) > 0
}

func (m *MeshData) Positions() []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(m.Vertices))
	for i := range m.Vertices {
		out[i] = m.Vertices[i].Position
	}
	return out
}

// CubeMeshData builds an indexed unit cube centered on the origin with outward
// faces, sized by halfExtent. Used for the skybox.
func CubeMeshData(name string, halfExtent float32) *MeshData {
	h := halfExtent
	type face struct {
		normal  mgl32.Vec3
		corners [4]mgl32.Vec3
	}
	faces := []face{
		{mgl32.Vec3{1, 0, 0}, [4]mgl32.Vec3{{h, -h, -h}, {h, h, -h}, {h, h, h}, {h, -h, h}}},
		{mgl32.Vec3{-1, 0, 0}, [4]mgl32.Vec3{{-h, -h, h}, {-h, h, h}, {-h, h, -h}, {-h, -h, -h}}},
		{mgl32.Vec3{0, 1, 0}, [4]mgl32.Vec3{{-h, h, -h}, {-h, h, h}, {h, h, h}, {h, h, -h}}},
		{mgl32.Vec3{0, -1, 0}, [4]mgl32.Vec3{{-h, -h, h}, {-h, -h, -h}, {h, -h, -h}, {h, -h, h}}},
		{mgl32.Vec3{0, 0, 1}, [4]mgl32.Vec3{{h, -h, h}, {h, h, h}, {-h, h, h}, {-h, -h, h}}},
		{mgl32.Vec3{0, 0, -1}, [4]mgl32.Vec3{{-h, -h, -h}, {-h, h, -h}, {h, h, -h}, {h, -h, -h}}},
	}
	uvs := [4]mgl32.Vec2{{0, 0}, {0, 1}, {1, 1}, {1, 0}}

	m := &MeshData{
		Name:     name,
		Vertices: make([]MeshVertex, 0, 24),
		Indices:  make([]uint32, 0, 36),
	}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		for i, c := range f.corners {
			m.Vertices = append(m.Vertices, MeshVertex{
				Position: c,
				Color:    mgl32.Vec3{1, 1, 1},
				Normal:   f.normal,
				UV:       uvs[i],
			})
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base+2, base+3, base)
	}
	return m
}

package metadata

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
)

/** @brief A vertex of a triangle mesh. The layout is shared with the mesh and skybox shaders. */
type MeshVertex struct {
	Position mgl32.Vec3
	Color    mgl32.Vec3
	Normal   mgl32.Vec3
	UV       mgl32.Vec2
}

/** @brief A point of a hair strand. Direction is the normalized tangent along the strand. */
type HairVertex struct {
	Position  mgl32.Vec3
	Color     mgl32.Vec3
	Direction mgl32.Vec3
}

var (
	MeshVertexSize = uint32(unsafe.Sizeof(MeshVertex{}))
	HairVertexSize = uint32(unsafe.Sizeof(HairVertex{}))
)

// MeshVerticesBytes reinterprets the slice as raw bytes for an upload.
func MeshVerticesBytes(v []MeshVertex) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*int(MeshVertexSize))
}

func HairVerticesBytes(v []HairVertex) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*int(HairVertexSize))
}

func IndicesBytes(indices []uint32) []byte {
	if len(indices) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&indices[0])), len(indices)*4)
}

package metadata

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestVertexSizes(t *testing.T) {
	assert.Equal(t, uint32(44), MeshVertexSize)
	assert.Equal(t, uint32(36), HairVertexSize)
}

func TestGetAligned(t *testing.T) {
	assert.Equal(t, uint64(256), GetAligned(200, 256))
	assert.Equal(t, uint64(512), GetAligned(257, 256))
	assert.Equal(t, uint64(0), GetAligned(0, 64))
	assert.Equal(t, uint64(13), GetAligned(13, 0))
}

func TestCubeMeshData(t *testing.T) {
	cube := CubeMeshData("skybox", 1)
	assert.Equal(t, uint32(24), cube.VertexCount())
	assert.Equal(t, uint32(36), cube.IndexCount())
	for _, v := range cube.Vertices {
		for k := 0; k < 3; k++ {
			assert.InDelta(t, 1, abs(v.Position[k]), 1e-6)
		}
	}
	for _, i := range cube.Indices {
		assert.Less(t, i, cube.VertexCount())
	}
}

func TestHairVerticesFallBackToZeroColor(t *testing.T) {
	h := &HairData{
		Segments:   []uint16{1},
		Points:     []mgl32.Vec3{{0, 0, 0}, {0, 1, 0}},
		Directions: []mgl32.Vec3{{0, 1, 0}, {0, 1, 0}},
	}
	v := h.Vertices()
	assert.Len(t, v, 2)
	assert.Equal(t, mgl32.Vec3{}, v[1].Color)
	assert.Equal(t, mgl32.Vec3{0, 1, 0}, v[1].Direction)
}

func TestImagePixelsConcatenatesLayers(t *testing.T) {
	img := &ImageData{Width: 1, Height: 1, Layers: [][]byte{{1, 2, 3, 4}, {5, 6, 7, 8}}}
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8}, img.Pixels())
	assert.Equal(t, uint64(4), img.LayerSize())
}

func abs(f float32) float32 {
	if f < 0 {
		return -f
	}
	return f
}

func TestSolidImageData(t *testing.T) {
	img := SolidImageData("blank", [4]byte{255, 255, 255, 255})
	assert.Equal(t, TextureType2d, img.Type)
	assert.Equal(t, uint64(4), img.LayerSize())
	assert.Equal(t, []byte{255, 255, 255, 255}, img.Pixels())
}

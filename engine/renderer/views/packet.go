package views

import (
	"unsafe"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/spaghettifunk/vkr/engine/resources"
	"github.com/spaghettifunk/vkr/engine/scene"
)

/**
 * @brief The per-entity uniform block of the scene shaders. Every member is
 * 16 byte aligned so the Go layout matches std140.
 */
type EntityUniform struct {
	ModelViewProjection mgl32.Mat4
	Model               mgl32.Mat4
	/** @brief Inverse transpose of the model rotation and scale, padded to 4x4. */
	Normal         mgl32.Mat4
	CameraPosition mgl32.Vec4
	LightPosition  mgl32.Vec4
	/** @brief Light color scaled by intensity in xyz, intensity in w. */
	LightColor mgl32.Vec4
}

var EntityUniformSize = uint32(unsafe.Sizeof(EntityUniform{}))

func (u *EntityUniform) Bytes() []byte {
	return unsafe.Slice((*byte)(unsafe.Pointer(u)), EntityUniformSize)
}

// Packet is one draw: what to draw and the uniform data it is drawn with.
type Packet struct {
	Entity     scene.Handle
	Name       string
	Drawable   resources.Drawable
	Uniform    EntityUniform
	Brightness float32
}

// BrightnessPushConstant packs the brightness into the 16 byte push constant block.
func BrightnessPushConstant(brightness float32) []byte {
	block := [4]float32{brightness}
	return unsafe.Slice((*byte)(unsafe.Pointer(&block[0])), len(block)*4)
}

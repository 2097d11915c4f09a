package resources

import (
	"github.com/google/uuid"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
	"github.com/spaghettifunk/vkr/engine/renderer/vulkan"
)

// Drawable is uploaded geometry that can be bound and drawn into a command buffer.
type Drawable interface {
	Bind(cb vulkan.CommandBuffer)
	Draw(cb vulkan.CommandBuffer)
	Destroy()
}

/**
 * @brief A triangle mesh living on the GPU. Shared between entities and
 * destroyed when the last reference is released.
 */
type Mesh struct {
	ID          uuid.UUID
	Name        string
	Geometry    Drawable
	VertexCount uint32
	IndexCount  uint32
	refCounter
}

func NewMesh(name string, geometry Drawable, vertexCount, indexCount uint32) *Mesh {
	m := &Mesh{
		ID:          uuid.New(),
		Name:        name,
		Geometry:    geometry,
		VertexCount: vertexCount,
		IndexCount:  indexCount,
	}
	m.init(func() {
		if m.Geometry != nil {
			m.Geometry.Destroy()
		}
	})
	return m
}

func (m *Mesh) Acquire() *Mesh {
	m.acquire()
	return m
}

func (m *Mesh) Release() {
	m.release()
}

/**
 * @brief Hair strands sharing one vertex buffer, one line strip per strand.
 */
type Hair struct {
	ID          uuid.UUID
	Name        string
	Geometry    Drawable
	StrandCount uint32
	PointCount  uint32
	refCounter
}

func NewHair(name string, geometry Drawable, strandCount, pointCount uint32) *Hair {
	h := &Hair{
		ID:          uuid.New(),
		Name:        name,
		Geometry:    geometry,
		StrandCount: strandCount,
		PointCount:  pointCount,
	}
	h.init(func() {
		if h.Geometry != nil {
			h.Geometry.Destroy()
		}
	})
	return h
}

func (h *Hair) Acquire() *Hair {
	h.acquire()
	return h
}

func (h *Hair) Release() {
	h.release()
}

type Texture struct {
	ID     uuid.UUID
	Name   string
	Type   metadata.TextureType
	Width  uint32
	Height uint32
	// nil for textures that only exist on the CPU side, as in tests
	GPU *vulkan.VulkanTexture
	refCounter
}

// NewTexture wraps an uploaded texture; destroy releases the GPU objects.
func NewTexture(name string, textureType metadata.TextureType, width, height uint32, gpu *vulkan.VulkanTexture, destroy func()) *Texture {
	t := &Texture{
		ID:     uuid.New(),
		Name:   name,
		Type:   textureType,
		Width:  width,
		Height: height,
		GPU:    gpu,
	}
	t.init(destroy)
	return t
}

func (t *Texture) Acquire() *Texture {
	t.acquire()
	return t
}

func (t *Texture) Release() {
	t.release()
}

/** @brief A material references its diffuse texture and keeps it alive. */
type Material struct {
	ID      uuid.UUID
	Name    string
	Diffuse *Texture
	refCounter
}

// NewMaterial takes over one reference of diffuse.
func NewMaterial(name string, diffuse *Texture) *Material {
	m := &Material{
		ID:      uuid.New(),
		Name:    name,
		Diffuse: diffuse,
	}
	m.init(func() {
		if m.Diffuse != nil {
			m.Diffuse.Release()
		}
	})
	return m
}

func (m *Material) Acquire() *Material {
	m.acquire()
	return m
}

func (m *Material) Release() {
	m.release()
}

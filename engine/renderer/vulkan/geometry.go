package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
)

/**
 * @brief Device local vertex and optional index buffers of one drawable.
 * Geometry without indices is drawn with a plain vkCmdDraw.
 */
type VulkanGeometry struct {
	Name         string
	VertexBuffer *VulkanBuffer
	IndexBuffer  *VulkanBuffer
	VertexCount  uint32
	IndexCount   uint32
	// Non-indexed geometry with ranges is drawn one range per call.
	Ranges []metadata.VertexRange
}

func NewGeometry(context *VulkanContext, name string, vertices []byte, vertexCount uint32, indices []uint32) (*VulkanGeometry, error) {
	if vertexCount == 0 || len(vertices) == 0 {
		return nil, logged(fmt.Errorf("geometry %s has no vertices", name))
	}
	geometry := &VulkanGeometry{
		Name:        name,
		VertexCount: vertexCount,
		IndexCount:  uint32(len(indices)),
	}

	vb, err := context.UploadBuffer(vk.BufferUsageVertexBufferBit, vertices)
	if err != nil {
		return nil, err
	}
	geometry.VertexBuffer = vb

	if len(indices) > 0 {
		ib, err := context.UploadBuffer(vk.BufferUsageIndexBufferBit, metadata.IndicesBytes(indices))
		if err != nil {
			geometry.Destroy()
			return nil, err
		}
		geometry.IndexBuffer = ib
	}
	return geometry, nil
}

func (g *VulkanGeometry) Indexed() bool {
	return g.IndexBuffer != nil && g.IndexCount > 0
}

func (g *VulkanGeometry) Bind(cb CommandBuffer) {
	cb.BindVertexBuffer(g.VertexBuffer.Handle, 0)
	if g.Indexed() {
		cb.BindIndexBuffer(g.IndexBuffer.Handle, 0)
	}
}

func (g *VulkanGeometry) Draw(cb CommandBuffer) {
	if g.Indexed() {
		cb.DrawIndexed(g.IndexCount)
		return
	}
	if len(g.Ranges) == 0 {
		cb.Draw(g.VertexCount, 0)
		return
	}
	for _, r := range g.Ranges {
		cb.Draw(r.Count, r.First)
	}
}

func (g *VulkanGeometry) Destroy() {
	if g.VertexBuffer != nil {
		g.VertexBuffer.Destroy()
		g.VertexBuffer = nil
	}
	if g.IndexBuffer != nil {
		g.IndexBuffer.Destroy()
		g.IndexBuffer = nil
	}
}

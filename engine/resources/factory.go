package resources

import (
	"fmt"

	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
	"github.com/spaghettifunk/vkr/engine/renderer/vulkan"
)

// Factory uploads CPU side asset data and wraps the result in shared resources.
type Factory struct {
	context *vulkan.VulkanContext
}

func NewFactory(context *vulkan.VulkanContext) *Factory {
	return &Factory{context: context}
}

func (f *Factory) CreateMesh(data *metadata.MeshData) (*Mesh, error) {
	if data.VertexCount() == 0 {
		err := fmt.Errorf("mesh %s: %w: no vertices", data.Name, core.ErrInvalidAsset)
		core.LogError(err.Error())
		return nil, err
	}
	geometry, err := vulkan.NewGeometry(f.context, data.Name, metadata.MeshVerticesBytes(data.Vertices), data.VertexCount(), data.Indices)
	if err != nil {
		return nil, err
	}
	core.LogDebug("Mesh %s uploaded (%d vertices, %d indices).", data.Name, data.VertexCount(), data.IndexCount())
	return NewMesh(data.Name, geometry, data.VertexCount(), data.IndexCount()), nil
}

// CreateHair uploads every strand point as one vertex stream; each strand is
// drawn as its own line strip.
func (f *Factory) CreateHair(data *metadata.HairData) (*Hair, error) {
	vertices := data.Vertices()
	if len(vertices) == 0 {
		err := fmt.Errorf("hair %s: %w: no points", data.Name, core.ErrInvalidAsset)
		core.LogError(err.Error())
		return nil, err
	}
	geometry, err := vulkan.NewGeometry(f.context, data.Name, metadata.HairVerticesBytes(vertices), uint32(len(vertices)), nil)
	if err != nil {
		return nil, err
	}
	geometry.Ranges = data.StrandRanges()
	core.LogDebug("Hair %s uploaded (%d strands, %d points).", data.Name, data.StrandCount(), len(vertices))
	return NewHair(data.Name, geometry, uint32(data.StrandCount()), uint32(len(vertices))), nil
}

func (f *Factory) CreateTexture(data *metadata.ImageData) (*Texture, error) {
	gpu, err := vulkan.NewTexture(f.context, data)
	if err != nil {
		return nil, err
	}
	return NewTexture(data.Name, data.Type, data.Width, data.Height, gpu, func() {
		gpu.Destroy(f.context)
	}), nil
}

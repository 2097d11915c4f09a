package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
)

// TextureFormat is the format of every sampled color texture. Images are decoded as sRGB RGBA8.
const TextureFormat = vk.FormatR8g8b8a8Srgb

type VulkanTexture struct {
	Name    string
	Type    metadata.TextureType
	Image   *VulkanImage
	Sampler vk.Sampler

	// set for textures rewritten every frame
	staging *VulkanBuffer
	layout  vk.ImageLayout
}

// NewTexture uploads a decoded image through a staging buffer and leaves it
// ready for sampling by fragment shaders.
func NewTexture(context *VulkanContext, data *metadata.ImageData) (*VulkanTexture, error) {
	layers := uint32(1)
	if data.Type == metadata.TextureTypeCube {
		layers = 6
	}
	if data.LayerCount() != layers {
		return nil, logged(fmt.Errorf("texture %s: expected %d layers, got %d", data.Name, layers, data.LayerCount()))
	}
	for i, l := range data.Layers {
		if uint64(len(l)) != data.LayerSize() {
			return nil, logged(fmt.Errorf("texture %s: layer %d holds %d bytes, expected %d", data.Name, i, len(l), data.LayerSize()))
		}
	}

	texture, err := newTexture(context, data.Name, data.Type, data.Width, data.Height)
	if err != nil {
		return nil, err
	}

	staging, err := NewStagingBuffer(context, data.Pixels())
	if err != nil {
		texture.Destroy(context)
		return nil, err
	}
	defer staging.Destroy()

	var recordErr error
	if err := context.SingleTimeCommands(func(cb *VulkanCommandBuffer) {
		recordErr = texture.recordUpload(cb, staging)
	}); err != nil {
		texture.Destroy(context)
		return nil, err
	}
	if recordErr != nil {
		texture.Destroy(context)
		return nil, recordErr
	}
	return texture, nil
}

// NewDynamicTexture creates a 2D texture whose pixels are rewritten through Update
// inside a frame's command buffer. It keeps its staging buffer mapped.
func NewDynamicTexture(context *VulkanContext, name string, width, height uint32) (*VulkanTexture, error) {
	texture, err := newTexture(context, name, metadata.TextureType2d, width, height)
	if err != nil {
		return nil, err
	}
	size := vk.DeviceSize(width) * vk.DeviceSize(height) * metadata.ImageChannelCount
	staging, err := NewBuffer(context, size, vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), hostVisible())
	if err != nil {
		texture.Destroy(context)
		return nil, err
	}
	if _, err := staging.Map(); err != nil {
		staging.Destroy()
		texture.Destroy(context)
		return nil, err
	}
	texture.staging = staging
	return texture, nil
}

func newTexture(context *VulkanContext, name string, textureType metadata.TextureType, width, height uint32) (*VulkanTexture, error) {
	image, err := NewImage(context, ImageConfig{
		Width:  width,
		Height: height,
		Format: TextureFormat,
		Usage:  vk.ImageUsageFlags(vk.ImageUsageTransferDstBit | vk.ImageUsageSampledBit),
		Aspect: vk.ImageAspectFlags(vk.ImageAspectColorBit),
		Cube:   textureType == metadata.TextureTypeCube,
	})
	if err != nil {
		return nil, err
	}

	texture := &VulkanTexture{
		Name:   name,
		Type:   textureType,
		Image:  image,
		layout: vk.ImageLayoutUndefined,
	}

	addressMode := vk.SamplerAddressModeRepeat
	if textureType == metadata.TextureTypeCube {
		addressMode = vk.SamplerAddressModeClampToEdge
	}
	samplerInfo := vk.SamplerCreateInfo{
		SType:                   vk.StructureTypeSamplerCreateInfo,
		MagFilter:               vk.FilterLinear,
		MinFilter:               vk.FilterLinear,
		MipmapMode:              vk.SamplerMipmapModeLinear,
		AddressModeU:            addressMode,
		AddressModeV:            addressMode,
		AddressModeW:            addressMode,
		MipLodBias:              0.0,
		AnisotropyEnable:        vk.False,
		MaxAnisotropy:           1.0,
		CompareEnable:           vk.False,
		CompareOp:               vk.CompareOpAlways,
		MinLod:                  0.0,
		MaxLod:                  0.0,
		BorderColor:             vk.BorderColorIntOpaqueBlack,
		UnnormalizedCoordinates: vk.False,
	}
	var sampler vk.Sampler
	if res := vk.CreateSampler(context.Device.LogicalDevice, &samplerInfo, context.Allocator, &sampler); res != vk.Success {
		image.Destroy()
		return nil, vulkanError("vkCreateSampler", res)
	}
	texture.Sampler = sampler
	return texture, nil
}

func (t *VulkanTexture) recordUpload(cb *VulkanCommandBuffer, staging *VulkanBuffer) error {
	if err := t.Image.TransitionLayout(cb, t.layout, vk.ImageLayoutTransferDstOptimal); err != nil {
		return err
	}
	t.Image.CopyFromBuffer(cb, staging)
	if err := t.Image.TransitionLayout(cb, vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal); err != nil {
		return err
	}
	t.layout = vk.ImageLayoutShaderReadOnlyOptimal
	return nil
}

// Update writes new pixels and records their upload into cb. It must be
// recorded outside of a render pass.
func (t *VulkanTexture) Update(cb *VulkanCommandBuffer, pixels []byte) error {
	if t.staging == nil {
		return logged(fmt.Errorf("texture %s is not dynamic", t.Name))
	}
	if err := t.staging.Write(0, pixels); err != nil {
		return err
	}
	return t.recordUpload(cb, t.staging)
}

func (t *VulkanTexture) DescriptorInfo() vk.DescriptorImageInfo {
	return vk.DescriptorImageInfo{
		Sampler:     t.Sampler,
		ImageView:   t.Image.View,
		ImageLayout: vk.ImageLayoutShaderReadOnlyOptimal,
	}
}

func (t *VulkanTexture) Destroy(context *VulkanContext) {
	if t.staging != nil {
		t.staging.Destroy()
		t.staging = nil
	}
	if t.Sampler != vk.NullSampler {
		vk.DestroySampler(context.Device.LogicalDevice, t.Sampler, context.Allocator)
		t.Sampler = vk.NullSampler
	}
	if t.Image != nil {
		t.Image.Destroy()
		t.Image = nil
	}
}

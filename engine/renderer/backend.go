package renderer

import (
	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkr/engine/renderer/vulkan"
)

// Window is what the frame orchestrator needs from the platform layer.
type Window interface {
	// Extent is zero while the window is minimized.
	Extent() vk.Extent2D
	WasResized() bool
	ResetResizedFlag()
	WaitEvents()
}

// Device is the part of the device context the frame orchestrator drives.
type Device interface {
	WaitIdle() error
	AllocateCommandBuffers(count uint32) ([]vulkan.CommandBuffer, error)
	FreeCommandBuffers(buffers []vulkan.CommandBuffer)
}

type SwapChain interface {
	vulkan.SwapFormats
	AcquireNextImage(frame uint32) (uint32, error)
	SubmitCommandBuffers(frame, imageIndex uint32, buffers []vulkan.CommandBuffer) error
	Extent() vk.Extent2D
	ImageCount() uint32
	SampleCount() vk.SampleCountFlagBits
	RenderPass() *vulkan.VulkanRenderPass
	Framebuffer(index uint32) vk.Framebuffer
	ImageViews() []vk.ImageView
	AspectRatio() float32
	Destroy()
}

// SwapChainFactory builds a swapchain, handing previous to the driver for reuse.
type SwapChainFactory func(extent vk.Extent2D, useMSAA bool, previous SwapChain) (SwapChain, error)

// VulkanSwapChainFactory creates VulkanSwapchain instances on context.
func VulkanSwapChainFactory(context *vulkan.VulkanContext) SwapChainFactory {
	return func(extent vk.Extent2D, useMSAA bool, previous SwapChain) (SwapChain, error) {
		var old *vulkan.VulkanSwapchain
		if previous != nil {
			old, _ = previous.(*vulkan.VulkanSwapchain)
		}
		sc, err := vulkan.NewSwapchain(context, extent, useMSAA, old)
		if err != nil {
			return nil, err
		}
		return sc, nil
	}
}

// ResourceFactory creates the GPU objects of the render system. VulkanContext
// implements it.
type ResourceFactory interface {
	CreateDescriptorSetLayout(bindings []vk.DescriptorSetLayoutBinding) (vk.DescriptorSetLayout, error)
	DestroyDescriptorSetLayout(layout vk.DescriptorSetLayout)
	CreatePipelineLayout(setLayouts []vk.DescriptorSetLayout, pushConstantSize uint32) (vk.PipelineLayout, error)
	DestroyPipelineLayout(layout vk.PipelineLayout)
	CreateGraphicsPipelines(renderPass *vulkan.VulkanRenderPass, layout vk.PipelineLayout, configs []*vulkan.PipelineConfig) ([]*vulkan.VulkanPipeline, error)
	DestroyPipeline(pipeline *vulkan.VulkanPipeline)
	NewDescriptorAllocator(layout vk.DescriptorSetLayout, bindings []vk.DescriptorSetLayoutBinding, maxSets uint32) (vulkan.DescriptorAllocator, error)
	NewUniformBuffer(dataSize, regions uint32) (vulkan.UniformBuffer, error)
	WriteSceneDescriptorSet(set vk.DescriptorSet, ubo vulkan.UniformBuffer, texture *vulkan.VulkanTexture)
}

var (
	_ Device          = (*vulkan.VulkanContext)(nil)
	_ ResourceFactory = (*vulkan.VulkanContext)(nil)
	_ SwapChain       = (*vulkan.VulkanSwapchain)(nil)
)

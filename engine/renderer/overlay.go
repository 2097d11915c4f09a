package renderer

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
	"github.com/spaghettifunk/vkr/engine/renderer/views"
	"github.com/spaghettifunk/vkr/engine/renderer/vulkan"
)

const (
	hudWidth  = 256
	hudHeight = 96
)

/**
 * @brief Debug HUD drawn in its own render pass on top of the finished frame.
 * The pass always runs because it moves the swapchain image to PRESENT_SRC;
 * hiding the overlay only skips the draw.
 */
type Overlay struct {
	context *vulkan.VulkanContext
	hud     *HUD
	view    views.RenderViewUI
	visible bool

	renderPass   *vulkan.VulkanRenderPass
	framebuffers []*vulkan.VulkanFramebuffer
	extent       vk.Extent2D

	commandBuffers []vulkan.CommandBuffer
	textures       []*vulkan.VulkanTexture
	sets           []vk.DescriptorSet

	setLayout      vk.DescriptorSetLayout
	pipelineLayout vk.PipelineLayout
	pipeline       *vulkan.VulkanPipeline
	allocator      vulkan.DescriptorAllocator
}

func NewOverlay(context *vulkan.VulkanContext, swapChain SwapChain, shaderDir string, bitmap *metadata.FontData) (*Overlay, error) {
	o := &Overlay{
		context: context,
		hud:     NewHUD(hudWidth, hudHeight, bitmap),
		visible: true,
	}
	if err := o.create(swapChain, shaderDir); err != nil {
		o.Destroy()
		return nil, err
	}
	core.LogDebug("Overlay created.")
	return o, nil
}

func (o *Overlay) create(swapChain SwapChain, shaderDir string) error {
	var err error
	if o.renderPass, err = vulkan.NewOverlayRenderPass(o.context, swapChain.ImageFormat()); err != nil {
		return err
	}
	if err := o.RebuildFramebuffers(swapChain); err != nil {
		return err
	}
	if o.commandBuffers, err = o.context.AllocateCommandBuffers(vulkan.MaxFramesInFlight); err != nil {
		return err
	}

	bindings := vulkan.OverlaySetLayoutBindings()
	if o.setLayout, err = o.context.CreateDescriptorSetLayout(bindings); err != nil {
		return err
	}
	if o.pipelineLayout, err = o.context.CreatePipelineLayout([]vk.DescriptorSetLayout{o.setLayout}, vulkan.PushConstantSize); err != nil {
		return err
	}
	pipelines, err := o.context.CreateGraphicsPipelines(o.renderPass, o.pipelineLayout, []*vulkan.PipelineConfig{OverlayPipelineConfig(shaderDir)})
	if err != nil {
		return err
	}
	o.pipeline = pipelines[0]

	if o.allocator, err = o.context.NewDescriptorAllocator(o.setLayout, bindings, vulkan.MaxFramesInFlight); err != nil {
		return err
	}
	for i := uint32(0); i < vulkan.MaxFramesInFlight; i++ {
		texture, err := vulkan.NewDynamicTexture(o.context, fmt.Sprintf("overlay_%d", i), hudWidth, hudHeight)
		if err != nil {
			return err
		}
		o.textures = append(o.textures, texture)
		set, err := o.allocator.Allocate()
		if err != nil {
			return err
		}
		o.context.WriteTextureDescriptorSet(set, texture)
		o.sets = append(o.sets, set)
	}
	return nil
}

// RebuildFramebuffers recreates one framebuffer per swapchain image view. Call
// it after every swapchain rebuild.
func (o *Overlay) RebuildFramebuffers(swapChain SwapChain) error {
	o.destroyFramebuffers()
	o.extent = swapChain.Extent()
	for _, view := range swapChain.ImageViews() {
		fb, err := vulkan.FramebufferCreate(o.context, o.renderPass, o.extent, []vk.ImageView{view})
		if err != nil {
			return err
		}
		o.framebuffers = append(o.framebuffers, fb)
	}
	return nil
}

func (o *Overlay) destroyFramebuffers() {
	for _, fb := range o.framebuffers {
		fb.Destroy(o.context)
	}
	o.framebuffers = nil
}

// Record fills the slot's overlay command buffer for imageIndex. The buffer is
// submitted after the main one.
func (o *Overlay) Record(frameIndex, imageIndex uint32, stats views.HUDStats) (vulkan.CommandBuffer, error) {
	cb := o.commandBuffers[frameIndex]
	if err := cb.Reset(); err != nil {
		return nil, err
	}
	if err := cb.Begin(false, false, false); err != nil {
		return nil, err
	}

	if o.visible {
		native, ok := cb.(*vulkan.VulkanCommandBuffer)
		if !ok {
			return nil, fmt.Errorf("overlay needs a vulkan command buffer, got %T", cb)
		}
		pixels := o.hud.Render(o.view.BuildPacket(stats))
		if err := o.textures[frameIndex].Update(native, pixels); err != nil {
			return nil, err
		}
	}

	cb.BeginRenderPass(o.renderPass.Handle, o.framebuffers[imageIndex].Handle, o.extent, nil)
	cb.SetViewport(o.extent)
	cb.SetScissor(o.extent)
	if o.visible {
		cb.BindPipeline(o.pipeline)
		cb.BindDescriptorSet(o.pipelineLayout, o.sets[frameIndex])
		rect := hudRect(o.extent, hudWidth, hudHeight)
		cb.PushConstants(o.pipelineLayout, vk.ShaderStageFlags(vk.ShaderStageVertexBit|vk.ShaderStageFragmentBit),
			unsafe.Slice((*byte)(unsafe.Pointer(&rect[0])), len(rect)*4))
		// two triangles generated from gl_VertexIndex
		cb.Draw(6, 0)
	}
	cb.EndRenderPass()

	if err := cb.End(); err != nil {
		return nil, err
	}
	return cb, nil
}

// hudRect places a width x height pixel quad in the top left corner, in
// normalized device coordinates (x, y, w, h).
func hudRect(extent vk.Extent2D, width, height uint32) [4]float32 {
	if extent.Width == 0 || extent.Height == 0 {
		return [4]float32{}
	}
	w := 2 * float32(width) / float32(extent.Width)
	h := 2 * float32(height) / float32(extent.Height)
	if w > 2 {
		w = 2
	}
	if h > 2 {
		h = 2
	}
	return [4]float32{-1, -1, w, h}
}

func (o *Overlay) SetVisible(visible bool) {
	o.visible = visible
}

func (o *Overlay) Visible() bool {
	return o.visible
}

// Destroy expects the device to be idle.
func (o *Overlay) Destroy() {
	if o.pipeline != nil {
		o.context.DestroyPipeline(o.pipeline)
		o.pipeline = nil
	}
	o.context.DestroyPipelineLayout(o.pipelineLayout)
	o.pipelineLayout = vk.NullPipelineLayout
	for _, t := range o.textures {
		t.Destroy(o.context)
	}
	o.textures = nil
	if o.allocator != nil {
		o.allocator.Destroy()
		o.allocator = nil
	}
	o.sets = nil
	o.context.DestroyDescriptorSetLayout(o.setLayout)
	o.setLayout = vk.NullDescriptorSetLayout
	if o.commandBuffers != nil {
		o.context.FreeCommandBuffers(o.commandBuffers)
		o.commandBuffers = nil
	}
	o.destroyFramebuffers()
	if o.renderPass != nil {
		o.renderPass.Destroy(o.context)
		o.renderPass = nil
	}
}

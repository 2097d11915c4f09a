package renderer

import (
	"errors"
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/renderer/vulkan"
)

// ClearColor is the background of the main render pass.
var ClearColor = []float32{0.01, 0.01, 0.01, 1}

/**
 * @brief Drives the frame lifecycle: acquire, record, submit, present. Owns
 * the swapchain and one primary command buffer per frame slot, and rebuilds
 * the swapchain whenever the surface goes stale or the window is resized.
 */
type Renderer struct {
	window       Window
	device       Device
	newSwapChain SwapChainFactory

	swapChain      SwapChain
	commandBuffers []vulkan.CommandBuffer
	// bumped on every swapchain rebuild
	generation uint64

	currentImageIndex uint32
	currentFrameIndex uint32
	isFrameStarted    bool

	useMSAA     bool
	msaaChanged bool
}

func NewRenderer(window Window, device Device, newSwapChain SwapChainFactory, useMSAA bool) (*Renderer, error) {
	r := &Renderer{
		window:       window,
		device:       device,
		newSwapChain: newSwapChain,
		useMSAA:      useMSAA,
	}
	if err := r.recreateSwapChain(); err != nil {
		return nil, err
	}
	buffers, err := device.AllocateCommandBuffers(vulkan.MaxFramesInFlight)
	if err != nil {
		r.swapChain.Destroy()
		return nil, err
	}
	r.commandBuffers = buffers
	return r, nil
}

// BeginFrame acquires the next image and starts recording the slot's command
// buffer. A nil buffer without error means the swapchain was rebuilt and no
// frame should be recorded this tick.
func (r *Renderer) BeginFrame() (vulkan.CommandBuffer, error) {
	if r.isFrameStarted {
		panic("BeginFrame called while a frame is already in progress")
	}

	imageIndex, err := r.swapChain.AcquireNextImage(r.currentFrameIndex)
	if errors.Is(err, core.ErrSurfaceOutOfDate) {
		return nil, r.recreateSwapChain()
	}
	if err != nil {
		core.LogError("failed to acquire swapchain image: %s", err)
		return nil, err
	}
	r.currentImageIndex = imageIndex

	cb := r.CurrentCommandBuffer()
	if err := cb.Reset(); err != nil {
		core.LogError("failed to reset command buffer for frame %d: %s", r.currentFrameIndex, err)
		return nil, err
	}
	if err := cb.Begin(false, false, false); err != nil {
		core.LogError("failed to begin command buffer for frame %d: %s", r.currentFrameIndex, err)
		return nil, err
	}
	r.isFrameStarted = true
	return cb, nil
}

// EndFrame finishes the primary buffer and submits it followed by buffers.
// wasResized is true when the swapchain was rebuilt; the caller then rebuilds
// whatever depends on it.
func (r *Renderer) EndFrame(buffers []vulkan.CommandBuffer) (wasResized bool, err error) {
	if !r.isFrameStarted {
		panic("EndFrame called while no frame is in progress")
	}
	defer func() {
		r.isFrameStarted = false
		r.currentFrameIndex = (r.currentFrameIndex + 1) % vulkan.MaxFramesInFlight
	}()

	cb := r.CurrentCommandBuffer()
	if err := cb.End(); err != nil {
		return false, err
	}

	submit := make([]vulkan.CommandBuffer, 0, len(buffers)+1)
	submit = append(submit, cb)
	submit = append(submit, buffers...)
	err = r.swapChain.SubmitCommandBuffers(r.currentFrameIndex, r.currentImageIndex, submit)

	stale := errors.Is(err, core.ErrSurfaceOutOfDate) || errors.Is(err, core.ErrSurfaceSuboptimal)
	if err != nil && !stale {
		core.LogError("failed to present swapchain image: %s", err)
		return false, fmt.Errorf("failed to present swapchain image: %w", err)
	}
	if stale || r.window.WasResized() || r.msaaChanged {
		r.window.ResetResizedFlag()
		r.msaaChanged = false
		if err := r.recreateSwapChain(); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (r *Renderer) BeginSwapChainRenderPass(cb vulkan.CommandBuffer) {
	r.checkRecording(cb, "BeginSwapChainRenderPass")

	extent := r.swapChain.Extent()
	clearValues := []vk.ClearValue{
		vk.NewClearValue(ClearColor),
		vk.NewClearDepthStencil(1, 0),
	}
	cb.BeginRenderPass(r.swapChain.RenderPass().Handle, r.swapChain.Framebuffer(r.currentImageIndex), extent, clearValues)
	cb.SetViewport(extent)
	cb.SetScissor(extent)
}

func (r *Renderer) EndSwapChainRenderPass(cb vulkan.CommandBuffer) {
	r.checkRecording(cb, "EndSwapChainRenderPass")
	cb.EndRenderPass()
}

func (r *Renderer) checkRecording(cb vulkan.CommandBuffer, op string) {
	if !r.isFrameStarted {
		panic(op + " called while no frame is in progress")
	}
	if cb != r.CurrentCommandBuffer() {
		panic(op + " called with a command buffer from a different frame")
	}
}

// recreateSwapChain blocks while the window is minimized, then replaces the
// swapchain. Image and depth formats must survive the rebuild.
func (r *Renderer) recreateSwapChain() error {
	extent := r.window.Extent()
	for extent.Width == 0 || extent.Height == 0 {
		r.window.WaitEvents()
		extent = r.window.Extent()
	}
	if err := r.device.WaitIdle(); err != nil {
		return err
	}

	previous := r.swapChain
	swapChain, err := r.newSwapChain(extent, r.useMSAA, previous)
	if err != nil {
		core.LogError("failed to create swapchain: %s", err)
		return err
	}
	r.swapChain = swapChain
	r.generation++

	if previous == nil {
		return nil
	}
	defer previous.Destroy()
	if !vulkan.CompareSwapFormats(previous, swapChain) {
		err := fmt.Errorf("image %d/depth %d became %d/%d: %w",
			previous.ImageFormat(), previous.DepthFormat(), swapChain.ImageFormat(), swapChain.DepthFormat(), core.ErrSwapchainFormatChanged)
		core.LogError(err.Error())
		return err
	}
	core.LogDebug("Swapchain recreated at %dx%d.", extent.Width, extent.Height)
	return nil
}

// SetMSAA schedules a swapchain rebuild with the new sample count at the end of
// the current frame.
func (r *Renderer) SetMSAA(enabled bool) {
	if enabled == r.useMSAA {
		return
	}
	r.useMSAA = enabled
	r.msaaChanged = true
}

func (r *Renderer) MSAAEnabled() bool {
	return r.useMSAA
}

func (r *Renderer) FrameIndex() uint32 {
	if !r.isFrameStarted {
		panic("cannot get the frame index while no frame is in progress")
	}
	return r.currentFrameIndex
}

func (r *Renderer) ImageIndex() uint32 {
	return r.currentImageIndex
}

func (r *Renderer) SwapChain() SwapChain {
	return r.swapChain
}

// SwapChainGeneration changes every time the swapchain is rebuilt.
func (r *Renderer) SwapChainGeneration() uint64 {
	return r.generation
}

func (r *Renderer) AspectRatio() float32 {
	return r.swapChain.AspectRatio()
}

func (r *Renderer) IsFrameInProgress() bool {
	return r.isFrameStarted
}

func (r *Renderer) CurrentCommandBuffer() vulkan.CommandBuffer {
	return r.commandBuffers[r.currentFrameIndex]
}

// Destroy waits for the device and releases the command buffers and swapchain.
func (r *Renderer) Destroy() {
	if err := r.device.WaitIdle(); err != nil {
		core.LogWarn("device wait before renderer shutdown failed: %s", err)
	}
	if r.commandBuffers != nil {
		r.device.FreeCommandBuffers(r.commandBuffers)
		r.commandBuffers = nil
	}
	if r.swapChain != nil {
		r.swapChain.Destroy()
		r.swapChain = nil
	}
}

package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkr/engine/core"
)

// VulkanSwapchain owns the presentable images and everything sized after them:
// depth and multisampled color attachments, the main render pass, one
// framebuffer per image and the per frame slot synchronization objects.
type VulkanSwapchain struct {
	Handle vk.Swapchain

	imageFormat vk.SurfaceFormat
	depthFormat vk.Format
	extent      vk.Extent2D
	attachments AttachmentSet

	Images []vk.Image
	Views  []vk.ImageView

	// one per swapchain image
	depthImages []*VulkanImage
	colorImages []*VulkanImage

	renderPass   *VulkanRenderPass
	Framebuffers []*VulkanFramebuffer

	imageAvailable []vk.Semaphore
	renderFinished []vk.Semaphore
	inFlight       []*VulkanFence
	sync           *FrameSync

	context *VulkanContext
}

// NewSwapchain creates a swapchain for the window extent. A previous chain is
// handed to the driver as OldSwapchain; the caller destroys it afterwards.
func NewSwapchain(context *VulkanContext, windowExtent vk.Extent2D, useMSAA bool, previous *VulkanSwapchain) (*VulkanSwapchain, error) {
	support, err := context.RefreshSwapchainSupport()
	if err != nil {
		return nil, err
	}
	caps := support.Capabilities

	sc := &VulkanSwapchain{
		imageFormat: selectSurfaceFormat(support.Formats),
		depthFormat: context.Device.DepthFormat,
		extent:      selectExtent(caps, windowExtent),
		context:     context,
	}
	if sc.depthFormat == vk.FormatUndefined {
		return nil, logged(fmt.Errorf("no supported depth format"))
	}

	samples := vk.SampleCount1Bit
	if useMSAA {
		samples = context.Device.MaxUsableSampleCount()
	}
	sc.attachments = AttachmentSet{
		ColorFormat: sc.imageFormat.Format,
		DepthFormat: sc.depthFormat,
		Samples:     samples,
	}

	if err := sc.createSwapchain(caps, support.PresentModes, previous); err != nil {
		sc.Destroy()
		return nil, err
	}
	if err := sc.createImageViews(); err != nil {
		sc.Destroy()
		return nil, err
	}
	if sc.renderPass, err = NewMainRenderPass(context, sc.attachments); err != nil {
		sc.Destroy()
		return nil, err
	}
	if err := sc.createAttachmentImages(); err != nil {
		sc.Destroy()
		return nil, err
	}
	if err := sc.createFramebuffers(); err != nil {
		sc.Destroy()
		return nil, err
	}
	if err := sc.createSyncObjects(); err != nil {
		sc.Destroy()
		return nil, err
	}

	core.LogInfo("Swapchain created: %dx%d, %d images, %d samples.", sc.extent.Width, sc.extent.Height, sc.ImageCount(), samples)
	return sc, nil
}

func (sc *VulkanSwapchain) createSwapchain(caps vk.SurfaceCapabilities, presentModes []vk.PresentMode, previous *VulkanSwapchain) error {
	device := sc.context.Device

	swapchainCreateInfo := vk.SwapchainCreateInfo{
		SType:            vk.StructureTypeSwapchainCreateInfo,
		Surface:          sc.context.Surface,
		MinImageCount:    selectImageCount(caps),
		ImageFormat:      sc.imageFormat.Format,
		ImageColorSpace:  sc.imageFormat.ColorSpace,
		ImageExtent:      sc.extent,
		ImageArrayLayers: 1,
		ImageUsage:       vk.ImageUsageFlags(vk.ImageUsageColorAttachmentBit),
		PreTransform:     caps.CurrentTransform,
		CompositeAlpha:   vk.CompositeAlphaOpaqueBit,
		PresentMode:      selectPresentMode(presentModes, sc.context.config.VSync),
		Clipped:          vk.True,
		OldSwapchain:     vk.NullSwapchain,
	}
	if previous != nil {
		swapchainCreateInfo.OldSwapchain = previous.Handle
	}

	// Setup the queue family indices
	if device.GraphicsQueueIndex != device.PresentQueueIndex {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeConcurrent
		swapchainCreateInfo.QueueFamilyIndexCount = 2
		swapchainCreateInfo.PQueueFamilyIndices = []uint32{
			uint32(device.GraphicsQueueIndex),
			uint32(device.PresentQueueIndex),
		}
	} else {
		swapchainCreateInfo.ImageSharingMode = vk.SharingModeExclusive
	}

	var handle vk.Swapchain
	if res := vk.CreateSwapchain(device.LogicalDevice, &swapchainCreateInfo, sc.context.Allocator, &handle); res != vk.Success {
		return vulkanError("vkCreateSwapchainKHR", res)
	}
	sc.Handle = handle

	var imageCount uint32
	if res := vk.GetSwapchainImages(device.LogicalDevice, sc.Handle, &imageCount, nil); res != vk.Success {
		return vulkanError("vkGetSwapchainImagesKHR", res)
	}
	sc.Images = make([]vk.Image, imageCount)
	if res := vk.GetSwapchainImages(device.LogicalDevice, sc.Handle, &imageCount, sc.Images); res != vk.Success {
		return vulkanError("vkGetSwapchainImagesKHR", res)
	}
	return nil
}

func (sc *VulkanSwapchain) createImageViews() error {
	sc.Views = make([]vk.ImageView, 0, len(sc.Images))
	for _, image := range sc.Images {
		view, err := CreateImageView(sc.context, image, sc.imageFormat.Format, vk.ImageAspectFlags(vk.ImageAspectColorBit), false)
		if err != nil {
			return err
		}
		sc.Views = append(sc.Views, view)
	}
	return nil
}

func (sc *VulkanSwapchain) createAttachmentImages() error {
	for range sc.Images {
		depth, err := NewImage(sc.context, ImageConfig{
			Width:   sc.extent.Width,
			Height:  sc.extent.Height,
			Format:  sc.depthFormat,
			Usage:   vk.ImageUsageFlags(vk.ImageUsageDepthStencilAttachmentBit),
			Aspect:  vk.ImageAspectFlags(vk.ImageAspectDepthBit),
			Samples: sc.attachments.samples(),
		})
		if err != nil {
			return err
		}
		sc.depthImages = append(sc.depthImages, depth)

		if !sc.attachments.Multisampled() {
			continue
		}
		color, err := NewImage(sc.context, ImageConfig{
			Width:   sc.extent.Width,
			Height:  sc.extent.Height,
			Format:  sc.imageFormat.Format,
			Usage:   vk.ImageUsageFlags(vk.ImageUsageTransientAttachmentBit | vk.ImageUsageColorAttachmentBit),
			Aspect:  vk.ImageAspectFlags(vk.ImageAspectColorBit),
			Samples: sc.attachments.samples(),
		})
		if err != nil {
			return err
		}
		sc.colorImages = append(sc.colorImages, color)
	}
	return nil
}

func (sc *VulkanSwapchain) createFramebuffers() error {
	for i := range sc.Images {
		msaaView := vk.NullImageView
		if sc.attachments.Multisampled() {
			msaaView = sc.colorImages[i].View
		}
		views := sc.attachments.FramebufferAttachments(sc.Views[i], sc.depthImages[i].View, msaaView)
		fb, err := FramebufferCreate(sc.context, sc.renderPass, sc.extent, views)
		if err != nil {
			return err
		}
		sc.Framebuffers = append(sc.Framebuffers, fb)
	}
	return nil
}

func (sc *VulkanSwapchain) createSyncObjects() error {
	device := sc.context.Device.LogicalDevice
	semaphoreInfo := vk.SemaphoreCreateInfo{
		SType: vk.StructureTypeSemaphoreCreateInfo,
	}

	fences := make([]Fence, 0, MaxFramesInFlight)
	for i := uint32(0); i < MaxFramesInFlight; i++ {
		var available, finished vk.Semaphore
		if res := vk.CreateSemaphore(device, &semaphoreInfo, sc.context.Allocator, &available); res != vk.Success {
			return vulkanError("vkCreateSemaphore", res)
		}
		sc.imageAvailable = append(sc.imageAvailable, available)
		if res := vk.CreateSemaphore(device, &semaphoreInfo, sc.context.Allocator, &finished); res != vk.Success {
			return vulkanError("vkCreateSemaphore", res)
		}
		sc.renderFinished = append(sc.renderFinished, finished)

		// Created signaled so the first wait of every slot returns immediately.
		fence, err := NewFence(sc.context, true)
		if err != nil {
			return err
		}
		sc.inFlight = append(sc.inFlight, fence)
		fences = append(fences, fence)
	}
	sc.sync = NewFrameSync(fences, sc.ImageCount())
	return nil
}

// AcquireNextImage waits until the slot is free and acquires the next presentable image.
func (sc *VulkanSwapchain) AcquireNextImage(frame uint32) (uint32, error) {
	if err := sc.sync.WaitForSlot(frame); err != nil {
		return 0, err
	}

	var imageIndex uint32
	result := vk.AcquireNextImage(sc.context.Device.LogicalDevice, sc.Handle, InfiniteTimeout, sc.imageAvailable[frame], vk.NullFence, &imageIndex)
	switch result {
	case vk.Success, vk.Suboptimal:
		return imageIndex, nil
	case vk.ErrorOutOfDate:
		return 0, core.ErrSurfaceOutOfDate
	default:
		return 0, vulkanError("vkAcquireNextImageKHR", result)
	}
}

// SubmitCommandBuffers submits buffers in order and presents the image. It
// returns ErrSurfaceSuboptimal or ErrSurfaceOutOfDate when the chain must be rebuilt.
func (sc *VulkanSwapchain) SubmitCommandBuffers(frame, imageIndex uint32, buffers []CommandBuffer) error {
	if err := sc.sync.ClaimImage(frame, imageIndex); err != nil {
		return err
	}

	handles := make([]vk.CommandBuffer, 0, len(buffers))
	for _, b := range buffers {
		handles = append(handles, b.NativeHandle())
	}

	submitInfo := vk.SubmitInfo{
		SType:                vk.StructureTypeSubmitInfo,
		WaitSemaphoreCount:   1,
		PWaitSemaphores:      []vk.Semaphore{sc.imageAvailable[frame]},
		PWaitDstStageMask:    []vk.PipelineStageFlags{vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit)},
		CommandBufferCount:   uint32(len(handles)),
		PCommandBuffers:      handles,
		SignalSemaphoreCount: 1,
		PSignalSemaphores:    []vk.Semaphore{sc.renderFinished[frame]},
	}

	device := sc.context.Device
	if err := sc.context.locks.SafeQueueCall(uint32(device.GraphicsQueueIndex), func() error {
		if res := vk.QueueSubmit(device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, sc.inFlight[frame].Handle); res != vk.Success {
			return vulkanError("vkQueueSubmit", res)
		}
		return nil
	}); err != nil {
		return err
	}
	for _, b := range buffers {
		if v, ok := b.(*VulkanCommandBuffer); ok {
			v.UpdateSubmitted()
		}
	}

	presentInfo := vk.PresentInfo{
		SType:              vk.StructureTypePresentInfo,
		WaitSemaphoreCount: 1,
		PWaitSemaphores:    []vk.Semaphore{sc.renderFinished[frame]},
		SwapchainCount:     1,
		PSwapchains:        []vk.Swapchain{sc.Handle},
		PImageIndices:      []uint32{imageIndex},
	}

	var result vk.Result
	sc.context.locks.SafeQueueCall(uint32(device.PresentQueueIndex), func() error {
		result = vk.QueuePresent(device.PresentQueue, &presentInfo)
		return nil
	})
	switch result {
	case vk.Success:
		return nil
	case vk.Suboptimal:
		return core.ErrSurfaceSuboptimal
	case vk.ErrorOutOfDate:
		return core.ErrSurfaceOutOfDate
	default:
		return vulkanError("vkQueuePresentKHR", result)
	}
}

func (sc *VulkanSwapchain) Extent() vk.Extent2D {
	return sc.extent
}

func (sc *VulkanSwapchain) ImageCount() uint32 {
	return uint32(len(sc.Images))
}

func (sc *VulkanSwapchain) ImageFormat() vk.Format {
	return sc.imageFormat.Format
}

func (sc *VulkanSwapchain) DepthFormat() vk.Format {
	return sc.depthFormat
}

func (sc *VulkanSwapchain) SampleCount() vk.SampleCountFlagBits {
	return sc.attachments.samples()
}

func (sc *VulkanSwapchain) Attachments() AttachmentSet {
	return sc.attachments
}

func (sc *VulkanSwapchain) RenderPass() *VulkanRenderPass {
	return sc.renderPass
}

func (sc *VulkanSwapchain) Framebuffer(index uint32) vk.Framebuffer {
	return sc.Framebuffers[index].Handle
}

func (sc *VulkanSwapchain) ImageViews() []vk.ImageView {
	return sc.Views
}

func (sc *VulkanSwapchain) AspectRatio() float32 {
	if sc.extent.Height == 0 {
		return 1
	}
	return float32(sc.extent.Width) / float32(sc.extent.Height)
}

// Destroy releases everything the chain created. The device must be idle.
func (sc *VulkanSwapchain) Destroy() {
	context := sc.context
	device := context.Device.LogicalDevice

	for _, f := range sc.inFlight {
		f.Destroy()
	}
	sc.inFlight = nil
	for _, s := range sc.renderFinished {
		vk.DestroySemaphore(device, s, context.Allocator)
	}
	sc.renderFinished = nil
	for _, s := range sc.imageAvailable {
		vk.DestroySemaphore(device, s, context.Allocator)
	}
	sc.imageAvailable = nil

	for _, fb := range sc.Framebuffers {
		fb.Destroy(context)
	}
	sc.Framebuffers = nil

	for _, img := range sc.colorImages {
		img.Destroy()
	}
	sc.colorImages = nil
	for _, img := range sc.depthImages {
		img.Destroy()
	}
	sc.depthImages = nil

	if sc.renderPass != nil {
		sc.renderPass.Destroy(context)
		sc.renderPass = nil
	}

	// Only destroy the views, not the images, since those are owned by the swapchain.
	for _, v := range sc.Views {
		vk.DestroyImageView(device, v, context.Allocator)
	}
	sc.Views = nil
	sc.Images = nil

	if sc.Handle != vk.NullSwapchain {
		vk.DestroySwapchain(device, sc.Handle, context.Allocator)
		sc.Handle = vk.NullSwapchain
	}
	core.LogDebug("Swapchain destroyed.")
}

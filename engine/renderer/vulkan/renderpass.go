package vulkan

import (
	vk "github.com/goki/vulkan"
)

type VulkanRenderPass struct {
	Handle vk.RenderPass
	/** @brief Number of attachments every framebuffer of this pass must provide. */
	AttachmentCount uint32
	/** @brief Sample count pipelines built against this pass must use. */
	Samples     vk.SampleCountFlagBits
	ColorFormat vk.Format
}

// NewMainRenderPass creates the scene pass described by the attachment set.
func NewMainRenderPass(context *VulkanContext, attachments AttachmentSet) (*VulkanRenderPass, error) {
	descriptions := attachments.Descriptions()
	return createRenderPass(context, descriptions, attachments.Subpass(), attachments.Dependency(), attachments.samples())
}

// overlayAttachment loads what the scene pass stored and leaves the image ready to present.
func overlayAttachment(format vk.Format) vk.AttachmentDescription {
	return vk.AttachmentDescription{
		Format:         format,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpLoad,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutColorAttachmentOptimal,
		FinalLayout:    vk.ImageLayoutPresentSrc,
	}
}

func overlayDependency() vk.SubpassDependency {
	return vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		SrcAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit),
		DstStageMask:  vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit),
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentReadBit | vk.AccessColorAttachmentWriteBit),
	}
}

// NewOverlayRenderPass creates the single sampled pass drawn on top of the resolved swapchain image.
func NewOverlayRenderPass(context *VulkanContext, format vk.Format) (*VulkanRenderPass, error) {
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: 0,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
	}
	return createRenderPass(context, []vk.AttachmentDescription{overlayAttachment(format)}, subpass, overlayDependency(), vk.SampleCount1Bit)
}

func createRenderPass(context *VulkanContext, descriptions []vk.AttachmentDescription, subpass vk.SubpassDescription, dependency vk.SubpassDependency, samples vk.SampleCountFlagBits) (*VulkanRenderPass, error) {
	renderpassCreateInfo := vk.RenderPassCreateInfo{
		SType:           vk.StructureTypeRenderPassCreateInfo,
		AttachmentCount: uint32(len(descriptions)),
		PAttachments:    descriptions,
		SubpassCount:    1,
		PSubpasses:      []vk.SubpassDescription{subpass},
		DependencyCount: 1,
		PDependencies:   []vk.SubpassDependency{dependency},
	}

	var handle vk.RenderPass
	if res := vk.CreateRenderPass(context.Device.LogicalDevice, &renderpassCreateInfo, context.Allocator, &handle); res != vk.Success {
		return nil, vulkanError("vkCreateRenderPass", res)
	}
	return &VulkanRenderPass{
		Handle:          handle,
		AttachmentCount: uint32(len(descriptions)),
		Samples:         samples,
		ColorFormat:     descriptions[0].Format,
	}, nil
}

func (vr *VulkanRenderPass) Destroy(context *VulkanContext) {
	if vr.Handle != vk.NullRenderPass {
		vk.DestroyRenderPass(context.Device.LogicalDevice, vr.Handle, context.Allocator)
		vr.Handle = vk.NullRenderPass
	}
}

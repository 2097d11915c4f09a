package vulkan

import vk "github.com/goki/vulkan"

// AttachmentSet describes the main render pass attachments for one swapchain.
// Color always comes first and depth second; a multisampled set appends the
// single sampled resolve target that is presented.
type AttachmentSet struct {
	ColorFormat vk.Format
	DepthFormat vk.Format
	Samples     vk.SampleCountFlagBits
}

const (
	attachmentColor   uint32 = 0
	attachmentDepth   uint32 = 1
	attachmentResolve uint32 = 2
)

func (a AttachmentSet) Multisampled() bool {
	return a.Samples > vk.SampleCount1Bit
}

func (a AttachmentSet) samples() vk.SampleCountFlagBits {
	if a.Samples == 0 {
		return vk.SampleCount1Bit
	}
	return a.Samples
}

func (a AttachmentSet) Descriptions() []vk.AttachmentDescription {
	color := vk.AttachmentDescription{
		Format:         a.ColorFormat,
		Samples:        a.samples(),
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		// the overlay pass that follows transitions to PRESENT_SRC
		FinalLayout: vk.ImageLayoutColorAttachmentOptimal,
	}
	depth := vk.AttachmentDescription{
		Format:         a.DepthFormat,
		Samples:        a.samples(),
		LoadOp:         vk.AttachmentLoadOpClear,
		StoreOp:        vk.AttachmentStoreOpDontCare,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutDepthStencilAttachmentOptimal,
	}
	if !a.Multisampled() {
		return []vk.AttachmentDescription{color, depth}
	}
	resolve := vk.AttachmentDescription{
		Format:         a.ColorFormat,
		Samples:        vk.SampleCount1Bit,
		LoadOp:         vk.AttachmentLoadOpDontCare,
		StoreOp:        vk.AttachmentStoreOpStore,
		StencilLoadOp:  vk.AttachmentLoadOpDontCare,
		StencilStoreOp: vk.AttachmentStoreOpDontCare,
		InitialLayout:  vk.ImageLayoutUndefined,
		FinalLayout:    vk.ImageLayoutColorAttachmentOptimal,
	}
	return []vk.AttachmentDescription{color, depth, resolve}
}

// Subpass is the single graphics subpass writing color and depth, resolving when multisampled.
func (a AttachmentSet) Subpass() vk.SubpassDescription {
	subpass := vk.SubpassDescription{
		PipelineBindPoint:    vk.PipelineBindPointGraphics,
		ColorAttachmentCount: 1,
		PColorAttachments: []vk.AttachmentReference{{
			Attachment: attachmentColor,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}},
		PDepthStencilAttachment: &vk.AttachmentReference{
			Attachment: attachmentDepth,
			Layout:     vk.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}
	if a.Multisampled() {
		subpass.PResolveAttachments = []vk.AttachmentReference{{
			Attachment: attachmentResolve,
			Layout:     vk.ImageLayoutColorAttachmentOptimal,
		}}
	}
	return subpass
}

func (a AttachmentSet) Dependency() vk.SubpassDependency {
	stages := vk.PipelineStageFlags(vk.PipelineStageColorAttachmentOutputBit | vk.PipelineStageEarlyFragmentTestsBit)
	return vk.SubpassDependency{
		SrcSubpass:    vk.SubpassExternal,
		DstSubpass:    0,
		SrcStageMask:  stages,
		SrcAccessMask: 0,
		DstStageMask:  stages,
		DstAccessMask: vk.AccessFlags(vk.AccessColorAttachmentWriteBit | vk.AccessDepthStencilAttachmentWriteBit),
	}
}

// FramebufferAttachments orders image views the way Descriptions lays out the attachments.
func (a AttachmentSet) FramebufferAttachments(swapView, depthView, msaaView vk.ImageView) []vk.ImageView {
	return orderAttachments(a, swapView, depthView, msaaView)
}

func orderAttachments[T any](a AttachmentSet, swap, depth, msaa T) []T {
	if a.Multisampled() {
		return []T{msaa, depth, swap}
	}
	return []T{swap, depth}
}

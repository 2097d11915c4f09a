package vulkan

import (
	"unsafe"

	vk "github.com/goki/vulkan"
)

type VulkanCommandBufferState int

const (
	COMMAND_BUFFER_STATE_READY VulkanCommandBufferState = iota
	COMMAND_BUFFER_STATE_RECORDING
	COMMAND_BUFFER_STATE_IN_RENDER_PASS
	COMMAND_BUFFER_STATE_RECORDING_ENDED
	COMMAND_BUFFER_STATE_SUBMITTED
	COMMAND_BUFFER_STATE_NOT_ALLOCATED
)

// CommandBuffer is the recording surface the renderer and the render system draw through.
type CommandBuffer interface {
	Begin(isSingleUse, isRenderpassContinue, isSimultaneousUse bool) error
	End() error
	Reset() error
	NativeHandle() vk.CommandBuffer

	BeginRenderPass(renderPass vk.RenderPass, framebuffer vk.Framebuffer, extent vk.Extent2D, clearValues []vk.ClearValue)
	EndRenderPass()
	SetViewport(extent vk.Extent2D)
	SetScissor(extent vk.Extent2D)

	BindPipeline(pipeline *VulkanPipeline)
	BindDescriptorSet(layout vk.PipelineLayout, set vk.DescriptorSet, dynamicOffsets ...uint32)
	PushConstants(layout vk.PipelineLayout, stages vk.ShaderStageFlags, data []byte)
	BindVertexBuffer(buffer vk.Buffer, offset vk.DeviceSize)
	BindIndexBuffer(buffer vk.Buffer, offset vk.DeviceSize)
	Draw(vertexCount, firstVertex uint32)
	DrawIndexed(indexCount uint32)
}

type VulkanCommandBuffer struct {
	Handle vk.CommandBuffer
	// Command buffer state.
	State VulkanCommandBufferState
}

func (vc *VulkanContext) allocateCommandBuffers(pool vk.CommandPool, count uint32, primary bool) ([]*VulkanCommandBuffer, error) {
	level := vk.CommandBufferLevelSecondary
	if primary {
		level = vk.CommandBufferLevelPrimary
	}

	allocateInfo := vk.CommandBufferAllocateInfo{
		SType:              vk.StructureTypeCommandBufferAllocateInfo,
		CommandPool:        pool,
		CommandBufferCount: count,
		Level:              level,
	}

	handles := make([]vk.CommandBuffer, count)
	if err := vc.locks.SafeCall(CommandBufferManagement, func() error {
		if res := vk.AllocateCommandBuffers(vc.Device.LogicalDevice, &allocateInfo, handles); res != vk.Success {
			return vulkanError("vkAllocateCommandBuffers", res)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	out := make([]*VulkanCommandBuffer, count)
	for i := range handles {
		out[i] = &VulkanCommandBuffer{
			Handle: handles[i],
			State:  COMMAND_BUFFER_STATE_READY,
		}
	}
	return out, nil
}

// AllocateCommandBuffers allocates primary command buffers from the graphics pool.
func (vc *VulkanContext) AllocateCommandBuffers(count uint32) ([]CommandBuffer, error) {
	cbs, err := vc.allocateCommandBuffers(vc.Device.GraphicsCommandPool, count, true)
	if err != nil {
		return nil, err
	}
	out := make([]CommandBuffer, len(cbs))
	for i := range cbs {
		out[i] = cbs[i]
	}
	return out, nil
}

func (vc *VulkanContext) FreeCommandBuffers(buffers []CommandBuffer) {
	handles := make([]vk.CommandBuffer, 0, len(buffers))
	for _, b := range buffers {
		if b == nil || b.NativeHandle() == nil {
			continue
		}
		handles = append(handles, b.NativeHandle())
		if v, ok := b.(*VulkanCommandBuffer); ok {
			v.Handle = nil
			v.State = COMMAND_BUFFER_STATE_NOT_ALLOCATED
		}
	}
	if len(handles) == 0 {
		return
	}
	vc.locks.SafeCall(CommandBufferManagement, func() error {
		vk.FreeCommandBuffers(vc.Device.LogicalDevice, vc.Device.GraphicsCommandPool, uint32(len(handles)), handles)
		return nil
	})
}

func (v *VulkanCommandBuffer) NativeHandle() vk.CommandBuffer {
	return v.Handle
}

func (v *VulkanCommandBuffer) Begin(isSingleUse, isRenderpassContinue, isSimultaneousUse bool) error {
	beginInfo := vk.CommandBufferBeginInfo{
		SType: vk.StructureTypeCommandBufferBeginInfo,
		Flags: 0,
	}
	if isSingleUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageOneTimeSubmitBit)
	}
	if isRenderpassContinue {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageRenderPassContinueBit)
	}
	if isSimultaneousUse {
		beginInfo.Flags |= vk.CommandBufferUsageFlags(vk.CommandBufferUsageSimultaneousUseBit)
	}

	if res := vk.BeginCommandBuffer(v.Handle, &beginInfo); res != vk.Success {
		return vulkanError("vkBeginCommandBuffer", res)
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING
	return nil
}

func (v *VulkanCommandBuffer) End() error {
	if res := vk.EndCommandBuffer(v.Handle); res != vk.Success {
		return vulkanError("vkEndCommandBuffer", res)
	}
	v.State = COMMAND_BUFFER_STATE_RECORDING_ENDED
	return nil
}

func (v *VulkanCommandBuffer) UpdateSubmitted() {
	v.State = COMMAND_BUFFER_STATE_SUBMITTED
}

func (v *VulkanCommandBuffer) Reset() error {
	if res := vk.ResetCommandBuffer(v.Handle, 0); res != vk.Success {
		return vulkanError("vkResetCommandBuffer", res)
	}
	v.State = COMMAND_BUFFER_STATE_READY
	return nil
}

func (v *VulkanCommandBuffer) BeginRenderPass(renderPass vk.RenderPass, framebuffer vk.Framebuffer, extent vk.Extent2D, clearValues []vk.ClearValue) {
	beginInfo := vk.RenderPassBeginInfo{
		SType:       vk.StructureTypeRenderPassBeginInfo,
		RenderPass:  renderPass,
		Framebuffer: framebuffer,
		RenderArea: vk.Rect2D{
			Offset: vk.Offset2D{X: 0, Y: 0},
			Extent: extent,
		},
		ClearValueCount: uint32(len(clearValues)),
		PClearValues:    clearValues,
	}
	vk.CmdBeginRenderPass(v.Handle, &beginInfo, vk.SubpassContentsInline)
	v.State = COMMAND_BUFFER_STATE_IN_RENDER_PASS
}

func (v *VulkanCommandBuffer) EndRenderPass() {
	vk.CmdEndRenderPass(v.Handle)
	v.State = COMMAND_BUFFER_STATE_RECORDING
}

func (v *VulkanCommandBuffer) SetViewport(extent vk.Extent2D) {
	viewport := vk.Viewport{
		X:        0.0,
		Y:        0.0,
		Width:    float32(extent.Width),
		Height:   float32(extent.Height),
		MinDepth: 0.0,
		MaxDepth: 1.0,
	}
	vk.CmdSetViewport(v.Handle, 0, 1, []vk.Viewport{viewport})
}

func (v *VulkanCommandBuffer) SetScissor(extent vk.Extent2D) {
	scissor := vk.Rect2D{
		Offset: vk.Offset2D{X: 0, Y: 0},
		Extent: extent,
	}
	vk.CmdSetScissor(v.Handle, 0, 1, []vk.Rect2D{scissor})
}

func (v *VulkanCommandBuffer) BindPipeline(pipeline *VulkanPipeline) {
	vk.CmdBindPipeline(v.Handle, vk.PipelineBindPointGraphics, pipeline.Handle)
}

func (v *VulkanCommandBuffer) BindDescriptorSet(layout vk.PipelineLayout, set vk.DescriptorSet, dynamicOffsets ...uint32) {
	vk.CmdBindDescriptorSets(v.Handle, vk.PipelineBindPointGraphics, layout, 0, 1,
		[]vk.DescriptorSet{set}, uint32(len(dynamicOffsets)), dynamicOffsets)
}

func (v *VulkanCommandBuffer) PushConstants(layout vk.PipelineLayout, stages vk.ShaderStageFlags, data []byte) {
	if len(data) == 0 {
		return
	}
	vk.CmdPushConstants(v.Handle, layout, stages, 0, uint32(len(data)), unsafe.Pointer(&data[0]))
}

func (v *VulkanCommandBuffer) BindVertexBuffer(buffer vk.Buffer, offset vk.DeviceSize) {
	vk.CmdBindVertexBuffers(v.Handle, 0, 1, []vk.Buffer{buffer}, []vk.DeviceSize{offset})
}

func (v *VulkanCommandBuffer) BindIndexBuffer(buffer vk.Buffer, offset vk.DeviceSize) {
	vk.CmdBindIndexBuffer(v.Handle, buffer, offset, vk.IndexTypeUint32)
}

func (v *VulkanCommandBuffer) Draw(vertexCount, firstVertex uint32) {
	vk.CmdDraw(v.Handle, vertexCount, 1, firstVertex, 0)
}

func (v *VulkanCommandBuffer) DrawIndexed(indexCount uint32) {
	vk.CmdDrawIndexed(v.Handle, indexCount, 1, 0, 0, 0)
}

/**
 * Allocates and begins recording to a single use command buffer.
 */
func (vc *VulkanContext) AllocateAndBeginSingleUse() (*VulkanCommandBuffer, error) {
	cbs, err := vc.allocateCommandBuffers(vc.Device.GraphicsCommandPool, 1, true)
	if err != nil {
		return nil, err
	}
	if err := cbs[0].Begin(true, false, false); err != nil {
		return nil, err
	}
	return cbs[0], nil
}

/**
 * Ends recording, submits to and waits for queue operation and frees the provided command buffer.
 */
func (vc *VulkanContext) EndSingleUse(v *VulkanCommandBuffer) error {
	defer vc.FreeCommandBuffers([]CommandBuffer{v})

	if err := v.End(); err != nil {
		return err
	}

	submitInfo := vk.SubmitInfo{
		SType:              vk.StructureTypeSubmitInfo,
		CommandBufferCount: 1,
		PCommandBuffers:    []vk.CommandBuffer{v.Handle},
	}

	return vc.locks.SafeQueueCall(uint32(vc.Device.GraphicsQueueIndex), func() error {
		if res := vk.QueueSubmit(vc.Device.GraphicsQueue, 1, []vk.SubmitInfo{submitInfo}, vk.NullFence); res != vk.Success {
			return vulkanError("vkQueueSubmit", res)
		}
		// Wait for it to finish
		if res := vk.QueueWaitIdle(vc.Device.GraphicsQueue); res != vk.Success {
			return vulkanError("vkQueueWaitIdle", res)
		}
		return nil
	})
}

// SingleTimeCommands records fn into a one-off buffer and blocks until the queue drains.
func (vc *VulkanContext) SingleTimeCommands(fn func(cb *VulkanCommandBuffer)) error {
	cb, err := vc.AllocateAndBeginSingleUse()
	if err != nil {
		return err
	}
	fn(cb)
	return vc.EndSingleUse(cb)
}

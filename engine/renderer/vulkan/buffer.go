package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
)

type VulkanBuffer struct {
	Handle vk.Buffer
	Memory vk.DeviceMemory
	/** @brief The total size of the buffer in bytes. */
	Size             vk.DeviceSize
	Usage            vk.BufferUsageFlags
	MemoryProperties vk.MemoryPropertyFlags

	mapped  unsafe.Pointer
	context *VulkanContext
}

func NewBuffer(context *VulkanContext, size vk.DeviceSize, usage vk.BufferUsageFlags, properties vk.MemoryPropertyFlags) (*VulkanBuffer, error) {
	if size == 0 {
		return nil, logged(fmt.Errorf("cannot create a zero sized buffer"))
	}
	buffer := &VulkanBuffer{
		Size:             size,
		Usage:            usage,
		MemoryProperties: properties,
		context:          context,
	}

	bufferInfo := vk.BufferCreateInfo{
		SType:       vk.StructureTypeBufferCreateInfo,
		Size:        size,
		Usage:       usage,
		SharingMode: vk.SharingModeExclusive, // NOTE: Only used in one queue.
	}

	var handle vk.Buffer
	if res := vk.CreateBuffer(context.Device.LogicalDevice, &bufferInfo, context.Allocator, &handle); res != vk.Success {
		return nil, vulkanError("vkCreateBuffer", res)
	}
	buffer.Handle = handle

	// Gather memory requirements.
	var requirements vk.MemoryRequirements
	vk.GetBufferMemoryRequirements(context.Device.LogicalDevice, buffer.Handle, &requirements)
	requirements.Deref()

	memoryIndex, err := context.FindMemoryIndex(requirements.MemoryTypeBits, properties)
	if err != nil {
		buffer.Destroy()
		return nil, err
	}

	allocateInfo := vk.MemoryAllocateInfo{
		SType:           vk.StructureTypeMemoryAllocateInfo,
		AllocationSize:  requirements.Size,
		MemoryTypeIndex: memoryIndex,
	}

	if err := context.locks.SafeCall(MemoryManagement, func() error {
		var memory vk.DeviceMemory
		if res := vk.AllocateMemory(context.Device.LogicalDevice, &allocateInfo, context.Allocator, &memory); res != vk.Success {
			return vulkanError("vkAllocateMemory", res)
		}
		buffer.Memory = memory
		return nil
	}); err != nil {
		buffer.Destroy()
		return nil, err
	}

	if res := vk.BindBufferMemory(context.Device.LogicalDevice, buffer.Handle, buffer.Memory, 0); res != vk.Success {
		buffer.Destroy()
		return nil, vulkanError("vkBindBufferMemory", res)
	}
	return buffer, nil
}

// Map keeps the whole buffer mapped until Unmap or Destroy.
func (b *VulkanBuffer) Map() (unsafe.Pointer, error) {
	if b.mapped != nil {
		return b.mapped, nil
	}
	var data unsafe.Pointer
	if res := vk.MapMemory(b.context.Device.LogicalDevice, b.Memory, 0, b.Size, 0, &data); res != vk.Success {
		return nil, vulkanError("vkMapMemory", res)
	}
	b.mapped = data
	return data, nil
}

func (b *VulkanBuffer) Unmap() {
	if b.mapped == nil {
		return
	}
	vk.UnmapMemory(b.context.Device.LogicalDevice, b.Memory)
	b.mapped = nil
}

// Write copies data into host visible memory at offset. A buffer that was
// not mapped before the call is unmapped again afterwards.
func (b *VulkanBuffer) Write(offset vk.DeviceSize, data []byte) error {
	if offset+vk.DeviceSize(len(data)) > b.Size {
		return logged(fmt.Errorf("buffer write of %d bytes at %d overflows buffer of %d bytes", len(data), offset, b.Size))
	}
	wasMapped := b.mapped != nil
	ptr, err := b.Map()
	if err != nil {
		return err
	}
	vk.Memcopy(unsafe.Add(ptr, int(offset)), data)
	if !wasMapped {
		b.Unmap()
	}
	return nil
}

// CopyTo records and waits for a device side copy of size bytes into dest.
func (b *VulkanBuffer) CopyTo(dest *VulkanBuffer, size vk.DeviceSize) error {
	return b.context.SingleTimeCommands(func(cb *VulkanCommandBuffer) {
		region := vk.BufferCopy{
			SrcOffset: 0,
			DstOffset: 0,
			Size:      size,
		}
		vk.CmdCopyBuffer(cb.Handle, b.Handle, dest.Handle, 1, []vk.BufferCopy{region})
	})
}

func (b *VulkanBuffer) Destroy() {
	if b.context == nil {
		return
	}
	device := b.context.Device.LogicalDevice
	b.Unmap()
	if b.Memory != vk.NullDeviceMemory {
		vk.FreeMemory(device, b.Memory, b.context.Allocator)
		b.Memory = vk.NullDeviceMemory
	}
	if b.Handle != vk.NullBuffer {
		vk.DestroyBuffer(device, b.Handle, b.context.Allocator)
		b.Handle = vk.NullBuffer
	}
	b.Size = 0
}

func hostVisible() vk.MemoryPropertyFlags {
	return vk.MemoryPropertyFlags(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
}

// NewStagingBuffer creates a host visible transfer source filled with data.
func NewStagingBuffer(context *VulkanContext, data []byte) (*VulkanBuffer, error) {
	staging, err := NewBuffer(context, vk.DeviceSize(len(data)), vk.BufferUsageFlags(vk.BufferUsageTransferSrcBit), hostVisible())
	if err != nil {
		return nil, err
	}
	if err := staging.Write(0, data); err != nil {
		staging.Destroy()
		return nil, err
	}
	return staging, nil
}

// UploadBuffer creates a device local buffer holding data, filled through a staging buffer.
func (vc *VulkanContext) UploadBuffer(usage vk.BufferUsageFlagBits, data []byte) (*VulkanBuffer, error) {
	staging, err := NewStagingBuffer(vc, data)
	if err != nil {
		return nil, err
	}
	defer staging.Destroy()

	buffer, err := NewBuffer(vc, staging.Size,
		vk.BufferUsageFlags(usage|vk.BufferUsageTransferDstBit),
		vk.MemoryPropertyFlags(vk.MemoryPropertyDeviceLocalBit))
	if err != nil {
		return nil, err
	}
	if err := staging.CopyTo(buffer, staging.Size); err != nil {
		buffer.Destroy()
		return nil, err
	}
	return buffer, nil
}

// UniformBuffer holds one aligned region per frame slot, bound through a
// dynamic uniform descriptor.
type UniformBuffer interface {
	WriteAt(frame uint32, data []byte) error
	DynamicOffset(frame uint32) uint32
	DescriptorInfo() vk.DescriptorBufferInfo
	Destroy()
}

type VulkanUniformBuffer struct {
	buffer     *VulkanBuffer
	dataSize   uint32
	regionSize uint32
	regions    uint32
}

// uniformRegionSize is the stride between two frame regions.
func uniformRegionSize(dataSize uint32, minAlignment vk.DeviceSize) uint32 {
	return uint32(metadata.GetAligned(uint64(dataSize), uint64(minAlignment)))
}

func (vc *VulkanContext) NewUniformBuffer(dataSize, regions uint32) (UniformBuffer, error) {
	regionSize := uniformRegionSize(dataSize, vc.Device.Properties.Limits.MinUniformBufferOffsetAlignment)
	buffer, err := NewBuffer(vc, vk.DeviceSize(regionSize*regions), vk.BufferUsageFlags(vk.BufferUsageUniformBufferBit), hostVisible())
	if err != nil {
		return nil, err
	}
	if _, err := buffer.Map(); err != nil {
		buffer.Destroy()
		return nil, err
	}
	return &VulkanUniformBuffer{
		buffer:     buffer,
		dataSize:   dataSize,
		regionSize: regionSize,
		regions:    regions,
	}, nil
}

func (u *VulkanUniformBuffer) WriteAt(frame uint32, data []byte) error {
	if frame >= u.regions {
		return logged(fmt.Errorf("uniform region %d out of range (%d regions)", frame, u.regions))
	}
	if uint32(len(data)) > u.dataSize {
		return logged(fmt.Errorf("uniform data of %d bytes exceeds region of %d bytes", len(data), u.dataSize))
	}
	return u.buffer.Write(vk.DeviceSize(u.DynamicOffset(frame)), data)
}

func (u *VulkanUniformBuffer) DynamicOffset(frame uint32) uint32 {
	return frame * u.regionSize
}

// DescriptorInfo covers a single region; the dynamic offset selects which one.
func (u *VulkanUniformBuffer) DescriptorInfo() vk.DescriptorBufferInfo {
	return vk.DescriptorBufferInfo{
		Buffer: u.buffer.Handle,
		Offset: 0,
		Range:  vk.DeviceSize(u.dataSize),
	}
}

func (u *VulkanUniformBuffer) Destroy() {
	u.buffer.Destroy()
}

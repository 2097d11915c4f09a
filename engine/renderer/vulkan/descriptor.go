package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkr/engine/core"
)

/**
 * @brief Binding of the per-entity uniform buffer, addressed with a dynamic offset per frame slot.
 */
const UniformBinding uint32 = 0

/**
 * @brief Binding of the material texture sampler.
 */
const SamplerBinding uint32 = 1

// SceneSetLayoutBindings is the layout shared by the mesh, hair and skybox pipelines.
func SceneSetLayoutBindings() []vk.DescriptorSetLayoutBinding {
	return []vk.DescriptorSetLayoutBinding{
		{
			Binding:         UniformBinding,
			DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit),
		},
		{
			Binding:         SamplerBinding,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}
}

// OverlaySetLayoutBindings holds only the HUD texture.
func OverlaySetLayoutBindings() []vk.DescriptorSetLayoutBinding {
	return []vk.DescriptorSetLayoutBinding{
		{
			Binding:         0,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			DescriptorCount: 1,
			StageFlags:      vk.ShaderStageFlags(vk.ShaderStageFragmentBit),
		},
	}
}

func (vc *VulkanContext) CreateDescriptorSetLayout(bindings []vk.DescriptorSetLayoutBinding) (vk.DescriptorSetLayout, error) {
	layoutInfo := vk.DescriptorSetLayoutCreateInfo{
		SType:        vk.StructureTypeDescriptorSetLayoutCreateInfo,
		BindingCount: uint32(len(bindings)),
		PBindings:    bindings,
	}
	var layout vk.DescriptorSetLayout
	if err := vc.locks.SafeCall(DescriptorManagement, func() error {
		if res := vk.CreateDescriptorSetLayout(vc.Device.LogicalDevice, &layoutInfo, vc.Allocator, &layout); res != vk.Success {
			return vulkanError("vkCreateDescriptorSetLayout", res)
		}
		return nil
	}); err != nil {
		return vk.NullDescriptorSetLayout, err
	}
	return layout, nil
}

func (vc *VulkanContext) DestroyDescriptorSetLayout(layout vk.DescriptorSetLayout) {
	if layout == vk.NullDescriptorSetLayout {
		return
	}
	vc.locks.SafeCall(DescriptorManagement, func() error {
		vk.DestroyDescriptorSetLayout(vc.Device.LogicalDevice, layout, vc.Allocator)
		return nil
	})
}

// DescriptorCapacity is the bookkeeping side of a fixed size descriptor pool.
type DescriptorCapacity struct {
	MaxSets   uint32
	Allocated uint32
}

// PoolSizes gives every descriptor type of the bindings room for MaxSets sets.
func (c DescriptorCapacity) PoolSizes(bindings []vk.DescriptorSetLayoutBinding) []vk.DescriptorPoolSize {
	counts := make(map[vk.DescriptorType]uint32)
	order := make([]vk.DescriptorType, 0, len(bindings))
	for _, b := range bindings {
		if _, ok := counts[b.DescriptorType]; !ok {
			order = append(order, b.DescriptorType)
		}
		counts[b.DescriptorType] += b.DescriptorCount * c.MaxSets
	}
	sizes := make([]vk.DescriptorPoolSize, 0, len(order))
	for _, t := range order {
		sizes = append(sizes, vk.DescriptorPoolSize{Type: t, DescriptorCount: counts[t]})
	}
	return sizes
}

// Reserve claims one set, failing with ErrDescriptorPoolExhausted once the pool is full.
func (c *DescriptorCapacity) Reserve() error {
	if c.Allocated >= c.MaxSets {
		return fmt.Errorf("%d of %d sets in use: %w", c.Allocated, c.MaxSets, core.ErrDescriptorPoolExhausted)
	}
	c.Allocated++
	return nil
}

func (c DescriptorCapacity) Remaining() uint32 {
	return c.MaxSets - c.Allocated
}

// DescriptorAllocator hands out sets of one layout from a pool of fixed capacity.
type DescriptorAllocator interface {
	Allocate() (vk.DescriptorSet, error)
	Capacity() DescriptorCapacity
	Destroy()
}

type VulkanDescriptorAllocator struct {
	Pool     vk.DescriptorPool
	Layout   vk.DescriptorSetLayout
	capacity DescriptorCapacity
	context  *VulkanContext
}

func (vc *VulkanContext) NewDescriptorAllocator(layout vk.DescriptorSetLayout, bindings []vk.DescriptorSetLayoutBinding, maxSets uint32) (DescriptorAllocator, error) {
	capacity := DescriptorCapacity{MaxSets: maxSets}
	if maxSets == 0 {
		return nil, logged(fmt.Errorf("descriptor pool needs room for at least one set"))
	}
	sizes := capacity.PoolSizes(bindings)

	poolInfo := vk.DescriptorPoolCreateInfo{
		SType:         vk.StructureTypeDescriptorPoolCreateInfo,
		MaxSets:       maxSets,
		PoolSizeCount: uint32(len(sizes)),
		PPoolSizes:    sizes,
	}
	var pool vk.DescriptorPool
	if err := vc.locks.SafeCall(DescriptorManagement, func() error {
		if res := vk.CreateDescriptorPool(vc.Device.LogicalDevice, &poolInfo, vc.Allocator, &pool); res != vk.Success {
			return vulkanError("vkCreateDescriptorPool", res)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &VulkanDescriptorAllocator{
		Pool:     pool,
		Layout:   layout,
		capacity: capacity,
		context:  vc,
	}, nil
}

func (a *VulkanDescriptorAllocator) Allocate() (vk.DescriptorSet, error) {
	var none vk.DescriptorSet
	if err := a.capacity.Reserve(); err != nil {
		return none, logged(err)
	}
	allocInfo := vk.DescriptorSetAllocateInfo{
		SType:              vk.StructureTypeDescriptorSetAllocateInfo,
		DescriptorPool:     a.Pool,
		DescriptorSetCount: 1,
		PSetLayouts:        []vk.DescriptorSetLayout{a.Layout},
	}
	sets := make([]vk.DescriptorSet, 1)
	if err := a.context.locks.SafeCall(DescriptorManagement, func() error {
		res := vk.AllocateDescriptorSets(a.context.Device.LogicalDevice, &allocInfo, &sets[0])
		switch res {
		case vk.Success:
			return nil
		case vk.ErrorOutOfPoolMemory, vk.ErrorFragmentedPool:
			return logged(fmt.Errorf("vkAllocateDescriptorSets: %w", core.ErrDescriptorPoolExhausted))
		default:
			return vulkanError("vkAllocateDescriptorSets", res)
		}
	}); err != nil {
		return none, err
	}
	return sets[0], nil
}

func (a *VulkanDescriptorAllocator) Capacity() DescriptorCapacity {
	return a.capacity
}

// Destroy frees the pool and with it every set allocated from it.
func (a *VulkanDescriptorAllocator) Destroy() {
	if a.Pool == vk.NullDescriptorPool {
		return
	}
	a.context.locks.SafeCall(DescriptorManagement, func() error {
		vk.DestroyDescriptorPool(a.context.Device.LogicalDevice, a.Pool, a.context.Allocator)
		return nil
	})
	a.Pool = vk.NullDescriptorPool
	a.capacity.Allocated = 0
}

// WriteSceneDescriptorSet points a scene set at its uniform buffer and material texture.
func (vc *VulkanContext) WriteSceneDescriptorSet(set vk.DescriptorSet, ubo UniformBuffer, texture *VulkanTexture) {
	writes := []vk.WriteDescriptorSet{
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      UniformBinding,
			DstArrayElement: 0,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeUniformBufferDynamic,
			PBufferInfo:     []vk.DescriptorBufferInfo{ubo.DescriptorInfo()},
		},
		{
			SType:           vk.StructureTypeWriteDescriptorSet,
			DstSet:          set,
			DstBinding:      SamplerBinding,
			DstArrayElement: 0,
			DescriptorCount: 1,
			DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
			PImageInfo:      []vk.DescriptorImageInfo{texture.DescriptorInfo()},
		},
	}
	vc.locks.SafeCall(DescriptorManagement, func() error {
		vk.UpdateDescriptorSets(vc.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)
		return nil
	})
}

// WriteTextureDescriptorSet points binding 0 of set at texture.
func (vc *VulkanContext) WriteTextureDescriptorSet(set vk.DescriptorSet, texture *VulkanTexture) {
	writes := []vk.WriteDescriptorSet{{
		SType:           vk.StructureTypeWriteDescriptorSet,
		DstSet:          set,
		DstBinding:      0,
		DstArrayElement: 0,
		DescriptorCount: 1,
		DescriptorType:  vk.DescriptorTypeCombinedImageSampler,
		PImageInfo:      []vk.DescriptorImageInfo{texture.DescriptorInfo()},
	}}
	vc.locks.SafeCall(DescriptorManagement, func() error {
		vk.UpdateDescriptorSets(vc.Device.LogicalDevice, uint32(len(writes)), writes, 0, nil)
		return nil
	})
}

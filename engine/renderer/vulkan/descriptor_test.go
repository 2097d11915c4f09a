package vulkan

import (
	"errors"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDescriptorCapacityPoolSizes(t *testing.T) {
	// four meshes and the skybox
	capacity := DescriptorCapacity{MaxSets: 5}
	sizes := capacity.PoolSizes(SceneSetLayoutBindings())

	require.Len(t, sizes, 2)
	assert.Equal(t, vk.DescriptorTypeUniformBufferDynamic, sizes[0].Type)
	assert.Equal(t, uint32(5), sizes[0].DescriptorCount)
	assert.Equal(t, vk.DescriptorTypeCombinedImageSampler, sizes[1].Type)
	assert.Equal(t, uint32(5), sizes[1].DescriptorCount)
}

func TestDescriptorCapacityPoolSizesMergesTypes(t *testing.T) {
	bindings := []vk.DescriptorSetLayoutBinding{
		{Binding: 0, DescriptorType: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: 1},
		{Binding: 1, DescriptorType: vk.DescriptorTypeCombinedImageSampler, DescriptorCount: 2},
	}
	sizes := DescriptorCapacity{MaxSets: 3}.PoolSizes(bindings)
	require.Len(t, sizes, 1)
	assert.Equal(t, uint32(9), sizes[0].DescriptorCount)
}

func TestDescriptorCapacityExhaustion(t *testing.T) {
	capacity := DescriptorCapacity{MaxSets: 5}
	for i := 0; i < 5; i++ {
		require.NoError(t, capacity.Reserve())
	}
	assert.Equal(t, uint32(0), capacity.Remaining())

	err := capacity.Reserve()
	require.Error(t, err)
	assert.True(t, errors.Is(err, core.ErrDescriptorPoolExhausted))
	assert.Equal(t, uint32(5), capacity.Allocated)
}

func TestOverlaySetLayoutHasOnlySampler(t *testing.T) {
	bindings := OverlaySetLayoutBindings()
	require.Len(t, bindings, 1)
	assert.Equal(t, vk.DescriptorTypeCombinedImageSampler, bindings[0].DescriptorType)
}

package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionMasks(t *testing.T) {
	upload, err := transitionMasks(vk.ImageLayoutUndefined, vk.ImageLayoutTransferDstOptimal)
	require.NoError(t, err)
	assert.Equal(t, vk.AccessFlags(0), upload.srcAccess)
	assert.Equal(t, vk.AccessFlags(vk.AccessTransferWriteBit), upload.dstAccess)

	sample, err := transitionMasks(vk.ImageLayoutTransferDstOptimal, vk.ImageLayoutShaderReadOnlyOptimal)
	require.NoError(t, err)
	assert.Equal(t, vk.PipelineStageFlags(vk.PipelineStageFragmentShaderBit), sample.dstStage)

	// dynamic textures go back to transfer every frame
	rewrite, err := transitionMasks(vk.ImageLayoutShaderReadOnlyOptimal, vk.ImageLayoutTransferDstOptimal)
	require.NoError(t, err)
	assert.Equal(t, vk.AccessFlags(vk.AccessShaderReadBit), rewrite.srcAccess)

	_, err = transitionMasks(vk.ImageLayoutPresentSrc, vk.ImageLayoutGeneral)
	assert.Error(t, err)
}

func TestImageConfigLayers(t *testing.T) {
	assert.Equal(t, uint32(1), ImageConfig{}.layers())
	assert.Equal(t, uint32(6), ImageConfig{Cube: true}.layers())
}

func TestUniformRegionSize(t *testing.T) {
	assert.Equal(t, uint32(256), uniformRegionSize(208, 256))
	assert.Equal(t, uint32(256), uniformRegionSize(256, 256))
	assert.Equal(t, uint32(208), uniformRegionSize(208, 16))
	assert.Equal(t, uint32(208), uniformRegionSize(208, 0))
}

func TestUniformBufferOffsets(t *testing.T) {
	u := &VulkanUniformBuffer{dataSize: 208, regionSize: 256, regions: 2}
	assert.Equal(t, uint32(0), u.DynamicOffset(0))
	assert.Equal(t, uint32(256), u.DynamicOffset(1))
	assert.Error(t, u.WriteAt(2, nil))
	assert.Error(t, u.WriteAt(0, make([]byte, 209)))
}

func TestOverlayAttachment(t *testing.T) {
	a := overlayAttachment(vk.FormatB8g8r8a8Srgb)
	assert.Equal(t, vk.AttachmentLoadOpLoad, a.LoadOp)
	assert.Equal(t, vk.AttachmentStoreOpStore, a.StoreOp)
	assert.Equal(t, vk.ImageLayoutColorAttachmentOptimal, a.InitialLayout)
	assert.Equal(t, vk.ImageLayoutPresentSrc, a.FinalLayout)
	assert.Equal(t, vk.SampleCount1Bit, a.Samples)

	// the scene pass leaves the image where the overlay pass picks it up
	main := AttachmentSet{ColorFormat: vk.FormatB8g8r8a8Srgb, DepthFormat: vk.FormatD32Sfloat, Samples: vk.SampleCount4Bit}
	descriptions := main.Descriptions()
	assert.Equal(t, a.InitialLayout, descriptions[len(descriptions)-1].FinalLayout)
}

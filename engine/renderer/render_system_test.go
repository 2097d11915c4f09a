package renderer

import (
	"fmt"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
	"github.com/spaghettifunk/vkr/engine/renderer/vulkan"
	"github.com/spaghettifunk/vkr/engine/resources"
	"github.com/spaghettifunk/vkr/engine/scene"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testRenderPass = &vulkan.VulkanRenderPass{Samples: vk.SampleCount1Bit}

func uploadedTexture(name string, textureType metadata.TextureType) *resources.Texture {
	return resources.NewTexture(name, textureType, 1, 1, &vulkan.VulkanTexture{}, nil)
}

func addMesh(s *scene.Scene, name string) scene.Handle {
	h := s.CreateEntity()
	e, _ := s.Entity(h)
	e.Name = name
	e.Mesh = resources.NewMesh(name, &fakeDrawable{name: name}, 3, 3)
	return h
}

func addHair(s *scene.Scene, name string) scene.Handle {
	h := s.CreateEntity()
	e, _ := s.Entity(h)
	e.Name = name
	e.Hair = resources.NewHair(name, &fakeDrawable{name: name}, 1, 2)
	return h
}

func addSkybox(s *scene.Scene) {
	s.Camera().SetSkybox(
		resources.NewMesh("cube", &fakeDrawable{name: "cube"}, 8, 36),
		uploadedTexture("sky", metadata.TextureTypeCube),
	)
}

// newTestScene has meshes mesh0..meshN-1, optionally hair and a skybox, and a
// white default material.
func newTestScene(meshes int, hair, skybox bool) *scene.Scene {
	s := scene.New()
	s.SetDefaultMaterial(resources.NewMaterial("default", uploadedTexture("white", metadata.TextureType2d)))
	for i := 0; i < meshes; i++ {
		addMesh(s, fmt.Sprintf("mesh%d", i))
	}
	if hair {
		addHair(s, "wavy")
	}
	if skybox {
		addSkybox(s)
	}
	return s
}

func newTestRenderSystem(t *testing.T, s *scene.Scene) (*RenderSystem, *fakeFactory) {
	t.Helper()
	factory := &fakeFactory{}
	rs, err := NewRenderSystem(factory, testRenderPass, s, RenderSystemConfig{ShaderDir: "shaders"})
	require.NoError(t, err)
	return rs, factory
}

func TestRenderDrawsMeshesThenHairThenSkybox(t *testing.T) {
	s := newTestScene(2, true, true)
	rs, factory := newTestRenderSystem(t, s)
	cb := &fakeCommandBuffer{}

	require.NoError(t, rs.Render(FrameInfo{FrameIndex: 1, CommandBuffer: cb, Camera: s.Camera()}))

	assert.Equal(t, []string{
		"pipeline:mesh", "draw:mesh0", "draw:mesh1",
		"pipeline:hair", "draw:wavy",
		"pipeline:skybox", "draw:cube",
	}, cb.draws())
	for _, u := range factory.uniforms {
		assert.Equal(t, 1, u.writes[1])
		assert.Zero(t, u.writes[0])
	}
}

func TestRenderSkipsDisabledSkybox(t *testing.T) {
	s := newTestScene(1, false, true)
	rs, _ := newTestRenderSystem(t, s)
	assert.False(t, s.Camera().ToggleSkybox())
	cb := &fakeCommandBuffer{}

	// no camera in the frame falls back to the scene camera
	require.NoError(t, rs.Render(FrameInfo{CommandBuffer: cb}))
	assert.Equal(t, []string{"pipeline:mesh", "draw:mesh0"}, cb.draws())
	// the skybox keeps its set while hidden
	assert.Equal(t, uint32(2), rs.DescriptorSetCount())
}

func TestEntityWithMeshAndHairSharesBinding(t *testing.T) {
	s := newTestScene(0, false, false)
	h := addMesh(s, "head")
	e, _ := s.Entity(h)
	e.Hair = resources.NewHair("wavy", &fakeDrawable{name: "wavy"}, 1, 2)

	rs, factory := newTestRenderSystem(t, s)
	cb := &fakeCommandBuffer{}
	require.NoError(t, rs.Render(FrameInfo{CommandBuffer: cb}))

	assert.Equal(t, uint32(1), rs.DescriptorSetCount())
	require.Len(t, factory.uniforms, 1)
	assert.Equal(t, 2, factory.uniforms[0].writes[0])
	assert.Equal(t, []string{"pipeline:mesh", "draw:head", "pipeline:hair", "draw:wavy"}, cb.draws())
}

func TestDescriptorPoolSizedToScene(t *testing.T) {
	s := newTestScene(4, false, true)
	rs, factory := newTestRenderSystem(t, s)

	assert.Equal(t, uint32(5), rs.DescriptorSetCount())
	require.Len(t, factory.allocators, 1)
	allocator := factory.lastAllocator()
	assert.Equal(t, uint32(5), allocator.capacity.MaxSets)
	assert.Equal(t, uint32(0), allocator.capacity.Remaining())
	assert.Equal(t, 5, factory.setWrites)

	_, err := allocator.Allocate()
	assert.ErrorIs(t, err, core.ErrDescriptorPoolExhausted)
}

func TestEmptySceneNeedsNoDescriptors(t *testing.T) {
	s := newTestScene(0, false, false)
	rs, factory := newTestRenderSystem(t, s)
	cb := &fakeCommandBuffer{}

	assert.Equal(t, uint32(0), rs.DescriptorSetCount())
	assert.Empty(t, factory.allocators)
	require.NoError(t, rs.Render(FrameInfo{CommandBuffer: cb}))
	assert.Empty(t, cb.draws())
	assert.Equal(t, 3, factory.livePipelines)
}

func TestRecreatePipelinesIsIdempotent(t *testing.T) {
	s := newTestScene(2, true, true)
	rs, factory := newTestRenderSystem(t, s)
	before := rs.PipelineConfigs()

	require.NoError(t, rs.RecreatePipelines(testRenderPass, false))
	require.NoError(t, rs.RecreatePipelines(testRenderPass, false))

	assert.Equal(t, 3, factory.livePipelines)
	assert.Equal(t, 3, factory.pipelineBuilds)
	assert.Equal(t, before, rs.PipelineConfigs())
	// descriptors survive a rebuild when the scene did not change
	assert.Len(t, factory.allocators, 1)
	assert.False(t, factory.lastAllocator().destroyed)
	for _, kind := range []metadata.PipelineKind{metadata.PipelineKindMesh, metadata.PipelineKindHair, metadata.PipelineKindSkybox} {
		require.NotNil(t, rs.Pipeline(kind))
		assert.Equal(t, kind, rs.Pipeline(kind).Kind)
	}
}

func TestRecreatePipelinesFollowsSampleCount(t *testing.T) {
	s := newTestScene(1, false, false)
	rs, factory := newTestRenderSystem(t, s)

	msaa := &vulkan.VulkanRenderPass{Samples: vk.SampleCount4Bit}
	require.NoError(t, rs.RecreatePipelines(msaa, true))

	for _, c := range factory.lastConfigs {
		assert.Equal(t, vk.SampleCount4Bit, c.Samples, c.Name)
	}
}

func TestRecreatePipelinesPicksUpNewEntities(t *testing.T) {
	s := newTestScene(1, false, false)
	rs, factory := newTestRenderSystem(t, s)
	addMesh(s, "late")

	// drawn only once it has a descriptor set
	cb := &fakeCommandBuffer{}
	require.NoError(t, rs.Render(FrameInfo{CommandBuffer: cb}))
	assert.Equal(t, []string{"pipeline:mesh", "draw:mesh0"}, cb.draws())

	require.NoError(t, rs.RecreatePipelines(testRenderPass, false))
	assert.Equal(t, uint32(2), rs.DescriptorSetCount())
	require.Len(t, factory.allocators, 2)
	assert.True(t, factory.allocators[0].destroyed)
	assert.True(t, factory.uniforms[0].destroyed)

	cb = &fakeCommandBuffer{}
	require.NoError(t, rs.Render(FrameInfo{CommandBuffer: cb}))
	assert.Equal(t, []string{"pipeline:mesh", "draw:mesh0", "draw:late"}, cb.draws())
}

func TestRecreatePipelinesAfterEntityReplaced(t *testing.T) {
	s := newTestScene(2, false, false)
	rs, factory := newTestRenderSystem(t, s)

	first := s.Entities()[0].Handle
	require.True(t, s.DestroyEntity(first))
	addMesh(s, "replacement")

	// same count, but the new entity has no binding yet
	require.NoError(t, rs.RecreatePipelines(testRenderPass, false))
	assert.Len(t, factory.allocators, 2)

	cb := &fakeCommandBuffer{}
	require.NoError(t, rs.Render(FrameInfo{CommandBuffer: cb}))
	assert.Equal(t, []string{"pipeline:mesh", "draw:mesh1", "draw:replacement"}, cb.draws())
}

func TestMissingMaterialIsInvalidAsset(t *testing.T) {
	s := scene.New()
	addMesh(s, "bare")

	_, err := NewRenderSystem(&fakeFactory{}, testRenderPass, s, RenderSystemConfig{})
	assert.ErrorIs(t, err, core.ErrInvalidAsset)
}

func TestTextureWithoutUploadIsInvalidAsset(t *testing.T) {
	s := scene.New()
	s.SetDefaultMaterial(resources.NewMaterial("cpu", resources.NewTexture("cpu", metadata.TextureType2d, 1, 1, nil, nil)))
	addMesh(s, "head")

	factory := &fakeFactory{}
	_, err := NewRenderSystem(factory, testRenderPass, s, RenderSystemConfig{})
	assert.ErrorIs(t, err, core.ErrInvalidAsset)
	// a failed construction leaves nothing behind
	assert.Equal(t, 0, factory.livePipelines)
	assert.True(t, factory.lastAllocator().destroyed)
}

func TestDestroyReleasesGPUObjects(t *testing.T) {
	s := newTestScene(3, true, true)
	rs, factory := newTestRenderSystem(t, s)
	rs.Destroy()

	assert.Equal(t, 0, factory.livePipelines)
	assert.True(t, factory.lastAllocator().destroyed)
	for _, u := range factory.uniforms {
		assert.True(t, u.destroyed)
	}
	assert.Equal(t, uint32(0), rs.DescriptorSetCount())
}

package renderer

import (
	"fmt"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
	"github.com/spaghettifunk/vkr/engine/renderer/views"
	"github.com/spaghettifunk/vkr/engine/renderer/vulkan"
	"github.com/spaghettifunk/vkr/engine/resources"
	"github.com/spaghettifunk/vkr/engine/scene"
)

type RenderSystemConfig struct {
	ShaderDir string
}

// drawBinding is the descriptor set and uniform buffer of one drawn object.
type drawBinding struct {
	set     vk.DescriptorSet
	uniform vulkan.UniformBuffer
}

/**
 * @brief Records the scene into the main render pass with the mesh, hair and
 * skybox pipelines. Every drawn object owns a descriptor set whose uniform
 * buffer has one region per frame slot.
 */
type RenderSystem struct {
	factory ResourceFactory
	scene   *scene.Scene
	config  RenderSystemConfig

	setBindings    []vk.DescriptorSetLayoutBinding
	setLayout      vk.DescriptorSetLayout
	pipelineLayout vk.PipelineLayout

	pipelineConfigs []*vulkan.PipelineConfig
	pipelines       map[metadata.PipelineKind]*vulkan.VulkanPipeline

	allocator vulkan.DescriptorAllocator
	entities  map[scene.Handle]*drawBinding
	skybox    *drawBinding
	// descriptor sets the current allocator was sized for
	setCount uint32

	world   views.RenderViewWorld
	skyView views.RenderViewSkybox
}

func NewRenderSystem(factory ResourceFactory, renderPass *vulkan.VulkanRenderPass, s *scene.Scene, config RenderSystemConfig) (*RenderSystem, error) {
	rs := &RenderSystem{
		factory:     factory,
		scene:       s,
		config:      config,
		setBindings: vulkan.SceneSetLayoutBindings(),
		pipelines:   make(map[metadata.PipelineKind]*vulkan.VulkanPipeline),
	}

	layout, err := factory.CreateDescriptorSetLayout(rs.setBindings)
	if err != nil {
		return nil, err
	}
	rs.setLayout = layout

	pipelineLayout, err := factory.CreatePipelineLayout([]vk.DescriptorSetLayout{rs.setLayout}, vulkan.PushConstantSize)
	if err != nil {
		rs.Destroy()
		return nil, err
	}
	rs.pipelineLayout = pipelineLayout

	if err := rs.createDescriptors(); err != nil {
		rs.Destroy()
		return nil, err
	}
	if err := rs.createPipelines(renderPass); err != nil {
		rs.Destroy()
		return nil, err
	}
	return rs, nil
}

// requiredSets is one set per renderable entity plus one for the skybox.
func (rs *RenderSystem) requiredSets() uint32 {
	n := uint32(rs.scene.RenderableCount())
	if rs.scene.Camera().HasSkybox() {
		n++
	}
	return n
}

func (rs *RenderSystem) createDescriptors() error {
	rs.setCount = rs.requiredSets()
	rs.entities = make(map[scene.Handle]*drawBinding)
	if rs.setCount == 0 {
		return nil
	}

	allocator, err := rs.factory.NewDescriptorAllocator(rs.setLayout, rs.setBindings, rs.setCount)
	if err != nil {
		return err
	}
	rs.allocator = allocator

	for _, e := range rs.scene.Entities() {
		if !e.Renderable() {
			continue
		}
		material := rs.scene.MaterialOf(e)
		if material == nil {
			return fmt.Errorf("entity %s (%d) has no material and the scene has no default: %w", e.Name, e.Handle.Index, core.ErrInvalidAsset)
		}
		binding, err := rs.newDrawBinding(e.Name, textureOf(material.Diffuse))
		if err != nil {
			return err
		}
		rs.entities[e.Handle] = binding
	}

	if skybox := rs.scene.Camera().Skybox(); skybox != nil {
		binding, err := rs.newDrawBinding("skybox", textureOf(skybox.Texture))
		if err != nil {
			return err
		}
		rs.skybox = binding
	}
	core.LogDebug("Render system allocated %d descriptor sets.", rs.setCount)
	return nil
}

func textureOf(t *resources.Texture) *vulkan.VulkanTexture {
	if t == nil {
		return nil
	}
	return t.GPU
}

func (rs *RenderSystem) newDrawBinding(name string, texture *vulkan.VulkanTexture) (*drawBinding, error) {
	if texture == nil {
		return nil, fmt.Errorf("%s: %w: texture was never uploaded", name, core.ErrInvalidAsset)
	}
	set, err := rs.allocator.Allocate()
	if err != nil {
		return nil, err
	}
	uniform, err := rs.factory.NewUniformBuffer(views.EntityUniformSize, vulkan.MaxFramesInFlight)
	if err != nil {
		return nil, err
	}
	rs.factory.WriteSceneDescriptorSet(set, uniform, texture)
	return &drawBinding{set: set, uniform: uniform}, nil
}

func (rs *RenderSystem) destroyDescriptors() {
	for _, b := range rs.entities {
		b.uniform.Destroy()
	}
	rs.entities = nil
	if rs.skybox != nil {
		rs.skybox.uniform.Destroy()
		rs.skybox = nil
	}
	// sets go with the pool
	if rs.allocator != nil {
		rs.allocator.Destroy()
		rs.allocator = nil
	}
	rs.setCount = 0
}

func (rs *RenderSystem) createPipelines(renderPass *vulkan.VulkanRenderPass) error {
	configs := PipelineSetConfigs(rs.config.ShaderDir, renderPass.Samples)
	pipelines, err := rs.factory.CreateGraphicsPipelines(renderPass, rs.pipelineLayout, configs)
	if err != nil {
		return err
	}
	rs.pipelineConfigs = configs
	for _, p := range pipelines {
		rs.pipelines[p.Kind] = p
	}
	return nil
}

func (rs *RenderSystem) destroyPipelines() {
	for kind, p := range rs.pipelines {
		rs.factory.DestroyPipeline(p)
		delete(rs.pipelines, kind)
	}
}

// RecreatePipelines rebuilds the pipeline set against renderPass. Descriptor
// sets and uniform buffers are kept unless the number of drawn objects changed.
func (rs *RenderSystem) RecreatePipelines(renderPass *vulkan.VulkanRenderPass, useMSAA bool) error {
	rs.destroyPipelines()
	if rs.requiredSets() != rs.setCount || rs.bindingsStale() {
		rs.destroyDescriptors()
		if err := rs.createDescriptors(); err != nil {
			return err
		}
	}
	if err := rs.createPipelines(renderPass); err != nil {
		return err
	}
	core.LogDebug("Render system pipelines rebuilt (msaa %t, %d samples).", useMSAA, renderPass.Samples)
	return nil
}

// bindingsStale reports whether a renderable entity has no descriptor set yet.
func (rs *RenderSystem) bindingsStale() bool {
	for _, e := range rs.scene.Entities() {
		if _, ok := rs.entities[e.Handle]; e.Renderable() && !ok {
			return true
		}
	}
	return false
}

// Render records the meshes, then the hair, then the skybox.
func (rs *RenderSystem) Render(frame FrameInfo) error {
	cb := frame.CommandBuffer
	packet := rs.world.BuildPacket(rs.scene)

	if err := rs.drawPackets(cb, frame.FrameIndex, metadata.PipelineKindMesh, packet.Meshes); err != nil {
		return err
	}
	if err := rs.drawPackets(cb, frame.FrameIndex, metadata.PipelineKindHair, packet.Hair); err != nil {
		return err
	}

	camera := frame.Camera
	if camera == nil {
		camera = rs.scene.Camera()
	}
	sky, ok := rs.skyView.BuildPacket(camera)
	if !ok || rs.skybox == nil {
		return nil
	}
	cb.BindPipeline(rs.pipelines[metadata.PipelineKindSkybox])
	return rs.draw(cb, frame.FrameIndex, rs.skybox, sky)
}

func (rs *RenderSystem) drawPackets(cb vulkan.CommandBuffer, frameIndex uint32, kind metadata.PipelineKind, packets []views.Packet) error {
	if len(packets) == 0 {
		return nil
	}
	cb.BindPipeline(rs.pipelines[kind])
	for i := range packets {
		binding, ok := rs.entities[packets[i].Entity]
		if !ok {
			core.LogDebug("skipping %s: no descriptor set until the pipelines are rebuilt", packets[i].Name)
			continue
		}
		if err := rs.draw(cb, frameIndex, binding, &packets[i]); err != nil {
			return err
		}
	}
	return nil
}

func (rs *RenderSystem) draw(cb vulkan.CommandBuffer, frameIndex uint32, binding *drawBinding, p *views.Packet) error {
	if err := binding.uniform.WriteAt(frameIndex, p.Uniform.Bytes()); err != nil {
		return err
	}
	cb.PushConstants(rs.pipelineLayout, vk.ShaderStageFlags(vk.ShaderStageVertexBit|vk.ShaderStageFragmentBit), views.BrightnessPushConstant(p.Brightness))
	cb.BindDescriptorSet(rs.pipelineLayout, binding.set, binding.uniform.DynamicOffset(frameIndex))
	p.Drawable.Bind(cb)
	p.Drawable.Draw(cb)
	return nil
}

func (rs *RenderSystem) PipelineConfigs() []*vulkan.PipelineConfig {
	return rs.pipelineConfigs
}

func (rs *RenderSystem) Pipeline(kind metadata.PipelineKind) *vulkan.VulkanPipeline {
	return rs.pipelines[kind]
}

// DescriptorSetCount is the number of sets the descriptor pool was sized for.
func (rs *RenderSystem) DescriptorSetCount() uint32 {
	return rs.setCount
}

func (rs *RenderSystem) Destroy() {
	rs.destroyPipelines()
	rs.destroyDescriptors()
	if rs.pipelineLayout != vk.NullPipelineLayout {
		rs.factory.DestroyPipelineLayout(rs.pipelineLayout)
		rs.pipelineLayout = vk.NullPipelineLayout
	}
	if rs.setLayout != vk.NullDescriptorSetLayout {
		rs.factory.DestroyDescriptorSetLayout(rs.setLayout)
		rs.setLayout = vk.NullDescriptorSetLayout
	}
}

package vulkan

import (
	"fmt"
	"unsafe"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
)

/**
 * @brief Holds a compiled Vulkan pipeline. The layout is owned by whoever created it
 * and shared by every pipeline of a set.
 */
type VulkanPipeline struct {
	Name string
	Kind metadata.PipelineKind
	/** @brief The internal pipeline handle. */
	Handle vk.Pipeline
	/** @brief The pipeline layout. */
	PipelineLayout vk.PipelineLayout
}

// PipelineConfig is the fixed function state and shaders of one graphics pipeline.
type PipelineConfig struct {
	Name string
	Kind metadata.PipelineKind

	VertexShader   string
	FragmentShader string

	/** @brief The stride of the vertex data. Zero means no vertex input. */
	Stride     uint32
	Attributes []vk.VertexInputAttributeDescription

	Topology               vk.PrimitiveTopology
	PrimitiveRestartEnable bool

	CullMode  metadata.FaceCullMode
	FrontFace vk.FrontFace
	/** @brief Indicates if this pipeline should use wireframe mode. */
	IsWireframe bool

	DepthTestEnable  bool
	DepthWriteEnable bool
	DepthCompareOp   vk.CompareOp

	BlendEnable bool

	Samples       vk.SampleCountFlagBits
	DynamicStates []vk.DynamicState
}

// DefaultPipelineConfig is an opaque, depth tested triangle list.
func DefaultPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		Topology:               vk.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: false,
		CullMode:               metadata.FaceCullModeFront,
		FrontFace:              vk.FrontFaceClockwise,
		DepthTestEnable:        true,
		DepthWriteEnable:       true,
		DepthCompareOp:         vk.CompareOpLess,
		BlendEnable:            false,
		Samples:                vk.SampleCount1Bit,
		DynamicStates:          []vk.DynamicState{vk.DynamicStateViewport, vk.DynamicStateScissor},
	}
}

func vec3Attribute(location uint32, offset uintptr) vk.VertexInputAttributeDescription {
	return vk.VertexInputAttributeDescription{
		Binding:  0,
		Location: location,
		Format:   vk.FormatR32g32b32Sfloat,
		Offset:   uint32(offset),
	}
}

// MeshVertexAttributes: position, color, normal, uv.
func MeshVertexAttributes() []vk.VertexInputAttributeDescription {
	var v metadata.MeshVertex
	return []vk.VertexInputAttributeDescription{
		vec3Attribute(0, unsafe.Offsetof(v.Position)),
		vec3Attribute(1, unsafe.Offsetof(v.Color)),
		vec3Attribute(2, unsafe.Offsetof(v.Normal)),
		{
			Binding:  0,
			Location: 3,
			Format:   vk.FormatR32g32Sfloat,
			Offset:   uint32(unsafe.Offsetof(v.UV)),
		},
	}
}

// HairVertexAttributes: position, color, direction.
func HairVertexAttributes() []vk.VertexInputAttributeDescription {
	var v metadata.HairVertex
	return []vk.VertexInputAttributeDescription{
		vec3Attribute(0, unsafe.Offsetof(v.Position)),
		vec3Attribute(1, unsafe.Offsetof(v.Color)),
		vec3Attribute(2, unsafe.Offsetof(v.Direction)),
	}
}

func cullModeFlags(mode metadata.FaceCullMode) vk.CullModeFlags {
	switch mode {
	case metadata.FaceCullModeNone:
		return vk.CullModeFlags(vk.CullModeNone)
	case metadata.FaceCullModeFront:
		return vk.CullModeFlags(vk.CullModeFrontBit)
	case metadata.FaceCullModeFrontAndBack:
		return vk.CullModeFlags(vk.CullModeFrontAndBack)
	default:
		return vk.CullModeFlags(vk.CullModeBackBit)
	}
}

func vkBool(b bool) vk.Bool32 {
	if b {
		return vk.True
	}
	return vk.False
}

// validatePipelineConfigs rejects configs that cannot be built against a render pass with the given sample count.
func validatePipelineConfigs(renderPassSamples vk.SampleCountFlagBits, configs []*PipelineConfig) error {
	if len(configs) == 0 {
		return fmt.Errorf("no pipeline configs: %w", core.ErrPipelineCompilation)
	}
	for _, c := range configs {
		if c.Samples != renderPassSamples {
			return fmt.Errorf("pipeline %s uses %d samples, render pass uses %d: %w",
				c.Name, c.Samples, renderPassSamples, core.ErrPipelineCompilation)
		}
		if c.VertexShader == "" || c.FragmentShader == "" {
			return fmt.Errorf("pipeline %s is missing a shader stage: %w", c.Name, core.ErrPipelineCompilation)
		}
		if c.Stride == 0 && len(c.Attributes) > 0 {
			return fmt.Errorf("pipeline %s declares attributes without a stride: %w", c.Name, core.ErrPipelineCompilation)
		}
	}
	return nil
}

// pipelineState keeps the create info sub-structs of one pipeline alive until creation.
type pipelineState struct {
	vertexInput   vk.PipelineVertexInputStateCreateInfo
	inputAssembly vk.PipelineInputAssemblyStateCreateInfo
	viewport      vk.PipelineViewportStateCreateInfo
	rasterizer    vk.PipelineRasterizationStateCreateInfo
	multisampling vk.PipelineMultisampleStateCreateInfo
	depthStencil  vk.PipelineDepthStencilStateCreateInfo
	colorBlend    vk.PipelineColorBlendStateCreateInfo
	dynamic       vk.PipelineDynamicStateCreateInfo
}

func newPipelineState(config *PipelineConfig) *pipelineState {
	s := &pipelineState{}

	s.vertexInput = vk.PipelineVertexInputStateCreateInfo{
		SType: vk.StructureTypePipelineVertexInputStateCreateInfo,
	}
	if config.Stride > 0 {
		s.vertexInput.VertexBindingDescriptionCount = 1
		s.vertexInput.PVertexBindingDescriptions = []vk.VertexInputBindingDescription{{
			Binding:   0, // Binding index
			Stride:    config.Stride,
			InputRate: vk.VertexInputRateVertex, // Move to next data entry for each vertex.
		}}
		s.vertexInput.VertexAttributeDescriptionCount = uint32(len(config.Attributes))
		s.vertexInput.PVertexAttributeDescriptions = config.Attributes
	}

	s.inputAssembly = vk.PipelineInputAssemblyStateCreateInfo{
		SType:                  vk.StructureTypePipelineInputAssemblyStateCreateInfo,
		Topology:               config.Topology,
		PrimitiveRestartEnable: vkBool(config.PrimitiveRestartEnable),
	}

	// Viewport and scissor are dynamic, only the counts matter.
	s.viewport = vk.PipelineViewportStateCreateInfo{
		SType:         vk.StructureTypePipelineViewportStateCreateInfo,
		ViewportCount: 1,
		ScissorCount:  1,
	}

	s.rasterizer = vk.PipelineRasterizationStateCreateInfo{
		SType:                   vk.StructureTypePipelineRasterizationStateCreateInfo,
		DepthClampEnable:        vk.False,
		RasterizerDiscardEnable: vk.False,
		PolygonMode:             vk.PolygonModeFill,
		LineWidth:               1.0,
		CullMode:                cullModeFlags(config.CullMode),
		FrontFace:               config.FrontFace,
		DepthBiasEnable:         vk.False,
	}
	if config.IsWireframe {
		s.rasterizer.PolygonMode = vk.PolygonModeLine
	}

	s.multisampling = vk.PipelineMultisampleStateCreateInfo{
		SType:                 vk.StructureTypePipelineMultisampleStateCreateInfo,
		SampleShadingEnable:   vk.False,
		RasterizationSamples:  config.Samples,
		MinSampleShading:      1.0,
		AlphaToCoverageEnable: vk.False,
		AlphaToOneEnable:      vk.False,
	}

	s.depthStencil = vk.PipelineDepthStencilStateCreateInfo{
		SType:                 vk.StructureTypePipelineDepthStencilStateCreateInfo,
		DepthTestEnable:       vkBool(config.DepthTestEnable),
		DepthWriteEnable:      vkBool(config.DepthWriteEnable),
		DepthCompareOp:        config.DepthCompareOp,
		DepthBoundsTestEnable: vk.False,
		StencilTestEnable:     vk.False,
		MinDepthBounds:        0.0,
		MaxDepthBounds:        1.0,
	}

	blendAttachment := vk.PipelineColorBlendAttachmentState{
		BlendEnable: vkBool(config.BlendEnable),
		ColorWriteMask: vk.ColorComponentFlags(vk.ColorComponentRBit | vk.ColorComponentGBit |
			vk.ColorComponentBBit | vk.ColorComponentABit),
	}
	if config.BlendEnable {
		blendAttachment.SrcColorBlendFactor = vk.BlendFactorSrcAlpha
		blendAttachment.DstColorBlendFactor = vk.BlendFactorOneMinusSrcAlpha
		blendAttachment.ColorBlendOp = vk.BlendOpAdd
		blendAttachment.SrcAlphaBlendFactor = vk.BlendFactorOne
		blendAttachment.DstAlphaBlendFactor = vk.BlendFactorZero
		blendAttachment.AlphaBlendOp = vk.BlendOpAdd
	}
	s.colorBlend = vk.PipelineColorBlendStateCreateInfo{
		SType:           vk.StructureTypePipelineColorBlendStateCreateInfo,
		LogicOpEnable:   vk.False,
		LogicOp:         vk.LogicOpCopy,
		AttachmentCount: 1,
		PAttachments:    []vk.PipelineColorBlendAttachmentState{blendAttachment},
	}

	s.dynamic = vk.PipelineDynamicStateCreateInfo{
		SType:             vk.StructureTypePipelineDynamicStateCreateInfo,
		DynamicStateCount: uint32(len(config.DynamicStates)),
		PDynamicStates:    config.DynamicStates,
	}
	return s
}

// CreatePipelineLayout builds a layout over the given set layouts with one push
// constant range visible to the vertex and fragment stages.
func (vc *VulkanContext) CreatePipelineLayout(setLayouts []vk.DescriptorSetLayout, pushConstantSize uint32) (vk.PipelineLayout, error) {
	pipelineLayoutCreateInfo := vk.PipelineLayoutCreateInfo{
		SType:          vk.StructureTypePipelineLayoutCreateInfo,
		SetLayoutCount: uint32(len(setLayouts)),
		PSetLayouts:    setLayouts,
	}
	if pushConstantSize > 0 {
		// NOTE: Vulkan only guarantees 128 bytes with 4-byte alignment.
		if pushConstantSize > 128 || pushConstantSize%4 != 0 {
			return vk.NullPipelineLayout, logged(fmt.Errorf("invalid push constant size %d", pushConstantSize))
		}
		pipelineLayoutCreateInfo.PushConstantRangeCount = 1
		pipelineLayoutCreateInfo.PPushConstantRanges = []vk.PushConstantRange{{
			StageFlags: vk.ShaderStageFlags(vk.ShaderStageVertexBit | vk.ShaderStageFragmentBit),
			Offset:     0,
			Size:       pushConstantSize,
		}}
	}

	var layout vk.PipelineLayout
	if err := vc.locks.SafeCall(PipelineManagement, func() error {
		if res := vk.CreatePipelineLayout(vc.Device.LogicalDevice, &pipelineLayoutCreateInfo, vc.Allocator, &layout); !VulkanResultIsSuccess(res) {
			return vulkanError("vkCreatePipelineLayout", res)
		}
		return nil
	}); err != nil {
		return vk.NullPipelineLayout, err
	}
	return layout, nil
}

func (vc *VulkanContext) DestroyPipelineLayout(layout vk.PipelineLayout) {
	if layout == vk.NullPipelineLayout {
		return
	}
	vc.locks.SafeCall(PipelineManagement, func() error {
		vk.DestroyPipelineLayout(vc.Device.LogicalDevice, layout, vc.Allocator)
		return nil
	})
}

// CreateGraphicsPipelines compiles every config in one batched call. Either all
// pipelines are returned or none, and the error wraps ErrPipelineCompilation.
func (vc *VulkanContext) CreateGraphicsPipelines(renderPass *VulkanRenderPass, layout vk.PipelineLayout, configs []*PipelineConfig) ([]*VulkanPipeline, error) {
	if err := validatePipelineConfigs(renderPass.Samples, configs); err != nil {
		return nil, logged(err)
	}

	var stages []*VulkanShaderStage
	defer func() {
		// Modules are only needed while compiling.
		for _, s := range stages {
			s.Destroy(vc)
		}
	}()

	states := make([]*pipelineState, len(configs))
	createInfos := make([]vk.GraphicsPipelineCreateInfo, len(configs))
	for i, config := range configs {
		vertex, err := vc.NewShaderStage(config.VertexShader, vk.ShaderStageVertexBit)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w: %w", config.Name, core.ErrPipelineCompilation, err)
		}
		stages = append(stages, vertex)
		fragment, err := vc.NewShaderStage(config.FragmentShader, vk.ShaderStageFragmentBit)
		if err != nil {
			return nil, fmt.Errorf("pipeline %s: %w: %w", config.Name, core.ErrPipelineCompilation, err)
		}
		stages = append(stages, fragment)

		states[i] = newPipelineState(config)
		createInfos[i] = vk.GraphicsPipelineCreateInfo{
			SType:               vk.StructureTypeGraphicsPipelineCreateInfo,
			StageCount:          2,
			PStages:             []vk.PipelineShaderStageCreateInfo{vertex.ShaderStageCreateInfo, fragment.ShaderStageCreateInfo},
			PVertexInputState:   &states[i].vertexInput,
			PInputAssemblyState: &states[i].inputAssembly,
			PViewportState:      &states[i].viewport,
			PRasterizationState: &states[i].rasterizer,
			PMultisampleState:   &states[i].multisampling,
			PDepthStencilState:  &states[i].depthStencil,
			PColorBlendState:    &states[i].colorBlend,
			PDynamicState:       &states[i].dynamic,
			PTessellationState:  nil,
			Layout:              layout,
			RenderPass:          renderPass.Handle,
			Subpass:             0,
			BasePipelineHandle:  vk.NullPipeline,
			BasePipelineIndex:   -1,
		}
	}

	handles := make([]vk.Pipeline, len(configs))
	if err := vc.locks.SafeCall(PipelineManagement, func() error {
		res := vk.CreateGraphicsPipelines(vc.Device.LogicalDevice, vk.NullPipelineCache,
			uint32(len(createInfos)), createInfos, vc.Allocator, handles)
		if !VulkanResultIsSuccess(res) {
			return fmt.Errorf("vkCreateGraphicsPipelines failed with %s: %w", VulkanResultString(res, true), core.ErrPipelineCompilation)
		}
		return nil
	}); err != nil {
		for _, h := range handles {
			if h != vk.NullPipeline {
				vk.DestroyPipeline(vc.Device.LogicalDevice, h, vc.Allocator)
			}
		}
		return nil, logged(err)
	}

	pipelines := make([]*VulkanPipeline, len(configs))
	for i, config := range configs {
		pipelines[i] = &VulkanPipeline{
			Name:           config.Name,
			Kind:           config.Kind,
			Handle:         handles[i],
			PipelineLayout: layout,
		}
		core.LogDebug("Graphics pipeline %s created.", config.Name)
	}
	return pipelines, nil
}

// DestroyPipeline destroys the pipeline only; its layout is shared.
func (vc *VulkanContext) DestroyPipeline(pipeline *VulkanPipeline) {
	if pipeline == nil || pipeline.Handle == vk.NullPipeline {
		return
	}
	vc.locks.SafeCall(PipelineManagement, func() error {
		vk.DestroyPipeline(vc.Device.LogicalDevice, pipeline.Handle, vc.Allocator)
		return nil
	})
	pipeline.Handle = vk.NullPipeline
}

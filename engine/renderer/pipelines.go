package renderer

import (
	"path/filepath"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
	"github.com/spaghettifunk/vkr/engine/renderer/vulkan"
)

func shaderPaths(shaderDir, name string) (vertex, fragment string) {
	return filepath.Join(shaderDir, name+".vert.spv"), filepath.Join(shaderDir, name+".frag.spv")
}

// PipelineSetConfigs describes the mesh, hair and skybox pipelines, in that
// order. They share one layout and are compiled together.
func PipelineSetConfigs(shaderDir string, samples vk.SampleCountFlagBits) []*vulkan.PipelineConfig {
	mesh := vulkan.DefaultPipelineConfig()
	mesh.Name = "mesh"
	mesh.Kind = metadata.PipelineKindMesh
	mesh.VertexShader, mesh.FragmentShader = shaderPaths(shaderDir, "mesh")
	mesh.Stride = metadata.MeshVertexSize
	mesh.Attributes = vulkan.MeshVertexAttributes()
	mesh.Samples = samples

	hair := vulkan.DefaultPipelineConfig()
	hair.Name = "hair"
	hair.Kind = metadata.PipelineKindHair
	hair.VertexShader, hair.FragmentShader = shaderPaths(shaderDir, "hair")
	hair.Stride = metadata.HairVertexSize
	hair.Attributes = vulkan.HairVertexAttributes()
	hair.Topology = vk.PrimitiveTopologyLineStrip
	hair.PrimitiveRestartEnable = true
	hair.CullMode = metadata.FaceCullModeNone
	hair.Samples = samples

	// The skybox shader writes depth 1, so it only passes where nothing else was drawn.
	skybox := vulkan.DefaultPipelineConfig()
	skybox.Name = "skybox"
	skybox.Kind = metadata.PipelineKindSkybox
	skybox.VertexShader, skybox.FragmentShader = shaderPaths(shaderDir, "skybox")
	skybox.Stride = metadata.MeshVertexSize
	skybox.Attributes = vulkan.MeshVertexAttributes()[:1]
	skybox.CullMode = metadata.FaceCullModeBack
	skybox.DepthCompareOp = vk.CompareOpLessOrEqual
	skybox.DepthWriteEnable = false
	skybox.Samples = samples

	return []*vulkan.PipelineConfig{mesh, hair, skybox}
}

// OverlayPipelineConfig draws a textured quad generated in the vertex shader
// over the finished frame.
func OverlayPipelineConfig(shaderDir string) *vulkan.PipelineConfig {
	overlay := vulkan.DefaultPipelineConfig()
	overlay.Name = "overlay"
	overlay.Kind = metadata.PipelineKindOverlay
	overlay.VertexShader, overlay.FragmentShader = shaderPaths(shaderDir, "overlay")
	overlay.CullMode = metadata.FaceCullModeNone
	overlay.DepthTestEnable = false
	overlay.DepthWriteEnable = false
	overlay.BlendEnable = true
	overlay.Samples = vk.SampleCount1Bit
	return overlay
}

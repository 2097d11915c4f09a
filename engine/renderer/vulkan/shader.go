package vulkan

import (
	"fmt"

	vk "github.com/goki/vulkan"
)

/**
 * @brief Represents a single shader stage.
 */
type VulkanShaderStage struct {
	/** @brief The internal shader module Handle. */
	Handle vk.ShaderModule
	/** @brief The pipeline shader stage creation info. */
	ShaderStageCreateInfo vk.PipelineShaderStageCreateInfo
}

var shaderEntryPoint = VulkanSafeString("main")

func (vc *VulkanContext) NewShaderStage(path string, stage vk.ShaderStageFlagBits) (*VulkanShaderStage, error) {
	if vc.ShaderSource == nil {
		return nil, logged(fmt.Errorf("no shader source configured to load %s", path))
	}
	code, err := vc.ShaderSource(path)
	if err != nil {
		return nil, err
	}
	if len(code) == 0 {
		return nil, logged(fmt.Errorf("shader %s is empty", path))
	}

	createInfo := vk.ShaderModuleCreateInfo{
		SType:    vk.StructureTypeShaderModuleCreateInfo,
		CodeSize: uint64(len(code) * 4),
		PCode:    code,
	}
	var module vk.ShaderModule
	if res := vk.CreateShaderModule(vc.Device.LogicalDevice, &createInfo, vc.Allocator, &module); res != vk.Success {
		return nil, vulkanError(fmt.Sprintf("vkCreateShaderModule(%s)", path), res)
	}

	return &VulkanShaderStage{
		Handle: module,
		ShaderStageCreateInfo: vk.PipelineShaderStageCreateInfo{
			SType:  vk.StructureTypePipelineShaderStageCreateInfo,
			Stage:  stage,
			Module: module,
			PName:  shaderEntryPoint,
		},
	}, nil
}

func (s *VulkanShaderStage) Destroy(context *VulkanContext) {
	if s.Handle != vk.NullShaderModule {
		vk.DestroyShaderModule(context.Device.LogicalDevice, s.Handle, context.Allocator)
		s.Handle = vk.NullShaderModule
	}
}

package renderer

import (
	"github.com/spaghettifunk/vkr/engine/renderer/vulkan"
	"github.com/spaghettifunk/vkr/engine/scene"
)

// FrameInfo is handed to the render system for each recorded frame.
type FrameInfo struct {
	FrameIndex    uint32
	FrameTime     float32
	CommandBuffer vulkan.CommandBuffer
	Camera        *scene.Camera
}

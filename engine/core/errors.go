package core

import (
	"errors"
)

var (
	// recoverable, handled by the frame orchestrator
	ErrSurfaceOutOfDate  = errors.New("presentation surface is out of date")
	ErrSurfaceSuboptimal = errors.New("presentation surface is suboptimal")

	ErrSwapchainFormatChanged  = errors.New("swapchain image or depth format has changed")
	ErrPipelineCompilation     = errors.New("graphics pipeline compilation failed")
	ErrDescriptorPoolExhausted = errors.New("descriptor pool exhausted")
	ErrAssetNotFound           = errors.New("asset not found")
	ErrInvalidAsset            = errors.New("invalid asset")
	ErrInvalidConfig           = errors.New("invalid configuration")
)

package vulkan

import (
	"math"

	vk "github.com/goki/vulkan"
	vkmath "github.com/spaghettifunk/vkr/engine/math"
)

// selectImageCount asks for one image more than the minimum; a maximum of zero means unbounded.
func selectImageCount(caps vk.SurfaceCapabilities) uint32 {
	imageCount := caps.MinImageCount + 1
	if caps.MaxImageCount > 0 && imageCount > caps.MaxImageCount {
		imageCount = caps.MaxImageCount
	}
	return imageCount
}

// selectSurfaceFormat prefers BGRA sRGB in the sRGB non-linear color space.
func selectSurfaceFormat(formats []vk.SurfaceFormat) vk.SurfaceFormat {
	for _, f := range formats {
		if f.Format == vk.FormatB8g8r8a8Srgb && f.ColorSpace == vk.ColorSpaceSrgbNonlinear {
			return f
		}
	}
	if len(formats) == 0 {
		return vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	}
	return formats[0]
}

// selectPresentMode prefers MAILBOX; FIFO is always available.
func selectPresentMode(modes []vk.PresentMode, vsync bool) vk.PresentMode {
	if vsync {
		return vk.PresentModeFifo
	}
	for _, m := range modes {
		if m == vk.PresentModeMailbox {
			return m
		}
	}
	return vk.PresentModeFifo
}

// selectExtent uses the surface extent unless the surface lets the swapchain decide.
func selectExtent(caps vk.SurfaceCapabilities, window vk.Extent2D) vk.Extent2D {
	if caps.CurrentExtent.Width != math.MaxUint32 {
		return caps.CurrentExtent
	}
	return vk.Extent2D{
		Width:  vkmath.Clamp(window.Width, caps.MinImageExtent.Width, caps.MaxImageExtent.Width),
		Height: vkmath.Clamp(window.Height, caps.MinImageExtent.Height, caps.MaxImageExtent.Height),
	}
}

// SwapFormats exposes the formats the render pass and pipelines depend on.
type SwapFormats interface {
	ImageFormat() vk.Format
	DepthFormat() vk.Format
}

// CompareSwapFormats reports whether two swapchains can share render pass compatible pipelines.
func CompareSwapFormats(a, b SwapFormats) bool {
	return a.ImageFormat() == b.ImageFormat() && a.DepthFormat() == b.DepthFormat()
}

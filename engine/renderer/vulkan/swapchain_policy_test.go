package vulkan

import (
	"math"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestSelectImageCount(t *testing.T) {
	assert.Equal(t, uint32(3), selectImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 0}))
	assert.Equal(t, uint32(3), selectImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 8}))
	assert.Equal(t, uint32(2), selectImageCount(vk.SurfaceCapabilities{MinImageCount: 2, MaxImageCount: 2}))
}

func TestSelectSurfaceFormat(t *testing.T) {
	unorm := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Unorm, ColorSpace: vk.ColorSpaceSrgbNonlinear}
	srgb := vk.SurfaceFormat{Format: vk.FormatB8g8r8a8Srgb, ColorSpace: vk.ColorSpaceSrgbNonlinear}

	assert.Equal(t, srgb, selectSurfaceFormat([]vk.SurfaceFormat{unorm, srgb}))
	assert.Equal(t, unorm, selectSurfaceFormat([]vk.SurfaceFormat{unorm}))
}

func TestSelectPresentMode(t *testing.T) {
	modes := []vk.PresentMode{vk.PresentModeFifo, vk.PresentModeMailbox}
	assert.Equal(t, vk.PresentModeMailbox, selectPresentMode(modes, false))
	assert.Equal(t, vk.PresentModeFifo, selectPresentMode(modes, true))
	assert.Equal(t, vk.PresentModeFifo, selectPresentMode([]vk.PresentMode{vk.PresentModeImmediate}, false))
}

func TestSelectExtent(t *testing.T) {
	caps := vk.SurfaceCapabilities{
		CurrentExtent:  vk.Extent2D{Width: 640, Height: 480},
		MinImageExtent: vk.Extent2D{Width: 1, Height: 1},
		MaxImageExtent: vk.Extent2D{Width: 4096, Height: 4096},
	}
	assert.Equal(t, vk.Extent2D{Width: 640, Height: 480}, selectExtent(caps, vk.Extent2D{Width: 800, Height: 600}))

	caps.CurrentExtent = vk.Extent2D{Width: math.MaxUint32, Height: math.MaxUint32}
	assert.Equal(t, vk.Extent2D{Width: 800, Height: 600}, selectExtent(caps, vk.Extent2D{Width: 800, Height: 600}))
	assert.Equal(t, vk.Extent2D{Width: 4096, Height: 1}, selectExtent(caps, vk.Extent2D{Width: 10000, Height: 0}))
}

type formats struct{ color, depth vk.Format }

func (f formats) ImageFormat() vk.Format { return f.color }
func (f formats) DepthFormat() vk.Format { return f.depth }

func TestCompareSwapFormats(t *testing.T) {
	a := formats{vk.FormatB8g8r8a8Srgb, vk.FormatD32Sfloat}
	assert.True(t, CompareSwapFormats(a, a))
	assert.False(t, CompareSwapFormats(a, formats{vk.FormatB8g8r8a8Unorm, vk.FormatD32Sfloat}))
	assert.False(t, CompareSwapFormats(a, formats{vk.FormatB8g8r8a8Srgb, vk.FormatD24UnormS8Uint}))
}

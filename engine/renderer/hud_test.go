package renderer

import (
	"bytes"
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pixelAt(pixels []byte, width, x, y int) [4]byte {
	i := (y*width + x) * 4
	return [4]byte{pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]}
}

func countForeground(pixels []byte) int {
	n := 0
	for i := 0; i < len(pixels); i += 4 {
		if pixels[i] > 100 {
			n++
		}
	}
	return n
}

func TestHUDRenderWithBuiltinFace(t *testing.T) {
	hud := NewHUD(hudWidth, hudHeight, nil)

	pixels := hud.Render([]string{"FPS 60 (16.67 ms)"})
	require.Len(t, pixels, hudWidth*hudHeight*4)
	assert.Equal(t, [4]byte{0, 0, 0, 160}, pixelAt(pixels, hudWidth, 0, 0))
	assert.Positive(t, countForeground(pixels))
}

func TestHUDRenderClearsPreviousFrame(t *testing.T) {
	hud := NewHUD(hudWidth, hudHeight, nil)
	hud.Render([]string{"Entities 100 (100 drawn)"})

	pixels := hud.Render(nil)
	assert.Zero(t, countForeground(pixels))
}

func TestHUDStopsAtBottomEdge(t *testing.T) {
	hud := NewHUD(64, 20, nil)
	lines := []string{"one", "two", "three", "four"}

	// only the first line fits, the rest must not wrap into the top
	pixels := hud.Render(lines)
	assert.Len(t, pixels, 64*20*4)
	assert.Positive(t, countForeground(pixels))
}

func TestHUDRenderWithBitmapFont(t *testing.T) {
	// 2x2 white glyph for 'A' at the atlas origin
	atlas := &metadata.ImageData{
		Width:  4,
		Height: 4,
		Layers: [][]byte{bytes.Repeat([]byte{255}, 4*4*4)},
	}
	bitmap := &metadata.FontData{
		FontType:   metadata.FONT_TYPE_BITMAP,
		LineHeight: 4,
		Atlas:      atlas,
		Glyphs: map[int32]*metadata.FontGlyph{
			'A': {Codepoint: 'A', Width: 2, Height: 2, XAdvance: 3},
		},
	}
	hud := NewHUD(32, 16, bitmap)

	pixels := hud.Render([]string{"AA?"})
	assert.Equal(t, [4]byte{255, 255, 255, 255}, pixelAt(pixels, 32, hudPadding, hudPadding))
	assert.Equal(t, [4]byte{255, 255, 255, 255}, pixelAt(pixels, 32, hudPadding+3, hudPadding))
	// the gap between the two glyphs keeps the background
	assert.Equal(t, [4]byte{0, 0, 0, 160}, pixelAt(pixels, 32, hudPadding+2, hudPadding))
	// two 2x2 glyphs, the unknown rune is skipped
	assert.Equal(t, 8, countForeground(pixels))
}

func TestHUDRect(t *testing.T) {
	rect := hudRect(vk.Extent2D{Width: 1024, Height: 768}, 256, 96)
	assert.Equal(t, [4]float32{-1, -1, 0.5, 0.25}, rect)

	// never larger than the screen
	rect = hudRect(vk.Extent2D{Width: 128, Height: 48}, 256, 96)
	assert.Equal(t, [4]float32{-1, -1, 2, 2}, rect)

	assert.Equal(t, [4]float32{}, hudRect(vk.Extent2D{}, 256, 96))
}

package renderer

import (
	"image"
	"image/color"

	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const hudPadding = 6

var (
	hudBackground = color.RGBA{0, 0, 0, 160}
	hudForeground = color.RGBA{230, 230, 230, 255}
)

/**
 * @brief Rasterizes the overlay text on the CPU into an RGBA image that is
 * uploaded as a texture every frame. Uses the BMFont atlas or the system
 * face of the configured font, the built in 7x13 face otherwise.
 */
type HUD struct {
	Width  int
	Height int

	canvas *image.RGBA
	face   font.Face

	bitmap *metadata.FontData
	atlas  *image.RGBA
}

func NewHUD(width, height int, fontData *metadata.FontData) *HUD {
	h := &HUD{
		Width:  width,
		Height: height,
		canvas: image.NewRGBA(image.Rect(0, 0, width, height)),
		face:   basicfont.Face7x13,
	}
	if fontData == nil {
		return h
	}
	if fontData.FontType == metadata.FONT_TYPE_SYSTEM && fontData.System != nil {
		h.face = fontData.System
		return h
	}
	if fontData.Atlas != nil && len(fontData.Atlas.Layers) > 0 {
		h.bitmap = fontData
		h.atlas = &image.RGBA{
			Pix:    fontData.Atlas.Layers[0],
			Stride: int(fontData.Atlas.Width) * metadata.ImageChannelCount,
			Rect:   image.Rect(0, 0, int(fontData.Atlas.Width), int(fontData.Atlas.Height)),
		}
	}
	return h
}

func (h *HUD) lineHeight() int {
	if h.bitmap != nil {
		return int(h.bitmap.LineHeight)
	}
	return h.face.Metrics().Height.Ceil()
}

// Render draws lines top to bottom and returns the RGBA pixels.
func (h *HUD) Render(lines []string) []byte {
	draw.Draw(h.canvas, h.canvas.Bounds(), image.NewUniform(hudBackground), image.Point{}, draw.Src)

	y := hudPadding
	for _, line := range lines {
		if y+h.lineHeight() > h.Height {
			break
		}
		if h.bitmap != nil {
			h.drawBitmapLine(line, hudPadding, y)
		} else {
			h.drawFaceLine(line, hudPadding, y)
		}
		y += h.lineHeight()
	}
	return h.canvas.Pix
}

func (h *HUD) drawFaceLine(line string, x, top int) {
	d := font.Drawer{
		Dst:  h.canvas,
		Src:  image.NewUniform(hudForeground),
		Face: h.face,
		Dot:  fixed.P(x, top+h.face.Metrics().Ascent.Ceil()),
	}
	d.DrawString(line)
}

func (h *HUD) drawBitmapLine(line string, x, top int) {
	var previous int32 = -1
	for _, r := range line {
		glyph, ok := h.bitmap.Glyphs[r]
		if !ok {
			continue
		}
		if previous >= 0 {
			x += int(h.bitmap.Kerning(previous, r))
		}
		dst := image.Rect(0, 0, int(glyph.Width), int(glyph.Height)).
			Add(image.Pt(x+int(glyph.XOffset), top+int(glyph.YOffset)))
		draw.Draw(h.canvas, dst, h.atlas, image.Pt(int(glyph.X), int(glyph.Y)), draw.Over)
		x += int(glyph.XAdvance)
		previous = r
	}
}

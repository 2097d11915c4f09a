package metadata

import "golang.org/x/image/font"

type FontType int

const (
	FONT_TYPE_BITMAP FontType = iota
	FONT_TYPE_SYSTEM
)

type FontGlyph struct {
	Codepoint int32
	X         uint16
	Y         uint16
	Width     uint16
	Height    uint16
	XOffset   int16
	YOffset   int16
	XAdvance  int16
	PageID    uint8
}

type FontKerning struct {
	Codepoint0 int32
	Codepoint1 int32
	Amount     int16
}

// FontData is a glyph atlas plus its metrics. Atlas is RGBA8 sized AtlasSizeX by AtlasSizeY.
// System fonts have no atlas and rasterize through System instead.
type FontData struct {
	FontType   FontType
	Face       string
	Size       uint32
	LineHeight int32
	Baseline   int32
	AtlasSizeX int32
	AtlasSizeY int32
	Atlas      *ImageData
	Glyphs     map[int32]*FontGlyph
	Kernings   []*FontKerning
	System     font.Face
}

// Kerning returns the advance adjustment between two codepoints.
func (f *FontData) Kerning(a, b int32) int16 {
	for _, k := range f.Kernings {
		if k.Codepoint0 == a && k.Codepoint1 == b {
			return k.Amount
		}
	}
	return 0
}

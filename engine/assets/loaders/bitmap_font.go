package loaders

import (
	"path/filepath"

	"github.com/fzipp/bmfont"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
)

// BitmapFontLoader imports AngelCode BMFont text descriptors (.fnt) with a
// single atlas page.
type BitmapFontLoader struct {
	images ImageLoader
}

func (fl *BitmapFontLoader) Load(path string) (interface{}, error) {
	f, err := openAsset(path)
	if err != nil {
		return nil, err
	}
	f.Close()

	name := assetName(path)
	// the atlas goes through the image loader so it ends up RGBA8
	font, err := bmfont.Load(path)
	if err != nil {
		return nil, invalid(name, "cannot read BMFont descriptor: %s", err)
	}
	d := font.Descriptor

	page := ""
	for _, p := range d.Pages {
		if p.ID == 0 {
			page = p.File
		}
	}
	if page == "" {
		return nil, invalid(name, "font has no atlas page 0")
	}
	img, err := fl.images.decodeFile(filepath.Join(filepath.Dir(path), page))
	if err != nil {
		return nil, err
	}
	atlas := ImageDataFrom(name+"_atlas", img)

	out := &metadata.FontData{
		FontType:   metadata.FONT_TYPE_BITMAP,
		Face:       d.Info.Face,
		Size:       uint32(d.Info.Size),
		LineHeight: int32(d.Common.LineHeight),
		Baseline:   int32(d.Common.Base),
		AtlasSizeX: int32(d.Common.ScaleW),
		AtlasSizeY: int32(d.Common.ScaleH),
		Atlas:      atlas,
		Glyphs:     make(map[int32]*metadata.FontGlyph, len(d.Chars)),
		Kernings:   make([]*metadata.FontKerning, 0, len(d.Kerning)),
	}

	skipped := 0
	for _, g := range d.Chars {
		if g.Page != 0 {
			skipped++
			continue
		}
		out.Glyphs[int32(g.ID)] = &metadata.FontGlyph{
			Codepoint: int32(g.ID),
			X:         uint16(g.X),
			Y:         uint16(g.Y),
			Width:     uint16(g.Width),
			Height:    uint16(g.Height),
			XOffset:   int16(g.XOffset),
			YOffset:   int16(g.YOffset),
			XAdvance:  int16(g.XAdvance),
			PageID:    uint8(g.Page),
		}
	}
	if skipped > 0 {
		core.LogWarn("font %s: %d glyphs live on atlas pages other than 0 and are skipped", name, skipped)
	}

	for p, k := range d.Kerning {
		out.Kernings = append(out.Kernings, &metadata.FontKerning{
			Codepoint0: int32(p.First),
			Codepoint1: int32(p.Second),
			Amount:     int16(k.Amount),
		})
	}

	core.LogDebug("Bitmap font %s loaded: %d glyphs, atlas %dx%d.", name, len(out.Glyphs), atlas.Width, atlas.Height)
	return out, nil
}

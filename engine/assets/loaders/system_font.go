package loaders

import (
	"golang.org/x/image/font"
	"golang.org/x/image/font/opentype"

	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
)

const (
	DefaultSystemFontSize = 13
	systemFontDPI         = 72
)

// SystemFontLoader opens TrueType and OpenType fonts as a rasterizing face.
type SystemFontLoader struct {
	// Size in points; zero means DefaultSystemFontSize.
	Size float64
}

func (fl *SystemFontLoader) Load(path string) (interface{}, error) {
	data, err := readBinary(path)
	if err != nil {
		return nil, err
	}
	return fl.Parse(assetName(path), data)
}

func (fl *SystemFontLoader) Parse(name string, data []byte) (*metadata.FontData, error) {
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, invalid(name, "cannot parse font: %s", err)
	}
	size := fl.Size
	if size <= 0 {
		size = DefaultSystemFontSize
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     systemFontDPI,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, invalid(name, "cannot create face: %s", err)
	}

	metrics := face.Metrics()
	core.LogDebug("System font %s loaded at %.0fpt.", name, size)
	return &metadata.FontData{
		FontType:   metadata.FONT_TYPE_SYSTEM,
		Face:       name,
		Size:       uint32(size),
		LineHeight: int32(metrics.Height.Ceil()),
		Baseline:   int32(metrics.Ascent.Ceil()),
		System:     face,
	}, nil
}

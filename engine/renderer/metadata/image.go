package metadata

type TextureType int

const (
	/** @brief A standard two-dimensional texture. */
	TextureType2d TextureType = iota
	/** @brief A cube texture, used for cubemaps. */
	TextureTypeCube
)

/**
 * @brief Decoded image data, always RGBA8.
 * A 2D texture has one layer, a cubemap six (+X, -X, +Y, -Y, +Z, -Z).
 */
type ImageData struct {
	Name   string
	Type   TextureType
	Width  uint32
	Height uint32
	Layers [][]byte
}

const ImageChannelCount = 4

func (i *ImageData) LayerSize() uint64 {
	return uint64(i.Width) * uint64(i.Height) * ImageChannelCount
}

func (i *ImageData) LayerCount() uint32 {
	return uint32(len(i.Layers))
}

// Pixels concatenates every layer, the way a staging buffer expects them.
func (i *ImageData) Pixels() []byte {
	if len(i.Layers) == 1 {
		return i.Layers[0]
	}
	out := make([]byte, 0, i.LayerSize()*uint64(len(i.Layers)))
	for _, l := range i.Layers {
		out = append(out, l...)
	}
	return out
}

// SolidImageData is a 1x1 texture of one color, used as the blank default diffuse.
func SolidImageData(name string, rgba [4]byte) *ImageData {
	return &ImageData{
		Name:   name,
		Type:   TextureType2d,
		Width:  1,
		Height: 1,
		Layers: [][]byte{rgba[:]},
	}
}

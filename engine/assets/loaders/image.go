package loaders

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/anthonynsimon/bild/clone"
	"github.com/anthonynsimon/bild/transform"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// CubemapFaceCount is the number of faces of a cubemap: +X, -X, +Y, -Y, +Z, -Z.
const CubemapFaceCount = 6

// ImageLoader decodes PNG, JPEG, BMP, TIFF and WebP into RGBA8.
type ImageLoader struct{}

func (il *ImageLoader) Load(path string) (interface{}, error) {
	img, err := il.decodeFile(path)
	if err != nil {
		return nil, err
	}
	return ImageDataFrom(assetName(path), img), nil
}

func (il *ImageLoader) decodeFile(path string) (image.Image, error) {
	f, err := openAsset(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return DecodeImage(assetName(path), f)
}

func DecodeImage(name string, r io.Reader) (image.Image, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, invalid(name, "cannot decode image: %s", err)
	}
	if img.Bounds().Empty() {
		return nil, invalid(name, "image is empty")
	}
	core.LogDebug("Image %s decoded (%s, %dx%d).", name, format, img.Bounds().Dx(), img.Bounds().Dy())
	return img, nil
}

// ImageDataFrom converts img into a single layer RGBA8 texture.
func ImageDataFrom(name string, img image.Image) *metadata.ImageData {
	rgba := clone.AsRGBA(img)
	return &metadata.ImageData{
		Name:   name,
		Type:   metadata.TextureType2d,
		Width:  uint32(rgba.Bounds().Dx()),
		Height: uint32(rgba.Bounds().Dy()),
		Layers: [][]byte{rgba.Pix},
	}
}

// LoadCubemap decodes six face images in +X, -X, +Y, -Y, +Z, -Z order.
func (il *ImageLoader) LoadCubemap(name string, faces [CubemapFaceCount]string) (*metadata.ImageData, error) {
	images := make([]image.Image, 0, CubemapFaceCount)
	for _, path := range faces {
		img, err := il.decodeFile(path)
		if err != nil {
			return nil, err
		}
		images = append(images, img)
	}
	return CubemapFrom(name, images)
}

// CubemapFrom builds a six layer texture. Faces must be square; faces whose
// size differs from the first one are resized to match it.
func CubemapFrom(name string, faces []image.Image) (*metadata.ImageData, error) {
	if len(faces) != CubemapFaceCount {
		return nil, invalid(name, "cubemap needs %d faces, got %d", CubemapFaceCount, len(faces))
	}
	size := faces[0].Bounds().Size()
	if size.X != size.Y {
		return nil, invalid(name, "cubemap faces must be square, first face is %dx%d", size.X, size.Y)
	}

	data := &metadata.ImageData{
		Name:   name,
		Type:   metadata.TextureTypeCube,
		Width:  uint32(size.X),
		Height: uint32(size.Y),
		Layers: make([][]byte, 0, CubemapFaceCount),
	}
	for i, face := range faces {
		var rgba *image.RGBA
		if face.Bounds().Size() != size {
			core.LogWarn("cubemap %s: face %d is %dx%d, resizing to %dx%d", name, i, face.Bounds().Dx(), face.Bounds().Dy(), size.X, size.Y)
			rgba = transform.Resize(face, size.X, size.Y, transform.Linear)
		} else {
			rgba = clone.AsRGBA(face)
		}
		data.Layers = append(data.Layers, rgba.Pix)
	}
	return data, nil
}

package assets

import (
	"path/filepath"
	"strings"

	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
	"github.com/spaghettifunk/vkr/engine/resources"
)

type AssetType int

const (
	AssetTypeNone AssetType = iota
	AssetTypeMesh
	AssetTypeHair
	AssetTypeImage
	AssetTypeShader
	AssetTypeFont
)

func (t AssetType) String() string {
	switch t {
	case AssetTypeMesh:
		return "mesh"
	case AssetTypeHair:
		return "hair"
	case AssetTypeImage:
		return "image"
	case AssetTypeShader:
		return "shader"
	case AssetTypeFont:
		return "font"
	}
	return "none"
}

// Loader reads one file into its CPU side representation.
type Loader interface {
	Load(path string) (interface{}, error) // `interface{}` here allows loaders to return various asset types
}

// Uploader turns loaded data into GPU resources. *resources.Factory implements it.
type Uploader interface {
	CreateMesh(data *metadata.MeshData) (*resources.Mesh, error)
	CreateHair(data *metadata.HairData) (*resources.Hair, error)
	CreateTexture(data *metadata.ImageData) (*resources.Texture, error)
}

func determineAssetType(path string) AssetType {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".obj":
		return AssetTypeMesh
	case ".hair":
		return AssetTypeHair
	case ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp":
		return AssetTypeImage
	case ".spv":
		return AssetTypeShader
	case ".fnt", ".ttf", ".otf":
		return AssetTypeFont
	default:
		return AssetTypeNone
	}
}

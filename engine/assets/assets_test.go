package assets

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spaghettifunk/vkr/engine/assets/loaders"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
	"github.com/spaghettifunk/vkr/engine/renderer/vulkan"
	"github.com/spaghettifunk/vkr/engine/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDrawable struct {
	destroyed int
}

func (f *fakeDrawable) Bind(cb vulkan.CommandBuffer) {}
func (f *fakeDrawable) Draw(cb vulkan.CommandBuffer) {}
func (f *fakeDrawable) Destroy()                     { f.destroyed++ }

type fakeUploader struct {
	meshes   []*fakeDrawable
	hair     int
	textures []*metadata.ImageData
}

func (u *fakeUploader) CreateMesh(data *metadata.MeshData) (*resources.Mesh, error) {
	d := &fakeDrawable{}
	u.meshes = append(u.meshes, d)
	return resources.NewMesh(data.Name, d, data.VertexCount(), data.IndexCount()), nil
}

func (u *fakeUploader) CreateHair(data *metadata.HairData) (*resources.Hair, error) {
	u.hair++
	return resources.NewHair(data.Name, &fakeDrawable{}, uint32(data.StrandCount()), uint32(data.PointCount())), nil
}

func (u *fakeUploader) CreateTexture(data *metadata.ImageData) (*resources.Texture, error) {
	u.textures = append(u.textures, data)
	return resources.NewTexture(data.Name, data.Type, data.Width, data.Height, nil, nil), nil
}

const triangleOBJ = "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 3\n"

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, data, 0o644))
}

func pngBytes(t *testing.T, size int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, size, size))
	for i := range img.Pix {
		img.Pix[i] = 255
	}
	img.Set(0, 0, color.NRGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newManager(t *testing.T) (*AssetManager, *fakeUploader, string) {
	t.Helper()
	root := t.TempDir()
	uploader := &fakeUploader{}
	am := NewAssetManager(uploader)
	require.NoError(t, am.Initialize(root))
	t.Cleanup(am.Shutdown)
	return am, uploader, root
}

func TestDetermineAssetType(t *testing.T) {
	assert.Equal(t, AssetTypeMesh, determineAssetType("models/head.obj"))
	assert.Equal(t, AssetTypeHair, determineAssetType("hair/wWavy.hair"))
	assert.Equal(t, AssetTypeImage, determineAssetType("sky/px.JPG"))
	assert.Equal(t, AssetTypeShader, determineAssetType("shaders/mesh.vert.spv"))
	assert.Equal(t, AssetTypeFont, determineAssetType("fonts/ui.fnt"))
	assert.Equal(t, AssetTypeFont, determineAssetType("fonts/ui.ttf"))
	assert.Equal(t, AssetTypeNone, determineAssetType("shaders/mesh.vert"))
}

func TestLoadMeshIsSharedByPath(t *testing.T) {
	am, uploader, root := newManager(t)
	writeFile(t, filepath.Join(root, "models", "tri.obj"), []byte(triangleOBJ))

	first, err := am.LoadMesh("models/tri.obj")
	require.NoError(t, err)
	second, err := am.LoadMesh(filepath.Join(root, "models", "tri.obj"))
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Len(t, uploader.meshes, 1)
	// the manager keeps its own reference
	assert.Equal(t, int32(3), first.References())

	info, ok := am.Info("models/tri.obj")
	require.True(t, ok)
	assert.Equal(t, AssetTypeMesh, info.Type)
	assert.NotEqual(t, uuid.Nil, info.ID)
}

func TestReleaseKeepsOutstandingReferences(t *testing.T) {
	am, uploader, root := newManager(t)
	writeFile(t, filepath.Join(root, "tri.obj"), []byte(triangleOBJ))

	mesh, err := am.LoadMesh("tri.obj")
	require.NoError(t, err)

	am.Release("tri.obj")
	_, cached := am.Info("tri.obj")
	assert.False(t, cached)
	assert.Equal(t, 0, uploader.meshes[0].destroyed)

	mesh.Release()
	assert.Equal(t, 1, uploader.meshes[0].destroyed)

	again, err := am.LoadMesh("tri.obj")
	require.NoError(t, err)
	assert.NotSame(t, mesh, again)
	assert.Len(t, uploader.meshes, 2)
	again.Release()
}

func TestShutdownReleasesCache(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "tri.obj"), []byte(triangleOBJ))
	uploader := &fakeUploader{}
	am := NewAssetManager(uploader)
	require.NoError(t, am.Initialize(root))

	mesh, err := am.LoadMesh("tri.obj")
	require.NoError(t, err)
	mesh.Release()
	assert.Equal(t, 0, uploader.meshes[0].destroyed)

	am.Shutdown()
	assert.Equal(t, 1, uploader.meshes[0].destroyed)
	assert.NotPanics(t, am.Shutdown)
}

func TestLoadErrors(t *testing.T) {
	am, _, root := newManager(t)
	writeFile(t, filepath.Join(root, "white.png"), pngBytes(t, 2))

	_, err := am.LoadMesh("missing.obj")
	assert.ErrorIs(t, err, core.ErrAssetNotFound)

	_, err = am.LoadMesh("white.png")
	assert.ErrorIs(t, err, core.ErrInvalidAsset)

	_, err = am.LoadShader("white.png")
	assert.ErrorIs(t, err, core.ErrInvalidAsset)
}

func TestInitializeMissingRoot(t *testing.T) {
	am := NewAssetManager(&fakeUploader{})
	err := am.Initialize(filepath.Join(t.TempDir(), "nope"))
	assert.ErrorIs(t, err, core.ErrAssetNotFound)
}

func TestLoadTextureAndCubemap(t *testing.T) {
	am, uploader, root := newManager(t)
	var faces [loaders.CubemapFaceCount]string
	for i, name := range []string{"px", "nx", "py", "ny", "pz", "nz"} {
		faces[i] = filepath.Join("sky", name+".png")
		writeFile(t, filepath.Join(root, faces[i]), pngBytes(t, 4))
	}

	tex, err := am.LoadTexture(faces[0])
	require.NoError(t, err)
	assert.Equal(t, metadata.TextureType2d, tex.Type)

	cube, err := am.LoadCubemap("sky", faces)
	require.NoError(t, err)
	again, err := am.LoadCubemap("sky", faces)
	require.NoError(t, err)
	assert.Same(t, cube, again)
	require.Len(t, uploader.textures, 2)
	assert.Equal(t, metadata.TextureTypeCube, uploader.textures[1].Type)

	_, ok := am.Info("cubemap:sky")
	assert.True(t, ok)
}

func TestLoadShaderRereadsFile(t *testing.T) {
	am, _, root := newManager(t)
	path := filepath.Join(root, "shaders", "mesh.vert.spv")
	writeFile(t, path, []byte{0x03, 0x02, 0x23, 0x07, 1, 0, 0, 0})

	code, err := am.LoadShader("shaders/mesh.vert.spv")
	require.NoError(t, err)
	assert.Equal(t, []uint32{loaders.SpirvMagic, 1}, code)

	writeFile(t, path, []byte{0x03, 0x02, 0x23, 0x07, 2, 0, 0, 0})
	code, err = am.LoadShader("shaders/mesh.vert.spv")
	require.NoError(t, err)
	assert.Equal(t, []uint32{loaders.SpirvMagic, 2}, code)
}

func TestShaderChangesAreReported(t *testing.T) {
	am, _, root := newManager(t)
	dir := filepath.Join(root, "shaders")

	// new directories are picked up while running
	require.NoError(t, os.MkdirAll(dir, 0o755))
	time.Sleep(100 * time.Millisecond)
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("ignored"))
	writeFile(t, filepath.Join(dir, "hair.frag.spv"), []byte{0x03, 0x02, 0x23, 0x07})

	select {
	case path := <-am.ShaderChanges():
		assert.Equal(t, filepath.Join(dir, "hair.frag.spv"), path)
	case <-time.After(5 * time.Second):
		t.Fatal("no shader change reported")
	}
}

func TestPreloadFillsCache(t *testing.T) {
	am, uploader, root := newManager(t)
	writeFile(t, filepath.Join(root, "a.obj"), []byte(triangleOBJ))
	writeFile(t, filepath.Join(root, "b.obj"), []byte(triangleOBJ))
	writeFile(t, filepath.Join(root, "white.png"), pngBytes(t, 2))

	require.NoError(t, am.Preload([]string{"a.obj", "b.obj", "white.png"}))
	assert.Len(t, uploader.meshes, 2)
	assert.Len(t, uploader.textures, 1)

	mesh, err := am.LoadMesh("a.obj")
	require.NoError(t, err)
	assert.Len(t, uploader.meshes, 2)
	assert.Equal(t, int32(2), mesh.References())
	mesh.Release()
}

func TestPreloadJoinsErrors(t *testing.T) {
	am, uploader, root := newManager(t)
	writeFile(t, filepath.Join(root, "a.obj"), []byte(triangleOBJ))

	err := am.Preload([]string{"a.obj", "missing.obj", "font.ttf"})
	assert.ErrorIs(t, err, core.ErrAssetNotFound)
	assert.ErrorIs(t, err, core.ErrInvalidAsset)
	assert.Len(t, uploader.meshes, 1)
}

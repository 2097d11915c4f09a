package assets

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spaghettifunk/vkr/engine/assets/loaders"
	"github.com/spaghettifunk/vkr/engine/core"
	"github.com/spaghettifunk/vkr/engine/math"
	"github.com/spaghettifunk/vkr/engine/renderer/metadata"
	"github.com/spaghettifunk/vkr/engine/resources"
)

const shaderChangesBuffer = 16

type AssetInfo struct {
	ID         uuid.UUID
	Path       string
	Type       AssetType
	LastLoaded time.Time
}

type releaser interface {
	Release()
}

type cacheEntry struct {
	info AssetInfo
	// resource is nil for CPU only assets such as fonts.
	resource releaser
	data     interface{}
}

/**
 * @brief Loads assets from disk and shares them by path. The manager keeps one
 * reference to every cached GPU resource and hands out an extra one per load;
 * Release drops the manager's reference so the resource dies with its last user.
 */
type AssetManager struct {
	root     string
	uploader Uploader
	cache    map[string]*cacheEntry
	loaders  map[AssetType]Loader
	images   *loaders.ImageLoader

	mutex sync.Mutex

	done          chan struct{}
	wg            sync.WaitGroup
	fsnotify      *fsnotify.Watcher
	isClosed      bool
	shaderChanges chan string
}

type fontLoader struct {
	bitmap *loaders.BitmapFontLoader
	system *loaders.SystemFontLoader
}

func (fl *fontLoader) Load(path string) (interface{}, error) {
	if filepath.Ext(path) == ".fnt" {
		return fl.bitmap.Load(path)
	}
	return fl.system.Load(path)
}

func NewAssetManager(uploader Uploader) *AssetManager {
	images := &loaders.ImageLoader{}
	am := &AssetManager{
		uploader:      uploader,
		cache:         make(map[string]*cacheEntry),
		loaders:       make(map[AssetType]Loader),
		images:        images,
		done:          make(chan struct{}),
		shaderChanges: make(chan string, shaderChangesBuffer),
	}

	// Register loaders
	am.registerLoader(AssetTypeMesh, &loaders.ModelLoader{})
	am.registerLoader(AssetTypeHair, &loaders.HairLoader{})
	am.registerLoader(AssetTypeImage, images)
	am.registerLoader(AssetTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(AssetTypeFont, &fontLoader{
		bitmap: &loaders.BitmapFontLoader{},
		system: &loaders.SystemFontLoader{},
	})
	return am
}

// Initialize sets the directory relative paths are resolved against and
// starts watching it for shader changes.
func (am *AssetManager) Initialize(root string) error {
	s, err := os.Stat(root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			err = fmt.Errorf("assets root %s: %w", root, core.ErrAssetNotFound)
		}
		core.LogError(err.Error())
		return err
	}
	if !s.IsDir() {
		err := fmt.Errorf("assets root %s is not a directory: %w", root, core.ErrInvalidConfig)
		core.LogError(err.Error())
		return err
	}
	am.root = filepath.Clean(root)

	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		core.LogError("failed to create file watcher: %s", err)
		return err
	}
	am.fsnotify = fsWatch
	if err := am.watchRecursive(am.root); err != nil {
		am.fsnotify.Close()
		am.fsnotify = nil
		return err
	}

	am.wg.Add(1)
	go am.start()

	core.LogInfo("Asset manager watching %s.", am.root)
	return nil
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType AssetType, loader Loader) {
	am.loaders[assetType] = loader
}

func (am *AssetManager) resolve(path string) string {
	if filepath.IsAbs(path) || am.root == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(am.root, path)
}

// load runs the loader registered for the file's type; it does not touch the cache.
func (am *AssetManager) load(path string, want AssetType) (interface{}, error) {
	if got := determineAssetType(path); got != want {
		err := fmt.Errorf("%s is a %s asset, expected %s: %w", path, got, want, core.ErrInvalidAsset)
		core.LogError(err.Error())
		return nil, err
	}
	loader, exists := am.loaders[want]
	if !exists {
		return nil, fmt.Errorf("no loader registered for asset type: %s", want)
	}
	return loader.Load(path)
}

func (am *AssetManager) store(key string, assetType AssetType, resource releaser, data interface{}) {
	am.cache[key] = &cacheEntry{
		info: AssetInfo{
			ID:         uuid.New(),
			Path:       key,
			Type:       assetType,
			LastLoaded: time.Now(),
		},
		resource: resource,
		data:     data,
	}
}

// LoadMesh returns a new reference to the mesh at path, uploading it on first use.
func (am *AssetManager) LoadMesh(path string) (*resources.Mesh, error) {
	key := am.resolve(path)
	am.mutex.Lock()
	defer am.mutex.Unlock()

	if c, ok := am.cache[key]; ok {
		return c.resource.(*resources.Mesh).Acquire(), nil
	}
	out, err := am.load(key, AssetTypeMesh)
	if err != nil {
		return nil, err
	}
	data := out.(*metadata.MeshData)
	min, max := math.Bounds(data.Positions())
	core.LogDebug("Mesh %s bounds %v .. %v.", data.Name, min, max)

	mesh, err := am.uploader.CreateMesh(data)
	if err != nil {
		return nil, err
	}
	am.store(key, AssetTypeMesh, mesh, nil)
	return mesh.Acquire(), nil
}

// LoadHair returns a new reference to the hair at path, uploading it on first use.
func (am *AssetManager) LoadHair(path string) (*resources.Hair, error) {
	key := am.resolve(path)
	am.mutex.Lock()
	defer am.mutex.Unlock()

	if c, ok := am.cache[key]; ok {
		return c.resource.(*resources.Hair).Acquire(), nil
	}
	out, err := am.load(key, AssetTypeHair)
	if err != nil {
		return nil, err
	}
	hair, err := am.uploader.CreateHair(out.(*metadata.HairData))
	if err != nil {
		return nil, err
	}
	am.store(key, AssetTypeHair, hair, nil)
	return hair.Acquire(), nil
}

func (am *AssetManager) LoadTexture(path string) (*resources.Texture, error) {
	key := am.resolve(path)
	am.mutex.Lock()
	defer am.mutex.Unlock()

	if c, ok := am.cache[key]; ok {
		return c.resource.(*resources.Texture).Acquire(), nil
	}
	out, err := am.load(key, AssetTypeImage)
	if err != nil {
		return nil, err
	}
	texture, err := am.uploader.CreateTexture(out.(*metadata.ImageData))
	if err != nil {
		return nil, err
	}
	am.store(key, AssetTypeImage, texture, nil)
	return texture.Acquire(), nil
}

// LoadCubemap builds a cube texture from six faces in +X, -X, +Y, -Y, +Z, -Z
// order. It is cached under name.
func (am *AssetManager) LoadCubemap(name string, faces [loaders.CubemapFaceCount]string) (*resources.Texture, error) {
	key := "cubemap:" + name
	am.mutex.Lock()
	defer am.mutex.Unlock()

	if c, ok := am.cache[key]; ok {
		return c.resource.(*resources.Texture).Acquire(), nil
	}
	for i := range faces {
		faces[i] = am.resolve(faces[i])
		if got := determineAssetType(faces[i]); got != AssetTypeImage {
			err := fmt.Errorf("cubemap %s face %s is a %s asset: %w", name, faces[i], got, core.ErrInvalidAsset)
			core.LogError(err.Error())
			return nil, err
		}
	}
	data, err := am.images.LoadCubemap(name, faces)
	if err != nil {
		return nil, err
	}
	texture, err := am.uploader.CreateTexture(data)
	if err != nil {
		return nil, err
	}
	am.store(key, AssetTypeImage, texture, nil)
	return texture.Acquire(), nil
}

// Preload decodes meshes, hair and images on worker goroutines, then uploads
// them here and caches them, so later loads of the same paths are cache hits.
// Every path is attempted; the errors are joined.
func (am *AssetManager) Preload(paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	js, err := NewJobSystem(min(runtime.NumCPU(), len(paths)), len(paths))
	if err != nil {
		return err
	}

	keys := make([]string, len(paths))
	decoded := make([]interface{}, len(paths))
	errs := make([]error, len(paths))
	for i, path := range paths {
		keys[i] = am.resolve(path)
		js.Submit(JobTask{
			Run: func() error {
				switch t := determineAssetType(keys[i]); t {
				case AssetTypeMesh, AssetTypeHair, AssetTypeImage:
					out, err := am.load(keys[i], t)
					decoded[i] = out
					return err
				default:
					return fmt.Errorf("%s: cannot preload %s assets: %w", keys[i], t, core.ErrInvalidAsset)
				}
			},
			OnFailure: func(err error) { errs[i] = err },
		})
	}
	js.Shutdown()

	am.mutex.Lock()
	defer am.mutex.Unlock()
	for i, key := range keys {
		if errs[i] != nil {
			continue
		}
		if _, ok := am.cache[key]; ok {
			continue
		}
		var (
			resource releaser
			err      error
		)
		switch data := decoded[i].(type) {
		case *metadata.MeshData:
			resource, err = am.uploader.CreateMesh(data)
		case *metadata.HairData:
			resource, err = am.uploader.CreateHair(data)
		case *metadata.ImageData:
			resource, err = am.uploader.CreateTexture(data)
		}
		if err != nil {
			errs[i] = err
			continue
		}
		am.store(key, determineAssetType(key), resource, nil)
	}
	core.LogDebug("Preloaded %d assets.", len(paths))
	return errors.Join(errs...)
}

// CreateMesh uploads generated geometry. It is not cached.
func (am *AssetManager) CreateMesh(data *metadata.MeshData) (*resources.Mesh, error) {
	return am.uploader.CreateMesh(data)
}

// CreateTexture uploads generated pixels. It is not cached.
func (am *AssetManager) CreateTexture(data *metadata.ImageData) (*resources.Texture, error) {
	return am.uploader.CreateTexture(data)
}

// LoadShader reads SPIR-V from disk every time so rebuilt pipelines pick up
// recompiled shaders. Its signature matches vulkan.ShaderSource.
func (am *AssetManager) LoadShader(path string) ([]uint32, error) {
	out, err := am.load(am.resolve(path), AssetTypeShader)
	if err != nil {
		return nil, err
	}
	return out.([]uint32), nil
}

// LoadFont returns a BMFont (.fnt) or TrueType/OpenType font. Fonts stay on the CPU.
func (am *AssetManager) LoadFont(path string) (*metadata.FontData, error) {
	key := am.resolve(path)
	am.mutex.Lock()
	defer am.mutex.Unlock()

	if c, ok := am.cache[key]; ok {
		return c.data.(*metadata.FontData), nil
	}
	out, err := am.load(key, AssetTypeFont)
	if err != nil {
		return nil, err
	}
	font := out.(*metadata.FontData)
	am.store(key, AssetTypeFont, nil, font)
	return font, nil
}

// Info describes a cached asset. Cubemaps are keyed "cubemap:<name>".
func (am *AssetManager) Info(path string) (AssetInfo, bool) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	c, ok := am.lookup(path)
	if !ok {
		return AssetInfo{}, false
	}
	return c.info, true
}

func (am *AssetManager) lookup(path string) (*cacheEntry, bool) {
	if c, ok := am.cache[path]; ok {
		return c, true
	}
	c, ok := am.cache[am.resolve(path)]
	return c, ok
}

// Release evicts path from the cache and drops the manager's reference.
// Outstanding references stay valid until their owners release them.
func (am *AssetManager) Release(path string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	c, ok := am.lookup(path)
	if !ok {
		core.LogWarn("release of unknown asset %s", path)
		return
	}
	delete(am.cache, c.info.Path)
	if c.resource != nil {
		c.resource.Release()
	}
}

// ShaderChanges receives the path of every SPIR-V file written under the
// assets root. The channel is closed by Shutdown.
func (am *AssetManager) ShaderChanges() <-chan string {
	return am.shaderChanges
}

// Shutdown stops the watcher and releases every cached resource.
func (am *AssetManager) Shutdown() {
	am.mutex.Lock()
	if am.isClosed {
		am.mutex.Unlock()
		return
	}
	am.isClosed = true
	am.mutex.Unlock()

	close(am.done)
	am.wg.Wait()
	close(am.shaderChanges)

	am.mutex.Lock()
	defer am.mutex.Unlock()
	for key, c := range am.cache {
		if c.resource != nil {
			c.resource.Release()
		}
		delete(am.cache, key)
	}
	core.LogInfo("Asset manager shut down.")
}

func (am *AssetManager) start() {
	defer am.wg.Done()
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					am.watchRecursive(e.Name)
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 && determineAssetType(e.Name) == AssetTypeShader {
				am.notifyShader(e.Name)
			}

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			am.fsnotify.Close()
			return
		}
	}
}

func (am *AssetManager) notifyShader(path string) {
	select {
	case am.shaderChanges <- path:
		core.LogDebug("Shader %s changed.", path)
	default:
		core.LogWarn("dropping shader change for %s, reload queue is full", path)
	}
}

// watchRecursive adds path and every directory under it to the watch list.
func (am *AssetManager) watchRecursive(path string) error {
	return filepath.Walk(path, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if err := am.fsnotify.Add(walkPath); err != nil {
				core.LogError("failed to watch %s: %s", walkPath, err)
				return err
			}
		}
		return nil
	})
}

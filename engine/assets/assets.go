package assets

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/qtk/engine/assets/loaders"
	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

/** @brief Paths starting with this prefix are read from the builtin resources. */
const ResourcePrefix = ":"

//go:embed builtin
var builtinFS embed.FS

// Builtin returns the resources compiled into the binary (shaders, default skybox).
func Builtin() fs.FS {
	sub, err := fs.Sub(builtinFS, "builtin")
	if err != nil {
		panic(err)
	}
	return sub
}

type AssetInfo struct {
	Path       string
	Type       metadata.ResourceType
	LastLoaded time.Time
}

/** @brief A change to a watched asset, delivered through Events. */
type AssetEvent struct {
	Path string
	Type metadata.ResourceType
	Op   fsnotify.Op
}

type AssetManager struct {
	assetsDir string
	builtin   fs.FS

	assets  map[string]AssetInfo
	loaders map[metadata.ResourceType]Loader
	models  *loaders.ModelLoader

	mutex sync.RWMutex

	done     chan struct{}
	fsnotify *fsnotify.Watcher
	isClosed bool
	events   chan AssetEvent
}

// NewAssetManager serves files from assetsDir and builtin resources from the embedded set.
func NewAssetManager(assetsDir string) *AssetManager {
	return NewAssetManagerFS(assetsDir, Builtin())
}

func NewAssetManagerFS(assetsDir string, builtin fs.FS) *AssetManager {
	am := &AssetManager{
		assetsDir: assetsDir,
		builtin:   builtin,
		assets:    make(map[string]AssetInfo),
		loaders:   make(map[metadata.ResourceType]Loader),
		models:    loaders.NewModelLoader(),
		events:    make(chan AssetEvent, 64),
		done:      make(chan struct{}),
	}

	am.registerLoader(metadata.ResourceTypeShader, &loaders.ShaderLoader{})
	am.registerLoader(metadata.ResourceTypeImage, &loaders.ImageLoader{})
	am.registerLoader(metadata.ResourceTypeModel, am.models)
	return am
}

// IsResource reports whether p addresses the builtin resources.
func IsResource(p string) bool {
	return strings.HasPrefix(p, ResourcePrefix)
}

func (am *AssetManager) AssetsDir() string {
	return am.assetsDir
}

func (am *AssetManager) Models() *loaders.ModelLoader {
	return am.models
}

/**
 * @brief Resolves a path to the filesystem holding it and the name inside it.
 * ":/shaders/x.vert" maps to the builtin set. Relative paths are looked up in
 * the assets directory first, then in the working directory.
 */
func (am *AssetManager) Resolve(p string) (fs.FS, string, error) {
	if IsResource(p) {
		name := strings.TrimPrefix(strings.TrimPrefix(p, ResourcePrefix), "/")
		name = path.Clean(name)
		if _, err := fs.Stat(am.builtin, name); err != nil {
			return nil, "", fmt.Errorf("%s: %w", p, core.ErrAssetNotFound)
		}
		return am.builtin, name, nil
	}

	full := p
	if !filepath.IsAbs(p) && am.assetsDir != "" {
		candidate := filepath.Join(am.assetsDir, p)
		if _, err := os.Stat(candidate); err == nil {
			full = candidate
		}
	}
	if _, err := os.Stat(full); err != nil {
		return nil, "", fmt.Errorf("%s: %w", p, core.ErrAssetNotFound)
	}
	abs, err := filepath.Abs(full)
	if err != nil {
		return nil, "", err
	}
	return os.DirFS(filepath.Dir(abs)), filepath.Base(abs), nil
}

func (am *AssetManager) Exists(p string) bool {
	_, _, err := am.Resolve(p)
	return err == nil
}

func (am *AssetManager) ReadFile(p string) ([]byte, error) {
	fsys, name, err := am.Resolve(p)
	if err != nil {
		return nil, err
	}
	return fs.ReadFile(fsys, name)
}

// Open opens the file p resolves to. The caller closes it.
func (am *AssetManager) Open(p string) (fs.File, error) {
	fsys, name, err := am.Resolve(p)
	if err != nil {
		return nil, err
	}
	return fsys.Open(name)
}

// Register loaders for each asset type
func (am *AssetManager) registerLoader(assetType metadata.ResourceType, loader Loader) {
	am.loaders[assetType] = loader
}

// LoadAsset resolves p and hands it to the loader registered for resourceType.
func (am *AssetManager) LoadAsset(p string, resourceType metadata.ResourceType, params interface{}) (*metadata.Resource, error) {
	loader, ok := am.loaders[resourceType]
	if !ok {
		return nil, fmt.Errorf("no loader registered for asset type %s: %w", resourceType, core.ErrUnsupportedFormat)
	}
	fsys, name, err := am.Resolve(p)
	if err != nil {
		return nil, err
	}
	res, err := loader.Load(fsys, name, params)
	if err != nil {
		return nil, err
	}
	res.FullPath = p

	am.mutex.Lock()
	am.assets[p] = AssetInfo{Path: p, Type: resourceType, LastLoaded: time.Now()}
	am.mutex.Unlock()
	return res, nil
}

func (am *AssetManager) UnloadAsset(asset *metadata.Resource) error {
	if asset == nil {
		return nil
	}
	if loader, ok := am.loaders[asset.ResourceType]; ok {
		return loader.Unload(asset)
	}
	return nil
}

// Assets lists the known assets of the given type, sorted by path.
func (am *AssetManager) Assets(resourceType metadata.ResourceType) []string {
	am.mutex.RLock()
	defer am.mutex.RUnlock()

	var out []string
	for p, info := range am.assets {
		if info.Type == resourceType {
			out = append(out, p)
		}
	}
	slices.Sort(out)
	return out
}

// Events delivers changes under the watched assets directory. Consumers must
// drain it from the render thread.
func (am *AssetManager) Events() <-chan AssetEvent {
	return am.events
}

// Watch indexes the assets directory and starts reporting changes through Events.
func (am *AssetManager) Watch() error {
	if am.assetsDir == "" {
		return errors.New("no assets directory configured")
	}
	fsWatch, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	am.fsnotify = fsWatch
	if err := am.watchRecursive(am.assetsDir, false); err != nil {
		fsWatch.Close()
		return err
	}
	go am.start()
	return nil
}

// Close stops the watcher, if any.
func (am *AssetManager) Close() error {
	if am.isClosed || am.fsnotify == nil {
		return nil
	}
	am.isClosed = true
	close(am.done)
	return nil
}

func (am *AssetManager) start() {
	for {
		select {
		case e, ok := <-am.fsnotify.Events:
			if !ok {
				return
			}
			s, err := os.Stat(e.Name)
			if err == nil && s != nil && s.IsDir() {
				if e.Op&fsnotify.Create != 0 {
					if err := am.watchRecursive(e.Name, false); err != nil {
						core.LogWarn("watching %s: %s", e.Name, err)
					}
				}
				continue
			}
			if e.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				am.handleFileEvent(e.Name)
			}
			if e.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
				am.removeAsset(e.Name)
			}
			am.publish(AssetEvent{Path: e.Name, Type: determineAssetType(e.Name), Op: e.Op})

		case err, ok := <-am.fsnotify.Errors:
			if !ok {
				return
			}
			core.LogError(err.Error())

		case <-am.done:
			am.fsnotify.Close()
			close(am.events)
			return
		}
	}
}

func (am *AssetManager) publish(e AssetEvent) {
	if e.Type == metadata.ResourceTypeNone {
		return
	}
	select {
	case am.events <- e:
	default:
		core.LogWarn("asset event queue full, dropping %s", e.Path)
	}
}

// watchRecursive adds all directories under the given one to the watch list
// and indexes the files found.
func (am *AssetManager) watchRecursive(root string, unWatch bool) error {
	return filepath.Walk(root, func(walkPath string, fi os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if fi.IsDir() {
			if unWatch {
				return am.fsnotify.Remove(walkPath)
			}
			return am.fsnotify.Add(walkPath)
		}
		am.handleFileEvent(walkPath)
		return nil
	})
}

// Handle the creation or modification of a file
func (am *AssetManager) handleFileEvent(p string) {
	assetType := determineAssetType(p)
	if assetType == metadata.ResourceTypeNone {
		return
	}

	am.mutex.Lock()
	defer am.mutex.Unlock()
	am.assets[p] = AssetInfo{
		Path:       p,
		Type:       assetType,
		LastLoaded: time.Now(),
	}
}

// Remove the asset from the index if it was deleted
func (am *AssetManager) removeAsset(p string) {
	am.mutex.Lock()
	defer am.mutex.Unlock()

	delete(am.assets, p)
}

func determineAssetType(p string) metadata.ResourceType {
	switch strings.ToLower(filepath.Ext(p)) {
	case ".vert", ".frag", ".glsl":
		return metadata.ResourceTypeShader
	case ".png", ".jpg", ".jpeg", ".gif", ".bmp", ".tif", ".tiff", ".webp":
		return metadata.ResourceTypeImage
	case ".mtl":
		return metadata.ResourceTypeMaterial
	case ".obj", ".gltf", ".glb":
		return metadata.ResourceTypeModel
	default:
		return metadata.ResourceTypeNone
	}
}

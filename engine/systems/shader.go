package systems

import (
	"fmt"
	"sync"

	"github.com/spaghettifunk/qtk/engine/assets"
	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/renderer"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

/**
 * @brief Reads shader sources through the asset manager and links programs
 * on the backend. Sources are cached by path until invalidated.
 */
type ShaderSystem struct {
	backend      renderer.Backend
	assetManager *assets.AssetManager

	mutex   sync.Mutex
	sources map[string]string
}

func NewShaderSystem(backend renderer.Backend, am *assets.AssetManager) *ShaderSystem {
	return &ShaderSystem{
		backend:      backend,
		assetManager: am,
		sources:      make(map[string]string),
	}
}

func (ss *ShaderSystem) Backend() renderer.Backend {
	return ss.backend
}

/**
 * @brief Returns the source text for path, reading it on first use.
 */
func (ss *ShaderSystem) Source(path string) (string, error) {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	if src, ok := ss.sources[path]; ok {
		return src, nil
	}
	res, err := ss.assetManager.LoadAsset(path, metadata.ResourceTypeShader, nil)
	if err != nil {
		return "", err
	}
	src := res.Data.(string)
	ss.sources[path] = src
	return src, nil
}

/**
 * @brief Compiles and links the program built from the two shader files.
 * @returns The program, or 0 with an error wrapping core.ErrShaderCompile or
 * core.ErrAssetNotFound. Failures are logged.
 */
func (ss *ShaderSystem) Program(vertexPath, fragmentPath string) (metadata.Program, error) {
	vs, err := ss.Source(vertexPath)
	if err != nil {
		core.LogError("vertex shader '%s': %s", vertexPath, err)
		return 0, err
	}
	fs, err := ss.Source(fragmentPath)
	if err != nil {
		core.LogError("fragment shader '%s': %s", fragmentPath, err)
		return 0, err
	}
	program, err := ss.backend.CreateProgram(vs, fs)
	if err != nil {
		err = fmt.Errorf("linking '%s' + '%s': %w", vertexPath, fragmentPath, err)
		core.LogError(err.Error())
		return 0, err
	}
	return program, nil
}

// Invalidate drops the cached source for path so the next Program call reads
// it again. It reports whether anything was cached.
func (ss *ShaderSystem) Invalidate(path string) bool {
	ss.mutex.Lock()
	defer ss.mutex.Unlock()

	_, ok := ss.sources[path]
	delete(ss.sources, path)
	return ok
}

func (ss *ShaderSystem) Destroy(program metadata.Program) {
	if program != 0 {
		ss.backend.DestroyProgram(program)
	}
}

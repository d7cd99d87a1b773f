package assets

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

func newTestManager(t *testing.T) (*AssetManager, string) {
	dir := t.TempDir()
	builtin := fstest.MapFS{
		"shaders/basic.vert": {Data: []byte("#version 330 core\nvoid main() {}\n")},
	}
	return NewAssetManagerFS(dir, builtin), dir
}

func TestResolveResourcePaths(t *testing.T) {
	am, _ := newTestManager(t)

	assert.True(t, IsResource(":/shaders/basic.vert"))
	assert.False(t, IsResource("shaders/basic.vert"))

	_, name, err := am.Resolve(":/shaders/basic.vert")
	require.NoError(t, err)
	assert.Equal(t, "shaders/basic.vert", name)

	data, err := am.ReadFile(":shaders/basic.vert")
	require.NoError(t, err)
	assert.Contains(t, string(data), "void main")

	_, _, err = am.Resolve(":/shaders/missing.vert")
	assert.ErrorIs(t, err, core.ErrAssetNotFound)
}

func TestResolveAssetsDirectory(t *testing.T) {
	am, dir := newTestManager(t)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "models"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "models", "box.obj"), []byte("v 0 0 0\n"), 0o644))

	fsys, name, err := am.Resolve("models/box.obj")
	require.NoError(t, err)
	assert.Equal(t, "box.obj", name)
	data, err := fs.ReadFile(fsys, name)
	require.NoError(t, err)
	assert.Equal(t, "v 0 0 0\n", string(data))

	assert.True(t, am.Exists("models/box.obj"))
	assert.False(t, am.Exists("models/nothing.obj"))

	_, err = am.ReadFile("models/nothing.obj")
	assert.ErrorIs(t, err, core.ErrAssetNotFound)

	f, err := am.Open("models/box.obj")
	require.NoError(t, err)
	info, err := f.Stat()
	require.NoError(t, err)
	assert.Equal(t, int64(8), info.Size())
	require.NoError(t, f.Close())

	_, err = am.Open("models/nothing.obj")
	assert.ErrorIs(t, err, core.ErrAssetNotFound)
}

func TestLoadAssetIndexesResources(t *testing.T) {
	am, _ := newTestManager(t)

	res, err := am.LoadAsset(":/shaders/basic.vert", metadata.ResourceTypeShader, nil)
	require.NoError(t, err)
	assert.Equal(t, ":/shaders/basic.vert", res.FullPath)
	assert.Equal(t, metadata.ResourceTypeShader, res.ResourceType)
	assert.Equal(t, []string{":/shaders/basic.vert"}, am.Assets(metadata.ResourceTypeShader))
	assert.Empty(t, am.Assets(metadata.ResourceTypeModel))
	assert.NoError(t, am.UnloadAsset(res))

	_, err = am.LoadAsset(":/shaders/basic.vert", metadata.ResourceTypeMaterial, nil)
	assert.ErrorIs(t, err, core.ErrUnsupportedFormat)
}

func TestDetermineAssetType(t *testing.T) {
	cases := map[string]metadata.ResourceType{
		"a/b.vert":     metadata.ResourceTypeShader,
		"c.FRAG":       metadata.ResourceTypeShader,
		"tex.png":      metadata.ResourceTypeImage,
		"tex.webp":     metadata.ResourceTypeImage,
		"mat.mtl":      metadata.ResourceTypeMaterial,
		"model.glb":    metadata.ResourceTypeModel,
		"model.obj":    metadata.ResourceTypeModel,
		"notes.txt":    metadata.ResourceTypeNone,
		"no-extension": metadata.ResourceTypeNone,
	}
	for p, want := range cases {
		assert.Equal(t, want, determineAssetType(p), p)
	}
}

func TestBuiltinResourcesAreEmbedded(t *testing.T) {
	am := NewAssetManager("")
	for _, p := range []string{
		":/shaders/multi-color.vert",
		":/shaders/model-basic.frag",
		":/shaders/skybox.vert",
		":/textures/skybox/right.png",
	} {
		assert.True(t, am.Exists(p), p)
	}
}

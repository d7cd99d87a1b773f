package systems

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/qtk/engine/assets"
	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/renderer/headless"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

const (
	vertexSource   = "#version 330 core\nvoid main() { gl_Position = vec4(0.0); }\n"
	fragmentSource = "#version 330 core\nout vec4 c;\nvoid main() { c = vec4(1.0); }\n"
)

func TestShaderSystemProgram(t *testing.T) {
	builtin := fstest.MapFS{
		"shaders/a.vert":      {Data: []byte(vertexSource)},
		"shaders/a.frag":      {Data: []byte(fragmentSource)},
		"shaders/broken.frag": {Data: []byte("#error nope\n")},
	}
	backend := headless.New()
	ss := NewShaderSystem(backend, assets.NewAssetManagerFS("", builtin))

	p, err := ss.Program(":/shaders/a.vert", ":/shaders/a.frag")
	require.NoError(t, err)
	assert.NotEqual(t, metadata.Program(0), p)
	rec, ok := backend.Program(p)
	require.True(t, ok)
	assert.Equal(t, vertexSource, rec.VertexSource)

	p, err = ss.Program(":/shaders/a.vert", ":/shaders/broken.frag")
	assert.ErrorIs(t, err, core.ErrShaderCompile)
	assert.Equal(t, metadata.Program(0), p)

	p, err = ss.Program(":/shaders/missing.vert", ":/shaders/a.frag")
	assert.ErrorIs(t, err, core.ErrAssetNotFound)
	assert.Equal(t, metadata.Program(0), p)

	assert.Equal(t, 1, backend.LivePrograms())
}

func TestShaderSystemInvalidateRereadsSource(t *testing.T) {
	dir := t.TempDir()
	vert := filepath.Join(dir, "live.vert")
	frag := filepath.Join(dir, "live.frag")
	require.NoError(t, os.WriteFile(vert, []byte(vertexSource), 0o644))
	require.NoError(t, os.WriteFile(frag, []byte(fragmentSource), 0o644))

	ss := NewShaderSystem(headless.New(), assets.NewAssetManagerFS(dir, fstest.MapFS{}))

	src, err := ss.Source("live.vert")
	require.NoError(t, err)
	assert.Equal(t, vertexSource, src)

	edited := vertexSource + "// edited\n"
	require.NoError(t, os.WriteFile(vert, []byte(edited), 0o644))

	// Cached until invalidated.
	src, _ = ss.Source("live.vert")
	assert.Equal(t, vertexSource, src)

	assert.True(t, ss.Invalidate("live.vert"))
	assert.False(t, ss.Invalidate("live.vert"))

	src, err = ss.Source("live.vert")
	require.NoError(t, err)
	assert.Equal(t, edited, src)
}

package systems

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spaghettifunk/qtk/engine/assets"
	"github.com/spaghettifunk/qtk/engine/renderer/headless"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

func solidPNG(t *testing.T, w, h int, c color.RGBA) []byte {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTextureFixture(t *testing.T, js *JobSystem) (*TextureSystem, *headless.Backend) {
	blue := color.RGBA{B: 255, A: 255}
	builtin := fstest.MapFS{
		"textures/small.png": {Data: solidPNG(t, 4, 2, blue)},
		"textures/face4.png": {Data: solidPNG(t, 4, 4, blue)},
		"textures/face8.png": {Data: solidPNG(t, 8, 8, blue)},
		"textures/bad.png":   {Data: []byte("garbage")},
	}
	backend := headless.New()
	am := assets.NewAssetManagerFS(t.TempDir(), builtin)
	return NewTextureSystem(backend, am, js), backend
}

func TestPlaceholderImage(t *testing.T) {
	img := PlaceholderImage()
	size := metadata.PLACEHOLDER_TEXTURE_SIZE
	require.Equal(t, image.Pt(size, size), img.Bounds().Size())
	assert.Equal(t, placeholderBackground, img.RGBAAt(0, 0))
	assert.Equal(t, placeholderBackground, img.RGBAAt(size-1, size-1))

	// The glyph is red and confined to the centered box.
	glyph := image.Rect(43, 25, 85, 103)
	red := 0
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			if img.RGBAAt(x, y) == placeholderGlyph {
				red++
				assert.True(t, image.Pt(x, y).In(glyph), "red pixel outside the glyph box at %d,%d", x, y)
			}
		}
	}
	assert.Greater(t, red, 0)
}

func TestInitImageFallsBackToPlaceholder(t *testing.T) {
	ts, _ := newTextureFixture(t, nil)

	img := ts.InitImage(":/textures/small.png", false, false)
	assert.Equal(t, image.Pt(4, 2), img.Bounds().Size())

	for _, p := range []string{":/textures/missing.png", ":/textures/bad.png"} {
		img := ts.InitImage(p, true, true)
		assert.Equal(t, PlaceholderImage().Pix, img.Pix, p)
	}
}

func TestInitTexture(t *testing.T) {
	ts, backend := newTextureFixture(t, nil)

	tex := ts.InitTexture(":/textures/small.png", false, true)
	require.NotNil(t, tex)
	assert.False(t, tex.IsPlaceholder)
	assert.Equal(t, uint32(4), tex.Width)
	assert.Equal(t, uint32(2), tex.Height)

	rec, ok := backend.Texture(tex.Handle)
	require.True(t, ok)
	assert.Equal(t, metadata.Texture2DSpec(), rec.Spec)
	assert.Equal(t, 1, rec.Faces)

	missing := ts.InitTexture(":/textures/missing.png", false, false)
	require.NotNil(t, missing)
	assert.True(t, missing.IsPlaceholder)
	assert.Equal(t, uint32(metadata.PLACEHOLDER_TEXTURE_SIZE), missing.Width)

	fromImage := ts.InitTextureFromImage("embedded", nil)
	assert.True(t, fromImage.IsPlaceholder)

	assert.Equal(t, 3, ts.LiveTextures())
	ts.Destroy(tex)
	ts.Destroy(tex)
	assert.Equal(t, metadata.TextureHandle(0), tex.Handle)
	assert.Equal(t, 2, ts.LiveTextures())
	assert.Equal(t, 2, backend.LiveTextures())

	require.NoError(t, ts.Shutdown())
	assert.Equal(t, 0, backend.LiveTextures())
}

func TestInitCubeMapReplacesAndResamplesFaces(t *testing.T) {
	js, err := NewJobSystem(3, 6)
	require.NoError(t, err)
	defer js.Shutdown()
	ts, backend := newTextureFixture(t, js)

	cube := ts.InitCubeMap(
		":/textures/face4.png",
		":/textures/face8.png",
		":/textures/missing.png",
		":/textures/face4.png",
		":/textures/bad.png",
		":/textures/face4.png",
	)
	require.NotNil(t, cube)
	assert.Equal(t, metadata.TextureTypeCube, cube.TextureType)
	assert.False(t, cube.IsPlaceholder)
	assert.Equal(t, uint32(4), cube.Width)

	rec, ok := backend.Texture(cube.Handle)
	require.True(t, ok)
	assert.Equal(t, metadata.CubeMapSpec(), rec.Spec)
	require.Len(t, rec.FaceSizes, 6)
	for _, s := range rec.FaceSizes {
		assert.Equal(t, image.Pt(4, 4), s)
	}
}

func TestInitCubeMapAfterJobSystemShutdown(t *testing.T) {
	js, err := NewJobSystem(2, 2)
	require.NoError(t, err)
	require.NoError(t, js.Shutdown())
	ts, backend := newTextureFixture(t, js)

	var cube *metadata.Texture
	require.NotPanics(t, func() {
		cube = ts.InitCubeMap(
			":/textures/face4.png",
			":/textures/face4.png",
			":/textures/face8.png",
			":/textures/face4.png",
			":/textures/face4.png",
			":/textures/face4.png",
		)
	})
	require.NotNil(t, cube)
	assert.False(t, cube.IsPlaceholder)
	rec, ok := backend.Texture(cube.Handle)
	require.True(t, ok)
	require.Len(t, rec.FaceSizes, 6)
	assert.Equal(t, image.Pt(4, 4), rec.FaceSizes[2])
}

func TestInitCubeMapTiledMissing(t *testing.T) {
	ts, backend := newTextureFixture(t, nil)

	cube := ts.InitCubeMapTiled(":/textures/missing.png")
	assert.True(t, cube.IsPlaceholder)
	rec, ok := backend.Texture(cube.Handle)
	require.True(t, ok)
	assert.Equal(t, 6, rec.Faces)
	size := metadata.PLACEHOLDER_TEXTURE_SIZE
	assert.Equal(t, image.Pt(size, size), rec.FaceSizes[5])
}

package systems

import (
	"image"
	"image/color"
	"sync"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/spaghettifunk/qtk/engine/assets"
	"github.com/spaghettifunk/qtk/engine/assets/loaders"
	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/renderer"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

/** @brief Cube map faces in upload order: +X, +Y, +Z, -X, -Y, -Z. */
const (
	CubeFaceRight = iota
	CubeFaceTop
	CubeFaceFront
	CubeFaceLeft
	CubeFaceBottom
	CubeFaceBack
	cubeFaceCount
)

var (
	placeholderBackground = color.RGBA{R: 192, G: 192, B: 192, A: 255}
	placeholderGlyph      = color.RGBA{R: 255, A: 255}
)

// placeholderScale is the magnification of the 7x13 glyph.
const placeholderScale = 6

/**
 * @brief Creates textures and cube maps from image files. Every Init* call
 * returns something drawable: images that cannot be read are replaced by
 * the placeholder.
 */
type TextureSystem struct {
	backend      renderer.Backend
	assetManager *assets.AssetManager
	jobSystem    *JobSystem

	placeholderOnce sync.Once
	placeholder     *image.RGBA

	// live textures, destroyed on Shutdown
	textures map[metadata.TextureHandle]*metadata.Texture
}

// NewTextureSystem creates a texture system. js may be nil, in which case
// cube map faces are decoded on the calling goroutine.
func NewTextureSystem(backend renderer.Backend, am *assets.AssetManager, js *JobSystem) *TextureSystem {
	return &TextureSystem{
		backend:      backend,
		assetManager: am,
		jobSystem:    js,
		textures:     make(map[metadata.TextureHandle]*metadata.Texture),
	}
}

func (ts *TextureSystem) Backend() renderer.Backend {
	return ts.backend
}

/**
 * @brief Generates the image used in place of missing textures: a light gray
 * square with a red question mark in the middle.
 */
func PlaceholderImage() *image.RGBA {
	size := metadata.PLACEHOLDER_TEXTURE_SIZE
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.NewUniform(placeholderBackground), image.Point{}, draw.Src)

	face := basicfont.Face7x13
	glyph := image.NewRGBA(image.Rect(0, 0, face.Advance, face.Height))
	d := &font.Drawer{
		Dst:  glyph,
		Src:  image.NewUniform(placeholderGlyph),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString("?")

	w, h := face.Advance*placeholderScale, face.Height*placeholderScale
	x0, y0 := (size-w)/2, (size-h)/2
	draw.NearestNeighbor.Scale(img, image.Rect(x0, y0, x0+w, y0+h), glyph, glyph.Bounds(), draw.Over, nil)
	return img
}

func (ts *TextureSystem) placeholderImage() *image.RGBA {
	ts.placeholderOnce.Do(func() {
		ts.placeholder = PlaceholderImage()
	})
	// Callers may flip or upload the result; hand out a copy.
	out := image.NewRGBA(ts.placeholder.Bounds())
	copy(out.Pix, ts.placeholder.Pix)
	return out
}

func (ts *TextureSystem) loadImage(path string, flipX, flipY bool) (*image.RGBA, error) {
	res, err := ts.assetManager.LoadAsset(path, metadata.ResourceTypeImage, &loaders.ImageParams{FlipX: flipX, FlipY: flipY})
	if err != nil {
		return nil, err
	}
	defer ts.assetManager.UnloadAsset(res)
	return res.Data.(*image.RGBA), nil
}

/**
 * @brief Decodes the image at path and mirrors it as requested.
 * @returns The decoded image, or the placeholder if the file cannot be read.
 */
func (ts *TextureSystem) InitImage(path string, flipX, flipY bool) *image.RGBA {
	img, _ := ts.initImage(path, flipX, flipY)
	return img
}

func (ts *TextureSystem) initImage(path string, flipX, flipY bool) (*image.RGBA, bool) {
	img, err := ts.loadImage(path, flipX, flipY)
	if err != nil {
		core.LogWarn("could not load image '%s', using placeholder: %s", path, err)
		return ts.placeholderImage(), false
	}
	return img, true
}

/**
 * @brief Loads a 2D texture from path. Never returns nil.
 */
func (ts *TextureSystem) InitTexture(path string, flipX, flipY bool) *metadata.Texture {
	img, ok := ts.initImage(path, flipX, flipY)
	t := ts.InitTextureFromImage(path, img)
	t.IsPlaceholder = !ok
	return t
}

/**
 * @brief Uploads an already decoded image as a 2D texture. A nil image
 * uploads the placeholder.
 */
func (ts *TextureSystem) InitTextureFromImage(name string, img *image.RGBA) *metadata.Texture {
	placeholder := false
	if img == nil {
		img = ts.placeholderImage()
		placeholder = true
	}
	t := &metadata.Texture{
		Handle:        ts.backend.CreateTexture(metadata.Texture2DSpec(), []*image.RGBA{img}),
		TextureType:   metadata.TextureType2d,
		Width:         uint32(img.Bounds().Dx()),
		Height:        uint32(img.Bounds().Dy()),
		Name:          name,
		IsPlaceholder: placeholder,
	}
	ts.textures[t.Handle] = t
	core.LogDebug("created texture '%s' (%dx%d)", name, t.Width, t.Height)
	return t
}

/**
 * @brief Loads a cube map from six images. Faces are decoded concurrently;
 * each face that fails is replaced by the placeholder. Faces that differ in
 * size from the first one are resampled to match it.
 */
func (ts *TextureSystem) InitCubeMap(right, top, front, left, bottom, back string) *metadata.Texture {
	paths := [cubeFaceCount]string{right, top, front, left, bottom, back}
	var faces [cubeFaceCount]*image.RGBA
	var failed [cubeFaceCount]bool

	decode := func(i int) {
		img, ok := ts.initImage(paths[i], false, false)
		faces[i] = img
		failed[i] = !ok
	}

	if ts.jobSystem == nil {
		for i := range paths {
			decode(i)
		}
	} else {
		var wg sync.WaitGroup
		wg.Add(cubeFaceCount)
		for i := range paths {
			err := ts.jobSystem.Submit(JobTask{
				InputParams: i,
				OnStart: func(params interface{}) (interface{}, error) {
					decode(params.(int))
					return nil, nil
				},
				OnCompletionCallback: wg.Done,
			})
			if err != nil {
				// no workers left, decode here
				decode(i)
				wg.Done()
			}
		}
		// The upload below must happen on this goroutine.
		wg.Wait()
	}

	size := faces[0].Bounds().Size()
	allFailed := true
	for i, f := range faces {
		allFailed = allFailed && failed[i]
		if f.Bounds().Size() != size {
			core.LogWarn("cube map face '%s' is %v, resampling to %v", paths[i], f.Bounds().Size(), size)
			faces[i] = resample(f, size)
		}
	}

	t := &metadata.Texture{
		Handle:        ts.backend.CreateTexture(metadata.CubeMapSpec(), faces[:]),
		TextureType:   metadata.TextureTypeCube,
		Width:         uint32(size.X),
		Height:        uint32(size.Y),
		Name:          right,
		IsPlaceholder: allFailed,
	}
	ts.textures[t.Handle] = t
	return t
}

/**
 * @brief Loads a cube map using the same image on all six faces.
 */
func (ts *TextureSystem) InitCubeMapTiled(path string) *metadata.Texture {
	return ts.InitCubeMap(path, path, path, path, path, path)
}

func resample(src *image.RGBA, size image.Point) *image.RGBA {
	dst := image.NewRGBA(image.Rectangle{Max: size})
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// Destroy releases the GPU texture. The struct is left with a zero handle.
func (ts *TextureSystem) Destroy(t *metadata.Texture) {
	if t == nil || t.Handle == 0 {
		return
	}
	ts.backend.DestroyTexture(t.Handle)
	delete(ts.textures, t.Handle)
	t.Handle = 0
}

// LiveTextures returns the number of textures created and not yet destroyed.
func (ts *TextureSystem) LiveTextures() int {
	return len(ts.textures)
}

func (ts *TextureSystem) Shutdown() error {
	for _, t := range ts.textures {
		ts.backend.DestroyTexture(t.Handle)
		t.Handle = 0
	}
	ts.textures = make(map[metadata.TextureHandle]*metadata.Texture)
	return nil
}

package loaders

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"io/fs"
	"path"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/spaghettifunk/qtk/engine/core"
	"github.com/spaghettifunk/qtk/engine/renderer/metadata"
)

/** @brief Parameters for the image loader. */
type ImageParams struct {
	/** @brief Mirror the image horizontally after decoding. */
	FlipX bool
	/** @brief Mirror the image vertically after decoding. */
	FlipY bool
}

type ImageLoader struct{}

func (il *ImageLoader) Load(fsys fs.FS, name string, params interface{}) (*metadata.Resource, error) {
	var p ImageParams
	if typed, ok := params.(*ImageParams); ok && typed != nil {
		p = *typed
	}

	f, err := fsys.Open(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, core.ErrAssetNotFound)
	}
	defer f.Close()

	img, err := DecodeImage(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	FlipImage(img, p.FlipX, p.FlipY)

	return &metadata.Resource{
		Name:         path.Base(name),
		FullPath:     name,
		ResourceType: metadata.ResourceTypeImage,
		DataSize:     uint64(len(img.Pix)),
		Data:         img,
	}, nil
}

func (il *ImageLoader) Unload(*metadata.Resource) error {
	return nil
}

// DecodeImage decodes any registered format (png, jpeg, gif, bmp, tiff, webp) into RGBA.
func DecodeImage(r io.Reader) (*image.RGBA, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("decoding image: %v: %w", err, core.ErrUnsupportedFormat)
	}
	core.LogDebug("decoded %s image %dx%d", format, img.Bounds().Dx(), img.Bounds().Dy())
	return ToRGBA(img), nil
}

// ToRGBA returns img as an *image.RGBA with its origin at (0,0).
func ToRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Bounds().Min == (image.Point{}) {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Bounds(), img, b.Min, draw.Src)
	return rgba
}

// FlipImage mirrors img in place.
func FlipImage(img *image.RGBA, flipX, flipY bool) {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()
	if flipX {
		for y := 0; y < h; y++ {
			row := img.Pix[y*img.Stride : y*img.Stride+w*4]
			for x := 0; x < w/2; x++ {
				l, r := x*4, (w-1-x)*4
				for c := 0; c < 4; c++ {
					row[l+c], row[r+c] = row[r+c], row[l+c]
				}
			}
		}
	}
	if flipY {
		tmp := make([]uint8, w*4)
		for y := 0; y < h/2; y++ {
			top := img.Pix[y*img.Stride : y*img.Stride+w*4]
			bottom := img.Pix[(h-1-y)*img.Stride : (h-1-y)*img.Stride+w*4]
			copy(tmp, top)
			copy(top, bottom)
			copy(bottom, tmp)
		}
	}
}

package scene

import (
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
)

// Texture is an 8-bit RGBA image with tightly packed rows.
type Texture struct {
	Width  int
	Height int
	Pixels []byte
}

func (t *Texture) Size() int {
	return len(t.Pixels)
}

// DecodeTexture decodes any registered image format into RGBA.
func DecodeTexture(r io.Reader) (*Texture, error) {
	src, format, err := image.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "decode image")
	}

	bounds := src.Bounds()
	if bounds.Empty() {
		return nil, errors.Newf("%s image is empty", format)
	}

	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Stride != bounds.Dx()*4 {
		rgba = image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, bounds.Min, draw.Src)
	}

	return &Texture{
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
		Pixels: rgba.Pix,
	}, nil
}

func LoadTexture(path string) (*Texture, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open texture")
	}
	defer file.Close()

	texture, err := DecodeTexture(file)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", path)
	}
	return texture, nil
}

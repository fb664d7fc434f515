package texture

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Decode reads an image in any registered format and returns it as tightly
// packed RGBA, flipped so row 0 is the bottom row as GL expects.
func Decode(r io.Reader) (*image.RGBA, string, error) {
	img, format, err := image.Decode(r)
	if err != nil {
		return nil, "", err
	}
	return toRGBA(img), format, nil
}

// DecodeFile decodes the image stored at path.
func DecodeFile(path string) (*image.RGBA, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rgba, _, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return rgba, nil
}

func toRGBA(img image.Image) *image.RGBA {
	b := img.Bounds()
	flipped := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	src := image.NewRGBA(flipped.Rect)
	draw.Draw(src, src.Rect, img, b.Min, draw.Src)

	rowLen := b.Dx() * 4
	for y := 0; y < b.Dy(); y++ {
		from := src.Pix[y*src.Stride : y*src.Stride+rowLen]
		to := (b.Dy() - 1 - y) * flipped.Stride
		copy(flipped.Pix[to:to+rowLen], from)
	}
	return flipped
}

// Solid returns a 1x1 image of the given color.
func Solid(c color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 1, 1))
	img.SetRGBA(0, 0, c)
	return img
}

// White is bound when a shader samples a texture the material lacks.
func White() *image.RGBA {
	return Solid(color.RGBA{255, 255, 255, 255})
}

// FlatNormal encodes the tangent space normal (0, 0, 1), a neutral normal map.
func FlatNormal() *image.RGBA {
	return Solid(color.RGBA{128, 128, 255, 255})
}

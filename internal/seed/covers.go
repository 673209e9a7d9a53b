package seed

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/chai2010/webp"
	"github.com/google/uuid"
)

const (
	coverWidth  = 480
	coverHeight = 270
)

// coverImage paints a diagonal two-tone gradient.
func coverImage(from, to color.RGBA) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, coverWidth, coverHeight))
	span := coverWidth + coverHeight
	for y := range coverHeight {
		for x := range coverWidth {
			t := float64(x+y) / float64(span)
			img.SetRGBA(x, y, color.RGBA{
				R: mix(from.R, to.R, t),
				G: mix(from.G, to.G, t),
				B: mix(from.B, to.B, t),
				A: 255,
			})
		}
	}
	return img
}

func mix(a, b uint8, t float64) uint8 {
	return uint8(float64(a) + (float64(b)-float64(a))*t)
}

// WriteCover encodes a generated cover as lossy WebP into dir and returns
// the stored file name, in the same shape the uploader produces.
func (f *Factory) WriteCover(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create upload dir: %w", err)
	}

	from := color.RGBA{R: f.faker.Uint8(), G: f.faker.Uint8(), B: f.faker.Uint8(), A: 255}
	to := color.RGBA{R: f.faker.Uint8(), G: f.faker.Uint8(), B: f.faker.Uint8(), A: 255}

	name := fmt.Sprintf("seed-%s.webp", uuid.NewString())
	out, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return "", fmt.Errorf("create cover: %w", err)
	}
	defer out.Close()

	if err := webp.Encode(out, coverImage(from, to), &webp.Options{Quality: 70}); err != nil {
		return "", fmt.Errorf("encode cover: %w", err)
	}
	return name, nil
}

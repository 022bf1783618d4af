package output

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/nfnt/resize"

	"github.com/df07/go-pathtracer/pkg/renderer"
)

// ToNRGBA converts a rendered image to 8-bit RGBA using the same quantization as WritePPM
func ToNRGBA(img *renderer.Image) *image.NRGBA {
	out := image.NewNRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			c := img.At(x, y)
			out.SetNRGBA(x, y, color.NRGBA{
				R: uint8(toByte(c.X)),
				G: uint8(toByte(c.Y)),
				B: uint8(toByte(c.Z)),
				A: 255,
			})
		}
	}
	return out
}

// Thumbnail scales img down to fit within maxWidth x maxHeight, keeping the aspect ratio.
// Images already inside the bounds are returned unscaled.
func Thumbnail(img image.Image, maxWidth, maxHeight uint) image.Image {
	return resize.Thumbnail(maxWidth, maxHeight, img, resize.Bilinear)
}

// Save writes img to path, choosing the format from the extension.
// Parent directories are created as needed.
func Save(path string, img *renderer.Image) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}
	}

	if strings.EqualFold(filepath.Ext(path), ".ppm") {
		return savePPM(path, img)
	}
	return SaveImage(path, ToNRGBA(img))
}

// SaveImage encodes an 8-bit image to path in the format implied by its extension
func SaveImage(path string, img image.Image) error {
	if _, err := imaging.FormatFromFilename(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if err := imaging.Save(img, path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func savePPM(path string, img *renderer.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := WritePPM(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// ThumbnailPath derives the thumbnail file name for an output path, e.g. out.png -> out_thumb.png.
// PPM outputs get a PNG thumbnail.
func ThumbnailPath(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(path, ext)
	if strings.EqualFold(ext, ".ppm") {
		ext = ".png"
	}
	return base + "_thumb" + ext
}

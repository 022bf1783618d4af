package output

import (
	"bufio"
	"fmt"
	"io"

	"github.com/df07/go-pathtracer/pkg/renderer"
)

// toByte quantizes a channel in [0, 0.999] to [0, 255]
func toByte(c float64) int {
	b := int(256 * c)
	switch {
	case b < 0:
		return 0
	case b > 255:
		return 255
	}
	return b
}

// WritePPM writes img as a plain-text P3 image with 256 levels, rows top to bottom
func WritePPM(w io.Writer, img *renderer.Image) error {
	bw := bufio.NewWriter(w)
	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", img.Width, img.Height); err != nil {
		return fmt.Errorf("write ppm header: %w", err)
	}
	for _, c := range img.Pixels {
		if _, err := fmt.Fprintf(bw, "%d %d %d\n", toByte(c.X), toByte(c.Y), toByte(c.Z)); err != nil {
			return fmt.Errorf("write ppm pixel: %w", err)
		}
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write ppm: %w", err)
	}
	return nil
}

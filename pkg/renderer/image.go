package renderer

import (
	"github.com/df07/go-pathtracer/pkg/core"
)

// Image is a row-major grid of gamma-corrected colors with channels in [0, 0.999]
type Image struct {
	Width  int
	Height int
	Pixels []core.Color
}

// NewImage allocates a black image
func NewImage(width, height int) *Image {
	return &Image{
		Width:  width,
		Height: height,
		Pixels: make([]core.Color, width*height),
	}
}

// At returns the color at column x of row y
func (img *Image) At(x, y int) core.Color {
	return img.Pixels[y*img.Width+x]
}

// Set stores the color at column x of row y
func (img *Image) Set(x, y int, c core.Color) {
	img.Pixels[y*img.Width+x] = c
}

package renderer

import (
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// intensity is the range final color channels are clamped to before quantization
var intensity = core.NewInterval(0.000, 0.999)

// LinearToGamma applies the gamma 2 transform; non-positive values map to 0
func LinearToGamma(linear float64) float64 {
	if linear > 0 {
		return math.Sqrt(linear)
	}
	return 0
}

// FinalizeColor gamma-corrects a linear color and clamps each channel to [0, 0.999]
func FinalizeColor(linear core.Color) core.Color {
	return core.NewVec3(
		intensity.Clamp(LinearToGamma(linear.X)),
		intensity.Clamp(LinearToGamma(linear.Y)),
		intensity.Clamp(LinearToGamma(linear.Z)),
	)
}

package renderer

import (
	"math"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
)

func TestPixelStats_Average(t *testing.T) {
	var ps PixelStats
	if got := ps.GetColor(); !got.Equals(core.NewVec3(0, 0, 0)) {
		t.Errorf("Expected black with no samples, got %v", got)
	}

	ps.AddSample(core.NewVec3(1, 0, 0))
	ps.AddSample(core.NewVec3(0, 1, 0))
	ps.AddSample(core.NewVec3(0, 0, 1))
	ps.AddSample(core.NewVec3(1, 1, 1))

	expected := core.NewVec3(0.5, 0.5, 0.5)
	if got := ps.GetColor(); got.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected %v, got %v", expected, got)
	}
	if ps.SampleCount != 4 {
		t.Errorf("Expected 4 samples, got %d", ps.SampleCount)
	}
}

func TestCalculateAverageLuminance(t *testing.T) {
	// Red 0.299, green 0.587, blue 0.114, black 0: average 0.25
	img := NewImage(2, 2)
	img.Set(0, 0, core.NewVec3(1, 0, 0))
	img.Set(1, 0, core.NewVec3(0, 1, 0))
	img.Set(0, 1, core.NewVec3(0, 0, 1))
	img.Set(1, 1, core.NewVec3(0, 0, 0))

	avgLum := CalculateAverageLuminance(img)
	if math.Abs(avgLum-0.25) > 1e-4 {
		t.Errorf("Expected average luminance 0.25, got %f", avgLum)
	}
}

func TestImage_RowMajor(t *testing.T) {
	img := NewImage(3, 2)
	img.Set(2, 1, core.NewVec3(1, 2, 3))

	if !img.Pixels[5].Equals(core.NewVec3(1, 2, 3)) {
		t.Errorf("Expected pixel (2,1) at index 5, got %v", img.Pixels)
	}
	if !img.At(2, 1).Equals(core.NewVec3(1, 2, 3)) || !img.At(1, 1).Equals(core.NewVec3(0, 0, 0)) {
		t.Errorf("At does not read back what Set stored: %v", img.Pixels)
	}
}

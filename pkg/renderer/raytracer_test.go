package renderer

import (
	"context"
	"errors"
	"math"
	"math/rand"
	"sync"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
)

// MockMaterial implements material.Material for testing
type MockMaterial struct {
	scatterFn func(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool)
}

func (m MockMaterial) Scatter(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
	return m.scatterFn(rayIn, hit, sampler)
}

// MockShape implements geometry.Shape for testing
type MockShape struct {
	hitFn func(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool)
}

func (m MockShape) Hit(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
	return m.hitFn(ray, rayT)
}

// testLogger routes raytracer output to the test log
type testLogger struct {
	t *testing.T
}

func (l testLogger) Printf(format string, args ...interface{}) {
	l.t.Logf(format, args...)
}

func newTestRaytracer(t *testing.T, config CameraConfig, world geometry.Shape) *Raytracer {
	t.Helper()
	camera, err := NewCamera(config)
	if err != nil {
		t.Fatalf("Unexpected camera error: %v", err)
	}
	return NewRaytracer(camera, world, DefaultRenderConfig(), testLogger{t})
}

func TestRaytracer_DepthZeroIsBlack(t *testing.T) {
	// A shape that is always hit by a material that always scatters
	always := MockMaterial{
		scatterFn: func(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
			return material.ScatterResult{Scattered: rayIn, Attenuation: core.NewVec3(1, 1, 1)}, true
		},
	}
	shape := MockShape{
		hitFn: func(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
			return &material.HitRecord{T: 1, Normal: core.NewVec3(0, 1, 0), Material: always}, true
		},
	}
	sampler := core.NewRandomSampler(rand.New(rand.NewSource(42)))
	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1))

	for _, world := range []geometry.Shape{shape, geometry.NewList()} {
		raytracer := newTestRaytracer(t, testCameraConfig(), world)
		if color := raytracer.RayColor(ray, 0, sampler); !color.Equals(core.NewVec3(0, 0, 0)) {
			t.Errorf("Expected black at depth 0, got %v", color)
		}
	}
}

func TestRaytracer_DepthExhaustionIsBlack(t *testing.T) {
	// A perfect white mirror that traps the ray forever
	mirror := MockMaterial{
		scatterFn: func(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
			return material.ScatterResult{Scattered: rayIn, Attenuation: core.NewVec3(1, 1, 1)}, true
		},
	}
	calls := 0
	shape := MockShape{
		hitFn: func(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
			calls++
			return &material.HitRecord{T: 1, Material: mirror}, true
		},
	}

	raytracer := newTestRaytracer(t, testCameraConfig(), shape)
	color := raytracer.RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), 7, core.NewSeededSampler(1))

	if !color.Equals(core.NewVec3(0, 0, 0)) {
		t.Errorf("Expected black once depth is exhausted, got %v", color)
	}
	if calls != 7 {
		t.Errorf("Expected 7 intersection queries, got %d", calls)
	}
}

func TestRaytracer_RecursiveAttenuation(t *testing.T) {
	attenuation := core.NewVec3(0.8, 0.5, 0.2)
	mat := MockMaterial{
		scatterFn: func(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
			// Scatter straight up into the sky
			return material.ScatterResult{
				Scattered:   core.NewRay(hit.Point, core.NewVec3(0, 1, 0)),
				Attenuation: attenuation,
			}, true
		},
	}
	shape := MockShape{
		hitFn: func(ray core.Ray, rayT core.Interval) (*material.HitRecord, bool) {
			if rayT.Min != shadowAcneEpsilon || !math.IsInf(rayT.Max, 1) {
				t.Errorf("Unexpected query interval %v", rayT)
			}
			// Only the initial downward ray hits
			if ray.Direction.Y < 0 {
				return &material.HitRecord{T: 1, Normal: core.NewVec3(0, 1, 0), Material: mat}, true
			}
			return nil, false
		},
	}

	raytracer := newTestRaytracer(t, testCameraConfig(), shape)
	color := raytracer.RayColor(core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0)), 5, core.NewSeededSampler(1))

	// Straight up is the pure sky color
	expected := attenuation.MultiplyVec(core.NewVec3(0.5, 0.7, 1.0))
	if color.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected %v, got %v", expected, color)
	}
}

func TestRaytracer_AbsorbedIsBlack(t *testing.T) {
	absorbing := MockMaterial{
		scatterFn: func(rayIn core.Ray, hit material.HitRecord, sampler core.Sampler) (material.ScatterResult, bool) {
			return material.ScatterResult{}, false
		},
	}
	world := geometry.NewList(geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, absorbing))

	raytracer := newTestRaytracer(t, testCameraConfig(), world)
	color := raytracer.RayColor(core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, -1)), 5, core.NewSeededSampler(1))
	if !color.Equals(core.NewVec3(0, 0, 0)) {
		t.Errorf("Expected black for absorbed ray, got %v", color)
	}
}

func TestBackgroundColor(t *testing.T) {
	tests := []struct {
		name      string
		direction core.Vec3
		expected  core.Vec3
	}{
		{"straight up", core.NewVec3(0, 1, 0), core.NewVec3(0.5, 0.7, 1.0)},
		{"straight down", core.NewVec3(0, -3, 0), core.NewVec3(1, 1, 1)},
		{"horizon", core.NewVec3(0, 0, -1), core.NewVec3(0.75, 0.85, 1.0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			color := BackgroundColor(core.NewRay(core.NewVec3(0, 0, 0), tt.direction))
			if color.Subtract(tt.expected).Length() > 1e-12 {
				t.Errorf("Expected %v, got %v", tt.expected, color)
			}
		})
	}
}

func TestRaytracer_EmptySceneIsBackground(t *testing.T) {
	config := testCameraConfig()
	config.ImageWidth = 16
	config.SamplesPerPixel = 1
	raytracer := newTestRaytracer(t, config, geometry.NewList())

	sampler := core.NewSeededSampler(3)
	for k := 0; k < 50; k++ {
		ray := raytracer.camera.GetRay(k%16, k%8, sampler)
		if got := raytracer.RayColor(ray, 10, sampler); !got.Equals(BackgroundColor(ray)) {
			t.Fatalf("Expected background %v, got %v", BackgroundColor(ray), got)
		}
	}

	img, _, err := raytracer.Render(context.Background())
	if err != nil {
		t.Fatalf("Unexpected render error: %v", err)
	}

	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			// Both gradient endpoints have a full blue channel
			if c := img.At(x, y); c.Z != 0.999 {
				t.Fatalf("Pixel (%d,%d) blue channel should clamp to 0.999, got %f", x, y, c.Z)
			}
		}
	}

	// Rays towards the top of the image point up, so they are less white
	if img.At(0, 0).X >= img.At(0, img.Height-1).X {
		t.Errorf("Top row %v should be bluer than bottom row %v", img.At(0, 0), img.At(0, img.Height-1))
	}
}

func TestRaytracer_RenderDeterministicAcrossWorkers(t *testing.T) {
	config := testCameraConfig()
	config.ImageWidth = 24
	config.SamplesPerPixel = 3
	config.MaxDepth = 5

	world := geometry.NewList(
		geometry.NewSphere(core.NewVec3(0, -100.5, -1), 100, material.NewLambertian(core.NewVec3(0.8, 0.8, 0))),
		geometry.NewSphere(core.NewVec3(0, 0, -1.2), 0.5, material.NewLambertian(core.NewVec3(0.1, 0.2, 0.5))),
		geometry.NewSphere(core.NewVec3(-1, 0, -1), 0.5, material.NewDielectric(1.5)),
		geometry.NewSphere(core.NewVec3(1, 0, -1), 0.5, material.NewMetal(core.NewVec3(0.8, 0.6, 0.2), 1.0)),
	)

	camera, err := NewCamera(config)
	if err != nil {
		t.Fatalf("Unexpected camera error: %v", err)
	}

	render := func(workers int) *Image {
		raytracer := NewRaytracer(camera, world, RenderConfig{NumWorkers: workers, Seed: 7}, testLogger{t})
		img, stats, err := raytracer.Render(context.Background())
		if err != nil {
			t.Fatalf("Unexpected render error: %v", err)
		}
		if stats.RowsCompleted != img.Height {
			t.Errorf("Expected %d rows completed, got %d", img.Height, stats.RowsCompleted)
		}
		if stats.TotalSamples != img.Width*img.Height*config.SamplesPerPixel {
			t.Errorf("Unexpected sample total %d", stats.TotalSamples)
		}
		return img
	}

	single := render(1)
	parallel := render(4)

	for i := range single.Pixels {
		c := single.Pixels[i]
		if !c.Equals(parallel.Pixels[i]) {
			t.Fatalf("Pixel %d differs between worker counts: %v vs %v", i, c, parallel.Pixels[i])
		}
		for _, channel := range []float64{c.X, c.Y, c.Z} {
			if channel < 0 || channel > 0.999 || math.IsNaN(channel) {
				t.Fatalf("Pixel %d channel %f outside [0, 0.999]", i, channel)
			}
		}
	}
}

func TestRaytracer_RenderProgress(t *testing.T) {
	config := testCameraConfig()
	config.ImageWidth = 8
	config.SamplesPerPixel = 1
	raytracer := newTestRaytracer(t, config, geometry.NewList())

	last := 0
	calls := 0
	raytracer.SetProgressCallback(func(rowsDone, totalRows int) {
		calls++
		if rowsDone < last {
			t.Errorf("Progress went backwards: %d after %d", rowsDone, last)
		}
		if totalRows != 4 {
			t.Errorf("Expected 4 total rows, got %d", totalRows)
		}
		last = rowsDone
	})

	_, stats, err := raytracer.Render(context.Background())
	if err != nil {
		t.Fatalf("Unexpected render error: %v", err)
	}
	if calls != 4 || stats.RowsCompleted != 4 || last != 4 {
		t.Errorf("Expected 4 progress calls and 4 rows, got %d calls and %d rows", calls, stats.RowsCompleted)
	}
}

func TestRaytracer_RenderCancelled(t *testing.T) {
	config := testCameraConfig()
	config.ImageWidth = 8
	raytracer := newTestRaytracer(t, config, geometry.NewList())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	img, stats, err := raytracer.Render(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("Expected context.Canceled, got %v", err)
	}
	if img == nil || stats.RowsCompleted != 0 {
		t.Errorf("Expected an empty partial image, got %d completed rows", stats.RowsCompleted)
	}
}

func TestRaytracer_ConcurrentRendersKeepSeparateCounts(t *testing.T) {
	config := testCameraConfig()
	config.ImageWidth = 32
	config.SamplesPerPixel = 2
	config.MaxDepth = 3
	world := geometry.NewList(
		geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5))),
	)
	raytracer := newTestRaytracer(t, config, world)

	const renders = 4
	images := make([]*Image, renders)
	stats := make([]RenderStats, renders)
	errs := make([]error, renders)

	var wg sync.WaitGroup
	for k := 0; k < renders; k++ {
		wg.Add(1)
		go func(k int) {
			defer wg.Done()
			images[k], stats[k], errs[k] = raytracer.Render(context.Background())
		}(k)
	}
	wg.Wait()

	for k := 0; k < renders; k++ {
		if errs[k] != nil {
			t.Fatalf("Render %d failed: %v", k, errs[k])
		}
		if stats[k].RowsCompleted != images[k].Height {
			t.Errorf("Render %d counted %d rows, want %d", k, stats[k].RowsCompleted, images[k].Height)
		}
		for i := range images[k].Pixels {
			if images[k].Pixels[i] != images[0].Pixels[i] {
				t.Fatalf("Render %d differs at pixel %d", k, i)
			}
		}
	}
}

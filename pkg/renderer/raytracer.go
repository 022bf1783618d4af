package renderer

import (
	"context"
	"math"
	"sync/atomic"
	"time"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
)

// shadowAcneEpsilon is the smallest t accepted for a hit, excluding self-intersection
const shadowAcneEpsilon = 0.001

var (
	white = core.NewVec3(1.0, 1.0, 1.0)
	sky   = core.NewVec3(0.5, 0.7, 1.0)
	black = core.NewVec3(0, 0, 0)
)

// RenderConfig contains settings that affect scheduling, not the image model
type RenderConfig struct {
	NumWorkers int   // Number of parallel workers (0 = use CPU count)
	Seed       int64 // Base seed; row j samples with Seed+j
}

// DefaultRenderConfig returns sensible default values
func DefaultRenderConfig() RenderConfig {
	return RenderConfig{
		NumWorkers: 0,
		Seed:       42,
	}
}

// ProgressFunc is called after each finished row with the rows done so far
type ProgressFunc func(rowsDone, totalRows int)

// Raytracer handles the rendering process.
// It holds no per-render state, so Render may run concurrently on one instance.
type Raytracer struct {
	camera   *Camera
	world    geometry.Shape
	config   RenderConfig
	logger   core.Logger
	progress ProgressFunc
}

// NewRaytracer creates a new raytracer for a world seen through camera.
// The world and its materials must not be mutated while rendering.
func NewRaytracer(camera *Camera, world geometry.Shape, config RenderConfig, logger core.Logger) *Raytracer {
	if logger == nil {
		logger = discardLogger{}
	}
	return &Raytracer{
		camera: camera,
		world:  world,
		config: config,
		logger: logger,
	}
}

// SetProgressCallback registers fn to be called from the collecting goroutine.
// Set it before rendering.
func (rt *Raytracer) SetProgressCallback(fn ProgressFunc) {
	rt.progress = fn
}

// BackgroundColor returns the sky gradient seen by a ray that escapes the scene
func BackgroundColor(r core.Ray) core.Color {
	unitDirection := r.Direction.Normalize()

	// Use the y-component to create a gradient (map from -1,1 to 0,1)
	a := 0.5 * (unitDirection.Y + 1.0)

	// Linear interpolation: (1-a)*white + a*sky
	return white.Multiply(1.0 - a).Add(sky.Multiply(a))
}

// RayColor returns the color carried back along r after at most depth bounces
func (rt *Raytracer) RayColor(r core.Ray, depth int, sampler core.Sampler) core.Color {
	// If we've exceeded the ray bounce limit, no more light is gathered
	if depth <= 0 {
		return black
	}

	hit, isHit := rt.world.Hit(r, core.NewInterval(shadowAcneEpsilon, math.Inf(1)))
	if !isHit {
		return BackgroundColor(r)
	}

	scatter, didScatter := hit.Material.Scatter(r, *hit, sampler)
	if !didScatter {
		return black
	}

	return scatter.Attenuation.MultiplyVec(rt.RayColor(scatter.Scattered, depth-1, sampler))
}

// SamplePixel averages SamplesPerPixel jittered rays through pixel i, j.
// The result is linear, before gamma correction.
func (rt *Raytracer) SamplePixel(i, j int, sampler core.Sampler) core.Color {
	var ps PixelStats
	for sample := 0; sample < rt.camera.SamplesPerPixel(); sample++ {
		ray := rt.camera.GetRay(i, j, sampler)
		ps.AddSample(rt.RayColor(ray, rt.camera.MaxDepth(), sampler))
	}
	return ps.GetColor()
}

// RenderRow fills row j of img with final colors using a sampler seeded for that row
func (rt *Raytracer) RenderRow(j int, img *Image) {
	sampler := core.NewSeededSampler(rt.config.Seed + int64(j))
	for i := 0; i < img.Width; i++ {
		img.Set(i, j, FinalizeColor(rt.SamplePixel(i, j, sampler)))
	}
}

// Render traces the whole image in parallel, one task per row.
// When ctx ends the remaining rows are skipped and ctx.Err() is returned with the partial image.
func (rt *Raytracer) Render(ctx context.Context) (*Image, RenderStats, error) {
	width, height := rt.camera.ImageWidth(), rt.camera.ImageHeight()
	img := NewImage(width, height)
	var rowsDone atomic.Int64

	pool := NewWorkerPool(rt, img, &rowsDone, height, rt.config.NumWorkers)
	rt.logger.Printf("Rendering %dx%d at %d samples per pixel (using %d workers)...\n",
		width, height, rt.camera.SamplesPerPixel(), pool.GetNumWorkers())

	startTime := time.Now()
	pool.Start()
	for j := 0; j < height; j++ {
		pool.SubmitTask(RowTask{Ctx: ctx, Row: j})
	}

	var firstErr error
	for i := 0; i < height; i++ {
		result, ok := pool.GetResult()
		if !ok {
			break
		}
		if result.Error != nil {
			if firstErr == nil {
				firstErr = result.Error
			}
			continue
		}
		if rt.progress != nil {
			rt.progress(int(rowsDone.Load()), height)
		}
	}
	pool.Stop()

	stats := RenderStats{
		TotalPixels:     width * height,
		SamplesPerPixel: rt.camera.SamplesPerPixel(),
		RowsCompleted:   int(rowsDone.Load()),
		NumWorkers:      pool.GetNumWorkers(),
		Duration:        time.Since(startTime),
	}
	stats.TotalSamples = stats.RowsCompleted * width * stats.SamplesPerPixel

	if firstErr != nil {
		rt.logger.Printf("Render stopped after %d of %d rows: %v\n", stats.RowsCompleted, height, firstErr)
		return img, stats, firstErr
	}

	rt.logger.Printf("Render completed in %v\n", stats.Duration)
	return img, stats, nil
}

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/output"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

// scenesDir is scanned for JSON scene files by -list
const scenesDir = "scenes"

// options holds the parsed command line
type options struct {
	sceneName string
	sceneFile string
	saveScene string
	out       string
	width     int   // 0 keeps the scene value
	samples   int   // 0 keeps the scene value
	depth     int   // negative keeps the scene value
	workers   int   // 0 keeps the scene value
	seed      int64 // only applied when seedSet
	seedSet   bool
	thumbnail uint
	timeout   time.Duration
}

// Helper to get environment variables with a default value.
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func main() {
	// Missing .env is fine; the environment may already be set
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.sceneName, "scene", "default", "Built-in scene: 'default', 'cover' or 'empty'")
	flag.StringVar(&opts.sceneFile, "scene-file", "", "JSON scene description to render instead of a built-in scene")
	flag.StringVar(&opts.saveScene, "save-scene", "", "Write the resolved scene description to this JSON file and exit")
	flag.StringVar(&opts.out, "out", "", "Output image path (.png, .jpg, .gif, .tif, .bmp or .ppm; default $IMAGE_OUTPUT or output/<scene>/render_<timestamp>.png)")
	flag.IntVar(&opts.width, "width", 0, "Image width in pixels (0 = scene default)")
	flag.IntVar(&opts.samples, "samples", 0, "Samples per pixel (0 = scene default)")
	flag.IntVar(&opts.depth, "depth", -1, "Maximum bounce depth (-1 = scene default)")
	flag.IntVar(&opts.workers, "workers", 0, "Number of parallel workers (0 = scene default or CPU count)")
	flag.Int64Var(&opts.seed, "seed", renderer.DefaultRenderConfig().Seed, "Random seed for sampling and random scenes")
	flag.UintVar(&opts.thumbnail, "thumbnail", 0, "Also write a thumbnail fitting in NxN pixels (0 = none)")
	flag.DurationVar(&opts.timeout, "timeout", 0, "Stop rendering after this long and save the partial image (0 = no limit)")
	list := flag.Bool("list", false, "List available scenes and exit")
	help := flag.Bool("help", false, "Show help information")
	flag.Parse()

	flag.Visit(func(f *flag.Flag) {
		if f.Name == "seed" {
			opts.seedSet = true
		}
	})

	// Show help if requested
	if *help {
		fmt.Println("Path Tracer")
		fmt.Println("Usage: pathtracer [options]")
		fmt.Println()
		fmt.Println("Options:")
		flag.PrintDefaults()
		fmt.Println()
		fmt.Println("Environment:")
		fmt.Println("  IMAGE_OUTPUT  - default output path")
		fmt.Println("  S3_BUCKET, S3_REGION, S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY, S3_PREFIX")
		fmt.Println("                - publish the render to S3 when bucket and region are set")
		return
	}

	logger := renderer.NewDefaultLogger()

	if *list {
		if err := listScenes(logger); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := run(context.Background(), opts, loadS3Config(), logger); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func listScenes(logger core.Logger) error {
	scenes, err := scene.ListAllScenes(scenesDir)
	if err != nil {
		return err
	}
	for _, info := range scenes {
		if info.Type == "file" {
			logger.Printf("  -scene-file %-24s %s\n", info.FilePath, info.Description)
		} else {
			logger.Printf("  -scene %-29s %s\n", info.ID, info.Description)
		}
	}
	return nil
}

// loadS3Config reads the publishing settings from the environment
func loadS3Config() output.S3Config {
	timeout, err := time.ParseDuration(getEnv("S3_UPLOAD_TIMEOUT", "30s"))
	if err != nil {
		timeout = output.DefaultUploadTimeout
	}
	return output.S3Config{
		AccessKey:     os.Getenv("S3_ACCESS_KEY"),
		SecretKey:     os.Getenv("S3_SECRET_KEY"),
		Endpoint:      os.Getenv("S3_ENDPOINT"),
		Region:        os.Getenv("S3_REGION"),
		Bucket:        os.Getenv("S3_BUCKET"),
		Prefix:        os.Getenv("S3_PREFIX"),
		UploadTimeout: timeout,
	}
}

// createScene resolves the scene description from a file or a built-in name
func createScene(sceneName, sceneFile string, seed int64) (*scene.Description, error) {
	if sceneFile != "" {
		return scene.Load(sceneFile)
	}
	return scene.NewBuiltinDescription(sceneName, seed)
}

// applyOverrides replaces scene settings with the ones given on the command line
func applyOverrides(d *scene.Description, opts options) {
	if opts.width > 0 {
		d.Camera.ImageWidth = opts.width
	}
	if opts.samples > 0 {
		d.Camera.SamplesPerPixel = opts.samples
	}
	if opts.depth >= 0 {
		d.Camera.MaxDepth = opts.depth
	}
	if opts.workers > 0 {
		d.Render.Workers = opts.workers
	}
	if opts.seedSet {
		d.Render.Seed = opts.seed
	}
}

// outputPath picks the image path: the flag, then $IMAGE_OUTPUT, then a timestamped file
func outputPath(flagValue, sceneName string, now time.Time) string {
	if flagValue != "" {
		return flagValue
	}
	if env := os.Getenv("IMAGE_OUTPUT"); env != "" {
		return env
	}
	timestamp := now.Format("20060102_150405")
	return filepath.Join("output", sceneName, fmt.Sprintf("render_%s.png", timestamp))
}

// progressLogger reports every tenth of the rows
func progressLogger(logger core.Logger) renderer.ProgressFunc {
	lastDecile := 0
	return func(rowsDone, totalRows int) {
		decile := rowsDone * 10 / totalRows
		if decile > lastDecile {
			lastDecile = decile
			logger.Printf("Progress: %d/%d rows (%d%%)\n", rowsDone, totalRows, decile*10)
		}
	}
}

func run(ctx context.Context, opts options, s3Config output.S3Config, logger core.Logger) error {
	desc, err := createScene(opts.sceneName, opts.sceneFile, opts.seed)
	if err != nil {
		return err
	}
	applyOverrides(desc, opts)

	if opts.saveScene != "" {
		if err := scene.Save(opts.saveScene, desc); err != nil {
			return err
		}
		logger.Printf("Scene saved as %s\n", opts.saveScene)
		return nil
	}

	sc, err := desc.Build()
	if err != nil {
		return err
	}
	logger.Printf("Using %s scene (%d spheres)...\n", sc.Name, sc.GetPrimitiveCount())

	raytracer, err := sc.NewRaytracer(logger)
	if err != nil {
		return err
	}
	raytracer.SetProgressCallback(progressLogger(logger))

	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}

	img, stats, renderErr := raytracer.Render(ctx)
	if renderErr != nil && !errors.Is(renderErr, context.DeadlineExceeded) {
		return renderErr
	}
	if renderErr != nil {
		logger.Printf("Timed out after %d of %d rows, saving partial image\n", stats.RowsCompleted, img.Height)
	}
	logger.Printf("Average luminance: %.4f\n", renderer.CalculateAverageLuminance(img))

	filename := outputPath(opts.out, sc.Name, time.Now())
	if err := output.Save(filename, img); err != nil {
		return err
	}
	logger.Printf("Render saved as %s\n", filename)
	files := []string{filename}

	if opts.thumbnail > 0 {
		thumbName := output.ThumbnailPath(filename)
		thumb := output.Thumbnail(output.ToNRGBA(img), opts.thumbnail, opts.thumbnail)
		if err := output.SaveImage(thumbName, thumb); err != nil {
			return err
		}
		logger.Printf("Thumbnail saved as %s\n", thumbName)
		files = append(files, thumbName)
	}

	if s3Config.Enabled() {
		publisher, err := output.NewS3Publisher(s3Config, logger)
		if err != nil {
			return err
		}
		// The render deadline may already have passed; the upload has its own timeout
		uploadCtx := context.WithoutCancel(ctx)
		for _, file := range files {
			if _, err := publisher.Publish(uploadCtx, path.Join(sc.Name, filepath.Base(file)), file); err != nil {
				return err
			}
		}
	}

	return renderErr
}

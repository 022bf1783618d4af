package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-pathtracer/pkg/core"
)

// ErrInvalidConfig is returned when a camera configuration cannot produce an image
var ErrInvalidConfig = errors.New("invalid camera config")

// CameraConfig contains every view and sampling parameter of a camera
type CameraConfig struct {
	AspectRatio     float64   // Ratio of image width over height
	ImageWidth      int       // Rendered image width in pixel count
	SamplesPerPixel int       // Count of random samples for each pixel
	MaxDepth        int       // Maximum number of ray bounces into scene
	VFov            float64   // Vertical view angle (field of view) in degrees
	LookFrom        core.Vec3 // Point camera is looking from
	LookAt          core.Vec3 // Point camera is looking at
	VUp             core.Vec3 // Camera-relative "up" direction
	DefocusAngle    float64   // Variation angle of rays through each pixel, 0 disables depth of field
	FocusDistance   float64   // Distance from camera lookfrom point to plane of perfect focus
}

// DefaultCameraConfig returns sensible default values
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		AspectRatio:     16.0 / 9.0,
		ImageWidth:      400,
		SamplesPerPixel: 100,
		MaxDepth:        50,
		VFov:            90,
		LookFrom:        core.NewVec3(0, 0, 0),
		LookAt:          core.NewVec3(0, 0, -1),
		VUp:             core.NewVec3(0, 1, 0),
		DefocusAngle:    0,
		FocusDistance:   10,
	}
}

// Validate checks the configuration for values that cannot produce an image
func (c CameraConfig) Validate() error {
	switch {
	case !(c.AspectRatio > 0):
		return fmt.Errorf("%w: aspect ratio must be positive, got %v", ErrInvalidConfig, c.AspectRatio)
	case c.ImageWidth < 1:
		return fmt.Errorf("%w: image width must be at least 1, got %d", ErrInvalidConfig, c.ImageWidth)
	case c.SamplesPerPixel < 1:
		return fmt.Errorf("%w: samples per pixel must be at least 1, got %d", ErrInvalidConfig, c.SamplesPerPixel)
	case c.MaxDepth < 0:
		return fmt.Errorf("%w: max depth must not be negative, got %d", ErrInvalidConfig, c.MaxDepth)
	case !(c.VFov > 0 && c.VFov < 180):
		return fmt.Errorf("%w: vertical fov must be in (0, 180) degrees, got %v", ErrInvalidConfig, c.VFov)
	case !(c.DefocusAngle >= 0):
		return fmt.Errorf("%w: defocus angle must not be negative, got %v", ErrInvalidConfig, c.DefocusAngle)
	case !(c.FocusDistance > 0):
		return fmt.Errorf("%w: focus distance must be positive, got %v", ErrInvalidConfig, c.FocusDistance)
	}

	if c.LookFrom.Equals(c.LookAt) {
		return fmt.Errorf("%w: look from and look at are both %v", ErrInvalidConfig, c.LookFrom)
	}
	view := c.LookFrom.Subtract(c.LookAt)
	if c.VUp.Normalize().Cross(view.Normalize()).NearZero() {
		return fmt.Errorf("%w: up vector %v is parallel to the view direction", ErrInvalidConfig, c.VUp)
	}
	return nil
}

// Camera generates rays for rendering.
// All derived fields are computed by Reconfigure and are read-only while rendering.
type Camera struct {
	config CameraConfig

	imageHeight       int       // Rendered image height
	pixelSamplesScale float64   // Color scale factor for a sum of pixel samples
	center            core.Vec3 // Camera center
	pixel00Loc        core.Vec3 // Location of pixel 0, 0
	pixelDeltaU       core.Vec3 // Offset to pixel to the right
	pixelDeltaV       core.Vec3 // Offset to pixel below
	u, v, w           core.Vec3 // Camera frame basis vectors
	defocusDiskU      core.Vec3 // Defocus disk horizontal radius
	defocusDiskV      core.Vec3 // Defocus disk vertical radius
}

// NewCamera validates the configuration and creates an initialized camera
func NewCamera(config CameraConfig) (*Camera, error) {
	camera := &Camera{}
	if err := camera.Reconfigure(config); err != nil {
		return nil, err
	}
	return camera, nil
}

// Reconfigure replaces the view parameters and recomputes the viewport.
// On error the camera keeps its previous configuration.
func (c *Camera) Reconfigure(config CameraConfig) error {
	if err := config.Validate(); err != nil {
		return err
	}

	c.config = config
	c.imageHeight = max(1, int(float64(config.ImageWidth)/config.AspectRatio))
	c.pixelSamplesScale = 1.0 / float64(config.SamplesPerPixel)
	c.center = config.LookFrom

	// Determine viewport dimensions
	theta := core.DegreesToRadians(config.VFov)
	h := math.Tan(theta / 2)
	viewportHeight := 2 * h * config.FocusDistance
	viewportWidth := viewportHeight * float64(config.ImageWidth) / float64(c.imageHeight)

	// Calculate the u,v,w unit basis vectors for the camera coordinate frame
	c.w = config.LookFrom.Subtract(config.LookAt).Normalize()
	c.u = config.VUp.Cross(c.w).Normalize()
	c.v = c.w.Cross(c.u)

	// Vectors across the horizontal and down the vertical viewport edges
	viewportU := c.u.Multiply(viewportWidth)
	viewportV := c.v.Negate().Multiply(viewportHeight)

	c.pixelDeltaU = viewportU.Divide(float64(config.ImageWidth))
	c.pixelDeltaV = viewportV.Divide(float64(c.imageHeight))

	viewportUpperLeft := c.center.
		Subtract(c.w.Multiply(config.FocusDistance)).
		Subtract(viewportU.Multiply(0.5)).
		Subtract(viewportV.Multiply(0.5))
	c.pixel00Loc = viewportUpperLeft.Add(c.pixelDeltaU.Add(c.pixelDeltaV).Multiply(0.5))

	// Calculate the camera defocus disk basis vectors
	defocusRadius := config.FocusDistance * math.Tan(core.DegreesToRadians(config.DefocusAngle/2))
	c.defocusDiskU = c.u.Multiply(defocusRadius)
	c.defocusDiskV = c.v.Multiply(defocusRadius)

	return nil
}

// ImageWidth returns the rendered image width in pixels
func (c *Camera) ImageWidth() int {
	return c.config.ImageWidth
}

// ImageHeight returns the rendered image height in pixels
func (c *Camera) ImageHeight() int {
	return c.imageHeight
}

// SamplesPerPixel returns the number of rays traced for each pixel
func (c *Camera) SamplesPerPixel() int {
	return c.config.SamplesPerPixel
}

// MaxDepth returns the bounce limit for each camera ray
func (c *Camera) MaxDepth() int {
	return c.config.MaxDepth
}

// GetRay constructs a camera ray originating from the defocus disk and directed
// at a randomly sampled point around the pixel location i, j
func (c *Camera) GetRay(i, j int, sampler core.Sampler) core.Ray {
	offset := sampleSquare(sampler)
	pixelSample := c.pixel00Loc.
		Add(c.pixelDeltaU.Multiply(float64(i) + offset.X)).
		Add(c.pixelDeltaV.Multiply(float64(j) + offset.Y))

	rayOrigin := c.center
	if c.config.DefocusAngle > 0 {
		rayOrigin = c.defocusDiskSample(sampler)
	}

	return core.NewRay(rayOrigin, pixelSample.Subtract(rayOrigin))
}

// sampleSquare returns a random point in the [-.5,-.5]-[+.5,+.5] unit square
func sampleSquare(sampler core.Sampler) core.Vec2 {
	s := sampler.Get2D()
	return core.NewVec2(s.X-0.5, s.Y-0.5)
}

// defocusDiskSample returns a random point in the camera defocus disk
func (c *Camera) defocusDiskSample(sampler core.Sampler) core.Vec3 {
	p := core.RandomInUnitDisk(sampler)
	return c.center.Add(c.defocusDiskU.Multiply(p.X)).Add(c.defocusDiskV.Multiply(p.Y))
}

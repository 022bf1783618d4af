package scene

import (
	"context"
	"errors"
	"os"
	"reflect"
	"testing"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

func writeFile(path, content string) error {
	return os.WriteFile(path, []byte(content), 0644)
}

func TestNewBuiltinDescription(t *testing.T) {
	for _, name := range BuiltinNames {
		t.Run(name, func(t *testing.T) {
			d, err := NewBuiltinDescription(name, 42)
			if err != nil {
				t.Fatalf("NewBuiltinDescription() error: %v", err)
			}
			if d.Name != name {
				t.Errorf("Name = %q, want %q", d.Name, name)
			}
			if _, err := d.Build(); err != nil {
				t.Errorf("Built-in scene %q does not build: %v", name, err)
			}
		})
	}

	if _, err := NewBuiltinDescription("cornell", 42); !errors.Is(err, ErrInvalidScene) {
		t.Errorf("Expected ErrInvalidScene for unknown scene, got %v", err)
	}
}

func TestNewDefaultScene(t *testing.T) {
	s := NewDefaultScene()

	if s.GetPrimitiveCount() != 5 {
		t.Errorf("Default scene should have 5 spheres, got %d", s.GetPrimitiveCount())
	}

	// A ray straight down from above the center sphere lands on its top
	ray := core.NewRay(core.NewVec3(0, 5, -1.2), core.NewVec3(0, -1, 0))
	hit, isHit := s.World.Hit(ray, core.NewInterval(0.001, 1e9))
	if !isHit {
		t.Fatal("Expected to hit the center sphere")
	}
	if hit.Point.Subtract(core.NewVec3(0, 0.5, -1.2)).Length() > 1e-9 {
		t.Errorf("Expected hit at top of center sphere, got %v", hit.Point)
	}
}

func TestNewCoverScene_Seeded(t *testing.T) {
	a := NewCoverDescription(7)
	b := NewCoverDescription(7)
	c := NewCoverDescription(8)

	if !reflect.DeepEqual(a, b) {
		t.Error("Cover scene should be identical for the same seed")
	}
	if reflect.DeepEqual(a.Objects, c.Objects) {
		t.Error("Cover scene should differ for different seeds")
	}

	s := NewCoverScene(7)
	// Ground plus three large spheres plus some small ones
	if s.GetPrimitiveCount() < 4+400 {
		t.Errorf("Cover scene has too few spheres: %d", s.GetPrimitiveCount())
	}

	clearing := core.NewVec3(4, 0.2, 0)
	for _, obj := range a.Objects {
		if obj.Radius == 0.2 && obj.Center.Vec3().Subtract(clearing).Length() <= 0.9 {
			t.Errorf("Small sphere at %v intrudes on the metal sphere", obj.Center)
		}
	}
}

func TestNewEmptyScene_RendersBackground(t *testing.T) {
	s := NewEmptyScene()
	s.CameraConfig.ImageWidth = 16
	s.CameraConfig.SamplesPerPixel = 2

	raytracer, err := s.NewRaytracer(nil)
	if err != nil {
		t.Fatalf("NewRaytracer() error: %v", err)
	}
	img, _, err := raytracer.Render(context.Background())
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}

	for i, c := range img.Pixels {
		if c.Z != 0.999 {
			t.Fatalf("Pixel %d should have a saturated blue channel, got %v", i, c)
		}
	}
}

func TestScene_NewRaytracerInvalidCamera(t *testing.T) {
	s := NewEmptyScene()
	s.CameraConfig.SamplesPerPixel = 0

	if _, err := s.NewRaytracer(nil); !errors.Is(err, renderer.ErrInvalidConfig) {
		t.Errorf("Expected ErrInvalidConfig, got %v", err)
	}
}

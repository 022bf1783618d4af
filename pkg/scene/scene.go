package scene

import (
	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Name         string
	World        *geometry.List // Objects in the scene
	CameraConfig renderer.CameraConfig
	RenderConfig renderer.RenderConfig
}

// NewCamera creates the camera described by the scene
func (s *Scene) NewCamera() (*renderer.Camera, error) {
	return renderer.NewCamera(s.CameraConfig)
}

// NewRaytracer creates a raytracer for the scene's world and camera
func (s *Scene) NewRaytracer(logger core.Logger) (*renderer.Raytracer, error) {
	camera, err := s.NewCamera()
	if err != nil {
		return nil, err
	}
	return renderer.NewRaytracer(camera, s.World, s.RenderConfig, logger), nil
}

// GetPrimitiveCount returns the total number of spheres in the scene, descending into nested lists
func (s *Scene) GetPrimitiveCount() int {
	if s.World == nil {
		return 0
	}
	return countPrimitivesInShape(s.World)
}

// countPrimitivesInShape counts primitives in a single shape, handling composite objects
func countPrimitivesInShape(shape geometry.Shape) int {
	switch obj := shape.(type) {
	case *geometry.List:
		count := 0
		for _, child := range obj.Shapes {
			count += countPrimitivesInShape(child)
		}
		return count
	default:
		// Regular shapes count as 1 primitive each
		return 1
	}
}

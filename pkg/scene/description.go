package scene

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/geometry"
	"github.com/df07/go-pathtracer/pkg/material"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// ErrInvalidScene is returned when a description cannot be built into a scene
var ErrInvalidScene = errors.New("invalid scene description")

// Vector is a point, direction or color written as [x, y, z]
type Vector [3]float64

// Vec3 converts the vector to a core.Vec3
func (v Vector) Vec3() core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

// VectorOf converts a core.Vec3 to a Vector
func VectorOf(v core.Vec3) Vector {
	return Vector{v.X, v.Y, v.Z}
}

// MaterialType enumerates supported material kinds.
type MaterialType string

const (
	MaterialLambertian MaterialType = "lambertian"
	MaterialMetal      MaterialType = "metal"
	MaterialDielectric MaterialType = "dielectric"
)

// MaterialDescription describes surface properties. Objects refer to it by Name.
type MaterialDescription struct {
	Name            string       `json:"name"`
	Type            MaterialType `json:"type"`
	Albedo          Vector       `json:"albedo,omitempty"`           // lambertian, metal
	Fuzz            float64      `json:"fuzz,omitempty"`             // metal, clamped to [0,1]
	RefractionIndex float64      `json:"refraction_index,omitempty"` // dielectric
}

// ObjectType enumerates supported geometric primitives.
type ObjectType string

const (
	ObjectSphere ObjectType = "sphere"
)

// ObjectDescription is a single entity in the scene.
type ObjectDescription struct {
	Type     ObjectType `json:"type"`
	Center   Vector     `json:"center"`
	Radius   float64    `json:"radius"`
	Material string     `json:"material"`
}

// CameraDescription mirrors renderer.CameraConfig
type CameraDescription struct {
	AspectRatio     float64 `json:"aspect_ratio"`
	ImageWidth      int     `json:"image_width"`
	SamplesPerPixel int     `json:"samples_per_pixel"`
	MaxDepth        int     `json:"max_depth"`
	VFov            float64 `json:"vfov"`
	LookFrom        Vector  `json:"lookfrom"`
	LookAt          Vector  `json:"lookat"`
	VUp             Vector  `json:"vup"`
	DefocusAngle    float64 `json:"defocus_angle"`
	FocusDistance   float64 `json:"focus_distance"`
}

// RenderDescription mirrors renderer.RenderConfig
type RenderDescription struct {
	Workers int   `json:"workers,omitempty"`
	Seed    int64 `json:"seed"`
}

// Description is the serializable form of a scene
type Description struct {
	Name        string                `json:"name"`
	Description string                `json:"description,omitempty"`
	Camera      CameraDescription     `json:"camera"`
	Render      RenderDescription     `json:"render"`
	Materials   []MaterialDescription `json:"materials"`
	Objects     []ObjectDescription   `json:"objects"`
}

// NewCameraDescription converts a camera config to its serializable form
func NewCameraDescription(c renderer.CameraConfig) CameraDescription {
	return CameraDescription{
		AspectRatio:     c.AspectRatio,
		ImageWidth:      c.ImageWidth,
		SamplesPerPixel: c.SamplesPerPixel,
		MaxDepth:        c.MaxDepth,
		VFov:            c.VFov,
		LookFrom:        VectorOf(c.LookFrom),
		LookAt:          VectorOf(c.LookAt),
		VUp:             VectorOf(c.VUp),
		DefocusAngle:    c.DefocusAngle,
		FocusDistance:   c.FocusDistance,
	}
}

// Config converts the camera description to a renderer.CameraConfig
func (c CameraDescription) Config() renderer.CameraConfig {
	return renderer.CameraConfig{
		AspectRatio:     c.AspectRatio,
		ImageWidth:      c.ImageWidth,
		SamplesPerPixel: c.SamplesPerPixel,
		MaxDepth:        c.MaxDepth,
		VFov:            c.VFov,
		LookFrom:        c.LookFrom.Vec3(),
		LookAt:          c.LookAt.Vec3(),
		VUp:             c.VUp.Vec3(),
		DefocusAngle:    c.DefocusAngle,
		FocusDistance:   c.FocusDistance,
	}
}

// AddMaterial appends a named material
func (d *Description) AddMaterial(m MaterialDescription) {
	d.Materials = append(d.Materials, m)
}

// AddSphere appends a sphere using a previously added material
func (d *Description) AddSphere(center core.Vec3, radius float64, materialName string) {
	d.Objects = append(d.Objects, ObjectDescription{
		Type:     ObjectSphere,
		Center:   VectorOf(center),
		Radius:   radius,
		Material: materialName,
	})
}

// buildMaterial creates the material described by m
func buildMaterial(m MaterialDescription) (material.Material, error) {
	switch m.Type {
	case MaterialLambertian:
		return material.NewLambertian(m.Albedo.Vec3()), nil
	case MaterialMetal:
		return material.NewMetal(m.Albedo.Vec3(), m.Fuzz), nil
	case MaterialDielectric:
		if !(m.RefractionIndex > 0) {
			return nil, fmt.Errorf("%w: material %q: refraction index must be positive, got %v",
				ErrInvalidScene, m.Name, m.RefractionIndex)
		}
		return material.NewDielectric(m.RefractionIndex), nil
	default:
		return nil, fmt.Errorf("%w: material %q: unknown type %q", ErrInvalidScene, m.Name, m.Type)
	}
}

// Build validates the description and creates the scene it describes.
// Materials are shared by every object that names them.
func (d *Description) Build() (*Scene, error) {
	cameraConfig := d.Camera.Config()
	if err := cameraConfig.Validate(); err != nil {
		return nil, fmt.Errorf("scene %q: %w", d.Name, err)
	}

	materials := make(map[string]material.Material, len(d.Materials))
	for _, m := range d.Materials {
		if m.Name == "" {
			return nil, fmt.Errorf("%w: material with type %q has no name", ErrInvalidScene, m.Type)
		}
		if _, exists := materials[m.Name]; exists {
			return nil, fmt.Errorf("%w: duplicate material %q", ErrInvalidScene, m.Name)
		}
		mat, err := buildMaterial(m)
		if err != nil {
			return nil, err
		}
		materials[m.Name] = mat
	}

	world := geometry.NewList()
	for i, obj := range d.Objects {
		if obj.Type != ObjectSphere {
			return nil, fmt.Errorf("%w: object %d: unknown type %q", ErrInvalidScene, i, obj.Type)
		}
		mat, ok := materials[obj.Material]
		if !ok {
			return nil, fmt.Errorf("%w: object %d: unknown material %q", ErrInvalidScene, i, obj.Material)
		}
		world.Add(geometry.NewSphere(obj.Center.Vec3(), obj.Radius, mat))
	}

	return &Scene{
		Name:         d.Name,
		World:        world,
		CameraConfig: cameraConfig,
		RenderConfig: renderer.RenderConfig{
			NumWorkers: d.Render.Workers,
			Seed:       d.Render.Seed,
		},
	}, nil
}

// Load reads a Description from a JSON file.
func Load(path string) (*Description, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scene: %w", err)
	}
	defer f.Close()

	var d Description
	if err := json.NewDecoder(f).Decode(&d); err != nil {
		return nil, fmt.Errorf("decode scene: %w", err)
	}
	return &d, nil
}

// Save writes a Description to a JSON file.
func Save(path string, d *Description) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create scene: %w", err)
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode scene: %w", err)
	}
	return nil
}

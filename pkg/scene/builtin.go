package scene

import (
	"fmt"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/renderer"
)

// BuiltinNames lists the scenes available without a scene file, in display order
var BuiltinNames = []string{"default", "cover", "empty"}

// NewBuiltinDescription returns the description of a built-in scene.
// The seed only affects scenes with random placement.
func NewBuiltinDescription(name string, seed int64) (*Description, error) {
	switch name {
	case "default":
		return NewDefaultDescription(), nil
	case "cover":
		return NewCoverDescription(seed), nil
	case "empty":
		return NewEmptyDescription(), nil
	default:
		return nil, fmt.Errorf("%w: unknown built-in scene %q", ErrInvalidScene, name)
	}
}

// NewDefaultDescription describes three spheres on a large ground sphere:
// diffuse in the middle, glass with an air bubble on the left, fuzzy gold on the right
func NewDefaultDescription() *Description {
	d := &Description{
		Name:        "default",
		Description: "Diffuse, hollow glass and metal spheres on a ground sphere",
		Camera: NewCameraDescription(renderer.CameraConfig{
			AspectRatio:     16.0 / 9.0,
			ImageWidth:      400,
			SamplesPerPixel: 100,
			MaxDepth:        50,
			VFov:            20,
			LookFrom:        core.NewVec3(-2, 2, 1),
			LookAt:          core.NewVec3(0, 0, -1),
			VUp:             core.NewVec3(0, 1, 0),
			DefocusAngle:    10.0,
			FocusDistance:   3.4,
		}),
		Render: RenderDescription{Seed: renderer.DefaultRenderConfig().Seed},
	}

	d.AddMaterial(MaterialDescription{Name: "ground", Type: MaterialLambertian, Albedo: Vector{0.8, 0.8, 0.0}})
	d.AddMaterial(MaterialDescription{Name: "center", Type: MaterialLambertian, Albedo: Vector{0.1, 0.2, 0.5}})
	d.AddMaterial(MaterialDescription{Name: "glass", Type: MaterialDielectric, RefractionIndex: 1.50})
	// Air inside glass: the ratio of air to the surrounding glass
	d.AddMaterial(MaterialDescription{Name: "bubble", Type: MaterialDielectric, RefractionIndex: 1.00 / 1.50})
	d.AddMaterial(MaterialDescription{Name: "gold", Type: MaterialMetal, Albedo: Vector{0.8, 0.6, 0.2}, Fuzz: 1.0})

	d.AddSphere(core.NewVec3(0.0, -100.5, -1.0), 100.0, "ground")
	d.AddSphere(core.NewVec3(0.0, 0.0, -1.2), 0.5, "center")
	d.AddSphere(core.NewVec3(-1.0, 0.0, -1.0), 0.5, "glass")
	d.AddSphere(core.NewVec3(-1.0, 0.0, -1.0), 0.4, "bubble")
	d.AddSphere(core.NewVec3(1.0, 0.0, -1.0), 0.5, "gold")

	return d
}

// NewCoverDescription describes a grid of small random spheres around three large ones.
// Placement and small-sphere materials are drawn from a sampler seeded with seed.
func NewCoverDescription(seed int64) *Description {
	d := &Description{
		Name:        "cover",
		Description: "Random small spheres around large glass, diffuse and metal spheres",
		Camera: NewCameraDescription(renderer.CameraConfig{
			AspectRatio:     16.0 / 9.0,
			ImageWidth:      1200,
			SamplesPerPixel: 500,
			MaxDepth:        50,
			VFov:            20,
			LookFrom:        core.NewVec3(13, 2, 3),
			LookAt:          core.NewVec3(0, 0, 0),
			VUp:             core.NewVec3(0, 1, 0),
			DefocusAngle:    0.6,
			FocusDistance:   10.0,
		}),
		Render: RenderDescription{Seed: seed},
	}
	sampler := core.NewSeededSampler(seed)

	d.AddMaterial(MaterialDescription{Name: "ground", Type: MaterialLambertian, Albedo: Vector{0.5, 0.5, 0.5}})
	d.AddMaterial(MaterialDescription{Name: "glass", Type: MaterialDielectric, RefractionIndex: 1.5})
	d.AddSphere(core.NewVec3(0, -1000, 0), 1000, "ground")

	clearing := core.NewVec3(4, 0.2, 0)
	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			chooseMat := sampler.Get1D()
			center := core.NewVec3(float64(a)+0.9*sampler.Get1D(), 0.2, float64(b)+0.9*sampler.Get1D())
			if center.Subtract(clearing).Length() <= 0.9 {
				continue
			}

			name := fmt.Sprintf("small_%d_%d", a, b)
			switch {
			case chooseMat < 0.8:
				albedo := core.RandomVec3(sampler, 0, 1).MultiplyVec(core.RandomVec3(sampler, 0, 1))
				d.AddMaterial(MaterialDescription{Name: name, Type: MaterialLambertian, Albedo: VectorOf(albedo)})
			case chooseMat < 0.95:
				albedo := core.RandomVec3(sampler, 0.5, 1)
				fuzz := core.RandomRange(sampler, 0, 0.5)
				d.AddMaterial(MaterialDescription{Name: name, Type: MaterialMetal, Albedo: VectorOf(albedo), Fuzz: fuzz})
			default:
				name = "glass"
			}
			d.AddSphere(center, 0.2, name)
		}
	}

	d.AddMaterial(MaterialDescription{Name: "large_diffuse", Type: MaterialLambertian, Albedo: Vector{0.4, 0.2, 0.1}})
	d.AddMaterial(MaterialDescription{Name: "large_metal", Type: MaterialMetal, Albedo: Vector{0.7, 0.6, 0.5}, Fuzz: 0.0})

	d.AddSphere(core.NewVec3(0, 1, 0), 1.0, "glass")
	d.AddSphere(core.NewVec3(-4, 1, 0), 1.0, "large_diffuse")
	d.AddSphere(core.NewVec3(4, 1, 0), 1.0, "large_metal")

	return d
}

// NewEmptyDescription describes a scene with no objects; every ray sees the sky
func NewEmptyDescription() *Description {
	return &Description{
		Name:        "empty",
		Description: "No objects, only the background gradient",
		Camera:      NewCameraDescription(renderer.DefaultCameraConfig()),
		Render:      RenderDescription{Seed: renderer.DefaultRenderConfig().Seed},
	}
}

// NewDefaultScene builds the default scene
func NewDefaultScene() *Scene {
	return mustBuild(NewDefaultDescription())
}

// NewCoverScene builds the cover scene with placement drawn from seed
func NewCoverScene(seed int64) *Scene {
	return mustBuild(NewCoverDescription(seed))
}

// NewEmptyScene builds a scene with no objects
func NewEmptyScene() *Scene {
	return mustBuild(NewEmptyDescription())
}

// mustBuild is only used for built-in descriptions, which are always valid
func mustBuild(d *Description) *Scene {
	s, err := d.Build()
	if err != nil {
		panic(err)
	}
	return s
}

package scene

import (
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"path/filepath"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/geometry"
	"github.com/df07/go-scene-raytracer/pkg/loaders"
	"github.com/df07/go-scene-raytracer/pkg/material"
	"github.com/df07/go-scene-raytracer/pkg/transform"
)

var (
	// ErrEmptyWorld is returned when the world list names no objects
	ErrEmptyWorld = errors.New("world is empty")
	// ErrMalformedRect is returned when rect corners are not equal along exactly one axis
	ErrMalformedRect = errors.New("rect corners must be equal along exactly one axis")
)

// Scene contains all the elements needed for rendering
type Scene struct {
	Camera      *geometry.Camera
	World       core.Hittable // BVH over the world list
	Sky         core.Sky
	AspectRatio float64 // width / height
	Stats       geometry.BVHStats
}

// BuildOptions controls scene construction
type BuildOptions struct {
	// Random drives the BVH split axes; nil uses a fixed seed
	Random *rand.Rand
	Logger *slog.Logger
	// LoadImage decodes image textures; nil uses loaders.LoadImage
	LoadImage func(path string, maxSize int) (*loaders.ImageData, error)
}

// Build resolves textures, then materials, then objects, and wraps the world list in a BVH
func Build(desc *loaders.SceneFile, opts BuildOptions) (*Scene, error) {
	logger := core.LoggerOrNop(opts.Logger)
	random := opts.Random
	if random == nil {
		random = rand.New(rand.NewSource(0))
	}
	loadImage := opts.LoadImage
	if loadImage == nil {
		loadImage = loaders.LoadImage
	}

	if err := desc.Validate(); err != nil {
		return nil, err
	}

	textures, err := resolve("texture", desc.Textures, func(entry loaders.TextureEntry, built map[string]core.Texture) (core.Texture, error) {
		return buildTexture(entry.TextureSpec, built, desc.Dir, loadImage)
	})
	if err != nil {
		return nil, err
	}

	materials, err := resolve("material", desc.Materials, func(entry loaders.MaterialEntry, built map[string]core.Material) (core.Material, error) {
		return buildMaterial(entry.MaterialSpec, built, textures)
	})
	if err != nil {
		return nil, err
	}

	objects, err := resolve("object", desc.Objects, func(entry loaders.ObjectEntry, built map[string]core.Hittable) (core.Hittable, error) {
		return buildObject(entry.ObjectSpec, built, materials)
	})
	if err != nil {
		return nil, err
	}

	if len(desc.World) == 0 {
		return nil, ErrEmptyWorld
	}
	world := make([]core.Hittable, 0, len(desc.World))
	for _, name := range desc.World {
		object, err := lookup("object", objects, name)
		if err != nil {
			return nil, fmt.Errorf("world: %w", err)
		}
		world = append(world, object)
	}

	cam := desc.Camera
	root, err := geometry.NewBVH(world, cam.StartTime, cam.EndTime, random)
	if err != nil {
		return nil, err
	}
	stats := geometry.CollectBVHStats(root)

	logger.Debug("Scene resolved",
		"textures", len(textures),
		"materials", len(materials),
		"objects", len(objects),
		"world", len(world),
		"bvh_nodes", stats.Nodes,
		"bvh_leaves", stats.Leaves,
		"bvh_depth", stats.MaxDepth)

	return &Scene{
		Camera: geometry.NewCamera(geometry.CameraConfig{
			LookFrom:      cam.LookFrom.Vec(),
			LookAt:        cam.LookAt.Vec(),
			Up:            cam.DirectionUp.Vec(),
			VFov:          cam.FieldOfView,
			AspectRatio:   cam.Ratio(),
			Aperture:      cam.Aperture,
			FocusDistance: cam.DistanceToFocus,
			ShutterOpen:   cam.StartTime,
			ShutterClose:  cam.EndTime,
		}),
		World:       root,
		Sky:         buildSky(desc.Background.BackgroundSpec),
		AspectRatio: cam.Ratio(),
		Stats:       stats,
	}, nil
}

func buildSky(spec loaders.BackgroundSpec) core.Sky {
	switch s := spec.(type) {
	case *loaders.GradientSpec:
		return core.GradientSky(s.Direction.Vec(), s.Colour0.Vec(), s.Colour1.Vec())
	case *loaders.PlainColourSpec:
		return core.SolidSky(s.Colour.Vec())
	default:
		return core.SolidSky(core.Vec3{})
	}
}

func buildTexture(spec loaders.TextureSpec, built map[string]core.Texture, dir string,
	loadImage func(string, int) (*loaders.ImageData, error)) (core.Texture, error) {
	switch s := spec.(type) {
	case *loaders.SolidColourSpec:
		return material.NewSolidColor(s.Colour.Vec()), nil

	case *loaders.ImageTextureSpec:
		path := s.Filename
		if dir != "" && !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		img, err := loadImage(path, s.MaxSize)
		if err != nil {
			return nil, err
		}
		return material.NewImageTexture(img.Width, img.Height, img.Pixels), nil

	case *loaders.CheckeredTextureSpec:
		deps, err := ready(built, s.Odd, s.Even)
		if err != nil {
			return nil, err
		}
		return material.NewCheckerTexture(deps[0], deps[1], s.TileSize), nil

	case *loaders.UVCheckeredTextureSpec:
		deps, err := ready(built, s.Odd, s.Even)
		if err != nil {
			return nil, err
		}
		return material.NewUVCheckerTexture(deps[0], deps[1], s.TileDensity), nil
	}
	return nil, fmt.Errorf("unsupported texture %T", spec)
}

func buildMaterial(spec loaders.MaterialSpec, built map[string]core.Material, textures map[string]core.Texture) (core.Material, error) {
	switch s := spec.(type) {
	case *loaders.LambertianSpec:
		albedo, err := lookup("texture", textures, s.Texture)
		if err != nil {
			return nil, err
		}
		return material.NewTexturedLambertian(albedo), nil

	case *loaders.MetalSpec:
		return material.NewMetal(s.Albedo.Vec(), s.Fuzz), nil

	case *loaders.DielectricSpec:
		return material.NewDielectric(s.IndexOfRefraction), nil

	case *loaders.DiffuseLightSpec:
		emit, err := lookup("texture", textures, s.Emit)
		if err != nil {
			return nil, err
		}
		return material.NewTexturedDiffuseLight(emit), nil

	case *loaders.IsotropicSpec:
		albedo, err := lookup("texture", textures, s.Albedo)
		if err != nil {
			return nil, err
		}
		return material.NewTexturedIsotropic(albedo), nil

	case *loaders.CheckeredMaterialSpec:
		deps, err := ready(built, s.Odd, s.Even)
		if err != nil {
			return nil, err
		}
		return material.NewCheckered(deps[0], deps[1], s.TileDensity), nil
	}
	return nil, fmt.Errorf("unsupported material %T", spec)
}

func buildObject(spec loaders.ObjectSpec, built map[string]core.Hittable, materials map[string]core.Material) (core.Hittable, error) {
	switch s := spec.(type) {
	case *loaders.SphereSpec:
		mat, err := lookup("material", materials, s.Material)
		if err != nil {
			return nil, err
		}
		return geometry.NewSphere(s.Centre.Vec(), s.Radius, mat), nil

	case *loaders.MovingSphereSpec:
		mat, err := lookup("material", materials, s.Material)
		if err != nil {
			return nil, err
		}
		return geometry.NewMovingSphere(s.Centre0.Vec(), s.Centre1.Vec(), s.Time0, s.Time1, s.Radius, mat), nil

	case *loaders.BlockSpec:
		mat, err := lookup("material", materials, s.Material)
		if err != nil {
			return nil, err
		}
		return geometry.NewBlock(s.Corner0.Vec(), s.Corner1.Vec(), mat), nil

	case *loaders.RectSpec:
		mat, err := lookup("material", materials, s.Material)
		if err != nil {
			return nil, err
		}
		rect, err := rectFromCorners(s.Corner0, s.Corner1, s.FacingForward, mat)
		if err != nil {
			return nil, err
		}
		return rect, nil

	case *loaders.TriangleSpec:
		mat, err := lookup("material", materials, s.Material)
		if err != nil {
			return nil, err
		}
		return geometry.NewTriangle(s.Point0.Vec(), s.Point1.Vec(), s.Point2.Vec(), mat), nil

	case *loaders.PlaneSpec:
		mat, err := lookup("material", materials, s.Material)
		if err != nil {
			return nil, err
		}
		return geometry.NewPlane(s.Point0.Vec(), s.Point1.Vec(), s.Point2.Vec(), s.UVRepeat, mat), nil

	case *loaders.SpotlightSpec:
		return geometry.NewSpotlight(s.LookFrom.Vec(), s.LookAt.Vec(), s.Length, s.Width, s.Light.Vec()), nil

	case *loaders.ConstantMediumSpec:
		deps, err := ready(built, s.Boundary)
		if err != nil {
			return nil, err
		}
		phase, err := lookup("material", materials, s.PhaseFunction)
		if err != nil {
			return nil, err
		}
		return geometry.NewConstantMedium(deps[0], phase, s.Density), nil

	case *loaders.TranslateSpec:
		deps, err := ready(built, s.Prototype)
		if err != nil {
			return nil, err
		}
		return transform.NewTranslate(deps[0], s.Offset.Vec()), nil

	case *loaders.RotateSpec:
		deps, err := ready(built, s.Prototype)
		if err != nil {
			return nil, err
		}
		switch s.Axis {
		case "X":
			return transform.NewRotateX(deps[0], s.Degrees), nil
		case "Y":
			return transform.NewRotateY(deps[0], s.Degrees), nil
		case "Z":
			return transform.NewRotateZ(deps[0], s.Degrees), nil
		}
		return nil, fmt.Errorf("unknown rotation axis %q", s.Axis)

	case *loaders.ListSpec:
		deps, err := ready(built, s.Objects...)
		if err != nil {
			return nil, err
		}
		return geometry.NewHittableList(deps...), nil
	}
	return nil, fmt.Errorf("unsupported object %T", spec)
}

// rectFromCorners picks the rect orientation from the one axis on which the corners agree
func rectFromCorners(c0, c1 loaders.Triple, facingForward bool, mat core.Material) (*geometry.Rect, error) {
	shared := -1
	for axis := 0; axis < 3; axis++ {
		if c0[axis] == c1[axis] {
			if shared >= 0 {
				return nil, ErrMalformedRect
			}
			shared = axis
		}
	}

	span := func(axis int) (float64, float64) {
		return min(c0[axis], c1[axis]), max(c0[axis], c1[axis])
	}

	switch shared {
	case 0:
		y0, y1 := span(1)
		z0, z1 := span(2)
		return geometry.NewYZRect(y0, y1, z0, z1, c0[0], mat, facingForward), nil
	case 1:
		x0, x1 := span(0)
		z0, z1 := span(2)
		return geometry.NewXZRect(x0, x1, z0, z1, c0[1], mat, facingForward), nil
	case 2:
		x0, x1 := span(0)
		y0, y1 := span(1)
		return geometry.NewXYRect(x0, x1, y0, y1, c0[2], mat, facingForward), nil
	}
	return nil, ErrMalformedRect
}

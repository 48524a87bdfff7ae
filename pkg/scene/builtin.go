package scene

import (
	"fmt"
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/loaders"
)

// description accumulates a scene description in code
type description struct {
	*loaders.SceneFile
}

func newDescription(camera loaders.CameraSpec, background loaders.BackgroundSpec) *description {
	return &description{&loaders.SceneFile{
		Camera:     camera,
		Background: loaders.BackgroundEntry{BackgroundSpec: background},
		Textures:   make(map[string]loaders.TextureEntry),
		Materials:  make(map[string]loaders.MaterialEntry),
		Objects:    make(map[string]loaders.ObjectEntry),
	}}
}

func (d *description) texture(name string, spec loaders.TextureSpec) string {
	d.Textures[name] = loaders.TextureEntry{TextureSpec: spec}
	return name
}

func (d *description) material(name string, spec loaders.MaterialSpec) string {
	d.Materials[name] = loaders.MaterialEntry{MaterialSpec: spec}
	return name
}

// solid registers a solid colour texture and a lambertian material using it, both called name
func (d *description) solid(name string, colour loaders.Triple) string {
	d.texture(name, &loaders.SolidColourSpec{Colour: colour})
	return d.material(name, &loaders.LambertianSpec{Texture: name})
}

func (d *description) object(name string, spec loaders.ObjectSpec) string {
	d.Objects[name] = loaders.ObjectEntry{ObjectSpec: spec}
	return name
}

func (d *description) place(names ...string) {
	d.World = append(d.World, names...)
}

func triple(v core.Vec3) loaders.Triple {
	return loaders.Triple{v.X, v.Y, v.Z}
}

// cornellWalls adds the five walls of a 555 unit Cornell box and a ceiling light
func cornellWalls(d *description, lightLo, lightHi [2]float64, emit float64) {
	red := d.solid("red", loaders.Triple{0.65, 0.05, 0.05})
	white := d.solid("white", loaders.Triple{0.73, 0.73, 0.73})
	green := d.solid("green", loaders.Triple{0.12, 0.45, 0.15})
	d.texture("light", &loaders.SolidColourSpec{Colour: loaders.Triple{emit, emit, emit}})
	light := d.material("light", &loaders.DiffuseLightSpec{Emit: "light"})

	rect := func(name string, c0, c1 loaders.Triple, facingForward bool, mat string) string {
		return d.object(name, &loaders.RectSpec{Corner0: c0, Corner1: c1, FacingForward: facingForward, Material: mat})
	}

	d.place(
		rect("leftWall", loaders.Triple{555, 0, 0}, loaders.Triple{555, 555, 555}, false, green),
		rect("rightWall", loaders.Triple{0, 0, 0}, loaders.Triple{0, 555, 555}, true, red),
		rect("lamp", loaders.Triple{lightLo[0], 554, lightLo[1]}, loaders.Triple{lightHi[0], 554, lightHi[1]}, false, light),
		rect("floor", loaders.Triple{0, 0, 0}, loaders.Triple{555, 0, 555}, true, white),
		rect("ceiling", loaders.Triple{0, 555, 0}, loaders.Triple{555, 555, 555}, false, white),
		rect("backWall", loaders.Triple{0, 0, 555}, loaders.Triple{555, 555, 555}, false, white),
	)
}

func cornellCamera() loaders.CameraSpec {
	return loaders.CameraSpec{
		LookFrom:        loaders.Triple{278, 278, -800},
		LookAt:          loaders.Triple{278, 278, 0},
		DirectionUp:     loaders.Triple{0, 1, 0},
		FieldOfView:     40,
		AspectRatio:     [2]float64{1, 1},
		DistanceToFocus: 10,
		EndTime:         1,
	}
}

// cornellBoxes adds the tall and short boxes, rotated and moved into place, and returns their names
func cornellBoxes(d *description, mat string) (tall, short string) {
	d.object("tallBlock", &loaders.BlockSpec{Corner1: loaders.Triple{165, 330, 165}, Material: mat})
	d.object("tallTurned", &loaders.RotateSpec{Axis: "Y", Prototype: "tallBlock", Degrees: 15})
	tall = d.object("tallBox", &loaders.TranslateSpec{Prototype: "tallTurned", Offset: loaders.Triple{265, 0, 295}})

	d.object("shortBlock", &loaders.BlockSpec{Corner1: loaders.Triple{165, 165, 165}, Material: mat})
	d.object("shortTurned", &loaders.RotateSpec{Axis: "Y", Prototype: "shortBlock", Degrees: -18})
	short = d.object("shortBox", &loaders.TranslateSpec{Prototype: "shortTurned", Offset: loaders.Triple{130, 0, 65}})
	return tall, short
}

// NewCornellScene creates the classic Cornell box with two rotated blocks
func NewCornellScene() *loaders.SceneFile {
	d := newDescription(cornellCamera(), &loaders.PlainColourSpec{})
	cornellWalls(d, [2]float64{213, 227}, [2]float64{343, 332}, 15)

	tall, short := cornellBoxes(d, "white")
	d.place(tall, short)
	return d.SceneFile
}

// NewCornellSmokeScene fills the Cornell box blocks with dark and light smoke under a larger, dimmer light
func NewCornellSmokeScene() *loaders.SceneFile {
	d := newDescription(cornellCamera(), &loaders.PlainColourSpec{})
	cornellWalls(d, [2]float64{113, 127}, [2]float64{443, 432}, 7)

	d.texture("soot", &loaders.SolidColourSpec{})
	d.texture("fog", &loaders.SolidColourSpec{Colour: loaders.Triple{1, 1, 1}})
	d.material("soot", &loaders.IsotropicSpec{Albedo: "soot"})
	d.material("fog", &loaders.IsotropicSpec{Albedo: "fog"})

	tall, short := cornellBoxes(d, "white")
	d.place(
		d.object("smoke", &loaders.ConstantMediumSpec{Boundary: tall, PhaseFunction: "soot", Density: 0.01}),
		d.object("mist", &loaders.ConstantMediumSpec{Boundary: short, PhaseFunction: "fog", Density: 0.01}),
	)
	return d.SceneFile
}

// NewRandomSpheresScene scatters small diffuse, metal and glass spheres around three large ones.
// Diffuse spheres bounce upwards during the shutter interval.
func NewRandomSpheresScene(seed int64) *loaders.SceneFile {
	random := rand.New(rand.NewSource(seed))

	d := newDescription(loaders.CameraSpec{
		LookFrom:        loaders.Triple{13, 2, 3},
		DirectionUp:     loaders.Triple{0, 1, 0},
		FieldOfView:     20,
		AspectRatio:     [2]float64{16, 9},
		Aperture:        0.1,
		DistanceToFocus: 10,
		EndTime:         1,
	}, &loaders.GradientSpec{
		Direction: loaders.Triple{0, 1, 0},
		Colour0:   loaders.Triple{1, 1, 1},
		Colour1:   loaders.Triple{0.5, 0.7, 1},
	})

	d.texture("odd", &loaders.SolidColourSpec{Colour: loaders.Triple{0.2, 0.3, 0.1}})
	d.texture("even", &loaders.SolidColourSpec{Colour: loaders.Triple{0.9, 0.9, 0.9}})
	d.texture("board", &loaders.CheckeredTextureSpec{Odd: "odd", Even: "even", TileSize: 10})
	d.material("ground", &loaders.LambertianSpec{Texture: "board"})
	glass := d.material("glass", &loaders.DielectricSpec{IndexOfRefraction: 1.5})

	d.place(d.object("ground", &loaders.PlaneSpec{
		Point1:   loaders.Triple{1, 0, 0},
		Point2:   loaders.Triple{0, 0, -1},
		UVRepeat: 1,
		Material: "ground",
	}))

	clearing := core.NewVec3(4, 0.2, 0)
	for a := -11; a < 11; a++ {
		for b := -11; b < 11; b++ {
			centre := core.NewVec3(float64(a)+0.9*random.Float64(), 0.2, float64(b)+0.9*random.Float64())
			if centre.Subtract(clearing).Length() <= 0.9 {
				continue
			}
			name := fmt.Sprintf("sphere_%d_%d", a, b)

			switch choose := random.Float64(); {
			case choose < 0.8:
				albedo := core.RandomVec3(random, 0, 1).MultiplyVec(core.RandomVec3(random, 0, 1))
				d.solid(name, triple(albedo))
				d.place(d.object(name, &loaders.MovingSphereSpec{
					Centre0:  triple(centre),
					Centre1:  triple(centre.Add(core.NewVec3(0, core.RandomInRange(random, 0, 0.5), 0))),
					Time1:    1,
					Radius:   0.2,
					Material: name,
				}))
			case choose < 0.95:
				d.material(name, &loaders.MetalSpec{
					Albedo: triple(core.RandomVec3(random, 0.5, 1)),
					Fuzz:   core.RandomInRange(random, 0, 0.5),
				})
				d.place(d.object(name, &loaders.SphereSpec{Centre: triple(centre), Radius: 0.2, Material: name}))
			default:
				d.place(d.object(name, &loaders.SphereSpec{Centre: triple(centre), Radius: 0.2, Material: glass}))
			}
		}
	}

	d.solid("clay", loaders.Triple{0.4, 0.2, 0.1})
	d.material("mirror", &loaders.MetalSpec{Albedo: loaders.Triple{0.7, 0.6, 0.5}})
	d.place(
		d.object("glassBall", &loaders.SphereSpec{Centre: loaders.Triple{0, 1, 0}, Radius: 1, Material: glass}),
		d.object("clayBall", &loaders.SphereSpec{Centre: loaders.Triple{-4, 1, 0}, Radius: 1, Material: "clay"}),
		d.object("mirrorBall", &loaders.SphereSpec{Centre: loaders.Triple{4, 1, 0}, Radius: 1, Material: "mirror"}),
	)
	return d.SceneFile
}

// NewShowcaseScene lights a few primitives with a spotlight over a tiled floor
func NewShowcaseScene() *loaders.SceneFile {
	d := newDescription(loaders.CameraSpec{
		LookFrom:        loaders.Triple{0, 3, 8},
		LookAt:          loaders.Triple{0, 0.75, 0},
		DirectionUp:     loaders.Triple{0, 1, 0},
		FieldOfView:     35,
		AspectRatio:     [2]float64{3, 2},
		DistanceToFocus: 8,
		EndTime:         1,
	}, &loaders.PlainColourSpec{Colour: loaders.Triple{0.05, 0.05, 0.08}})

	d.solid("slate", loaders.Triple{0.3, 0.3, 0.35})
	d.solid("chalk", loaders.Triple{0.85, 0.85, 0.8})
	d.material("tiles", &loaders.CheckeredMaterialSpec{Odd: "slate", Even: "chalk", TileDensity: 2})
	d.material("steel", &loaders.MetalSpec{Albedo: loaders.Triple{0.8, 0.8, 0.85}, Fuzz: 0.05})
	d.material("glass", &loaders.DielectricSpec{IndexOfRefraction: 1.5})
	d.texture("ochre", &loaders.SolidColourSpec{Colour: loaders.Triple{0.8, 0.5, 0.1}})
	d.texture("ink", &loaders.SolidColourSpec{Colour: loaders.Triple{0.1, 0.1, 0.3}})
	d.texture("stripes", &loaders.UVCheckeredTextureSpec{Odd: "ochre", Even: "ink", TileDensity: 8})
	d.material("striped", &loaders.LambertianSpec{Texture: "stripes"})

	d.object("fin", &loaders.TriangleSpec{
		Point0:   loaders.Triple{-0.75, 0, 0},
		Point1:   loaders.Triple{0.75, 0, 0},
		Point2:   loaders.Triple{0, 1.5, 0},
		Material: "steel",
	})
	d.object("cube", &loaders.BlockSpec{Corner0: loaders.Triple{-0.5, 0, -0.5}, Corner1: loaders.Triple{0.5, 1, 0.5}, Material: "glass"})
	d.object("ball", &loaders.SphereSpec{Centre: loaders.Triple{0, 0.5, 0}, Radius: 0.5, Material: "striped"})
	d.object("pair", &loaders.ListSpec{Objects: []string{"cube", "ball"}})
	d.object("pairTilted", &loaders.RotateSpec{Axis: "X", Prototype: "pair", Degrees: 10})

	d.place(
		d.object("floor", &loaders.PlaneSpec{
			Point1:   loaders.Triple{1, 0, 0},
			Point2:   loaders.Triple{0, 0, -1},
			UVRepeat: 2,
			Material: "tiles",
		}),
		d.object("finPlaced", &loaders.TranslateSpec{Prototype: "fin", Offset: loaders.Triple{-1.75, 0, -0.5}}),
		d.object("pairPlaced", &loaders.TranslateSpec{Prototype: "pairTilted", Offset: loaders.Triple{1.25, 0, 0}}),
		d.object("lamp", &loaders.SpotlightSpec{
			LookFrom: loaders.Triple{-2, 5, 3},
			LookAt:   loaders.Triple{0, 0.5, 0},
			Length:   1,
			Width:    0.8,
			Light:    loaders.Triple{40, 38, 34},
		}),
	)
	return d.SceneFile
}

// NewBlockyScene is a glass ball over a 20x20 field of random-height blocks, lit by a spotlight
func NewBlockyScene(seed int64) *loaders.SceneFile {
	random := rand.New(rand.NewSource(seed))

	d := newDescription(loaders.CameraSpec{
		LookFrom:        loaders.Triple{478, 378, -600},
		LookAt:          loaders.Triple{278, 178, 0},
		DirectionUp:     loaders.Triple{0, 1, 0},
		FieldOfView:     40,
		AspectRatio:     [2]float64{16, 9},
		DistanceToFocus: 300,
		EndTime:         1,
	}, &loaders.PlainColourSpec{})

	ground := d.solid("ground", loaders.Triple{0.48, 0.83, 0.53})
	glass := d.material("glass", &loaders.DielectricSpec{IndexOfRefraction: 1.5})

	const w = 100.0
	for i := 0; i < 20; i++ {
		for j := 0; j < 20; j++ {
			x0 := -1000 + float64(i)*w
			z0 := -1000 + float64(j)*w
			d.place(d.object(fmt.Sprintf("block_%d_%d", i, j), &loaders.BlockSpec{
				Corner0:  loaders.Triple{x0, -1, z0},
				Corner1:  loaders.Triple{x0 + w, random.Float64() * w, z0 + w},
				Material: ground,
			}))
		}
	}

	d.place(
		d.object("spotlight", &loaders.SpotlightSpec{
			LookFrom: loaders.Triple{650, 330, 200},
			LookAt:   loaders.Triple{310, 150, 100},
			Length:   600,
			Width:    120,
			Light:    loaders.Triple{80, 80, 80},
		}),
		d.object("ball", &loaders.SphereSpec{Centre: loaders.Triple{310, 200, 100}, Radius: 100, Material: glass}),
	)
	return d.SceneFile
}

package integrator

import (
	"math"
	"math/rand"
	"testing"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/geometry"
	"github.com/df07/go-scene-raytracer/pkg/material"
)

// MockMaterial records how often it was asked to scatter
type MockMaterial struct {
	scatterCount int
	emit         core.Vec3
	attenuation  core.Vec3
	scatters     bool
}

func (m *MockMaterial) Scatter(rayIn core.Ray, hit *core.HitRecord, _ *rand.Rand) (core.ScatterResult, bool) {
	m.scatterCount++
	return core.ScatterResult{
		Scattered:   core.NewRay(hit.Point, hit.Normal, rayIn.Time),
		Attenuation: m.attenuation,
	}, m.scatters
}

func (m *MockMaterial) Emitted(*core.HitRecord) core.Vec3 {
	return m.emit
}

var skyBlue = core.SolidSky(core.NewVec3(0.5, 0.7, 1.0))

func TestCastRay_ZeroBouncesIsBlack(t *testing.T) {
	world := geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewDiffuseLight(core.NewVec3(9, 9, 9)))
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1), 0)

	if got := CastRay(ray, world, skyBlue, 0, rand.New(rand.NewSource(1))); got != (core.Vec3{}) {
		t.Errorf("Expected black, got %v", got)
	}
}

func TestCastRay_MissSeesSky(t *testing.T) {
	world := geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(1, 1, 1)))
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1), 0)

	if got := CastRay(ray, world, skyBlue, 5, rand.New(rand.NewSource(1))); got != core.NewVec3(0.5, 0.7, 1.0) {
		t.Errorf("Expected sky color, got %v", got)
	}
}

func TestCastRay_EmitterAbsorbs(t *testing.T) {
	world := geometry.NewSphere(core.NewVec3(0, 0, -3), 1, material.NewDiffuseLight(core.NewVec3(4, 2, 1)))
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1), 0)

	if got := CastRay(ray, world, skyBlue, 50, rand.New(rand.NewSource(1))); got != core.NewVec3(4, 2, 1) {
		t.Errorf("Expected light color, got %v", got)
	}
}

func TestCastRay_BounceLimit(t *testing.T) {
	// Mirror box: the scattered ray always points back inside, so only the limit stops it
	mock := &MockMaterial{attenuation: core.NewVec3(0.5, 0.5, 0.5), scatters: true}
	world := geometry.NewSphere(core.Vec3{}, -10, mock)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(1, 0, 0), 0)

	got := CastRay(ray, world, skyBlue, 7, rand.New(rand.NewSource(1)))
	if mock.scatterCount != 7 {
		t.Errorf("Expected 7 scatter events, got %d", mock.scatterCount)
	}
	if got != (core.Vec3{}) {
		t.Errorf("Expected black once bounces run out, got %v", got)
	}
}

func TestCastRay_EmissionPlusAttenuatedSky(t *testing.T) {
	mock := &MockMaterial{
		emit:        core.NewVec3(0.1, 0.1, 0.1),
		attenuation: core.NewVec3(0.5, 0.5, 0.5),
		scatters:    true,
	}
	// Ray hits the sphere once; the scattered ray leaves along the normal into the sky
	world := geometry.NewSphere(core.NewVec3(0, 0, -2), 1, mock)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, -1), 0)

	got := CastRay(ray, world, skyBlue, 2, rand.New(rand.NewSource(1)))
	expected := core.NewVec3(0.1+0.25, 0.1+0.35, 0.1+0.5)
	if got.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Expected %v, got %v", expected, got)
	}
}

func TestPathTracingIntegrator_FiniteOnGroundScene(t *testing.T) {
	ground := geometry.NewPlane(core.NewVec3(0, -0.5, 0), core.NewVec3(1, -0.5, 0), core.NewVec3(0, -0.5, -1), 1,
		material.NewLambertian(core.NewVec3(0.5, 0.5, 0.5)))
	sphere := geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(0.7, 0.3, 0.3)))
	world := geometry.NewHittableList(ground, sphere)

	pt := NewPathTracingIntegrator(world, core.GradientSky(core.NewVec3(0, 1, 0), core.NewVec3(1, 1, 1), core.NewVec3(0.5, 0.7, 1)), 10)
	random := rand.New(rand.NewSource(42))

	for i := 0; i < 500; i++ {
		dir := core.NewVec3(core.RandomInRange(random, -1, 1), core.RandomInRange(random, -1, 1), -1)
		c := pt.RayColor(core.NewRay(core.Vec3{}, dir, 0), random)
		for _, ch := range []float64{c.X, c.Y, c.Z} {
			if math.IsNaN(ch) || math.IsInf(ch, 0) || ch < 0 || ch > 1 {
				t.Fatalf("Radiance out of range: %v", c)
			}
		}
	}
}

func TestPathTracingIntegrator_NilSkyIsBlack(t *testing.T) {
	world := geometry.NewSphere(core.NewVec3(0, 0, -1), 0.5, material.NewLambertian(core.NewVec3(1, 1, 1)))
	pt := NewPathTracingIntegrator(world, nil, 5)

	if got := pt.RayColor(core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0), 0), rand.New(rand.NewSource(1))); got != (core.Vec3{}) {
		t.Errorf("Expected black background, got %v", got)
	}
}

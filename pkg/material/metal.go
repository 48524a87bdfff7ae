package material

import (
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// Metal represents a metallic material with specular reflection
type Metal struct {
	Albedo core.Vec3
	Fuzz   float64 // 0.0 = perfect mirror, 1.0 = very fuzzy
}

// NewMetal creates a new metal material, clamping fuzz to [0, 1]
func NewMetal(albedo core.Vec3, fuzz float64) *Metal {
	return &Metal{Albedo: albedo, Fuzz: max(0, min(1, fuzz))}
}

// Scatter reflects the ray, jittered inside a sphere of radius Fuzz.
// Reflections that end up below the surface are absorbed.
func (m *Metal) Scatter(rayIn core.Ray, hit *core.HitRecord, random *rand.Rand) (core.ScatterResult, bool) {
	reflected := core.Reflect(rayIn.Direction.Normalize(), hit.Normal)
	if m.Fuzz > 0 {
		reflected = reflected.Add(core.RandomInUnitSphere(random).Multiply(m.Fuzz))
	}

	if reflected.Dot(hit.Normal) <= 0 {
		return core.ScatterResult{}, false
	}

	return core.ScatterResult{
		Scattered:   core.NewRay(hit.Point, reflected, rayIn.Time),
		Attenuation: m.Albedo,
	}, true
}

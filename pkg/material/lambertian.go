package material

import (
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// Lambertian represents a perfectly diffuse material
type Lambertian struct {
	Albedo core.Texture
}

// NewLambertian creates a new lambertian material with solid color
func NewLambertian(albedo core.Vec3) *Lambertian {
	return &Lambertian{Albedo: NewSolidColor(albedo)}
}

// NewTexturedLambertian creates a new lambertian material with texture
func NewTexturedLambertian(albedo core.Texture) *Lambertian {
	return &Lambertian{Albedo: albedo}
}

// Scatter sends the ray towards normal + a random unit vector
func (l *Lambertian) Scatter(rayIn core.Ray, hit *core.HitRecord, random *rand.Rand) (core.ScatterResult, bool) {
	direction := hit.Normal.Add(core.RandomUnitVector(random))
	if direction.NearZero() {
		direction = hit.Normal
	}

	return core.ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction, rayIn.Time),
		Attenuation: l.Albedo.Value(hit.U, hit.V, hit.Point),
	}, true
}

package material

import (
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// Isotropic scatters uniformly in all directions. It is the phase function of
// participating media and ignores the hit normal.
type Isotropic struct {
	Albedo core.Texture
}

// NewIsotropic creates an isotropic phase function with a solid color
func NewIsotropic(albedo core.Vec3) *Isotropic {
	return &Isotropic{Albedo: NewSolidColor(albedo)}
}

// NewTexturedIsotropic creates an isotropic phase function backed by a texture
func NewTexturedIsotropic(albedo core.Texture) *Isotropic {
	return &Isotropic{Albedo: albedo}
}

// Scatter picks a random direction inside the unit sphere
func (i *Isotropic) Scatter(rayIn core.Ray, hit *core.HitRecord, random *rand.Rand) (core.ScatterResult, bool) {
	direction := core.RandomInUnitSphere(random)
	if direction.NearZero() {
		direction = core.RandomUnitVector(random)
	}
	return core.ScatterResult{
		Scattered:   core.NewRay(hit.Point, direction, rayIn.Time),
		Attenuation: i.Albedo.Value(hit.U, hit.V, hit.Point),
	}, true
}

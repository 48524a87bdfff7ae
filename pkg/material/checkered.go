package material

import (
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// Checkered delegates to one of two materials in a UV checker pattern
type Checkered struct {
	Odd, Even   core.Material
	TileDensity float64
}

// NewCheckered creates a checkered material
func NewCheckered(odd, even core.Material, tileDensity float64) *Checkered {
	return &Checkered{Odd: odd, Even: even, TileDensity: tileDensity}
}

func (c *Checkered) pick(hit *core.HitRecord) core.Material {
	if uvCheckerOdd(hit.U, hit.V, c.TileDensity) {
		return c.Odd
	}
	return c.Even
}

// Scatter uses the material of the tile that was hit
func (c *Checkered) Scatter(rayIn core.Ray, hit *core.HitRecord, random *rand.Rand) (core.ScatterResult, bool) {
	return c.pick(hit).Scatter(rayIn, hit, random)
}

// Emitted uses the emission of the tile that was hit
func (c *Checkered) Emitted(hit *core.HitRecord) core.Vec3 {
	if emitter, ok := c.pick(hit).(core.Emitter); ok {
		return emitter.Emitted(hit)
	}
	return core.Vec3{}
}

package integrator

import (
	"math"
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// ShadowAcneEpsilon is the minimum hit distance for any traced ray
const ShadowAcneEpsilon = 0.001

// CastRay follows ray through world for at most maxBounces surface interactions.
// Each hit contributes its emission plus the attenuated radiance of the scattered ray;
// rays that escape see the sky.
func CastRay(ray core.Ray, world core.Hittable, sky core.Sky, maxBounces int, random *rand.Rand) core.Vec3 {
	if maxBounces <= 0 {
		return core.Vec3{}
	}

	hit, isHit := world.Hit(ray, ShadowAcneEpsilon, math.Inf(1), random)
	if !isHit {
		return sky(ray)
	}

	emitted := core.Emitted(hit)
	scatter, didScatter := hit.Material.Scatter(ray, hit, random)
	if !didScatter {
		return emitted
	}

	incoming := CastRay(scatter.Scattered, world, sky, maxBounces-1, random)
	return emitted.Add(scatter.Attenuation.MultiplyVec(incoming))
}

// PathTracingIntegrator implements recursive unidirectional path tracing
type PathTracingIntegrator struct {
	World      core.Hittable
	Sky        core.Sky
	MaxBounces int
}

// NewPathTracingIntegrator creates a new path tracing integrator
func NewPathTracingIntegrator(world core.Hittable, sky core.Sky, maxBounces int) *PathTracingIntegrator {
	if sky == nil {
		sky = core.SolidSky(core.Vec3{})
	}
	return &PathTracingIntegrator{World: world, Sky: sky, MaxBounces: maxBounces}
}

// RayColor computes the color for a single camera ray
func (pt *PathTracingIntegrator) RayColor(ray core.Ray, random *rand.Rand) core.Vec3 {
	return CastRay(ray, pt.World, pt.Sky, pt.MaxBounces, random)
}

package geometry

import (
	"math"
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// mediumExitOffset is added past the entry point when looking for the exit
const mediumExitOffset = 0.0001

// ConstantMedium is a volume of uniform density inside a closed boundary.
// Rays scatter at an exponentially distributed depth inside it.
type ConstantMedium struct {
	Boundary      core.Hittable
	PhaseFunction core.Material
	negInvDensity float64
}

// NewConstantMedium fills boundary with a medium of the given density
func NewConstantMedium(boundary core.Hittable, phaseFunction core.Material, density float64) *ConstantMedium {
	return &ConstantMedium{
		Boundary:      boundary,
		PhaseFunction: phaseFunction,
		negInvDensity: -1.0 / density,
	}
}

// Hit samples a scatter point within the part of the boundary the ray crosses.
// The normal (+X) and front face (true) of the record carry no meaning; the phase
// function ignores them.
func (m *ConstantMedium) Hit(ray core.Ray, tMin, tMax float64, random *rand.Rand) (*core.HitRecord, bool) {
	entry, ok := m.Boundary.Hit(ray, math.Inf(-1), math.Inf(1), random)
	if !ok {
		return nil, false
	}
	exit, ok := m.Boundary.Hit(ray, entry.T+mediumExitOffset, math.Inf(1), random)
	if !ok {
		return nil, false
	}

	t0 := math.Max(entry.T, tMin)
	t1 := math.Min(exit.T, tMax)
	if t0 >= t1 {
		return nil, false
	}
	t0 = math.Max(t0, 0)

	rayLength := ray.Direction.Length()
	distanceInside := (t1 - t0) * rayLength
	hitDistance := m.negInvDensity * math.Log(random.Float64())
	if hitDistance > distanceInside {
		return nil, false
	}

	t := t0 + hitDistance/rayLength
	return &core.HitRecord{
		T:         t,
		Point:     ray.At(t),
		Normal:    core.NewVec3(1, 0, 0),
		FrontFace: true,
		Material:  m.PhaseFunction,
	}, true
}

// BoundingBox is the boundary's box
func (m *ConstantMedium) BoundingBox(time0, time1 float64) (core.AABB, bool) {
	return m.Boundary.BoundingBox(time0, time1)
}

package integrator

import (
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// RayColor estimates the radiance arriving along ray
	RayColor(ray core.Ray, random *rand.Rand) core.Vec3
}

package core

import (
	"math"
	"math/rand"
)

// RandomInRange returns a uniform float64 in [lo, hi)
func RandomInRange(random *rand.Rand, lo, hi float64) float64 {
	return lo + (hi-lo)*random.Float64()
}

// RandomVec3 returns a vector with each component uniform in [lo, hi)
func RandomVec3(random *rand.Rand, lo, hi float64) Vec3 {
	return NewVec3(
		RandomInRange(random, lo, hi),
		RandomInRange(random, lo, hi),
		RandomInRange(random, lo, hi),
	)
}

// RandomInUnitSphere returns a point strictly inside the unit sphere by rejection
func RandomInUnitSphere(random *rand.Rand) Vec3 {
	for {
		p := RandomVec3(random, -1, 1)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}

// RandomUnitVector returns a direction uniformly distributed on the unit sphere
func RandomUnitVector(random *rand.Rand) Vec3 {
	z := RandomInRange(random, -1, 1)
	a := RandomInRange(random, 0, 2*math.Pi)
	r := math.Sqrt(1 - z*z)
	return NewVec3(r*math.Cos(a), r*math.Sin(a), z)
}

// RandomInUnitDisk generates a random point in a unit disk (for depth of field)
func RandomInUnitDisk(random *rand.Rand) Vec3 {
	for {
		p := NewVec3(2*random.Float64()-1, 2*random.Float64()-1, 0)
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}

package geometry

import (
	"math"
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// planeDeterminantEpsilon rejects rays (nearly) parallel to a plane
const planeDeterminantEpsilon = 1e-7

// LinePlaneIntersection intersects the line origin + t*dir with the plane through p0
// spanned by e1 and e2. It returns (t, u, v) such that the hit point is
// origin + t*dir = p0 + u*e1 + v*e2.
func LinePlaneIntersection(origin, dir, p0, e1, e2 core.Vec3) (t, u, v float64, ok bool) {
	normal := e1.Cross(e2)
	negDir := dir.Negate()
	det := negDir.Dot(normal)
	if math.Abs(det) <= planeDeterminantEpsilon {
		return 0, 0, 0, false
	}

	rel := origin.Subtract(p0)
	t = normal.Dot(rel) / det
	u = e2.Cross(negDir).Dot(rel) / det
	v = negDir.Cross(e1).Dot(rel) / det
	return t, u, v, true
}

// Plane is an infinite plane through three points.
// Texture coordinates repeat every UVRepeat units along the plane.
type Plane struct {
	Point    core.Vec3
	Normal   core.Vec3
	UVRepeat float64
	Material core.Material

	e1, e2 core.Vec3 // orthonormal in-plane axes
}

// NewPlane creates a plane through p0, p1 and p2.
// The normal follows the winding (p1-p0) x (p2-p0).
func NewPlane(p0, p1, p2 core.Vec3, uvRepeat float64, material core.Material) *Plane {
	e1 := p1.Subtract(p0).Normalize()
	normal := e1.Cross(p2.Subtract(p0)).Normalize()
	e2 := normal.Cross(e1)
	if uvRepeat <= 0 {
		uvRepeat = 1
	}
	return &Plane{
		Point:    p0,
		Normal:   normal,
		UVRepeat: uvRepeat,
		Material: material,
		e1:       e1,
		e2:       e2,
	}
}

// Hit tests the ray against the plane
func (p *Plane) Hit(ray core.Ray, tMin, tMax float64, _ *rand.Rand) (*core.HitRecord, bool) {
	t, a, b, ok := LinePlaneIntersection(ray.Origin, ray.Direction, p.Point, p.e1, p.e2)
	if !ok || t < tMin || t > tMax {
		return nil, false
	}

	hitRecord := &core.HitRecord{
		T:        t,
		Point:    ray.At(t),
		Material: p.Material,
		U:        wrapUnit(math.Mod(a, p.UVRepeat) / p.UVRepeat),
		V:        wrapUnit(math.Mod(-b, p.UVRepeat) / p.UVRepeat),
	}
	hitRecord.SetFaceNormal(ray, p.Normal)
	return hitRecord, true
}

// BoundingBox reports the plane as unbounded
func (p *Plane) BoundingBox(_, _ float64) (core.AABB, bool) {
	return core.AABB{}, false
}

// wrapUnit maps a value in (-1, 1) into [0, 1)
func wrapUnit(x float64) float64 {
	if x < 0 {
		return 1 + x
	}
	return x
}

package geometry

import (
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// triangleBoxPadding keeps axis-aligned triangles out of zero-width boxes
const triangleBoxPadding = 0.0001

// Triangle is a single-sided-normal triangle with vertices V0, V1, V2
type Triangle struct {
	V0, V1, V2 core.Vec3
	Normal     core.Vec3
	Material   core.Material

	e1, e2 core.Vec3
}

// NewTriangle creates a triangle. The normal follows the winding (v1-v0) x (v2-v0).
func NewTriangle(v0, v1, v2 core.Vec3, material core.Material) *Triangle {
	e1 := v1.Subtract(v0)
	e2 := v2.Subtract(v0)
	return &Triangle{
		V0:       v0,
		V1:       v1,
		V2:       v2,
		Normal:   e1.Cross(e2).Normalize(),
		Material: material,
		e1:       e1,
		e2:       e2,
	}
}

// Hit tests the ray against the triangle
func (tr *Triangle) Hit(ray core.Ray, tMin, tMax float64, _ *rand.Rand) (*core.HitRecord, bool) {
	t, u, v, ok := LinePlaneIntersection(ray.Origin, ray.Direction, tr.V0, tr.e1, tr.e2)
	if !ok || t < tMin || t > tMax {
		return nil, false
	}
	if u < 0 || v < 0 || u+v > 1 {
		return nil, false
	}

	hitRecord := &core.HitRecord{
		T:        t,
		Point:    ray.At(t),
		Material: tr.Material,
		U:        v,
		V:        u,
	}
	hitRecord.SetFaceNormal(ray, tr.Normal)
	return hitRecord, true
}

// BoundingBox returns the padded box around the three vertices
func (tr *Triangle) BoundingBox(_, _ float64) (core.AABB, bool) {
	return core.NewAABBFromPoints(tr.V0, tr.V1, tr.V2).Expand(triangleBoxPadding), true
}

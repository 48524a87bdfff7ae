package geometry

import (
	"math"
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// Sphere represents a sphere shape.
// A negative radius flips the normals, which makes hollow glass bubbles.
type Sphere struct {
	Center   core.Vec3
	Radius   float64
	Material core.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, material core.Material) *Sphere {
	return &Sphere{
		Center:   center,
		Radius:   radius,
		Material: material,
	}
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64, _ *rand.Rand) (*core.HitRecord, bool) {
	return hitSphere(ray, s.Center, s.Radius, s.Material, tMin, tMax)
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox(_, _ float64) (core.AABB, bool) {
	return sphereBox(s.Center, s.Radius), true
}

// MovingSphere is a sphere whose center moves linearly between two keyframes
type MovingSphere struct {
	Center0, Center1 core.Vec3
	Time0, Time1     float64
	Radius           float64
	Material         core.Material
}

// NewMovingSphere creates a sphere at center0 at time0 and center1 at time1
func NewMovingSphere(center0, center1 core.Vec3, time0, time1, radius float64, material core.Material) *MovingSphere {
	return &MovingSphere{
		Center0:  center0,
		Center1:  center1,
		Time0:    time0,
		Time1:    time1,
		Radius:   radius,
		Material: material,
	}
}

// CenterAt returns the interpolated center at the given time
func (s *MovingSphere) CenterAt(time float64) core.Vec3 {
	if s.Time1 == s.Time0 {
		return s.Center0
	}
	f := (time - s.Time0) / (s.Time1 - s.Time0)
	return s.Center0.Add(s.Center1.Subtract(s.Center0).Multiply(f))
}

// Hit tests the ray against the sphere at the ray's time
func (s *MovingSphere) Hit(ray core.Ray, tMin, tMax float64, _ *rand.Rand) (*core.HitRecord, bool) {
	return hitSphere(ray, s.CenterAt(ray.Time), s.Radius, s.Material, tMin, tMax)
}

// BoundingBox covers the sphere at both ends of the time range
func (s *MovingSphere) BoundingBox(time0, time1 float64) (core.AABB, bool) {
	box0 := sphereBox(s.CenterAt(time0), s.Radius)
	box1 := sphereBox(s.CenterAt(time1), s.Radius)
	return box0.Union(box1), true
}

func sphereBox(center core.Vec3, radius float64) core.AABB {
	r := math.Abs(radius)
	extent := core.NewVec3(r, r, r)
	return core.NewAABB(center.Subtract(extent), center.Add(extent))
}

func hitSphere(ray core.Ray, center core.Vec3, radius float64, material core.Material, tMin, tMax float64) (*core.HitRecord, bool) {
	root, ok := sphereRoot(ray, center, radius, tMin, tMax)
	if !ok {
		return nil, false
	}

	hitRecord := &core.HitRecord{
		T:        root,
		Point:    ray.At(root),
		Material: material,
	}

	outwardNormal := hitRecord.Point.Subtract(center).Divide(radius)
	hitRecord.SetFaceNormal(ray, outwardNormal)
	hitRecord.U, hitRecord.V = SphereUV(outwardNormal)

	return hitRecord, true
}

// sphereRoot solves the ray-sphere quadratic, preferring the nearer root in range.
// Rays starting inside the sphere get the exit point.
func sphereRoot(ray core.Ray, center core.Vec3, radius, tMin, tMax float64) (float64, bool) {
	oc := ray.Origin.Subtract(center)
	a := ray.Direction.LengthSquared()
	halfB := oc.Dot(ray.Direction)
	c := oc.LengthSquared() - radius*radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return 0, false
	}

	sqrtD := math.Sqrt(discriminant)
	root := (-halfB - sqrtD) / a
	if root < tMin || root > tMax {
		root = (-halfB + sqrtD) / a
		if root < tMin || root > tMax {
			return 0, false
		}
	}
	return root, true
}

// SphereUV maps a point on the unit sphere to texture coordinates.
// u runs around the Y axis starting at -X, v runs from -Y (0) to +Y (1).
func SphereUV(p core.Vec3) (u, v float64) {
	theta := math.Acos(-p.Y)
	phi := math.Atan2(-p.Z, p.X) + math.Pi
	return phi / (2 * math.Pi), theta / math.Pi
}

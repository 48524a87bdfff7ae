package geometry

import (
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// RectPlane names the axis-aligned plane a Rect lies in
type RectPlane int

const (
	PlaneXY RectPlane = iota // constant Z
	PlaneXZ                  // constant Y
	PlaneYZ                  // constant X
)

// axes returns the two in-plane axes and the constant axis
func (p RectPlane) axes() (a, b, k int) {
	switch p {
	case PlaneXY:
		return 0, 1, 2
	case PlaneXZ:
		return 0, 2, 1
	default:
		return 1, 2, 0
	}
}

func (p RectPlane) String() string {
	switch p {
	case PlaneXY:
		return "xy"
	case PlaneXZ:
		return "xz"
	default:
		return "yz"
	}
}

// rectThickness pads the flat box so the BVH slab test never sees a zero-width slab
const rectThickness = 0.0001

// Rect is an axis-aligned rectangle.
// FacingPositive picks whether its outward normal points along +k or -k.
type Rect struct {
	Plane          RectPlane
	A0, A1         float64 // extent along the first in-plane axis
	B0, B1         float64 // extent along the second in-plane axis
	K              float64 // position on the constant axis
	FacingPositive bool
	Material       core.Material
}

// NewXYRect creates a rectangle at z=k spanning [x0,x1]x[y0,y1]
func NewXYRect(x0, x1, y0, y1, k float64, material core.Material, facingPositive bool) *Rect {
	return &Rect{Plane: PlaneXY, A0: x0, A1: x1, B0: y0, B1: y1, K: k, Material: material, FacingPositive: facingPositive}
}

// NewXZRect creates a rectangle at y=k spanning [x0,x1]x[z0,z1]
func NewXZRect(x0, x1, z0, z1, k float64, material core.Material, facingPositive bool) *Rect {
	return &Rect{Plane: PlaneXZ, A0: x0, A1: x1, B0: z0, B1: z1, K: k, Material: material, FacingPositive: facingPositive}
}

// NewYZRect creates a rectangle at x=k spanning [y0,y1]x[z0,z1]
func NewYZRect(y0, y1, z0, z1, k float64, material core.Material, facingPositive bool) *Rect {
	return &Rect{Plane: PlaneYZ, A0: y0, A1: y1, B0: z0, B1: z1, K: k, Material: material, FacingPositive: facingPositive}
}

// Hit tests the ray against the rectangle
func (r *Rect) Hit(ray core.Ray, tMin, tMax float64, _ *rand.Rand) (*core.HitRecord, bool) {
	a, b, k := r.Plane.axes()

	dk := ray.Direction.Axis(k)
	if dk == 0 {
		return nil, false
	}
	t := (r.K - ray.Origin.Axis(k)) / dk
	if t < tMin || t > tMax {
		return nil, false
	}

	pa := ray.Origin.Axis(a) + t*ray.Direction.Axis(a)
	pb := ray.Origin.Axis(b) + t*ray.Direction.Axis(b)
	if pa < r.A0 || pa > r.A1 || pb < r.B0 || pb > r.B1 {
		return nil, false
	}

	hitRecord := &core.HitRecord{
		T:        t,
		Point:    ray.At(t),
		Material: r.Material,
		U:        (pa - r.A0) / (r.A1 - r.A0),
		V:        (pb - r.B0) / (r.B1 - r.B0),
	}
	hitRecord.SetFaceNormal(ray, r.outwardNormal())
	return hitRecord, true
}

func (r *Rect) outwardNormal() core.Vec3 {
	sign := -1.0
	if r.FacingPositive {
		sign = 1.0
	}
	switch r.Plane {
	case PlaneXY:
		return core.NewVec3(0, 0, sign)
	case PlaneXZ:
		return core.NewVec3(0, sign, 0)
	default:
		return core.NewVec3(sign, 0, 0)
	}
}

// BoundingBox returns a thin box around the rectangle
func (r *Rect) BoundingBox(_, _ float64) (core.AABB, bool) {
	a, b, k := r.Plane.axes()
	var lo, hi [3]float64
	lo[a], hi[a] = r.A0, r.A1
	lo[b], hi[b] = r.B0, r.B1
	lo[k], hi[k] = r.K-rectThickness, r.K+rectThickness
	return core.NewAABB(core.NewVec3(lo[0], lo[1], lo[2]), core.NewVec3(hi[0], hi[1], hi[2])), true
}

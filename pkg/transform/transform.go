// Package transform wraps geometry in translations and axis rotations.
// Rays are moved into the wrapped object's local space; hits are moved back out.
package transform

import (
	"math"
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// Translate shifts a shared object by Offset
type Translate struct {
	Object core.Hittable
	Offset core.Vec3
}

// NewTranslate creates a translated view of object
func NewTranslate(object core.Hittable, offset core.Vec3) *Translate {
	return &Translate{Object: object, Offset: offset}
}

// Hit tests the ray in the object's local space
func (t *Translate) Hit(ray core.Ray, tMin, tMax float64, random *rand.Rand) (*core.HitRecord, bool) {
	local := core.Ray{Origin: ray.Origin.Subtract(t.Offset), Direction: ray.Direction, Time: ray.Time}
	hit, ok := t.Object.Hit(local, tMin, tMax, random)
	if !ok {
		return nil, false
	}

	moved := *hit
	moved.Point = hit.Point.Add(t.Offset)
	return &moved, true
}

// BoundingBox is the object's box shifted by the offset
func (t *Translate) BoundingBox(time0, time1 float64) (core.AABB, bool) {
	box, ok := t.Object.BoundingBox(time0, time1)
	if !ok {
		return core.AABB{}, false
	}
	return core.NewAABB(box.Min.Add(t.Offset), box.Max.Add(t.Offset)), true
}

// Axis selects the rotation axis
type Axis int

const (
	AxisX Axis = iota
	AxisY
	AxisZ
)

func (a Axis) String() string {
	return [...]string{"x", "y", "z"}[a]
}

// Rotate turns a shared object about one coordinate axis through the origin
type Rotate struct {
	Object core.Hittable
	Axis   Axis

	sinTheta, cosTheta float64
	box                core.AABB
	bounded            bool
}

// NewRotateX rotates object about the X axis by degrees
func NewRotateX(object core.Hittable, degrees float64) *Rotate {
	return NewRotateRadians(object, AxisX, degreesToRadians(degrees))
}

// NewRotateY rotates object about the Y axis by degrees
func NewRotateY(object core.Hittable, degrees float64) *Rotate {
	return NewRotateRadians(object, AxisY, degreesToRadians(degrees))
}

// NewRotateZ rotates object about the Z axis by degrees
func NewRotateZ(object core.Hittable, degrees float64) *Rotate {
	return NewRotateRadians(object, AxisZ, degreesToRadians(degrees))
}

// NewRotateRadians rotates object about axis by radians.
// The world box is computed once from the 8 corners of the object's box over the
// whole shutter interval, so it is loose but never too small.
func NewRotateRadians(object core.Hittable, axis Axis, radians float64) *Rotate {
	r := &Rotate{
		Object:   object,
		Axis:     axis,
		sinTheta: math.Sin(radians),
		cosTheta: math.Cos(radians),
	}

	local, ok := object.BoundingBox(core.ShutterOpen, core.ShutterClose)
	if !ok {
		return r
	}

	corners := local.Corners()
	for i, c := range corners {
		corners[i] = r.toWorld(c)
	}
	r.box = core.NewAABBFromPoints(corners[:]...)
	r.bounded = true
	return r
}

func degreesToRadians(degrees float64) float64 {
	return degrees * math.Pi / 180
}

// rotate turns v by the angle whose sine is sin about the rotation axis
func (r *Rotate) rotate(v core.Vec3, sin float64) core.Vec3 {
	cos := r.cosTheta
	switch r.Axis {
	case AxisX:
		return core.NewVec3(v.X, cos*v.Y-sin*v.Z, sin*v.Y+cos*v.Z)
	case AxisY:
		return core.NewVec3(sin*v.Z+cos*v.X, v.Y, cos*v.Z-sin*v.X)
	default:
		return core.NewVec3(cos*v.X-sin*v.Y, sin*v.X+cos*v.Y, v.Z)
	}
}

func (r *Rotate) toWorld(v core.Vec3) core.Vec3 { return r.rotate(v, r.sinTheta) }
func (r *Rotate) toLocal(v core.Vec3) core.Vec3 { return r.rotate(v, -r.sinTheta) }

// Hit tests the ray in the object's local space
func (r *Rotate) Hit(ray core.Ray, tMin, tMax float64, random *rand.Rand) (*core.HitRecord, bool) {
	local := core.Ray{
		Origin:    r.toLocal(ray.Origin),
		Direction: r.toLocal(ray.Direction),
		Time:      ray.Time,
	}
	hit, ok := r.Object.Hit(local, tMin, tMax, random)
	if !ok {
		return nil, false
	}

	// Rotation preserves the normal's side relative to the ray, so FrontFace carries over
	rotated := *hit
	rotated.Point = r.toWorld(hit.Point)
	rotated.Normal = r.toWorld(hit.Normal)
	return &rotated, true
}

// BoundingBox returns the precomputed world box
func (r *Rotate) BoundingBox(_, _ float64) (core.AABB, bool) {
	return r.box, r.bounded
}

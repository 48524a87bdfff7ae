package geometry

import (
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// HittableList tests every member and keeps the nearest hit
type HittableList struct {
	Objects []core.Hittable
}

// NewHittableList creates a list over the given objects
func NewHittableList(objects ...core.Hittable) *HittableList {
	return &HittableList{Objects: objects}
}

// Add appends an object to the list
func (l *HittableList) Add(object core.Hittable) {
	l.Objects = append(l.Objects, object)
}

// Hit returns the nearest hit among all members
func (l *HittableList) Hit(ray core.Ray, tMin, tMax float64, random *rand.Rand) (*core.HitRecord, bool) {
	var closestHit *core.HitRecord
	closestSoFar := tMax

	for _, object := range l.Objects {
		if hit, isHit := object.Hit(ray, tMin, closestSoFar, random); isHit {
			closestSoFar = hit.T
			closestHit = hit
		}
	}

	return closestHit, closestHit != nil
}

// BoundingBox is the union of all member boxes.
// An empty list, or one holding any unbounded member, is unbounded.
func (l *HittableList) BoundingBox(time0, time1 float64) (core.AABB, bool) {
	if len(l.Objects) == 0 {
		return core.AABB{}, false
	}

	var box core.AABB
	for i, object := range l.Objects {
		objectBox, ok := object.BoundingBox(time0, time1)
		if !ok {
			return core.AABB{}, false
		}
		if i == 0 {
			box = objectBox
		} else {
			box = box.Union(objectBox)
		}
	}
	return box, true
}

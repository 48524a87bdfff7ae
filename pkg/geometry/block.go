package geometry

import (
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// Block is a closed axis-aligned box made of six rectangles with outward normals
type Block struct {
	Min, Max core.Vec3
	sides    *HittableList
}

// NewBlock creates a box spanning the two corners
func NewBlock(p0, p1 core.Vec3, material core.Material) *Block {
	box := core.NewAABBFromPoints(p0, p1)
	lo, hi := box.Min, box.Max

	sides := NewHittableList(
		NewXYRect(lo.X, hi.X, lo.Y, hi.Y, lo.Z, material, false),
		NewXYRect(lo.X, hi.X, lo.Y, hi.Y, hi.Z, material, true),
		NewXZRect(lo.X, hi.X, lo.Z, hi.Z, lo.Y, material, false),
		NewXZRect(lo.X, hi.X, lo.Z, hi.Z, hi.Y, material, true),
		NewYZRect(lo.Y, hi.Y, lo.Z, hi.Z, lo.X, material, false),
		NewYZRect(lo.Y, hi.Y, lo.Z, hi.Z, hi.X, material, true),
	)

	return &Block{Min: lo, Max: hi, sides: sides}
}

// Hit returns the nearest face hit
func (b *Block) Hit(ray core.Ray, tMin, tMax float64, random *rand.Rand) (*core.HitRecord, bool) {
	return b.sides.Hit(ray, tMin, tMax, random)
}

// BoundingBox returns the block's extent, padded like a rect for flat blocks
func (b *Block) BoundingBox(_, _ float64) (core.AABB, bool) {
	return core.NewAABB(b.Min, b.Max).Expand(rectThickness), true
}

package geometry

import (
	"math"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/material"
	"github.com/df07/go-scene-raytracer/pkg/transform"
)

// NewSpotlightCasing builds an axis-aligned lamp: a dark open-topped box whose
// floor glows with light and faces up through the opening at Max.Y.
func NewSpotlightCasing(lo, hi core.Vec3, light core.Vec3) *HittableList {
	dark := material.NewLambertian(core.Vec3{})
	glow := material.NewDiffuseLight(light)

	return NewHittableList(
		NewXYRect(lo.X, hi.X, lo.Y, hi.Y, lo.Z, dark, true),
		NewXYRect(lo.X, hi.X, lo.Y, hi.Y, hi.Z, dark, false),
		NewXZRect(lo.X, hi.X, lo.Z, hi.Z, lo.Y, glow, true),
		NewYZRect(lo.Y, hi.Y, lo.Z, hi.Z, lo.X, dark, true),
		NewYZRect(lo.Y, hi.Y, lo.Z, hi.Z, hi.X, dark, false),
	)
}

// NewSpotlight places a lamp of the given length and width at from, shining towards at.
// The casing is built along +Y, tilted about Z to the beam's elevation, then turned
// about Y to its heading and moved to from.
func NewSpotlight(from, at core.Vec3, length, width float64, light core.Vec3) core.Hittable {
	casing := NewSpotlightCasing(
		core.NewVec3(-width/2, -length, -width/2),
		core.NewVec3(width/2, 0, width/2),
		light,
	)

	direction := at.Subtract(from)

	// Tilt away from +Y
	var tilt float64
	if direction.Length() != 0 {
		tilt = -math.Acos(core.NewVec3(0, 1, 0).Dot(direction.Normalize()))
	}

	// Heading in the XZ plane, measured from +X
	var heading float64
	flat := core.NewVec3(direction.X, 0, direction.Z)
	if flat.X != 0 || flat.Z != 0 {
		sign := -1.0
		if direction.Z < 0 {
			sign = 1
		}
		heading = math.Acos(core.NewVec3(1, 0, 0).Dot(flat.Normalize())) * sign
	}

	tilted := transform.NewRotateRadians(casing, transform.AxisZ, tilt)
	turned := transform.NewRotateRadians(tilted, transform.AxisY, heading)
	return transform.NewTranslate(turned, from)
}

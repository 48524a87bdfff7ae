package geometry

import (
	"math"
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// CameraConfig describes a thin-lens camera
type CameraConfig struct {
	LookFrom      core.Vec3
	LookAt        core.Vec3
	Up            core.Vec3
	VFov          float64 // vertical field of view in degrees
	AspectRatio   float64 // width / height
	Aperture      float64 // lens diameter, 0 for a pinhole
	FocusDistance float64
	ShutterOpen   float64
	ShutterClose  float64
}

// Camera generates rays for rendering
type Camera struct {
	origin          core.Vec3
	lowerLeftCorner core.Vec3
	horizontal      core.Vec3
	vertical        core.Vec3
	u, v, w         core.Vec3
	lensRadius      float64
	time0, time1    float64
}

// NewCamera derives the image plane from config
func NewCamera(config CameraConfig) *Camera {
	theta := config.VFov * math.Pi / 180
	viewportHeight := 2.0 * math.Tan(theta/2)
	viewportWidth := config.AspectRatio * viewportHeight

	focus := config.FocusDistance
	if focus <= 0 {
		focus = 1
	}

	w := config.LookFrom.Subtract(config.LookAt).Normalize()
	u := config.Up.Cross(w).Normalize()
	v := w.Cross(u)

	horizontal := u.Multiply(focus * viewportWidth)
	vertical := v.Multiply(focus * viewportHeight)
	lowerLeftCorner := config.LookFrom.
		Subtract(horizontal.Multiply(0.5)).
		Subtract(vertical.Multiply(0.5)).
		Subtract(w.Multiply(focus))

	return &Camera{
		origin:          config.LookFrom,
		lowerLeftCorner: lowerLeftCorner,
		horizontal:      horizontal,
		vertical:        vertical,
		u:               u,
		v:               v,
		w:               w,
		lensRadius:      config.Aperture / 2,
		time0:           config.ShutterOpen,
		time1:           config.ShutterClose,
	}
}

// GetRay generates a ray through image-plane coordinates (s, t), where (0,0) is the
// bottom-left corner. The origin is jittered on the lens and the time is drawn
// from the shutter interval.
func (c *Camera) GetRay(s, t float64, random *rand.Rand) core.Ray {
	rd := core.RandomInUnitDisk(random).Multiply(c.lensRadius)
	offset := c.u.Multiply(rd.X).Add(c.v.Multiply(rd.Y))

	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin).
		Subtract(offset)

	time := c.time0
	if c.time1 > c.time0 {
		time = core.RandomInRange(random, c.time0, c.time1)
	}

	return core.NewRay(c.origin.Add(offset), direction, time)
}

// GetCenterRay returns the ray through (s, t) from the centre of the lens at shutter open
func (c *Camera) GetCenterRay(s, t float64) core.Ray {
	direction := c.lowerLeftCorner.
		Add(c.horizontal.Multiply(s)).
		Add(c.vertical.Multiply(t)).
		Subtract(c.origin)
	return core.NewRay(c.origin, direction, c.time0)
}

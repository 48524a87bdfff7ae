package core

// Sky returns the radiance seen along a ray that escapes the scene
type Sky func(ray Ray) Vec3

// SolidSky is a constant background
func SolidSky(color Vec3) Sky {
	return func(Ray) Vec3 { return color }
}

// GradientSky blends color0 to color1 as the ray turns towards direction.
// Rays opposite to direction see color0, rays along it see color1.
func GradientSky(direction, color0, color1 Vec3) Sky {
	dir := direction.Normalize()
	return func(ray Ray) Vec3 {
		t := 0.5 * (dir.Dot(ray.Direction.Normalize()) + 1.0)
		return color0.Multiply(1.0 - t).Add(color1.Multiply(t))
	}
}

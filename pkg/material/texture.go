package material

import (
	"math"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// SolidColor provides a uniform color
type SolidColor struct {
	Color core.Vec3
}

// NewSolidColor creates a new solid color texture
func NewSolidColor(color core.Vec3) *SolidColor {
	return &SolidColor{Color: color}
}

// Value returns the solid color regardless of UV or position
func (s *SolidColor) Value(_, _ float64, _ core.Vec3) core.Vec3 {
	return s.Color
}

// CheckerTexture alternates between two textures in a 3D pattern over world space.
// TileSize scales the pattern frequency; larger values give smaller tiles.
type CheckerTexture struct {
	Odd, Even core.Texture
	TileSize  float64
}

// NewCheckerTexture creates a spatial checker texture
func NewCheckerTexture(odd, even core.Texture, tileSize float64) *CheckerTexture {
	return &CheckerTexture{Odd: odd, Even: even, TileSize: tileSize}
}

// Value picks odd or even by the sign of sin(s*x)*sin(s*y)*sin(s*z)
func (c *CheckerTexture) Value(u, v float64, p core.Vec3) core.Vec3 {
	s := c.TileSize
	sines := math.Sin(s*p.X) * math.Sin(s*p.Y) * math.Sin(s*p.Z)
	if sines < 0 {
		return c.Odd.Value(u, v, p)
	}
	return c.Even.Value(u, v, p)
}

// UVCheckerTexture alternates between two textures over surface UV
type UVCheckerTexture struct {
	Odd, Even core.Texture
	Density   float64
}

// NewUVCheckerTexture creates a checker texture over UV
func NewUVCheckerTexture(odd, even core.Texture, density float64) *UVCheckerTexture {
	return &UVCheckerTexture{Odd: odd, Even: even, Density: density}
}

// Value picks odd or even by the sign of sin(d*u)*sin(d*v)
func (c *UVCheckerTexture) Value(u, v float64, p core.Vec3) core.Vec3 {
	if uvCheckerOdd(u, v, c.Density) {
		return c.Odd.Value(u, v, p)
	}
	return c.Even.Value(u, v, p)
}

func uvCheckerOdd(u, v, density float64) bool {
	return math.Sin(density*u)*math.Sin(density*v) < 0
}

package material

import (
	"github.com/df07/go-scene-raytracer/pkg/core"
)

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Width  int
	Height int
	Pixels []core.Vec3 // Row-major from the top row: Pixels[y*Width + x], channels in [0,1]
}

// NewImageTexture creates a new image texture
func NewImageTexture(width, height int, pixels []core.Vec3) *ImageTexture {
	return &ImageTexture{
		Width:  width,
		Height: height,
		Pixels: pixels,
	}
}

// Value samples the texture with nearest-neighbor lookup.
// UV is clamped to [0,1] and v=0 is the bottom row.
func (t *ImageTexture) Value(u, v float64, _ core.Vec3) core.Vec3 {
	if t.Width == 0 || t.Height == 0 {
		return core.NewVec3(0, 1, 1)
	}

	u = max(0, min(1, u))
	v = 1 - max(0, min(1, v))

	x := min(int(u*float64(t.Width)), t.Width-1)
	y := min(int(v*float64(t.Height)), t.Height-1)

	return t.Pixels[y*t.Width+x]
}

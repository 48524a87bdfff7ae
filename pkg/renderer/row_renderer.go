package renderer

import (
	"math"
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/integrator"
)

// Camera generates rays through normalized image coordinates, (0,0) at the bottom left
type Camera interface {
	GetRay(s, t float64, random *rand.Rand) core.Ray
}

// RowRenderer renders single image rows using an integrator
type RowRenderer struct {
	camera          Camera
	integrator      integrator.Integrator
	width, height   int
	samplesPerPixel int
}

// NewRowRenderer creates a row renderer for a width x height image
func NewRowRenderer(camera Camera, integrator integrator.Integrator, width, height, samplesPerPixel int) *RowRenderer {
	return &RowRenderer{
		camera:          camera,
		integrator:      integrator,
		width:           width,
		height:          height,
		samplesPerPixel: samplesPerPixel,
	}
}

// RenderRow renders row (0 is the top of the image) into width*3 RGB bytes
func (rr *RowRenderer) RenderRow(row int, random *rand.Rand) []byte {
	pixels := make([]byte, 0, rr.width*3)

	// Image rows run top to bottom, camera t runs bottom to top
	j := rr.height - 1 - row
	du := float64(max(rr.width-1, 1))
	dv := float64(max(rr.height-1, 1))

	for i := 0; i < rr.width; i++ {
		var colour core.Vec3
		for sample := 0; sample < rr.samplesPerPixel; sample++ {
			s := (float64(i) + random.Float64()) / du
			t := (float64(j) + random.Float64()) / dv
			colour = colour.Add(rr.integrator.RayColor(rr.camera.GetRay(s, t, random), random))
		}
		colour = colour.Multiply(1.0 / float64(rr.samplesPerPixel))

		pixels = append(pixels,
			ToByte(GammaCorrect(colour.X)),
			ToByte(GammaCorrect(colour.Y)),
			ToByte(GammaCorrect(colour.Z)))
	}
	return pixels
}

// GammaCorrect applies gamma 2.0
func GammaCorrect(c float64) float64 {
	return math.Sqrt(c)
}

// ToByte quantizes a channel in [0,1] to 0..255. NaN and negative values become 0.
func ToByte(c float64) byte {
	if math.IsNaN(c) || c < 0 {
		return 0
	}
	return byte(math.Floor(255 * math.Min(c, 0.999)))
}

package material

import (
	"math/rand"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// DiffuseLight is an emitter that never scatters
type DiffuseLight struct {
	Emit core.Texture
}

// NewDiffuseLight creates a light with a solid color
func NewDiffuseLight(color core.Vec3) *DiffuseLight {
	return &DiffuseLight{Emit: NewSolidColor(color)}
}

// NewTexturedDiffuseLight creates a light whose color comes from a texture
func NewTexturedDiffuseLight(emit core.Texture) *DiffuseLight {
	return &DiffuseLight{Emit: emit}
}

// Scatter always absorbs
func (l *DiffuseLight) Scatter(core.Ray, *core.HitRecord, *rand.Rand) (core.ScatterResult, bool) {
	return core.ScatterResult{}, false
}

// Emitted returns the texture color on the front face and black on the back
func (l *DiffuseLight) Emitted(hit *core.HitRecord) core.Vec3 {
	if !hit.FrontFace {
		return core.Vec3{}
	}
	return l.Emit.Value(hit.U, hit.V, hit.Point)
}

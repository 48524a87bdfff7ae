package core

import (
	"context"
	"log/slog"
	"math/rand"
)

// Shutter interval used for bounding boxes of moving or transformed geometry
const (
	ShutterOpen  = 0.0
	ShutterClose = 1.0
)

// HitRecord contains information about a ray-object intersection
type HitRecord struct {
	Point     Vec3     // Point of intersection
	Normal    Vec3     // Unit normal, always opposing the incoming ray
	T         float64  // Distance along the ray
	FrontFace bool     // Whether the ray hit the outward side
	Material  Material // Material of the struck surface
	U, V      float64  // Surface texture coordinates
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *HitRecord) SetFaceNormal(ray Ray, outwardNormal Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// Hittable is anything a ray can intersect.
// The random source is needed by volumes, which sample during intersection.
type Hittable interface {
	Hit(ray Ray, tMin, tMax float64, random *rand.Rand) (*HitRecord, bool)
	// BoundingBox reports false for unbounded geometry
	BoundingBox(time0, time1 float64) (AABB, bool)
}

// ScatterResult contains the result of material scattering
type ScatterResult struct {
	Scattered   Ray
	Attenuation Vec3
}

// Material decides how light continues after a hit.
// Returning false means the ray was absorbed.
type Material interface {
	Scatter(rayIn Ray, hit *HitRecord, random *rand.Rand) (ScatterResult, bool)
}

// Emitter is implemented by materials that give off light
type Emitter interface {
	Emitted(hit *HitRecord) Vec3
}

// Emitted returns the light emitted at a hit, black for non-emissive materials
func Emitted(hit *HitRecord) Vec3 {
	if emitter, ok := hit.Material.(Emitter); ok {
		return emitter.Emitted(hit)
	}
	return Vec3{}
}

// Texture returns a color for a surface location
type Texture interface {
	Value(u, v float64, p Vec3) Vec3
}

// NopLogger returns a logger that discards everything
func NopLogger() *slog.Logger {
	return slog.New(nopHandler{})
}

type nopHandler struct{}

func (nopHandler) Enabled(context.Context, slog.Level) bool  { return false }
func (nopHandler) Handle(context.Context, slog.Record) error { return nil }
func (h nopHandler) WithAttrs([]slog.Attr) slog.Handler      { return h }
func (h nopHandler) WithGroup(string) slog.Handler           { return h }

// LoggerOrNop returns logger, or a discarding logger when nil
func LoggerOrNop(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return NopLogger()
	}
	return logger
}

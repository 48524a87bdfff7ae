package server

import (
	"fmt"
	"math"
	"math/rand"
	"net/http"
	"strconv"

	"github.com/df07/go-scene-raytracer/pkg/core"
	"github.com/df07/go-scene-raytracer/pkg/integrator"
	"github.com/df07/go-scene-raytracer/pkg/material"
	"github.com/df07/go-scene-raytracer/pkg/renderer"
	"github.com/df07/go-scene-raytracer/pkg/scene"
)

// InspectResponse represents the JSON response for object inspection
type InspectResponse struct {
	Hit          bool           `json:"hit"`
	MaterialType string         `json:"materialType,omitempty"`
	Point        [3]float64     `json:"point"`
	Normal       [3]float64     `json:"normal"`
	Distance     float64        `json:"distance"`
	FrontFace    bool           `json:"frontFace"`
	UV           [2]float64     `json:"uv"`
	Properties   map[string]any `json:"properties,omitempty"`
}

func triple(v core.Vec3) [3]float64 {
	return [3]float64{v.X, v.Y, v.Z}
}

func hexColor(c core.Vec3) string {
	c = c.Clamp(0, 1)
	return fmt.Sprintf("#%02x%02x%02x", int(c.X*255), int(c.Y*255), int(c.Z*255))
}

// extractMaterialInfo describes a material, sampling textures at the hit
func extractMaterialInfo(mat core.Material, hit *core.HitRecord) (string, map[string]any) {
	properties := make(map[string]any)
	sample := func(t core.Texture) core.Vec3 { return t.Value(hit.U, hit.V, hit.Point) }

	switch m := mat.(type) {
	case *material.Lambertian:
		albedo := sample(m.Albedo)
		properties["albedo"] = triple(albedo)
		properties["color"] = hexColor(albedo)
		return "lambertian", properties

	case *material.Metal:
		properties["albedo"] = triple(m.Albedo)
		properties["color"] = hexColor(m.Albedo)
		properties["fuzz"] = m.Fuzz
		return "metal", properties

	case *material.Dielectric:
		properties["indexOfRefraction"] = m.RefractiveIndex
		properties["color"] = "#ffffff"
		return "dielectric", properties

	case *material.DiffuseLight:
		emit := sample(m.Emit)
		properties["emission"] = triple(emit)
		properties["color"] = hexColor(emit)
		return "diffuseLight", properties

	case *material.Isotropic:
		albedo := sample(m.Albedo)
		properties["albedo"] = triple(albedo)
		properties["color"] = hexColor(albedo)
		return "isotropic", properties

	case *material.Checkered:
		oddType, oddProps := extractMaterialInfo(m.Odd, hit)
		evenType, evenProps := extractMaterialInfo(m.Even, hit)
		properties["odd"] = map[string]any{"type": oddType, "properties": oddProps}
		properties["even"] = map[string]any{"type": evenType, "properties": evenProps}
		properties["tileDensity"] = m.TileDensity
		return "checkered", properties

	default:
		return "unknown", properties
	}
}

// inspectPixel casts a ray from the lens centre through the centre of a pixel, row 0 at the top
func inspectPixel(sceneObj *scene.Scene, width, height, pixelX, pixelY int) (*core.HitRecord, bool) {
	s := (float64(pixelX) + 0.5) / float64(max(width-1, 1))
	t := (float64(height-1-pixelY) + 0.5) / float64(max(height-1, 1))
	ray := sceneObj.Camera.GetCenterRay(s, t)
	// Media sample their scatter distance during the hit test
	random := rand.New(rand.NewSource(0))
	return sceneObj.World.Hit(ray, integrator.ShadowAcneEpsilon, math.Inf(1), random)
}

// handleInspect handles ray casting inspection requests
func (s *Server) handleInspect(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")

	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid scene parameters: "+err.Error())
		return
	}

	pixelX, err := strconv.Atoi(r.URL.Query().Get("x"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid x coordinate")
		return
	}
	pixelY, err := strconv.Atoi(r.URL.Query().Get("y"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid y coordinate")
		return
	}

	sceneObj, err := s.buildScene(req.Scene, req.Seed, nil)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	height := renderer.ImageHeight(req.Width, sceneObj.AspectRatio)
	if pixelX < 0 || pixelX >= req.Width || pixelY < 0 || pixelY >= height {
		writeError(w, http.StatusBadRequest, "Pixel coordinates out of bounds")
		return
	}

	hit, ok := inspectPixel(sceneObj, req.Width, height, pixelX, pixelY)
	if !ok {
		writeJSON(w, http.StatusOK, InspectResponse{Hit: false})
		return
	}

	materialType, properties := extractMaterialInfo(hit.Material, hit)
	writeJSON(w, http.StatusOK, InspectResponse{
		Hit:          true,
		MaterialType: materialType,
		Point:        triple(hit.Point),
		Normal:       triple(hit.Normal),
		Distance:     hit.T,
		FrontFace:    hit.FrontFace,
		UV:           [2]float64{hit.U, hit.V},
		Properties:   properties,
	})
}

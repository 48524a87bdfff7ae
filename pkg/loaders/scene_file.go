package loaders

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/df07/go-scene-raytracer/pkg/core"
)

// Triple is a JSON [x, y, z] array
type Triple [3]float64

// Vec converts the triple to a vector
func (t Triple) Vec() core.Vec3 {
	return core.NewVec3(t[0], t[1], t[2])
}

// UnmarshalJSON requires exactly three numbers
func (t *Triple) UnmarshalJSON(data []byte) error {
	var values []float64
	if err := json.Unmarshal(data, &values); err != nil {
		return err
	}
	if len(values) != 3 {
		return fmt.Errorf("expected 3 numbers, got %d", len(values))
	}
	copy(t[:], values)
	return nil
}

// SceneFile is the decoded form of a JSON scene description.
// Textures, materials and objects are keyed by name and may reference each other by name;
// World lists the top-level objects in order. Decoded variants are always pointers
// (*SphereSpec, *MetalSpec, ...).
type SceneFile struct {
	Camera     CameraSpec              `json:"camera"`
	Background BackgroundEntry         `json:"background"`
	Textures   map[string]TextureEntry  `json:"textures"`
	Materials  map[string]MaterialEntry `json:"materials"`
	Objects    map[string]ObjectEntry   `json:"objects"`
	World      []string                `json:"world"`

	// Dir is the directory relative file names (image textures) are resolved against
	Dir string `json:"-"`
}

// CameraSpec describes the camera and shutter
type CameraSpec struct {
	LookFrom        Triple     `json:"lookFrom"`
	LookAt          Triple     `json:"lookAt"`
	DirectionUp     Triple     `json:"directionUp"`
	FieldOfView     float64    `json:"fieldOfView"` // vertical, degrees
	AspectRatio     [2]float64 `json:"aspectRatio"` // width : height
	Aperture        float64    `json:"aperture"`
	DistanceToFocus float64    `json:"distanceToFocus"`
	StartTime       float64    `json:"startTime"`
	EndTime         float64    `json:"endTime"`
}

// Ratio returns width divided by height
func (c CameraSpec) Ratio() float64 {
	return c.AspectRatio[0] / c.AspectRatio[1]
}

// Spec is implemented by every tagged variant; Kind is its "type" tag
type Spec interface {
	Kind() string
}

// BackgroundSpec is a PlainColourSpec or GradientSpec
type BackgroundSpec interface {
	Spec
	background()
}

// TextureSpec is one of the texture variants
type TextureSpec interface {
	Spec
	texture()
}

// MaterialSpec is one of the material variants
type MaterialSpec interface {
	Spec
	material()
}

// ObjectSpec is one of the object variants
type ObjectSpec interface {
	Spec
	object()
}

// Backgrounds

// PlainColourSpec is a uniform background colour
type PlainColourSpec struct {
	Colour Triple `json:"colour"`
}

// GradientSpec blends colour0 into colour1 along direction
type GradientSpec struct {
	Direction Triple `json:"direction"`
	Colour0   Triple `json:"colour0"`
	Colour1   Triple `json:"colour1"`
}

func (PlainColourSpec) Kind() string { return "plainColour" }
func (GradientSpec) Kind() string    { return "gradient" }
func (PlainColourSpec) background()  {}
func (GradientSpec) background()     {}

// Textures

// SolidColourSpec is a constant colour texture
type SolidColourSpec struct {
	Colour Triple `json:"colour"`
}

// ImageTextureSpec maps an image file, relative to the scene file, over the surface UV
type ImageTextureSpec struct {
	Filename string `json:"filename"`
	MaxSize  int    `json:"maxSize,omitempty"` // 0 keeps the full resolution
}

// CheckeredTextureSpec alternates two named textures in 3D space
type CheckeredTextureSpec struct {
	Odd      string  `json:"odd"`
	Even     string  `json:"even"`
	TileSize float64 `json:"tileSize"`
}

// UVCheckeredTextureSpec alternates two named textures over the surface UV
type UVCheckeredTextureSpec struct {
	Odd         string  `json:"odd"`
	Even        string  `json:"even"`
	TileDensity float64 `json:"tileDensity"`
}

func (SolidColourSpec) Kind() string        { return "solidColour" }
func (ImageTextureSpec) Kind() string       { return "imageTexture" }
func (CheckeredTextureSpec) Kind() string   { return "checkered" }
func (UVCheckeredTextureSpec) Kind() string { return "uvCheckered" }
func (SolidColourSpec) texture()            {}
func (ImageTextureSpec) texture()           {}
func (CheckeredTextureSpec) texture()       {}
func (UVCheckeredTextureSpec) texture()     {}

// Materials

// LambertianSpec is a diffuse material coloured by a named texture
type LambertianSpec struct {
	Texture string `json:"texture"`
}

// MetalSpec reflects with a fuzz in [0,1]
type MetalSpec struct {
	Fuzz   float64 `json:"fuzz"`
	Albedo Triple  `json:"albedo"`
}

// DielectricSpec is a clear refracting material
type DielectricSpec struct {
	IndexOfRefraction float64 `json:"indexOfRefraction"`
}

// DiffuseLightSpec emits a named texture from its front face
type DiffuseLightSpec struct {
	Emit string `json:"emit"` // texture name
}

// IsotropicSpec scatters uniformly; used as a medium phase function
type IsotropicSpec struct {
	Albedo string `json:"albedo"` // texture name
}

// CheckeredMaterialSpec alternates two named materials over the surface UV
type CheckeredMaterialSpec struct {
	Odd         string  `json:"odd"`
	Even        string  `json:"even"`
	TileDensity float64 `json:"tileDensity"`
}

func (LambertianSpec) Kind() string        { return "lambertian" }
func (MetalSpec) Kind() string             { return "metal" }
func (DielectricSpec) Kind() string        { return "dielectric" }
func (DiffuseLightSpec) Kind() string      { return "diffuseLight" }
func (IsotropicSpec) Kind() string         { return "isotropic" }
func (CheckeredMaterialSpec) Kind() string { return "checkered" }
func (LambertianSpec) material()           {}
func (MetalSpec) material()                {}
func (DielectricSpec) material()           {}
func (DiffuseLightSpec) material()         {}
func (IsotropicSpec) material()            {}
func (CheckeredMaterialSpec) material()    {}

// Objects

// SphereSpec is a static sphere
type SphereSpec struct {
	Centre   Triple  `json:"centre"`
	Radius   float64 `json:"radius"`
	Material string  `json:"material"`
}

// MovingSphereSpec moves linearly from centre0 at time0 to centre1 at time1
type MovingSphereSpec struct {
	Centre0  Triple  `json:"centre0"`
	Centre1  Triple  `json:"centre1"`
	Time0    float64 `json:"time0"`
	Time1    float64 `json:"time1"`
	Radius   float64 `json:"radius"`
	Material string  `json:"material"`
}

// BlockSpec is an axis-aligned box between two opposite corners
type BlockSpec struct {
	Corner0  Triple `json:"corner0"`
	Corner1  Triple `json:"corner1"`
	Material string `json:"material"`
}

// RectSpec corners must be equal along exactly one axis
type RectSpec struct {
	Corner0       Triple `json:"corner0"`
	Corner1       Triple `json:"corner1"`
	FacingForward bool   `json:"facingForward"`
	Material      string `json:"material"`
}

// TriangleSpec front face follows the right-hand rule over point0, point1, point2
type TriangleSpec struct {
	Point0   Triple `json:"point0"`
	Point1   Triple `json:"point1"`
	Point2   Triple `json:"point2"`
	Material string `json:"material"`
}

// PlaneSpec is an infinite plane through three points, its UV tiled uvRepeat times per unit
type PlaneSpec struct {
	Point0   Triple  `json:"point0"`
	Point1   Triple  `json:"point1"`
	Point2   Triple  `json:"point2"`
	UVRepeat float64 `json:"uvRepeat"`
	Material string  `json:"material"`
}

// SpotlightSpec is a boxed light at lookFrom shining towards lookAt
type SpotlightSpec struct {
	LookFrom Triple  `json:"lookFrom"`
	LookAt   Triple  `json:"lookAt"`
	Length   float64 `json:"length"`
	Width    float64 `json:"width"`
	Light    Triple  `json:"light"`
}

// ConstantMediumSpec fills a named boundary object with uniform fog
type ConstantMediumSpec struct {
	Boundary      string  `json:"boundary"`      // object name
	PhaseFunction string  `json:"phaseFunction"` // material name
	Density       float64 `json:"density"`
}

// TranslateSpec moves a named object by offset
type TranslateSpec struct {
	Prototype string `json:"prototype"`
	Offset    Triple `json:"offset"`
}

// RotateSpec covers rotateX, rotateY and rotateZ; Axis comes from the type tag
type RotateSpec struct {
	Axis      string  `json:"-"` // "X", "Y" or "Z"
	Prototype string  `json:"prototype"`
	Degrees   float64 `json:"degrees"`
}

// ListSpec groups named objects so they can be transformed together
type ListSpec struct {
	Objects []string `json:"objects"`
}

func (SphereSpec) Kind() string         { return "sphere" }
func (MovingSphereSpec) Kind() string   { return "movingSphere" }
func (BlockSpec) Kind() string          { return "block" }
func (RectSpec) Kind() string           { return "rect" }
func (TriangleSpec) Kind() string       { return "triangle" }
func (PlaneSpec) Kind() string          { return "plane" }
func (SpotlightSpec) Kind() string      { return "spotlight" }
func (ConstantMediumSpec) Kind() string { return "constantMedium" }
func (TranslateSpec) Kind() string      { return "translate" }
func (s RotateSpec) Kind() string       { return "rotate" + s.Axis }
func (ListSpec) Kind() string           { return "list" }
func (SphereSpec) object()              {}
func (MovingSphereSpec) object()        {}
func (BlockSpec) object()               {}
func (RectSpec) object()                {}
func (TriangleSpec) object()            {}
func (PlaneSpec) object()               {}
func (SpotlightSpec) object()           {}
func (ConstantMediumSpec) object()      {}
func (TranslateSpec) object()           {}
func (RotateSpec) object()              {}
func (ListSpec) object()                {}

var (
	backgroundKinds = map[string]func() BackgroundSpec{
		"plainColour": func() BackgroundSpec { return &PlainColourSpec{} },
		"gradient":    func() BackgroundSpec { return &GradientSpec{} },
	}
	textureKinds = map[string]func() TextureSpec{
		"solidColour":  func() TextureSpec { return &SolidColourSpec{} },
		"imageTexture": func() TextureSpec { return &ImageTextureSpec{} },
		"checkered":    func() TextureSpec { return &CheckeredTextureSpec{} },
		"uvCheckered":  func() TextureSpec { return &UVCheckeredTextureSpec{} },
	}
	materialKinds = map[string]func() MaterialSpec{
		"lambertian":   func() MaterialSpec { return &LambertianSpec{} },
		"metal":        func() MaterialSpec { return &MetalSpec{} },
		"dielectric":   func() MaterialSpec { return &DielectricSpec{} },
		"diffuseLight": func() MaterialSpec { return &DiffuseLightSpec{} },
		"isotropic":    func() MaterialSpec { return &IsotropicSpec{} },
		"checkered":    func() MaterialSpec { return &CheckeredMaterialSpec{} },
	}
	objectKinds = map[string]func() ObjectSpec{
		"sphere":         func() ObjectSpec { return &SphereSpec{} },
		"movingSphere":   func() ObjectSpec { return &MovingSphereSpec{} },
		"block":          func() ObjectSpec { return &BlockSpec{} },
		"rect":           func() ObjectSpec { return &RectSpec{} },
		"triangle":       func() ObjectSpec { return &TriangleSpec{} },
		"plane":          func() ObjectSpec { return &PlaneSpec{} },
		"spotlight":      func() ObjectSpec { return &SpotlightSpec{} },
		"constantMedium": func() ObjectSpec { return &ConstantMediumSpec{} },
		"translate":      func() ObjectSpec { return &TranslateSpec{} },
		"rotateX":        func() ObjectSpec { return &RotateSpec{Axis: "X"} },
		"rotateY":        func() ObjectSpec { return &RotateSpec{Axis: "Y"} },
		"rotateZ":        func() ObjectSpec { return &RotateSpec{Axis: "Z"} },
		"list":           func() ObjectSpec { return &ListSpec{} },
	}
)

// BackgroundEntry holds a decoded background variant
type BackgroundEntry struct{ BackgroundSpec }

// TextureEntry holds a decoded texture variant
type TextureEntry struct{ TextureSpec }

// MaterialEntry holds a decoded material variant
type MaterialEntry struct{ MaterialSpec }

// ObjectEntry holds a decoded object variant
type ObjectEntry struct{ ObjectSpec }

// UnmarshalJSON decodes a background by its "type" tag
func (e *BackgroundEntry) UnmarshalJSON(data []byte) error {
	spec, err := decodeVariant(data, "background", backgroundKinds)
	e.BackgroundSpec = spec
	return err
}

// UnmarshalJSON decodes a texture by its "type" tag
func (e *TextureEntry) UnmarshalJSON(data []byte) error {
	spec, err := decodeVariant(data, "texture", textureKinds)
	e.TextureSpec = spec
	return err
}

// UnmarshalJSON decodes a material by its "type" tag
func (e *MaterialEntry) UnmarshalJSON(data []byte) error {
	spec, err := decodeVariant(data, "material", materialKinds)
	e.MaterialSpec = spec
	return err
}

// UnmarshalJSON decodes an object by its "type" tag
func (e *ObjectEntry) UnmarshalJSON(data []byte) error {
	spec, err := decodeVariant(data, "object", objectKinds)
	e.ObjectSpec = spec
	return err
}

// MarshalJSON writes the background fields with its "type" tag
func (e BackgroundEntry) MarshalJSON() ([]byte, error) { return encodeVariant(e.BackgroundSpec) }

// MarshalJSON writes the texture fields with its "type" tag
func (e TextureEntry) MarshalJSON() ([]byte, error) { return encodeVariant(e.TextureSpec) }

// MarshalJSON writes the material fields with its "type" tag
func (e MaterialEntry) MarshalJSON() ([]byte, error) { return encodeVariant(e.MaterialSpec) }

// MarshalJSON writes the object fields with its "type" tag
func (e ObjectEntry) MarshalJSON() ([]byte, error) { return encodeVariant(e.ObjectSpec) }

// decodeVariant reads the "type" tag and decodes the remaining fields strictly into the matching variant
func decodeVariant[T Spec](data []byte, what string, kinds map[string]func() T) (T, error) {
	var zero T

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return zero, fmt.Errorf("%s: %w", what, err)
	}
	rawType, ok := fields["type"]
	if !ok {
		return zero, fmt.Errorf("%s: missing \"type\"", what)
	}
	var kind string
	if err := json.Unmarshal(rawType, &kind); err != nil {
		return zero, fmt.Errorf("%s: \"type\" must be a string", what)
	}
	newSpec, ok := kinds[kind]
	if !ok {
		return zero, fmt.Errorf("unknown %s type %q", what, kind)
	}
	delete(fields, "type")

	rest, err := json.Marshal(fields)
	if err != nil {
		return zero, err
	}
	spec := newSpec()
	if err := decodeStrict(bytes.NewReader(rest), spec); err != nil {
		return zero, fmt.Errorf("%s %s: %w", what, kind, err)
	}
	return spec, nil
}

func encodeVariant(spec Spec) ([]byte, error) {
	if spec == nil {
		return []byte("null"), nil
	}
	data, err := json.Marshal(spec)
	if err != nil {
		return nil, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, err
	}
	fields["type"], _ = json.Marshal(spec.Kind())
	return json.Marshal(fields)
}

func decodeStrict(r io.Reader, v any) error {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}

// DecodeSceneFile parses a scene description, rejecting unknown fields and type tags
func DecodeSceneFile(r io.Reader) (*SceneFile, error) {
	var desc SceneFile
	if err := decodeStrict(r, &desc); err != nil {
		return nil, fmt.Errorf("failed to parse scene: %w", err)
	}
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	return &desc, nil
}

// LoadSceneFile reads and parses a scene description from disk
func LoadSceneFile(path string) (*SceneFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scene file: %w", err)
	}
	desc, err := DecodeSceneFile(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	desc.Dir = filepath.Dir(path)
	return desc, nil
}

// Validate checks the parts of a description that do not depend on name resolution
func (d *SceneFile) Validate() error {
	if d.Background.BackgroundSpec == nil {
		return errors.New("scene has no background")
	}
	if d.Camera.AspectRatio[0] <= 0 || d.Camera.AspectRatio[1] <= 0 {
		return fmt.Errorf("camera aspectRatio must be positive, got %v", d.Camera.AspectRatio)
	}
	return nil
}

// Encode writes the description as indented JSON
func (d *SceneFile) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(d)
}

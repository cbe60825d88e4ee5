package scene

import "github.com/go-gl/mathgl/mgl32"

// Kind is the shading model of a material.
type Kind int

const (
	// KindBasic is an unlit material.
	KindBasic Kind = iota
	// KindStandard is metallic-roughness PBR.
	KindStandard
	// KindPhysical is PBR extended with clearcoat, sheen and transmission.
	KindPhysical
)

func (k Kind) String() string {
	switch k {
	case KindBasic:
		return "basic"
	case KindStandard:
		return "standard"
	case KindPhysical:
		return "physical"
	default:
		return "unknown"
	}
}

// Side selects which polygon faces are rasterized.
type Side int

const (
	FrontSide Side = iota
	BackSide
	DoubleSide
)

// Encoding is the color space of texture data.
type Encoding int

const (
	LinearEncoding Encoding = iota
	SRGBEncoding
)

// Texture is decoded RGBA8 image data plus its sampling state.
type Texture struct {
	Name       string
	Width      int
	Height     int
	Pixels     []byte
	Encoding   Encoding
	Mipmaps    bool
	Anisotropy float32

	// Version is bumped whenever sampling state changes so GPU copies can refresh.
	Version int
}

// MarkDirty records a sampling state change.
func (t *Texture) MarkDirty() {
	t.Version++
}

// Material describes the surface of one mesh primitive.
// Optional parameters are pointers; nil means "unset" and lets later passes
// decide a value.
type Material struct {
	Name string
	Kind Kind

	Color       mgl32.Vec3
	Opacity     float32
	Transparent bool
	AlphaTest   float32
	Side        Side
	Visible     bool

	Map          *Texture
	AlphaMap     *Texture
	NormalMap    *Texture
	NormalScale  mgl32.Vec2
	RoughnessMap *Texture
	MetalnessMap *Texture
	AOMap        *Texture
	EmissiveMap  *Texture

	Roughness *float32
	Metalness *float32

	Emissive          mgl32.Vec3
	EmissiveIntensity float32

	Clearcoat          *float32
	ClearcoatRoughness *float32
	Sheen              *float32
	SheenRoughness     *float32
	Transmission       *float32
	EnvMapIntensity    *float32
}

// NewMaterial returns an opaque white material of the given kind.
func NewMaterial(name string, kind Kind) *Material {
	return &Material{
		Name:              name,
		Kind:              kind,
		Color:             mgl32.Vec3{1, 1, 1},
		Opacity:           1,
		Side:              FrontSide,
		Visible:           true,
		NormalScale:       mgl32.Vec2{1, 1},
		EmissiveIntensity: 1,
	}
}

// Clone returns an independent copy. Texture data is shared.
func (m *Material) Clone() *Material {
	c := *m
	c.Roughness = cloneFloat(m.Roughness)
	c.Metalness = cloneFloat(m.Metalness)
	c.Clearcoat = cloneFloat(m.Clearcoat)
	c.ClearcoatRoughness = cloneFloat(m.ClearcoatRoughness)
	c.Sheen = cloneFloat(m.Sheen)
	c.SheenRoughness = cloneFloat(m.SheenRoughness)
	c.Transmission = cloneFloat(m.Transmission)
	c.EnvMapIntensity = cloneFloat(m.EnvMapIntensity)
	return &c
}

// Textures returns every non-nil texture slot.
func (m *Material) Textures() []*Texture {
	var out []*Texture
	for _, t := range []*Texture{m.Map, m.AlphaMap, m.NormalMap, m.RoughnessMap, m.MetalnessMap, m.AOMap, m.EmissiveMap} {
		if t != nil {
			out = append(out, t)
		}
	}
	return out
}

// IsTranslucent reports whether the material needs blending.
func (m *Material) IsTranslucent() bool {
	return m.Transparent || m.AlphaMap != nil || m.Opacity < 1
}

// Float returns a pointer to v, for optional material parameters.
func Float(v float32) *float32 {
	return &v
}

// Value returns *p or def when p is nil.
func Value(p *float32, def float32) float32 {
	if p == nil {
		return def
	}
	return *p
}

func cloneFloat(p *float32) *float32 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

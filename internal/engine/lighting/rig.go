// Package lighting describes the studio light rig used to present a model.
package lighting

import "github.com/go-gl/mathgl/mgl32"

// MaxDirectional is the number of directional lights the shaders accept.
const MaxDirectional = 3

// ShadowParams configures the shadow camera of a directional light.
type ShadowParams struct {
	MapSize    int
	Extent     float32 // half-size of the orthographic frustum
	Near       float32
	Far        float32
	Bias       float32
	NormalBias float32
}

// Directional is a light at infinity shining from Position toward Target.
type Directional struct {
	Name       string
	Color      mgl32.Vec3
	Intensity  float32
	Position   mgl32.Vec3
	Target     mgl32.Vec3
	CastShadow bool
	Shadow     ShadowParams
}

// Direction returns the normalized direction from the target toward the light.
func (d Directional) Direction() mgl32.Vec3 {
	v := d.Position.Sub(d.Target)
	if v.Len() == 0 {
		return mgl32.Vec3{0, 1, 0}
	}
	return v.Normalize()
}

// Radiance returns color scaled by intensity.
func (d Directional) Radiance() mgl32.Vec3 {
	return d.Color.Mul(d.Intensity)
}

// Hemisphere blends a sky color above and a ground color below.
type Hemisphere struct {
	Sky       mgl32.Vec3
	Ground    mgl32.Vec3
	Intensity float32
}

// Ambient is a uniform fill term.
type Ambient struct {
	Color     mgl32.Vec3
	Intensity float32
}

// Rig is the full set of lights.
type Rig struct {
	Key        Directional
	Fill       Directional
	Rim        Directional
	Hemisphere Hemisphere
	Ambient    Ambient
}

// DefaultRig returns the three-point studio setup: a warm shadow-casting
// key, a cool fill and a white rim, plus hemisphere and ambient terms.
func DefaultRig(keyIntensity, ambientIntensity float32, shadowMapSize int) Rig {
	return Rig{
		Key: Directional{
			Name:       "key",
			Color:      ColorHex(0xfff4e6),
			Intensity:  keyIntensity,
			Position:   mgl32.Vec3{10, 15, 5},
			CastShadow: true,
			Shadow: ShadowParams{
				MapSize:    shadowMapSize,
				Extent:     20,
				Near:       0.5,
				Far:        100,
				Bias:       -0.0001,
				NormalBias: 0.02,
			},
		},
		Fill: Directional{
			Name:      "fill",
			Color:     ColorHex(0xb8d4ff),
			Intensity: 1.2,
			Position:  mgl32.Vec3{-10, 8, -8},
		},
		Rim: Directional{
			Name:      "rim",
			Color:     ColorHex(0xffffff),
			Intensity: 0.8,
			Position:  mgl32.Vec3{-5, 5, -15},
		},
		Hemisphere: Hemisphere{
			Sky:       ColorHex(0x87ceeb),
			Ground:    ColorHex(0x8b7355),
			Intensity: 0.6,
		},
		Ambient: Ambient{
			Color:     ColorHex(0xffffff),
			Intensity: ambientIntensity,
		},
	}
}

// Directionals returns key, fill and rim in shader slot order.
func (r *Rig) Directionals() [MaxDirectional]Directional {
	return [MaxDirectional]Directional{r.Key, r.Fill, r.Rim}
}

// DirectionUniforms returns light directions flattened for upload.
func (r *Rig) DirectionUniforms() []float32 {
	out := make([]float32, 0, MaxDirectional*3)
	for _, d := range r.Directionals() {
		v := d.Direction()
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

// RadianceUniforms returns color*intensity per light flattened for upload.
func (r *Rig) RadianceUniforms() []float32 {
	out := make([]float32, 0, MaxDirectional*3)
	for _, d := range r.Directionals() {
		v := d.Radiance()
		out = append(out, v[0], v[1], v[2])
	}
	return out
}

// ColorHex converts 0xRRGGBB to linear-agnostic 0..1 components.
func ColorHex(hex uint32) mgl32.Vec3 {
	return mgl32.Vec3{
		float32(hex>>16&0xff) / 255,
		float32(hex>>8&0xff) / 255,
		float32(hex&0xff) / 255,
	}
}

package materials

import (
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/showroom/internal/logger"
	"github.com/Faultbox/showroom/internal/scene"
)

// Normalizer rewrites scene materials according to an ordered rule table.
type Normalizer struct {
	Rules         []Rule
	MaxAnisotropy float32
}

// NewNormalizer returns a normalizer using DefaultRules.
// maxAnisotropy is the hardware limit reported by the renderer.
func NewNormalizer(maxAnisotropy float32) *Normalizer {
	if maxAnisotropy < 1 {
		maxAnisotropy = 1
	}
	return &Normalizer{Rules: DefaultRules, MaxAnisotropy: maxAnisotropy}
}

// Report summarizes one normalization pass.
type Report struct {
	Meshes     int
	Materials  int
	Skipped    int
	Upgraded   map[scene.Kind]int
	Categories map[Category]int
}

// Run visits every mesh node once and replaces or patches its materials.
func (n *Normalizer) Run(s *scene.Scene) Report {
	rep := Report{
		Upgraded:   make(map[scene.Kind]int),
		Categories: make(map[Category]int),
	}

	s.Traverse(func(node *scene.Node) {
		if !node.IsMesh() {
			return
		}
		rep.Meshes++

		profile := Resolve(n.Rules, Classify(node.Name))
		rep.Categories[profile.Category]++

		for _, prim := range node.Primitives {
			if prim.Material == nil {
				rep.Skipped++
				continue
			}
			if prim.Material.Kind != scene.KindPhysical {
				rep.Upgraded[prim.Material.Kind]++
			}
			prim.Material = n.Normalize(prim.Material, profile)
			rep.Materials++
		}

		node.CastShadow = true
		node.ReceiveShadow = true
	})

	logger.Named("materials").Info("materials normalized",
		zap.Int("meshes", rep.Meshes),
		zap.Int("materials", rep.Materials),
		zap.Int("skipped", rep.Skipped),
		zap.Int("from_basic", rep.Upgraded[scene.KindBasic]),
		zap.Int("from_standard", rep.Upgraded[scene.KindStandard]),
		zap.Any("categories", categoryCounts(rep.Categories)))

	return rep
}

// Normalize returns the corrected form of m under profile p.
// Basic and standard materials are replaced by a new physical material;
// physical materials are patched in place.
func (n *Normalizer) Normalize(m *scene.Material, p Profile) *scene.Material {
	var out *scene.Material
	switch m.Kind {
	case scene.KindBasic:
		out = fromBasic(m, p)
	case scene.KindStandard:
		out = fromStandard(m)
		backfillPhysical(out, p)
	default:
		out = m
		backfillPhysical(out, p)
	}

	n.applyCommon(out, p)
	return out
}

func fromBasic(src *scene.Material, p Profile) *scene.Material {
	dst := scene.NewMaterial(src.Name, scene.KindPhysical)
	copySlots(dst, src)

	dst.Roughness = scene.Float(scene.Value(src.Roughness, p.Roughness))
	dst.Metalness = scene.Float(scene.Value(src.Metalness, p.Metalness))
	dst.Clearcoat = scene.Float(p.Clearcoat)
	dst.ClearcoatRoughness = scene.Float(p.ClearcoatRoughness)
	dst.EnvMapIntensity = scene.Float(p.EnvMapIntensity)
	if p.Sheen > 0 {
		dst.Sheen = scene.Float(p.Sheen)
		dst.SheenRoughness = scene.Float(p.SheenRoughness)
	}
	if p.Transmission > 0 {
		dst.Transmission = scene.Float(p.Transmission)
		dst.Opacity = p.Opacity
		dst.Transparent = true
	}
	return dst
}

func fromStandard(src *scene.Material) *scene.Material {
	dst := scene.NewMaterial(src.Name, scene.KindPhysical)
	copySlots(dst, src)

	if src.Roughness != nil {
		dst.Roughness = scene.Float(*src.Roughness)
	}
	if src.Metalness != nil {
		dst.Metalness = scene.Float(*src.Metalness)
	}
	dst.Clearcoat = scene.Float(0)
	dst.ClearcoatRoughness = scene.Float(0.1)
	dst.EnvMapIntensity = scene.Float(1)
	return dst
}

// backfillPhysical fills optics fields that are still unset.
func backfillPhysical(m *scene.Material, p Profile) {
	if m.EnvMapIntensity == nil {
		m.EnvMapIntensity = scene.Float(p.EnvMapIntensity)
	}
	if m.Clearcoat == nil {
		m.Clearcoat = scene.Float(p.Clearcoat)
		m.ClearcoatRoughness = scene.Float(p.ClearcoatRoughness)
	}
	if p.Transmission > 0 && m.Transmission == nil {
		m.Transmission = scene.Float(p.Transmission)
		m.Opacity = p.Opacity
		m.Transparent = true
	}
	if p.Sheen > 0 && m.Sheen == nil {
		m.Sheen = scene.Float(p.Sheen)
		m.SheenRoughness = scene.Float(p.SheenRoughness)
	}
}

func copySlots(dst, src *scene.Material) {
	dst.Map = src.Map
	dst.AlphaMap = src.AlphaMap
	dst.NormalMap = src.NormalMap
	dst.NormalScale = src.NormalScale
	dst.RoughnessMap = src.RoughnessMap
	dst.MetalnessMap = src.MetalnessMap
	dst.AOMap = src.AOMap
	dst.EmissiveMap = src.EmissiveMap

	dst.Color = src.Color
	dst.Opacity = src.Opacity
	dst.Transparent = src.Transparent
	dst.AlphaTest = src.AlphaTest
	dst.Side = src.Side
	dst.Emissive = src.Emissive
	dst.EmissiveIntensity = src.EmissiveIntensity
}

func (n *Normalizer) applyCommon(m *scene.Material, p Profile) {
	if m.Roughness == nil || (*m.Roughness == 0 && p.ReplaceZeroRoughness) {
		m.Roughness = scene.Float(p.Roughness)
	}
	if m.Metalness == nil || (*m.Metalness == 0 && p.ReplaceZeroMetalness) {
		m.Metalness = scene.Float(p.Metalness)
	}

	if p.DoubleSided {
		m.Side = scene.DoubleSide
	}
	if m.IsTranslucent() && m.Side == scene.FrontSide {
		m.Side = scene.DoubleSide
	}

	if m.Map != nil {
		m.Map.Encoding = scene.SRGBEncoding
	}
	if m.AlphaMap != nil {
		m.AlphaMap.Encoding = scene.SRGBEncoding
	}
	if m.NormalMap != nil {
		m.NormalMap.Encoding = scene.LinearEncoding
		if m.NormalScale[0] == 0 || m.NormalScale[0] == 1 {
			m.NormalScale = mgl32.Vec2{1.5, 1.5}
		}
	}
	for _, tex := range m.Textures() {
		tex.Mipmaps = true
		tex.Anisotropy = n.MaxAnisotropy
		tex.MarkDirty()
	}

	if p.LiftDarkColor && m.Map == nil {
		c := m.Color
		if (c[0]+c[1]+c[2])/3 < 0.2 {
			m.Color = mgl32.Vec3{max(c[0], 0.2), max(c[1], 0.3), max(c[2], 0.2)}
		}
	}

	if m.Emissive == (mgl32.Vec3{1, 1, 1}) {
		m.Emissive = mgl32.Vec3{}
	}
	m.Visible = true
}

func categoryCounts(in map[Category]int) map[string]int {
	out := make(map[string]int, len(in))
	for c, n := range in {
		out[c.String()] = n
	}
	return out
}

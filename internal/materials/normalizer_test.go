package materials

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Faultbox/showroom/internal/scene"
)

func sceneWith(nodes ...*scene.Node) *scene.Scene {
	root := scene.NewNode("root")
	for _, n := range nodes {
		root.AddChild(n)
	}
	return scene.New(root)
}

func mesh(name string, mats ...*scene.Material) *scene.Node {
	n := scene.NewNode(name)
	for _, m := range mats {
		n.Primitives = append(n.Primitives, &scene.Primitive{Geometry: &scene.Geometry{}, Material: m})
	}
	return n
}

func TestBasicBecomesPhysicalKeepingSlots(t *testing.T) {
	albedo := &scene.Texture{Name: "albedo"}
	alpha := &scene.Texture{Name: "alpha"}
	normal := &scene.Texture{Name: "normal"}
	ao := &scene.Texture{Name: "ao"}

	src := scene.NewMaterial("bark", scene.KindBasic)
	src.Map = albedo
	src.AlphaMap = alpha
	src.NormalMap = normal
	src.AOMap = ao
	src.Color = mgl32.Vec3{0.5, 0.4, 0.3}
	src.Opacity = 0.8

	node := mesh("tree_trunk", src)
	rep := NewNormalizer(16).Run(sceneWith(node))

	got := node.Primitives[0].Material
	require.NotSame(t, src, got)
	assert.Equal(t, scene.KindPhysical, got.Kind)
	assert.Same(t, albedo, got.Map)
	assert.Same(t, alpha, got.AlphaMap)
	assert.Same(t, normal, got.NormalMap)
	assert.Same(t, ao, got.AOMap)
	assert.Equal(t, src.Color, got.Color)
	assert.Equal(t, float32(0.8), got.Opacity)

	assert.Equal(t, float32(0.8), *got.Roughness)
	assert.Equal(t, float32(0), *got.Metalness)
	assert.Equal(t, float32(0.3), *got.Clearcoat)
	assert.Equal(t, float32(0.3), *got.ClearcoatRoughness)
	assert.Equal(t, float32(1), *got.EnvMapIntensity)
	assert.Equal(t, scene.DoubleSide, got.Side, "partially transparent material renders both faces")

	assert.Equal(t, 1, rep.Meshes)
	assert.Equal(t, 1, rep.Materials)
	assert.Equal(t, 1, rep.Upgraded[scene.KindBasic])
	assert.Equal(t, 1, rep.Categories[Wood])
}

func TestSourceValuesWinOverProfile(t *testing.T) {
	src := scene.NewMaterial("steel", scene.KindStandard)
	src.Roughness = scene.Float(0.35)
	src.Metalness = scene.Float(0.6)

	got := NewNormalizer(1).Normalize(src, ProfileFor("steel_beam"))
	assert.Equal(t, float32(0.35), *got.Roughness)
	assert.Equal(t, float32(0.6), *got.Metalness)
	assert.Equal(t, float32(0), *got.Clearcoat, "standard upgrade zeroes clearcoat")
	assert.Equal(t, float32(0.1), *got.ClearcoatRoughness)
	assert.Equal(t, float32(1), *got.EnvMapIntensity)
}

func TestZeroValuesReplacedPerCategory(t *testing.T) {
	metal := scene.NewMaterial("m", scene.KindPhysical)
	metal.Roughness = scene.Float(0)
	metal.Metalness = scene.Float(0)
	got := NewNormalizer(1).Normalize(metal, ProfileFor("iron_gate"))
	assert.Equal(t, float32(0.2), *got.Roughness)
	assert.Equal(t, float32(0.9), *got.Metalness)

	plain := scene.NewMaterial("p", scene.KindPhysical)
	plain.Roughness = scene.Float(0)
	got = NewNormalizer(1).Normalize(plain, ProfileFor("vase"))
	assert.Equal(t, float32(0), *got.Roughness, "default category keeps an explicit zero")
	assert.Equal(t, float32(0), *got.Metalness)

	unset := scene.NewMaterial("u", scene.KindPhysical)
	got = NewNormalizer(1).Normalize(unset, ProfileFor("vase"))
	assert.Equal(t, float32(0.7), *got.Roughness)
}

func TestPhysicalPatchedInPlace(t *testing.T) {
	src := scene.NewMaterial("drape", scene.KindPhysical)
	src.Clearcoat = scene.Float(0.25)

	got := NewNormalizer(1).Normalize(src, ProfileFor("curtain"))
	require.Same(t, src, got)
	assert.Equal(t, float32(0.25), *got.Clearcoat, "existing value kept")
	assert.Equal(t, float32(0.3), *got.Sheen)
	assert.Equal(t, float32(0.8), *got.SheenRoughness)
	assert.Equal(t, float32(1), *got.EnvMapIntensity)
	assert.Nil(t, got.Transmission)
}

func TestGlassBecomesTransmissive(t *testing.T) {
	for _, kind := range []scene.Kind{scene.KindBasic, scene.KindStandard, scene.KindPhysical} {
		src := scene.NewMaterial("pane", kind)
		got := NewNormalizer(1).Normalize(src, ProfileFor("Window_Pane"))

		require.NotNil(t, got.Transmission, kind.String())
		assert.Equal(t, float32(0.95), *got.Transmission, kind.String())
		assert.Equal(t, float32(0.1), got.Opacity, kind.String())
		assert.True(t, got.Transparent, kind.String())
		assert.Equal(t, scene.DoubleSide, got.Side, kind.String())
	}
}

func TestGrassFloorAndDarkLift(t *testing.T) {
	dark := scene.NewMaterial("g", scene.KindStandard)
	dark.Color = mgl32.Vec3{0.05, 0.1, 0.05}

	got := NewNormalizer(1).Normalize(dark, ProfileFor("Ground"))
	assert.Equal(t, scene.DoubleSide, got.Side)
	assert.Equal(t, mgl32.Vec3{0.2, 0.3, 0.2}, got.Color)
	assert.Equal(t, float32(0.95), *got.Roughness)

	textured := scene.NewMaterial("g2", scene.KindStandard)
	textured.Color = mgl32.Vec3{0.05, 0.1, 0.05}
	textured.Map = &scene.Texture{}
	got = NewNormalizer(1).Normalize(textured, ProfileFor("Ground"))
	assert.Equal(t, mgl32.Vec3{0.05, 0.1, 0.05}, got.Color, "textured grass keeps its color")

	bright := scene.NewMaterial("g3", scene.KindStandard)
	bright.Color = mgl32.Vec3{0.3, 0.6, 0.2}
	got = NewNormalizer(1).Normalize(bright, ProfileFor("lawn"))
	assert.Equal(t, mgl32.Vec3{0.3, 0.6, 0.2}, got.Color)
}

func TestTextureEncodingAndFiltering(t *testing.T) {
	albedo := &scene.Texture{Encoding: scene.LinearEncoding}
	alpha := &scene.Texture{}
	normal := &scene.Texture{Encoding: scene.SRGBEncoding}
	rough := &scene.Texture{}

	src := scene.NewMaterial("m", scene.KindStandard)
	src.Map, src.AlphaMap, src.NormalMap, src.RoughnessMap = albedo, alpha, normal, rough

	got := NewNormalizer(8).Normalize(src, DefaultProfile)

	assert.Equal(t, scene.SRGBEncoding, albedo.Encoding)
	assert.Equal(t, scene.SRGBEncoding, alpha.Encoding)
	assert.Equal(t, scene.LinearEncoding, normal.Encoding)
	for _, tex := range []*scene.Texture{albedo, alpha, normal, rough} {
		assert.True(t, tex.Mipmaps)
		assert.Equal(t, float32(8), tex.Anisotropy)
		assert.Equal(t, 1, tex.Version)
	}
	assert.Equal(t, mgl32.Vec2{1.5, 1.5}, got.NormalScale)
}

func TestNormalScaleKeptWhenCustom(t *testing.T) {
	src := scene.NewMaterial("m", scene.KindPhysical)
	src.NormalMap = &scene.Texture{}
	src.NormalScale = mgl32.Vec2{0.6, 0.6}

	got := NewNormalizer(1).Normalize(src, DefaultProfile)
	assert.Equal(t, mgl32.Vec2{0.6, 0.6}, got.NormalScale)
}

func TestWhiteEmissiveResetAndVisible(t *testing.T) {
	src := scene.NewMaterial("m", scene.KindPhysical)
	src.Emissive = mgl32.Vec3{1, 1, 1}
	src.Visible = false

	got := NewNormalizer(1).Normalize(src, DefaultProfile)
	assert.Equal(t, mgl32.Vec3{}, got.Emissive)
	assert.True(t, got.Visible)

	tinted := scene.NewMaterial("t", scene.KindPhysical)
	tinted.Emissive = mgl32.Vec3{1, 0.5, 0}
	got = NewNormalizer(1).Normalize(tinted, DefaultProfile)
	assert.Equal(t, mgl32.Vec3{1, 0.5, 0}, got.Emissive)
}

func TestRunSkipsMissingMaterialsAndVisitsEverySlot(t *testing.T) {
	a := scene.NewMaterial("a", scene.KindStandard)
	b := scene.NewMaterial("b", scene.KindBasic)
	multi := mesh("chair", a, nil, b)
	group := scene.NewNode("group")
	group.AddChild(multi)

	rep := NewNormalizer(4).Run(sceneWith(group))

	assert.Equal(t, 1, rep.Meshes)
	assert.Equal(t, 2, rep.Materials)
	assert.Equal(t, 1, rep.Skipped)
	assert.Nil(t, multi.Primitives[1].Material)
	assert.Equal(t, scene.KindPhysical, multi.Primitives[0].Material.Kind)
	assert.Equal(t, scene.KindPhysical, multi.Primitives[2].Material.Kind)
	assert.True(t, multi.CastShadow)
	assert.True(t, multi.ReceiveShadow)
}

package assets

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"go.uber.org/zap"
	_ "golang.org/x/image/webp"

	"github.com/Faultbox/showroom/internal/animation"
	"github.com/Faultbox/showroom/internal/logger"
	"github.com/Faultbox/showroom/internal/scene"
)

// ErrUnsupported is returned for content the decoder cannot handle.
var ErrUnsupported = errors.New("unsupported asset content")

// Model is a decoded scene together with its animation clips.
type Model struct {
	Scene *scene.Scene
	Clips []*animation.Clip
}

var unsupportedExtensions = map[string]bool{
	"EXT_meshopt_compression": true,
}

var identityMatrix = [16]float64{1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1}

var physicalExtensions = []string{
	"KHR_materials_clearcoat",
	"KHR_materials_sheen",
	"KHR_materials_transmission",
	"KHR_materials_ior",
	"KHR_materials_specular",
	"KHR_materials_volume",
}

// DecodeGLB parses a self-contained glTF (binary or embedded) document.
func DecodeGLB(data []byte) (*Model, error) {
	doc := new(gltf.Document)
	if err := gltf.NewDecoder(bytes.NewReader(data)).Decode(doc); err != nil {
		return nil, fmt.Errorf("decoding gltf: %w", err)
	}
	return buildModel(doc)
}

type modelBuilder struct {
	doc      *gltf.Document
	log      *zap.Logger
	images   map[int]*scene.Texture
	textures []*scene.Texture
	mats     []*scene.Material
	nodes    []*scene.Node
}

func buildModel(doc *gltf.Document) (*Model, error) {
	for _, ext := range doc.ExtensionsRequired {
		if unsupportedExtensions[ext] {
			return nil, fmt.Errorf("required extension %s: %w", ext, ErrUnsupported)
		}
	}

	b := &modelBuilder{
		doc:    doc,
		log:    logger.Named("assets"),
		images: make(map[int]*scene.Texture),
	}
	b.buildTextures()
	b.buildMaterials()
	if err := b.buildNodes(); err != nil {
		return nil, err
	}

	root := scene.NewNode("model")
	for _, n := range b.roots() {
		root.AddChild(n)
	}

	return &Model{Scene: scene.New(root), Clips: b.buildClips()}, nil
}

func (b *modelBuilder) buildTextures() {
	b.textures = make([]*scene.Texture, len(b.doc.Textures))
	for i, gt := range b.doc.Textures {
		src := gt.Source
		var webp struct {
			Source *int `json:"source"`
		}
		if extension(gt.Extensions, "EXT_texture_webp", &webp) && webp.Source != nil {
			src = webp.Source
		}
		if src == nil || *src >= len(b.doc.Images) {
			continue
		}

		if tex, ok := b.images[*src]; ok {
			b.textures[i] = tex
			continue
		}
		tex, err := b.decodeImage(*src)
		if err != nil {
			b.log.Warn("texture skipped", zap.Int("image", *src), zap.Error(err))
			continue
		}
		b.images[*src] = tex
		b.textures[i] = tex
	}
}

func (b *modelBuilder) decodeImage(index int) (*scene.Texture, error) {
	img := b.doc.Images[index]

	var raw []byte
	var err error
	switch {
	case img.BufferView != nil:
		raw, err = modeler.ReadBufferView(b.doc, b.doc.BufferViews[*img.BufferView])
	case img.IsEmbeddedResource():
		raw, err = img.MarshalData()
	default:
		return nil, fmt.Errorf("external image %q: %w", img.URI, ErrUnsupported)
	}
	if err != nil {
		return nil, err
	}

	name := img.Name
	if name == "" {
		name = fmt.Sprintf("image_%d", index)
	}
	return decodeTexture(name, raw)
}

// decodeTexture decodes png, jpeg or webp bytes into RGBA8.
func decodeTexture(name string, raw []byte) (*scene.Texture, error) {
	src, format, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", name, err)
	}

	rgba, ok := src.(*image.RGBA)
	if !ok || rgba.Stride != rgba.Rect.Dx()*4 || rgba.Rect.Min != (image.Point{}) {
		rgba = image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
		draw.Draw(rgba, rgba.Bounds(), src, src.Bounds().Min, draw.Src)
	}

	logger.Named("assets").Debug("texture decoded",
		zap.String("name", name), zap.String("format", format),
		zap.Int("width", rgba.Rect.Dx()), zap.Int("height", rgba.Rect.Dy()))

	return &scene.Texture{
		Name:   name,
		Width:  rgba.Rect.Dx(),
		Height: rgba.Rect.Dy(),
		Pixels: rgba.Pix,
	}, nil
}

func (b *modelBuilder) texture(index int) *scene.Texture {
	if index < 0 || index >= len(b.textures) {
		return nil
	}
	return b.textures[index]
}

func (b *modelBuilder) buildMaterials() {
	b.mats = make([]*scene.Material, len(b.doc.Materials))
	for i, gm := range b.doc.Materials {
		b.mats[i] = b.convertMaterial(gm)
	}
}

func (b *modelBuilder) convertMaterial(gm *gltf.Material) *scene.Material {
	m := scene.NewMaterial(gm.Name, materialKind(gm.Extensions))

	if pbr := gm.PBRMetallicRoughness; pbr != nil {
		c := pbr.BaseColorFactorOrDefault()
		m.Color = mgl32.Vec3{float32(c[0]), float32(c[1]), float32(c[2])}
		m.Opacity = float32(c[3])
		if pbr.BaseColorTexture != nil {
			m.Map = b.texture(pbr.BaseColorTexture.Index)
		}
		if m.Kind != scene.KindBasic {
			m.Roughness = scene.Float(float32(pbr.RoughnessFactorOrDefault()))
			m.Metalness = scene.Float(float32(pbr.MetallicFactorOrDefault()))
			if pbr.MetallicRoughnessTexture != nil {
				t := b.texture(pbr.MetallicRoughnessTexture.Index)
				m.RoughnessMap, m.MetalnessMap = t, t
			}
		}
	}

	switch gm.AlphaMode {
	case gltf.AlphaBlend:
		m.Transparent = true
	case gltf.AlphaMask:
		m.AlphaTest = float32(gm.AlphaCutoffOrDefault())
	}
	if gm.DoubleSided {
		m.Side = scene.DoubleSide
	}

	if m.Kind == scene.KindBasic {
		return m
	}

	if nt := gm.NormalTexture; nt != nil && nt.Index != nil {
		m.NormalMap = b.texture(*nt.Index)
		s := float32(nt.ScaleOrDefault())
		m.NormalScale = mgl32.Vec2{s, s}
	}
	if ot := gm.OcclusionTexture; ot != nil && ot.Index != nil {
		m.AOMap = b.texture(*ot.Index)
	}
	if gm.EmissiveTexture != nil {
		m.EmissiveMap = b.texture(gm.EmissiveTexture.Index)
	}
	e := gm.EmissiveFactor
	m.Emissive = mgl32.Vec3{float32(e[0]), float32(e[1]), float32(e[2])}

	var strength struct {
		EmissiveStrength *float64 `json:"emissiveStrength"`
	}
	if extension(gm.Extensions, "KHR_materials_emissive_strength", &strength) && strength.EmissiveStrength != nil {
		m.EmissiveIntensity = float32(*strength.EmissiveStrength)
	}

	if m.Kind == scene.KindPhysical {
		applyPhysicalExtensions(m, gm.Extensions)
	}
	return m
}

func applyPhysicalExtensions(m *scene.Material, ext gltf.Extensions) {
	var clearcoat struct {
		Factor    *float64 `json:"clearcoatFactor"`
		Roughness *float64 `json:"clearcoatRoughnessFactor"`
	}
	if extension(ext, "KHR_materials_clearcoat", &clearcoat) {
		m.Clearcoat = scene.Float(float32(deref(clearcoat.Factor, 0)))
		m.ClearcoatRoughness = scene.Float(float32(deref(clearcoat.Roughness, 0)))
	}

	var sheen struct {
		Color     []float64 `json:"sheenColorFactor"`
		Roughness *float64  `json:"sheenRoughnessFactor"`
	}
	if extension(ext, "KHR_materials_sheen", &sheen) {
		var peak float64
		for _, c := range sheen.Color {
			peak = max(peak, c)
		}
		if peak > 0 {
			m.Sheen = scene.Float(1)
		} else {
			m.Sheen = scene.Float(0)
		}
		m.SheenRoughness = scene.Float(float32(deref(sheen.Roughness, 0)))
	}

	var transmission struct {
		Factor *float64 `json:"transmissionFactor"`
	}
	if extension(ext, "KHR_materials_transmission", &transmission) {
		m.Transmission = scene.Float(float32(deref(transmission.Factor, 0)))
	}
}

func materialKind(ext gltf.Extensions) scene.Kind {
	if _, ok := ext["KHR_materials_unlit"]; ok {
		return scene.KindBasic
	}
	for _, name := range physicalExtensions {
		if _, ok := ext[name]; ok {
			return scene.KindPhysical
		}
	}
	return scene.KindStandard
}

// extension decodes the named extension payload into v. Unregistered
// extensions arrive as raw JSON; registered ones as typed values, so both
// are routed through JSON.
func extension(ext gltf.Extensions, name string, v any) bool {
	raw, ok := ext[name]
	if !ok {
		return false
	}
	var data []byte
	switch r := raw.(type) {
	case json.RawMessage:
		data = r
	case []byte:
		data = r
	default:
		var err error
		if data, err = json.Marshal(raw); err != nil {
			return false
		}
	}
	return json.Unmarshal(data, v) == nil
}

func deref(p *float64, def float64) float64 {
	if p == nil {
		return def
	}
	return *p
}

func (b *modelBuilder) buildNodes() error {
	meshes := make([][]*scene.Primitive, len(b.doc.Meshes))
	for mi, gm := range b.doc.Meshes {
		for pi, prim := range gm.Primitives {
			for name := range prim.Extensions {
				if unsupportedExtensions[name] {
					return fmt.Errorf("mesh %d primitive %d uses %s: %w", mi, pi, name, ErrUnsupported)
				}
			}
			p, err := b.convertPrimitive(prim)
			if err != nil {
				b.log.Warn("primitive skipped", zap.Int("mesh", mi), zap.Int("primitive", pi), zap.Error(err))
				continue
			}
			meshes[mi] = append(meshes[mi], p)
		}
	}

	b.nodes = make([]*scene.Node, len(b.doc.Nodes))
	for i, gn := range b.doc.Nodes {
		name := gn.Name
		if name == "" && gn.Mesh != nil && *gn.Mesh < len(b.doc.Meshes) {
			name = b.doc.Meshes[*gn.Mesh].Name
		}
		n := scene.NewNode(name)
		setTransform(n, gn)
		if gn.Mesh != nil && *gn.Mesh < len(meshes) {
			n.Primitives = meshes[*gn.Mesh]
		}
		b.nodes[i] = n
	}

	for i, gn := range b.doc.Nodes {
		for _, c := range gn.Children {
			if c >= 0 && c < len(b.nodes) && c != i {
				b.nodes[i].AddChild(b.nodes[c])
			}
		}
	}
	return nil
}

func setTransform(n *scene.Node, gn *gltf.Node) {
	if gn.Matrix != [16]float64{} && gn.Matrix != identityMatrix {
		var m mgl32.Mat4
		for i, v := range gn.Matrix {
			m[i] = float32(v)
		}
		n.Position = m.Col(3).Vec3()
		sx, sy, sz := m.Col(0).Vec3().Len(), m.Col(1).Vec3().Len(), m.Col(2).Vec3().Len()
		n.Scale = mgl32.Vec3{sx, sy, sz}
		if sx != 0 && sy != 0 && sz != 0 {
			rot := mgl32.Mat3FromCols(m.Col(0).Vec3().Mul(1/sx), m.Col(1).Vec3().Mul(1/sy), m.Col(2).Vec3().Mul(1/sz))
			n.Rotation = mgl32.Mat4ToQuat(rot.Mat4())
		}
		return
	}

	t := gn.TranslationOrDefault()
	r := gn.RotationOrDefault()
	s := gn.ScaleOrDefault()
	n.Position = mgl32.Vec3{float32(t[0]), float32(t[1]), float32(t[2])}
	n.Rotation = mgl32.Quat{W: float32(r[3]), V: mgl32.Vec3{float32(r[0]), float32(r[1]), float32(r[2])}}
	n.Scale = mgl32.Vec3{float32(s[0]), float32(s[1]), float32(s[2])}
}

func (b *modelBuilder) convertPrimitive(prim *gltf.Primitive) (*scene.Primitive, error) {
	if prim.Mode != gltf.PrimitiveTriangles {
		return nil, fmt.Errorf("primitive mode %v: %w", prim.Mode, ErrUnsupported)
	}

	var (
		positions, normals []mgl32.Vec3
		uvs                []mgl32.Vec2
		indices            []uint32
		err                error
	)
	var dracoExt dracoPrimitive
	if extension(prim.Extensions, dracoExtension, &dracoExt) {
		dm, err := b.decodeDraco(dracoExt)
		if err != nil {
			return nil, err
		}
		positions, normals, uvs, indices = dm.positions, dm.normals, dm.uvs, dm.indices
	} else {
		positions, normals, uvs, indices, err = b.readAttributes(prim)
		if err != nil {
			return nil, err
		}
	}

	if indices == nil {
		indices = make([]uint32, len(positions))
		for i := range indices {
			indices[i] = uint32(i)
		}
	}
	if normals == nil {
		normals = computeNormals(positions, indices)
	}

	mat := scene.NewMaterial("", scene.KindStandard)
	mat.Roughness = scene.Float(1)
	mat.Metalness = scene.Float(0)
	if prim.Material != nil && *prim.Material < len(b.mats) {
		mat = b.mats[*prim.Material]
	}

	return &scene.Primitive{
		Geometry: scene.NewGeometry(positions, normals, uvs, indices),
		Material: mat,
	}, nil
}

func (b *modelBuilder) readAttributes(prim *gltf.Primitive) (positions, normals []mgl32.Vec3, uvs []mgl32.Vec2, indices []uint32, err error) {
	posIdx, ok := prim.Attributes[gltf.POSITION]
	if !ok {
		return nil, nil, nil, nil, errors.New("primitive has no POSITION attribute")
	}

	raw, err := modeler.ReadPosition(b.doc, b.doc.Accessors[posIdx], nil)
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("reading positions: %w", err)
	}
	positions = make([]mgl32.Vec3, len(raw))
	for i, p := range raw {
		positions[i] = p
	}

	if idx, ok := prim.Attributes[gltf.NORMAL]; ok {
		if rn, err := modeler.ReadNormal(b.doc, b.doc.Accessors[idx], nil); err == nil && len(rn) == len(positions) {
			normals = make([]mgl32.Vec3, len(rn))
			for i, n := range rn {
				normals[i] = n
			}
		}
	}

	if idx, ok := prim.Attributes[gltf.TEXCOORD_0]; ok {
		if ru, err := modeler.ReadTextureCoord(b.doc, b.doc.Accessors[idx], nil); err == nil && len(ru) == len(positions) {
			uvs = make([]mgl32.Vec2, len(ru))
			for i, uv := range ru {
				uvs[i] = uv
			}
		}
	}

	if prim.Indices != nil {
		indices, err = modeler.ReadIndices(b.doc, b.doc.Accessors[*prim.Indices], nil)
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("reading indices: %w", err)
		}
	}
	return positions, normals, uvs, indices, nil
}

// computeNormals returns area-weighted smooth vertex normals.
func computeNormals(positions []mgl32.Vec3, indices []uint32) []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(positions))
	for i := 0; i+2 < len(indices); i += 3 {
		a, b, c := indices[i], indices[i+1], indices[i+2]
		if int(a) >= len(positions) || int(b) >= len(positions) || int(c) >= len(positions) {
			continue
		}
		n := positions[b].Sub(positions[a]).Cross(positions[c].Sub(positions[a]))
		out[a] = out[a].Add(n)
		out[b] = out[b].Add(n)
		out[c] = out[c].Add(n)
	}
	for i, n := range out {
		if n.Len() > 0 {
			out[i] = n.Normalize()
		} else {
			out[i] = mgl32.Vec3{0, 1, 0}
		}
	}
	return out
}

func (b *modelBuilder) roots() []*scene.Node {
	if s := b.doc.Scene; s != nil && *s < len(b.doc.Scenes) {
		var out []*scene.Node
		for _, idx := range b.doc.Scenes[*s].Nodes {
			if idx >= 0 && idx < len(b.nodes) {
				out = append(out, b.nodes[idx])
			}
		}
		return out
	}

	var out []*scene.Node
	for _, n := range b.nodes {
		if n.Parent == nil {
			out = append(out, n)
		}
	}
	return out
}

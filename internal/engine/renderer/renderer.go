// Package renderer draws the loaded model with the studio light rig, a
// directional shadow map and the HDR environment.
package renderer

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/showroom/internal/assets"
	"github.com/Faultbox/showroom/internal/engine/camera"
	"github.com/Faultbox/showroom/internal/engine/debug"
	"github.com/Faultbox/showroom/internal/engine/lighting"
	"github.com/Faultbox/showroom/internal/engine/picking"
	"github.com/Faultbox/showroom/internal/engine/renderer/shaders"
	"github.com/Faultbox/showroom/internal/engine/shader"
	"github.com/Faultbox/showroom/internal/engine/shadow"
	"github.com/Faultbox/showroom/internal/logger"
	"github.com/Faultbox/showroom/internal/scene"
)

// Texture units.
const (
	unitBase = iota
	unitNormal
	unitRoughness
	unitMetalness
	unitAO
	unitEmissive
	unitAlpha
	unitShadow
	unitEnv
)

// Config holds renderer configuration.
type Config struct {
	ShadowMapSize int
}

// Frame is everything needed to draw one image.
type Frame struct {
	Scene       *scene.Scene
	Camera      *camera.Perspective
	Lights      *lighting.Rig
	Environment *assets.Environment
	Background  mgl32.Vec3
	Exposure    float32
	// Selection, when non-nil, is outlined with a box.
	Selection *picking.AABB
}

// Renderer handles all OpenGL rendering. It must be created and used on
// the thread that owns the GL context.
type Renderer struct {
	log *zap.Logger

	pbr   *shader.Program
	depth *shader.Program
	sky   *shader.Program
	lines *shader.Program

	shadowMap *shadow.Map
	skyVAO    uint32
	lineVAO   uint32
	lineVBO   uint32

	meshes   map[*scene.Geometry]*gpuMesh
	textures map[*scene.Texture]*gpuTexture

	env       *assets.Environment
	envTex    uint32
	envMaxLod float32

	maxAnisotropy float32
}

// New compiles the programs and allocates the shadow map.
// IMPORTANT: Must be called AFTER the OpenGL context is created!
func New(cfg Config) (*Renderer, error) {
	r := &Renderer{
		log:      logger.Named("renderer"),
		meshes:   make(map[*scene.Geometry]*gpuMesh),
		textures: make(map[*scene.Texture]*gpuTexture),
	}

	r.log.Info("OpenGL initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))),
		zap.String("renderer", gl.GoStr(gl.GetString(gl.RENDERER))))

	var err error
	if r.pbr, err = shader.Compile("pbr", shaders.PBRVertexShader, shaders.PBRFragmentShader); err != nil {
		return nil, err
	}
	if r.depth, err = shader.Compile("depth", shaders.DepthVertexShader, shaders.DepthFragmentShader); err != nil {
		r.Close()
		return nil, err
	}
	if r.sky, err = shader.Compile("sky", shaders.SkyVertexShader, shaders.SkyFragmentShader); err != nil {
		r.Close()
		return nil, err
	}
	if r.lines, err = shader.Compile("lines", shaders.LineVertexShader, shaders.LineFragmentShader); err != nil {
		r.Close()
		return nil, err
	}

	if r.shadowMap, err = shadow.NewMap(int32(cfg.ShadowMapSize)); err != nil {
		r.Close()
		return nil, fmt.Errorf("shadow map: %w", err)
	}

	gl.GenVertexArrays(1, &r.skyVAO)
	gl.GenVertexArrays(1, &r.lineVAO)
	gl.GenBuffers(1, &r.lineVBO)
	gl.BindVertexArray(r.lineVAO)
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointerWithOffset(0, 3, gl.FLOAT, false, 12, 0)
	gl.BindVertexArray(0)

	gl.GetFloatv(maxTextureMaxAnisotropy, &r.maxAnisotropy)
	r.maxAnisotropy = max(r.maxAnisotropy, 1)
	r.log.Debug("renderer ready",
		zap.Float32("max_anisotropy", r.maxAnisotropy),
		zap.Int32("shadow_map", r.shadowMap.Resolution))
	return r, nil
}

// MaxAnisotropy returns the hardware anisotropic filtering limit.
func (r *Renderer) MaxAnisotropy() float32 {
	return r.maxAnisotropy
}

// Close releases every GPU resource.
func (r *Renderer) Close() {
	r.log.Info("closing renderer")
	for g, m := range r.meshes {
		m.destroy()
		delete(r.meshes, g)
	}
	for t, tex := range r.textures {
		gl.DeleteTextures(1, &tex.id)
		delete(r.textures, t)
	}
	if r.envTex != 0 {
		gl.DeleteTextures(1, &r.envTex)
		r.envTex = 0
	}
	if r.shadowMap != nil {
		r.shadowMap.Destroy()
	}
	if r.skyVAO != 0 {
		gl.DeleteVertexArrays(1, &r.skyVAO)
	}
	if r.lineVAO != 0 {
		gl.DeleteVertexArrays(1, &r.lineVAO)
		gl.DeleteBuffers(1, &r.lineVBO)
	}
	for _, p := range []*shader.Program{r.pbr, r.depth, r.sky, r.lines} {
		if p != nil {
			p.Delete()
		}
	}
}

// Render draws f into the currently bound framebuffer.
func (r *Renderer) Render(f Frame) {
	gl.ClearColor(f.Background[0], f.Background[1], f.Background[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)

	r.syncEnvironment(f.Environment)

	if f.Scene == nil || f.Camera == nil || f.Lights == nil {
		if r.envTex != 0 && f.Camera != nil {
			r.drawSky(f)
		}
		return
	}

	opaque, translucent := buildQueue(f.Scene, f.Camera.Position)

	lightVP, shadows := r.shadowPass(f, opaque, translucent)

	if r.envTex != 0 {
		r.drawSky(f)
	}

	r.pbr.Use()
	r.setFrameUniforms(f, lightVP, shadows)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LEQUAL)
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	for _, it := range opaque {
		r.drawItem(it)
	}

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.SRC_ALPHA, gl.ONE_MINUS_SRC_ALPHA)
	gl.DepthMask(false)
	for _, it := range translucent {
		r.drawItem(it)
	}
	gl.DepthMask(true)
	gl.Disable(gl.BLEND)
	gl.Disable(gl.CULL_FACE)

	if f.Selection != nil {
		r.drawBox(f, *f.Selection)
	}
}

func (r *Renderer) syncEnvironment(env *assets.Environment) {
	if env == r.env {
		return
	}
	if r.envTex != 0 {
		gl.DeleteTextures(1, &r.envTex)
		r.envTex = 0
	}
	r.env = env
	if env == nil || env.Width == 0 || env.Height == 0 {
		return
	}
	r.envTex, r.envMaxLod = uploadEnvironment(env)
	r.log.Info("environment uploaded", zap.Int("width", env.Width), zap.Int("height", env.Height))
}

// shadowPass renders casters into the key light's depth map. The fixed
// shadow box is used when it encloses the scene, otherwise it is refit.
func (r *Renderer) shadowPass(f Frame, items ...[]drawItem) (mgl32.Mat4, bool) {
	key := f.Lights.Key
	if !key.CastShadow {
		return mgl32.Ident4(), false
	}

	bounds := f.Scene.Bounds()
	lightVP := shadow.LightMatrix(key)
	if !bounds.IsEmpty() && !shadow.Covers(key, bounds) {
		lightVP = shadow.FitLightMatrix(key, bounds)
	}

	r.shadowMap.Bind(key.Shadow.Bias)
	r.depth.Use()
	r.depth.SetMat4("uLightViewProj", lightVP)
	for _, list := range items {
		for _, it := range list {
			if !it.node.CastShadow {
				continue
			}
			r.depth.SetMat4("uModel", it.world)
			r.mesh(it.prim.Geometry).draw()
		}
	}
	r.shadowMap.Unbind()
	return lightVP, true
}

func (r *Renderer) drawSky(f Frame) {
	gl.Disable(gl.CULL_FACE)
	gl.DepthMask(false)
	gl.Disable(gl.DEPTH_TEST)

	r.sky.Use()
	r.sky.SetMat4("uInvViewProj", f.Camera.ViewProjection().Inv())
	r.sky.SetVec3("uCameraPos", f.Camera.Position)
	r.sky.SetFloat("uExposure", f.Exposure)
	r.sky.SetInt("uEnvMap", unitEnv)
	gl.ActiveTexture(gl.TEXTURE0 + unitEnv)
	gl.BindTexture(gl.TEXTURE_2D, r.envTex)

	gl.BindVertexArray(r.skyVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthMask(true)
}

func (r *Renderer) setFrameUniforms(f Frame, lightVP mgl32.Mat4, shadows bool) {
	p := r.pbr
	p.SetMat4("uViewProj", f.Camera.ViewProjection())
	p.SetVec3("uCameraPos", f.Camera.Position)
	p.SetFloat("uExposure", f.Exposure)

	rig := f.Lights
	p.SetVec3Array("uLightDir", rig.DirectionUniforms())
	p.SetVec3Array("uLightRadiance", rig.RadianceUniforms())
	hemi := rig.Hemisphere
	p.SetVec3("uHemiSky", hemi.Sky.Mul(hemi.Intensity))
	p.SetVec3("uHemiGround", hemi.Ground.Mul(hemi.Intensity))
	p.SetVec3("uAmbient", rig.Ambient.Color.Mul(rig.Ambient.Intensity))

	p.SetMat4("uLightViewProj", lightVP)
	p.SetBool("uShadowEnabled", shadows)
	p.SetFloat("uNormalBias", rig.Key.Shadow.NormalBias)
	p.SetFloat("uShadowTexel", 1/float32(r.shadowMap.Resolution))
	p.SetInt("uShadowMap", unitShadow)
	r.shadowMap.BindTexture(gl.TEXTURE0 + unitShadow)

	p.SetBool("uHasEnv", r.envTex != 0)
	p.SetFloat("uEnvMaxLod", r.envMaxLod)
	p.SetInt("uEnvMap", unitEnv)
	gl.ActiveTexture(gl.TEXTURE0 + unitEnv)
	gl.BindTexture(gl.TEXTURE_2D, r.envTex)

	p.SetInt("uBaseMap", unitBase)
	p.SetInt("uNormalMap", unitNormal)
	p.SetInt("uRoughnessMap", unitRoughness)
	p.SetInt("uMetalnessMap", unitMetalness)
	p.SetInt("uAOMap", unitAO)
	p.SetInt("uEmissiveMap", unitEmissive)
	p.SetInt("uAlphaMap", unitAlpha)
}

func (r *Renderer) drawItem(it drawItem) {
	m := it.prim.Material
	p := r.pbr

	p.SetMat4("uModel", it.world)
	p.SetMat3("uNormalMatrix", normalMatrix(it.world))
	p.SetBool("uReceiveShadow", it.node.ReceiveShadow)

	p.SetVec3("uBaseColor", m.Color)
	p.SetFloat("uOpacity", m.Opacity)
	p.SetFloat("uAlphaTest", m.AlphaTest)
	p.SetFloat("uRoughness", scene.Value(m.Roughness, 1))
	p.SetFloat("uMetalness", scene.Value(m.Metalness, 0))
	p.SetVec3("uEmissive", m.Emissive)
	p.SetFloat("uEmissiveIntensity", m.EmissiveIntensity)
	p.SetFloat("uClearcoat", scene.Value(m.Clearcoat, 0))
	p.SetFloat("uClearcoatRoughness", scene.Value(m.ClearcoatRoughness, 0))
	p.SetFloat("uSheen", scene.Value(m.Sheen, 0))
	p.SetFloat("uSheenRoughness", scene.Value(m.SheenRoughness, 1))
	p.SetFloat("uTransmission", scene.Value(m.Transmission, 0))
	p.SetFloat("uEnvIntensity", scene.Value(m.EnvMapIntensity, 1))
	p.SetVec2("uNormalScale", m.NormalScale)
	p.SetBool("uUnlit", m.Kind == scene.KindBasic)

	r.bindMap("uHasBaseMap", unitBase, m.Map)
	r.bindMap("uHasNormalMap", unitNormal, m.NormalMap)
	r.bindMap("uHasRoughnessMap", unitRoughness, m.RoughnessMap)
	r.bindMap("uHasMetalnessMap", unitMetalness, m.MetalnessMap)
	r.bindMap("uHasAOMap", unitAO, m.AOMap)
	r.bindMap("uHasEmissiveMap", unitEmissive, m.EmissiveMap)
	r.bindMap("uHasAlphaMap", unitAlpha, m.AlphaMap)

	if enabled, face := cullFor(m.Side); enabled {
		gl.Enable(gl.CULL_FACE)
		gl.CullFace(face)
	} else {
		gl.Disable(gl.CULL_FACE)
	}

	r.mesh(it.prim.Geometry).draw()
}

func (r *Renderer) bindMap(flag string, unit uint32, t *scene.Texture) {
	r.pbr.SetBool(flag, t != nil)
	if t == nil {
		return
	}
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(gl.TEXTURE_2D, r.texture(t))
}

func (r *Renderer) mesh(g *scene.Geometry) *gpuMesh {
	m, ok := r.meshes[g]
	if !ok {
		m = uploadGeometry(g)
		r.meshes[g] = m
	}
	return m
}

// texture returns the GL texture for t, refreshing sampling state when the
// texture was marked dirty since the last upload.
func (r *Renderer) texture(t *scene.Texture) uint32 {
	tex, ok := r.textures[t]
	if !ok {
		tex = &gpuTexture{id: uploadTexture(t), version: t.Version}
		r.textures[t] = tex
		return tex.id
	}
	if tex.version != t.Version {
		gl.BindTexture(gl.TEXTURE_2D, tex.id)
		applySampling(t)
		tex.version = t.Version
	}
	return tex.id
}

func (r *Renderer) drawBox(f Frame, b picking.AABB) {
	verts := debug.BoxLines(b)
	if len(verts) == 0 {
		return
	}
	gl.BindBuffer(gl.ARRAY_BUFFER, r.lineVBO)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.DYNAMIC_DRAW)

	r.lines.Use()
	r.lines.SetMat4("uViewProj", f.Camera.ViewProjection())
	r.lines.SetVec3("uColor", mgl32.Vec3{1, 0.85, 0.2})

	gl.BindVertexArray(r.lineVAO)
	gl.DrawArrays(gl.LINES, 0, int32(len(verts)/3))
	gl.BindVertexArray(0)
}

// Package viewer owns one viewing session: loading, framing, the intro,
// pointer interaction and the slider-driven render parameters.
package viewer

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/showroom/internal/animation"
	"github.com/Faultbox/showroom/internal/assets"
	"github.com/Faultbox/showroom/internal/config"
	"github.com/Faultbox/showroom/internal/engine/camera"
	"github.com/Faultbox/showroom/internal/engine/lighting"
	"github.com/Faultbox/showroom/internal/interaction"
	"github.com/Faultbox/showroom/internal/intro"
	"github.com/Faultbox/showroom/internal/logger"
	"github.com/Faultbox/showroom/internal/materials"
	"github.com/Faultbox/showroom/internal/scene"
)

// Loader starts background loads.
type Loader interface {
	Scene(ctx context.Context, name string) *assets.Task[*assets.Model]
	Environment(ctx context.Context, name string) *assets.Task[*assets.Environment]
}

// Options tunes a session beyond the config file.
type Options struct {
	// MaxAnisotropy is the hardware filtering limit reported by the renderer.
	MaxAnisotropy float32
	// Now overrides the intro clock.
	Now func() time.Time
}

// Session is driven by the frame loop and is not safe for concurrent use.
type Session struct {
	cfg *config.Config
	log *zap.Logger

	Camera   *camera.Perspective
	Controls *camera.OrbitControls
	Lights   lighting.Rig
	Intro    *intro.Sequencer
	Pointer  *interaction.Controller

	params     Params
	background mgl32.Vec3
	normalizer *materials.Normalizer

	sceneTask *assets.Task[*assets.Model]
	envTask   *assets.Task[*assets.Environment]
	scene     *scene.Scene
	player    *animation.Player
	env       *assets.Environment
	loadErr   error
	logged    int // last progress decile logged
}

// NewSession builds a session from cfg. Nothing is loaded yet.
func NewSession(cfg *config.Config, opts Options) (*Session, error) {
	bg, err := config.ParseHexColor(cfg.Render.Background)
	if err != nil {
		return nil, fmt.Errorf("render.background: %w", err)
	}

	cam := camera.NewPerspective(cfg.Camera.FOV, 1, cfg.Camera.Near, cfg.Camera.Far)
	cam.SetViewport(cfg.Window.Width, cfg.Window.Height)
	cam.LookAt(mgl32.Vec3{0, 0, cfg.Camera.MinDistance}, mgl32.Vec3{})

	s := &Session{
		cfg:        cfg,
		log:        logger.Named("viewer"),
		Camera:     cam,
		Controls:   camera.NewOrbitControls(cam, cfg.Camera.MinDistance, cfg.Camera.MaxDistance, cfg.Camera.Damping),
		Lights:     lighting.DefaultRig(cfg.Render.KeyLight, cfg.Render.AmbientLight, cfg.Render.ShadowMapSize),
		background: bg,
		normalizer: materials.NewNormalizer(opts.MaxAnisotropy),
		Intro: intro.New(intro.Options{
			RotationDuration: cfg.Intro.RotationDuration,
			HandoffDelay:     cfg.Intro.HandoffDelay,
			Now:              opts.Now,
		}),
	}
	s.params = Params{
		Exposure:     cfg.Render.Exposure,
		KeyLight:     cfg.Render.KeyLight,
		AmbientLight: cfg.Render.AmbientLight,
		Reflection:   cfg.Render.Reflection,
	}
	s.Pointer = interaction.NewController(cam, s.Controls, s.interactive)
	return s, nil
}

func (s *Session) interactive() bool {
	return s.scene != nil && s.Intro.State() == intro.Interactive
}

// Load starts fetching the scene and environment named in the config.
func (s *Session) Load(ctx context.Context, l Loader) {
	s.log.Info("loading assets",
		zap.String("scene", s.cfg.Assets.Scene),
		zap.String("environment", s.cfg.Assets.Environment))
	s.envTask = l.Environment(ctx, s.cfg.Assets.Environment)
	s.sceneTask = l.Scene(ctx, s.cfg.Assets.Scene)
}

// Update advances one frame.
func (s *Session) Update(dt time.Duration) {
	s.poll()
	s.Controls.Update()
	s.Intro.Update(dt)
}

func (s *Session) poll() {
	if s.envTask != nil && s.envTask.Finished() {
		env, err := s.envTask.Result()
		s.envTask = nil
		if err != nil {
			s.log.Error("environment load failed, using flat background", zap.Error(err))
		} else {
			s.env = env
		}
	}

	if s.sceneTask == nil {
		return
	}
	if !s.sceneTask.Finished() {
		if pct, ok := s.sceneTask.Percent(); ok && pct/10 > s.logged {
			s.logged = pct / 10
			s.log.Info("scene loading", zap.Int("percent", pct))
		}
		return
	}

	model, err := s.sceneTask.Result()
	s.sceneTask = nil
	if err != nil {
		s.loadErr = err
		s.log.Error("scene load failed", zap.Error(err))
		return
	}
	s.install(model)
}

// install prepares a freshly decoded model for viewing.
func (s *Session) install(model *assets.Model) {
	s.normalizer.Run(model.Scene)
	s.scene = model.Scene
	s.scene.CenterAtOrigin()

	size := s.scene.Bounds().Size()
	d := camera.FitDistance(size, s.Camera.FOV, s.cfg.Camera.FitScale)
	s.Camera.LookAt(mgl32.Vec3{0, 0, d}, mgl32.Vec3{})
	s.Controls.Sync()

	s.player = animation.NewPlayer(model.Clips)
	s.Intro.Attach(cameraRig{cam: s.Camera, controls: s.Controls}, s.player)
	s.Pointer.Attach(s.scene)

	s.log.Info("scene ready",
		zap.Int("meshes", len(s.scene.Meshes())),
		zap.Int("clips", len(model.Clips)),
		zap.Float32("camera_distance", s.Controls.Distance))

	if s.cfg.Intro.AutoStart {
		s.StartRotationAndAnimation()
	}
}

// StartAnimation plays the baked clips without the orbit.
func (s *Session) StartAnimation(autoPlay bool) bool {
	return s.Intro.StartAnimation(autoPlay)
}

// StartCameraRotation behaves like StartRotationAndAnimation.
func (s *Session) StartCameraRotation() bool {
	return s.Intro.StartCameraRotation()
}

// StartRotationAndAnimation runs the orbit followed by the clips.
func (s *Session) StartRotationAndAnimation() bool {
	return s.Intro.StartRotationAndAnimation()
}

// Resize adapts the projection to a new viewport.
func (s *Session) Resize(width, height int) {
	s.Camera.SetViewport(width, height)
}

// Scene returns the loaded scene, or nil.
func (s *Session) Scene() *scene.Scene { return s.scene }

// Environment returns the loaded environment map, or nil.
func (s *Session) Environment() *assets.Environment { return s.env }

// Background is the clear color used when no environment is loaded.
func (s *Session) Background() mgl32.Vec3 { return s.background }

// Params returns the current slider values.
func (s *Session) Params() Params { return s.params }

// SetParam updates one slider value and applies it.
func (s *Session) SetParam(p Param, v float32) {
	s.params.set(p, v)
	switch p {
	case KeyLight:
		s.Lights.Key.Intensity = s.params.KeyLight
	case AmbientLight:
		s.Lights.Ambient.Intensity = s.params.AmbientLight
	case Reflection:
		s.applyReflection()
	}
}

// applyReflection sets the environment intensity of every material,
// including originals parked behind a highlight.
func (s *Session) applyReflection() {
	if s.scene == nil {
		return
	}
	v := s.params.Reflection
	set := func(m *scene.Material) {
		if m != nil && m.Kind != scene.KindBasic {
			m.EnvMapIntensity = scene.Float(v)
		}
	}
	for _, n := range s.scene.Meshes() {
		for _, m := range n.Materials() {
			set(m)
		}
	}
	s.Pointer.Highlighter().RangeOriginals(set)
}

// SaveSettings stores the slider values in the user config file.
func (s *Session) SaveSettings() error {
	s.cfg.Render.Exposure = s.params.Exposure
	s.cfg.Render.KeyLight = s.params.KeyLight
	s.cfg.Render.AmbientLight = s.params.AmbientLight
	s.cfg.Render.Reflection = s.params.Reflection
	if err := s.cfg.Save(); err != nil {
		return err
	}
	s.log.Info("settings saved")
	return nil
}

// PlayButton reports whether the play control is shown and clickable.
func (s *Session) PlayButton() (visible, enabled bool) {
	if s.Intro.State() != intro.Idle {
		return false, false
	}
	return true, s.player != nil && s.player.HasClips()
}

// LoadError returns the scene load failure, if any.
func (s *Session) LoadError() error { return s.loadErr }

// Loading reports whether the loader overlay should be shown and its text.
func (s *Session) Loading() (text string, visible bool) {
	if s.scene != nil || s.loadErr != nil {
		return "", false
	}
	if s.sceneTask != nil {
		if pct, ok := s.sceneTask.Percent(); ok {
			return fmt.Sprintf("Loading 3D Model... %d%%", pct), true
		}
	}
	return "Loading 3D Model...", true
}

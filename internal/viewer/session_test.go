package viewer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Faultbox/showroom/internal/animation"
	"github.com/Faultbox/showroom/internal/assets"
	"github.com/Faultbox/showroom/internal/config"
	"github.com/Faultbox/showroom/internal/intro"
	"github.com/Faultbox/showroom/internal/scene"
)

type fakeClock struct{ now time.Time }

func (c *fakeClock) Now() time.Time          { return c.now }
func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

type fakeLoader struct {
	model    *assets.Model
	sceneErr error
	envErr   error

	sceneTask *assets.Task[*assets.Model]
	envTask   *assets.Task[*assets.Environment]
}

func (l *fakeLoader) Scene(ctx context.Context, _ string) *assets.Task[*assets.Model] {
	l.sceneTask = assets.Run(ctx, func(context.Context, assets.ProgressFunc) (*assets.Model, error) {
		return l.model, l.sceneErr
	})
	return l.sceneTask
}

func (l *fakeLoader) Environment(ctx context.Context, _ string) *assets.Task[*assets.Environment] {
	l.envTask = assets.Run(ctx, func(context.Context, assets.ProgressFunc) (*assets.Environment, error) {
		if l.envErr != nil {
			return nil, l.envErr
		}
		return &assets.Environment{Width: 1, Height: 1, Pixels: []float32{1, 1, 1}}, nil
	})
	return l.envTask
}

func (l *fakeLoader) wait() {
	<-l.sceneTask.Done()
	<-l.envTask.Done()
}

func box(name string, center mgl32.Vec3) *scene.Node {
	geo := scene.NewGeometry(
		[]mgl32.Vec3{{-1, -1, 0}, {1, -1, 0}, {1, 1, 0}, {-1, 1, 0}},
		nil, nil, []uint32{0, 1, 2, 0, 2, 3})
	n := scene.NewNode(name)
	n.Position = center
	n.Primitives = []*scene.Primitive{{Geometry: geo, Material: scene.NewMaterial(name, scene.KindStandard)}}
	return n
}

func testModel(clips bool) *assets.Model {
	root := scene.NewNode("model")
	body := box("Body", mgl32.Vec3{10, 0, 0})
	root.AddChild(body)
	m := &assets.Model{Scene: scene.New(root)}
	if clips {
		m.Clips = []*animation.Clip{animation.NewClip("spin", []*animation.Channel{{
			Node:   body,
			Path:   animation.Translation,
			Times:  []float32{0, 1},
			Values: []float32{10, 0, 0, 10, 1, 0},
		}})}
	}
	return m
}

func newTestSession(t *testing.T, autoStart bool) (*Session, *fakeClock) {
	t.Helper()
	cfg := config.Default()
	cfg.Intro.AutoStart = autoStart
	clock := &fakeClock{now: time.Unix(1000, 0)}
	s, err := NewSession(cfg, Options{MaxAnisotropy: 8, Now: clock.Now})
	require.NoError(t, err)
	return s, clock
}

func load(t *testing.T, s *Session, l *fakeLoader) {
	t.Helper()
	s.Load(context.Background(), l)
	l.wait()
	s.Update(0)
}

func TestZeroClipSessionEndToEnd(t *testing.T) {
	s, clock := newTestSession(t, false)

	text, visible := s.Loading()
	assert.True(t, visible)
	assert.Equal(t, "Loading 3D Model...", text)

	load(t, s, &fakeLoader{model: testModel(false)})
	require.NotNil(t, s.Scene())
	_, visible = s.Loading()
	assert.False(t, visible)

	shown, enabled := s.PlayButton()
	assert.True(t, shown)
	assert.False(t, enabled, "no clips means nothing to play")
	assert.False(t, s.StartAnimation(true))
	assert.Equal(t, intro.Idle, s.Intro.State())

	require.True(t, s.StartRotationAndAnimation())
	assert.False(t, s.Controls.Enabled())
	shown, _ = s.PlayButton()
	assert.False(t, shown)

	ref, ok := s.Intro.Reference()
	require.True(t, ok)

	clock.Advance(3500 * time.Millisecond)
	s.Update(16 * time.Millisecond)
	assert.Equal(t, intro.Rotating, s.Intro.State())
	assert.InDelta(t, ref.Position[1], s.Camera.Position[1], 1e-4)
	assert.Equal(t, mgl32.Vec3{}, s.Camera.Target)

	clock.Advance(3600 * time.Millisecond)
	s.Update(16 * time.Millisecond)
	clock.Advance(100 * time.Millisecond)
	s.Update(16 * time.Millisecond)

	assert.Equal(t, intro.Interactive, s.Intro.State())
	assert.True(t, s.Controls.Enabled())
}

func TestSceneIsCenteredAndFramed(t *testing.T) {
	s, _ := newTestSession(t, false)
	load(t, s, &fakeLoader{model: testModel(false)})

	c := s.Scene().Bounds().Center()
	assert.True(t, c.ApproxEqualThreshold(mgl32.Vec3{}, 1e-5), "center %v", c)
	assert.Equal(t, mgl32.Vec3{}, s.Camera.Target)
	assert.InDelta(t, 0, s.Camera.Position[0], 1e-4)
	assert.InDelta(t, 0, s.Camera.Position[1], 1e-4)
	// A 2 unit model frames closer than the minimum distance and is clamped.
	assert.InDelta(t, 5, s.Camera.Position[2], 1e-4)
}

func TestAutoStartWithClips(t *testing.T) {
	s, clock := newTestSession(t, true)
	load(t, s, &fakeLoader{model: testModel(true)})
	assert.Equal(t, intro.Rotating, s.Intro.State())

	clock.Advance(7200 * time.Millisecond)
	s.Update(16 * time.Millisecond)
	assert.Equal(t, intro.Rotating, s.Intro.State(), "handoff delay not yet elapsed")
	clock.Advance(200 * time.Millisecond)
	s.Update(16 * time.Millisecond)
	assert.Equal(t, intro.PlayingClip, s.Intro.State())

	s.Update(2 * time.Second)
	assert.Equal(t, intro.Interactive, s.Intro.State())
}

func TestPlayButtonWithClips(t *testing.T) {
	s, _ := newTestSession(t, false)
	load(t, s, &fakeLoader{model: testModel(true)})

	shown, enabled := s.PlayButton()
	assert.True(t, shown)
	assert.True(t, enabled)

	require.True(t, s.StartAnimation(false))
	assert.Equal(t, intro.PlayingClip, s.Intro.State())
	shown, _ = s.PlayButton()
	assert.False(t, shown)
}

func TestPointerInertUntilInteractive(t *testing.T) {
	s, clock := newTestSession(t, true)
	load(t, s, &fakeLoader{model: testModel(false)})

	// Center of the viewport looks straight at the model.
	s.Pointer.PointerDown(640, 360, 1280, 720)
	assert.Nil(t, s.Pointer.Selected())

	clock.Advance(8 * time.Second)
	s.Update(0)
	clock.Advance(200 * time.Millisecond)
	s.Update(0)
	require.Equal(t, intro.Interactive, s.Intro.State())

	s.Pointer.PointerDown(640, 360, 1280, 720)
	require.NotNil(t, s.Pointer.Selected())
	assert.Equal(t, "Body", s.Pointer.Selected().Name)
	assert.False(t, s.Controls.Enabled())
	s.Pointer.PointerUp()
	assert.True(t, s.Controls.Enabled())
}

func TestOrbitDragAfterEmptyPress(t *testing.T) {
	s, clock := newTestSession(t, true)
	load(t, s, &fakeLoader{model: testModel(false)})
	clock.Advance(8 * time.Second)
	s.Update(0)
	clock.Advance(200 * time.Millisecond)
	s.Update(0)
	require.Equal(t, intro.Interactive, s.Intro.State())

	// The top-left corner misses the model.
	s.Pointer.PointerDown(1, 1, 1280, 720)
	assert.Nil(t, s.Pointer.Selected())
	require.True(t, s.Controls.Enabled())

	yaw := s.Controls.RotationY
	for range 30 {
		s.Controls.HandleDrag(10, 0)
		s.Update(16 * time.Millisecond)
	}
	assert.Less(t, s.Controls.RotationY, yaw-0.1, "drag should orbit the camera")

	s.Pointer.PointerUp()
	assert.True(t, s.Controls.Enabled())
}

func TestSceneLoadFailure(t *testing.T) {
	s, _ := newTestSession(t, true)
	load(t, s, &fakeLoader{sceneErr: assets.ErrNotFound})

	assert.ErrorIs(t, s.LoadError(), assets.ErrNotFound)
	_, visible := s.Loading()
	assert.False(t, visible)
	assert.Nil(t, s.Scene())
	assert.False(t, s.StartRotationAndAnimation())
}

func TestEnvironmentFailureFallsBack(t *testing.T) {
	s, _ := newTestSession(t, false)
	load(t, s, &fakeLoader{model: testModel(false), envErr: errors.New("offline")})

	assert.Nil(t, s.Environment())
	assert.NotNil(t, s.Scene())
	assert.InDelta(t, 0xf0/255.0, s.Background()[0], 1e-6)
}

func TestSetParamClampsAndApplies(t *testing.T) {
	s, _ := newTestSession(t, false)
	load(t, s, &fakeLoader{model: testModel(false)})

	s.SetParam(KeyLight, 99)
	assert.Equal(t, KeyLight.Info().Max, s.Params().KeyLight)
	assert.Equal(t, KeyLight.Info().Max, s.Lights.Key.Intensity)

	s.SetParam(AmbientLight, 0.5)
	assert.Equal(t, float32(0.5), s.Lights.Ambient.Intensity)

	s.SetParam(Exposure, -1)
	assert.Equal(t, float32(0), s.Params().Exposure)

	s.SetParam(Reflection, 2.5)
	for _, n := range s.Scene().Meshes() {
		for _, m := range n.Materials() {
			assert.InDelta(t, 2.5, scene.Value(m.EnvMapIntensity, 0), 1e-6)
		}
	}
}

func TestSaveSettings(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("HOME", dir)

	s, _ := newTestSession(t, false)
	s.SetParam(Exposure, 2)
	require.NoError(t, s.SaveSettings())

	path := filepath.Join(config.ConfigDir(), "config.yaml")
	_, err := os.Stat(path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	loaded := config.Default()
	require.NoError(t, yaml.Unmarshal(data, loaded))
	assert.Equal(t, float32(2), loaded.Render.Exposure)
}

func TestResizeUpdatesAspect(t *testing.T) {
	s, _ := newTestSession(t, false)
	s.Resize(1000, 500)
	assert.Equal(t, float32(2), s.Camera.Aspect)
}

package animation

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/showroom/internal/scene"
)

// LoopMode controls what happens when an action reaches the clip end.
type LoopMode int

const (
	LoopRepeat LoopMode = iota
	LoopOnce
)

// Action is the playback state of one clip inside a mixer.
type Action struct {
	clip    *Clip
	time    float32
	running bool
	loop    LoopMode
	clamp   bool
}

// Clip returns the clip this action plays.
func (a *Action) Clip() *Clip { return a.clip }

// Time returns the local playback time in seconds.
func (a *Action) Time() float32 { return a.time }

// Reset rewinds to the start without changing the running flag.
func (a *Action) Reset() *Action {
	a.time = 0
	return a
}

// SetLoop sets the loop mode.
func (a *Action) SetLoop(mode LoopMode) *Action {
	a.loop = mode
	return a
}

// ClampWhenFinished makes a once-looped action hold its final frame.
func (a *Action) ClampWhenFinished(clamp bool) *Action {
	a.clamp = clamp
	return a
}

// Play starts or resumes playback.
func (a *Action) Play() *Action {
	a.running = true
	return a
}

// Stop halts playback and rewinds.
func (a *Action) Stop() *Action {
	a.running = false
	a.time = 0
	return a
}

// IsRunning reports whether the action is still advancing.
func (a *Action) IsRunning() bool { return a.running }

type restPose struct {
	position mgl32.Vec3
	rotation mgl32.Quat
	scale    mgl32.Vec3
}

// Mixer advances actions and writes their poses.
type Mixer struct {
	actions []*Action
	byClip  map[*Clip]*Action
	rest    map[*scene.Node]restPose
}

// NewMixer creates an empty mixer.
func NewMixer() *Mixer {
	return &Mixer{
		byClip: make(map[*Clip]*Action),
		rest:   make(map[*scene.Node]restPose),
	}
}

// ClipAction returns the action for clip, creating it on first use.
func (m *Mixer) ClipAction(clip *Clip) *Action {
	if a, ok := m.byClip[clip]; ok {
		return a
	}
	for _, ch := range clip.Channels {
		if ch.Node == nil {
			continue
		}
		if _, ok := m.rest[ch.Node]; !ok {
			m.rest[ch.Node] = restPose{ch.Node.Position, ch.Node.Rotation, ch.Node.Scale}
		}
	}
	a := &Action{clip: clip}
	m.actions = append(m.actions, a)
	m.byClip[clip] = a
	return a
}

// Running reports whether any action is still advancing.
func (m *Mixer) Running() bool {
	for _, a := range m.actions {
		if a.running {
			return true
		}
	}
	return false
}

// Update advances every running action by dt seconds and applies poses.
func (m *Mixer) Update(dt float32) {
	for _, a := range m.actions {
		if !a.running {
			continue
		}
		a.time += dt
		d := a.clip.Duration

		switch {
		case d <= 0:
			a.clip.Apply(0)
			if a.loop == LoopOnce {
				a.finish(m)
			}
		case a.loop == LoopOnce && a.time >= d:
			a.time = d
			a.finish(m)
		case a.loop == LoopRepeat && a.time >= d:
			a.time = float32(math.Mod(float64(a.time), float64(d)))
			a.clip.Apply(a.time)
		default:
			a.clip.Apply(a.time)
		}
	}
}

func (a *Action) finish(m *Mixer) {
	a.running = false
	if a.clamp {
		a.clip.Apply(a.clip.Duration)
		return
	}
	for _, ch := range a.clip.Channels {
		if pose, ok := m.rest[ch.Node]; ok {
			ch.Node.Position, ch.Node.Rotation, ch.Node.Scale = pose.position, pose.rotation, pose.scale
		}
	}
}

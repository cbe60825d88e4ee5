// Package intro drives the one-shot opening sequence: a full camera orbit
// around the model followed by a single pass of its baked animation, after
// which the viewer becomes interactive.
package intro

import (
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/showroom/internal/logger"
)

// State is the position of the sequence.
type State int

const (
	Idle State = iota
	Rotating
	PlayingClip
	Interactive
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Rotating:
		return "Rotating"
	case PlayingClip:
		return "PlayingClip"
	case Interactive:
		return "Interactive"
	default:
		return "Unknown"
	}
}

// CameraRig is the camera and orbit controls the sequence steers.
type CameraRig interface {
	Pose() Pose
	SetPose(Pose)
	SetControlsEnabled(bool)
}

// ClipPlayer plays the scene's baked animation.
type ClipPlayer interface {
	HasClips() bool
	PlayAll() int
	Running() bool
	Advance(dt time.Duration)
}

// Options configures timings and the time source.
type Options struct {
	RotationDuration time.Duration
	HandoffDelay     time.Duration
	Now              func() time.Time
}

// DefaultOptions returns the stock 7 s orbit with a 100 ms handoff.
func DefaultOptions() Options {
	return Options{
		RotationDuration: 7 * time.Second,
		HandoffDelay:     100 * time.Millisecond,
		Now:              time.Now,
	}
}

// Sequencer is the intro state machine. It is not safe for concurrent use;
// the frame loop owns it.
type Sequencer struct {
	opts  Options
	state State

	rig   CameraRig
	clips ClipPlayer

	reference    Pose
	hasReference bool

	rotationStart time.Time
	progress      float32
	rotationDone  bool
	doneAt        time.Time

	listeners []func(from, to State)
}

// New creates an idle sequencer. Missing options fall back to defaults.
func New(opts Options) *Sequencer {
	def := DefaultOptions()
	if opts.RotationDuration <= 0 {
		opts.RotationDuration = def.RotationDuration
	}
	if opts.HandoffDelay < 0 {
		opts.HandoffDelay = 0
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	return &Sequencer{opts: opts}
}

// Attach supplies the collaborators once the scene has loaded.
// A nil clips is treated as a scene without animation.
func (s *Sequencer) Attach(rig CameraRig, clips ClipPlayer) {
	if clips == nil {
		clips = noClips{}
	}
	s.rig = rig
	s.clips = clips
}

type noClips struct{}

func (noClips) HasClips() bool        { return false }
func (noClips) PlayAll() int          { return 0 }
func (noClips) Running() bool         { return false }
func (noClips) Advance(time.Duration) {}

// Loaded reports whether Attach has been called.
func (s *Sequencer) Loaded() bool {
	return s.rig != nil
}

// State returns the current state.
func (s *Sequencer) State() State {
	return s.state
}

// Progress returns linear rotation progress in [0, 1].
func (s *Sequencer) Progress() float32 {
	return s.progress
}

// Reference returns the recorded orbit reference pose.
func (s *Sequencer) Reference() (Pose, bool) {
	return s.reference, s.hasReference
}

// RecordReference stores p as the orbit reference unless one already exists.
func (s *Sequencer) RecordReference(p Pose) {
	if s.hasReference {
		return
	}
	s.reference = p
	s.hasReference = true
}

// OnTransition registers fn to run after every state change.
func (s *Sequencer) OnTransition(fn func(from, to State)) {
	s.listeners = append(s.listeners, fn)
}

// StartRotationAndAnimation begins the orbit. It only acts from Idle with a
// loaded scene and reports whether the sequence started.
func (s *Sequencer) StartRotationAndAnimation() bool {
	log := logger.Named("intro")
	if !s.Loaded() {
		log.Info("start ignored: model not loaded yet")
		return false
	}
	if s.state != Idle {
		log.Debug("start ignored", zap.Stringer("state", s.state))
		return false
	}
	if !s.clips.HasClips() {
		log.Info("no animation found, starting rotation only")
	}

	s.RecordReference(s.rig.Pose())
	s.rotationStart = s.opts.Now()
	s.progress = 0
	s.rotationDone = false
	s.rig.SetControlsEnabled(false)
	s.transition(Rotating)
	return true
}

// StartCameraRotation is kept as an entry point for existing callers and
// behaves exactly like StartRotationAndAnimation.
func (s *Sequencer) StartCameraRotation() bool {
	return s.StartRotationAndAnimation()
}

// StartAnimation plays the baked clips without the orbit. autoPlay only
// labels the trigger in logs. With no clips it does nothing.
func (s *Sequencer) StartAnimation(autoPlay bool) bool {
	log := logger.Named("intro")
	if !s.Loaded() || !s.clips.HasClips() {
		log.Info("no animation found")
		return false
	}
	if s.state != Idle {
		log.Debug("animation start ignored", zap.Stringer("state", s.state))
		return false
	}
	s.playClips(autoPlay)
	return true
}

func (s *Sequencer) playClips(autoPlay bool) {
	n := s.clips.PlayAll()
	logger.Named("intro").Info("animation started", zap.Int("clips", n), zap.Bool("auto_play", autoPlay))
	s.transition(PlayingClip)
}

// Update advances the sequence. dt is the frame delta used for the clip clock;
// rotation timing uses the wall clock.
func (s *Sequencer) Update(dt time.Duration) {
	switch s.state {
	case Rotating:
		s.updateRotation()
	case PlayingClip:
		s.clips.Advance(dt)
		if !s.clips.Running() {
			logger.Named("intro").Info("animation finished, dragging enabled")
			s.enterInteractive()
		}
	}
}

func (s *Sequencer) updateRotation() {
	now := s.opts.Now()

	if !s.rotationDone {
		elapsed := now.Sub(s.rotationStart)
		s.progress = min(float32(elapsed.Seconds()/s.opts.RotationDuration.Seconds()), 1)
		if s.progress < 0 {
			s.progress = 0
		}
		s.rig.SetPose(OrbitPose(s.reference, EaseInOutCubic(s.progress)))
		if s.progress < 1 {
			return
		}
		s.rotationDone = true
		s.doneAt = now
	}

	if now.Sub(s.doneAt) < s.opts.HandoffDelay {
		return
	}
	if s.clips.HasClips() {
		s.playClips(true)
		return
	}
	s.enterInteractive()
}

func (s *Sequencer) enterInteractive() {
	s.rig.SetControlsEnabled(true)
	s.transition(Interactive)
}

func (s *Sequencer) transition(to State) {
	from := s.state
	s.state = to
	logger.Named("intro").Info("intro state", zap.Stringer("from", from), zap.Stringer("to", to))
	for _, fn := range s.listeners {
		fn(from, to)
	}
}

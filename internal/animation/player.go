package animation

import "time"

// Player plays every clip of a scene once, the way the intro hands off to
// baked animation.
type Player struct {
	mixer *Mixer
	clips []*Clip
}

// NewPlayer wraps clips with a fresh mixer.
func NewPlayer(clips []*Clip) *Player {
	return &Player{mixer: NewMixer(), clips: clips}
}

// HasClips reports whether there is anything to play.
func (p *Player) HasClips() bool {
	return len(p.clips) > 0
}

// Clips returns the clips in load order.
func (p *Player) Clips() []*Clip {
	return p.clips
}

// PlayAll restarts every clip as a single pass that holds its last frame.
func (p *Player) PlayAll() int {
	for _, c := range p.clips {
		p.mixer.ClipAction(c).
			Reset().
			SetLoop(LoopOnce).
			ClampWhenFinished(true).
			Play()
	}
	return len(p.clips)
}

// Running reports whether any clip is still playing.
func (p *Player) Running() bool {
	return p.mixer.Running()
}

// Advance moves the animation clock forward.
func (p *Player) Advance(dt time.Duration) {
	p.mixer.Update(float32(dt.Seconds()))
}

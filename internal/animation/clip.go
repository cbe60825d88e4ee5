// Package animation samples keyframed node transforms and plays them through
// a mixer of per-clip actions.
package animation

import (
	"sort"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/showroom/internal/scene"
)

// Path is the node property a channel drives.
type Path int

const (
	Translation Path = iota
	Rotation
	Scale
)

// Interpolation selects how values between keyframes are computed.
type Interpolation int

const (
	Linear Interpolation = iota
	Step
	CubicSpline
)

// Channel animates one property of one node.
// Values holds 3 floats per key for translation/scale and 4 (x, y, z, w)
// for rotation. CubicSpline keys store in-tangent, value, out-tangent.
type Channel struct {
	Node          *scene.Node
	Path          Path
	Interpolation Interpolation
	Times         []float32
	Values        []float32
}

// Clip is a named set of channels.
type Clip struct {
	Name     string
	Duration float32 // seconds
	Channels []*Channel
}

// NewClip builds a clip whose duration is the last key time of any channel.
func NewClip(name string, channels []*Channel) *Clip {
	c := &Clip{Name: name, Channels: channels}
	for _, ch := range channels {
		if n := len(ch.Times); n > 0 && ch.Times[n-1] > c.Duration {
			c.Duration = ch.Times[n-1]
		}
	}
	return c
}

// Apply writes the pose at time t to the channel targets.
func (c *Clip) Apply(t float32) {
	for _, ch := range c.Channels {
		ch.Apply(t)
	}
}

func (ch *Channel) width() int {
	if ch.Path == Rotation {
		return 4
	}
	return 3
}

// Apply writes the sampled value at time t to the node.
func (ch *Channel) Apply(t float32) {
	if ch.Node == nil || len(ch.Times) == 0 {
		return
	}
	v := ch.Sample(t)
	switch ch.Path {
	case Translation:
		ch.Node.Position = mgl32.Vec3{v[0], v[1], v[2]}
	case Scale:
		ch.Node.Scale = mgl32.Vec3{v[0], v[1], v[2]}
	case Rotation:
		ch.Node.Rotation = mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}.Normalize()
	}
}

// Sample returns the channel value at time t, clamped to the key range.
func (ch *Channel) Sample(t float32) []float32 {
	w := ch.width()
	n := len(ch.Times)

	if t <= ch.Times[0] {
		return ch.keyValue(0, w)
	}
	if t >= ch.Times[n-1] {
		return ch.keyValue(n-1, w)
	}

	// Index of the first key strictly after t.
	next := sort.Search(n, func(i int) bool { return ch.Times[i] > t })
	prev := next - 1
	t0, t1 := ch.Times[prev], ch.Times[next]
	span := t1 - t0
	u := float32(0)
	if span > 0 {
		u = (t - t0) / span
	}

	switch ch.Interpolation {
	case Step:
		return ch.keyValue(prev, w)
	case CubicSpline:
		return ch.hermite(prev, next, u, span, w)
	default:
		a, b := ch.keyValue(prev, w), ch.keyValue(next, w)
		if ch.Path == Rotation {
			qa := mgl32.Quat{W: a[3], V: mgl32.Vec3{a[0], a[1], a[2]}}
			qb := mgl32.Quat{W: b[3], V: mgl32.Vec3{b[0], b[1], b[2]}}
			q := mgl32.QuatSlerp(qa, qb, u)
			return []float32{q.V[0], q.V[1], q.V[2], q.W}
		}
		out := make([]float32, w)
		for i := range out {
			out[i] = a[i] + (b[i]-a[i])*u
		}
		return out
	}
}

// keyValue returns the value of key i, skipping cubic tangents.
func (ch *Channel) keyValue(i, w int) []float32 {
	if ch.Interpolation == CubicSpline {
		base := i*3*w + w
		return ch.Values[base : base+w]
	}
	return ch.Values[i*w : i*w+w]
}

func (ch *Channel) hermite(prev, next int, u, span float32, w int) []float32 {
	p0 := ch.Values[prev*3*w+w : prev*3*w+2*w]
	m0 := ch.Values[prev*3*w+2*w : prev*3*w+3*w] // out-tangent
	p1 := ch.Values[next*3*w+w : next*3*w+2*w]
	m1 := ch.Values[next*3*w : next*3*w+w] // in-tangent

	u2 := u * u
	u3 := u2 * u
	h00 := 2*u3 - 3*u2 + 1
	h10 := u3 - 2*u2 + u
	h01 := -2*u3 + 3*u2
	h11 := u3 - u2

	out := make([]float32, w)
	for i := range out {
		out[i] = h00*p0[i] + h10*span*m0[i] + h01*p1[i] + h11*span*m1[i]
	}
	if ch.Path == Rotation {
		q := mgl32.Quat{W: out[3], V: mgl32.Vec3{out[0], out[1], out[2]}}.Normalize()
		out = []float32{q.V[0], q.V[1], q.V[2], q.W}
	}
	return out
}

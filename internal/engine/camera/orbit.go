package camera

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/go-gl/mathgl/mgl32"
)

const pitchLimit = math.Pi/2 - 0.01

// OrbitControls orbits a Perspective camera around a target point.
// Rotation and zoom ease toward their goals through critically damped
// springs; panning moves the target immediately.
type OrbitControls struct {
	Camera *Perspective

	// Spherical coordinates of the camera around Camera.Target.
	Distance  float32
	RotationX float32 // pitch, radians
	RotationY float32 // yaw, radians

	MinDistance float32
	MaxDistance float32

	DragSensitivity float32
	ZoomSensitivity float32
	PanSensitivity  float32

	enabled bool
	spring  harmonica.Spring

	goalX, goalY, goalDist float32
	velX, velY, velDist    float64
}

// NewOrbitControls attaches controls to cam. damping follows the usual
// per-frame damping factor convention: 0.05 settles in roughly a second.
func NewOrbitControls(cam *Perspective, minDist, maxDist, damping float32) *OrbitControls {
	o := &OrbitControls{
		Camera:          cam,
		MinDistance:     minDist,
		MaxDistance:     maxDist,
		DragSensitivity: 0.005,
		ZoomSensitivity: 0.1,
		PanSensitivity:  1,
		enabled:         true,
		spring:          harmonica.NewSpring(harmonica.FPS(60), float64(damping)*100, 1.0),
	}
	o.Sync()
	return o
}

// Enabled reports whether user input is applied.
func (o *OrbitControls) Enabled() bool { return o.enabled }

// SetEnabled toggles user input. Enabling re-reads the camera so a pose set
// while disabled is not overwritten by stale goals.
func (o *OrbitControls) SetEnabled(v bool) {
	if v && !o.enabled {
		o.Sync()
	}
	o.enabled = v
}

// Sync derives the spherical state from the camera and stops any motion.
// The distance is clamped to the configured range and the camera is moved
// accordingly.
func (o *OrbitControls) Sync() {
	off := o.Camera.Position.Sub(o.Camera.Target)
	dist := off.Len()
	if dist > 0 {
		o.RotationX = float32(math.Asin(float64(clamp(off[1]/dist, -1, 1))))
		o.RotationY = float32(math.Atan2(float64(off[0]), float64(off[2])))
	}
	o.Distance = o.clampDistance(dist)
	o.goalX, o.goalY, o.goalDist = o.RotationX, o.RotationY, o.Distance
	o.velX, o.velY, o.velDist = 0, 0, 0
	o.apply()
}

// HandleDrag queues a rotation for a pointer delta in pixels.
func (o *OrbitControls) HandleDrag(deltaX, deltaY float32) {
	if !o.enabled {
		return
	}
	o.goalY -= deltaX * o.DragSensitivity
	o.goalX = clamp(o.goalX+deltaY*o.DragSensitivity, -pitchLimit, pitchLimit)
}

// HandleZoom queues a dolly for a wheel delta; positive zooms in.
func (o *OrbitControls) HandleZoom(delta float32) {
	if !o.enabled {
		return
	}
	o.goalDist = o.clampDistance(o.goalDist - delta*o.goalDist*o.ZoomSensitivity)
}

// HandlePan shifts the target in the view plane for a pointer delta in
// pixels on a viewport of the given height.
func (o *OrbitControls) HandlePan(deltaX, deltaY, viewportHeight float32) {
	if !o.enabled || viewportHeight <= 0 {
		return
	}
	fwd := o.Camera.Direction()
	right := fwd.Cross(o.Camera.Up)
	if right.Len() == 0 {
		return
	}
	right = right.Normalize()
	up := right.Cross(fwd).Normalize()

	// World units per pixel at the target depth.
	scale := 2 * o.Distance * float32(math.Tan(float64(mgl32.DegToRad(o.Camera.FOV))/2)) / viewportHeight
	shift := right.Mul(-deltaX * scale * o.PanSensitivity).Add(up.Mul(deltaY * scale * o.PanSensitivity))
	o.Camera.Target = o.Camera.Target.Add(shift)
	o.apply()
}

// Update advances the damping by one frame.
func (o *OrbitControls) Update() {
	if !o.enabled {
		return
	}
	var x, y, d float64
	x, o.velX = o.spring.Update(float64(o.RotationX), o.velX, float64(o.goalX))
	y, o.velY = o.spring.Update(float64(o.RotationY), o.velY, float64(o.goalY))
	d, o.velDist = o.spring.Update(float64(o.Distance), o.velDist, float64(o.goalDist))
	o.RotationX = float32(x)
	o.RotationY = float32(y)
	o.Distance = o.clampDistance(float32(d))
	o.apply()
}

// Settled reports whether no eased motion is pending.
func (o *OrbitControls) Settled() bool {
	const eps = 1e-4
	return abs(o.goalX-o.RotationX) < eps && abs(o.goalY-o.RotationY) < eps &&
		abs(o.goalDist-o.Distance) < eps
}

func (o *OrbitControls) apply() {
	cx := float32(math.Cos(float64(o.RotationX)))
	offset := mgl32.Vec3{
		o.Distance * cx * float32(math.Sin(float64(o.RotationY))),
		o.Distance * float32(math.Sin(float64(o.RotationX))),
		o.Distance * cx * float32(math.Cos(float64(o.RotationY))),
	}
	o.Camera.Position = o.Camera.Target.Add(offset)
}

func (o *OrbitControls) clampDistance(d float32) float32 {
	if o.MaxDistance > 0 {
		d = min(d, o.MaxDistance)
	}
	return max(d, o.MinDistance)
}

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

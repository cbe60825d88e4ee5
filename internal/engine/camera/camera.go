// Package camera provides the perspective camera and orbit controls.
package camera

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/showroom/internal/engine/picking"
)

// Perspective is a look-at perspective camera.
type Perspective struct {
	FOV    float32 // vertical, degrees
	Aspect float32
	Near   float32
	Far    float32

	Position mgl32.Vec3
	Target   mgl32.Vec3
	Up       mgl32.Vec3
}

// NewPerspective creates a camera at the origin looking down -Z.
func NewPerspective(fov, aspect, near, far float32) *Perspective {
	return &Perspective{
		FOV:    fov,
		Aspect: aspect,
		Near:   near,
		Far:    far,
		Target: mgl32.Vec3{0, 0, -1},
		Up:     mgl32.Vec3{0, 1, 0},
	}
}

// SetViewport updates the aspect ratio for a width x height surface.
func (c *Perspective) SetViewport(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	c.Aspect = float32(width) / float32(height)
}

// Projection returns the projection matrix.
func (c *Perspective) Projection() mgl32.Mat4 {
	return mgl32.Perspective(mgl32.DegToRad(c.FOV), c.Aspect, c.Near, c.Far)
}

// View returns the view matrix.
func (c *Perspective) View() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Target, c.Up)
}

// ViewProjection returns projection * view.
func (c *Perspective) ViewProjection() mgl32.Mat4 {
	return c.Projection().Mul4(c.View())
}

// Direction returns the normalized world-space viewing direction.
func (c *Perspective) Direction() mgl32.Vec3 {
	d := c.Target.Sub(c.Position)
	if d.Len() == 0 {
		return mgl32.Vec3{0, 0, -1}
	}
	return d.Normalize()
}

// Ray returns the world ray through pixel (x, y) of a width x height viewport.
func (c *Perspective) Ray(x, y, width, height float32) picking.Ray {
	return picking.ScreenToRay(x, y, width, height, c.ViewProjection().Inv())
}

// LookAt moves the camera to position facing target.
func (c *Perspective) LookAt(position, target mgl32.Vec3) {
	c.Position = position
	c.Target = target
}

// FitDistance returns how far from the center a camera with the given
// vertical FOV should sit so an object of size fits the view, scaled by fit.
func FitDistance(size mgl32.Vec3, fov, fit float32) float32 {
	maxDim := max(size[0], size[1], size[2])
	half := math.Tan(float64(mgl32.DegToRad(fov)) / 2)
	if half == 0 {
		return 0
	}
	d := float32(math.Abs(float64(maxDim) / 2 / half))
	return d * fit * 0.85
}

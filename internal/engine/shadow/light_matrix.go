package shadow

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/Faultbox/showroom/internal/engine/lighting"
	"github.com/Faultbox/showroom/internal/engine/picking"
)

// LightMatrix returns the view-projection of a directional light's shadow
// camera: an orthographic box of the configured extent looking from the
// light position to its target.
func LightMatrix(light lighting.Directional) mgl32.Mat4 {
	p := light.Shadow
	e := p.Extent
	proj := mgl32.Ortho(-e, e, -e, e, p.Near, p.Far)
	view := mgl32.LookAtV(light.Position, light.Target, upFor(light.Direction()))
	return proj.Mul4(view)
}

// FitLightMatrix sizes the shadow box to enclose bounds, for scenes that
// outgrow the fixed extent.
func FitLightMatrix(light lighting.Directional, bounds picking.AABB) mgl32.Mat4 {
	center := bounds.Center()
	radius := Radius(bounds)
	dir := light.Direction()

	distance := radius * 2
	eye := center.Add(dir.Mul(distance))
	view := mgl32.LookAtV(eye, center, upFor(dir))

	half := radius * 1.1
	proj := mgl32.Ortho(-half, half, -half, half, 0.1, distance+half)
	return proj.Mul4(view)
}

// Covers reports whether the fixed shadow box of light encloses bounds.
func Covers(light lighting.Directional, bounds picking.AABB) bool {
	if bounds.IsEmpty() {
		return true
	}
	m := LightMatrix(light)
	box := bounds.Transform(m)
	return box.Min[0] >= -1 && box.Max[0] <= 1 &&
		box.Min[1] >= -1 && box.Max[1] <= 1 &&
		box.Min[2] >= -1 && box.Max[2] <= 1
}

// Radius returns the half-diagonal of b.
func Radius(b picking.AABB) float32 {
	s := b.Size().Mul(0.5)
	return float32(math.Sqrt(float64(s.Dot(s))))
}

// upFor picks an up vector that is not parallel to dir.
func upFor(dir mgl32.Vec3) mgl32.Vec3 {
	if dir[1] > 0.99 || dir[1] < -0.99 {
		return mgl32.Vec3{0, 0, 1}
	}
	return mgl32.Vec3{0, 1, 0}
}

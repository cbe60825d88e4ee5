package intro

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// EaseInOutCubic maps linear progress in [0, 1] to a curve that accelerates
// through the first half and decelerates through the second.
func EaseInOutCubic(t float32) float32 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	f := -2*t + 2
	return 1 - f*f*f/2
}

// Pose is a camera position and the point it looks at.
type Pose struct {
	Position mgl32.Vec3
	Target   mgl32.Vec3
}

// OrbitPose rotates ref about the vertical axis through the origin by
// eased * 2π, keeping its horizontal radius and height, aimed at the origin.
func OrbitPose(ref Pose, eased float32) Pose {
	x, y, z := float64(ref.Position[0]), ref.Position[1], float64(ref.Position[2])
	radius := math.Hypot(x, z)
	initial := math.Atan2(x, z)
	angle := float64(eased)*2*math.Pi + initial

	return Pose{
		Position: mgl32.Vec3{
			float32(math.Sin(angle) * radius),
			y,
			float32(math.Cos(angle) * radius),
		},
	}
}

package viewer

import (
	"github.com/Faultbox/showroom/internal/engine/camera"
	"github.com/Faultbox/showroom/internal/intro"
)

// cameraRig lets the intro steer the camera and its orbit controls.
type cameraRig struct {
	cam      *camera.Perspective
	controls *camera.OrbitControls
}

func (r cameraRig) Pose() intro.Pose {
	return intro.Pose{Position: r.cam.Position, Target: r.cam.Target}
}

func (r cameraRig) SetPose(p intro.Pose) {
	r.cam.LookAt(p.Position, p.Target)
}

func (r cameraRig) SetControlsEnabled(v bool) {
	r.controls.SetEnabled(v)
}

package orientation

import (
	"math"

	"github.com/relabs-tech/camera_motion/internal/motion"
)

// Theta is the canonical 3-axis orientation estimate, in radians, relative
// to the initial reference pose.
type Theta struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

// TiltFromAccel derives absolute pitch and roll from the direction of the
// measured gravity vector. It is history-free:
//
//	roll  = atan2(ay, az)
//	pitch = atan2(ax, sqrt(ay² + az²))
//
// Yaw cannot be observed from gravity alone and is not computed here.
// A zero vector degenerates to zero tilt on both axes.
func TiltFromAccel(a motion.AccelSample) (pitch, roll float64) {
	roll = math.Atan2(a.Y, a.Z)
	pitch = math.Atan2(a.X, math.Sqrt(a.Y*a.Y+a.Z*a.Z))
	return pitch, roll
}

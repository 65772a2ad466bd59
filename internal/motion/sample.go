package motion

// GyroSample is a single angular-velocity measurement in device units,
// stamped with the device arrival time in milliseconds.
type GyroSample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`

	// Timestamp is monotonic per gyro stream, in milliseconds.
	Timestamp float64 `json:"ts_ms"`
}

// AccelSample is a single linear-acceleration measurement in device units.
// The accelerometer stream carries no timestamp; tilt is derived from the
// direction of the measured gravity vector alone.
type AccelSample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Quaternion is a unit rotation quaternion as delivered by pose-capable
// tracking devices.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// PoseSample is a pre-fused 6-DOF transform from a device with its own
// on-board tracking. It needs no fusion on our side and is passed through
// to consumers as-is.
type PoseSample struct {
	Translation [3]float64 `json:"translation"`
	Rotation    Quaternion `json:"rotation"`
}

package motion

import "errors"

// StreamKind identifies which physical stream a frame belongs to. The
// producer demultiplexes frames by kind before handing them to the
// estimator; the estimator itself never inspects stream types.
type StreamKind int

const (
	StreamUnknown StreamKind = iota
	StreamGyro
	StreamAccel
	StreamPose
)

func (k StreamKind) String() string {
	switch k {
	case StreamGyro:
		return "gyro"
	case StreamAccel:
		return "accel"
	case StreamPose:
		return "pose"
	default:
		return "unknown"
	}
}

// Frame is one demultiplexed sample from a source. Exactly the payload
// matching Kind is valid; the other fields are zero.
type Frame struct {
	Kind  StreamKind
	Gyro  GyroSample
	Accel AccelSample
	Pose  PoseSample
}

// GyroFrame wraps a gyro sample as a Frame.
func GyroFrame(s GyroSample) Frame { return Frame{Kind: StreamGyro, Gyro: s} }

// AccelFrame wraps an accelerometer sample as a Frame.
func AccelFrame(s AccelSample) Frame { return Frame{Kind: StreamAccel, Accel: s} }

// PoseFrame wraps a pre-fused pose sample as a Frame.
func PoseFrame(s PoseSample) Frame { return Frame{Kind: StreamPose, Pose: s} }

// Capability describes what a device can deliver: raw IMU streams that
// need fusion, or a pre-fused pose stream that is pure pass-through.
type Capability int

const (
	CapabilityNone Capability = iota
	CapabilityIMU
	CapabilityPose
)

func (c Capability) String() string {
	switch c {
	case CapabilityIMU:
		return "imu"
	case CapabilityPose:
		return "pose"
	default:
		return "none"
	}
}

// Handler receives frames from a running source. It is invoked from the
// source's own goroutines and must not block.
type Handler func(Frame)

// Source is anything that can deliver motion frames over time: a real IMU,
// a serial bridge, a replay, or a mock.
type Source interface {
	// Capability reports which variant this device implements.
	Capability() Capability

	// Start begins delivery and invokes h for every frame until Stop.
	Start(h Handler) error

	// Stop ends delivery and releases the device. No frames are delivered
	// after Stop returns.
	Stop() error
}

// ErrAlreadyStarted is returned by Start on a source that is running.
var ErrAlreadyStarted = errors.New("motion source already started")

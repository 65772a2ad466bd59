package device

import (
	"fmt"
	"time"

	"github.com/relabs-tech/camera_motion/internal/config"
	"github.com/relabs-tech/camera_motion/internal/motion"
)

// FromConfig builds the motion source selected by MOTION_SOURCE.
func FromConfig(cfg *config.Config) (motion.Source, error) {
	switch cfg.MotionSource {
	case "mock":
		return NewMockIMU(cfg.MockGyroRateHz, cfg.MockAccelRateHz), nil
	case "pose_mock":
		return NewMockPose(), nil
	case "nmea":
		return NewNMEASource(cfg.SerialPort, cfg.SerialBaud), nil
	case "mpu9250":
		return NewMPU9250(cfg.IMUSPIDevice, cfg.IMUCSPin,
			time.Duration(cfg.IMUPollIntervalMS)*time.Millisecond), nil
	default:
		return nil, fmt.Errorf("unknown motion source %q", cfg.MotionSource)
	}
}

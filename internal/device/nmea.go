package device

import (
	"fmt"

	nmea "github.com/adrianmo/go-nmea"

	"github.com/relabs-tech/camera_motion/internal/motion"
)

// Proprietary NMEA sentences spoken by the serial IMU bridge:
//
//	$PIMUG,<ts_ms>,<x>,<y>,<z>*hh   gyro rates with device timestamp
//	$PIMUA,<x>,<y>,<z>*hh           accelerometer vector
//
// Framing and checksum validation come from the NMEA library; we only
// register the field layouts. The library treats the leading P as the
// proprietary talker, so the registered types drop it.
const (
	TypePIMUG = "IMUG"
	TypePIMUA = "IMUA"
)

// PIMUG is a proprietary gyro sentence.
type PIMUG struct {
	nmea.BaseSentence
	Timestamp float64
	X         float64
	Y         float64
	Z         float64
}

// PIMUA is a proprietary accelerometer sentence.
type PIMUA struct {
	nmea.BaseSentence
	X float64
	Y float64
	Z float64
}

func init() {
	nmea.MustRegisterParser(TypePIMUG, func(s nmea.BaseSentence) (nmea.Sentence, error) {
		p := nmea.NewParser(s)
		return PIMUG{
			BaseSentence: s,
			Timestamp:    p.Float64(0, "timestamp"),
			X:            p.Float64(1, "x rate"),
			Y:            p.Float64(2, "y rate"),
			Z:            p.Float64(3, "z rate"),
		}, p.Err()
	})
	nmea.MustRegisterParser(TypePIMUA, func(s nmea.BaseSentence) (nmea.Sentence, error) {
		p := nmea.NewParser(s)
		return PIMUA{
			BaseSentence: s,
			X:            p.Float64(0, "x accel"),
			Y:            p.Float64(1, "y accel"),
			Z:            p.Float64(2, "z accel"),
		}, p.Err()
	})
}

// frameFromLine parses one serial line into a demultiplexed motion frame.
// Sentence types other than the IMU bridge's are rejected.
func frameFromLine(line string) (motion.Frame, error) {
	sentence, err := nmea.Parse(line)
	if err != nil {
		return motion.Frame{}, err
	}

	switch s := sentence.(type) {
	case PIMUG:
		return motion.GyroFrame(motion.GyroSample{
			X:         s.X,
			Y:         s.Y,
			Z:         s.Z,
			Timestamp: s.Timestamp,
		}), nil
	case PIMUA:
		return motion.AccelFrame(motion.AccelSample{
			X: s.X,
			Y: s.Y,
			Z: s.Z,
		}), nil
	default:
		return motion.Frame{}, fmt.Errorf("unsupported sentence type %q", sentence.DataType())
	}
}

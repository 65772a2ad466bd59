package device

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/camera_motion/internal/motion"
)

// sentence frames a body with the NMEA '$' prefix and XOR checksum.
func sentence(body string) string {
	var cs byte
	for i := 0; i < len(body); i++ {
		cs ^= body[i]
	}
	return fmt.Sprintf("$%s*%02X", body, cs)
}

func TestFrameFromLineGyro(t *testing.T) {
	line := sentence("PIMUG,1523.5,0.01,-0.02,0.03")

	frame, err := frameFromLine(line)
	require.NoError(t, err)

	assert.Equal(t, motion.StreamGyro, frame.Kind)
	assert.Equal(t, 1523.5, frame.Gyro.Timestamp)
	assert.Equal(t, 0.01, frame.Gyro.X)
	assert.Equal(t, -0.02, frame.Gyro.Y)
	assert.Equal(t, 0.03, frame.Gyro.Z)
}

func TestFrameFromLineAccel(t *testing.T) {
	line := sentence("PIMUA,0.0,0.1,9.81")

	frame, err := frameFromLine(line)
	require.NoError(t, err)

	assert.Equal(t, motion.StreamAccel, frame.Kind)
	assert.Equal(t, 0.0, frame.Accel.X)
	assert.Equal(t, 0.1, frame.Accel.Y)
	assert.Equal(t, 9.81, frame.Accel.Z)
}

func TestFrameFromLineRejectsForeignSentence(t *testing.T) {
	// A valid GPS sentence is not IMU traffic.
	line := sentence("GPRMC,123519,A,4807.038,N,01131.000,E,022.4,084.4,230394,003.1,W")

	_, err := frameFromLine(line)
	assert.ErrorContains(t, err, "unsupported sentence type")
}

func TestFrameFromLineRejectsBadChecksum(t *testing.T) {
	_, err := frameFromLine("$PIMUA,0.0,0.1,9.81*00")
	assert.Error(t, err)
}

func TestFrameFromLineRejectsTruncatedGyro(t *testing.T) {
	_, err := frameFromLine(sentence("PIMUG,1523.5,0.01"))
	assert.Error(t, err)
}

package device

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/camera_motion/internal/motion"
)

func collectFrames(t *testing.T, src motion.Source, d time.Duration) []motion.Frame {
	t.Helper()

	var (
		mu     sync.Mutex
		frames []motion.Frame
	)
	require.NoError(t, src.Start(func(f motion.Frame) {
		mu.Lock()
		frames = append(frames, f)
		mu.Unlock()
	}))
	time.Sleep(d)
	require.NoError(t, src.Stop())

	mu.Lock()
	defer mu.Unlock()
	return frames
}

func TestMockIMUDeliversBothStreams(t *testing.T) {
	src := NewMockIMU(200, 63)
	assert.Equal(t, motion.CapabilityIMU, src.Capability())

	frames := collectFrames(t, src, 200*time.Millisecond)
	require.NotEmpty(t, frames)

	var gyro, accel int
	var lastTS float64
	for _, f := range frames {
		switch f.Kind {
		case motion.StreamGyro:
			gyro++
			assert.GreaterOrEqual(t, f.Gyro.Timestamp, lastTS, "gyro timestamps must not decrease")
			lastTS = f.Gyro.Timestamp
		case motion.StreamAccel:
			accel++
		default:
			t.Fatalf("unexpected frame kind %v", f.Kind)
		}
	}
	assert.NotZero(t, gyro)
	assert.NotZero(t, accel)
	assert.Greater(t, gyro, accel, "gyro stream runs at the higher native rate")
}

func TestMockIMUStartTwice(t *testing.T) {
	src := NewMockIMU(100, 50)
	require.NoError(t, src.Start(func(motion.Frame) {}))
	defer src.Stop()

	assert.ErrorIs(t, src.Start(func(motion.Frame) {}), motion.ErrAlreadyStarted)
}

func TestMockIMUStopIsIdempotent(t *testing.T) {
	src := NewMockIMU(100, 50)
	require.NoError(t, src.Start(func(motion.Frame) {}))
	require.NoError(t, src.Stop())
	assert.NoError(t, src.Stop())
}

func TestMockPoseDeliversPoseFrames(t *testing.T) {
	src := NewMockPose()
	assert.Equal(t, motion.CapabilityPose, src.Capability())

	frames := collectFrames(t, src, 100*time.Millisecond)
	require.NotEmpty(t, frames)
	for _, f := range frames {
		assert.Equal(t, motion.StreamPose, f.Kind)
	}
}

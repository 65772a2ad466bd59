package orientation

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/relabs-tech/camera_motion/internal/motion"
)

func newTestEstimator(t *testing.T) *Estimator {
	t.Helper()
	e, err := NewEstimator(DefaultConfig())
	require.NoError(t, err)
	return e
}

func TestNewEstimatorRejectsBadAlpha(t *testing.T) {
	for _, alpha := range []float64{0, 1, -0.5, 1.5} {
		cfg := DefaultConfig()
		cfg.Alpha = alpha
		_, err := NewEstimator(cfg)
		assert.Error(t, err, "alpha=%v", alpha)
	}
}

func TestFirstGyroSampleIsPrimingOnly(t *testing.T) {
	e := newTestEstimator(t)

	e.ProcessGyro(motion.GyroSample{X: 3, Y: -2, Z: 1, Timestamp: 1000})

	assert.Equal(t, Theta{}, e.Theta(), "gyro before accel reference must not perturb theta")
}

func TestFirstAccelSampleInitializes(t *testing.T) {
	e := newTestEstimator(t)

	// Gravity aligned with the reference axis: zero tilt.
	e.ProcessAccel(motion.AccelSample{X: 0, Y: 0, Z: 1})

	th := e.Theta()
	assert.Equal(t, 0.0, th.Pitch)
	assert.Equal(t, 0.0, th.Roll)
	assert.Equal(t, math.Pi, th.Yaw)
}

func TestFirstAccelSampleSidewaysGravity(t *testing.T) {
	e := newTestEstimator(t)

	e.ProcessAccel(motion.AccelSample{X: 0, Y: 1, Z: 0})

	th := e.Theta()
	assert.InDelta(t, math.Pi/2, th.Roll, 1e-12, "roll = atan2(1,0)")
	assert.Equal(t, math.Pi, th.Yaw)
}

func TestYawUntouchedByAccelOnlyStream(t *testing.T) {
	e := newTestEstimator(t)

	samples := []motion.AccelSample{
		{X: 0, Y: 0, Z: 1},
		{X: 0.3, Y: -0.1, Z: 0.9},
		{X: -0.2, Y: 0.4, Z: 0.8},
		{X: 0, Y: 1, Z: 0},
	}
	for _, s := range samples {
		e.ProcessAccel(s)
		assert.Equal(t, math.Pi, e.Theta().Yaw, "yaw must stay at the initial convention")
	}
}

func TestComplementaryBlendLaw(t *testing.T) {
	e := newTestEstimator(t)

	// Initialize with a tilt giving pitch exactly 0.1 rad, then feed a
	// second sample and check the literal 0.98/0.02 blend.
	init := motion.AccelSample{X: math.Tan(0.1), Y: 0, Z: 1}
	e.ProcessAccel(init)
	require.InDelta(t, 0.1, e.Theta().Pitch, 1e-12)

	next := motion.AccelSample{X: math.Tan(0.5), Y: 0, Z: 1}
	e.ProcessAccel(next)

	want := 0.1*0.98 + 0.5*0.02 // 0.108
	assert.InDelta(t, want, e.Theta().Pitch, 1e-9)
}

func TestGyroIntegrationAxisMapping(t *testing.T) {
	e := newTestEstimator(t)

	e.ProcessAccel(motion.AccelSample{X: 0, Y: 0, Z: 1})
	e.ProcessGyro(motion.GyroSample{Timestamp: 0}) // priming
	e.ProcessGyro(motion.GyroSample{X: 0.2, Y: 0.4, Z: -0.6, Timestamp: 500})

	// dt = 0.5s: pitch -= z*dt, yaw -= y*dt, roll += x*dt.
	th := e.Theta()
	assert.InDelta(t, 0.3, th.Pitch, 1e-12)
	assert.InDelta(t, math.Pi-0.2, th.Yaw, 1e-12)
	assert.InDelta(t, 0.1, th.Roll, 1e-12)
}

func TestGyroScaleApplied(t *testing.T) {
	cfg := DefaultConfig()
	cfg.GyroScale = GyroScale{X: 2, Y: 0.5, Z: 4}
	e, err := NewEstimator(cfg)
	require.NoError(t, err)

	e.ProcessAccel(motion.AccelSample{X: 0, Y: 0, Z: 1})
	e.ProcessGyro(motion.GyroSample{Timestamp: 0})
	e.ProcessGyro(motion.GyroSample{X: 1, Y: 1, Z: 1, Timestamp: 1000})

	th := e.Theta()
	assert.InDelta(t, -4.0, th.Pitch, 1e-12)
	assert.InDelta(t, math.Pi-0.5, th.Yaw, 1e-12)
	assert.InDelta(t, 2.0, th.Roll, 1e-12)
}

func TestReadIsIdempotent(t *testing.T) {
	e := newTestEstimator(t)
	e.ProcessAccel(motion.AccelSample{X: 0.1, Y: 0.2, Z: 0.97})

	first := e.Theta()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, e.Theta(), "reads without ingestion must be bit-identical")
	}
}

func TestZeroAccelVectorIsDegenerateButDefined(t *testing.T) {
	e := newTestEstimator(t)

	e.ProcessAccel(motion.AccelSample{})

	th := e.Theta()
	assert.Equal(t, 0.0, th.Pitch)
	assert.Equal(t, 0.0, th.Roll)
	assert.Equal(t, math.Pi, th.Yaw)
}

// TestNoTornReads drives gyro updates whose x and z rates are equal, so
// every consistent snapshot satisfies pitch+roll == 0 exactly (each update
// subtracts from pitch what it adds to roll). A reader that observed a
// half-applied update would break the identity.
func TestNoTornReads(t *testing.T) {
	e := newTestEstimator(t)
	e.ProcessAccel(motion.AccelSample{X: 0, Y: 0, Z: 1}) // pitch=roll=0
	e.ProcessGyro(motion.GyroSample{Timestamp: 0})

	const (
		writers       = 4
		readers       = 4
		writesPerGoro = 2000
		readsPerGoro  = 5000
	)

	var wg sync.WaitGroup
	for w := 0; w < writers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for i := 0; i < writesPerGoro; i++ {
				ts := float64(id*writesPerGoro + i)
				rate := float64(i%7) - 3
				e.ProcessGyro(motion.GyroSample{X: rate, Y: 0, Z: rate, Timestamp: ts})
			}
		}(w)
	}

	errs := make(chan string, readers)
	for r := 0; r < readers; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < readsPerGoro; i++ {
				th := e.Theta()
				if sum := th.Pitch + th.Roll; math.Abs(sum) > 1e-9 {
					select {
					case errs <- "torn read: pitch+roll drifted from 0":
					default:
					}
					return
				}
				if th.Yaw != math.Pi {
					select {
					case errs <- "torn read: yaw moved without y-axis rate":
					default:
					}
					return
				}
			}
		}()
	}

	wg.Wait()
	close(errs)
	for msg := range errs {
		t.Fatal(msg)
	}
}

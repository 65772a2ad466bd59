// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"math"
	"sync"

	"github.com/relabs-tech/camera_motion/internal/motion"
)

// GyroScale holds per-axis calibration factors converting raw gyro readings
// to a consistent angular-change unit. These reflect sensor-specific
// sensitivity and mounting; they are tuned, not derived.
type GyroScale struct {
	X float64
	Y float64
	Z float64
}

// Config holds the fusion parameters of an Estimator. All values are fixed
// at construction.
type Config struct {
	// Alpha is the complementary-filter weight in (0,1): the share of the
	// gyro-integrated estimate kept on each accelerometer update. Higher
	// values trust the gyro more but drift; lower values follow the
	// accelerometer, which is sensitive to transient motion.
	Alpha float64

	// GyroScale converts raw angular rates to the integration unit.
	GyroScale GyroScale

	// InitialYaw is the heading assigned on the first accelerometer sample,
	// in radians. Heading cannot be observed from gravity, so this is a
	// convention, not a measurement.
	InitialYaw float64
}

// DefaultConfig returns the parameters used by the stock camera module.
func DefaultConfig() Config {
	return Config{
		Alpha:      0.98,
		GyroScale:  GyroScale{X: 1, Y: 1, Z: 1},
		InitialYaw: math.Pi,
	}
}

// trackingState is the estimator's explicit lifecycle: before the first
// accelerometer sample there is no absolute reference, so gyro samples only
// prime the timestamp. The transition to tracking fires exactly once and
// never reverts.
type trackingState int

const (
	stateUninitialized trackingState = iota
	stateTracking
)

// Estimator fuses gyroscope and accelerometer streams into a single
// orientation estimate via a complementary filter.
//
// Both ingestion methods may be called concurrently from producer
// goroutines while Theta is polled from a consumer loop; theta, the
// tracking state and the gyro timestamp are guarded as one unit, so a
// reader never observes a partially applied update.
type Estimator struct {
	cfg Config

	mu         sync.Mutex
	theta      Theta
	state      trackingState
	lastGyroTS float64 // milliseconds
}

// NewEstimator creates an estimator with the given fusion parameters.
func NewEstimator(cfg Config) (*Estimator, error) {
	if cfg.Alpha <= 0 || cfg.Alpha >= 1 {
		return nil, fmt.Errorf("estimator: alpha must be in (0,1), got %v", cfg.Alpha)
	}
	return &Estimator{cfg: cfg}, nil
}

// ProcessGyro integrates one angular-velocity sample into theta.
//
// Before the first accelerometer sample there is no reference pose, so the
// sample only records its timestamp as the integration baseline. Afterwards
// the scaled rate is multiplied by the elapsed time since the previous gyro
// sample and applied with the fixed sensor-to-model axis mapping.
//
// The operation never fails. An out-of-order timestamp produces a negative
// interval and a sign-flipped step for that one sample; correcting that is
// deliberately left to the producer.
func (e *Estimator) ProcessGyro(s motion.GyroSample) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state == stateUninitialized {
		// Priming: establish the baseline timestamp only.
		e.lastGyroTS = s.Timestamp
		return
	}

	dt := (s.Timestamp - e.lastGyroTS) / 1000.0
	e.lastGyroTS = s.Timestamp

	dx := s.X * e.cfg.GyroScale.X * dt
	dy := s.Y * e.cfg.GyroScale.Y * dt
	dz := s.Z * e.cfg.GyroScale.Z * dt

	// Axis mapping fixed by the physical mounting of the sensor relative
	// to the model: the sensor's z rate drives pitch, y drives yaw, x
	// drives roll.
	e.theta.Pitch -= dz
	e.theta.Yaw -= dy
	e.theta.Roll += dx
}

// ProcessAccel folds one acceleration sample into theta.
//
// The very first sample initializes pitch and roll from the gravity
// direction and sets yaw to the configured convention; every later sample
// re-anchors pitch and roll through the complementary blend, cancelling
// gyro drift. Yaw is never touched here. The operation never fails, even
// for a zero vector.
func (e *Estimator) ProcessAccel(s motion.AccelSample) {
	accelPitch, accelRoll := TiltFromAccel(s)

	e.mu.Lock()
	defer e.mu.Unlock()

	switch e.state {
	case stateUninitialized:
		e.state = stateTracking
		e.theta = Theta{
			Pitch: accelPitch,
			Yaw:   e.cfg.InitialYaw,
			Roll:  accelRoll,
		}
	case stateTracking:
		a := e.cfg.Alpha
		e.theta.Pitch = e.theta.Pitch*a + accelPitch*(1-a)
		e.theta.Roll = e.theta.Roll*a + accelRoll*(1-a)
	}
}

// Theta returns a copy of the current estimate taken under the guard. The
// copy reflects theta at a single consistent instant.
func (e *Estimator) Theta() Theta {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.theta
}
